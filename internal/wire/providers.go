// Package wire 提供依赖注入配置
package wire

import (
	"press-council-api/internal/config"
	"press-council-api/internal/domain/entity"
	"press-council-api/internal/infrastructure/persistence/postgres"
	"press-council-api/internal/infrastructure/persistence/redis"
	"press-council-api/internal/interfaces/http/middleware"
	"press-council-api/internal/interfaces/http/router"
)

// ProvidePostgresClient 创建 PostgreSQL 客户端，随应用关闭释放连接
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	if err := client.AutoMigrate(&entity.Conversation{}, &entity.Message{}); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideRedisClient 创建 Redis 客户端，随应用关闭释放连接
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

// ProvideRouter 组装路由器
func ProvideRouter(cfg *config.Config, handlers router.Handlers, limiter middleware.RateLimiter) *router.Router {
	return router.New(cfg, handlers, limiter)
}
