//go:build wireinject
// +build wireinject

// Package wire 提供依赖注入配置
package wire

import (
	"github.com/google/wire"

	"press-council-api/internal/application/council"
	"press-council-api/internal/config"
	"press-council-api/internal/domain/repository"
	"press-council-api/internal/infrastructure/llm"
	"press-council-api/internal/infrastructure/persistence/postgres"
	"press-council-api/internal/infrastructure/persistence/redis"
	"press-council-api/internal/interfaces/http/handler"
	"press-council-api/internal/interfaces/http/middleware"
	"press-council-api/internal/interfaces/http/router"
	"press-council-api/internal/workflow/prompt"
)

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		PostgresSet,
		RedisSet,
		CouncilSet,
		HandlerSet,
		wire.Struct(new(router.Handlers), "*"),
		ProvideRouter,
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewConversationRepository,
	postgres.NewMessageRepository,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.ConversationRepository), new(*postgres.ConversationRepository)),
	wire.Bind(new(repository.MessageRepository), new(*postgres.MessageRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// CouncilSet 评议会流水线提供者集合
var CouncilSet = wire.NewSet(
	llm.NewEinoFactory,
	llm.NewInvoker,
	prompt.NewRegistry,
	council.NewCoordinator,
	wire.Bind(new(council.Invoker), new(*llm.Invoker)),
)

// HandlerSet HTTP 处理器提供者集合
var HandlerSet = wire.NewSet(
	handler.NewHealthHandler,
	handler.NewConfigHandler,
	handler.NewConversationHandler,
	handler.NewCouncilHandler,
)
