// Package handler 提供 HTTP 请求处理器
package handler

import (
	"encoding/json"

	"github.com/gin-gonic/gin"

	"press-council-api/internal/config"
	"press-council-api/internal/infrastructure/persistence/redis"
	"press-council-api/internal/interfaces/http/dto"
	"press-council-api/pkg/logger"
)

// ConfigHandler 评议会目录处理器
//
// 目录本身是代码内置的静态数据；经 Redis 缓存主要是为了给前端的
// 高频轮询一个统一的缓存路径，顺带压平并发加载。
type ConfigHandler struct {
	cfg   *config.Config
	cache *redis.Cache
}

// NewConfigHandler 创建目录处理器
func NewConfigHandler(cfg *config.Config, cache *redis.Cache) *ConfigHandler {
	return &ConfigHandler{
		cfg:   cfg,
		cache: cache,
	}
}

// GetConfig 获取完整评议会目录
func (h *ConfigHandler) GetConfig(c *gin.Context) {
	payload := func() (interface{}, error) {
		return dto.ConfigResponse{
			ModelBlocks:     config.ModelBlocks(),
			Personas:        config.Personas(),
			Modes:           config.Modes(),
			CriticismLevels: config.CriticismLevels(),
			Defaults: dto.CouncilDefaults{
				Mode:           h.cfg.Council.DefaultMode,
				CriticismLevel: h.cfg.Council.DefaultCriticismLevel,
			},
		}, nil
	}

	if h.cache == nil {
		data, _ := payload()
		dto.Success(c, data)
		return
	}

	key := redis.BuildCatalogKey("full")
	bytes, err := h.cache.GetOrLoadSafe(c.Request.Context(), key, h.cfg.Council.CatalogCacheTTL, payload)
	if err != nil {
		// 缓存故障时直接回源
		logger.Warn(c.Request.Context(), "catalog cache unavailable", "error", err.Error())
		data, _ := payload()
		dto.Success(c, data)
		return
	}

	dto.Success(c, json.RawMessage(bytes))
}

// GetModelBlocks 获取模型块目录
func (h *ConfigHandler) GetModelBlocks(c *gin.Context) {
	dto.Success(c, config.ModelBlocks())
}

// GetPersonas 获取记者画像目录
func (h *ConfigHandler) GetPersonas(c *gin.Context) {
	dto.Success(c, config.Personas())
}

// GetModes 获取模式目录
func (h *ConfigHandler) GetModes(c *gin.Context) {
	dto.Success(c, config.Modes())
}

// GetCriticismLevels 获取批评强度目录
func (h *ConfigHandler) GetCriticismLevels(c *gin.Context) {
	dto.Success(c, config.CriticismLevels())
}

// Estimate 按所选配置估算成本与耗时
func (h *ConfigHandler) Estimate(c *gin.Context) {
	var req dto.EstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	modeID := req.Mode
	if modeID == "" {
		modeID = h.cfg.Council.DefaultMode
	}
	mode, ok := config.GetMode(modeID)
	if !ok {
		dto.NotFound(c, "unknown mode: "+modeID)
		return
	}

	writers := req.Writers
	if len(writers) == 0 {
		writers = mode.DefaultWriters
	}
	matrix := mode.DefaultMatrix
	if req.Matrix != nil {
		matrix = make([]config.MatrixCell, 0, len(req.Matrix))
		for _, cell := range req.Matrix {
			matrix = append(matrix, config.MatrixCell{BlockID: cell.BlockID, PersonaID: cell.PersonaID})
		}
	}
	editor := req.Editor
	if editor == "" {
		editor = mode.DefaultEditor
	}

	dto.Success(c, dto.EstimateResponse{
		EstimatedCost:    config.EstimateCost(writers, matrix, editor),
		EstimatedTimeMin: config.EstimateTime(writers, matrix),
	})
}
