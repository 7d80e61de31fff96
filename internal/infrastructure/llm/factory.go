// Package llm 提供 OpenRouter 网关的 ChatModel 工厂与调用封装
package llm

import (
	"context"
	"fmt"
	"sync"

	"press-council-api/internal/config"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
)

// EinoFactory 按网关模型 ID 管理 Eino ChatModel 客户端实例
//
// OpenRouter 暴露 OpenAI 兼容接口，所有模型共用同一 BaseURL 与 APIKey，
// 仅 Model 字段不同，因此以模型 ID 作为缓存键惰性创建。
type EinoFactory struct {
	config *config.LLMConfig
	models map[string]model.BaseChatModel
	mu     sync.RWMutex
}

// NewEinoFactory 创建 Eino LLM 工厂
func NewEinoFactory(cfg *config.Config) *EinoFactory {
	return &EinoFactory{
		config: &cfg.LLM,
		models: make(map[string]model.BaseChatModel),
	}
}

// Get 获取指定网关模型 ID 的 ChatModel
func (f *EinoFactory) Get(ctx context.Context, modelID string) (model.BaseChatModel, error) {
	if modelID == "" {
		return nil, fmt.Errorf("model id is empty")
	}

	f.mu.RLock()
	m, ok := f.models[modelID]
	f.mu.RUnlock()
	if ok {
		return m, nil
	}

	// 惰性加载
	f.mu.Lock()
	defer f.mu.Unlock()

	// 再次检查防止竞态
	if m, ok = f.models[modelID]; ok {
		return m, nil
	}

	maxTokens := f.config.MaxTokens
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey:      f.config.APIKey,
		BaseURL:     f.config.BaseURL,
		Model:       modelID,
		MaxTokens:   &maxTokens,
		Temperature: ptrFloat32(float32(f.config.Temperature)),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create eino chat model for %s: %w", modelID, err)
	}

	f.models[modelID] = chatModel
	return chatModel, nil
}

func ptrFloat32(f float32) *float32 {
	return &f
}
