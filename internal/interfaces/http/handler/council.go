// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"encoding/json"
	"io"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"press-council-api/internal/application/council"
	"press-council-api/internal/domain/entity"
	"press-council-api/internal/domain/repository"
	"press-council-api/internal/interfaces/http/dto"
	"press-council-api/pkg/logger"
)

// CouncilHandler 评议会运行处理器
type CouncilHandler struct {
	coordinator *council.Coordinator
	convRepo    repository.ConversationRepository
	msgRepo     repository.MessageRepository
}

// NewCouncilHandler 创建评议会处理器
func NewCouncilHandler(
	coordinator *council.Coordinator,
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
) *CouncilHandler {
	return &CouncilHandler{
		coordinator: coordinator,
		convRepo:    convRepo,
		msgRepo:     msgRepo,
	}
}

// persistedStages 落库的助手消息负载：三阶段产物本身。
// 标签映射、汇总排名等请求期派生数据从不持久化。
type persistedStages struct {
	Stage1 []council.DraftArtifact  `json:"stage1"`
	Stage2 []council.EvaluationUnit `json:"stage2"`
	Stage3 council.SynthesisResult  `json:"stage3"`
}

// RunPressRelease 同步运行评议会并返回完整结果
func (h *CouncilHandler) RunPressRelease(c *gin.Context) {
	conversationID := c.Param("cid")

	var req dto.PressReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ConversationIDKey, conversationID)

	conv, err := h.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		logger.Error(ctx, "failed to load conversation", err)
		dto.InternalError(c, "failed to load conversation")
		return
	}
	if conv == nil {
		dto.NotFound(c, "conversation not found")
		return
	}

	isFirst := h.isFirstMessage(ctx, conversationID)
	h.appendUserMessage(ctx, conversationID, req.Content)

	result, err := h.coordinator.Run(ctx, req.ToCouncilRequest(), nil)
	if err != nil {
		dto.FromAppError(c, err)
		return
	}

	h.appendAssistantMessage(context.WithoutCancel(ctx), conversationID, result)

	var title string
	if isFirst {
		title = h.generateAndStoreTitle(context.WithoutCancel(ctx), conversationID, req.Content)
	}

	dto.Success(c, dto.PressReleaseResponse{
		ConversationID: conversationID,
		Title:          title,
		Result:         result,
	})
}

// StreamPressRelease 以 SSE 流式运行评议会
//
// 事件顺序与协调器一致；首条消息的标题生成并行进行，
// title_complete 事件的时序不做保证。
func (h *CouncilHandler) StreamPressRelease(c *gin.Context) {
	conversationID := c.Param("cid")

	var req dto.PressReleaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	ctx := logger.WithContext(c.Request.Context(), logger.ConversationIDKey, conversationID)

	conv, err := h.convRepo.GetByID(ctx, conversationID)
	if err != nil {
		logger.Error(ctx, "failed to load conversation", err)
		dto.InternalError(c, "failed to load conversation")
		return
	}
	if conv == nil {
		dto.NotFound(c, "conversation not found")
		return
	}

	isFirst := h.isFirstMessage(ctx, conversationID)
	h.appendUserMessage(ctx, conversationID, req.Content)

	// SSE 响应头
	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	events := make(chan council.Event, 16)
	emit := func(e council.Event) {
		select {
		case events <- e:
		case <-ctx.Done():
			// 客户端断开后丢弃事件，运行本身也会随之取消
		}
	}

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		result, runErr := h.coordinator.Run(ctx, req.ToCouncilRequest(), emit)
		if runErr != nil {
			return
		}
		h.appendAssistantMessage(context.WithoutCancel(ctx), conversationID, result)
	}()

	if isFirst {
		wg.Add(1)
		go func() {
			defer wg.Done()
			title := h.generateAndStoreTitle(ctx, conversationID, req.Content)
			if title != "" {
				emit(council.Event{
					Type: council.EventTitleComplete,
					Data: map[string]any{"title": title},
				})
			}
		}()
	}

	go func() {
		wg.Wait()
		close(events)
	}()

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Type), ev.Data)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

// isFirstMessage 判断会话是否还没有任何消息
func (h *CouncilHandler) isFirstMessage(ctx context.Context, conversationID string) bool {
	count, err := h.msgRepo.CountByConversation(ctx, conversationID)
	if err != nil {
		logger.Warn(ctx, "failed to count messages", "error", err.Error())
		return false
	}
	return count == 0
}

// appendUserMessage 追加用户消息；存储失败不阻断运行
func (h *CouncilHandler) appendUserMessage(ctx context.Context, conversationID, content string) {
	msg := entity.NewUserMessage(uuid.New().String(), conversationID, content)
	if err := h.msgRepo.Append(ctx, msg); err != nil {
		logger.Error(ctx, "failed to persist user message", err)
	}
}

// appendAssistantMessage 追加助手消息；存储失败不影响已产出的结果
func (h *CouncilHandler) appendAssistantMessage(ctx context.Context, conversationID string, result *council.Result) {
	stages, err := json.Marshal(persistedStages{
		Stage1: result.Stage1,
		Stage2: result.Stage2,
		Stage3: result.Stage3,
	})
	if err != nil {
		logger.Error(ctx, "failed to marshal stages payload", err)
		return
	}

	msg := entity.NewAssistantMessage(uuid.New().String(), conversationID, stages)
	msg.Content = result.Stage3.Content
	if err := h.msgRepo.Append(ctx, msg); err != nil {
		logger.Error(ctx, "failed to persist assistant message", err)
	}
}

// generateAndStoreTitle 为首条消息生成标题并落库；任何失败都只降级
func (h *CouncilHandler) generateAndStoreTitle(ctx context.Context, conversationID, content string) string {
	title := h.coordinator.GenerateTitle(ctx, content)
	if err := h.convRepo.UpdateTitle(context.WithoutCancel(ctx), conversationID, title); err != nil {
		logger.Warn(ctx, "failed to store generated title", "error", err.Error())
	}
	return title
}
