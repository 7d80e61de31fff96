// Package handler 提供 HTTP 请求处理器
package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"press-council-api/internal/domain/entity"
	"press-council-api/internal/domain/repository"
	"press-council-api/internal/interfaces/http/dto"
	"press-council-api/pkg/logger"
)

// ConversationHandler 会话管理处理器
type ConversationHandler struct {
	convRepo repository.ConversationRepository
	msgRepo  repository.MessageRepository
	txMgr    repository.Transactor
}

// NewConversationHandler 创建会话处理器
func NewConversationHandler(
	convRepo repository.ConversationRepository,
	msgRepo repository.MessageRepository,
	txMgr repository.Transactor,
) *ConversationHandler {
	return &ConversationHandler{
		convRepo: convRepo,
		msgRepo:  msgRepo,
		txMgr:    txMgr,
	}
}

// CreateConversation 创建会话
func (h *ConversationHandler) CreateConversation(c *gin.Context) {
	var req dto.CreateConversationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	conv := entity.NewConversation(uuid.New().String())
	if title := strings.TrimSpace(req.Title); title != "" {
		conv.Title = title
	}

	if err := h.convRepo.Create(c.Request.Context(), conv); err != nil {
		logger.Error(c.Request.Context(), "failed to create conversation", err)
		dto.InternalError(c, "failed to create conversation")
		return
	}

	dto.Created(c, dto.ToConversationResponse(conv))
}

// ListConversations 按创建时间倒序分页列出会话
func (h *ConversationHandler) ListConversations(c *gin.Context) {
	var query dto.ListConversationsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		dto.BadRequest(c, "invalid query: "+err.Error())
		return
	}

	page, err := h.convRepo.List(c.Request.Context(), repository.NewPagination(query.Page, query.PageSize))
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list conversations", err)
		dto.InternalError(c, "failed to list conversations")
		return
	}

	items := make([]dto.ConversationResponse, 0, len(page.Items))
	for _, conv := range page.Items {
		items = append(items, dto.ToConversationResponse(conv))
	}
	dto.SuccessWithPage(c, items, dto.NewPageMeta(page.Page, page.PageSize, int(page.Total)))
}

// GetConversation 获取单个会话及其消息
func (h *ConversationHandler) GetConversation(c *gin.Context) {
	id := c.Param("cid")

	conv, err := h.convRepo.GetByID(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to get conversation", err, "conversation_id", id)
		dto.InternalError(c, "failed to get conversation")
		return
	}
	if conv == nil {
		dto.NotFound(c, "conversation not found")
		return
	}

	messages, err := h.msgRepo.ListByConversation(c.Request.Context(), id)
	if err != nil {
		logger.Error(c.Request.Context(), "failed to list messages", err, "conversation_id", id)
		dto.InternalError(c, "failed to list messages")
		return
	}

	dto.Success(c, gin.H{
		"conversation": dto.ToConversationResponse(conv),
		"messages":     dto.ToMessageResponses(messages),
	})
}

// UpdateConversationTitle 更新会话标题
func (h *ConversationHandler) UpdateConversationTitle(c *gin.Context) {
	id := c.Param("cid")

	var req dto.UpdateConversationTitleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request: "+err.Error())
		return
	}

	if err := h.convRepo.UpdateTitle(c.Request.Context(), id, strings.TrimSpace(req.Title)); err != nil {
		if isNotFound(err) {
			dto.NotFound(c, "conversation not found")
			return
		}
		logger.Error(c.Request.Context(), "failed to update conversation title", err, "conversation_id", id)
		dto.InternalError(c, "failed to update conversation title")
		return
	}

	dto.NoContent(c)
}

// DeleteConversation 删除会话及其全部消息
func (h *ConversationHandler) DeleteConversation(c *gin.Context) {
	id := c.Param("cid")

	err := h.txMgr.WithTransaction(c.Request.Context(), func(txCtx context.Context) error {
		if err := h.msgRepo.DeleteByConversation(txCtx, id); err != nil {
			return err
		}
		return h.convRepo.Delete(txCtx, id)
	})
	if err != nil {
		if isNotFound(err) {
			dto.NotFound(c, "conversation not found")
			return
		}
		logger.Error(c.Request.Context(), "failed to delete conversation", err, "conversation_id", id)
		dto.InternalError(c, "failed to delete conversation")
		return
	}

	dto.NoContent(c)
}
