// Package dto 提供 HTTP 层数据传输对象
package dto

import (
	"encoding/json"
	"time"

	"press-council-api/internal/domain/entity"
)

// CreateConversationRequest 创建会话请求
type CreateConversationRequest struct {
	Title string `json:"title" binding:"omitempty,max=255"`
}

// UpdateConversationTitleRequest 更新会话标题请求
type UpdateConversationTitleRequest struct {
	Title string `json:"title" binding:"required,max=255"`
}

// ListConversationsQuery 会话列表查询参数
type ListConversationsQuery struct {
	Page     int `form:"page,default=1" binding:"omitempty,min=1"`
	PageSize int `form:"page_size,default=20" binding:"omitempty,min=1,max=100"`
}

// ConversationResponse 会话响应
type ConversationResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MessageResponse 消息响应
type MessageResponse struct {
	ID             string          `json:"id"`
	ConversationID string          `json:"conversation_id"`
	Role           string          `json:"role"`
	Content        string          `json:"content,omitempty"`
	Stages         json.RawMessage `json:"stages,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// ToConversationResponse 实体转响应
func ToConversationResponse(conv *entity.Conversation) ConversationResponse {
	return ConversationResponse{
		ID:        conv.ID,
		Title:     conv.Title,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
	}
}

// ToMessageResponse 实体转响应
func ToMessageResponse(msg *entity.Message) MessageResponse {
	return MessageResponse{
		ID:             msg.ID,
		ConversationID: msg.ConversationID,
		Role:           string(msg.Role),
		Content:        msg.Content,
		Stages:         msg.Stages,
		CreatedAt:      msg.CreatedAt,
	}
}

// ToMessageResponses 实体列表转响应列表
func ToMessageResponses(msgs []*entity.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, ToMessageResponse(m))
	}
	return out
}
