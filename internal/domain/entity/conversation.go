// Package entity 定义领域实体
package entity

import (
	"encoding/json"
	"time"
)

// Role 消息角色
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// DefaultConversationTitle 标题生成失败时的兜底标题
const DefaultConversationTitle = "New press release"

// Conversation 会话实体
type Conversation struct {
	ID        string    `json:"id" gorm:"type:uuid;primaryKey"`
	Title     string    `json:"title" gorm:"type:varchar(255);not null"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// NewConversation 创建会话
func NewConversation(id string) *Conversation {
	now := time.Now()
	return &Conversation{
		ID:        id,
		Title:     DefaultConversationTitle,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Message 会话消息实体
// 用户消息只有 Content；助手消息以 Stages 保存三阶段产物
// （草稿、评审、合成），不包含请求期的易失性元数据。
type Message struct {
	ID             string          `json:"id" gorm:"type:uuid;primaryKey"`
	ConversationID string          `json:"conversation_id" gorm:"type:uuid;index;not null"`
	Role           Role            `json:"role" gorm:"type:varchar(16);not null"`
	Content        string          `json:"content,omitempty" gorm:"type:text"`
	Stages         json.RawMessage `json:"stages,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time       `json:"created_at" gorm:"autoCreateTime"`
}

func (Message) TableName() string {
	return "messages"
}

// NewUserMessage 创建用户消息
func NewUserMessage(id, conversationID, content string) *Message {
	return &Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           RoleUser,
		Content:        content,
		CreatedAt:      time.Now(),
	}
}

// NewAssistantMessage 创建助手消息
func NewAssistantMessage(id, conversationID string, stages json.RawMessage) *Message {
	return &Message{
		ID:             id,
		ConversationID: conversationID,
		Role:           RoleAssistant,
		Stages:         stages,
		CreatedAt:      time.Now(),
	}
}
