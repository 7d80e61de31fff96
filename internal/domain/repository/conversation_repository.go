// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"press-council-api/internal/domain/entity"
)

// ConversationRepository 会话仓储接口
type ConversationRepository interface {
	Create(ctx context.Context, conversation *entity.Conversation) error
	GetByID(ctx context.Context, id string) (*entity.Conversation, error)
	List(ctx context.Context, pagination Pagination) (*PagedResult[*entity.Conversation], error)
	UpdateTitle(ctx context.Context, id, title string) error
	Delete(ctx context.Context, id string) error
}

// MessageRepository 消息仓储接口
// 消息本身不可修改，仅追加；删除只随会话级联发生。
type MessageRepository interface {
	Append(ctx context.Context, message *entity.Message) error
	ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
	DeleteByConversation(ctx context.Context, conversationID string) error
}
