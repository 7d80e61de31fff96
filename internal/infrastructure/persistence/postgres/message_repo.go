// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"press-council-api/internal/domain/entity"
)

// MessageRepository 消息仓储（仅追加）
type MessageRepository struct {
	client *Client
}

// NewMessageRepository 创建消息仓储
func NewMessageRepository(client *Client) *MessageRepository {
	return &MessageRepository{client: client}
}

func (r *MessageRepository) Append(ctx context.Context, message *entity.Message) error {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.Append")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(message).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to append message: %w", err)
	}
	return nil
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*entity.Message, error) {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.ListByConversation")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var messages []*entity.Message
	if err := db.Where("conversation_id = ?", conversationID).
		Order("created_at ASC").
		Find(&messages).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) DeleteByConversation(ctx context.Context, conversationID string) error {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.DeleteByConversation")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Where("conversation_id = ?", conversationID).
		Delete(&entity.Message{}).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	return nil
}

func (r *MessageRepository) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	ctx, span := tracer.Start(ctx, "postgres.MessageRepository.CountByConversation")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return count, nil
}
