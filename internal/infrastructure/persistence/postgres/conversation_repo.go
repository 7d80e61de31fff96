// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"press-council-api/internal/domain/entity"
	"press-council-api/internal/domain/repository"
)

// ConversationRepository 会话仓储
type ConversationRepository struct {
	client *Client
}

// NewConversationRepository 创建会话仓储
func NewConversationRepository(client *Client) *ConversationRepository {
	return &ConversationRepository{client: client}
}

func (r *ConversationRepository) Create(ctx context.Context, conversation *entity.Conversation) error {
	ctx, span := tracer.Start(ctx, "postgres.ConversationRepository.Create")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Create(conversation).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetByID(ctx context.Context, id string) (*entity.Conversation, error) {
	ctx, span := tracer.Start(ctx, "postgres.ConversationRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var conversation entity.Conversation
	if err := db.First(&conversation, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conversation, nil
}

func (r *ConversationRepository) List(ctx context.Context, pagination repository.Pagination) (*repository.PagedResult[*entity.Conversation], error) {
	ctx, span := tracer.Start(ctx, "postgres.ConversationRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Conversation{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}

	var conversations []*entity.Conversation
	if err := query.Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&conversations).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	return repository.NewPagedResult(conversations, total, pagination), nil
}

func (r *ConversationRepository) UpdateTitle(ctx context.Context, id, title string) error {
	ctx, span := tracer.Start(ctx, "postgres.ConversationRepository.UpdateTitle")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Model(&entity.Conversation{}).Where("id = ?", id).Update("title", title)
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to update conversation title: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *ConversationRepository) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "postgres.ConversationRepository.Delete")
	defer span.End()

	db := getDB(ctx, r.client.db)
	result := db.Where("id = ?", id).Delete(&entity.Conversation{})
	if result.Error != nil {
		span.RecordError(result.Error)
		return fmt.Errorf("failed to delete conversation: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
