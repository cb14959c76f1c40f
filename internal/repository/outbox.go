package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

type OutboxRepository interface {
	Create(ctx context.Context, data *entity.OutboxEvent) error
	MarkDelivered(ctx context.Context, id int64) error
	IncreaseAttempts(ctx context.Context, id int64) error
	// GetUndelivered pages through undelivered rows created before createdBefore which failed
	// less than maxAttempts times, in id order starting after afterID.
	GetUndelivered(
		ctx context.Context, createdBefore time.Time, maxAttempts int, afterID int64, limit int,
	) ([]entity.OutboxEvent, error)
	DeleteDeliveredBefore(ctx context.Context, before time.Time) (int64, error)
}

type outboxRepository struct{}

func NewOutboxRepository() OutboxRepository {
	return &outboxRepository{}
}

func (r *outboxRepository) Create(ctx context.Context, data *entity.OutboxEvent) error {
	return xcontext.DB(ctx).Create(data).Error
}

func (r *outboxRepository) MarkDelivered(ctx context.Context, id int64) error {
	tx := xcontext.DB(ctx).Model(&entity.OutboxEvent{}).
		Where("id=? AND delivered_at IS NULL", id).
		Update("delivered_at", sql.NullTime{Valid: true, Time: time.Now()})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *outboxRepository) IncreaseAttempts(ctx context.Context, id int64) error {
	return xcontext.DB(ctx).Model(&entity.OutboxEvent{}).
		Where("id=?", id).
		Update("attempts", gorm.Expr("attempts+1")).Error
}

func (r *outboxRepository) GetUndelivered(
	ctx context.Context, createdBefore time.Time, maxAttempts int, afterID int64, limit int,
) ([]entity.OutboxEvent, error) {
	tx := xcontext.DB(ctx).
		Where("delivered_at IS NULL AND created_at<? AND id>?", createdBefore, afterID)
	if maxAttempts > 0 {
		tx = tx.Where("attempts<?", maxAttempts)
	}

	var result []entity.OutboxEvent
	if err := tx.Order("id ASC").Limit(limit).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *outboxRepository) DeleteDeliveredBefore(ctx context.Context, before time.Time) (int64, error) {
	tx := xcontext.DB(ctx).
		Where("delivered_at IS NOT NULL AND delivered_at<?", before).
		Delete(&entity.OutboxEvent{})
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
