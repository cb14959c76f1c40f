package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/questx-lab/netgraph/internal/entity"
	"github.com/questx-lab/netgraph/pkg/xcontext"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, data *entity.Notification) error
	ExistsUnreadSince(
		ctx context.Context,
		recipientID string,
		notificationType entity.NotificationType,
		subjectID string,
		since time.Time,
	) (bool, error)
	CountSince(
		ctx context.Context, recipientID string, notificationType entity.NotificationType, since time.Time,
	) (int64, error)
	GetList(ctx context.Context, recipientID string, unreadOnly bool, offset, limit int) ([]entity.Notification, error)
	CountUnread(ctx context.Context, recipientID string) (int64, error)
	MarkRead(ctx context.Context, recipientID string, id int64) error
	MarkAllRead(ctx context.Context, recipientID string) (int64, error)
	DeleteReadBefore(ctx context.Context, before time.Time) (int64, error)
}

type notificationRepository struct{}

func NewNotificationRepository() NotificationRepository {
	return &notificationRepository{}
}

func (r *notificationRepository) Create(ctx context.Context, data *entity.Notification) error {
	return xcontext.DB(ctx).Omit("Recipient").Create(data).Error
}

func (r *notificationRepository) ExistsUnreadSince(
	ctx context.Context,
	recipientID string,
	notificationType entity.NotificationType,
	subjectID string,
	since time.Time,
) (bool, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Notification{}).
		Where("recipient_id=? AND type=? AND subject_id=? AND is_read=?",
			recipientID, notificationType, subjectID, false).
		Where("created_at>=?", since).
		Count(&result).Error
	if err != nil {
		return false, err
	}

	return result > 0, nil
}

func (r *notificationRepository) CountSince(
	ctx context.Context, recipientID string, notificationType entity.NotificationType, since time.Time,
) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Notification{}).
		Where("recipient_id=? AND type=? AND created_at>=?", recipientID, notificationType, since).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *notificationRepository) GetList(
	ctx context.Context, recipientID string, unreadOnly bool, offset, limit int,
) ([]entity.Notification, error) {
	tx := xcontext.DB(ctx).Where("recipient_id=?", recipientID)
	if unreadOnly {
		tx = tx.Where("is_read=?", false)
	}

	var result []entity.Notification
	err := tx.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID string) (int64, error) {
	var result int64
	err := xcontext.DB(ctx).Model(&entity.Notification{}).
		Where("recipient_id=? AND is_read=?", recipientID, false).
		Count(&result).Error
	if err != nil {
		return 0, err
	}

	return result, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID string, id int64) error {
	tx := xcontext.DB(ctx).Model(&entity.Notification{}).
		Where("id=? AND recipient_id=?", id, recipientID).
		Updates(map[string]any{
			"is_read": true,
			"read_at": sql.NullTime{Valid: true, Time: time.Now()},
		})
	if tx.Error != nil {
		return tx.Error
	}

	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID string) (int64, error) {
	tx := xcontext.DB(ctx).Model(&entity.Notification{}).
		Where("recipient_id=? AND is_read=?", recipientID, false).
		Updates(map[string]any{
			"is_read": true,
			"read_at": sql.NullTime{Valid: true, Time: time.Now()},
		})
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}

func (r *notificationRepository) DeleteReadBefore(ctx context.Context, before time.Time) (int64, error) {
	tx := xcontext.DB(ctx).
		Where("is_read=? AND created_at<?", true, before).
		Delete(&entity.Notification{})
	if tx.Error != nil {
		return 0, tx.Error
	}

	return tx.RowsAffected, nil
}
