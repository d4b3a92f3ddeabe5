package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type NotificationPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewNotificationPostgreSQL(db *gorm.DB) repositories.NotificationRepository {
	return &NotificationPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (n *NotificationPostgreSQL) CreateBatch(ctx context.Context, tx *gorm.DB, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	db := n.getDB(tx)
	return db.WithContext(ctx).Create(&notifications).Error
}

func (n *NotificationPostgreSQL) ListForRecipient(ctx context.Context, tx *gorm.DB, recipientID string, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	db := n.getDB(tx)
	var notifications []*models.Notification
	var total int64

	query := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID)
	if filters.UnreadOnly {
		query = query.Where("is_read = ?", false)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = n.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	if err := query.Order("created_at DESC").Find(&notifications).Error; err != nil {
		return nil, 0, err
	}

	return notifications, total, nil
}

// MarkRead is scoped by recipient so one user cannot acknowledge another's
// notification.
func (n *NotificationPostgreSQL) MarkRead(ctx context.Context, tx *gorm.DB, id uint, recipientID string) error {
	db := n.getDB(tx)
	result := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return fmt.Errorf("failed to mark notification read: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func (n *NotificationPostgreSQL) UnreadCount(ctx context.Context, tx *gorm.DB, recipientID string) (int64, error) {
	db := n.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (n *NotificationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return n.db
}
