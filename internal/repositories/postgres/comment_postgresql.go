package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type CommentPostgreSQL struct {
	db *gorm.DB
}

func NewCommentPostgreSQL(db *gorm.DB) repositories.CommentRepository {
	return &CommentPostgreSQL{db: db}
}

func (c *CommentPostgreSQL) Create(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Create(comment).Error
}

func (c *CommentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Comment, error) {
	db := c.getDB(tx)
	var comment models.Comment
	if err := db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (c *CommentPostgreSQL) Update(ctx context.Context, tx *gorm.DB, comment *models.Comment) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Save(comment).Error
}

func (c *CommentPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	db := c.getDB(tx)
	return db.WithContext(ctx).Delete(&models.Comment{}, id).Error
}

func (c *CommentPostgreSQL) ListForThread(ctx context.Context, tx *gorm.DB, programID, studentID uint) ([]*models.Comment, error) {
	db := c.getDB(tx)
	var comments []*models.Comment
	err := db.WithContext(ctx).
		Where("program_id = ? AND student_id = ?", programID, studentID).
		Order("created_at ASC").
		Preload("Author").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}

func (c *CommentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
