package postgres

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type GraduationPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewGraduationPostgreSQL(db *gorm.DB) repositories.GraduationRepository {
	return &GraduationPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (g *GraduationPostgreSQL) Create(ctx context.Context, tx *gorm.DB, application *models.GraduationApplication) error {
	db := g.getDB(tx)
	return db.WithContext(ctx).Create(application).Error
}

func (g *GraduationPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.GraduationApplication, error) {
	db := g.getDB(tx)
	var application models.GraduationApplication
	if err := db.WithContext(ctx).
		Preload("Student").
		Preload("Program").
		First(&application, id).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (g *GraduationPostgreSQL) GetByStudentAndProgram(ctx context.Context, tx *gorm.DB, studentID, programID uint) (*models.GraduationApplication, error) {
	db := g.getDB(tx)
	var application models.GraduationApplication
	if err := db.WithContext(ctx).
		Where("student_id = ? AND program_id = ?", studentID, programID).
		First(&application).Error; err != nil {
		return nil, err
	}
	return &application, nil
}

func (g *GraduationPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.GraduationFilters) ([]*models.GraduationApplication, int64, error) {
	db := g.getDB(tx)
	var applications []*models.GraduationApplication
	var total int64

	query := db.WithContext(ctx).Model(&models.GraduationApplication{})
	query = g.helpers.ApplyGraduationFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = g.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	if err := query.
		Preload("Student").
		Preload("Student.User").
		Preload("Program").
		Order("applied_at DESC").
		Find(&applications).Error; err != nil {
		return nil, 0, err
	}

	return applications, total, nil
}

func (g *GraduationPostgreSQL) UpdateStatus(ctx context.Context, tx *gorm.DB, id uint, status models.ApplicationStatus) (*models.GraduationApplication, error) {
	db := g.getDB(tx)

	result := db.WithContext(ctx).
		Model(&models.GraduationApplication{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":            status,
			"status_updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update application status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repositories.ErrNotFound
	}

	return g.GetByID(ctx, tx, id)
}

func (g *GraduationPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return g.db
}
