package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type DegreePlanPostgreSQL struct {
	db *gorm.DB
}

// Plan entries are read immediately after being written, so nothing here is
// cached.
func NewDegreePlanPostgreSQL(db *gorm.DB) repositories.DegreePlanRepository {
	return &DegreePlanPostgreSQL{db: db}
}

func (d *DegreePlanPostgreSQL) PlanFor(ctx context.Context, tx *gorm.DB, studentID, programID uint) ([]*models.DegreePlanEntry, error) {
	db := d.getDB(tx)
	var entries []*models.DegreePlanEntry
	err := db.WithContext(ctx).
		Where("degree_plan_entries.student_id = ? AND degree_plan_entries.program_id = ?", studentID, programID).
		Joins("LEFT JOIN semesters ON semesters.id = degree_plan_entries.semester_id").
		Order("semesters.start_date ASC NULLS LAST, degree_plan_entries.course_id ASC").
		Preload("Course").
		Preload("Course.Prerequisites").
		Preload("Semester").
		Preload("Program").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get degree plan: %w", err)
	}
	return entries, nil
}

func (d *DegreePlanPostgreSQL) StatusOf(ctx context.Context, tx *gorm.DB, studentID, courseID, programID uint) (*models.DegreePlanEntry, error) {
	db := d.getDB(tx)
	var entry models.DegreePlanEntry
	err := db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND program_id = ?", studentID, courseID, programID).
		First(&entry).Error
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// SetStatus updates the single matching row. Unplanned clears the semester;
// a scheduled status with no semester in the request keeps whatever was
// already persisted, so a scheduled row never loses its semester.
func (d *DegreePlanPostgreSQL) SetStatus(ctx context.Context, tx *gorm.DB, studentID, courseID, programID uint, status models.CourseStatus, semesterID *uint) (*models.DegreePlanEntry, error) {
	db := d.getDB(tx)

	updates := map[string]interface{}{
		"status": status,
	}
	if status == models.StatusUnplanned {
		updates["semester_id"] = nil
	} else if semesterID != nil {
		updates["semester_id"] = semesterID
	}

	result := db.WithContext(ctx).
		Model(&models.DegreePlanEntry{}).
		Where("student_id = ? AND course_id = ? AND program_id = ?", studentID, courseID, programID).
		Updates(updates)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to set course status: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, repositories.ErrNotFound
	}

	return d.StatusOf(ctx, tx, studentID, courseID, programID)
}

func (d *DegreePlanPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.db
}
