package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type StudentPostgreSQL struct {
	db *gorm.DB
}

func NewStudentPostgreSQL(db *gorm.DB) repositories.StudentRepository {
	return &StudentPostgreSQL{db: db}
}

func (s *StudentPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Student, error) {
	db := s.getDB(tx)
	var student models.Student
	if err := db.WithContext(ctx).Preload("Program").First(&student, id).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetBySchoolID(ctx context.Context, tx *gorm.DB, schoolID string) (*models.Student, error) {
	db := s.getDB(tx)
	var student models.Student
	if err := db.WithContext(ctx).
		Preload("Program").
		First(&student, "school_student_id = ?", schoolID).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) GetByUserID(ctx context.Context, tx *gorm.DB, userID string) (*models.Student, error) {
	db := s.getDB(tx)
	var student models.Student
	if err := db.WithContext(ctx).First(&student, "user_id = ?", userID).Error; err != nil {
		return nil, err
	}
	return &student, nil
}

func (s *StudentPostgreSQL) HasAdvisor(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) (bool, error) {
	db := s.getDB(tx)
	var count int64
	err := db.WithContext(ctx).
		Model(&models.AdvisingRelation{}).
		Where("advisor_user_id = ? AND student_id = ?", advisorUserID, studentID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check advising relation: %w", err)
	}
	return count > 0, nil
}

func (s *StudentPostgreSQL) AdvisorsOf(ctx context.Context, tx *gorm.DB, studentID uint) ([]*models.User, error) {
	db := s.getDB(tx)
	var advisors []*models.User
	err := db.WithContext(ctx).
		Model(&models.User{}).
		Joins("JOIN advisor_students ON advisor_students.advisor_user_id = users.id").
		Where("advisor_students.student_id = ?", studentID).
		Find(&advisors).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get advisors of student: %w", err)
	}
	return advisors, nil
}

// AdviseeIDs is the batched "advisees of user X" query used when filtering
// lists, instead of a per-row relation check.
func (s *StudentPostgreSQL) AdviseeIDs(ctx context.Context, tx *gorm.DB, advisorUserID string) ([]uint, error) {
	db := s.getDB(tx)
	var ids []uint
	err := db.WithContext(ctx).
		Model(&models.AdvisingRelation{}).
		Where("advisor_user_id = ?", advisorUserID).
		Pluck("student_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get advisee ids: %w", err)
	}
	return ids, nil
}

func (s *StudentPostgreSQL) CreateAdvisingRelation(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) error {
	db := s.getDB(tx)
	relation := models.AdvisingRelation{
		AdvisorUserID: advisorUserID,
		StudentID:     studentID,
	}
	return db.WithContext(ctx).Create(&relation).Error
}

func (s *StudentPostgreSQL) DeleteAdvisingRelation(ctx context.Context, tx *gorm.DB, advisorUserID string, studentID uint) error {
	db := s.getDB(tx)
	return db.WithContext(ctx).
		Where("advisor_user_id = ? AND student_id = ?", advisorUserID, studentID).
		Delete(&models.AdvisingRelation{}).Error
}

func (s *StudentPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
