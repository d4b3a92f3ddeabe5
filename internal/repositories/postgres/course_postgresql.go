package postgres

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/cache"
	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type CoursePostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewCoursePostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.CourseRepository {
	return &CoursePostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (c *CoursePostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Course, error) {
	db := c.getDB(tx)
	// Course metadata is reference data, safe to cache.
	cacheKey := fmt.Sprintf("id:%d", id)
	var course models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &course, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCourse models.Course
		if err := db.WithContext(ctx).First(&dbCourse, id).Error; err != nil {
			return nil, err
		}
		return &dbCourse, nil
	})

	return &course, err
}

func (c *CoursePostgreSQL) Prerequisites(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Course, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("prereqs:%d", courseID)
	var prereqs []*models.Course

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &prereqs, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbPrereqs []*models.Course
		err := db.WithContext(ctx).
			Joins("JOIN course_prerequisites ON course_prerequisites.prerequisite_id = courses.id").
			Where("course_prerequisites.course_id = ?", courseID).
			Find(&dbPrereqs).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get prerequisites: %w", err)
		}
		return dbPrereqs, nil
	})

	return prereqs, err
}

func (c *CoursePostgreSQL) Offerings(ctx context.Context, tx *gorm.DB, courseID uint) ([]models.SemesterType, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("offerings:%d", courseID)
	var offerings []models.SemesterType

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &offerings, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var types []models.SemesterType
		err := db.WithContext(ctx).
			Model(&models.CourseOffering{}).
			Where("course_id = ?", courseID).
			Pluck("semester_type", &types).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get offerings: %w", err)
		}
		return types, nil
	})

	return offerings, err
}

func (c *CoursePostgreSQL) CertificateOverlaps(ctx context.Context, tx *gorm.DB, courseID uint) ([]*models.Program, error) {
	db := c.getDB(tx)
	cacheKey := fmt.Sprintf("certs:%d", courseID)
	var certs []*models.Program

	err := c.cacheManager.Course.CacheOrExecute(ctx, cacheKey, &certs, cache.CourseCacheConfig.TTL, func() (interface{}, error) {
		var dbCerts []*models.Program
		err := db.WithContext(ctx).
			Model(&models.Program{}).
			Joins("JOIN course_certificates ON course_certificates.certificate_id = programs.id").
			Where("course_certificates.course_id = ?", courseID).
			Find(&dbCerts).Error
		if err != nil {
			return nil, fmt.Errorf("failed to get certificate overlaps: %w", err)
		}
		return dbCerts, nil
	})

	return certs, err
}

func (c *CoursePostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return c.db
}
