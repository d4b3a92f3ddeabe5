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

type SemesterPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewSemesterPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.SemesterRepository {
	return &SemesterPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (s *SemesterPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Semester, error) {
	db := s.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var semester models.Semester

	err := s.cacheManager.Semester.CacheOrExecute(ctx, cacheKey, &semester, cache.SemesterCacheConfig.TTL, func() (interface{}, error) {
		var dbSemester models.Semester
		if err := db.WithContext(ctx).First(&dbSemester, id).Error; err != nil {
			return nil, err
		}
		return &dbSemester, nil
	})

	return &semester, err
}

func (s *SemesterPostgreSQL) List(ctx context.Context, tx *gorm.DB) ([]*models.Semester, error) {
	db := s.getDB(tx)
	var semesters []*models.Semester
	err := db.WithContext(ctx).Order("start_date ASC").Find(&semesters).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list semesters: %w", err)
	}
	return semesters, nil
}

func (s *SemesterPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.db
}
