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

type ProgramPostgreSQL struct {
	db           *gorm.DB
	cacheManager *cache.CacheManager
}

func NewProgramPostgreSQL(db *gorm.DB, redisClient *redis.Client) repositories.ProgramRepository {
	return &ProgramPostgreSQL{
		db:           db,
		cacheManager: cache.NewCacheManager(redisClient),
	}
}

func (p *ProgramPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Program, error) {
	db := p.getDB(tx)
	cacheKey := fmt.Sprintf("id:%d", id)
	var program models.Program

	err := p.cacheManager.Program.CacheOrExecute(ctx, cacheKey, &program, cache.ProgramCacheConfig.TTL, func() (interface{}, error) {
		var dbProgram models.Program
		if err := db.WithContext(ctx).First(&dbProgram, id).Error; err != nil {
			return nil, err
		}
		return &dbProgram, nil
	})

	return &program, err
}

func (p *ProgramPostgreSQL) TotalRequiredCredits(ctx context.Context, tx *gorm.DB, programID uint) (int, error) {
	db := p.getDB(tx)
	cacheKey := fmt.Sprintf("credits:%d", programID)
	var total int

	err := p.cacheManager.Program.CacheOrExecute(ctx, cacheKey, &total, cache.ProgramCacheConfig.TTL, func() (interface{}, error) {
		// The tree double-counts if parents aggregate their children, so only
		// leaf requirements contribute to the total.
		var sum *int
		err := db.WithContext(ctx).
			Model(&models.Requirement{}).
			Select("SUM(required_credits)").
			Where("program_id = ?", programID).
			Where("id NOT IN (?)", db.Model(&models.Requirement{}).
				Select("parent_id").
				Where("program_id = ? AND parent_id IS NOT NULL", programID)).
			Scan(&sum).Error
		if err != nil {
			return nil, fmt.Errorf("failed to total required credits: %w", err)
		}
		if sum == nil {
			return 0, nil
		}
		return *sum, nil
	})

	return total, err
}

func (p *ProgramPostgreSQL) Requirements(ctx context.Context, tx *gorm.DB, programID uint) ([]*models.Requirement, error) {
	db := p.getDB(tx)
	var requirements []*models.Requirement
	err := db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("parent_id ASC NULLS FIRST, id ASC").
		Find(&requirements).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get requirements: %w", err)
	}
	return requirements, nil
}

func (p *ProgramPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return p.db
}
