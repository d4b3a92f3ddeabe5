package postgres

import (
	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

// SharedHelpers contains common database query building
type SharedHelpers struct {
	db *gorm.DB
}

func NewSharedHelpers(db *gorm.DB) *SharedHelpers {
	return &SharedHelpers{db: db}
}

// ApplyUserFilters applies common filters to user queries
func (h *SharedHelpers) ApplyUserFilters(query *gorm.DB, filters repositories.UserFilters) *gorm.DB {
	if filters.Role != nil {
		query = query.
			Joins("JOIN user_roles ON user_roles.user_id = users.id").
			Joins("JOIN roles ON roles.id = user_roles.role_id").
			Where("roles.name = ?", *filters.Role)
	}
	if filters.Query != "" {
		like := "%" + filters.Query + "%"
		query = query.Where("users.full_name ILIKE ? OR users.email ILIKE ?", like, like)
	}
	return query
}

// ApplyGraduationFilters applies common filters to graduation application queries
func (h *SharedHelpers) ApplyGraduationFilters(query *gorm.DB, filters repositories.GraduationFilters) *gorm.DB {
	if filters.Status != nil {
		query = query.Where("status = ?", *filters.Status)
	}
	if filters.ProgramID != nil {
		query = query.Where("program_id = ?", *filters.ProgramID)
	}
	if len(filters.StudentIDs) > 0 {
		query = query.Where("student_id IN ?", filters.StudentIDs)
	}
	return query
}

// ApplyPagination applies limit/offset with sane defaults.
func (h *SharedHelpers) ApplyPagination(query *gorm.DB, limit, offset int) *gorm.DB {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	return query.Limit(limit).Offset(offset)
}
