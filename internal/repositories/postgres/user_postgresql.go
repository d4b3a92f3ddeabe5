package postgres

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/CAPS-2026/degreeplan-service/internal/models"
	"github.com/CAPS-2026/degreeplan-service/internal/repositories"
)

type UserPostgreSQL struct {
	db      *gorm.DB
	helpers *SharedHelpers
}

func NewUserPostgreSQL(db *gorm.DB) repositories.UserRepository {
	return &UserPostgreSQL{
		db:      db,
		helpers: NewSharedHelpers(db),
	}
}

func (u *UserPostgreSQL) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).Preload("Roles").First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	db := u.getDB(tx)
	var user models.User
	if err := db.WithContext(ctx).Preload("Roles").First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (u *UserPostgreSQL) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	db := u.getDB(tx)
	var users []*models.User
	var total int64

	query := db.WithContext(ctx).Model(&models.User{})
	query = u.helpers.ApplyUserFilters(query, filters)

	if err := query.Distinct("users.id").Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = u.helpers.ApplyPagination(query, filters.Limit, filters.Offset)
	if err := query.Preload("Roles").Order("users.full_name ASC").Find(&users).Error; err != nil {
		return nil, 0, err
	}

	return users, total, nil
}

func (u *UserPostgreSQL) ListByRole(ctx context.Context, tx *gorm.DB, role models.RoleName) ([]*models.User, error) {
	db := u.getDB(tx)
	var users []*models.User
	err := db.WithContext(ctx).
		Joins("JOIN user_roles ON user_roles.user_id = users.id").
		Joins("JOIN roles ON roles.id = user_roles.role_id").
		Where("roles.name = ?", role).
		Find(&users).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role: %w", err)
	}
	return users, nil
}

// GetRoles loads role assignments fresh on every call; role changes take
// effect on the next request with no propagation delay.
func (u *UserPostgreSQL) GetRoles(ctx context.Context, tx *gorm.DB, userID string) (models.RoleSet, error) {
	db := u.getDB(tx)
	var names []string
	err := db.WithContext(ctx).
		Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get roles: %w", err)
	}

	roles := make(models.RoleSet, 0, len(names))
	for _, n := range names {
		if role, ok := models.ParseRoleName(n); ok {
			roles = append(roles, role)
		}
	}
	return roles, nil
}

func (u *UserPostgreSQL) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	db := u.getDB(tx)
	return db.WithContext(ctx).Create(user).Error
}

func (u *UserPostgreSQL) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	db := u.getDB(tx)
	// Role assignments cascade via the join-table constraint.
	return db.WithContext(ctx).Delete(&models.User{}, "id = ?", id).Error
}

func (u *UserPostgreSQL) AssignRole(ctx context.Context, tx *gorm.DB, userID string, roleName models.RoleName) error {
	db := u.getDB(tx)

	var role models.Role
	if err := db.WithContext(ctx).First(&role, "name = ?", roleName).Error; err != nil {
		return fmt.Errorf("failed to resolve role %q: %w", roleName, err)
	}

	user := models.User{ID: userID}
	return db.WithContext(ctx).Model(&user).Association("Roles").Append(&role)
}

func (u *UserPostgreSQL) RemoveRole(ctx context.Context, tx *gorm.DB, userID string, roleName models.RoleName) error {
	db := u.getDB(tx)

	var role models.Role
	if err := db.WithContext(ctx).First(&role, "name = ?", roleName).Error; err != nil {
		return fmt.Errorf("failed to resolve role %q: %w", roleName, err)
	}

	user := models.User{ID: userID}
	return db.WithContext(ctx).Model(&user).Association("Roles").Delete(&role)
}

func (u *UserPostgreSQL) getDB(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return u.db
}
