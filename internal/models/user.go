package models

import (
	"strings"
	"time"

	"gorm.io/gorm"
)

// RoleName is the closed set of roles known to the service. Roles are resolved
// once at the request boundary and never threaded through as free-form strings.
type RoleName string

const (
	RoleAdmin      RoleName = "admin"
	RoleAdvisor    RoleName = "advisor"
	RoleAccounting RoleName = "accounting"
	RoleStudent    RoleName = "student"
)

// ParseRoleName maps a stored role string to the closed enumeration.
// Unknown strings yield ok == false rather than a synthetic role.
func ParseRoleName(s string) (RoleName, bool) {
	switch RoleName(strings.ToLower(strings.TrimSpace(s))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleAdvisor:
		return RoleAdvisor, true
	case RoleAccounting:
		return RoleAccounting, true
	case RoleStudent:
		return RoleStudent, true
	default:
		return "", false
	}
}

// RoleSet holds the roles loaded for one request.
type RoleSet []RoleName

func (rs RoleSet) Has(role RoleName) bool {
	for _, r := range rs {
		if r == role {
			return true
		}
	}
	return false
}

type Role struct {
	ID   uint     `json:"id" gorm:"primaryKey"`
	Name RoleName `json:"name" gorm:"uniqueIndex;not null;size:32"`
}

func (Role) TableName() string {
	return "roles"
}

type User struct {
	ID       string  `json:"id" gorm:"primaryKey;size:255"`
	FullName string  `json:"full_name" gorm:"not null;size:100"`
	Email    string  `json:"email" gorm:"uniqueIndex;not null;size:255"`
	Phone    *string `json:"phone" gorm:"size:32"`

	// Roles are many-to-many; a user may be both advisor and admin.
	Roles []Role `json:"roles" gorm:"many2many:user_roles;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (User) TableName() string {
	return "users"
}

// RoleNames returns the loaded role assignments as a RoleSet.
func (u *User) RoleNames() RoleSet {
	roles := make(RoleSet, 0, len(u.Roles))
	for _, r := range u.Roles {
		if name, ok := ParseRoleName(string(r.Name)); ok {
			roles = append(roles, name)
		}
	}
	return roles
}
