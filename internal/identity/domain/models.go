// Package domain contains identity models and role derivation rules.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// Role governs CRUD scope across the API.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleStaff    Role = "staff"
	RoleCustomer Role = "customer"
)

// Valid reports whether the role is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleStaff, RoleCustomer:
		return true
	default:
		return false
	}
}

// Group names that carry role meaning.
const (
	GroupAdmin = "admin"
	GroupStaff = "staff"
)

type User struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Username     string       `gorm:"uniqueIndex;not null" json:"username"`
	Email        string       `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string       `gorm:"not null" json:"-"`
	Role         Role         `gorm:"type:text" json:"role,omitempty"`
	Superuser    bool         `gorm:"not null;default:false" json:"-"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (User) TableName() string { return "users" }

type Group struct {
	ID   snowflake.ID `gorm:"primaryKey" json:"id"`
	Name string       `gorm:"uniqueIndex;not null" json:"name"`
}

func (Group) TableName() string { return "groups" }

type UserGroup struct {
	UserID  snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	GroupID snowflake.ID `gorm:"primaryKey;autoIncrement:false" json:"group_id"`
}

func (UserGroup) TableName() string { return "user_groups" }

type UserProfile struct {
	ID      snowflake.ID `gorm:"primaryKey" json:"id"`
	UserID  snowflake.ID `gorm:"uniqueIndex;not null" json:"user_id"`
	Avatar  string       `gorm:"type:text" json:"avatar,omitempty"`
	Phone   string       `json:"phone,omitempty"`
	Address string       `gorm:"type:text" json:"address,omitempty"`
	// Preferences holds free-form UI settings the client round-trips.
	Preferences datatypes.JSON `json:"preferences,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (UserProfile) TableName() string { return "user_profiles" }

// ResolveRole derives the single effective role for a user. Priority:
// explicit stored role, then the superuser flag, then admin/staff group
// membership, then customer. Pure function of the inputs; callers must
// re-evaluate per request because group membership can change.
func ResolveRole(user User, groupNames []string) Role {
	if user.Role.Valid() {
		return user.Role
	}
	if user.Superuser {
		return RoleAdmin
	}
	groups := make(map[string]struct{}, len(groupNames))
	for _, name := range groupNames {
		groups[name] = struct{}{}
	}
	if _, ok := groups[GroupAdmin]; ok {
		return RoleAdmin
	}
	if _, ok := groups[GroupStaff]; ok {
		return RoleStaff
	}
	return RoleCustomer
}
