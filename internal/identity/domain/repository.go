package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, user *User) error
	InsertProfile(ctx context.Context, db *gorm.DB, profile *UserProfile) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	FindProfile(ctx context.Context, db *gorm.DB, userID snowflake.ID) (*UserProfile, error)
	GroupNames(ctx context.Context, db *gorm.DB, userID snowflake.ID) ([]string, error)
	CountUsers(ctx context.Context, db *gorm.DB) (int64, error)
}
