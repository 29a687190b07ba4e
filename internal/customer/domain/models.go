package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// CustomerStatus marks whether a customer is actively shipping.
type CustomerStatus string

const (
	StatusActive  CustomerStatus = "Active"
	StatusDormant CustomerStatus = "Dormant"
)

func (s CustomerStatus) Valid() bool {
	return s == StatusActive || s == StatusDormant
}

// Customer is the party parcels and invoices belong to. Email doubles
// as the join key for matching a customer to an API user account.
type Customer struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null" json:"name"`
	Email     string         `gorm:"not null;index" json:"email"`
	Phone     string         `json:"phone,omitempty"`
	Address   string         `gorm:"type:text" json:"address,omitempty"`
	Status    CustomerStatus `gorm:"not null;default:Active" json:"status"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Customer) TableName() string { return "customers" }
