// internal/domain/user/entity.go
package user

import (
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// User represents the customer identity this service snapshots onto
// invoices. Authentication itself happens upstream; the service only
// trusts the user id carried by the access token.
type User struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Email       string         `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Password    string         `gorm:"size:255" json:"-"` // Don't return in JSON
	FirstName   string         `gorm:"size:100" json:"first_name"`
	LastName    string         `gorm:"size:100" json:"last_name"`
	Phone       string         `gorm:"size:20" json:"phone"`
	IsActive    bool           `gorm:"default:true" json:"is_active"`
	IsAdmin     bool           `gorm:"default:false" json:"is_admin"`
	IsSeller    bool           `gorm:"default:false" json:"is_seller"`
	Billing     BillingAddress `gorm:"embedded;embeddedPrefix:billing_" json:"billing"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// BillingAddress is the billing block denormalized onto invoices at
// issuance time.
type BillingAddress struct {
	Address string `gorm:"size:255" json:"address"`
	ZipCode string `gorm:"size:20" json:"zip_code"`
	City    string `gorm:"size:100" json:"city"`
	Country string `gorm:"size:100" json:"country"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// GetFullName returns the user's full name
func (u *User) GetFullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Format flattens the billing block into the single address line
// invoices carry.
func (b BillingAddress) Format() string {
	return fmt.Sprintf("%s, %s, %s, %s", b.Address, b.ZipCode, b.City, b.Country)
}
