package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User roles. The system role is reserved for the schedule trigger so that
// autonomously generated reports carry an attributable actor.
const (
	RoleOperator = "operator"
	RoleManager  = "manager"
	RoleSystem   = "system"
)

// SystemUserEmail identifies the built-in scheduler actor.
const SystemUserEmail = "scheduler@system.local"

// User is a POS operator or back-office manager.
type User struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	FirstName string         `gorm:"size:255;not null" json:"first_name"`
	LastName  string         `gorm:"size:255;not null" json:"last_name"`
	Email     string         `gorm:"size:255;unique;not null" json:"email"`
	Password  string         `gorm:"size:255" json:"-"`
	Role      string         `gorm:"size:32;not null;default:operator" json:"role"`
	StoreID   *uuid.UUID     `gorm:"type:uuid;index" json:"store_id,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// BeforeCreate generates a UUID before creating a new user
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the User model
func (User) TableName() string {
	return "users"
}

// CanApprove reports whether the user may sign off variances and corrections.
func (u *User) CanApprove() bool {
	return u.Role == RoleManager
}
