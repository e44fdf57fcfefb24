package auth

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Credential is the login record for a staff member. Directory data lives in
// the employees table; a credential only proves who is signing in.
type Credential struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:uq_credentials_email"`
	Name         string    `gorm:"type:varchar(255);not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	IsActive     bool      `gorm:"default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	DeletedAt    gorm.DeletedAt `gorm:"index"`
}

func (Credential) TableName() string {
	return "credentials"
}
