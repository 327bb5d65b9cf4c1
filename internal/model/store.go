package model

import (
	"time"

	"github.com/google/uuid"
)

// Store is a physical branch. Every inventory row and transaction is scoped
// to exactly one store — there is no ambient "current store" anywhere.
type Store struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code      string    `gorm:"uniqueIndex;not null"`
	Name      string    `gorm:"not null"`
	Address   *string
	Phone     *string
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
