// internal/domain/entity/agency.go
package entity

import (
	"time"

	"gorm.io/gorm"
)

// Agency represents a travel agency entitled to booking commission
type Agency struct {
	ID             uint
	Code           string
	Name           string
	CommissionRate float64 // fraction of the booking total, 0 means use the configured default
	CreatedAt      time.Time
	UpdatedAt      time.Time
	DeletedAt      gorm.DeletedAt
}
