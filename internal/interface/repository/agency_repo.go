package repository

import (
	"context"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAgencyRepository implements the AgencyRepository interface
type GormAgencyRepository struct {
	db *gorm.DB
}

// NewGormAgencyRepository creates a new GORM agency repository
func NewGormAgencyRepository(db *gorm.DB) repository.AgencyRepository {
	return &GormAgencyRepository{
		db: db,
	}
}

// Agencies GORM model for database mapping
type Agencies struct {
	ID             uint           `gorm:"primaryKey"`
	Code           string         `gorm:"column:code;unique"`
	Name           string         `gorm:"column:name"`
	CommissionRate float64        `gorm:"column:commission_rate"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TableName overrides the default table name
func (Agencies) TableName() string {
	return "m_agencies"
}

// GetByCode finds an agency by code
func (r *GormAgencyRepository) GetByCode(ctx context.Context, code string) (*entity.Agency, error) {
	var agency Agencies
	result := r.db.WithContext(ctx).Where("code = ?", code).First(&agency)

	if result.Error != nil {
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Agency{
		ID:             agency.ID,
		Code:           agency.Code,
		Name:           agency.Name,
		CommissionRate: agency.CommissionRate,
		CreatedAt:      agency.CreatedAt,
		UpdatedAt:      agency.UpdatedAt,
		DeletedAt:      agency.DeletedAt,
	}, nil
}
