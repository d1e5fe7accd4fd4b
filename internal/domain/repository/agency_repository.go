// internal/domain/repository/agency_repository.go
package repository

import (
	"context"

	"github.com/spirittours/travelcore/internal/domain/entity"
)

// AgencyRepository resolves agency attribution for commission bookkeeping
type AgencyRepository interface {
	GetByCode(ctx context.Context, code string) (*entity.Agency, error)
}
