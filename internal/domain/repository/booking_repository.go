// internal/domain/repository/booking_repository.go
package repository

import (
	"context"

	"github.com/spirittours/travelcore/internal/domain/entity"
)

// BookingRepository is the booking sink: every successful dispatch emits a
// normalized Booking record through it
type BookingRepository interface {
	Save(ctx context.Context, booking *entity.Booking) error
	FindByID(ctx context.Context, id string) (*entity.Booking, error)
	UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error
}
