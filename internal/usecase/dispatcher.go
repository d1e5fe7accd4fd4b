package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/internal/domain/repository"
	"github.com/spirittours/travelcore/pkg/logger"
	"github.com/spirittours/travelcore/pkg/metrics"
)

// Dispatcher hands a chosen offer to its provider for booking and normalizes
// the resulting reservation record, including commission bookkeeping. Booking
// errors always propagate; retries are the caller's responsibility and must
// reuse the adapter's idempotency key support.
type Dispatcher struct {
	adapters          map[string]provider.Adapter
	bookings          repository.BookingRepository
	agencies          repository.AgencyRepository
	defaultCommission float64
	logger            logger.Logger
	metrics           *metrics.Metrics
}

// NewDispatcher creates a new booking dispatcher
func NewDispatcher(
	adapters []provider.Adapter,
	bookings repository.BookingRepository,
	agencies repository.AgencyRepository,
	defaultCommission float64,
	log logger.Logger,
	m *metrics.Metrics,
) *Dispatcher {
	byName := make(map[string]provider.Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Dispatcher{
		adapters:          byName,
		bookings:          bookings,
		agencies:          agencies,
		defaultCommission: defaultCommission,
		logger:            log,
		metrics:           m,
	}
}

// Book re-confirms availability, delegates the reservation to the provider
// adapter, applies agency commission when attributed, and emits the record to
// the booking sink. An unconfigured provider is rejected before any network
// call. An unavailable item is rejected with ErrAvailabilityChanged; the
// caller should re-search instead of retrying the same item.
func (d *Dispatcher) Book(ctx context.Context, providerName, itemID string, party provider.PartyInfo, agencyID string) (*entity.Booking, error) {
	adapter, ok := d.adapters[providerName]
	if !ok {
		return nil, provider.NewError(providerName, provider.ErrProviderNotConfigured, "")
	}

	available, err := adapter.CheckAvailability(ctx, itemID)
	if err != nil {
		d.metrics.BookingFailures.Inc()
		return nil, err
	}
	if !available {
		d.metrics.BookingFailures.Inc()
		return nil, provider.NewError(providerName, provider.ErrAvailabilityChanged, "item no longer available")
	}

	booking, err := adapter.Book(ctx, itemID, party)
	if err != nil {
		d.metrics.BookingFailures.Inc()
		return nil, err
	}

	now := time.Now().UTC()
	if booking.ID == "" {
		booking.ID = uuid.New().String()
	}
	if booking.Provider == "" {
		booking.Provider = providerName
	}
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	if agencyID != "" {
		booking.ApplyCommission(agencyID, d.commissionRate(ctx, agencyID))
	} else {
		booking.CommissionAmount = 0
		booking.NetAmount = booking.TotalAmount
	}

	if err := d.bookings.Save(ctx, booking); err != nil {
		// the reservation already exists at the provider; do not void it
		// because the sink write failed
		d.logger.Error("failed to persist booking", "bookingId", booking.ID,
			"provider", providerName, "error", err)
	}

	d.metrics.BookingsTotal.Inc()
	d.logger.Info("booking dispatched", "bookingId", booking.ID, "provider", providerName,
		"status", booking.Status, "total", booking.TotalAmount)
	return booking, nil
}

// Cancel applies the confirmed -> cancelled transition to a persisted booking.
// Records are never deleted.
func (d *Dispatcher) Cancel(ctx context.Context, bookingID string) (*entity.Booking, error) {
	booking, err := d.bookings.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if err := booking.TransitionTo(entity.StatusCancelled); err != nil {
		return nil, err
	}
	if err := d.bookings.UpdateStatus(ctx, booking.ID, entity.StatusCancelled); err != nil {
		return nil, err
	}
	d.logger.Info("booking cancelled", "bookingId", booking.ID, "provider", booking.Provider)
	return booking, nil
}

// Details fetches the full detail record for one previously returned item
func (d *Dispatcher) Details(ctx context.Context, providerName, itemID string) (*entity.ItemDetails, error) {
	adapter, ok := d.adapters[providerName]
	if !ok {
		return nil, provider.NewError(providerName, provider.ErrProviderNotConfigured, "")
	}
	return adapter.GetDetails(ctx, itemID)
}

func (d *Dispatcher) commissionRate(ctx context.Context, agencyID string) float64 {
	rate := d.defaultCommission
	if d.agencies == nil {
		return rate
	}
	agency, err := d.agencies.GetByCode(ctx, agencyID)
	if err != nil {
		d.logger.Warn("agency lookup failed, using default commission rate",
			"agencyId", agencyID, "error", err)
		return rate
	}
	if agency.CommissionRate > 0 {
		rate = agency.CommissionRate
	}
	return rate
}
