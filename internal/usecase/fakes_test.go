package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/internal/infrastructure/cache"
	"github.com/spirittours/travelcore/pkg/logger"
	"github.com/spirittours/travelcore/pkg/metrics"
)

func newTestMetrics() *metrics.Metrics {
	return metrics.NewMetrics("test", prometheus.NewRegistry())
}

func newTestCache() *cache.Memory {
	return cache.NewMemory(5 * time.Second)
}

// fakeAdapter is a scriptable provider.Adapter for orchestration and dispatch
// tests. searchCalls counts Search invocations for at-most-once assertions.
type fakeAdapter struct {
	name        string
	services    []entity.ServiceType
	searchFn    func(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error)
	detailsFn   func(ctx context.Context, itemID string) (*entity.ItemDetails, error)
	availFn     func(ctx context.Context, itemID string) (bool, error)
	bookFn      func(ctx context.Context, itemID string, party provider.PartyInfo) (*entity.Booking, error)
	searchCalls int32
}

func (f *fakeAdapter) Name() string { return f.name }

func (f *fakeAdapter) Supports(service entity.ServiceType) bool {
	for _, s := range f.services {
		if s == service {
			return true
		}
	}
	return false
}

func (f *fakeAdapter) Search(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error) {
	atomic.AddInt32(&f.searchCalls, 1)
	if f.searchFn != nil {
		return f.searchFn(ctx, req)
	}
	return entity.NewSearchResult(f.name, req.Service, req.Fingerprint(), nil), nil
}

func (f *fakeAdapter) GetDetails(ctx context.Context, itemID string) (*entity.ItemDetails, error) {
	if f.detailsFn != nil {
		return f.detailsFn(ctx, itemID)
	}
	return &entity.ItemDetails{Provider: f.name, ItemID: itemID}, nil
}

func (f *fakeAdapter) CheckAvailability(ctx context.Context, itemID string) (bool, error) {
	if f.availFn != nil {
		return f.availFn(ctx, itemID)
	}
	return true, nil
}

func (f *fakeAdapter) Book(ctx context.Context, itemID string, party provider.PartyInfo) (*entity.Booking, error) {
	if f.bookFn != nil {
		return f.bookFn(ctx, itemID, party)
	}
	return &entity.Booking{
		ConfirmationCode: "CONF-" + itemID,
		Status:           entity.StatusConfirmed,
		ItemID:           itemID,
		TotalAmount:      100,
		Currency:         "EUR",
	}, nil
}

// hotelAdapter returns a fake that yields fixed-price hotel items
func hotelAdapter(name string, prices ...float64) *fakeAdapter {
	return &fakeAdapter{
		name:     name,
		services: []entity.ServiceType{entity.ServiceHotel},
		searchFn: func(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error) {
			items := make([]entity.ResultItem, 0, len(prices))
			for i, p := range prices {
				items = append(items, entity.ResultItem{
					ItemID:   name + "-" + string(rune('a'+i)),
					Service:  entity.ServiceHotel,
					Price:    p,
					Currency: "EUR",
					Hotel:    &entity.HotelOffer{HotelName: name, City: req.Destination, Nights: 4},
				})
			}
			return entity.NewSearchResult(name, entity.ServiceHotel, req.Fingerprint(), items), nil
		},
	}
}

var errSinkDown = errors.New("sink down")

// fakeBookingRepo is an in-memory booking sink
type fakeBookingRepo struct {
	saved   map[string]*entity.Booking
	saveErr error
}

func newFakeBookingRepo() *fakeBookingRepo {
	return &fakeBookingRepo{saved: make(map[string]*entity.Booking)}
}

func (f *fakeBookingRepo) Save(ctx context.Context, booking *entity.Booking) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	copied := *booking
	f.saved[booking.ID] = &copied
	return nil
}

func (f *fakeBookingRepo) FindByID(ctx context.Context, id string) (*entity.Booking, error) {
	b, ok := f.saved[id]
	if !ok {
		return nil, errors.New("booking not found")
	}
	copied := *b
	return &copied, nil
}

func (f *fakeBookingRepo) UpdateStatus(ctx context.Context, id string, status entity.BookingStatus) error {
	b, ok := f.saved[id]
	if !ok {
		return errors.New("booking not found")
	}
	b.Status = status
	return nil
}

// fakeAgencyRepo serves a fixed agency table
type fakeAgencyRepo struct {
	agencies map[string]*entity.Agency
}

func (f *fakeAgencyRepo) GetByCode(ctx context.Context, code string) (*entity.Agency, error) {
	a, ok := f.agencies[code]
	if !ok {
		return nil, errors.New("agency not found")
	}
	return a, nil
}

func nopLogger() logger.Logger { return logger.NewNop() }
