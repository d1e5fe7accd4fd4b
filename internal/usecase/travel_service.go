package usecase

import (
	"context"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/pkg/logger"
)

// SearchOutput pairs an aggregate with its selected best offer
type SearchOutput struct {
	Aggregate *entity.AggregateResult `json:"aggregate"`
	BestPrice *BestOffer              `json:"best_price"`
}

// TravelService is the public face of the aggregation core: category-specific
// search entry points plus booking dispatch, consumed by the transport layer
type TravelService struct {
	orchestrator *Orchestrator
	dispatcher   *Dispatcher
	logger       logger.Logger
}

// NewTravelService creates a new travel service
func NewTravelService(orchestrator *Orchestrator, dispatcher *Dispatcher, log logger.Logger) *TravelService {
	return &TravelService{
		orchestrator: orchestrator,
		dispatcher:   dispatcher,
		logger:       log,
	}
}

// SearchFlights searches flight inventory across the selected providers
func (s *TravelService) SearchFlights(ctx context.Context, origin, destination string, depart, returnDate time.Time, party entity.Party, providerFilter []string) (*SearchOutput, error) {
	req := &entity.SearchRequest{
		Service:     entity.ServiceFlight,
		Origin:      origin,
		Destination: destination,
		DateFrom:    depart,
		DateTo:      returnDate,
		Party:       party,
	}
	return s.search(ctx, req, providerFilter)
}

// SearchHotels searches hotel inventory for a destination and stay window
func (s *TravelService) SearchHotels(ctx context.Context, destination string, checkIn, checkOut time.Time, party entity.Party, providerFilter []string) (*SearchOutput, error) {
	req := &entity.SearchRequest{
		Service:     entity.ServiceHotel,
		Destination: destination,
		DateFrom:    checkIn,
		DateTo:      checkOut,
		Party:       party,
	}
	return s.search(ctx, req, providerFilter)
}

// SearchCars searches car rental inventory for a pickup location and window
func (s *TravelService) SearchCars(ctx context.Context, location string, pickup, dropoff time.Time, party entity.Party, providerFilter []string) (*SearchOutput, error) {
	req := &entity.SearchRequest{
		Service:     entity.ServiceCar,
		Destination: location,
		DateFrom:    pickup,
		DateTo:      dropoff,
		Party:       party,
	}
	return s.search(ctx, req, providerFilter)
}

func (s *TravelService) search(ctx context.Context, req *entity.SearchRequest, providerFilter []string) (*SearchOutput, error) {
	agg, err := s.orchestrator.SearchAll(ctx, req, providerFilter)
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Aggregate: agg, BestPrice: BestPrice(agg)}, nil
}

// BookService books one previously returned item through its provider
func (s *TravelService) BookService(ctx context.Context, providerName, itemID string, party provider.PartyInfo, agencyID string) (*entity.Booking, error) {
	return s.dispatcher.Book(ctx, providerName, itemID, party, agencyID)
}

// CancelBooking transitions a confirmed booking to cancelled
func (s *TravelService) CancelBooking(ctx context.Context, bookingID string) (*entity.Booking, error) {
	return s.dispatcher.Cancel(ctx, bookingID)
}

// ItemDetails fetches full details for one previously returned item
func (s *TravelService) ItemDetails(ctx context.Context, providerName, itemID string) (*entity.ItemDetails, error) {
	return s.dispatcher.Details(ctx, providerName, itemID)
}
