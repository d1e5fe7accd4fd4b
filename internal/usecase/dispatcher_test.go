package usecase

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
)

func testParty() provider.PartyInfo {
	return provider.PartyInfo{
		Passengers:   []entity.Passenger{{FirstName: "Ada", LastName: "Lovelace", Type: "adult"}},
		ContactEmail: "ada@example.com",
	}
}

func TestBookConfirmsAndPersists(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha", services: []entity.ServiceType{entity.ServiceHotel}}
	sink := newFakeBookingRepo()
	d := NewDispatcher([]provider.Adapter{adapter}, sink, nil, 0.10, nopLogger(), newTestMetrics())

	booking, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "")
	if err != nil {
		t.Fatalf("Book() = %v", err)
	}
	if booking.Status != entity.StatusConfirmed {
		t.Fatalf("Status = %s, want confirmed", booking.Status)
	}
	if booking.ID == "" {
		t.Fatal("dispatcher must assign a booking identifier")
	}
	if booking.Provider != "alpha" {
		t.Fatalf("Provider = %q, want alpha", booking.Provider)
	}
	if _, ok := sink.saved[booking.ID]; !ok {
		t.Fatal("booking must be persisted to the sink")
	}
}

func TestBookWithoutAgencyHasNoCommission(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha"}
	d := NewDispatcher([]provider.Adapter{adapter}, newFakeBookingRepo(), nil, 0.10, nopLogger(), newTestMetrics())

	booking, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "")
	if err != nil {
		t.Fatalf("Book() = %v", err)
	}
	if booking.CommissionAmount != 0 {
		t.Fatalf("CommissionAmount = %v, want 0", booking.CommissionAmount)
	}
	if booking.NetAmount != booking.TotalAmount {
		t.Fatalf("NetAmount = %v, want total %v", booking.NetAmount, booking.TotalAmount)
	}
}

func TestBookAppliesDefaultCommission(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha"}
	d := NewDispatcher([]provider.Adapter{adapter}, newFakeBookingRepo(), nil, 0.10, nopLogger(), newTestMetrics())

	booking, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "AG-1")
	if err != nil {
		t.Fatalf("Book() = %v", err)
	}
	if booking.AgencyID != "AG-1" {
		t.Fatalf("AgencyID = %q", booking.AgencyID)
	}
	if booking.CommissionAmount != 10.0 { // 100 * 0.10
		t.Fatalf("CommissionAmount = %v, want 10", booking.CommissionAmount)
	}
	if booking.NetAmount != 90.0 {
		t.Fatalf("NetAmount = %v, want 90", booking.NetAmount)
	}
}

func TestBookAgencyRateOverridesDefault(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha"}
	agencies := &fakeAgencyRepo{agencies: map[string]*entity.Agency{
		"AG-2": {Code: "AG-2", CommissionRate: 0.15},
	}}
	d := NewDispatcher([]provider.Adapter{adapter}, newFakeBookingRepo(), agencies, 0.10, nopLogger(), newTestMetrics())

	booking, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "AG-2")
	if err != nil {
		t.Fatalf("Book() = %v", err)
	}
	if booking.CommissionAmount != 15.0 {
		t.Fatalf("CommissionAmount = %v, want 15", booking.CommissionAmount)
	}
}

func TestBookUnknownAgencyFallsBackToDefault(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha"}
	agencies := &fakeAgencyRepo{agencies: map[string]*entity.Agency{}}
	d := NewDispatcher([]provider.Adapter{adapter}, newFakeBookingRepo(), agencies, 0.10, nopLogger(), newTestMetrics())

	booking, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "AG-MISSING")
	if err != nil {
		t.Fatalf("Book() = %v", err)
	}
	if booking.CommissionAmount != 10.0 {
		t.Fatalf("CommissionAmount = %v, want default 10", booking.CommissionAmount)
	}
}

func TestBookUnconfiguredProviderNoNetworkCall(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha"}
	d := NewDispatcher([]provider.Adapter{adapter}, newFakeBookingRepo(), nil, 0.10, nopLogger(), newTestMetrics())

	_, err := d.Book(context.Background(), "ghost", "item-1", testParty(), "")
	if !errors.Is(err, provider.ErrProviderNotConfigured) {
		t.Fatalf("err = %v, want ErrProviderNotConfigured", err)
	}
	if atomic.LoadInt32(&adapter.searchCalls) != 0 {
		t.Fatal("no adapter may be contacted for an unknown provider")
	}
}

func TestBookRejectsWhenAvailabilityChanged(t *testing.T) {
	adapter := &fakeAdapter{
		name:    "alpha",
		availFn: func(ctx context.Context, itemID string) (bool, error) { return false, nil },
		bookFn: func(ctx context.Context, itemID string, party provider.PartyInfo) (*entity.Booking, error) {
			t.Fatal("Book must not be attempted for an unavailable item")
			return nil, nil
		},
	}
	d := NewDispatcher([]provider.Adapter{adapter}, newFakeBookingRepo(), nil, 0.10, nopLogger(), newTestMetrics())

	_, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "")
	if !errors.Is(err, provider.ErrAvailabilityChanged) {
		t.Fatalf("err = %v, want ErrAvailabilityChanged", err)
	}
}

func TestBookPropagatesRejection(t *testing.T) {
	adapter := &fakeAdapter{
		name: "alpha",
		bookFn: func(ctx context.Context, itemID string, party provider.PartyInfo) (*entity.Booking, error) {
			return nil, provider.NewError("alpha", provider.ErrBookingRejected, "sold out")
		},
	}
	d := NewDispatcher([]provider.Adapter{adapter}, newFakeBookingRepo(), nil, 0.10, nopLogger(), newTestMetrics())

	_, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "")
	if !errors.Is(err, provider.ErrBookingRejected) {
		t.Fatalf("err = %v, want ErrBookingRejected", err)
	}
}

func TestBookSurvivesSinkFailure(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha"}
	sink := newFakeBookingRepo()
	sink.saveErr = errSinkDown
	d := NewDispatcher([]provider.Adapter{adapter}, sink, nil, 0.10, nopLogger(), newTestMetrics())

	// the reservation exists at the provider even when the sink write fails
	booking, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "")
	if err != nil {
		t.Fatalf("Book() = %v, sink failure must not void the reservation", err)
	}
	if booking.ConfirmationCode == "" {
		t.Fatal("booking must still carry the provider confirmation")
	}
}

func TestCancelConfirmedBooking(t *testing.T) {
	adapter := &fakeAdapter{name: "alpha"}
	sink := newFakeBookingRepo()
	d := NewDispatcher([]provider.Adapter{adapter}, sink, nil, 0.10, nopLogger(), newTestMetrics())

	booking, err := d.Book(context.Background(), "alpha", "item-1", testParty(), "")
	if err != nil {
		t.Fatalf("Book() = %v", err)
	}

	cancelled, err := d.Cancel(context.Background(), booking.ID)
	if err != nil {
		t.Fatalf("Cancel() = %v", err)
	}
	if cancelled.Status != entity.StatusCancelled {
		t.Fatalf("Status = %s, want cancelled", cancelled.Status)
	}
	if sink.saved[booking.ID].Status != entity.StatusCancelled {
		t.Fatal("persisted record must reflect the cancellation")
	}
}

func TestCancelRejectsIllegalTransition(t *testing.T) {
	sink := newFakeBookingRepo()
	sink.saved["b1"] = &entity.Booking{ID: "b1", Status: entity.StatusFailed}
	d := NewDispatcher(nil, sink, nil, 0.10, nopLogger(), newTestMetrics())

	if _, err := d.Cancel(context.Background(), "b1"); err == nil {
		t.Fatal("cancelling a failed booking must be rejected")
	}
}

func TestDetailsUnknownProvider(t *testing.T) {
	d := NewDispatcher(nil, newFakeBookingRepo(), nil, 0.10, nopLogger(), newTestMetrics())
	if _, err := d.Details(context.Background(), "ghost", "item-1"); !errors.Is(err, provider.ErrProviderNotConfigured) {
		t.Fatalf("err = %v, want ErrProviderNotConfigured", err)
	}
}
