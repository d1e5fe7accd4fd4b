package entity

import "testing"

func TestBookingTransitions(t *testing.T) {
	tests := []struct {
		from    BookingStatus
		to      BookingStatus
		allowed bool
	}{
		{StatusSearching, StatusAvailable, true},
		{StatusSearching, StatusFailed, true},
		{StatusSearching, StatusConfirmed, false},
		{StatusAvailable, StatusPending, true},
		{StatusAvailable, StatusCancelled, false},
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusOnRequest, true},
		{StatusPending, StatusFailed, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCancelled, StatusConfirmed, false},
		{StatusOnRequest, StatusConfirmed, false},
		{StatusFailed, StatusSearching, false},
	}
	for _, tt := range tests {
		if got := tt.from.CanTransitionTo(tt.to); got != tt.allowed {
			t.Errorf("%s -> %s: got %v, want %v", tt.from, tt.to, got, tt.allowed)
		}
	}
}

func TestBookingTransitionToRejectsIllegal(t *testing.T) {
	b := &Booking{Status: StatusCancelled}
	if err := b.TransitionTo(StatusConfirmed); err == nil {
		t.Fatal("cancelled is terminal, transition must fail")
	}
	if b.Status != StatusCancelled {
		t.Fatalf("status must be unchanged after rejected transition, got %s", b.Status)
	}
}

func TestBookingTransitionToUpdatesTimestamp(t *testing.T) {
	b := &Booking{Status: StatusConfirmed}
	if err := b.TransitionTo(StatusCancelled); err != nil {
		t.Fatalf("TransitionTo() = %v", err)
	}
	if b.Status != StatusCancelled {
		t.Fatalf("status = %s, want %s", b.Status, StatusCancelled)
	}
	if b.UpdatedAt.IsZero() {
		t.Fatal("UpdatedAt must be set on transition")
	}
}

func TestApplyCommission(t *testing.T) {
	b := &Booking{TotalAmount: 200.0}
	b.ApplyCommission("AG-7", 0.10)

	if b.AgencyID != "AG-7" {
		t.Fatalf("AgencyID = %q", b.AgencyID)
	}
	if b.CommissionAmount != 20.0 {
		t.Fatalf("CommissionAmount = %v, want 20", b.CommissionAmount)
	}
	if b.NetAmount != 180.0 {
		t.Fatalf("NetAmount = %v, want 180", b.NetAmount)
	}
}

func TestApplyCommissionRounds(t *testing.T) {
	b := &Booking{TotalAmount: 99.99}
	b.ApplyCommission("AG-1", 0.125)
	if b.CommissionAmount != 12.5 {
		t.Fatalf("CommissionAmount = %v, want 12.5", b.CommissionAmount)
	}
	if b.NetAmount != 87.49 {
		t.Fatalf("NetAmount = %v, want 87.49", b.NetAmount)
	}
}
