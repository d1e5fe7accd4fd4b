// internal/domain/entity/booking.go
package entity

import (
	"fmt"
	"time"
)

// BookingStatus is the lifecycle state of a reservation
type BookingStatus string

const (
	StatusSearching BookingStatus = "searching"
	StatusAvailable BookingStatus = "available"
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCancelled BookingStatus = "cancelled"
	StatusFailed    BookingStatus = "failed"
	// StatusOnRequest is a terminal pending state for providers that require
	// manual confirmation on their side
	StatusOnRequest BookingStatus = "on_request"
)

// bookingTransitions encodes the allowed lifecycle:
// searching -> available -> pending -> confirmed, confirmed -> cancelled only,
// pending|searching -> failed, pending -> on_request (terminal)
var bookingTransitions = map[BookingStatus][]BookingStatus{
	StatusSearching: {StatusAvailable, StatusFailed},
	StatusAvailable: {StatusPending, StatusFailed},
	StatusPending:   {StatusConfirmed, StatusOnRequest, StatusFailed},
	StatusConfirmed: {StatusCancelled},
}

// CanTransitionTo reports whether next is a legal successor state
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Passenger is one member of the booked party
type Passenger struct {
	FirstName string `json:"first_name" bson:"firstName"`
	LastName  string `json:"last_name" bson:"lastName"`
	Type      string `json:"type" bson:"type"` // adult, child, infant
	Document  string `json:"document,omitempty" bson:"document,omitempty"`
	BirthDate string `json:"birth_date,omitempty" bson:"birthDate,omitempty"`
}

// Booking is the normalized reservation record emitted to the booking sink.
// Records are never deleted; cancellation transitions the status instead.
type Booking struct {
	ID                 string                 `json:"id" bson:"_id,omitempty"`
	Provider           string                 `json:"provider" bson:"provider"`
	ConfirmationCode   string                 `json:"confirmation_code" bson:"confirmationCode"`
	Status             BookingStatus          `json:"status" bson:"status"`
	Service            ServiceType            `json:"service" bson:"service"`
	ItemID             string                 `json:"item_id" bson:"itemId"`
	TotalAmount        float64                `json:"total_amount" bson:"totalAmount"`
	Currency           string                 `json:"currency" bson:"currency"`
	CommissionAmount   float64                `json:"commission_amount" bson:"commissionAmount"`
	NetAmount          float64                `json:"net_amount" bson:"netAmount"`
	Passengers         []Passenger            `json:"passengers" bson:"passengers"`
	ServiceDetail      map[string]interface{} `json:"service_detail,omitempty" bson:"serviceDetail,omitempty"`
	CancellationPolicy string                 `json:"cancellation_policy,omitempty" bson:"cancellationPolicy,omitempty"`
	AgencyID           string                 `json:"agency_id,omitempty" bson:"agencyId,omitempty"`
	AgentID            string                 `json:"agent_id,omitempty" bson:"agentId,omitempty"`
	CreatedAt          time.Time              `json:"created_at" bson:"createdAt"`
	UpdatedAt          time.Time              `json:"updated_at" bson:"updatedAt"`
}

// TransitionTo applies a status change, rejecting anything outside the
// lifecycle state machine
func (b *Booking) TransitionTo(next BookingStatus) error {
	if !b.Status.CanTransitionTo(next) {
		return fmt.Errorf("illegal booking transition %s -> %s", b.Status, next)
	}
	b.Status = next
	b.UpdatedAt = time.Now().UTC()
	return nil
}

// ApplyCommission computes agency commission bookkeeping for the given rate
// (a fraction, e.g. 0.10) and marks the booking as agency-attributed
func (b *Booking) ApplyCommission(agencyID string, rate float64) {
	b.AgencyID = agencyID
	b.CommissionAmount = round2(b.TotalAmount * rate)
	b.NetAmount = round2(b.TotalAmount - b.CommissionAmount)
}

func round2(v float64) float64 {
	return float64(int64(v*100+0.5)) / 100
}
