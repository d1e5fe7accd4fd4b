// internal/domain/entity/search_request.go
package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceType identifies the inventory category of a search or booking
type ServiceType string

const (
	ServiceFlight  ServiceType = "flight"
	ServiceHotel   ServiceType = "hotel"
	ServiceCar     ServiceType = "car"
	ServicePackage ServiceType = "package"
)

// IsValid reports whether the service type is one of the known categories
func (s ServiceType) IsValid() bool {
	switch s {
	case ServiceFlight, ServiceHotel, ServiceCar, ServicePackage:
		return true
	}
	return false
}

// Party describes the traveling party composition
type Party struct {
	Adults   int `json:"adults" bson:"adults"`
	Children int `json:"children" bson:"children"`
	Infants  int `json:"infants" bson:"infants"`
	Rooms    int `json:"rooms" bson:"rooms"`
}

// SearchRequest is the canonical, provider-independent search input.
// It is immutable for the duration of one orchestrated search.
type SearchRequest struct {
	Service        ServiceType       `json:"service"`
	Origin         string            `json:"origin,omitempty"`
	Destination    string            `json:"destination"`
	DateFrom       time.Time         `json:"date_from"`
	DateTo         time.Time         `json:"date_to,omitempty"`
	Party          Party             `json:"party"`
	CabinClass     string            `json:"cabin_class,omitempty"`
	DirectOnly     bool              `json:"direct_only,omitempty"`
	RefundableOnly bool              `json:"refundable_only,omitempty"`
	Currency       string            `json:"currency,omitempty"`
	Locale         string            `json:"locale,omitempty"`
	Nationality    string            `json:"nationality,omitempty"`
	Hints          map[string]string `json:"hints,omitempty"`
}

var (
	ErrInvalidService   = errors.New("unknown service type")
	ErrEmptyDateWindow  = errors.New("date window must not be empty")
	ErrInvertedDates    = errors.New("return/check-out date must be after departure/check-in")
	ErrMissingLocation  = errors.New("destination is required")
	ErrMissingOrigin    = errors.New("origin is required for flight searches")
	ErrInvalidPartySize = errors.New("at least one adult is required")
)

// Validate checks the request invariants before any provider is contacted
func (r *SearchRequest) Validate() error {
	if !r.Service.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidService, r.Service)
	}
	if strings.TrimSpace(r.Destination) == "" {
		return ErrMissingLocation
	}
	if r.Service == ServiceFlight && strings.TrimSpace(r.Origin) == "" {
		return ErrMissingOrigin
	}
	if r.DateFrom.IsZero() {
		return ErrEmptyDateWindow
	}
	if !r.DateTo.IsZero() && !r.DateTo.After(r.DateFrom) {
		return ErrInvertedDates
	}
	if r.Party.Adults < 1 {
		return ErrInvalidPartySize
	}
	return nil
}

// Fingerprint returns a deterministic digest over the semantically relevant
// fields of the request. It doubles as cache key and single-flight key, so two
// requests that should share one provider round-trip must fingerprint equal.
func (r *SearchRequest) Fingerprint() string {
	dateTo := ""
	if !r.DateTo.IsZero() {
		dateTo = r.DateTo.Format("2006-01-02")
	}
	canonical := strings.Join([]string{
		string(r.Service),
		strings.ToUpper(strings.TrimSpace(r.Origin)),
		strings.ToUpper(strings.TrimSpace(r.Destination)),
		r.DateFrom.Format("2006-01-02"),
		dateTo,
		fmt.Sprintf("%d.%d.%d.%d", r.Party.Adults, r.Party.Children, r.Party.Infants, r.Party.Rooms),
	}, "|")
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
