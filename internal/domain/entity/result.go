// internal/domain/entity/result.go
package entity

import (
	"time"
)

// FlightOffer is the typed payload of a flight result item
type FlightOffer struct {
	Airline       string    `json:"airline" bson:"airline"`
	FlightNumber  string    `json:"flight_number" bson:"flightNumber"`
	Origin        string    `json:"origin" bson:"origin"`
	Destination   string    `json:"destination" bson:"destination"`
	DepartureUTC  time.Time `json:"departure_utc" bson:"departureUtc"`
	ArrivalUTC    time.Time `json:"arrival_utc" bson:"arrivalUtc"`
	Stops         int       `json:"stops" bson:"stops"`
	CabinClass    string    `json:"cabin_class,omitempty" bson:"cabinClass,omitempty"`
	FareBasis     string    `json:"fare_basis,omitempty" bson:"fareBasis,omitempty"`
	Refundable    bool      `json:"refundable" bson:"refundable"`
	BaggagePieces int       `json:"baggage_pieces,omitempty" bson:"baggagePieces,omitempty"`
}

// HotelOffer is the typed payload of a hotel result item
type HotelOffer struct {
	HotelName   string   `json:"hotel_name" bson:"hotelName"`
	City        string   `json:"city" bson:"city"`
	RoomType    string   `json:"room_type" bson:"roomType"`
	BoardBasis  string   `json:"board_basis,omitempty" bson:"boardBasis,omitempty"`
	Stars       int      `json:"stars,omitempty" bson:"stars,omitempty"`
	Nights      int      `json:"nights" bson:"nights"`
	Refundable  bool     `json:"refundable" bson:"refundable"`
	Amenities   []string `json:"amenities,omitempty" bson:"amenities,omitempty"`
}

// CarOffer is the typed payload of a car rental result item
type CarOffer struct {
	Vendor          string `json:"vendor" bson:"vendor"`
	VehicleClass    string `json:"vehicle_class" bson:"vehicleClass"`
	VehicleExample  string `json:"vehicle_example,omitempty" bson:"vehicleExample,omitempty"`
	PickupLocation  string `json:"pickup_location" bson:"pickupLocation"`
	DropoffLocation string `json:"dropoff_location" bson:"dropoffLocation"`
	Transmission    string `json:"transmission,omitempty" bson:"transmission,omitempty"`
	Unlimited       bool   `json:"unlimited_mileage" bson:"unlimitedMileage"`
}

// ResultItem is one bookable offer. Offer shapes are genuinely heterogeneous
// across categories, so the item carries a common price envelope plus exactly
// one service-specific payload selected by Service.
type ResultItem struct {
	ItemID   string      `json:"item_id"`
	Service  ServiceType `json:"service"`
	Price    float64     `json:"price"`
	Currency string      `json:"currency"`

	Flight *FlightOffer `json:"flight,omitempty"`
	Hotel  *HotelOffer  `json:"hotel,omitempty"`
	Car    *CarOffer    `json:"car,omitempty"`
}

// Failure records why one provider contributed no results to an aggregate
type Failure struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// SearchResult is the normalized output of one adapter invocation.
// It is created fresh per call and never mutated once returned; a failed
// invocation is represented by an empty item list plus a recorded Failure.
type SearchResult struct {
	Provider    string       `json:"provider"`
	Service     ServiceType  `json:"service"`
	Items       []ResultItem `json:"items"`
	Count       int          `json:"count"`
	MinPrice    float64      `json:"min_price"`
	MaxPrice    float64      `json:"max_price"`
	Currency    string       `json:"currency,omitempty"`
	Fingerprint string       `json:"fingerprint"`
	CreatedAt   time.Time    `json:"created_at"`
	Failure     *Failure     `json:"failure,omitempty"`
}

// NewSearchResult builds a successful result and derives count and the
// observed price range from the item list
func NewSearchResult(provider string, service ServiceType, fingerprint string, items []ResultItem) *SearchResult {
	res := &SearchResult{
		Provider:    provider,
		Service:     service,
		Items:       items,
		Count:       len(items),
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
	}
	for i, item := range items {
		if i == 0 || item.Price < res.MinPrice {
			res.MinPrice = item.Price
		}
		if item.Price > res.MaxPrice {
			res.MaxPrice = item.Price
		}
		if res.Currency == "" {
			res.Currency = item.Currency
		}
	}
	return res
}

// NewFailureResult builds the failure entry recorded for a provider whose
// search errored or timed out
func NewFailureResult(provider string, service ServiceType, fingerprint, kind, message string) *SearchResult {
	return &SearchResult{
		Provider:    provider,
		Service:     service,
		Items:       []ResultItem{},
		Fingerprint: fingerprint,
		CreatedAt:   time.Now().UTC(),
		Failure:     &Failure{Kind: kind, Message: message},
	}
}

// SearchStats summarizes one orchestrated search
type SearchStats struct {
	ProvidersQueried   int   `json:"providers_queried"`
	ProvidersSucceeded int   `json:"providers_succeeded"`
	ProvidersFailed    int   `json:"providers_failed"`
	DurationMs         int64 `json:"duration_ms"`
	CacheHit           bool  `json:"cache_hit"`
}

// AggregateResult maps provider identity to that provider's outcome for
// exactly one SearchRequest. Read-only to callers once returned.
type AggregateResult struct {
	Fingerprint string                   `json:"fingerprint"`
	Service     ServiceType              `json:"service"`
	Providers   map[string]*SearchResult `json:"providers"`
	Stats       SearchStats              `json:"stats"`
	CreatedAt   time.Time                `json:"created_at"`
}

// TotalItems counts the offers across every provider entry
func (a *AggregateResult) TotalItems() int {
	total := 0
	for _, res := range a.Providers {
		total += res.Count
	}
	return total
}

// ItemDetails is the full detail record for one previously returned item
type ItemDetails struct {
	Provider    string                 `json:"provider"`
	ItemID      string                 `json:"item_id"`
	Service     ServiceType            `json:"service"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	Fields      map[string]interface{} `json:"fields,omitempty"`
}
