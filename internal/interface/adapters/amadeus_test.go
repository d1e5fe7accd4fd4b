package adapters

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/pkg/logger"
)

const amadeusSearchBody = `{
  "data": [
    {
      "id": "offer-1",
      "itineraries": [
        {
          "segments": [
            {
              "carrierCode": "AF",
              "number": "1234",
              "departure": {"iataCode": "MAD", "at": "2026-10-01T08:30:00"},
              "arrival": {"iataCode": "CDG", "at": "2026-10-01T10:45:00"}
            }
          ]
        }
      ],
      "price": {"grandTotal": "210.50", "currency": "EUR"},
      "travelerPricings": [
        {"fareDetailsBySegment": [{"cabin": "ECONOMY", "fareBasis": "YBAS"}]}
      ]
    }
  ]
}`

// newAmadeusServer serves the OAuth2 token endpoint plus the given API routes
func newAmadeusServer(t *testing.T, tokenCalls *int32, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/security/oauth2/token", func(w http.ResponseWriter, r *http.Request) {
		if tokenCalls != nil {
			atomic.AddInt32(tokenCalls, 1)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"access_token":"test-token","token_type":"Bearer","expires_in":1799}`))
	})
	mux.HandleFunc("/", handler)
	return httptest.NewServer(mux)
}

func flightRequest() *entity.SearchRequest {
	return &entity.SearchRequest{
		Service:     entity.ServiceFlight,
		Origin:      "MAD",
		Destination: "CDG",
		DateFrom:    time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Party:       entity.Party{Adults: 2},
		DirectOnly:  true,
	}
}

func TestAmadeusSearch(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v2/shopping/flight-offers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-token" {
			t.Errorf("Authorization = %q, want bearer token", got)
		}
		q := r.URL.Query()
		if q.Get("originLocationCode") != "MAD" || q.Get("destinationLocationCode") != "CDG" {
			t.Errorf("route params = %s -> %s", q.Get("originLocationCode"), q.Get("destinationLocationCode"))
		}
		if q.Get("adults") != "2" {
			t.Errorf("adults = %q, want 2", q.Get("adults"))
		}
		if q.Get("nonStop") != "true" {
			t.Error("direct-only request must set nonStop")
		}
		w.Write([]byte(amadeusSearchBody))
	})
	defer srv.Close()

	a := NewAmadeusAdapter(provider.Credentials{Endpoint: srv.URL, APIKey: "id", APISecret: "secret"}, logger.NewNop())
	result, err := a.Search(context.Background(), flightRequest())
	if err != nil {
		t.Fatalf("Search() = %v", err)
	}
	if result.Count != 1 {
		t.Fatalf("Count = %d, want 1", result.Count)
	}

	item := result.Items[0]
	if item.Price != 210.50 || item.Currency != "EUR" {
		t.Fatalf("price = %v %s", item.Price, item.Currency)
	}
	if item.Flight == nil {
		t.Fatal("flight payload missing")
	}
	if item.Flight.FlightNumber != "AF1234" || item.Flight.Stops != 0 {
		t.Fatalf("flight = %+v", item.Flight)
	}
	if item.Flight.Origin != "MAD" || item.Flight.Destination != "CDG" {
		t.Fatalf("route = %s -> %s", item.Flight.Origin, item.Flight.Destination)
	}
	if item.Flight.CabinClass != "ECONOMY" {
		t.Fatalf("cabin = %q", item.Flight.CabinClass)
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Fatalf("token endpoint called %d times, want 1", n)
	}
}

func TestAmadeusSearchReusesToken(t *testing.T) {
	var tokenCalls int32
	srv := newAmadeusServer(t, &tokenCalls, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[]}`))
	})
	defer srv.Close()

	a := NewAmadeusAdapter(provider.Credentials{Endpoint: srv.URL, APIKey: "id", APISecret: "secret"}, logger.NewNop())
	for i := 0; i < 3; i++ {
		if _, err := a.Search(context.Background(), flightRequest()); err != nil {
			t.Fatalf("Search() = %v", err)
		}
	}
	if n := atomic.LoadInt32(&tokenCalls); n != 1 {
		t.Fatalf("token endpoint called %d times across three searches, want 1", n)
	}
}

func TestAmadeusSearchUnparseablePrice(t *testing.T) {
	srv := newAmadeusServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":[{"id":"x","price":{"grandTotal":"NaN-ish","currency":"EUR"}}]}`))
	})
	defer srv.Close()

	a := NewAmadeusAdapter(provider.Credentials{Endpoint: srv.URL, APIKey: "id", APISecret: "secret"}, logger.NewNop())
	_, err := a.Search(context.Background(), flightRequest())
	if provider.KindOf(err) != "response_invalid" {
		t.Fatalf("err = %v, want response_invalid kind", err)
	}
}

func TestAmadeusCheckAvailabilityGoneOffer(t *testing.T) {
	srv := newAmadeusServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	defer srv.Close()

	a := NewAmadeusAdapter(provider.Credentials{Endpoint: srv.URL, APIKey: "id", APISecret: "secret"}, logger.NewNop())
	available, err := a.CheckAvailability(context.Background(), "gone-offer")
	if err != nil {
		t.Fatalf("CheckAvailability() = %v, a gone offer is not an error", err)
	}
	if available {
		t.Fatal("gone offer must report unavailable")
	}
}

func TestAmadeusBook(t *testing.T) {
	srv := newAmadeusServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/booking/flight-orders" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Idempotency-Key"); got != "idem-42" {
			t.Errorf("Idempotency-Key = %q, want idem-42", got)
		}
		w.Write([]byte(`{
  "data": {
    "id": "order-9",
    "status": "PENDING",
    "associatedRecords": [{"reference": "PNR123"}],
    "price": {"grandTotal": "210.50", "currency": "EUR"}
  }
}`))
	})
	defer srv.Close()

	a := NewAmadeusAdapter(provider.Credentials{Endpoint: srv.URL, APIKey: "id", APISecret: "secret"}, logger.NewNop())
	booking, err := a.Book(context.Background(), "offer-1", provider.PartyInfo{
		Passengers:     []entity.Passenger{{FirstName: "Ada", LastName: "Lovelace", Type: "adult"}},
		ContactEmail:   "ada@example.com",
		IdempotencyKey: "idem-42",
	})
	if err != nil {
		t.Fatalf("Book() = %v", err)
	}
	if booking.ConfirmationCode != "PNR123" {
		t.Fatalf("ConfirmationCode = %q, want PNR123", booking.ConfirmationCode)
	}
	if booking.Status != entity.StatusPending {
		t.Fatalf("Status = %s, want pending", booking.Status)
	}
	if booking.TotalAmount != 210.50 {
		t.Fatalf("TotalAmount = %v", booking.TotalAmount)
	}
}

func TestAmadeusBookDeclined(t *testing.T) {
	srv := newAmadeusServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":[{"detail":"price changed"}]}`))
	})
	defer srv.Close()

	a := NewAmadeusAdapter(provider.Credentials{Endpoint: srv.URL, APIKey: "id", APISecret: "secret"}, logger.NewNop())
	_, err := a.Book(context.Background(), "offer-1", provider.PartyInfo{
		Passengers: []entity.Passenger{{FirstName: "Ada", LastName: "Lovelace"}},
	})
	if provider.KindOf(err) != "booking_rejected" {
		t.Fatalf("err = %v, want booking_rejected kind", err)
	}
}

func TestAmadeusSupports(t *testing.T) {
	a := NewAmadeusAdapter(provider.Credentials{Endpoint: "http://x", APIKey: "id", APISecret: "s"}, logger.NewNop())
	if !a.Supports(entity.ServiceFlight) || a.Supports(entity.ServiceHotel) {
		t.Fatal("amadeus must support flights only (plus packages)")
	}
}
