// internal/interface/adapters/amadeus.go
package adapters

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/pkg/logger"
)

const amadeusName = "amadeus"

// AmadeusAdapter searches and books flight inventory through the Amadeus
// self-service API. Token acquisition and renewal go through an OAuth2
// client-credentials source, which is safe under concurrent searches.
type AmadeusAdapter struct {
	creds  provider.Credentials
	client *http.Client
	logger logger.Logger
}

// NewAmadeusAdapter creates a new Amadeus flight adapter
func NewAmadeusAdapter(creds provider.Credentials, log logger.Logger) *AmadeusAdapter {
	conf := &clientcredentials.Config{
		ClientID:     creds.APIKey,
		ClientSecret: creds.APISecret,
		TokenURL:     creds.Endpoint + "/v1/security/oauth2/token",
	}
	// conf.Client caches the access token and renews it on expiry
	return &AmadeusAdapter{
		creds:  creds,
		client: conf.Client(context.Background()),
		logger: log.With("provider", amadeusName),
	}
}

func (a *AmadeusAdapter) Name() string { return amadeusName }

func (a *AmadeusAdapter) Supports(service entity.ServiceType) bool {
	return service == entity.ServiceFlight || service == entity.ServicePackage
}

type amadeusOffer struct {
	ID          string `json:"id"`
	Itineraries []struct {
		Segments []struct {
			CarrierCode string `json:"carrierCode"`
			Number      string `json:"number"`
			Departure   struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"departure"`
			Arrival struct {
				IataCode string `json:"iataCode"`
				At       string `json:"at"`
			} `json:"arrival"`
		} `json:"segments"`
	} `json:"itineraries"`
	Price struct {
		GrandTotal string `json:"grandTotal"`
		Currency   string `json:"currency"`
	} `json:"price"`
	TravelerPricings []struct {
		FareDetailsBySegment []struct {
			Cabin     string `json:"cabin"`
			FareBasis string `json:"fareBasis"`
		} `json:"fareDetailsBySegment"`
	} `json:"travelerPricings"`
}

// Search translates the canonical request into a flight-offers query and
// normalizes the reply. "No results" is an empty item list, not an error.
func (a *AmadeusAdapter) Search(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error) {
	q := url.Values{}
	q.Set("originLocationCode", req.Origin)
	q.Set("destinationLocationCode", req.Destination)
	q.Set("departureDate", req.DateFrom.Format("2006-01-02"))
	if !req.DateTo.IsZero() {
		q.Set("returnDate", req.DateTo.Format("2006-01-02"))
	}
	q.Set("adults", strconv.Itoa(req.Party.Adults))
	if req.Party.Children > 0 {
		q.Set("children", strconv.Itoa(req.Party.Children))
	}
	if req.Party.Infants > 0 {
		q.Set("infants", strconv.Itoa(req.Party.Infants))
	}
	if req.CabinClass != "" {
		q.Set("travelClass", req.CabinClass)
	}
	if req.DirectOnly {
		q.Set("nonStop", "true")
	}
	if req.Currency != "" {
		q.Set("currencyCode", req.Currency)
	}

	raw, status, err := call(ctx, a.client, amadeusName, http.MethodGet,
		a.creds.Endpoint+"/v2/shopping/flight-offers?"+q.Encode(), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := checkSearchStatus(amadeusName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Data []amadeusOffer `json:"data"`
	}
	if err := decode(amadeusName, raw, &resp); err != nil {
		a.logger.Error("malformed flight-offers payload", "bytes", len(raw))
		return nil, err
	}

	items := make([]entity.ResultItem, 0, len(resp.Data))
	for _, offer := range resp.Data {
		item, err := a.normalizeOffer(offer)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return entity.NewSearchResult(amadeusName, entity.ServiceFlight, req.Fingerprint(), items), nil
}

func (a *AmadeusAdapter) normalizeOffer(offer amadeusOffer) (*entity.ResultItem, error) {
	price, err := strconv.ParseFloat(offer.Price.GrandTotal, 64)
	if err != nil {
		return nil, provider.NewError(amadeusName, provider.ErrProviderResponseInvalid,
			fmt.Sprintf("offer %s: unparseable price %q", offer.ID, offer.Price.GrandTotal))
	}

	flight := &entity.FlightOffer{}
	if len(offer.Itineraries) > 0 && len(offer.Itineraries[0].Segments) > 0 {
		segments := offer.Itineraries[0].Segments
		first, last := segments[0], segments[len(segments)-1]
		flight.Airline = first.CarrierCode
		flight.FlightNumber = first.CarrierCode + first.Number
		flight.Origin = first.Departure.IataCode
		flight.Destination = last.Arrival.IataCode
		flight.Stops = len(segments) - 1
		if t, err := time.Parse("2006-01-02T15:04:05", first.Departure.At); err == nil {
			flight.DepartureUTC = t.UTC()
		}
		if t, err := time.Parse("2006-01-02T15:04:05", last.Arrival.At); err == nil {
			flight.ArrivalUTC = t.UTC()
		}
	}
	if len(offer.TravelerPricings) > 0 && len(offer.TravelerPricings[0].FareDetailsBySegment) > 0 {
		fare := offer.TravelerPricings[0].FareDetailsBySegment[0]
		flight.CabinClass = fare.Cabin
		flight.FareBasis = fare.FareBasis
	}

	return &entity.ResultItem{
		ItemID:   offer.ID,
		Service:  entity.ServiceFlight,
		Price:    price,
		Currency: offer.Price.Currency,
		Flight:   flight,
	}, nil
}

// GetDetails fetches the full offer record for one item
func (a *AmadeusAdapter) GetDetails(ctx context.Context, itemID string) (*entity.ItemDetails, error) {
	raw, status, err := call(ctx, a.client, amadeusName, http.MethodGet,
		a.creds.Endpoint+"/v2/shopping/flight-offers/"+url.PathEscape(itemID), nil, nil)
	if err != nil {
		return nil, err
	}
	if err := checkSearchStatus(amadeusName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Data map[string]interface{} `json:"data"`
	}
	if err := decode(amadeusName, raw, &resp); err != nil {
		return nil, err
	}
	return &entity.ItemDetails{
		Provider: amadeusName,
		ItemID:   itemID,
		Service:  entity.ServiceFlight,
		Name:     fmt.Sprintf("flight offer %s", itemID),
		Fields:   resp.Data,
	}, nil
}

// CheckAvailability re-prices the offer immediately before booking; a gone
// offer reports false rather than an error
func (a *AmadeusAdapter) CheckAvailability(ctx context.Context, itemID string) (bool, error) {
	raw, status, err := call(ctx, a.client, amadeusName, http.MethodGet,
		a.creds.Endpoint+"/v1/shopping/flight-offers/pricing?offerId="+url.QueryEscape(itemID), nil, nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if err := checkSearchStatus(amadeusName, status, raw); err != nil {
		return false, err
	}

	var resp struct {
		Data struct {
			Available bool `json:"available"`
		} `json:"data"`
	}
	if err := decode(amadeusName, raw, &resp); err != nil {
		return false, err
	}
	return resp.Data.Available, nil
}

// Book creates the flight order. The caller's idempotency key is forwarded so
// a duplicate submission lands on the same provider-side order.
func (a *AmadeusAdapter) Book(ctx context.Context, itemID string, party provider.PartyInfo) (*entity.Booking, error) {
	travelers := make([]map[string]interface{}, 0, len(party.Passengers))
	for i, p := range party.Passengers {
		travelers = append(travelers, map[string]interface{}{
			"id": strconv.Itoa(i + 1),
			"name": map[string]string{
				"firstName": p.FirstName,
				"lastName":  p.LastName,
			},
			"dateOfBirth": p.BirthDate,
		})
	}
	body := map[string]interface{}{
		"data": map[string]interface{}{
			"type":          "flight-order",
			"flightOfferId": itemID,
			"travelers":     travelers,
			"contacts": []map[string]string{
				{"emailAddress": party.ContactEmail, "phone": party.ContactPhone},
			},
		},
	}
	headers := map[string]string{}
	if party.IdempotencyKey != "" {
		headers["Idempotency-Key"] = party.IdempotencyKey
	}

	raw, status, err := call(ctx, a.client, amadeusName, http.MethodPost,
		a.creds.Endpoint+"/v1/booking/flight-orders", headers, body)
	if err != nil {
		return nil, err
	}
	if err := checkBookingStatus(amadeusName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Data struct {
			ID                string `json:"id"`
			Status            string `json:"status"`
			AssociatedRecords []struct {
				Reference string `json:"reference"`
			} `json:"associatedRecords"`
			Price struct {
				GrandTotal string `json:"grandTotal"`
				Currency   string `json:"currency"`
			} `json:"price"`
		} `json:"data"`
	}
	if err := decode(amadeusName, raw, &resp); err != nil {
		return nil, err
	}

	total, err := strconv.ParseFloat(resp.Data.Price.GrandTotal, 64)
	if err != nil {
		return nil, provider.NewError(amadeusName, provider.ErrProviderResponseInvalid,
			fmt.Sprintf("order %s: unparseable total %q", resp.Data.ID, resp.Data.Price.GrandTotal))
	}

	confirmation := resp.Data.ID
	if len(resp.Data.AssociatedRecords) > 0 {
		confirmation = resp.Data.AssociatedRecords[0].Reference
	}

	return &entity.Booking{
		Provider:         amadeusName,
		ConfirmationCode: confirmation,
		Status:           mapAmadeusStatus(resp.Data.Status),
		Service:          entity.ServiceFlight,
		ItemID:           itemID,
		TotalAmount:      total,
		Currency:         resp.Data.Price.Currency,
		Passengers:       party.Passengers,
		ServiceDetail:    map[string]interface{}{"orderId": resp.Data.ID},
		CreatedAt:        time.Now().UTC(),
	}, nil
}

// mapAmadeusStatus distinguishes partial success (confirmation pending on the
// provider side) from a fully confirmed order
func mapAmadeusStatus(s string) entity.BookingStatus {
	switch s {
	case "PENDING":
		return entity.StatusPending
	case "ON_REQUEST":
		return entity.StatusOnRequest
	default:
		return entity.StatusConfirmed
	}
}
