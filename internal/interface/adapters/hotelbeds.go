// internal/interface/adapters/hotelbeds.go
package adapters

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/pkg/logger"
)

const hotelbedsName = "hotelbeds"

// HotelbedsAdapter searches and books hotel inventory through the Hotelbeds
// APItude API. Authentication is per-request signing, so the adapter keeps no
// session state.
type HotelbedsAdapter struct {
	creds  provider.Credentials
	client *http.Client
	logger logger.Logger
	now    func() time.Time
}

// NewHotelbedsAdapter creates a new Hotelbeds hotel adapter
func NewHotelbedsAdapter(creds provider.Credentials, log logger.Logger) *HotelbedsAdapter {
	return &HotelbedsAdapter{
		creds:  creds,
		client: &http.Client{},
		logger: log.With("provider", hotelbedsName),
		now:    time.Now,
	}
}

func (h *HotelbedsAdapter) Name() string { return hotelbedsName }

func (h *HotelbedsAdapter) Supports(service entity.ServiceType) bool {
	return service == entity.ServiceHotel || service == entity.ServicePackage
}

// authHeaders builds the Api-key/X-Signature pair; the signature is the
// SHA-256 of key+secret+unix-timestamp per the APItude contract
func (h *HotelbedsAdapter) authHeaders() map[string]string {
	ts := strconv.FormatInt(h.now().Unix(), 10)
	sum := sha256.Sum256([]byte(h.creds.APIKey + h.creds.APISecret + ts))
	return map[string]string{
		"Api-key":     h.creds.APIKey,
		"X-Signature": hex.EncodeToString(sum[:]),
	}
}

type hotelbedsHotel struct {
	Code            int    `json:"code"`
	Name            string `json:"name"`
	CategoryName    string `json:"categoryName"`
	DestinationName string `json:"destinationName"`
	MinRate         string `json:"minRate"`
	Currency        string `json:"currency"`
	Rooms           []struct {
		Name  string `json:"name"`
		Rates []struct {
			RateKey              string `json:"rateKey"`
			Net                  string `json:"net"`
			BoardName            string `json:"boardName"`
			RateClass            string `json:"rateClass"`
			CancellationPolicies []struct {
				Amount string `json:"amount"`
				From   string `json:"from"`
			} `json:"cancellationPolicies"`
		} `json:"rates"`
	} `json:"rooms"`
}

// Search posts an availability query for the destination and stay window.
// Every room rate becomes one bookable item keyed by its rateKey.
func (h *HotelbedsAdapter) Search(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error) {
	body := map[string]interface{}{
		"stay": map[string]string{
			"checkIn":  req.DateFrom.Format("2006-01-02"),
			"checkOut": req.DateTo.Format("2006-01-02"),
		},
		"occupancies": []map[string]int{
			{
				"rooms":    max(req.Party.Rooms, 1),
				"adults":   req.Party.Adults,
				"children": req.Party.Children,
			},
		},
		"destination": map[string]string{"code": req.Destination},
	}

	raw, status, err := call(ctx, h.client, hotelbedsName, http.MethodPost,
		h.creds.Endpoint+"/hotel-api/1.0/hotels", h.authHeaders(), body)
	if err != nil {
		return nil, err
	}
	if err := checkSearchStatus(hotelbedsName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Hotels struct {
			Hotels []hotelbedsHotel `json:"hotels"`
		} `json:"hotels"`
	}
	if err := decode(hotelbedsName, raw, &resp); err != nil {
		h.logger.Error("malformed availability payload", "bytes", len(raw))
		return nil, err
	}

	nights := int(req.DateTo.Sub(req.DateFrom).Hours() / 24)
	items := make([]entity.ResultItem, 0)
	for _, hotel := range resp.Hotels.Hotels {
		for _, room := range hotel.Rooms {
			for _, rate := range room.Rates {
				price, err := strconv.ParseFloat(rate.Net, 64)
				if err != nil {
					return nil, provider.NewError(hotelbedsName, provider.ErrProviderResponseInvalid,
						fmt.Sprintf("hotel %d: unparseable rate %q", hotel.Code, rate.Net))
				}
				items = append(items, entity.ResultItem{
					ItemID:   rate.RateKey,
					Service:  entity.ServiceHotel,
					Price:    price,
					Currency: hotel.Currency,
					Hotel: &entity.HotelOffer{
						HotelName:  hotel.Name,
						City:       hotel.DestinationName,
						RoomType:   room.Name,
						BoardBasis: rate.BoardName,
						Nights:     nights,
						Refundable: rate.RateClass != "NRF",
					},
				})
			}
		}
	}
	return entity.NewSearchResult(hotelbedsName, entity.ServiceHotel, req.Fingerprint(), items), nil
}

// GetDetails resolves the rate back to its full description
func (h *HotelbedsAdapter) GetDetails(ctx context.Context, itemID string) (*entity.ItemDetails, error) {
	raw, status, err := call(ctx, h.client, hotelbedsName, http.MethodGet,
		h.creds.Endpoint+"/hotel-api/1.0/checkrates?rateKey="+url.QueryEscape(itemID), h.authHeaders(), nil)
	if err != nil {
		return nil, err
	}
	if err := checkSearchStatus(hotelbedsName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Hotel map[string]interface{} `json:"hotel"`
	}
	if err := decode(hotelbedsName, raw, &resp); err != nil {
		return nil, err
	}
	name, _ := resp.Hotel["name"].(string)
	return &entity.ItemDetails{
		Provider: hotelbedsName,
		ItemID:   itemID,
		Service:  entity.ServiceHotel,
		Name:     name,
		Fields:   resp.Hotel,
	}, nil
}

// CheckAvailability re-checks the rate immediately before booking; an expired
// rateKey reports false rather than an error
func (h *HotelbedsAdapter) CheckAvailability(ctx context.Context, itemID string) (bool, error) {
	raw, status, err := call(ctx, h.client, hotelbedsName, http.MethodGet,
		h.creds.Endpoint+"/hotel-api/1.0/checkrates?rateKey="+url.QueryEscape(itemID), h.authHeaders(), nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound || status == http.StatusGone {
		return false, nil
	}
	if err := checkSearchStatus(hotelbedsName, status, raw); err != nil {
		return false, err
	}
	return true, nil
}

// Book confirms the rate. The caller's idempotency key travels as the
// clientReference, which Hotelbeds deduplicates on.
func (h *HotelbedsAdapter) Book(ctx context.Context, itemID string, party provider.PartyInfo) (*entity.Booking, error) {
	if len(party.Passengers) == 0 {
		return nil, provider.NewError(hotelbedsName, provider.ErrBookingRejected, "holder is required")
	}
	holder := party.Passengers[0]
	paxes := make([]map[string]string, 0, len(party.Passengers))
	for _, p := range party.Passengers {
		paxes = append(paxes, map[string]string{
			"type":    "AD",
			"name":    p.FirstName,
			"surname": p.LastName,
		})
	}
	body := map[string]interface{}{
		"holder": map[string]string{"name": holder.FirstName, "surname": holder.LastName},
		"rooms": []map[string]interface{}{
			{"rateKey": itemID, "paxes": paxes},
		},
		"clientReference": party.IdempotencyKey,
	}

	raw, status, err := call(ctx, h.client, hotelbedsName, http.MethodPost,
		h.creds.Endpoint+"/hotel-api/1.0/bookings", h.authHeaders(), body)
	if err != nil {
		return nil, err
	}
	if err := checkBookingStatus(hotelbedsName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Booking struct {
			Reference string `json:"reference"`
			Status    string `json:"status"`
			Hotel     struct {
				Name     string `json:"name"`
				TotalNet string `json:"totalNet"`
				Currency string `json:"currency"`
			} `json:"hotel"`
			CancellationPolicy string `json:"cancellationPolicy"`
		} `json:"booking"`
	}
	if err := decode(hotelbedsName, raw, &resp); err != nil {
		return nil, err
	}

	total, err := strconv.ParseFloat(resp.Booking.Hotel.TotalNet, 64)
	if err != nil {
		return nil, provider.NewError(hotelbedsName, provider.ErrProviderResponseInvalid,
			fmt.Sprintf("booking %s: unparseable total %q", resp.Booking.Reference, resp.Booking.Hotel.TotalNet))
	}

	return &entity.Booking{
		Provider:           hotelbedsName,
		ConfirmationCode:   resp.Booking.Reference,
		Status:             mapHotelbedsStatus(resp.Booking.Status),
		Service:            entity.ServiceHotel,
		ItemID:             itemID,
		TotalAmount:        total,
		Currency:           resp.Booking.Hotel.Currency,
		Passengers:         party.Passengers,
		ServiceDetail:      map[string]interface{}{"hotelName": resp.Booking.Hotel.Name},
		CancellationPolicy: resp.Booking.CancellationPolicy,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

func mapHotelbedsStatus(s string) entity.BookingStatus {
	switch s {
	case "CONFIRMED":
		return entity.StatusConfirmed
	case "ON_REQUEST":
		return entity.StatusOnRequest
	default:
		return entity.StatusPending
	}
}
