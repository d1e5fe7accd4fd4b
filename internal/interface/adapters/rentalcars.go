// internal/interface/adapters/rentalcars.go
package adapters

import (
	"context"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/spirittours/travelcore/internal/domain/entity"
	"github.com/spirittours/travelcore/internal/domain/provider"
	"github.com/spirittours/travelcore/pkg/logger"
)

const rentalcarsName = "rentalcars"

// RentalcarsAdapter searches and books car rental inventory through a
// session-token API. The token is adapter-local and renewed under a mutex so
// concurrent in-flight searches never race a renewal.
type RentalcarsAdapter struct {
	creds  provider.Credentials
	client *http.Client
	logger logger.Logger

	mu           sync.Mutex
	sessionToken string
	tokenExpiry  time.Time
}

// NewRentalcarsAdapter creates a new car rental adapter
func NewRentalcarsAdapter(creds provider.Credentials, log logger.Logger) *RentalcarsAdapter {
	return &RentalcarsAdapter{
		creds:  creds,
		client: &http.Client{},
		logger: log.With("provider", rentalcarsName),
	}
}

func (r *RentalcarsAdapter) Name() string { return rentalcarsName }

func (r *RentalcarsAdapter) Supports(service entity.ServiceType) bool {
	return service == entity.ServiceCar || service == entity.ServicePackage
}

// session returns a valid session token, logging in again when the cached one
// is near expiry. Only one goroutine renews at a time.
func (r *RentalcarsAdapter) session(ctx context.Context) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessionToken != "" && time.Now().Before(r.tokenExpiry.Add(-30*time.Second)) {
		return r.sessionToken, nil
	}

	body := map[string]string{
		"username": r.creds.Username,
		"password": r.creds.Password,
		"branch":   r.creds.BranchCode,
	}
	raw, status, err := call(ctx, r.client, rentalcarsName, http.MethodPost,
		r.creds.Endpoint+"/v1/session", nil, body)
	if err != nil {
		return "", err
	}
	if status == http.StatusUnauthorized || status == http.StatusForbidden {
		return "", provider.NewError(rentalcarsName, provider.ErrProviderAuthFailed, snippet(raw))
	}
	if err := checkSearchStatus(rentalcarsName, status, raw); err != nil {
		return "", err
	}

	var resp struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	if err := decode(rentalcarsName, raw, &resp); err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", provider.NewError(rentalcarsName, provider.ErrProviderAuthFailed, "empty session token")
	}

	r.sessionToken = resp.Token
	r.tokenExpiry = time.Now().Add(time.Duration(resp.ExpiresIn) * time.Second)
	r.logger.Debug("session renewed", "expiresIn", resp.ExpiresIn)
	return r.sessionToken, nil
}

// invalidateSession drops the cached token after a 401 so the next call
// renews
func (r *RentalcarsAdapter) invalidateSession() {
	r.mu.Lock()
	r.sessionToken = ""
	r.mu.Unlock()
}

func (r *RentalcarsAdapter) authed(ctx context.Context, method, path string, body interface{}) ([]byte, int, error) {
	token, err := r.session(ctx)
	if err != nil {
		return nil, 0, err
	}
	headers := map[string]string{"X-Session-Token": token}
	raw, status, err := call(ctx, r.client, rentalcarsName, method, r.creds.Endpoint+path, headers, body)
	if status == http.StatusUnauthorized {
		r.invalidateSession()
	}
	return raw, status, err
}

type rentalcarsVehicle struct {
	OfferID      string  `json:"offer_id"`
	Vendor       string  `json:"vendor"`
	Class        string  `json:"class"`
	Example      string  `json:"example"`
	Transmission string  `json:"transmission"`
	Unlimited    bool    `json:"unlimited_mileage"`
	Price        float64 `json:"price"`
	Currency     string  `json:"currency"`
}

// Search queries vehicles for the pickup location and rental window
func (r *RentalcarsAdapter) Search(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error) {
	q := url.Values{}
	q.Set("pickup", req.Destination)
	q.Set("from", req.DateFrom.Format(time.RFC3339))
	if !req.DateTo.IsZero() {
		q.Set("to", req.DateTo.Format(time.RFC3339))
	}

	raw, status, err := r.authed(ctx, http.MethodGet, "/v1/vehicles?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if err := checkSearchStatus(rentalcarsName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Vehicles []rentalcarsVehicle `json:"vehicles"`
	}
	if err := decode(rentalcarsName, raw, &resp); err != nil {
		r.logger.Error("malformed vehicles payload", "bytes", len(raw))
		return nil, err
	}

	items := make([]entity.ResultItem, 0, len(resp.Vehicles))
	for _, v := range resp.Vehicles {
		items = append(items, entity.ResultItem{
			ItemID:   v.OfferID,
			Service:  entity.ServiceCar,
			Price:    v.Price,
			Currency: v.Currency,
			Car: &entity.CarOffer{
				Vendor:          v.Vendor,
				VehicleClass:    v.Class,
				VehicleExample:  v.Example,
				PickupLocation:  req.Destination,
				DropoffLocation: req.Destination,
				Transmission:    v.Transmission,
				Unlimited:       v.Unlimited,
			},
		})
	}
	return entity.NewSearchResult(rentalcarsName, entity.ServiceCar, req.Fingerprint(), items), nil
}

// GetDetails fetches the full vehicle offer record
func (r *RentalcarsAdapter) GetDetails(ctx context.Context, itemID string) (*entity.ItemDetails, error) {
	raw, status, err := r.authed(ctx, http.MethodGet, "/v1/vehicles/"+url.PathEscape(itemID), nil)
	if err != nil {
		return nil, err
	}
	if err := checkSearchStatus(rentalcarsName, status, raw); err != nil {
		return nil, err
	}

	var fields map[string]interface{}
	if err := decode(rentalcarsName, raw, &fields); err != nil {
		return nil, err
	}
	name, _ := fields["example"].(string)
	return &entity.ItemDetails{
		Provider: rentalcarsName,
		ItemID:   itemID,
		Service:  entity.ServiceCar,
		Name:     name,
		Fields:   fields,
	}, nil
}

// CheckAvailability confirms the offer is still reservable
func (r *RentalcarsAdapter) CheckAvailability(ctx context.Context, itemID string) (bool, error) {
	raw, status, err := r.authed(ctx, http.MethodGet, "/v1/vehicles/"+url.PathEscape(itemID)+"/availability", nil)
	if err != nil {
		return false, err
	}
	if status == http.StatusNotFound {
		return false, nil
	}
	if err := checkSearchStatus(rentalcarsName, status, raw); err != nil {
		return false, err
	}

	var resp struct {
		Available bool `json:"available"`
	}
	if err := decode(rentalcarsName, raw, &resp); err != nil {
		return false, err
	}
	return resp.Available, nil
}

// Book reserves the vehicle for the lead driver
func (r *RentalcarsAdapter) Book(ctx context.Context, itemID string, party provider.PartyInfo) (*entity.Booking, error) {
	if len(party.Passengers) == 0 {
		return nil, provider.NewError(rentalcarsName, provider.ErrBookingRejected, "driver is required")
	}
	driver := party.Passengers[0]
	body := map[string]interface{}{
		"offer_id": itemID,
		"driver": map[string]string{
			"first_name": driver.FirstName,
			"last_name":  driver.LastName,
			"licence":    driver.Document,
		},
		"contact_email": party.ContactEmail,
		"reference":     party.IdempotencyKey,
	}

	raw, status, err := r.authed(ctx, http.MethodPost, "/v1/reservations", body)
	if err != nil {
		return nil, err
	}
	if err := checkBookingStatus(rentalcarsName, status, raw); err != nil {
		return nil, err
	}

	var resp struct {
		Confirmation string  `json:"confirmation"`
		Status       string  `json:"status"`
		Total        float64 `json:"total"`
		Currency     string  `json:"currency"`
		Policy       string  `json:"cancellation_policy"`
	}
	if err := decode(rentalcarsName, raw, &resp); err != nil {
		return nil, err
	}
	if resp.Confirmation == "" {
		return nil, provider.NewError(rentalcarsName, provider.ErrProviderResponseInvalid, "missing confirmation code")
	}

	return &entity.Booking{
		Provider:           rentalcarsName,
		ConfirmationCode:   resp.Confirmation,
		Status:             mapRentalcarsStatus(resp.Status),
		Service:            entity.ServiceCar,
		ItemID:             itemID,
		TotalAmount:        resp.Total,
		Currency:           resp.Currency,
		Passengers:         party.Passengers,
		CancellationPolicy: resp.Policy,
		CreatedAt:          time.Now().UTC(),
	}, nil
}

func mapRentalcarsStatus(s string) entity.BookingStatus {
	switch s {
	case "pending":
		return entity.StatusPending
	case "on_request":
		return entity.StatusOnRequest
	default:
		return entity.StatusConfirmed
	}
}
