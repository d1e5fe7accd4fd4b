// internal/domain/provider/provider.go
package provider

import (
	"context"

	"github.com/spirittours/travelcore/internal/domain/entity"
)

// Credentials is the configuration one concrete adapter needs to reach its
// provider. Storage and rotation are an external concern; adapters receive
// this object at construction time.
type Credentials struct {
	Endpoint   string
	APIKey     string
	APISecret  string
	Username   string
	Password   string
	BranchCode string // target branch / market code where the provider requires one
}

// Configured reports whether enough material is present to attempt a call
func (c Credentials) Configured() bool {
	return c.Endpoint != "" && (c.APIKey != "" || c.Username != "")
}

// PartyInfo carries the passenger and contact details required to book one item
type PartyInfo struct {
	Passengers     []entity.Passenger
	ContactEmail   string
	ContactPhone   string
	IdempotencyKey string // forwarded to providers that support duplicate-submission protection
}

// Adapter is the contract every external inventory source implements.
// Each operation is independently fallible. Search must return an empty item
// list for "no results" and reserve errors for transport, auth, or malformed
// response conditions. Adapters own their session state and must keep token
// renewal safe under concurrent searches; they never share mutable state with
// each other.
type Adapter interface {
	Name() string
	Supports(service entity.ServiceType) bool
	Search(ctx context.Context, req *entity.SearchRequest) (*entity.SearchResult, error)
	GetDetails(ctx context.Context, itemID string) (*entity.ItemDetails, error)
	CheckAvailability(ctx context.Context, itemID string) (bool, error)
	Book(ctx context.Context, itemID string, party PartyInfo) (*entity.Booking, error)
}
