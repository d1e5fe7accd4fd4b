// internal/interface/adapters/client.go
package adapters

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/spirittours/travelcore/internal/domain/provider"
)

const maxErrorBody = 512

// call performs one HTTP round-trip and returns the raw body and status.
// Transport-level failures (DNS, connect, context timeout) map to
// ErrProviderUnavailable; status interpretation is left to the caller.
func call(ctx context.Context, client *http.Client, providerName, method, url string, headers map[string]string, body interface{}) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, 0, provider.NewError(providerName, provider.ErrProviderResponseInvalid, err.Error())
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, 0, provider.NewError(providerName, provider.ErrProviderUnavailable, err.Error())
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, provider.NewError(providerName, provider.ErrProviderUnavailable, err.Error())
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, provider.NewError(providerName, provider.ErrProviderUnavailable, err.Error())
	}
	return raw, resp.StatusCode, nil
}

// checkSearchStatus maps a non-2xx search/detail response onto the taxonomy
func checkSearchStatus(providerName string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return provider.NewError(providerName, provider.ErrProviderAuthFailed, snippet(body))
	case status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return provider.NewError(providerName, provider.ErrProviderUnavailable, snippet(body))
	default:
		return provider.NewError(providerName, provider.ErrProviderResponseInvalid, snippet(body))
	}
}

// checkBookingStatus is like checkSearchStatus but surfaces provider declines
// verbatim as ErrBookingRejected
func checkBookingStatus(providerName string, status int, body []byte) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return provider.NewError(providerName, provider.ErrProviderAuthFailed, snippet(body))
	case status >= 500 || status == http.StatusRequestTimeout || status == http.StatusTooManyRequests:
		return provider.NewError(providerName, provider.ErrProviderUnavailable, snippet(body))
	default:
		return provider.NewError(providerName, provider.ErrBookingRejected, snippet(body))
	}
}

// decode unmarshals a provider payload, mapping schema mismatches onto
// ErrProviderResponseInvalid
func decode(providerName string, raw []byte, out interface{}) error {
	if err := json.Unmarshal(raw, out); err != nil {
		return provider.NewError(providerName, provider.ErrProviderResponseInvalid, err.Error())
	}
	return nil
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBody {
		s = s[:maxErrorBody]
	}
	return s
}
