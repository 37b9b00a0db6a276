package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const defaultIPAPIBaseURL = "http://ip-api.com"

// IPAPIResolver resolves locations via the public ip-api.com JSON endpoint.
// No API key, no local database; strictly best-effort.
type IPAPIResolver struct {
	baseURL string
	client  *http.Client
}

// NewIPAPIResolver creates a resolver with the given per-request timeout.
func NewIPAPIResolver(timeout time.Duration) *IPAPIResolver {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &IPAPIResolver{
		baseURL: defaultIPAPIBaseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// Resolve looks up ip. Returns an error for unreachable service, non-200
// responses, or lookups the service itself reports as failed.
func (r *IPAPIResolver) Resolve(ctx context.Context, ip string) (*Location, error) {
	url := fmt.Sprintf("%s/json/%s?fields=status,country,regionName", r.baseURL, ip)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ip-api status %d", resp.StatusCode)
	}

	var body struct {
		Status     string `json:"status"`
		Country    string `json:"country"`
		RegionName string `json:"regionName"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode ip-api response: %w", err)
	}
	if body.Status != "success" {
		return nil, fmt.Errorf("ip-api lookup failed for %s", ip)
	}

	return &Location{Country: body.Country, Region: body.RegionName}, nil
}
