package authsdk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrNotReady is returned by GetReadiness when the service answers 503. The
// report is still returned alongside it.
var ErrNotReady = errors.New("authsdk: service not ready")

// GetLiveness fetches /livez.
func (c *SDKClient) GetLiveness(ctx context.Context) (*HealthResponse, error) {
	report, code, err := c.probe(ctx, "/livez")
	if err != nil {
		return nil, err
	}
	if code != http.StatusOK {
		return report, fmt.Errorf("authsdk: livez returned %d", code)
	}
	return report, nil
}

// GetReadiness fetches /readyz.
func (c *SDKClient) GetReadiness(ctx context.Context) (*HealthResponse, error) {
	report, code, err := c.probe(ctx, "/readyz")
	switch {
	case err != nil:
		return nil, err
	case code == http.StatusServiceUnavailable:
		return report, ErrNotReady
	case code != http.StatusOK:
		return report, fmt.Errorf("authsdk: readyz returned %d", code)
	}
	return report, nil
}

// probe decodes the health body regardless of status; both probes answer
// with the same shape on failure.
func (c *SDKClient) probe(ctx context.Context, path string) (*HealthResponse, int, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, 0, err
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	var report HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&report); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("authsdk: decode %s: %w", path, err)
	}
	return &report, resp.StatusCode, nil
}
