// Package verifier implements the asynchronous delay-verification boundary:
// a flight-status lookup client and a dispatcher that answers verification
// requests through the engine's callback.
package verifier

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"travelsure/internal/utils"
)

// FlightStatus is the lookup answer. DelayMinutes is nil when the provider
// only reports a delayed flag without a magnitude.
type FlightStatus struct {
	Found        bool
	Delayed      bool
	DelayMinutes *int64
}

// StatusClient answers "was this flight delayed and by how much" queries.
type StatusClient interface {
	FlightStatus(ctx context.Context, flightKey string, departure time.Time) (FlightStatus, error)
}

// HTTPStatusClient queries a flightdelay-style quote API:
// GET {base}/{airline}/{flightNumber}?date=YYYY-MM-DD.
type HTTPStatusClient struct {
	baseURL string
	client  *http.Client
}

func NewHTTPStatusClient(baseURL string, timeout time.Duration) *HTTPStatusClient {
	return &HTTPStatusClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

type quoteResponse struct {
	Status       string `json:"status"`
	DelayMinutes *int64 `json:"delay_minutes"`
}

func (c *HTTPStatusClient) FlightStatus(ctx context.Context, flightKey string, _ time.Time) (FlightStatus, error) {
	designator, date, ok := strings.Cut(flightKey, "-")
	if !ok {
		return FlightStatus{}, fmt.Errorf("malformed flight key: %q", flightKey)
	}
	airline, flightNum, err := utils.ParseFlightNumber(designator)
	if err != nil {
		return FlightStatus{}, fmt.Errorf("malformed flight key %q: %w", flightKey, err)
	}

	url := fmt.Sprintf("%s/%s/%s?date=%s", c.baseURL, airline, flightNum, date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return FlightStatus{}, fmt.Errorf("failed to build flight status request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return FlightStatus{}, fmt.Errorf("flight status lookup failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return FlightStatus{Found: false}, nil
	}
	if resp.StatusCode != http.StatusOK {
		return FlightStatus{}, fmt.Errorf("flight status lookup returned %d", resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return FlightStatus{}, fmt.Errorf("failed to decode flight status response: %w", err)
	}

	status := FlightStatus{
		Found:        true,
		Delayed:      strings.EqualFold(quote.Status, "delayed") || strings.EqualFold(quote.Status, "cancelled"),
		DelayMinutes: quote.DelayMinutes,
	}
	return status, nil
}
