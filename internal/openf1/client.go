package openf1

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/pfrederiksen/f1-events/internal/logger"
)

const (
	// DefaultBaseURL is the public OpenF1 query API.
	DefaultBaseURL = "https://api.openf1.org/v1"
	UserAgent      = "f1-events/1.0 (github.com/pfrederiksen/f1-events)"
	DefaultTimeout = 10 * time.Second
)

// Client queries the OpenF1 JSON-over-HTTP API. All methods take a
// context; the per-request timeout bounds every fetch so no cycle can
// block indefinitely.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client against the public OpenF1 API.
func New() *Client {
	return NewWithBaseURL(DefaultBaseURL, DefaultTimeout)
}

// NewWithBaseURL creates a client against an alternate endpoint, used by
// tests and mirrors.
func NewWithBaseURL(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// get fetches one resource and returns the raw record array. Transient
// failures (network errors, 5xx) are retried briefly; the retry budget
// stays well under the polling interval so a slow upstream degrades to a
// failed cycle, not a stalled loop.
func (c *Client) get(ctx context.Context, resource string, params url.Values) ([]json.RawMessage, error) {
	reqURL := fmt.Sprintf("%s/%s?%s", c.baseURL, resource, params.Encode())

	var records []json.RawMessage
	op := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("creating request: %w", err))
		}
		req.Header.Set("User-Agent", UserAgent)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= http.StatusInternalServerError {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			return backoff.Permanent(fmt.Errorf("status %d", resp.StatusCode))
		}

		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}

		records = nil
		if err := json.Unmarshal(body, &records); err != nil {
			return backoff.Permanent(fmt.Errorf("parsing response: %w", err))
		}
		return nil
	}

	ebo := backoff.NewExponentialBackOff()
	ebo.InitialInterval = 200 * time.Millisecond
	ebo.MaxElapsedTime = 2 * time.Second
	if err := backoff.Retry(op, backoff.WithContext(backoff.WithMaxRetries(ebo, 2), ctx)); err != nil {
		return nil, fmt.Errorf("fetching %s: %w", resource, err)
	}
	return records, nil
}

// decodeRecords decodes each raw record individually so a single
// malformed record is dropped with a warning instead of failing the
// whole batch.
func decodeRecords[T interface{ validate() error }](raw []json.RawMessage, resource string) []T {
	out := make([]T, 0, len(raw))
	dropped := 0
	for _, r := range raw {
		var rec T
		if err := json.Unmarshal(r, &rec); err != nil {
			dropped++
			continue
		}
		if err := rec.validate(); err != nil {
			dropped++
			continue
		}
		out = append(out, rec)
	}
	if dropped > 0 {
		logger.Warn("dropped malformed records", logger.Fields{
			"resource": resource,
			"count":    dropped,
		})
	}
	return out
}

func sessionParams(sessionKey int) url.Values {
	params := url.Values{}
	params.Set("session_key", fmt.Sprintf("%d", sessionKey))
	return params
}

// LatestSession returns the most recent session, or nil when the API
// reports no session at all.
func (c *Client) LatestSession(ctx context.Context) (*Session, error) {
	params := url.Values{}
	params.Set("session_key", "latest")
	raw, err := c.get(ctx, "sessions", params)
	if err != nil {
		return nil, err
	}
	sessions := decodeRecords[Session](raw, "sessions")
	if len(sessions) == 0 {
		return nil, nil
	}
	return &sessions[0], nil
}

// Positions returns all position observations for a session.
func (c *Client) Positions(ctx context.Context, sessionKey int) ([]Position, error) {
	raw, err := c.get(ctx, "position", sessionParams(sessionKey))
	if err != nil {
		return nil, err
	}
	return decodeRecords[Position](raw, "position"), nil
}

// RaceControl returns all control-room messages for a session.
func (c *Client) RaceControl(ctx context.Context, sessionKey int) ([]RaceControl, error) {
	raw, err := c.get(ctx, "race_control", sessionParams(sessionKey))
	if err != nil {
		return nil, err
	}
	return decodeRecords[RaceControl](raw, "race_control"), nil
}

// PitStops returns all pit-stop records for a session.
func (c *Client) PitStops(ctx context.Context, sessionKey int) ([]Pit, error) {
	raw, err := c.get(ctx, "pit", sessionParams(sessionKey))
	if err != nil {
		return nil, err
	}
	return decodeRecords[Pit](raw, "pit"), nil
}

// Laps returns all lap records for a session.
func (c *Client) Laps(ctx context.Context, sessionKey int) ([]Lap, error) {
	raw, err := c.get(ctx, "laps", sessionParams(sessionKey))
	if err != nil {
		return nil, err
	}
	return decodeRecords[Lap](raw, "laps"), nil
}

// Drivers returns the driver roster for a session.
func (c *Client) Drivers(ctx context.Context, sessionKey int) ([]Driver, error) {
	raw, err := c.get(ctx, "drivers", sessionParams(sessionKey))
	if err != nil {
		return nil, err
	}
	return decodeRecords[Driver](raw, "drivers"), nil
}
