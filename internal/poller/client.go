package poller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/contoso-notify/internal/domain"
)

// fetchTimeout bounds one feed request so a hung server cannot stall the loop.
const fetchTimeout = 10 * time.Second

// ErrFeed is returned when the feed answers with success:false.
var ErrFeed = errors.New("notification feed reported failure")

type feedEnvelope struct {
	Success       bool                  `json:"success"`
	Message       string                `json:"message"`
	Notifications []domain.Notification `json:"notifications"`
	Count         int                   `json:"count"`
}

// Client fetches pending notifications from the delivery endpoint.
type Client struct {
	feedURL string
	http    *http.Client
}

// NewClient targets the API rooted at baseURL (e.g. http://localhost:3000).
// A nil hc uses a client with fetchTimeout.
func NewClient(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: fetchTimeout}
	}
	return &Client{
		feedURL: strings.TrimRight(baseURL, "/") + "/v1/notifications",
		http:    hc,
	}
}

// Fetch drains one batch. Delivered items are gone from the server whether
// or not the caller renders them.
func (c *Client) Fetch(ctx context.Context) ([]domain.Notification, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build feed request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch feed: unexpected status %d", resp.StatusCode)
	}

	var env feedEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("decode feed: %w", err)
	}
	if !env.Success {
		return nil, fmt.Errorf("%w: %s", ErrFeed, env.Message)
	}
	return env.Notifications, nil
}
