// Package coredata polls a core-data event API and turns retrieved events
// into raw samples for scoring.
package coredata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hed1ad/edgeguard/pkg/features"
)

// Event is one event record as returned by the core-data API.
type Event struct {
	ID         string `json:"id"`
	DeviceName string `json:"deviceName"`
	Origin     int64  `json:"origin"`
	Readings   any    `json:"readings"`
}

type eventsResponse struct {
	Events []Event `json:"events"`
}

// Client polls the event API. It never stops on a failed fetch: live
// scoring must survive a flaky upstream, so errors are logged and the next
// poll proceeds.
type Client struct {
	baseURL  string
	limit    int
	interval time.Duration
	httpc    *http.Client
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLimit sets how many events each poll requests.
func WithLimit(n int) Option {
	return func(c *Client) {
		c.limit = n
	}
}

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(c *Client) {
		c.interval = d
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) {
		c.httpc = httpc
	}
}

// WithLogger sets the logger used for fetch failures.
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for the event API at baseURL
// (e.g. http://localhost:59880/api/v3).
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		limit:    5,
		interval: 2 * time.Second,
		httpc:    &http.Client{Timeout: 10 * time.Second},
		logger:   log.New(log.Writer(), "coredata: ", log.LstdFlags),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Fetch retrieves the most recent events.
func (c *Client) Fetch(ctx context.Context) ([]Event, error) {
	u := c.baseURL + "/event/all?" + url.Values{
		"offset": {"0"},
		"limit":  {strconv.Itoa(c.limit)},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch events: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch events: unexpected status %d", resp.StatusCode)
	}

	var body eventsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode events: %w", err)
	}

	return body.Events, nil
}

// Sample converts an event into a raw sample; its readings become the
// payload handed to feature extraction.
func Sample(e Event) features.RawSample {
	return features.RawSample{
		Key:   e.ID,
		Type:  "event",
		Value: e.Readings,
	}
}

// Read performs a single fetch and returns its events as samples, oldest
// first.
func (c *Client) Read() ([]features.RawSample, error) {
	events, err := c.Fetch(context.Background())
	if err != nil {
		return nil, err
	}

	samples := make([]features.RawSample, 0, len(events))
	for i := len(events) - 1; i >= 0; i-- {
		samples = append(samples, Sample(events[i]))
	}
	return samples, nil
}

// Stream polls the API until the context ends, emitting one sample per
// event. Events within a batch are emitted oldest first, matching the API's
// newest-first ordering reversed.
func (c *Client) Stream(ctx context.Context) (<-chan features.RawSample, error) {
	out := make(chan features.RawSample, 100)

	go func() {
		defer close(out)
		ticker := time.NewTicker(c.interval)
		defer ticker.Stop()

		for {
			events, err := c.Fetch(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Printf("poll failed: %v", err)
			}

			for i := len(events) - 1; i >= 0; i-- {
				select {
				case out <- Sample(events[i]):
				case <-ctx.Done():
					return
				}
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// Close releases resources. The client holds none beyond its HTTP client.
func (c *Client) Close() error {
	c.httpc.CloseIdleConnections()
	return nil
}
