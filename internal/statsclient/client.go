// Package statsclient is the HTTP client for the stats collaborator
// service: it records endpoint hits and fetches aggregated view counts.
package statsclient

import (
	"bytes"
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

	"github.com/ntroshkin/explore-with-me/internal/model"
)

// Client talks to one stats service instance on behalf of one app.
type Client struct {
	baseURL string
	app     string
	http    *http.Client
}

// New constructs a Client. app is the application name recorded with
// every hit.
func New(baseURL, app string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		app:     app,
		http:    &http.Client{Timeout: 5 * time.Second},
	}
}

// Hit records an access to uri from ip. The call is best-effort: the
// listing that triggered it must not fail because the stats service is
// down, so errors are logged and swallowed.
func (c *Client) Hit(ctx context.Context, uri, ip string) {
	hit := model.EndpointHit{
		App:       c.app,
		URI:       uri,
		IP:        ip,
		Timestamp: model.NewDateTime(time.Now()),
	}
	body, err := json.Marshal(hit)
	if err != nil {
		log.Printf("stats: marshal hit: %v", err)
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		log.Printf("stats: build hit request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		log.Printf("stats: post hit: %v", err)
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusCreated {
		log.Printf("stats: post hit: unexpected status %d", resp.StatusCode)
	}
}

// Stats fetches aggregated hit counts for uris between start and end.
// unique selects distinct-IP counting.
func (c *Client) Stats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]model.ViewStats, error) {
	params := url.Values{}
	params.Set("start", start.Format(model.DateTimeLayout))
	params.Set("end", end.Format(model.DateTimeLayout))
	if len(uris) > 0 {
		params.Set("uris", strings.Join(uris, ","))
	}
	params.Set("unique", strconv.FormatBool(unique))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build stats request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get stats: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get stats: unexpected status %d", resp.StatusCode)
	}

	var stats []model.ViewStats
	if err := json.NewDecoder(resp.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("decode stats: %w", err)
	}
	return stats, nil
}

// Views returns unique view counts keyed by URI over the full recorded
// history. Events without hits are absent from the map.
func (c *Client) Views(ctx context.Context, uris []string) (map[string]int64, error) {
	// The recording window is unbounded in practice; query a range wide
	// enough to cover everything ever recorded.
	start := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2100, 1, 1, 0, 0, 0, 0, time.UTC)
	stats, err := c.Stats(ctx, start, end, uris, true)
	if err != nil {
		return nil, err
	}
	views := make(map[string]int64, len(stats))
	for _, s := range stats {
		views[s.URI] = s.Hits
	}
	return views, nil
}
