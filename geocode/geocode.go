// Package geocode is a small client for Nominatim-compatible place search.
//
// A query that yields nothing is retried once with a locale hint appended.
// Results are deduplicated on their exact coordinate strings and capped at
// MaxCandidates.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/eringen/tripengine/content"
)

const (
	// DefaultBaseURL is the public OpenStreetMap Nominatim instance.
	DefaultBaseURL = "https://nominatim.openstreetmap.org"
	// DefaultHint is appended to a query that returned no results.
	DefaultHint = " japan korea"
	// DefaultUserAgent identifies the client, as the Nominatim usage policy
	// requires.
	DefaultUserAgent = "tripengine (+https://github.com/eringen/tripengine)"
	// MaxCandidates caps the number of candidates returned by Search.
	MaxCandidates = 5

	resultLimit = 10
)

// ErrSearchFailed wraps every network, status or decoding failure of a search.
var ErrSearchFailed = errors.New("search failed")

// Candidate is one place offered for selection.
type Candidate struct {
	Name           string  `json:"name"`
	DisplayAddress string  `json:"displayAddress"`
	Lng            float64 `json:"lng"`
	Lat            float64 `json:"lat"`
}

// Coords returns the candidate position.
func (c Candidate) Coords() content.Coords {
	return content.NewCoords(c.Lng, c.Lat)
}

type place struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

// Client searches places. The zero value is not usable; call New.
type Client struct {
	baseURL   string
	userAgent string
	hint      string
	http      *http.Client
	limiter   *rate.Limiter
	log       *zap.SugaredLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another Nominatim-compatible endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithUserAgent overrides DefaultUserAgent.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithHint overrides the retry suffix. An empty hint disables the retry.
func WithHint(h string) Option {
	return func(c *Client) { c.hint = h }
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithRateLimit sets the request rate. The default is one request per second.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(r, burst) }
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(c *Client) { c.log = l }
}

// New returns a Client with the given options applied over the defaults.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		hint:      DefaultHint,
		http:      &http.Client{Timeout: 10 * time.Second},
		limiter:   rate.NewLimiter(rate.Every(time.Second), 1),
		log:       zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Search looks query up and returns at most MaxCandidates distinct places in
// service order. An empty result is not an error.
func (c *Client) Search(ctx context.Context, query string) ([]Candidate, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query is required", content.ErrValidation)
	}

	places, err := c.fetch(ctx, query)
	if err != nil {
		return nil, err
	}
	if len(places) == 0 && c.hint != "" {
		c.log.Debugw("geocode: no results, retrying with hint", "query", query, "hint", c.hint)
		if places, err = c.fetch(ctx, query+c.hint); err != nil {
			return nil, err
		}
	}
	return dedupe(places, c.log), nil
}

func (c *Client) fetch(ctx context.Context, q string) ([]place, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(resultLimit))
	params.Set("addressdetails", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrSearchFailed, resp.Status)
	}
	var places []place
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrSearchFailed, err)
	}
	return places, nil
}

// dedupe keeps the first place for every exact "lat_lon" key and stops at
// MaxCandidates. Places whose coordinates do not parse are skipped.
func dedupe(places []place, log *zap.SugaredLogger) []Candidate {
	seen := make(map[string]struct{}, len(places))
	out := make([]Candidate, 0, MaxCandidates)
	for _, p := range places {
		key := p.Lat + "_" + p.Lon
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}

		lat, errLat := strconv.ParseFloat(p.Lat, 64)
		lng, errLng := strconv.ParseFloat(p.Lon, 64)
		if errLat != nil || errLng != nil || content.NewCoords(lng, lat).Validate() != nil {
			log.Debugw("geocode: skipping place with bad coordinates", "lat", p.Lat, "lon", p.Lon)
			continue
		}

		name := p.Name
		if name == "" {
			name = strings.TrimSpace(strings.Split(p.DisplayName, ",")[0])
		}
		out = append(out, Candidate{Name: name, DisplayAddress: p.DisplayName, Lng: lng, Lat: lat})
		if len(out) >= MaxCandidates {
			break
		}
	}
	return out
}
