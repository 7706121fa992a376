package tripengine_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/eringen/tripengine"
	"github.com/eringen/tripengine/geocode"
)

// emptySearch answers every search with no places and records the queries.
type emptySearch struct {
	mu      sync.Mutex
	queries []string
	agents  []string
}

func (s *emptySearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.queries = append(s.queries, r.URL.Query().Get("q"))
	s.agents = append(s.agents, r.UserAgent())
	s.mu.Unlock()
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte("[]"))
}

func TestNewGeocoder_Hint(t *testing.T) {
	tests := []struct {
		name string
		cfg  tripengine.GeocoderConfig
		want []string
	}{
		{"default hint", tripengine.GeocoderConfig{}, []string{"Sapporo", "Sapporo" + geocode.DefaultHint}},
		{"custom hint", tripengine.GeocoderConfig{Hint: " hokkaido"}, []string{"Sapporo", "Sapporo hokkaido"}},
		{"disabled", tripengine.GeocoderConfig{DisableHint: true, Hint: " ignored"}, []string{"Sapporo"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &emptySearch{}
			srv := httptest.NewServer(rec)
			defer srv.Close()
			cfg := tt.cfg
			cfg.BaseURL = srv.URL
			cfg.UserAgent = "tripengine-test/1.0"
			cfg.Timeout = 5 * time.Second

			g := tripengine.NewGeocoder(cfg, nil, geocode.WithRateLimit(rate.Inf, 1))
			found, err := g.Search(context.Background(), "Sapporo")

			require.NoError(t, err)
			assert.Empty(t, found)
			assert.Equal(t, tt.want, rec.queries)
			for _, ua := range rec.agents {
				assert.Equal(t, "tripengine-test/1.0", ua)
			}
		})
	}
}

func TestNewGeocoder_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	g := tripengine.NewGeocoder(tripengine.GeocoderConfig{
		BaseURL:   srv.URL,
		UserAgent: "tripengine-test/1.0",
		Timeout:   50 * time.Millisecond,
	}, nil, geocode.WithRateLimit(rate.Inf, 1))
	_, err := g.Search(context.Background(), "Sapporo")

	assert.ErrorIs(t, err, geocode.ErrSearchFailed)
}
