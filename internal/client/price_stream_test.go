package client

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jewelry/catalog/internal/config"
	"jewelry/catalog/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func priceServer(t *testing.T, events ...string) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/metal-prices/stream", r.URL.Path)
		assert.Equal(t, "Bearer stream-token", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		flusher := w.(http.Flusher)
		for _, event := range events {
			_, _ = fmt.Fprintf(w, "data: %s\n\n", event)
			flusher.Flush()
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestPriceStream_DeliversUpdatesUntilServerEnds(t *testing.T) {
	srv := priceServer(t,
		`{"prices":[{"metal":"gold","purity":"22K","pricePerGram":6100,"currency":"INR"}],"timestamp":"2026-10-16T10:00:00Z"}`,
		`{"prices":[{"metal":"","purity":"","pricePerGram":-1}]}`,
		`{"prices":[{"metal":"silver","purity":"999","pricePerGram":92.5,"currency":"INR"}],"timestamp":"2026-10-16T10:00:05Z"}`,
	)

	cfg := config.APIConfig{BaseURL: srv.URL, PriceStreamPath: "/api/metal-prices/stream"}
	stream := NewPriceStream(cfg, NewSession("stream-token"))

	var updates []domain.MetalPriceUpdate
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := stream.Subscribe(ctx, func(update domain.MetalPriceUpdate) {
		updates = append(updates, update)
	})
	require.NoError(t, err)

	require.Len(t, updates, 2)
	assert.Equal(t, "gold:22k", updates[0].Prices[0].Key())
	assert.Equal(t, "silver:999", updates[1].Prices[0].Key())
}

func TestPriceStream_LoggedOutSession(t *testing.T) {
	session := NewSession("stream-token")
	session.Logout()

	stream := NewPriceStream(config.APIConfig{BaseURL: "http://127.0.0.1:1", PriceStreamPath: "/stream"}, session)
	err := stream.Subscribe(context.Background(), func(domain.MetalPriceUpdate) {})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}
