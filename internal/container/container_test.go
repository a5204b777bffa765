package container

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"jewelry/catalog/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WithoutStores(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"categories":[{"_id":"rings","name":"Rings"}]}`))
	}))
	t.Cleanup(srv.Close)

	cfg := &config.Config{API: config.APIConfig{BaseURL: srv.URL, Token: "t", MaxRequestsPerSecond: 100}}
	app, err := New(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	_, err = app.Categories.Refresh(context.Background())
	require.NoError(t, err)
	assert.Len(t, app.Categories.Navigator().Roots(), 1)
	assert.True(t, app.Session.Active())
}

func TestNew_RedisUnreachable(t *testing.T) {
	cfg := &config.Config{
		API:   config.APIConfig{BaseURL: "http://127.0.0.1:1"},
		Redis: config.RedisConfig{Enabled: true, Host: "127.0.0.1", Port: 1},
	}

	_, err := New(context.Background(), cfg)
	assert.ErrorContains(t, err, "failed to connect to Redis")
}

func TestConsumerName(t *testing.T) {
	a, b := consumerName(), consumerName()
	assert.NotEqual(t, a, b)
}
