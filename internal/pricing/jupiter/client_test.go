package jupiter

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/rovshanmuradov/kmoon-analytics/internal/metrics"
)

const mint = "HQ2KXz4rJf1b18sHiGgvsCUe8hgEH21jqf2gys5jpump"

func TestPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, mint, r.URL.Query().Get("ids"))
		w.Write([]byte(`{"data":{"` + mint + `":{"mintSymbol":"KMOON","price":0.0000425}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	quote, err := c.Price(context.Background(), mint)
	require.NoError(t, err)

	assert.Equal(t, "KMOON", quote.Symbol)
	assert.Equal(t, "0.0000425", quote.Price.String())
}

func TestPriceNotListed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	_, err := c.Price(context.Background(), mint)
	assert.ErrorIs(t, err, ErrNotListed)
}

func TestPriceMissingSymbol(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data":{"` + mint + `":{"price":1.5}}}`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	quote, err := c.Price(context.Background(), mint)
	require.NoError(t, err)
	assert.Equal(t, "", quote.Symbol)
}

func TestPriceMalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	_, err := c.Price(context.Background(), mint)
	assert.ErrorIs(t, err, metrics.ErrMalformed)
}

func TestPriceUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := New(srv.URL, time.Second, zap.NewNop())
	_, err := c.Price(context.Background(), mint)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}
