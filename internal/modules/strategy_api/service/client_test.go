package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy_builder/internal/models"
)

func testRecord() models.StrategyRecord {
	return models.StrategyRecord{
		Name:               "kdj dip",
		SymbolID:           3,
		Timeframe:          "1H",
		Leverage:           2,
		MonitorIntervalSec: 60,
		ConfigJSON:         `{"buy_groups":[],"sell_groups":[]}`,
		Status:             "ignored",
	}
}

func TestClientCreate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/strategies/", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		var got map[string]any
		require.NoError(t, sonic.Unmarshal(body, &got))
		assert.Equal(t, "kdj dip", got["name"])
		assert.Equal(t, "1H", got["timeframe"])
		assert.Equal(t, `{"buy_groups":[],"sell_groups":[]}`, got["config_json"])
		// только поля API
		assert.NotContains(t, got, "status")
		assert.NotContains(t, got, "created_at")
		assert.NotContains(t, got, "description")

		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"id":17,"name":"kdj dip","symbol_id":3,"timeframe":"1H","leverage":2,
			"monitor_interval_sec":60,"config_json":"{}","status":"DRAFT","created_from_ai":false,
			"created_at":"2024-05-01T10:00:00.123456","updated_at":"2024-05-01T10:00:00Z"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	rec, err := c.Create(context.Background(), testRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(17), rec.ID)
	assert.Equal(t, "DRAFT", rec.Status)
	assert.Equal(t, 2024, rec.CreatedAt.Year())
	assert.Equal(t, 10, rec.UpdatedAt.Hour())
}

func TestClientUpdate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/strategies/17", r.URL.Path)
		_, _ = w.Write([]byte(`{"id":17,"name":"renamed"}`))
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL, time.Second).Update(context.Background(), 17, testRecord())
	require.NoError(t, err)
	assert.Equal(t, int64(17), rec.ID)
	assert.Equal(t, "renamed", rec.Name)
	assert.True(t, rec.CreatedAt.IsZero())
}

func TestClientErrorDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"detail":"Strategy not found"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Get(context.Background(), 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "get strategy 5")
	assert.Contains(t, err.Error(), "http 404")
	assert.Contains(t, err.Error(), "Strategy not found")
}

func TestClientErrorPlainBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, time.Second).Update(context.Background(), 1, testRecord())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http 502")
	assert.Contains(t, err.Error(), "boom")
}

func TestClientListSymbols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/strategies/symbols/list", r.URL.Path)
		_, _ = w.Write([]byte(`[{"id":1,"inst_id":"BTC-USDT-SWAP","base_ccy":"BTC","quote_ccy":"USDT",
			"inst_type":"SWAP","display_name":"BTC/USDT"}]`))
	}))
	defer srv.Close()

	symbols, err := NewClient(srv.URL, time.Second).ListSymbols(context.Background())
	require.NoError(t, err)
	require.Len(t, symbols, 1)
	assert.Equal(t, "BTC-USDT-SWAP", symbols[0].InstID)
	assert.Equal(t, "BTC/USDT", symbols[0].DisplayName)
}

func TestClientContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewClient(srv.URL, time.Second).Create(ctx, testRecord())
	require.ErrorIs(t, err, context.Canceled)
}
