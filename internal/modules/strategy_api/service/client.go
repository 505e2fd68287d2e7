package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/opentracing/opentracing-go"
	"github.com/opentracing/opentracing-go/ext"

	"strategy_builder/internal/models"
)

// Client: HTTP-клиент внешнего API стратегий.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// payload: тело create/update, ровно те поля, что принимает API.
type payload struct {
	Name               string           `json:"name"`
	Description        string           `json:"description,omitempty"`
	SymbolID           int64            `json:"symbol_id"`
	Timeframe          models.Timeframe `json:"timeframe"`
	Leverage           float64          `json:"leverage"`
	MonitorIntervalSec int              `json:"monitor_interval_sec"`
	ConfigJSON         string           `json:"config_json"`
}

func toPayload(rec models.StrategyRecord) payload {
	return payload{
		Name:               rec.Name,
		Description:        rec.Description,
		SymbolID:           rec.SymbolID,
		Timeframe:          rec.Timeframe,
		Leverage:           rec.Leverage,
		MonitorIntervalSec: rec.MonitorIntervalSec,
		ConfigJSON:         rec.ConfigJSON,
	}
}

// record: запись в ответе API. Время приходит без зоны (UTC), поэтому строкой.
type record struct {
	payload
	ID            int64  `json:"id"`
	Status        string `json:"status"`
	CreatedFromAI bool   `json:"created_from_ai"`
	CreatedAt     string `json:"created_at"`
	UpdatedAt     string `json:"updated_at"`
}

var timeLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05.999999999", "2006-01-02 15:04:05"}

func parseTime(s string) time.Time {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func (r record) model() models.StrategyRecord {
	return models.StrategyRecord{
		ID:                 r.ID,
		Name:               r.Name,
		Description:        r.Description,
		SymbolID:           r.SymbolID,
		Timeframe:          r.Timeframe,
		Leverage:           r.Leverage,
		MonitorIntervalSec: r.MonitorIntervalSec,
		ConfigJSON:         r.ConfigJSON,
		Status:             r.Status,
		CreatedFromAI:      r.CreatedFromAI,
		CreatedAt:          parseTime(r.CreatedAt),
		UpdatedAt:          parseTime(r.UpdatedAt),
	}
}

// Create: POST /strategies/
func (c *Client) Create(ctx context.Context, rec models.StrategyRecord) (models.StrategyRecord, error) {
	var out record
	if err := c.do(ctx, http.MethodPost, "/strategies/", toPayload(rec), &out); err != nil {
		return models.StrategyRecord{}, fmt.Errorf("create strategy: %w", err)
	}
	return out.model(), nil
}

// Update: PUT /strategies/{id}
func (c *Client) Update(ctx context.Context, id int64, rec models.StrategyRecord) (models.StrategyRecord, error) {
	var out record
	path := "/strategies/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodPut, path, toPayload(rec), &out); err != nil {
		return models.StrategyRecord{}, fmt.Errorf("update strategy %d: %w", id, err)
	}
	return out.model(), nil
}

// Get: GET /strategies/{id}
func (c *Client) Get(ctx context.Context, id int64) (models.StrategyRecord, error) {
	var out record
	path := "/strategies/" + strconv.FormatInt(id, 10)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return models.StrategyRecord{}, fmt.Errorf("get strategy %d: %w", id, err)
	}
	return out.model(), nil
}

// ListSymbols: справочник инструментов, GET /strategies/symbols/list
func (c *Client) ListSymbols(ctx context.Context) ([]models.Symbol, error) {
	var out []models.Symbol
	if err := c.do(ctx, http.MethodGet, "/strategies/symbols/list", nil, &out); err != nil {
		return nil, fmt.Errorf("list symbols: %w", err)
	}
	return out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) (err error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "strategy_api "+method+" "+path)
	ext.HTTPMethod.Set(span, method)
	defer func() {
		if err != nil {
			ext.Error.Set(span, true)
		}
		span.Finish()
	}()

	var reader io.Reader
	if body != nil {
		data, err := sonic.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body: %w", err)
	}
	ext.HTTPStatusCode.Set(span, uint16(resp.StatusCode))

	if resp.StatusCode/100 != 2 {
		var apiErr struct {
			Detail any `json:"detail"`
		}
		if sonic.Unmarshal(data, &apiErr) == nil && apiErr.Detail != nil {
			return fmt.Errorf("http %d: %v", resp.StatusCode, apiErr.Detail)
		}
		return fmt.Errorf("http %d: %s", resp.StatusCode, string(data))
	}

	if out == nil {
		return nil
	}
	if err := sonic.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
