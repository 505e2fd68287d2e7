package models

import "time"

const StrategyStatusDraft = "DRAFT"

// StrategyRecord: запись стратегии во внешнем хранилище. ConfigJSON для
// хранилища непрозрачная строка.
type StrategyRecord struct {
	ID                 int64     `json:"id,omitempty"`
	Name               string    `json:"name"`
	Description        string    `json:"description,omitempty"`
	SymbolID           int64     `json:"symbol_id"`
	Timeframe          Timeframe `json:"timeframe"`
	Leverage           float64   `json:"leverage"`
	MonitorIntervalSec int       `json:"monitor_interval_sec"`
	ConfigJSON         string    `json:"config_json"`

	Status        string    `json:"status,omitempty"`
	CreatedFromAI bool      `json:"created_from_ai,omitempty"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
	UpdatedAt     time.Time `json:"updated_at,omitempty"`
}

// Symbol: инструмент из внешнего справочника, только для чтения.
type Symbol struct {
	ID          int64  `json:"id"`
	InstID      string `json:"inst_id"`
	BaseCcy     string `json:"base_ccy"`
	QuoteCcy    string `json:"quote_ccy"`
	InstType    string `json:"inst_type"`
	DisplayName string `json:"display_name"`
}
