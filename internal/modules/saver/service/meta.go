package service

import (
	"fmt"
	"strings"

	"strategy_builder/internal/models"
)

const (
	DefaultLeverage           = 1.0
	DefaultMonitorIntervalSec = 60
	MaxLeverage               = 125.0
)

// StrategyMeta: поля записи стратегии вокруг config_json.
type StrategyMeta struct {
	Name               string
	Description        string
	SymbolID           int64
	Timeframe          models.Timeframe
	Leverage           float64
	MonitorIntervalSec int
}

// WithDefaults заполняет плечо и интервал, если они не заданы.
func (m StrategyMeta) WithDefaults() StrategyMeta {
	if m.Leverage == 0 {
		m.Leverage = DefaultLeverage
	}
	if m.MonitorIntervalSec == 0 {
		m.MonitorIntervalSec = DefaultMonitorIntervalSec
	}
	return m
}

func (m StrategyMeta) Validate() error {
	var problems []string
	if strings.TrimSpace(m.Name) == "" {
		problems = append(problems, "name is required")
	}
	if m.SymbolID <= 0 {
		problems = append(problems, "symbol is required")
	}
	if !m.Timeframe.Valid() {
		problems = append(problems, fmt.Sprintf("unknown timeframe %q", m.Timeframe))
	}
	if m.Leverage < 1 || m.Leverage > MaxLeverage {
		problems = append(problems, fmt.Sprintf("leverage %v not in [1, %v]", m.Leverage, MaxLeverage))
	}
	if m.MonitorIntervalSec < 1 {
		problems = append(problems, "monitor interval must be at least 1s")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidMeta, strings.Join(problems, "; "))
	}
	return nil
}

func (m StrategyMeta) record(configJSON string) models.StrategyRecord {
	return models.StrategyRecord{
		Name:               m.Name,
		Description:        m.Description,
		SymbolID:           m.SymbolID,
		Timeframe:          m.Timeframe,
		Leverage:           m.Leverage,
		MonitorIntervalSec: m.MonitorIntervalSec,
		ConfigJSON:         configJSON,
	}
}
