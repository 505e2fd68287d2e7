package service

import (
	"fmt"
	"sync"

	"strategy_builder/internal/models"
)

// Catalog: неизменяемый реестр индикаторов. После New только читается,
// поэтому безопасен для любого числа сессий без блокировок.
type Catalog struct {
	indicators []models.IndicatorConfig
	bySide     map[models.Side][]models.IndicatorConfig
	byType     map[models.Side]map[string]int
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default: встроенный каталог процесса.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := New(builtinIndicators())
		if err != nil {
			panic(fmt.Sprintf("builtin catalog: %v", err))
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// New проверяет целостность и строит индексы каталога.
func New(indicators []models.IndicatorConfig) (*Catalog, error) {
	c := &Catalog{
		bySide: make(map[models.Side][]models.IndicatorConfig, len(models.Sides)),
		byType: make(map[models.Side]map[string]int, len(models.Sides)),
	}
	for _, side := range models.Sides {
		c.byType[side] = make(map[string]int)
	}

	seenSignals := make(map[string]string)
	for _, ind := range indicators {
		if ind.Type == "" {
			return nil, fmt.Errorf("indicator with empty type")
		}
		for side, signals := range ind.Signals {
			if !side.Valid() {
				return nil, fmt.Errorf("indicator %s: unknown side %q", ind.Type, side)
			}
			for _, sig := range signals {
				if sig.Value == "" {
					return nil, fmt.Errorf("indicator %s: signal with empty value", ind.Type)
				}
				if prev, dup := seenSignals[sig.Value]; dup {
					return nil, fmt.Errorf("signal %s declared twice (%s and %s/%s)", sig.Value, prev, ind.Type, side)
				}
				seenSignals[sig.Value] = fmt.Sprintf("%s/%s", ind.Type, side)
				if err := checkParams(sig); err != nil {
					return nil, fmt.Errorf("indicator %s: %w", ind.Type, err)
				}
			}
		}
		copied := cloneIndicator(ind)
		c.indicators = append(c.indicators, copied)
		for _, side := range models.Sides {
			if len(copied.Signals[side]) == 0 {
				continue
			}
			if _, dup := c.byType[side][copied.Type]; dup {
				return nil, fmt.Errorf("indicator %s declared twice for %s", copied.Type, side)
			}
			c.byType[side][copied.Type] = len(c.bySide[side])
			c.bySide[side] = append(c.bySide[side], copied)
		}
	}
	return c, nil
}

func checkParams(sig models.IndicatorSignal) error {
	names := make(map[string]struct{}, len(sig.Params))
	for _, p := range sig.Params {
		if p.Name == "" {
			return fmt.Errorf("signal %s: param with empty name", sig.Value)
		}
		if _, dup := names[p.Name]; dup {
			return fmt.Errorf("signal %s: param %s declared twice", sig.Value, p.Name)
		}
		names[p.Name] = struct{}{}
		if p.Min != nil && p.Max != nil && *p.Min > *p.Max {
			return fmt.Errorf("signal %s: param %s has min > max", sig.Value, p.Name)
		}
		if !p.InBounds(p.Default) {
			return fmt.Errorf("signal %s: param %s default %v out of bounds", sig.Value, p.Name, p.Default)
		}
	}
	return nil
}

func cloneIndicator(ind models.IndicatorConfig) models.IndicatorConfig {
	out := models.IndicatorConfig{
		Type:    ind.Type,
		Label:   ind.Label,
		Signals: make(map[models.Side][]models.IndicatorSignal, len(ind.Signals)),
	}
	for side, signals := range ind.Signals {
		list := make([]models.IndicatorSignal, 0, len(signals))
		for _, s := range signals {
			s.Params = append([]models.ParamDef(nil), s.Params...)
			list = append(list, s)
		}
		out.Signals[side] = list
	}
	return out
}

// ListIndicators: индикаторы, у которых есть сигналы для стороны, в порядке каталога.
func (c *Catalog) ListIndicators(side models.Side) []models.IndicatorConfig {
	return append([]models.IndicatorConfig(nil), c.bySide[side]...)
}

// Indicator ищет индикатор стороны.
func (c *Catalog) Indicator(indicatorType string, side models.Side) (models.IndicatorConfig, bool) {
	idx, ok := c.byType[side][indicatorType]
	if !ok {
		return models.IndicatorConfig{}, false
	}
	return c.bySide[side][idx], true
}

// GetSignals: сигналы индикатора для стороны; пусто, если ничего не найдено.
func (c *Catalog) GetSignals(indicatorType string, side models.Side) []models.IndicatorSignal {
	ind, ok := c.Indicator(indicatorType, side)
	if !ok {
		return []models.IndicatorSignal{}
	}
	return append([]models.IndicatorSignal(nil), ind.Signals[side]...)
}

// Signal ищет сигнал внутри списка индикатора для стороны.
func (c *Catalog) Signal(indicatorType, signalType string, side models.Side) (models.IndicatorSignal, bool) {
	ind, ok := c.Indicator(indicatorType, side)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	for _, s := range ind.Signals[side] {
		if s.Value == signalType {
			return s, true
		}
	}
	return models.IndicatorSignal{}, false
}

// GetParamDefs: параметры сигнала; пусто, если сигнал не найден.
func (c *Catalog) GetParamDefs(indicatorType, signalType string, side models.Side) []models.ParamDef {
	sig, ok := c.Signal(indicatorType, signalType, side)
	if !ok {
		return []models.ParamDef{}
	}
	return append([]models.ParamDef(nil), sig.Params...)
}

// FirstIndicator: индикатор по умолчанию для нового условия.
func (c *Catalog) FirstIndicator(side models.Side) (models.IndicatorConfig, bool) {
	list := c.bySide[side]
	if len(list) == 0 {
		return models.IndicatorConfig{}, false
	}
	return list[0], true
}

// FirstSignal: сигнал по умолчанию после выбора индикатора.
func (c *Catalog) FirstSignal(indicatorType string, side models.Side) (models.IndicatorSignal, bool) {
	ind, ok := c.Indicator(indicatorType, side)
	if !ok {
		return models.IndicatorSignal{}, false
	}
	return ind.Signals[side][0], true
}
