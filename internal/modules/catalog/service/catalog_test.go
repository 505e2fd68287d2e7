package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy_builder/internal/models"
)

func TestDefaultCatalogOrder(t *testing.T) {
	c := Default()

	for _, side := range models.Sides {
		list := c.ListIndicators(side)
		require.NotEmpty(t, list, side)
		assert.Equal(t, "MACD", list[0].Type)
		for _, ind := range list {
			assert.NotEmpty(t, ind.Signals[side], "%s has no %s signals", ind.Type, side)
		}
	}

	first, ok := c.FirstSignal("MACD", models.SideBuy)
	require.True(t, ok)
	assert.Equal(t, "MACD_GOLDEN_CROSS", first.Value)

	first, ok = c.FirstSignal("MACD", models.SideSell)
	require.True(t, ok)
	assert.Equal(t, "MACD_DEAD_CROSS", first.Value)
}

func TestDefaultCatalogSignalValuesAreGloballyUnique(t *testing.T) {
	seen := map[string]bool{}
	for _, side := range models.Sides {
		for _, ind := range Default().ListIndicators(side) {
			for _, sig := range ind.Signals[side] {
				assert.False(t, seen[sig.Value], "duplicate signal %s", sig.Value)
				seen[sig.Value] = true
			}
		}
	}
}

func TestLookupsAreSideSpecific(t *testing.T) {
	c := Default()

	assert.NotEmpty(t, c.GetSignals("KDJ", models.SideBuy))
	_, ok := c.Signal("KDJ", "KDJ_OVERSOLD", models.SideSell)
	assert.False(t, ok, "buy signal must not resolve on the sell side")

	defs := c.GetParamDefs("KDJ", "KDJ_OVERSOLD", models.SideBuy)
	require.Len(t, defs, 1)
	assert.Equal(t, "threshold", defs[0].Name)
	assert.Equal(t, 20.0, defs[0].Default)

	defs = c.GetParamDefs("RSI", "RSI_OVERBOUGHT", models.SideSell)
	require.Len(t, defs, 1)
	assert.Equal(t, 70.0, defs[0].Default)
}

func TestLookupMissesAreEmpty(t *testing.T) {
	c := Default()

	assert.Empty(t, c.GetSignals("NOPE", models.SideBuy))
	assert.NotNil(t, c.GetSignals("NOPE", models.SideBuy))
	assert.Empty(t, c.GetParamDefs("MACD", "NOPE", models.SideBuy))
	assert.Empty(t, c.GetParamDefs("MACD", "MACD_GOLDEN_CROSS", models.SideBuy))

	_, ok := c.Indicator("NOPE", models.SideSell)
	assert.False(t, ok)
	_, ok = c.FirstSignal("NOPE", models.SideSell)
	assert.False(t, ok)
}

func TestListIndicatorsSkipsOneSidedEntries(t *testing.T) {
	c, err := New([]models.IndicatorConfig{
		{Type: "ONLY_SELL", Signals: map[models.Side][]models.IndicatorSignal{
			models.SideSell: {{Value: "X_DOWN"}},
		}},
		{Type: "BOTH", Signals: map[models.Side][]models.IndicatorSignal{
			models.SideBuy:  {{Value: "Y_UP"}},
			models.SideSell: {{Value: "Y_DOWN"}},
		}},
	})
	require.NoError(t, err)

	buy := c.ListIndicators(models.SideBuy)
	require.Len(t, buy, 1)
	assert.Equal(t, "BOTH", buy[0].Type)

	first, ok := c.FirstIndicator(models.SideSell)
	require.True(t, ok)
	assert.Equal(t, "ONLY_SELL", first.Type)
}

func TestNewRejectsBrokenCatalogs(t *testing.T) {
	lo, hi := 10.0, 5.0
	cases := map[string][]models.IndicatorConfig{
		"duplicate signal across sides": {
			{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy:  {{Value: "SAME"}},
				models.SideSell: {{Value: "SAME"}},
			}},
		},
		"duplicate type on a side": {
			{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{models.SideBuy: {{Value: "A1"}}}},
			{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{models.SideBuy: {{Value: "A2"}}}},
		},
		"duplicate param": {
			{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{models.SideBuy: {
				{Value: "A1", Params: []models.ParamDef{{Name: "p"}, {Name: "p"}}},
			}}},
		},
		"inverted bounds": {
			{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{models.SideBuy: {
				{Value: "A1", Params: []models.ParamDef{{Name: "p", Default: 7, Min: &lo, Max: &hi}}},
			}}},
		},
		"default out of bounds": {
			{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{models.SideBuy: {
				{Value: "A1", Params: []models.ParamDef{{Name: "p", Default: 1, Min: &lo}}},
			}}},
		},
		"unknown side": {
			{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{"HOLD": {{Value: "A1"}}}},
		},
	}
	for name, indicators := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := New(indicators)
			assert.Error(t, err)
		})
	}
}

func TestCatalogDoesNotAliasCallerData(t *testing.T) {
	src := []models.IndicatorConfig{
		{Type: "A", Signals: map[models.Side][]models.IndicatorSignal{
			models.SideBuy: {{Value: "A1", Params: []models.ParamDef{{Name: "p", Default: 1}}}},
		}},
	}
	c, err := New(src)
	require.NoError(t, err)

	src[0].Signals[models.SideBuy][0].Params[0].Default = 99

	defs := c.GetParamDefs("A", "A1", models.SideBuy)
	require.Len(t, defs, 1)
	assert.Equal(t, 1.0, defs[0].Default)
}
