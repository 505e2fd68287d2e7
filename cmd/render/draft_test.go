package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	builder "strategy_builder/internal/modules/builder/service"
	catalog "strategy_builder/internal/modules/catalog/service"
)

func readDraft(t *testing.T, text string) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(text)))
	return v
}

const kdjDraft = `
meta:
  name: kdj dip
  symbol_id: 1
  timeframe: 1H
buy_groups:
  - logic: AND
    conditions:
      - indicator_type: KDJ
        signal_type: KDJ_OVERSOLD
        params:
          threshold: 25
      - indicator_type: MACD
        signal_type: MACD_GOLDEN_CROSS
sell_groups: []
`

func TestRenderPrintsConfig(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render(readDraft(t, kdjDraft), catalog.Default(), &out, false))

	cfg, err := builder.Parse(out.String())
	require.NoError(t, err)
	require.Len(t, cfg.BuyGroups, 1)
	require.Len(t, cfg.BuyGroups[0].Conditions, 2)
	assert.Equal(t, 25.0, cfg.BuyGroups[0].Conditions[0].Params["threshold"])
	assert.Empty(t, cfg.BuyGroups[0].Conditions[1].Params)
}

func TestRenderDescribe(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, render(readDraft(t, kdjDraft), catalog.Default(), &out, true))
	assert.Contains(t, out.String(), "BUY: (KDJ Oversold threshold=25 AND MACD Golden cross)")
}

func TestRenderReportsViolations(t *testing.T) {
	var out bytes.Buffer
	err := render(readDraft(t, `
meta:
  name: ""
buy_groups:
  - conditions: []
`), catalog.Default(), &out, false)

	require.ErrorIs(t, err, errInvalidDraft)
	assert.Contains(t, out.String(), "violation: empty strategy")
	assert.Contains(t, out.String(), "name is required")
}

func TestRenderRejectsUnknownIndicator(t *testing.T) {
	var out bytes.Buffer
	err := render(readDraft(t, `
buy_groups:
  - conditions:
      - indicator_type: NOPE
        signal_type: NOPE_UP
`), catalog.Default(), &out, false)

	require.ErrorIs(t, err, builder.ErrInvalidIndicatorReference)
}
