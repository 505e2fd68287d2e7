package service

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"strategy_builder/internal/models"
	catalog "strategy_builder/internal/modules/catalog/service"
)

func TestGenerateConfigSingleBuyCondition(t *testing.T) {
	b := NewBuilder(catalog.Default())
	_, err := b.AddGroup(models.SideBuy)
	require.NoError(t, err)
	_, err = b.AddCondition(models.SideBuy, 0)
	require.NoError(t, err)

	text, err := Serialize(GenerateConfig(b.State()))
	require.NoError(t, err)

	assert.JSONEq(t, `{"buy_groups":[{"logic":"AND","conditions":[{"side":"BUY","indicator_type":"MACD","signal_type":"MACD_GOLDEN_CROSS","params":{}}]}],"sell_groups":[]}`, text)
}

func TestGenerateConfigKDJOversold(t *testing.T) {
	b := NewBuilder(catalog.Default())
	_, _ = b.AddGroup(models.SideBuy)
	_, _ = b.AddCondition(models.SideBuy, 0)

	require.NoError(t, b.SetConditionIndicator(models.SideBuy, 0, 0, "KDJ"))
	require.NoError(t, b.SetConditionSignal(models.SideBuy, 0, 0, "KDJ_OVERSOLD"))
	require.NoError(t, b.SetConditionParam(models.SideBuy, 0, 0, "threshold", 25))

	cfg := GenerateConfig(b.State())
	text, err := Serialize(cfg)
	require.NoError(t, err)

	parsed, err := Parse(text)
	require.NoError(t, err)
	require.Len(t, parsed.BuyGroups, 1)
	assert.Equal(t, models.Condition{
		Side:          models.SideBuy,
		IndicatorType: "KDJ",
		SignalType:    "KDJ_OVERSOLD",
		Params:        map[string]float64{"threshold": 25},
	}, parsed.BuyGroups[0].Conditions[0])
	assert.Contains(t, text, `"threshold": 25`)
}

func TestSerializeFieldOrder(t *testing.T) {
	cfg := models.StrategyConfig{
		BuyGroups: []models.ConditionGroup{{
			Logic: models.CombinatorOr,
			Conditions: []models.Condition{{
				Side: models.SideBuy, IndicatorType: "RSI", SignalType: "RSI_OVERSOLD",
				Params: map[string]float64{"threshold": 30},
			}},
		}},
	}

	text, err := Serialize(cfg)
	require.NoError(t, err)

	order := []string{`"buy_groups"`, `"logic"`, `"conditions"`, `"side"`, `"indicator_type"`, `"signal_type"`, `"params"`, `"sell_groups"`}
	last := -1
	for _, key := range order {
		idx := strings.Index(text, key)
		require.GreaterOrEqual(t, idx, 0, key)
		assert.Greater(t, idx, last, "%s out of order", key)
		last = idx
	}
	assert.Contains(t, text, `"sell_groups": []`, "nil list must be written as []")
	assert.True(t, strings.HasPrefix(text, "{\n  \"buy_groups\""))
}

func TestGenerateConfigDropsEmptyGroups(t *testing.T) {
	b := NewBuilder(catalog.Default())
	_, _ = b.AddGroup(models.SideBuy)
	_, _ = b.AddGroup(models.SideBuy)
	_, _ = b.AddCondition(models.SideBuy, 1)
	_, _ = b.AddGroup(models.SideSell)

	cfg := GenerateConfig(b.State())
	require.Len(t, cfg.BuyGroups, 1)
	assert.Empty(t, cfg.SellGroups)
	assert.NotNil(t, cfg.SellGroups)
}

func TestParseRejectsMalformedDocuments(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"buy_groups":`,
		"missing sell":    `{"buy_groups":[]}`,
		"null list":       `{"buy_groups":null,"sell_groups":[]}`,
		"unknown field":   `{"buy_groups":[],"sell_groups":[],"extra":1}`,
		"bad logic":       `{"buy_groups":[{"logic":"XOR","conditions":[{"side":"BUY","indicator_type":"MACD","signal_type":"MACD_GOLDEN_CROSS","params":{}}]}],"sell_groups":[]}`,
		"empty group":     `{"buy_groups":[{"logic":"AND","conditions":[]}],"sell_groups":[]}`,
		"side mismatch":   `{"buy_groups":[],"sell_groups":[{"logic":"AND","conditions":[{"side":"BUY","indicator_type":"MACD","signal_type":"MACD_DEAD_CROSS","params":{}}]}]}`,
		"empty signal":    `{"buy_groups":[{"logic":"AND","conditions":[{"side":"BUY","indicator_type":"MACD","signal_type":"","params":{}}]}],"sell_groups":[]}`,
		"string param":    `{"buy_groups":[{"logic":"AND","conditions":[{"side":"BUY","indicator_type":"KDJ","signal_type":"KDJ_OVERSOLD","params":{"threshold":"25"}}]}],"sell_groups":[]}`,
		"lowercase logic": `{"buy_groups":[{"logic":"and","conditions":[{"side":"BUY","indicator_type":"MACD","signal_type":"MACD_GOLDEN_CROSS","params":{}}]}],"sell_groups":[]}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			assert.ErrorIs(t, err, ErrMalformedDocument)
		})
	}
}

func TestParseNormalisesMissingParams(t *testing.T) {
	cfg, err := Parse(`{"buy_groups":[{"logic":"AND","conditions":[{"side":"BUY","indicator_type":"MACD","signal_type":"MACD_GOLDEN_CROSS"}]}],"sell_groups":[]}`)
	require.NoError(t, err)
	assert.NotNil(t, cfg.BuyGroups[0].Conditions[0].Params)
	assert.Empty(t, cfg.BuyGroups[0].Conditions[0].Params)
}

// randomState прогоняет случайную последовательность операций; ошибки
// операций игнорируются, как и у пользователя, промахнувшегося индексом.
func randomState(r *rand.Rand, cat *catalog.Catalog) State {
	b := NewBuilder(cat)
	for i := 0; i < 40; i++ {
		side := models.Sides[r.Intn(2)]
		groups, _ := b.Groups(side)
		g := r.Intn(len(groups) + 1)
		c := r.Intn(4)
		switch r.Intn(8) {
		case 0:
			_, _ = b.AddGroup(side)
		case 1, 2:
			_, _ = b.AddCondition(side, g)
		case 3:
			_ = b.RemoveCondition(side, g, c)
		case 4:
			_ = b.SetGroupCombinator(side, g, []models.Combinator{models.CombinatorAnd, models.CombinatorOr}[r.Intn(2)])
		case 5:
			inds := cat.ListIndicators(side)
			_ = b.SetConditionIndicator(side, g, c, inds[r.Intn(len(inds))].Type)
		case 6:
			if cond, err := b.Condition(side, g, c); err == nil {
				sigs := cat.GetSignals(cond.IndicatorType, side)
				_ = b.SetConditionSignal(side, g, c, sigs[r.Intn(len(sigs))].Value)
			}
		case 7:
			_ = b.SetConditionParam(side, g, c, "threshold", float64(r.Intn(101)))
			_ = b.SetConditionParam(side, g, c, "tolerance", r.Float64()/100)
		}
	}
	return b.State()
}

func TestRoundTripAndNoEmptyGroups(t *testing.T) {
	cat := catalog.Default()
	v := NewValidator(cat)
	r := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		state := randomState(r, cat)
		cfg := GenerateConfig(state)

		for _, side := range models.Sides {
			for _, g := range cfg.Groups(side) {
				require.NotEmpty(t, g.Conditions)
			}
		}

		text, err := Serialize(cfg)
		require.NoError(t, err)
		parsed, err := Parse(text)
		require.NoError(t, err)
		require.Equal(t, cfg, parsed)

		for _, vi := range v.Validate(state) {
			require.ErrorIs(t, vi, ErrEmptyStrategy, "builder produced an invalid condition")
		}
	}
}

func TestDescribe(t *testing.T) {
	cfg := models.StrategyConfig{
		BuyGroups: []models.ConditionGroup{{
			Logic: models.CombinatorAnd,
			Conditions: []models.Condition{
				{Side: models.SideBuy, IndicatorType: "KDJ", SignalType: "KDJ_OVERSOLD", Params: map[string]float64{"threshold": 25}},
				{Side: models.SideBuy, IndicatorType: "MACD", SignalType: "MACD_GOLDEN_CROSS"},
			},
		}},
	}
	out := Describe(cfg, catalog.Default())
	assert.Equal(t, "BUY: (KDJ Oversold threshold=25 AND MACD Golden cross)\nSELL: —\n", out)
}
