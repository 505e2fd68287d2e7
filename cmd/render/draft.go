package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/spf13/viper"

	"strategy_builder/internal/models"
	builder "strategy_builder/internal/modules/builder/service"
	catalog "strategy_builder/internal/modules/catalog/service"
	saver "strategy_builder/internal/modules/saver/service"
)

// draft: черновик стратегии в yaml: метаданные и группы условий по сторонам.
type draft struct {
	Meta struct {
		Name               string  `mapstructure:"name"`
		Description        string  `mapstructure:"description"`
		SymbolID           int64   `mapstructure:"symbol_id"`
		Timeframe          string  `mapstructure:"timeframe"`
		Leverage           float64 `mapstructure:"leverage"`
		MonitorIntervalSec int     `mapstructure:"monitor_interval_sec"`
	} `mapstructure:"meta"`
	BuyGroups  []draftGroup `mapstructure:"buy_groups"`
	SellGroups []draftGroup `mapstructure:"sell_groups"`
}

type draftGroup struct {
	Logic      string           `mapstructure:"logic"`
	Conditions []draftCondition `mapstructure:"conditions"`
}

type draftCondition struct {
	IndicatorType string             `mapstructure:"indicator_type"`
	SignalType    string             `mapstructure:"signal_type"`
	Params        map[string]float64 `mapstructure:"params"`
}

func (d draft) config() (models.StrategyConfig, error) {
	buy, err := d.groups(models.SideBuy, d.BuyGroups)
	if err != nil {
		return models.StrategyConfig{}, err
	}
	sell, err := d.groups(models.SideSell, d.SellGroups)
	if err != nil {
		return models.StrategyConfig{}, err
	}
	return models.StrategyConfig{BuyGroups: buy, SellGroups: sell}, nil
}

func (d draft) groups(side models.Side, in []draftGroup) ([]models.ConditionGroup, error) {
	out := make([]models.ConditionGroup, 0, len(in))
	for i, g := range in {
		logic := models.CombinatorAnd
		if g.Logic != "" {
			c, err := models.ParseCombinator(g.Logic)
			if err != nil {
				return nil, errors.Wrapf(err, "%s group %d", side, i+1)
			}
			logic = c
		}
		group := models.ConditionGroup{Logic: logic, Conditions: make([]models.Condition, 0, len(g.Conditions))}
		for _, c := range g.Conditions {
			params := make(map[string]float64, len(c.Params))
			for k, v := range c.Params {
				params[k] = v
			}
			group.Conditions = append(group.Conditions, models.Condition{
				Side:          side,
				IndicatorType: c.IndicatorType,
				SignalType:    c.SignalType,
				Params:        params,
			})
		}
		out = append(out, group)
	}
	return out, nil
}

func (d draft) meta() saver.StrategyMeta {
	return saver.StrategyMeta{
		Name:               d.Meta.Name,
		Description:        d.Meta.Description,
		SymbolID:           d.Meta.SymbolID,
		Timeframe:          models.Timeframe(d.Meta.Timeframe),
		Leverage:           d.Meta.Leverage,
		MonitorIntervalSec: d.Meta.MonitorIntervalSec,
	}
}

var errInvalidDraft = errors.New("draft is not valid")

// render собирает черновик через билдер, проверяет и пишет config_json в w.
// Нарушения пишутся в w построчно, результат: errInvalidDraft.
func render(v *viper.Viper, cat *catalog.Catalog, w io.Writer, describe bool) error {
	var d draft
	if err := v.Unmarshal(&d); err != nil {
		return errors.Wrap(err, "decode draft")
	}
	cfg, err := d.config()
	if err != nil {
		return err
	}
	b, err := builder.LoadBuilder(cat, cfg)
	if err != nil {
		return errors.Wrap(err, "load draft")
	}

	invalid := false
	if vs := builder.NewValidator(cat).Validate(b.State()); len(vs) > 0 {
		for _, violation := range vs {
			fmt.Fprintln(w, "violation:", violation.Error())
		}
		invalid = true
	}
	// метаданные проверяем, только если они есть в черновике
	if v.IsSet("meta") {
		if err := d.meta().WithDefaults().Validate(); err != nil {
			fmt.Fprintln(w, "violation:", err.Error())
			invalid = true
		}
	}
	if invalid {
		return errInvalidDraft
	}

	doc := builder.GenerateConfig(b.State())
	if describe {
		fmt.Fprint(w, builder.Describe(doc, cat))
		return nil
	}
	text, err := builder.Serialize(doc)
	if err != nil {
		return errors.Wrap(err, "serialize")
	}
	fmt.Fprintln(w, text)
	return nil
}
