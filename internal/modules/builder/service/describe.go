package service

import (
	"fmt"
	"strconv"
	"strings"

	"strategy_builder/internal/models"
	catalog "strategy_builder/internal/modules/catalog/service"
)

// Describe: читаемое описание документа для чата:
//
//	BUY:  (KDJ Oversold threshold=25 AND MACD Golden cross) OR (...)
func Describe(cfg models.StrategyConfig, c *catalog.Catalog) string {
	var b strings.Builder
	for _, side := range models.Sides {
		fmt.Fprintf(&b, "%s: ", side)
		groups := cfg.Groups(side)
		if len(groups) == 0 {
			b.WriteString("—\n")
			continue
		}
		parts := make([]string, 0, len(groups))
		for _, g := range groups {
			conds := make([]string, 0, len(g.Conditions))
			for _, cond := range g.Conditions {
				conds = append(conds, describeCondition(cond, c))
			}
			parts = append(parts, "("+strings.Join(conds, " "+string(g.Logic)+" ")+")")
		}
		b.WriteString(strings.Join(parts, " OR "))
		b.WriteString("\n")
	}
	return b.String()
}

func describeCondition(cond models.Condition, c *catalog.Catalog) string {
	label := cond.SignalType
	if sig, ok := c.Signal(cond.IndicatorType, cond.SignalType, cond.Side); ok {
		label = sig.Label
	}
	s := cond.IndicatorType + " " + label
	for _, name := range sortedKeys(cond.Params) {
		s += " " + name + "=" + strconv.FormatFloat(cond.Params[name], 'f', -1, 64)
	}
	return s
}
