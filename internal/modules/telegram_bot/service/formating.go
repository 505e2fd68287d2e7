package service

import (
	"fmt"
	"sort"
	"strings"

	"strategy_builder/internal/models"
	builder "strategy_builder/internal/modules/builder/service"
	catalog "strategy_builder/internal/modules/catalog/service"
	saver "strategy_builder/internal/modules/saver/service"
)

func formatMeta(m saver.StrategyMeta) string {
	name := m.Name
	if name == "" {
		name = "без имени"
	}
	symbol := "не выбран"
	if m.SymbolID > 0 {
		symbol = fmt.Sprintf("#%d", m.SymbolID)
	}
	m = m.WithDefaults()
	out := fmt.Sprintf("«%s»\nИнструмент: %s | TF: %s | Плечо: %sx | Интервал: %ds",
		name, symbol, m.Timeframe, f2(m.Leverage), m.MonitorIntervalSec)
	if m.Description != "" {
		out += "\n" + m.Description
	}
	return out
}

// formatSession: стратегия целиком: метаданные, группы с номерами, проблемы.
// Вызывать под s.mu.
func formatSession(s *Session, cat *catalog.Catalog, v *builder.Validator) string {
	var b strings.Builder
	b.WriteString("📋 " + formatMeta(s.meta) + "\n")
	if id := s.save.RecordID(); id > 0 {
		fmt.Fprintf(&b, "Запись: #%d\n", id)
	} else {
		b.WriteString("Запись: не сохранена\n")
	}

	state := s.builder.State()
	for _, side := range models.Sides {
		fmt.Fprintf(&b, "\n%s:\n", side)
		groups := state.Groups(side)
		if len(groups) == 0 {
			b.WriteString("  —\n")
			continue
		}
		for gi, g := range groups {
			fmt.Fprintf(&b, "  группа %d [%s]\n", gi+1, g.Logic)
			if len(g.Conditions) == 0 {
				b.WriteString("    (пусто)\n")
			}
			for ci, cond := range g.Conditions {
				fmt.Fprintf(&b, "    %d. %s%s\n", ci+1, condLabel(cat, cond), formatParams(s.builder, side, gi, ci, cond))
			}
		}
	}

	if vs := v.Validate(state); len(vs) > 0 {
		b.WriteString("\n" + formatViolations(vs))
	}
	return strings.TrimRight(b.String(), "\n")
}

func condLabel(cat *catalog.Catalog, cond models.Condition) string {
	label := cond.SignalType
	if sig, ok := cat.Signal(cond.IndicatorType, cond.SignalType, cond.Side); ok {
		label = sig.Label
	}
	return fmt.Sprintf("%s · %s (%s)", cond.IndicatorType, label, cond.SignalType)
}

// formatParams: эффективные параметры; значения по умолчанию помечены *.
func formatParams(b *builder.Builder, side models.Side, g, c int, cond models.Condition) string {
	eff, err := b.EffectiveParams(side, g, c)
	if err != nil || len(eff) == 0 {
		return ""
	}
	names := make([]string, 0, len(eff))
	for name := range eff {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		p := name + "=" + f2(eff[name])
		if _, set := cond.Params[name]; !set {
			p += "*"
		}
		parts = append(parts, p)
	}
	return " " + strings.Join(parts, " ")
}

func formatViolations(vs []builder.Violation) string {
	var b strings.Builder
	b.WriteString("⚠️ Стратегию нельзя сохранить:")
	for _, v := range vs {
		b.WriteString("\n• " + v.Error())
	}
	return b.String()
}

func formatParamDef(p models.ParamDef) string {
	s := fmt.Sprintf("%s=%s", p.Name, f2(p.Default))
	if p.Min != nil || p.Max != nil {
		lo, hi := "-∞", "+∞"
		if p.Min != nil {
			lo = f2(*p.Min)
		}
		if p.Max != nil {
			hi = f2(*p.Max)
		}
		s += fmt.Sprintf(" [%s..%s]", lo, hi)
	}
	return s
}

func formatIndicators(side models.Side, inds []models.IndicatorConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 Индикаторы %s:", side)
	for _, ind := range inds {
		fmt.Fprintf(&b, "\n%s — %s (%d сигн.)", ind.Type, ind.Label, len(ind.Signals[side]))
	}
	b.WriteString("\n\nСигналы: /signals " + strings.ToLower(string(side)) + " <TYPE>")
	return b.String()
}

func formatSignals(side models.Side, ind models.IndicatorConfig) string {
	var b strings.Builder
	fmt.Fprintf(&b, "📚 %s, %s:", ind.Label, side)
	for _, sig := range ind.Signals[side] {
		fmt.Fprintf(&b, "\n%s — %s", sig.Value, sig.Label)
		for _, p := range sig.Params {
			b.WriteString("; " + formatParamDef(p))
		}
	}
	return b.String()
}

func formatSymbols(symbols []models.Symbol) string {
	if len(symbols) == 0 {
		return "📭 Инструментов нет"
	}
	var b strings.Builder
	b.WriteString("🪙 Инструменты:")
	for _, s := range symbols {
		fmt.Fprintf(&b, "\n%d. %s — %s", s.ID, s.InstID, s.DisplayName)
	}
	return b.String()
}
