package models

// Condition: один атом правила. Params хранит только явные переопределения,
// значения по умолчанию подставляет движок.
type Condition struct {
	Side          Side               `json:"side"`
	IndicatorType string             `json:"indicator_type"`
	SignalType    string             `json:"signal_type"`
	Params        map[string]float64 `json:"params"`
}

// Clone возвращает копию с собственной картой параметров (всегда не nil).
func (c Condition) Clone() Condition {
	params := make(map[string]float64, len(c.Params))
	for k, v := range c.Params {
		params[k] = v
	}
	c.Params = params
	return c
}

// ConditionGroup: условия, сведённые одним комбинатором.
type ConditionGroup struct {
	Logic      Combinator  `json:"logic"`
	Conditions []Condition `json:"conditions"`
}

func (g ConditionGroup) Clone() ConditionGroup {
	conds := make([]Condition, 0, len(g.Conditions))
	for _, c := range g.Conditions {
		conds = append(conds, c.Clone())
	}
	g.Conditions = conds
	return g
}

// CloneGroups копирует список групп, результат всегда не nil.
func CloneGroups(groups []ConditionGroup) []ConditionGroup {
	out := make([]ConditionGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, g.Clone())
	}
	return out
}

// StrategyConfig: документ config_json. Сигнал стороны срабатывает,
// если срабатывает любая из её групп.
type StrategyConfig struct {
	BuyGroups  []ConditionGroup `json:"buy_groups"`
	SellGroups []ConditionGroup `json:"sell_groups"`
}

// Groups возвращает группы стороны.
func (c StrategyConfig) Groups(side Side) []ConditionGroup {
	if side == SideSell {
		return c.SellGroups
	}
	return c.BuyGroups
}
