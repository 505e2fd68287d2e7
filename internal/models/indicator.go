package models

// ParamDef описывает числовой параметр сигнала (например порог перепроданности).
type ParamDef struct {
	Name    string
	Label   string
	Default float64
	Min     *float64
	Max     *float64
}

// InBounds: true, если v не выходит за объявленные границы.
func (p ParamDef) InBounds(v float64) bool {
	if p.Min != nil && v < *p.Min {
		return false
	}
	if p.Max != nil && v > *p.Max {
		return false
	}
	return true
}

// IndicatorSignal: конкретное событие индикатора. Value уникален во всём каталоге.
type IndicatorSignal struct {
	Value  string
	Label  string
	Params []ParamDef
}

// Param ищет параметр по имени.
func (s IndicatorSignal) Param(name string) (ParamDef, bool) {
	for _, p := range s.Params {
		if p.Name == name {
			return p, true
		}
	}
	return ParamDef{}, false
}

// IndicatorConfig: семейство индикатора и его сигналы по сторонам.
type IndicatorConfig struct {
	Type    string
	Label   string
	Signals map[Side][]IndicatorSignal
}
