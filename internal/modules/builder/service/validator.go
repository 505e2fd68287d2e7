package service

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"

	"strategy_builder/internal/models"
	catalog "strategy_builder/internal/modules/catalog/service"
)

// Violation: одно нарушение, найденное Validate. Kind: одна из Err* ошибок пакета.
type Violation struct {
	Kind      error
	Side      models.Side
	Group     int // -1, если нарушение не относится к группе
	Condition int // -1, если не относится к условию
	Param     string
}

func (v Violation) Error() string {
	switch {
	case v.Group < 0:
		return v.Kind.Error()
	case v.Param != "":
		return fmt.Sprintf("%s group %d condition %d param %s: %v", v.Side, v.Group+1, v.Condition+1, v.Param, v.Kind)
	default:
		return fmt.Sprintf("%s group %d condition %d: %v", v.Side, v.Group+1, v.Condition+1, v.Kind)
	}
}

func (v Violation) Unwrap() error { return v.Kind }

// ViolationsError сводит нарушения в одну ошибку; nil, если нарушений нет.
func ViolationsError(vs []Violation) error {
	var err error
	for _, v := range vs {
		err = multierr.Append(err, v)
	}
	return err
}

// HasKind: есть ли среди нарушений нарушение данного вида.
func HasKind(vs []Violation, kind error) bool {
	for _, v := range vs {
		if errors.Is(v.Kind, kind) {
			return true
		}
	}
	return false
}

type Validator struct {
	catalog *catalog.Catalog
}

func NewValidator(c *catalog.Catalog) *Validator {
	return &Validator{catalog: c}
}

// Validate проверяет состояние перед отправкой. Все нарушения возвращаются
// по порядку проверок: пустая стратегия, ссылки на каталог, границы параметров.
func (v *Validator) Validate(state State) []Violation {
	var out []Violation

	nonEmpty := false
	for _, side := range models.Sides {
		for _, g := range state.Groups(side) {
			if len(g.Conditions) > 0 {
				nonEmpty = true
			}
		}
	}
	if !nonEmpty {
		out = append(out, Violation{Kind: ErrEmptyStrategy, Group: -1, Condition: -1})
	}

	type checked struct {
		side models.Side
		g, c int
		sig  models.IndicatorSignal
		cond models.Condition
	}
	var resolved []checked

	for _, side := range models.Sides {
		for gi, g := range state.Groups(side) {
			for ci, cond := range g.Conditions {
				at := Violation{Side: side, Group: gi, Condition: ci}
				if cond.Side != side {
					at.Kind = ErrInvalidIndicatorReference
					out = append(out, at)
					continue
				}
				if _, ok := v.catalog.Indicator(cond.IndicatorType, side); !ok {
					at.Kind = ErrInvalidIndicatorReference
					out = append(out, at)
					continue
				}
				sig, ok := v.catalog.Signal(cond.IndicatorType, cond.SignalType, side)
				if !ok {
					at.Kind = ErrInvalidSignalReference
					out = append(out, at)
					continue
				}
				for _, name := range sortedKeys(cond.Params) {
					if _, ok := sig.Param(name); !ok {
						p := at
						p.Kind, p.Param = ErrUnknownParam, name
						out = append(out, p)
					}
				}
				resolved = append(resolved, checked{side: side, g: gi, c: ci, sig: sig, cond: cond})
			}
		}
	}

	for _, r := range resolved {
		for _, name := range sortedKeys(r.cond.Params) {
			def, ok := r.sig.Param(name)
			if !ok {
				continue
			}
			val := r.cond.Params[name]
			if math.IsNaN(val) || math.IsInf(val, 0) || !def.InBounds(val) {
				out = append(out, Violation{Kind: ErrParamOutOfRange, Side: r.side, Group: r.g, Condition: r.c, Param: name})
			}
		}
	}
	return out
}
