package service

import (
	"math"

	"github.com/pkg/errors"

	"strategy_builder/internal/models"
	catalog "strategy_builder/internal/modules/catalog/service"
)

// State: снимок редактируемой стратегии. Пустые группы допустимы,
// они отбрасываются только в GenerateConfig.
type State struct {
	BuyGroups  []models.ConditionGroup
	SellGroups []models.ConditionGroup
}

func (s State) Groups(side models.Side) []models.ConditionGroup {
	if side == models.SideSell {
		return s.SellGroups
	}
	return s.BuyGroups
}

// Builder держит группы обеих сторон и выполняет правки пользователя.
// Каждая операция либо применяется целиком, либо возвращает ошибку
// и ничего не меняет. Не потокобезопасен: одна сессия: один Builder.
type Builder struct {
	catalog *catalog.Catalog
	groups  map[models.Side][]models.ConditionGroup
}

func NewBuilder(c *catalog.Catalog) *Builder {
	return &Builder{
		catalog: c,
		groups: map[models.Side][]models.ConditionGroup{
			models.SideBuy:  {},
			models.SideSell: {},
		},
	}
}

// LoadBuilder восстанавливает состояние из сохранённого документа, прогоняя
// его через те же операции, что и пользователь.
func LoadBuilder(c *catalog.Catalog, cfg models.StrategyConfig) (*Builder, error) {
	b := NewBuilder(c)
	for _, side := range models.Sides {
		for gi, g := range cfg.Groups(side) {
			idx, err := b.AddGroup(side)
			if err != nil {
				return nil, err
			}
			if err = b.SetGroupCombinator(side, idx, g.Logic); err != nil {
				return nil, errors.Wrapf(err, "%s group %d", side, gi)
			}
			for ci, cond := range g.Conditions {
				if err = b.loadCondition(side, idx, cond); err != nil {
					return nil, errors.Wrapf(err, "%s group %d condition %d", side, gi, ci)
				}
			}
		}
	}
	return b, nil
}

func (b *Builder) loadCondition(side models.Side, g int, cond models.Condition) error {
	if cond.Side != side {
		return errors.Wrapf(ErrMalformedDocument, "condition side %q in %s list", cond.Side, side)
	}
	c, err := b.AddCondition(side, g)
	if err != nil {
		return err
	}
	if err = b.SetConditionIndicator(side, g, c, cond.IndicatorType); err != nil {
		return err
	}
	if err = b.SetConditionSignal(side, g, c, cond.SignalType); err != nil {
		return err
	}
	for name, v := range cond.Params {
		if err = b.SetConditionParam(side, g, c, name, v); err != nil {
			return err
		}
	}
	return nil
}

func (b *Builder) sideGroups(side models.Side) ([]models.ConditionGroup, error) {
	if !side.Valid() {
		return nil, errors.Wrapf(ErrUnknownSide, "%q", side)
	}
	return b.groups[side], nil
}

func (b *Builder) group(side models.Side, g int) (*models.ConditionGroup, error) {
	groups, err := b.sideGroups(side)
	if err != nil {
		return nil, err
	}
	if g < 0 || g >= len(groups) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "%s group %d of %d", side, g, len(groups))
	}
	return &groups[g], nil
}

func (b *Builder) condition(side models.Side, g, c int) (*models.Condition, error) {
	grp, err := b.group(side, g)
	if err != nil {
		return nil, err
	}
	if c < 0 || c >= len(grp.Conditions) {
		return nil, errors.Wrapf(ErrIndexOutOfRange, "%s group %d condition %d of %d", side, g, c, len(grp.Conditions))
	}
	return &grp.Conditions[c], nil
}

// AddGroup добавляет пустую AND-группу и возвращает её индекс.
func (b *Builder) AddGroup(side models.Side) (int, error) {
	groups, err := b.sideGroups(side)
	if err != nil {
		return 0, err
	}
	b.groups[side] = append(groups, models.ConditionGroup{
		Logic:      models.CombinatorAnd,
		Conditions: []models.Condition{},
	})
	return len(b.groups[side]) - 1, nil
}

// RemoveGroup удаляет группу целиком, индексы следующих групп сдвигаются.
func (b *Builder) RemoveGroup(side models.Side, g int) error {
	if _, err := b.group(side, g); err != nil {
		return err
	}
	groups := b.groups[side]
	b.groups[side] = append(groups[:g:g], groups[g+1:]...)
	return nil
}

// AddCondition добавляет условие с первым индикатором и первым сигналом стороны.
func (b *Builder) AddCondition(side models.Side, g int) (int, error) {
	grp, err := b.group(side, g)
	if err != nil {
		return 0, err
	}
	ind, ok := b.catalog.FirstIndicator(side)
	if !ok {
		return 0, errors.Wrapf(ErrInvalidIndicatorReference, "catalog has no %s indicators", side)
	}
	sig, _ := b.catalog.FirstSignal(ind.Type, side)
	grp.Conditions = append(grp.Conditions, models.Condition{
		Side:          side,
		IndicatorType: ind.Type,
		SignalType:    sig.Value,
		Params:        map[string]float64{},
	})
	return len(grp.Conditions) - 1, nil
}

// RemoveCondition не удаляет опустевшую группу: комбинатор остаётся для дальнейших правок.
func (b *Builder) RemoveCondition(side models.Side, g, c int) error {
	if _, err := b.condition(side, g, c); err != nil {
		return err
	}
	grp, _ := b.group(side, g)
	grp.Conditions = append(grp.Conditions[:c:c], grp.Conditions[c+1:]...)
	return nil
}

func (b *Builder) SetGroupCombinator(side models.Side, g int, combinator models.Combinator) error {
	grp, err := b.group(side, g)
	if err != nil {
		return err
	}
	if !combinator.Valid() {
		return errors.Wrapf(ErrUnknownCombinator, "%q", combinator)
	}
	grp.Logic = combinator
	return nil
}

// SetConditionIndicator меняет индикатор, сбрасывает сигнал на первый сигнал
// нового индикатора и очищает параметры.
func (b *Builder) SetConditionIndicator(side models.Side, g, c int, indicatorType string) error {
	cond, err := b.condition(side, g, c)
	if err != nil {
		return err
	}
	sig, ok := b.catalog.FirstSignal(indicatorType, side)
	if !ok {
		return errors.Wrapf(ErrInvalidIndicatorReference, "%s has no %s signals", indicatorType, side)
	}
	cond.IndicatorType = indicatorType
	cond.SignalType = sig.Value
	cond.Params = map[string]float64{}
	return nil
}

// SetConditionSignal меняет сигнал в пределах текущего индикатора и очищает параметры.
func (b *Builder) SetConditionSignal(side models.Side, g, c int, signalType string) error {
	cond, err := b.condition(side, g, c)
	if err != nil {
		return err
	}
	if _, ok := b.catalog.Signal(cond.IndicatorType, signalType, side); !ok {
		return errors.Wrapf(ErrInvalidSignalReference, "%s is not a %s signal of %s", signalType, side, cond.IndicatorType)
	}
	cond.SignalType = signalType
	cond.Params = map[string]float64{}
	return nil
}

// SetConditionParam задаёт переопределение параметра текущего сигнала.
func (b *Builder) SetConditionParam(side models.Side, g, c int, name string, value float64) error {
	cond, err := b.condition(side, g, c)
	if err != nil {
		return err
	}
	def, err := b.paramDef(side, cond, name)
	if err != nil {
		return err
	}
	if math.IsNaN(value) || math.IsInf(value, 0) || !def.InBounds(value) {
		return errors.Wrapf(ErrParamOutOfRange, "%s=%v for %s", name, value, cond.SignalType)
	}
	cond.Params[name] = value
	return nil
}

// ClearConditionParam убирает переопределение, движок снова возьмёт значение по умолчанию.
func (b *Builder) ClearConditionParam(side models.Side, g, c int, name string) error {
	cond, err := b.condition(side, g, c)
	if err != nil {
		return err
	}
	if _, err = b.paramDef(side, cond, name); err != nil {
		return err
	}
	delete(cond.Params, name)
	return nil
}

func (b *Builder) paramDef(side models.Side, cond *models.Condition, name string) (models.ParamDef, error) {
	sig, ok := b.catalog.Signal(cond.IndicatorType, cond.SignalType, side)
	if !ok {
		return models.ParamDef{}, errors.Wrapf(ErrInvalidSignalReference, "%s/%s", cond.IndicatorType, cond.SignalType)
	}
	def, ok := sig.Param(name)
	if !ok {
		return models.ParamDef{}, errors.Wrapf(ErrUnknownParam, "%s has no param %q", cond.SignalType, name)
	}
	return def, nil
}

// Groups: копия групп стороны.
func (b *Builder) Groups(side models.Side) ([]models.ConditionGroup, error) {
	groups, err := b.sideGroups(side)
	if err != nil {
		return nil, err
	}
	return models.CloneGroups(groups), nil
}

// Condition: копия одного условия.
func (b *Builder) Condition(side models.Side, g, c int) (models.Condition, error) {
	cond, err := b.condition(side, g, c)
	if err != nil {
		return models.Condition{}, err
	}
	return cond.Clone(), nil
}

// EffectiveParams: все параметры сигнала с подставленными значениями по умолчанию.
// Только для отображения, в условие не записывается.
func (b *Builder) EffectiveParams(side models.Side, g, c int) (map[string]float64, error) {
	cond, err := b.condition(side, g, c)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64)
	for _, def := range b.catalog.GetParamDefs(cond.IndicatorType, cond.SignalType, side) {
		out[def.Name] = def.Default
		if v, ok := cond.Params[def.Name]; ok {
			out[def.Name] = v
		}
	}
	return out, nil
}

// State: глубокая копия текущего состояния.
func (b *Builder) State() State {
	return State{
		BuyGroups:  models.CloneGroups(b.groups[models.SideBuy]),
		SellGroups: models.CloneGroups(b.groups[models.SideSell]),
	}
}
