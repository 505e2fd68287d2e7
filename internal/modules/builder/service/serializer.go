package service

import (
	"sort"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"strategy_builder/internal/models"
)

// documentAPI: канонический формат config_json: ключи params отсортированы,
// лишние поля при разборе запрещены.
var documentAPI = sonic.Config{
	EscapeHTML:            true,
	SortMapKeys:           true,
	NoNullSliceOrMap:      true,
	DisallowUnknownFields: true,
	ValidateString:        true,
	CopyString:            true,
}.Froze()

// GenerateConfig собирает документ из состояния, отбрасывая пустые группы.
func GenerateConfig(state State) models.StrategyConfig {
	return models.StrategyConfig{
		BuyGroups:  nonEmptyGroups(state.BuyGroups),
		SellGroups: nonEmptyGroups(state.SellGroups),
	}
}

func nonEmptyGroups(groups []models.ConditionGroup) []models.ConditionGroup {
	out := make([]models.ConditionGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Conditions) == 0 {
			continue
		}
		out = append(out, g.Clone())
	}
	return out
}

// Serialize: канонический текст документа. Порядок и имена полей: контракт с движком.
func Serialize(cfg models.StrategyConfig) (string, error) {
	doc := models.StrategyConfig{
		BuyGroups:  models.CloneGroups(cfg.BuyGroups),
		SellGroups: models.CloneGroups(cfg.SellGroups),
	}
	out, err := documentAPI.MarshalIndent(doc, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "marshal strategy config")
	}
	return string(out), nil
}

type wireDocument struct {
	BuyGroups  *[]wireGroup `json:"buy_groups"`
	SellGroups *[]wireGroup `json:"sell_groups"`
}

type wireGroup struct {
	Logic      string          `json:"logic"`
	Conditions []wireCondition `json:"conditions"`
}

type wireCondition struct {
	Side          string             `json:"side"`
	IndicatorType string             `json:"indicator_type"`
	SignalType    string             `json:"signal_type"`
	Params        map[string]float64 `json:"params"`
}

// Parse разбирает документ, обратная к Serialize операция. Проверяет только схему,
// ссылки на каталог проверяют LoadBuilder и Validator.
func Parse(text string) (models.StrategyConfig, error) {
	var doc wireDocument
	if err := documentAPI.UnmarshalFromString(text, &doc); err != nil {
		return models.StrategyConfig{}, errors.Wrapf(ErrMalformedDocument, "decode: %v", err)
	}
	if doc.BuyGroups == nil || doc.SellGroups == nil {
		return models.StrategyConfig{}, errors.Wrap(ErrMalformedDocument, "buy_groups and sell_groups are required")
	}

	buy, err := parseGroups(models.SideBuy, *doc.BuyGroups)
	if err != nil {
		return models.StrategyConfig{}, err
	}
	sell, err := parseGroups(models.SideSell, *doc.SellGroups)
	if err != nil {
		return models.StrategyConfig{}, err
	}
	return models.StrategyConfig{BuyGroups: buy, SellGroups: sell}, nil
}

func parseGroups(side models.Side, groups []wireGroup) ([]models.ConditionGroup, error) {
	out := make([]models.ConditionGroup, 0, len(groups))
	for gi, g := range groups {
		logic := models.Combinator(g.Logic)
		if !logic.Valid() {
			return nil, errors.Wrapf(ErrMalformedDocument, "%s group %d: logic %q", side, gi, g.Logic)
		}
		if len(g.Conditions) == 0 {
			return nil, errors.Wrapf(ErrMalformedDocument, "%s group %d: no conditions", side, gi)
		}
		conds := make([]models.Condition, 0, len(g.Conditions))
		for ci, c := range g.Conditions {
			if models.Side(c.Side) != side {
				return nil, errors.Wrapf(ErrMalformedDocument, "%s group %d condition %d: side %q", side, gi, ci, c.Side)
			}
			if c.IndicatorType == "" || c.SignalType == "" {
				return nil, errors.Wrapf(ErrMalformedDocument, "%s group %d condition %d: empty indicator or signal", side, gi, ci)
			}
			params := make(map[string]float64, len(c.Params))
			for k, v := range c.Params {
				params[k] = v
			}
			conds = append(conds, models.Condition{
				Side:          side,
				IndicatorType: c.IndicatorType,
				SignalType:    c.SignalType,
				Params:        params,
			})
		}
		out = append(out, models.ConditionGroup{Logic: logic, Conditions: conds})
	}
	return out, nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
