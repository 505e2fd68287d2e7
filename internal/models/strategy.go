package models

import (
	"fmt"
	"strings"
)

// Side: половина стратегии, к которой относится условие: вход (BUY) или выход (SELL).
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Sides в порядке, в котором они идут в документе.
var Sides = []Side{SideBuy, SideSell}

func (s Side) Valid() bool {
	return s == SideBuy || s == SideSell
}

func (s Side) String() string { return string(s) }

// ParseSide принимает buy/sell в любом регистре.
func ParseSide(v string) (Side, error) {
	s := Side(strings.ToUpper(strings.TrimSpace(v)))
	if !s.Valid() {
		return "", fmt.Errorf("unknown side %q", v)
	}
	return s, nil
}

// Combinator: как условия группы сводятся в один сигнал.
type Combinator string

const (
	CombinatorAnd Combinator = "AND" // все условия на одной свече
	CombinatorOr  Combinator = "OR"  // хотя бы одно
)

func (c Combinator) Valid() bool {
	return c == CombinatorAnd || c == CombinatorOr
}

func (c Combinator) String() string { return string(c) }

func ParseCombinator(v string) (Combinator, error) {
	c := Combinator(strings.ToUpper(strings.TrimSpace(v)))
	if !c.Valid() {
		return "", fmt.Errorf("unknown combinator %q", v)
	}
	return c, nil
}

// Timeframe: период свечей стратегии.
type Timeframe string

const (
	Timeframe1m  Timeframe = "1m"
	Timeframe5m  Timeframe = "5m"
	Timeframe15m Timeframe = "15m"
	Timeframe30m Timeframe = "30m"
	Timeframe1H  Timeframe = "1H"
	Timeframe4H  Timeframe = "4H"
	Timeframe1D  Timeframe = "1D"
)

var Timeframes = []Timeframe{
	Timeframe1m, Timeframe5m, Timeframe15m, Timeframe30m,
	Timeframe1H, Timeframe4H, Timeframe1D,
}

func (t Timeframe) Valid() bool {
	for _, tf := range Timeframes {
		if t == tf {
			return true
		}
	}
	return false
}
