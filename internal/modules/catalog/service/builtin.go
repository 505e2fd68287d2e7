package service

import "strategy_builder/internal/models"

func bound(v float64) *float64 { return &v }

func threshold(def float64) []models.ParamDef {
	return []models.ParamDef{
		{Name: "threshold", Label: "Threshold", Default: def, Min: bound(0), Max: bound(100)},
	}
}

// tolerance: допуск для «голых» свечей, по умолчанию как в движке.
func tolerance() []models.ParamDef {
	return []models.ParamDef{
		{Name: "tolerance", Label: "Tolerance", Default: 0.0001, Min: bound(0), Max: bound(1)},
	}
}

// builtinIndicators: каталог сигналов, которые понимает движок. Порядок важен:
// первый индикатор и его первый сигнал: значения по умолчанию для нового условия.
func builtinIndicators() []models.IndicatorConfig {
	return []models.IndicatorConfig{
		{
			Type:  "MACD",
			Label: "MACD",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy: {
					{Value: "MACD_GOLDEN_CROSS", Label: "Golden cross"},
					{Value: "MACD_ABOVE_ZERO", Label: "Above zero"},
					{Value: "MACD_BULLISH_ARRANGE", Label: "Bullish arrangement"},
					{Value: "MACD_DOUBLE_GOLDEN", Label: "Double golden cross"},
					{Value: "MACD_LOW_GOLDEN", Label: "Low golden cross"},
					{Value: "MACD_BOTTOM_DIVERGENCE", Label: "Bottom divergence"},
				},
				models.SideSell: {
					{Value: "MACD_DEAD_CROSS", Label: "Dead cross"},
					{Value: "MACD_BELOW_ZERO", Label: "Below zero"},
					{Value: "MACD_TOP_DIVERGENCE", Label: "Top divergence"},
					{Value: "MACD_BEARISH_ARRANGE", Label: "Bearish arrangement"},
				},
			},
		},
		{
			Type:  "KDJ",
			Label: "KDJ",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy: {
					{Value: "KDJ_GOLDEN_CROSS", Label: "Golden cross"},
					{Value: "KDJ_OVERSOLD", Label: "Oversold", Params: threshold(20)},
					{Value: "KDJ_BOTTOM_DIVERGENCE", Label: "Bottom divergence"},
					{Value: "KDJ_TURN_UP", Label: "Turn up"},
					{Value: "KDJ_BULLISH_ARRANGE", Label: "Bullish arrangement"},
					{Value: "KDJ_LOW_GOLDEN", Label: "Low golden cross"},
				},
				models.SideSell: {
					{Value: "KDJ_DEAD_CROSS", Label: "Dead cross"},
					{Value: "KDJ_OVERBOUGHT", Label: "Overbought", Params: threshold(80)},
					{Value: "KDJ_TOP_DIVERGENCE", Label: "Top divergence"},
					{Value: "KDJ_TURN_DOWN", Label: "Turn down"},
					{Value: "KDJ_BEARISH_ARRANGE", Label: "Bearish arrangement"},
				},
			},
		},
		{
			Type:  "BOLL",
			Label: "Bollinger bands",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy: {
					{Value: "BOLL_OPEN_EXPAND", Label: "Bands expanding"},
					{Value: "BOLL_BREAK_UPPER", Label: "Break upper band"},
					{Value: "BOLL_BREAK_MIDDLE", Label: "Break middle band"},
					{Value: "BOLL_BREAK_LOWER", Label: "Break lower band"},
				},
				models.SideSell: {
					{Value: "BOLL_OPEN_SHRINK", Label: "Bands shrinking"},
					{Value: "BOLL_BREAK_UPPER_DOWN", Label: "Fall through upper band"},
					{Value: "BOLL_BREAK_MIDDLE_DOWN", Label: "Fall through middle band"},
					{Value: "BOLL_BREAK_LOWER_DOWN", Label: "Fall through lower band"},
				},
			},
		},
		{
			Type:  "RSI",
			Label: "RSI",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy: {
					{Value: "RSI_GOLDEN_CROSS", Label: "Golden cross"},
					{Value: "RSI_TURN_UP", Label: "Turn up"},
					{Value: "RSI_OVERSOLD", Label: "Oversold", Params: threshold(30)},
					{Value: "RSI_LOW_GOLDEN", Label: "Low golden cross"},
					{Value: "RSI_CROSS_30_UP", Label: "Cross above 30"},
				},
				models.SideSell: {
					{Value: "RSI_DEAD_CROSS", Label: "Dead cross"},
					{Value: "RSI_OVERBOUGHT", Label: "Overbought", Params: threshold(70)},
					{Value: "RSI_CROSS_70_DOWN", Label: "Cross below 70"},
					{Value: "RSI_TURN_DOWN", Label: "Turn down"},
				},
			},
		},
		{
			Type:  "BBI",
			Label: "BBI",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy:  {{Value: "BBI_PRICE_CROSS_UP", Label: "Price crosses above BBI"}},
				models.SideSell: {{Value: "BBI_PRICE_CROSS_DOWN", Label: "Price crosses below BBI"}},
			},
		},
		{
			Type:  "CCI",
			Label: "CCI",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy:  {{Value: "CCI_BELOW_NEG100", Label: "Below -100"}},
				models.SideSell: {{Value: "CCI_ABOVE_100", Label: "Above 100"}},
			},
		},
		{
			Type:  "MA",
			Label: "Moving averages",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy: {
					{Value: "MA_PRICE_ABOVE_MA5", Label: "Price above MA5"},
					{Value: "MA_PRICE_ABOVE_MA10", Label: "Price above MA10"},
					{Value: "MA_PRICE_ABOVE_MA20", Label: "Price above MA20"},
					{Value: "MA_PRICE_ABOVE_MA30", Label: "Price above MA30"},
					{Value: "MA_PRICE_ABOVE_MA60", Label: "Price above MA60"},
					{Value: "MA_MA5_CROSS_MA10", Label: "MA5 crosses above MA10"},
					{Value: "MA_MA5_CROSS_MA20", Label: "MA5 crosses above MA20"},
					{Value: "MA_MA5_CROSS_MA30", Label: "MA5 crosses above MA30"},
					{Value: "MA_MA3_CROSS_MA15", Label: "MA3 crosses above MA15"},
					{Value: "MA_BULLISH_ARRANGE_5_10_20", Label: "Bullish arrangement (5,10,20)"},
				},
				models.SideSell: {
					{Value: "MA_PRICE_BELOW_MA5", Label: "Price below MA5"},
					{Value: "MA_PRICE_BELOW_MA10", Label: "Price below MA10"},
					{Value: "MA_PRICE_BELOW_MA20", Label: "Price below MA20"},
					{Value: "MA_PRICE_BELOW_MA30", Label: "Price below MA30"},
					{Value: "MA_PRICE_BELOW_MA60", Label: "Price below MA60"},
					{Value: "MA_MA5_DEAD_CROSS_MA10", Label: "MA5 crosses below MA10"},
					{Value: "MA_MA5_DEAD_CROSS_MA20", Label: "MA5 crosses below MA20"},
					{Value: "MA_MA5_DEAD_CROSS_MA30", Label: "MA5 crosses below MA30"},
					{Value: "MA_MA3_DEAD_CROSS_MA15", Label: "MA3 crosses below MA15"},
					{Value: "MA_BEARISH_ARRANGE_5_10_20", Label: "Bearish arrangement (5,10,20)"},
				},
			},
		},
		{
			Type:  "CANDLE",
			Label: "Candle patterns",
			Signals: map[models.Side][]models.IndicatorSignal{
				models.SideBuy: {
					{Value: "CANDLE_DOJI", Label: "Doji"},
					{Value: "CANDLE_BIG_YANG", Label: "Big bullish candle"},
					{Value: "CANDLE_MULTI_CANNON", Label: "Bullish cannon"},
					{Value: "CANDLE_TWEEZER", Label: "Tweezer"},
					{Value: "CANDLE_LOTUS", Label: "Lotus out of water"},
					{Value: "CANDLE_BALD_BULLISH", Label: "Bald bullish candle", Params: tolerance()},
					{Value: "CANDLE_GOLDEN_NEEDLE", Label: "Golden needle"},
					{Value: "CANDLE_ONE_THROUGH_THREE", Label: "One candle through three MAs"},
					{Value: "CANDLE_THREE_RED_SOLDIERS", Label: "Three red soldiers"},
					{Value: "CANDLE_DRAGONFLY_DOJI", Label: "Dragonfly doji"},
					{Value: "CANDLE_MORNING_STAR", Label: "Morning star"},
					{Value: "CANDLE_BULLISH_ENGULFING", Label: "Bullish engulfing"},
					{Value: "CANDLE_BAREFOOT_BULLISH", Label: "Barefoot bullish candle", Params: tolerance()},
				},
				models.SideSell: {
					{Value: "CANDLE_BIG_YIN", Label: "Big bearish candle"},
					{Value: "CANDLE_LONG_UPPER_SHADOW", Label: "Long upper shadow"},
					{Value: "CANDLE_SHOOTING_STAR", Label: "Shooting star"},
					{Value: "CANDLE_BEARISH_ENGULFING", Label: "Bearish engulfing"},
					{Value: "CANDLE_EVENING_STAR", Label: "Evening star"},
					{Value: "CANDLE_FOUR_CROWS", Label: "Four crows"},
					{Value: "CANDLE_BAREFOOT_BEARISH", Label: "Barefoot bearish candle", Params: tolerance()},
				},
			},
		},
	}
}
