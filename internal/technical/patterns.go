package technical

import (
	"math"

	"paper-tiger/internal/domain"
)

// Candle pattern names as reported in a snapshot's pattern block.
const (
	PatternDoji             = "doji"
	PatternHammer           = "hammer"
	PatternBullishEngulfing = "engulfing_bullish"
	PatternBearishEngulfing = "engulfing_bearish"
)

// RecognizePatterns classifies the last one or two candles of the series.
// Fewer than two candles yields an empty block, not an error.
func RecognizePatterns(candles []domain.Candle) domain.PatternBlock {
	if len(candles) < 2 {
		return domain.PatternBlock{}
	}
	curr := candles[len(candles)-1]
	prev := candles[len(candles)-2]

	var names []string
	if isDoji(curr) {
		names = append(names, PatternDoji)
	}
	if isHammer(curr) {
		names = append(names, PatternHammer)
	}
	if isBullishEngulfing(curr, prev) {
		names = append(names, PatternBullishEngulfing)
	}
	if isBearishEngulfing(curr, prev) {
		names = append(names, PatternBearishEngulfing)
	}

	return domain.PatternBlock{Found: len(names) > 0, Names: names}
}

// isDoji: open and close nearly equal relative to the bar's range.
func isDoji(c domain.Candle) bool {
	body := math.Abs(c.Close - c.Open)
	return body <= (c.High-c.Low)*0.1
}

// isHammer: small body, long lower shadow, short upper shadow.
func isHammer(c domain.Candle) bool {
	body := math.Abs(c.Close - c.Open)
	lowerShadow := math.Min(c.Close, c.Open) - c.Low
	upperShadow := c.High - math.Max(c.Close, c.Open)
	return lowerShadow >= body*2 && upperShadow <= body*0.5
}

// isBullishEngulfing: previous candle red, current green, current body
// containing the previous one.
func isBullishEngulfing(curr, prev domain.Candle) bool {
	prevRed := prev.Close < prev.Open
	currGreen := curr.Close > curr.Open
	engulfing := curr.Open <= prev.Close && curr.Close >= prev.Open
	return prevRed && currGreen && engulfing
}

func isBearishEngulfing(curr, prev domain.Candle) bool {
	prevGreen := prev.Close > prev.Open
	currRed := curr.Close < curr.Open
	engulfing := curr.Open >= prev.Close && curr.Close <= prev.Open
	return prevGreen && currRed && engulfing
}
