package fusion

import (
	"fmt"

	"paper-tiger/internal/domain"
)

// Weights splits the combined score between news sentiment and the
// technical score. They are expected to sum to 1.
type Weights struct {
	News float64
	Tech float64
}

func DefaultWeights() Weights {
	return Weights{News: 0.4, Tech: 0.6}
}

// Gates are the minimum confidences the gated policy requires for the
// two buy decisions.
type Gates struct {
	StrongBuy float64
	Buy       float64
}

func DefaultGates() Gates {
	return Gates{StrongBuy: 65, Buy: 55}
}

// Policy selects how the fused score maps to a decision.
type Policy int

const (
	// PolicyUngated maps the score straight through the decision bands.
	PolicyUngated Policy = iota
	// PolicyGated additionally requires the confidence gates for
	// STRONG_BUY and BUY; a score that clears a buy band on score alone
	// falls through the remaining bands.
	PolicyGated
)

// Result is one fused evaluation of a snapshot.
type Result struct {
	Score      float64
	TechScore  float64
	Confidence float64
	Decision   domain.Decision
	Reasons    []string
}

// Engine fuses technical snapshots with optional sentiment into trade
// signals. The zero value is not usable; construct with NewEngine.
type Engine struct {
	weights Weights
	gates   Gates
	policy  Policy
}

func NewEngine(weights Weights, gates Gates, policy Policy) *Engine {
	if weights.News == 0 && weights.Tech == 0 {
		weights = DefaultWeights()
	}
	if gates.StrongBuy == 0 && gates.Buy == 0 {
		gates = DefaultGates()
	}
	return &Engine{weights: weights, gates: gates, policy: policy}
}

// TechnicalScore folds a snapshot's indicator blocks into a 0-100 score
// plus the list of contributing signals, in a fixed order.
func TechnicalScore(snap *domain.Snapshot) (float64, []string) {
	score := 50.0
	var reasons []string

	switch {
	case snap.RSI.Value < 30:
		score += 15
		reasons = append(reasons, "RSI oversold (bullish)")
	case snap.RSI.Value > 70:
		score -= 15
		reasons = append(reasons, "RSI overbought (bearish)")
	}

	if snap.MACD.Histogram > 0 {
		score += 10
		reasons = append(reasons, "MACD bullish")
	} else {
		score -= 10
		reasons = append(reasons, "MACD bearish")
	}

	switch snap.MovingAverages.Trend {
	case "bullish":
		score += 15
		reasons = append(reasons, "Uptrend")
	case "bearish":
		score -= 15
		reasons = append(reasons, "Downtrend")
	}

	if snap.Volume.Spike {
		score += 10
		reasons = append(reasons, "Volume spike")
	}

	if snap.Bollinger.Oversold {
		score += 10
		reasons = append(reasons, "BB oversold")
	} else if snap.Bollinger.Overbought {
		score -= 10
		reasons = append(reasons, "BB overbought")
	}

	if score < 0 {
		score = 0
	} else if score > 100 {
		score = 100
	}
	return score, reasons
}

// Evaluate fuses the snapshot with an optional sentiment reading. A nil
// sentiment yields a technical-only result whose confidence equals the
// technical score.
func (e *Engine) Evaluate(snap *domain.Snapshot, sentiment *domain.SentimentInput) Result {
	tech, reasons := TechnicalScore(snap)

	score := tech
	confidence := tech
	if sentiment != nil {
		scaled := (sentiment.Score + 1) * 50
		score = scaled*e.weights.News + tech*e.weights.Tech
		confidence = (sentiment.Confidence + tech) / 2
		if label := sentimentReason(sentiment); label != "" {
			reasons = append(reasons, label)
		}
	}

	return Result{
		Score:      score,
		TechScore:  tech,
		Confidence: confidence,
		Decision:   e.decide(score, confidence),
		Reasons:    reasons,
	}
}

func (e *Engine) decide(score, confidence float64) domain.Decision {
	if e.policy == PolicyUngated {
		return domain.DecisionFromScore(score)
	}
	switch {
	case score >= domain.StrongBuyScore && confidence >= e.gates.StrongBuy:
		return domain.DecisionStrongBuy
	case score >= domain.BuyScore && confidence >= e.gates.Buy:
		return domain.DecisionBuy
	case score >= domain.HoldScore:
		return domain.DecisionHold
	case score >= domain.SellScore:
		return domain.DecisionSell
	default:
		return domain.DecisionStrongSell
	}
}

func sentimentReason(s *domain.SentimentInput) string {
	switch {
	case s.Score > 0.5:
		return fmt.Sprintf("Positive news (%d articles)", s.NewsCount)
	case s.Score < -0.5:
		return fmt.Sprintf("Negative news (%d articles)", s.NewsCount)
	default:
		return ""
	}
}
