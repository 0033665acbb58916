package domain

import "time"

// Decision is the five-way trade call derived from a fused score.
type Decision string

const (
	DecisionStrongBuy  Decision = "STRONG_BUY"
	DecisionBuy        Decision = "BUY"
	DecisionHold       Decision = "HOLD"
	DecisionSell       Decision = "SELL"
	DecisionStrongSell Decision = "STRONG_SELL"
)

// Decision score bands. A score maps to the first band it reaches.
const (
	StrongBuyScore  = 75.0
	BuyScore        = 60.0
	HoldScore       = 40.0
	SellScore       = 25.0
)

// DecisionFromScore maps a score in [0,100] onto the fixed decision bands.
func DecisionFromScore(score float64) Decision {
	switch {
	case score >= StrongBuyScore:
		return DecisionStrongBuy
	case score >= BuyScore:
		return DecisionBuy
	case score >= HoldScore:
		return DecisionHold
	case score >= SellScore:
		return DecisionSell
	default:
		return DecisionStrongSell
	}
}

// IsBuy reports whether the decision calls for opening or adding to a position.
func (d Decision) IsBuy() bool {
	return d == DecisionBuy || d == DecisionStrongBuy
}

// IsSell reports whether the decision calls for liquidating a position.
func (d Decision) IsSell() bool {
	return d == DecisionSell || d == DecisionStrongSell
}

// SentimentInput is an externally computed news sentiment for one symbol.
// Score is in [-1,1], Confidence in [0,100].
type SentimentInput struct {
	Score      float64 `json:"score"`
	Confidence float64 `json:"confidence"`
	Label      string  `json:"label,omitempty"`
	NewsCount  int     `json:"news_count,omitempty"`
}

// Signal is a fused trade signal for one symbol at one point in time.
type Signal struct {
	ID         int64           `json:"id,omitempty"`
	Symbol     string          `json:"symbol"`
	Decision   Decision        `json:"decision"`
	Score      float64         `json:"score"`
	TechScore  float64         `json:"tech_score"`
	Confidence float64         `json:"confidence"`
	Reasons    []string        `json:"reasons"`
	Sentiment  *SentimentInput `json:"sentiment,omitempty"`
	Price      float64         `json:"price"`
	Timestamp  time.Time       `json:"timestamp"`
}
