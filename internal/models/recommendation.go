package models

// Bias is the directional stance of a strategy idea.
type Bias string

const (
	BiasBullish Bias = "bullish"
	BiasBearish Bias = "bearish"
	BiasNeutral Bias = "neutral"
)

// StrategyIdea is one generated trade idea. All numeric fields come from the
// static strategy catalog; Confidence is set by the rule engine.
type StrategyIdea struct {
	Name       string   `json:"name"`
	Bias       Bias     `json:"bias"`
	Legs       []string `json:"legs"`
	Rationale  string   `json:"rationale"`
	Confidence float64  `json:"confidence"` // 0-100
	MaxProfit  string   `json:"max_profit"`
	MaxLoss    string   `json:"max_loss"`
	Breakeven  string   `json:"breakeven"`
	RiskReward float64  `json:"risk_reward"`
	Commentary string   `json:"commentary,omitempty"`
}

// SignalScore is the composite technical score for a symbol.
type SignalScore struct {
	Score          float64            `json:"score"` // -100 (strong sell) to +100 (strong buy)
	Recommendation string             `json:"recommendation"`
	Components     map[string]float64 `json:"components"`
	VolumeConfirm  bool               `json:"volume_confirm"`
}

// SentimentScore is the aggregate headline sentiment for a symbol.
type SentimentScore struct {
	Symbol    string              `json:"symbol"`
	Score     float64             `json:"score"` // -1 (bearish) to +1 (bullish)
	Label     string              `json:"label"`
	Headlines []HeadlineSentiment `json:"headlines"`
}

// HeadlineSentiment is the contribution of one headline to the aggregate.
type HeadlineSentiment struct {
	Headline string  `json:"headline"`
	Score    float64 `json:"score"`
}
