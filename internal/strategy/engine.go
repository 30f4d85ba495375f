package strategy

import (
	"sort"
	"time"

	"stockdeck/internal/analysis/indicators"
	optanalysis "stockdeck/internal/analysis/options"
	"stockdeck/internal/models"
)

// Inputs carries everything the rule engine looks at. Chain and Sentiment
// are optional; rules that need them are skipped when they are absent.
type Inputs struct {
	Bars      []models.Bar
	Chain     *models.OptionChain
	Sentiment *models.SentimentScore
	Now       time.Time
}

// Engine generates trade ideas with deterministic rules: the same inputs
// always produce the same ideas in the same order.
type Engine struct {
	scorer      *Scorer
	tradingDays int
}

// NewEngine creates a new recommendation engine.
func NewEngine(tradingDays int) *Engine {
	if tradingDays <= 0 {
		tradingDays = 252
	}
	return &Engine{
		scorer:      NewScorer(),
		tradingDays: tradingDays,
	}
}

// Generate maps indicator readings onto catalog strategies. Ideas are
// returned sorted by confidence, highest first.
func (e *Engine) Generate(in Inputs) ([]models.StrategyIdea, *models.SignalScore, error) {
	score, err := e.scorer.Score(in.Bars)
	if err != nil {
		return nil, nil, err
	}

	rsi := lastOf(indicators.NewRSI(14), in.Bars)
	adxValues, _ := indicators.NewADX(14).Calculate(in.Bars)
	adx := 0.0
	if adxValues != nil {
		adx = lastNonZero(adxValues["adx"])
	}
	hv := lastOf(indicators.NewHistoricalVolatility(20, e.tradingDays), in.Bars)

	trendStrong := adx >= 25
	var atmIV, ivPremium float64
	if in.Chain != nil && len(in.Chain.Strikes) > 0 {
		atmIV = summaryATMIV(in.Chain)
		if hv > 0 {
			ivPremium = atmIV - hv
		}
	}

	sentimentTilt := 0.0
	if in.Sentiment != nil {
		sentimentTilt = in.Sentiment.Score * 10 // up to ±10 confidence points
	}

	var ideas []models.StrategyIdea
	add := func(name string, confidence float64) {
		t, ok := templateByName(name)
		if !ok {
			return
		}
		ideas = append(ideas, t.idea(clamp(confidence, 0, 100)))
	}

	switch {
	case score.Score >= 20:
		// Bullish bias.
		base := 50 + score.Score/2 + sentimentTilt
		if trendStrong {
			add("Long Equity", base+5)
		} else {
			add("Long Equity", base-10)
		}
		if ivPremium > 5 {
			// Options rich relative to realized vol: sell puts instead of buying calls.
			add("Cash-Secured Put", base)
			add("Bull Call Spread", base-10)
		} else {
			add("Bull Call Spread", base)
		}
		if rsi <= 30 {
			// Oversold bounce setups get a kicker.
			for i := range ideas {
				ideas[i].Confidence = clamp(ideas[i].Confidence+10, 0, 100)
			}
		}

	case score.Score <= -20:
		// Bearish bias.
		base := 50 - score.Score/2 - sentimentTilt
		add("Bear Put Spread", base)
		if ivPremium > 5 {
			add("Covered Call", base-5)
		}

	default:
		// No directional edge.
		base := 40 + (20-absFloat(score.Score))/2 + absFloat(sentimentTilt)/2
		if ivPremium > 5 {
			add("Iron Condor", base+10)
			add("Covered Call", base)
		} else if ivPremium < -5 && atmIV > 0 {
			// Realized vol exceeds implied: long volatility is cheap.
			add("Long Straddle", base+5)
		} else {
			add("Iron Condor", base)
		}
	}

	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].Confidence > ideas[j].Confidence
	})

	return ideas, score, nil
}

func summaryATMIV(chain *models.OptionChain) float64 {
	st := optanalysis.ATMStrike(chain)
	switch {
	case st.Call != nil && st.Put != nil:
		return (st.Call.IV + st.Put.IV) / 2
	case st.Call != nil:
		return st.Call.IV
	case st.Put != nil:
		return st.Put.IV
	default:
		return 0
	}
}

func lastOf(ind indicators.Indicator, bars []models.Bar) float64 {
	values, err := ind.Calculate(bars)
	if err != nil {
		return 0
	}
	return lastNonZero(values)
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
