// Package strategy provides the composite signal scorer and the rule-based
// trade-idea generator.
package strategy

import (
	"fmt"

	"stockdeck/internal/analysis/indicators"
	"stockdeck/internal/models"
)

// Weights defines the contribution of each component to the composite score.
type Weights struct {
	RSI    float64
	MACD   float64
	EMA    float64
	ADX    float64
	Volume float64
}

// DefaultWeights returns the default component weights.
func DefaultWeights() Weights {
	return Weights{
		RSI:    0.25,
		MACD:   0.25,
		EMA:    0.20,
		ADX:    0.15,
		Volume: 0.15,
	}
}

// Scorer combines technical indicators into a composite score.
type Scorer struct {
	weights Weights
}

// NewScorer creates a scorer with default weights.
func NewScorer() *Scorer {
	return &Scorer{weights: DefaultWeights()}
}

// NewScorerWithWeights creates a scorer with custom weights.
func NewScorerWithWeights(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score calculates a composite signal score for the given bars.
// The result is in [-100, +100]: positive is bullish.
func (s *Scorer) Score(bars []models.Bar) (*models.SignalScore, error) {
	if len(bars) < 40 {
		return nil, fmt.Errorf("insufficient data: need at least 40 bars, got %d", len(bars))
	}

	components := make(map[string]float64)
	var total, weight float64

	if v, err := s.rsiComponent(bars); err == nil {
		components["RSI"] = v
		total += v * s.weights.RSI
		weight += s.weights.RSI
	}
	if v, err := s.macdComponent(bars); err == nil {
		components["MACD"] = v
		total += v * s.weights.MACD
		weight += s.weights.MACD
	}
	if v, err := s.emaComponent(bars); err == nil {
		components["EMA"] = v
		total += v * s.weights.EMA
		weight += s.weights.EMA
	}
	if v, err := s.adxComponent(bars); err == nil {
		components["ADX"] = v
		total += v * s.weights.ADX
		weight += s.weights.ADX
	}

	volumeConfirm, volumeScore := s.volumeComponent(bars)
	components["Volume"] = volumeScore
	total += volumeScore * s.weights.Volume
	weight += s.weights.Volume

	var final float64
	if weight > 0 {
		final = total / weight
	}
	final = clamp(final, -100, 100)

	return &models.SignalScore{
		Score:          final,
		Recommendation: scoreLabel(final),
		Components:     components,
		VolumeConfirm:  volumeConfirm,
	}, nil
}

// rsiComponent maps RSI into a score: oversold is bullish, overbought bearish.
func (s *Scorer) rsiComponent(bars []models.Bar) (float64, error) {
	values, err := indicators.NewRSI(14).Calculate(bars)
	if err != nil {
		return 0, err
	}
	rsi := lastNonZero(values)

	var score float64
	switch {
	case rsi <= 30:
		score = 100 - (rsi/30)*67
	case rsi <= 50:
		score = 33 - ((rsi-30)/20)*33
	case rsi <= 70:
		score = -((rsi - 50) / 20) * 33
	default:
		score = -33 - ((rsi-70)/30)*67
	}
	return score, nil
}

// macdComponent scores the MACD/signal relationship and histogram momentum.
func (s *Scorer) macdComponent(bars []models.Bar) (float64, error) {
	values, err := indicators.NewMACD(12, 26, 9).Calculate(bars)
	if err != nil {
		return 0, err
	}

	n := len(bars)
	macdLine := values["macd"][n-1]
	signalLine := values["signal"][n-1]
	hist := values["histogram"][n-1]
	prevHist := values["histogram"][n-2]

	var score float64
	if macdLine > signalLine {
		score = 50
	} else {
		score = -50
	}
	if hist > prevHist {
		score += 25
	} else {
		score -= 25
	}
	if hist > 0 {
		score += 25
	} else {
		score -= 25
	}

	return clamp(score, -100, 100), nil
}

// emaComponent scores the price against the 9/21/50-period EMAs.
func (s *Scorer) emaComponent(bars []models.Bar) (float64, error) {
	fast, err := indicators.NewEMA(9).Calculate(bars)
	if err != nil {
		return 0, err
	}
	mid, err := indicators.NewEMA(21).Calculate(bars)
	if err != nil {
		return 0, err
	}

	n := len(bars)
	price := bars[n-1].Close

	var score float64
	if price > fast[n-1] {
		score += 40
	} else {
		score -= 40
	}
	if price > mid[n-1] {
		score += 40
	} else {
		score -= 40
	}
	// Fast over mid confirms the shorter-term trend.
	if fast[n-1] > mid[n-1] {
		score += 20
	} else {
		score -= 20
	}

	return clamp(score, -100, 100), nil
}

// adxComponent scores trend strength and direction from ADX and the DIs.
func (s *Scorer) adxComponent(bars []models.Bar) (float64, error) {
	values, err := indicators.NewADX(14).Calculate(bars)
	if err != nil {
		return 0, err
	}

	adx := lastNonZero(values["adx"])
	n := len(bars)
	plusDI := values["plus_di"][n-1]
	minusDI := values["minus_di"][n-1]

	strength := adx / 50
	if strength > 1 {
		strength = 1
	}

	var score float64
	if plusDI > minusDI {
		score = 100 * strength
	} else {
		score = -100 * strength
	}

	// A weak trend dilutes the directional signal.
	if adx < 20 && adx > 0 {
		score *= adx / 20
	}

	return clamp(score, -100, 100), nil
}

// volumeComponent checks whether recent volume supports the recent move.
func (s *Scorer) volumeComponent(bars []models.Bar) (bool, float64) {
	n := len(bars)
	if n < 20 {
		return false, 0
	}

	var recent, base float64
	for _, b := range bars[n-5:] {
		recent += float64(b.Volume)
	}
	recent /= 5
	for _, b := range bars[n-20:] {
		base += float64(b.Volume)
	}
	base /= 20

	if base == 0 {
		return false, 0
	}

	ratio := recent / base
	rising := bars[n-1].Close > bars[n-5].Close

	// Above-average volume confirms the direction of the move.
	if ratio >= 1.2 {
		if rising {
			return true, clamp((ratio-1)*100, 0, 100)
		}
		return true, clamp(-(ratio-1)*100, -100, 0)
	}
	return false, 0
}

func scoreLabel(score float64) string {
	switch {
	case score >= 50:
		return "strong buy"
	case score >= 20:
		return "buy"
	case score > -20:
		return "neutral"
	case score > -50:
		return "sell"
	default:
		return "strong sell"
	}
}

func lastNonZero(values []float64) float64 {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != 0 {
			return values[i]
		}
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
