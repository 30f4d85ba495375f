// Package sentiment provides a deterministic keyword scorer for headlines.
package sentiment

import (
	"strings"

	"stockdeck/internal/models"
)

// Weighted lexicon. Scores are per-occurrence contributions before the
// per-headline clamp.
var positiveTerms = map[string]float64{
	"beat":      0.4,
	"beats":     0.4,
	"upgrade":   0.5,
	"upgraded":  0.5,
	"raises":    0.3,
	"record":    0.3,
	"growth":    0.25,
	"surge":     0.4,
	"surges":    0.4,
	"rally":     0.35,
	"strong":    0.25,
	"buyback":   0.3,
	"dividend":  0.2,
	"outperform": 0.4,
	"bullish":   0.35,
	"profit":    0.25,
	"expands":   0.2,
	"approval":  0.3,
}

var negativeTerms = map[string]float64{
	"miss":       0.4,
	"misses":     0.4,
	"downgrade":  0.5,
	"downgraded": 0.5,
	"cuts":       0.3,
	"lawsuit":    0.35,
	"probe":      0.3,
	"recall":     0.35,
	"plunge":     0.45,
	"plunges":    0.45,
	"falls":      0.3,
	"weak":       0.25,
	"layoffs":    0.35,
	"bearish":    0.35,
	"loss":       0.25,
	"warns":      0.35,
	"investigation": 0.35,
	"bankruptcy": 0.6,
}

// ScoreHeadline scores one headline in [-1, 1].
func ScoreHeadline(headline string) float64 {
	var score float64
	for _, word := range strings.Fields(strings.ToLower(headline)) {
		word = strings.Trim(word, ".,;:!?'\"()")
		if w, ok := positiveTerms[word]; ok {
			score += w
		}
		if w, ok := negativeTerms[word]; ok {
			score -= w
		}
	}
	return clamp(score, -1, 1)
}

// Score aggregates headline sentiment for a symbol. The aggregate is the
// mean of per-headline scores, clamped to [-1, 1].
func Score(symbol string, items []models.NewsItem) models.SentimentScore {
	result := models.SentimentScore{
		Symbol:    symbol,
		Headlines: make([]models.HeadlineSentiment, 0, len(items)),
	}

	if len(items) == 0 {
		result.Label = "neutral"
		return result
	}

	var total float64
	for _, item := range items {
		s := ScoreHeadline(item.Headline)
		total += s
		result.Headlines = append(result.Headlines, models.HeadlineSentiment{
			Headline: item.Headline,
			Score:    s,
		})
	}

	result.Score = clamp(total/float64(len(items)), -1, 1)
	result.Label = label(result.Score)
	return result
}

func label(score float64) string {
	switch {
	case score >= 0.15:
		return "bullish"
	case score <= -0.15:
		return "bearish"
	default:
		return "neutral"
	}
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
