package strategy

import (
	"math"
	"reflect"
	"testing"
	"time"

	"stockdeck/internal/models"
)

// trendBars builds a deterministic bar series with the given per-bar drift.
// Positive drift produces a steady uptrend with rising volume.
func trendBars(n int, drift float64) []models.Bar {
	bars := make([]models.Bar, n)
	price := 100.0
	start := time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)

	for i := 0; i < n; i++ {
		open := price
		// Small alternating wiggle so the series is not perfectly monotone.
		wiggle := 0.003 * math.Sin(float64(i)*1.3)
		close := open * (1 + drift + wiggle)
		hi := math.Max(open, close) * 1.004
		lo := math.Min(open, close) * 0.996

		volume := int64(1_000_000)
		if drift > 0 && i >= n-5 {
			volume = 1_600_000 // volume expands into the move
		}

		bars[i] = models.Bar{
			Timestamp: start.AddDate(0, 0, i),
			Open:      open,
			High:      hi,
			Low:       lo,
			Close:     close,
			Volume:    volume,
		}
		price = close
	}
	return bars
}

func TestScoreBounds(t *testing.T) {
	scorer := NewScorer()

	for _, drift := range []float64{0.01, -0.01, 0.0} {
		score, err := scorer.Score(trendBars(120, drift))
		if err != nil {
			t.Fatalf("Score(drift=%v): %v", drift, err)
		}
		if score.Score < -100 || score.Score > 100 {
			t.Errorf("score %v out of [-100, 100] for drift %v", score.Score, drift)
		}
	}
}

func TestScoreDirection(t *testing.T) {
	scorer := NewScorer()

	up, err := scorer.Score(trendBars(120, 0.01))
	if err != nil {
		t.Fatal(err)
	}
	down, err := scorer.Score(trendBars(120, -0.01))
	if err != nil {
		t.Fatal(err)
	}

	if up.Score <= 0 {
		t.Errorf("uptrend scored %v, want > 0", up.Score)
	}
	if down.Score >= 0 {
		t.Errorf("downtrend scored %v, want < 0", down.Score)
	}
}

func TestScoreInsufficientData(t *testing.T) {
	if _, err := NewScorer().Score(trendBars(30, 0.01)); err == nil {
		t.Error("expected error for short series")
	}
}

func TestGenerateDeterministic(t *testing.T) {
	engine := NewEngine(252)
	in := Inputs{
		Bars: trendBars(120, 0.01),
		Now:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
	}

	ideas1, score1, err := engine.Generate(in)
	if err != nil {
		t.Fatal(err)
	}
	ideas2, score2, err := engine.Generate(in)
	if err != nil {
		t.Fatal(err)
	}

	if !reflect.DeepEqual(ideas1, ideas2) {
		t.Error("same inputs produced different ideas")
	}
	if score1.Score != score2.Score {
		t.Errorf("same inputs produced different scores: %v vs %v", score1.Score, score2.Score)
	}
}

func TestGenerateBullishIdeas(t *testing.T) {
	engine := NewEngine(252)
	ideas, score, err := engine.Generate(Inputs{
		Bars: trendBars(120, 0.01),
		Now:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if score.Score < 20 {
		t.Fatalf("uptrend score %v, expected bullish regime", score.Score)
	}
	if len(ideas) == 0 {
		t.Fatal("no ideas generated")
	}

	for _, idea := range ideas {
		if idea.Bias == models.BiasBearish {
			t.Errorf("bearish idea %q in bullish regime", idea.Name)
		}
		if idea.Confidence < 0 || idea.Confidence > 100 {
			t.Errorf("confidence %v out of [0, 100] for %q", idea.Confidence, idea.Name)
		}
	}

	for i := 1; i < len(ideas); i++ {
		if ideas[i].Confidence > ideas[i-1].Confidence {
			t.Error("ideas not sorted by confidence descending")
		}
	}
}

func TestGenerateBearishIdeas(t *testing.T) {
	engine := NewEngine(252)
	ideas, score, err := engine.Generate(Inputs{
		Bars: trendBars(120, -0.01),
		Now:  time.Now(),
	})
	if err != nil {
		t.Fatal(err)
	}
	if score.Score > -20 {
		t.Fatalf("downtrend score %v, expected bearish regime", score.Score)
	}
	if len(ideas) == 0 {
		t.Fatal("no ideas generated")
	}
	if ideas[0].Name != "Bear Put Spread" {
		t.Errorf("top bearish idea = %q, want Bear Put Spread", ideas[0].Name)
	}
}

func TestGenerateRegimeConsistency(t *testing.T) {
	engine := NewEngine(252)

	for _, drift := range []float64{0.01, 0.003, 0.0, -0.003, -0.01} {
		ideas, score, err := engine.Generate(Inputs{
			Bars: trendBars(120, drift),
			Now:  time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		})
		if err != nil {
			t.Fatalf("Generate(drift=%v): %v", drift, err)
		}
		if len(ideas) == 0 {
			t.Fatalf("no ideas for drift %v", drift)
		}

		// Idea bias must agree with the scoring regime.
		switch {
		case score.Score >= 20:
			for _, idea := range ideas {
				if idea.Bias == models.BiasBearish {
					t.Errorf("bearish idea %q with score %v", idea.Name, score.Score)
				}
			}
		case score.Score <= -20:
			for _, idea := range ideas {
				if idea.Bias == models.BiasBullish {
					t.Errorf("bullish idea %q with score %v", idea.Name, score.Score)
				}
			}
		default:
			for _, idea := range ideas {
				if idea.Bias != models.BiasNeutral {
					t.Errorf("idea %q has bias %q with neutral score %v", idea.Name, idea.Bias, score.Score)
				}
			}
		}
	}
}

func TestCatalogTemplatesComplete(t *testing.T) {
	for _, tmpl := range Catalog {
		if tmpl.Name == "" || tmpl.Rationale == "" {
			t.Errorf("catalog template missing name or rationale: %+v", tmpl)
		}
		if len(tmpl.Legs) == 0 {
			t.Errorf("template %q has no legs", tmpl.Name)
		}
		if tmpl.MaxProfit == "" || tmpl.MaxLoss == "" || tmpl.Breakeven == "" {
			t.Errorf("template %q missing risk summary fields", tmpl.Name)
		}
	}

	for _, name := range []string{
		"Long Equity", "Bull Call Spread", "Cash-Secured Put", "Covered Call",
		"Bear Put Spread", "Iron Condor", "Long Straddle",
	} {
		if _, ok := templateByName(name); !ok {
			t.Errorf("template %q missing from catalog", name)
		}
	}
}

func TestScoreLabelThresholds(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{75, "strong buy"},
		{50, "strong buy"},
		{35, "buy"},
		{20, "buy"},
		{0, "neutral"},
		{-19, "neutral"},
		{-35, "sell"},
		{-60, "strong sell"},
	}
	for _, tt := range tests {
		if got := scoreLabel(tt.score); got != tt.want {
			t.Errorf("scoreLabel(%v) = %q, want %q", tt.score, got, tt.want)
		}
	}
}
