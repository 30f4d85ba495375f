package sentiment

import (
	"testing"

	"stockdeck/internal/models"
)

func TestScoreHeadline(t *testing.T) {
	tests := []struct {
		headline string
		positive bool
	}{
		{"Acme beats quarterly earnings estimates on strong demand", true},
		{"Analysts upgrade Acme citing margin growth", true},
		{"Acme announces expanded share buyback program", true},
		{"Acme misses revenue targets as costs rise", false},
		{"Acme warns of weak guidance for next quarter", false},
		{"Acme faces regulatory probe over disclosure practices", false},
	}

	for _, tt := range tests {
		got := ScoreHeadline(tt.headline)
		if tt.positive && got <= 0 {
			t.Errorf("ScoreHeadline(%q) = %v, want > 0", tt.headline, got)
		}
		if !tt.positive && got >= 0 {
			t.Errorf("ScoreHeadline(%q) = %v, want < 0", tt.headline, got)
		}
		if got < -1 || got > 1 {
			t.Errorf("ScoreHeadline(%q) = %v, out of [-1, 1]", tt.headline, got)
		}
	}
}

func TestScoreHeadlineNeutral(t *testing.T) {
	if got := ScoreHeadline("Acme holds annual shareholder meeting"); got != 0 {
		t.Errorf("neutral headline scored %v, want 0", got)
	}
}

func TestScoreHeadlineClamped(t *testing.T) {
	// Stacked positive terms must not exceed the per-headline bound.
	got := ScoreHeadline("record surge rally strong growth beats upgrade bullish profit buyback")
	if got != 1 {
		t.Errorf("stacked positives scored %v, want clamp at 1", got)
	}
}

func TestScoreAggregate(t *testing.T) {
	items := []models.NewsItem{
		{Headline: "Acme beats estimates on record growth"},
		{Headline: "Analysts upgrade Acme"},
		{Headline: "Acme opens new office"},
	}

	result := Score("ACME", items)
	if result.Symbol != "ACME" {
		t.Errorf("Symbol = %q, want ACME", result.Symbol)
	}
	if len(result.Headlines) != 3 {
		t.Fatalf("Headlines = %d, want 3", len(result.Headlines))
	}
	if result.Score <= 0 {
		t.Errorf("aggregate = %v, want > 0", result.Score)
	}
	if result.Label != "bullish" {
		t.Errorf("Label = %q, want bullish", result.Label)
	}
}

func TestScoreNoNews(t *testing.T) {
	result := Score("ACME", nil)
	if result.Score != 0 || result.Label != "neutral" {
		t.Errorf("empty input scored %v (%s), want 0 (neutral)", result.Score, result.Label)
	}
}

func TestScoreMixedIsBounded(t *testing.T) {
	items := []models.NewsItem{
		{Headline: "Acme beats estimates"},
		{Headline: "Acme misses revenue targets"},
	}
	result := Score("ACME", items)
	if result.Score < -1 || result.Score > 1 {
		t.Errorf("aggregate %v out of [-1, 1]", result.Score)
	}
}
