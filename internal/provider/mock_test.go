package provider

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"stockdeck/internal/models"
)

func fixedClock() func() time.Time {
	at := time.Date(2025, 6, 2, 15, 30, 0, 0, time.UTC)
	return func() time.Time { return at }
}

func TestMockQuoteDeterministic(t *testing.T) {
	ctx := context.Background()
	p1 := NewMockProvider(42).WithClock(fixedClock())
	p2 := NewMockProvider(42).WithClock(fixedClock())

	q1, err := p1.GetQuote(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	q2, err := p2.GetQuote(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}

	if q1.Last != q2.Last || q1.Volume != q2.Volume {
		t.Errorf("same seed produced different quotes: %+v vs %+v", q1, q2)
	}
	if q1.Source != models.SourceMock {
		t.Errorf("Source = %q, want mock", q1.Source)
	}
}

func TestMockQuoteDiffersAcrossSeeds(t *testing.T) {
	ctx := context.Background()
	q1, err := NewMockProvider(1).WithClock(fixedClock()).GetQuote(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	q2, err := NewMockProvider(2).WithClock(fixedClock()).GetQuote(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if q1.Last == q2.Last {
		t.Error("different seeds produced identical quotes")
	}
}

func TestMockQuoteChangeConsistent(t *testing.T) {
	q, err := NewMockProvider(7).WithClock(fixedClock()).GetQuote(context.Background(), "MSFT")
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(q.Change-(q.Last-q.PrevClose)) > 1e-9 {
		t.Errorf("Change = %v, want Last-PrevClose = %v", q.Change, q.Last-q.PrevClose)
	}
	wantPct := 100 * q.Change / q.PrevClose
	if math.Abs(q.ChangePercent-wantPct) > 1e-9 {
		t.Errorf("ChangePercent = %v, want %v", q.ChangePercent, wantPct)
	}
}

func TestMockBarsRespectLimit(t *testing.T) {
	p := NewMockProvider(0).WithClock(fixedClock())
	bars, err := p.GetBars(context.Background(), BarsRequest{
		Symbol:    "TSLA",
		Timeframe: models.TimeframeDay,
		Limit:     50,
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(bars) != 50 {
		t.Errorf("got %d bars, want 50", len(bars))
	}
	for i := 1; i < len(bars); i++ {
		if !bars[i].Timestamp.After(bars[i-1].Timestamp) {
			t.Fatal("bars not in ascending timestamp order")
		}
	}
}

func TestMockBarsInvalidSymbol(t *testing.T) {
	p := NewMockProvider(0)
	if _, err := p.GetBars(context.Background(), BarsRequest{Symbol: "bad symbol!"}); err == nil {
		t.Error("expected validation error")
	}
	if _, err := p.GetQuote(context.Background(), ""); err == nil {
		t.Error("expected validation error for empty symbol")
	}
}

func TestProperty_MockBarsOHLCInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("generated bars satisfy OHLC bounds and positive prices", prop.ForAll(
		func(seed int64, symIdx int) bool {
			symbols := []string{"AAPL", "MSFT", "TSLA", "NVDA", "SPY", "A", "BRK.B"}
			symbol := symbols[symIdx%len(symbols)]

			p := NewMockProvider(seed).WithClock(fixedClock())
			bars, err := p.GetBars(context.Background(), BarsRequest{
				Symbol:    symbol,
				Timeframe: models.TimeframeDay,
				Limit:     100,
			})
			if err != nil {
				return false
			}

			for _, b := range bars {
				if b.Low <= 0 || b.Volume <= 0 {
					return false
				}
				if b.High < math.Max(b.Open, b.Close) {
					return false
				}
				if b.Low > math.Min(b.Open, b.Close) {
					return false
				}
			}
			return true
		},
		gen.Int64Range(0, 1<<32),
		gen.IntRange(0, 100),
	))

	properties.TestingRun(t)
}

func TestMockOptionChainShape(t *testing.T) {
	ctx := context.Background()
	p := NewMockProvider(42).WithClock(fixedClock())

	chain, err := p.GetOptionChain(ctx, "AAPL", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if chain.SpotPrice <= 0 {
		t.Fatal("non-positive spot")
	}
	if len(chain.Strikes) == 0 {
		t.Fatal("empty chain")
	}
	if !chain.Expiry.After(fixedClock()()) {
		t.Errorf("expiry %v not in the future", chain.Expiry)
	}

	for i, st := range chain.Strikes {
		if st.Call == nil || st.Put == nil {
			t.Fatalf("strike %v missing a leg", st.Strike)
		}
		if i > 0 && st.Strike <= chain.Strikes[i-1].Strike {
			t.Fatal("strikes not ascending")
		}
		if st.Call.IV <= 0 || st.Put.IV <= 0 {
			t.Errorf("non-positive IV at strike %v", st.Strike)
		}
		if st.Call.Last <= 0 || st.Put.Last <= 0 {
			t.Errorf("non-positive premium at strike %v", st.Strike)
		}
		if st.Call.Greeks.Delta < 0 || st.Put.Greeks.Delta > 0 {
			t.Errorf("delta signs wrong at strike %v", st.Strike)
		}
	}
}

func TestMockNews(t *testing.T) {
	p := NewMockProvider(42).WithClock(fixedClock())
	items, err := p.GetNews(context.Background(), "AAPL", 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 5 {
		t.Fatalf("got %d items, want 5", len(items))
	}
	for _, item := range items {
		if item.Headline == "" || item.Symbol != "AAPL" {
			t.Errorf("malformed news item: %+v", item)
		}
	}

	again, _ := p.GetNews(context.Background(), "AAPL", 5)
	for i := range items {
		if items[i].Headline != again[i].Headline {
			t.Error("news not deterministic for same seed and symbol")
		}
	}
}

func TestNormalizeSymbol(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"aapl", "AAPL", false},
		{" msft ", "MSFT", false},
		{"BRK.B", "BRK.B", false},
		{"NSE:INFY", "NSE:INFY", false},
		{"M&M", "M&M", false},
		{"", "", true},
		{"BAD SYMBOL", "", true},
		{"WAYTOOLONGSYMBOLNAME12345", "", true},
	}
	for _, tt := range tests {
		got, err := NormalizeSymbol(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("NormalizeSymbol(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeSymbol(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("NormalizeSymbol(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
