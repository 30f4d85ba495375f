package options

import (
	"math"
	"testing"
	"time"

	"stockdeck/internal/models"
)

func contract(last, iv float64, oi, volume int64) *models.OptionContract {
	return &models.OptionContract{Last: last, IV: iv, OI: oi, Volume: volume}
}

// testChain builds a small chain around spot 100 with a put-heavy book
// below spot and a call-heavy book above it.
func testChain(expiry time.Time) *models.OptionChain {
	return &models.OptionChain{
		Symbol:    "TEST",
		SpotPrice: 100,
		Expiry:    expiry,
		Strikes: []models.OptionStrike{
			{Strike: 90, Call: contract(11.0, 32, 100, 10), Put: contract(0.5, 38, 4000, 400)},
			{Strike: 95, Call: contract(6.5, 30, 500, 50), Put: contract(1.2, 34, 3000, 300)},
			{Strike: 100, Call: contract(3.0, 28, 2000, 200), Put: contract(3.0, 28, 2000, 200)},
			{Strike: 105, Call: contract(1.2, 30, 3000, 300), Put: contract(6.5, 32, 500, 50)},
			{Strike: 110, Call: contract(0.5, 33, 4000, 400), Put: contract(11.0, 35, 100, 10)},
		},
	}
}

func TestAnalyze(t *testing.T) {
	now := time.Date(2025, 6, 2, 10, 0, 0, 0, time.UTC)
	expiry := now.AddDate(0, 0, 30)

	s, err := Analyze(testChain(expiry), now)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}

	if s.Symbol != "TEST" || s.SpotPrice != 100 {
		t.Errorf("unexpected identity fields: %+v", s)
	}
	if s.DTE != 30 {
		t.Errorf("DTE = %d, want 30", s.DTE)
	}
	if s.ATMStrike != 100 {
		t.Errorf("ATMStrike = %v, want 100", s.ATMStrike)
	}
	if s.ATMIV != 28 {
		t.Errorf("ATMIV = %v, want 28", s.ATMIV)
	}

	// Both sides carry 9600 OI and 960 volume by construction.
	if s.PutCallRatioOI != 1.0 {
		t.Errorf("PutCallRatioOI = %v, want 1.0", s.PutCallRatioOI)
	}
	if s.PutCallRatioVol != 1.0 {
		t.Errorf("PutCallRatioVol = %v, want 1.0", s.PutCallRatioVol)
	}

	// ATM straddle is 3.0 + 3.0 with the 85% haircut.
	if math.Abs(s.ExpectedMove-0.85*6.0) > 1e-9 {
		t.Errorf("ExpectedMove = %v, want %v", s.ExpectedMove, 0.85*6.0)
	}
	if math.Abs(s.ExpectedMovePct-5.1) > 1e-9 {
		t.Errorf("ExpectedMovePct = %v, want 5.1", s.ExpectedMovePct)
	}

	// 95 put IV (34) minus 105 call IV (30).
	if math.Abs(s.IVSkew-4) > 1e-9 {
		t.Errorf("IVSkew = %v, want 4", s.IVSkew)
	}
}

func TestMaxPainSymmetricChain(t *testing.T) {
	expiry := time.Now().AddDate(0, 0, 14)
	chain := testChain(expiry)

	// The book is symmetric around 100; the payout-minimizing settle is 100.
	if got := MaxPain(chain); got != 100 {
		t.Errorf("MaxPain = %v, want 100", got)
	}
}

func TestMaxPainSkewedOI(t *testing.T) {
	expiry := time.Now().AddDate(0, 0, 14)
	chain := &models.OptionChain{
		Symbol:    "TEST",
		SpotPrice: 100,
		Expiry:    expiry,
		Strikes: []models.OptionStrike{
			{Strike: 95, Call: contract(6, 30, 10000, 0), Put: contract(1, 30, 100, 0)},
			{Strike: 100, Call: contract(3, 30, 8000, 0), Put: contract(3, 30, 100, 0)},
			{Strike: 105, Call: contract(1, 30, 100, 0), Put: contract(6, 30, 100, 0)},
		},
	}

	// Call OI dominates below spot, so settling low hurts writers least.
	if got := MaxPain(chain); got != 95 {
		t.Errorf("MaxPain = %v, want 95", got)
	}
}

func TestAnalyzeEmptyChain(t *testing.T) {
	if _, err := Analyze(nil, time.Now()); err == nil {
		t.Error("expected error for nil chain")
	}
	if _, err := Analyze(&models.OptionChain{Symbol: "X"}, time.Now()); err == nil {
		t.Error("expected error for empty chain")
	}
}

func TestExpectedMoveFallsBackToIV(t *testing.T) {
	now := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)
	expiry := now.AddDate(0, 0, 365)
	chain := &models.OptionChain{
		Symbol:    "TEST",
		SpotPrice: 100,
		Expiry:    expiry,
		Strikes: []models.OptionStrike{
			{Strike: 100, Call: contract(0, 20, 100, 0)},
		},
	}

	// No straddle quote: spot * iv * sqrt(1 year) = 100 * 0.20 * 1.
	got := ExpectedMove(chain, now)
	if math.Abs(got-20) > 1e-9 {
		t.Errorf("ExpectedMove = %v, want 20", got)
	}
}
