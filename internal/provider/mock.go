package provider

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"stockdeck/internal/models"
)

// MockProvider generates plausible market data from a seeded random walk.
// Output is deterministic for a given (seed, symbol) pair so the dashboard
// renders stable numbers across refreshes in development.
type MockProvider struct {
	seed int64
	now  func() time.Time
}

// NewMockProvider creates a mock provider. A zero seed keeps the default,
// which still yields per-symbol determinism.
func NewMockProvider(seed int64) *MockProvider {
	return &MockProvider{
		seed: seed,
		now:  time.Now,
	}
}

// WithClock overrides the provider clock. Tests use this to pin timestamps.
func (m *MockProvider) WithClock(now func() time.Time) *MockProvider {
	m.now = now
	return m
}

func (m *MockProvider) Name() string {
	return "mock"
}

// rng returns a per-symbol deterministic random source.
func (m *MockProvider) rng(symbol string, salt uint64) *rand.Rand {
	h := fnv.New64a()
	h.Write([]byte(symbol))
	return rand.New(rand.NewSource(m.seed + int64(h.Sum64()^salt)))
}

// basePrice derives a stable starting price from the symbol name, spread
// between roughly $8 and $800.
func (m *MockProvider) basePrice(symbol string) float64 {
	h := fnv.New32a()
	h.Write([]byte(symbol))
	return 8 + float64(h.Sum32()%79200)/100
}

func (m *MockProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Two daily bars give a current and a previous close. Each walk is its
	// own series; quotes are self-consistent but not reconciled with bar
	// histories of other lengths.
	bars := m.walk(symbol, models.TimeframeDay, 2, m.now())
	prev, cur := bars[0], bars[1]

	q := &models.Quote{
		Symbol:    symbol,
		Last:      cur.Close,
		Open:      cur.Open,
		High:      cur.High,
		Low:       cur.Low,
		PrevClose: prev.Close,
		Volume:    cur.Volume,
		Timestamp: m.now(),
		Source:    models.SourceMock,
	}
	q.Change = q.Last - q.PrevClose
	if q.PrevClose != 0 {
		q.ChangePercent = 100 * q.Change / q.PrevClose
	}
	return q, nil
}

func (m *MockProvider) GetBars(ctx context.Context, req BarsRequest) ([]models.Bar, error) {
	symbol, err := NormalizeSymbol(req.Symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	tf := req.Timeframe
	if tf == "" {
		tf = models.TimeframeDay
	}
	limit := req.Limit
	if limit <= 0 {
		limit = int(defaultBarSpan(tf) / barInterval(tf))
	}
	if limit > 5000 {
		limit = 5000
	}

	end := req.To
	if end.IsZero() {
		end = m.now()
	}
	return m.walk(symbol, tf, limit, end), nil
}

// walk produces n bars of a geometric random walk ending at end. Every bar
// satisfies High >= max(Open, Close) and Low <= min(Open, Close), and all
// prices stay positive.
func (m *MockProvider) walk(symbol string, tf models.Timeframe, n int, end time.Time) []models.Bar {
	rng := m.rng(symbol, uint64(len(tf)))
	interval := barInterval(tf)

	// Per-bar volatility scaled down for intraday timeframes.
	vol := 0.02 * math.Sqrt(float64(interval)/float64(24*time.Hour))
	if vol < 0.0005 {
		vol = 0.0005
	}
	drift := (rng.Float64() - 0.48) * vol / 4

	price := m.basePrice(symbol)
	bars := make([]models.Bar, n)
	start := end.Add(-time.Duration(n) * interval)

	for i := 0; i < n; i++ {
		open := price
		ret := drift + vol*rng.NormFloat64()
		close := open * math.Exp(ret)

		hi := math.Max(open, close) * (1 + rng.Float64()*vol/2)
		lo := math.Min(open, close) * (1 - rng.Float64()*vol/2)
		if lo <= 0 {
			lo = math.Min(open, close) / 2
		}

		bars[i] = models.Bar{
			Timestamp: start.Add(time.Duration(i+1) * interval),
			Open:      open,
			High:      hi,
			Low:       lo,
			Close:     close,
			Volume:    100_000 + rng.Int63n(5_000_000),
		}
		price = close
	}
	return bars
}

func (m *MockProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	quote, err := m.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	spot := quote.Last

	if expiry.IsZero() {
		expiry = nextMonthlyExpiry(m.now())
	}
	years := expiry.Sub(m.now()).Hours() / 24 / 365
	if years < 1.0/365 {
		years = 1.0 / 365
	}

	rng := m.rng(symbol, 0xC0DE)
	baseIV := 18 + rng.Float64()*30 // percent

	// Strike grid: ±20% of spot in 2.5% steps.
	step := roundStrike(spot * 0.025)
	atm := math.Round(spot/step) * step

	chain := &models.OptionChain{
		Symbol:    symbol,
		SpotPrice: spot,
		Expiry:    expiry,
		Source:    models.SourceMock,
	}

	for k := -8; k <= 8; k++ {
		strike := atm + float64(k)*step
		if strike <= 0 {
			continue
		}

		// IV smile: quadratic in distance from ATM, with a put-side tilt.
		dist := (strike - spot) / spot
		iv := baseIV * (1 + 1.8*dist*dist)
		putIV := iv * (1 + math.Max(0, -dist)*0.4)
		callIV := iv

		// OI humps near the money.
		oiScale := math.Exp(-dist * dist * 40)
		callOI := int64(500 + 50_000*oiScale*rng.Float64())
		putOI := int64(500 + 55_000*oiScale*rng.Float64())

		chain.Strikes = append(chain.Strikes, models.OptionStrike{
			Strike: strike,
			Call:   mockContract(spot, strike, callIV, years, true, callOI, rng),
			Put:    mockContract(spot, strike, putIV, years, false, putOI, rng),
		})
	}

	return chain, nil
}

// mockContract prices a contract with intrinsic value plus a crude time
// value term. Not Black-Scholes, but shaped well enough for the dashboard.
func mockContract(spot, strike, iv, years float64, call bool, oi int64, rng *rand.Rand) *models.OptionContract {
	var intrinsic float64
	if call {
		intrinsic = math.Max(0, spot-strike)
	} else {
		intrinsic = math.Max(0, strike-spot)
	}

	dist := math.Abs(spot-strike) / spot
	timeValue := spot * (iv / 100) * math.Sqrt(years) * 0.4 * math.Exp(-dist*6)
	last := intrinsic + timeValue
	if last < 0.01 {
		last = 0.01
	}

	moneyness := (spot - strike) / spot
	delta := 0.5 + moneyness*4
	delta = math.Max(0.02, math.Min(0.98, delta))
	if !call {
		delta = delta - 1
	}

	return &models.OptionContract{
		Last:   round2(last),
		OI:     oi,
		Volume: oi / (2 + rng.Int63n(8)),
		IV:     round2(iv),
		Greeks: models.Greeks{
			Delta: round2(delta),
			Gamma: round2(0.05 * math.Exp(-dist*8)),
			Theta: round2(-timeValue / math.Max(1, years*365)),
			Vega:  round2(spot * math.Sqrt(years) * 0.01 * math.Exp(-dist*4)),
		},
	}
}

var mockHeadlines = []string{
	"%s beats quarterly earnings estimates on strong demand",
	"%s announces expanded share buyback program",
	"Analysts upgrade %s citing margin growth",
	"%s misses revenue targets as costs rise",
	"%s faces regulatory probe over disclosure practices",
	"%s unveils new product line at annual event",
	"Institutional investors raise stakes in %s",
	"%s warns of weak guidance for next quarter",
	"%s announces dividend increase",
	"Short interest in %s falls to yearly low",
}

func (m *MockProvider) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if limit <= 0 || limit > len(mockHeadlines) {
		limit = 5
	}

	rng := m.rng(symbol, 0xFEED)
	perm := rng.Perm(len(mockHeadlines))

	items := make([]models.NewsItem, 0, limit)
	for i := 0; i < limit; i++ {
		items = append(items, models.NewsItem{
			Symbol:      symbol,
			Headline:    fmt.Sprintf(mockHeadlines[perm[i]], symbol),
			Source:      "MockWire",
			PublishedAt: m.now().Add(-time.Duration(i+1) * 3 * time.Hour),
		})
	}
	return items, nil
}

// nextMonthlyExpiry returns the third Friday of the current or next month.
func nextMonthlyExpiry(now time.Time) time.Time {
	for m := 0; ; m++ {
		first := time.Date(now.Year(), now.Month()+time.Month(m), 1, 16, 0, 0, 0, now.Location())
		offset := (int(time.Friday) - int(first.Weekday()) + 7) % 7
		third := first.AddDate(0, 0, offset+14)
		if third.After(now) {
			return third
		}
	}
}

func roundStrike(v float64) float64 {
	switch {
	case v >= 10:
		return math.Round(v/5) * 5
	case v >= 1:
		return math.Round(v)
	default:
		return 0.5
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
