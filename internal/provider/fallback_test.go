package provider

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stockdeck/internal/errors"
	"stockdeck/internal/models"
)

// stubProvider counts calls and fails on demand.
type stubProvider struct {
	fail  bool
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	s.calls++
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if s.fail {
		return nil, errors.NewProviderError("stub", "quote", symbol, errors.ErrProviderUnavailable)
	}
	return &models.Quote{Symbol: symbol, Last: 123.45, Source: models.SourceLive}, nil
}

func (s *stubProvider) GetBars(ctx context.Context, req BarsRequest) ([]models.Bar, error) {
	s.calls++
	if s.fail {
		return nil, errors.NewProviderError("stub", "bars", req.Symbol, errors.ErrProviderUnavailable)
	}
	return []models.Bar{{Close: 123.45}}, nil
}

func (s *stubProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	s.calls++
	return nil, errors.NewProviderError("stub", "option_chain", symbol, errors.ErrUnsupported)
}

func (s *stubProvider) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	s.calls++
	return nil, errors.NewProviderError("stub", "news", symbol, errors.ErrUnsupported)
}

func newTestFallback(primary Provider) *FallbackProvider {
	return NewFallbackProvider(primary, NewMockProvider(42).WithClock(fixedClock()), FallbackConfig{
		Timeout:         time.Second,
		RetryAttempts:   1,
		BreakerFailures: 3,
		BreakerCooldown: time.Minute,
	}, zerolog.Nop())
}

func TestFallbackServesLiveWhenHealthy(t *testing.T) {
	stub := &stubProvider{}
	f := newTestFallback(stub)

	q, err := f.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if q.Source != models.SourceLive {
		t.Errorf("Source = %q, want live", q.Source)
	}
	if q.Last != 123.45 {
		t.Errorf("Last = %v, want the live value", q.Last)
	}
}

func TestFallbackDegradesToMock(t *testing.T) {
	stub := &stubProvider{fail: true}
	f := newTestFallback(stub)

	q, err := f.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("fallback should serve mock data, got %v", err)
	}
	if q.Source != models.SourceMock {
		t.Errorf("Source = %q, want mock", q.Source)
	}
}

func TestFallbackBreakerOpensAndSkipsLive(t *testing.T) {
	stub := &stubProvider{fail: true}
	f := newTestFallback(stub)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.GetQuote(ctx, "AAPL"); err != nil {
			t.Fatal(err)
		}
	}
	if f.Live() {
		t.Fatal("breaker should be open after repeated failures")
	}

	before := stub.calls
	if _, err := f.GetQuote(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	if stub.calls != before {
		t.Error("open breaker still called the live provider")
	}
}

func TestFallbackBreakerRecovers(t *testing.T) {
	stub := &stubProvider{fail: true}
	f := NewFallbackProvider(stub, NewMockProvider(42).WithClock(fixedClock()), FallbackConfig{
		Timeout:         time.Second,
		RetryAttempts:   1,
		BreakerFailures: 1,
		BreakerCooldown: 10 * time.Millisecond,
	}, zerolog.Nop())
	ctx := context.Background()

	if _, err := f.GetQuote(ctx, "AAPL"); err != nil {
		t.Fatal(err)
	}
	if f.Live() {
		t.Fatal("breaker should be open")
	}

	stub.fail = false
	time.Sleep(20 * time.Millisecond)

	q, err := f.GetQuote(ctx, "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if q.Source != models.SourceLive {
		t.Errorf("Source = %q after recovery, want live", q.Source)
	}
	if !f.Live() {
		t.Error("breaker should close after a successful probe")
	}
}

func TestFallbackUnsupportedOpGoesToMock(t *testing.T) {
	stub := &stubProvider{}
	f := newTestFallback(stub)

	chain, err := f.GetOptionChain(context.Background(), "AAPL", time.Time{})
	if err != nil {
		t.Fatal(err)
	}
	if chain.Source != models.SourceMock {
		t.Errorf("chain source = %q, want mock", chain.Source)
	}
	// Unsupported ops must not trip the breaker.
	if !f.Live() {
		t.Error("breaker opened on an unsupported op")
	}
}

func TestFallbackValidationErrorDoesNotFallBack(t *testing.T) {
	stub := &stubProvider{}
	f := newTestFallback(stub)

	if _, err := f.GetQuote(context.Background(), "not a symbol!"); err == nil {
		t.Error("expected validation error to surface")
	}
}

func TestFallbackClientCancellationDoesNotTripBreaker(t *testing.T) {
	stub := &stubProvider{}
	f := NewFallbackProvider(stub, NewMockProvider(42).WithClock(fixedClock()), FallbackConfig{
		Timeout:         time.Second,
		RetryAttempts:   1,
		BreakerFailures: 1,
		BreakerCooldown: time.Minute,
	}, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 3; i++ {
		if _, err := f.GetQuote(ctx, "AAPL"); err == nil {
			t.Fatal("expected an error for a canceled caller")
		}
	}
	if !f.Live() {
		t.Fatal("breaker opened on client cancellations against a healthy provider")
	}

	// The provider itself was never the problem; the next live caller
	// gets live data.
	q, err := f.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatal(err)
	}
	if q.Source != models.SourceLive {
		t.Errorf("Source = %q after cancellations, want live", q.Source)
	}
}

func TestFallbackRetriesBeforeDegrading(t *testing.T) {
	stub := &stubProvider{fail: true}
	f := NewFallbackProvider(stub, NewMockProvider(42).WithClock(fixedClock()), FallbackConfig{
		Timeout:         time.Second,
		RetryAttempts:   3,
		BreakerFailures: 10,
		BreakerCooldown: time.Minute,
	}, zerolog.Nop())

	if _, err := f.GetQuote(context.Background(), "AAPL"); err != nil {
		t.Fatal(err)
	}
	if stub.calls != 3 {
		t.Errorf("live provider called %d times, want 3 attempts", stub.calls)
	}
}
