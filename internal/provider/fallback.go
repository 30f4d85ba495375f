package provider

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"stockdeck/internal/errors"
	"stockdeck/internal/logging"
	"stockdeck/internal/metrics"
	"stockdeck/internal/models"
	"stockdeck/pkg/utils"
)

// FallbackProvider serves from a live provider and degrades to mock data
// when the live source fails. Live calls go through retry and a circuit
// breaker; once the breaker opens, requests skip the live provider
// entirely until the cooldown elapses. Responses carry their data source
// so the UI can mark degraded data.
type FallbackProvider struct {
	primary Provider
	mock    Provider
	breaker *breaker
	retry   utils.RetryConfig
	timeout time.Duration
	logger  zerolog.Logger
}

// FallbackConfig tunes the fallback behavior.
type FallbackConfig struct {
	Timeout         time.Duration
	RetryAttempts   int
	BreakerFailures int
	BreakerCooldown time.Duration
}

// NewFallbackProvider wraps primary with mock-data degradation.
func NewFallbackProvider(primary, mock Provider, cfg FallbackConfig, logger zerolog.Logger) *FallbackProvider {
	retry := utils.DefaultRetryConfig()
	if cfg.RetryAttempts > 0 {
		retry.MaxAttempts = cfg.RetryAttempts
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &FallbackProvider{
		primary: primary,
		mock:    mock,
		breaker: newBreaker(cfg.BreakerFailures, cfg.BreakerCooldown),
		retry:   retry,
		timeout: timeout,
		logger:  logging.WithComponent(logger, "provider"),
	}
}

func (f *FallbackProvider) Name() string {
	return f.primary.Name() + "+" + f.mock.Name()
}

// Live reports whether the live provider is currently being tried.
func (f *FallbackProvider) Live() bool {
	return f.breaker.State() != breakerOpen
}

// retryable reports whether an error is worth a second attempt against
// the live provider.
func retryable(err error) bool {
	if errors.Is(err, errors.ErrUnsupported) || errors.Is(err, errors.ErrSymbolNotFound) {
		return false
	}
	var verr *errors.ValidationError
	return !errors.As(err, &verr)
}

// fetch runs the live call with retry and breaker protection, falling back
// to the mock provider when the live source cannot serve.
func fetch[T any](ctx context.Context, f *FallbackProvider, op, symbol string,
	live func(context.Context) (T, error),
	mock func(context.Context) (T, error),
) (T, error) {
	var zero T

	if !f.breaker.allow() {
		metrics.Fallbacks.WithLabelValues(op).Inc()
		return mock(ctx)
	}

	var result T
	var permanent error
	start := time.Now()
	err := utils.Retry(ctx, f.retry, func() error {
		callCtx, cancel := context.WithTimeout(ctx, f.timeout)
		defer cancel()

		v, err := live(callCtx)
		if err == nil {
			result = v
			return nil
		}
		if !retryable(err) {
			permanent = err
			return nil
		}
		return err
	})
	if err == nil {
		err = permanent
	}
	logging.LogAPICall(f.logger, f.primary.Name(), op, time.Since(start), err)

	if err == nil {
		f.breaker.recordSuccess()
		metrics.ProviderRequests.WithLabelValues(f.primary.Name(), op, "ok").Inc()
		return result, nil
	}

	// A caller that went away is not a provider failure: don't count it
	// against the breaker and don't serve mock data to a dead request.
	if ctx.Err() != nil {
		return zero, err
	}

	f.breaker.recordFailure(err)
	metrics.ProviderRequests.WithLabelValues(f.primary.Name(), op, "error").Inc()

	// Bad input fails the same way against any provider.
	var verr *errors.ValidationError
	if errors.As(err, &verr) {
		return zero, err
	}

	metrics.Fallbacks.WithLabelValues(op).Inc()
	if !errors.Is(err, errors.ErrUnsupported) {
		logging.LogFallback(f.logger, op, symbol, err)
	}
	return mock(ctx)
}

func (f *FallbackProvider) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return fetch(ctx, f, "quote", symbol,
		func(ctx context.Context) (*models.Quote, error) { return f.primary.GetQuote(ctx, symbol) },
		func(ctx context.Context) (*models.Quote, error) { return f.mock.GetQuote(ctx, symbol) },
	)
}

func (f *FallbackProvider) GetBars(ctx context.Context, req BarsRequest) ([]models.Bar, error) {
	return fetch(ctx, f, "bars", req.Symbol,
		func(ctx context.Context) ([]models.Bar, error) { return f.primary.GetBars(ctx, req) },
		func(ctx context.Context) ([]models.Bar, error) { return f.mock.GetBars(ctx, req) },
	)
}

func (f *FallbackProvider) GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error) {
	return fetch(ctx, f, "option_chain", symbol,
		func(ctx context.Context) (*models.OptionChain, error) {
			return f.primary.GetOptionChain(ctx, symbol, expiry)
		},
		func(ctx context.Context) (*models.OptionChain, error) {
			return f.mock.GetOptionChain(ctx, symbol, expiry)
		},
	)
}

func (f *FallbackProvider) GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error) {
	return fetch(ctx, f, "news", symbol,
		func(ctx context.Context) ([]models.NewsItem, error) { return f.primary.GetNews(ctx, symbol, limit) },
		func(ctx context.Context) ([]models.NewsItem, error) { return f.mock.GetNews(ctx, symbol, limit) },
	)
}
