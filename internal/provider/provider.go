// Package provider supplies market data to the rest of the service. The
// only hard dependency the dashboard has on the outside world lives here;
// everything downstream consumes the Provider interface.
package provider

import (
	"context"
	"strings"
	"time"

	"stockdeck/internal/errors"
	"stockdeck/internal/models"
)

// BarsRequest describes a historical bars query.
type BarsRequest struct {
	Symbol    string
	Timeframe models.Timeframe
	Limit     int
	From      time.Time
	To        time.Time
}

// Provider is the market data source interface.
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	GetQuote(ctx context.Context, symbol string) (*models.Quote, error)
	GetBars(ctx context.Context, req BarsRequest) ([]models.Bar, error)
	GetOptionChain(ctx context.Context, symbol string, expiry time.Time) (*models.OptionChain, error)
	GetNews(ctx context.Context, symbol string, limit int) ([]models.NewsItem, error)
}

// NormalizeSymbol validates and canonicalizes a ticker symbol.
func NormalizeSymbol(symbol string) (string, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if s == "" {
		return "", errors.NewValidationError("symbol", symbol, "must not be empty")
	}
	if len(s) > 20 {
		return "", errors.NewValidationError("symbol", symbol, "too long")
	}
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') && r != '.' && r != '-' && r != ':' && r != '&' {
			return "", errors.NewValidationError("symbol", symbol, "contains invalid characters")
		}
	}
	return s, nil
}

// defaultBarSpan returns the default look-back window for a timeframe when
// the request does not carry explicit bounds.
func defaultBarSpan(tf models.Timeframe) time.Duration {
	switch tf {
	case models.TimeframeMinute:
		return 6 * time.Hour
	case models.Timeframe5Minute:
		return 2 * 24 * time.Hour
	case models.TimeframeHour:
		return 30 * 24 * time.Hour
	default:
		return 365 * 24 * time.Hour
	}
}

// barInterval returns the duration of one bar for a timeframe.
func barInterval(tf models.Timeframe) time.Duration {
	switch tf {
	case models.TimeframeMinute:
		return time.Minute
	case models.Timeframe5Minute:
		return 5 * time.Minute
	case models.TimeframeHour:
		return time.Hour
	default:
		return 24 * time.Hour
	}
}
