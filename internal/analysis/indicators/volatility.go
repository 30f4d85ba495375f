package indicators

import (
	"fmt"
	"math"

	"stockdeck/internal/models"
)

// ATR calculates the Average True Range.
type ATR struct {
	period int
}

// NewATR creates a new ATR indicator.
func NewATR(period int) *ATR {
	return &ATR{period: period}
}

func (a *ATR) Name() string {
	return fmt.Sprintf("ATR_%d", a.period)
}

func (a *ATR) Period() int {
	return a.period
}

func (a *ATR) Calculate(bars []models.Bar) ([]float64, error) {
	if a.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < a.period+1 {
		return nil, ErrInsufficientData
	}

	n := len(bars)
	tr := make([]float64, n)
	tr[0] = bars[0].High - bars[0].Low
	for i := 1; i < n; i++ {
		tr[i] = trueRange(bars[i], bars[i-1])
	}

	out := make([]float64, n)
	out[a.period-1] = mean(tr[:a.period])
	for i := a.period; i < n; i++ {
		out[i] = (out[i-1]*float64(a.period-1) + tr[i]) / float64(a.period)
	}

	return out, nil
}

// BollingerBands calculates Bollinger Bands around an SMA.
type BollingerBands struct {
	period int
	width  float64 // standard deviation multiplier
}

// NewBollingerBands creates a new Bollinger Bands indicator.
func NewBollingerBands(period int, width float64) *BollingerBands {
	return &BollingerBands{period: period, width: width}
}

func (b *BollingerBands) Name() string {
	return fmt.Sprintf("BollingerBands_%d_%.1f", b.period, b.width)
}

func (b *BollingerBands) Period() int {
	return b.period
}

func (b *BollingerBands) Calculate(bars []models.Bar) (map[string][]float64, error) {
	if b.period <= 0 || b.width <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < b.period {
		return nil, ErrInsufficientData
	}

	n := len(bars)
	cl := closes(bars)

	middle := make([]float64, n)
	upper := make([]float64, n)
	lower := make([]float64, n)
	percentB := make([]float64, n)

	for i := b.period - 1; i < n; i++ {
		window := cl[i-b.period+1 : i+1]
		m := mean(window)
		sd := stdDev(window)

		middle[i] = m
		upper[i] = m + b.width*sd
		lower[i] = m - b.width*sd

		if span := upper[i] - lower[i]; span != 0 {
			percentB[i] = (cl[i] - lower[i]) / span
		}
	}

	return map[string][]float64{
		"middle":    middle,
		"upper":     upper,
		"lower":     lower,
		"percent_b": percentB,
	}, nil
}

// HistoricalVolatility calculates annualized historical volatility as a
// percentage: rolling standard deviation of log returns scaled by the
// square root of the trading-day count.
type HistoricalVolatility struct {
	period      int
	tradingDays int
}

// NewHistoricalVolatility creates a new Historical Volatility indicator.
// tradingDays is the annualization basis, conventionally 252.
func NewHistoricalVolatility(period, tradingDays int) *HistoricalVolatility {
	return &HistoricalVolatility{period: period, tradingDays: tradingDays}
}

func (h *HistoricalVolatility) Name() string {
	return fmt.Sprintf("HV_%d", h.period)
}

func (h *HistoricalVolatility) Period() int {
	return h.period
}

func (h *HistoricalVolatility) Calculate(bars []models.Bar) ([]float64, error) {
	if h.period <= 0 || h.tradingDays <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < h.period+1 {
		return nil, ErrInsufficientData
	}

	n := len(bars)
	cl := closes(bars)

	logReturns := make([]float64, n)
	for i := 1; i < n; i++ {
		if cl[i-1] > 0 && cl[i] > 0 {
			logReturns[i] = math.Log(cl[i] / cl[i-1])
		}
	}

	out := make([]float64, n)
	annualize := math.Sqrt(float64(h.tradingDays))
	for i := h.period; i < n; i++ {
		sd := stdDev(logReturns[i-h.period+1 : i+1])
		out[i] = sd * annualize * 100
	}

	return out, nil
}
