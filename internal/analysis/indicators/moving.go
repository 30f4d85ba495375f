package indicators

import (
	"fmt"

	"stockdeck/internal/models"
)

// SMA calculates the Simple Moving Average of closes.
type SMA struct {
	period int
}

// NewSMA creates a new SMA indicator.
func NewSMA(period int) *SMA {
	return &SMA{period: period}
}

func (s *SMA) Name() string {
	return fmt.Sprintf("SMA_%d", s.period)
}

func (s *SMA) Period() int {
	return s.period
}

func (s *SMA) Calculate(bars []models.Bar) ([]float64, error) {
	if s.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < s.period {
		return nil, ErrInsufficientData
	}

	cl := closes(bars)
	out := make([]float64, len(bars))

	// Rolling sum instead of re-averaging each window.
	window := sum(cl[:s.period])
	out[s.period-1] = window / float64(s.period)
	for i := s.period; i < len(cl); i++ {
		window += cl[i] - cl[i-s.period]
		out[i] = window / float64(s.period)
	}

	return out, nil
}

// EMA calculates the Exponential Moving Average of closes.
type EMA struct {
	period int
}

// NewEMA creates a new EMA indicator.
func NewEMA(period int) *EMA {
	return &EMA{period: period}
}

func (e *EMA) Name() string {
	return fmt.Sprintf("EMA_%d", e.period)
}

func (e *EMA) Period() int {
	return e.period
}

func (e *EMA) Calculate(bars []models.Bar) ([]float64, error) {
	if e.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < e.period {
		return nil, ErrInsufficientData
	}
	return EMASeries(closes(bars), e.period), nil
}

// EMASeries calculates an EMA over raw values. The first value is seeded
// with an SMA. Returns nil when there is not enough data.
func EMASeries(values []float64, period int) []float64 {
	if period <= 0 || len(values) < period {
		return nil
	}

	out := make([]float64, len(values))
	k := 2.0 / float64(period+1)

	out[period-1] = mean(values[:period])
	for i := period; i < len(values); i++ {
		out[i] = (values[i]-out[i-1])*k + out[i-1]
	}

	return out
}
