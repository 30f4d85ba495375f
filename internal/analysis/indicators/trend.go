package indicators

import (
	"fmt"
	"math"

	"stockdeck/internal/models"
)

// ADX calculates the Average Directional Index with +DI and -DI.
type ADX struct {
	period int
}

// NewADX creates a new ADX indicator.
func NewADX(period int) *ADX {
	return &ADX{period: period}
}

func (a *ADX) Name() string {
	return fmt.Sprintf("ADX_%d", a.period)
}

// Period returns twice the configured period: one window to seed the DI
// smoothing, another to seed the DX smoothing.
func (a *ADX) Period() int {
	return a.period * 2
}

func (a *ADX) Calculate(bars []models.Bar) (map[string][]float64, error) {
	if a.period <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < a.Period() {
		return nil, ErrInsufficientData
	}

	n := len(bars)
	plusDM := make([]float64, n)
	minusDM := make([]float64, n)
	tr := make([]float64, n)

	for i := 1; i < n; i++ {
		up := bars[i].High - bars[i-1].High
		down := bars[i-1].Low - bars[i].Low

		if up > down && up > 0 {
			plusDM[i] = up
		}
		if down > up && down > 0 {
			minusDM[i] = down
		}
		tr[i] = trueRange(bars[i], bars[i-1])
	}

	smPlusDM := wilderSmooth(plusDM, a.period)
	smMinusDM := wilderSmooth(minusDM, a.period)
	smTR := wilderSmooth(tr, a.period)

	plusDI := make([]float64, n)
	minusDI := make([]float64, n)
	dx := make([]float64, n)

	for i := a.period; i < n; i++ {
		if smTR[i] != 0 {
			plusDI[i] = 100 * smPlusDM[i] / smTR[i]
			minusDI[i] = 100 * smMinusDM[i] / smTR[i]
		}
		if diSum := plusDI[i] + minusDI[i]; diSum != 0 {
			dx[i] = 100 * math.Abs(plusDI[i]-minusDI[i]) / diSum
		}
	}

	adxTail := wilderSmooth(dx[a.period:], a.period)
	adx := make([]float64, n)
	for i := range adxTail {
		adx[a.period+i] = adxTail[i]
	}

	return map[string][]float64{
		"adx":      adx,
		"plus_di":  plusDI,
		"minus_di": minusDI,
	}, nil
}

// MACD calculates Moving Average Convergence Divergence.
type MACD struct {
	fast   int
	slow   int
	signal int
}

// NewMACD creates a new MACD indicator. Conventional periods are (12, 26, 9).
func NewMACD(fast, slow, signal int) *MACD {
	return &MACD{fast: fast, slow: slow, signal: signal}
}

func (m *MACD) Name() string {
	return fmt.Sprintf("MACD_%d_%d_%d", m.fast, m.slow, m.signal)
}

func (m *MACD) Period() int {
	return m.slow + m.signal - 1
}

func (m *MACD) Calculate(bars []models.Bar) (map[string][]float64, error) {
	if m.fast <= 0 || m.slow <= 0 || m.signal <= 0 {
		return nil, ErrInvalidPeriod
	}
	if len(bars) < m.Period() {
		return nil, ErrInsufficientData
	}

	n := len(bars)
	cl := closes(bars)
	fastEMA := EMASeries(cl, m.fast)
	slowEMA := EMASeries(cl, m.slow)

	macdLine := make([]float64, n)
	for i := m.slow - 1; i < n; i++ {
		macdLine[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine := make([]float64, n)
	start := m.slow - 1
	sigEMA := EMASeries(macdLine[start:], m.signal)
	for i := range sigEMA {
		signalLine[start+i] = sigEMA[i]
	}

	histogram := make([]float64, n)
	for i := m.Period() - 1; i < n; i++ {
		histogram[i] = macdLine[i] - signalLine[i]
	}

	return map[string][]float64{
		"macd":      macdLine,
		"signal":    signalLine,
		"histogram": histogram,
	}, nil
}
