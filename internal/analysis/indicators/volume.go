package indicators

import (
	"stockdeck/internal/models"
)

// VWAP calculates the Volume Weighted Average Price, cumulative over the
// supplied bars. Callers decide the session boundary by slicing their input.
type VWAP struct{}

// NewVWAP creates a new VWAP indicator.
func NewVWAP() *VWAP {
	return &VWAP{}
}

func (v *VWAP) Name() string {
	return "VWAP"
}

func (v *VWAP) Period() int {
	return 1
}

func (v *VWAP) Calculate(bars []models.Bar) ([]float64, error) {
	if len(bars) == 0 {
		return nil, ErrInsufficientData
	}

	out := make([]float64, len(bars))
	var cumPV, cumVol float64

	for i, b := range bars {
		cumPV += typicalPrice(b) * float64(b.Volume)
		cumVol += float64(b.Volume)
		if cumVol != 0 {
			out[i] = cumPV / cumVol
		}
	}

	return out, nil
}

// OBV calculates On-Balance Volume.
type OBV struct{}

// NewOBV creates a new OBV indicator.
func NewOBV() *OBV {
	return &OBV{}
}

func (o *OBV) Name() string {
	return "OBV"
}

func (o *OBV) Period() int {
	return 1
}

func (o *OBV) Calculate(bars []models.Bar) ([]float64, error) {
	if len(bars) == 0 {
		return nil, ErrInsufficientData
	}

	out := make([]float64, len(bars))
	out[0] = float64(bars[0].Volume)

	for i := 1; i < len(bars); i++ {
		switch {
		case bars[i].Close > bars[i-1].Close:
			out[i] = out[i-1] + float64(bars[i].Volume)
		case bars[i].Close < bars[i-1].Close:
			out[i] = out[i-1] - float64(bars[i].Volume)
		default:
			out[i] = out[i-1]
		}
	}

	return out, nil
}
