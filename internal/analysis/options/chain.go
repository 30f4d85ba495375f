// Package options provides pure analytics over an option chain snapshot.
package options

import (
	"math"
	"sort"
	"time"

	"stockdeck/internal/errors"
	"stockdeck/internal/models"
)

// Summary holds the chain analytics served to the dashboard.
type Summary struct {
	Symbol          string    `json:"symbol"`
	SpotPrice       float64   `json:"spot_price"`
	Expiry          time.Time `json:"expiry"`
	DTE             int       `json:"dte"`
	ATMStrike       float64   `json:"atm_strike"`
	ATMIV           float64   `json:"atm_iv"`
	PutCallRatioOI  float64   `json:"put_call_ratio_oi"`
	PutCallRatioVol float64   `json:"put_call_ratio_vol"`
	MaxPain         float64   `json:"max_pain"`
	ExpectedMove    float64   `json:"expected_move"`     // dollars, straddle approximation
	ExpectedMovePct float64   `json:"expected_move_pct"` // percent of spot
	IVSkew          float64   `json:"iv_skew"`           // OTM put IV minus OTM call IV
	TotalCallOI     int64     `json:"total_call_oi"`
	TotalPutOI      int64     `json:"total_put_oi"`
}

// Analyze computes the full chain summary.
func Analyze(chain *models.OptionChain, now time.Time) (*Summary, error) {
	if chain == nil || len(chain.Strikes) == 0 {
		return nil, errors.NewDataError("option_chain", symbolOf(chain), "empty option chain", errors.ErrDataNotFound)
	}

	s := &Summary{
		Symbol:    chain.Symbol,
		SpotPrice: chain.SpotPrice,
		Expiry:    chain.Expiry,
		DTE:       daysToExpiry(chain.Expiry, now),
	}

	var callOI, putOI, callVol, putVol int64
	for _, st := range chain.Strikes {
		if st.Call != nil {
			callOI += st.Call.OI
			callVol += st.Call.Volume
		}
		if st.Put != nil {
			putOI += st.Put.OI
			putVol += st.Put.Volume
		}
	}
	s.TotalCallOI = callOI
	s.TotalPutOI = putOI
	if callOI > 0 {
		s.PutCallRatioOI = float64(putOI) / float64(callOI)
	}
	if callVol > 0 {
		s.PutCallRatioVol = float64(putVol) / float64(callVol)
	}

	atm := ATMStrike(chain)
	s.ATMStrike = atm.Strike
	s.ATMIV = atmIV(atm)

	s.MaxPain = MaxPain(chain)

	s.ExpectedMove = ExpectedMove(chain, now)
	if chain.SpotPrice > 0 {
		s.ExpectedMovePct = 100 * s.ExpectedMove / chain.SpotPrice
	}

	s.IVSkew = IVSkew(chain)

	return s, nil
}

// ATMStrike returns the strike closest to spot.
func ATMStrike(chain *models.OptionChain) models.OptionStrike {
	best := chain.Strikes[0]
	bestDist := math.Abs(best.Strike - chain.SpotPrice)
	for _, st := range chain.Strikes[1:] {
		if d := math.Abs(st.Strike - chain.SpotPrice); d < bestDist {
			best, bestDist = st, d
		}
	}
	return best
}

func atmIV(st models.OptionStrike) float64 {
	switch {
	case st.Call != nil && st.Put != nil:
		return (st.Call.IV + st.Put.IV) / 2
	case st.Call != nil:
		return st.Call.IV
	case st.Put != nil:
		return st.Put.IV
	default:
		return 0
	}
}

// MaxPain returns the strike at which aggregate option writer payout is
// minimized if the underlying settled there at expiry.
func MaxPain(chain *models.OptionChain) float64 {
	strikes := make([]float64, 0, len(chain.Strikes))
	for _, st := range chain.Strikes {
		strikes = append(strikes, st.Strike)
	}
	sort.Float64s(strikes)

	var best float64
	bestPain := math.MaxFloat64

	for _, settle := range strikes {
		var pain float64
		for _, st := range chain.Strikes {
			if st.Call != nil && settle > st.Strike {
				pain += (settle - st.Strike) * float64(st.Call.OI)
			}
			if st.Put != nil && settle < st.Strike {
				pain += (st.Strike - settle) * float64(st.Put.OI)
			}
		}
		if pain < bestPain {
			bestPain = pain
			best = settle
		}
	}
	return best
}

// ExpectedMove approximates the market-implied move until expiry. It uses
// the ATM straddle premium when both legs are quoted, otherwise falls back
// to IV * spot * sqrt(T).
func ExpectedMove(chain *models.OptionChain, now time.Time) float64 {
	atm := ATMStrike(chain)

	if atm.Call != nil && atm.Put != nil && atm.Call.Last > 0 && atm.Put.Last > 0 {
		// Straddle premium, with the customary 85% haircut.
		return 0.85 * (atm.Call.Last + atm.Put.Last)
	}

	iv := atmIV(atm) / 100
	years := float64(daysToExpiry(chain.Expiry, now)) / 365.0
	if iv <= 0 || years <= 0 {
		return 0
	}
	return chain.SpotPrice * iv * math.Sqrt(years)
}

// IVSkew measures put-over-call IV richness using strikes roughly 5% away
// from spot on each side. A positive value means downside protection is bid.
func IVSkew(chain *models.OptionChain) float64 {
	putTarget := chain.SpotPrice * 0.95
	callTarget := chain.SpotPrice * 1.05

	putIV := ivNearest(chain, putTarget, false)
	callIV := ivNearest(chain, callTarget, true)
	if putIV == 0 || callIV == 0 {
		return 0
	}
	return putIV - callIV
}

func ivNearest(chain *models.OptionChain, target float64, call bool) float64 {
	var best float64
	bestDist := math.MaxFloat64
	for _, st := range chain.Strikes {
		var c *models.OptionContract
		if call {
			c = st.Call
		} else {
			c = st.Put
		}
		if c == nil || c.IV <= 0 {
			continue
		}
		if d := math.Abs(st.Strike - target); d < bestDist {
			bestDist = d
			best = c.IV
		}
	}
	return best
}

func daysToExpiry(expiry, now time.Time) int {
	d := int(math.Ceil(expiry.Sub(now).Hours() / 24))
	if d < 0 {
		return 0
	}
	return d
}

func symbolOf(chain *models.OptionChain) string {
	if chain == nil {
		return ""
	}
	return chain.Symbol
}
