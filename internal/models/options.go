package models

import "time"

// OptionChain holds the full chain for one symbol and expiry.
type OptionChain struct {
	Symbol    string         `json:"symbol"`
	SpotPrice float64        `json:"spot_price"`
	Expiry    time.Time      `json:"expiry"`
	Strikes   []OptionStrike `json:"strikes"`
	Source    DataSource     `json:"source"`
}

// OptionStrike pairs the call and put contracts at one strike.
type OptionStrike struct {
	Strike float64         `json:"strike"`
	Call   *OptionContract `json:"call,omitempty"`
	Put    *OptionContract `json:"put,omitempty"`
}

// OptionContract is the quoted state of a single option contract.
type OptionContract struct {
	Last   float64 `json:"last"`
	OI     int64   `json:"oi"`
	Volume int64   `json:"volume"`
	IV     float64 `json:"iv"` // implied volatility as a percentage
	Greeks Greeks  `json:"greeks"`
}

// Greeks holds the option greeks for a contract.
type Greeks struct {
	Delta float64 `json:"delta"`
	Gamma float64 `json:"gamma"`
	Theta float64 `json:"theta"`
	Vega  float64 `json:"vega"`
}
