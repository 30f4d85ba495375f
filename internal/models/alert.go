package models

import "time"

// AlertCondition is the trigger rule attached to an alert.
type AlertCondition string

const (
	AlertAbove         AlertCondition = "above"
	AlertBelow         AlertCondition = "below"
	AlertPercentChange AlertCondition = "percent_change"
	AlertCrossAbove    AlertCondition = "cross_above"
	AlertCrossBelow    AlertCondition = "cross_below"
)

// Alert represents a price alert owned by the dashboard session.
// Alerts live only in memory; they do not survive a restart.
type Alert struct {
	ID          string         `json:"id"`
	Symbol      string         `json:"symbol"`
	Condition   AlertCondition `json:"condition"`
	Price       float64        `json:"price"`
	Triggered   bool           `json:"triggered"`
	CreatedAt   time.Time      `json:"created_at"`
	TriggeredAt *time.Time     `json:"triggered_at,omitempty"`
}

// Watchlist is a named list of symbols.
type Watchlist struct {
	Name    string   `json:"name"`
	Symbols []string `json:"symbols"`
}
