// Package models provides domain models shared across the service.
package models

import "time"

// DataSource identifies where a piece of market data came from.
type DataSource string

const (
	SourceLive DataSource = "live"
	SourceMock DataSource = "mock"
)

// Timeframe represents a bar aggregation interval.
type Timeframe string

const (
	TimeframeMinute  Timeframe = "1m"
	Timeframe5Minute Timeframe = "5m"
	TimeframeHour    Timeframe = "1h"
	TimeframeDay     Timeframe = "1d"
)

// Bar represents one OHLCV sample.
type Bar struct {
	Timestamp time.Time `json:"timestamp"`
	Open      float64   `json:"open"`
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Close     float64   `json:"close"`
	Volume    int64     `json:"volume"`
}

// Quote represents a point-in-time market quote.
type Quote struct {
	Symbol        string     `json:"symbol"`
	Last          float64    `json:"last"`
	Open          float64    `json:"open"`
	High          float64    `json:"high"`
	Low           float64    `json:"low"`
	PrevClose     float64    `json:"prev_close"`
	Volume        int64      `json:"volume"`
	Change        float64    `json:"change"`
	ChangePercent float64    `json:"change_percent"`
	Timestamp     time.Time  `json:"timestamp"`
	Source        DataSource `json:"source"`
}

// Tick is a streaming quote update pushed to dashboard clients.
type Tick struct {
	Symbol    string    `json:"symbol"`
	Last      float64   `json:"last"`
	PrevClose float64   `json:"prev_close"`
	Bid       float64   `json:"bid"`
	Ask       float64   `json:"ask"`
	Volume    int64     `json:"volume"`
	Timestamp time.Time `json:"timestamp"`
}

// NewsItem is a single headline attributed to a symbol.
type NewsItem struct {
	Symbol      string    `json:"symbol"`
	Headline    string    `json:"headline"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
}
