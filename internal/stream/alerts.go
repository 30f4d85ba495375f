package stream

import (
	"math"
	"sync"

	"github.com/rs/zerolog"

	"stockdeck/internal/logging"
	"stockdeck/internal/metrics"
	"stockdeck/internal/models"
	"stockdeck/internal/store"
)

// AlertMonitor watches ticks for alert conditions. It implements the
// Consumer interface to receive ticks from the Hub; triggered alerts are
// marked in the store and surfaced through the OnTrigger callback.
type AlertMonitor struct {
	store  *store.Store
	logger zerolog.Logger

	mu     sync.RWMutex
	alerts map[string][]*models.Alert // symbol -> active alerts

	// Previous prices for cross-type conditions.
	prevMu     sync.RWMutex
	prevPrices map[string]float64

	onTrigger func(*models.Alert, models.Tick)
}

// NewAlertMonitor creates an alert monitor backed by the store.
func NewAlertMonitor(s *store.Store, logger zerolog.Logger) *AlertMonitor {
	return &AlertMonitor{
		store:      s,
		logger:     logging.WithComponent(logger, "alerts"),
		alerts:     make(map[string][]*models.Alert),
		prevPrices: make(map[string]float64),
	}
}

// SetOnTrigger registers a callback for triggered alerts.
func (m *AlertMonitor) SetOnTrigger(fn func(*models.Alert, models.Tick)) {
	m.onTrigger = fn
}

// Reload replaces the watched set with the store's active alerts.
func (m *AlertMonitor) Reload() {
	active := m.store.ActiveAlerts()

	m.mu.Lock()
	defer m.mu.Unlock()

	m.alerts = make(map[string][]*models.Alert)
	for _, a := range active {
		m.alerts[a.Symbol] = append(m.alerts[a.Symbol], a)
	}
}

// Add starts watching an alert.
func (m *AlertMonitor) Add(alert *models.Alert) {
	m.mu.Lock()
	m.alerts[alert.Symbol] = append(m.alerts[alert.Symbol], alert)
	m.mu.Unlock()
}

// Remove stops watching an alert by ID.
func (m *AlertMonitor) Remove(alertID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for symbol, alerts := range m.alerts {
		for i, a := range alerts {
			if a.ID == alertID {
				m.alerts[symbol] = append(alerts[:i], alerts[i+1:]...)
				if len(m.alerts[symbol]) == 0 {
					delete(m.alerts, symbol)
				}
				return
			}
		}
	}
}

// Count returns the number of watched alerts.
func (m *AlertMonitor) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	n := 0
	for _, alerts := range m.alerts {
		n += len(alerts)
	}
	return n
}

// OnTick implements Consumer.
func (m *AlertMonitor) OnTick(tick models.Tick) {
	m.Check(tick)
}

// Symbols implements Consumer.
func (m *AlertMonitor) Symbols() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	symbols := make([]string, 0, len(m.alerts))
	for symbol := range m.alerts {
		symbols = append(symbols, symbol)
	}
	return symbols
}

// Check evaluates all alerts for a tick's symbol.
func (m *AlertMonitor) Check(tick models.Tick) {
	m.mu.RLock()
	alerts := append([]*models.Alert(nil), m.alerts[tick.Symbol]...)
	m.mu.RUnlock()

	m.prevMu.RLock()
	prevPrice := m.prevPrices[tick.Symbol]
	m.prevMu.RUnlock()

	for _, alert := range alerts {
		if isTriggered(alert, tick, prevPrice) {
			m.trigger(alert, tick)
		}
	}

	m.prevMu.Lock()
	m.prevPrices[tick.Symbol] = tick.Last
	m.prevMu.Unlock()
}

func isTriggered(alert *models.Alert, tick models.Tick, prevPrice float64) bool {
	switch alert.Condition {
	case models.AlertAbove:
		return tick.Last >= alert.Price

	case models.AlertBelow:
		return tick.Last <= alert.Price

	case models.AlertPercentChange:
		if tick.PrevClose == 0 {
			return false
		}
		change := math.Abs((tick.Last - tick.PrevClose) / tick.PrevClose * 100)
		return change >= alert.Price

	case models.AlertCrossAbove:
		// Needs a previous price to detect the crossing.
		if prevPrice == 0 {
			return false
		}
		return prevPrice < alert.Price && tick.Last >= alert.Price

	case models.AlertCrossBelow:
		if prevPrice == 0 {
			return false
		}
		return prevPrice > alert.Price && tick.Last <= alert.Price

	default:
		return false
	}
}

func (m *AlertMonitor) trigger(alert *models.Alert, tick models.Tick) {
	// The store arbitrates: only the first trigger for an ID wins.
	triggered, ok := m.store.TriggerAlert(alert.ID)
	if !ok {
		m.Remove(alert.ID)
		return
	}

	metrics.AlertsTriggered.Inc()
	logging.LogAlert(m.logger, triggered, tick.Last)

	if m.onTrigger != nil {
		m.onTrigger(triggered, tick)
	}
	m.Remove(alert.ID)
}
