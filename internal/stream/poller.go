package stream

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"stockdeck/internal/logging"
	"stockdeck/internal/models"
	"stockdeck/internal/provider"
)

// Poller fetches quotes for the tracked symbols on an interval and turns
// them into ticks on the hub. It is the service's stand-in for a streaming
// feed; symbols get tracked when a WebSocket client subscribes or an alert
// is created.
type Poller struct {
	provider provider.Provider
	hub      *Hub
	interval time.Duration
	logger   zerolog.Logger

	mu      sync.RWMutex
	symbols map[string]int // symbol -> refcount
}

// NewPoller creates a poller publishing to hub.
func NewPoller(p provider.Provider, hub *Hub, interval time.Duration, logger zerolog.Logger) *Poller {
	if interval <= 0 {
		interval = 3 * time.Second
	}
	return &Poller{
		provider: p,
		hub:      hub,
		interval: interval,
		logger:   logging.WithComponent(logger, "poller"),
		symbols:  make(map[string]int),
	}
}

// Track adds a symbol to the poll set. Each Track call must be balanced by
// an Untrack call.
func (p *Poller) Track(symbol string) {
	p.mu.Lock()
	p.symbols[symbol]++
	p.mu.Unlock()
}

// Untrack drops one reference to a symbol, removing it from the poll set
// when no references remain.
func (p *Poller) Untrack(symbol string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n, ok := p.symbols[symbol]; ok {
		if n <= 1 {
			delete(p.symbols, symbol)
		} else {
			p.symbols[symbol] = n - 1
		}
	}
}

// Tracked returns the symbols currently being polled.
func (p *Poller) Tracked() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]string, 0, len(p.symbols))
	for s := range p.symbols {
		out = append(out, s)
	}
	return out
}

// Run polls until the context is cancelled.
func (p *Poller) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.poll(ctx)
		}
	}
}

func (p *Poller) poll(ctx context.Context) {
	for _, symbol := range p.Tracked() {
		quote, err := p.provider.GetQuote(ctx, symbol)
		if err != nil {
			p.logger.Warn().Err(err).Str("symbol", symbol).Msg("Poll failed")
			continue
		}
		p.hub.Publish(models.Tick{
			Symbol:    quote.Symbol,
			Last:      quote.Last,
			PrevClose: quote.PrevClose,
			Volume:    quote.Volume,
			Timestamp: quote.Timestamp,
		})
	}
}
