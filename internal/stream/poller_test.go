package stream

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"stockdeck/internal/provider"
)

func TestPollerRefcounting(t *testing.T) {
	p := NewPoller(provider.NewMockProvider(42), NewHub(), time.Second, zerolog.Nop())

	p.Track("AAPL")
	p.Track("AAPL")
	p.Track("MSFT")
	if got := len(p.Tracked()); got != 2 {
		t.Fatalf("Tracked = %d symbols, want 2", got)
	}

	p.Untrack("AAPL")
	if got := len(p.Tracked()); got != 2 {
		t.Fatal("symbol dropped while references remain")
	}

	p.Untrack("AAPL")
	p.Untrack("MSFT")
	if got := len(p.Tracked()); got != 0 {
		t.Fatalf("Tracked = %d symbols after untracking all, want 0", got)
	}

	// Untracking an unknown symbol is a no-op.
	p.Untrack("ZZZZ")
}

func TestPollerPublishesTicks(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	ch := hub.Subscribe("AAPL")

	p := NewPoller(provider.NewMockProvider(42), hub, 10*time.Millisecond, zerolog.Nop())
	p.Track("AAPL")
	go p.Run(ctx)

	select {
	case tick := <-ch:
		if tick.Symbol != "AAPL" {
			t.Errorf("tick.Symbol = %q, want AAPL", tick.Symbol)
		}
		if tick.Last <= 0 {
			t.Errorf("tick.Last = %v, want > 0", tick.Last)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no tick published for tracked symbol")
	}
}
