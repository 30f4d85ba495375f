package stream

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"stockdeck/internal/models"
)

// Property: every subscriber with room in its buffer receives every tick
// published for its symbol.
func TestProperty_SubscribersReceivePublishedTicks(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "MSFT", "TSLA", "NVDA", "SPY"}

	properties.Property("fast subscribers receive all ticks", prop.ForAll(
		func(subscriberCount int, tickCount int, symbolIdx int, basePrice float64) bool {
			symbol := symbols[symbolIdx%len(symbols)]

			hub := NewHubWithConfig(HubConfig{
				BufferSize:           1000,
				SubscriberBufferSize: 100,
			})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			hub.Start(ctx)
			defer hub.Stop()

			channels := make([]<-chan models.Tick, subscriberCount)
			for i := range channels {
				channels[i] = hub.Subscribe(symbol)
			}

			received := make([]int64, subscriberCount)
			var wg sync.WaitGroup
			for i, ch := range channels {
				wg.Add(1)
				go func(idx int, ch <-chan models.Tick) {
					defer wg.Done()
					timeout := time.After(5 * time.Second)
					for {
						select {
						case _, ok := <-ch:
							if !ok {
								return
							}
							if atomic.AddInt64(&received[idx], 1) >= int64(tickCount) {
								return
							}
						case <-timeout:
							return
						}
					}
				}(i, ch)
			}

			for i := 0; i < tickCount; i++ {
				hub.Publish(models.Tick{
					Symbol:    symbol,
					Last:      basePrice + float64(i)*0.05,
					PrevClose: basePrice,
					Volume:    10000,
					Timestamp: time.Now(),
				})
			}
			wg.Wait()

			for i := range received {
				if atomic.LoadInt64(&received[i]) != int64(tickCount) {
					return false
				}
			}
			return true
		},
		gen.IntRange(1, 5),
		gen.IntRange(1, 20),
		gen.IntRange(0, 100),
		gen.Float64Range(100.0, 5000.0),
	))

	properties.TestingRun(t)
}

// Property: a subscriber that never reads its channel cannot stall delivery
// to the others.
func TestProperty_SlowSubscriberDoesNotBlockOthers(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	properties.Property("fast subscriber still receives ticks", prop.ForAll(
		func(basePrice float64) bool {
			hub := NewHubWithConfig(HubConfig{
				BufferSize:           100,
				SubscriberBufferSize: 5,
			})
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			hub.Start(ctx)
			defer hub.Stop()

			fastCh := hub.Subscribe("AAPL")
			_ = hub.Subscribe("AAPL") // never read; fills up and drops

			var fastReceived int64
			var wg sync.WaitGroup
			wg.Add(1)
			go func() {
				defer wg.Done()
				timeout := time.After(2 * time.Second)
				for {
					select {
					case _, ok := <-fastCh:
						if !ok {
							return
						}
						if atomic.AddInt64(&fastReceived, 1) >= 10 {
							return
						}
					case <-timeout:
						return
					}
				}
			}()

			for i := 0; i < 20; i++ {
				hub.Publish(models.Tick{
					Symbol:    "AAPL",
					Last:      basePrice + float64(i)*0.05,
					Timestamp: time.Now(),
				})
				time.Sleep(time.Millisecond)
			}
			wg.Wait()

			return atomic.LoadInt64(&fastReceived) > 0
		},
		gen.Float64Range(100.0, 5000.0),
	))

	properties.TestingRun(t)
}

// Property: a subscriber only ever sees ticks for its own symbol.
func TestProperty_SubscriberSeesOnlyItsSymbol(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 20
	parameters.Rng.Seed(time.Now().UnixNano())

	properties := gopter.NewProperties(parameters)

	symbols := []string{"AAPL", "MSFT", "TSLA", "NVDA", "SPY"}

	properties.Property("no cross-symbol delivery", prop.ForAll(
		func(subIdx, pubIdx int) bool {
			subscribed := symbols[subIdx%len(symbols)]
			published := symbols[pubIdx%len(symbols)]

			hub := NewHub()
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			hub.Start(ctx)
			defer hub.Stop()

			ch := hub.Subscribe(subscribed)

			hub.Publish(models.Tick{Symbol: published, Last: 1000, Timestamp: time.Now()})

			select {
			case tick := <-ch:
				return tick.Symbol == subscribed
			case <-time.After(200 * time.Millisecond):
				return subscribed != published
			}
		},
		gen.IntRange(0, 4),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	ch1 := hub.Subscribe("AAPL")
	ch2 := hub.Subscribe("AAPL")
	if got := hub.SubscriberCount("AAPL"); got != 2 {
		t.Fatalf("SubscriberCount = %d, want 2", got)
	}

	hub.Unsubscribe("AAPL", ch1)
	if got := hub.SubscriberCount("AAPL"); got != 1 {
		t.Fatalf("SubscriberCount after unsubscribe = %d, want 1", got)
	}

	// The unsubscribed channel is closed.
	if _, ok := <-ch1; ok {
		t.Error("unsubscribed channel not closed")
	}

	hub.Publish(models.Tick{Symbol: "AAPL", Last: 200, Timestamp: time.Now()})
	select {
	case tick := <-ch2:
		if tick.Last != 200 {
			t.Errorf("tick.Last = %v, want 200", tick.Last)
		}
	case <-time.After(time.Second):
		t.Error("remaining subscriber did not receive the tick")
	}
}

type captureConsumer struct {
	mu      sync.Mutex
	ticks   []models.Tick
	symbols []string
}

func (c *captureConsumer) OnTick(tick models.Tick) {
	c.mu.Lock()
	c.ticks = append(c.ticks, tick)
	c.mu.Unlock()
}

func (c *captureConsumer) Symbols() []string { return c.symbols }

func (c *captureConsumer) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.ticks)
}

func TestHubConsumerFiltering(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	all := &captureConsumer{}
	onlyAAPL := &captureConsumer{symbols: []string{"AAPL"}}
	hub.RegisterConsumer(all)
	hub.RegisterConsumer(onlyAAPL)

	hub.Publish(models.Tick{Symbol: "AAPL", Last: 200, Timestamp: time.Now()})
	hub.Publish(models.Tick{Symbol: "MSFT", Last: 400, Timestamp: time.Now()})

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if all.count() == 2 && onlyAAPL.count() == 1 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	if got := all.count(); got != 2 {
		t.Errorf("unfiltered consumer got %d ticks, want 2", got)
	}
	if got := onlyAAPL.count(); got != 1 {
		t.Errorf("filtered consumer got %d ticks, want 1", got)
	}
}

func TestHubMetricsCountDrops(t *testing.T) {
	hub := NewHubWithConfig(HubConfig{BufferSize: 100, SubscriberBufferSize: 2})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	hub.Start(ctx)
	defer hub.Stop()

	_ = hub.Subscribe("AAPL") // never read

	for i := 0; i < 10; i++ {
		hub.Publish(models.Tick{Symbol: "AAPL", Last: float64(100 + i), Timestamp: time.Now()})
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.Metrics().TicksReceived == 10 {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	m := hub.Metrics()
	if m.TicksReceived != 10 {
		t.Fatalf("TicksReceived = %d, want 10", m.TicksReceived)
	}
	if m.TicksBroadcast != 2 {
		t.Errorf("TicksBroadcast = %d, want 2 (buffer capacity)", m.TicksBroadcast)
	}
	if m.TicksDropped != 8 {
		t.Errorf("TicksDropped = %d, want 8", m.TicksDropped)
	}
}
