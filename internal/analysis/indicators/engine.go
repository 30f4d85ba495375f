package indicators

import (
	"context"
	"fmt"
	"sync"

	"stockdeck/internal/models"
)

// Engine computes registered indicators concurrently using a worker pool.
type Engine struct {
	workers     int
	indicators  map[string]Indicator
	multiIndics map[string]MultiValueIndicator
	mu          sync.RWMutex
}

// NewEngine creates an engine with the given number of workers.
func NewEngine(workers int) *Engine {
	if workers <= 0 {
		workers = 4
	}
	return &Engine{
		workers:     workers,
		indicators:  make(map[string]Indicator),
		multiIndics: make(map[string]MultiValueIndicator),
	}
}

// NewDefaultEngine creates an engine preloaded with the dashboard's
// standard indicator set.
func NewDefaultEngine(tradingDays int) *Engine {
	e := NewEngine(4)
	e.Register(NewRSI(14))
	e.Register(NewSMA(20))
	e.Register(NewSMA(50))
	e.Register(NewEMA(9))
	e.Register(NewEMA(21))
	e.Register(NewVWAP())
	e.Register(NewOBV())
	e.Register(NewATR(14))
	e.Register(NewROC(10))
	e.Register(NewHistoricalVolatility(20, tradingDays))
	e.RegisterMulti(NewADX(14))
	e.RegisterMulti(NewMACD(12, 26, 9))
	e.RegisterMulti(NewBollingerBands(20, 2.0))
	return e
}

// Register registers a single-series indicator.
func (e *Engine) Register(ind Indicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.indicators[ind.Name()] = ind
}

// RegisterMulti registers a multi-series indicator.
func (e *Engine) RegisterMulti(ind MultiValueIndicator) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.multiIndics[ind.Name()] = ind
}

// CalculateAll computes every registered indicator in parallel. Indicators
// that fail (typically for insufficient data) are omitted from the results.
func (e *Engine) CalculateAll(ctx context.Context, bars []models.Bar) (map[string][]float64, map[string]map[string][]float64, error) {
	e.mu.RLock()
	singles := make([]Indicator, 0, len(e.indicators))
	for _, ind := range e.indicators {
		singles = append(singles, ind)
	}
	multis := make([]MultiValueIndicator, 0, len(e.multiIndics))
	for _, ind := range e.multiIndics {
		multis = append(multis, ind)
	}
	e.mu.RUnlock()

	singleResults := make(map[string][]float64)
	multiResults := make(map[string]map[string][]float64)
	var mu sync.Mutex
	var wg sync.WaitGroup

	singleWork := make(chan Indicator, len(singles))
	multiWork := make(chan MultiValueIndicator, len(multis))

	for i := 0; i < e.workers; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for ind := range singleWork {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if values, err := ind.Calculate(bars); err == nil {
					mu.Lock()
					singleResults[ind.Name()] = values
					mu.Unlock()
				}
			}
		}()
		go func() {
			defer wg.Done()
			for ind := range multiWork {
				select {
				case <-ctx.Done():
					return
				default:
				}
				if values, err := ind.Calculate(bars); err == nil {
					mu.Lock()
					multiResults[ind.Name()] = values
					mu.Unlock()
				}
			}
		}()
	}

	for _, ind := range singles {
		singleWork <- ind
	}
	close(singleWork)
	for _, ind := range multis {
		multiWork <- ind
	}
	close(multiWork)

	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return singleResults, multiResults, nil
}

// Calculate computes a single registered indicator by name.
func (e *Engine) Calculate(ctx context.Context, name string, bars []models.Bar) ([]float64, error) {
	e.mu.RLock()
	ind, ok := e.indicators[name]
	e.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("indicator %s not found", name)
	}

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
		return ind.Calculate(bars)
	}
}

// Snapshot computes all indicators and returns only the latest value of
// each series, keyed by indicator (and sub-series for multi-value ones).
func (e *Engine) Snapshot(ctx context.Context, bars []models.Bar) (map[string]float64, error) {
	singles, multis, err := e.CalculateAll(ctx, bars)
	if err != nil {
		return nil, err
	}

	snap := make(map[string]float64, len(singles)+len(multis))
	for name, values := range singles {
		if len(values) > 0 {
			snap[name] = values[len(values)-1]
		}
	}
	for name, series := range multis {
		for sub, values := range series {
			if len(values) > 0 {
				snap[name+"."+sub] = values[len(values)-1]
			}
		}
	}
	return snap, nil
}

// Names returns the names of all registered indicators.
func (e *Engine) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	names := make([]string, 0, len(e.indicators)+len(e.multiIndics))
	for name := range e.indicators {
		names = append(names, name)
	}
	for name := range e.multiIndics {
		names = append(names, name)
	}
	return names
}
