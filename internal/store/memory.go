// Package store keeps session state in memory. Watchlists, alerts, and the
// bar cache all reset on restart; nothing here touches disk.
package store

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"stockdeck/internal/errors"
	"stockdeck/internal/models"
)

// Store holds all mutable session state behind one lock. Contention is
// negligible at dashboard request rates.
type Store struct {
	mu         sync.RWMutex
	watchlists map[string]*models.Watchlist
	alerts     map[string]*models.Alert
	bars       map[barKey]barEntry
	barTTL     time.Duration
	now        func() time.Time
}

type barKey struct {
	symbol    string
	timeframe models.Timeframe
}

type barEntry struct {
	bars    []models.Bar
	fetched time.Time
}

// New creates an empty store. Cached bars are considered fresh for ttl;
// a zero ttl defaults to one minute.
func New(ttl time.Duration) *Store {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Store{
		watchlists: make(map[string]*models.Watchlist),
		alerts:     make(map[string]*models.Alert),
		bars:       make(map[barKey]barEntry),
		barTTL:     ttl,
		now:        time.Now,
	}
}

// WithClock overrides the store clock for tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// --- Watchlists ---

// CreateWatchlist creates a named watchlist. Names are case-insensitive.
func (s *Store) CreateWatchlist(name string, symbols []string) (*models.Watchlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", name, "must not be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, exists := s.watchlists[key]; exists {
		return nil, errors.NewValidationError("name", name, "watchlist already exists")
	}

	w := &models.Watchlist{Name: name, Symbols: dedupe(symbols)}
	s.watchlists[key] = w
	return cloneWatchlist(w), nil
}

// GetWatchlist returns a watchlist by name.
func (s *Store) GetWatchlist(name string) (*models.Watchlist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.watchlists[strings.ToLower(name)]
	if !ok {
		return nil, errors.ErrWatchlistNotFound
	}
	return cloneWatchlist(w), nil
}

// ListWatchlists returns all watchlists sorted by name.
func (s *Store) ListWatchlists() []*models.Watchlist {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Watchlist, 0, len(s.watchlists))
	for _, w := range s.watchlists {
		out = append(out, cloneWatchlist(w))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// AddSymbol adds a symbol to a watchlist, ignoring duplicates.
func (s *Store) AddSymbol(name, symbol string) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.watchlists[strings.ToLower(name)]
	if !ok {
		return nil, errors.ErrWatchlistNotFound
	}
	for _, existing := range w.Symbols {
		if existing == symbol {
			return cloneWatchlist(w), nil
		}
	}
	w.Symbols = append(w.Symbols, symbol)
	return cloneWatchlist(w), nil
}

// RemoveSymbol removes a symbol from a watchlist. Removing a symbol that
// is not present is a no-op.
func (s *Store) RemoveSymbol(name, symbol string) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.watchlists[strings.ToLower(name)]
	if !ok {
		return nil, errors.ErrWatchlistNotFound
	}
	for i, existing := range w.Symbols {
		if existing == symbol {
			w.Symbols = append(w.Symbols[:i], w.Symbols[i+1:]...)
			break
		}
	}
	return cloneWatchlist(w), nil
}

// DeleteWatchlist removes a watchlist entirely.
func (s *Store) DeleteWatchlist(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := s.watchlists[key]; !ok {
		return errors.ErrWatchlistNotFound
	}
	delete(s.watchlists, key)
	return nil
}

// --- Alerts ---

// CreateAlert registers a price alert and assigns it an ID.
func (s *Store) CreateAlert(symbol string, condition models.AlertCondition, price float64) (*models.Alert, error) {
	if price <= 0 {
		return nil, errors.NewValidationError("price", price, "must be positive")
	}
	switch condition {
	case models.AlertAbove, models.AlertBelow, models.AlertPercentChange,
		models.AlertCrossAbove, models.AlertCrossBelow:
	default:
		return nil, errors.NewValidationError("condition", condition, "unknown condition")
	}

	a := &models.Alert{
		ID:        uuid.NewString(),
		Symbol:    symbol,
		Condition: condition,
		Price:     price,
		CreatedAt: s.now(),
	}

	s.mu.Lock()
	s.alerts[a.ID] = a
	s.mu.Unlock()

	return cloneAlert(a), nil
}

// GetAlert returns an alert by ID.
func (s *Store) GetAlert(id string) (*models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.alerts[id]
	if !ok {
		return nil, errors.ErrAlertNotFound
	}
	return cloneAlert(a), nil
}

// ListAlerts returns all alerts sorted by creation time.
func (s *Store) ListAlerts() []*models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		out = append(out, cloneAlert(a))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// ActiveAlerts returns untriggered alerts, grouped for the monitor.
func (s *Store) ActiveAlerts() []*models.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Alert
	for _, a := range s.alerts {
		if !a.Triggered {
			out = append(out, cloneAlert(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// TriggerAlert marks an alert as fired. Triggering twice is a no-op so
// concurrent monitors cannot double-fire.
func (s *Store) TriggerAlert(id string) (*models.Alert, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.alerts[id]
	if !ok || a.Triggered {
		return nil, false
	}
	a.Triggered = true
	t := s.now()
	a.TriggeredAt = &t
	return cloneAlert(a), true
}

// DeleteAlert removes an alert.
func (s *Store) DeleteAlert(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.alerts[id]; !ok {
		return errors.ErrAlertNotFound
	}
	delete(s.alerts, id)
	return nil
}

// --- Bar cache ---

// CachedBars returns cached bars if they are still fresh.
func (s *Store) CachedBars(symbol string, tf models.Timeframe) ([]models.Bar, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.bars[barKey{symbol, tf}]
	if !ok || s.now().Sub(e.fetched) > s.barTTL {
		return nil, false
	}
	out := make([]models.Bar, len(e.bars))
	copy(out, e.bars)
	return out, true
}

// PutBars caches a bar series for a symbol and timeframe.
func (s *Store) PutBars(symbol string, tf models.Timeframe, bars []models.Bar) {
	cp := make([]models.Bar, len(bars))
	copy(cp, bars)

	s.mu.Lock()
	s.bars[barKey{symbol, tf}] = barEntry{bars: cp, fetched: s.now()}
	s.mu.Unlock()
}

func dedupe(symbols []string) []string {
	seen := make(map[string]struct{}, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, sym := range symbols {
		if _, ok := seen[sym]; ok {
			continue
		}
		seen[sym] = struct{}{}
		out = append(out, sym)
	}
	return out
}

func cloneWatchlist(w *models.Watchlist) *models.Watchlist {
	cp := *w
	cp.Symbols = append([]string(nil), w.Symbols...)
	return &cp
}

func cloneAlert(a *models.Alert) *models.Alert {
	cp := *a
	if a.TriggeredAt != nil {
		t := *a.TriggeredAt
		cp.TriggeredAt = &t
	}
	return &cp
}
