package server

import (
	"net/http"
	"strconv"
	"time"

	"stockdeck/internal/analysis/options"
	"stockdeck/internal/analysis/sentiment"
	"stockdeck/internal/errors"
	"stockdeck/internal/metrics"
	"stockdeck/internal/models"
	"stockdeck/internal/provider"
	"stockdeck/internal/strategy"
)

// ideasBarCount is how much daily history the rule engine looks at.
const ideasBarCount = 260

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}

	quote, err := s.provider.GetQuote(r.Context(), symbol)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quote)
}

func (s *Server) handleBars(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	tf, err := parseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, err)
		return
	}
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		writeError(w, err)
		return
	}

	bars, err := s.bars(r, symbol, tf, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":    symbol,
		"timeframe": tf,
		"bars":      bars,
	})
}

func (s *Server) handleIndicators(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	tf, err := parseTimeframe(r.URL.Query().Get("timeframe"))
	if err != nil {
		writeError(w, err)
		return
	}

	bars, err := s.bars(r, symbol, tf, ideasBarCount)
	if err != nil {
		writeError(w, err)
		return
	}

	values, err := s.indicators.Snapshot(r.Context(), bars)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":    symbol,
		"timeframe": tf,
		"values":    values,
	})
}

func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}

	var expiry time.Time
	if raw := r.URL.Query().Get("expiry"); raw != "" {
		expiry, err = time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, errors.NewValidationError("expiry", raw, "must be YYYY-MM-DD"))
			return
		}
	}

	chain, err := s.provider.GetOptionChain(r.Context(), symbol, expiry)
	if err != nil {
		writeError(w, err)
		return
	}

	summary, err := options.Analyze(chain, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"summary": summary,
		"chain":   chain,
	})
}

func (s *Server) handleSentiment(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}

	news, err := s.provider.GetNews(r.Context(), symbol, 10)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sentiment.Score(symbol, news))
}

func (s *Server) handleIdeas(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.PathValue("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}
	ctx := r.Context()

	bars, err := s.bars(r, symbol, models.TimeframeDay, ideasBarCount)
	if err != nil {
		writeError(w, err)
		return
	}

	in := strategy.Inputs{Bars: bars, Now: time.Now()}

	// Chain and sentiment are optional inputs; skip them on failure rather
	// than failing the whole request.
	if chain, err := s.provider.GetOptionChain(ctx, symbol, time.Time{}); err == nil {
		in.Chain = chain
	}
	if news, err := s.provider.GetNews(ctx, symbol, 10); err == nil {
		sc := sentiment.Score(symbol, news)
		in.Sentiment = &sc
	}

	ideas, score, err := s.strategies.Generate(in)
	if err != nil {
		writeError(w, err)
		return
	}
	for _, idea := range ideas {
		metrics.Ideas.WithLabelValues(idea.Name).Inc()
	}
	ideas = s.advisor.Annotate(ctx, symbol, score, ideas)

	writeJSON(w, http.StatusOK, map[string]any{
		"symbol":    symbol,
		"score":     score,
		"sentiment": in.Sentiment,
		"ideas":     ideas,
	})
}

// bars fetches bars through the cache.
func (s *Server) bars(r *http.Request, symbol string, tf models.Timeframe, limit int) ([]models.Bar, error) {
	if cached, ok := s.store.CachedBars(symbol, tf); ok && len(cached) >= limit {
		if limit > 0 && len(cached) > limit {
			cached = cached[len(cached)-limit:]
		}
		return cached, nil
	}

	bars, err := s.provider.GetBars(r.Context(), provider.BarsRequest{
		Symbol:    symbol,
		Timeframe: tf,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}
	s.store.PutBars(symbol, tf, bars)
	return bars, nil
}

func parseTimeframe(raw string) (models.Timeframe, error) {
	switch raw {
	case "":
		return models.TimeframeDay, nil
	case string(models.TimeframeMinute):
		return models.TimeframeMinute, nil
	case string(models.Timeframe5Minute):
		return models.Timeframe5Minute, nil
	case string(models.TimeframeHour):
		return models.TimeframeHour, nil
	case string(models.TimeframeDay):
		return models.TimeframeDay, nil
	default:
		return "", errors.NewValidationError("timeframe", raw, "must be one of 1m, 5m, 1h, 1d")
	}
}

func parseLimit(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, errors.NewValidationError("limit", raw, "must be a non-negative integer")
	}
	return n, nil
}
