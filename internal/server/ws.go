package server

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"stockdeck/internal/metrics"
	"stockdeck/internal/provider"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = 50 * time.Second
)

// handleWS streams ticks for one symbol to a WebSocket client. The symbol
// comes from the query string; subscribing starts the poller for it.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	symbol, err := provider.NormalizeSymbol(r.URL.Query().Get("symbol"))
	if err != nil {
		writeError(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("WebSocket upgrade failed")
		return
	}

	metrics.WSClients.Inc()
	defer metrics.WSClients.Dec()

	ticks := s.hub.Subscribe(symbol)
	s.poller.Track(symbol)
	defer func() {
		s.poller.Untrack(symbol)
		s.hub.Unsubscribe(symbol, ticks)
		conn.Close()
	}()

	s.logger.Info().Str("symbol", symbol).Str("remote", r.RemoteAddr).Msg("WebSocket client connected")

	// Reader goroutine: drain control frames and detect close.
	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	pinger := time.NewTicker(wsPingPeriod)
	defer pinger.Stop()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case tick, ok := <-ticks:
			if !ok {
				return
			}
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(tick); err != nil {
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(s.cfg.AllowedOrigins) == 0 {
		return true
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}
