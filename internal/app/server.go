package app

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"courtside/internal/domain"
	"courtside/internal/engine"
	"courtside/internal/infra"
	"courtside/internal/infra/ws"
	"courtside/internal/service"
)

// Server exposes the market over HTTP: JSON snapshots, trading, and the
// websocket stream.
type Server struct {
	httpServer *http.Server
	eng        *engine.Engine
	board      *service.MarketBoard
	portfolio  *service.Portfolio
	hub        *ws.Hub
}

// NewServer builds the mux and wires all routes.
func NewServer(addr string, eng *engine.Engine, board *service.MarketBoard, portfolio *service.Portfolio, hub *ws.Hub) *Server {
	s := &Server{
		eng:       eng,
		board:     board,
		portfolio: portfolio,
		hub:       hub,
	}

	mux := http.NewServeMux()
	mux.Handle("GET /ws", hub)
	mux.HandleFunc("GET /api/players", s.handlePlayers)
	mux.HandleFunc("GET /api/players/{id}", s.handlePlayer)
	mux.HandleFunc("GET /api/context", s.handleContext)
	mux.HandleFunc("GET /api/breakers", s.handleBreakers)
	mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/trades", s.handleTrades)
	mux.HandleFunc("POST /api/trades", s.handleNewTrade)
	mux.HandleFunc("GET /api/metrics", s.handleMetrics)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start runs the listener until ctx is canceled, then shuts down cleanly.
func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("HTTP server started", slog.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.hub.Close()
	return s.httpServer.Shutdown(shutdownCtx)
}

func (s *Server) handlePlayers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.board.List())
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	p, ok := s.board.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrPlayerNotFound)
		return
	}

	resp := struct {
		domain.PlayerStock
		Halted     bool    `json:"halted"`
		Multiplier float64 `json:"event_multiplier"`
	}{p, s.eng.IsHalted(id), s.eng.Multiplier(id)}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	pctx := s.board.Context()
	resp := struct {
		Class           string `json:"class"`
		IsGameTime      bool   `json:"is_game_time"`
		IsOffSeason     bool   `json:"is_off_season"`
		MarketOpen      bool   `json:"market_open"`
		VolatilityLevel string `json:"volatility_level"`
	}{
		Class:           pctx.Class.String(),
		IsGameTime:      pctx.IsGameTime,
		IsOffSeason:     pctx.IsOffSeason,
		MarketOpen:      pctx.MarketOpen,
		VolatilityLevel: pctx.VolatilityLevel.String(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleBreakers(w http.ResponseWriter, r *http.Request) {
	resp := struct {
		Active  []domain.CircuitBreakerRecord `json:"active"`
		History []domain.CircuitBreakerRecord `json:"history"`
	}{s.eng.ActiveBreakers(), s.eng.BreakerHistory()}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	summary, err := s.portfolio.Summarize()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.portfolio.Trades(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleNewTrade(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlayerID string  `json:"player_id"`
		Side     string  `json:"side"`
		Shares   float64 `json:"shares"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	var trade *domain.Trade
	var err error
	switch req.Side {
	case "BUY":
		trade, err = s.portfolio.Buy(req.PlayerID, req.Shares)
	case "SELL":
		trade, err = s.portfolio.Sell(req.PlayerID, req.Shares)
	default:
		writeError(w, http.StatusBadRequest, errors.New("side must be BUY or SELL"))
		return
	}

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrPlayerNotFound):
			writeError(w, http.StatusNotFound, err)
		case errors.Is(err, domain.ErrMarketHalted),
			errors.Is(err, domain.ErrInsufficientFunds),
			errors.Is(err, domain.ErrInsufficientShares):
			writeError(w, http.StatusConflict, err)
		default:
			writeError(w, http.StatusBadRequest, err)
		}
		return
	}

	writeJSON(w, http.StatusCreated, trade)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, infra.GlobalMetrics.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", slog.Any("error", err))
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
