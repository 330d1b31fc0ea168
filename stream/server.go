package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanjaymgicganja8597-maker/Nifty-money/advisor"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/analytics"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/ledger"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/market"
	"github.com/sanjaymgicganja8597-maker/Nifty-money/sim"
)

// Server exposes the simulator over HTTP: a websocket tick stream, JSON reads
// for market and portfolio state, and Prometheus metrics. All mutation still
// goes through the engine; the server only reads.
type Server struct {
	engine  *sim.Engine
	hub     *Hub
	advisor *advisor.Client
	log     *slog.Logger
	reg     *prometheus.Registry
}

func NewServer(engine *sim.Engine, hub *Hub, adv *advisor.Client, reg *prometheus.Registry, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{engine: engine, hub: hub, advisor: adv, log: log, reg: reg}
}

// Tick is the websocket broadcast payload.
type Tick struct {
	Time        time.Time             `json:"time"`
	Instruments []instrumentJSON      `json:"instruments"`
	Positions   []positionJSON        `json:"positions"`
	Capital     float64               `json:"capital"`
	Portfolio   ledger.PortfolioStats `json:"portfolio"`
}

type instrumentJSON struct {
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Kind          string  `json:"kind"`
	Sector        string  `json:"sector,omitempty"`
	Trend         string  `json:"trend"`
}

type orderJSON struct {
	ID          string    `json:"id"`
	Symbol      string    `json:"symbol"`
	Side        string    `json:"side"`
	Product     string    `json:"product"`
	Kind        string    `json:"kind"`
	Quantity    int64     `json:"quantity"`
	Price       float64   `json:"price"`
	Status      string    `json:"status"`
	Time        time.Time `json:"time"`
	RealizedPnL *float64  `json:"realizedPnl,omitempty"`
}

type positionJSON struct {
	Symbol   string   `json:"symbol"`
	Product  string   `json:"product"`
	Side     string   `json:"side"`
	Quantity int64    `json:"quantity"`
	AvgPrice float64  `json:"avgPrice"`
	Target   *float64 `json:"target,omitempty"`
	StopLoss *float64 `json:"stoploss,omitempty"`
}

// Snapshot builds the current broadcast payload. The run loop calls this
// after every tick and hands it to the hub.
func (s *Server) Snapshot() Tick {
	positions := s.engine.Positions()
	out := make([]positionJSON, 0, len(positions))
	for _, p := range positions {
		out = append(out, positionJSON{
			Symbol:   p.Symbol,
			Product:  string(p.Product),
			Side:     string(p.Side),
			Quantity: p.Quantity,
			AvgPrice: p.AvgPrice,
			Target:   p.Target,
			StopLoss: p.StopLoss,
		})
	}
	return Tick{
		Time:        time.Now(),
		Instruments: toInstrumentJSON(s.engine.Feed().Snapshot()),
		Positions:   out,
		Capital:     s.engine.Capital(),
		Portfolio:   s.engine.Stats(),
	}
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /ws", func(w http.ResponseWriter, r *http.Request) {
		ServeWS(s.hub, w, r)
	})
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	if s.reg != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(s.reg, promhttp.HandlerOpts{}))
	}

	mux.HandleFunc("GET /api/market", s.handleMarket)
	mux.HandleFunc("GET /api/market/gainers", s.handleGainers)
	mux.HandleFunc("GET /api/market/losers", s.handleLosers)
	mux.HandleFunc("GET /api/portfolio", s.handlePortfolio)
	mux.HandleFunc("GET /api/orders", s.handleOrders)
	mux.HandleFunc("GET /api/analytics", s.handleAnalytics)
	mux.HandleFunc("GET /api/advisor", s.handleAdvisor)

	return mux
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	if q.Has("query") || q.Has("kind") || q.Has("sector") {
		found := s.engine.Feed().Search(q.Get("query"), market.Kind(q.Get("kind")), q.Get("sector"))
		s.writeJSON(w, toInstrumentJSON(found))
		return
	}
	s.writeJSON(w, toInstrumentJSON(s.engine.Feed().Snapshot()))
}

func (s *Server) handleGainers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, toInstrumentJSON(s.engine.Feed().Gainers()))
}

func (s *Server) handleLosers(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, toInstrumentJSON(s.engine.Feed().Losers()))
}

func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	positions := s.engine.Positions()
	out := struct {
		Stats     ledger.PortfolioStats `json:"stats"`
		Capital   float64               `json:"capital"`
		Positions []positionJSON        `json:"positions"`
	}{
		Stats:     s.engine.Stats(),
		Capital:   s.engine.Capital(),
		Positions: make([]positionJSON, 0, len(positions)),
	}
	for _, p := range positions {
		out.Positions = append(out.Positions, positionJSON{
			Symbol:   p.Symbol,
			Product:  string(p.Product),
			Side:     string(p.Side),
			Quantity: p.Quantity,
			AvgPrice: p.AvgPrice,
			Target:   p.Target,
			StopLoss: p.StopLoss,
		})
	}
	s.writeJSON(w, out)
}

func (s *Server) handleOrders(w http.ResponseWriter, r *http.Request) {
	orders := s.engine.Registry().Orders()
	out := make([]orderJSON, 0, len(orders))
	for _, o := range orders {
		out = append(out, orderJSON{
			ID:          o.ID,
			Symbol:      o.Symbol,
			Side:        string(o.Side),
			Product:     string(o.Product),
			Kind:        string(o.Kind),
			Quantity:    o.Quantity,
			Price:       o.Price,
			Status:      string(o.Status),
			Time:        o.Time,
			RealizedPnL: o.RealizedPnL,
		})
	}
	s.writeJSON(w, out)
}

// handleAnalytics reports performance over the session's closed trades.
func (s *Server) handleAnalytics(w http.ResponseWriter, r *http.Request) {
	period := analytics.Period(strings.ToUpper(r.URL.Query().Get("period")))
	switch period {
	case analytics.Weekly, analytics.Monthly:
	default:
		period = analytics.Daily
	}
	s.writeJSON(w, analytics.Analyze(s.engine.Registry().Closed(), period))
}

// handleAdvisor serves AI commentary. The call happens on the request
// goroutine with its own deadline; the engine is never blocked on it.
func (s *Server) handleAdvisor(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	in, ok := s.engine.Feed().Get(symbol)
	if !ok {
		http.Error(w, "unknown symbol", http.StatusNotFound)
		return
	}
	if s.advisor == nil {
		s.writeJSON(w, map[string]string{"commentary": advisor.MsgNoAPIKey})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()
	commentary := s.advisor.Analyze(ctx, in, s.engine.Positions())
	s.writeJSON(w, map[string]string{"commentary": commentary})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("write response", slog.String("err", err.Error()))
	}
}

func toInstrumentJSON(ins []market.Instrument) []instrumentJSON {
	out := make([]instrumentJSON, 0, len(ins))
	for _, in := range ins {
		out = append(out, instrumentJSON{
			Symbol:        in.Symbol,
			Name:          in.Name,
			Price:         in.Price,
			Change:        in.Change,
			ChangePercent: in.ChangePercent,
			Kind:          string(in.Kind),
			Sector:        in.Sector,
			Trend:         string(in.Trend()),
		})
	}
	return out
}
