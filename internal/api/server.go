// Package api serves the world over HTTP. GET endpoints are read-only
// queries against the store; POST /api/v1/tick advances the simulation one
// week.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/engine"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/persistence"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// Server owns the HTTP surface for one run.
type Server struct {
	db  *persistence.DB
	sim *engine.Simulation
	log *slog.Logger
	mux *chi.Mux

	// Ticks are serialized; concurrent POSTs queue up rather than race.
	tickMu sync.Mutex
}

// New wires the router. The simulation carries the run's RNG streams, so
// there must be exactly one per process.
func New(db *persistence.DB, sim *engine.Simulation, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		db:  db,
		sim: sim,
		log: logger,
		mux: chi.NewRouter(),
	}
	s.routes()
	return s
}

// Handler returns the root handler for http.Server.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) routes() {
	r := s.mux
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/tick", s.handleTick)
		r.Get("/companies", s.handleCompanies)
		r.Get("/company/{id}/capabilities", s.handleCapabilities)
		r.Get("/company/{id}/report", s.handleReport)
		r.Get("/company/{id}/stock", s.handleStockHistory)
		r.Get("/news", s.handleNews)
	})
}

func (s *Server) handleState(w http.ResponseWriter, _ *http.Request) {
	world, err := s.db.LoadWorld()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":         world.RunID,
		"week":           world.Week,
		"economic_index": world.EconomicIndex,
		"game_over":      world.GameOver,
		"companies":      len(world.ActiveCompanies()),
		"people":         len(world.People),
	})
}

func (s *Server) handleTick(w http.ResponseWriter, _ *http.Request) {
	s.tickMu.Lock()
	defer s.tickMu.Unlock()

	var week int
	err := s.db.Mutate(func(world *state.World) error {
		if err := s.sim.AdvanceTick(world); err != nil {
			return err
		}
		week = world.Week
		return nil
	})
	if errors.Is(err, engine.ErrGameOver) {
		writeError(w, http.StatusConflict, "run is over")
		return
	}
	if err != nil {
		s.log.Error("tick failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"week": week})
}

type companySummary struct {
	ID         int64           `json:"id"`
	Name       string          `json:"name"`
	Type       company.Type    `json:"type"`
	Cash       int64           `json:"cash"`
	BrandPower float64         `json:"brand_power"`
	Phase      company.Phase   `json:"phase"`
	Listing    company.Listing `json:"listing"`
	StockPrice int64           `json:"stock_price"`
	Shares     int64           `json:"shares"`
	Active     bool            `json:"active"`
}

func (s *Server) handleCompanies(w http.ResponseWriter, _ *http.Request) {
	world, err := s.db.LoadWorld()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	out := make([]companySummary, 0, len(world.Companies))
	for _, c := range world.Companies {
		out = append(out, companySummary{
			ID: c.ID, Name: c.Name, Type: c.Type, Cash: c.Cash,
			BrandPower: c.BrandPower, Phase: c.Phase, Listing: c.Listing,
			StockPrice: c.StockPrice, Shares: c.Shares, Active: c.Active,
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"companies": out})
}

func (s *Server) handleCapabilities(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	world, err := s.db.LoadWorld()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if world.CompanyByID(id) == nil {
		writeError(w, http.StatusNotFound, "no such company")
		return
	}
	figures, ok := engine.Capabilities(world)[id]
	if !ok {
		writeError(w, http.StatusNotFound, "company is not simulated")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"skill":       figures.Skill,
		"capacity":    figures.Capacity,
		"sufficiency": figures.Sufficiency,
		"throughput":  figures.Throughput,
		"stability":   figures.Stability,
		"facilities":  figures.Facilities,
	})
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "quarterly"
	}
	index := 0
	if v := r.URL.Query().Get("index"); v != "" {
		index, err = strconv.Atoi(v)
		if err != nil || index < 0 {
			writeError(w, http.StatusBadRequest, "index must be a non-negative integer")
			return
		}
	}

	switch period {
	case "weekly":
		stats, err := s.db.StatsForCompany(id, 0)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		stat, ok := fromEnd(stats, index)
		if !ok {
			writeError(w, http.StatusNotFound, "no weekly data at that index")
			return
		}
		writeJSON(w, http.StatusOK, stat)

	case "quarterly":
		reports, err := s.db.ReportsForCompany(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		report, ok := fromEnd(reports, index)
		if !ok {
			writeError(w, http.StatusNotFound, "no quarterly report at that index")
			return
		}
		writeJSON(w, http.StatusOK, report)

	case "yearly":
		reports, err := s.db.ReportsForCompany(id)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		years := annualize(reports)
		year, ok := fromEnd(years, index)
		if !ok {
			writeError(w, http.StatusNotFound, "no yearly data at that index")
			return
		}
		writeJSON(w, http.StatusOK, year)

	default:
		writeError(w, http.StatusBadRequest, "period must be weekly, quarterly or yearly")
	}
}

func (s *Server) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	id, err := companyID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ticks, err := s.db.StockHistory(id, balance.WeeksPerYear)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ticks": ticks})
}

func (s *Server) handleNews(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 500 {
			writeError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	var news []*state.News
	var err error
	if v := r.URL.Query().Get("company"); v != "" {
		id, perr := strconv.ParseInt(v, 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "company must be an integer")
			return
		}
		news, err = s.db.NewsForCompany(id, limit)
	} else {
		news, err = s.db.RecentNews(limit)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"news": news})
}

// yearSummary aggregates four quarters of reports.
type yearSummary struct {
	Year     int   `json:"year"`
	Quarters int   `json:"quarters"`
	Revenue  int64 `json:"revenue"`
	Expenses int64 `json:"expenses"`
	Profit   int64 `json:"profit"`
}

func annualize(reports []*finance.Report) []yearSummary {
	byYear := make(map[int]*yearSummary)
	var order []int
	for _, r := range reports {
		year := (r.Quarter-1)/balance.QuartersPerYear + 1
		y := byYear[year]
		if y == nil {
			y = &yearSummary{Year: year}
			byYear[year] = y
			order = append(order, year)
		}
		y.Quarters++
		y.Revenue += r.Revenue
		y.Expenses += r.Expenses
		y.Profit += r.Profit
	}
	out := make([]yearSummary, 0, len(order))
	for _, year := range order {
		out = append(out, *byYear[year])
	}
	return out
}

// fromEnd indexes a slice from its last element: 0 is the most recent.
func fromEnd[T any](s []T, index int) (T, bool) {
	var zero T
	if index >= len(s) {
		return zero, false
	}
	return s[len(s)-1-index], true
}

func companyID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, errors.New("company id must be an integer")
	}
	return id, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": strings.TrimSpace(message)})
}
