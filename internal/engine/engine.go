// Package engine advances the simulation one week at a time. A tick runs a
// fixed phase sequence over the in-memory world: expire stale orders, run
// every autonomous company's decisions, settle wholesale deliveries, clear
// consumer demand, run the HR pass, advance development, apply decay and
// fixed costs, banking, the bankruptcy sweep, reporting and the stock
// market, then roll the week forward.
package engine

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/capability"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/decision"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/market"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// ErrGameOver is returned by AdvanceTick once the player company has failed.
var ErrGameOver = errors.New("engine: run is over")

// Simulation holds the per-run stochastic machinery. All world state lives
// in the World passed to each tick.
type Simulation struct {
	rng   *entropy.Source
	macro *entropy.MacroIndex
}

// New creates a simulation for a run seed. The same seed replays the same
// run against the same starting world.
func New(seed int64) *Simulation {
	return &Simulation{
		rng:   entropy.NewSource(seed),
		macro: entropy.NewMacroIndex(seed),
	}
}

// AdvanceTick runs one full week over the world. It returns an error only
// for integrity faults (dangling references) or a finished run; business
// outcomes like bankruptcies are recorded in the world, not returned.
func (s *Simulation) AdvanceTick(w *state.World) error {
	if w.GameOver {
		return ErrGameOver
	}
	week := w.Week
	slog.Debug("tick start", "week", week, "economic_index", w.EconomicIndex)

	s.refreshAggregates(w)

	for _, o := range market.ExpireStale(w.Orders, week) {
		w.AddNews(o.BuyerID, state.NewsWarning,
			"order #%d expired without a response", o.ID)
	}

	caps := s.capabilities(w)
	ctx := &decision.Context{World: w, Caps: caps, RNG: s.rng}
	for _, co := range w.ActiveCompanies() {
		if co.Autonomous() {
			decision.New(ctx, co).Run()
		}
	}

	// Facilities and pricing may have moved; clearing works on fresh figures.
	caps = s.capabilities(w)
	if err := s.settleWholesale(w); err != nil {
		return err
	}
	if err := s.clearConsumer(w, caps); err != nil {
		return err
	}

	s.resolveOffers(w)
	caps = s.capabilities(w)
	s.runHR(w, caps)
	s.advanceDevelopment(w, caps)
	s.decayConcepts(w)
	s.processAging(w)
	s.decayBrands(w, caps)
	s.chargeRent(w)
	s.runBanking(w)
	s.sweepBankruptcies(w)

	s.closeQuarter(w)
	s.publishReports(w, caps)
	s.stepMarket(w)
	s.snapshotStats(w)

	w.Week++
	w.EconomicIndex = s.macro.At(w.Week)
	slog.Debug("tick end", "week", week, "companies", len(w.ActiveCompanies()))
	return nil
}

// refreshAggregates recomputes the trailing views from whatever transaction
// and ledger history the world carries. The store loads the last quarter of
// history, which covers every window used here.
func (s *Simulation) refreshAggregates(w *state.World) {
	week := w.Week
	w.B2BSales4w = make(map[int64]map[int64]int)
	w.MarketB2B4w = 0
	w.PrevB2CSales = make(map[int64]int)
	w.TxCount4w = make(map[int64]int)
	w.Profit4w = make(map[int64]int64)
	w.QuarterRev = make(map[int64]int64)
	w.QuarterExp = make(map[int64]int64)

	for _, t := range w.Transactions {
		if t.Week < week-4 {
			continue
		}
		w.TxCount4w[t.SellerID]++
		if t.BuyerID != 0 {
			w.TxCount4w[t.BuyerID]++
		}
		switch t.Kind {
		case market.TxB2B:
			m := w.B2BSales4w[t.SellerID]
			if m == nil {
				m = make(map[int64]int)
				w.B2BSales4w[t.SellerID] = m
			}
			m[t.DesignID] += t.Quantity
			w.MarketB2B4w += t.Quantity
		case market.TxB2C:
			if t.Week == week-1 {
				w.PrevB2CSales[t.DesignID] += t.Quantity
			}
		}
	}

	for _, e := range w.Entries {
		if e.Week >= week-4 {
			if e.Category == finance.CatRevenue {
				w.Profit4w[e.CompanyID] += e.Amount
			} else if operatingExpense(e.Category) {
				w.Profit4w[e.CompanyID] -= e.Amount
			}
		}
		if e.Week > week-balance.QuarterWeeks {
			if e.Category == finance.CatRevenue {
				w.QuarterRev[e.CompanyID] += e.Amount
			} else if operatingExpense(e.Category) {
				w.QuarterExp[e.CompanyID] += e.Amount
			}
		}
	}
}

// operatingExpense filters the ledger categories that count against profit.
// Material and stock purchases become cost of goods when the goods sell;
// capital movements never hit the result.
func operatingExpense(cat string) bool {
	switch cat {
	case finance.CatCOGS, finance.CatInterest, finance.CatAd:
		return true
	}
	return strings.HasPrefix(cat, "labor") || strings.HasPrefix(cat, "rent")
}

// capabilities evaluates every active simulated company against its current
// workload.
func (s *Simulation) capabilities(w *state.World) map[int64]capability.Figures {
	out := make(map[int64]capability.Figures)
	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		out[co.ID] = capability.Evaluate(
			w.StaffOf(co.ID), w.FacilitiesOf(co.ID), workloadFor(w, co), s.rng)
	}
	return out
}

// Capabilities evaluates every simulated company without the stability
// draw. Read-only callers use this to inspect a world between ticks.
func Capabilities(w *state.World) map[int64]capability.Figures {
	out := make(map[int64]capability.Figures)
	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		out[co.ID] = capability.Evaluate(
			w.StaffOf(co.ID), w.FacilitiesOf(co.ID), workloadFor(w, co), nil)
	}
	return out
}

func workloadFor(w *state.World, co *company.Company) capability.Workload {
	wl := capability.Workload{
		TrailingTx:     w.TxCount4w[co.ID],
		BrandAwareness: co.BrandPower,
	}
	for _, d := range w.DesignsOf(co.ID) {
		if d.Status == product.StatusDeveloping {
			wl.OpenProjects++
		}
		wl.BrandAwareness += d.Awareness
	}
	for _, st := range w.StocksOf(co.ID) {
		wl.StockedUnits += st.Quantity
	}
	return wl
}

// snapshotStats fills the per-company weekly row from the tick's ledger and
// closing balances.
func (s *Simulation) snapshotStats(w *state.World) {
	type flow struct{ revenue, expenses, labor, facility int64 }
	flows := make(map[int64]*flow)
	for _, e := range w.Entries {
		if e.Week != w.Week {
			continue
		}
		f := flows[e.CompanyID]
		if f == nil {
			f = &flow{}
			flows[e.CompanyID] = f
		}
		switch {
		case e.Category == finance.CatRevenue:
			f.revenue += e.Amount
		case e.Category != finance.CatCOGS:
			// COGS is a book expense, not a cash outflow.
			f.expenses += e.Amount
		}
		if strings.HasPrefix(e.Category, "labor") {
			f.labor += e.Amount
		}
		if strings.HasPrefix(e.Category, "rent") || e.Category == finance.CatFacilityPurchase {
			f.facility += e.Amount
		}
	}

	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		st := w.StatFor(co.ID)
		st.Cash = co.Cash
		st.LoanBalance = w.TotalDebt(co.ID)
		st.Phase = co.Phase
		for _, line := range w.StocksOf(co.ID) {
			st.Inventory += line.Quantity
		}
		for _, f := range w.FacilitiesOf(co.ID) {
			st.FacilitySize += f.Size
		}
		if f := flows[co.ID]; f != nil {
			st.Revenue = f.revenue
			st.Expenses = f.expenses
			st.LaborCosts = f.labor
			st.FacilityCosts = f.facility
		}
	}
}
