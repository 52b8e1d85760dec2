package engine

import (
	"github.com/dustin/go-humanize"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/capability"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// closeQuarter drafts the quarterly report for every company at the quarter
// boundary. The draft is the trailing quarter's ledger plus whatever the
// current tick has already booked.
func (s *Simulation) closeQuarter(w *state.World) {
	if w.Week%balance.QuarterWeeks != 0 {
		return
	}
	tickRev := make(map[int64]int64)
	tickExp := make(map[int64]int64)
	for _, e := range w.Entries {
		if e.Week != w.Week {
			continue
		}
		if e.Category == finance.CatRevenue {
			tickRev[e.CompanyID] += e.Amount
		} else if operatingExpense(e.Category) {
			tickExp[e.CompanyID] += e.Amount
		}
	}

	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		rev := w.QuarterRev[co.ID] + tickRev[co.ID]
		exp := w.QuarterExp[co.ID] + tickExp[co.ID]
		w.Reports = append(w.Reports, &finance.Report{
			ID:        w.NextID("report"),
			CompanyID: co.ID,
			Quarter:   w.Week / balance.QuarterWeeks,
			Status:    finance.ReportDraft,
			Revenue:   rev,
			Expenses:  exp,
			Profit:    rev - exp,
		})
	}
}

// publishReports gives every draft a publication attempt gated on the
// accounting department's coverage, and force-publishes anything that has
// sat in the drawer too long.
func (s *Simulation) publishReports(w *state.World, caps map[int64]capability.Figures) {
	for _, r := range w.Reports {
		if r.Status != finance.ReportDraft {
			continue
		}
		co := w.CompanyByID(r.CompanyID)
		if co == nil || !co.Active {
			r.Status = finance.ReportDelayed
			r.PublishedWeek = w.Week
			continue
		}
		if s.rng.Chance(caps[r.CompanyID].Sufficiency[company.DeptAccounting]) {
			r.Status = finance.ReportPublished
			if r.LateTicks > 0 {
				r.Status = finance.ReportDelayed
			}
			r.PublishedWeek = w.Week
			w.AddNews(r.CompanyID, state.NewsInfo,
				"Q%d results: ¥%s profit", r.Quarter, humanize.Comma(r.Profit))
			continue
		}
		r.LateTicks++
		if r.LateTicks >= balance.ReportMaxLateTicks {
			r.Status = finance.ReportDelayed
			r.PublishedWeek = w.Week
			w.AddNews(r.CompanyID, state.NewsWarning,
				"Q%d results published late", r.Quarter)
		}
	}
}

// stepMarket executes pending listings and marks every public company to
// market: a pull toward theoretical value slowed by overdue reports, then a
// split back into the normal price band when the price has run too high.
func (s *Simulation) stepMarket(w *state.World) {
	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		netAssets := co.Cash - w.TotalDebt(co.ID)
		theo := finance.TheoreticalValue(w.Profit4w[co.ID], netAssets, co.Shares)

		if co.Listing == company.ListingApplying {
			newShares := int64(float64(co.Shares) * balance.IPONewShareRatio)
			offer := int64(float64(theo) * balance.IPODiscount)
			if offer < 1 {
				offer = 1
			}
			proceeds := newShares * offer
			fee := int64(float64(proceeds) * balance.IPOFeeRate)
			co.Shares += newShares
			co.Listing = company.ListingPublic
			co.StockPrice = offer
			w.Credit(co, finance.CatIPOProceeds, proceeds-fee)
			w.AddNews(co.ID, state.NewsMarket, "%s listed at ¥%s per share",
				co.Name, humanize.Comma(offer))
			// The listing week opens the price history at the offer price.
			w.StockTicks = append(w.StockTicks, &finance.StockTick{
				ID:               w.NextID("stocktick"),
				Week:             w.Week,
				CompanyID:        co.ID,
				Price:            offer,
				TheoreticalValue: theo,
				MarketCap:        offer * co.Shares,
			})
			continue
		}
		if co.Listing != company.ListingPublic {
			continue
		}

		late := 0
		for _, r := range w.Reports {
			if r.CompanyID == co.ID && r.Status == finance.ReportDraft && r.LateTicks > late {
				late = r.LateTicks
			}
		}
		price := finance.NextPrice(co.StockPrice, theo, late, s.rng)
		if ratio := finance.SplitRatio(price); ratio > 1 {
			co.Shares *= ratio
			price /= ratio
			theo /= ratio
			w.AddNews(co.ID, state.NewsMarket,
				"%s announced a %d-for-1 stock split", co.Name, ratio)
		}
		co.StockPrice = price
		w.StockTicks = append(w.StockTicks, &finance.StockTick{
			ID:               w.NextID("stocktick"),
			Week:             w.Week,
			CompanyID:        co.ID,
			Price:            price,
			TheoreticalValue: theo,
			MarketCap:        price * co.Shares,
		})
	}
}
