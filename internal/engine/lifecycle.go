package engine

import (
	"math"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/capability"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/seed"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// advanceDevelopment finishes projects whose development period has run.
// An overloaded development department stalls completion probabilistically,
// one roll per tick past due. The finished quality is the strategy baseline,
// moved by the department's strength, accumulated knowhow and luck.
func (s *Simulation) advanceDevelopment(w *state.World, caps map[int64]capability.Figures) {
	for _, d := range w.Designs {
		if d.Status != product.StatusDeveloping {
			continue
		}
		if w.Week-d.DevelopedWeek < balance.DevelopmentWeeks {
			continue
		}
		co := w.CompanyByID(d.CompanyID)
		if co == nil || !co.Active {
			d.Status = product.StatusObsolete
			continue
		}
		if s.rng.Chance(1 - caps[co.ID].Sufficiency[company.DeptDevelopment]) {
			continue
		}

		devPower := caps[co.ID].Skill[company.DeptDevelopment]
		if devPower == 0 {
			devPower = 20
		}
		strat, ok := balance.DevStrategies[d.Strategy]
		if !ok {
			strat = balance.DevStrategies["balanced"]
		}
		qualityBonus := (devPower - 40) / 100
		knowhowBonus := co.DevKnowhow * balance.DevKnowhowEffect

		concept := 3.0*strat.ConceptMod + qualityBonus + knowhowBonus + s.rng.Gauss(0, 0.3)
		d.ConceptScore = clamp(concept, balance.ConceptScoreMin, balance.ConceptScoreMax)
		eff := 1.0*strat.EfficiencyMod + qualityBonus*0.5 + s.rng.Gauss(0, 0.15)
		d.ProdEff = clamp(eff, balance.ProductionEffMin, balance.ProductionEffMax)

		// Launch pricing: the perceived value of the finished concept over
		// its material bill, and a list price to match.
		materialCost := d.UnitMaterialCost()
		d.BasePrice = int64(float64(materialCost) * (d.ConceptScore + 3) / 2)
		if d.BasePrice < 1 {
			d.BasePrice = 1
		}
		d.ListPrice = d.BasePrice
		d.Status = product.StatusCompleted

		co.DevKnowhow += balance.DevKnowhowGain
		w.AddNews(co.ID, state.NewsInfo, "development of %s is complete", d.Name)
	}
}

// decayConcepts lets every product on the market age toward the floor.
func (s *Simulation) decayConcepts(w *state.World) {
	for _, d := range w.Designs {
		if d.Status == product.StatusCompleted && d.ConceptScore > balance.ConceptScoreMin {
			d.ConceptScore *= balance.ConceptDecayRate
		}
	}
}

// decayBrands erodes brand power and product awareness weekly; a capable PR
// department slows the bleed and can stop it outright.
func (s *Simulation) decayBrands(w *state.World, caps map[int64]capability.Figures) {
	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		pr := caps[co.ID].Skill[company.DeptPR]
		brandDecay := math.Min(1, balance.BrandDecayBase+pr*balance.PRMitigation)
		awarenessDecay := math.Min(1, balance.AwarenessDecayBase+pr*balance.PRMitigation)
		co.BrandPower *= brandDecay
		for _, d := range w.DesignsOf(co.ID) {
			d.Awareness *= awarenessDecay
		}
	}
}

// chargeRent collects the week's rent on every leased unit.
func (s *Simulation) chargeRent(w *state.World) {
	for _, f := range w.Facilities {
		if f.CompanyID == nil || f.Owned {
			continue
		}
		if co := w.CompanyByID(*f.CompanyID); co != nil {
			w.Debit(co, finance.RentCategory(f.Type), f.Rent)
		}
	}
}

// runBanking charges the week's interest, refreshes every company's rating
// and borrowing ceiling, and rolls matured loans over at the rate the fresh
// rating commands. Principal is never amortized; debt only leaves the world
// through liquidation.
func (s *Simulation) runBanking(w *state.World) {
	for _, co := range w.ActiveCompanies() {
		loans := w.LoansOf(co.ID)
		var debt int64
		for _, l := range loans {
			w.Debit(co, finance.CatInterest, finance.WeeklyInterest(l.Amount, l.AnnualRate))
			debt += l.Amount
		}
		co.CreditRating = finance.CreditRating(co.Cash, debt)
		co.BorrowingLimit = finance.CreditLimit(co.CreditRating)
		for _, l := range loans {
			l.RemainingWeeks--
			if l.RemainingWeeks <= 0 {
				l.AnnualRate = finance.LoanRate(co.CreditRating)
				l.RemainingWeeks = balance.LoanTermWeeks
			}
		}
	}
}

// sweepBankruptcies fails every company that is out of cash and out of
// credit. The player's failure ends the run; an autonomous company is
// liquidated and replaced by a fresh one of the same archetype, founded by
// the strongest executive candidate on the market.
func (s *Simulation) sweepBankruptcies(w *state.World) {
	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier || co.Cash >= 0 {
			continue
		}
		if w.TotalDebt(co.ID) < co.BorrowingLimit {
			continue
		}

		if co.Type == company.TypePlayer {
			co.Active = false
			w.GameOver = true
			w.AddNews(co.ID, state.NewsError, "%s has gone bankrupt", co.Name)
			continue
		}

		w.AddNews(co.ID, state.NewsMarket, "%s has gone bankrupt", co.Name)
		for _, p := range w.StaffOf(co.ID) {
			p.CompanyID = nil
			p.Department = ""
			p.Role = ""
		}
		w.RemoveStocks(co.ID)
		w.RemoveDesigns(co.ID)
		w.RemoveLoans(co.ID)
		for _, f := range w.FacilitiesOf(co.ID) {
			f.CompanyID = nil
			f.Owned = false
		}
		co.Active = false

		successor := seed.NewCompany(w.NextID("company"), co.Type, s.rng)
		successor.Industry = co.Industry
		w.Companies = append(w.Companies, successor)

		var founder *company.Person
		for _, p := range w.LaborPool() {
			if founder == nil || p.Executive > founder.Executive {
				founder = p
			}
		}
		if founder != nil {
			founder.CompanyID = &successor.ID
			founder.Role = company.RoleCEO
			founder.Department = company.DeptHR
		}
		w.AddNews(successor.ID, state.NewsMarket, "%s has been founded", successor.Name)
	}
}
