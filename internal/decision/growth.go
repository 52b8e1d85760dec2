package decision

import (
	"fmt"
	"sort"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// decideDevelopment starts a new design when the lineup is thin, or now and
// then just to refresh it. One project at a time; a crisis shelves R&D.
func (d *Decider) decideDevelopment() {
	if d.co.Type != company.TypeMaker || d.co.Phase == company.PhaseCrisis {
		return
	}
	w := d.ctx.World

	completed := 0
	for _, dd := range w.DesignsOf(d.co.ID) {
		switch dd.Status {
		case product.StatusDeveloping:
			return
		case product.StatusCompleted:
			completed++
		}
	}
	if completed >= 2 && !d.ctx.RNG.Chance(0.05) {
		return
	}

	parts := make(map[string]product.PartChoice, len(balance.AutomotiveParts))
	totalScore := 0.0
	for _, part := range balance.AutomotiveParts {
		var suppliers []*company.Company
		for _, c := range w.Companies {
			if c.Type == company.TypeSupplier && c.PartCategory == part.Key {
				suppliers = append(suppliers, c)
			}
		}
		if len(suppliers) == 0 {
			return
		}
		sup := suppliers[d.ctx.RNG.Intn(len(suppliers))]

		// Lot-to-lot variation on both quality and negotiated cost.
		score := sup.MaterialScore * d.ctx.RNG.Uniform(0.90, 1.10)
		cost := int64(float64(part.BaseCost) * sup.CostMultiplier * d.ctx.RNG.Uniform(0.90, 1.10))
		parts[part.Key] = product.PartChoice{SupplierID: sup.ID, Score: score, Cost: cost}
		totalScore += score
	}

	strategy := balance.StrategyKeys[d.ctx.RNG.Intn(len(balance.StrategyKeys))]
	dd := &product.Design{
		ID:            w.NextID("design"),
		CompanyID:     d.co.ID,
		Name:          fmt.Sprintf("%s Mk%d", d.co.Name, len(w.DesignsOf(d.co.ID))+1),
		MaterialScore: totalScore / float64(len(balance.AutomotiveParts)),
		Status:        product.StatusDeveloping,
		Strategy:      strategy,
		DevelopedWeek: w.Week,
		Parts:         parts,
	}
	w.Designs = append(w.Designs, dd)
	w.AddNews(d.co.ID, state.NewsInfo, "development of %s has begun", dd.Name)
}

// decideFacilities leases or buys space when departments outgrow it, and
// hands back leases after a sustained surplus.
func (d *Decider) decideFacilities() {
	w := d.ctx.World

	needs := map[company.FacilityType]int{}
	for _, p := range d.staff {
		if p.Role.Boardroom() {
			continue
		}
		needs[company.FacilityFor(p.Department)] += balance.PersonScale
	}

	have := map[company.FacilityType]int{}
	for _, f := range w.FacilitiesOf(d.co.ID) {
		have[f.Type] += f.Size
	}

	if d.co.Phase != company.PhaseCrisis {
		for _, ft := range company.FacilityTypes {
			if needs[ft] <= have[ft] {
				continue
			}
			d.acquireFacility(ft, needs[ft]-have[ft])
		}
	}

	d.maybeRelease(needs, have)
}

// acquireFacility takes the cheapest vacant unit covering the shortage,
// buying outright only when a deep cash cushion survives the purchase.
func (d *Decider) acquireFacility(ft company.FacilityType, shortage int) {
	w := d.ctx.World
	vacant := w.VacantFacilities(ft, shortage)
	if len(vacant) == 0 {
		return
	}
	sort.Slice(vacant, func(i, j int) bool { return vacant[i].Rent < vacant[j].Rent })
	unit := vacant[0]

	cid := d.co.ID
	price := unit.PurchasePrice()
	if d.co.Cash > price+100_000_000 && d.co.Phase != company.PhaseCrisis {
		unit.CompanyID = &cid
		unit.Owned = true
		w.Debit(d.co, finance.CatFacilityPurchase, price)
		w.AddNews(cid, state.NewsInfo, "purchased a %s (capacity %d)", unit.Type, unit.Size)
	} else {
		unit.CompanyID = &cid
		unit.Owned = false
		w.AddNews(cid, state.NewsInfo, "leased a %s (capacity %d)", unit.Type, unit.Size)
	}
}

// maybeRelease tracks capacity surplus and vacates a lease once the surplus
// has held long enough. Owned buildings stay on the books.
func (d *Decider) maybeRelease(needs, have map[company.FacilityType]int) {
	w := d.ctx.World

	var candidate *company.Facility
	for _, ft := range company.FacilityTypes {
		if have[ft] == 0 {
			continue
		}
		if float64(have[ft]) <= float64(needs[ft])*balance.FacilityReleasePct {
			continue
		}
		for _, f := range w.FacilitiesOf(d.co.ID) {
			if f.Type != ft || f.Owned {
				continue
			}
			if have[ft]-f.Size >= needs[ft] {
				candidate = f
				break
			}
		}
		if candidate != nil {
			break
		}
	}

	if candidate == nil {
		d.co.ReleaseRun = 0
		return
	}
	d.co.ReleaseRun++
	if d.co.ReleaseRun < balance.FacilityReleaseRun {
		return
	}
	candidate.CompanyID = nil
	d.co.ReleaseRun = 0
	w.AddNews(d.co.ID, state.NewsInfo, "ended the lease on a %s (capacity %d)",
		candidate.Type, candidate.Size)
}

// decideAdvertising spends a slice of cash on brand or product campaigns,
// scaled by the PR department's punch.
func (d *Decider) decideAdvertising() {
	if d.co.Phase == company.PhaseCrisis {
		return
	}
	w := d.ctx.World

	budget := float64(d.co.Cash) * 0.05
	units := int(budget / balance.AdCostUnit)
	if units < 1 {
		return
	}

	prMult := 0.5
	var prStaff []*company.Person
	for _, p := range d.staff {
		if p.Department == company.DeptPR && !p.Role.Boardroom() {
			prStaff = append(prStaff, p)
		}
	}
	if len(prStaff) > 0 {
		avg := 0.0
		for _, p := range prStaff {
			avg += p.PR
		}
		prMult = avg / float64(len(prStaff)) / 50.0
	}

	spend := int64(units) * balance.AdCostUnit
	effect := float64(units) * balance.AdEffectBase * prMult

	if d.co.BrandPower < 50 {
		w.Debit(d.co, finance.CatAd, spend)
		d.co.BrandPower += effect
		return
	}

	// Push the newest product still short on awareness.
	var target *product.Design
	for _, dd := range w.DesignsOf(d.co.ID) {
		if !dd.OnSale() {
			continue
		}
		if target == nil || dd.DevelopedWeek > target.DevelopedWeek ||
			(dd.DevelopedWeek == target.DevelopedWeek && dd.Awareness < target.Awareness) {
			target = dd
		}
	}
	if target == nil {
		return
	}
	w.Debit(d.co, finance.CatAd, spend)
	target.Awareness += effect * 2
}

// decideEquity walks the listing ladder: apply for an IPO when eligible,
// raise follow-on cash when poor, return cash through dividends and
// buybacks when flush.
func (d *Decider) decideEquity() {
	w := d.ctx.World
	switch d.co.Listing {
	case company.ListingPrivate:
		netAssets := d.co.Cash - w.TotalDebt(d.co.ID)
		if finance.IPOEligible(netAssets, w.Profit4w[d.co.ID], d.co.CreditRating) {
			d.co.Listing = company.ListingApplying
			w.AddNews(d.co.ID, state.NewsMarket, "%s filed for a public listing", d.co.Name)
		}
	case company.ListingPublic:
		switch {
		case d.co.Cash < d.safetyMargin():
			newShares := int64(float64(d.co.Shares) * balance.OfferingShareRatio)
			if newShares <= 0 {
				return
			}
			price := int64(float64(d.co.StockPrice) * balance.OfferingDiscount)
			d.co.Shares += newShares
			w.Credit(d.co, finance.CatOfferingProceeds, newShares*price)
			w.AddNews(d.co.ID, state.NewsMarket, "%s raised capital in a follow-on offering", d.co.Name)
		case d.co.Cash > balance.BuybackCashFactor*balance.SafetyCashMargin:
			if profit := w.Profit4w[d.co.ID]; profit > 0 {
				payout := int64(float64(profit) * balance.DividendPayoutRatio)
				if payout > 0 {
					w.Debit(d.co, finance.CatDividend, payout)
					w.AddNews(d.co.ID, state.NewsMarket,
						"%s declared a ¥%d dividend", d.co.Name, payout)
				}
			}
			back := int64(float64(d.co.Shares) * balance.BuybackShareRatio)
			if back <= 0 || d.co.Shares-back <= 0 {
				return
			}
			d.co.Shares -= back
			w.Debit(d.co, finance.CatBuyback, back*d.co.StockPrice)
			w.AddNews(d.co.ID, state.NewsMarket, "%s bought back %d shares", d.co.Name, back)
		}
	}
}
