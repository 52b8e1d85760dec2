package decision

import (
	"log/slog"
	"sort"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/market"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// decideFulfillment answers the wholesale orders sitting in the inbox
// against an in-memory stock snapshot, so double-booking within the tick is
// impossible. Shortfalls ship partially; only a dry shelf rejects.
func (d *Decider) decideFulfillment() {
	if !d.co.MakesProducts() {
		return
	}
	w := d.ctx.World
	orders := w.PendingOrdersFor(d.co.ID)
	if len(orders) == 0 {
		return
	}
	snapshot := make(map[int64]int)
	for _, s := range w.StocksOf(d.co.ID) {
		snapshot[s.DesignID] = s.Quantity
	}
	market.Fulfill(orders, snapshot)
	for _, o := range orders {
		if o.Status == market.OrderRejected {
			w.AddNews(o.BuyerID, state.NewsWarning,
				"order %d was declined, seller out of stock", o.ID)
		}
	}
}

// decideProduction plans this week's factory run per design: forecast a
// share of consumer demand, hold a runway of inventory against it, and
// build up to capacity and cash.
func (d *Decider) decideProduction() {
	if d.co.Type != company.TypeMaker {
		return
	}
	w := d.ctx.World

	var designs []*product.Design
	for _, dd := range w.DesignsOf(d.co.ID) {
		if dd.OnSale() {
			designs = append(designs, dd)
		}
	}
	if len(designs) == 0 {
		return
	}

	// Weekly build volume at ideal efficiency.
	capacity := d.caps.Capacity[company.DeptProduction] * balance.BaseProductionEff / 50.0

	makerCount := 0
	for _, c := range w.ActiveCompanies() {
		if c.MakesProducts() {
			makerCount++
		}
	}
	if makerCount < 1 {
		makerCount = 1
	}
	fairShare := 1.0 / float64(makerCount)

	precision := d.ceoPrecision(company.DeptProduction)
	predictionErr := d.ctx.RNG.Uniform(1-0.3*(1-precision), 1+0.3*(1-precision))
	estimatedDemand := balance.BaseMarketDemand * w.EconomicIndex * predictionErr

	reserve := d.burn * 4

	for _, dd := range designs {
		if capacity <= 0.1 {
			break
		}
		stock := w.StockOf(d.co.ID, dd.ID)
		onHand := 0
		if stock != nil {
			onHand = stock.Quantity
		}
		sold4w := w.B2BSold4w(d.co.ID, dd.ID)

		share := fairShare
		if w.MarketB2B4w > 0 {
			share = float64(sold4w) / float64(w.MarketB2B4w)
		}

		growth := balance.TargetShareGrowth
		if d.co.Phase == company.PhaseGrowth {
			growth = 1 + 2*(balance.TargetShareGrowth-1)
		}
		runway := balance.InventoryRunway
		if w.MarketB2B4w > 0 && share < fairShare*balance.FairShareRecoveryAt {
			// Falling behind the pack: chase share harder and stock deeper.
			growth = balance.RecoveryShareBoost
			runway = balance.RecoveryRunway
		}
		targetShare := share * growth
		if targetShare < 0.05 {
			targetShare = 0.05
		}

		predictedWeekly := estimatedDemand * targetShare
		targetStock := int(predictedWeekly * runway)
		if floor := int(balance.BaseMarketDemand / float64(makerCount) * 0.25); targetStock < floor {
			targetStock = floor
		}
		if ceil := int(estimatedDemand * 0.5); targetStock > ceil {
			targetStock = ceil
		}
		// A shelf warmer that has not moved in a month gets no more units.
		if w.Week > 8 && onHand > 10 && sold4w == 0 {
			targetStock = 0
		}
		if onHand >= targetStock {
			continue
		}
		needed := targetStock - onHand

		maxProduce := d.ctx.RNG.PRound(capacity * dd.ProdEff)
		toProduce := needed
		if toProduce > maxProduce {
			toProduce = maxProduce
		}

		unitCost := dd.UnitMaterialCost()
		if unitCost <= 0 {
			unitCost = balance.TotalMaterialCost()
		}
		available := d.co.Cash - reserve
		if available < 0 {
			available = 0
		}
		if int64(toProduce)*unitCost > available {
			toProduce = int(available / unitCost)
		}
		if toProduce <= 0 {
			continue
		}

		w.Debit(d.co, finance.CatMaterial, int64(toProduce)*unitCost)
		line := w.EnsureStock(d.co.ID, dd.ID, dd.ListPrice)
		line.Quantity += toProduce
		w.StatFor(d.co.ID).Production += toProduce
		if dd.ProdEff > 0 {
			capacity -= float64(toProduce) / dd.ProdEff
		}
		slog.Debug("production run", "company", d.co.Name, "design", dd.Name, "units", toProduce)
	}
}

// decideProcurement is the retailer's buying desk: rate every maker line by
// perceived value, then spread the needed volume across them by score within
// budget. The orders land as pending B2B requests.
func (d *Decider) decideProcurement() {
	if d.co.Type != company.TypeRetailer {
		return
	}
	w := d.ctx.World

	budget := float64(d.co.Cash-d.burn*4) * 0.9
	if budget <= 0 {
		return
	}

	type offer struct {
		makerID  int64
		designID int64
		avail    int
		price    int64
		score    float64
	}
	precision := d.ceoPrecision(company.DeptSales)
	noiseRange := 0.3 * (1 - precision)

	var offers []offer
	total := 0.0
	for _, s := range w.Stocks {
		maker := w.CompanyByID(s.CompanyID)
		if maker == nil || !maker.Active || !maker.MakesProducts() || s.Quantity <= 0 {
			continue
		}
		dd := w.DesignByID(s.DesignID)
		if dd == nil || !dd.OnSale() {
			continue
		}

		salesPower := 50.0
		if caps, ok := d.ctx.Caps[maker.ID]; ok {
			salesPower = caps.Skill[company.DeptSales]
		}
		// Strong sales teams get seen and trusted but concede less on price.
		visibility := 0.2 + salesPower/100
		priceMult := 1 + (salesPower-50)*0.002
		wholesale := float64(dd.ListPrice) * balance.WholesaleRate
		if wholesale < 1 {
			wholesale = 1
		}
		actual := int64(wholesale * priceMult)

		priceFactor := float64(actual) / 3_000_000
		if priceFactor <= 0 {
			priceFactor = 0.1
		}
		perception := d.ctx.RNG.Uniform(1-noiseRange, 1+noiseRange)
		gut := d.ctx.RNG.Uniform(0.9, 1.1)
		score := dd.ConceptScore * (1 + maker.BrandPower/100) / priceFactor *
			visibility * perception * gut

		offers = append(offers, offer{maker.ID, dd.ID, s.Quantity, actual, score})
		total += score
	}
	if len(offers) == 0 {
		return
	}

	targetTotal := d.caps.Throughput * balance.RetailStockRunway
	current := 0
	for _, s := range w.StocksOf(d.co.ID) {
		current += s.Quantity
	}
	needed := int(targetTotal) - current
	if needed <= 0 {
		return
	}
	initialNeed := needed

	sort.Slice(offers, func(i, j int) bool { return offers[i].score > offers[j].score })

	for _, of := range offers {
		if budget <= 0 || needed <= 0 {
			break
		}
		share := of.score / total
		ideal := d.ctx.RNG.PRound(float64(initialNeed) * share)

		qty := ideal
		if qty > of.avail {
			qty = of.avail
		}
		if byBudget := int(budget / float64(of.price)); qty > byBudget {
			qty = byBudget
		}
		if qty > needed {
			qty = needed
		}
		if qty <= 0 {
			continue
		}

		o, err := market.NewOrder(w.Week, d.co.ID, of.makerID, of.designID, qty, of.price)
		if err != nil {
			continue
		}
		o.ID = w.NextID("order")
		w.Orders = append(w.Orders, o)
		w.AddNews(of.makerID, state.NewsInfo,
			"%s placed an order for %d units", d.co.Name, qty)

		budget -= float64(o.Amount)
		needed -= qty
	}
}

// decidePricing adjusts maker list prices against stock pressure and recent
// sell-through, shaded by the CEO's temperament. Retailers mirror the list
// price.
func (d *Decider) decidePricing() {
	w := d.ctx.World
	switch {
	case d.co.Type == company.TypeMaker:
		for _, dd := range w.DesignsOf(d.co.ID) {
			if !dd.OnSale() {
				continue
			}
			onHand := 0
			if s := w.StockOf(d.co.ID, dd.ID); s != nil {
				onHand = s.Quantity
			}
			avgSales := float64(w.B2BSold4w(d.co.ID, dd.ID)) / 4.0

			overstockAt := 50 * d.pers.Patience
			shortageAt := 10 / d.pers.Patience

			floorRate := balance.MinProfitMargin
			if d.co.Phase == company.PhaseCrisis {
				// Clearance mode tolerates selling below cost.
				floorRate = balance.CrisisPriceFloor
			}

			switch {
			case float64(onHand) > overstockAt && avgSales < 5*d.pers.Patience:
				drop := balance.PriceAdjustRate * d.pers.Aggressiveness * d.ctx.RNG.Uniform(0.8, 1.2)
				proposed := int64(float64(dd.ListPrice) * (1 - drop))
				floor := int64(float64(dd.UnitMaterialCost()) * floorRate)
				if proposed < floor {
					proposed = floor
				}
				dd.ListPrice = proposed
			case float64(onHand) < shortageAt && avgSales > 10/d.pers.Patience:
				raise := balance.PriceAdjustRate * d.pers.Aggressiveness * d.ctx.RNG.Uniform(0.8, 1.2)
				dd.ListPrice = int64(float64(dd.ListPrice) * (1 + raise))
			}
		}
	case d.co.Type == company.TypeRetailer:
		for _, s := range w.StocksOf(d.co.ID) {
			if dd := w.DesignByID(s.DesignID); dd != nil && s.RetailPrice != dd.ListPrice {
				s.RetailPrice = dd.ListPrice
			}
		}
	}
}
