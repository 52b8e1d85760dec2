package engine

import (
	"fmt"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/capability"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/market"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// settleWholesale delivers every accepted order: inventory moves to the
// buyer's shelf at the maker's list price, cash moves the other way, and the
// maker books revenue against the material cost of the shipped units.
func (s *Simulation) settleWholesale(w *state.World) error {
	for _, o := range w.Orders {
		if o.Status != market.OrderAccepted {
			continue
		}
		seller := w.CompanyByID(o.SellerID)
		buyer := w.CompanyByID(o.BuyerID)
		design := w.DesignByID(o.DesignID)
		if seller == nil || buyer == nil || design == nil {
			return fmt.Errorf("engine: order %d references missing entities", o.ID)
		}
		held := w.StockOf(o.SellerID, o.DesignID)
		if held == nil || held.Quantity < o.Quantity {
			// Stock moved between acceptance and delivery.
			o.Status = market.OrderRejected
			w.AddNews(o.BuyerID, state.NewsWarning,
				"order #%d could not be delivered", o.ID)
			continue
		}

		held.Quantity -= o.Quantity
		shelf := w.EnsureStock(o.BuyerID, o.DesignID, design.ListPrice)
		shelf.Quantity += o.Quantity

		w.Credit(seller, finance.CatRevenue, o.Amount)
		w.Debit(buyer, finance.CatStockPurchase, o.Amount)
		w.AddEntry(o.SellerID, finance.CatCOGS,
			design.UnitMaterialCost()*int64(o.Quantity))
		w.AddTransaction(market.TxB2B, o.BuyerID, o.SellerID, o.DesignID,
			o.Quantity, o.Amount)
		o.Status = market.OrderCompleted

		w.AddNews(o.BuyerID, state.NewsInfo,
			"order #%d delivered: %d units of %s", o.ID, o.Quantity, design.Name)
		w.StatFor(o.SellerID).B2BSales += o.Quantity
	}
	return nil
}

// clearConsumer draws the week's demand, scores every retail shelf line and
// allocates units across them, then books the sales.
func (s *Simulation) clearConsumer(w *state.World, caps map[int64]capability.Figures) error {
	demand := market.WeeklyDemand(w.EconomicIndex, s.rng)
	w.Trends = append(w.Trends, &state.MarketTrend{Week: w.Week, Demand: demand})

	var lines []*market.Line
	byStockID := make(map[int64]*product.Stock)
	throughput := make(map[int64]float64)

	for _, co := range w.ActiveCompanies() {
		if !co.SellsRetail() {
			continue
		}
		throughput[co.ID] = caps[co.ID].Throughput
		for _, st := range w.StocksOf(co.ID) {
			if st.Quantity <= 0 {
				continue
			}
			d := w.DesignByID(st.DesignID)
			if d == nil {
				return fmt.Errorf("engine: stock %d references missing design %d", st.ID, st.DesignID)
			}
			makerBrand := 0.0
			if maker := w.CompanyByID(d.CompanyID); maker != nil {
				makerBrand = maker.BrandPower
			}
			score := market.Score(market.ScoreInput{
				RetailBrand:   co.BrandPower,
				StoreOps:      caps[co.ID].Skill[company.DeptStore],
				ConceptScore:  d.ConceptScore,
				MaterialScore: d.MaterialScore,
				MakerBrand:    makerBrand,
				Awareness:     d.Awareness,
				BasePrice:     d.BasePrice,
				RetailPrice:   st.RetailPrice,
				PrevSold:      w.PrevB2CSales[d.ID],
			}, s.rng)
			lines = append(lines, &market.Line{
				StockID:   st.ID,
				CompanyID: co.ID,
				DesignID:  st.DesignID,
				Quantity:  st.Quantity,
				Score:     score,
			})
			byStockID[st.ID] = st
		}
	}
	if len(lines) == 0 {
		return nil
	}

	sold := market.AllocateDemand(demand, lines, throughput, s.rng)
	for _, l := range lines {
		n := sold[l.StockID]
		if n == 0 {
			continue
		}
		st := byStockID[l.StockID]
		d := w.DesignByID(st.DesignID)
		co := w.CompanyByID(st.CompanyID)
		st.Quantity -= n

		revenue := int64(n) * st.RetailPrice
		w.Credit(co, finance.CatRevenue, revenue)

		// Own production costs its materials; resale costs the wholesale
		// price it was bought in at.
		var cogs int64
		if st.CompanyID == d.CompanyID {
			cogs = d.UnitMaterialCost() * int64(n)
		} else {
			cogs = int64(float64(n) * float64(d.ListPrice) * balance.WholesaleRate)
		}
		w.AddEntry(st.CompanyID, finance.CatCOGS, cogs)

		w.AddTransaction(market.TxB2C, 0, st.CompanyID, st.DesignID, n, revenue)
		w.StatFor(st.CompanyID).B2CSales += n
	}
	return nil
}
