package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/capability"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/market"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/seed"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

func testWorld() *state.World {
	return &state.World{
		Week:          10,
		EconomicIndex: 1.0,
		B2BSales4w:    map[int64]map[int64]int{},
		PrevB2CSales:  map[int64]int{},
		TxCount4w:     map[int64]int{},
		Profit4w:      map[int64]int64{},
		QuarterRev:    map[int64]int64{},
		QuarterExp:    map[int64]int64{},
	}
}

func addCompany(w *state.World, id int64, t company.Type, cash int64) *company.Company {
	co := &company.Company{
		ID: id, Name: "Test Co", Type: t, Cash: cash, Active: true,
		Listing: company.ListingPrivate,
		Shares:  balance.InitialShares, StockPrice: balance.InitialStockPrice,
		CreditRating: balance.BaseCreditRating,
	}
	w.Companies = append(w.Companies, co)
	return co
}

func TestSettleWholesaleMovesGoodsAndCash(t *testing.T) {
	w := testWorld()
	sim := New(7)
	maker := addCompany(w, 1, company.TypeMaker, 1_000_000_000)
	retailer := addCompany(w, 2, company.TypeRetailer, 1_000_000_000)

	w.Designs = append(w.Designs, &product.Design{
		ID: 100, CompanyID: 1, Name: "Comet", Status: product.StatusCompleted,
		ListPrice: 3_000_000,
		Parts: map[string]product.PartChoice{
			"engine": {SupplierID: 9, Score: 3, Cost: 240_000},
		},
	})
	held := w.EnsureStock(1, 100, 3_000_000)
	held.Quantity = 10

	w.Orders = append(w.Orders, &market.Order{
		ID: 1, Week: 10, BuyerID: 2, SellerID: 1, DesignID: 100,
		Quantity: 6, Amount: 6 * 2_700_000, Status: market.OrderAccepted,
	})

	require.NoError(t, sim.settleWholesale(w))

	assert.Equal(t, 4, held.Quantity)
	shelf := w.StockOf(2, 100)
	require.NotNil(t, shelf)
	assert.Equal(t, 6, shelf.Quantity)
	assert.Equal(t, int64(3_000_000), shelf.RetailPrice, "shelf opens at the list price")

	assert.Equal(t, int64(1_000_000_000+6*2_700_000), maker.Cash)
	assert.Equal(t, int64(1_000_000_000-6*2_700_000), retailer.Cash)
	assert.Equal(t, market.OrderCompleted, w.Orders[0].Status)
	assert.Equal(t, 6, w.StatFor(1).B2BSales)

	var cogs int64
	for _, e := range w.Entries {
		if e.CompanyID == 1 && e.Category == finance.CatCOGS {
			cogs += e.Amount
		}
	}
	assert.Equal(t, int64(6*240_000), cogs)
}

func TestClearConsumerBooksRetailSales(t *testing.T) {
	w := testWorld()
	sim := New(7)
	addCompany(w, 1, company.TypeMaker, 0)
	retailer := addCompany(w, 2, company.TypeRetailer, 0)

	w.Designs = append(w.Designs, &product.Design{
		ID: 100, CompanyID: 1, Name: "Comet", Status: product.StatusCompleted,
		ConceptScore: 3, MaterialScore: 3, BasePrice: 3_000_000,
		ListPrice: 3_000_000,
		Parts: map[string]product.PartChoice{
			"engine": {SupplierID: 9, Score: 3, Cost: 240_000},
		},
	})
	shelf := w.EnsureStock(2, 100, 3_000_000)
	shelf.Quantity = 2000

	caps := map[int64]capability.Figures{
		2: {
			Skill:      map[company.Dept]float64{company.DeptStore: 50},
			Throughput: 400,
		},
	}
	require.NoError(t, sim.clearConsumer(w, caps))

	soldUnits := 2000 - shelf.Quantity
	assert.Greater(t, soldUnits, 0, "plenty of demand against one shelf line")
	assert.LessOrEqual(t, soldUnits, 400, "throughput caps the week")

	assert.Equal(t, int64(soldUnits)*3_000_000, retailer.Cash)
	require.Len(t, w.Transactions, 1, "one settled trade per shelf line")
	tx := w.Transactions[0]
	assert.Equal(t, market.TxB2C, tx.Kind)
	assert.Zero(t, tx.BuyerID)
	assert.Equal(t, soldUnits, w.StatFor(2).B2CSales)
	require.Len(t, w.Trends, 1)
	assert.Equal(t, 10, w.Trends[0].Week)
}

func TestResolveOffersTakesBestPackage(t *testing.T) {
	w := testWorld()
	sim := New(7)
	plain := addCompany(w, 1, company.TypeMaker, 0)
	famous := addCompany(w, 2, company.TypeMaker, 0)
	famous.BrandPower = 80

	w.People = append(w.People, &company.Person{
		ID: 50, Name: "candidate", DesiredSalary: 5_000_000,
	})
	w.Offers = append(w.Offers,
		&company.JobOffer{ID: 1, Week: 10, CompanyID: plain.ID, PersonID: 50,
			OfferSalary: 5_200_000, TargetDept: company.DeptSales},
		&company.JobOffer{ID: 2, Week: 10, CompanyID: famous.ID, PersonID: 50,
			OfferSalary: 5_000_000, TargetDept: company.DeptProduction},
	)

	sim.resolveOffers(w)

	p := personByID(w, 50)
	require.NotNil(t, p.CompanyID)
	// 5.0M x 1.4 brand factor beats 5.2M unbranded.
	assert.Equal(t, famous.ID, *p.CompanyID)
	assert.Equal(t, company.DeptProduction, p.Department)
	assert.Equal(t, company.RoleMember, p.Role)
	assert.Equal(t, int64(5_000_000), p.Salary)
	assert.Empty(t, w.Offers, "all offers are consumed")
}

func TestResolveOffersRejectsLowball(t *testing.T) {
	w := testWorld()
	sim := New(7)
	addCompany(w, 1, company.TypeMaker, 0)
	w.People = append(w.People, &company.Person{
		ID: 50, Name: "candidate", DesiredSalary: 10_000_000,
	})
	w.Offers = append(w.Offers, &company.JobOffer{
		ID: 1, Week: 10, CompanyID: 1, PersonID: 50, OfferSalary: 8_000_000,
		TargetDept: company.DeptSales,
	})

	sim.resolveOffers(w)

	assert.False(t, personByID(w, 50).Employed())
	assert.Empty(t, w.Offers)
}

func TestRunHRPaysSalariesAndGrowsSkills(t *testing.T) {
	w := testWorld()
	sim := New(7)
	co := addCompany(w, 1, company.TypeMaker, 1_000_000_000)
	cid := co.ID
	p := &company.Person{
		ID: 10, Name: "worker", CompanyID: &cid,
		Department: company.DeptProduction, Role: company.RoleMember,
		Salary: 5_200_000, DesiredSalary: 5_200_000, Loyalty: 60,
		IndustryAptitude: 1.0,
	}
	p.Production = 50
	p.Adaptability = 50
	p.Diligence = 60
	w.People = append(w.People, p)

	caps := sim.capabilities(w)
	sim.runHR(w, caps)

	// 5.2M a year x 8 people / 52 weeks.
	assert.Equal(t, int64(1_000_000_000-800_000), co.Cash)
	require.Len(t, w.Entries, 1)
	assert.Equal(t, "labor_production", w.Entries[0].Category)

	assert.InDelta(t, 50.05, p.Production, 1e-9, "weekly growth at adaptability 50")
	assert.Equal(t, 61.0, p.Loyalty, "covered HR raises loyalty by one")
	assert.True(t, p.Employed())
}

func TestDevelopmentDelayMatchesSufficiency(t *testing.T) {
	w := testWorld()
	w.Week = 40
	sim := New(7)
	addCompany(w, 1, company.TypeMaker, 0)
	design := &product.Design{
		ID: 100, CompanyID: 1, Name: "Nova", Status: product.StatusDeveloping,
		Strategy: "balanced", DevelopedWeek: 10,
		Parts: map[string]product.PartChoice{
			"engine": {SupplierID: 9, Score: 3, Cost: 240_000},
		},
	}
	w.Designs = append(w.Designs, design)

	caps := map[int64]capability.Figures{
		1: {
			Skill:       map[company.Dept]float64{company.DeptDevelopment: 50},
			Sufficiency: map[company.Dept]float64{company.DeptDevelopment: 0.5},
		},
	}

	const trials = 2000
	completed := 0
	for i := 0; i < trials; i++ {
		design.Status = product.StatusDeveloping
		sim.advanceDevelopment(w, caps)
		if design.Status == product.StatusCompleted {
			completed++
		}
	}
	assert.InDelta(t, 0.5, float64(completed)/trials, 0.05,
		"half the attempts stall at fifty percent coverage")
}

func TestDevelopmentCompletionShapesDesign(t *testing.T) {
	w := testWorld()
	w.Week = 40
	sim := New(7)
	co := addCompany(w, 1, company.TypeMaker, 0)
	co.DevKnowhow = 2.0
	design := &product.Design{
		ID: 100, CompanyID: 1, Name: "Nova", Status: product.StatusDeveloping,
		Strategy: "concept_focused", DevelopedWeek: 10,
		Parts: map[string]product.PartChoice{
			"engine": {SupplierID: 9, Score: 3, Cost: 1_000_000},
		},
	}
	w.Designs = append(w.Designs, design)

	caps := map[int64]capability.Figures{
		1: {
			Skill:       map[company.Dept]float64{company.DeptDevelopment: 60},
			Sufficiency: map[company.Dept]float64{company.DeptDevelopment: 1},
		},
	}
	sim.advanceDevelopment(w, caps)

	require.Equal(t, product.StatusCompleted, design.Status)
	assert.GreaterOrEqual(t, design.ConceptScore, balance.ConceptScoreMin)
	assert.LessOrEqual(t, design.ConceptScore, balance.ConceptScoreMax)
	assert.GreaterOrEqual(t, design.ProdEff, balance.ProductionEffMin)
	assert.LessOrEqual(t, design.ProdEff, balance.ProductionEffMax)
	expectedBase := int64(1_000_000 * (design.ConceptScore + 3) / 2)
	assert.Equal(t, expectedBase, design.BasePrice)
	assert.Equal(t, design.BasePrice, design.ListPrice)
	assert.Equal(t, 2.5, co.DevKnowhow)
}

func TestBankruptcyLiquidatesAndRespawns(t *testing.T) {
	w := testWorld()
	sim := New(7)
	failed := addCompany(w, 1, company.TypeMaker, -1)
	failed.BorrowingLimit = 0
	cid := failed.ID
	w.People = append(w.People,
		&company.Person{ID: 10, Name: "staffer", CompanyID: &cid,
			Department: company.DeptProduction, Role: company.RoleMember},
		&company.Person{ID: 11, Name: "weak exec", Skills: company.Skills{Executive: 40}},
		&company.Person{ID: 12, Name: "strong exec", Skills: company.Skills{Executive: 90}},
	)
	w.Designs = append(w.Designs, &product.Design{ID: 100, CompanyID: 1})
	w.EnsureStock(1, 100, 1).Quantity = 5
	w.Loans = append(w.Loans, &company.Loan{ID: 1, CompanyID: 1, Amount: 0})
	fcid := failed.ID
	w.Facilities = append(w.Facilities, &company.Facility{
		ID: 1, CompanyID: &fcid, Type: company.FacilityFactory, Size: 50, Owned: true,
	})

	sim.sweepBankruptcies(w)

	assert.False(t, failed.Active)
	assert.False(t, w.GameOver, "an autonomous failure never ends the run")
	assert.False(t, personByID(w, 10).Employed(), "staff return to the pool")
	assert.Empty(t, w.StocksOf(1))
	assert.Empty(t, w.DesignsOf(1))
	assert.Empty(t, w.LoansOf(1))
	assert.Nil(t, w.Facilities[0].CompanyID, "premises go back on the market")
	assert.False(t, w.Facilities[0].Owned)

	require.Len(t, w.Companies, 2)
	successor := w.Companies[1]
	assert.True(t, successor.Active)
	assert.Equal(t, company.TypeMaker, successor.Type)
	assert.Equal(t, int64(balance.InitialCashMaker), successor.Cash)

	founder := personByID(w, 12)
	require.NotNil(t, founder.CompanyID)
	assert.Equal(t, successor.ID, *founder.CompanyID)
	assert.Equal(t, company.RoleCEO, founder.Role)
	assert.Equal(t, company.DeptHR, founder.Department)
}

func TestPlayerBankruptcyEndsRun(t *testing.T) {
	w := testWorld()
	sim := New(7)
	player := addCompany(w, 1, company.TypePlayer, -1)
	player.BorrowingLimit = 0

	sim.sweepBankruptcies(w)

	assert.True(t, w.GameOver)
	assert.False(t, player.Active)
	assert.ErrorIs(t, sim.AdvanceTick(w), ErrGameOver)
}

func TestQuarterCloseDraftsAndForcesPublication(t *testing.T) {
	w := testWorld()
	w.Week = 13
	sim := New(7)
	addCompany(w, 1, company.TypeMaker, 0)
	w.QuarterRev[1] = 900_000_000
	w.QuarterExp[1] = 700_000_000
	w.AddEntry(1, finance.CatRevenue, 100_000_000)

	sim.closeQuarter(w)
	require.Len(t, w.Reports, 1)
	r := w.Reports[0]
	assert.Equal(t, finance.ReportDraft, r.Status)
	assert.Equal(t, 1, r.Quarter)
	assert.Equal(t, int64(1_000_000_000), r.Revenue, "closing tick included")
	assert.Equal(t, int64(300_000_000), r.Profit)

	// No accounting coverage at all: the draft slips until forced out.
	noAcct := map[int64]capability.Figures{
		1: {Sufficiency: map[company.Dept]float64{company.DeptAccounting: 0}},
	}
	for i := 0; i < balance.ReportMaxLateTicks; i++ {
		assert.Equal(t, finance.ReportDraft, r.Status)
		sim.publishReports(w, noAcct)
	}
	assert.Equal(t, finance.ReportDelayed, r.Status)
	assert.Equal(t, balance.ReportMaxLateTicks, r.LateTicks)
}

func TestStepMarketSplitsRunawayPrice(t *testing.T) {
	w := testWorld()
	sim := New(7)
	// Book value pins the theoretical price at 600k, well above the ceiling.
	co := addCompany(w, 1, company.TypeMaker, 12_000_000_000)
	co.Listing = company.ListingPublic
	co.Shares = 20_000
	co.StockPrice = 600_000

	preCap := co.StockPrice * co.Shares
	sim.stepMarket(w)

	assert.Greater(t, co.Shares, int64(20_000), "a split multiplied the float")
	assert.LessOrEqual(t, co.StockPrice, int64(balance.SplitCeiling))
	require.Len(t, w.StockTicks, 1)
	tick := w.StockTicks[0]
	assert.Equal(t, co.StockPrice*co.Shares, tick.MarketCap)
	assert.InDelta(t, float64(preCap), float64(tick.MarketCap), float64(preCap)*0.2)
}

func TestIPOGrantRaisesCash(t *testing.T) {
	w := testWorld()
	sim := New(7)
	co := addCompany(w, 1, company.TypeMaker, 2_000_000_000)
	co.Listing = company.ListingApplying
	w.Profit4w[1] = 50_000_000

	sim.stepMarket(w)

	assert.Equal(t, company.ListingPublic, co.Listing)
	assert.Equal(t, int64(24_000), co.Shares, "twenty percent of new shares issued")
	assert.Greater(t, co.Cash, int64(2_000_000_000), "net proceeds landed")
	var proceeds int64
	for _, e := range w.Entries {
		if e.Category == finance.CatIPOProceeds {
			proceeds = e.Amount
		}
	}
	assert.Equal(t, co.Cash-2_000_000_000, proceeds)

	require.Len(t, w.StockTicks, 1, "the listing week opens the price history")
	tick := w.StockTicks[0]
	assert.Equal(t, w.Week, tick.Week)
	assert.Equal(t, co.StockPrice, tick.Price)
	assert.Equal(t, co.StockPrice*co.Shares, tick.MarketCap)
}

func TestAdvanceTickSmoke(t *testing.T) {
	rng := entropy.NewSource(99)
	w := seed.NewWorld("test-run", rng)
	sim := New(99)

	for i := 0; i < 3; i++ {
		require.NoError(t, sim.AdvanceTick(w))
	}
	assert.Equal(t, 4, w.Week)
	assert.GreaterOrEqual(t, w.EconomicIndex, balance.EconomicIndexMin)
	assert.LessOrEqual(t, w.EconomicIndex, balance.EconomicIndexMax)
	assert.Len(t, w.Trends, 3, "one demand figure per tick")

	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		found := false
		for _, st := range w.Stats {
			if st.CompanyID == co.ID {
				found = true
				break
			}
		}
		assert.True(t, found, "every simulated company gets weekly stats")
	}
}
