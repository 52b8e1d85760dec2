package decision

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
	}
}

func testContext(w *state.World) *Context {
	ctx := &Context{
		World: w,
		Caps:  map[int64]capability.Figures{},
		RNG:   entropy.NewSource(42),
	}
	for _, c := range w.Companies {
		ctx.Caps[c.ID] = capability.Evaluate(
			w.StaffOf(c.ID), w.FacilitiesOf(c.ID), capability.Workload{}, nil)
	}
	return ctx
}

func employ(w *state.World, cid int64, id int64, d company.Dept, skill float64) *company.Person {
	p := &company.Person{
		ID: id, Name: "worker", CompanyID: &cid,
		Department: d, Role: company.RoleMember,
		Salary: balance.BaseSalaryYearly, DesiredSalary: balance.BaseSalaryYearly,
		Loyalty: 60, IndustryAptitude: 1.0,
	}
	p.Skills.Set(d, skill)
	p.Diligence = 60
	w.People = append(w.People, p)
	return p
}

func TestZeroProductionStaffProducesNothing(t *testing.T) {
	w := testWorld()
	maker := &company.Company{
		ID: 1, Name: "Hollow Motors", Type: company.TypeMaker,
		Cash: 5_000_000_000, Active: true,
	}
	w.Companies = append(w.Companies, maker)
	w.Designs = append(w.Designs, &product.Design{
		ID: 100, CompanyID: 1, Name: "Ghost", Status: product.StatusCompleted,
		ProdEff: 1.0, ListPrice: 3_000_000,
		Parts: map[string]product.PartChoice{"engine": {SupplierID: 9, Score: 3, Cost: 240_000}},
	})

	d := New(testContext(w), maker)
	cashBefore := maker.Cash
	d.decideProduction()

	assert.Nil(t, w.StockOf(1, 100), "no inventory line should appear")
	assert.Equal(t, cashBefore, maker.Cash, "no material cost without output")
	assert.Empty(t, w.Entries)
}

func TestProductionSpendsMaterialAndAddsStock(t *testing.T) {
	w := testWorld()
	maker := &company.Company{
		ID: 1, Name: "Busy Motors", Type: company.TypeMaker,
		Cash: 5_000_000_000, Active: true,
	}
	w.Companies = append(w.Companies, maker)
	for i := int64(1); i <= 4; i++ {
		employ(w, 1, i, company.DeptProduction, 80)
	}
	w.Facilities = append(w.Facilities, &company.Facility{
		ID: 1, CompanyID: &maker.ID, Type: company.FacilityFactory, Size: 64,
	})
	w.Designs = append(w.Designs, &product.Design{
		ID: 100, CompanyID: 1, Name: "Runner", Status: product.StatusCompleted,
		ProdEff: 1.0, ListPrice: 3_000_000,
		Parts: map[string]product.PartChoice{"engine": {SupplierID: 9, Score: 3, Cost: 1_000_000}},
	})

	d := New(testContext(w), maker)
	cashBefore := maker.Cash
	d.decideProduction()

	s := w.StockOf(1, 100)
	require.NotNil(t, s)
	assert.Greater(t, s.Quantity, 0)
	assert.Equal(t, cashBefore-int64(s.Quantity)*1_000_000, maker.Cash)
	require.Len(t, w.Entries, 1)
	assert.Equal(t, "material", w.Entries[0].Category)
}

func TestPhaseClassification(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Edge Corp", Type: company.TypeMaker,
		Cash: 10_000_000, BorrowingLimit: 0, Active: true,
	}
	w.Companies = append(w.Companies, co)
	// A payroll that burns ten million a week leaves one week of runway.
	employ(w, 1, 1, company.DeptProduction, 50).Salary = 65_000_000

	d := New(testContext(w), co)
	d.classifyPhase()
	assert.Equal(t, company.PhaseCrisis, co.Phase)

	co.Cash = 100_000_000_000
	w.Profit4w[1] = 1_000_000
	d = New(testContext(w), co)
	d.classifyPhase()
	assert.Equal(t, company.PhaseGrowth, co.Phase)

	w.Profit4w[1] = -1
	d = New(testContext(w), co)
	d.classifyPhase()
	assert.Equal(t, company.PhaseStable, co.Phase)
}

func TestDeepLossForcesCrisisDespiteCash(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Bleeder Corp", Type: company.TypeMaker,
		Cash: 100_000_000_000, Active: true,
	}
	w.Companies = append(w.Companies, co)
	employ(w, 1, 1, company.DeptProduction, 50).Salary = 65_000_000
	// Burn is ten million a week, so the crisis line sits at a forty
	// million trailing loss. Decades of runway must not mask it.
	w.Profit4w[1] = -50_000_000_000

	d := New(testContext(w), co)
	d.classifyPhase()
	assert.Equal(t, company.PhaseCrisis, co.Phase)

	w.Profit4w[1] = -30_000_000
	d = New(testContext(w), co)
	d.classifyPhase()
	assert.Equal(t, company.PhaseStable, co.Phase, "a shallow loss is not a crisis")
}

func TestCrisisLayoffsReleaseWeakest(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Sinking Inc", Type: company.TypeMaker,
		Cash: 1_000_000, Active: true,
	}
	w.Companies = append(w.Companies, co)
	weak := employ(w, 1, 1, company.DeptProduction, 10)
	strong := employ(w, 1, 2, company.DeptProduction, 90)
	employ(w, 1, 3, company.DeptSales, 60)

	d := New(testContext(w), co)
	d.classifyPhase()
	require.Equal(t, company.PhaseCrisis, co.Phase)
	d.decideLayoffs()

	assert.Nil(t, weak.CompanyID, "lowest value per salary goes first")
	assert.NotNil(t, strong.CompanyID, "at least one worker always stays")
	assert.Equal(t, w.Week, weak.LastResignedWeek)
	require.NotNil(t, weak.LastCompanyID)
	assert.Equal(t, int64(1), *weak.LastCompanyID)
}

func TestFinancingBorrowsUpToHeadroom(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Thin Air", Type: company.TypeMaker,
		Cash: 0, CreditRating: 50, BorrowingLimit: 150_000_000, Active: true,
	}
	w.Companies = append(w.Companies, co)

	d := New(testContext(w), co)
	d.decideFinancing()

	require.Len(t, w.Loans, 1)
	loan := w.Loans[0]
	assert.Equal(t, int64(150_000_000), loan.Amount, "capped by headroom")
	assert.Equal(t, int64(150_000_000), co.Cash)
	assert.InDelta(t, 0.08, loan.AnnualRate, 1e-9)

	// Already at the ceiling: no second loan.
	d.decideFinancing()
	assert.Len(t, w.Loans, 1)
}

func TestHiringLeavesOffers(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Grower", Type: company.TypeMaker,
		Cash: 5_000_000_000, Active: true,
	}
	w.Companies = append(w.Companies, co)
	for i := int64(1); i <= 3; i++ {
		p := &company.Person{
			ID: 100 + i, Name: "candidate", Salary: balance.BaseSalaryYearly,
			DesiredSalary: balance.BaseSalaryYearly, IndustryAptitude: 1.0,
		}
		p.Production = 50 + float64(i)*10
		w.People = append(w.People, p)
	}

	d := New(testContext(w), co)
	d.classifyPhase()
	d.decideHiring()

	require.NotEmpty(t, w.Offers)
	assert.LessOrEqual(t, len(w.Offers), balance.GrowthHiringQuota)
	for _, o := range w.Offers {
		assert.Equal(t, int64(1), o.CompanyID)
		assert.Equal(t, balance.BaseSalaryYearly, int(o.OfferSalary))
	}
}

func TestFulfillmentPartialAcceptance(t *testing.T) {
	w := testWorld()
	maker := &company.Company{ID: 1, Name: "Maker", Type: company.TypeMaker, Cash: 1, Active: true}
	w.Companies = append(w.Companies, maker)
	w.Stocks = append(w.Stocks, &product.Stock{ID: 1, CompanyID: 1, DesignID: 100, Quantity: 6, RetailPrice: 3_000_000})
	o, err := market.NewOrder(10, 2, 1, 100, 10, 2_700_000)
	require.NoError(t, err)
	o.ID = 1
	w.Orders = append(w.Orders, o)

	d := New(testContext(w), maker)
	d.decideFulfillment()

	assert.Equal(t, market.OrderAccepted, o.Status)
	assert.Equal(t, 6, o.Quantity)
	assert.Equal(t, int64(6*2_700_000), o.Amount)
}

func TestPricingCutsOnOverstock(t *testing.T) {
	w := testWorld()
	maker := &company.Company{ID: 1, Name: "Pricey", Type: company.TypeMaker, Cash: 1, Active: true}
	w.Companies = append(w.Companies, maker)
	dd := &product.Design{
		ID: 100, CompanyID: 1, Status: product.StatusCompleted,
		ListPrice: 3_000_000,
		Parts:     map[string]product.PartChoice{"engine": {Cost: 1_000_000}},
	}
	w.Designs = append(w.Designs, dd)
	w.Stocks = append(w.Stocks, &product.Stock{ID: 1, CompanyID: 1, DesignID: 100, Quantity: 500})

	d := New(testContext(w), maker)
	d.decidePricing()

	assert.Less(t, dd.ListPrice, int64(3_000_000))
	assert.GreaterOrEqual(t, dd.ListPrice,
		int64(float64(dd.UnitMaterialCost())*balance.CrisisPriceFloor))
}

func TestRetailerMirrorsListPrice(t *testing.T) {
	w := testWorld()
	retailer := &company.Company{ID: 2, Name: "Shop", Type: company.TypeRetailer, Cash: 1, Active: true}
	w.Companies = append(w.Companies, retailer)
	w.Designs = append(w.Designs, &product.Design{
		ID: 100, CompanyID: 1, Status: product.StatusCompleted, ListPrice: 2_500_000,
	})
	s := &product.Stock{ID: 1, CompanyID: 2, DesignID: 100, Quantity: 5, RetailPrice: 3_000_000}
	w.Stocks = append(w.Stocks, s)

	d := New(testContext(w), retailer)
	d.decidePricing()
	assert.Equal(t, int64(2_500_000), s.RetailPrice)
}

func TestEquityFollowOnWhenCashPoor(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Listed Ltd", Type: company.TypeMaker, Active: true,
		Listing: company.ListingPublic, Shares: 20_000, StockPrice: 50_000,
		Cash: 0,
	}
	w.Companies = append(w.Companies, co)

	d := New(testContext(w), co)
	d.decideEquity()

	assert.Equal(t, int64(22_000), co.Shares)
	wantPrice := int64(float64(50_000) * balance.OfferingDiscount)
	assert.Equal(t, 2_000*wantPrice, co.Cash)
}

func TestEquityDividendWhenFlush(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Cash Cow", Type: company.TypeMaker, Active: true,
		Listing: company.ListingPublic, Shares: 20_000, StockPrice: 50_000,
		Cash: 10 * balance.SafetyCashMargin,
	}
	w.Companies = append(w.Companies, co)
	w.Profit4w[1] = 100_000_000

	d := New(testContext(w), co)
	d.decideEquity()

	var dividend int64
	for _, e := range w.Entries {
		if e.Category == finance.CatDividend {
			dividend = e.Amount
		}
	}
	assert.Equal(t, int64(30_000_000), dividend)
	assert.Equal(t, int64(19_600), co.Shares, "flush companies still buy back")
	buyback := int64(400) * 50_000
	assert.Equal(t, 10*balance.SafetyCashMargin-dividend-buyback, co.Cash)
}

func TestNoDividendWithoutTrailingProfit(t *testing.T) {
	w := testWorld()
	co := &company.Company{
		ID: 1, Name: "Cash Cow", Type: company.TypeMaker, Active: true,
		Listing: company.ListingPublic, Shares: 20_000, StockPrice: 50_000,
		Cash: 10 * balance.SafetyCashMargin,
	}
	w.Companies = append(w.Companies, co)
	w.Profit4w[1] = -5_000_000

	d := New(testContext(w), co)
	d.decideEquity()

	for _, e := range w.Entries {
		assert.NotEqual(t, finance.CatDividend, e.Category)
	}
}
