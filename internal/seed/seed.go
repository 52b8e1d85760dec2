// Package seed builds a fresh world: the player, the autonomous makers and
// retailers, the part suppliers, a staffed labor market and enough floor
// space for everyone, plus a first-generation design per maker. It also
// provides the generators the engine uses for replacement people and
// respawned companies.
package seed

import (
	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

const (
	numMakers    = 8
	numRetailers = 3
)

// supplierTiers are the quality/cost templates each part category gets one
// supplier of.
var supplierTiers = []struct {
	Score float64
	Cost  float64
}{
	{Score: 2.0, Cost: 0.8},
	{Score: 3.0, Cost: 1.0},
	{Score: 4.5, Cost: 1.5},
}

// NewPerson generates a random person entering the labor market. Stats rise
// with age; the occasional genius starts from a higher band.
func NewPerson(id int64, age int, rng *entropy.Source) *company.Person {
	genius := rng.Chance(balance.GeniusRate)
	lo, hi := 0, 40
	if genius {
		lo, hi = 30, 60
	}
	ageBonus := float64(age - balance.StartAge)
	if ageBonus < 0 {
		ageBonus = 0
	}
	stat := func() float64 {
		v := float64(lo+rng.Intn(hi-lo+1)) + ageBonus
		if v > balance.AbilityMax {
			v = balance.AbilityMax
		}
		return v
	}

	gender := "M"
	if rng.Chance(0.5) {
		gender = "F"
	}
	p := &company.Person{
		ID:      id,
		Name:    PersonName(gender, rng),
		Age:     age,
		Gender:  gender,
		Loyalty: 50,
		Genius:  genius,
		Skills: company.Skills{
			Diligence:    stat(),
			Management:   stat(),
			Adaptability: stat(),
			StoreOps:     stat(),
			Production:   stat(),
			Development:  stat(),
			Sales:        stat(),
			HR:           stat(),
			PR:           stat(),
			Accounting:   stat(),
			Executive:    stat(),
		},
		IndustryAptitude: 0.1,
	}

	best := 0.0
	for _, d := range company.Departments {
		if s := p.Skills.For(d); s > best {
			best = s
		}
	}
	salary := int64(balance.BaseSalaryYearly * best / 50.0)
	if salary < balance.MinSalaryYearly {
		salary = balance.MinSalaryYearly
	}
	p.Salary = salary
	p.DesiredSalary = salary
	return p
}

// NewCompany creates a respawned or seeded business with fresh finances.
func NewCompany(id int64, t company.Type, rng *entropy.Source) *company.Company {
	cash := int64(balance.InitialCashMaker)
	if t == company.TypeRetailer {
		cash = balance.InitialCashRetailer
	}
	return &company.Company{
		ID:             id,
		Name:           CompanyName(t, rng),
		Type:           t,
		Cash:           cash,
		Industry:       "automotive",
		CreditRating:   balance.BaseCreditRating,
		BorrowingLimit: balance.BaseCreditRating * balance.CreditLimitPerPt,
		Active:         true,
		Listing:        company.ListingPrivate,
		Shares:         balance.InitialShares,
		StockPrice:     balance.InitialStockPrice,
		Phase:          company.PhaseStable,
	}
}

// NewWorld generates the complete starting state for a run.
func NewWorld(runID string, rng *entropy.Source) *state.World {
	w := &state.World{
		RunID:         runID,
		Week:          1,
		EconomicIndex: 1.0,
	}

	player := NewCompany(w.NextID("company"), company.TypePlayer, rng)
	player.Name = "Player Corp"
	w.Companies = append(w.Companies, player)

	var makers []*company.Company
	for i := 0; i < numMakers; i++ {
		c := NewCompany(w.NextID("company"), company.TypeMaker, rng)
		w.Companies = append(w.Companies, c)
		makers = append(makers, c)
	}
	var retailers []*company.Company
	for i := 0; i < numRetailers; i++ {
		c := NewCompany(w.NextID("company"), company.TypeRetailer, rng)
		w.Companies = append(w.Companies, c)
		retailers = append(retailers, c)
	}

	// One supplier per tier per part category. Suppliers hold no cash and
	// never act; they exist so designs can source parts.
	standardSupplier := make(map[string]*company.Company)
	for _, part := range balance.AutomotiveParts {
		for _, tier := range supplierTiers {
			s := &company.Company{
				ID:             w.NextID("company"),
				Name:           CompanyName(company.TypeSupplier, rng),
				Type:           company.TypeSupplier,
				Industry:       "automotive",
				CreditRating:   balance.BaseCreditRating,
				Active:         true,
				Listing:        company.ListingPrivate,
				MaterialScore:  tier.Score,
				CostMultiplier: tier.Cost,
				PartCategory:   part.Key,
			}
			w.Companies = append(w.Companies, s)
			if tier.Score == 3.0 {
				standardSupplier[part.Key] = s
			}
		}
	}

	// Staffing sized off each company's expected demand share; the inflated
	// coefficients offset the low skill of a fresh labor force.
	makerShare := float64(balance.BaseMarketDemand) / float64(len(makers))
	retailShare := float64(balance.BaseMarketDemand) / float64(len(retailers))
	need := make(map[int64]map[company.FacilityType]int)
	for _, c := range makers {
		need[c.ID] = staffCompany(w, c, makerStaffPlan(makerShare), rng)
	}
	for _, c := range retailers {
		need[c.ID] = staffCompany(w, c, retailStaffPlan(retailShare), rng)
	}

	// Labor pool sized so roughly 30% of the population starts unemployed.
	employed := len(w.People)
	for i := 0; i < int(float64(employed)/0.7)-employed; i++ {
		age := balance.StartAge + rng.Intn(19)
		w.People = append(w.People, NewPerson(w.NextID("person"), age, rng))
	}

	// Every maker and the player get a first-generation design on standard
	// parts; makers also start with two weeks of finished inventory.
	parts := make(map[string]product.PartChoice, len(balance.AutomotiveParts))
	for _, part := range balance.AutomotiveParts {
		s := standardSupplier[part.Key]
		parts[part.Key] = product.PartChoice{
			SupplierID: s.ID,
			Score:      s.MaterialScore,
			Cost:       int64(float64(part.BaseCost) * s.CostMultiplier),
		}
	}
	var materialCost int64
	for _, p := range parts {
		materialCost += p.Cost
	}
	basePrice := materialCost * 3 // concept 3.0 through the launch pricing rule

	makerDemand := balance.BaseMarketDemand / len(makers)
	var makerDesigns []*product.Design
	for _, c := range makers {
		d := firstDesign(w, c.ID, basePrice, parts, rng)
		makerDesigns = append(makerDesigns, d)
		stock := w.EnsureStock(c.ID, d.ID, basePrice)
		stock.Quantity = makerDemand * 2
	}
	firstDesign(w, player.ID, basePrice, parts, rng)

	// Retailers open with shelves already stocked across every maker.
	retailDemand := balance.BaseMarketDemand / len(retailers)
	perModel := retailDemand * 2 / len(makers)
	for _, r := range retailers {
		for _, d := range makerDesigns {
			stock := w.EnsureStock(r.ID, d.ID, basePrice)
			stock.Quantity = perModel
		}
	}

	// Rented floor space at 120% of need, plus a 20% vacant market.
	total := map[company.FacilityType]int{}
	for cid, req := range need {
		for ft, persons := range req {
			total[ft] += persons
			addFacilities(w, ft, persons*12/10, &cid, rng)
		}
	}
	for ft, persons := range total {
		addFacilities(w, ft, persons/5, nil, rng)
	}

	return w
}

func firstDesign(w *state.World, companyID, basePrice int64, parts map[string]product.PartChoice, rng *entropy.Source) *product.Design {
	d := &product.Design{
		ID:            w.NextID("design"),
		CompanyID:     companyID,
		Name:          ProductName(rng),
		MaterialScore: 3.0,
		ConceptScore:  3.0,
		ProdEff:       1.0,
		BasePrice:     basePrice,
		ListPrice:     basePrice,
		Status:        product.StatusCompleted,
		Strategy:      "balanced",
		Parts:         parts,
	}
	w.Designs = append(w.Designs, d)
	return d
}

// staffCompany hires a CEO plus the planned headcount per department, the
// first hire of each department as its manager. Returns the floor space the
// workforce needs, in persons per facility type.
func staffCompany(w *state.World, c *company.Company, plan map[company.Dept]int, rng *entropy.Source) map[company.FacilityType]int {
	ceo := NewPerson(w.NextID("person"), 40+rng.Intn(21), rng)
	ceo.CompanyID = &c.ID
	ceo.Department = company.DeptHR
	ceo.Role = company.RoleCEO
	ceo.Management = float64(70 + rng.Intn(31))
	ceo.Executive = float64(70 + rng.Intn(31))
	w.People = append(w.People, ceo)

	need := map[company.FacilityType]int{}
	for _, dept := range company.Departments {
		count := plan[dept]
		if count <= 0 {
			continue
		}
		need[company.FacilityFor(dept)] += count * balance.PersonScale
		for i := 0; i < count; i++ {
			p := NewPerson(w.NextID("person"), balance.StartAge+rng.Intn(19), rng)
			p.CompanyID = &c.ID
			p.Department = dept
			p.Role = company.RoleMember
			if i == 0 {
				p.Role = company.RoleManager
			}
			w.People = append(w.People, p)
		}
	}
	return need
}

func makerStaffPlan(share float64) map[company.Dept]int {
	prod := atLeast1(share * 2.5 / balance.BaseProductionEff * 1.2 / balance.PersonScale)
	plan := map[company.Dept]int{
		company.DeptProduction:  prod,
		company.DeptDevelopment: atLeast1(float64(prod) * 0.28),
		company.DeptSales:       atLeast1(float64(prod) * 0.06),
		company.DeptAccounting:  atLeast1(float64(prod) * 0.07),
		company.DeptPR:          atLeast1(float64(prod) * 0.05),
	}
	plan[company.DeptHR] = hrPlan(plan, 1.5)
	return plan
}

func retailStaffPlan(share float64) map[company.Dept]int {
	store := atLeast1(share * 2.5 / balance.BaseSalesEff * 1.2 / balance.PersonScale)
	plan := map[company.Dept]int{
		company.DeptStore:      store,
		company.DeptSales:      atLeast1(float64(store) * 0.1),
		company.DeptPR:         atLeast1(float64(store) * 0.1),
		company.DeptAccounting: atLeast1(float64(store) * 0.15),
	}
	plan[company.DeptHR] = hrPlan(plan, 2.0)
	return plan
}

func hrPlan(plan map[company.Dept]int, slack float64) int {
	others := 0
	for _, n := range plan {
		others += n * balance.PersonScale
	}
	return atLeast1(float64(others) / balance.HRSpanPerPerson * slack / balance.PersonScale)
}

func atLeast1(v float64) int {
	if n := int(v); n > 1 {
		return n
	}
	return 1
}

// addFacilities creates units of mixed sizes until the capacity is covered.
// A nil owner leaves them vacant on the market.
func addFacilities(w *state.World, ft company.FacilityType, persons int, owner *int64, rng *entropy.Source) {
	sizes := []int{10, 20, 50, 100}
	rentPerHead := int64(balance.RentFactoryPerHead)
	switch ft {
	case company.FacilityOffice:
		rentPerHead = balance.RentOfficePerHead
	case company.FacilityStore:
		rentPerHead = balance.RentStorePerHead
		sizes = []int{5, 10, 20}
	}
	access := []string{"S", "A", "B", "C", "D"}
	accessMult := map[string]float64{"S": 2.0, "A": 1.5, "B": 1.0, "C": 0.8, "D": 0.5}

	for have := 0; have < persons; {
		size := sizes[rng.Intn(len(sizes))]
		rent := int64(size) * rentPerHead
		grade := ""
		if ft == company.FacilityStore {
			grade = access[rng.Intn(len(access))]
			rent = int64(float64(rent) * accessMult[grade])
		}
		var cid *int64
		if owner != nil {
			v := *owner
			cid = &v
		}
		w.Facilities = append(w.Facilities, &company.Facility{
			ID:          w.NextID("facility"),
			CompanyID:   cid,
			Name:        FacilityName(ft, rng),
			Type:        ft,
			Size:        size,
			Rent:        rent,
			AccessScore: grade,
		})
		have += size
	}
}
