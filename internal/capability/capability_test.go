package capability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
)

func worker(id int64, d company.Dept, skill float64) *company.Person {
	p := &company.Person{
		ID:               id,
		Department:       d,
		Role:             company.RoleMember,
		IndustryAptitude: 1.0,
	}
	p.Skills.Set(d, skill)
	p.Diligence = 60
	return p
}

func TestEvaluateIdempotent(t *testing.T) {
	staff := []*company.Person{
		worker(1, company.DeptProduction, 70),
		worker(2, company.DeptProduction, 40),
		worker(3, company.DeptSales, 55),
		worker(4, company.DeptStore, 65),
	}
	facilities := []*company.Facility{
		{ID: 1, Type: company.FacilityFactory, Size: 80},
		{ID: 2, Type: company.FacilityStore, Size: 40},
		{ID: 3, Type: company.FacilityOffice, Size: 80},
	}
	w := Workload{OpenProjects: 1, TrailingTx: 12, StockedUnits: 80, BrandAwareness: 30}

	a := Evaluate(staff, facilities, w, nil)
	b := Evaluate(staff, facilities, w, nil)
	assert.Equal(t, a, b)
}

func TestEvaluateAverageAndCapacity(t *testing.T) {
	staff := []*company.Person{
		worker(1, company.DeptProduction, 80),
		worker(2, company.DeptProduction, 40),
	}
	facilities := []*company.Facility{
		{ID: 1, Type: company.FacilityFactory, Size: 80},
	}
	f := Evaluate(staff, facilities, Workload{}, nil)

	assert.InDelta(t, 60.0, f.Skill[company.DeptProduction], 1e-9)
	assert.InDelta(t, 120*balance.PersonScale, f.Capacity[company.DeptProduction], 1e-9)
}

func TestFactoryOverflowDropsWeakest(t *testing.T) {
	// The garage base fits one production worker; the weaker of two stops
	// contributing entirely.
	staff := []*company.Person{
		worker(1, company.DeptProduction, 90),
		worker(2, company.DeptProduction, 30),
	}
	f := Evaluate(staff, nil, Workload{}, nil)

	assert.InDelta(t, 90*balance.PersonScale, f.Capacity[company.DeptProduction], 1e-9)
	assert.InDelta(t, 90.0, f.Skill[company.DeptProduction], 1e-9)

	u := f.Facilities[company.FacilityFactory]
	require.Equal(t, 2*balance.PersonScale, u.Heads)
	assert.Less(t, u.Efficiency, 1.0)
}

func TestOfficeOverflowScalesOutput(t *testing.T) {
	// Three sales staff demand 24 heads of office space against the
	// garage base of 12, halving quality and volume alike.
	staff := []*company.Person{
		worker(1, company.DeptSales, 50),
		worker(2, company.DeptSales, 50),
		worker(3, company.DeptSales, 50),
	}
	f := Evaluate(staff, nil, Workload{}, nil)

	assert.InDelta(t, 25.0, f.Skill[company.DeptSales], 1e-9)
	assert.InDelta(t, 150*balance.PersonScale*0.5, f.Capacity[company.DeptSales], 1e-9)
}

func TestExecutiveBonusRaisesSkill(t *testing.T) {
	cxo := &company.Person{
		ID: 99, Role: company.RoleExecutive,
		Department: company.DeptProduction, IndustryAptitude: 1.0,
	}
	cxo.Management = 80
	cxo.Diligence = 60
	staff := []*company.Person{worker(1, company.DeptProduction, 50), cxo}

	f := Evaluate(staff, nil, Workload{}, nil)
	assert.InDelta(t, 50+80*balance.MgmtBonusExecutive, f.Skill[company.DeptProduction], 1e-9)
	// Board members never count toward headcount or capacity.
	assert.InDelta(t, 50*balance.PersonScale, f.Capacity[company.DeptProduction], 1e-9)
}

func TestSufficiencyRatios(t *testing.T) {
	staff := []*company.Person{worker(1, company.DeptDevelopment, 50)}
	f := Evaluate(staff, nil, Workload{OpenProjects: 1}, nil)

	// One project needs 2000 capacity; one skill-50 unit provides 400.
	assert.InDelta(t, 400.0/2000.0, f.Sufficiency[company.DeptDevelopment], 1e-9)
	// No workload means full sufficiency.
	assert.Equal(t, 1.0, f.Sufficiency[company.DeptPR])
}

func TestStoreThroughput(t *testing.T) {
	staff := []*company.Person{worker(1, company.DeptStore, 75)}
	f := Evaluate(staff, nil, Workload{}, nil)

	want := 1 * balance.PersonScale * balance.BaseSalesEff * 75.0 / 50.0
	assert.InDelta(t, want, f.Throughput, 1e-9)
}

func TestStabilityPenaltyOnlyWithRNG(t *testing.T) {
	staff := []*company.Person{worker(1, company.DeptProduction, 50)}
	staff[0].Diligence = 10

	base := Evaluate(staff, nil, Workload{}, nil)
	rng := entropy.NewSource(7)
	hit := false
	for i := 0; i < 50; i++ {
		f := Evaluate(staff, nil, Workload{}, rng)
		require.LessOrEqual(t, f.Capacity[company.DeptProduction], base.Capacity[company.DeptProduction])
		if f.Capacity[company.DeptProduction] < base.Capacity[company.DeptProduction] {
			hit = true
		}
	}
	assert.True(t, hit, "low diligence should debuff at least once over 50 draws")
}
