// Package capability turns a company's staff and facilities into the
// per-department quality and throughput figures the rest of the simulation
// consumes. Evaluation is a pure function of its inputs; the only stochastic
// element is the stability penalty, skipped when no rng is supplied.
package capability

import (
	"math"
	"sort"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
)

// Workload is the pending work that drives department requirements.
type Workload struct {
	OpenProjects   int     // development designs in flight
	TrailingTx     int     // transactions over the trailing four weeks
	StockedUnits   int     // units currently on shelves
	BrandAwareness float64 // brand power plus summed design awareness
}

// Use records how much of one facility type the workforce occupies.
// Both figures are in persons, not staff records.
type Use struct {
	Heads      int
	Limit      int
	Efficiency float64
}

// Figures is the evaluated output for one company and tick.
type Figures struct {
	Skill       map[company.Dept]float64 // average quality, 0-100
	Capacity    map[company.Dept]float64 // throughput volume
	Sufficiency map[company.Dept]float64 // capacity over requirement, capped at 1
	Throughput  float64                  // store units sellable this week
	Stability   float64                  // average diligence
	Facilities  map[company.FacilityType]Use
}

// Evaluate computes the capability figures for a staff and facility snapshot.
// A nil rng skips the stability draw, making the call fully deterministic.
func Evaluate(staff []*company.Person, facilities []*company.Facility, w Workload, rng *entropy.Source) Figures {
	f := Figures{
		Skill:       make(map[company.Dept]float64, len(company.Departments)),
		Capacity:    make(map[company.Dept]float64, len(company.Departments)),
		Sufficiency: make(map[company.Dept]float64, len(company.Departments)),
		Facilities:  make(map[company.FacilityType]Use, len(company.FacilityTypes)),
	}

	// Even with no facilities a garage-scale base keeps a tiny company alive.
	limits := map[company.FacilityType]int{
		company.FacilityFactory: balance.GarageHeadroom,
		company.FacilityStore:   balance.GarageHeadroom,
		company.FacilityOffice:  balance.GarageHeadroom,
	}
	for _, fac := range facilities {
		limits[fac.Type] += fac.Size
	}

	// Executives and the CEO are off the floor; their management feeds back
	// as a per-department bonus instead.
	workers := make(map[company.Dept][]*company.Person)
	managers := make(map[company.Dept]*company.Person)
	officers := make(map[company.Dept]*company.Person)
	for _, p := range staff {
		d := p.Department
		if p.Role.Boardroom() {
			if officers[d] == nil {
				officers[d] = p
			}
			continue
		}
		workers[d] = append(workers[d], p)
		if p.Role == company.RoleManager && managers[d] == nil {
			managers[d] = p
		}
	}

	for _, ft := range company.FacilityTypes {
		f.Facilities[ft] = Use{Limit: limits[ft], Efficiency: 1.0}
	}
	for d, members := range workers {
		ft := company.FacilityFor(d)
		u := f.Facilities[ft]
		u.Heads += len(members) * balance.PersonScale
		f.Facilities[ft] = u
	}

	// Factories and stores drop the weakest staff outright; the shared
	// office degrades every department housed there instead.
	for _, d := range []company.Dept{company.DeptProduction, company.DeptStore} {
		ft := company.FacilityFor(d)
		if keep := limits[ft] / balance.PersonScale; len(workers[d]) > keep {
			workers[d] = topBySkill(workers[d], d, keep)
			u := f.Facilities[ft]
			u.Efficiency = float64(limits[ft]) / float64(u.Heads)
			f.Facilities[ft] = u
		}
	}
	officeEff := 1.0
	if u := f.Facilities[company.FacilityOffice]; u.Heads > u.Limit {
		officeEff = float64(u.Limit) / float64(u.Heads)
		u.Efficiency = officeEff
		f.Facilities[company.FacilityOffice] = u
	}

	for _, d := range company.Departments {
		members := workers[d]
		if len(members) == 0 {
			continue
		}

		var sum float64
		for _, p := range members {
			sum += p.EffectiveSkill(d)
		}
		avg := sum / float64(len(members))

		var bonus float64
		if m := managers[d]; m != nil {
			bonus += m.Management * balance.MgmtBonusManager
		}
		if o := officers[d]; o != nil {
			bonus += o.Management * balance.MgmtBonusExecutive
		}

		eff := 1.0
		if company.FacilityFor(d) == company.FacilityOffice {
			eff = officeEff
		}

		f.Skill[d] = math.Min(balance.AbilityMax, (avg+bonus)*eff)
		f.Capacity[d] = sum * eff * balance.PersonScale
	}

	f.Stability = averageDiligence(staff)
	if rng != nil && f.Stability < balance.StabilityThreshold {
		gap := 1 - f.Stability/balance.StabilityThreshold
		debuff := rng.Uniform(0, balance.StabilityMaxDebuff*gap)
		for _, d := range company.Departments {
			f.Skill[d] *= 1 - debuff
			f.Capacity[d] *= 1 - debuff
		}
	}

	f.Throughput = float64(len(workers[company.DeptStore])) * balance.PersonScale *
		balance.BaseSalesEff * f.Skill[company.DeptStore] / 50.0

	f.Sufficiency[company.DeptDevelopment] = sufficiency(
		f.Capacity[company.DeptDevelopment],
		balance.ReqCapacityPerDevProject*float64(w.OpenProjects))
	f.Sufficiency[company.DeptSales] = sufficiency(
		f.Capacity[company.DeptSales],
		balance.ReqCapacityPerSalesTx*float64(w.TrailingTx)+
			balance.ReqCapacityPerStockUnit*float64(w.StockedUnits))
	f.Sufficiency[company.DeptPR] = sufficiency(
		f.Capacity[company.DeptPR],
		balance.ReqCapacityPerPRPoint*w.BrandAwareness)
	heads := float64(len(staff)) * balance.PersonScale
	f.Sufficiency[company.DeptHR] = sufficiency(
		f.Capacity[company.DeptHR],
		50.0*heads/balance.HRSpanPerPerson)
	f.Sufficiency[company.DeptAccounting] = sufficiency(
		f.Capacity[company.DeptAccounting],
		balance.ReqCapacityPerAcctTx*float64(w.TrailingTx)+
			balance.ReqCapacityPerAcctHead*heads)

	return f
}

func sufficiency(capacity, requirement float64) float64 {
	if requirement <= 0 {
		return 1
	}
	return math.Min(1, capacity/requirement)
}

// topBySkill keeps the n strongest contributors for a department. Ties break
// on ID so evaluation stays reproducible.
func topBySkill(members []*company.Person, d company.Dept, n int) []*company.Person {
	sorted := make([]*company.Person, len(members))
	copy(sorted, members)
	sort.Slice(sorted, func(i, j int) bool {
		si, sj := sorted[i].EffectiveSkill(d), sorted[j].EffectiveSkill(d)
		if si != sj {
			return si > sj
		}
		return sorted[i].ID < sorted[j].ID
	})
	if n < 0 {
		n = 0
	}
	return sorted[:n]
}

func averageDiligence(staff []*company.Person) float64 {
	if len(staff) == 0 {
		return balance.StabilityThreshold
	}
	var sum float64
	for _, p := range staff {
		sum += p.Diligence
	}
	return sum / float64(len(staff))
}
