package decision

import (
	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
)

// decideHiring scores the labor pool through an imperfect lens and leaves
// offers for the HR pass to resolve. Perception error shrinks with the HR
// department's own skill, and valuation noise shrinks with CEO precision.
func (d *Decider) decideHiring() {
	if d.co.Phase == company.PhaseCrisis {
		return
	}
	w := d.ctx.World

	quota := balance.HiringQuota
	if d.co.Phase == company.PhaseGrowth {
		quota = balance.GrowthHiringQuota
	}
	for _, o := range w.Offers {
		if o.CompanyID == d.co.ID {
			quota--
		}
	}
	if quota <= 0 {
		return
	}

	// A new head must be affordable for a while before it is offered.
	if d.co.Cash <= balance.BaseSalaryYearly*balance.PersonScale*2 {
		return
	}

	target := d.hiringTarget()

	var hrStaff []*company.Person
	for _, p := range d.staff {
		if p.Department == company.DeptHR && !p.Role.Boardroom() {
			hrStaff = append(hrStaff, p)
		}
	}
	avgHR := 0.0
	for _, p := range hrStaff {
		avgHR += p.HR
	}
	if len(hrStaff) > 0 {
		avgHR /= float64(len(hrStaff))
	}
	if avgHR > 100 {
		avgHR = 100
	}
	// Skill 100 reads candidates within +-2 points; skill 0 within +-20.
	halfRange := (40 - 36*avgHR/100) / 2

	precision := d.ceoPrecision(company.DeptHR)
	noiseRange := 0.4 * (1 - precision)

	offered := make(map[int64]bool)
	for slot := 0; slot < quota; slot++ {
		var best *company.Person
		bestScore := -1.0
		for _, cand := range w.LaborPool() {
			if offered[cand.ID] {
				continue
			}
			if cand.LastCompanyID != nil && *cand.LastCompanyID == d.co.ID &&
				w.Week-cand.LastResignedWeek < balance.RehireBanWeeks {
				continue
			}

			perceived := cand.EffectiveSkill(target) + d.ctx.RNG.Uniform(-halfRange, halfRange)
			desired := cand.DesiredSalary
			if desired <= 0 {
				desired = cand.Salary
			}
			if desired <= 0 {
				desired = balance.BaseSalaryYearly
			}
			noise := d.ctx.RNG.Uniform(1-noiseRange, 1+noiseRange)
			score := perceived / float64(desired) * noise
			if score > bestScore {
				bestScore = score
				best = cand
			}
		}
		if best == nil {
			return
		}
		salary := best.DesiredSalary
		if salary <= 0 {
			salary = balance.BaseSalaryYearly
		}
		w.Offers = append(w.Offers, &company.JobOffer{
			ID:          w.NextID("offer"),
			Week:        w.Week,
			CompanyID:   d.co.ID,
			PersonID:    best.ID,
			OfferSalary: salary,
			TargetDept:  target,
		})
		offered[best.ID] = true
	}
}

// hiringTarget picks the department the next hire should fill, by archetype.
func (d *Decider) hiringTarget() company.Dept {
	counts := make(map[company.Dept]int)
	floor := 0
	for _, p := range d.staff {
		if p.Role.Boardroom() {
			continue
		}
		counts[p.Department]++
		floor++
	}

	// HR first when the workforce outgrows what HR can look after. A
	// skill-50 HR head covers HRSpanPerPerson staff; a floor-less company
	// still manages a handful on its own.
	hrSkillSum := 0.0
	for _, p := range d.staff {
		if p.Department == company.DeptHR && !p.Role.Boardroom() {
			hrSkillSum += p.HR
		}
	}
	span := hrSkillSum / 50 * balance.HRSpanPerPerson * balance.PersonScale
	if span < 5*balance.PersonScale {
		span = 5 * balance.PersonScale
	}
	if float64(floor*balance.PersonScale) >= span*0.9 {
		return company.DeptHR
	}

	switch d.co.Type {
	case company.TypeMaker:
		switch {
		case counts[company.DeptProduction] < 5:
			return company.DeptProduction
		case counts[company.DeptProduction] < 10:
			return company.DeptDevelopment
		default:
			return company.DeptSales
		}
	case company.TypeRetailer:
		if counts[company.DeptStore] < int(float64(floor)*0.8) || floor == 0 {
			return company.DeptStore
		}
		return company.DeptSales
	}
	return company.Departments[d.ctx.RNG.Intn(len(company.Departments))]
}
