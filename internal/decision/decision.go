// Package decision runs one autonomous company's weekly management loop:
// classify an operating phase, then work through financing, staffing,
// production or procurement, development, facilities, marketing, pricing and
// equity actions against the shared tick working set.
package decision

import (
	"log/slog"
	"sort"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/capability"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// Context is the shared, pre-computed view every company decides against
// within one tick. Capabilities cover all active companies so retailers can
// judge maker sales strength.
type Context struct {
	World *state.World
	Caps  map[int64]capability.Figures
	RNG   *entropy.Source
}

// Decider drives one company through its weekly decision sequence.
type Decider struct {
	ctx   *Context
	co    *company.Company
	staff []*company.Person
	caps  capability.Figures
	pers  entropy.Personality
	burn  int64
}

// New prepares a decider for one company.
func New(ctx *Context, co *company.Company) *Decider {
	d := &Decider{
		ctx:   ctx,
		co:    co,
		staff: ctx.World.StaffOf(co.ID),
		caps:  ctx.Caps[co.ID],
		pers:  entropy.PersonalityFor(co.ID),
	}
	d.burn = d.weeklyBurn()
	return d
}

// Run executes the full sequence. Order matters: fulfillment sees the stock
// level before production tops it up, matching one-week delivery lag.
func (d *Decider) Run() {
	d.classifyPhase()
	d.decideFinancing()
	d.decideLayoffs()
	d.decideHiring()
	d.decideSalary()
	d.decidePromotion()
	d.decideFulfillment()
	d.decideProduction()
	d.decideProcurement()
	d.decideDevelopment()
	d.decideFacilities()
	d.decideAdvertising()
	d.decidePricing()
	d.decideEquity()
}

// weeklyBurn is the fixed cost base: payroll, rent on leased space and loan
// interest.
func (d *Decider) weeklyBurn() int64 {
	var total int64
	for _, p := range d.staff {
		total += p.WeeklySalary()
	}
	for _, f := range d.ctx.World.FacilitiesOf(d.co.ID) {
		if !f.Owned {
			total += f.Rent
		}
	}
	for _, l := range d.ctx.World.LoansOf(d.co.ID) {
		total += finance.WeeklyInterest(l.Amount, l.AnnualRate)
	}
	return total
}

// runwayWeeks is how long cash plus unused credit covers the burn.
func (d *Decider) runwayWeeks() float64 {
	headroom := d.co.BorrowingLimit - d.ctx.World.TotalDebt(d.co.ID)
	if headroom < 0 {
		headroom = 0
	}
	liquid := d.co.Cash + headroom
	if d.burn <= 0 {
		if liquid >= 0 {
			return float64(balance.GrowthRunwayWeeks) + 1
		}
		return 0
	}
	if liquid <= 0 {
		return 0
	}
	return float64(liquid) / float64(d.burn)
}

func (d *Decider) classifyPhase() {
	runway := d.runwayWeeks()
	profit := d.ctx.World.Profit4w[d.co.ID]
	switch {
	case runway < balance.CrisisRunwayWeeks:
		d.co.Phase = company.PhaseCrisis
	case d.burn > 0 && profit < -balance.CrisisLossBurnWeeks*d.burn:
		// Cash reserves don't excuse a trailing loss this deep.
		d.co.Phase = company.PhaseCrisis
	case runway > balance.GrowthRunwayWeeks && profit > 0:
		d.co.Phase = company.PhaseGrowth
	default:
		d.co.Phase = company.PhaseStable
	}
	slog.Debug("phase classified",
		"company", d.co.Name, "phase", d.co.Phase,
		"runway_weeks", runway, "trailing_profit", profit)
}

// safetyMargin is the working-capital floor, relaxed while growing.
func (d *Decider) safetyMargin() int64 {
	if d.co.Phase == company.PhaseGrowth {
		return balance.SafetyCashMargin / 2
	}
	return balance.SafetyCashMargin
}

// decideFinancing tops cash back up over the safety margin with a new bank
// loan when the rating still allows one.
func (d *Decider) decideFinancing() {
	w := d.ctx.World
	safety := d.safetyMargin()
	if d.co.Cash >= safety {
		return
	}
	borrowable := d.co.BorrowingLimit - w.TotalDebt(d.co.ID)
	if borrowable <= 0 {
		return
	}
	target := (safety - d.co.Cash) + 100_000_000
	amount := target
	if amount > borrowable {
		amount = borrowable
	}
	w.Loans = append(w.Loans, &company.Loan{
		ID:             w.NextID("loan"),
		CompanyID:      d.co.ID,
		Amount:         amount,
		AnnualRate:     finance.LoanRate(d.co.CreditRating),
		RemainingWeeks: balance.LoanTermWeeks,
	})
	d.co.Cash += amount
	slog.Debug("financing", "company", d.co.Name, "amount", amount)
}

// decideLayoffs sheds the weakest payroll in a crisis: the staff with the
// worst best-skill-per-salary ratio go first, executives excluded.
func (d *Decider) decideLayoffs() {
	if d.co.Phase != company.PhaseCrisis {
		return
	}
	runway := d.runwayWeeks()
	count := 1
	switch {
	case runway < 2:
		count = 5
	case runway < 4:
		count = 3
	}

	var candidates []*company.Person
	for _, p := range d.staff {
		if !p.Role.Boardroom() {
			candidates = append(candidates, p)
		}
	}
	if len(candidates) <= 1 {
		return
	}
	sort.Slice(candidates, func(i, j int) bool {
		return valuePerSalary(candidates[i]) < valuePerSalary(candidates[j])
	})
	if count > len(candidates)-1 {
		count = len(candidates) - 1
	}
	w := d.ctx.World
	for _, p := range candidates[:count] {
		cid := d.co.ID
		p.CompanyID = nil
		p.Role = ""
		p.Department = ""
		p.Loyalty = 50
		p.LastResignedWeek = w.Week
		p.LastCompanyID = &cid
		w.AddNews(cid, state.NewsWarning, "%s was laid off in restructuring", p.Name)
	}
	d.staff = w.StaffOf(d.co.ID)
}

func valuePerSalary(p *company.Person) float64 {
	best := 0.0
	for _, dept := range company.Departments {
		if s := p.Skills.For(dept); s > best {
			best = s
		}
	}
	sal := p.Salary
	if sal <= 0 {
		sal = balance.MinSalaryYearly
	}
	return best / float64(sal)
}

// decideSalary grants pending raise requests while cash allows, prioritizing
// leadership and flight risks.
func (d *Decider) decideSalary() {
	if d.co.Cash < 50_000_000 || d.co.Phase == company.PhaseCrisis {
		return
	}
	for _, p := range d.staff {
		if p.DesiredSalary <= p.Salary {
			continue
		}
		important := p.Role == company.RoleManager || p.Role.Boardroom()
		atRisk := p.Loyalty < 40
		if important || atRisk || d.ctx.RNG.Chance(0.3) {
			p.Salary = p.DesiredSalary
		}
	}
}

// decidePromotion fills empty manager seats from the floor, then promotes a
// strong manager to the executive seat when the chair is vacant.
func (d *Decider) decidePromotion() {
	members := make(map[company.Dept][]*company.Person)
	managers := make(map[company.Dept][]*company.Person)
	officers := make(map[company.Dept]bool)
	for _, p := range d.staff {
		switch p.Role {
		case company.RoleManager:
			managers[p.Department] = append(managers[p.Department], p)
		case company.RoleExecutive, company.RoleCEO:
			officers[p.Department] = true
		case company.RoleMember:
			members[p.Department] = append(members[p.Department], p)
		}
	}
	w := d.ctx.World
	for _, dept := range company.Departments {
		if len(managers[dept]) == 0 && len(members[dept]) > 0 {
			best := members[dept][0]
			for _, p := range members[dept][1:] {
				if p.Management+p.Adaptability > best.Management+best.Adaptability {
					best = p
				}
			}
			best.Role = company.RoleManager
			managers[dept] = append(managers[dept], best)
			w.AddNews(d.co.ID, state.NewsInfo, "%s promoted to %s manager", best.Name, dept)
		}
		if !officers[dept] && len(managers[dept]) > 0 {
			best := managers[dept][0]
			for _, p := range managers[dept][1:] {
				if p.Executive > best.Executive {
					best = p
				}
			}
			if best.Executive >= 40 {
				best.Role = company.RoleExecutive
				w.AddNews(d.co.ID, state.NewsInfo, "%s appointed executive officer for %s", best.Name, dept)
			}
		}
	}
}

// ceoPrecision is how sharply the company reads numbers: a blend of the
// CEO's relevant skill and executive trait, or a low default with the seat
// empty.
func (d *Decider) ceoPrecision(dept company.Dept) float64 {
	var ceo *company.Person
	for _, p := range d.staff {
		if p.Role == company.RoleCEO {
			ceo = p
			break
		}
	}
	if ceo == nil {
		return 0.3
	}
	score := (ceo.Skills.For(dept)*0.3 + ceo.Executive*0.7) / 100.0
	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}
