package engine

import (
	"math"

	"github.com/dustin/go-humanize"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/capability"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/seed"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// resolveOffers settles the week's job offers. Each candidate weighs every
// offer by salary and employer brand, takes the best one if it comes close
// enough to the asking salary, and joins as a member of the target
// department. All offers are cleared afterwards, taken or not.
func (s *Simulation) resolveOffers(w *state.World) {
	byPerson := make(map[int64][]*company.JobOffer)
	for _, o := range w.Offers {
		byPerson[o.PersonID] = append(byPerson[o.PersonID], o)
	}

	for pid, offers := range byPerson {
		p := personByID(w, pid)
		if p == nil || p.Employed() {
			continue
		}
		var best *company.JobOffer
		bestVal := -1.0
		for _, o := range offers {
			brand := 0.0
			if co := w.CompanyByID(o.CompanyID); co != nil {
				brand = co.BrandPower
			}
			if val := float64(o.OfferSalary) * (1 + brand/200); val > bestVal {
				bestVal = val
				best = o
			}
		}

		asking := p.DesiredSalary
		if asking <= 0 {
			asking = balance.BaseSalaryYearly
		}
		if float64(best.OfferSalary) < float64(asking)*0.9 {
			continue
		}
		dept := best.TargetDept
		if dept == "" {
			dept = company.DeptProduction
		}
		cid := best.CompanyID
		p.CompanyID = &cid
		p.Department = dept
		p.Role = company.RoleMember
		p.Salary = best.OfferSalary
		p.DesiredSalary = best.OfferSalary
		w.AddNews(cid, state.NewsInfo, "%s hired at ¥%s a year",
			p.Name, humanize.Comma(best.OfferSalary))
	}
	w.Offers = nil
}

// runHR runs the weekly people pass for every company: loyalty movement
// driven by HR coverage and pay satisfaction, skill growth, the yearly
// salary review, resignations and payroll.
func (s *Simulation) runHR(w *state.World, caps map[int64]capability.Figures) {
	for _, co := range w.ActiveCompanies() {
		if co.Type == company.TypeSupplier {
			continue
		}
		staff := w.StaffOf(co.ID)
		if len(staff) == 0 {
			continue
		}

		// The executive layer always contributes one skill-50 record of HR
		// coverage, which keeps small shops from death-spiraling.
		hrPower := caps[co.ID].Capacity[company.DeptHR] +
			50*balance.PersonScale
		required := 50 * float64(len(staff)*balance.PersonScale) / balance.HRSpanPerPerson
		delta := 1.0
		if hrPower < required && required > 0 {
			delta = -5 * (1 - hrPower/required)
		}

		for _, p := range staff {
			individual := delta
			if p.DesiredSalary > p.Salary {
				gap := float64(p.DesiredSalary-p.Salary) / float64(p.DesiredSalary)
				if gap > 0.05 {
					individual -= float64(int(gap * 10))
				}
			}
			p.Loyalty = clamp(p.Loyalty+individual, 0, 100)

			s.growSkills(p)

			if w.Week%balance.WeeksPerYear == 0 {
				s.reviewSalary(w, co, p)
			}

			// Payroll goes out before any resignation takes effect.
			w.Debit(co, finance.LaborCategory(p.Department), p.WeeklySalary())

			if p.Loyalty < 40 && s.rng.Chance((40-p.Loyalty)*0.005) {
				cid := co.ID
				p.CompanyID = nil
				p.Department = ""
				p.Role = ""
				p.Loyalty = 50
				p.LastResignedWeek = w.Week
				p.LastCompanyID = &cid
				w.AddNews(cid, state.NewsWarning, "%s resigned", p.Name)
			}
		}
	}
}

// growSkills applies the weekly learning curve: the department skill always,
// management for anyone with people responsibility, and the executive trait
// twice as fast from the manager level up.
func (s *Simulation) growSkills(p *company.Person) {
	growth := 0.025 * math.Pow(2, p.Adaptability/50)
	if p.Department != "" {
		p.Skills.Set(p.Department,
			math.Min(balance.AbilityMax, p.Skills.For(p.Department)+growth))
	}
	if p.Role.Managerial() {
		p.Management = math.Min(balance.AbilityMax, p.Management+growth)
	}
	if p.Role == company.RoleManager || p.Role.Boardroom() {
		p.Executive = math.Min(balance.AbilityMax, p.Executive+growth*2)
	}
	if p.IndustryAptitude < balance.AptitudeMax {
		speed := p.Adaptability / 50
		gain := (1.0 / 260.0) * speed
		if p.IndustryAptitude < 1.0 {
			// The first year in an industry teaches most of what it has to.
			gain = (0.9 / float64(balance.WeeksPerAge)) * speed
		}
		p.IndustryAptitude = math.Min(balance.AptitudeMax, p.IndustryAptitude+gain)
	}
}

// reviewSalary resets what the person thinks they are worth, off their best
// skill with a bit of self-assessment noise.
func (s *Simulation) reviewSalary(w *state.World, co *company.Company, p *company.Person) {
	best := 0.0
	for _, d := range company.Departments {
		if v := p.Skills.For(d); v > best {
			best = v
		}
	}
	desired := int64(float64(balance.BaseSalaryYearly) * best / 50 * s.rng.Uniform(0.95, 1.1))
	p.DesiredSalary = desired
	if float64(desired) > float64(p.Salary)*1.1 {
		w.AddNews(co.ID, state.NewsInfo, "%s is asking for a raise to ¥%s",
			p.Name, humanize.Comma(desired))
	}
}

// processAging ages everyone every thirteen weeks. Retirees leave the world
// outright and a school-leaver enters the labor pool for each of them.
func (s *Simulation) processAging(w *state.World) {
	for _, p := range w.People {
		p.AgeWeeks++
	}
	if w.Week%balance.WeeksPerAge != 0 {
		return
	}
	var retired []int64
	for _, p := range w.People {
		p.Age++
		p.AgeWeeks = 0
		if p.Age >= balance.RetirementAge {
			retired = append(retired, p.ID)
			if p.CompanyID != nil {
				w.AddNews(*p.CompanyID, state.NewsInfo, "%s retired at %d", p.Name, p.Age)
			}
		}
	}
	for _, id := range retired {
		w.RemovePerson(id)
		w.People = append(w.People,
			seed.NewPerson(w.NextID("person"), balance.StartAge, s.rng))
	}
}

func personByID(w *state.World, id int64) *company.Person {
	for _, p := range w.People {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
