package company

import "github.com/Arashi-Shisy/0124newsim/internal/balance"

// Skills holds a person's 0-100 ability figures. Diligence, Management and
// Adaptability are general traits; the rest map to departments.
type Skills struct {
	Diligence    float64 `db:"skill_diligence"`
	Management   float64 `db:"skill_management"`
	Adaptability float64 `db:"skill_adaptability"`
	StoreOps     float64 `db:"skill_store_ops"`
	Production   float64 `db:"skill_production"`
	Development  float64 `db:"skill_development"`
	Sales        float64 `db:"skill_sales"`
	HR           float64 `db:"skill_hr"`
	PR           float64 `db:"skill_pr"`
	Accounting   float64 `db:"skill_accounting"`
	Executive    float64 `db:"skill_executive"`
}

// For returns the raw skill for a department.
func (s *Skills) For(d Dept) float64 {
	switch d {
	case DeptProduction:
		return s.Production
	case DeptSales:
		return s.Sales
	case DeptDevelopment:
		return s.Development
	case DeptHR:
		return s.HR
	case DeptPR:
		return s.PR
	case DeptAccounting:
		return s.Accounting
	case DeptStore:
		return s.StoreOps
	}
	return 0
}

// Set writes the skill for a department.
func (s *Skills) Set(d Dept, v float64) {
	switch d {
	case DeptProduction:
		s.Production = v
	case DeptSales:
		s.Sales = v
	case DeptDevelopment:
		s.Development = v
	case DeptHR:
		s.HR = v
	case DeptPR:
		s.PR = v
	case DeptAccounting:
		s.Accounting = v
	case DeptStore:
		s.StoreOps = v
	}
}

// Person is an employee or an unemployed candidate. CompanyID nil means the
// person sits in the labor pool.
type Person struct {
	ID               int64  `db:"id"`
	Name             string `db:"name"`
	Age              int    `db:"age"`
	AgeWeeks         int    `db:"age_weeks"` // weeks since the last birthday tick
	Gender           string `db:"gender"`
	CompanyID        *int64 `db:"company_id"`
	Department       Dept   `db:"department"`
	Role             Role   `db:"role"`
	Salary           int64  `db:"salary"`         // yearly
	DesiredSalary    int64  `db:"desired_salary"` // yearly
	Loyalty          float64 `db:"loyalty"`
	Genius           bool   `db:"genius"`
	LastResignedWeek int    `db:"last_resigned_week"`
	LastCompanyID    *int64 `db:"last_company_id"`

	Skills
	IndustryAptitude float64 `db:"industry_aptitude"`
}

// Employed reports whether the person currently holds a job.
func (p *Person) Employed() bool { return p.CompanyID != nil }

// EffectiveSkill is the department skill scaled by industry aptitude,
// capped at 100.
func (p *Person) EffectiveSkill(d Dept) float64 {
	v := p.Skills.For(d) * p.IndustryAptitude
	if v > 100 {
		v = 100
	}
	return v
}

// WeeklySalary is the weekly payroll cost of this staff record, covering
// all the people it represents.
func (p *Person) WeeklySalary() int64 {
	return p.Salary * balance.PersonScale / balance.WeeksPerYear
}
