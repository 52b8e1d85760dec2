// Package company provides the company-side data model: companies, staff,
// facilities and loans, plus the enums the rest of the simulation keys on.
package company

import "github.com/Arashi-Shisy/0124newsim/internal/balance"

// Type is a company archetype.
type Type string

const (
	TypePlayer   Type = "player"
	TypeMaker    Type = "maker"
	TypeRetailer Type = "retail"
	TypeSupplier Type = "supplier" // system-run part supplier, not simulated
)

// Listing is a company's stock-market status.
type Listing string

const (
	ListingPrivate  Listing = "private"
	ListingApplying Listing = "applying"
	ListingPublic   Listing = "public"
)

// Phase is the derived operating posture of an autonomous company.
type Phase string

const (
	PhaseCrisis Phase = "crisis"
	PhaseStable Phase = "stable"
	PhaseGrowth Phase = "growth"
)

// Dept identifies a department. Production, development, sales and store
// are division-scoped; HR, PR and accounting serve the whole company.
type Dept string

const (
	DeptProduction  Dept = "production"
	DeptSales       Dept = "sales"
	DeptDevelopment Dept = "development"
	DeptHR          Dept = "hr"
	DeptPR          Dept = "pr"
	DeptAccounting  Dept = "accounting"
	DeptStore       Dept = "store"
)

// Departments lists all departments in a stable order.
var Departments = []Dept{
	DeptProduction, DeptSales, DeptDevelopment,
	DeptHR, DeptPR, DeptAccounting, DeptStore,
}

// Corporate reports whether the department is company-wide rather than
// division-scoped.
func (d Dept) Corporate() bool {
	return d == DeptHR || d == DeptPR || d == DeptAccounting
}

// Role is a position in the staff hierarchy.
type Role string

const (
	RoleMember           Role = "member"
	RoleAssistantManager Role = "assistant_manager"
	RoleManager          Role = "manager"
	RoleExecutive        Role = "executive"
	RoleCEO              Role = "ceo"
)

// Managerial reports whether the role carries people responsibility.
func (r Role) Managerial() bool {
	return r == RoleAssistantManager || r == RoleManager || r == RoleExecutive || r == RoleCEO
}

// Boardroom reports whether the role is excluded from department headcount.
func (r Role) Boardroom() bool {
	return r == RoleExecutive || r == RoleCEO
}

// FacilityType classifies a facility.
type FacilityType string

const (
	FacilityFactory FacilityType = "factory"
	FacilityStore   FacilityType = "store"
	FacilityOffice  FacilityType = "office"
)

// FacilityTypes lists facility types in a stable order.
var FacilityTypes = []FacilityType{FacilityFactory, FacilityStore, FacilityOffice}

// FacilityFor maps a department to the facility type that houses it.
func FacilityFor(d Dept) FacilityType {
	switch d {
	case DeptProduction:
		return FacilityFactory
	case DeptStore:
		return FacilityStore
	default:
		return FacilityOffice
	}
}

// Company is the central business entity. Phase is derived each tick by the
// decision engine and never authoritative in the store.
type Company struct {
	ID             int64   `db:"id"`
	Name           string  `db:"name"`
	Type           Type    `db:"type"`
	Cash           int64   `db:"cash"`
	BrandPower     float64 `db:"brand_power"`
	Industry       string  `db:"industry"`
	CreditRating   int     `db:"credit_rating"`
	DevKnowhow     float64 `db:"dev_knowhow"`
	BorrowingLimit int64   `db:"borrowing_limit"`
	Active         bool    `db:"active"`

	Listing     Listing `db:"listing"`
	Shares      int64   `db:"shares"`
	StockPrice  int64   `db:"stock_price"`
	Phase       Phase   `db:"phase"`
	ReleaseRun  int     `db:"release_run"` // consecutive weeks of facility surplus

	// Supplier traits; meaningful only for TypeSupplier.
	MaterialScore  float64 `db:"trait_material_score"`
	CostMultiplier float64 `db:"trait_cost_multiplier"`
	PartCategory   string  `db:"part_category"`
}

// Autonomous reports whether the decision engine runs this company.
func (c *Company) Autonomous() bool {
	return c.Type == TypeMaker || c.Type == TypeRetailer
}

// SellsRetail reports whether the company's inventory is on consumer shelves.
func (c *Company) SellsRetail() bool {
	return c.Type == TypePlayer || c.Type == TypeRetailer
}

// MakesProducts reports whether the company manufactures its own designs.
func (c *Company) MakesProducts() bool {
	return c.Type == TypePlayer || c.Type == TypeMaker
}

// Facility is a rented or owned unit of floor space. CompanyID nil means the
// unit is vacant and on the market.
type Facility struct {
	ID          int64        `db:"id"`
	CompanyID   *int64       `db:"company_id"`
	Name        string       `db:"name"`
	Type        FacilityType `db:"type"`
	Size        int          `db:"size"` // headcount capacity, in people
	Rent        int64        `db:"rent"` // weekly
	AccessScore string       `db:"access_score"`
	Owned       bool         `db:"owned"`
}

// PurchasePrice is what buying the unit outright costs.
func (f *Facility) PurchasePrice() int64 {
	return f.Rent * balance.FacilityBuyRentX
}

// Loan is outstanding bank debt.
type Loan struct {
	ID             int64   `db:"id"`
	CompanyID      int64   `db:"company_id"`
	Amount         int64   `db:"amount"`
	AnnualRate     float64 `db:"annual_rate"`
	RemainingWeeks int     `db:"remaining_weeks"`
}

// JobOffer is an open offer to an unemployed person, resolved in the HR pass
// later in the same tick.
type JobOffer struct {
	ID          int64  `db:"id"`
	Week        int    `db:"week"`
	CompanyID   int64  `db:"company_id"`
	PersonID    int64  `db:"person_id"`
	OfferSalary int64  `db:"offer_salary"`
	TargetDept  Dept   `db:"target_dept"`
}
