// Package finance covers everything denominated in yen that is not a trade:
// the ledger, bank credit, stock valuation, IPOs and quarterly reporting.
// Functions here are pure; the engine applies their results to world state.
package finance

import (
	"math"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
)

// Ledger categories. Labor and rent fan out per department and facility
// type via LaborCategory and RentCategory.
const (
	CatRevenue          = "revenue"
	CatCOGS             = "cogs"
	CatMaterial         = "material"
	CatStockPurchase    = "stock_purchase"
	CatAd               = "ad"
	CatInterest         = "interest"
	CatFacilityPurchase = "facility_purchase"
	CatIPOProceeds      = "ipo_proceeds"
	CatOfferingProceeds = "offering_proceeds"
	CatBuyback          = "buyback"
	CatDividend         = "dividend"
)

// LaborCategory tags payroll by department.
func LaborCategory(d company.Dept) string {
	switch d {
	case company.DeptProduction:
		return "labor_production"
	case company.DeptStore:
		return "labor_store"
	case company.DeptSales:
		return "labor_sales"
	case company.DeptDevelopment:
		return "labor_dev"
	case company.DeptHR:
		return "labor_hr"
	case company.DeptPR:
		return "labor_pr"
	case company.DeptAccounting:
		return "labor_accounting"
	}
	return "labor"
}

// RentCategory tags rent by facility type.
func RentCategory(ft company.FacilityType) string {
	switch ft {
	case company.FacilityFactory:
		return "rent_factory"
	case company.FacilityStore:
		return "rent_store"
	case company.FacilityOffice:
		return "rent_office"
	}
	return "rent"
}

// Entry is one append-only ledger line.
type Entry struct {
	ID        int64  `db:"id"`
	Week      int    `db:"week"`
	CompanyID int64  `db:"company_id"`
	Category  string `db:"category"`
	Amount    int64  `db:"amount"`
}

// StockTick is a per-week valuation snapshot.
type StockTick struct {
	ID               int64 `db:"id" json:"id"`
	Week             int   `db:"week" json:"week"`
	CompanyID        int64 `db:"company_id" json:"company_id"`
	Price            int64 `db:"price" json:"price"`
	TheoreticalValue int64 `db:"theoretical_value" json:"theoretical_value"`
	MarketCap        int64 `db:"market_cap" json:"market_cap"`
}

// ReportStatus is the lifecycle state of a quarterly report.
type ReportStatus string

const (
	ReportDraft     ReportStatus = "draft"
	ReportPublished ReportStatus = "published"
	ReportDelayed   ReportStatus = "delayed"
)

// Report is one company's quarterly closing. It stays a draft until the
// accounting department clears the workload, or is force-published late.
type Report struct {
	ID            int64        `db:"id" json:"id"`
	CompanyID     int64        `db:"company_id" json:"company_id"`
	Quarter       int          `db:"quarter" json:"quarter"`
	Status        ReportStatus `db:"status" json:"status"`
	Revenue       int64        `db:"revenue" json:"revenue"`
	Expenses      int64        `db:"expenses" json:"expenses"`
	Profit        int64        `db:"profit" json:"profit"`
	PublishedWeek int          `db:"published_week" json:"published_week"`
	LateTicks     int          `db:"late_ticks" json:"late_ticks"`
}

// WeeklyInterest is one week's interest on a loan.
func WeeklyInterest(amount int64, annualRate float64) int64 {
	return int64(float64(amount) * annualRate / balance.WeeksPerYear)
}

// CreditRating derives a 1-100 score from cash on hand and leverage.
// Negative cash drags the score below the base.
func CreditRating(cash, totalDebt int64) int {
	fundScore := cash / 100_000_000
	if fundScore > 20 {
		fundScore = 20
	}
	penalty := int64(0)
	if cash > 0 && totalDebt > cash*2 {
		penalty = 20
	}
	r := balance.BaseCreditRating + fundScore - penalty
	if r < 1 {
		r = 1
	}
	if r > 100 {
		r = 100
	}
	return int(r)
}

// CreditLimit is the borrowing ceiling a rating grants.
func CreditLimit(rating int) int64 {
	return int64(rating) * balance.CreditLimitPerPt
}

// LoanRate prices a new loan off the borrower's rating.
func LoanRate(rating int) float64 {
	rate := balance.InterestRateMax -
		float64(rating)/100.0*(balance.InterestRateMax-balance.InterestRateMin)
	return math.Max(balance.InterestRateMin, rate)
}

// TheoreticalValue prices one share. With positive trailing profit the
// earnings view and the book view split the weight evenly; a loss-making
// company trades on book value alone.
func TheoreticalValue(trailingProfit4w, netAssets, shares int64) int64 {
	if shares <= 0 {
		return 0
	}
	book := float64(netAssets) / float64(shares) * balance.PBRBase
	if book < 0 {
		book = 0
	}
	if trailingProfit4w <= 0 {
		return int64(math.Max(1, book))
	}
	yearly := float64(trailingProfit4w) * (balance.WeeksPerYear / 4.0)
	eps := yearly / float64(shares)
	earnings := eps * balance.PERBase
	return int64(math.Max(1, (earnings+book)/2))
}

// NextPrice moves a stock toward its theoretical value: damped toward the
// prior close, jittered by bounded volatility, clamped to the per-tick move
// limit, and further slowed while reports are overdue.
func NextPrice(prev, theoretical int64, lateTicks int, rng *entropy.Source) int64 {
	if prev <= 0 {
		prev = 1
	}
	pull := balance.StockDamping * (1 - math.Min(1, balance.ReportLatePenalty*float64(lateTicks)))
	base := float64(prev) + (float64(theoretical)-float64(prev))*pull
	next := base * (1 + rng.Gauss(0, balance.StockVolatility))

	lo := float64(prev) * (1 - balance.StockMaxMovePct)
	hi := float64(prev) * (1 + balance.StockMaxMovePct)
	next = math.Max(lo, math.Min(hi, next))
	return int64(math.Max(1, next))
}

// SplitRatio returns the integer split ratio for a price above the ceiling,
// or 1 when no split is due. The ratio targets the baseline price band.
func SplitRatio(price int64) int64 {
	if price <= balance.SplitCeiling {
		return 1
	}
	ratio := int64(math.Round(float64(price) / balance.SplitBaseline))
	if ratio < 2 {
		ratio = 2
	}
	return ratio
}

// IPOEligible gates the listing application.
func IPOEligible(netAssets, trailingProfit4w int64, rating int) bool {
	return netAssets >= balance.IPOMinNetAssets &&
		trailingProfit4w > 0 &&
		rating >= balance.IPOMinCreditRating
}
