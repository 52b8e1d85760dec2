// Package state holds the transient working set for one simulation tick.
// The persistence layer loads a World at the start of a tick, every engine
// mutates it in memory, and the whole thing is written back once at the end.
// Nothing here touches storage.
package state

import (
	"fmt"

	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/market"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
)

// NewsKind classifies a news log line.
type NewsKind string

const (
	NewsInfo    NewsKind = "info"
	NewsWarning NewsKind = "warning"
	NewsError   NewsKind = "error"
	NewsMarket  NewsKind = "market"
)

// News is one line of the narrative event log.
type News struct {
	ID        int64    `db:"id" json:"id"`
	Week      int      `db:"week" json:"week"`
	CompanyID int64    `db:"company_id" json:"company_id"`
	Message   string   `db:"message" json:"message"`
	Kind      NewsKind `db:"kind" json:"kind"`
}

// WeeklyStat is the per-company snapshot taken at the end of a tick.
type WeeklyStat struct {
	ID            int64         `db:"id" json:"id"`
	Week          int           `db:"week" json:"week"`
	CompanyID     int64         `db:"company_id" json:"company_id"`
	Production    int           `db:"production" json:"production"`
	B2BSales      int           `db:"b2b_sales" json:"b2b_sales"`
	B2CSales      int           `db:"b2c_sales" json:"b2c_sales"`
	Inventory     int           `db:"inventory" json:"inventory"`
	FacilitySize  int           `db:"facility_size" json:"facility_size"`
	LoanBalance   int64         `db:"loan_balance" json:"loan_balance"`
	Cash          int64         `db:"cash" json:"cash"`
	Revenue       int64         `db:"revenue" json:"revenue"`
	Expenses      int64         `db:"expenses" json:"expenses"`
	LaborCosts    int64         `db:"labor_costs" json:"labor_costs"`
	FacilityCosts int64         `db:"facility_costs" json:"facility_costs"`
	Phase         company.Phase `db:"phase" json:"phase"`
}

// MarketTrend records the consumer demand generated for a week.
type MarketTrend struct {
	Week   int `db:"week"`
	Demand int `db:"b2c_demand"`
}

// World is the complete in-memory state for one tick. Slices of entities are
// authoritative and written back wholesale; the append-only slices at the
// bottom are flushed as inserts.
type World struct {
	RunID         string
	Week          int
	EconomicIndex float64
	GameOver      bool

	Companies  []*company.Company
	People     []*company.Person
	Facilities []*company.Facility
	Loans      []*company.Loan
	Offers     []*company.JobOffer
	Designs    []*product.Design
	Stocks     []*product.Stock
	Orders     []*market.Order
	Reports    []*finance.Report

	// Trailing aggregates, rebuilt from recent history at the start of
	// every tick. Read-only context for decisions and valuation.
	B2BSales4w   map[int64]map[int64]int // seller -> design -> units
	MarketB2B4w  int                     // all makers, trailing four weeks
	PrevB2CSales map[int64]int           // design -> units sold last week
	TxCount4w    map[int64]int           // company -> trailing transaction count
	Profit4w     map[int64]int64         // company -> trailing net result
	QuarterRev   map[int64]int64         // company -> revenue, current quarter
	QuarterExp   map[int64]int64         // company -> expenses, current quarter

	// Append-only output of the current tick.
	Entries      []*finance.Entry
	Transactions []*market.Transaction
	News         []*News
	StockTicks   []*finance.StockTick
	Stats        []*WeeklyStat
	Trends       []*MarketTrend

	nextID map[string]int64
}

// NextID hands out identifiers for newly created entities of a kind. The
// persistence layer seeds the counters past the stored maxima.
func (w *World) NextID(kind string) int64 {
	if w.nextID == nil {
		w.nextID = make(map[string]int64)
	}
	w.nextID[kind]++
	return w.nextID[kind]
}

// SeedID fast-forwards an ID counter; later NextID calls start above it.
func (w *World) SeedID(kind string, max int64) {
	if w.nextID == nil {
		w.nextID = make(map[string]int64)
	}
	if w.nextID[kind] < max {
		w.nextID[kind] = max
	}
}

// CompanyByID returns the company or nil.
func (w *World) CompanyByID(id int64) *company.Company {
	for _, c := range w.Companies {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// ActiveCompanies returns companies that have not been liquidated. Suppliers
// are included; callers wanting only simulated businesses filter on Type.
func (w *World) ActiveCompanies() []*company.Company {
	var out []*company.Company
	for _, c := range w.Companies {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// StaffOf returns the employees of a company.
func (w *World) StaffOf(companyID int64) []*company.Person {
	var out []*company.Person
	for _, p := range w.People {
		if p.CompanyID != nil && *p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out
}

// LaborPool returns everyone currently unemployed.
func (w *World) LaborPool() []*company.Person {
	var out []*company.Person
	for _, p := range w.People {
		if p.CompanyID == nil {
			out = append(out, p)
		}
	}
	return out
}

// DesignsOf returns a company's designs, all statuses.
func (w *World) DesignsOf(companyID int64) []*product.Design {
	var out []*product.Design
	for _, d := range w.Designs {
		if d.CompanyID == companyID {
			out = append(out, d)
		}
	}
	return out
}

// DesignByID returns the design or nil.
func (w *World) DesignByID(id int64) *product.Design {
	for _, d := range w.Designs {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// StockOf returns a company's inventory line for a design, or nil.
func (w *World) StockOf(companyID, designID int64) *product.Stock {
	for _, s := range w.Stocks {
		if s.CompanyID == companyID && s.DesignID == designID {
			return s
		}
	}
	return nil
}

// EnsureStock returns the inventory line, creating an empty one at the given
// price when the company has never held the design.
func (w *World) EnsureStock(companyID, designID, price int64) *product.Stock {
	if s := w.StockOf(companyID, designID); s != nil {
		return s
	}
	s := &product.Stock{
		ID:          w.NextID("stock"),
		CompanyID:   companyID,
		DesignID:    designID,
		RetailPrice: price,
	}
	w.Stocks = append(w.Stocks, s)
	return s
}

// StocksOf returns all inventory lines a company holds.
func (w *World) StocksOf(companyID int64) []*product.Stock {
	var out []*product.Stock
	for _, s := range w.Stocks {
		if s.CompanyID == companyID {
			out = append(out, s)
		}
	}
	return out
}

// FacilitiesOf returns the facilities a company occupies.
func (w *World) FacilitiesOf(companyID int64) []*company.Facility {
	var out []*company.Facility
	for _, f := range w.Facilities {
		if f.CompanyID != nil && *f.CompanyID == companyID {
			out = append(out, f)
		}
	}
	return out
}

// VacantFacilities returns unoccupied units of a type with at least the
// given size, cheapest first by linear scan at the call site.
func (w *World) VacantFacilities(ft company.FacilityType, minSize int) []*company.Facility {
	var out []*company.Facility
	for _, f := range w.Facilities {
		if f.CompanyID == nil && f.Type == ft && f.Size >= minSize {
			out = append(out, f)
		}
	}
	return out
}

// LoansOf returns a company's outstanding loans.
func (w *World) LoansOf(companyID int64) []*company.Loan {
	var out []*company.Loan
	for _, l := range w.Loans {
		if l.CompanyID == companyID {
			out = append(out, l)
		}
	}
	return out
}

// TotalDebt sums a company's loan principal.
func (w *World) TotalDebt(companyID int64) int64 {
	var sum int64
	for _, l := range w.LoansOf(companyID) {
		sum += l.Amount
	}
	return sum
}

// PendingOrdersFor returns the pending orders a seller must answer.
func (w *World) PendingOrdersFor(sellerID int64) []*market.Order {
	var out []*market.Order
	for _, o := range w.Orders {
		if o.SellerID == sellerID && o.Status == market.OrderPending {
			out = append(out, o)
		}
	}
	return out
}

// Credit adds cash to a company and posts the matching ledger line.
func (w *World) Credit(c *company.Company, category string, amount int64) {
	c.Cash += amount
	w.AddEntry(c.ID, category, amount)
}

// Debit removes cash from a company and posts the matching ledger line.
// Cash may go negative; solvency is the bankruptcy sweep's concern.
func (w *World) Debit(c *company.Company, category string, amount int64) {
	c.Cash -= amount
	w.AddEntry(c.ID, category, amount)
}

// AddEntry appends a ledger line for the current week.
func (w *World) AddEntry(companyID int64, category string, amount int64) {
	w.Entries = append(w.Entries, &finance.Entry{
		ID:        w.NextID("entry"),
		Week:      w.Week,
		CompanyID: companyID,
		Category:  category,
		Amount:    amount,
	})
}

// AddNews appends an event log line for the current week.
func (w *World) AddNews(companyID int64, kind NewsKind, format string, args ...any) {
	w.News = append(w.News, &News{
		ID:        w.NextID("news"),
		Week:      w.Week,
		CompanyID: companyID,
		Message:   fmt.Sprintf(format, args...),
		Kind:      kind,
	})
}

// AddTransaction records a settled trade for the current week.
func (w *World) AddTransaction(kind market.TxKind, buyerID, sellerID, designID int64, qty int, amount int64) {
	w.Transactions = append(w.Transactions, &market.Transaction{
		ID:       w.NextID("transaction"),
		Week:     w.Week,
		Kind:     kind,
		BuyerID:  buyerID,
		SellerID: sellerID,
		DesignID: designID,
		Quantity: qty,
		Amount:   amount,
	})
}

// StatFor returns the current tick's stat row for a company, creating it on
// first use so phases can increment counters independently.
func (w *World) StatFor(companyID int64) *WeeklyStat {
	for _, s := range w.Stats {
		if s.CompanyID == companyID && s.Week == w.Week {
			return s
		}
	}
	s := &WeeklyStat{ID: w.NextID("stat"), Week: w.Week, CompanyID: companyID}
	w.Stats = append(w.Stats, s)
	return s
}

// B2BSold4w returns a seller's trailing four-week wholesale volume for one
// design.
func (w *World) B2BSold4w(sellerID, designID int64) int {
	if m, ok := w.B2BSales4w[sellerID]; ok {
		return m[designID]
	}
	return 0
}

// RemoveLoans drops all loans of a company, used in liquidation.
func (w *World) RemoveLoans(companyID int64) {
	kept := w.Loans[:0]
	for _, l := range w.Loans {
		if l.CompanyID != companyID {
			kept = append(kept, l)
		}
	}
	w.Loans = kept
}

// RemoveStocks drops all inventory of a company, used in liquidation.
func (w *World) RemoveStocks(companyID int64) {
	kept := w.Stocks[:0]
	for _, s := range w.Stocks {
		if s.CompanyID != companyID {
			kept = append(kept, s)
		}
	}
	w.Stocks = kept
}

// RemoveDesigns drops all designs of a company, used in liquidation.
func (w *World) RemoveDesigns(companyID int64) {
	kept := w.Designs[:0]
	for _, d := range w.Designs {
		if d.CompanyID != companyID {
			kept = append(kept, d)
		}
	}
	w.Designs = kept
}

// RemovePerson deletes a person outright, used at retirement.
func (w *World) RemovePerson(id int64) {
	kept := w.People[:0]
	for _, p := range w.People {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	w.People = kept
}
