// Package product holds the product-side model: designs under development or
// on sale, and per-company inventory lines.
package product

// DesignStatus is the lifecycle state of a design.
type DesignStatus string

const (
	StatusDeveloping DesignStatus = "developing"
	StatusCompleted  DesignStatus = "completed"
	StatusObsolete   DesignStatus = "obsolete"
)

// PartChoice records which supplier fills one part slot of a design and at
// what quality and unit cost.
type PartChoice struct {
	SupplierID int64   `json:"supplier_id"`
	Score      float64 `json:"score"`
	Cost       int64   `json:"cost"`
}

// Design is a product blueprint. BasePrice is the intrinsic value used by
// market scoring; ListPrice is the maker's suggested retail price.
type Design struct {
	ID            int64        `db:"id"`
	CompanyID     int64        `db:"company_id"`
	Name          string       `db:"name"`
	MaterialScore float64      `db:"material_score"`
	ConceptScore  float64      `db:"concept_score"`
	ProdEff       float64      `db:"production_efficiency"`
	BasePrice     int64        `db:"base_price"`
	ListPrice     int64        `db:"list_price"`
	Status        DesignStatus `db:"status"`
	Strategy      string       `db:"strategy"`
	DevelopedWeek int          `db:"developed_week"`
	Awareness     float64      `db:"awareness"`

	// Parts maps part key to the chosen supplier line. Stored as JSON.
	Parts map[string]PartChoice `db:"-"`
}

// OnSale reports whether the design can be produced and sold.
func (d *Design) OnSale() bool { return d.Status == StatusCompleted }

// UnitMaterialCost sums the per-unit cost of all chosen parts.
func (d *Design) UnitMaterialCost() int64 {
	var total int64
	for _, p := range d.Parts {
		total += p.Cost
	}
	return total
}

// Stock is one company's inventory of one design. RetailPrice is set by the
// holder and may differ from the design's list price.
type Stock struct {
	ID          int64 `db:"id"`
	CompanyID   int64 `db:"company_id"`
	DesignID    int64 `db:"design_id"`
	Quantity    int   `db:"quantity"`
	RetailPrice int64 `db:"retail_price"`
}
