// Package balance holds every tuning constant the simulation formulas use.
// Changing game feel should never require touching engine code.
package balance

// Time and demographics.
const (
	WeeksPerAge     = 13 // one simulated year of aging
	WeeksPerYear    = 52 // payroll and interest basis
	QuarterWeeks    = 13
	QuartersPerYear = 4
	StartAge        = 22
	RetirementAge   = 66
	PersonScale     = 8 // one staff record represents this many people
	GarageHeadroom  = 12 // headcount workable with no facility at all
	RehireBanWeeks  = 52
)

// Market.
const (
	BaseMarketDemand   = 800 // weekly consumer demand, units
	EconomicIndexMin   = 0.8
	EconomicIndexMax   = 1.2
	DemandJitter       = 0.05
	MaxRedistribPasses = 3 // unmet B2C demand beyond this is lost
)

// Company finances.
const (
	InitialCashMaker    = 1_000_000_000
	InitialCashRetailer = 1_000_000_000
	SafetyCashMargin    = 200_000_000 // working-capital floor for financing decisions
)

// Facilities. Rents are weekly, per person of size.
const (
	RentOfficePerHead  = 20_000
	RentFactoryPerHead = 12_000
	RentStorePerHead   = 30_000
	FacilityBuyRentX   = 100 // purchase price = weekly rent x this
	FacilityReleasePct = 1.5 // release when capacity exceeds need by this factor
	FacilityReleaseRun = 4   // ...for this many consecutive weeks
)

// Throughput and capability.
const (
	BaseProductionEff  = 0.27 // units per person per week at skill 50
	BaseSalesEff       = 2.0  // units per store person per week at skill 50
	HRSpanPerPerson    = 7.0  // people one skill-50 HR head can look after
	AbilityMax         = 100.0
	MgmtBonusManager   = 0.1
	MgmtBonusExecutive = 0.25
	StabilityThreshold = 50.0
	StabilityMaxDebuff = 0.5
)

// Department capacity requirements (workload -> required capacity points).
const (
	ReqCapacityPerDevProject = 2000.0
	ReqCapacityPerSalesTx    = 20.0
	ReqCapacityPerStockUnit  = 0.1
	ReqCapacityPerPRPoint    = 2.0
	ReqCapacityPerAcctTx     = 0.05
	ReqCapacityPerAcctHead   = 0.5
)

// Salaries.
const (
	BaseSalaryYearly = 4_000_000 // at skill 50
	MinSalaryYearly  = 2_000_000
)

// Product development.
const (
	DevelopmentWeeks   = 26
	DevKnowhowGain     = 0.5
	DevKnowhowEffect   = 0.05
	ConceptDecayRate   = 0.999
	ConceptScoreMin    = 1.0
	ConceptScoreMax    = 5.0
	ProductionEffMin   = 0.5
	ProductionEffMax   = 2.0
	GeniusRate         = 0.05
	AptitudeMax        = 2.0
)

// Banking.
const (
	BaseCreditRating  = 50
	InterestRateMin   = 0.01
	InterestRateMax   = 0.15
	LoanTermWeeks     = 52
	CreditLimitPerPt  = 10_000_000 // borrowing ceiling per rating point
)

// Advertising and brand.
const (
	AdCostUnit         = 1_000_000
	AdEffectBase       = 1.0
	BrandDecayBase     = 0.90
	AwarenessDecayBase = 0.85
	PRMitigation       = 0.001 // decay relief per PR capability point
)

// Pricing.
const (
	PriceAdjustRate  = 0.05
	MinProfitMargin  = 1.1  // normal price floor over material cost
	CrisisPriceFloor = 0.8  // clearance floor over material cost in CRISIS
	WholesaleRate    = 0.9  // wholesale price as share of list price
)

// Stock market.
const (
	InitialStockPrice = 50_000
	InitialShares     = 20_000
	PERBase           = 15.0
	PBRBase           = 1.0
	StockVolatility   = 0.03
	StockMaxMovePct   = 0.15
	StockDamping      = 0.7 // weight of theoretical value vs prior price
	SplitCeiling      = 500_000
	SplitBaseline     = 50_000 // target price band after a split
)

// IPO and equity actions.
const (
	IPOMinNetAssets     = 1_000_000_000
	IPOProfitWeeks      = 4
	IPOMinCreditRating  = 70
	IPONewShareRatio    = 0.2
	IPODiscount         = 0.9
	IPOFeeRate          = 0.05
	OfferingShareRatio  = 0.1
	OfferingDiscount    = 0.95
	BuybackShareRatio   = 0.02
	BuybackCashFactor   = 4   // buy back when cash > factor x safety margin
	DividendPayoutRatio = 0.3 // share of trailing profit returned when flush
)

// Quarterly reporting.
const (
	ReportMaxLateTicks = 4
	ReportLatePenalty  = 0.1 // stock damping per late tick
)

// Decision thresholds.
const (
	CrisisRunwayWeeks   = 8
	CrisisLossBurnWeeks = 4 // trailing loss deeper than this many weeks of burn forces crisis
	GrowthRunwayWeeks   = 26
	FairShareRecoveryAt = 0.8 // below this share of fair share -> recovery posture
	TargetShareGrowth   = 1.05
	RecoveryShareBoost  = 1.25
	InventoryRunway     = 2.5 // weeks of forecast sales held as stock
	RecoveryRunway      = 4.0
	RetailStockRunway   = 6.0 // weeks of throughput a retailer stocks toward
	HiringQuota         = 3
	GrowthHiringQuota   = 5
)

// Part defines one component slot of an industry's bill of materials.
type Part struct {
	Key      string
	Label    string
	BaseCost int64
}

// AutomotiveParts is the bill of materials for the only industry currently
// simulated. Costs are per unit produced.
var AutomotiveParts = []Part{
	{Key: "engine", Label: "Engine", BaseCost: 240_000},
	{Key: "drive_parts", Label: "Drivetrain", BaseCost: 240_000},
	{Key: "suspension", Label: "Suspension", BaseCost: 180_000},
	{Key: "safety", Label: "Safety systems", BaseCost: 72_000},
	{Key: "auxiliary", Label: "Auxiliaries", BaseCost: 48_000},
	{Key: "body", Label: "Body", BaseCost: 240_000},
	{Key: "interior", Label: "Interior", BaseCost: 180_000},
}

// TotalMaterialCost is the baseline per-unit cost over all parts.
func TotalMaterialCost() int64 {
	var sum int64
	for _, p := range AutomotiveParts {
		sum += p.BaseCost
	}
	return sum
}

// DevStrategy shifts the quality/efficiency balance of a development project.
type DevStrategy struct {
	Name          string
	ConceptMod    float64
	EfficiencyMod float64
}

// DevStrategies maps strategy keys to their modifiers.
var DevStrategies = map[string]DevStrategy{
	"concept_specialized":    {Name: "Concept specialized", ConceptMod: 1.5, EfficiencyMod: 0.6},
	"concept_focused":        {Name: "Concept focused", ConceptMod: 1.2, EfficiencyMod: 0.8},
	"balanced":               {Name: "Balanced", ConceptMod: 1.0, EfficiencyMod: 1.0},
	"efficiency_focused":     {Name: "Efficiency focused", ConceptMod: 0.8, EfficiencyMod: 1.2},
	"efficiency_specialized": {Name: "Efficiency specialized", ConceptMod: 0.6, EfficiencyMod: 1.5},
}

// StrategyKeys lists the development strategies in a stable order.
var StrategyKeys = []string{
	"concept_specialized",
	"concept_focused",
	"balanced",
	"efficiency_focused",
	"efficiency_specialized",
}
