// Package market implements the two clearing algorithms: the B2B order
// lifecycle between makers and retailers, and weekly consumer demand
// allocation across retail shelves. Everything here is pure over in-memory
// snapshots; cash and inventory settlement belongs to the engine.
package market

import (
	"errors"
	"math"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
)

// OrderStatus is the lifecycle state of a B2B order.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderAccepted  OrderStatus = "accepted"
	OrderRejected  OrderStatus = "rejected"
	OrderExpired   OrderStatus = "expired"
	OrderCompleted OrderStatus = "completed"
)

// Order is a wholesale purchase request. Quantity and Amount shrink in place
// when the seller accepts partially.
type Order struct {
	ID       int64       `db:"id"`
	Week     int         `db:"week"`
	BuyerID  int64       `db:"buyer_id"`
	SellerID int64       `db:"seller_id"`
	DesignID int64       `db:"design_id"`
	Quantity int         `db:"quantity"`
	Amount   int64       `db:"amount"`
	Status   OrderStatus `db:"status"`
}

// ErrZeroQuantity rejects orders that would make the unit price undefined.
var ErrZeroQuantity = errors.New("market: order quantity must be positive")

// NewOrder builds a pending order at the given unit price.
func NewOrder(week int, buyerID, sellerID, designID int64, qty int, unitPrice int64) (*Order, error) {
	if qty <= 0 {
		return nil, ErrZeroQuantity
	}
	return &Order{
		Week:     week,
		BuyerID:  buyerID,
		SellerID: sellerID,
		DesignID: designID,
		Quantity: qty,
		Amount:   unitPrice * int64(qty),
		Status:   OrderPending,
	}, nil
}

// UnitPrice recovers the per-unit price an order was placed at.
func (o *Order) UnitPrice() int64 { return o.Amount / int64(o.Quantity) }

// TxKind distinguishes wholesale from consumer transactions.
type TxKind string

const (
	TxB2B TxKind = "b2b"
	TxB2C TxKind = "b2c"
)

// Transaction is the record of a settled trade. BuyerID is zero for consumer
// sales.
type Transaction struct {
	ID       int64  `db:"id"`
	Week     int    `db:"week"`
	Kind     TxKind `db:"kind"`
	BuyerID  int64  `db:"buyer_id"`
	SellerID int64  `db:"seller_id"`
	DesignID int64  `db:"design_id"`
	Quantity int    `db:"quantity"`
	Amount   int64  `db:"amount"`
}

// Fulfill runs a seller's acceptance pass over its pending orders against an
// inventory snapshot. Shortfalls are accepted partially at the original unit
// price; only a true stock-out rejects. The snapshot is drawn down so later
// orders in the same pass see the committed stock.
func Fulfill(orders []*Order, stock map[int64]int) {
	for _, o := range orders {
		if o.Status != OrderPending {
			continue
		}
		avail := stock[o.DesignID]
		if avail <= 0 {
			o.Status = OrderRejected
			continue
		}
		granted := o.Quantity
		if granted > avail {
			unit := o.UnitPrice()
			granted = avail
			o.Quantity = granted
			o.Amount = unit * int64(granted)
		}
		stock[o.DesignID] -= granted
		o.Status = OrderAccepted
	}
}

// ExpireStale marks pending orders from before the previous week as expired,
// giving sellers one full tick to respond. It returns the expired orders.
func ExpireStale(orders []*Order, week int) []*Order {
	var expired []*Order
	for _, o := range orders {
		if o.Status == OrderPending && o.Week < week-1 {
			o.Status = OrderExpired
			expired = append(expired, o)
		}
	}
	return expired
}

// WeeklyDemand draws the consumer demand figure for one tick.
func WeeklyDemand(economicIndex float64, rng *entropy.Source) int {
	return int(balance.BaseMarketDemand * economicIndex * rng.Uniform(0.95, 1.05))
}

// ScoreInput carries everything consumer scoring looks at for one shelf line.
type ScoreInput struct {
	RetailBrand   float64
	StoreOps      float64 // retailer's store capability, 0-100
	ConceptScore  float64
	MaterialScore float64
	MakerBrand    float64
	Awareness     float64
	BasePrice     int64 // the design's intrinsic value price
	RetailPrice   int64
	PrevSold      int // this design's consumer sales last week
}

// Score rates one shelf line for demand allocation. Customers reward value
// below the intrinsic price quadratically, chase last week's winners
// logarithmically, and wander with per-line preference noise.
func Score(in ScoreInput, rng *entropy.Source) float64 {
	storeScore := (1 + in.RetailBrand/100) * (1 + in.StoreOps/100)

	priceRatio := 1.0
	if in.BasePrice > 0 {
		priceRatio = float64(in.RetailPrice) / float64(in.BasePrice)
	}
	priceFactor := priceRatio * priceRatio

	productScore := in.ConceptScore * in.MaterialScore *
		(1 + in.MakerBrand/100) * (1 + in.Awareness/100) / priceFactor

	trend := rng.Uniform(0.8, 1.2)
	bandwagon := 1.0 + math.Log1p(float64(in.PrevSold))*0.15
	noise := rng.Gauss(1.0, 0.15)

	return storeScore * productScore * trend * bandwagon * noise
}

// Line is one scored shelf line entering demand allocation.
type Line struct {
	StockID   int64
	CompanyID int64
	DesignID  int64
	Quantity  int
	Score     float64
}

// AllocateDemand splits demand across lines proportionally to score, capped
// per line by remaining stock and the retailer's remaining weekly throughput.
// Demand a line could not absorb is redistributed for a bounded number of
// passes; whatever is left after that is lost, not backlogged. Returns units
// sold per stock ID.
func AllocateDemand(demand int, lines []*Line, throughput map[int64]float64, rng *entropy.Source) map[int64]int {
	sold := make(map[int64]int, len(lines))
	remaining := demand

	for pass := 0; pass < balance.MaxRedistribPasses && remaining > 0; pass++ {
		var active []*Line
		total := 0.0
		for _, l := range lines {
			if l.Quantity-sold[l.StockID] > 0 && throughput[l.CompanyID] > 0 {
				active = append(active, l)
				total += l.Score
			}
		}
		if len(active) == 0 || total == 0 {
			break
		}

		roundDemand := remaining
		remaining = 0
		for _, l := range active {
			want := rng.PRound(float64(roundDemand) * l.Score / total)
			capacity := rng.PRound(throughput[l.CompanyID])

			got := want
			if left := l.Quantity - sold[l.StockID]; got > left {
				got = left
			}
			if got > capacity {
				got = capacity
			}
			if got > 0 {
				sold[l.StockID] += got
				throughput[l.CompanyID] -= float64(got)
			}
			if want > got {
				remaining += want - got
			}
		}
	}
	return sold
}
