package finance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
)

func TestWeeklyInterest(t *testing.T) {
	// 100M at 5.2% costs 100k a week.
	assert.Equal(t, int64(100_000), WeeklyInterest(100_000_000, 0.052))
}

func TestCreditRating(t *testing.T) {
	cases := []struct {
		name string
		cash int64
		debt int64
		want int
	}{
		{"base", 0, 0, 50},
		{"rich", 5_000_000_000, 0, 70},
		{"cash score capped at 20", 100_000_000_000, 0, 70},
		{"leveraged", 100_000_000, 300_000_000, 31},
		{"deep in the red", -10_000_000_000, 0, 1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, CreditRating(c.cash, c.debt))
		})
	}
}

func TestLoanRate(t *testing.T) {
	assert.InDelta(t, balance.InterestRateMax, LoanRate(0), 1e-9)
	assert.InDelta(t, balance.InterestRateMin, LoanRate(100), 1e-9)
	// Mid rating lands midway.
	assert.InDelta(t, 0.08, LoanRate(50), 1e-9)
}

func TestTheoreticalValueBlendsOnProfit(t *testing.T) {
	shares := int64(20_000)
	netAssets := int64(1_000_000_000)

	// Loss-making trades on book alone.
	book := TheoreticalValue(-1, netAssets, shares)
	assert.Equal(t, int64(50_000), book)

	// Positive profit blends in the earnings view and lifts the price.
	blended := TheoreticalValue(40_000_000, netAssets, shares)
	assert.Greater(t, blended, book)
}

func TestNextPriceClampedToMaxMove(t *testing.T) {
	rng := entropy.NewSource(11)
	prev := int64(50_000)
	for i := 0; i < 200; i++ {
		next := NextPrice(prev, 500_000, 0, rng)
		assert.LessOrEqual(t, next, int64(float64(prev)*(1+balance.StockMaxMovePct)))
		assert.GreaterOrEqual(t, next, int64(float64(prev)*(1-balance.StockMaxMovePct)))
	}
}

func TestNextPriceLatenessSlowsPull(t *testing.T) {
	// With the pull fully suppressed the price only jitters around the
	// prior close instead of racing toward a 10x theoretical value.
	rng := entropy.NewSource(12)
	var onTime, late float64
	for i := 0; i < 500; i++ {
		onTime += float64(NextPrice(50_000, 500_000, 0, rng))
		late += float64(NextPrice(50_000, 500_000, balance.ReportMaxLateTicks+6, rng))
	}
	assert.Greater(t, onTime, late)
}

func TestSplitKeepsMarketCap(t *testing.T) {
	price := int64(600_000)
	shares := int64(20_000)

	ratio := SplitRatio(price)
	assert.Equal(t, int64(12), ratio)

	newPrice := price / ratio
	newShares := shares * ratio
	assert.Equal(t, price*shares, newPrice*newShares)

	assert.Equal(t, int64(1), SplitRatio(balance.SplitCeiling))
}

func TestIPOEligible(t *testing.T) {
	assert.True(t, IPOEligible(balance.IPOMinNetAssets, 1, balance.IPOMinCreditRating))
	assert.False(t, IPOEligible(balance.IPOMinNetAssets-1, 1, 100))
	assert.False(t, IPOEligible(balance.IPOMinNetAssets, 0, 100))
	assert.False(t, IPOEligible(balance.IPOMinNetAssets, 1, balance.IPOMinCreditRating-1))
}
