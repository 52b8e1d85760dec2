package persistence

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/market"
	"github.com/Arashi-Shisy/0124newsim/internal/seed"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLoadWorldEmptyDatabase(t *testing.T) {
	db := openTestDB(t)
	_, err := db.LoadWorld()
	assert.ErrorIs(t, err, ErrNoRun)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	db := openTestDB(t)
	w := seed.NewWorld("round-trip", entropy.NewSource(1))

	w.AddEntry(1, finance.CatRevenue, 123_456)
	w.AddTransaction(market.TxB2C, 0, 1, 1, 3, 9_000_000)
	w.AddNews(1, state.NewsInfo, "week one")
	w.StatFor(1).Revenue = 123_456

	require.NoError(t, db.SaveWorld(w))

	got, err := db.LoadWorld()
	require.NoError(t, err)

	assert.Equal(t, "round-trip", got.RunID)
	assert.Equal(t, w.Week, got.Week)
	assert.Equal(t, w.EconomicIndex, got.EconomicIndex)
	assert.False(t, got.GameOver)

	require.Len(t, got.Companies, len(w.Companies))
	assert.Equal(t, w.Companies[0].Name, got.Companies[0].Name)
	assert.Equal(t, w.Companies[0].Cash, got.Companies[0].Cash)
	assert.True(t, got.Companies[0].Active)

	require.Len(t, got.People, len(w.People))
	assert.Equal(t, w.People[0].Production, got.People[0].Production)
	assert.Equal(t, w.People[0].IndustryAptitude, got.People[0].IndustryAptitude)

	require.Len(t, got.Designs, len(w.Designs))
	assert.Equal(t, w.Designs[0].Parts, got.Designs[0].Parts)
	assert.Equal(t, w.Designs[0].ListPrice, got.Designs[0].ListPrice)

	require.Len(t, got.Facilities, len(w.Facilities))
	require.Len(t, got.Stocks, len(w.Stocks))

	require.Len(t, got.Entries, 1)
	assert.Equal(t, int64(123_456), got.Entries[0].Amount)
	require.Len(t, got.Transactions, 1)
	assert.Equal(t, market.TxB2C, got.Transactions[0].Kind)
}

func TestLoadSeedsIDCountersPastStoredRows(t *testing.T) {
	db := openTestDB(t)
	w := seed.NewWorld("counters", entropy.NewSource(1))
	require.NoError(t, db.SaveWorld(w))

	got, err := db.LoadWorld()
	require.NoError(t, err)

	next := got.NextID("company")
	for _, c := range got.Companies {
		assert.Greater(t, next, c.ID)
	}
	nextPerson := got.NextID("person")
	for _, p := range got.People {
		assert.Greater(t, nextPerson, p.ID)
	}
}

func TestLoadWindowsLedgerHistory(t *testing.T) {
	db := openTestDB(t)
	w := seed.NewWorld("window", entropy.NewSource(1))

	// Two quarters of ledger lines; only the trailing one should load.
	for week := 1; week <= 26; week++ {
		w.Week = week
		w.AddEntry(1, finance.CatRevenue, int64(week))
	}
	require.NoError(t, db.SaveWorld(w))

	got, err := db.LoadWorld()
	require.NoError(t, err)
	require.Len(t, got.Entries, 13)
	assert.Equal(t, 14, got.Entries[0].Week)
	assert.Equal(t, 26, got.Entries[len(got.Entries)-1].Week)
}

func TestMutateSavesResult(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, db.SaveWorld(seed.NewWorld("mutate", entropy.NewSource(1))))

	require.NoError(t, db.Mutate(func(w *state.World) error {
		w.Companies[0].Cash = 777
		return nil
	}))

	got, err := db.LoadWorld()
	require.NoError(t, err)
	assert.Equal(t, int64(777), got.Companies[0].Cash)
}

func TestRecentNewsNewestFirst(t *testing.T) {
	db := openTestDB(t)
	w := seed.NewWorld("news", entropy.NewSource(1))
	w.AddNews(1, state.NewsInfo, "first")
	w.AddNews(1, state.NewsWarning, "second")
	require.NoError(t, db.SaveWorld(w))

	news, err := db.RecentNews(1)
	require.NoError(t, err)
	require.Len(t, news, 1)
	assert.Equal(t, "second", news[0].Message)
	assert.Equal(t, state.NewsWarning, news[0].Kind)
}
