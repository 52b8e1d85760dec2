package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/product"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// ErrNoRun reports an empty database with no saved run to load.
var ErrNoRun = errors.New("persistence: no saved run")

type runRow struct {
	RunID         string  `db:"run_id"`
	Week          int     `db:"week"`
	EconomicIndex float64 `db:"economic_index"`
	GameOver      bool    `db:"game_over"`
}

type designRow struct {
	product.Design
	PartsJSON string `db:"parts_json"`
}

// LoadWorld reads the full working set for the stored run: every entity
// table, plus enough ledger and transaction history to rebuild the trailing
// aggregates for the next tick. ID counters resume past the stored maxima.
func (db *DB) LoadWorld() (*state.World, error) {
	var run runRow
	if err := db.conn.Get(&run, "SELECT * FROM runs LIMIT 1"); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoRun
		}
		return nil, fmt.Errorf("load run: %w", err)
	}

	w := &state.World{
		RunID:         run.RunID,
		Week:          run.Week,
		EconomicIndex: run.EconomicIndex,
		GameOver:      run.GameOver,
	}

	if err := db.conn.Select(&w.Companies, "SELECT * FROM companies ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load companies: %w", err)
	}
	if err := db.conn.Select(&w.People, "SELECT * FROM people ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load people: %w", err)
	}
	if err := db.conn.Select(&w.Facilities, "SELECT * FROM facilities ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load facilities: %w", err)
	}
	if err := db.conn.Select(&w.Loans, "SELECT * FROM loans ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load loans: %w", err)
	}
	if err := db.conn.Select(&w.Offers, "SELECT * FROM offers ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load offers: %w", err)
	}
	if err := db.conn.Select(&w.Stocks, "SELECT * FROM stocks ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load stocks: %w", err)
	}
	if err := db.conn.Select(&w.Orders, "SELECT * FROM orders ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load orders: %w", err)
	}
	if err := db.conn.Select(&w.Reports, "SELECT * FROM reports ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load reports: %w", err)
	}

	var designs []designRow
	if err := db.conn.Select(&designs, "SELECT * FROM designs ORDER BY id"); err != nil {
		return nil, fmt.Errorf("load designs: %w", err)
	}
	for i := range designs {
		d := designs[i].Design
		if err := json.Unmarshal([]byte(designs[i].PartsJSON), &d.Parts); err != nil {
			return nil, fmt.Errorf("design %d parts: %w", d.ID, err)
		}
		w.Designs = append(w.Designs, &d)
	}

	// One quarter of history is enough for every trailing window the
	// engine rebuilds.
	since := run.Week - balance.QuarterWeeks
	if err := db.conn.Select(&w.Entries,
		"SELECT * FROM entries WHERE week > ? ORDER BY id", since); err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}
	if err := db.conn.Select(&w.Transactions,
		"SELECT * FROM transactions WHERE week > ? ORDER BY id", since); err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	if err := db.seedCounters(w); err != nil {
		return nil, err
	}
	return w, nil
}

// seedCounters fast-forwards the world's ID counters past everything the
// database has ever stored, including history outside the loaded window.
func (db *DB) seedCounters(w *state.World) error {
	tables := map[string]string{
		"company":     "companies",
		"person":      "people",
		"facility":    "facilities",
		"loan":        "loans",
		"offer":       "offers",
		"design":      "designs",
		"stock":       "stocks",
		"order":       "orders",
		"report":      "reports",
		"entry":       "entries",
		"transaction": "transactions",
		"news":        "news",
		"stocktick":   "stock_ticks",
		"stat":        "weekly_stats",
	}
	for kind, table := range tables {
		var max sql.NullInt64
		if err := db.conn.Get(&max, "SELECT MAX(id) FROM "+table); err != nil {
			return fmt.Errorf("max id of %s: %w", table, err)
		}
		if max.Valid {
			w.SeedID(kind, max.Int64)
		}
	}
	return nil
}
