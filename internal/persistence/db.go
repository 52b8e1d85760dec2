// Package persistence stores world state in SQLite. One database file holds
// one run: the entity tables are replaced wholesale on every save, while the
// ledger, transactions, news, valuations and stats accumulate week by week.
package persistence

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection for world state persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		week INTEGER NOT NULL,
		economic_index REAL NOT NULL,
		game_over INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS companies (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		cash INTEGER NOT NULL,
		brand_power REAL NOT NULL,
		industry TEXT NOT NULL,
		credit_rating INTEGER NOT NULL,
		dev_knowhow REAL NOT NULL,
		borrowing_limit INTEGER NOT NULL,
		active INTEGER NOT NULL,
		listing TEXT NOT NULL,
		shares INTEGER NOT NULL,
		stock_price INTEGER NOT NULL,
		phase TEXT NOT NULL,
		release_run INTEGER NOT NULL,
		trait_material_score REAL NOT NULL,
		trait_cost_multiplier REAL NOT NULL,
		part_category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS people (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		age INTEGER NOT NULL,
		age_weeks INTEGER NOT NULL,
		gender TEXT NOT NULL,
		company_id INTEGER,
		department TEXT NOT NULL,
		role TEXT NOT NULL,
		salary INTEGER NOT NULL,
		desired_salary INTEGER NOT NULL,
		loyalty REAL NOT NULL,
		genius INTEGER NOT NULL,
		last_resigned_week INTEGER NOT NULL,
		last_company_id INTEGER,
		skill_diligence REAL NOT NULL,
		skill_management REAL NOT NULL,
		skill_adaptability REAL NOT NULL,
		skill_store_ops REAL NOT NULL,
		skill_production REAL NOT NULL,
		skill_development REAL NOT NULL,
		skill_sales REAL NOT NULL,
		skill_hr REAL NOT NULL,
		skill_pr REAL NOT NULL,
		skill_accounting REAL NOT NULL,
		skill_executive REAL NOT NULL,
		industry_aptitude REAL NOT NULL
	);

	CREATE TABLE IF NOT EXISTS facilities (
		id INTEGER PRIMARY KEY,
		company_id INTEGER,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		size INTEGER NOT NULL,
		rent INTEGER NOT NULL,
		access_score TEXT NOT NULL,
		owned INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS loans (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		annual_rate REAL NOT NULL,
		remaining_weeks INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS offers (
		id INTEGER PRIMARY KEY,
		week INTEGER NOT NULL,
		company_id INTEGER NOT NULL,
		person_id INTEGER NOT NULL,
		offer_salary INTEGER NOT NULL,
		target_dept TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS designs (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		name TEXT NOT NULL,
		material_score REAL NOT NULL,
		concept_score REAL NOT NULL,
		production_efficiency REAL NOT NULL,
		base_price INTEGER NOT NULL,
		list_price INTEGER NOT NULL,
		status TEXT NOT NULL,
		strategy TEXT NOT NULL,
		developed_week INTEGER NOT NULL,
		awareness REAL NOT NULL,
		parts_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stocks (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		design_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		retail_price INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS orders (
		id INTEGER PRIMARY KEY,
		week INTEGER NOT NULL,
		buyer_id INTEGER NOT NULL,
		seller_id INTEGER NOT NULL,
		design_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		amount INTEGER NOT NULL,
		status TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY,
		company_id INTEGER NOT NULL,
		quarter INTEGER NOT NULL,
		status TEXT NOT NULL,
		revenue INTEGER NOT NULL,
		expenses INTEGER NOT NULL,
		profit INTEGER NOT NULL,
		published_week INTEGER NOT NULL,
		late_ticks INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS entries (
		id INTEGER PRIMARY KEY,
		week INTEGER NOT NULL,
		company_id INTEGER NOT NULL,
		category TEXT NOT NULL,
		amount INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS transactions (
		id INTEGER PRIMARY KEY,
		week INTEGER NOT NULL,
		kind TEXT NOT NULL,
		buyer_id INTEGER NOT NULL,
		seller_id INTEGER NOT NULL,
		design_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL,
		amount INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY,
		week INTEGER NOT NULL,
		company_id INTEGER NOT NULL,
		message TEXT NOT NULL,
		kind TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS stock_ticks (
		id INTEGER PRIMARY KEY,
		week INTEGER NOT NULL,
		company_id INTEGER NOT NULL,
		price INTEGER NOT NULL,
		theoretical_value INTEGER NOT NULL,
		market_cap INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS weekly_stats (
		id INTEGER PRIMARY KEY,
		week INTEGER NOT NULL,
		company_id INTEGER NOT NULL,
		production INTEGER NOT NULL,
		b2b_sales INTEGER NOT NULL,
		b2c_sales INTEGER NOT NULL,
		inventory INTEGER NOT NULL,
		facility_size INTEGER NOT NULL,
		loan_balance INTEGER NOT NULL,
		cash INTEGER NOT NULL,
		revenue INTEGER NOT NULL,
		expenses INTEGER NOT NULL,
		labor_costs INTEGER NOT NULL,
		facility_costs INTEGER NOT NULL,
		phase TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS market_trends (
		week INTEGER PRIMARY KEY,
		b2c_demand INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_entries_week ON entries(week);
	CREATE INDEX IF NOT EXISTS idx_transactions_week ON transactions(week);
	CREATE INDEX IF NOT EXISTS idx_news_week ON news(week);
	CREATE INDEX IF NOT EXISTS idx_stock_ticks_company ON stock_ticks(company_id);
	CREATE INDEX IF NOT EXISTS idx_weekly_stats_company ON weekly_stats(company_id);
	`
	_, err := db.conn.Exec(schema)
	return err
}

func b2i(v bool) int {
	if v {
		return 1
	}
	return 0
}
