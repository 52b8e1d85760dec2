package persistence

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jmoiron/sqlx"

	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// SaveWorld writes the complete working set back in one transaction. Entity
// tables are replaced wholesale; the append-only tables are upserted by ID,
// so re-saving loaded history is harmless.
func (db *DB) SaveWorld(w *state.World) error {
	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := saveRun(tx, w); err != nil {
		return err
	}
	if err := saveEntities(tx, w); err != nil {
		return err
	}
	if err := saveHistory(tx, w); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	slog.Info("world state saved",
		"run", w.RunID, "week", w.Week,
		"companies", len(w.Companies), "people", len(w.People))
	return nil
}

// Mutate loads the world, applies fn and saves the result. The canonical
// unit of work for a tick or a player command.
func (db *DB) Mutate(fn func(*state.World) error) error {
	w, err := db.LoadWorld()
	if err != nil {
		return err
	}
	if err := fn(w); err != nil {
		return err
	}
	return db.SaveWorld(w)
}

func saveRun(tx *sqlx.Tx, w *state.World) error {
	_, err := tx.Exec(`INSERT OR REPLACE INTO runs
		(run_id, week, economic_index, game_over) VALUES (?, ?, ?, ?)`,
		w.RunID, w.Week, w.EconomicIndex, b2i(w.GameOver))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

func saveEntities(tx *sqlx.Tx, w *state.World) error {
	tables := []string{
		"companies", "people", "facilities", "loans", "offers",
		"designs", "stocks", "orders", "reports",
	}
	for _, t := range tables {
		if _, err := tx.Exec("DELETE FROM " + t); err != nil {
			return fmt.Errorf("clear %s: %w", t, err)
		}
	}

	for _, c := range w.Companies {
		_, err := tx.Exec(`INSERT INTO companies
			(id, name, type, cash, brand_power, industry, credit_rating,
			 dev_knowhow, borrowing_limit, active, listing, shares, stock_price,
			 phase, release_run, trait_material_score, trait_cost_multiplier,
			 part_category)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.Name, c.Type, c.Cash, c.BrandPower, c.Industry,
			c.CreditRating, c.DevKnowhow, c.BorrowingLimit, b2i(c.Active),
			c.Listing, c.Shares, c.StockPrice, c.Phase, c.ReleaseRun,
			c.MaterialScore, c.CostMultiplier, c.PartCategory)
		if err != nil {
			return fmt.Errorf("insert company %d: %w", c.ID, err)
		}
	}

	stmt, err := tx.Preparex(`INSERT INTO people
		(id, name, age, age_weeks, gender, company_id, department, role,
		 salary, desired_salary, loyalty, genius, last_resigned_week,
		 last_company_id, skill_diligence, skill_management,
		 skill_adaptability, skill_store_ops, skill_production,
		 skill_development, skill_sales, skill_hr, skill_pr,
		 skill_accounting, skill_executive, industry_aptitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, p := range w.People {
		_, err := stmt.Exec(
			p.ID, p.Name, p.Age, p.AgeWeeks, p.Gender, p.CompanyID,
			p.Department, p.Role, p.Salary, p.DesiredSalary, p.Loyalty,
			b2i(p.Genius), p.LastResignedWeek, p.LastCompanyID,
			p.Diligence, p.Management, p.Adaptability, p.StoreOps,
			p.Production, p.Development, p.Sales, p.HR, p.PR,
			p.Accounting, p.Executive, p.IndustryAptitude)
		if err != nil {
			return fmt.Errorf("insert person %d: %w", p.ID, err)
		}
	}

	for _, f := range w.Facilities {
		_, err := tx.Exec(`INSERT INTO facilities
			(id, company_id, name, type, size, rent, access_score, owned)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			f.ID, f.CompanyID, f.Name, f.Type, f.Size, f.Rent,
			f.AccessScore, b2i(f.Owned))
		if err != nil {
			return fmt.Errorf("insert facility %d: %w", f.ID, err)
		}
	}

	for _, l := range w.Loans {
		_, err := tx.Exec(`INSERT INTO loans
			(id, company_id, amount, annual_rate, remaining_weeks)
			VALUES (?, ?, ?, ?, ?)`,
			l.ID, l.CompanyID, l.Amount, l.AnnualRate, l.RemainingWeeks)
		if err != nil {
			return fmt.Errorf("insert loan %d: %w", l.ID, err)
		}
	}

	for _, o := range w.Offers {
		_, err := tx.Exec(`INSERT INTO offers
			(id, week, company_id, person_id, offer_salary, target_dept)
			VALUES (?, ?, ?, ?, ?, ?)`,
			o.ID, o.Week, o.CompanyID, o.PersonID, o.OfferSalary, o.TargetDept)
		if err != nil {
			return fmt.Errorf("insert offer %d: %w", o.ID, err)
		}
	}

	for _, d := range w.Designs {
		partsJSON, err := json.Marshal(d.Parts)
		if err != nil {
			return fmt.Errorf("marshal parts of design %d: %w", d.ID, err)
		}
		_, err = tx.Exec(`INSERT INTO designs
			(id, company_id, name, material_score, concept_score,
			 production_efficiency, base_price, list_price, status, strategy,
			 developed_week, awareness, parts_json)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			d.ID, d.CompanyID, d.Name, d.MaterialScore, d.ConceptScore,
			d.ProdEff, d.BasePrice, d.ListPrice, d.Status, d.Strategy,
			d.DevelopedWeek, d.Awareness, string(partsJSON))
		if err != nil {
			return fmt.Errorf("insert design %d: %w", d.ID, err)
		}
	}

	for _, s := range w.Stocks {
		_, err := tx.Exec(`INSERT INTO stocks
			(id, company_id, design_id, quantity, retail_price)
			VALUES (?, ?, ?, ?, ?)`,
			s.ID, s.CompanyID, s.DesignID, s.Quantity, s.RetailPrice)
		if err != nil {
			return fmt.Errorf("insert stock %d: %w", s.ID, err)
		}
	}

	for _, o := range w.Orders {
		_, err := tx.Exec(`INSERT INTO orders
			(id, week, buyer_id, seller_id, design_id, quantity, amount, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			o.ID, o.Week, o.BuyerID, o.SellerID, o.DesignID,
			o.Quantity, o.Amount, o.Status)
		if err != nil {
			return fmt.Errorf("insert order %d: %w", o.ID, err)
		}
	}

	for _, r := range w.Reports {
		_, err := tx.Exec(`INSERT INTO reports
			(id, company_id, quarter, status, revenue, expenses, profit,
			 published_week, late_ticks)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.CompanyID, r.Quarter, r.Status, r.Revenue, r.Expenses,
			r.Profit, r.PublishedWeek, r.LateTicks)
		if err != nil {
			return fmt.Errorf("insert report %d: %w", r.ID, err)
		}
	}
	return nil
}

func saveHistory(tx *sqlx.Tx, w *state.World) error {
	stmt, err := tx.Preparex(`INSERT OR REPLACE INTO entries
		(id, week, company_id, category, amount) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range w.Entries {
		if _, err := stmt.Exec(e.ID, e.Week, e.CompanyID, e.Category, e.Amount); err != nil {
			return fmt.Errorf("insert entry %d: %w", e.ID, err)
		}
	}

	for _, t := range w.Transactions {
		_, err := tx.Exec(`INSERT OR REPLACE INTO transactions
			(id, week, kind, buyer_id, seller_id, design_id, quantity, amount)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.Week, t.Kind, t.BuyerID, t.SellerID, t.DesignID,
			t.Quantity, t.Amount)
		if err != nil {
			return fmt.Errorf("insert transaction %d: %w", t.ID, err)
		}
	}

	for _, n := range w.News {
		_, err := tx.Exec(`INSERT OR REPLACE INTO news
			(id, week, company_id, message, kind) VALUES (?, ?, ?, ?, ?)`,
			n.ID, n.Week, n.CompanyID, n.Message, n.Kind)
		if err != nil {
			return fmt.Errorf("insert news %d: %w", n.ID, err)
		}
	}

	for _, t := range w.StockTicks {
		_, err := tx.Exec(`INSERT OR REPLACE INTO stock_ticks
			(id, week, company_id, price, theoretical_value, market_cap)
			VALUES (?, ?, ?, ?, ?, ?)`,
			t.ID, t.Week, t.CompanyID, t.Price, t.TheoreticalValue, t.MarketCap)
		if err != nil {
			return fmt.Errorf("insert stock tick %d: %w", t.ID, err)
		}
	}

	for _, s := range w.Stats {
		_, err := tx.Exec(`INSERT OR REPLACE INTO weekly_stats
			(id, week, company_id, production, b2b_sales, b2c_sales, inventory,
			 facility_size, loan_balance, cash, revenue, expenses, labor_costs,
			 facility_costs, phase)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Week, s.CompanyID, s.Production, s.B2BSales, s.B2CSales,
			s.Inventory, s.FacilitySize, s.LoanBalance, s.Cash, s.Revenue,
			s.Expenses, s.LaborCosts, s.FacilityCosts, s.Phase)
		if err != nil {
			return fmt.Errorf("insert stat %d: %w", s.ID, err)
		}
	}

	for _, t := range w.Trends {
		_, err := tx.Exec(`INSERT OR REPLACE INTO market_trends
			(week, b2c_demand) VALUES (?, ?)`, t.Week, t.Demand)
		if err != nil {
			return fmt.Errorf("insert trend week %d: %w", t.Week, err)
		}
	}
	return nil
}
