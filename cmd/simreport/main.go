// Command simreport runs a fresh world in memory for a number of weeks and
// writes a balance-check CSV: one row per simulated week with employment,
// demand, sales, cash and inventory aggregates across the economy.
package main

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/Arashi-Shisy/0124newsim/internal/balance"
	"github.com/Arashi-Shisy/0124newsim/internal/company"
	"github.com/Arashi-Shisy/0124newsim/internal/engine"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/market"
	"github.com/Arashi-Shisy/0124newsim/internal/seed"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

func main() {
	root := &cobra.Command{
		Use:   "simreport",
		Short: "Balance-check reports over a throwaway simulation run",
	}
	root.AddCommand(runCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCmd() *cobra.Command {
	var (
		weeks   int
		out     string
		runSeed int64
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Simulate N weeks in memory and export weekly aggregates",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReport(weeks, out, runSeed)
		},
	}
	cmd.Flags().IntVar(&weeks, "weeks", balance.QuarterWeeks, "number of weeks to simulate")
	cmd.Flags().StringVar(&out, "out", "simulation_report.csv", "output CSV path")
	cmd.Flags().Int64Var(&runSeed, "seed", 42, "world and simulation seed")
	return cmd
}

func runReport(weeks int, out string, runSeed int64) error {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	bold := color.New(color.Bold)
	bold.Printf("Seeding world (seed %d)...\n", runSeed)

	w := seed.NewWorld("report-run", entropy.NewSource(runSeed))
	sim := engine.New(runSeed)

	rows := make([][]string, 0, weeks)
	for i := 0; i < weeks; i++ {
		week := w.Week
		if err := sim.AdvanceTick(w); err != nil {
			return fmt.Errorf("week %d: %w", week, err)
		}
		rows = append(rows, weekRow(w, week))
		fmt.Printf("  week %d done\n", week)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	header := []string{
		"week", "unemployment_rate", "b2c_demand", "b2c_sales", "b2b_sales",
		"avg_funds_maker", "avg_funds_retail",
		"maker_inventory", "retail_inventory",
		"avg_salary", "avg_loyalty", "active_companies", "bankruptcies",
	}
	if err := cw.Write(header); err != nil {
		return err
	}
	if err := cw.WriteAll(rows); err != nil {
		return err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return err
	}

	var totalCash int64
	for _, co := range w.ActiveCompanies() {
		if co.Type != company.TypeSupplier {
			totalCash += co.Cash
		}
	}
	color.Green("Report written to %s", out)
	bold.Printf("%d weeks simulated, ¥%s held across %d active companies\n",
		weeks, humanize.Comma(totalCash), activeCount(w))
	return nil
}

// weekRow aggregates the world after the tick for week has run.
func weekRow(w *state.World, week int) []string {
	unemployed := len(w.LaborPool())
	total := len(w.People)
	rate := 0.0
	if total > 0 {
		rate = float64(unemployed) / float64(total) * 100
	}

	var b2c, b2b int64
	for _, t := range w.Transactions {
		if t.Week != week {
			continue
		}
		switch t.Kind {
		case market.TxB2C:
			b2c += t.Amount
		case market.TxB2B:
			b2b += t.Amount
		}
	}

	demand := 0
	for _, tr := range w.Trends {
		if tr.Week == week {
			demand = tr.Demand
		}
	}

	var makerFunds, retailFunds int64
	var makers, retailers int
	var makerInv, retailInv int
	for _, co := range w.ActiveCompanies() {
		switch {
		case co.MakesProducts():
			makers++
			makerFunds += co.Cash
			makerInv += inventoryOf(w, co.ID)
		case co.Type == company.TypeRetailer:
			retailers++
			retailFunds += co.Cash
			retailInv += inventoryOf(w, co.ID)
		}
	}
	if makers > 0 {
		makerFunds /= int64(makers)
	}
	if retailers > 0 {
		retailFunds /= int64(retailers)
	}

	var salarySum int64
	var loyaltySum float64
	employed := 0
	for _, p := range w.People {
		if p.Employed() {
			employed++
			salarySum += p.Salary
			loyaltySum += p.Loyalty
		}
	}
	avgSalary := int64(0)
	avgLoyalty := 0.0
	if employed > 0 {
		avgSalary = salarySum / int64(employed)
		avgLoyalty = loyaltySum / float64(employed)
	}

	var failures []string
	for _, n := range w.News {
		if n.Week == week && strings.Contains(n.Message, "bankrupt") {
			failures = append(failures, n.Message)
		}
	}

	return []string{
		fmt.Sprintf("%d", week),
		fmt.Sprintf("%.2f%%", rate),
		fmt.Sprintf("%d", demand),
		fmt.Sprintf("%d", b2c),
		fmt.Sprintf("%d", b2b),
		fmt.Sprintf("%d", makerFunds),
		fmt.Sprintf("%d", retailFunds),
		fmt.Sprintf("%d", makerInv),
		fmt.Sprintf("%d", retailInv),
		fmt.Sprintf("%d", avgSalary),
		fmt.Sprintf("%.1f", avgLoyalty),
		fmt.Sprintf("%d", activeCount(w)),
		strings.Join(failures, "; "),
	}
}

func inventoryOf(w *state.World, companyID int64) int {
	n := 0
	for _, st := range w.StocksOf(companyID) {
		n += st.Quantity
	}
	return n
}

func activeCount(w *state.World) int {
	n := 0
	for _, co := range w.ActiveCompanies() {
		if co.Type != company.TypeSupplier {
			n++
		}
	}
	return n
}
