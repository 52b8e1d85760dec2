package persistence

import (
	"github.com/Arashi-Shisy/0124newsim/internal/finance"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

// RecentNews returns the most recent N event log lines, newest first.
func (db *DB) RecentNews(limit int) ([]*state.News, error) {
	var news []*state.News
	err := db.conn.Select(&news,
		"SELECT * FROM news ORDER BY id DESC LIMIT ?", limit)
	return news, err
}

// NewsForCompany returns a single company's recent event log, newest first.
func (db *DB) NewsForCompany(companyID int64, limit int) ([]*state.News, error) {
	var news []*state.News
	err := db.conn.Select(&news,
		"SELECT * FROM news WHERE company_id = ? ORDER BY id DESC LIMIT ?",
		companyID, limit)
	return news, err
}

// StatsForCompany returns a company's weekly snapshots from a week onward.
func (db *DB) StatsForCompany(companyID int64, sinceWeek int) ([]*state.WeeklyStat, error) {
	var stats []*state.WeeklyStat
	err := db.conn.Select(&stats,
		"SELECT * FROM weekly_stats WHERE company_id = ? AND week >= ? ORDER BY week",
		companyID, sinceWeek)
	return stats, err
}

// ReportsForCompany returns a company's quarterly reports, oldest first.
func (db *DB) ReportsForCompany(companyID int64) ([]*finance.Report, error) {
	var reports []*finance.Report
	err := db.conn.Select(&reports,
		"SELECT * FROM reports WHERE company_id = ? ORDER BY quarter",
		companyID)
	return reports, err
}

// StockHistory returns a company's valuation snapshots, oldest first.
func (db *DB) StockHistory(companyID int64, limit int) ([]*finance.StockTick, error) {
	var ticks []*finance.StockTick
	err := db.conn.Select(&ticks,
		`SELECT * FROM (
			SELECT * FROM stock_ticks WHERE company_id = ? ORDER BY week DESC LIMIT ?
		) ORDER BY week`,
		companyID, limit)
	return ticks, err
}
