package model

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// ReconciliationRun is one persisted reconciliation execution: who it was for,
// which period, and the headline numbers. The per-invoice results themselves
// are kept only in the short-lived result cache; the run row is the durable
// audit trail.
type ReconciliationRun struct {
	ID             int64     `json:"id"`
	RunID          string    `json:"run_id"`
	ClientGSTIN    string    `json:"client_gstin,omitempty"`
	Period         string    `json:"period,omitempty"`
	RunAt          time.Time `json:"run_at"`
	PurchaseCount  int64     `json:"purchase_count"`
	Gstr2BCount    int64     `json:"gstr2b_count"`
	TotalResults   int64     `json:"total_results"`
	MatchedCount   int64     `json:"matched_count"`
	MismatchCount  int64     `json:"mismatch_count"`
	MissingIn2B    int64     `json:"missing_in_2b_count"`
	MissingInPurch int64     `json:"missing_in_purchase_count"`
	ITCAtRisk      string    `json:"itc_at_risk"`
}

// SetITCAtRisk stores the decimal as its canonical string form; SQLite keeps
// it as TEXT to avoid float drift.
func (r *ReconciliationRun) SetITCAtRisk(d decimal.Decimal) {
	r.ITCAtRisk = d.StringFixed(2)
}

func (r *ReconciliationRun) Create(db *sql.DB) error {
	if r.RunAt.IsZero() {
		r.RunAt = time.Now().UTC()
	}

	query := `
	INSERT INTO reconciliation_runs
		(run_id, client_gstin, period, run_at, purchase_count, gstr2b_count, total_results,
		 matched_count, mismatch_count, missing_in_2b_count, missing_in_purchase_count, itc_at_risk)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	stmt, err := db.Prepare(query)
	if err != nil {
		return err
	}
	defer stmt.Close()

	res, err := stmt.Exec(
		r.RunID,
		r.ClientGSTIN,
		r.Period,
		r.RunAt,
		r.PurchaseCount,
		r.Gstr2BCount,
		r.TotalResults,
		r.MatchedCount,
		r.MismatchCount,
		r.MissingIn2B,
		r.MissingInPurch,
		r.ITCAtRisk,
	)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	r.ID = id
	return nil
}

const runColumns = `id, run_id, client_gstin, period, run_at, purchase_count, gstr2b_count,
	total_results, matched_count, mismatch_count, missing_in_2b_count, missing_in_purchase_count, itc_at_risk`

func scanRun(row interface{ Scan(dest ...any) error }) (*ReconciliationRun, error) {
	var r ReconciliationRun
	err := row.Scan(
		&r.ID,
		&r.RunID,
		&r.ClientGSTIN,
		&r.Period,
		&r.RunAt,
		&r.PurchaseCount,
		&r.Gstr2BCount,
		&r.TotalResults,
		&r.MatchedCount,
		&r.MismatchCount,
		&r.MissingIn2B,
		&r.MissingInPurch,
		&r.ITCAtRisk,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

// GetRunByRunID fetches one run by its public identifier.
func GetRunByRunID(db *sql.DB, runID string) (*ReconciliationRun, error) {
	row := db.QueryRow(`SELECT `+runColumns+` FROM reconciliation_runs WHERE run_id = ?`, runID)
	return scanRun(row)
}

// ListRuns returns the most recent runs, newest first.
func ListRuns(db *sql.DB, limit int) ([]*ReconciliationRun, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM reconciliation_runs ORDER BY run_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*ReconciliationRun
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
