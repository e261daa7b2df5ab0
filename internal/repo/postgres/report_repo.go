package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReportRepo struct {
	pool *pgxpool.Pool
}

func NewReportRepo(pool *pgxpool.Pool) *ReportRepo {
	return &ReportRepo{pool: pool}
}

type ReportRecord struct {
	ID         int64
	ReporterID int64
	ReportedID int64
	Reason     string
	Details    string
	CreatedAt  time.Time
}

func (r *ReportRepo) Create(ctx context.Context, tx pgx.Tx, reporterID, reportedID int64, reason, details string, now time.Time) (ReportRecord, error) {
	if reporterID <= 0 || reportedID <= 0 || reason == "" {
		return ReportRecord{}, fmt.Errorf("invalid report payload")
	}
	if tx == nil {
		return ReportRecord{}, fmt.Errorf("transaction is required")
	}
	if now.IsZero() {
		now = time.Now().UTC()
	}

	var rec ReportRecord
	err := tx.QueryRow(ctx, `
INSERT INTO user_reports (
	reporter_id,
	reported_id,
	reason,
	details,
	created_at
) VALUES ($1, $2, $3, $4, $5)
RETURNING id, reporter_id, reported_id, reason, details, created_at
`, reporterID, reportedID, reason, details, now.UTC()).Scan(
		&rec.ID,
		&rec.ReporterID,
		&rec.ReportedID,
		&rec.Reason,
		&rec.Details,
		&rec.CreatedAt,
	)
	if err != nil {
		return ReportRecord{}, fmt.Errorf("insert report: %w", err)
	}

	return rec, nil
}
