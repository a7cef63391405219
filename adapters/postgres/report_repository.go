// Package postgres persists profiling reports as JSON documents with a few
// extracted listing columns.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"goprofile/domain/core"
	"goprofile/domain/profile"
	"goprofile/internal"
	apperrors "goprofile/internal/errors"
	"goprofile/ports"
)

// Connect opens and pings a postgres connection.
func Connect(url string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, apperrors.Wrap(err, "connect to database")
	}
	return db, nil
}

const schema = `
CREATE TABLE IF NOT EXISTS profile_reports (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	n          INTEGER NOT NULL,
	n_var      INTEGER NOT NULL,
	payload    JSONB NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS idx_profile_reports_created_at
	ON profile_reports (created_at DESC);
`

// ReportRepository is the sqlx-backed ports.ReportRepository.
type ReportRepository struct {
	db  *sqlx.DB
	log *internal.Logger
}

// NewReportRepository wraps a connection.
func NewReportRepository(db *sqlx.DB) *ReportRepository {
	return &ReportRepository{db: db, log: internal.DefaultLogger}
}

// EnsureSchema creates the reports table when missing.
func (r *ReportRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return apperrors.Wrap(err, "ensure report schema")
	}
	return nil
}

type reportRow struct {
	ID      string `db:"id"`
	Payload []byte `db:"payload"`
}

type summaryRow struct {
	ID        string       `db:"id"`
	Title     string       `db:"title"`
	N         int          `db:"n"`
	NVar      int          `db:"n_var"`
	CreatedAt sql.NullTime `db:"created_at"`
}

func (r *ReportRepository) Save(ctx context.Context, report *profile.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return apperrors.Wrap(err, "encode report")
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO profile_reports (id, title, n, n_var, payload)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    n = EXCLUDED.n,
		    n_var = EXCLUDED.n_var,
		    payload = EXCLUDED.payload`,
		report.ID.String(), report.Analysis.Title,
		report.Table.N(), report.Variables.Len(), payload)
	if err != nil {
		return apperrors.WithCode(apperrors.CodeDatabaseError,
			fmt.Errorf("save report %s: %w", report.ID, err))
	}
	r.log.Debug("saved report %s (%d bytes)", report.ID, len(payload))
	return nil
}

func (r *ReportRepository) Get(ctx context.Context, id core.ReportID) (*profile.Report, error) {
	var row reportRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, payload FROM profile_reports WHERE id = $1`, id.String())
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", core.ErrReportNotFound, id)
	}
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError,
			fmt.Errorf("load report %s: %w", id, err))
	}
	var report profile.Report
	if err := json.Unmarshal(row.Payload, &report); err != nil {
		return nil, apperrors.Wrap(err, "decode report payload")
	}
	return &report, nil
}

func (r *ReportRepository) List(ctx context.Context, limit int) ([]ports.ReportSummary, error) {
	if limit <= 0 {
		limit = 50
	}
	var rows []summaryRow
	err := r.db.SelectContext(ctx, &rows, `
		SELECT id, title, n, n_var, created_at
		FROM profile_reports
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, apperrors.WithCode(apperrors.CodeDatabaseError,
			fmt.Errorf("list reports: %w", err))
	}
	out := make([]ports.ReportSummary, 0, len(rows))
	for _, row := range rows {
		summary := ports.ReportSummary{
			ID:      core.ReportID(row.ID),
			Title:   row.Title,
			NumRows: row.N,
			NumVars: row.NVar,
		}
		if row.CreatedAt.Valid {
			summary.CreatedAt = core.NewTimestamp(row.CreatedAt.Time)
		}
		out = append(out, summary)
	}
	return out, nil
}

func (r *ReportRepository) Delete(ctx context.Context, id core.ReportID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM profile_reports WHERE id = $1`, id.String())
	if err != nil {
		return apperrors.WithCode(apperrors.CodeDatabaseError,
			fmt.Errorf("delete report %s: %w", id, err))
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "delete report")
	}
	if affected == 0 {
		return fmt.Errorf("%w: %s", core.ErrReportNotFound, id)
	}
	return nil
}
