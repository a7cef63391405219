package ports

import (
	"context"

	"goprofile/domain/core"
	"goprofile/domain/profile"
)

// ReportSummary is a listing row for stored reports.
type ReportSummary struct {
	ID        core.ReportID  `json:"id"`
	Title     string         `json:"title"`
	NumRows   int            `json:"n"`
	NumVars   int            `json:"n_var"`
	CreatedAt core.Timestamp `json:"created_at"`
}

// ReportRepository persists finished profiling reports.
type ReportRepository interface {
	Save(ctx context.Context, report *profile.Report) error
	Get(ctx context.Context, id core.ReportID) (*profile.Report, error)
	List(ctx context.Context, limit int) ([]ReportSummary, error)
	Delete(ctx context.Context, id core.ReportID) error
}
