// Package app wires the profiling pipeline into application services: report
// assembly on top of the describe/analysis packages, and persistence through
// the report repository port.
package app

import (
	"context"
	"fmt"

	"goprofile/domain/core"
	"goprofile/domain/profile"
	"goprofile/internal"
	"goprofile/internal/analysis"
	"goprofile/internal/config"
	"goprofile/internal/describe"
	"goprofile/internal/messages"
	"goprofile/ports"
)

// Version identifies the producing library in report payloads.
const Version = "1.0.0"

// ProfileService runs full profiling passes over datasets and manages the
// resulting reports.
type ProfileService struct {
	cfg       config.Config
	describer *describe.Describer
	repo      ports.ReportRepository
	log       *internal.Logger
}

// NewProfileService builds a service without persistence; reports are
// returned to the caller only.
func NewProfileService(cfg config.Config) *ProfileService {
	return &ProfileService{
		cfg:       cfg,
		describer: describe.NewDescriber(cfg),
		log:       internal.DefaultLogger,
	}
}

// NewProfileServiceWithRepo builds a service that also persists reports.
func NewProfileServiceWithRepo(cfg config.Config, repo ports.ReportRepository) *ProfileService {
	s := NewProfileService(cfg)
	s.repo = repo
	return s
}

// Profile runs the full pipeline over a dataset and assembles the report:
// column descriptions, table aggregates, correlations, missing-value
// diagrams, scatter data, messages, samples and the duplicate-row excerpt.
// Empty datasets are rejected before any work starts.
func (s *ProfileService) Profile(ctx context.Context, ds ports.Dataset) (*profile.Report, error) {
	if ds.NumRows() == 0 || len(ds.ColumnNames()) == 0 {
		return nil, core.ErrEmptyTable
	}

	dateStart := core.Now()
	s.log.Info("profiling %d column(s) over %d row(s)", len(ds.ColumnNames()), ds.NumRows())

	vars, err := s.describer.DescribeColumns(ctx, ds)
	if err != nil {
		return nil, err
	}
	table, err := s.describer.TableStats(ds, vars)
	if err != nil {
		return nil, err
	}
	correlations, err := analysis.Correlations(ctx, ds, vars, s.cfg)
	if err != nil {
		return nil, err
	}
	missing := analysis.MissingDiagrams(ds, vars, s.cfg)
	scatter := analysis.Scatter(ds, vars, s.cfg)
	msgs := messages.Check(table, vars, correlations, s.cfg)

	duplicates, err := s.duplicateExcerpt(ds, vars)
	if err != nil {
		return nil, err
	}

	report := &profile.Report{
		ID: core.ReportID(core.NewID()),
		Analysis: profile.Analysis{
			Title:     s.cfg.Title,
			DateStart: dateStart,
			DateEnd:   core.Now(),
		},
		Table:        table,
		Variables:    vars,
		Scatter:      scatter,
		Correlations: correlations,
		Missing:      missing,
		Messages:     msgs,
		Package: profile.Package{
			Version: Version,
			Config:  s.cfg.Dump(),
		},
		Sample:     s.samples(ds),
		Duplicates: duplicates,
	}
	s.log.Info("report %s assembled with %d message(s)", report.ID, len(msgs))
	return report, nil
}

func (s *ProfileService) samples(ds ports.Dataset) []profile.Sample {
	columns := ds.ColumnNames()
	var out []profile.Sample
	if s.cfg.Samples.Head > 0 {
		out = append(out, profile.Sample{
			ID:      "head",
			Name:    "First rows",
			Columns: columns,
			Rows:    ds.Head(s.cfg.Samples.Head),
		})
	}
	if s.cfg.Samples.Tail > 0 {
		out = append(out, profile.Sample{
			ID:      "tail",
			Name:    "Last rows",
			Columns: columns,
			Rows:    ds.Tail(s.cfg.Samples.Tail),
		})
	}
	return out
}

// duplicateExcerpt lists the most repeated rows over the supported columns.
func (s *ProfileService) duplicateExcerpt(ds ports.Dataset, vars *profile.Variables) ([]profile.DuplicateRow, error) {
	if s.cfg.NDuplicates <= 0 {
		return nil, nil
	}
	supported := describe.SupportedColumns(vars)
	if len(supported) == 0 {
		return nil, nil
	}
	return ds.DuplicateRows(supported, s.cfg.NDuplicates)
}

// ProfileAndSave profiles a dataset and persists the result.
func (s *ProfileService) ProfileAndSave(ctx context.Context, ds ports.Dataset) (*profile.Report, error) {
	report, err := s.Profile(ctx, ds)
	if err != nil {
		return nil, err
	}
	if s.repo == nil {
		return report, nil
	}
	if err := s.repo.Save(ctx, report); err != nil {
		return nil, fmt.Errorf("save report %s: %w", report.ID, err)
	}
	return report, nil
}

// GetReport loads a stored report.
func (s *ProfileService) GetReport(ctx context.Context, id core.ReportID) (*profile.Report, error) {
	if s.repo == nil {
		return nil, core.ErrReportNotFound
	}
	return s.repo.Get(ctx, id)
}

// ListReports lists stored report summaries, newest first.
func (s *ProfileService) ListReports(ctx context.Context, limit int) ([]ports.ReportSummary, error) {
	if s.repo == nil {
		return nil, nil
	}
	return s.repo.List(ctx, limit)
}

// DeleteReport removes a stored report.
func (s *ProfileService) DeleteReport(ctx context.Context, id core.ReportID) error {
	if s.repo == nil {
		return core.ErrReportNotFound
	}
	return s.repo.Delete(ctx, id)
}
