// Package testkit provides shared test fixtures: an in-memory report
// repository and canonical sample tables.
package testkit

import (
	"context"
	"math"
	"sync"

	"goprofile/adapters/memtable"
	"goprofile/domain/core"
	"goprofile/domain/profile"
	"goprofile/ports"
)

// ReportRepo is an in-memory ports.ReportRepository for tests.
type ReportRepo struct {
	mu      sync.Mutex
	reports map[core.ReportID]*profile.Report
	order   []core.ReportID
}

// NewReportRepo creates an empty repository.
func NewReportRepo() *ReportRepo {
	return &ReportRepo{reports: make(map[core.ReportID]*profile.Report)}
}

func (r *ReportRepo) Save(_ context.Context, report *profile.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.reports[report.ID]; !exists {
		r.order = append(r.order, report.ID)
	}
	r.reports[report.ID] = report
	return nil
}

func (r *ReportRepo) Get(_ context.Context, id core.ReportID) (*profile.Report, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	report, ok := r.reports[id]
	if !ok {
		return nil, core.ErrReportNotFound
	}
	return report, nil
}

func (r *ReportRepo) List(_ context.Context, limit int) ([]ports.ReportSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []ports.ReportSummary
	// Newest first.
	for i := len(r.order) - 1; i >= 0; i-- {
		if limit > 0 && len(out) >= limit {
			break
		}
		report := r.reports[r.order[i]]
		out = append(out, ports.ReportSummary{
			ID:        report.ID,
			Title:     report.Analysis.Title,
			NumRows:   report.Table.N(),
			NumVars:   report.Variables.Len(),
			CreatedAt: report.Analysis.DateEnd,
		})
	}
	return out, nil
}

func (r *ReportRepo) Delete(_ context.Context, id core.ReportID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.reports[id]; !ok {
		return core.ErrReportNotFound
	}
	delete(r.reports, id)
	for i, known := range r.order {
		if known == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// Len reports the number of stored reports.
func (r *ReportRepo) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.reports)
}

// SampleTable is the canonical mixed-type fixture: numeric with missing and
// zeros, categorical with repeats, a boolean flag and an unsupported
// composite column, with one exactly duplicated row.
func SampleTable() *memtable.Table {
	return memtable.MustNew(
		memtable.FloatColumn("score", []float64{50, 50, -10, 0, 0, 5, 15, -3, math.NaN()}),
		memtable.StringColumn("grade", []string{"a", "a", "b", "c", "c", "b", "a", "b", "a"}),
		memtable.BoolColumn("active", []bool{true, true, false, true, false, true, true, false, true}),
		memtable.AnyColumn("blob", []any{[]int{1}, []int{1}, nil, []int{2}, []int{3}, nil, []int{4}, []int{5}, []int{6}}),
	)
}
