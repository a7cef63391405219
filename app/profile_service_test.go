package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goprofile/adapters/memtable"
	"goprofile/domain/core"
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/internal/testkit"
)

func TestProfileRejectsEmptyTable(t *testing.T) {
	svc := NewProfileService(config.Default())

	_, err := svc.Profile(context.Background(), memtable.MustNew())
	require.ErrorIs(t, err, core.ErrEmptyTable)

	empty := memtable.MustNew(memtable.FloatColumn("x", nil))
	_, err = svc.Profile(context.Background(), empty)
	require.ErrorIs(t, err, core.ErrEmptyTable)
}

func TestProfileAssemblesFullReport(t *testing.T) {
	cfg := config.Default()
	cfg.Title = "Sample run"
	svc := NewProfileService(cfg)

	report, err := svc.Profile(context.Background(), testkit.SampleTable())
	require.NoError(t, err)

	assert.False(t, core.ID(report.ID).IsEmpty())
	assert.Equal(t, "Sample run", report.Analysis.Title)
	assert.False(t, report.Analysis.DateStart.After(report.Analysis.DateEnd))

	assert.Equal(t, 9, report.Table.N())
	assert.Equal(t, 4, report.Table["n_var"])
	assert.Equal(t, []string{"score", "grade", "active", "blob"}, report.Variables.Names())

	types := report.Table.TypeCounts()
	assert.Equal(t, 1, types[semtype.Numeric])
	assert.Equal(t, 1, types[semtype.Categorical])
	assert.Equal(t, 1, types[semtype.Boolean])
	assert.Equal(t, 1, types[semtype.Unsupported])

	// One exactly duplicated row over the supported columns.
	assert.Equal(t, 1, report.Table["n_duplicates"])
	require.NotEmpty(t, report.Duplicates)
	assert.Equal(t, 2, report.Duplicates[0].Count)

	require.Len(t, report.Sample, 2)
	assert.Equal(t, "head", report.Sample[0].ID)
	assert.Len(t, report.Sample[0].Rows, 9)

	msgTypes := map[profile.MessageType]bool{}
	for _, m := range report.Messages {
		msgTypes[m.Type] = true
	}
	assert.True(t, msgTypes[profile.MessageDuplicates])
	assert.True(t, msgTypes[profile.MessageMissing])
	assert.True(t, msgTypes[profile.MessageUnsupported])
	assert.True(t, msgTypes[profile.MessageZeros])

	assert.Equal(t, Version, report.Package.Version)
	assert.Equal(t, "Sample run", report.Package.Config["title"])
	assert.Contains(t, report.Missing, "bar")
}

func TestProfileAndSavePersistsReport(t *testing.T) {
	repo := testkit.NewReportRepo()
	svc := NewProfileServiceWithRepo(config.Default(), repo)

	report, err := svc.ProfileAndSave(context.Background(), testkit.SampleTable())
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Len())

	loaded, err := svc.GetReport(context.Background(), report.ID)
	require.NoError(t, err)
	assert.Equal(t, report.ID, loaded.ID)

	summaries, err := svc.ListReports(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, report.ID, summaries[0].ID)
	assert.Equal(t, 9, summaries[0].NumRows)

	require.NoError(t, svc.DeleteReport(context.Background(), report.ID))
	_, err = svc.GetReport(context.Background(), report.ID)
	require.ErrorIs(t, err, core.ErrReportNotFound)
}

func TestGetReportWithoutRepository(t *testing.T) {
	svc := NewProfileService(config.Default())
	_, err := svc.GetReport(context.Background(), core.ReportID("missing"))
	require.ErrorIs(t, err, core.ErrReportNotFound)
}
