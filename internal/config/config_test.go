package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goprofile/internal/errors"
)

func TestDefaultIsValid(t *testing.T) {
	require.NoError(t, Default().Validate())
}

func TestValidateRejectsUnknownSort(t *testing.T) {
	cfg := Default()
	cfg.Sort = "sideways"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidSort, errors.GetCode(err))
}

func TestValidateRejectsNegativeSamples(t *testing.T) {
	cfg := Default()
	cfg.Samples.Head = -1
	require.Error(t, cfg.Validate())
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("PROFILE_TITLE", "Quarterly data")
	t.Setenv("PROFILE_POOL_SIZE", "8")
	t.Setenv("PROFILE_SORT", "DESCENDING")
	t.Setenv("PROFILE_INFER_TYPES", "false")
	t.Setenv("PROFILE_HISTOGRAM_BINS", "25")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "Quarterly data", cfg.Title)
	assert.Equal(t, 8, cfg.PoolSize)
	assert.Equal(t, SortDescending, cfg.Sort)
	assert.False(t, cfg.InferTypes)
	assert.Equal(t, 25, cfg.Numeric.Bins)
}

func TestLoadRejectsBadSort(t *testing.T) {
	t.Setenv("PROFILE_SORT", "upside-down")
	_, err := Load()
	require.Error(t, err)
}

func TestDumpCarriesCoreSettings(t *testing.T) {
	dump := Default().Dump()
	assert.Equal(t, "Profiling Report", dump["title"])
	assert.Equal(t, "none", dump["sort"])
	assert.Contains(t, dump, "correlations")
	assert.Contains(t, dump, "n_duplicates")
}
