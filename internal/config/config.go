package config

import (
	"os"
	"strconv"
	"strings"

	"goprofile/internal/errors"
)

// Sort modes accepted by the column dispatcher.
const (
	SortAscending  = "ascending"
	SortDescending = "descending"
	SortNone       = "none"
)

// Config is the complete profiling configuration. It is passed explicitly
// through every core entry point (registry construction, dispatch,
// aggregation); nothing in the core reads ambient global state. Treat a
// Config as immutable once a report run has started.
type Config struct {
	Title string

	// PoolSize is the dispatcher's degree of parallelism. Values <= 0 fall
	// back to a single worker.
	PoolSize int

	// Sort orders the returned variable mapping by column name:
	// "ascending", "descending" or "none" (keep table order).
	Sort string

	// InferTypes toggles value inspection: when false the column's declared
	// storage kind alone decides the semantic type.
	InferTypes bool

	// MemoryDeep makes memory accounting follow object references.
	MemoryDeep bool

	Numeric      NumericConfig
	Categorical  CategoricalConfig
	Correlations CorrelationsConfig
	Missing      MissingConfig
	Interactions InteractionsConfig
	Samples      SamplesConfig

	// NDuplicates caps the duplicate-row excerpt in the report.
	NDuplicates int

	Database DatabaseConfig
	Server   ServerConfig
}

// NumericConfig tunes numeric summary steps.
type NumericConfig struct {
	Quantiles []float64
	// Bins caps histogram bins; the effective bin count never exceeds the
	// column's distinct count.
	Bins int
	// ChiSquaredThreshold <= 0 disables the histogram uniformity check.
	ChiSquaredThreshold float64
	// SkewnessThreshold flags heavily skewed columns in messages.
	SkewnessThreshold float64
}

// CategoricalConfig tunes categorical summary steps.
type CategoricalConfig struct {
	// LengthStats toggles min/mean/max string length computation.
	LengthStats bool
	// CardinalityThreshold flags high-cardinality columns in messages.
	CardinalityThreshold int
	// ChiSquaredThreshold <= 0 disables the frequency uniformity check.
	ChiSquaredThreshold float64
}

// CorrelationsConfig toggles correlation methods.
type CorrelationsConfig struct {
	Pearson  bool
	Spearman bool
	Kendall  bool
	Cramers  bool
	// HighThreshold flags strongly correlated pairs in messages.
	HighThreshold float64
}

// MissingConfig toggles missing-value diagram payloads.
type MissingConfig struct {
	Bar     bool
	Matrix  bool
	Heatmap bool
}

// InteractionsConfig controls the pairwise scatter payloads.
type InteractionsConfig struct {
	Continuous bool
	// Targets restricts scatter rows; empty means all continuous columns.
	Targets []string
}

// SamplesConfig controls head/tail excerpts in the report.
type SamplesConfig struct {
	Head int
	Tail int
}

// DatabaseConfig holds report repository settings.
type DatabaseConfig struct {
	URL string
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Port string
}

// Default returns the baseline configuration used when nothing overrides it.
func Default() Config {
	return Config{
		Title:      "Profiling Report",
		PoolSize:   1,
		Sort:       SortNone,
		InferTypes: true,
		MemoryDeep: false,
		Numeric: NumericConfig{
			Quantiles:           []float64{0.05, 0.25, 0.50, 0.75, 0.95},
			Bins:                50,
			ChiSquaredThreshold: 0.999,
			SkewnessThreshold:   20,
		},
		Categorical: CategoricalConfig{
			LengthStats:          true,
			CardinalityThreshold: 50,
			ChiSquaredThreshold:  0.999,
		},
		Correlations: CorrelationsConfig{
			Pearson:       true,
			Spearman:      true,
			Kendall:       true,
			Cramers:       true,
			HighThreshold: 0.9,
		},
		Missing: MissingConfig{
			Bar:     true,
			Matrix:  true,
			Heatmap: true,
		},
		Interactions: InteractionsConfig{Continuous: true},
		Samples:      SamplesConfig{Head: 10, Tail: 10},
		NDuplicates:  10,
		Server:       ServerConfig{Port: "8080"},
	}
}

// Load builds a Config from environment variables on top of Default.
func Load() (Config, error) {
	cfg := Default()

	cfg.Title = envString("PROFILE_TITLE", cfg.Title)
	cfg.PoolSize = envInt("PROFILE_POOL_SIZE", cfg.PoolSize)
	cfg.Sort = strings.ToLower(envString("PROFILE_SORT", cfg.Sort))
	cfg.InferTypes = envBool("PROFILE_INFER_TYPES", cfg.InferTypes)
	cfg.MemoryDeep = envBool("PROFILE_MEMORY_DEEP", cfg.MemoryDeep)
	cfg.Numeric.Bins = envInt("PROFILE_HISTOGRAM_BINS", cfg.Numeric.Bins)
	cfg.Samples.Head = envInt("PROFILE_SAMPLE_HEAD", cfg.Samples.Head)
	cfg.Samples.Tail = envInt("PROFILE_SAMPLE_TAIL", cfg.Samples.Tail)
	cfg.NDuplicates = envInt("PROFILE_N_DUPLICATES", cfg.NDuplicates)
	cfg.Database.URL = envString("DATABASE_URL", cfg.Database.URL)
	cfg.Server.Port = envString("SERVER_PORT", cfg.Server.Port)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects unusable configurations early.
func (c Config) Validate() error {
	switch c.Sort {
	case SortAscending, SortDescending, SortNone:
	default:
		return errors.InvalidSort(c.Sort)
	}
	if c.Samples.Head < 0 || c.Samples.Tail < 0 {
		return errors.ConfigInvalid("sample sizes cannot be negative")
	}
	if c.NDuplicates < 0 {
		return errors.ConfigInvalid("duplicate excerpt size cannot be negative")
	}
	return nil
}

// Dump flattens the configuration for the report's package section.
func (c Config) Dump() map[string]any {
	return map[string]any{
		"title":        c.Title,
		"pool_size":    c.PoolSize,
		"sort":         c.Sort,
		"infer_types":  c.InferTypes,
		"memory_deep":  c.MemoryDeep,
		"bins":         c.Numeric.Bins,
		"quantiles":    c.Numeric.Quantiles,
		"correlations": map[string]bool{
			"pearson":  c.Correlations.Pearson,
			"spearman": c.Correlations.Spearman,
			"kendall":  c.Correlations.Kendall,
			"cramers":  c.Correlations.Cramers,
		},
		"missing_diagrams": map[string]bool{
			"bar":     c.Missing.Bar,
			"matrix":  c.Missing.Matrix,
			"heatmap": c.Missing.Heatmap,
		},
		"samples": map[string]int{
			"head": c.Samples.Head,
			"tail": c.Samples.Tail,
		},
		"n_duplicates": c.NDuplicates,
	}
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}
