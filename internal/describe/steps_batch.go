package describe

import (
	"sort"

	mstats "github.com/montanaflynn/stats"

	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/ports"
)

// Summary steps for the batch engine. A group step receives every column of
// one storage partition in a single call, mirroring backends that compute
// per-partition aggregates in one scan. The statistic panel is deliberately
// narrower than the memory engine's: only what a single-pass aggregation can
// produce cheaply.

func describeCountsGroup(cfg config.Config) GroupStep {
	return liftColumnStep(describeCounts(cfg))
}

func describeGenericGroup(cfg config.Config) GroupStep {
	return liftColumnStep(describeGeneric(cfg))
}

func describeSupportedGroup(config.Config) GroupStep {
	return func(cols []ports.Column, t semtype.Type, acc GroupDescriptions) (semtype.Type, GroupDescriptions, error) {
		for _, col := range cols {
			supportedInto(col, acc[col.Name()])
		}
		return t, acc, nil
	}
}

// describeNumericGroup computes the single-pass numeric panel per column:
// moments, bounds, quantiles, zeros and the histogram, without the
// order-sensitive statistics (monotonicity, mad) the memory engine adds.
func describeNumericGroup(cfg config.Config) GroupStep {
	return func(cols []ports.Column, t semtype.Type, acc GroupDescriptions) (semtype.Type, GroupDescriptions, error) {
		for _, col := range cols {
			desc := acc[col.Name()]
			values := presentFloats(col)
			nZeros := 0
			for _, f := range values {
				if f == 0 {
					nZeros++
				}
			}
			desc["n_zeros"] = nZeros
			if n := col.Len(); n > 0 {
				desc["p_zeros"] = float64(nZeros) / float64(n)
			}
			if len(values) == 0 {
				continue
			}
			if v, err := mstats.Mean(values); err == nil {
				desc["mean"] = v
			}
			if v, err := mstats.StandardDeviationSample(values); err == nil {
				desc["std"] = v
			}
			if v, err := mstats.SampleVariance(values); err == nil {
				desc["variance"] = v
			}
			if v, err := mstats.Min(values); err == nil {
				desc["min"] = v
			}
			if v, err := mstats.Max(values); err == nil {
				desc["max"] = v
			}
			if v, err := mstats.Sum(values); err == nil {
				desc["sum"] = v
			}
			sorted := append([]float64(nil), values...)
			sort.Float64s(sorted)
			for _, q := range cfg.Numeric.Quantiles {
				desc[quantileKey(q)] = quantile(sorted, q)
			}
			desc["range"] = sorted[len(sorted)-1] - sorted[0]
			if counts, edges := histogramBins(sorted, effectiveBins(cfg.Numeric.Bins, sorted)); counts != nil {
				desc["histogram"] = profile.Histogram{Counts: counts, BinEdges: edges}
			}
		}
		return t, acc, nil
	}
}

func describeCategoricalGroup(config.Config) GroupStep {
	return func(cols []ports.Column, t semtype.Type, acc GroupDescriptions) (semtype.Type, GroupDescriptions, error) {
		for _, col := range cols {
			desc := acc[col.Name()]
			counts := categoryCounts(presentValues(col))
			if len(counts) == 0 {
				continue
			}
			top, freq := topCategory(counts)
			desc["top"] = top
			desc["freq"] = freq
		}
		return t, acc, nil
	}
}

func describeBooleanGroup(config.Config) GroupStep {
	return func(cols []ports.Column, t semtype.Type, acc GroupDescriptions) (semtype.Type, GroupDescriptions, error) {
		for _, col := range cols {
			desc := acc[col.Name()]
			nTrue := 0
			present := 0
			for _, v := range col.Values() {
				b, ok := semtype.AsBool(v)
				if !ok {
					continue
				}
				present++
				if b {
					nTrue++
				}
			}
			desc["n_true"] = nTrue
			desc["n_false"] = present - nTrue
			if present > 0 {
				desc["p_true"] = float64(nTrue) / float64(present)
			}
		}
		return t, acc, nil
	}
}

// liftColumnStep applies a per-column step to every column of a group.
func liftColumnStep(step ColumnStep) GroupStep {
	return func(cols []ports.Column, t semtype.Type, acc GroupDescriptions) (semtype.Type, GroupDescriptions, error) {
		for _, col := range cols {
			if _, _, err := step(col, t, acc[col.Name()]); err != nil {
				return t, acc, err
			}
		}
		return t, acc, nil
	}
}
