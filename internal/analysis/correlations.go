// Package analysis computes the cross-column sections of a profiling report:
// correlation matrices, missing-value diagram payloads and pairwise scatter
// data. Everything here consumes the per-column descriptions produced by the
// describe pipeline and never re-infers types.
package analysis

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/ports"
)

// Correlations computes the enabled correlation matrices. Numeric methods
// (pearson, spearman, kendall) run over pairwise-complete observations of
// numeric columns; cramers runs over the categorical and boolean columns.
// Methods with fewer than two eligible columns are omitted.
func Correlations(ctx context.Context, ds ports.Dataset, vars *profile.Variables, cfg config.Config) (map[string]profile.CorrelationMatrix, error) {
	out := make(map[string]profile.CorrelationMatrix)

	numeric := columnsOfType(ds, vars, semtype.Numeric, semtype.BatchNumeric)
	if len(numeric.names) >= 2 {
		if cfg.Correlations.Pearson {
			out["pearson"] = numericMatrix(numeric, pearson)
		}
		if cfg.Correlations.Spearman {
			out["spearman"] = numericMatrix(numeric, spearman)
		}
		if cfg.Correlations.Kendall {
			out["kendall"] = numericMatrix(numeric, kendall)
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Correlations.Cramers {
		categorical := columnsOfType(ds, vars,
			semtype.Categorical, semtype.Boolean, semtype.URL, semtype.Path,
			semtype.BatchCategorical, semtype.BatchBoolean)
		if len(categorical.names) >= 2 {
			out["cramers"] = cramersMatrix(categorical)
		}
	}
	return out, nil
}

// columnSet is an ordered selection of columns with their raw values.
type columnSet struct {
	names  []string
	values [][]any
}

func columnsOfType(ds ports.Dataset, vars *profile.Variables, types ...semtype.Type) columnSet {
	var set columnSet
	for _, name := range vars.Names() {
		desc, ok := vars.Get(name)
		if !ok {
			continue
		}
		matched := false
		for _, t := range types {
			if desc.Type() == t {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		set.names = append(set.names, name)
		set.values = append(set.values, col.Values())
	}
	return set
}

func numericMatrix(set columnSet, corr func(x, y []float64) float64) profile.CorrelationMatrix {
	k := len(set.names)
	values := make([][]float64, k)
	for i := range values {
		values[i] = make([]float64, k)
		values[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			x, y := completePairs(set.values[i], set.values[j])
			r := 0.0
			if len(x) >= 2 {
				r = corr(x, y)
				if math.IsNaN(r) || math.IsInf(r, 0) {
					r = 0
				}
			}
			values[i][j] = r
			values[j][i] = r
		}
	}
	return profile.CorrelationMatrix{Columns: append([]string(nil), set.names...), Values: values}
}

// completePairs keeps the rows where both columns carry a numeric value.
func completePairs(a, b []any) ([]float64, []float64) {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var x, y []float64
	for i := 0; i < n; i++ {
		fa, oka := semtype.AsFloat(a[i])
		fb, okb := semtype.AsFloat(b[i])
		if !oka || !okb || math.IsNaN(fa) || math.IsNaN(fb) {
			continue
		}
		x = append(x, fa)
		y = append(y, fb)
	}
	return x, y
}

func pearson(x, y []float64) float64 {
	return stat.Correlation(x, y, nil)
}

func spearman(x, y []float64) float64 {
	return stat.Correlation(ranks(x), ranks(y), nil)
}

func kendall(x, y []float64) float64 {
	return stat.Kendall(x, y, nil)
}

// ranks assigns average ranks, splitting ties.
func ranks(values []float64) []float64 {
	idx := make([]int, len(values))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })

	out := make([]float64, len(values))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && values[idx[j+1]] == values[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			out[idx[k]] = avg
		}
		i = j + 1
	}
	return out
}

// cramersMatrix computes pairwise Cramér's V from contingency tables.
func cramersMatrix(set columnSet) profile.CorrelationMatrix {
	k := len(set.names)
	values := make([][]float64, k)
	for i := range values {
		values[i] = make([]float64, k)
		values[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			v := cramersV(set.values[i], set.values[j])
			values[i][j] = v
			values[j][i] = v
		}
	}
	return profile.CorrelationMatrix{Columns: append([]string(nil), set.names...), Values: values}
}

func cramersV(a, b []any) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	type cell struct{ r, c string }
	rows := map[string]bool{}
	cols := map[string]bool{}
	table := map[cell]float64{}
	total := 0.0
	for i := 0; i < n; i++ {
		if semtype.IsMissing(a[i]) || semtype.IsMissing(b[i]) {
			continue
		}
		r := categoryKey(a[i])
		c := categoryKey(b[i])
		rows[r] = true
		cols[c] = true
		table[cell{r, c}]++
		total++
	}
	if total == 0 || len(rows) < 2 || len(cols) < 2 {
		return 0
	}

	rowSums := map[string]float64{}
	colSums := map[string]float64{}
	for rc, count := range table {
		rowSums[rc.r] += count
		colSums[rc.c] += count
	}
	chi2 := 0.0
	for r, rs := range rowSums {
		for c, cs := range colSums {
			expected := rs * cs / total
			d := table[cell{r, c}] - expected
			chi2 += d * d / expected
		}
	}
	minDim := len(rows) - 1
	if len(cols)-1 < minDim {
		minDim = len(cols) - 1
	}
	v := math.Sqrt(chi2 / (total * float64(minDim)))
	if v > 1 {
		v = 1
	}
	return v
}

func categoryKey(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case bool:
		if c {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprintf("%v", v)
	}
}
