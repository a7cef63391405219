package describe

import (
	"fmt"
	"math"
	"net/url"
	"path"
	"sort"
	"strconv"
	"strings"
	"time"

	mstats "github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/ports"
)

// Summary steps for the memory engine. Each step mutates the accumulated
// description in place and passes the type tag through unchanged; statistic
// failures (too few values, degenerate input) omit the key rather than
// failing the column.

// describeCounts sets the baseline counting statistics every column carries:
// n, count, n_missing, p_missing.
func describeCounts(config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		n := col.Len()
		count := 0
		for _, v := range col.Values() {
			if !semtype.IsMissing(v) {
				count++
			}
		}
		desc["n"] = n
		desc["count"] = count
		desc["n_missing"] = n - count
		if n > 0 {
			desc["p_missing"] = float64(n-count) / float64(n)
		} else {
			desc["p_missing"] = 0.0
		}
		return t, desc, nil
	}
}

// describeGeneric sets memory accounting.
func describeGeneric(cfg config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		desc["memory_size"] = col.MemoryUsage(cfg.MemoryDeep)
		return t, desc, nil
	}
}

// describeSupported sets distinctness statistics shared by all supported
// types. n_unique counts values occurring exactly once; is_unique holds when
// every present value is a singleton.
func describeSupported(config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		supportedInto(col, desc)
		return t, desc, nil
	}
}

func supportedInto(col ports.Column, desc profile.ColumnDescription) {
	counts := categoryCounts(presentValues(col))
	total := 0
	singletons := 0
	for _, c := range counts {
		total += c.Count
		if c.Count == 1 {
			singletons++
		}
	}
	desc["n_distinct"] = len(counts)
	desc["n_unique"] = singletons
	if total > 0 {
		desc["p_distinct"] = float64(len(counts)) / float64(total)
		desc["p_unique"] = float64(singletons) / float64(total)
	}
	desc["is_unique"] = total > 0 && singletons == total
}

// describeNumeric sets the full numeric panel: moments, dispersion,
// quantiles, zeros/infinities, monotonicity, histogram and the optional
// uniformity check.
func describeNumeric(cfg config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		numericInto(col, cfg, desc)
		return t, desc, nil
	}
}

func numericInto(col ports.Column, cfg config.Config, desc profile.ColumnDescription) {
	n := col.Len()
	present := presentFloats(col)

	nInfinite := 0
	nZeros := 0
	finite := make([]float64, 0, len(present))
	for _, f := range present {
		if math.IsInf(f, 0) {
			nInfinite++
			continue
		}
		finite = append(finite, f)
		if f == 0 {
			nZeros++
		}
	}
	desc["n_infinite"] = nInfinite
	desc["n_zeros"] = nZeros
	if n > 0 {
		desc["p_infinite"] = float64(nInfinite) / float64(n)
		desc["p_zeros"] = float64(nZeros) / float64(n)
	}

	inc, incStrict := monotonic(present, false)
	dec, decStrict := monotonic(present, true)
	desc["monotonic_increase"] = inc
	desc["monotonic_increase_strict"] = incStrict
	desc["monotonic_decrease"] = dec
	desc["monotonic_decrease_strict"] = decStrict

	if len(finite) == 0 {
		return
	}

	var mean, std float64
	if v, err := mstats.Mean(finite); err == nil {
		mean = v
		desc["mean"] = v
	}
	if v, err := mstats.StandardDeviationSample(finite); err == nil {
		std = v
		desc["std"] = v
	}
	if v, err := mstats.SampleVariance(finite); err == nil {
		desc["variance"] = v
	}
	if v, err := mstats.Min(finite); err == nil {
		desc["min"] = v
	}
	if v, err := mstats.Max(finite); err == nil {
		desc["max"] = v
	}
	if v, err := mstats.Sum(finite); err == nil {
		desc["sum"] = v
	}
	if v, err := mstats.MedianAbsoluteDeviation(finite); err == nil {
		desc["mad"] = v
	}
	if v := stat.Skew(finite, nil); !math.IsNaN(v) && !math.IsInf(v, 0) {
		desc["skewness"] = v
	}
	if v := stat.ExKurtosis(finite, nil); !math.IsNaN(v) && !math.IsInf(v, 0) {
		desc["kurtosis"] = v
	}
	if mean != 0 && !math.IsNaN(std) {
		desc["cv"] = std / mean
	}

	sorted := append([]float64(nil), finite...)
	sort.Float64s(sorted)
	for _, q := range cfg.Numeric.Quantiles {
		desc[quantileKey(q)] = quantile(sorted, q)
	}
	q25 := quantile(sorted, 0.25)
	q75 := quantile(sorted, 0.75)
	desc["iqr"] = q75 - q25
	desc["range"] = sorted[len(sorted)-1] - sorted[0]

	counts, edges := histogramBins(sorted, effectiveBins(cfg.Numeric.Bins, sorted))
	if counts != nil {
		desc["histogram"] = profile.Histogram{Counts: counts, BinEdges: edges}
	}
	if cfg.Numeric.ChiSquaredThreshold > 0 {
		if statistic, p, ok := chiSquare(counts); ok {
			desc["chi_squared"] = profile.ChiSquared{Statistic: statistic, PValue: p}
		}
	}
}

// describeDate sets the datetime panel: bounds, span and a histogram over
// epoch seconds.
func describeDate(cfg config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		times := presentTimes(col)
		if len(times) == 0 {
			return t, desc, nil
		}
		lo, hi := times[0], times[0]
		seconds := make([]float64, len(times))
		for i, tm := range times {
			if tm.Before(lo) {
				lo = tm
			}
			if tm.After(hi) {
				hi = tm
			}
			seconds[i] = float64(tm.UnixNano()) / float64(time.Second)
		}
		desc["min"] = lo
		desc["max"] = hi
		desc["range"] = hi.Sub(lo)

		sort.Float64s(seconds)
		counts, edges := histogramBins(seconds, effectiveBins(cfg.Numeric.Bins, seconds))
		if counts != nil {
			desc["histogram"] = profile.Histogram{Counts: counts, BinEdges: edges}
		}
		return t, desc, nil
	}
}

// describeCategorical sets frequency and length statistics over the string
// values plus the optional frequency uniformity check.
func describeCategorical(cfg config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		counts := categoryCounts(presentValues(col))
		if len(counts) == 0 {
			return t, desc, nil
		}
		top, freq := topCategory(counts)
		desc["top"] = top
		desc["freq"] = freq

		if cfg.Categorical.LengthStats {
			lengthsInto(presentStrings(col), desc)
		}
		if cfg.Categorical.ChiSquaredThreshold > 0 {
			observed := make([]int, len(counts))
			for i, c := range counts {
				observed[i] = c.Count
			}
			if statistic, p, ok := chiSquare(observed); ok {
				desc["chi_squared"] = profile.ChiSquared{Statistic: statistic, PValue: p}
			}
		}
		return t, desc, nil
	}
}

func lengthsInto(values []string, desc profile.ColumnDescription) {
	if len(values) == 0 {
		return
	}
	minLen, maxLen, total := math.MaxInt, 0, 0
	for _, s := range values {
		l := len([]rune(s))
		if l < minLen {
			minLen = l
		}
		if l > maxLen {
			maxLen = l
		}
		total += l
	}
	desc["min_length"] = minLen
	desc["max_length"] = maxLen
	desc["mean_length"] = float64(total) / float64(len(values))
}

// describeURL splits each value into its URL components and counts them.
func describeURL(config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		schemes := map[string]int{}
		hosts := map[string]int{}
		paths := map[string]int{}
		queries := map[string]int{}
		fragments := map[string]int{}
		for _, s := range presentStrings(col) {
			u, err := url.Parse(strings.TrimSpace(s))
			if err != nil {
				continue
			}
			schemes[u.Scheme]++
			hosts[u.Host]++
			paths[u.Path]++
			queries[u.RawQuery]++
			fragments[u.Fragment]++
		}
		desc["scheme_counts"] = schemes
		desc["netloc_counts"] = hosts
		desc["path_counts"] = paths
		desc["query_counts"] = queries
		desc["fragment_counts"] = fragments
		return t, desc, nil
	}
}

// describePath splits each value into filesystem-path components and counts
// them. Backslash separators are normalised so Windows-style paths profile
// the same on any host.
func describePath(config.Config) ColumnStep {
	return func(col ports.Column, t semtype.Type, desc profile.ColumnDescription) (semtype.Type, profile.ColumnDescription, error) {
		values := presentStrings(col)
		names := map[string]int{}
		stems := map[string]int{}
		suffixes := map[string]int{}
		parents := map[string]int{}
		normalised := make([]string, 0, len(values))
		for _, s := range values {
			p := strings.ReplaceAll(strings.TrimSpace(s), `\`, "/")
			normalised = append(normalised, p)
			name := path.Base(p)
			ext := path.Ext(name)
			names[name]++
			stems[strings.TrimSuffix(name, ext)]++
			suffixes[ext]++
			parents[path.Dir(p)]++
		}
		desc["name_counts"] = names
		desc["stem_counts"] = stems
		desc["suffix_counts"] = suffixes
		desc["parent_counts"] = parents
		desc["common_prefix"] = commonPrefix(normalised)
		return t, desc, nil
	}
}

func commonPrefix(values []string) string {
	if len(values) == 0 {
		return "No common prefix"
	}
	prefix := values[0]
	for _, s := range values[1:] {
		for !strings.HasPrefix(s, prefix) {
			prefix = prefix[:len(prefix)-1]
			if prefix == "" {
				return "No common prefix"
			}
		}
	}
	return prefix
}

// ---- shared helpers ----

func presentValues(col ports.Column) []any {
	out := make([]any, 0, col.Len())
	for _, v := range col.Values() {
		if !semtype.IsMissing(v) {
			out = append(out, v)
		}
	}
	return out
}

func presentFloats(col ports.Column) []float64 {
	out := make([]float64, 0, col.Len())
	for _, v := range col.Values() {
		if semtype.IsMissing(v) {
			continue
		}
		if f, ok := semtype.AsFloat(v); ok {
			out = append(out, f)
		}
	}
	return out
}

func presentStrings(col ports.Column) []string {
	out := make([]string, 0, col.Len())
	for _, v := range col.Values() {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func presentTimes(col ports.Column) []time.Time {
	out := make([]time.Time, 0, col.Len())
	for _, v := range col.Values() {
		if tm, ok := v.(time.Time); ok {
			out = append(out, tm)
		}
	}
	return out
}

// categoryCount is one distinct value with its occurrence count; slices keep
// first-occurrence order so ties resolve deterministically.
type categoryCount struct {
	Value string
	Count int
}

func categoryCounts(values []any) []categoryCount {
	index := make(map[string]int)
	var counts []categoryCount
	for _, v := range values {
		key := formatCell(v)
		if i, ok := index[key]; ok {
			counts[i].Count++
		} else {
			index[key] = len(counts)
			counts = append(counts, categoryCount{Value: key, Count: 1})
		}
	}
	return counts
}

func topCategory(counts []categoryCount) (string, int) {
	top, freq := "", 0
	for _, c := range counts {
		if c.Count > freq {
			top, freq = c.Value, c.Count
		}
	}
	return top, freq
}

func formatCell(v any) string {
	switch c := v.(type) {
	case string:
		return c
	case float64:
		return strconv.FormatFloat(c, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(c)
	case time.Time:
		return c.Format(time.RFC3339Nano)
	default:
		return fmt.Sprintf("%v", v)
	}
}

// quantile interpolates linearly between order statistics: position (n-1)*q.
// Input must be sorted and non-empty.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := float64(len(sorted)-1) * q
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= len(sorted) {
		return sorted[len(sorted)-1]
	}
	frac := h - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

func quantileKey(q float64) string {
	p := math.Round(q*10000) / 100
	return strconv.FormatFloat(p, 'f', -1, 64) + "%"
}

// effectiveBins caps the configured bin count by the number of distinct
// values so sparse columns do not get empty slivers.
func effectiveBins(configured int, sorted []float64) int {
	if configured < 1 || len(sorted) == 0 {
		return 0
	}
	distinct := 1
	for i := 1; i < len(sorted); i++ {
		if sorted[i] != sorted[i-1] {
			distinct++
		}
	}
	if distinct < configured {
		return distinct
	}
	return configured
}

// histogramBins builds an equal-width histogram over sorted values. A
// degenerate range collapses to a single bin.
func histogramBins(sorted []float64, bins int) ([]int, []float64) {
	if len(sorted) == 0 || bins < 1 {
		return nil, nil
	}
	lo, hi := sorted[0], sorted[len(sorted)-1]
	if lo == hi {
		return []int{len(sorted)}, []float64{lo, hi}
	}
	edges := make([]float64, bins+1)
	floats.Span(edges, lo, hi)
	counts := make([]int, bins)
	width := (hi - lo) / float64(bins)
	for _, v := range sorted {
		idx := int((v - lo) / width)
		if idx >= bins {
			idx = bins - 1
		}
		counts[idx]++
	}
	return counts, edges
}

// chiSquare tests observed bin counts against a uniform expectation. Returns
// ok=false when the test is undefined (fewer than two bins, empty counts).
func chiSquare(observed []int) (float64, float64, bool) {
	k := len(observed)
	if k < 2 {
		return 0, 0, false
	}
	total := 0
	for _, o := range observed {
		total += o
	}
	if total == 0 {
		return 0, 0, false
	}
	expected := float64(total) / float64(k)
	statistic := 0.0
	for _, o := range observed {
		d := float64(o) - expected
		statistic += d * d / expected
	}
	dist := distuv.ChiSquared{K: float64(k - 1)}
	return statistic, dist.Survival(statistic), true
}

// monotonic reports whether present values are non-strictly and strictly
// ordered; reversed=true checks the decreasing direction.
func monotonic(values []float64, reversed bool) (bool, bool) {
	weak, strict := true, true
	for i := 1; i < len(values); i++ {
		prev, cur := values[i-1], values[i]
		if reversed {
			prev, cur = cur, prev
		}
		if cur < prev {
			weak, strict = false, false
			break
		}
		if cur == prev {
			strict = false
		}
	}
	if len(values) < 2 {
		return len(values) > 0, len(values) > 0
	}
	return weak, strict
}
