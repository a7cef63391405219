package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/ports"
)

// MissingBar is the per-column present-value counts behind the bar diagram.
type MissingBar struct {
	Columns []string `json:"columns"`
	Counts  []int    `json:"counts"`
	N       int      `json:"n"`
}

// MissingMatrix is the row-by-column presence matrix behind the nullity
// matrix diagram.
type MissingMatrix struct {
	Columns []string `json:"columns"`
	Present [][]bool `json:"present"`
}

// MissingDiagrams builds the enabled missing-value payloads. Tables without
// a single missing cell produce no diagrams; the heatmap additionally needs
// at least two columns with missing values and degrades to absent when the
// nullity correlation is undefined.
func MissingDiagrams(ds ports.Dataset, vars *profile.Variables, cfg config.Config) map[string]profile.MissingDiagram {
	names := vars.Names()
	totalMissing := 0
	for _, name := range names {
		if desc, ok := vars.Get(name); ok {
			totalMissing += desc.NMissing()
		}
	}
	if totalMissing == 0 {
		return map[string]profile.MissingDiagram{}
	}

	out := make(map[string]profile.MissingDiagram)
	if cfg.Missing.Bar {
		out["bar"] = profile.MissingDiagram{
			Name:    "Count",
			Caption: "A simple visualization of nullity by column.",
			Data:    missingBar(ds, names),
		}
	}
	if cfg.Missing.Matrix {
		out["matrix"] = profile.MissingDiagram{
			Name:    "Matrix",
			Caption: "Nullity matrix is a data-dense display which lets you quickly visually pick out patterns in data completion.",
			Data:    missingMatrix(ds, names),
		}
	}
	if cfg.Missing.Heatmap {
		if heatmap, ok := nullityHeatmap(ds, vars); ok {
			out["heatmap"] = profile.MissingDiagram{
				Name:    "Heatmap",
				Caption: "The correlation heatmap measures nullity correlation: how strongly the presence or absence of one variable affects the presence of another.",
				Data:    heatmap,
			}
		}
	}
	return out
}

func missingBar(ds ports.Dataset, names []string) MissingBar {
	bar := MissingBar{Columns: names, Counts: make([]int, len(names)), N: ds.NumRows()}
	for i, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		present := 0
		for _, v := range col.Values() {
			if !semtype.IsMissing(v) {
				present++
			}
		}
		bar.Counts[i] = present
	}
	return bar
}

func missingMatrix(ds ports.Dataset, names []string) MissingMatrix {
	n := ds.NumRows()
	matrix := MissingMatrix{Columns: names, Present: make([][]bool, n)}
	columns := make([][]any, len(names))
	for i, name := range names {
		if col, ok := ds.Column(name); ok {
			columns[i] = col.Values()
		}
	}
	for row := 0; row < n; row++ {
		line := make([]bool, len(names))
		for i, values := range columns {
			line[i] = row < len(values) && !semtype.IsMissing(values[row])
		}
		matrix.Present[row] = line
	}
	return matrix
}

// nullityHeatmap correlates missingness indicators between the columns that
// actually have missing cells.
func nullityHeatmap(ds ports.Dataset, vars *profile.Variables) (profile.CorrelationMatrix, bool) {
	var names []string
	var indicators [][]float64
	for _, name := range vars.Names() {
		desc, ok := vars.Get(name)
		if !ok || desc.NMissing() == 0 {
			continue
		}
		col, ok := ds.Column(name)
		if !ok {
			continue
		}
		values := col.Values()
		ind := make([]float64, len(values))
		for i, v := range values {
			if semtype.IsMissing(v) {
				ind[i] = 1
			}
		}
		names = append(names, name)
		indicators = append(indicators, ind)
	}
	if len(names) < 2 {
		return profile.CorrelationMatrix{}, false
	}

	k := len(names)
	values := make([][]float64, k)
	for i := range values {
		values[i] = make([]float64, k)
		values[i][i] = 1
	}
	for i := 0; i < k; i++ {
		for j := i + 1; j < k; j++ {
			r := stat.Correlation(indicators[i], indicators[j], nil)
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			values[i][j] = r
			values[j][i] = r
		}
	}
	return profile.CorrelationMatrix{Columns: names, Values: values}, true
}
