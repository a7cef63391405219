package analysis

import (
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
	"goprofile/ports"
)

// Scatter builds the pairwise interaction payloads for continuous columns:
// scatter[x][y] holds the complete (x, y) observations. Targets, when set,
// restrict the x axis; the y axis always spans all continuous columns.
func Scatter(ds ports.Dataset, vars *profile.Variables, cfg config.Config) map[string]map[string][]profile.Point {
	out := make(map[string]map[string][]profile.Point)
	if !cfg.Interactions.Continuous {
		return out
	}

	continuous := columnsOfType(ds, vars, semtype.Numeric, semtype.BatchNumeric)
	xAxis := continuous.names
	if len(cfg.Interactions.Targets) > 0 {
		xAxis = intersect(cfg.Interactions.Targets, continuous.names)
	}

	index := make(map[string]int, len(continuous.names))
	for i, name := range continuous.names {
		index[name] = i
	}
	for _, xName := range xAxis {
		i, ok := index[xName]
		if !ok {
			continue
		}
		row := make(map[string][]profile.Point, len(continuous.names))
		for j, yName := range continuous.names {
			xs, ys := completePairs(continuous.values[i], continuous.values[j])
			points := make([]profile.Point, len(xs))
			for k := range xs {
				points[k] = profile.Point{X: xs[k], Y: ys[k]}
			}
			row[yName] = points
		}
		out[xName] = row
	}
	return out
}

func intersect(targets, available []string) []string {
	known := make(map[string]bool, len(available))
	for _, name := range available {
		known[name] = true
	}
	var out []string
	for _, name := range targets {
		if known[name] {
			out = append(out, name)
		}
	}
	return out
}
