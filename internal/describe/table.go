package describe

import (
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/ports"
)

// TableStats aggregates column descriptions into table-level statistics:
// sizes, memory footprint, missingness, the semantic type histogram and
// duplicate-row counts over the supported columns.
func (d *Describer) TableStats(ds ports.Dataset, vars *profile.Variables) (profile.TableStats, error) {
	n := ds.NumRows()
	nVar := vars.Len()

	nCellsMissing := 0
	nVarsWithMissing := 0
	nVarsAllMissing := 0
	types := make(map[semtype.Type]int)
	var supported []string

	for _, name := range vars.Names() {
		desc, _ := vars.Get(name)
		missing := desc.NMissing()
		nCellsMissing += missing
		if missing > 0 {
			nVarsWithMissing++
		}
		if n > 0 && missing == n {
			nVarsAllMissing++
		}
		t := desc.Type()
		types[t]++
		if t.IsSupported() {
			supported = append(supported, name)
		}
	}

	stats := profile.TableStats{
		"n":                   n,
		"n_var":               nVar,
		"memory_size":         ds.MemoryUsage(d.cfg.MemoryDeep),
		"n_cells_missing":     nCellsMissing,
		"n_vars_with_missing": nVarsWithMissing,
		"n_vars_all_missing":  nVarsAllMissing,
		"types":               types,
	}
	if n > 0 {
		stats["record_size"] = float64(ds.MemoryUsage(d.cfg.MemoryDeep)) / float64(n)
	}
	if n > 0 && nVar > 0 {
		stats["p_cells_missing"] = float64(nCellsMissing) / float64(n*nVar)
	} else {
		stats["p_cells_missing"] = 0.0
	}

	// Duplicate detection only considers columns the profiler understood;
	// a table with no supported columns has no duplicates by definition.
	nDuplicates := 0
	if len(supported) > 0 {
		var err error
		nDuplicates, err = ds.DuplicateRowCount(supported)
		if err != nil {
			return nil, err
		}
	}
	stats["n_duplicates"] = nDuplicates
	if n > 0 {
		stats["p_duplicates"] = float64(nDuplicates) / float64(n)
	} else {
		stats["p_duplicates"] = 0.0
	}
	return stats, nil
}

// SupportedColumns returns the names of columns whose semantic type is not
// an unsupported root, in mapping order.
func SupportedColumns(vars *profile.Variables) []string {
	var out []string
	for _, name := range vars.Names() {
		if desc, ok := vars.Get(name); ok && desc.Type().IsSupported() {
			out = append(out, name)
		}
	}
	return out
}
