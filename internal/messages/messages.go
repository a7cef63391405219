// Package messages derives data-quality warnings from a finished set of
// table statistics, column descriptions and correlation matrices.
package messages

import (
	"math"
	"sort"

	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal/config"
)

// Check derives the full message list. Output order is deterministic:
// message type first, column name second.
func Check(table profile.TableStats, vars *profile.Variables, correlations map[string]profile.CorrelationMatrix, cfg config.Config) []profile.Message {
	var out []profile.Message
	out = append(out, checkTable(table)...)
	for _, name := range vars.Names() {
		if desc, ok := vars.Get(name); ok {
			out = append(out, checkVariable(name, desc, cfg)...)
		}
	}
	out = append(out, checkCorrelations(correlations, cfg)...)

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Column < out[j].Column
	})
	return out
}

func checkTable(table profile.TableStats) []profile.Message {
	var out []profile.Message
	if n, ok := asInt(table["n_duplicates"]); ok && n > 0 {
		out = append(out, profile.Message{
			Type: profile.MessageDuplicates,
			Fields: map[string]any{
				"n_duplicates": n,
				"p_duplicates": table["p_duplicates"],
			},
		})
	}
	if n, ok := asInt(table["n"]); ok && n == 0 {
		out = append(out, profile.Message{Type: profile.MessageEmpty})
	}
	return out
}

func checkVariable(name string, desc profile.ColumnDescription, cfg config.Config) []profile.Message {
	var out []profile.Message
	add := func(t profile.MessageType, fields map[string]any) {
		out = append(out, profile.Message{Type: t, Column: name, Fields: fields})
	}

	if !desc.Type().IsSupported() {
		add(profile.MessageUnsupported, nil)
	}
	if missing := desc.NMissing(); missing > 0 {
		add(profile.MessageMissing, map[string]any{
			"n_missing": missing,
			"p_missing": desc["p_missing"],
		})
	}

	nDistinct, hasDistinct := asInt(desc["n_distinct"])
	if hasDistinct && nDistinct == 1 {
		add(profile.MessageConstant, nil)
		// A constant column carries no further signal.
		return out
	}
	if unique, ok := desc["is_unique"].(bool); ok && unique {
		add(profile.MessageUnique, nil)
	}
	if hasDistinct && desc.Type() == semtype.Categorical && cfg.Categorical.CardinalityThreshold > 0 &&
		nDistinct > cfg.Categorical.CardinalityThreshold {
		add(profile.MessageHighCardinality, map[string]any{"n_distinct": nDistinct})
	}

	if n, ok := asInt(desc["n_zeros"]); ok && n > 0 {
		add(profile.MessageZeros, map[string]any{
			"n_zeros": n,
			"p_zeros": desc["p_zeros"],
		})
	}
	if n, ok := asInt(desc["n_infinite"]); ok && n > 0 {
		add(profile.MessageInfinite, map[string]any{
			"n_infinite": n,
			"p_infinite": desc["p_infinite"],
		})
	}
	if skew, ok := desc["skewness"].(float64); ok && cfg.Numeric.SkewnessThreshold > 0 &&
		math.Abs(skew) > cfg.Numeric.SkewnessThreshold {
		add(profile.MessageSkewed, map[string]any{"skewness": skew})
	}
	if chi, ok := desc["chi_squared"].(profile.ChiSquared); ok {
		threshold := cfg.Numeric.ChiSquaredThreshold
		if desc.Type() != semtype.Numeric {
			threshold = cfg.Categorical.ChiSquaredThreshold
		}
		if threshold > 0 && chi.PValue > threshold {
			add(profile.MessageUniform, map[string]any{"p_value": chi.PValue})
		}
	}
	return out
}

// checkCorrelations flags the upper-triangle pairs exceeding the threshold,
// once per (method, pair).
func checkCorrelations(correlations map[string]profile.CorrelationMatrix, cfg config.Config) []profile.Message {
	if cfg.Correlations.HighThreshold <= 0 {
		return nil
	}
	methods := make([]string, 0, len(correlations))
	for method := range correlations {
		methods = append(methods, method)
	}
	sort.Strings(methods)

	var out []profile.Message
	for _, method := range methods {
		matrix := correlations[method]
		for i := range matrix.Columns {
			for j := i + 1; j < len(matrix.Columns); j++ {
				r := matrix.Values[i][j]
				if math.Abs(r) <= cfg.Correlations.HighThreshold {
					continue
				}
				out = append(out, profile.Message{
					Type:   profile.MessageHighCorrelation,
					Column: matrix.Columns[j],
					Fields: map[string]any{
						"method": method,
						"with":   matrix.Columns[i],
						"value":  r,
					},
				})
			}
		}
	}
	return out
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	}
	return 0, false
}
