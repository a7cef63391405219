package describe

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"goprofile/domain/core"
	"goprofile/domain/profile"
	"goprofile/domain/semtype"
	"goprofile/internal"
	"goprofile/internal/config"
	"goprofile/internal/errors"
	"goprofile/ports"
)

// Describer fans summarization out across a dataset's columns and restores
// table order on the way back.
type Describer struct {
	typeset    *semtype.TypeSet
	summarizer *Summarizer
	cfg        config.Config
	log        *internal.Logger
}

// NewDescriber wires the standard hierarchy and registry for a configuration.
func NewDescriber(cfg config.Config) *Describer {
	typeset := semtype.Default()
	return &Describer{
		typeset:    typeset,
		summarizer: NewProfilingSummarizer(typeset, cfg),
		cfg:        cfg,
		log:        internal.DefaultLogger,
	}
}

// NewDescriberWith wires an explicit hierarchy and registry, for callers that
// customise either.
func NewDescriberWith(typeset *semtype.TypeSet, summarizer *Summarizer, cfg config.Config, log *internal.Logger) *Describer {
	if log == nil {
		log = internal.DefaultLogger
	}
	return &Describer{typeset: typeset, summarizer: summarizer, cfg: cfg, log: log}
}

// DescribeColumns summarizes every column of the dataset and returns the
// descriptions as an order-preserving mapping. The memory engine describes
// columns independently, in parallel when the pool allows; the batch engine
// partitions columns by storage kind and summarizes each partition in one
// call. Either way the result keeps the table's column order until the
// configured sort reorders it by name.
func (d *Describer) DescribeColumns(ctx context.Context, ds ports.Dataset) (*profile.Variables, error) {
	switch d.cfg.Sort {
	case config.SortAscending, config.SortDescending, config.SortNone:
	default:
		return nil, errors.InvalidSort(d.cfg.Sort)
	}

	names := ds.ColumnNames()
	vars := profile.NewVariables()

	switch ds.Engine() {
	case ports.EngineMemory:
		descs, err := d.describeMemory(ctx, ds, names)
		if err != nil {
			return nil, err
		}
		for i, name := range names {
			vars.Set(name, descs[i])
		}
	case ports.EngineBatch:
		byName, err := d.describeBatch(ctx, ds, names)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			vars.Set(name, byName[name])
		}
	default:
		return nil, errors.UnknownEngine(ds.Engine())
	}

	switch d.cfg.Sort {
	case config.SortAscending:
		vars.SortByName(false)
	case config.SortDescending:
		vars.SortByName(true)
	}
	return vars, nil
}

// describeMemory summarizes columns one by one. Results are written into an
// index-tagged slice so worker completion order never leaks into the output.
func (d *Describer) describeMemory(ctx context.Context, ds ports.Dataset, names []string) ([]profile.ColumnDescription, error) {
	results := make([]profile.ColumnDescription, len(names))

	workers := d.cfg.PoolSize
	if workers <= 1 {
		for i, name := range names {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			desc, err := d.describeOne(ds, name)
			if err != nil {
				return nil, err
			}
			results[i] = desc
		}
		return results, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			desc, err := d.describeOne(ds, name)
			if err != nil {
				return err
			}
			results[i] = desc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (d *Describer) describeOne(ds ports.Dataset, name string) (profile.ColumnDescription, error) {
	col, ok := ds.Column(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
	}
	t := d.decideType(col)
	d.log.Debug("describing column %q as %s", name, t)
	desc, err := d.summarizer.SummarizeColumn(castColumn(col, t), t)
	if err != nil {
		return nil, fmt.Errorf("describe column %q: %w", name, err)
	}
	return desc, nil
}

// describeBatch partitions columns by storage kind and summarizes each
// partition with the batch chain for its kind.
func (d *Describer) describeBatch(ctx context.Context, ds ports.Dataset, names []string) (map[string]profile.ColumnDescription, error) {
	partitions := make(map[semtype.Type][]ports.Column)
	order := make([]semtype.Type, 0, 4)
	for _, name := range names {
		col, ok := ds.Column(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", core.ErrColumnNotFound, name)
		}
		t := batchTypeFor(col.Kind())
		if _, seen := partitions[t]; !seen {
			order = append(order, t)
		}
		partitions[t] = append(partitions[t], col)
	}

	out := make(map[string]profile.ColumnDescription, len(names))
	for _, t := range order {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cols := partitions[t]
		d.log.Debug("describing %d column(s) as %s", len(cols), t)
		descs, err := d.summarizer.SummarizeGroup(cols, t)
		if err != nil {
			return nil, fmt.Errorf("describe %s partition: %w", t, err)
		}
		for name, desc := range descs {
			out[name] = desc
		}
	}
	return out, nil
}

// decideType picks the semantic type: value inspection when inference is on,
// the declared storage kind otherwise.
func (d *Describer) decideType(col ports.Column) semtype.Type {
	if d.cfg.InferTypes {
		return d.typeset.InferType(col.Values())
	}
	return d.typeset.DetectType(col.Kind())
}

func batchTypeFor(kind semtype.Kind) semtype.Type {
	switch kind {
	case semtype.KindNumeric:
		return semtype.BatchNumeric
	case semtype.KindBool:
		return semtype.BatchBoolean
	case semtype.KindString:
		return semtype.BatchCategorical
	default:
		return semtype.BatchUnsupported
	}
}

// castedColumn presents a column's values coerced to the canonical
// representation of its decided type; memory accounting still reflects the
// underlying storage.
type castedColumn struct {
	ports.Column
	values []any
}

func castColumn(col ports.Column, t semtype.Type) ports.Column {
	return castedColumn{Column: col, values: semtype.Cast(col.Values(), t)}
}

func (c castedColumn) Values() []any { return c.values }
