// Command profile runs a one-shot profiling pass over a tabular file and
// writes the report as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"goprofile/adapters/batchtable"
	"goprofile/adapters/excel"
	"goprofile/app"
	"goprofile/internal"
	"goprofile/internal/config"
	"goprofile/ports"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "profile: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Optional .env for local runs; absence is fine.
	_ = godotenv.Load()

	title := flag.String("title", "", "report title (overrides PROFILE_TITLE)")
	sortMode := flag.String("sort", "", `column order: "ascending", "descending" or "none"`)
	pool := flag.Int("pool", 0, "worker pool size (0 keeps the configured value)")
	batch := flag.Bool("batch", false, "profile through the columnar-batch engine")
	out := flag.String("out", "", "output path (default stdout)")
	flag.Parse()

	if flag.NArg() != 1 {
		return fmt.Errorf("usage: profile [flags] <table.csv|table.xlsx>")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if *title != "" {
		cfg.Title = *title
	}
	if *sortMode != "" {
		cfg.Sort = *sortMode
	}
	if *pool > 0 {
		cfg.PoolSize = *pool
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := internal.DefaultLogger
	path := flag.Arg(0)
	log.Info("loading %s", path)
	tbl, err := excel.ReadFile(path)
	if err != nil {
		return err
	}

	var ds ports.Dataset = tbl
	if *batch {
		ds, err = batchtable.FromTable(tbl, batchtable.DefaultChunkSize)
		if err != nil {
			return err
		}
	}

	report, err := app.NewProfileService(cfg).Profile(context.Background(), ds)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	if *out == "" {
		_, err = os.Stdout.Write(append(payload, '\n'))
		return err
	}
	if err := os.WriteFile(*out, payload, 0o644); err != nil {
		return err
	}
	log.Info("report written to %s", *out)
	return nil
}
