// Package pipeline wires one ingestion end to end: read, clean, infer,
// then persist and analyze. Each Run owns its intermediate data
// exclusively; nothing is shared between invocations.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"autodash/internal/charts"
	"autodash/internal/cleaning"
	"autodash/internal/metrics"
	"autodash/internal/reader"
	"autodash/internal/schema"
	"autodash/internal/stats"
	"autodash/internal/storage"
	"autodash/pkg/records"
)

// Options configures one ingestion run.
type Options struct {
	// Path is the uploaded file.
	Path string

	// DatasetName overrides the display name; defaults to the file's base
	// name without extension.
	DatasetName string

	// Storage selects the persistence backend. Leave Kind empty to skip
	// persistence entirely (profile-only runs).
	Storage storage.Config

	// Cleaning tunes the repair rules.
	Cleaning cleaning.Config
}

// Result is the structured outcome of a run. Fatal errors set Success
// false and Message; they are never propagated as panics past this
// boundary.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`

	Dataset     string                  `json:"dataset"`
	Table       string                  `json:"table,omitempty"`
	RawRows     int                     `json:"raw_rows"`
	CleanRows   int                     `json:"clean_rows"`
	RowsWritten int64                   `json:"rows_written"`
	Profiles    []schema.ColumnProfile  `json:"profiles,omitempty"`
	Stats       stats.DatasetStatistics `json:"stats"`
	Charts      []charts.Spec           `json:"charts,omitempty"`
}

func failure(dataset, format string, args ...any) *Result {
	return &Result{Success: false, Dataset: dataset, Message: fmt.Sprintf(format, args...)}
}

// Run executes one ingestion. Reading and persistence failures are fatal
// to the run; statistics and chart generation are best effort and cannot
// fail it.
func Run(ctx context.Context, opts Options) *Result {
	dataset := opts.DatasetName
	if dataset == "" {
		base := filepath.Base(opts.Path)
		dataset = strings.TrimSuffix(base, filepath.Ext(base))
	}

	raw, err := readStage(opts.Path)
	if err != nil {
		return failure(dataset, "read %s: %v", opts.Path, err)
	}
	metrics.IncCounter("ingest_rows_total", float64(raw.NumRows()), metrics.Labels{"kind": "raw"})

	engine := cleaning.NewEngine(opts.Cleaning)
	ds := cleanStage(engine, dataset, raw)
	metrics.IncCounter("ingest_rows_total", float64(ds.NumRows()), metrics.Labels{"kind": "cleaned"})

	def := schema.Build(dataset, ds)
	res := &Result{
		Success:   true,
		Dataset:   dataset,
		Table:     def.Table,
		RawRows:   raw.NumRows(),
		CleanRows: ds.NumRows(),
		Profiles:  schema.Profile(ds),
	}

	// Persistence and analytics are independent; run them concurrently.
	// Analytics never fails the run, so only persist contributes an error.
	g, gctx := errgroup.WithContext(ctx)

	if opts.Storage.Kind != "" {
		g.Go(func() error {
			n, err := persistStage(gctx, opts.Storage, def, ds)
			res.RowsWritten = n
			return err
		})
	}

	g.Go(func() error {
		res.Stats = stats.Summarize(raw, ds)
		res.Charts = charts.Generate(ds)
		for _, c := range res.Charts {
			metrics.IncCounter("ingest_charts_total", 1, metrics.Labels{"type": c.Type})
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return &Result{
			Success: false,
			Dataset: dataset,
			Message: err.Error(),
			Table:   def.Table,
			RawRows: raw.NumRows(),
		}
	}

	metrics.IncCounter("ingest_rows_total", float64(res.RowsWritten), metrics.Labels{"kind": "written"})
	metrics.IncCounter("ingest_datasets_total", 1, nil)

	res.Message = fmt.Sprintf("ingested %d rows into %s", res.CleanRows, def.Table)
	if opts.Storage.Kind == "" {
		res.Message = fmt.Sprintf("profiled %d rows (persistence skipped)", res.CleanRows)
	}
	return res
}

func readStage(path string) (raw *records.RawSet, err error) {
	defer observeStage("read", time.Now(), &err)
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	return reader.Read(path, ext)
}

func cleanStage(engine *cleaning.Engine, dataset string, raw *records.RawSet) *cleaning.Dataset {
	defer observeStage("clean", time.Now(), nil)
	return engine.Clean(dataset, raw)
}

// persistStage runs the create, insert, drop-on-failure saga. A failed
// insert drops the table just created so no orphaned half-filled table
// remains.
func persistStage(ctx context.Context, cfg storage.Config, def storage.SchemaDefinition, ds *cleaning.Dataset) (written int64, err error) {
	defer observeStage("persist", time.Now(), &err)

	repo, err := storage.New(ctx, cfg)
	if err != nil {
		return 0, fmt.Errorf("open storage: %w", err)
	}
	defer repo.Close()

	if err := repo.CreateTable(ctx, def); err != nil {
		return 0, fmt.Errorf("create schema: %w", err)
	}

	rows := make([][]any, ds.NumRows())
	for i := range rows {
		rows[i] = ds.Row(i)
	}

	written, err = repo.InsertRows(ctx, def.Table, def.ColumnNames(), rows)
	if err != nil {
		if dropErr := repo.DropTable(ctx, def.Table); dropErr != nil {
			log.Printf("pipeline: drop %s after failed insert: %v", def.Table, dropErr)
		}
		return written, fmt.Errorf("insert rows: %w", err)
	}
	return written, nil
}

// observeStage records a duration sample and a status-tagged count for one
// pipeline stage. Use with defer, passing the stage start time.
func observeStage(stage string, start time.Time, errp *error) {
	status := "ok"
	if errp != nil && *errp != nil {
		status = "error"
	}
	labels := metrics.Labels{"stage": stage, "status": status}
	metrics.ObserveHistogram("ingest_stage_duration_seconds", time.Since(start).Seconds(), labels)
	metrics.IncCounter("ingest_stage_total", 1, labels)
}
