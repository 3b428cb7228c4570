// Command ingest runs the full ingestion pipeline on one tabular file:
// parse, clean, infer a schema, persist into the configured backend, and
// emit dataset statistics plus dashboard chart specs as JSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"autodash/internal/cleaning"
	"autodash/internal/metrics"
	"autodash/internal/metrics/datadog"
	"autodash/internal/pipeline"
	"autodash/internal/storage"

	// register all backends with the storage factory.
	// The -storage flag specifies which to use but we build in support for
	// all of them.
	_ "autodash/internal/storage/all"
)

func main() {
	var (
		file              string
		name              string
		storageKind       string
		dsn               string
		metricsBackendFlg string
		keepZeroScores    bool
		pretty            bool
	)

	flag.StringVar(&file, "file", "", "input file to ingest (csv, tsv, txt, xlsx, json, html)")
	flag.StringVar(&name, "name", "", "dataset display name (default: file base name)")
	flag.StringVar(&storageKind, "storage", "sqlite", "storage backend kind (sqlite, postgres, mssql, none)")
	flag.StringVar(&dsn, "dsn", "autodash.db", "storage DSN")
	flag.StringVar(&metricsBackendFlg, "metrics-backend", "none", "metrics backend to use (datadog, none)")
	flag.BoolVar(&keepZeroScores, "keep-zero-scores", false, "treat a score of 0 as real data instead of missing")
	flag.BoolVar(&pretty, "pretty", false, "indent the JSON output")
	verbose := flag.Bool("v", false, "enable verbose logs")

	flag.Parse()

	if file == "" {
		fatalf("missing -file")
	}

	// Decide metrics backend: flag → env → default.
	backendName := metricsBackendFlg
	if backendName == "" {
		backendName = os.Getenv("METRICS_BACKEND")
	}
	switch backendName {
	case "datadog":
		// Datadog backend:
		//   - buffers metrics and submits periodically (default once per minute)
		//   - submits one final time at shutdown (Close())
		b, err := datadog.NewBackend(context.Background(), datadog.Options{
			JobName:    "ingest",
			Tags:       datadog.ParseTagsCSV(os.Getenv("METRICS_TAGS")),
			FlushEvery: 60 * time.Second,
		})
		if err != nil {
			log.Printf("metrics: failed to init datadog backend: %v; using nop", err)
		} else {
			metrics.SetBackend(b)
			// Close() stops the flush loop and performs the final Flush().
			defer func() {
				if err := b.Close(); err != nil {
					log.Printf("metrics: datadog close/flush error: %v", err)
				}
			}()
		}

	case "", "none":
		if *verbose {
			log.Printf("metrics: disabled (backend=%q)", backendName)
		}

	default:
		fatalf("unknown metrics backend %q", backendName)
	}

	cfg := cleaning.DefaultConfig()
	cfg.ZeroScoreIsMissing = !keepZeroScores

	opts := pipeline.Options{
		Path:        file,
		DatasetName: name,
		Cleaning:    cfg,
	}
	if storageKind != "" && storageKind != "none" {
		opts.Storage = storage.Config{Kind: storageKind, DSN: dsn}
	}

	res := pipeline.Run(context.Background(), opts)

	enc := json.NewEncoder(os.Stdout)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(res); err != nil {
		fatalf("encode result: %v", err)
	}

	if !res.Success {
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "ingest: "+format+"\n", args...)
	os.Exit(1)
}
