// Command profile inspects a tabular file without writing anything: it
// runs the cleaning pipeline, infers the storage schema, and prints the
// column profiles and quality statistics.
//
// Output modes
//
//   - Default mode: prints the full pipeline result as JSON to stdout.
//   - Report mode (-report): prints a human-readable summary and
//     suppresses JSON output, convenient for interactive inspection.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"autodash/internal/pipeline"
)

func main() {
	var (
		file   string
		name   string
		report bool
	)

	flag.StringVar(&file, "file", "", "input file to profile (csv, tsv, txt, xlsx, json, html)")
	flag.StringVar(&name, "name", "", "dataset display name (default: file base name)")
	flag.BoolVar(&report, "report", false, "print a text report instead of JSON")
	flag.Parse()

	if file == "" {
		fatalf("missing -file")
	}

	res := pipeline.Run(context.Background(), pipeline.Options{
		Path:        file,
		DatasetName: name,
	})
	if !res.Success {
		fatalf("%s", res.Message)
	}

	if !report {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res); err != nil {
			fatalf("encode result: %v", err)
		}
		return
	}

	fmt.Printf("dataset: %s (table %s)\n", res.Dataset, res.Table)
	fmt.Printf("rows: %d raw, %d cleaned\n", res.RawRows, res.CleanRows)
	fmt.Printf("quality: %.1f/100 (%d missing cells, %d duplicate rows)\n",
		res.Stats.QualityScore, res.Stats.MissingCells, res.Stats.DuplicateRows)
	fmt.Println("columns:")
	for _, p := range res.Profiles {
		line := fmt.Sprintf("  %-20s %-8s %s", p.Name, p.Kind, p.SQLType)
		if p.Kind == "numeric" {
			line += fmt.Sprintf("  [%g..%g]", p.Min, p.Max)
		}
		fmt.Printf("%s  (%d distinct)\n", line, p.Distinct)
	}
	fmt.Printf("charts: %d\n", len(res.Charts))
	for _, c := range res.Charts {
		fmt.Printf("  %-13s %s\n", c.Type, c.Title)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "profile: "+format+"\n", args...)
	os.Exit(1)
}
