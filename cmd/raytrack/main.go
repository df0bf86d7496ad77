// Command raytrack applies a ray-track filter to an SBR bundle export:
// it loads the bundle JSON, annotates it with draw flags, and optionally
// writes the annotated bundle, an HTML report, and a run record to a
// SQLite database.
package main

import (
	"database/sql"
	"flag"
	"fmt"
	"log"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/raytrack.report/internal/sbr"
	"github.com/banshee-data/raytrack.report/internal/sbr/report"
	storage "github.com/banshee-data/raytrack.report/internal/sbr/storage/sqlite"
)

var (
	bundlePath = flag.String("bundle", "", "Path to the ray bundle JSON export (required)")
	configPath = flag.String("config", "", "Optional filter tuning JSON; defaults draw everything")
	outPath    = flag.String("out", "", "Optional path to write the annotated bundle JSON")
	reportPath = flag.String("report", "", "Optional path to write an HTML report")
	dbPath     = flag.String("db", "", "Optional SQLite database to record the run")
)

func main() {
	flag.Parse()
	if *bundlePath == "" {
		log.Fatal("raytrack: -bundle is required")
	}

	bundle, err := sbr.ReadBundleFile(*bundlePath)
	if err != nil {
		log.Fatalf("raytrack: %v", err)
	}

	cfg := sbr.DefaultFilterConfig()
	if *configPath != "" {
		tuning, err := sbr.LoadFilterTuning(*configPath)
		if err != nil {
			log.Fatalf("raytrack: %v", err)
		}
		if cfg, err = tuning.Config(); err != nil {
			log.Fatalf("raytrack: %v", err)
		}
	}

	if err := sbr.ApplyFilter(bundle, cfg); err != nil {
		log.Fatalf("raytrack: apply filter: %v", err)
	}

	summaries, err := sbr.Summarize(bundle)
	if err != nil {
		log.Fatalf("raytrack: %v", err)
	}
	drawn, err := sbr.SelectTracks(bundle, true)
	if err != nil {
		log.Fatalf("raytrack: %v", err)
	}

	fmt.Printf("bundle %q: %d/%d tracks drawn\n", bundle.Name, len(drawn), len(bundle.Tracks))
	for _, s := range summaries {
		mark := " "
		if s.Drawn {
			mark = "*"
		}
		fmt.Printf("%s track %3d  type=%-3s leaves=%-4d depth=%d (refl=%d trans=%d)\n",
			mark, s.TrackIndex, s.TrackType, s.LeafCount, s.MaxDepth, s.MaxReflectionDepth, s.MaxTransmissionDepth)
	}

	if *outPath != "" {
		if err := sbr.WriteBundleFile(*outPath, bundle); err != nil {
			log.Fatalf("raytrack: %v", err)
		}
		fmt.Printf("annotated bundle written to %s\n", *outPath)
	}

	if *reportPath != "" {
		if err := report.WriteBundleReportFile(*reportPath, bundle); err != nil {
			log.Fatalf("raytrack: %v", err)
		}
		fmt.Printf("report written to %s\n", *reportPath)
	}

	if *dbPath != "" {
		db, err := sql.Open("sqlite", *dbPath)
		if err != nil {
			log.Fatalf("raytrack: open db: %v", err)
		}
		defer db.Close()
		if err := storage.MigrateUp(db); err != nil {
			log.Fatalf("raytrack: migrate: %v", err)
		}
		run, err := storage.NewFilterRunStore(db).RecordRun(bundle)
		if err != nil {
			log.Fatalf("raytrack: record run: %v", err)
		}
		fmt.Printf("run %s recorded in %s\n", run.RunID, *dbPath)
	}
}
