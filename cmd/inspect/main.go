package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/aoi20031020/ripogram-generator/internal/results"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to the results database")
	last := flag.Int("last", 20, "show N most recent records")
	record := flag.String("record", "", "show single record detail with its attempt log")
	summary := flag.Bool("summary", false, "show per-method aggregates instead of rows")
	jsonOut := flag.Bool("json", false, "output as JSON instead of table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/ripogram_results.db [--last N] [--record id] [--summary] [--json]")
		os.Exit(2)
	}

	store, err := results.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	switch {
	case *summary:
		err = runSummaryMode(store, *jsonOut)
	case *record != "":
		err = runDetailMode(store, *record, *jsonOut)
	default:
		err = runListMode(store, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(store *results.Store, last int, jsonOut bool) error {
	recs, err := store.Recent(last)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(recs)
	}
	fmt.Printf("%-36s  %-10s  %-8s  %-6s  %-6s  %-8s  %s\n",
		"RECORD", "METHOD", "VIOLATED", "VRR", "TTR", "TIME", "OUTPUT")
	for _, r := range recs {
		fmt.Printf("%-36s  %-10s  %-8v  %.3f  %.3f  %6.2fs  %s\n",
			r.ID, r.Method, r.ConstraintViolated, r.VRR, r.TTR, r.ElapsedSeconds,
			clip(r.RewrittenText, 40))
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(store *results.Store, recordID string, jsonOut bool) error {
	rec, attempts, err := store.Get(recordID)
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(struct {
			Record   results.StoredRecord    `json:"record"`
			Attempts []results.StoredAttempt `json:"attempts"`
		}{rec, attempts})
	}
	fmt.Printf("record:    %s (run %s, method %s)\n", rec.ID, rec.RunID, rec.Method)
	fmt.Printf("original:  %s\n", rec.OriginalText)
	fmt.Printf("rewritten: %s\n", rec.RewrittenText)
	fmt.Printf("banned:    %s\n", strings.Join(rec.BannedChars, ","))
	fmt.Printf("violated:  %v (found %s, count %d)\n",
		rec.ConstraintViolated, strings.Join(rec.FoundChars, ""), rec.ViolationCount)
	fmt.Printf("metrics:   vrr=%.3f ttr=%.3f rep2=%.3f rep3=%.3f time=%.2fs\n",
		rec.VRR, rec.TTR, rec.BigramRep, rec.TrigramRep, rec.ElapsedSeconds)
	if len(attempts) > 0 {
		fmt.Println("attempts:")
		for _, a := range attempts {
			fmt.Printf("  s%d t%-3d %-10s %-18s %s\n",
				a.Sentence, a.TokenIndex, a.Stage, a.Outcome, a.CandidateSurface)
		}
	}
	return nil
}

// #endregion detail-mode

// #region summary-mode

func runSummaryMode(store *results.Store, jsonOut bool) error {
	sums, err := store.Summaries()
	if err != nil {
		return err
	}
	if jsonOut {
		return json.NewEncoder(os.Stdout).Encode(sums)
	}
	fmt.Printf("%-12s  %-8s  %-10s  %-8s  %-8s  %s\n",
		"METHOD", "RECORDS", "VIOL RATE", "VRR", "TTR", "TIME")
	for _, s := range sums {
		fmt.Printf("%-12s  %-8d  %-10.3f  %.3f  %.3f  %6.2fs\n",
			s.Method, s.Records, s.ViolationRate, s.MeanVRR, s.MeanTTR, s.MeanElapsed)
	}
	return nil
}

// #endregion summary-mode

// #region helpers

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}

// #endregion helpers
