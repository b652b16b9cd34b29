package main

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aoi20031020/ripogram-generator/internal/config"
	"github.com/aoi20031020/ripogram-generator/internal/kana"
	"github.com/aoi20031020/ripogram-generator/internal/llm"
	"github.com/aoi20031020/ripogram-generator/internal/metrics"
	"github.com/aoi20031020/ripogram-generator/internal/results"
	"github.com/aoi20031020/ripogram-generator/internal/rewrite"
	"github.com/aoi20031020/ripogram-generator/internal/tokenize"
)

// #region row-types

// inputRow is one dataset row: the text, its banned spec, and any
// passthrough metadata preserved into the output.
type inputRow struct {
	ID     int
	Text   string
	Banned []string
	Meta   map[string]string
}

// outputRow pairs an input row with one method's evaluation.
type outputRow struct {
	Row     inputRow
	Method  string
	Record  metrics.EvaluationRecord
	Attempt []rewrite.Attempt
}

// #endregion row-types

// #region main

func main() {
	input := flag.String("input", "", "path to input CSV or JSONL (columns: text, optional banned_chars)")
	output := flag.String("output", "results.csv", "path to output CSV")
	methodsFlag := flag.String("methods", "sequential,oneshot", "comma-separated methods to evaluate")
	bannedFlag := flag.String("banned", "", "fallback banned characters when a row has none")
	limit := flag.Int("limit", 0, "process at most N rows (0 = all)")
	workers := flag.Int("workers", 4, "concurrent rows in flight")
	model := flag.String("model", "", "override OPENAI_MODEL")
	envFile := flag.String("env", "", "path to .env file")
	noDB := flag.Bool("no-db", false, "skip persisting records to the results database")
	flag.Parse()

	if *input == "" {
		fmt.Fprintln(os.Stderr, "usage: evaluate -input data.csv [-output results.csv] [-methods sequential,oneshot] [-banned 'い,さ']")
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}

	fallback := kana.ExpandBanned(*bannedFlag)
	rows, err := readRows(*input, fallback, *limit)
	if err != nil {
		log.Fatalf("read input: %v", err)
	}
	if len(rows) == 0 {
		log.Fatal("no usable rows in input")
	}

	methods := splitMethods(*methodsFlag)
	if len(methods) == 0 {
		log.Fatal("no methods selected")
	}

	tok, err := tokenize.NewKagome()
	if err != nil {
		log.Fatalf("tokenizer: %v", err)
	}
	client, err := llm.NewOpenAIClient(llm.OpenAIOptions{
		BaseURL:     cfg.BaseURL,
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		Temperature: cfg.Temperature,
	})
	if err != nil {
		log.Fatalf("llm: %v", err)
	}

	var store *results.Store
	if !*noDB {
		store, err = results.NewStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("results store: %v", err)
		}
		defer store.Close()
	}

	runID := uuid.NewString()
	log.Printf("[BATCH] run %s: %d rows x %d methods, %d workers", runID, len(rows), len(methods), *workers)

	outRows := runBatch(rows, methods, tok, client, cfg, *workers)

	if store != nil {
		for _, or := range outRows {
			if _, err := store.SaveRecord(runID, or.Record, or.Attempt); err != nil {
				log.Printf("[BATCH] save record row %d: %v", or.Row.ID, err)
			}
		}
	}
	if err := writeCSV(*output, outRows); err != nil {
		log.Fatalf("write output: %v", err)
	}
	log.Printf("[BATCH] wrote %d rows to %s", len(outRows), *output)
}

// #endregion main

// #region batch

// runBatch evaluates every (row, method) pair. Rows run concurrently on a
// bounded worker pool; within one row, attempts stay strictly sequential
// because each attempt's context depends on all prior ones. No state is
// shared between rows beyond the stateless collaborators.
func runBatch(rows []inputRow, methods []string, tok tokenize.Tokenizer, client *llm.OpenAIClient, cfg *config.Config, workers int) []outputRow {
	if workers < 1 {
		workers = 1
	}
	eng := metrics.NewEngine(tok)

	type job struct{ row inputRow }
	jobs := make(chan job)
	var mu sync.Mutex
	var out []outputRow
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				for _, method := range methods {
					or, err := runMethod(j.row, method, tok, client, cfg, eng)
					if err != nil {
						log.Printf("[BATCH] row %d %s: %v", j.row.ID, method, err)
						continue
					}
					mu.Lock()
					out = append(out, or)
					mu.Unlock()
					log.Printf("[BATCH] row %d %s: violated=%v vrr=%.3f time=%.2fs",
						j.row.ID, method, or.Record.ConstraintViolated, or.Record.VRR, or.Record.ElapsedSeconds)
				}
			}
		}()
	}
	for _, r := range rows {
		jobs <- job{row: r}
	}
	close(jobs)
	wg.Wait()

	sort.Slice(out, func(i, k int) bool {
		if out[i].Row.ID != out[k].Row.ID {
			return out[i].Row.ID < out[k].Row.ID
		}
		return out[i].Method < out[k].Method
	})
	return out
}

func runMethod(row inputRow, method string, tok tokenize.Tokenizer, client *llm.OpenAIClient, cfg *config.Config, eng *metrics.Engine) (outputRow, error) {
	strategy, err := rewrite.Select(rewrite.StrategyID(method),
		rewrite.NewEngine(tok, client, cfg.RewriteConfig(false)),
		rewrite.NewOneShot(client),
	)
	if err != nil {
		return outputRow{}, err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	var result rewrite.Result
	elapsed, out, err := metrics.Measure(func() (string, error) {
		var rerr error
		result, rerr = strategy.Rewrite(ctx, row.Text, row.Banned)
		return result.Output, rerr
	})
	if err != nil {
		return outputRow{}, err
	}

	rec, err := eng.Evaluate(row.Text, out, row.Banned)
	if err != nil {
		return outputRow{}, err
	}
	rec.Method = method
	rec.ElapsedSeconds = elapsed

	return outputRow{Row: row, Method: method, Record: rec, Attempt: result.Attempts}, nil
}

// #endregion batch

// #region input

func readRows(path string, fallback []string, limit int) ([]inputRow, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSVRows(path, fallback, limit)
	case ".jsonl", ".ndjson":
		return readJSONLRows(path, fallback, limit)
	default:
		return nil, fmt.Errorf("unsupported input format %q (use .csv or .jsonl)", filepath.Ext(path))
	}
}

func readCSVRows(path string, fallback []string, limit int) ([]inputRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	all, err := r.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	header := all[0]
	var rows []inputRow
	for i, rawRow := range all[1:] {
		fields := make(map[string]string, len(header))
		for c, name := range header {
			if c < len(rawRow) {
				fields[name] = rawRow[c]
			}
		}
		row, ok := buildRow(i, fields, fallback)
		if !ok {
			continue
		}
		rows = append(rows, row)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows, nil
}

func readJSONLRows(path string, fallback []string, limit int) ([]inputRow, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var rows []inputRow
	for i, line := range strings.Split(string(raw), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj map[string]any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
		fields := make(map[string]string, len(obj))
		for k, v := range obj {
			fields[k] = fmt.Sprintf("%v", v)
		}
		row, ok := buildRow(i, fields, fallback)
		if !ok {
			continue
		}
		rows = append(rows, row)
		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	return rows, nil
}

func buildRow(id int, fields map[string]string, fallback []string) (inputRow, bool) {
	text := strings.TrimSpace(fields["text"])
	if text == "" {
		text = strings.TrimSpace(fields["sentence"])
	}
	if text == "" {
		return inputRow{}, false
	}
	spec := strings.TrimSpace(fields["banned_chars"])
	if spec == "" {
		spec = strings.TrimSpace(fields["banned"])
	}
	banned := kana.ExpandBanned(spec)
	if len(banned) == 0 {
		banned = fallback
	}
	if len(banned) == 0 {
		log.Printf("[BATCH] row %d: no banned characters, skipping", id)
		return inputRow{}, false
	}

	meta := make(map[string]string)
	for k, v := range fields {
		switch k {
		case "text", "sentence", "banned", "banned_chars":
		default:
			meta[k] = v
		}
	}
	return inputRow{ID: id, Text: text, Banned: banned, Meta: meta}, true
}

// #endregion input

// #region output

func writeCSV(path string, rows []outputRow) error {
	// Collect passthrough metadata columns in stable order.
	metaSet := make(map[string]bool)
	for _, r := range rows {
		for k := range r.Row.Meta {
			metaSet[k] = true
		}
	}
	metaCols := make([]string, 0, len(metaSet))
	for k := range metaSet {
		metaCols = append(metaCols, k)
	}
	sort.Strings(metaCols)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"id", "method", "text", "banned_chars", "output",
		"constraint_violated", "constraint_found", "constraint_count",
		"vrr", "ttr", "bigram_rep", "trigram_rep", "time_sec",
	}
	header = append(header, metaCols...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := r.Record
		line := []string{
			fmt.Sprintf("%d", r.Row.ID),
			r.Method,
			r.Row.Text,
			strings.Join(rec.BannedChars, ","),
			rec.RewrittenText,
			fmt.Sprintf("%v", rec.ConstraintViolated),
			strings.Join(rec.FoundChars, ","),
			fmt.Sprintf("%d", rec.ViolationCount),
			fmt.Sprintf("%.6f", rec.VRR),
			fmt.Sprintf("%.6f", rec.TTR),
			fmt.Sprintf("%.6f", rec.BigramRep),
			fmt.Sprintf("%.6f", rec.TrigramRep),
			fmt.Sprintf("%.6f", rec.ElapsedSeconds),
		}
		for _, k := range metaCols {
			line = append(line, r.Row.Meta[k])
		}
		if err := w.Write(line); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// #endregion output

// #region helpers

func splitMethods(spec string) []string {
	var out []string
	for _, m := range strings.Split(spec, ",") {
		m = strings.TrimSpace(m)
		if m != "" {
			out = append(out, m)
		}
	}
	return out
}

// #endregion helpers
