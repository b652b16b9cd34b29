package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/aoi20031020/ripogram-generator/internal/config"
	"github.com/aoi20031020/ripogram-generator/internal/kana"
	"github.com/aoi20031020/ripogram-generator/internal/llm"
	"github.com/aoi20031020/ripogram-generator/internal/metrics"
	"github.com/aoi20031020/ripogram-generator/internal/results"
	"github.com/aoi20031020/ripogram-generator/internal/rewrite"
	"github.com/aoi20031020/ripogram-generator/internal/tokenize"
)

// #region main

func main() {
	bannedFlag := flag.String("banned", "", "comma-separated banned characters, e.g. 'さ,い' (rows like あ行 expand)")
	mode := flag.String("mode", string(rewrite.StrategySequential), "rewrite mode: sequential or oneshot")
	model := flag.String("model", "", "override OPENAI_MODEL")
	envFile := flag.String("env", "", "path to .env file")
	verbose := flag.Bool("verbose", false, "per-token trace output")
	save := flag.Bool("save", false, "persist the evaluation record to the results database")
	timeout := flag.Duration("timeout", 5*time.Minute, "overall rewrite deadline")
	flag.Parse()

	cfg, err := config.Load(*envFile)
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if *model != "" {
		cfg.Model = *model
	}

	bannedSpec := *bannedFlag
	if bannedSpec == "" {
		bannedSpec = cfg.DefaultBanned
	}
	banned := kana.ExpandBanned(bannedSpec)
	if len(banned) == 0 {
		log.Fatal("no banned characters given (-banned or DEFAULT_BANNED_CHARS)")
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

	strategy, err := rewrite.Select(rewrite.StrategyID(*mode),
		rewrite.NewEngine(tok, client, cfg.RewriteConfig(*verbose)),
		rewrite.NewOneShot(client),
	)
	if err != nil {
		log.Fatalf("%v", err)
	}

	var store *results.Store
	if *save {
		store, err = results.NewStore(cfg.DBPath)
		if err != nil {
			log.Fatalf("results store: %v", err)
		}
		defer store.Close()
	}

	eng := metrics.NewEngine(tok)

	if flag.NArg() > 0 {
		text := strings.Join(flag.Args(), " ")
		runOne(strategy, eng, store, text, banned, *timeout, *verbose)
		return
	}

	fmt.Printf("ripogram ready. mode=%s model=%s banned=%s\n", strategy.ID(), cfg.Model, strings.Join(banned, ","))
	fmt.Println("Type a sentence (or 'quit' to exit):")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		if text == "quit" || text == "exit" {
			break
		}
		runOne(strategy, eng, store, text, banned, *timeout, *verbose)
	}
}

// #endregion main

// #region run-one

func runOne(strategy rewrite.Strategy, eng *metrics.Engine, store *results.Store, text string, banned []string, timeout time.Duration, verbose bool) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var result rewrite.Result
	elapsed, out, err := metrics.Measure(func() (string, error) {
		var rerr error
		result, rerr = strategy.Rewrite(ctx, text, banned)
		return result.Output, rerr
	})
	if err != nil {
		log.Printf("rewrite error: %v", err)
		return
	}
	fmt.Println(out)

	rec, err := eng.Evaluate(text, out, banned)
	if err != nil {
		log.Printf("evaluate error: %v", err)
		return
	}
	rec.Method = string(strategy.ID())
	rec.ElapsedSeconds = elapsed

	if verbose {
		fmt.Printf("[EVAL] violated=%v found=%s count=%d vrr=%.3f ttr=%.3f rep2=%.3f rep3=%.3f time=%.2fs\n",
			rec.ConstraintViolated, strings.Join(rec.FoundChars, ""), rec.ViolationCount,
			rec.VRR, rec.TTR, rec.BigramRep, rec.TrigramRep, rec.ElapsedSeconds)
		for _, t := range result.Tokens {
			fmt.Printf("[EVAL] s%d t%d %s: %s → %s (%d attempts)\n",
				t.Sentence, t.Index, t.State, t.Original, t.Replacement, t.Attempts)
		}
		for _, se := range result.SentenceErrors {
			fmt.Printf("[EVAL] sentence %d skipped: %v\n", se.Sentence, se.Err)
		}
	}

	if store != nil {
		id, err := store.SaveRecord("cli", rec, result.Attempts)
		if err != nil {
			log.Printf("save record: %v", err)
			return
		}
		if verbose {
			fmt.Printf("[EVAL] saved record %s\n", id)
		}
	}
}

// #endregion run-one
