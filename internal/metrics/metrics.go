// Package metrics scores rewrite quality: constraint compliance, vocabulary
// replacement rate, lexical diversity, and n-gram repetition. All metrics
// are pure functions over token sequences; no network calls happen here.
package metrics

// #region imports
import (
	"time"

	"github.com/aoi20031020/ripogram-generator/internal/constraint"
	"github.com/aoi20031020/ripogram-generator/internal/tokenize"
)

// #endregion imports

// #region engine

// Engine computes evaluation metrics using a shared tokenizer.
type Engine struct {
	tok      tokenize.Tokenizer
	detector *constraint.Detector
}

// NewEngine creates a metrics engine over the given tokenizer.
func NewEngine(tok tokenize.Tokenizer) *Engine {
	return &Engine{tok: tok, detector: constraint.NewDetector(tok)}
}

// #endregion engine

// #region vrr

// VRR computes the vocabulary replacement rate between original and
// rewritten text. Punctuation tokens are excluded. Equal-length token
// sequences are compared positionally; otherwise the rate is approximated
// as 1 - LCS/len(original), which tolerates insertions and deletions but is
// not an edit-distance-optimal replacement count. Returns 0 when the
// original has no content tokens.
func (e *Engine) VRR(original, rewritten string) (float64, error) {
	origToks, err := e.tok.Tokenize(original)
	if err != nil {
		return 0, err
	}
	rewToks, err := e.tok.Tokenize(rewritten)
	if err != nil {
		return 0, err
	}
	orig := tokenize.Surfaces(tokenize.ContentTokens(origToks))
	rew := tokenize.Surfaces(tokenize.ContentTokens(rewToks))

	total := len(orig)
	if total == 0 {
		return 0, nil
	}
	if len(orig) == len(rew) {
		replaced := 0
		for i := range orig {
			if orig[i] != rew[i] {
				replaced++
			}
		}
		return float64(replaced) / float64(total), nil
	}
	replaced := total - lcsLength(orig, rew)
	if replaced < 0 {
		replaced = 0
	}
	return float64(replaced) / float64(total), nil
}

// lcsLength computes the longest-common-subsequence length of two surface
// sequences with the standard O(n*m) table, kept to two rolling rows.
func lcsLength(a, b []string) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1] + 1
			} else if cur[j-1] >= prev[j] {
				cur[j] = cur[j-1]
			} else {
				cur[j] = prev[j]
			}
		}
		prev, cur = cur, prev
		for j := range cur {
			cur[j] = 0
		}
	}
	return prev[len(b)]
}

// #endregion vrr

// #region ttr

// TTR computes the type-token ratio (unique content surfaces over total).
// Defined as 0 for text with no content tokens.
func (e *Engine) TTR(text string) (float64, error) {
	toks, err := e.tok.Tokenize(text)
	if err != nil {
		return 0, err
	}
	surfaces := tokenize.Surfaces(tokenize.ContentTokens(toks))
	if len(surfaces) == 0 {
		return 0, nil
	}
	uniq := make(map[string]bool, len(surfaces))
	for _, s := range surfaces {
		uniq[s] = true
	}
	return float64(len(uniq)) / float64(len(surfaces)), nil
}

// #endregion ttr

// #region ngram-repetition

// NgramRepetition computes the proportion of repeated n-grams over the
// content-token surfaces: sum(max(count-1, 0)) / total n-grams. Returns 0
// when fewer than n content tokens exist.
func (e *Engine) NgramRepetition(text string, n int) (float64, error) {
	toks, err := e.tok.Tokenize(text)
	if err != nil {
		return 0, err
	}
	surfaces := tokenize.Surfaces(tokenize.ContentTokens(toks))
	if n <= 0 || len(surfaces) < n {
		return 0, nil
	}
	total := len(surfaces) - n + 1
	counts := make(map[string]int, total)
	for i := 0; i < total; i++ {
		key := joinGram(surfaces[i : i+n])
		counts[key]++
	}
	repeated := 0
	for _, c := range counts {
		if c > 1 {
			repeated += c - 1
		}
	}
	return float64(repeated) / float64(total), nil
}

// joinGram builds a collision-safe map key from an n-gram window.
func joinGram(gram []string) string {
	key := ""
	for _, g := range gram {
		key += g + "\x1f"
	}
	return key
}

// #endregion ngram-repetition

// #region evaluate

// Evaluate runs the full metric set for one rewrite and returns the record.
// ElapsedSeconds is left zero; callers that timed the rewrite fill it in.
func (e *Engine) Evaluate(original, rewritten string, banned []string) (EvaluationRecord, error) {
	cc, err := e.detector.Check(rewritten, banned, constraint.ModeReading)
	if err != nil {
		return EvaluationRecord{}, err
	}
	vrr, err := e.VRR(original, rewritten)
	if err != nil {
		return EvaluationRecord{}, err
	}
	ttr, err := e.TTR(rewritten)
	if err != nil {
		return EvaluationRecord{}, err
	}
	rep2, err := e.NgramRepetition(rewritten, 2)
	if err != nil {
		return EvaluationRecord{}, err
	}
	rep3, err := e.NgramRepetition(rewritten, 3)
	if err != nil {
		return EvaluationRecord{}, err
	}
	return EvaluationRecord{
		OriginalText:       original,
		RewrittenText:      rewritten,
		BannedChars:        banned,
		ConstraintViolated: cc.Violated,
		FoundChars:         cc.Found,
		ViolationCount:     cc.Count,
		VRR:                vrr,
		TTR:                ttr,
		BigramRep:          rep2,
		TrigramRep:         rep3,
	}, nil
}

// #endregion evaluate

// #region timing

// Measure runs fn and returns its wall-clock duration in seconds alongside
// the result. Errors from fn propagate unchanged.
func Measure(fn func() (string, error)) (float64, string, error) {
	start := time.Now()
	out, err := fn()
	return time.Since(start).Seconds(), out, err
}

// #endregion timing
