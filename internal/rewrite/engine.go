// Package rewrite transforms Japanese text so that its phonetic reading
// avoids a banned-character set. The sequential engine runs a bounded
// per-token retry state machine; the one-shot baseline delegates the whole
// text to the generation capability in a single call.
package rewrite

// #region imports
import (
	"context"
	"log"
	"strings"

	"github.com/aoi20031020/ripogram-generator/internal/constraint"
	"github.com/aoi20031020/ripogram-generator/internal/llm"
	"github.com/aoi20031020/ripogram-generator/internal/segment"
	"github.com/aoi20031020/ripogram-generator/internal/tokenize"
)

// #endregion imports

// #region engine-struct

// Engine is the sequential constrained-rewrite engine. Each instance owns
// no shared mutable state, so distinct texts may be rewritten concurrently
// on separate goroutines with separate Engine values or the same one: all
// per-invocation state lives on the call stack.
type Engine struct {
	tok tokenize.Tokenizer
	det *constraint.Detector
	gen llm.Generator
	cfg Config
}

// NewEngine wires the sequential engine from its collaborators.
func NewEngine(tok tokenize.Tokenizer, gen llm.Generator, cfg Config) *Engine {
	if cfg.MaxAttempts <= 0 {
		cfg = DefaultConfig()
	}
	return &Engine{
		tok: tok,
		det: constraint.NewDetector(tok),
		gen: gen,
		cfg: cfg,
	}
}

// ID identifies the sequential strategy.
func (e *Engine) ID() StrategyID { return StrategySequential }

// #endregion engine-struct

// #region rewrite

// Rewrite processes text sentence by sentence. An empty banned set is the
// identity rewrite. A sentence that fails tokenization is recorded in
// SentenceErrors and carried through unchanged; every other condition,
// including a residual violation after the retry budget, is reported as
// data in the Result.
func (e *Engine) Rewrite(ctx context.Context, text string, banned []string) (Result, error) {
	var res Result
	if len(banned) == 0 || strings.TrimSpace(text) == "" {
		res.Output = text
		return res, nil
	}

	sentences := segment.Split(text)
	out := make([]segment.Sentence, 0, len(sentences))
	for si, sent := range sentences {
		newText, outcomes, attempts, residual, err := e.rewriteSentence(ctx, si, sent.Text, text, banned)
		if err != nil {
			log.Printf("[REWRITE] sentence %d: tokenization failed: %v", si, err)
			res.SentenceErrors = append(res.SentenceErrors, SentenceError{
				Sentence: si,
				Text:     sent.Text,
				Err:      err,
			})
			out = append(out, sent)
			continue
		}
		out = append(out, segment.Sentence{Text: newText, Terminal: sent.Terminal})
		res.Tokens = append(res.Tokens, outcomes...)
		res.Attempts = append(res.Attempts, attempts...)
		if residual {
			res.Residual = true
		}
	}
	res.Output = segment.Join(out)
	return res, nil
}

// #endregion rewrite

// #region rewrite-sentence

// rewriteSentence runs the retry state machine over one sentence and
// returns the reassembled body text. residual reports whether the sentence
// still violates the constraint after all tokens were processed.
func (e *Engine) rewriteSentence(ctx context.Context, si int, sentText, fullText string, banned []string) (string, []TokenOutcome, []Attempt, bool, error) {
	toks, err := e.tok.Tokenize(sentText)
	if err != nil {
		return "", nil, nil, false, err
	}

	working := make([]tokenize.Token, len(toks))
	copy(working, toks)
	states := make([]TokenState, len(working))
	for i := range states {
		states[i] = StateClean
	}

	var outcomes []TokenOutcome
	var attempts []Attempt

	for i := 0; i < len(working); i++ {
		switch states[i] {
		case StateFailed, StateAccepted:
			continue
		case StateViolating:
			// flagged by a post-acceptance rescan, process now
		default:
			if working[i].IsPunct() || !e.det.CheckToken(working[i].Surface, working[i].Reading, banned) {
				continue
			}
			states[i] = StateViolating
		}

		orig := working[i]
		if e.cfg.Verbose {
			log.Printf("[REWRITE] s%d t%d violating: %s (reading %s)", si, i, orig.Surface, orig.Reading)
		}

		tokenLog, accepted, hist := e.processToken(ctx, si, i, working, fullText, banned)
		attempts = append(attempts, tokenLog...)

		if accepted != nil {
			working[i] = *accepted
			states[i] = StateAccepted
			outcomes = append(outcomes, TokenOutcome{
				Sentence:    si,
				Index:       i,
				Original:    orig.Surface,
				Replacement: accepted.Surface,
				Reading:     accepted.Reading,
				State:       StateAccepted,
				Attempts:    hist.attempts,
				Rejected:    hist.rejected,
			})
			if e.cfg.Verbose {
				log.Printf("[REWRITE] s%d t%d accepted: %s → %s (%d attempts)", si, i, orig.Surface, accepted.Surface, hist.attempts)
			}
			// An accepted replacement can itself carry a banned reading once
			// re-read in context, or clear a neighbor purely by changing
			// word boundaries. Re-scan the whole working sentence and pick
			// up any token flagged before the current position.
			if flagged := e.rescan(working, states, banned); flagged >= 0 && flagged < i {
				i = flagged - 1
			}
			continue
		}

		states[i] = StateFailed
		replacement := orig.Surface
		reading := orig.Reading
		if e.cfg.FailedTokenPolicy == KeepLast {
			if surf, rd := lastCandidate(tokenLog); surf != "" {
				replacement, reading = surf, rd
				working[i] = tokenize.Token{Surface: surf, Reading: rd, POS: orig.POS, Index: orig.Index}
			}
		}
		outcomes = append(outcomes, TokenOutcome{
			Sentence:    si,
			Index:       i,
			Original:    orig.Surface,
			Replacement: replacement,
			Reading:     reading,
			State:       StateFailed,
			Attempts:    hist.attempts,
			Rejected:    hist.rejected,
		})
		log.Printf("[REWRITE] s%d t%d failed after %d attempts, keeping %q", si, i, hist.attempts, replacement)
	}

	newText := joinSurfaces(working)

	residual := false
	for _, o := range outcomes {
		if o.State == StateFailed {
			residual = true
		}
	}
	if !residual {
		if cc, err := e.det.Check(newText, banned, constraint.ModeReading); err == nil && cc.Violated {
			residual = true
		}
	}
	return newText, outcomes, attempts, residual, nil
}

// #endregion rewrite-sentence

// #region process-token

// processToken runs the bounded retry loop for one violating token. It
// returns the attempt log, the accepted replacement (nil when the budget is
// exhausted), and the retry history.
func (e *Engine) processToken(ctx context.Context, si, idx int, working []tokenize.Token, fullText string, banned []string) ([]Attempt, *tokenize.Token, *retryHistory) {
	hist := newRetryHistory()
	target := working[idx]
	var tokenLog []Attempt

	for hist.attempts < e.cfg.MaxAttempts {
		if ctx.Err() != nil {
			break
		}
		stage := e.cfg.stageFor(hist.attempts)
		req := llm.Request{
			FullText:     fullText,
			SentenceText: joinSurfaces(working),
			Target:       target.Surface,
			POS:          target.POS,
			Banned:       banned,
			Stage:        stage,
			Rejected:     append([]string(nil), hist.rejected...),
		}

		candidate, err := e.gen.Generate(ctx, req)
		hist.attempts++
		if err != nil {
			tokenLog = append(tokenLog, Attempt{
				Sentence: si, TokenIndex: idx, Stage: stage,
				Outcome: OutcomeGenerationFailed,
			})
			if e.cfg.Verbose {
				log.Printf("[REWRITE] s%d t%d attempt %d: generation failed: %v", si, idx, hist.attempts, err)
			}
			continue
		}

		ctoks, terr := e.tok.Tokenize(candidate)
		content := tokenize.ContentTokens(ctoks)
		if terr != nil || len(content) == 0 {
			tokenLog = append(tokenLog, Attempt{
				Sentence: si, TokenIndex: idx, Stage: stage,
				CandidateSurface: candidate,
				Outcome:          OutcomeRejectedInvalid,
			})
			hist.reject(candidate)
			continue
		}
		reading := tokenize.JoinReading(content)

		if hist.isRejected(candidate) || e.det.CheckToken(candidate, reading, banned) {
			tokenLog = append(tokenLog, Attempt{
				Sentence: si, TokenIndex: idx, Stage: stage,
				CandidateSurface: candidate,
				CandidateReading: reading,
				Outcome:          OutcomeRejectedViolates,
			})
			hist.reject(candidate)
			continue
		}

		tokenLog = append(tokenLog, Attempt{
			Sentence: si, TokenIndex: idx, Stage: stage,
			CandidateSurface: candidate,
			CandidateReading: reading,
			Outcome:          OutcomeAccepted,
		})
		accepted := tokenize.Token{
			Surface: candidate,
			Reading: reading,
			POS:     target.POS,
			Index:   target.Index,
		}
		return tokenLog, &accepted, hist
	}
	return tokenLog, nil, hist
}

// #endregion process-token

// #region rescan

// rescan re-checks the working sentence after an acceptance and flags any
// token whose surface or reading now violates. Returns the smallest newly
// flagged index, or -1. A sentence-level violation with no attributable
// token (pure boundary merging) is left for the final residual check.
func (e *Engine) rescan(working []tokenize.Token, states []TokenState, banned []string) int {
	cc, err := e.det.Check(joinSurfaces(working), banned, constraint.ModeReading)
	if err != nil || !cc.Violated {
		return -1
	}
	first := -1
	for j, t := range working {
		if states[j] == StateFailed || states[j] == StateViolating || t.IsPunct() {
			continue
		}
		if e.det.CheckToken(t.Surface, t.Reading, banned) {
			states[j] = StateViolating
			if first == -1 {
				first = j
			}
		}
	}
	return first
}

// #endregion rescan

// #region helpers

// joinSurfaces reassembles a token sequence. Japanese joins morphemes with
// no separator.
func joinSurfaces(toks []tokenize.Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Surface)
	}
	return b.String()
}

// lastCandidate returns the surface and reading of the most recent attempt
// that produced a concrete candidate.
func lastCandidate(attempts []Attempt) (string, string) {
	for i := len(attempts) - 1; i >= 0; i-- {
		if attempts[i].CandidateSurface != "" {
			return attempts[i].CandidateSurface, attempts[i].CandidateReading
		}
	}
	return "", ""
}

// #endregion helpers
