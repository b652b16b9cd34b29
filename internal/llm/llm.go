// Package llm is the generation capability consumed by the rewrite engine:
// an OpenAI-compatible chat client plus scripted stand-ins for tests.
package llm

// #region imports
import (
	"context"
	"errors"
)

// #endregion imports

// #region errors

// ErrGeneration wraps any capability failure: transport errors, timeouts,
// and empty or malformed responses. The rewrite engine consumes one retry
// attempt per occurrence and continues.
var ErrGeneration = errors.New("generation")

// #endregion errors

// #region stage

// Stage is the escalation level of a replacement request.
type Stage int

const (
	// StageSynonym asks for a direct synonym of the target word.
	StageSynonym Stage = iota + 1
	// StageHypernym asks for a broader category term.
	StageHypernym
	// StageParaphrase asks for a free paraphrase that keeps the sentence meaning.
	StageParaphrase
)

// String returns the stage name used in logs and attempt records.
func (s Stage) String() string {
	switch s {
	case StageSynonym:
		return "synonym"
	case StageHypernym:
		return "hypernym"
	case StageParaphrase:
		return "paraphrase"
	default:
		return "unknown"
	}
}

// #endregion stage

// #region request

// Request carries the full context for one replacement attempt. Rejected
// lists candidate surfaces already refused for this token so the model does
// not resubmit them.
type Request struct {
	FullText     string
	SentenceText string
	Target       string
	POS          string
	Banned       []string
	Stage        Stage
	Rejected     []string
}

// #endregion request

// #region generator

// Generator produces one candidate replacement per call. Implementations
// must not retry internally; a failed call is reported as an error and the
// caller decides whether to try again.
type Generator interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// #endregion generator
