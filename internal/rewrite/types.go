package rewrite

// #region imports
import (
	"github.com/aoi20031020/ripogram-generator/internal/llm"
)

// #endregion imports

// #region token-state

// TokenState tracks a token through the retry state machine.
type TokenState string

const (
	StateClean     TokenState = "clean"
	StateViolating TokenState = "violating"
	StateAccepted  TokenState = "accepted"
	StateFailed    TokenState = "failed"
)

// #endregion token-state

// #region outcome

// Outcome categorizes a single replacement attempt.
type Outcome string

const (
	OutcomeAccepted         Outcome = "accepted"
	OutcomeRejectedViolates Outcome = "rejected-violates"
	OutcomeRejectedInvalid  Outcome = "rejected-invalid"
	OutcomeGenerationFailed Outcome = "generation-failed"
)

// #endregion outcome

// #region failed-token-policy

// FailedTokenPolicy decides which surface a Failed token keeps.
type FailedTokenPolicy string

const (
	// KeepOriginal retains the token's original, possibly violating surface.
	KeepOriginal FailedTokenPolicy = "keep-original"
	// KeepLast retains the last rejected candidate instead.
	KeepLast FailedTokenPolicy = "keep-last"
)

// #endregion failed-token-policy

// #region attempt

// Attempt is one append-only row of the per-token retry log.
type Attempt struct {
	Sentence         int
	TokenIndex       int
	Stage            llm.Stage
	CandidateSurface string
	CandidateReading string
	Outcome          Outcome
}

// #endregion attempt

// #region config

// Config holds the explicit engine configuration. No globals: every knob
// the retry loop consults is enumerated here and threaded through calls.
type Config struct {
	MaxAttempts       int               // cumulative per-token budget across all stages
	StageSplit        [3]int            // attempts allotted to synonym, hypernym, paraphrase
	FailedTokenPolicy FailedTokenPolicy // surface kept when the budget is exhausted
	Verbose           bool              // per-token trace logging
}

// DefaultConfig mirrors the reference retry policy: ten attempts split
// 3/3/4 across the three escalation stages, failed tokens keep their
// original surface.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       10,
		StageSplit:        [3]int{3, 3, 4},
		FailedTokenPolicy: KeepOriginal,
	}
}

// stageFor maps a zero-based attempt number to its escalation stage.
func (c Config) stageFor(attempt int) llm.Stage {
	if attempt < c.StageSplit[0] {
		return llm.StageSynonym
	}
	if attempt < c.StageSplit[0]+c.StageSplit[1] {
		return llm.StageHypernym
	}
	return llm.StageParaphrase
}

// #endregion config

// #region token-outcome

// TokenOutcome summarizes the fate of one token that entered the retry
// loop. Tokens that never violated the constraint do not appear.
type TokenOutcome struct {
	Sentence    int
	Index       int
	Original    string
	Replacement string
	Reading     string
	State       TokenState
	Attempts    int
	Rejected    []string
}

// #endregion token-outcome

// #region sentence-error

// SentenceError records a sentence that could not be tokenized. The
// sentence is carried through unchanged and processing continues.
type SentenceError struct {
	Sentence int
	Text     string
	Err      error
}

// #endregion sentence-error

// #region result

// Result is the full outcome of one rewrite invocation. Residual reports
// whether the output still violates the constraint after all tokens were
// processed; it is data, never an error.
type Result struct {
	Output         string
	Tokens         []TokenOutcome
	Attempts       []Attempt
	Residual       bool
	SentenceErrors []SentenceError
}

// #endregion result
