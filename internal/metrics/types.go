package metrics

// #region evaluation-record

// EvaluationRecord is the full scoring output for one (text, method) pair.
// Records are immutable once built; the results store persists them as-is.
type EvaluationRecord struct {
	ID                 string
	Method             string
	OriginalText       string
	RewrittenText      string
	BannedChars        []string
	ConstraintViolated bool
	FoundChars         []string
	ViolationCount     int
	VRR                float64
	TTR                float64
	BigramRep          float64
	TrigramRep         float64
	ElapsedSeconds     float64
}

// #endregion evaluation-record
