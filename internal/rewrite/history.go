package rewrite

// #region retry-history

// retryHistory is the per-token rejection log. It exists only while a
// violating token is in the retry loop: created on the first violation,
// discarded on acceptance or when the sentence finishes.
type retryHistory struct {
	rejected []string
	seen     map[string]bool
	attempts int
}

func newRetryHistory() *retryHistory {
	return &retryHistory{seen: make(map[string]bool)}
}

// reject records a refused candidate surface. Duplicates are kept out of
// the ordered list but still count as seen.
func (h *retryHistory) reject(surface string) {
	if surface == "" || h.seen[surface] {
		return
	}
	h.seen[surface] = true
	h.rejected = append(h.rejected, surface)
}

// isRejected reports whether a candidate was already refused.
func (h *retryHistory) isRejected(surface string) bool {
	return h.seen[surface]
}

// #endregion retry-history
