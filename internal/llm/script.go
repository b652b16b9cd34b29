package llm

// #region imports
import (
	"context"
	"fmt"
	"sync"
)

// #endregion imports

// #region script

// Script is a deterministic Generator for tests and offline runs. It maps a
// target surface to an ordered list of canned replies; each Generate call
// for a target consumes the next reply, and the last reply repeats once the
// list is exhausted. Targets with no entry fail with ErrGeneration.
type Script struct {
	mu      sync.Mutex
	replies map[string][]string
	cursor  map[string]int
	calls   int
}

// NewScript builds a scripted generator from a target → replies table.
func NewScript(replies map[string][]string) *Script {
	return &Script{
		replies: replies,
		cursor:  make(map[string]int),
	}
}

// Generate returns the next canned reply for the request target.
func (s *Script) Generate(_ context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	list, ok := s.replies[req.Target]
	if !ok || len(list) == 0 {
		return "", fmt.Errorf("%w: no scripted reply for %q", ErrGeneration, req.Target)
	}
	i := s.cursor[req.Target]
	if i >= len(list) {
		i = len(list) - 1
	} else {
		s.cursor[req.Target] = i + 1
	}
	return list[i], nil
}

// Calls reports how many Generate invocations the script has served.
func (s *Script) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// #endregion script

// #region failing

// Failing is a Generator whose every call fails. Used to exercise the
// generation-failed attempt path.
type Failing struct{}

// Generate always reports a capability failure.
func (Failing) Generate(context.Context, Request) (string, error) {
	return "", fmt.Errorf("%w: scripted failure", ErrGeneration)
}

// #endregion failing
