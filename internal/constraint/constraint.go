// Package constraint tests text against a banned-character set, by phonetic
// reading or by literal surface form.
package constraint

// #region imports
import (
	"fmt"

	"github.com/aoi20031020/ripogram-generator/internal/kana"
	"github.com/aoi20031020/ripogram-generator/internal/tokenize"
)

// #endregion imports

// #region mode

// Mode selects the basis of the check.
type Mode string

const (
	// ModeReading checks the concatenated hiragana readings of the content
	// tokens. This is the default: a banned kana may be present in the
	// pronunciation without appearing in the written surface.
	ModeReading Mode = "reading"
	// ModeSurface checks the literal text as written.
	ModeSurface Mode = "surface"
)

// #endregion mode

// #region result

// Result is the outcome of one constraint check.
type Result struct {
	Violated bool
	Found    []string // banned characters present, in banned-set order
	Count    int      // total occurrences across all found characters
	Mode     Mode
}

// #endregion result

// #region detector

// Detector runs banned-character checks over tokenized text.
type Detector struct {
	tok tokenize.Tokenizer
}

// NewDetector creates a detector using the given tokenizer.
func NewDetector(tok tokenize.Tokenizer) *Detector {
	return &Detector{tok: tok}
}

// Check scans text for banned characters. In reading mode the text is
// tokenized, punctuation tokens are dropped, and the remaining readings are
// concatenated before scanning; in surface mode the raw text is scanned as
// written. An empty banned set never violates.
func (d *Detector) Check(text string, banned []string, mode Mode) (Result, error) {
	if mode != ModeReading && mode != ModeSurface {
		return Result{}, fmt.Errorf("constraint: unknown mode %q", mode)
	}
	basis := text
	if mode == ModeReading {
		toks, err := d.tok.Tokenize(text)
		if err != nil {
			return Result{}, err
		}
		basis = tokenize.JoinReading(tokenize.ContentTokens(toks))
	}
	found, count := kana.CountOccurrences(basis, banned)
	return Result{
		Violated: count > 0,
		Found:    found,
		Count:    count,
		Mode:     mode,
	}, nil
}

// CheckToken scans a single candidate token: its surface as written and its
// reading. A banned character in either counts as a violation. This is the
// fast path the rewrite engine runs before accepting a replacement.
func (d *Detector) CheckToken(surface, reading string, banned []string) bool {
	return kana.ContainsAny(surface, banned) ||
		kana.ContainsAny(kana.FoldToHiragana(reading), banned)
}

// #endregion detector
