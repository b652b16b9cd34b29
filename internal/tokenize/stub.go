package tokenize

// #region imports
import (
	"fmt"
	"strings"
	"unicode"

	"github.com/aoi20031020/ripogram-generator/internal/kana"
)

// #endregion imports

// #region stub

// StubEntry is one dictionary word for the stub tokenizer.
type StubEntry struct {
	Surface string
	Reading string
	POS     string
}

// Stub is a deterministic Tokenizer for tests: greedy longest-match over a
// fixed dictionary, with unknown runes emitted one per token. It stands in
// for kagome where tests need exact, reproducible segmentation.
type Stub struct {
	entries []StubEntry
	// FailSubstring, when non-empty, makes Tokenize fail for any text
	// containing it. Exercises the all-or-nothing tokenization contract.
	FailSubstring string
}

// NewStub builds a stub tokenizer from dictionary entries. Entries with a
// longer surface win over shorter prefixes at the same position.
func NewStub(entries ...StubEntry) *Stub {
	return &Stub{entries: entries}
}

// Tokenize segments text greedily against the dictionary. Runes not
// covered by any entry become single-rune tokens: punctuation and spaces
// get POS 記号, everything else 名詞 with the folded rune as reading.
func (s *Stub) Tokenize(text string) ([]Token, error) {
	if s.FailSubstring != "" && strings.Contains(text, s.FailSubstring) {
		return nil, fmt.Errorf("%w: unparseable input", ErrTokenize)
	}
	var toks []Token
	runes := []rune(text)
	for i := 0; i < len(runes); {
		best := StubEntry{}
		for _, e := range s.entries {
			es := []rune(e.Surface)
			if len(es) == 0 || i+len(es) > len(runes) {
				continue
			}
			if string(runes[i:i+len(es)]) != e.Surface {
				continue
			}
			if len(es) > len([]rune(best.Surface)) {
				best = e
			}
		}
		if best.Surface != "" {
			toks = append(toks, Token{
				Surface: best.Surface,
				Reading: kana.FoldToHiragana(best.Reading),
				POS:     best.POS,
				Index:   len(toks),
			})
			i += len([]rune(best.Surface))
			continue
		}
		r := runes[i]
		pos := "名詞"
		if unicode.IsSpace(r) || unicode.IsPunct(r) || r == '。' || r == '、' {
			pos = "記号"
		}
		toks = append(toks, Token{
			Surface: string(r),
			Reading: kana.FoldToHiragana(string(r)),
			POS:     pos,
			Index:   len(toks),
		})
		i++
	}
	return toks, nil
}

// #endregion stub
