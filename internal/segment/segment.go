// Package segment splits raw text into sentences on terminal punctuation,
// keeping each mark attached for later reassembly.
package segment

import "strings"

// #region sentence

// Sentence is one segmented unit: the body text and the terminal
// punctuation that closed it. Terminal is empty for a trailing fragment.
type Sentence struct {
	Text     string
	Terminal string
}

// String returns the sentence with its terminal mark reattached.
func (s Sentence) String() string {
	return s.Text + s.Terminal
}

// #endregion sentence

// #region terminals

// terminal marks: Japanese sentence enders plus their ASCII counterparts.
var terminals = map[rune]bool{
	'。': true,
	'！': true,
	'？': true,
	'.': true,
	'!': true,
	'?': true,
}

// IsTerminal reports whether r ends a sentence.
func IsTerminal(r rune) bool {
	return terminals[r]
}

// #endregion terminals

// #region split

// Split segments text into sentences. Each terminal mark closes the
// sentence it follows; a trailing run with no terminal mark is emitted as a
// final Sentence with empty Terminal. Empty or whitespace-only input yields
// nil. Re-splitting the concatenation of the results reproduces the same
// boundaries.
func Split(text string) []Sentence {
	var out []Sentence
	var cur strings.Builder
	for _, r := range text {
		if terminals[r] {
			body := cur.String()
			cur.Reset()
			if strings.TrimSpace(body) == "" && len(out) > 0 {
				// Consecutive terminal marks extend the previous sentence
				// so "！？" stays one unit with both marks preserved.
				out[len(out)-1].Terminal += string(r)
				continue
			}
			out = append(out, Sentence{Text: body, Terminal: string(r)})
			continue
		}
		cur.WriteRune(r)
	}
	if rest := cur.String(); strings.TrimSpace(rest) != "" {
		out = append(out, Sentence{Text: rest})
	}
	return out
}

// Join reassembles sentences into a single text.
func Join(sentences []Sentence) string {
	var b strings.Builder
	for _, s := range sentences {
		b.WriteString(s.String())
	}
	return b.String()
}

// #endregion split
