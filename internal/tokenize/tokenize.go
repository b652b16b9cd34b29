// Package tokenize adapts the kagome morphological analyzer into the
// token model used by the constraint detector, rewrite engine, and metrics.
package tokenize

// #region imports
import (
	"errors"
	"fmt"
	"strings"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"

	"github.com/aoi20031020/ripogram-generator/internal/kana"
)

// #endregion imports

// #region errors

// ErrTokenize wraps any failure to produce a full token sequence.
// Tokenization is all-or-nothing: a sentence either tokenizes completely
// or the caller gets this error and no tokens.
var ErrTokenize = errors.New("tokenize")

// #endregion errors

// #region token

// Token is one morpheme of a sentence. Reading is the phonetic form folded
// to hiragana so banned-kana checks work on a single alphabet. Tokens are
// immutable once emitted; the rewrite engine builds new Token values rather
// than mutating these.
type Token struct {
	Surface string
	Reading string
	POS     string
	Index   int
}

// IsPunct reports whether the token is a symbol/punctuation morpheme,
// which metric and constraint computations exclude.
func (t Token) IsPunct() bool {
	return t.POS == "記号" || strings.TrimSpace(t.Surface) == ""
}

// #endregion token

// #region interface

// Tokenizer produces the ordered morpheme sequence for a sentence.
type Tokenizer interface {
	Tokenize(text string) ([]Token, error)
}

// #endregion interface

// #region kagome

// Kagome is the production Tokenizer backed by kagome with the IPA dictionary.
type Kagome struct {
	t *tokenizer.Tokenizer
}

// NewKagome builds a kagome tokenizer with BOS/EOS markers omitted.
func NewKagome() (*Kagome, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, fmt.Errorf("%w: new kagome: %v", ErrTokenize, err)
	}
	return &Kagome{t: t}, nil
}

// Tokenize analyzes text and returns its morphemes in order. The reading of
// a morpheme comes from the dictionary when available and falls back to the
// surface form; both are folded to hiragana.
func (k *Kagome) Tokenize(text string) ([]Token, error) {
	if k.t == nil {
		return nil, fmt.Errorf("%w: tokenizer not initialized", ErrTokenize)
	}
	kts := k.t.Tokenize(text)
	toks := make([]Token, 0, len(kts))
	for i, kt := range kts {
		reading, ok := kt.Reading()
		if !ok || reading == "*" || reading == "" {
			reading = kt.Surface
		}
		pos := "名詞"
		if p := kt.POS(); len(p) > 0 && p[0] != "*" && p[0] != "" {
			pos = p[0]
		}
		toks = append(toks, Token{
			Surface: kt.Surface,
			Reading: kana.FoldToHiragana(reading),
			POS:     pos,
			Index:   i,
		})
	}
	return toks, nil
}

// #endregion kagome

// #region helpers

// ContentTokens filters out punctuation and whitespace tokens.
func ContentTokens(toks []Token) []Token {
	out := make([]Token, 0, len(toks))
	for _, t := range toks {
		if !t.IsPunct() {
			out = append(out, t)
		}
	}
	return out
}

// Surfaces extracts the surface forms of a token sequence.
func Surfaces(toks []Token) []string {
	out := make([]string, len(toks))
	for i, t := range toks {
		out[i] = t.Surface
	}
	return out
}

// JoinReading concatenates the hiragana readings of a token sequence.
func JoinReading(toks []Token) string {
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Reading)
	}
	return b.String()
}

// #endregion helpers
