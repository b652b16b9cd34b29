// Package kana provides kana-folding and banned-character scanning
// primitives shared by the constraint detector and the rewrite engine.
package kana

import "strings"

// #region folding

// FoldToHiragana converts katakana runes (ァ..ン) to their hiragana
// counterparts. Other runes, including the long-vowel mark ー, pass through.
func FoldToHiragana(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= 'ァ' && r <= 'ン' {
			r -= 0x60
		}
		b.WriteRune(r)
	}
	return b.String()
}

// #endregion folding

// #region scanning

// ContainsAny reports whether text contains at least one of the banned
// characters.
func ContainsAny(text string, banned []string) bool {
	for _, ch := range banned {
		if ch != "" && strings.Contains(text, ch) {
			return true
		}
	}
	return false
}

// CountOccurrences returns the banned characters present in text, in banned
// order, and the total occurrence count across all of them.
func CountOccurrences(text string, banned []string) (found []string, total int) {
	for _, ch := range banned {
		if ch == "" {
			continue
		}
		n := strings.Count(text, ch)
		if n > 0 {
			found = append(found, ch)
			total += n
		}
	}
	return found, total
}

// #endregion scanning

// #region row-expansion

// kanaRows maps a row label (e.g. "あ行") to its constituent characters.
// Used to expand shorthand banned specs before constraint checking.
var kanaRows = map[string][]string{
	"あ行": {"あ", "い", "う", "え", "お"},
	"か行": {"か", "き", "く", "け", "こ"},
	"さ行": {"さ", "し", "す", "せ", "そ"},
	"た行": {"た", "ち", "つ", "て", "と"},
	"な行": {"な", "に", "ぬ", "ね", "の"},
	"は行": {"は", "ひ", "ふ", "へ", "ほ"},
	"ま行": {"ま", "み", "む", "め", "も"},
	"や行": {"や", "ゆ", "よ"},
	"ら行": {"ら", "り", "る", "れ", "ろ"},
	"わ行": {"わ", "を", "ん"},
}

// ExpandBanned parses a comma-separated banned spec into individual
// characters, expanding row labels like あ行 and dropping empty entries.
// Duplicates are removed, first occurrence wins.
func ExpandBanned(spec string) []string {
	var out []string
	seen := make(map[string]bool)
	add := func(ch string) {
		if ch != "" && !seen[ch] {
			seen[ch] = true
			out = append(out, ch)
		}
	}
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if row, ok := kanaRows[part]; ok {
			for _, ch := range row {
				add(ch)
			}
			continue
		}
		add(part)
	}
	return out
}

// #endregion row-expansion
