package segment

import (
	"reflect"
	"testing"
)

func TestSplit(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []Sentence
	}{
		{
			"two-sentences",
			"猿も木から落ちる。石の上にも三年。",
			[]Sentence{
				{Text: "猿も木から落ちる", Terminal: "。"},
				{Text: "石の上にも三年", Terminal: "。"},
			},
		},
		{
			"trailing-fragment",
			"今日は晴れ。明日は雨",
			[]Sentence{
				{Text: "今日は晴れ", Terminal: "。"},
				{Text: "明日は雨"},
			},
		},
		{
			"mixed-terminals",
			"ほんとう？すごい！",
			[]Sentence{
				{Text: "ほんとう", Terminal: "？"},
				{Text: "すごい", Terminal: "！"},
			},
		},
		{
			"consecutive-marks",
			"まさか！？",
			[]Sentence{
				{Text: "まさか", Terminal: "！？"},
			},
		},
		{"empty", "", nil},
		{"whitespace-only", "   ", nil},
		{
			"ascii",
			"Hello. World!",
			[]Sentence{
				{Text: "Hello", Terminal: "."},
				{Text: " World", Terminal: "!"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Split(tt.in); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestSplitIdempotent(t *testing.T) {
	inputs := []string{
		"猿も木から落ちる。石の上にも三年。",
		"まさか！？それはない。",
		"終わりなし",
		"。先頭が句点",
	}
	for _, in := range inputs {
		first := Split(in)
		again := Split(Join(first))
		if !reflect.DeepEqual(first, again) {
			t.Errorf("re-splitting %q changed boundaries: %v vs %v", in, first, again)
		}
	}
}

func TestJoinPreservesTerminals(t *testing.T) {
	in := "一つ目。二つ目！三つ目？残り"
	if got := Join(Split(in)); got != in {
		t.Errorf("Join(Split(x)) = %q, want %q", got, in)
	}
}
