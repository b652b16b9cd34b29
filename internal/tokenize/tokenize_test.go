package tokenize

import (
	"errors"
	"testing"
)

func stubDict() *Stub {
	return NewStub(
		StubEntry{Surface: "猿", Reading: "サル", POS: "名詞"},
		StubEntry{Surface: "も", Reading: "も", POS: "助詞"},
		StubEntry{Surface: "木", Reading: "き", POS: "名詞"},
		StubEntry{Surface: "から", Reading: "から", POS: "助詞"},
		StubEntry{Surface: "落ちる", Reading: "おちる", POS: "動詞"},
	)
}

func TestStubTokenize(t *testing.T) {
	toks, err := stubDict().Tokenize("猿も木から落ちる。")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	wantSurfaces := []string{"猿", "も", "木", "から", "落ちる", "。"}
	if len(toks) != len(wantSurfaces) {
		t.Fatalf("got %d tokens, want %d: %v", len(toks), len(wantSurfaces), toks)
	}
	for i, w := range wantSurfaces {
		if toks[i].Surface != w {
			t.Errorf("token %d surface = %q, want %q", i, toks[i].Surface, w)
		}
		if toks[i].Index != i {
			t.Errorf("token %d index = %d", i, toks[i].Index)
		}
	}
	if toks[0].Reading != "さる" {
		t.Errorf("katakana dictionary reading must fold to hiragana, got %q", toks[0].Reading)
	}
	if !toks[5].IsPunct() {
		t.Error("。 should be a punctuation token")
	}
}

func TestStubLongestMatch(t *testing.T) {
	s := NewStub(
		StubEntry{Surface: "三", Reading: "さん", POS: "名詞"},
		StubEntry{Surface: "三年", Reading: "さんねん", POS: "名詞"},
	)
	toks, err := s.Tokenize("三年")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if len(toks) != 1 || toks[0].Surface != "三年" {
		t.Errorf("longest match lost: %v", toks)
	}
}

func TestStubFailure(t *testing.T) {
	s := stubDict()
	s.FailSubstring = "壊"
	_, err := s.Tokenize("これは壊れた文")
	if !errors.Is(err, ErrTokenize) {
		t.Errorf("want ErrTokenize, got %v", err)
	}
}

func TestContentTokens(t *testing.T) {
	toks, err := stubDict().Tokenize("猿も木から落ちる。")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	content := ContentTokens(toks)
	if len(content) != 5 {
		t.Errorf("content tokens = %d, want 5 (punctuation excluded)", len(content))
	}
	for _, tok := range content {
		if tok.IsPunct() {
			t.Errorf("punctuation token %q survived the filter", tok.Surface)
		}
	}
}

func TestJoinReading(t *testing.T) {
	toks, err := stubDict().Tokenize("猿も落ちる")
	if err != nil {
		t.Fatalf("Tokenize: %v", err)
	}
	if got := JoinReading(toks); got != "さるもおちる" {
		t.Errorf("JoinReading = %q, want さるもおちる", got)
	}
}
