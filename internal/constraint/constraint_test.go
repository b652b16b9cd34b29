package constraint

import (
	"testing"

	"github.com/aoi20031020/ripogram-generator/internal/tokenize"
)

func testTokenizer() *tokenize.Stub {
	return tokenize.NewStub(
		tokenize.StubEntry{Surface: "猿", Reading: "さる", POS: "名詞"},
		tokenize.StubEntry{Surface: "も", Reading: "も", POS: "助詞"},
		tokenize.StubEntry{Surface: "木", Reading: "き", POS: "名詞"},
		tokenize.StubEntry{Surface: "から", Reading: "から", POS: "助詞"},
		tokenize.StubEntry{Surface: "落ちる", Reading: "おちる", POS: "動詞"},
		tokenize.StubEntry{Surface: "石", Reading: "いし", POS: "名詞"},
		tokenize.StubEntry{Surface: "意思", Reading: "いし", POS: "名詞"},
	)
}

func TestCheckReadingMode(t *testing.T) {
	det := NewDetector(testTokenizer())

	res, err := det.Check("猿も木から落ちる。", []string{"い", "さ"}, ModeReading)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Violated {
		t.Error("さる carries さ in its reading, expected a violation")
	}
	if len(res.Found) != 1 || res.Found[0] != "さ" {
		t.Errorf("Found = %v, want [さ]", res.Found)
	}
	if res.Count != 1 {
		t.Errorf("Count = %d, want 1", res.Count)
	}
}

func TestCheckReadingCatchesHiddenKana(t *testing.T) {
	// 意思 spells no banned character on its surface but reads いし.
	det := NewDetector(testTokenizer())

	res, err := det.Check("意思", []string{"い"}, ModeReading)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if !res.Violated {
		t.Error("reading-mode check must catch banned kana hidden behind kanji")
	}

	res, err = det.Check("意思", []string{"い"}, ModeSurface)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Violated {
		t.Error("surface-mode check must not see the reading")
	}
}

func TestCheckCountsAllOccurrences(t *testing.T) {
	det := NewDetector(testTokenizer())
	// Readings: さる も き から おちる → る appears twice, さ once.
	res, err := det.Check("猿も木から落ちる", []string{"る", "さ"}, ModeReading)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Count != 3 {
		t.Errorf("Count = %d, want 3 (two る + one さ)", res.Count)
	}
	if len(res.Found) != 2 {
		t.Errorf("Found = %v, want both characters", res.Found)
	}
}

func TestCheckEmptyBannedSet(t *testing.T) {
	det := NewDetector(testTokenizer())
	res, err := det.Check("猿も木から落ちる", nil, ModeReading)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if res.Violated || res.Count != 0 {
		t.Errorf("empty banned set must pass, got %+v", res)
	}
}

func TestCheckIdempotent(t *testing.T) {
	det := NewDetector(testTokenizer())
	first, err := det.Check("木から落ちる", []string{"さ"}, ModeReading)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if first.Violated {
		t.Fatal("text should pass")
	}
	second, err := det.Check("木から落ちる", []string{"さ"}, ModeReading)
	if err != nil {
		t.Fatalf("Check: %v", err)
	}
	if second.Violated != first.Violated || second.Count != first.Count {
		t.Error("re-running check on passing text must be stable")
	}
}

func TestCheckUnknownMode(t *testing.T) {
	det := NewDetector(testTokenizer())
	if _, err := det.Check("猿", []string{"さ"}, Mode("phonemic")); err == nil {
		t.Error("unknown mode must be rejected")
	}
}

func TestCheckToken(t *testing.T) {
	det := NewDetector(testTokenizer())
	if !det.CheckToken("猿", "さる", []string{"さ"}) {
		t.Error("reading violation missed")
	}
	if !det.CheckToken("さらさら", "さらさら", []string{"さ"}) {
		t.Error("surface violation missed")
	}
	if det.CheckToken("木", "き", []string{"さ"}) {
		t.Error("false positive")
	}
	// Katakana readings fold before the scan.
	if !det.CheckToken("モンキー", "モンキー", []string{"も"}) {
		t.Error("katakana reading must fold to hiragana before scanning")
	}
}
