package llm

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestCleanCandidate(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "モンキー", "モンキー"},
		{"corner-brackets", "「モンキー」", "モンキー"},
		{"double-brackets", "『モンキー』", "モンキー"},
		{"parens", "（モンキー）", "モンキー"},
		{"ascii-parens", "(monkey)", "monkey"},
		{"square", "［モンキー］", "モンキー"},
		{"first-field-only", "モンキー という表現", "モンキー"},
		{"surrounding-space", "  モンキー  ", "モンキー"},
		{"quotes", `"monkey"`, "monkey"},
		{"empty", "", ""},
		{"only-brackets", "「」", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCandidate(tt.in); got != tt.want {
				t.Errorf("CleanCandidate(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestBuildPromptCarriesContext(t *testing.T) {
	req := Request{
		FullText:     "猿も木から落ちる。石の上にも三年。",
		SentenceText: "猿も木から落ちる",
		Target:       "猿",
		POS:          "名詞",
		Banned:       []string{"い", "さ"},
		Stage:        StageSynonym,
	}
	p := BuildPrompt(req)

	for _, want := range []string{"猿", "い、さ", "猿も木から落ちる", req.FullText, "名詞"} {
		if !strings.Contains(p, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(p, "同義語") {
		t.Error("synonym stage must ask for a synonym")
	}
}

func TestBuildPromptStageLines(t *testing.T) {
	base := Request{
		SentenceText: "猿も木から落ちる",
		Target:       "猿",
		Banned:       []string{"さ"},
	}

	base.Stage = StageHypernym
	if !strings.Contains(BuildPrompt(base), "上位概念") {
		t.Error("hypernym stage must ask for a broader concept")
	}
	base.Stage = StageParaphrase
	if !strings.Contains(BuildPrompt(base), "意訳") {
		t.Error("paraphrase stage must ask for a paraphrase")
	}
}

func TestBuildPromptExcludesRejected(t *testing.T) {
	req := Request{
		SentenceText: "猿も木から落ちる",
		Target:       "猿",
		Banned:       []string{"さ"},
		Stage:        StageHypernym,
		Rejected:     []string{"サル", "猿類"},
	}
	p := BuildPrompt(req)
	if !strings.Contains(p, "サル") || !strings.Contains(p, "猿類") {
		t.Error("prompt must list every rejected candidate")
	}
	if !strings.Contains(p, "試行済み") {
		t.Error("prompt must mark the list as already tried")
	}

	req.Rejected = nil
	if strings.Contains(BuildPrompt(req), "試行済み") {
		t.Error("empty history must not render an exclusion block")
	}
}

func TestBuildOneShotPrompt(t *testing.T) {
	p := BuildOneShotPrompt("猿も木から落ちる。", []string{"い", "さ"})
	if !strings.Contains(p, "猿も木から落ちる。") {
		t.Error("one-shot prompt must embed the full text")
	}
	if !strings.Contains(p, "い、さ") {
		t.Error("one-shot prompt must list the banned characters")
	}
}

func TestScriptSequencesReplies(t *testing.T) {
	s := NewScript(map[string][]string{"猿": {"サル", "モンキー"}})

	for i, want := range []string{"サル", "モンキー", "モンキー"} {
		got, err := s.Generate(context.Background(), Request{Target: "猿"})
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if got != want {
			t.Errorf("call %d = %q, want %q", i, got, want)
		}
	}
	if s.Calls() != 3 {
		t.Errorf("Calls() = %d, want 3", s.Calls())
	}

	if _, err := s.Generate(context.Background(), Request{Target: "石"}); !errors.Is(err, ErrGeneration) {
		t.Errorf("unscripted target: want ErrGeneration, got %v", err)
	}
}

func TestFailing(t *testing.T) {
	if _, err := (Failing{}).Generate(context.Background(), Request{Target: "猿"}); !errors.Is(err, ErrGeneration) {
		t.Errorf("want ErrGeneration, got %v", err)
	}
}

func TestStageString(t *testing.T) {
	if StageSynonym.String() != "synonym" || StageHypernym.String() != "hypernym" || StageParaphrase.String() != "paraphrase" {
		t.Error("stage names drifted")
	}
}
