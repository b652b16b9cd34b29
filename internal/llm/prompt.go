package llm

// #region imports
import (
	"strings"
)

// #endregion imports

// #region prompt

// BuildPrompt renders the staged Japanese replacement prompt for a request.
// The rule block states the reading-based lipogram constraint, the context
// block carries the sentence and token, the history block excludes rejected
// candidates, and the stage line selects synonym, hypernym, or paraphrase
// phrasing.
func BuildPrompt(req Request) string {
	banned := strings.Join(req.Banned, "、")
	var b strings.Builder

	b.WriteString("以下の単語「" + req.Target + "」は、禁止文字「" + banned +
		"」を含むため、文脈に合った自然な表現に**単語単位**で言い換えてください。\n\n")

	b.WriteString("【日本語リポグラムのルール】\n")
	b.WriteString("・禁止文字「" + banned + "」は**読み（ひらがな）**での使用が禁止されています\n")
	b.WriteString("・変換後の単語を**ひらがなで読んだ時**に禁止文字が一文字でも含まれてはいけません\n")
	b.WriteString("・例：「猫」（ねこ）が禁止なら「ネコ科」（ねこか）も「ね」「こ」を含むため禁止です\n\n")

	b.WriteString("【文脈情報】\n")
	if req.FullText != "" && req.FullText != req.SentenceText {
		b.WriteString("・全体の文章：「" + req.FullText + "」\n")
	}
	b.WriteString("・現在の文：「" + req.SentenceText + "」\n")
	b.WriteString("・対象の単語：「" + req.Target + "」\n")
	b.WriteString("・品詞：「" + req.POS + "」\n\n")

	b.WriteString("【重要】\n")
	b.WriteString("・文全体の意味と流れを保持してください\n")
	b.WriteString("・文法的に自然な表現を選んでください\n")
	b.WriteString("・変換後の単語の読み（ひらがな）に禁止文字「" + banned + "」が**一文字も含まれない**こと\n")

	if len(req.Rejected) > 0 {
		b.WriteString("・以下の候補は既に試行済みで使用できません：「" +
			strings.Join(req.Rejected, "」「") + "」\n")
		b.WriteString("・これらとは**全く異なる**新しい表現を考えてください。\n")
	}

	switch req.Stage {
	case StageHypernym:
		b.WriteString("・より広い概念や上位概念で、文の流れを保つ表現を選んでください。\n")
	case StageParaphrase:
		b.WriteString("・文脈に応じた意訳や、文全体の意味を保つ別の表現方法を試してください。\n")
	default:
		b.WriteString("・文脈に最も適した同義語や類義語で言い換えてください。\n")
	}

	b.WriteString("・出力は置き換えた語句 **一単語のみ** にしてください。\n")
	b.WriteString("・絶対に説明文や補足は付けず、単語だけを出力してください。\n")
	return b.String()
}

// BuildOneShotPrompt renders the whole-text prompt for the one-shot
// baseline: rewrite the complete text at once so its reading avoids the
// banned characters, with no token-level loop.
func BuildOneShotPrompt(text string, banned []string) string {
	joined := strings.Join(banned, "、")
	var b strings.Builder
	b.WriteString("以下の文章を、意味をできるだけ保ったまま書き換えてください。\n\n")
	b.WriteString("【日本語リポグラムのルール】\n")
	b.WriteString("・禁止文字「" + joined + "」は**読み（ひらがな）**での使用が禁止されています\n")
	b.WriteString("・書き換え後の文章を**ひらがなで読んだ時**に禁止文字が一文字も含まれてはいけません\n\n")
	b.WriteString("【対象の文章】\n" + text + "\n\n")
	b.WriteString("・出力は書き換えた文章のみにしてください。説明や補足は付けないでください。\n")
	return b.String()
}

// #endregion prompt

// #region candidate-cleanup

var candidateStrip = strings.NewReplacer(
	"「", "", "」", "", "『", "", "』", "",
	`"`, "", "'", "",
	"（", "", "）", "", "(", "", ")", "",
	"［", "", "］", "", "[", "", "]", "",
)

// CleanCandidate strips quoting and bracket characters from a model reply
// and keeps only the first whitespace-separated field. Returns "" when
// nothing usable remains.
func CleanCandidate(raw string) string {
	cleaned := candidateStrip.Replace(strings.TrimSpace(raw))
	fields := strings.Fields(cleaned)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// #endregion candidate-cleanup
