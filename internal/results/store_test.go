package results

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/aoi20031020/ripogram-generator/internal/llm"
	"github.com/aoi20031020/ripogram-generator/internal/metrics"
	"github.com/aoi20031020/ripogram-generator/internal/rewrite"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "results.db"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleRecord(method string) metrics.EvaluationRecord {
	return metrics.EvaluationRecord{
		Method:             method,
		OriginalText:       "猿も木から落ちる。",
		RewrittenText:      "モンキーも木から落ちる。",
		BannedChars:        []string{"い", "さ"},
		ConstraintViolated: false,
		VRR:                0.2,
		TTR:                1.0,
		BigramRep:          0,
		TrigramRep:         0,
		ElapsedSeconds:     1.5,
	}
}

func TestSaveAndGetRoundTrip(t *testing.T) {
	s := testStore(t)

	attempts := []rewrite.Attempt{
		{Sentence: 0, TokenIndex: 0, Stage: llm.StageSynonym, CandidateSurface: "サル", CandidateReading: "さる", Outcome: rewrite.OutcomeRejectedViolates},
		{Sentence: 0, TokenIndex: 0, Stage: llm.StageSynonym, CandidateSurface: "モンキー", CandidateReading: "もんきー", Outcome: rewrite.OutcomeAccepted},
	}
	id, err := s.SaveRecord("run-1", sampleRecord("sequential"), attempts)
	if err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	if id == "" {
		t.Fatal("SaveRecord must assign a record id")
	}

	rec, got, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if rec.RunID != "run-1" || rec.Method != "sequential" {
		t.Errorf("record = %+v", rec)
	}
	if rec.RewrittenText != "モンキーも木から落ちる。" {
		t.Errorf("rewritten text = %q", rec.RewrittenText)
	}
	if len(rec.BannedChars) != 2 || rec.BannedChars[0] != "い" {
		t.Errorf("banned chars = %v", rec.BannedChars)
	}
	if rec.VRR != 0.2 || rec.ConstraintViolated {
		t.Errorf("metrics lost: %+v", rec.EvaluationRecord)
	}
	if rec.CreatedAt.IsZero() {
		t.Error("created_at not recorded")
	}

	if len(got) != 2 {
		t.Fatalf("attempts = %d, want 2", len(got))
	}
	if got[0].CandidateSurface != "サル" || got[0].Outcome != string(rewrite.OutcomeRejectedViolates) {
		t.Errorf("first attempt = %+v", got[0])
	}
	if got[1].Stage != "synonym" || got[1].Outcome != string(rewrite.OutcomeAccepted) {
		t.Errorf("second attempt = %+v", got[1])
	}
}

func TestSaveKeepsCallerID(t *testing.T) {
	s := testStore(t)
	rec := sampleRecord("sequential")
	rec.ID = "fixed-id"
	id, err := s.SaveRecord("run-1", rec, nil)
	if err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	if id != "fixed-id" {
		t.Errorf("id = %q, want caller-supplied id", id)
	}
}

func TestGetUnknownRecord(t *testing.T) {
	s := testStore(t)
	if _, _, err := s.Get("no-such-record"); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("want sql.ErrNoRows, got %v", err)
	}
}

func TestRecent(t *testing.T) {
	s := testStore(t)
	for i := 0; i < 5; i++ {
		if _, err := s.SaveRecord("run-1", sampleRecord("sequential"), nil); err != nil {
			t.Fatalf("SaveRecord: %v", err)
		}
	}
	recs, err := s.Recent(3)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(recs) != 3 {
		t.Errorf("Recent(3) returned %d records", len(recs))
	}
}

func TestSummaries(t *testing.T) {
	s := testStore(t)

	seq := sampleRecord("sequential")
	if _, err := s.SaveRecord("run-1", seq, nil); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}
	seq.VRR = 0.4
	if _, err := s.SaveRecord("run-1", seq, nil); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	os := sampleRecord("oneshot")
	os.ConstraintViolated = true
	if _, err := s.SaveRecord("run-1", os, nil); err != nil {
		t.Fatalf("SaveRecord: %v", err)
	}

	sums, err := s.Summaries()
	if err != nil {
		t.Fatalf("Summaries: %v", err)
	}
	if len(sums) != 2 {
		t.Fatalf("summaries = %d, want 2 methods", len(sums))
	}
	// ordered by method name: oneshot before sequential
	if sums[0].Method != "oneshot" || sums[1].Method != "sequential" {
		t.Errorf("order = %s, %s", sums[0].Method, sums[1].Method)
	}
	if sums[0].Records != 1 || sums[0].ViolationRate != 1 {
		t.Errorf("oneshot summary = %+v", sums[0])
	}
	if sums[1].Records != 2 {
		t.Errorf("sequential records = %d, want 2", sums[1].Records)
	}
	wantVRR := (0.2 + 0.4) / 2
	if diff := sums[1].MeanVRR - wantVRR; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("sequential mean VRR = %f, want %f", sums[1].MeanVRR, wantVRR)
	}
}
