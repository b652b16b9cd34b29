// Package results persists evaluation records and rewrite-attempt
// provenance in SQLite. The core owns no state; this store is the sink the
// batch driver and CLI write through, and what the inspector reads.
package results

// #region imports
import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/aoi20031020/ripogram-generator/internal/metrics"
	"github.com/aoi20031020/ripogram-generator/internal/rewrite"
)

// #endregion imports

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS evaluation_records (
	record_id           TEXT PRIMARY KEY,
	run_id              TEXT NOT NULL,
	method              TEXT NOT NULL,
	original_text       TEXT NOT NULL,
	rewritten_text      TEXT NOT NULL,
	banned_chars        TEXT NOT NULL,
	constraint_violated INTEGER NOT NULL,
	found_chars         TEXT NOT NULL DEFAULT '',
	violation_count     INTEGER NOT NULL DEFAULT 0,
	vrr                 REAL NOT NULL,
	ttr                 REAL NOT NULL,
	bigram_rep          REAL NOT NULL,
	trigram_rep         REAL NOT NULL,
	elapsed_seconds     REAL NOT NULL,
	created_at          TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rewrite_attempts (
	id                INTEGER PRIMARY KEY AUTOINCREMENT,
	record_id         TEXT NOT NULL,
	sentence          INTEGER NOT NULL,
	token_index       INTEGER NOT NULL,
	stage             TEXT NOT NULL,
	candidate_surface TEXT NOT NULL DEFAULT '',
	candidate_reading TEXT NOT NULL DEFAULT '',
	outcome           TEXT NOT NULL,
	FOREIGN KEY (record_id) REFERENCES evaluation_records(record_id)
);

CREATE INDEX IF NOT EXISTS idx_eval_records_run
ON evaluation_records(run_id, method);

CREATE INDEX IF NOT EXISTS idx_rewrite_attempts_record
ON rewrite_attempts(record_id);
`

// #endregion schema

// #region store

// Store manages evaluation persistence in SQLite.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// #endregion store

// #region save

// SaveRecord persists one evaluation record with its attempt provenance.
// A missing record ID is assigned a fresh uuid; the assigned ID is returned.
func (s *Store) SaveRecord(runID string, rec metrics.EvaluationRecord, attempts []rewrite.Attempt) (string, error) {
	recordID := rec.ID
	if recordID == "" {
		recordID = uuid.NewString()
	}

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	violated := 0
	if rec.ConstraintViolated {
		violated = 1
	}
	_, err = tx.Exec(`
		INSERT INTO evaluation_records
		(record_id, run_id, method, original_text, rewritten_text, banned_chars,
		 constraint_violated, found_chars, violation_count,
		 vrr, ttr, bigram_rep, trigram_rep, elapsed_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		recordID,
		runID,
		rec.Method,
		rec.OriginalText,
		rec.RewrittenText,
		strings.Join(rec.BannedChars, ","),
		violated,
		strings.Join(rec.FoundChars, ","),
		rec.ViolationCount,
		rec.VRR,
		rec.TTR,
		rec.BigramRep,
		rec.TrigramRep,
		rec.ElapsedSeconds,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return "", fmt.Errorf("insert record: %w", err)
	}

	for _, a := range attempts {
		_, err = tx.Exec(`
			INSERT INTO rewrite_attempts
			(record_id, sentence, token_index, stage, candidate_surface, candidate_reading, outcome)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			recordID,
			a.Sentence,
			a.TokenIndex,
			a.Stage.String(),
			a.CandidateSurface,
			a.CandidateReading,
			string(a.Outcome),
		)
		if err != nil {
			return "", fmt.Errorf("insert attempt: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return recordID, nil
}

// #endregion save

// #region queries

// StoredRecord is an evaluation record row as read back from the store.
type StoredRecord struct {
	metrics.EvaluationRecord
	RunID     string
	CreatedAt time.Time
}

// StoredAttempt is one rewrite attempt row as read back from the store.
type StoredAttempt struct {
	Sentence         int
	TokenIndex       int
	Stage            string
	CandidateSurface string
	CandidateReading string
	Outcome          string
}

// Recent returns the n most recently created records, newest first.
func (s *Store) Recent(n int) ([]StoredRecord, error) {
	rows, err := s.db.Query(`
		SELECT record_id, run_id, method, original_text, rewritten_text, banned_chars,
		       constraint_violated, found_chars, violation_count,
		       vrr, ttr, bigram_rep, trigram_rep, elapsed_seconds, created_at
		FROM evaluation_records
		ORDER BY created_at DESC, record_id DESC
		LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("query recent: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Get returns a single record and its attempt log.
func (s *Store) Get(recordID string) (StoredRecord, []StoredAttempt, error) {
	rows, err := s.db.Query(`
		SELECT record_id, run_id, method, original_text, rewritten_text, banned_chars,
		       constraint_violated, found_chars, violation_count,
		       vrr, ttr, bigram_rep, trigram_rep, elapsed_seconds, created_at
		FROM evaluation_records
		WHERE record_id = ?`, recordID)
	if err != nil {
		return StoredRecord{}, nil, fmt.Errorf("query record: %w", err)
	}
	recs, err := scanRecords(rows)
	rows.Close()
	if err != nil {
		return StoredRecord{}, nil, err
	}
	if len(recs) == 0 {
		return StoredRecord{}, nil, fmt.Errorf("record %s: %w", recordID, sql.ErrNoRows)
	}

	arows, err := s.db.Query(`
		SELECT sentence, token_index, stage, candidate_surface, candidate_reading, outcome
		FROM rewrite_attempts
		WHERE record_id = ?
		ORDER BY id`, recordID)
	if err != nil {
		return StoredRecord{}, nil, fmt.Errorf("query attempts: %w", err)
	}
	defer arows.Close()

	var attempts []StoredAttempt
	for arows.Next() {
		var a StoredAttempt
		if err := arows.Scan(&a.Sentence, &a.TokenIndex, &a.Stage, &a.CandidateSurface, &a.CandidateReading, &a.Outcome); err != nil {
			return StoredRecord{}, nil, fmt.Errorf("scan attempt: %w", err)
		}
		attempts = append(attempts, a)
	}
	if err := arows.Err(); err != nil {
		return StoredRecord{}, nil, err
	}
	return recs[0], attempts, nil
}

// MethodSummary aggregates per-method quality across all stored records.
type MethodSummary struct {
	Method        string
	Records       int
	ViolationRate float64
	MeanVRR       float64
	MeanTTR       float64
	MeanElapsed   float64
}

// Summaries returns one aggregate row per method, ordered by method name.
func (s *Store) Summaries() ([]MethodSummary, error) {
	rows, err := s.db.Query(`
		SELECT method, COUNT(*),
		       AVG(constraint_violated), AVG(vrr), AVG(ttr), AVG(elapsed_seconds)
		FROM evaluation_records
		GROUP BY method
		ORDER BY method`)
	if err != nil {
		return nil, fmt.Errorf("query summaries: %w", err)
	}
	defer rows.Close()

	var out []MethodSummary
	for rows.Next() {
		var m MethodSummary
		if err := rows.Scan(&m.Method, &m.Records, &m.ViolationRate, &m.MeanVRR, &m.MeanTTR, &m.MeanElapsed); err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// #endregion queries

// #region scan-helpers

func scanRecords(rows *sql.Rows) ([]StoredRecord, error) {
	var out []StoredRecord
	for rows.Next() {
		var r StoredRecord
		var banned, found, createdAt string
		var violated int
		err := rows.Scan(
			&r.EvaluationRecord.ID, &r.RunID, &r.Method,
			&r.OriginalText, &r.RewrittenText, &banned,
			&violated, &found, &r.ViolationCount,
			&r.VRR, &r.TTR, &r.BigramRep, &r.TrigramRep,
			&r.ElapsedSeconds, &createdAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.ConstraintViolated = violated != 0
		r.BannedChars = splitNonEmpty(banned)
		r.FoundChars = splitNonEmpty(found)
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func splitNonEmpty(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

// #endregion scan-helpers
