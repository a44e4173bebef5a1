package posedb

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the sqlite connection holding recorded solve runs.
type DB struct {
	*sql.DB
}

// Open opens (or creates) the solve-run database at path and ensures the
// schema exists.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open solve database: %w", err)
	}

	_, err = db.Exec(`
		CREATE TABLE IF NOT EXISTS solves (
			solve_id          TEXT PRIMARY KEY,
			label             TEXT,
			correspondences   TEXT NOT NULL,
			candidates        TEXT NOT NULL,
			created_at        BIGINT NOT NULL
		);
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create solves schema: %w", err)
	}

	return &DB{db}, nil
}

// SolveRecord is one persisted solver invocation: the three input
// correspondences and the candidate poses it produced, both stored as JSON.
// Candidate poses are flattened 3x4 row-major matrices.
type SolveRecord struct {
	SolveID         string          `json:"solve_id"`
	Label           string          `json:"label,omitempty"`
	Correspondences json.RawMessage `json:"correspondences"`
	Candidates      json.RawMessage `json:"candidates"`
	CreatedAt       int64           `json:"created_at"`
}

// Insert persists a solve record. If SolveID is empty a UUID is generated;
// if CreatedAt is zero the current time is used.
func (db *DB) Insert(rec *SolveRecord) error {
	if rec.SolveID == "" {
		rec.SolveID = uuid.New().String()
	}
	if rec.CreatedAt == 0 {
		rec.CreatedAt = time.Now().UnixNano()
	}

	_, err := db.Exec(`
		INSERT INTO solves (solve_id, label, correspondences, candidates, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		rec.SolveID, rec.Label, string(rec.Correspondences), string(rec.Candidates), rec.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert solve record: %w", err)
	}
	return nil
}

// Get returns a single solve record by ID.
func (db *DB) Get(solveID string) (*SolveRecord, error) {
	row := db.QueryRow(`
		SELECT solve_id, label, correspondences, candidates, created_at
		FROM solves
		WHERE solve_id = ?`, solveID)

	rec, err := scanSolveRecord(row)
	if err != nil {
		return nil, fmt.Errorf("get solve record %s: %w", solveID, err)
	}
	return rec, nil
}

// List returns solve records, newest first. limit <= 0 means no limit.
func (db *DB) List(limit int) ([]*SolveRecord, error) {
	query := `
		SELECT solve_id, label, correspondences, candidates, created_at
		FROM solves
		ORDER BY created_at DESC`
	args := []interface{}{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query solve records: %w", err)
	}
	defer rows.Close()

	var recs []*SolveRecord
	for rows.Next() {
		rec, err := scanSolveRecord(rows)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...interface{}) error
}

func scanSolveRecord(s scanner) (*SolveRecord, error) {
	var rec SolveRecord
	var label sql.NullString
	var correspondences, candidates string

	err := s.Scan(&rec.SolveID, &label, &correspondences, &candidates, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}

	rec.Label = label.String
	rec.Correspondences = json.RawMessage(correspondences)
	rec.Candidates = json.RawMessage(candidates)
	return &rec, nil
}
