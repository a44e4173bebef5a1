package posedb

import (
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "solves.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	db := openTestDB(t)

	rec := &SolveRecord{
		Correspondences: json.RawMessage(`{"bearings":[],"points":[]}`),
		Candidates:      json.RawMessage(`[]`),
	}
	if err := db.Insert(rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if rec.SolveID == "" {
		t.Error("expected a generated solve ID")
	}
	if rec.CreatedAt == 0 {
		t.Error("expected a generated timestamp")
	}
}

func TestGetRoundTrip(t *testing.T) {
	db := openTestDB(t)

	rec := &SolveRecord{
		Label:           "bench-calibration",
		Correspondences: json.RawMessage(`{"bearings":[[0,0,1]],"points":[[1,2,3]]}`),
		Candidates:      json.RawMessage(`[[1,0,0,0,0,1,0,0,0,0,1,0]]`),
	}
	if err := db.Insert(rec); err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := db.Get(rec.SolveID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}

	if got.SolveID != rec.SolveID {
		t.Errorf("solve ID: got %q, want %q", got.SolveID, rec.SolveID)
	}
	if got.Label != rec.Label {
		t.Errorf("label: got %q, want %q", got.Label, rec.Label)
	}
	if string(got.Correspondences) != string(rec.Correspondences) {
		t.Errorf("correspondences: got %s, want %s", got.Correspondences, rec.Correspondences)
	}
	if string(got.Candidates) != string(rec.Candidates) {
		t.Errorf("candidates: got %s, want %s", got.Candidates, rec.Candidates)
	}
	if got.CreatedAt != rec.CreatedAt {
		t.Errorf("created at: got %d, want %d", got.CreatedAt, rec.CreatedAt)
	}
}

func TestGetMissingRecord(t *testing.T) {
	db := openTestDB(t)

	_, err := db.Get("no-such-id")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("expected sql.ErrNoRows, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	db := openTestDB(t)

	for i, ts := range []int64{100, 300, 200} {
		rec := &SolveRecord{
			Label:           string(rune('a' + i)),
			Correspondences: json.RawMessage(`{}`),
			Candidates:      json.RawMessage(`[]`),
			CreatedAt:       ts,
		}
		if err := db.Insert(rec); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	recs, err := db.List(0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d", len(recs))
	}
	if recs[0].CreatedAt != 300 || recs[1].CreatedAt != 200 || recs[2].CreatedAt != 100 {
		t.Errorf("records out of order: %d, %d, %d",
			recs[0].CreatedAt, recs[1].CreatedAt, recs[2].CreatedAt)
	}
}

func TestListLimit(t *testing.T) {
	db := openTestDB(t)

	for _, ts := range []int64{1, 2, 3, 4} {
		rec := &SolveRecord{
			Correspondences: json.RawMessage(`{}`),
			Candidates:      json.RawMessage(`[]`),
			CreatedAt:       ts,
		}
		if err := db.Insert(rec); err != nil {
			t.Fatalf("insert: %v", err)
		}
	}

	recs, err := db.List(2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 2 {
		t.Fatalf("expected 2 records, got %d", len(recs))
	}
	if recs[0].CreatedAt != 4 || recs[1].CreatedAt != 3 {
		t.Errorf("unexpected records: %d, %d", recs[0].CreatedAt, recs[1].CreatedAt)
	}
}

func TestInsertDuplicateIDFails(t *testing.T) {
	db := openTestDB(t)

	rec := &SolveRecord{
		SolveID:         "fixed-id",
		Correspondences: json.RawMessage(`{}`),
		Candidates:      json.RawMessage(`[]`),
	}
	if err := db.Insert(rec); err != nil {
		t.Fatalf("first insert: %v", err)
	}
	if err := db.Insert(rec); err == nil {
		t.Error("expected duplicate primary key to fail")
	}
}
