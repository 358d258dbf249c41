package history

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenAndMigrate(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestOpen_CreatesParentDirectories(t *testing.T) {
	nested := filepath.Join(t.TempDir(), "a", "b")
	path := filepath.Join(nested, "history.db")

	db, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer db.Close()

	if db.Path() != path {
		t.Errorf("Path() = %q, want %q", db.Path(), path)
	}
	if _, err := os.Stat(nested); os.IsNotExist(err) {
		t.Errorf("parent directories not created: %s", nested)
	}
}

func TestMigrate_Idempotent(t *testing.T) {
	db := setupTestDB(t)
	if err := db.Migrate(); err != nil {
		t.Fatalf("second Migrate failed: %v", err)
	}

	var version int
	if err := db.conn.QueryRow("SELECT MAX(version) FROM schema_version").Scan(&version); err != nil {
		t.Fatal(err)
	}
	if version != 2 {
		t.Errorf("expected schema version 2, got %d", version)
	}
}

func TestSaveAndGetRun(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	started := time.Date(2024, 3, 1, 10, 0, 0, 123000000, time.UTC)

	run := &Run{
		ID:        "run-1",
		Mode:      ModeOrchestrate,
		Query:     "Compare X and Y",
		Answer:    "X is faster, Y is cheaper.",
		Status:    StatusCompleted,
		StartedAt: started,
		Duration:  12300 * time.Millisecond,
		Agents: []AgentRecord{
			{Index: 1, Question: "What is Y?", Status: "failed", Response: "boom", Execution: 2 * time.Second},
			{Index: 0, Question: "What is X?", Status: "completed", Response: "X is fast.", Execution: 1500 * time.Millisecond},
		},
	}
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	got, err := db.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("GetRun failed: %v", err)
	}
	if got.Mode != ModeOrchestrate || got.Status != StatusCompleted || got.Answer != run.Answer {
		t.Errorf("unexpected run %+v", got)
	}
	if !got.StartedAt.Equal(started) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, started)
	}
	if got.Duration != 12300*time.Millisecond {
		t.Errorf("Duration = %v", got.Duration)
	}
	if len(got.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(got.Agents))
	}
	if got.Agents[0].Index != 0 || got.Agents[0].Question != "What is X?" {
		t.Errorf("expected agents ordered by index, got %+v", got.Agents)
	}
	if got.Agents[1].Execution != 2*time.Second {
		t.Errorf("expected 2s execution, got %v", got.Agents[1].Execution)
	}
}

func TestSaveRun_DuplicateRollsBack(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	run := &Run{ID: "dup", Mode: ModeAsk, Query: "q", Status: StatusCompleted, StartedAt: time.Now()}
	if err := db.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun failed: %v", err)
	}

	again := &Run{
		ID: "dup", Mode: ModeOrchestrate, Query: "other", Status: StatusFailed, StartedAt: time.Now(),
		Agents: []AgentRecord{{Index: 0, Question: "q", Status: "failed"}},
	}
	if err := db.SaveRun(ctx, again); err == nil {
		t.Fatal("expected duplicate id error")
	}

	got, err := db.GetRun(ctx, "dup")
	if err != nil {
		t.Fatal(err)
	}
	if got.Query != "q" || len(got.Agents) != 0 {
		t.Errorf("expected original run untouched, got %+v", got)
	}
}

func TestGetRun_NotFound(t *testing.T) {
	db := setupTestDB(t)
	if _, err := db.GetRun(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListRuns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	base := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		run := &Run{ID: id, Mode: ModeAsk, Query: id, Status: StatusCompleted, StartedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := db.SaveRun(ctx, run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := db.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != "c" || runs[1].ID != "b" {
		t.Errorf("expected [c b], got %+v", runs)
	}

	all, err := db.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 runs, got %d", len(all))
	}
}

func TestPurgeOlderThan(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	old := &Run{
		ID: "old", Mode: ModeOrchestrate, Query: "q", Status: StatusCompleted,
		StartedAt: time.Now().Add(-48 * time.Hour),
		Agents:    []AgentRecord{{Index: 0, Question: "q", Status: "completed"}},
	}
	fresh := &Run{ID: "fresh", Mode: ModeAsk, Query: "q", Status: StatusCompleted, StartedAt: time.Now()}
	for _, r := range []*Run{old, fresh} {
		if err := db.SaveRun(ctx, r); err != nil {
			t.Fatal(err)
		}
	}

	n, err := db.PurgeOlderThan(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("PurgeOlderThan failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 purged, got %d", n)
	}

	var outcomes int
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM agent_outcomes").Scan(&outcomes); err != nil {
		t.Fatal(err)
	}
	if outcomes != 0 {
		t.Errorf("expected cascade delete of agent outcomes, got %d", outcomes)
	}
}
