package indexdb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/realm"
	"gridrealm.ai/internal/sim/tuning"
)

func TestSQLiteIndex_QueueDropStats(t *testing.T) {
	s := &SQLiteIndex{ch: make(chan req, 1)}
	s.ch <- req{kind: reqTick, tick: realm.TickLogEntry{Tick: 1}}

	s.WriteTick("run", realm.TickLogEntry{Tick: 2})
	s.FinishRun("run", 2, "abc", "/tmp/run.replay.zst")

	st := s.Stats()
	if st.DropTickTotal != 1 {
		t.Fatalf("DropTickTotal=%d want=1", st.DropTickTotal)
	}
	if st.DropFinishTotal != 1 {
		t.Fatalf("DropFinishTotal=%d want=1", st.DropFinishTotal)
	}
	if st.QueueDepth != 1 || st.QueueCapacity != 1 {
		t.Fatalf("queue stats mismatch: depth=%d cap=%d", st.QueueDepth, st.QueueCapacity)
	}
}

func TestSQLiteIndex_RunAndTicks(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.BeginRun(ctx, "run-a", 42, tuning.Defaults()); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	for tick := 0; tick < 3; tick++ {
		entry := realm.TickLogEntry{
			Tick:   tick,
			Digest: []string{"d0", "d1", "d2"}[tick],
			Actions: []realm.RecordedAction{
				{AgentID: 1, Kind: action.Move, Args: map[action.Arg]int{action.Direction: 2}, Applied: true},
				{AgentID: 2, Kind: action.Attack, Args: map[action.Arg]int{action.Target: 0, action.Style: 1}},
			},
		}
		if tick == 2 {
			entry.Deaths = []int{2}
		}
		idx.WriteTick("run-a", entry)
	}
	idx.FinishRun("run-a", 3, "d2", "/runs/run-a.replay.zst")
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	idx, err = OpenSQLite(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer idx.Close()

	run, err := idx.Run(ctx, "run-a")
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if run.Seed != 42 || run.Players != tuning.Defaults().PlayerN || run.Ticks != 3 || run.FinalDigest != "d2" || run.BundlePath != "/runs/run-a.replay.zst" {
		t.Fatalf("run mismatch: %+v", run)
	}
	if len(run.ConfigDigest) != 64 {
		t.Fatalf("config digest %q", run.ConfigDigest)
	}

	digests, err := idx.TickDigests(ctx, "run-a")
	if err != nil {
		t.Fatalf("TickDigests: %v", err)
	}
	if len(digests) != 3 || digests[0] != "d0" || digests[2] != "d2" {
		t.Fatalf("digests=%v", digests)
	}

	if _, err := idx.Run(ctx, "missing"); err == nil {
		t.Fatalf("expected error for unknown run")
	}
}

func TestSQLiteIndex_ActionRows(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "index.db")

	idx, err := OpenSQLite(path)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := idx.BeginRun(ctx, "run-b", 7, tuning.Defaults()); err != nil {
		t.Fatalf("BeginRun: %v", err)
	}
	idx.WriteTick("run-b", realm.TickLogEntry{
		Tick:   0,
		Digest: "x",
		Actions: []realm.RecordedAction{
			{AgentID: 3, Kind: action.Sell, Args: map[action.Arg]int{action.InventoryItem: 1, action.Price: 4}, Applied: true},
		},
		Deaths: []int{5},
	})
	if err := idx.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("sql.Open: %v", err)
	}
	defer db.Close()

	var (
		agent   int
		kind    string
		applied bool
	)
	if err := db.QueryRow(`SELECT agent_id,kind,applied FROM actions WHERE run_id='run-b' AND tick=0 AND seq=0`).Scan(&agent, &kind, &applied); err != nil {
		t.Fatalf("Scan action: %v", err)
	}
	if agent != 3 || kind != "Sell" || !applied {
		t.Fatalf("action row mismatch: agent=%d kind=%q applied=%v", agent, kind, applied)
	}
	var dead int
	if err := db.QueryRow(`SELECT agent_id FROM deaths WHERE run_id='run-b'`).Scan(&dead); err != nil {
		t.Fatalf("Scan death: %v", err)
	}
	if dead != 5 {
		t.Fatalf("death agent=%d want=5", dead)
	}
}
