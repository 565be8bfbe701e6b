package log

import (
	"os"
	"path/filepath"
	"testing"

	"gridrealm.ai/internal/sim/action"
	"gridrealm.ai/internal/sim/realm"
)

func TestTickLogger_SegmentsByTick(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir, 4)
	for tick := 0; tick < 10; tick++ {
		e := realm.TickLogEntry{
			Tick:   tick,
			Digest: "d",
			Actions: []realm.RecordedAction{
				{AgentID: 1, Kind: action.Move, Args: map[action.Arg]int{action.Direction: tick % 4}, Applied: tick%2 == 0},
			},
		}
		if err := l.WriteTick(e); err != nil {
			t.Fatalf("WriteTick(%d): %v", tick, err)
		}
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	for _, name := range []string{"ticks-00000000.jsonl.zst", "ticks-00000004.jsonl.zst", "ticks-00000008.jsonl.zst"} {
		if _, err := os.Stat(filepath.Join(dir, "ticks", name)); err != nil {
			t.Fatalf("missing segment %s: %v", name, err)
		}
	}

	got, err := ReadTicks(dir)
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(got) != 10 {
		t.Fatalf("entries=%d want=10", len(got))
	}
	for i, e := range got {
		if e.Tick != i {
			t.Fatalf("entry %d has tick %d", i, e.Tick)
		}
		a := e.Actions[0]
		if a.Kind != action.Move || a.Args[action.Direction] != i%4 || a.Applied != (i%2 == 0) {
			t.Fatalf("entry %d action mismatch: %+v", i, a)
		}
	}
}

func TestTickLogger_AppendsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	l := NewTickLogger(dir, 100)
	_ = l.WriteTick(realm.TickLogEntry{Tick: 0, Digest: "a"})
	_ = l.Close()

	l = NewTickLogger(dir, 100)
	_ = l.WriteTick(realm.TickLogEntry{Tick: 1, Digest: "b", Deaths: []int{3}})
	_ = l.Close()

	got, err := ReadTicks(dir)
	if err != nil {
		t.Fatalf("ReadTicks: %v", err)
	}
	if len(got) != 2 || got[1].Digest != "b" || len(got[1].Deaths) != 1 {
		t.Fatalf("entries=%+v", got)
	}
}

func TestReadTicks_EmptyDir(t *testing.T) {
	got, err := ReadTicks(t.TempDir())
	if err != nil || len(got) != 0 {
		t.Fatalf("got=%v err=%v", got, err)
	}
}
