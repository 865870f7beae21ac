package game

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

// TestDiffLogOrderAndDrain verifies emission order survives the drain
func TestDiffLogOrderAndDrain(t *testing.T) {
	l := NewDiffLog()

	l.Append(1, Diff{Type: DiffPlayerMoved})
	l.Append(1, Diff{Type: DiffTileChanged})
	l.Append(1, Diff{Type: DiffExplosion})

	batch := l.Drain()
	want := []DiffType{DiffPlayerMoved, DiffTileChanged, DiffExplosion}
	if len(batch) != len(want) {
		t.Fatalf("expected %d diffs, got %d", len(want), len(batch))
	}
	for i, dt := range want {
		if batch[i].Type != dt {
			t.Errorf("position %d: got %s, want %s", i, batch[i].Type, dt)
		}
	}

	if l.Drain() != nil {
		t.Error("drain should clear the batch")
	}
	if l.Len() != 0 {
		t.Error("length should be zero after drain")
	}
}

// TestDiffLogAuditMirror verifies the JSONL audit trail on disk
func TestDiffLogAuditMirror(t *testing.T) {
	path := filepath.Join(t.TempDir(), "diffs.jsonl")

	l := NewDiffLog()
	if err := l.Start(path); err != nil {
		t.Fatalf("start: %v", err)
	}

	l.Append(3, Diff{Type: DiffBombPlaced, Payload: BombPayload{ID: "bomb_000001", X: 1, Y: 1}})
	l.Append(3, Diff{Type: DiffPlayerDied, Payload: PlayerDiedPayload{ID: "c1"}})
	l.Drain()
	l.Stop()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open audit file: %v", err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var entry map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines+1, err)
		}
		if entry["tick"] != float64(3) {
			t.Errorf("line %d: tick %v, want 3", lines+1, entry["tick"])
		}
		lines++
	}
	if lines != 2 {
		t.Errorf("expected 2 audit lines, got %d", lines)
	}
}

// TestDiffLogStartWithoutPath verifies the mirror stays disabled
func TestDiffLogStartWithoutPath(t *testing.T) {
	l := NewDiffLog()
	if err := l.Start(""); err != nil {
		t.Fatalf("empty path should be a no-op, got %v", err)
	}
	l.Append(1, Diff{Type: DiffPlayerMoved})
	if got := l.Stats()["running"]; got != false {
		t.Error("audit mirror should not be running")
	}
	l.Stop()
}

// TestDiffLogStats verifies the counter map
func TestDiffLogStats(t *testing.T) {
	l := NewDiffLog()
	l.Append(1, Diff{Type: DiffPlayerMoved})
	l.Append(2, Diff{Type: DiffPlayerMoved})

	stats := l.Stats()
	if stats["total"] != uint64(2) {
		t.Errorf("total: got %v, want 2", stats["total"])
	}
	if stats["pending"] != 2 {
		t.Errorf("pending: got %v, want 2", stats["pending"])
	}
}
