package policy

import (
	"testing"
)

func TestBlacklistAddContainsClear(t *testing.T) {
	now := int64(1000)
	b := NewBlacklist(func() int64 { return now })

	b.Add("svc", 42.36, -71.06, BlacklistBadData)
	if !b.Contains("svc", 42.9, -71.9) {
		t.Error("same 1-degree cell not matched")
	}
	if b.Contains("svc", 43.1, -71.06) {
		t.Error("neighboring cell matched")
	}
	if b.Contains("other", 42.36, -71.06) {
		t.Error("blacklist leaked across services")
	}

	b.Clear("svc")
	if b.Contains("svc", 42.36, -71.06) {
		t.Error("Clear left the cell in place")
	}
}

func TestBlacklistLRUEviction(t *testing.T) {
	now := int64(0)
	b := NewBlacklist(func() int64 { now++; return now })

	for i := 0; i < MaxBlacklistCells; i++ {
		b.Add("svc", float64(10+i), 20, BlacklistManual)
	}
	if got := len(b.Entries("svc")); got != MaxBlacklistCells {
		t.Fatalf("entries = %d, want %d", got, MaxBlacklistCells)
	}

	// Touch the oldest cell so the second-oldest becomes the victim.
	if !b.Contains("svc", 10.5, 20.5) {
		t.Fatal("oldest cell missing before eviction")
	}
	b.Add("svc", 50, 20, BlacklistManual)

	if !b.Contains("svc", 10.5, 20.5) {
		t.Error("recently touched cell was evicted")
	}
	if b.Contains("svc", 11.5, 20.5) {
		t.Error("least recently used cell survived eviction")
	}
	if b.Contains("svc", 50.5, 20.5) != true {
		t.Error("new cell missing")
	}
}

func TestBlacklistReaddRefreshes(t *testing.T) {
	now := int64(0)
	b := NewBlacklist(func() int64 { now++; return now })

	b.Add("svc", 10, 10, BlacklistManual)
	b.Add("svc", 10.5, 10.5, BlacklistBadData) // same cell, new reason
	entries := b.Entries("svc")
	if len(entries) != 1 {
		t.Fatalf("duplicate cell stored: %+v", entries)
	}
	if entries[0].Reason != BlacklistBadData || entries[0].AddedAt != 2 {
		t.Errorf("re-add did not refresh entry: %+v", entries[0])
	}
}
