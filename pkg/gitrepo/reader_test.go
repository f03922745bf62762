package gitrepo

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/ZUXTUO/commit-view/pkg/cache"
	"github.com/ZUXTUO/commit-view/pkg/errors"
)

func TestOpenNotARepository(t *testing.T) {
	_, err := Open(t.TempDir())
	if err == nil {
		t.Fatal("Open(empty dir) = nil error, want NOT_A_REPOSITORY")
	}
	if !errors.Is(err, errors.ErrCodeNotARepository) {
		t.Errorf("error code = %v, want %v", errors.CodeOf(err), errors.ErrCodeNotARepository)
	}
}

func TestSnapshotLinearHistory(t *testing.T) {
	r := newTestRepo(t)
	a := r.commit("first", "a.txt", "one\n")
	b := r.commit("second", "a.txt", "one\ntwo\n")
	c := r.commit("third", "a.txt", "one\ntwo\nthree\n")

	snap, err := NewReader(r.repo).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snap.Commits) != 3 {
		t.Fatalf("len(Commits) = %d, want 3", len(snap.Commits))
	}
	if len(snap.Branches) != 1 || snap.Branches[0].Name != "master" {
		t.Fatalf("Branches = %+v, want single master", snap.Branches)
	}
	if snap.Branches[0].Head != c {
		t.Errorf("master head = %s, want %s", snap.Branches[0].Head, c)
	}

	root, ok := snap.Commit(a)
	if !ok {
		t.Fatalf("root commit %s missing from snapshot", a)
	}
	if !root.IsRoot() {
		t.Errorf("root.Parents = %v, want none", root.Parents)
	}
	if root.Added != 1 || root.Removed != 0 {
		t.Errorf("root stats = +%d/-%d, want +1/-0", root.Added, root.Removed)
	}
	if root.Summary() != "first" {
		t.Errorf("root.Summary() = %q, want %q", root.Summary(), "first")
	}

	mid, _ := snap.Commit(b)
	if len(mid.Parents) != 1 || mid.Parents[0] != a {
		t.Errorf("second.Parents = %v, want [%s]", mid.Parents, a)
	}
	if mid.Added != 1 {
		t.Errorf("second.Added = %d, want 1", mid.Added)
	}
	if mid.Author != "Test User" {
		t.Errorf("Author = %q, want %q", mid.Author, "Test User")
	}
}

func TestSnapshotDedupAcrossBranches(t *testing.T) {
	r := newTestRepo(t)
	r.commit("base", "a.txt", "one\n")
	shared := r.commit("shared", "a.txt", "one\ntwo\n")
	r.branch("feature")
	r.commit("feature work", "b.txt", "hello\n")

	snap, err := NewReader(r.repo).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	if len(snap.Commits) != 3 {
		t.Fatalf("len(Commits) = %d, want 3 (shared history must dedup)", len(snap.Commits))
	}

	// Branches come back sorted by name regardless of creation order.
	if len(snap.Branches) != 2 {
		t.Fatalf("len(Branches) = %d, want 2", len(snap.Branches))
	}
	if snap.Branches[0].Name != "feature" || snap.Branches[1].Name != "master" {
		t.Errorf("branch order = [%s %s], want [feature master]",
			snap.Branches[0].Name, snap.Branches[1].Name)
	}
	if snap.Branches[1].Head != shared {
		t.Errorf("master head = %s, want %s", snap.Branches[1].Head, shared)
	}
}

func TestSnapshotMergeCommit(t *testing.T) {
	r := newTestRepo(t)
	r.commit("base", "a.txt", "one\n")
	r.branch("feature")
	d := r.commit("feature work", "b.txt", "hello\n")
	r.checkout("master")
	m := r.merge("master", d, "merge feature")

	snap, err := NewReader(r.repo).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	merge, ok := snap.Commit(m)
	if !ok {
		t.Fatalf("merge commit %s missing from snapshot", m)
	}
	if !merge.IsMerge() || len(merge.Parents) != 2 {
		t.Fatalf("merge.Parents = %v, want two parents", merge.Parents)
	}
	if merge.Parents[1] != d {
		t.Errorf("merge.Parents[1] = %s, want %s", merge.Parents[1], d)
	}
}

func TestSnapshotEmptyRepository(t *testing.T) {
	r := newTestRepo(t)

	snap, err := NewReader(r.repo).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if !snap.Empty() {
		t.Errorf("Snapshot = %d commits, want empty", len(snap.Commits))
	}
	if len(snap.Branches) != 0 {
		t.Errorf("Branches = %+v, want none", snap.Branches)
	}
}

func TestStatsServedFromCache(t *testing.T) {
	r := newTestRepo(t)
	h := r.commit("first", "a.txt", "one\n")

	// Poison the cache entry so a hit is observable.
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	data, _ := json.Marshal(map[string]int{"added": 99, "removed": 7})
	if err := fc.Set(context.Background(), cache.StatsKey(h), data, 0); err != nil {
		t.Fatalf("Set: %v", err)
	}

	snap, err := NewReader(r.repo, WithCache(fc)).Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	got, _ := snap.Commit(h)
	if got.Added != 99 || got.Removed != 7 {
		t.Errorf("stats = +%d/-%d, want cached +99/-7", got.Added, got.Removed)
	}
}

func TestStatsPopulateCache(t *testing.T) {
	r := newTestRepo(t)
	h := r.commit("first", "a.txt", "one\ntwo\n")

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	if _, err := NewReader(r.repo, WithCache(fc)).Snapshot(context.Background()); err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	data, ok, err := fc.Get(context.Background(), cache.StatsKey(h))
	if err != nil || !ok {
		t.Fatalf("cache entry after scan: ok=%v err=%v, want hit", ok, err)
	}
	var ds struct {
		Added   int `json:"added"`
		Removed int `json:"removed"`
	}
	if err := json.Unmarshal(data, &ds); err != nil {
		t.Fatalf("unmarshal cached stats: %v", err)
	}
	if ds.Added != 2 {
		t.Errorf("cached Added = %d, want 2", ds.Added)
	}
}
