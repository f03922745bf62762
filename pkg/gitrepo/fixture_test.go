package gitrepo

import (
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
)

// testRepo builds small in-memory repositories for tests.
// Commits get strictly increasing timestamps one minute apart so
// chronological ordering is always well-defined.
type testRepo struct {
	t     *testing.T
	fs    billy.Filesystem
	repo  *gitlib.Repository
	wt    *gitlib.Worktree
	clock time.Time
}

func newTestRepo(t *testing.T) *testRepo {
	t.Helper()
	fs := memfs.New()
	repo, err := gitlib.Init(memory.NewStorage(), fs)
	if err != nil {
		t.Fatalf("git init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	return &testRepo{
		t:     t,
		fs:    fs,
		repo:  repo,
		wt:    wt,
		clock: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func (r *testRepo) sig() object.Signature {
	return object.Signature{Name: "Test User", Email: "test@example.com", When: r.clock}
}

// commit writes content to file and commits it, returning the hash.
func (r *testRepo) commit(msg, file, content string) string {
	r.t.Helper()
	if err := util.WriteFile(r.fs, file, []byte(content), 0644); err != nil {
		r.t.Fatalf("write %s: %v", file, err)
	}
	if _, err := r.wt.Add(file); err != nil {
		r.t.Fatalf("add %s: %v", file, err)
	}
	r.clock = r.clock.Add(time.Minute)
	sig := r.sig()
	h, err := r.wt.Commit(msg, &gitlib.CommitOptions{Author: &sig, Committer: &sig})
	if err != nil {
		r.t.Fatalf("commit %q: %v", msg, err)
	}
	return h.String()
}

// branch creates a new branch at the current HEAD and checks it out.
func (r *testRepo) branch(name string) {
	r.t.Helper()
	err := r.wt.Checkout(&gitlib.CheckoutOptions{
		Branch: plumbing.NewBranchReferenceName(name),
		Create: true,
	})
	if err != nil {
		r.t.Fatalf("checkout -b %s: %v", name, err)
	}
}

// checkout switches to an existing branch.
func (r *testRepo) checkout(name string) {
	r.t.Helper()
	err := r.wt.Checkout(&gitlib.CheckoutOptions{Branch: plumbing.NewBranchReferenceName(name)})
	if err != nil {
		r.t.Fatalf("checkout %s: %v", name, err)
	}
}

// merge fabricates a two-parent merge commit on top of branch, reusing the
// first parent's tree (go-git's worktree cannot create merge commits).
// The branch ref is advanced to the new commit.
func (r *testRepo) merge(branch, otherHash, msg string) string {
	r.t.Helper()

	branchRef := plumbing.NewBranchReferenceName(branch)
	ref, err := r.repo.Reference(branchRef, true)
	if err != nil {
		r.t.Fatalf("resolve %s: %v", branch, err)
	}
	first, err := r.repo.CommitObject(ref.Hash())
	if err != nil {
		r.t.Fatalf("first parent: %v", err)
	}

	r.clock = r.clock.Add(time.Minute)
	sig := r.sig()
	commit := &object.Commit{
		Author:    sig,
		Committer: sig,
		Message:   msg,
		TreeHash:  first.TreeHash,
		ParentHashes: []plumbing.Hash{
			ref.Hash(),
			plumbing.NewHash(otherHash),
		},
	}

	obj := r.repo.Storer.NewEncodedObject()
	if err := commit.Encode(obj); err != nil {
		r.t.Fatalf("encode merge commit: %v", err)
	}
	hash, err := r.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		r.t.Fatalf("store merge commit: %v", err)
	}
	if err := r.repo.Storer.SetReference(plumbing.NewHashReference(branchRef, hash)); err != nil {
		r.t.Fatalf("advance %s: %v", branch, err)
	}
	return hash.String()
}
