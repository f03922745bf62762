// Package gitrepo reads a local Git repository into a flat, immutable
// Snapshot: every commit reachable from any local branch head, with author,
// timestamp, message, parent hashes, and aggregate diff statistics.
//
// Repository access goes through go-git; no git binary is required and the
// repository is only ever read. Diff statistics are the one expensive part
// of the scan, so they can be persisted between runs through a
// [cache.Cache] (stats for a given commit hash never change).
package gitrepo

import (
	"cmp"
	"context"
	"encoding/json"
	goerrors "errors"
	"io"
	"slices"

	gitlib "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/charmbracelet/log"

	"github.com/ZUXTUO/commit-view/pkg/cache"
	"github.com/ZUXTUO/commit-view/pkg/errors"
)

// Reader scans a repository and produces Snapshots.
type Reader struct {
	repo   *gitlib.Repository
	cache  cache.Cache
	logger *log.Logger
}

// Option configures a Reader.
type Option func(*Reader)

// WithCache sets the cache used for per-commit diff statistics.
// Defaults to a NullCache (stats recomputed every run).
func WithCache(c cache.Cache) Option {
	return func(r *Reader) {
		if c != nil {
			r.cache = c
		}
	}
}

// WithLogger sets the logger for debug output. Defaults to a discarding logger.
func WithLogger(l *log.Logger) Option {
	return func(r *Reader) {
		if l != nil {
			r.logger = l
		}
	}
}

// Open opens the repository at path, detecting the .git directory at or
// above it. Returns a NOT_A_REPOSITORY error when no repository is found.
func Open(path string, opts ...Option) (*Reader, error) {
	repo, err := gitlib.PlainOpenWithOptions(path, &gitlib.PlainOpenOptions{DetectDotGit: true})
	if goerrors.Is(err, gitlib.ErrRepositoryNotExists) {
		return nil, errors.New(errors.ErrCodeNotARepository, "no git repository found at or above %s", path)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeNotARepository, err, "opening repository at %s", path)
	}
	return NewReader(repo, opts...), nil
}

// NewReader wraps an already-open repository. Tests use this with go-git's
// in-memory storage.
func NewReader(repo *gitlib.Repository, opts ...Option) *Reader {
	r := &Reader{
		repo:   repo,
		cache:  cache.NewNullCache(),
		logger: log.NewWithOptions(io.Discard, log.Options{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Snapshot enumerates all local branches and walks each head back to the
// roots, collecting every reachable commit exactly once. Branches are
// returned sorted by name so downstream ordering never depends on the
// storage's enumeration order.
//
// A repository with no commits yields an empty Snapshot, not an error.
func (r *Reader) Snapshot(ctx context.Context) (*Snapshot, error) {
	branches, err := r.branches()
	if err != nil {
		return nil, err
	}

	snap := &Snapshot{Branches: branches}
	seen := make(map[plumbing.Hash]bool)

	for _, b := range branches {
		head, err := r.repo.CommitObject(plumbing.NewHash(b.Head))
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "resolving head of branch %s", b.Name)
		}
		iter := object.NewCommitPreorderIter(head, seen, nil)
		err = iter.ForEach(func(c *object.Commit) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			seen[c.Hash] = true
			snap.Commits = append(snap.Commits, r.readCommit(ctx, c))
			return nil
		})
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "walking branch %s", b.Name)
		}
	}

	r.logger.Debug("repository scanned", "commits", len(snap.Commits), "branches", len(snap.Branches))
	return snap, nil
}

// branches lists local branch heads sorted by name.
func (r *Reader) branches() ([]Branch, error) {
	iter, err := r.repo.Branches()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "listing branches")
	}
	defer iter.Close()

	var branches []Branch
	err = iter.ForEach(func(ref *plumbing.Reference) error {
		if ref.Type() != plumbing.HashReference {
			return nil
		}
		branches = append(branches, Branch{
			Name: ref.Name().Short(),
			Head: ref.Hash().String(),
		})
		return nil
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "iterating branches")
	}

	slices.SortFunc(branches, func(a, b Branch) int { return cmp.Compare(a.Name, b.Name) })
	return branches, nil
}

// readCommit converts a go-git commit into the Snapshot representation.
func (r *Reader) readCommit(ctx context.Context, c *object.Commit) Commit {
	parents := make([]string, len(c.ParentHashes))
	for i, p := range c.ParentHashes {
		parents[i] = p.String()
	}
	added, removed := r.statsFor(ctx, c)
	return Commit{
		Hash:    c.Hash.String(),
		Parents: parents,
		Author:  c.Author.Name,
		When:    c.Committer.When,
		Message: c.Message,
		Added:   added,
		Removed: removed,
	}
}

// diffStats is the cached JSON shape for a commit's aggregate stats.
type diffStats struct {
	Added   int `json:"added"`
	Removed int `json:"removed"`
}

// statsFor returns the aggregate added/removed line counts for the commit
// vs. its first parent (the empty tree for a root commit). Failures degrade
// to zero stats rather than aborting the scan.
func (r *Reader) statsFor(ctx context.Context, c *object.Commit) (added, removed int) {
	key := cache.StatsKey(c.Hash.String())
	if data, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		var ds diffStats
		if json.Unmarshal(data, &ds) == nil {
			return ds.Added, ds.Removed
		}
	}

	stats, err := c.StatsContext(ctx)
	if err != nil {
		r.logger.Debug("diff stats unavailable", "commit", c.Hash.String(), "err", err)
		return 0, 0
	}
	for _, fs := range stats {
		added += fs.Addition
		removed += fs.Deletion
	}

	if data, err := json.Marshal(diffStats{Added: added, Removed: removed}); err == nil {
		_ = r.cache.Set(ctx, key, data, 0)
	}
	return added, removed
}
