package gitrepo

import (
	"strings"
	"time"
)

// Commit is one commit as read from the repository.
// It is immutable once produced by the Reader.
type Commit struct {
	Hash    string    // Full hex commit hash
	Parents []string  // Parent hashes, first parent first (len > 1 for merges)
	Author  string    // Author name
	When    time.Time // Committer timestamp
	Message string    // Full commit message
	Added   int       // Lines added vs. first parent (0 if stats unavailable)
	Removed int       // Lines removed vs. first parent (0 if stats unavailable)
}

// Summary returns the first line of the commit message, trimmed.
func (c Commit) Summary() string {
	msg := strings.TrimSpace(c.Message)
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = msg[:i]
	}
	return strings.TrimSpace(msg)
}

// IsMerge reports whether the commit has more than one parent.
func (c Commit) IsMerge() bool { return len(c.Parents) > 1 }

// IsRoot reports whether the commit has no parents.
func (c Commit) IsRoot() bool { return len(c.Parents) == 0 }

// Branch is a local branch head.
type Branch struct {
	Name string // Short branch name (e.g. "main", not "refs/heads/main")
	Head string // Hash of the commit the branch points at
}

// Snapshot is the flat result of reading a repository: every commit
// reachable from any local branch head (deduplicated by hash) plus the
// branch heads themselves, sorted by name. A Snapshot is plain data with
// no handle back to the repository, so tests can fabricate one directly.
type Snapshot struct {
	Commits  []Commit
	Branches []Branch
}

// Commit returns the commit with the given hash, if present.
func (s *Snapshot) Commit(hash string) (Commit, bool) {
	for _, c := range s.Commits {
		if c.Hash == hash {
			return c, true
		}
	}
	return Commit{}, false
}

// Empty reports whether the snapshot contains no commits.
func (s *Snapshot) Empty() bool { return len(s.Commits) == 0 }
