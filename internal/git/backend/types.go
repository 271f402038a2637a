package backend

import "time"

type Signature struct {
	Name  string
	Email string
	When  time.Time
}

type Commit struct {
	Hash         string
	ParentHashes []string
	Author       Signature
	Committer    Signature
	// Refs holds decorations as `git log --decorate` prints them, e.g.
	// "HEAD -> main", "origin/main" or "tag: v1.0".
	Refs    []string
	Message string
}

// LogOptions selects which history a log stream walks.
type LogOptions struct {
	// Limit caps the number of commits; zero means no limit.
	Limit int
	// All walks every branch, remote and tag instead of HEAD only.
	All bool
}
