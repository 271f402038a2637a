package backend

import (
	"slices"
	"testing"
)

func hashes(commits []*Commit) []string {
	out := make([]string, len(commits))
	for i, c := range commits {
		out[i] = c.Hash
	}
	return out
}

func TestChildrenFirst(t *testing.T) {
	t.Parallel()

	c := func(hash string, parents ...string) *Commit {
		return &Commit{Hash: hash, ParentHashes: parents}
	}
	tests := []struct {
		name string
		in   []*Commit
		want []string
	}{
		{
			name: "already ordered",
			in:   []*Commit{c("c3", "c2"), c("c2", "c1"), c("c1")},
			want: []string{"c3", "c2", "c1"},
		},
		{
			name: "parent ahead of a skewed child",
			in:   []*Commit{c("main", "root"), c("root"), c("side", "root")},
			want: []string{"main", "side", "root"},
		},
		{
			name: "merge waits for both children",
			in:   []*Commit{c("a", "base"), c("base"), c("m", "b", "a"), c("b", "base")},
			want: []string{"m", "a", "b", "base"},
		},
		{
			name: "parents outside the set are ignored",
			in:   []*Commit{c("b", "a"), c("x", "missing")},
			want: []string{"b", "x"},
		},
		{
			name: "empty",
			want: []string{},
		},
	}
	for _, tt := range tests {
		if got := hashes(childrenFirst(tt.in)); !slices.Equal(got, tt.want) {
			t.Fatalf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}
