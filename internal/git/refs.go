package git

import "strings"

type RefKind uint8

const (
	RefKindBranch RefKind = iota
	RefKindRemoteBranch
	RefKindTag
	RefKindHead
)

func (k RefKind) String() string {
	switch k {
	case RefKindRemoteBranch:
		return "remote"
	case RefKindTag:
		return "tag"
	case RefKindHead:
		return "head"
	default:
		return "branch"
	}
}

// RefLabel is a parsed decoration.
type RefLabel struct {
	Kind RefKind
	Name string // short name: main, origin/main, v1
}

// ParseRef classifies a decoration as printed by `git log --decorate`:
// "HEAD -> main", "HEAD", "tag: v1", "origin/main" or "main".
//
// Branch names containing a slash are indistinguishable from remotes here and
// are reported as remotes.
func ParseRef(label string) RefLabel {
	label = strings.TrimSpace(label)
	switch {
	case label == "HEAD":
		return RefLabel{Kind: RefKindHead, Name: label}
	case strings.HasPrefix(label, "HEAD -> "):
		return RefLabel{Kind: RefKindHead, Name: strings.TrimPrefix(label, "HEAD -> ")}
	case strings.HasPrefix(label, "tag: "):
		return RefLabel{Kind: RefKindTag, Name: strings.TrimPrefix(label, "tag: ")}
	case strings.Contains(label, "/"):
		return RefLabel{Kind: RefKindRemoteBranch, Name: label}
	default:
		return RefLabel{Kind: RefKindBranch, Name: label}
	}
}
