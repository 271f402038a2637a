package git

import "testing"

func TestParseRef(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want RefLabel
	}{
		{in: "HEAD -> main", want: RefLabel{Kind: RefKindHead, Name: "main"}},
		{in: "HEAD", want: RefLabel{Kind: RefKindHead, Name: "HEAD"}},
		{in: "tag: v1.0", want: RefLabel{Kind: RefKindTag, Name: "v1.0"}},
		{in: "origin/main", want: RefLabel{Kind: RefKindRemoteBranch, Name: "origin/main"}},
		{in: " main ", want: RefLabel{Kind: RefKindBranch, Name: "main"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			if got := ParseRef(tt.in); got != tt.want {
				t.Fatalf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRefKindString(t *testing.T) {
	t.Parallel()

	want := map[RefKind]string{
		RefKindBranch:       "branch",
		RefKindRemoteBranch: "remote",
		RefKindTag:          "tag",
		RefKindHead:         "head",
	}
	for kind, s := range want {
		if got := kind.String(); got != s {
			t.Fatalf("expected %q, got %q", s, got)
		}
	}
}
