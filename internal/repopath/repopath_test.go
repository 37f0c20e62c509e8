package repopath

import (
	"errors"
	"testing"
)

func TestNormalizeAcceptedForms(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"acme/widgets", "acme/widgets"},
		{"acme/widgets.git", "acme/widgets"},
		{"git@github.com:acme/widgets.git", "acme/widgets"},
		{"git@github.com:acme/widgets", "acme/widgets"},
		{"https://github.com/acme/widgets", "acme/widgets"},
		{"https://github.com/acme/widgets.git", "acme/widgets"},
		{"http://gitlab.example.com/acme/widgets.git", "acme/widgets"},
		{"  acme/widgets  ", "acme/widgets"},
	}

	for _, tt := range tests {
		got, err := Normalize(tt.in)
		if err != nil {
			t.Errorf("Normalize(%q): %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNormalizeAllFormsAgree(t *testing.T) {
	forms := []string{
		"Acme/Widgets",
		"git@github.com:Acme/Widgets.git",
		"https://github.com/Acme/Widgets",
	}
	first, err := Normalize(forms[0])
	if err != nil {
		t.Fatalf("Normalize(%q): %v", forms[0], err)
	}
	for _, f := range forms[1:] {
		got, err := Normalize(f)
		if err != nil {
			t.Fatalf("Normalize(%q): %v", f, err)
		}
		if got != first {
			t.Errorf("Normalize(%q) = %q, want %q", f, got, first)
		}
	}
}

func TestNormalizeRejects(t *testing.T) {
	bad := []string{
		"",
		"   ",
		"widgets",
		"acme/widgets/extra",
		"acme//widgets",
		"/acme/widgets/",
		"ftp://github.com/acme/widgets",
		"git@github.com",
		"https://github.com",
		"some.owner/name",
		"git@github.com:some.owner/name.git",
		"https://github.com/some.owner/name",
	}
	for _, in := range bad {
		if _, err := Normalize(in); !errors.Is(err, ErrInvalidRepositoryPath) {
			t.Errorf("Normalize(%q) = %v, want ErrInvalidRepositoryPath", in, err)
		}
	}
}

func TestNormalizeRejectsExtraPathSegments(t *testing.T) {
	// Host-prefixed URLs with deeper paths do not reduce to owner/name.
	if _, err := Normalize("https://github.com/acme/widgets/tree/main"); err == nil {
		t.Error("expected error for URL with extra path segments")
	}
}

func TestEqualIsCaseInsensitive(t *testing.T) {
	if !Equal("Acme/Widgets", "acme/widgets") {
		t.Error("Equal should ignore case")
	}
	if Equal("acme/widgets", "acme/gadgets") {
		t.Error("Equal matched different repositories")
	}
}

func TestDirNameRoundTrip(t *testing.T) {
	dir := DirName("acme/widgets")
	if dir != "acme.widgets" {
		t.Errorf("DirName = %q, want %q", dir, "acme.widgets")
	}
	if got := FromDirName(dir); got != "acme/widgets" {
		t.Errorf("FromDirName(%q) = %q, want %q", dir, got, "acme/widgets")
	}
}

func TestDirNameRoundTripDottedRepoName(t *testing.T) {
	// Repository names may contain dots. Only the first dot in a directory
	// name marks the owner/name boundary.
	canonical, err := Normalize("acme/widgets.js")
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	dir := DirName(canonical)
	if dir != "acme.widgets.js" {
		t.Errorf("DirName = %q, want %q", dir, "acme.widgets.js")
	}
	if got := FromDirName(dir); got != "acme/widgets.js" {
		t.Errorf("FromDirName(%q) = %q, want %q", dir, got, "acme/widgets.js")
	}
}

func TestRemoteURL(t *testing.T) {
	if got := RemoteURL("", "acme/widgets"); got != "https://github.com/acme/widgets.git" {
		t.Errorf("RemoteURL default host = %q", got)
	}
	if got := RemoteURL("git.example.com", "acme/widgets"); got != "https://git.example.com/acme/widgets.git" {
		t.Errorf("RemoteURL custom host = %q", got)
	}
}
