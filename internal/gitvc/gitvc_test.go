package gitvc

import (
	"errors"
	"strings"
	"testing"
)

func TestParseTagLines(t *testing.T) {
	out := "abc123\trefs/tags/v1.0.0\n" +
		"def456\trefs/tags/v1.1.0\n" +
		"def457\trefs/tags/v1.1.0^{}\n" +
		"aaa000\tHEAD\n" +
		"\n"

	tags := ParseTagLines(out)
	want := []string{"v1.0.0", "v1.1.0"}
	if len(tags) != len(want) {
		t.Fatalf("ParseTagLines = %v, want %v", tags, want)
	}
	for i := range want {
		if tags[i] != want[i] {
			t.Errorf("tags[%d] = %q, want %q", i, tags[i], want[i])
		}
	}
}

func TestParseTagLinesEmpty(t *testing.T) {
	if tags := ParseTagLines(""); len(tags) != 0 {
		t.Errorf("ParseTagLines(\"\") = %v, want empty", tags)
	}
}

func TestProcessErrorText(t *testing.T) {
	err := &ProcessError{
		Args:   []string{"clone", "url", "dir"},
		Stderr: "fatal: repository not found\n",
		Err:    errors.New("exit status 128"),
	}

	// The diagnostic text from the tool must survive into the error.
	if msg := err.Error(); !strings.Contains(msg, "repository not found") {
		t.Errorf("error %q does not carry stderr text", msg)
	}
}

func TestProcessErrorUnwrap(t *testing.T) {
	inner := errors.New("exit status 1")
	err := &ProcessError{Args: []string{"fetch"}, Err: inner}
	if !errors.Is(err, inner) {
		t.Error("ProcessError should unwrap to the exec error")
	}
}
