// Package gitvc is the narrow interface to the external version-control
// tool. All clone/fetch/checkout/tag operations go through a Client so the
// engine never shells out directly, and tests can substitute a fake.
package gitvc

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Client is the set of version-control operations the engine needs.
type Client interface {
	// Clone clones the remote repository at url into dir.
	Clone(ctx context.Context, url, dir string) error

	// FetchTags fetches all remote tags for the repository in dir.
	FetchTags(ctx context.Context, dir string) error

	// CheckoutTag force-checks-out the given tag in dir, discarding any
	// local working-copy modifications.
	CheckoutTag(ctx context.Context, dir, tag string) error

	// ListRemoteTags lists the tag names published by the remote at url.
	ListRemoteTags(ctx context.Context, url string) ([]string, error)

	// DescribeTag returns the tag currently checked out in dir. It fails
	// when HEAD is not exactly on a tag.
	DescribeTag(ctx context.Context, dir string) (string, error)
}

// ProcessError is returned when the version-control tool exits nonzero.
// It carries the invocation and the tool's error-stream text.
type ProcessError struct {
	Args   []string
	Stderr string
	Err    error
}

func (e *ProcessError) Error() string {
	msg := strings.TrimSpace(e.Stderr)
	if msg == "" {
		return fmt.Sprintf("git %s: %v", strings.Join(e.Args, " "), e.Err)
	}
	return fmt.Sprintf("git %s: %v\n%s", strings.Join(e.Args, " "), e.Err, msg)
}

func (e *ProcessError) Unwrap() error { return e.Err }

// CLI runs a git binary as an external process.
type CLI struct {
	// Binary is the git executable to invoke. Empty means "git" from PATH.
	Binary string
}

// NewCLI returns a CLI client for the given binary path.
func NewCLI(binary string) *CLI {
	return &CLI{Binary: binary}
}

func (c *CLI) binary() string {
	if c.Binary == "" {
		return "git"
	}
	return c.Binary
}

// run executes git with the given working directory and arguments, returning
// captured stdout. A nonzero exit becomes a *ProcessError.
func (c *CLI) run(ctx context.Context, dir string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary(), args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", &ProcessError{Args: args, Stderr: stderr.String(), Err: err}
	}
	return stdout.String(), nil
}

func (c *CLI) Clone(ctx context.Context, url, dir string) error {
	_, err := c.run(ctx, "", "clone", url, dir)
	return err
}

func (c *CLI) FetchTags(ctx context.Context, dir string) error {
	_, err := c.run(ctx, dir, "fetch", "--tags", "--force")
	return err
}

func (c *CLI) CheckoutTag(ctx context.Context, dir, tag string) error {
	_, err := c.run(ctx, dir, "checkout", "--force", tag)
	return err
}

func (c *CLI) ListRemoteTags(ctx context.Context, url string) ([]string, error) {
	out, err := c.run(ctx, "", "ls-remote", "--tags", url)
	if err != nil {
		return nil, err
	}
	return ParseTagLines(out), nil
}

func (c *CLI) DescribeTag(ctx context.Context, dir string) (string, error) {
	out, err := c.run(ctx, dir, "describe", "--tags", "--exact-match")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// ParseTagLines extracts tag names from ls-remote output. Each relevant line
// has the form "<sha>\trefs/tags/<tag>"; annotated tags appear twice, the
// peeled form with a ^{} suffix, which is stripped. Results are deduplicated
// preserving first-seen order.
func ParseTagLines(out string) []string {
	seen := make(map[string]bool)
	var tags []string
	for _, line := range strings.Split(out, "\n") {
		_, ref, ok := strings.Cut(line, "refs/tags/")
		if !ok {
			continue
		}
		tag := strings.TrimSuffix(strings.TrimSpace(ref), "^{}")
		if tag == "" || seen[tag] {
			continue
		}
		seen[tag] = true
		tags = append(tags, tag)
	}
	return tags
}
