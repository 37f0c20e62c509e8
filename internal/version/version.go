// Package version wraps semantic-version parsing, range constraints, and
// best-match selection for the dependency engine. All version strings are
// tolerant of a leading "v" (git tags are commonly v-prefixed).
package version

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ErrParse indicates a malformed semantic version or range expression.
var ErrParse = errors.New("parse error")

// Parse parses a semantic version string. A leading "v" is accepted and
// preserved in Original(), so a parsed tag can still be checked out by its
// exact name.
func Parse(text string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %v", ErrParse, text, err)
	}
	return v, nil
}

// ParseRange parses a version range expression (caret, tilde, and comparator
// syntax per semver constraints).
func ParseRange(text string) (*semver.Constraints, error) {
	c, err := semver.NewConstraint(strings.TrimSpace(text))
	if err != nil {
		return nil, fmt.Errorf("%w: range %q: %v", ErrParse, text, err)
	}
	return c, nil
}

// BestMatch returns the maximum candidate satisfying rng, or nil if none
// does. The result depends only on the candidate set, not its ordering.
func BestMatch(candidates []*semver.Version, rng *semver.Constraints) *semver.Version {
	var best *semver.Version
	for _, v := range candidates {
		if v == nil || !rng.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
		}
	}
	return best
}

// Floor returns the minimum version a range expression can admit: the
// first version-shaped token after stripping comparator prefixes, with
// wildcard components zeroed. For "^1.2.0" that is 1.2.0; for "1.x" it is
// 1.0.0; for "*" it is 0.0.0. It is a syntactic floor, not a solved lower
// bound, which is exactly how the dependency-merge comparison is defined.
func Floor(rangeText string) (*semver.Version, error) {
	for _, tok := range strings.FieldsFunc(rangeText, func(r rune) bool {
		return r == ' ' || r == ','
	}) {
		tok = strings.TrimLeft(tok, "^~><=!")
		if tok == "" {
			continue
		}
		if v, err := Parse(tok); err == nil {
			return v, nil
		}
		if v, ok := wildcardFloor(tok); ok {
			return v, nil
		}
	}
	return nil, fmt.Errorf("%w: no version literal in range %q", ErrParse, rangeText)
}

// wildcardFloor resolves tokens like "*", "1.x", and "1.2.*" to their
// lowest admitted version by zeroing each wildcard component.
func wildcardFloor(tok string) (*semver.Version, bool) {
	comps := strings.Split(strings.TrimPrefix(tok, "v"), ".")
	wild := false
	for i, c := range comps {
		if c == "*" || c == "x" || c == "X" {
			comps[i] = "0"
			wild = true
		}
	}
	if !wild {
		return nil, false
	}
	for len(comps) < 3 {
		comps = append(comps, "0")
	}
	v, err := semver.NewVersion(strings.Join(comps, "."))
	if err != nil {
		return nil, false
	}
	return v, true
}

// ParseTags parses a list of tag names into deduplicated versions, silently
// skipping tags that are not semantic versions (release branches, "latest",
// annotated junk). Two tags that normalize to the same version count once.
func ParseTags(tags []string) []*semver.Version {
	seen := make(map[string]bool, len(tags))
	var out []*semver.Version
	for _, tag := range tags {
		v, err := Parse(tag)
		if err != nil {
			continue
		}
		key := v.String()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
