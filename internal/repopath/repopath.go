// Package repopath canonicalizes repository identifiers into the owner/name
// form used as registry keys, directory names, and comparison operands.
// Every externally supplied repository string must pass through Normalize
// before it is used anywhere else in the engine.
package repopath

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidRepositoryPath indicates that a repository identifier could not
// be interpreted as any of the recognized forms.
var ErrInvalidRepositoryPath = errors.New("invalid repository path")

// DirSeparator replaces the slash in a canonical path when it is used as a
// directory name under the packages root.
const DirSeparator = "."

// Normalize returns the canonical owner/name form of a repository identifier.
// Recognized inputs: an already-canonical "owner/name", an SSH remote
// "git@host:owner/name[.git]", and an HTTP(S) URL
// "https://host/owner/name[.git]". A trailing .git suffix is stripped before
// form detection.
func Normalize(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", fmt.Errorf("%w: empty identifier", ErrInvalidRepositoryPath)
	}
	s = strings.TrimSuffix(s, ".git")

	switch {
	case strings.HasPrefix(s, "git@"):
		// git@host:owner/name
		_, rest, ok := strings.Cut(s, ":")
		if !ok {
			return "", fmt.Errorf("%w: malformed SSH remote %q", ErrInvalidRepositoryPath, raw)
		}
		return normalizeTail(rest, raw)

	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		// scheme://host/owner/name
		_, rest, _ := strings.Cut(s, "://")
		_, tail, ok := strings.Cut(rest, "/")
		if !ok {
			return "", fmt.Errorf("%w: URL %q has no path", ErrInvalidRepositoryPath, raw)
		}
		return normalizeTail(tail, raw)

	default:
		if strings.Contains(s, ":") || strings.Contains(s, "//") {
			return "", fmt.Errorf("%w: unrecognized form %q", ErrInvalidRepositoryPath, raw)
		}
		return normalizeTail(s, raw)
	}
}

// normalizeTail validates an owner/name tail extracted from any input form.
// The owner may not contain the directory separator: the first dot in a
// directory name must always be the owner/name boundary so that DirName
// stays invertible. Hosting services do not issue dotted owner names.
func normalizeTail(tail, raw string) (string, error) {
	parts := strings.Split(tail, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", fmt.Errorf("%w: %q does not reduce to owner/name", ErrInvalidRepositoryPath, raw)
	}
	if strings.Contains(parts[0], DirSeparator) {
		return "", fmt.Errorf("%w: owner %q may not contain %q", ErrInvalidRepositoryPath, parts[0], DirSeparator)
	}
	return parts[0] + "/" + parts[1], nil
}

// Equal reports whether two canonical paths identify the same repository.
// Comparison is case-insensitive.
func Equal(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Key returns the case-folded form of a canonical path used for map lookups.
func Key(canonical string) string {
	return strings.ToLower(canonical)
}

// DirName maps a canonical path to its deterministic package directory name.
func DirName(canonical string) string {
	return strings.ReplaceAll(canonical, "/", DirSeparator)
}

// FromDirName recovers the canonical path from a package directory name.
// It is the inverse of DirName for every path Normalize accepts: owners
// cannot contain the separator, so the first occurrence is the boundary
// and any later dots belong to the repository name.
func FromDirName(dir string) string {
	return strings.Replace(dir, DirSeparator, "/", 1)
}

// RemoteURL builds the HTTPS clone URL for a canonical path on the given
// host. An empty host defaults to github.com.
func RemoteURL(host, canonical string) string {
	if host == "" {
		host = "github.com"
	}
	return "https://" + host + "/" + canonical + ".git"
}
