package manifest

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"
)

// fileNames is the fallback order for finding a package metadata file.
// JSON manifests parse fine through the YAML decoder.
var fileNames = []string{"package.yaml", "package.json"}

// ErrMissing indicates that no metadata file exists in a package directory.
var ErrMissing = errors.New("package manifest missing")

// ErrUnparsable indicates that a metadata file exists but cannot be decoded.
var ErrUnparsable = errors.New("package manifest unparsable")

// ErrInvalid indicates that a metadata file decodes but fails schema
// validation.
var ErrInvalid = errors.New("package manifest invalid")

// Find returns the path of the metadata file inside dir, trying the
// standard names in fallback order.
func Find(dir string) (string, error) {
	for _, name := range fileNames {
		p := filepath.Join(dir, name)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: no %s in %s", ErrMissing, fileNames[0], dir)
}

// Load locates and parses the metadata file of the package rooted at dir.
func Load(dir string) (*Package, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	return ParseFile(path)
}

// LoadValidated locates the metadata file of the package rooted at dir,
// checks it against the package schema, and parses it. Schema failures are
// reported as ErrInvalid with the issue paths in the error text.
func LoadValidated(dir string) (*Package, error) {
	path, err := Find(dir)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	result, err := Validate(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnparsable, path, err)
	}
	if !result.Valid {
		return nil, fmt.Errorf("%w: %s: %s", ErrInvalid, path, formatIssues(result.Issues))
	}
	return Parse(data, path)
}

func formatIssues(issues []ValidationIssue) string {
	parts := make([]string, 0, len(issues))
	for _, issue := range issues {
		if issue.Path == "" {
			parts = append(parts, issue.Message)
			continue
		}
		parts = append(parts, issue.Path+": "+issue.Message)
	}
	return strings.Join(parts, "; ")
}

// ParseFile reads and parses a metadata file.
func ParseFile(path string) (*Package, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrMissing, path)
		}
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse decodes metadata bytes. The path is used only for error text.
func Parse(data []byte, path string) (*Package, error) {
	var pkg Package
	if err := yaml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrUnparsable, path, err)
	}
	if pkg.Repository.URL == "" {
		return nil, fmt.Errorf("%w: %s: missing repository.url", ErrUnparsable, path)
	}
	return &pkg, nil
}

// Save writes a package metadata file as YAML to the standard name in dir.
func Save(dir string, pkg *Package) error {
	data, err := yaml.Marshal(pkg)
	if err != nil {
		return fmt.Errorf("encoding manifest: %w", err)
	}
	path := filepath.Join(dir, fileNames[0])
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing manifest %s: %w", path, err)
	}
	return nil
}
