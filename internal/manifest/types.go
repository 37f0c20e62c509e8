package manifest

// Package is the self-description published by a package in its metadata
// file. Dependencies maps a repository path to a version-range string.
type Package struct {
	Name         string            `yaml:"name" json:"name"`
	Description  string            `yaml:"description,omitempty" json:"description,omitempty"`
	Author       string            `yaml:"author,omitempty" json:"author,omitempty"`
	IconURL      string            `yaml:"iconurl,omitempty" json:"iconurl,omitempty"`
	License      string            `yaml:"license,omitempty" json:"license,omitempty"`
	Homepage     string            `yaml:"homepage,omitempty" json:"homepage,omitempty"`
	Repository   Repository        `yaml:"repository" json:"repository"`
	Dependencies map[string]string `yaml:"dependencies,omitempty" json:"dependencies,omitempty"`
}

// Repository holds the package's own declared source location. The URL may
// be in any of the identifier forms accepted by repopath.Normalize.
type Repository struct {
	URL string `yaml:"url" json:"url"`
}
