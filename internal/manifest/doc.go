// Package manifest handles parsing and validation of package metadata files.
// Every installed package carries a package.yaml (or package.json) at its
// directory root describing the package and its declared dependencies. The
// package also provides JSON Schema validation of manifest bytes for
// diagnostics.
package manifest
