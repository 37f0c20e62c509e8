// Package installer performs the clone/fetch/checkout/validate/register
// lifecycle for packages and keeps a project's dependency manifest
// transitively consistent. All registry-mutating entry points are
// serialized by a single process-wide lock; install is atomic from the
// caller's perspective — any failure after the package directory may have
// been created rolls back by uninstalling.
package installer
