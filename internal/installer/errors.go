package installer

import "errors"

var (
	// ErrNoSatisfyingVersion indicates that no remote tag satisfies the
	// requested version range.
	ErrNoSatisfyingVersion = errors.New("no version satisfies the requested range")

	// ErrRepositoryMismatch indicates that a fetched package's manifest
	// declares a different repository than the one requested.
	ErrRepositoryMismatch = errors.New("manifest repository does not match requested repository")

	// ErrCorruptInstallation indicates a package directory whose checked-out
	// version cannot be determined.
	ErrCorruptInstallation = errors.New("corrupt installation")

	// ErrFixedPointNotReached indicates that repeated validation passes kept
	// mutating the manifest without converging, which points at a dependency
	// cycle of ever-growing requirements.
	ErrFixedPointNotReached = errors.New("dependency validation did not reach a fixed point")
)
