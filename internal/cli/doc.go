// Package cli wires the cobra command tree for the parcel tool: project
// bootstrap, package install/uninstall, dependency validation, and
// inspection of installed packages.
package cli
