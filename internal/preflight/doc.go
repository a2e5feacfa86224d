// Package preflight provides readiness checks for the filesystem paths and
// executables a backup run depends on.
//
// The CLI "tarbackup check" command runs them and renders the results. None
// of the checks modify anything: missing directories are reported against the
// nearest existing parent, and the lock marker is only inspected.
package preflight
