// Package archive builds the tar invocations that produce full and incremental
// backups.
//
// Every archive for an item lives in {dest_path}/{name}/. A full backup writes
// full-{name}-{date}.tar.gz and starts a fresh {name}-{date}.snar state file;
// an incremental backup writes i.{name}-{date}.tar.gz and updates the first
// .snar file found in the item's directory. Commands are returned as argument
// vectors so item names and paths are never interpreted by a shell.
package archive
