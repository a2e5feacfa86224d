// Command tarbackup runs one full or incremental backup pass over the items
// listed in its configuration file, archiving each with GNU tar and running
// the configured hook commands around it.
//
// Helper subcommands write a sample configuration, validate one, list recent
// runs from the history database, and check that paths and executables are
// ready.
package main
