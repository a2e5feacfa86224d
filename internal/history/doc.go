// Package history persists a record of every orchestration run in SQLite.
//
// Each run stores its mode and wall-clock bounds plus one row per executed
// step with its duration, exit code, and error. The CLI reads it back to show
// recent runs. Recording is best-effort from the orchestrator's point of view:
// a history failure never changes the outcome of a backup run.
package history
