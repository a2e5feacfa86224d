// Package orchestrator runs one backup pass over every configured item.
//
// A run acquires the lock marker, builds a job queue per enabled item, runs
// the script-wide pre-action, executes the item queues concurrently through a
// bounded worker pool, waits for all of them, runs the script-wide
// post-action, and releases the lock. Items are isolated from one another:
// a failing command only affects the rest of its own item's queue.
package orchestrator
