// Package job turns one backup item into an ordered queue of commands and runs
// that queue.
//
// A Queue always holds its steps in the order pre-action, archive, post-action,
// skipping the ones the item does not configure. A Runner executes the steps
// one after another, timing each. A command that cannot be started ends the
// queue; a command that runs and exits non-zero ends it only under the strict
// exit policy. Runners share no state, so queues for different items can run
// concurrently.
package job
