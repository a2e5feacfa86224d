// Package logging assembles structured slog loggers and formatting helpers used
// across tarbackup.
//
// It owns the console/JSON handlers, routes output either to the configured log
// file or to stdout, and exposes context-aware helpers so runners automatically
// tag log lines with the run identifier and backup item. LineWriter adapts
// subprocess output streams into log records.
//
// Prefer these constructors over hand-rolled slog setup so every component emits
// records with the same shape.
package logging
