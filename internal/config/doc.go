// Package config loads, normalizes, and validates tarbackup configuration.
//
// A configuration document lists the backup items to archive plus the
// script-wide actions that wrap a run. TOML is the primary format; documents
// with a .json extension are decoded as JSON using the same keys. Unknown keys
// are rejected when the document is decoded, and each backup item is checked
// against an explicit schema: items that fail are reported through
// Config.Rejected and excluded from the run instead of failing the whole load.
//
// Always obtain settings through Load so downstream code receives expanded
// paths, canonical policy values, and only items that passed validation.
package config
