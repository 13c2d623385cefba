// Package apperr defines the sentinel errors shared across the lifecycle engine.
package apperr

import "errors"

var (
	// ErrConfig marks a configuration file that exists but cannot be parsed
	// or fails validation. A missing config file is never ErrConfig.
	ErrConfig = errors.New("invalid configuration")

	// ErrNoteNotFound marks a single-note operation against a missing path.
	ErrNoteNotFound = errors.New("note not found")

	// ErrParse marks a present but malformed front-matter block.
	ErrParse = errors.New("malformed front matter")

	// ErrEnrichment marks a failed enrichment delegate call. Non-fatal:
	// recorded as a warning and suppresses the status transition.
	ErrEnrichment = errors.New("enrichment failed")

	// ErrMutation marks a failed file mutation. Non-fatal inside a batch,
	// fatal inside a safe-mutation session (triggers rollback).
	ErrMutation = errors.New("mutation failed")

	// ErrAlreadyExists marks a write or move whose destination already exists.
	ErrAlreadyExists = errors.New("already exists")
)
