// Package storage defines the vault file-system abstraction.
package storage

import "github.com/mvantol/ansuz/internal/models"

// Provider is the interface for vault file operations. All paths are relative
// to the vault root.
type Provider interface {
	// List returns metadata for every .md file under dir, in lexical path order.
	List(dir string) ([]models.NoteMetadata, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path (temp file, fsync, rename).
	Write(path string, content []byte) error
	// WriteNew atomically writes content to path, failing with
	// apperr.ErrAlreadyExists when path is already occupied.
	WriteNew(path string, content []byte) error
	// Exists reports whether a regular file exists at path.
	Exists(path string) bool
	// Delete removes the file at path.
	Delete(path string) error
	// Move renames oldPath to newPath.
	Move(oldPath, newPath string) error
}
