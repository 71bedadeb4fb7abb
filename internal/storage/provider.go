// Package storage defines the content directory abstraction.
package storage

import "github.com/starford/raido/internal/models"

// Provider is the interface for content file operations. Paths are relative
// to the content root unless stated otherwise.
type Provider interface {
	// Root returns the absolute path of the content root.
	Root() string
	// List returns metadata for every .md file under dir (relative to root).
	List(dir string) ([]models.FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write atomically writes content to path.
	Write(path string, content []byte) error
}
