// Package storage defines the object-storage interface used to archive audit
// records, and a registry of backend constructors.
//
// Each backend registers itself from an init() function in its own package:
//
//	func init() {
//	    storage.Register("mybackend", func(cfg *config.StorageConfig) (storage.Storage, error) {
//	        return New(cfg)
//	    })
//	}
//
// and is enabled with a blank import wherever NewStorage is called.
package storage

import (
	"context"
	"io"
)

// Storage is the minimal object-store surface needed for write-once archiving.
type Storage interface {
	// Upload stores the object at path and returns its size and SHA-256.
	Upload(ctx context.Context, path string, reader io.Reader, size int64) (*UploadResult, error)

	// Download retrieves an object. The caller closes the reader.
	Download(ctx context.Context, path string) (io.ReadCloser, error)

	// Exists reports whether an object is stored at path.
	Exists(ctx context.Context, path string) (bool, error)
}

// UploadResult contains information about an uploaded object
type UploadResult struct {
	Path     string
	Size     int64
	Checksum string // SHA-256, lowercase hex
}
