// Package blobs moves tensor payload files between local disk and a blob
// store, so input samples can be fetched from a bucket before a run and
// result files published after it.
package blobs

import "context"

// BlobInfo identifies one payload object by content hash.
type BlobInfo struct {
	Hash string
}

// BlobReader fetches payloads.
type BlobReader interface {
	// Download fetches the object into destPath. If no such object exists,
	// the error satisfies errors.Is(err, os.ErrNotExist).
	Download(ctx context.Context, info BlobInfo, destPath string) error
}

// Blobstore reads and publishes payloads.
type Blobstore interface {
	BlobReader

	// Upload stores the file at sourcePath under the object's hash. An
	// object that already exists is left untouched and is not an error.
	Upload(ctx context.Context, sourcePath string, info BlobInfo) error
}
