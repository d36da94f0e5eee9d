package blobs

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// DirBlobstore stores payload objects in a local directory, keyed by content
// hash. Used for tests and air-gapped runs.
type DirBlobstore struct {
	Dir string
}

var _ Blobstore = (*DirBlobstore)(nil)

// Upload copies the file at sourcePath into the store, skipping objects that
// already exist.
func (s *DirBlobstore) Upload(ctx context.Context, sourcePath string, info BlobInfo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	objPath := filepath.Join(s.Dir, info.Hash)
	if _, err := os.Stat(objPath); err == nil {
		return nil
	}

	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("creating store directory: %w", err)
	}
	if _, err := writeToFile(src, objPath); err != nil {
		return fmt.Errorf("storing object: %w", err)
	}
	return nil
}

// Download copies the object into destPath.
func (s *DirBlobstore) Download(ctx context.Context, info BlobInfo, destPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	src, err := os.Open(filepath.Join(s.Dir, info.Hash))
	if err != nil {
		return fmt.Errorf("opening object %s: %w", info.Hash, err)
	}
	defer src.Close()

	if _, err := writeToFile(src, destPath); err != nil {
		return fmt.Errorf("downloading object: %w", err)
	}
	return nil
}

// writeToFile writes src to destinationPath via a temp file and rename, so a
// failed download never leaves a truncated payload behind.
func writeToFile(src io.Reader, destinationPath string) (int64, error) {
	dir := filepath.Dir(destinationPath)
	tempFile, err := os.CreateTemp(dir, "download")
	if err != nil {
		return 0, fmt.Errorf("creating temp file: %w", err)
	}

	keepTempFile := false
	defer func() {
		if !keepTempFile {
			tempFile.Close()
			os.Remove(tempFile.Name())
		}
	}()

	n, err := io.Copy(tempFile, src)
	if err != nil {
		return n, fmt.Errorf("copying payload: %w", err)
	}
	if err := tempFile.Close(); err != nil {
		return n, fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tempFile.Name(), destinationPath); err != nil {
		return n, fmt.Errorf("renaming temp file: %w", err)
	}
	keepTempFile = true
	return n, nil
}
