package blobs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"cloud.google.com/go/storage"
	"github.com/rs/zerolog/log"
)

// GCSBlobstore stores payload objects in a Google Cloud Storage bucket,
// keyed by content hash.
type GCSBlobstore struct {
	Bucket string
}

var _ Blobstore = (*GCSBlobstore)(nil)

// Upload stores the file at sourcePath under its hash, skipping objects that
// already exist.
func (s *GCSBlobstore) Upload(ctx context.Context, sourcePath string, info BlobInfo) error {
	src, err := os.Open(sourcePath)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer src.Close()

	gcsURL := "gs://" + s.Bucket + "/" + info.Hash

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	obj := client.Bucket(s.Bucket).Object(info.Hash)
	if _, err := obj.Attrs(ctx); err == nil {
		log.Debug().Str("url", gcsURL).Msg("object already exists in GCS")
		return nil
	} else if !errors.Is(err, storage.ErrObjectNotExist) {
		return fmt.Errorf("getting object attributes for %q: %w", gcsURL, err)
	}

	startedAt := time.Now()
	w := obj.NewWriter(ctx)
	n, err := io.Copy(w, src)
	if err != nil {
		return fmt.Errorf("uploading to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing GCS writer: %w", err)
	}

	log.Info().Str("url", gcsURL).Int64("bytes", n).Dur("duration", time.Since(startedAt)).
		Msg("uploaded blob to GCS")
	return nil
}

// Download fetches the object into destPath via a temp file and rename.
func (s *GCSBlobstore) Download(ctx context.Context, info BlobInfo, destPath string) error {
	gcsURL := "gs://" + s.Bucket + "/" + info.Hash

	client, err := storage.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating GCS storage client: %w", err)
	}
	defer client.Close()

	startedAt := time.Now()
	r, err := client.Bucket(s.Bucket).Object(info.Hash).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("object %q: %w", gcsURL, os.ErrNotExist)
		}
		return fmt.Errorf("opening object from GCS %q: %w", gcsURL, err)
	}
	defer r.Close()

	n, err := writeToFile(r, destPath)
	if err != nil {
		return fmt.Errorf("downloading from GCS: %w", err)
	}

	log.Info().Str("url", gcsURL).Str("destination", destPath).Int64("bytes", n).
		Dur("duration", time.Since(startedAt)).Msg("downloaded blob from GCS")
	return nil
}
