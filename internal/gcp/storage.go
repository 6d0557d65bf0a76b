package gcp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// SaveToGCSAtomically writes content to a GCS object only if it doesn't already exist.
// An existing object is not a failure: generated documents are content-addressed, so a
// second write would carry the same bytes.
func SaveToGCSAtomically(ctx context.Context, bucket *storage.BucketHandle, objectName string, content []byte, contentType string) error {
	writer := bucket.Object(objectName).If(storage.Conditions{DoesNotExist: true}).NewWriter(ctx)
	writer.ContentType = contentType

	if _, err := io.Copy(writer, bytes.NewReader(content)); err != nil {
		_ = writer.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := writer.Close(); err != nil {
		if isPreconditionFailed(err) {
			slog.Info("Skipping existing GCS object.", "object", objectName)
			return nil
		}
		return fmt.Errorf("failed to finalize GCS write: %w", err)
	}
	return nil
}

func isPreconditionFailed(err error) bool {
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusPreconditionFailed
}

// Archive stores generated and uploaded files under one bucket.
type Archive struct {
	bucket *storage.BucketHandle
	name   string
}

// NewArchive binds an archive to bucket.
func NewArchive(client *storage.Client, bucket string) *Archive {
	return &Archive{bucket: client.Bucket(bucket), name: bucket}
}

// Put writes data to object unless it already exists and returns its gs:// URI.
func (a *Archive) Put(ctx context.Context, object string, data []byte, contentType string) (string, error) {
	if err := SaveToGCSAtomically(ctx, a.bucket, object, data, contentType); err != nil {
		return "", err
	}
	return fmt.Sprintf("gs://%s/%s", a.name, object), nil
}
