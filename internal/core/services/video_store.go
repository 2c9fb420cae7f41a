// Copyright 2024 Google, LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package services contains the adapters over the worker's remote stores.
// This file defines the object-store adapter used by the pipeline to move
// video artifacts between Google Cloud Storage and the local workspace.
//
// Logic Flow:
// Download streams a bucket object into a workspace file; Upload streams a
// workspace file into a bucket object and then marks it publicly readable as
// a second call. Neither operation retries internally and neither deletes
// local files — retry policy belongs to the queue, local lifecycle to the
// workspace manager. The two-call upload leaves a known inconsistency
// window: a crash between the write and the ACL call produces an uploaded
// but world-unreadable object. Redelivery overwrites the object and reruns
// the ACL call, which heals it.
//
// Structs:
//   - VideoStore: The GCS-backed ObjectStore implementation.
//
// Functions:
//   - NewVideoStore: Constructor taking the shared storage client.
package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"cloud.google.com/go/storage"
	"github.com/h2non/filetype"
)

// ObjectStore is the capability interface the pipeline uses for remote
// artifact I/O. Tests substitute an in-memory implementation.
type ObjectStore interface {
	// Download fetches gs://bucket/objectName into localPath.
	Download(ctx context.Context, bucket string, objectName string, localPath string) error

	// Upload writes localPath to gs://bucket/objectName and makes the object
	// publicly readable.
	Upload(ctx context.Context, localPath string, bucket string, objectName string) error
}

// VideoStore is the production ObjectStore backed by Google Cloud Storage.
type VideoStore struct {
	client *storage.Client // Shared GCS client, owned by the service container.
}

// NewVideoStore is the constructor for VideoStore.
func NewVideoStore(client *storage.Client) *VideoStore {
	return &VideoStore{client: client}
}

// Download streams the object into localPath. The destination file is
// created (or truncated) first, so reruns after a partial download converge
// on the same path. All failures, not-found included, surface as a
// *StorageError and are left to the caller to handle.
func (s *VideoStore) Download(ctx context.Context, bucket string, objectName string, localPath string) error {
	obj := s.client.Bucket(bucket).Object(objectName)

	reader, err := obj.NewReader(ctx)
	if err != nil {
		return &StorageError{Op: "download", Bucket: bucket, Object: objectName, Err: err}
	}
	defer func(reader *storage.Reader) {
		if err := reader.Close(); err != nil {
			slog.Warn("failed to close storage reader", "bucket", bucket, "object", objectName, "error", err)
		}
	}(reader)

	dest, err := os.Create(localPath)
	if err != nil {
		return &StorageError{Op: "download", Bucket: bucket, Object: objectName, Err: fmt.Errorf("could not create %s: %w", localPath, err)}
	}

	written, err := io.Copy(dest, reader)
	if cerr := dest.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return &StorageError{Op: "download", Bucket: bucket, Object: objectName, Err: fmt.Errorf("%d bytes written: %w", written, err)}
	}

	slog.Info("downloaded raw video", "bucket", bucket, "object", objectName, "path", localPath, "bytes", written)
	return nil
}

// Upload streams localPath into the object, stamping a Content-Type sniffed
// from the file header, then sets the public-read ACL in a second call.
// Object names are deterministic per job, so re-uploading after a redelivery
// simply overwrites the previous attempt.
func (s *VideoStore) Upload(ctx context.Context, localPath string, bucket string, objectName string) error {
	src, err := os.Open(localPath)
	if err != nil {
		return &StorageError{Op: "upload", Bucket: bucket, Object: objectName, Err: fmt.Errorf("could not open %s: %w", localPath, err)}
	}
	defer func(src *os.File) {
		_ = src.Close()
	}(src)

	obj := s.client.Bucket(bucket).Object(objectName)
	writer := obj.NewWriter(ctx)
	writer.ContentType = sniffContentType(localPath)

	if written, err := io.Copy(writer, src); err != nil {
		_ = writer.Close()
		return &StorageError{Op: "upload", Bucket: bucket, Object: objectName, Err: fmt.Errorf("%d bytes written: %w", written, err)}
	}
	// Close finalizes the upload; an object only exists once this succeeds.
	if err := writer.Close(); err != nil {
		return &StorageError{Op: "upload", Bucket: bucket, Object: objectName, Err: err}
	}

	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		return &StorageError{Op: "acl", Bucket: bucket, Object: objectName, Err: err}
	}

	slog.Info("uploaded artifact", "path", localPath, "bucket", bucket, "object", objectName)
	return nil
}

// sniffContentType reads the file header and maps it to a MIME type. Unknown
// content falls back to the generic octet-stream rather than failing the
// upload over a cosmetic attribute.
func sniffContentType(localPath string) string {
	kind, err := filetype.MatchFile(localPath)
	if err != nil || kind == filetype.Unknown {
		return "application/octet-stream"
	}
	return kind.MIME.Value
}
