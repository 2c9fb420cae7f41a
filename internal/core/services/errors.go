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
// This file defines the error types those adapters raise. Both wrap their
// cause so callers can classify with errors.As and still reach the
// underlying client error.
package services

import (
	"errors"
	"fmt"
	"net/http"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"
)

// StorageError reports a failed object-store interaction: download, upload,
// or the make-public ACL call. It is always fatal for the in-flight job;
// retries happen via queue redelivery, never inside the adapter.
type StorageError struct {
	Op     string // "download", "upload", or "acl".
	Bucket string // The bucket involved.
	Object string // The object name involved.
	Err    error  // The underlying client error.
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s of gs://%s/%s failed: %v", e.Op, e.Bucket, e.Object, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// StoreError reports a failed metadata-store write or read. A StoreError
// from the terminal commit fails the job even though every artifact has
// already been uploaded; redelivery re-runs the whole pipeline, which is safe
// because every stage, the commit included, is idempotent.
type StoreError struct {
	Op      string // "commit" or "get".
	VideoId string // The record the operation targeted.
	Err     error  // The underlying client error.
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("metadata %s for video %s failed: %v", e.Op, e.VideoId, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// IsNotFound reports whether a storage failure means the object does not
// exist, as opposed to a transport or permission problem. A missing raw
// object on a redelivered message usually means an operator removed the
// source; callers log it as such instead of as an outage.
func IsNotFound(err error) bool {
	if errors.Is(err, storage.ErrObjectNotExist) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusNotFound
}
