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

// Package media contains the local-machine half of the ingestion pipeline:
// the workspace that stages in-flight artifacts on disk and the transcoding
// engine adapter that produces them. This file defines the workspace.
//
// The workspace owns three flat directories — raw inputs, processed
// renditions, and thumbnails. Every artifact a job creates lives in one of
// them under a deterministic name, which is what makes redelivered messages
// safe: a rerun simply overwrites the same paths.
//
// Structs:
//   - Workspace: Holds the three staging directory paths.
//
// Functions:
//   - NewWorkspace: Constructor from configured directory paths.
//   - EnsureDirectories: Idempotently creates the staging directories.
//   - DeleteIfExists: Removes a file, treating absence as success.
//   - CleanupBestEffort: The logged-but-swallowed delete used on cleanup paths.
package media

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Workspace is the staging area for one worker process. Jobs are processed
// one at a time, so the fixed directory layout is safe to share across jobs.
type Workspace struct {
	RawDir       string // Directory for downloaded raw videos.
	ProcessedDir string // Directory for transcoded renditions.
	ThumbnailDir string // Directory for extracted thumbnails.
}

// NewWorkspace builds a Workspace from the configured directory paths.
func NewWorkspace(rawDir, processedDir, thumbnailDir string) *Workspace {
	return &Workspace{RawDir: rawDir, ProcessedDir: processedDir, ThumbnailDir: thumbnailDir}
}

// RawPath returns the staging path for a raw video file.
func (w *Workspace) RawPath(fileName string) string {
	return filepath.Join(w.RawDir, fileName)
}

// ProcessedPath returns the staging path for a rendition file.
func (w *Workspace) ProcessedPath(fileName string) string {
	return filepath.Join(w.ProcessedDir, fileName)
}

// ThumbnailPath returns the staging path for a thumbnail file.
func (w *Workspace) ThumbnailPath(fileName string) string {
	return filepath.Join(w.ThumbnailDir, fileName)
}

// EnsureDirectories idempotently creates the three staging directories,
// including any missing parents. Existing directories are left untouched.
// This runs once at startup, before the worker starts listening.
func (w *Workspace) EnsureDirectories() error {
	for _, dir := range []string{w.RawDir, w.ProcessedDir, w.ThumbnailDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create workspace directory %s: %w", dir, err)
		}
	}
	return nil
}

// DeleteIfExists removes the file at path. A file that is already gone is a
// success, not an error: cleanup steps are routinely retried after partial
// failures and must converge.
func (w *Workspace) DeleteIfExists(path string) error {
	err := os.Remove(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// CleanupBestEffort deletes a local artifact and swallows any failure after
// logging it. Callers use it on every cleanup path where a delete failure
// must not mask the error that actually aborted the job (or abort a job that
// otherwise succeeded).
func (w *Workspace) CleanupBestEffort(path string, logger *slog.Logger) {
	if err := w.DeleteIfExists(path); err != nil {
		logger.Error("failed to clean up local artifact", "path", path, "error", err)
	}
}
