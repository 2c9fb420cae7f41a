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

package media_test

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/conorll/video-streaming-platform/internal/core/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWorkspace(t *testing.T) *media.Workspace {
	t.Helper()
	root := t.TempDir()
	return media.NewWorkspace(
		filepath.Join(root, "videos", "raw"),
		filepath.Join(root, "videos", "processed"),
		filepath.Join(root, "thumbnails"),
	)
}

func TestEnsureDirectories(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, ws.EnsureDirectories())

	for _, dir := range []string{ws.RawDir, ws.ProcessedDir, ws.ThumbnailDir} {
		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	}

	// A second run over existing directories is a no-op.
	require.NoError(t, ws.EnsureDirectories())
}

func TestWorkspacePaths(t *testing.T) {
	ws := media.NewWorkspace("videos/raw", "videos/processed", "thumbnails")

	assert.Equal(t, filepath.Join("videos", "raw", "abc.mp4"), ws.RawPath("abc.mp4"))
	assert.Equal(t, filepath.Join("videos", "processed", "720-abc.mp4"), ws.ProcessedPath("720-abc.mp4"))
	assert.Equal(t, filepath.Join("thumbnails", "abc.png"), ws.ThumbnailPath("abc.png"))
}

func TestDeleteIfExists(t *testing.T) {
	ws := newTestWorkspace(t)
	require.NoError(t, ws.EnsureDirectories())

	path := ws.RawPath("abc.mp4")
	require.NoError(t, os.WriteFile(path, []byte("data"), 0o644))

	require.NoError(t, ws.DeleteIfExists(path))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	// Deleting an already-deleted file converges to success.
	require.NoError(t, ws.DeleteIfExists(path))
}

func TestCleanupBestEffortSwallowsFailures(t *testing.T) {
	ws := newTestWorkspace(t)

	// The parent directory does not even exist; the call must not panic and
	// must not report anything to the caller.
	ws.CleanupBestEffort(ws.ProcessedPath("missing.mp4"), slog.Default())
}
