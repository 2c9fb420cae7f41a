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

package cloud

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseToml = `
[application]
name = "video-processing-service"
google_project_id = "base-project"
intake = "streaming"
port = 8080

[storage]
raw_bucket = "raw-videos"
processed_bucket = "processed-videos"
thumbnail_bucket = "thumbnails"

[workspace]
raw_dir = "videos/raw"
processed_dir = "videos/processed"
thumbnail_dir = "thumbnails"

[metadata]
dataset = "video_platform"
video_table = "videos"

[topic_subscriptions.VideoUploads]
name = "video-uploads-sub"
timeout_in_seconds = 3600
heartbeat_in_seconds = 10
`

const overlayToml = `
[application]
google_project_id = "test-project"
intake = "pull"

[topic_subscriptions.VideoUploads]
name = "video-uploads-sub-test"
timeout_in_seconds = 60
heartbeat_in_seconds = 10
`

func writeConfigDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.toml"), []byte(baseToml), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.test.toml"), []byte(overlayToml), 0o644))
	return dir
}

func TestLoadConfigAppliesOverlay(t *testing.T) {
	dir := writeConfigDir(t)
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "test")

	config := NewConfig()
	LoadConfig(config)

	// Overlay values win.
	assert.Equal(t, "test-project", config.Application.GoogleProjectId)
	assert.Equal(t, IntakePull, config.Application.Intake)
	assert.Equal(t, "video-uploads-sub-test", config.TopicSubscriptions["VideoUploads"].Name)
	assert.Equal(t, 60, config.TopicSubscriptions["VideoUploads"].TimeoutInSeconds)

	// Base values not overridden stay in place.
	assert.Equal(t, "video-processing-service", config.Application.Name)
	assert.Equal(t, "raw-videos", config.Storage.RawBucket)
	assert.Equal(t, "videos/processed", config.Workspace.ProcessedDir)
	assert.Equal(t, "video_platform", config.Metadata.DatasetName)
	assert.Equal(t, 8080, config.Application.Port)
}

func TestLoadConfigWithoutOverlayKeepsBase(t *testing.T) {
	dir := writeConfigDir(t)
	t.Setenv(EnvConfigFilePrefix, dir)
	t.Setenv(EnvConfigRuntime, "production")

	config := NewConfig()
	LoadConfig(config)

	// No .env.production.toml exists, so the base file stands alone.
	assert.Equal(t, "base-project", config.Application.GoogleProjectId)
	assert.Equal(t, IntakeStreaming, config.Application.Intake)
}
