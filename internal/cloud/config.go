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

// Package cloud defines the data structures for application configuration,
// loaded from TOML files. It provides a structured way to manage settings
// for the worker's Google Cloud services, local workspace, media tooling,
// and Pub/Sub intake.
//
// Structs:
//   - Storage: Configuration for the three Cloud Storage buckets.
//   - Workspace: Configuration for the local working directories.
//   - Engine: Configuration for the ffmpeg/ffprobe binaries.
//   - Metadata: Configuration for the BigQuery dataset and table.
//   - TopicSubscription: Configuration for a single Pub/Sub subscription.
//   - Config: The top-level struct aggregating all of the above.
//
// Functions:
//   - NewConfig: A constructor that initializes a new Config object with empty maps.
package cloud

// Intake mode values for Config.Application.Intake.
const (
	// IntakeStreaming consumes messages through the high-level streaming
	// client, which manages leases automatically.
	IntakeStreaming = "streaming"
	// IntakePull consumes messages through the low-level pull API with an
	// explicit lease heartbeat.
	IntakePull = "pull"
)

// Storage names the Cloud Storage buckets the worker moves video artifacts
// between.
type Storage struct {
	RawBucket       string `toml:"raw_bucket"`       // Bucket user uploads land in.
	ProcessedBucket string `toml:"processed_bucket"` // Bucket transcoded renditions are published to.
	ThumbnailBucket string `toml:"thumbnail_bucket"` // Bucket extracted thumbnails are published to.
}

// Workspace names the local scratch directories used while a job is in
// flight. They are created at startup if missing.
type Workspace struct {
	RawDir       string `toml:"raw_dir"`       // Directory downloaded source files land in.
	ProcessedDir string `toml:"processed_dir"` // Directory renditions are written to before upload.
	ThumbnailDir string `toml:"thumbnail_dir"` // Directory thumbnails are written to before upload.
}

// Engine locates the external media tools.
type Engine struct {
	FFmpegPath  string `toml:"ffmpeg_path"`  // Path to ffmpeg; resolved from PATH when empty.
	FFprobePath string `toml:"ffprobe_path"` // Path to ffprobe; resolved from PATH when empty.
}

// Metadata names the BigQuery locations backing the video catalog.
type Metadata struct {
	DatasetName string `toml:"dataset"`     // The BigQuery dataset holding catalog tables.
	VideoTable  string `toml:"video_table"` // The table holding one row per video.
}

// TopicSubscription represents the configuration for a Pub/Sub subscription
// the worker consumes from.
type TopicSubscription struct {
	Name               string `toml:"name"`                 // The subscription ID.
	TimeoutInSeconds   int    `toml:"timeout_in_seconds"`   // Per-message processing deadline; also bounds lease extension.
	HeartbeatInSeconds int    `toml:"heartbeat_in_seconds"` // Interval between explicit lease extensions in pull mode.
	DeadLetterTopic    string `toml:"dead_letter_topic"`    // Dead-letter topic name, informational only; routing is subscription policy.
}

// Config represents the overall configuration for the worker, loaded from
// TOML files. It is the root container for all other configuration structs.
type Config struct {
	// Application holds general application settings.
	Application struct {
		Name            string `toml:"name"`              // The name of the application, used in logs and telemetry.
		GoogleProjectId string `toml:"google_project_id"` // The Google Cloud project ID.
		GoogleLocation  string `toml:"location"`          // The Google Cloud location.
		Intake          string `toml:"intake"`            // Message intake mode: "streaming" or "pull".
		Port            int    `toml:"port"`              // HTTP port for the health endpoints.
	} `toml:"application"`
	Storage            Storage                      `toml:"storage"`             // Bucket configuration.
	Workspace          Workspace                    `toml:"workspace"`           // Local scratch directory configuration.
	Engine             Engine                       `toml:"engine"`              // Media tool configuration.
	Metadata           Metadata                     `toml:"metadata"`            // BigQuery catalog configuration.
	TopicSubscriptions map[string]TopicSubscription `toml:"topic_subscriptions"` // Pub/Sub subscriptions keyed by a logical name (e.g. "VideoUploads").
}

// NewConfig is a constructor function that creates a new, initialized Config
// instance. The map fields are initialized so the TOML decoder can populate
// them without nil checks.
func NewConfig() *Config {
	return &Config{
		TopicSubscriptions: make(map[string]TopicSubscription),
	}
}
