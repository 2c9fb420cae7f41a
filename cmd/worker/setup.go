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

package main

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/conorll/video-streaming-platform/internal/cloud"
	"github.com/conorll/video-streaming-platform/internal/core/media"
	"github.com/conorll/video-streaming-platform/internal/core/pipeline"
	"github.com/conorll/video-streaming-platform/internal/core/services"
)

// StateManager holds the shared components of the worker.
type StateManager struct {
	config    *cloud.Config
	cloud     *cloud.ServiceClients
	workspace *media.Workspace
	processor *pipeline.Processor
}

var state = &StateManager{}

// Close releases the cloud clients held by the state.
func (s *StateManager) Close() {
	if s.cloud != nil {
		s.cloud.Close()
	}
}

// SetupOS sets the configuration environment defaults for a local run.
// Values already present in the environment are left alone so deployments
// can point at their own config directory and runtime.
func SetupOS() (err error) {
	if os.Getenv(cloud.EnvConfigFilePrefix) == "" {
		if err = os.Setenv(cloud.EnvConfigFilePrefix, "configs"); err != nil {
			return err
		}
	}
	if os.Getenv(cloud.EnvConfigRuntime) == "" {
		err = os.Setenv(cloud.EnvConfigRuntime, "local")
	}
	return err
}

// GetConfig loads the application configuration once and caches it.
func GetConfig() *cloud.Config {
	if state.config == nil {
		if err := SetupOS(); err != nil {
			log.Fatalf("failed to setup os: %v\n", err)
		}
		config := cloud.NewConfig()
		cloud.LoadConfig(&config)
		state.config = config
	}
	return state.config
}

// InitState initializes the worker's dependencies: cloud clients, the local
// workspace, the media engine, the pipeline, and the message consumers.
func InitState(ctx context.Context) {
	config := GetConfig()

	cloudClients, err := cloud.NewCloudServiceClients(ctx, config)
	if err != nil {
		panic(err)
	}
	state.cloud = cloudClients

	workspace := media.NewWorkspace(
		config.Workspace.RawDir,
		config.Workspace.ProcessedDir,
		config.Workspace.ThumbnailDir,
	)
	// The scratch directories must exist before the first message arrives.
	if err := workspace.EnsureDirectories(); err != nil {
		panic(err)
	}
	state.workspace = workspace

	engine := media.NewFFmpegEngine(config.Engine.FFmpegPath, config.Engine.FFprobePath)
	store := services.NewVideoStore(cloudClients.StorageClient)
	catalog := services.NewVideoCatalog(
		cloudClients.BigQueryClient,
		config.Metadata.DatasetName,
		config.Metadata.VideoTable,
	)

	state.processor = pipeline.NewProcessor(
		workspace,
		engine,
		store,
		catalog,
		pipeline.Buckets{
			Raw:       config.Storage.RawBucket,
			Processed: config.Storage.ProcessedBucket,
			Thumbnail: config.Storage.ThumbnailBucket,
		},
		slog.Default(),
	)

	SetupListeners(ctx, config, cloudClients)
}
