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
// This file defines the video catalog: the metadata-store adapter that owns
// the worker's single durable write. The commit runs as one parameterized
// DML statement so that `resolution` and `processed` can never be observed
// half-updated, and it is only issued after every upload and cleanup step of
// the pipeline has succeeded.
//
// Structs:
//   - VideoCatalog: The BigQuery-backed Catalog implementation.
//
// Functions:
//   - NewVideoCatalog: Constructor taking the shared BigQuery client and
//     dataset/table names from configuration.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"cloud.google.com/go/bigquery"
	"github.com/conorll/video-streaming-platform/internal/core/model"
)

// Catalog is the capability interface over the metadata store. The pipeline
// performs exactly one CommitProcessed per successful job; Get exists for
// operational lookups and the test harness.
type Catalog interface {
	// CommitProcessed atomically sets resolution and processed = true on the
	// video record. Idempotent: re-committing the same pair is a no-op.
	CommitProcessed(ctx context.Context, videoId string, resolution int) error

	// Get retrieves a single video record by id.
	Get(ctx context.Context, videoId string) (*model.Video, error)
}

// VideoCatalog is the production Catalog backed by a BigQuery table.
type VideoCatalog struct {
	Client      *bigquery.Client // Shared BigQuery client, owned by the service container.
	DatasetName string           // The dataset holding the videos table.
	VideoTable  string           // The table holding one row per video record.
}

// NewVideoCatalog is the constructor for VideoCatalog.
func NewVideoCatalog(client *bigquery.Client, datasetName string, videoTable string) *VideoCatalog {
	return &VideoCatalog{Client: client, DatasetName: datasetName, VideoTable: videoTable}
}

// GetFQN returns the fully qualified, query-ready name of the videos table
// (project.dataset.table), with the client library's colon separator swapped
// for the dot that standard SQL expects.
func (c *VideoCatalog) GetFQN() string {
	fqn := c.Client.Dataset(c.DatasetName).Table(c.VideoTable).FullyQualifiedName()
	return strings.Replace(fqn, ":", ".", -1)
}

// CommitProcessed runs the single-statement terminal update. The statement
// either applies in full or not at all; there is no intermediate state for a
// reader to catch. Failures are wrapped as *StoreError and abort the job —
// the raw file is already gone locally by this point, so a failed commit
// leaves uploaded renditions with processed still false until redelivery
// replays the pipeline from the bucket copy of the source.
func (c *VideoCatalog) CommitProcessed(ctx context.Context, videoId string, resolution int) error {
	q := c.Client.Query(fmt.Sprintf(QryCommitProcessed, c.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{
		{Name: "resolution", Value: resolution},
		{Name: "id", Value: videoId},
	}

	job, err := q.Run(ctx)
	if err != nil {
		return &StoreError{Op: "commit", VideoId: videoId, Err: err}
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return &StoreError{Op: "commit", VideoId: videoId, Err: err}
	}
	if err := status.Err(); err != nil {
		return &StoreError{Op: "commit", VideoId: videoId, Err: err}
	}

	slog.Info("video record committed", "video_id", videoId, "resolution", resolution)
	return nil
}

// Get retrieves the record for one video id.
func (c *VideoCatalog) Get(ctx context.Context, videoId string) (*model.Video, error) {
	q := c.Client.Query(fmt.Sprintf(QryFindVideoById, c.GetFQN()))
	q.Parameters = []bigquery.QueryParameter{{Name: "id", Value: videoId}}

	itr, err := q.Read(ctx)
	if err != nil {
		return nil, &StoreError{Op: "get", VideoId: videoId, Err: err}
	}
	video := &model.Video{}
	if err := itr.Next(video); err != nil {
		return nil, &StoreError{Op: "get", VideoId: videoId, Err: err}
	}
	return video, nil
}
