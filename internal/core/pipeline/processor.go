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

// Package pipeline contains the video ingestion orchestrator. It owns the
// ordering and failure policy of a single job; all actual I/O is delegated to
// the injected collaborators.
//
// Logic Flow:
//
//  1. Download the raw upload from the raw bucket into the workspace.
//  2. Probe the source height with the media engine.
//  3. For every ladder height at or below the source height, ascending:
//     transcode, upload the rendition public, delete the local rendition.
//  4. Extract a thumbnail frame, upload it public, delete the local copy.
//  5. Delete the local raw file.
//  6. Commit resolution and the processed flag to the catalog in one write.
//
// Any failure in steps 1-4 aborts the remaining work for the job: the stage's
// partial output and the raw file are removed best-effort and the original
// error is returned so the intake layer can nack the message. Cleanup
// failures are logged, never escalated — a leftover temp file must not mask
// the error that actually broke the job. The commit is deliberately last and
// the raw file is deleted before it, so a crash between the two leaves a
// fully uploaded, uncommitted video that a redelivered message re-processes
// from the bucket copy.
package pipeline

import (
	"context"
	"log/slog"

	"github.com/conorll/video-streaming-platform/internal/core/media"
	"github.com/conorll/video-streaming-platform/internal/core/model"
	"github.com/conorll/video-streaming-platform/internal/core/services"
)

// Buckets names the three Cloud Storage buckets the pipeline moves artifacts
// between.
type Buckets struct {
	Raw       string // Source bucket the upload notification points into.
	Processed string // Destination bucket for transcoded renditions.
	Thumbnail string // Destination bucket for extracted thumbnails.
}

// Processor executes the ingestion pipeline for one job at a time. It holds
// no per-job state, so a single instance is shared by every message handler.
type Processor struct {
	workspace *media.Workspace
	engine    media.Engine
	store     services.ObjectStore
	catalog   services.Catalog
	buckets   Buckets
	logger    *slog.Logger
}

// NewProcessor is the constructor for Processor.
func NewProcessor(
	workspace *media.Workspace,
	engine media.Engine,
	store services.ObjectStore,
	catalog services.Catalog,
	buckets Buckets,
	logger *slog.Logger,
) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Processor{
		workspace: workspace,
		engine:    engine,
		store:     store,
		catalog:   catalog,
		buckets:   buckets,
		logger:    logger,
	}
}

// Run processes one job end to end and returns the first error encountered.
// A nil return means every rendition and the thumbnail are uploaded and
// public, the local workspace holds no artifacts for the job, and the catalog
// record is committed.
func (p *Processor) Run(ctx context.Context, job *model.Job) error {
	log := p.logger.With("video_id", job.VideoId, "raw_file", job.RawFileName)
	rawPath := p.workspace.RawPath(job.RawFileName)

	if err := p.store.Download(ctx, p.buckets.Raw, job.RawFileName, rawPath); err != nil {
		p.workspace.CleanupBestEffort(rawPath, log)
		return err
	}

	sourceHeight, err := p.engine.ProbeResolution(ctx, rawPath)
	if err != nil {
		p.workspace.CleanupBestEffort(rawPath, log)
		return err
	}
	log.Info("probed source video", "height", sourceHeight)

	if err := p.processRenditions(ctx, job, rawPath, sourceHeight, log); err != nil {
		p.workspace.CleanupBestEffort(rawPath, log)
		return err
	}

	if err := p.processThumbnail(ctx, job, rawPath, log); err != nil {
		p.workspace.CleanupBestEffort(rawPath, log)
		return err
	}

	// The raw file goes before the commit. If the commit then fails, the
	// bucket copy of the source is still there for the redelivered attempt.
	p.workspace.CleanupBestEffort(rawPath, log)

	if err := p.catalog.CommitProcessed(ctx, job.VideoId, sourceHeight); err != nil {
		return err
	}

	log.Info("video processed", "resolution", sourceHeight)
	return nil
}

// processRenditions transcodes and uploads every applicable ladder height in
// ascending order. The first failure aborts the remaining heights; renditions
// uploaded by earlier iterations stay in the bucket, where the redelivered
// attempt overwrites them under the same deterministic names.
func (p *Processor) processRenditions(ctx context.Context, job *model.Job, rawPath string, sourceHeight int, log *slog.Logger) error {
	for _, height := range model.ApplicableRenditions(sourceHeight) {
		name := model.RenditionFileName(height, job.RawFileName)
		outputPath := p.workspace.ProcessedPath(name)

		if err := p.engine.Transcode(ctx, rawPath, outputPath, height); err != nil {
			p.workspace.CleanupBestEffort(outputPath, log)
			return err
		}
		if err := p.store.Upload(ctx, outputPath, p.buckets.Processed, name); err != nil {
			p.workspace.CleanupBestEffort(outputPath, log)
			return err
		}
		p.workspace.CleanupBestEffort(outputPath, log)
		log.Info("rendition published", "height", height, "object", name)
	}
	return nil
}

// processThumbnail extracts and uploads the single preview frame.
func (p *Processor) processThumbnail(ctx context.Context, job *model.Job, rawPath string, log *slog.Logger) error {
	thumbPath := p.workspace.ThumbnailPath(job.ThumbnailFileName)

	if err := p.engine.ExtractThumbnail(ctx, rawPath, thumbPath); err != nil {
		p.workspace.CleanupBestEffort(thumbPath, log)
		return err
	}
	if err := p.store.Upload(ctx, thumbPath, p.buckets.Thumbnail, job.ThumbnailFileName); err != nil {
		p.workspace.CleanupBestEffort(thumbPath, log)
		return err
	}
	p.workspace.CleanupBestEffort(thumbPath, log)
	log.Info("thumbnail published", "object", job.ThumbnailFileName)
	return nil
}
