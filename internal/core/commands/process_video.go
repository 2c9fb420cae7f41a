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

// Package commands holds the workflow commands the Pub/Sub consumers
// execute. This file defines the command that runs the full ingestion
// pipeline for one validated job.
package commands

import (
	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/conorll/video-streaming-platform/internal/core/media"
	"github.com/conorll/video-streaming-platform/internal/core/model"
	"github.com/conorll/video-streaming-platform/internal/core/pipeline"
)

// ProcessVideo executes the ingestion pipeline for the job produced by the
// trigger reader. The pipeline removes its own artifacts as it goes; the
// paths registered on the chain context are a backstop sweep for crashes
// between a write and its cleanup.
type ProcessVideo struct {
	cor.BaseCommand
	processor *pipeline.Processor
	workspace *media.Workspace
}

// NewProcessVideo is the constructor for ProcessVideo.
func NewProcessVideo(name string, processor *pipeline.Processor, workspace *media.Workspace) *ProcessVideo {
	return &ProcessVideo{
		BaseCommand: *cor.NewBaseCommand(name),
		processor:   processor,
		workspace:   workspace,
	}
}

// IsExecutable requires a *model.Job on the input parameter.
func (c *ProcessVideo) IsExecutable(context cor.Context) bool {
	if !c.BaseCommand.IsExecutable(context) {
		return false
	}
	_, ok := context.Get(c.GetInputParam()).(*model.Job)
	return ok
}

// Execute runs the pipeline end to end and records the outcome.
func (c *ProcessVideo) Execute(context cor.Context) {
	ctx := context.GetContext()
	job := context.Get(c.GetInputParam()).(*model.Job)

	context.AddTempFile(c.workspace.RawPath(job.RawFileName))
	context.AddTempFile(c.workspace.ThumbnailPath(job.ThumbnailFileName))

	if err := c.processor.Run(ctx, job); err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), job.VideoId)
}
