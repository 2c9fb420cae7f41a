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

// Package workflow assembles commands into the chains the Pub/Sub consumers
// execute. This file builds the video ingestion workflow.
package workflow

import (
	"github.com/conorll/video-streaming-platform/internal/core/commands"
	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/conorll/video-streaming-platform/internal/core/media"
	"github.com/conorll/video-streaming-platform/internal/core/pipeline"
)

// NewVideoIngestionWorkflow builds the chain run once per upload
// notification: parse and validate the notification into a job, then run the
// ingestion pipeline for it. The chain stops at the first error, so an
// invalid notification never reaches the pipeline.
func NewVideoIngestionWorkflow(processor *pipeline.Processor, workspace *media.Workspace) cor.Chain {
	chain := cor.NewBaseChain("video_ingestion")
	chain.AddCommand(commands.NewJobTriggerReader("job_trigger_reader"))
	chain.AddCommand(commands.NewProcessVideo("process_video", processor, workspace))
	return chain
}
