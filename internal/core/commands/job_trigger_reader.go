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
// execute. This file defines the intake command that turns a raw upload
// notification into a validated ingestion job.
package commands

import (
	"errors"
	"log/slog"

	"github.com/conorll/video-streaming-platform/internal/cloud"
	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/conorll/video-streaming-platform/internal/core/model"
)

// JobTriggerReader parses the upload-notification payload from the message
// body and derives the ingestion job from the object name. A payload that
// fails validation is a permanent fault: the error is recorded so the
// consumer nacks, and no amount of redelivery will make an unsupported file
// name processable. Routing such messages aside is dead-letter policy on the
// subscription, not worker logic.
type JobTriggerReader struct {
	cor.BaseCommand
}

// NewJobTriggerReader is the constructor for JobTriggerReader.
func NewJobTriggerReader(name string) *JobTriggerReader {
	return &JobTriggerReader{BaseCommand: *cor.NewBaseCommand(name)}
}

// Execute reads the message body from the input parameter, parses the
// notification, and writes the validated *model.Job to the output parameter.
func (c *JobTriggerReader) Execute(context cor.Context) {
	ctx := context.GetContext()
	payload := context.Get(c.GetInputParam()).(string)

	notification, err := cloud.ParseUploadNotification([]byte(payload))
	if err != nil {
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	job, err := model.NewJob(notification.Name)
	if err != nil {
		var validationErr *model.ValidationError
		if errors.As(err, &validationErr) {
			slog.Warn("rejected upload notification",
				"object", notification.Name,
				"reason", validationErr.Reason)
		}
		c.GetErrorCounter().Add(ctx, 1)
		context.AddError(c.GetName(), err)
		return
	}

	slog.Info("accepted ingestion job",
		"video_id", job.VideoId,
		"raw_file", job.RawFileName,
		"bucket", notification.Bucket,
		"size", notification.Size)

	c.GetSuccessCounter().Add(ctx, 1)
	context.Add(c.GetOutputParam(), job)
}
