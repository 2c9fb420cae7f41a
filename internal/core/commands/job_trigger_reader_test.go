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

package commands_test

import (
	"context"
	"errors"
	"testing"

	"github.com/conorll/video-streaming-platform/internal/core/commands"
	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/conorll/video-streaming-platform/internal/core/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChainContext(payload string) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, payload)
	return chainCtx
}

func TestJobTriggerReaderAcceptsUploadNotification(t *testing.T) {
	cmd := commands.NewJobTriggerReader("job_trigger_reader")
	chainCtx := newChainContext(`{"name": "abc123.mp4", "bucket": "raw-videos", "size": "1024"}`)

	cmd.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	job, ok := chainCtx.Get(cmd.GetOutputParam()).(*model.Job)
	require.True(t, ok)
	assert.Equal(t, "abc123", job.VideoId)
	assert.Equal(t, "abc123.mp4", job.RawFileName)
	assert.Equal(t, "abc123.png", job.ThumbnailFileName)
}

func TestJobTriggerReaderRejectsUnsupportedFormat(t *testing.T) {
	cmd := commands.NewJobTriggerReader("job_trigger_reader")
	chainCtx := newChainContext(`{"name": "document.pdf"}`)

	cmd.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	var validationErr *model.ValidationError
	assert.True(t, errors.As(chainCtx.GetErrors()["job_trigger_reader"], &validationErr))
	assert.Nil(t, chainCtx.Get(cmd.GetOutputParam()))
}

func TestJobTriggerReaderRejectsMalformedPayload(t *testing.T) {
	cmd := commands.NewJobTriggerReader("job_trigger_reader")
	chainCtx := newChainContext("not a notification")

	cmd.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.Nil(t, chainCtx.Get(cmd.GetOutputParam()))
}

func TestJobTriggerReaderRejectsMissingObjectName(t *testing.T) {
	cmd := commands.NewJobTriggerReader("job_trigger_reader")
	chainCtx := newChainContext(`{"bucket": "raw-videos"}`)

	cmd.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
}
