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

package model_test

import (
	"errors"
	"testing"

	"github.com/conorll/video-streaming-platform/internal/core/model"
	"github.com/zeebo/assert"
)

func TestNewJob(t *testing.T) {
	job, err := model.NewJob("abc123.mp4")
	assert.NoError(t, err)
	assert.Equal(t, "abc123.mp4", job.RawFileName)
	assert.Equal(t, "abc123", job.VideoId)
	assert.Equal(t, "abc123.png", job.ThumbnailFileName)
}

func TestNewJobUppercaseExtension(t *testing.T) {
	job, err := model.NewJob("movie.MP4")
	assert.NoError(t, err)
	assert.Equal(t, "movie", job.VideoId)
}

func TestNewJobVideoIdStopsAtFirstDot(t *testing.T) {
	// The id is everything before the first dot, while the extension comes
	// from the last dot.
	job, err := model.NewJob("abc.backup.mov")
	assert.NoError(t, err)
	assert.Equal(t, "abc", job.VideoId)
	assert.Equal(t, "abc.png", job.ThumbnailFileName)
}

func TestNewJobRejectsUnsupportedFormat(t *testing.T) {
	_, err := model.NewJob("movie.xyz")
	assert.Error(t, err)

	var validationErr *model.ValidationError
	assert.True(t, errors.As(err, &validationErr))
}

func TestNewJobRejectsMissingExtension(t *testing.T) {
	for _, name := range []string{"movie", "movie.", ""} {
		_, err := model.NewJob(name)
		assert.Error(t, err)

		var validationErr *model.ValidationError
		assert.True(t, errors.As(err, &validationErr))
	}
}

func TestApplicableRenditions(t *testing.T) {
	assert.DeepEqual(t, []int{144, 240, 360, 480, 720, 1080}, model.ApplicableRenditions(1080))
	assert.DeepEqual(t, []int{144, 240, 360, 480, 720}, model.ApplicableRenditions(800))
	assert.DeepEqual(t, model.ResolutionLadder, model.ApplicableRenditions(4320))
}

func TestApplicableRenditionsBelowLadder(t *testing.T) {
	assert.Equal(t, 0, len(model.ApplicableRenditions(100)))
}

func TestRenditionFileName(t *testing.T) {
	assert.Equal(t, "720-abc123.mp4", model.RenditionFileName(720, "abc123.mp4"))
	assert.Equal(t, "144-abc.backup.mov", model.RenditionFileName(144, "abc.backup.mov"))
}
