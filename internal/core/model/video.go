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

// Package model defines the core data structures for the video-ingestion worker.
// This file contains the job model derived from an upload notification, the
// durable video record, and the fixed constants the processing pipeline is
// built around: the rendition ladder and the supported source formats.
//
// Structs:
//   - Job: The transient unit of work created for each queue message.
//   - Video: The durable metadata record owned by the catalog.
//
// Functions:
//   - NewJob: Validates a raw file name and derives the Job from it.
//   - ApplicableRenditions: Filters the ladder against a source height.
//   - RenditionFileName: Naming rule for transcoded outputs.
package model

import (
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"
)

// ResolutionLadder is the fixed, ordered set of target heights considered for
// rendition generation. The playback client requests rendition objects by these
// exact values, so the ladder must not be reordered or extended casually.
var ResolutionLadder = []int{144, 240, 360, 480, 720, 1080, 1440, 2160, 4320}

// SupportedFormats lists the accepted source container extensions, compared
// case-insensitively against the substring after the last dot of the file name.
var SupportedFormats = []string{"mp4", "avi", "mov", "mkv", "wmv", "flv", "webm", "mpeg", "mts", "3gp"}

// Job is the ephemeral description of one unit of work, created when a queue
// message is accepted and discarded when the pipeline settles. It is never
// persisted; the durable state lives in the Video record and the buckets.
type Job struct {
	RawFileName       string // The object name of the raw upload (e.g., "abc123.mp4").
	VideoId           string // The file name stem, which doubles as the catalog record id.
	ThumbnailFileName string // Derived name of the thumbnail artifact (VideoId + ".png").
}

// Video is the durable metadata record for a single uploaded video. It is
// owned by the external catalog; this worker mutates only the Resolution and
// Processed fields, and always both together.
type Video struct {
	Id          string `json:"id" bigquery:"id"`
	Title       string `json:"title" bigquery:"title"`
	Description string `json:"description" bigquery:"description"`
	UserId      string `json:"user_id" bigquery:"user_id"`
	// Resolution is the native height of the source video in pixels, not a
	// rendition height. It stays NULL until the pipeline's terminal commit,
	// which sets it together with Processed in one statement.
	Resolution bigquery.NullInt64 `json:"resolution" bigquery:"resolution"`
	Processed  bool               `json:"processed" bigquery:"processed"`
}

// NewJob derives a Job from a raw file name, applying the intake validation
// rules: the name must be present, must contain an extension, and the
// extension must be on the supported-format list. Validation failures are
// returned as *ValidationError values so the intake loop can distinguish
// "never run the pipeline" from pipeline failures.
//
// Inputs:
//   - rawFileName: The object name taken from the upload notification.
//
// Outputs:
//   - *Job: The derived job on success.
//   - error: A *ValidationError describing why the message must be rejected.
func NewJob(rawFileName string) (*Job, error) {
	if rawFileName == "" {
		return nil, &ValidationError{Reason: "message is missing a file name"}
	}

	idx := strings.LastIndex(rawFileName, ".")
	if idx < 0 || idx == len(rawFileName)-1 {
		return nil, &ValidationError{Reason: fmt.Sprintf("file %q has no extension", rawFileName)}
	}

	ext := strings.ToLower(rawFileName[idx+1:])
	if !isSupportedFormat(ext) {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("unsupported file format: %s. Supported formats: %s", ext, strings.Join(SupportedFormats, ", ")),
		}
	}

	videoId := rawFileName[:strings.Index(rawFileName, ".")]
	return &Job{
		RawFileName:       rawFileName,
		VideoId:           videoId,
		ThumbnailFileName: videoId + ".png",
	}, nil
}

func isSupportedFormat(ext string) bool {
	for _, f := range SupportedFormats {
		if f == ext {
			return true
		}
	}
	return false
}

// ApplicableRenditions returns the subset of the ladder that does not exceed
// the source height, in ascending order. A very small source yields an empty
// set; the pipeline still produces a thumbnail and commits in that case.
//
// Inputs:
//   - sourceHeight: The probed height of the raw video in pixels.
//
// Outputs:
//   - []int: The target heights to transcode, possibly empty.
func ApplicableRenditions(sourceHeight int) []int {
	out := make([]int, 0, len(ResolutionLadder))
	for _, r := range ResolutionLadder {
		if r <= sourceHeight {
			out = append(out, r)
		}
	}
	return out
}

// RenditionFileName builds the object and local file name for a rendition:
// the target height prefixed onto the raw file name (e.g., "720-abc123.mp4").
func RenditionFileName(height int, rawFileName string) string {
	return fmt.Sprintf("%d-%s", height, rawFileName)
}
