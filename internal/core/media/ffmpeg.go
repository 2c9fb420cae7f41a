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

// Package media contains the local-machine half of the ingestion pipeline.
// This file wraps the external FFmpeg tooling behind the Engine interface.
//
// Logic Flow:
// The engine is the only part of the worker that shells out. All three
// operations treat the tools as black boxes: build an argument line from a
// format-string constant, run the subprocess with the job's context, and
// classify failures.
//
//  1. ProbeResolution runs ffprobe with JSON output restricted to the first
//     video stream's height, then parses that JSON.
//  2. Transcode runs ffmpeg with a scale filter fixed to the target height;
//     the width of -2 keeps the aspect ratio and rounds to an even value,
//     which most codecs require.
//  3. ExtractThumbnail seeks one second in and writes exactly one frame.
//
// Structs:
//   - FFmpegEngine: The production Engine backed by ffmpeg/ffprobe binaries.
//
// Functions:
//   - NewFFmpegEngine: Constructor taking the binary paths.
package media

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Argument templates for the engine subprocesses. They are split on single
// spaces before execution, so paths containing spaces are not supported; the
// workspace directories are configuration-controlled, not user input.
const (
	// DefaultProbeArgs asks ffprobe for only the height of the first video
	// stream, as JSON, with all logging suppressed.
	DefaultProbeArgs = "-v error -select_streams v:0 -show_entries stream=height -of json %s"
	// DefaultTranscodeArgs re-encodes to the target height. scale=-2:h keeps
	// the aspect ratio and rounds the computed width to the nearest even value.
	DefaultTranscodeArgs = "-y -hide_banner -loglevel error -i %s -filter:v scale=-2:%d -f mp4 %s"
	// DefaultThumbnailArgs captures a single frame one second into the video,
	// so reruns of the same input produce the same thumbnail.
	DefaultThumbnailArgs = "-y -hide_banner -loglevel error -ss 1 -i %s -frames:v 1 %s"

	CommandSeparator = " "
)

// Engine is the capability interface over the external transcoding tooling.
// The pipeline depends on this interface only, so tests can substitute a fake
// that simulates probe and encode failures without invoking real media tools.
type Engine interface {
	// ProbeResolution returns the height in pixels of the first video stream.
	ProbeResolution(ctx context.Context, rawPath string) (int, error)

	// Transcode re-encodes rawPath to outputPath at the target height,
	// preserving aspect ratio.
	Transcode(ctx context.Context, rawPath string, outputPath string, targetHeight int) error

	// ExtractThumbnail writes a single representative frame to outputPath.
	ExtractThumbnail(ctx context.Context, rawPath string, outputPath string) error
}

// FFmpegEngine is the production Engine implementation, shelling out to the
// ffmpeg and ffprobe binaries at the configured paths.
type FFmpegEngine struct {
	ffmpegPath  string // Path to the ffmpeg executable (e.g., "ffmpeg" on PATH).
	ffprobePath string // Path to the ffprobe executable.
}

// NewFFmpegEngine is the constructor for FFmpegEngine. Empty paths fall back
// to resolving the tools from PATH.
func NewFFmpegEngine(ffmpegPath string, ffprobePath string) *FFmpegEngine {
	if strings.TrimSpace(ffmpegPath) == "" {
		ffmpegPath = "ffmpeg"
	}
	if strings.TrimSpace(ffprobePath) == "" {
		ffprobePath = "ffprobe"
	}
	return &FFmpegEngine{ffmpegPath: ffmpegPath, ffprobePath: ffprobePath}
}

// probeOutput mirrors the subset of ffprobe's JSON output the worker reads.
type probeOutput struct {
	Streams []struct {
		Height int `json:"height"`
	} `json:"streams"`
}

// ProbeResolution runs ffprobe against the raw file and extracts the video
// stream height. A process failure is an *EngineError; a clean run whose
// output lacks a video stream or height is a *ProbeError.
func (e *FFmpegEngine) ProbeResolution(ctx context.Context, rawPath string) (int, error) {
	args := fmt.Sprintf(DefaultProbeArgs, rawPath)
	cmd := exec.CommandContext(ctx, e.ffprobePath, strings.Split(args, CommandSeparator)...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return 0, &EngineError{Op: "probe", Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))}
	}
	return parseProbeHeight(rawPath, stdout.Bytes())
}

// parseProbeHeight interprets ffprobe's JSON output. Split from the
// subprocess call so the parsing rules are testable on canned output.
func parseProbeHeight(rawPath string, out []byte) (int, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return 0, &EngineError{Op: "probe", Err: fmt.Errorf("unreadable ffprobe output: %w", err)}
	}
	if len(probe.Streams) == 0 {
		return 0, &ProbeError{Path: rawPath, Reason: "video stream not found"}
	}
	if probe.Streams[0].Height <= 0 {
		return 0, &ProbeError{Path: rawPath, Reason: "height information is missing"}
	}
	return probe.Streams[0].Height, nil
}

// Transcode re-encodes the raw file at the target height. Any encode failure
// (corrupt input, unsupported codec, disk full) surfaces as an *EngineError;
// the orchestrator is responsible for deleting whatever partial output the
// failed run may have left behind.
func (e *FFmpegEngine) Transcode(ctx context.Context, rawPath string, outputPath string, targetHeight int) error {
	args := fmt.Sprintf(DefaultTranscodeArgs, rawPath, targetHeight, outputPath)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, strings.Split(args, CommandSeparator)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &EngineError{
			Op:  "transcode",
			Err: fmt.Errorf("target %sp: %w: %s", strconv.Itoa(targetHeight), err, strings.TrimSpace(stderr.String())),
		}
	}
	return nil
}

// ExtractThumbnail captures one frame from the raw file as a PNG.
func (e *FFmpegEngine) ExtractThumbnail(ctx context.Context, rawPath string, outputPath string) error {
	args := fmt.Sprintf(DefaultThumbnailArgs, rawPath, outputPath)
	cmd := exec.CommandContext(ctx, e.ffmpegPath, strings.Split(args, CommandSeparator)...)

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return &EngineError{Op: "thumbnail", Err: fmt.Errorf("%w: %s", err, strings.TrimSpace(stderr.String()))}
	}
	return nil
}
