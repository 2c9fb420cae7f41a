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

package media

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProbeHeight(t *testing.T) {
	out := []byte(`{"streams": [{"height": 720}]}`)
	height, err := parseProbeHeight("abc.mp4", out)
	require.NoError(t, err)
	assert.Equal(t, 720, height)
}

func TestParseProbeHeightNoVideoStream(t *testing.T) {
	out := []byte(`{"streams": []}`)
	_, err := parseProbeHeight("audio-only.mp4", out)
	require.Error(t, err)

	var probeErr *ProbeError
	require.ErrorAs(t, err, &probeErr)
	assert.Equal(t, "audio-only.mp4", probeErr.Path)
}

func TestParseProbeHeightMissingHeight(t *testing.T) {
	out := []byte(`{"streams": [{"height": 0}]}`)
	_, err := parseProbeHeight("abc.mp4", out)

	var probeErr *ProbeError
	require.ErrorAs(t, err, &probeErr)
}

func TestParseProbeHeightUnreadableOutput(t *testing.T) {
	_, err := parseProbeHeight("abc.mp4", []byte("not json"))

	var engineErr *EngineError
	require.ErrorAs(t, err, &engineErr)
	assert.Equal(t, "probe", engineErr.Op)
}

func TestTranscodeArgumentLine(t *testing.T) {
	args := strings.Split(fmt.Sprintf(DefaultTranscodeArgs, "in.mp4", 720, "out.mp4"), CommandSeparator)

	assert.Contains(t, args, "scale=-2:720")
	assert.Contains(t, args, "in.mp4")
	assert.Equal(t, "out.mp4", args[len(args)-1])
}

func TestThumbnailArgumentLine(t *testing.T) {
	args := strings.Split(fmt.Sprintf(DefaultThumbnailArgs, "in.mp4", "thumb.png"), CommandSeparator)

	assert.Contains(t, args, "-ss")
	assert.Contains(t, args, "-frames:v")
	assert.Equal(t, "thumb.png", args[len(args)-1])
}

func TestNewFFmpegEngineDefaultsToPath(t *testing.T) {
	engine := NewFFmpegEngine("", " ")
	assert.Equal(t, "ffmpeg", engine.ffmpegPath)
	assert.Equal(t, "ffprobe", engine.ffprobePath)
}
