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

package workflow_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/conorll/video-streaming-platform/internal/core/media"
	"github.com/conorll/video-streaming-platform/internal/core/model"
	"github.com/conorll/video-streaming-platform/internal/core/pipeline"
	"github.com/conorll/video-streaming-platform/internal/core/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubEngine struct{ height int }

func (e *stubEngine) ProbeResolution(_ context.Context, _ string) (int, error) {
	return e.height, nil
}

func (e *stubEngine) Transcode(_ context.Context, _ string, outputPath string, _ int) error {
	return os.WriteFile(outputPath, []byte("rendition"), 0o644)
}

func (e *stubEngine) ExtractThumbnail(_ context.Context, _ string, outputPath string) error {
	return os.WriteFile(outputPath, []byte("thumbnail"), 0o644)
}

type stubStore struct {
	uploads []string
}

func (s *stubStore) Download(_ context.Context, _ string, _ string, localPath string) error {
	return os.WriteFile(localPath, []byte("raw"), 0o644)
}

func (s *stubStore) Upload(_ context.Context, localPath string, bucket string, objectName string) error {
	if _, err := os.Stat(localPath); err != nil {
		return fmt.Errorf("upload source missing: %w", err)
	}
	s.uploads = append(s.uploads, bucket+"/"+objectName)
	return nil
}

type stubCatalog struct {
	committed map[string]int
}

func (c *stubCatalog) CommitProcessed(_ context.Context, videoId string, resolution int) error {
	c.committed[videoId] = resolution
	return nil
}

func (c *stubCatalog) Get(_ context.Context, videoId string) (*model.Video, error) {
	return &model.Video{Id: videoId}, nil
}

func newIngestionChain(t *testing.T) (cor.Chain, *stubStore, *stubCatalog) {
	t.Helper()
	root := t.TempDir()
	ws := media.NewWorkspace(
		filepath.Join(root, "raw"),
		filepath.Join(root, "processed"),
		filepath.Join(root, "thumbnails"),
	)
	require.NoError(t, ws.EnsureDirectories())

	store := &stubStore{}
	catalog := &stubCatalog{committed: make(map[string]int)}
	processor := pipeline.NewProcessor(ws, &stubEngine{height: 360}, store, catalog,
		pipeline.Buckets{Raw: "raw-videos", Processed: "processed-videos", Thumbnail: "thumbnails"}, logger)

	return workflow.NewVideoIngestionWorkflow(processor, ws), store, catalog
}

func TestVideoIngestionWorkflowProcessesUpload(t *testing.T) {
	chain, store, catalog := newIngestionChain(t)

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, `{"name": "abc123.mp4", "bucket": "raw-videos"}`)

	chain.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	assert.Equal(t, []string{
		"processed-videos/144-abc123.mp4",
		"processed-videos/240-abc123.mp4",
		"processed-videos/360-abc123.mp4",
		"thumbnails/abc123.png",
	}, store.uploads)
	assert.Equal(t, map[string]int{"abc123": 360}, catalog.committed)
}

func TestVideoIngestionWorkflowStopsOnInvalidNotification(t *testing.T) {
	chain, store, catalog := newIngestionChain(t)

	chainCtx := cor.NewBaseContext()
	defer chainCtx.Close()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, `{"name": "notes.txt"}`)

	chain.Execute(chainCtx)

	// The trigger reader records the error; the pipeline never runs, so the
	// consumer nacks without touching storage or the catalog.
	require.True(t, chainCtx.HasErrors())
	assert.Empty(t, store.uploads)
	assert.Empty(t, catalog.committed)
}
