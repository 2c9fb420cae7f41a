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

// Package workflow_test exercises the assembled ingestion chain against
// in-memory collaborators. This file provides the shared setup for the
// package: logging and the suite logger, initialized once in TestMain.
package workflow_test

import (
	"os"
	"testing"

	"github.com/conorll/video-streaming-platform/internal/telemetry"
	"go.opentelemetry.io/contrib/bridges/otelslog"
)

const tName = "github.com/conorll/video-streaming-platform/tests/workflow"

var logger = otelslog.NewLogger(tName)

func TestMain(m *testing.M) {
	telemetry.SetupLogging()
	logger.Info("completed test setup")
	os.Exit(m.Run())
}
