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

package main

import (
	"context"
	"log/slog"

	"github.com/conorll/video-streaming-platform/internal/cloud"
	"github.com/conorll/video-streaming-platform/internal/core/workflow"
)

// SetupListeners attaches the ingestion workflow to every configured
// subscription consumer and starts them. Depending on the configured intake
// mode the consumers are either streaming listeners or pull workers; both
// run the same chain.
func SetupListeners(ctx context.Context, config *cloud.Config, cloudClients *cloud.ServiceClients) {
	ingestion := workflow.NewVideoIngestionWorkflow(state.processor, state.workspace)

	for name, listener := range cloudClients.PubSubListeners {
		listener.SetCommand(ingestion)
		listener.Listen(ctx)
		slog.Info("started streaming listener", "subscription", name)
	}
	for name, worker := range cloudClients.PullWorkers {
		worker.SetCommand(ingestion)
		worker.Listen(ctx)
		slog.Info("started pull worker", "subscription", name)
	}
}
