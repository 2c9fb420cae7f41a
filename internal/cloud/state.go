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

// Package cloud provides components for interacting with Google Cloud
// services. This file initializes and holds the client objects the worker
// needs: one shared client per Google Cloud service, plus the configured
// Pub/Sub consumers. It acts as a dependency injection container; a single
// ServiceClients value is created at startup and passed to everything that
// talks to the cloud.
//
// Logic Flow:
//  1. NewCloudServiceClients is called at application startup with the
//     loaded configuration.
//  2. It creates the Storage, Pub/Sub, and BigQuery clients.
//  3. For each configured subscription it creates either a streaming
//     listener or a pull worker, per the configured intake mode. Commands
//     are attached later, once the workflows are assembled.
//  4. The bundle is returned for the rest of the application to share.
//
// Structs:
//   - ServiceClients: Container for all initialized Google Cloud clients and
//     the per-subscription consumers.
//
// Functions:
//   - NewCloudServiceClients: Factory creating and configuring all clients.
//   - Close: Gracefully shuts down all client connections.
package cloud

import (
	"context"

	"cloud.google.com/go/bigquery"
	"cloud.google.com/go/pubsub"
	"cloud.google.com/go/storage"
)

// ServiceClients is the central container for every client that talks to an
// external Google Cloud service. One instance is created at startup and
// shared across the application.
type ServiceClients struct {
	StorageClient   *storage.Client            // Client for Google Cloud Storage.
	PubsubClient    *pubsub.Client             // Client for Google Cloud Pub/Sub (streaming intake).
	BigQueryClient  *bigquery.Client           // Client for Google Cloud BigQuery.
	PubSubListeners map[string]*PubSubListener // Streaming listeners keyed by the config's logical name; empty in pull mode.
	PullWorkers     map[string]*PullWorker     // Pull workers keyed by the config's logical name; empty in streaming mode.
}

// Close releases all client connections. Connections are normally torn down
// with the root context, but tests and controlled shutdowns want an explicit
// release.
func (c *ServiceClients) Close() {
	for _, worker := range c.PullWorkers {
		_ = worker.Close()
	}
	_ = c.StorageClient.Close()
	_ = c.PubsubClient.Close()
	_ = c.BigQueryClient.Close()
}

// NewCloudServiceClients initializes every Google Cloud client the worker
// needs, based on the provided configuration.
//
// Inputs:
//   - ctx: The root context managing the lifecycle of the clients.
//   - config: The loaded application configuration.
//
// Outputs:
//   - *ServiceClients: The fully initialized container.
//   - error: An error if any client fails to initialize.
func NewCloudServiceClients(ctx context.Context, config *Config) (*ServiceClients, error) {
	sc, err := storage.NewClient(ctx)
	if err != nil {
		return nil, err
	}

	pc, err := pubsub.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	bc, err := bigquery.NewClient(ctx, config.Application.GoogleProjectId)
	if err != nil {
		return nil, err
	}

	// Build one consumer per configured subscription. The command is nil at
	// this point; SetupListeners attaches it once workflows exist.
	listeners := make(map[string]*PubSubListener)
	pullWorkers := make(map[string]*PullWorker)
	for subKey, values := range config.TopicSubscriptions {
		switch config.Application.Intake {
		case IntakePull:
			worker, err := NewPullWorker(ctx, config.Application.GoogleProjectId, values, nil)
			if err != nil {
				return nil, err
			}
			pullWorkers[subKey] = worker
		default:
			listener, err := NewPubSubListener(pc, values, nil)
			if err != nil {
				return nil, err
			}
			listeners[subKey] = listener
		}
	}

	return &ServiceClients{
		StorageClient:   sc,
		PubsubClient:    pc,
		BigQueryClient:  bc,
		PubSubListeners: listeners,
		PullWorkers:     pullWorkers,
	}, nil
}
