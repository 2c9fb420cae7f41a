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
// services. This file defines the streaming Pub/Sub consumer: it wraps a
// subscription's Receive loop and delegates each message to a Command.
//
// Logic Flow:
//  1. A PubSubListener is created from the subscription configuration and a
//     Command is attached.
//  2. Listen starts a background goroutine that blocks in Receive.
//  3. Flow control admits one message at a time. Transcoding saturates the
//     machine, so concurrent jobs would only slow each other down, and the
//     client library keeps extending the lease of the in-flight message
//     while the handler runs.
//  4. Each message runs the Command under its own trace span and attempt id.
//  5. The message is Ack'd only when the whole chain completed without
//     errors; otherwise it is Nack'd for immediate redelivery under the
//     subscription's retry policy.
//
// Structs:
//   - PubSubListener: Binds one subscription to one processing command.
//
// Functions:
//   - NewPubSubListener: Constructor.
//   - SetCommand: Attaches a processing command to the listener.
//   - Listen: Starts the background receive loop.
package cloud

import (
	"context"
	"log/slog"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PubSubListener binds a Pub/Sub subscription to the command that processes
// its messages. Listeners have a lifecycle independent of individual
// requests, so they live in the cloud package next to the clients.
type PubSubListener struct {
	client       *pubsub.Client       // The client owning the subscription.
	subscription *pubsub.Subscription // The subscription messages are pulled from.
	command      cor.Command          // The command executed once per message.
}

// NewPubSubListener is the constructor for PubSubListener. The subscription's
// flow control is restricted to a single outstanding message and its lease
// extension is capped at the configured processing timeout.
//
// Inputs:
//   - pubsubClient: An authenticated *pubsub.Client.
//   - cfg: The subscription configuration.
//   - command: The command to execute per message; may be nil and attached
//     later with SetCommand.
//
// Outputs:
//   - *PubSubListener: The configured listener.
//   - error: Reserved for configuration validation.
func NewPubSubListener(
	pubsubClient *pubsub.Client,
	cfg TopicSubscription,
	command cor.Command,
) (*PubSubListener, error) {
	sub := pubsubClient.Subscription(cfg.Name)
	sub.ReceiveSettings.MaxOutstandingMessages = 1
	sub.ReceiveSettings.NumGoroutines = 1
	if cfg.TimeoutInSeconds > 0 {
		sub.ReceiveSettings.MaxExtension = time.Duration(cfg.TimeoutInSeconds) * time.Second
	}

	return &PubSubListener{
		client:       pubsubClient,
		subscription: sub,
		command:      command,
	}, nil
}

// SetCommand attaches a command to the listener. Listeners are created
// before the processing chains are assembled; the first attached command
// wins so startup wiring cannot silently replace it.
func (m *PubSubListener) SetCommand(command cor.Command) {
	if m.command == nil {
		m.command = command
	}
}

// Listen starts the asynchronous receive loop in a background goroutine.
// Canceling ctx stops the loop; the in-flight handler finishes first.
func (m *PubSubListener) Listen(ctx context.Context) {
	slog.Info("listening", "subscription", m.subscription.String())

	go func() {
		tracer := otel.Tracer("message-listener")

		err := m.subscription.Receive(ctx, func(_ context.Context, msg *pubsub.Message) {
			attemptId := uuid.NewString()
			spanCtx, span := tracer.Start(ctx, "receive-message")
			span.SetAttributes(
				attribute.String("messaging.message.id", msg.ID),
				attribute.String("attempt.id", attemptId),
			)
			defer span.End()

			slog.Info("received message", "message_id", msg.ID, "attempt_id", attemptId)

			// Run the processing chain; the deferred Close sweeps any
			// working files the chain registered but did not remove itself.
			chainCtx := cor.NewBaseContext()
			defer chainCtx.Close()
			chainCtx.SetContext(spanCtx)
			chainCtx.Add(cor.CtxIn, string(msg.Data))

			m.command.Execute(chainCtx)

			if !chainCtx.HasErrors() {
				span.SetStatus(codes.Ok, "success")
				msg.Ack()
				return
			}

			span.SetStatus(codes.Error, "failed")
			for name, e := range chainCtx.GetErrors() {
				slog.Error("error executing chain", "command", name, "attempt_id", attemptId, "error", e)
			}
			// Explicit Nack releases the message right away instead of
			// holding it until the lease lapses.
			msg.Nack()
		})
		if err != nil {
			slog.Error("error receiving data", "subscription", m.subscription.String(), "error", err)
		}
	}()
}
