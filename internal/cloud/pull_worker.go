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
// services. This file defines the pull-mode Pub/Sub consumer, the low-level
// alternative to the streaming listener. It drives the subscriber API
// directly: pull one message, heartbeat its lease while the command runs,
// then ack or nack explicitly.
//
// Logic Flow:
//  1. The loop paces itself with a rate limiter, then issues a synchronous
//     Pull for a single message.
//  2. For each message a LeaseKeeper goroutine extends the ack deadline on
//     the configured heartbeat interval.
//  3. The command runs under a trace span and a per-attempt id.
//  4. The heartbeat is stopped and joined before the verdict, so the final
//     Acknowledge or zero-deadline ModifyAckDeadline (the wire form of a
//     nack) can never race with a late extension.
//
// Structs:
//   - PullWorker: Binds one subscription to one processing command over the
//     low-level subscriber API.
//
// Functions:
//   - NewPullWorker: Constructor.
//   - SetCommand: Attaches a processing command to the worker.
//   - Listen: Starts the background pull loop.
//   - Close: Releases the subscriber client.
package cloud

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	subscriber "cloud.google.com/go/pubsub/apiv1"
	"cloud.google.com/go/pubsub/apiv1/pubsubpb"
	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// defaultHeartbeat is used when the subscription config leaves the
// heartbeat interval unset.
const defaultHeartbeat = 10 * time.Second

// PullWorker consumes a subscription through the low-level pull API, one
// message at a time, with an explicit lease heartbeat.
type PullWorker struct {
	subscriber   *subscriber.SubscriberClient // Low-level client for Pull, ModifyAckDeadline, and Acknowledge.
	subscription string                       // Fully qualified subscription resource name.
	command      cor.Command                  // The command executed once per message.
	limiter      *rate.Limiter                // Paces the pull loop between messages.
	heartbeat    time.Duration                // Interval between lease extensions.
}

// NewPullWorker is the constructor for PullWorker.
//
// Inputs:
//   - ctx: Context for creating the subscriber client.
//   - projectId: The Google Cloud project owning the subscription.
//   - cfg: The subscription configuration.
//   - command: The command to execute per message; may be nil and attached
//     later with SetCommand.
//
// Outputs:
//   - *PullWorker: The configured worker.
//   - error: An error if the subscriber client cannot be created.
func NewPullWorker(ctx context.Context, projectId string, cfg TopicSubscription, command cor.Command) (*PullWorker, error) {
	client, err := subscriber.NewSubscriberClient(ctx)
	if err != nil {
		return nil, err
	}

	heartbeat := defaultHeartbeat
	if cfg.HeartbeatInSeconds > 0 {
		heartbeat = time.Duration(cfg.HeartbeatInSeconds) * time.Second
	}

	return &PullWorker{
		subscriber:   client,
		subscription: fmt.Sprintf("projects/%s/subscriptions/%s", projectId, cfg.Name),
		command:      command,
		limiter:      rate.NewLimiter(rate.Every(time.Second), 1),
		heartbeat:    heartbeat,
	}, nil
}

// SetCommand attaches a command to the worker. The first attached command
// wins, matching the streaming listener's behavior.
func (w *PullWorker) SetCommand(command cor.Command) {
	if w.command == nil {
		w.command = command
	}
}

// Close releases the subscriber client.
func (w *PullWorker) Close() error {
	return w.subscriber.Close()
}

// ExtendAckDeadline resets the ack deadline of one in-flight message. This
// is the production AckDeadlineExtender used by the LeaseKeeper.
func (w *PullWorker) ExtendAckDeadline(ctx context.Context, ackId string, deadlineSeconds int32) error {
	return w.subscriber.ModifyAckDeadline(ctx, &pubsubpb.ModifyAckDeadlineRequest{
		Subscription:       w.subscription,
		AckIds:             []string{ackId},
		AckDeadlineSeconds: deadlineSeconds,
	})
}

// Listen starts the pull loop in a background goroutine. Canceling ctx stops
// the loop after the in-flight message is settled.
func (w *PullWorker) Listen(ctx context.Context) {
	slog.Info("pulling", "subscription", w.subscription)

	go func() {
		tracer := otel.Tracer("pull-worker")
		keeper := NewLeaseKeeper(w, w.heartbeat, slog.Default())

		for {
			if err := w.limiter.Wait(ctx); err != nil {
				return // Context canceled.
			}

			resp, err := w.subscriber.Pull(ctx, &pubsubpb.PullRequest{
				Subscription: w.subscription,
				MaxMessages:  1,
			})
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				slog.Error("pull failed", "subscription", w.subscription, "error", err)
				continue
			}

			for _, received := range resp.ReceivedMessages {
				w.handle(ctx, tracer, keeper, received)
			}
		}
	}()
}

// handle processes one pulled message: heartbeat its lease, run the command,
// then settle it.
func (w *PullWorker) handle(
	ctx context.Context,
	tracer trace.Tracer,
	keeper *LeaseKeeper,
	received *pubsubpb.ReceivedMessage,
) {
	attemptId := uuid.NewString()
	msg := received.Message

	spanCtx, span := tracer.Start(ctx, "pull-message")
	span.SetAttributes(
		attribute.String("messaging.message.id", msg.MessageId),
		attribute.String("attempt.id", attemptId),
	)
	defer span.End()

	slog.Info("pulled message", "message_id", msg.MessageId, "attempt_id", attemptId)

	stopHeartbeat := keeper.Keep(ctx, received.AckId)

	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(spanCtx)
	chainCtx.Add(cor.CtxIn, string(msg.Data))
	w.command.Execute(chainCtx)
	failed := chainCtx.HasErrors()
	errs := chainCtx.GetErrors()
	chainCtx.Close()

	// Join the heartbeat before settling, so no extension lands after the
	// ack or nack.
	stopHeartbeat()

	if !failed {
		if err := w.subscriber.Acknowledge(ctx, &pubsubpb.AcknowledgeRequest{
			Subscription: w.subscription,
			AckIds:       []string{received.AckId},
		}); err != nil {
			slog.Error("ack failed; message will be redelivered", "message_id", msg.MessageId, "error", err)
			return
		}
		span.SetStatus(codes.Ok, "success")
		return
	}

	span.SetStatus(codes.Error, "failed")
	for name, e := range errs {
		slog.Error("error executing chain", "command", name, "attempt_id", attemptId, "error", e)
	}
	// A zero deadline is the wire-level nack: the message becomes
	// immediately available for redelivery.
	if err := w.ExtendAckDeadline(ctx, received.AckId, 0); err != nil {
		slog.Error("nack failed; lease will lapse instead", "message_id", msg.MessageId, "error", err)
	}
}
