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
// services. This file implements the ack-lease heartbeat used by the pull
// intake. A transcode can outlive any single ack deadline by a wide margin,
// so while a job runs a background goroutine periodically re-extends the
// message's lease. The goroutine is joined through channels: the caller
// closes a done channel and waits for the heartbeat to confirm it has
// stopped, so no extension can race with the final ack or nack.
package cloud

import (
	"context"
	"log/slog"
	"time"
)

// AckDeadlineExtender abstracts the ModifyAckDeadline call so the heartbeat
// can be tested against a fake. The production implementation is the pull
// worker's subscriber client.
type AckDeadlineExtender interface {
	// ExtendAckDeadline resets the ack deadline of the given message to
	// deadline seconds from now.
	ExtendAckDeadline(ctx context.Context, ackId string, deadlineSeconds int32) error
}

// LeaseKeeper periodically extends the ack deadline of one in-flight
// message. One keeper serves one message at a time.
type LeaseKeeper struct {
	extender        AckDeadlineExtender
	interval        time.Duration // Time between extensions.
	deadlineSeconds int32         // Deadline requested on each extension.
	logger          *slog.Logger
}

// NewLeaseKeeper is the constructor for LeaseKeeper. The extension deadline
// is twice the heartbeat interval, so a single missed heartbeat does not
// lose the lease.
func NewLeaseKeeper(extender AckDeadlineExtender, heartbeat time.Duration, logger *slog.Logger) *LeaseKeeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &LeaseKeeper{
		extender:        extender,
		interval:        heartbeat,
		deadlineSeconds: int32((2 * heartbeat) / time.Second),
		logger:          logger,
	}
}

// Keep starts heartbeating the lease of ackId and returns a stop function.
// The stop function signals the heartbeat goroutine and blocks until it has
// exited, guaranteeing no extension is issued after stop returns. Extension
// failures are logged and the heartbeat keeps trying; a lost lease only
// means earlier redelivery of a message whose processing is idempotent.
func (k *LeaseKeeper) Keep(ctx context.Context, ackId string) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		ticker := time.NewTicker(k.interval)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := k.extender.ExtendAckDeadline(ctx, ackId, k.deadlineSeconds); err != nil {
					k.logger.Warn("failed to extend ack deadline", "error", err)
				}
			}
		}
	}()

	return func() {
		close(done)
		<-finished
	}
}
