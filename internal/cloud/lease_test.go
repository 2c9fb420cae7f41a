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

package cloud

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeExtender records every extension call.
type fakeExtender struct {
	mu        sync.Mutex
	calls     int
	ackIds    []string
	deadlines []int32
}

func (f *fakeExtender) ExtendAckDeadline(_ context.Context, ackId string, deadlineSeconds int32) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.ackIds = append(f.ackIds, ackId)
	f.deadlines = append(f.deadlines, deadlineSeconds)
	return nil
}

func (f *fakeExtender) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestLeaseKeeperExtendsWhileRunning(t *testing.T) {
	extender := &fakeExtender{}
	keeper := NewLeaseKeeper(extender, 10*time.Millisecond, nil)

	stop := keeper.Keep(context.Background(), "ack-1")
	time.Sleep(60 * time.Millisecond)
	stop()

	require.GreaterOrEqual(t, extender.callCount(), 2)

	extender.mu.Lock()
	defer extender.mu.Unlock()
	for _, id := range extender.ackIds {
		assert.Equal(t, "ack-1", id)
	}
}

func TestLeaseKeeperStopJoinsHeartbeat(t *testing.T) {
	extender := &fakeExtender{}
	keeper := NewLeaseKeeper(extender, 5*time.Millisecond, nil)

	stop := keeper.Keep(context.Background(), "ack-1")
	time.Sleep(25 * time.Millisecond)
	stop()

	// stop blocks until the goroutine exits, so the count is final.
	settled := extender.callCount()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, settled, extender.callCount())
}

func TestLeaseKeeperDeadlineIsTwiceHeartbeat(t *testing.T) {
	extender := &fakeExtender{}
	keeper := NewLeaseKeeper(extender, 5*time.Second, nil)
	assert.Equal(t, int32(10), keeper.deadlineSeconds)
}

func TestLeaseKeeperStopsOnContextCancel(t *testing.T) {
	extender := &fakeExtender{}
	keeper := NewLeaseKeeper(extender, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	stop := keeper.Keep(ctx, "ack-1")
	cancel()
	stop() // Must not hang after cancellation.
}
