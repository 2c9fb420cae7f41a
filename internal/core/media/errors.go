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
// This file defines the engine error types. Both wrap the underlying cause,
// so callers can use errors.As to classify a failure and errors.Unwrap (or
// %w chains) to reach the subprocess error underneath.
package media

import "fmt"

// EngineError reports a failure of the external transcoding engine itself:
// the probe, transcode, or thumbnail subprocess exited abnormally or could
// not be started. Engine failures abort the job; the queue's redelivery
// policy decides whether it is retried.
type EngineError struct {
	Op  string // The engine operation that failed: "probe", "transcode", "thumbnail".
	Err error  // The underlying subprocess or I/O error.
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error { return e.Err }

// ProbeError reports that the probe ran but its output was unusable: the
// file has no video stream, or the stream carries no height. Distinct from
// EngineError because the input is at fault, not the engine.
type ProbeError struct {
	Path   string // The file that was probed.
	Reason string // Why the probe output could not be used.
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe of %s: %s", e.Path, e.Reason)
}
