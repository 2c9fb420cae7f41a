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
// services. This file models the Cloud Storage upload notification the
// worker consumes. Only the object name drives processing; the other fields
// are decoded for logging and debugging.
package cloud

import (
	"encoding/json"
	"fmt"
)

// UploadNotification is the JSON payload of a Cloud Storage
// OBJECT_FINALIZE notification delivered over Pub/Sub.
type UploadNotification struct {
	Name        string `json:"name"`        // Object name of the uploaded file; the only field processing depends on.
	Bucket      string `json:"bucket"`      // Bucket the object was written to.
	ContentType string `json:"contentType"` // Content type stamped by the uploader.
	Size        string `json:"size"`        // Object size in bytes, as a decimal string.
	TimeCreated string `json:"timeCreated"` // RFC 3339 creation timestamp.
	Generation  string `json:"generation"`  // Object generation; changes on each overwrite.
}

// ParseUploadNotification decodes a notification payload. Unknown fields are
// ignored so notification schema additions never break intake.
func ParseUploadNotification(data []byte) (*UploadNotification, error) {
	notification := &UploadNotification{}
	if err := json.Unmarshal(data, notification); err != nil {
		return nil, fmt.Errorf("unreadable upload notification: %w", err)
	}
	if notification.Name == "" {
		return nil, fmt.Errorf("upload notification has no object name")
	}
	return notification, nil
}
