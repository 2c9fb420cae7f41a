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

// Package services contains the adapters over the worker's remote stores.
// This file centralizes the BigQuery SQL used by the video catalog. Storing
// the statements as constants keeps them reviewable in one place; the single
// `%s` placeholder in each is the fully qualified table name, while all
// runtime values travel as bound query parameters.
package services

const (
	// QryCommitProcessed is the terminal write of the ingestion pipeline and
	// the only statement anywhere that sets `processed`. Resolution and the
	// processed flag change in one atomic UPDATE, so no reader can observe
	// processed = TRUE with a stale or NULL resolution. Re-running the
	// statement with the same parameters is a no-op state-wise, which is what
	// makes redelivered messages safe to replay end to end.
	QryCommitProcessed = "UPDATE `%s` SET resolution = @resolution, processed = TRUE WHERE id = @id"

	// QryFindVideoById looks up a single catalog record by its primary key.
	QryFindVideoById = "SELECT id, title, description, user_id, resolution, processed FROM `%s` WHERE id = @id"
)
