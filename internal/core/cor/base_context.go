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

// Package cor (Chain of Responsibility) provides the building blocks the
// worker uses to assemble message-handling workflows. This file defines
// BaseContext, the default Context implementation: a property bag of data
// and errors plus a registry of working files swept away at Close.
package cor

import (
	"context"
	"errors"
	"log/slog"
	"os"
)

// BaseContext is the default implementation of the Context interface.
type BaseContext struct {
	data      map[string]interface{} // Arbitrary key-value data shared between commands.
	errors    map[string]error       // Errors keyed by the command that produced them.
	tempFiles []string               // Working-file paths to remove at Close.
	context   context.Context        // Go context for cancellation and trace propagation.
}

// NewBaseContext is the constructor for BaseContext.
func NewBaseContext() Context {
	return &BaseContext{
		data:      make(map[string]interface{}),
		errors:    make(map[string]error),
		tempFiles: make([]string, 0),
	}
}

// SetContext sets the underlying Go context. The chain uses this to hand
// each command its span's context.
func (c *BaseContext) SetContext(context context.Context) {
	c.context = context
}

// GetContext retrieves the underlying Go context.
func (c *BaseContext) GetContext() context.Context {
	return c.context
}

// Close removes every registered working file. The pipeline deletes its
// artifacts eagerly as it goes, so most entries are already gone by the time
// Close runs; a missing file is the expected case, not a failure.
func (c *BaseContext) Close() {
	for _, file := range c.GetTempFiles() {
		if err := os.Remove(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			slog.Warn("failed to remove working file", "path", file, "error", err)
		}
	}
}

// Add stores a key-value pair. Returns the context for fluent chaining.
func (c *BaseContext) Add(key string, value interface{}) Context {
	c.data[key] = value
	return c
}

// AddTempFile registers a working-file path for removal at Close.
func (c *BaseContext) AddTempFile(file string) {
	c.tempFiles = append(c.tempFiles, file)
}

// GetTempFiles returns all registered working-file paths.
func (c *BaseContext) GetTempFiles() []string {
	return c.tempFiles
}

// AddError records a command failure, keyed by the command's name.
func (c *BaseContext) AddError(key string, err error) {
	c.errors[key] = err
}

// GetErrors returns all errors collected during the workflow.
func (c *BaseContext) GetErrors() map[string]error {
	return c.errors
}

// Get retrieves a value by key, or nil if absent.
func (c *BaseContext) Get(key string) interface{} {
	return c.data[key]
}

// Remove deletes a key-value pair.
func (c *BaseContext) Remove(key string) {
	delete(c.data, key)
}

// HasErrors reports whether any command has recorded an error.
func (c *BaseContext) HasErrors() bool {
	return len(c.errors) > 0
}
