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
// worker uses to assemble message-handling workflows: small commands strung
// into chains, sharing state through a context object. This file defines the
// interfaces; the Base* files in this package provide the default
// implementations.
package cor

import (
	"context"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// CtxIn and CtxOut are the reserved keys a BaseChain uses to pipe the
// primary output of one command into the primary input of the next.
const (
	// CtxIn is the default key a command reads its primary input from.
	CtxIn = "__IN__"
	// CtxOut is the default key a command writes its primary output to. The
	// chain moves the value to CtxIn before running the next command.
	CtxOut = "__OUT__"
)

// Context is the shared state for one workflow execution. It carries data
// between commands, collects their errors, and tracks the working files the
// execution produced so a deferred Close can sweep up whatever is left.
type Context interface {
	// SetContext sets the standard Go context.Context, carrying cancellation
	// and trace information into the commands.
	SetContext(context context.Context)

	// GetContext retrieves the standard Go context.Context.
	GetContext() context.Context

	// Add stores a key-value pair. Returns the Context for fluent chaining.
	Add(key string, value interface{}) Context

	// AddError records a command failure, keyed by the command's name.
	AddError(key string, err error)

	// GetErrors returns all errors collected during the workflow.
	GetErrors() map[string]error

	// Get retrieves a value by key, or nil if absent.
	Get(key string) interface{}

	// Remove deletes a key-value pair.
	Remove(key string)

	// HasErrors reports whether any command has recorded an error.
	HasErrors() bool

	// AddTempFile registers a working file created during the workflow for
	// removal at Close time.
	AddTempFile(file string)

	// GetTempFiles returns all registered working-file paths.
	GetTempFiles() []string

	// Close removes every registered working file. Deferred at the start of
	// a workflow so aborted executions leave no local artifacts behind.
	Close()
}

// Executable is anything with a core execution step.
type Executable interface {
	// Execute runs the business logic, reading inputs from and writing
	// outputs to the given Context.
	Execute(context Context)
}

// Command is an atomic, thread-safe unit of work, the building block of a
// workflow.
type Command interface {
	Executable

	// GetName returns the command's name, used for logging and telemetry.
	GetName() string

	// GetInputParam returns the context key the command reads its primary
	// input from.
	GetInputParam() string

	// GetOutputParam returns the context key the command writes its primary
	// output to.
	GetOutputParam() string

	// IsExecutable is the precondition check a chain runs before Execute.
	IsExecutable(context Context) bool

	// GetTracer returns the OpenTelemetry tracer for this command.
	GetTracer() trace.Tracer

	// GetMeter returns the OpenTelemetry meter for this command.
	GetMeter() metric.Meter

	// GetSuccessCounter returns the counter incremented on success.
	GetSuccessCounter() metric.Int64Counter

	// GetErrorCounter returns the counter incremented on failure.
	GetErrorCounter() metric.Int64Counter
}

// Chain is an ordered sequence of commands. A Chain is itself a Command, so
// chains nest.
type Chain interface {
	Command

	// ContinueOnFailure configures whether the chain keeps executing after a
	// command records an error. Default is to stop.
	ContinueOnFailure(bool) Chain

	// AddCommand appends a command to the execution sequence.
	AddCommand(command Command) Chain
}
