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

package cor_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/conorll/video-streaming-platform/internal/core/cor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// appendCommand appends its suffix to the string flowing through the chain.
type appendCommand struct {
	cor.BaseCommand
	suffix string
	fail   bool
}

func newAppendCommand(name, suffix string, fail bool) *appendCommand {
	return &appendCommand{BaseCommand: *cor.NewBaseCommand(name), suffix: suffix, fail: fail}
}

func (c *appendCommand) Execute(chainCtx cor.Context) {
	in := chainCtx.Get(c.GetInputParam()).(string)
	if c.fail {
		chainCtx.AddError(c.GetName(), errors.New("simulated failure"))
		// Pass the input through so a continue-on-failure chain can keep going.
		chainCtx.Add(c.GetOutputParam(), in)
		return
	}
	chainCtx.Add(c.GetOutputParam(), in+c.suffix)
}

func newExecutionContext(input string) cor.Context {
	chainCtx := cor.NewBaseContext()
	chainCtx.SetContext(context.Background())
	chainCtx.Add(cor.CtxIn, input)
	return chainCtx
}

func TestChainPipesOutputToNextInput(t *testing.T) {
	chain := cor.NewBaseChain("test_chain")
	chain.AddCommand(newAppendCommand("first", "-a", false))
	chain.AddCommand(newAppendCommand("second", "-b", false))

	chainCtx := newExecutionContext("start")
	chain.Execute(chainCtx)

	require.False(t, chainCtx.HasErrors())
	// After the final flip-flop the last output sits in the input slot.
	assert.Equal(t, "start-a-b", chainCtx.Get(cor.CtxIn))
}

func TestChainStopsAtFirstError(t *testing.T) {
	chain := cor.NewBaseChain("test_chain")
	chain.AddCommand(newAppendCommand("first", "-a", false))
	chain.AddCommand(newAppendCommand("failing", "", true))
	ran := false
	final := newAppendCommand("final", "-c", false)
	chain.AddCommand(&trackingCommand{appendCommand: final, ran: &ran})

	chainCtx := newExecutionContext("start")
	chain.Execute(chainCtx)

	require.True(t, chainCtx.HasErrors())
	assert.False(t, ran)
}

type trackingCommand struct {
	*appendCommand
	ran *bool
}

func (c *trackingCommand) Execute(chainCtx cor.Context) {
	*c.ran = true
	c.appendCommand.Execute(chainCtx)
}

func TestChainContinueOnFailure(t *testing.T) {
	chain := cor.NewBaseChain("test_chain")
	chain.ContinueOnFailure(true)
	chain.AddCommand(newAppendCommand("failing", "", true))
	ran := false
	chain.AddCommand(&trackingCommand{appendCommand: newAppendCommand("final", "-c", false), ran: &ran})

	chainCtx := newExecutionContext("start")
	chain.Execute(chainCtx)

	assert.True(t, chainCtx.HasErrors())
	assert.True(t, ran)
}

func TestContextCloseSweepsWorkingFiles(t *testing.T) {
	dir := t.TempDir()
	present := filepath.Join(dir, "leftover.mp4")
	require.NoError(t, os.WriteFile(present, []byte("x"), 0o644))

	chainCtx := cor.NewBaseContext()
	chainCtx.AddTempFile(present)
	chainCtx.AddTempFile(filepath.Join(dir, "already-gone.mp4"))

	chainCtx.Close()

	_, err := os.Stat(present)
	assert.True(t, os.IsNotExist(err))
}
