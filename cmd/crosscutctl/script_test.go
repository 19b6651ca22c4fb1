// Copyright Crosscut Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"

	"github.com/hannobraun/crosscut/engine"
	"github.com/hannobraun/crosscut/evaluator"
	"github.com/hannobraun/crosscut/packages"
)

func TestFeedScriptReplaysFileContentAsInputEvents(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "script.crosscut", []byte("42"), 0o644))

	e := engine.New(packages.New(), nil)
	require.NoError(t, feedScript(fs, "script.crosscut", e))

	e.RunFrame()
	snap := e.Snapshot()
	require.Equal(t, evaluator.Finished, snap.EvalState.Kind)
	require.Equal(t, "42", snap.EvalState.Output.String())
}

func TestFeedScriptMissingFileReturnsError(t *testing.T) {
	fs := afero.NewMemMapFs()
	e := engine.New(packages.New(), nil)
	require.Error(t, feedScript(fs, "missing.crosscut", e))
}
