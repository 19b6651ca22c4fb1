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
	"fmt"

	"github.com/spf13/afero"

	"github.com/hannobraun/crosscut/editor"
	"github.com/hannobraun/crosscut/engine"
)

// feedScript replays path's contents into e one rune at a time, exactly as
// an input goroutine would replay keystrokes typed into the structured
// editor (§1's non-goals exclude a textual surface syntax with its own
// parser; this is not one -- it is the same InsertChar/whitespace event
// stream a human would produce, just sourced from a file instead of a
// keyboard). fs is an afero.Fs so `watch` and tests can point this at
// afero.NewMemMapFs().
func feedScript(fs afero.Fs, path string, e *engine.Engine) error {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return fmt.Errorf("crosscutctl: reading script %s: %w", path, err)
	}

	for _, r := range string(data) {
		e.HandleInput(editor.Input{Kind: editor.InsertChar, Char: r})
	}
	return nil
}
