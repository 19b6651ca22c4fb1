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

package editor

import (
	"testing"

	fuzz "github.com/google/gofuzz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/evaluator"
	"github.com/hannobraun/crosscut/packages"
)

func newFixture() (*Editor, *code.Codebase, *evaluator.Evaluator) {
	cb := code.NewCodebase()
	pkgs := packages.New()
	ed := New(cb, pkgs)
	ev := evaluator.New(pkgs)
	ev.Reset(cb)
	return ed, cb, ev
}

// Scenario 1 from §8: typing "1" leaves the root a Number(1) node that
// evaluates to Integer(1).
func TestScenario1_TypeNumber(t *testing.T) {
	ed, cb, ev := newFixture()

	ed.OnInput(Input{Kind: InsertChar, Char: '1'}, cb, ev)

	root := cb.Root().Node
	require.Equal(t, code.KindNumber, root.Kind)
	assert.Equal(t, int32(1), root.Value)

	for ev.State().Kind == evaluator.Running {
		ev.Step(cb)
	}
	require.Equal(t, evaluator.Finished, ev.State().Kind)
	assert.Equal(t, int32(1), ev.State().Output.Int)
}

// Scenario 2 from §8: typing "127" then RemoveLeft three times walks
// 127 -> 12 -> 1 -> "" (Nothing).
func TestScenario2_TypeThenRemoveLeft(t *testing.T) {
	ed, cb, ev := newFixture()

	for _, c := range "127" {
		ed.OnInput(Input{Kind: InsertChar, Char: c}, cb, ev)
	}
	assert.Equal(t, int32(127), cb.Root().Node.Value)

	ed.OnInput(Input{Kind: RemoveLeft}, cb, ev)
	assert.Equal(t, int32(12), cb.Root().Node.Value)

	ed.OnInput(Input{Kind: RemoveLeft}, cb, ev)
	assert.Equal(t, int32(1), cb.Root().Node.Value)

	ed.OnInput(Input{Kind: RemoveLeft}, cb, ev)
	assert.Equal(t, code.KindEmpty, cb.Root().Node.Kind)
}

// Scenario 3 from §8: typing "a", AddSibling, typing "b" from an initially
// Empty root produces an error root with two Error children.
func TestScenario3_AddSiblingFromEmptyRoot(t *testing.T) {
	ed, cb, ev := newFixture()

	ed.OnInput(Input{Kind: InsertChar, Char: 'a'}, cb, ev)
	ed.OnInput(Input{Kind: AddSibling}, cb, ev)
	ed.OnInput(Input{Kind: InsertChar, Char: 'b'}, cb, ev)

	root := cb.Root().Node
	require.Equal(t, code.KindError, root.Kind)
	require.Len(t, root.Children, 2)

	childA := cb.Nodes().Get(root.Children[0])
	childB := cb.Nodes().Get(root.Children[1])
	assert.Equal(t, "a", childA.Token)
	assert.Equal(t, "b", childB.Token)
}

func TestPauseStopsForwardingInput(t *testing.T) {
	ed, cb, ev := newFixture()

	cb = ed.OnCommand(Pause, cb, ev)
	ed.OnInput(Input{Kind: InsertChar, Char: '1'}, cb, ev)
	assert.Equal(t, code.KindEmpty, cb.Root().Node.Kind)

	cb = ed.OnCommand(Resume, cb, ev)
	ed.OnInput(Input{Kind: InsertChar, Char: '1'}, cb, ev)
	assert.Equal(t, code.KindNumber, cb.Root().Node.Kind)
}

func TestClearResetsToFreshEmptyRoot(t *testing.T) {
	ed, cb, ev := newFixture()
	ed.OnInput(Input{Kind: InsertChar, Char: '1'}, cb, ev)

	fresh := ed.OnCommand(Clear, cb, ev)
	assert.Equal(t, code.KindEmpty, fresh.Root().Node.Kind)
	assert.True(t, ed.Cursor().Path.Equal(fresh.Root().Path))
	assert.Equal(t, evaluator.Running, ev.State().Kind)
}

// TestNavigationNeverPanics fuzzes random input sequences (gofuzz-seeded,
// per SPEC_FULL's domain table) to check the editor never panics while
// navigating whatever tree the preceding edits produced -- a cheap, broad
// safety net around the canonical traversal and sibling-merge code.
func TestNavigationNeverPanics(t *testing.T) {
	kinds := []InputKind{
		InsertChar, RemoveLeft, RemoveRight,
		MoveCursorLeft, MoveCursorRight, MoveCursorUp, MoveCursorDown,
		AddSibling, AddParent, AddChild,
	}
	chars := []rune{'a', 'b', '1', '2', ' '}

	f := fuzz.New().NilChance(0).Seed(12345)

	for run := 0; run < 20; run++ {
		ed, cb, ev := newFixture()
		assert.NotPanics(t, func() {
			for i := 0; i < 200; i++ {
				var kIdx, cIdx uint8
				f.Fuzz(&kIdx)
				f.Fuzz(&cIdx)
				k := kinds[int(kIdx)%len(kinds)]
				c := chars[int(cIdx)%len(chars)]
				ed.OnInput(Input{Kind: k, Char: c}, cb, ev)
			}
		})
	}
}
