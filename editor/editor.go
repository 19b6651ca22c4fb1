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

// Package editor implements the structured editor: a cursor-driven model of
// edits expressed as operations on typed syntax nodes rather than on text
// (§4.6 of the design). It never touches a node's bytes directly; every
// keystroke becomes zero or one compiler.Compiler call plus a cursor move.
package editor

import (
	"github.com/spaolacci/murmur3"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/compiler"
	"github.com/hannobraun/crosscut/evaluator"
	"github.com/hannobraun/crosscut/log"
	"github.com/hannobraun/crosscut/metrics"
	"github.com/hannobraun/crosscut/packages"
)

var scope = log.RegisterScope("editor", "the structured editor", 0)

// Mode switches whether the editor forwards input events at all. A host
// batch-loading a script wants Paused so intermediate, syntactically
// incomplete states don't thrash the compiler and evaluator; original_source's
// prototype/src/editor.rs and crosscut/src/language/editor/editor.rs show
// this as Command::Stop/Command::Start alongside Command::Clear (see
// DESIGN.md, supplemented feature 1).
type Mode uint8

const (
	// ModeEdit is the default: input events are compiled immediately.
	ModeEdit Mode = iota
	// ModePaused: OnInput is a no-op until a Resume command arrives.
	ModePaused
)

// InputKind is the closed set of editor input events (§6).
type InputKind uint8

const (
	InsertChar InputKind = iota
	RemoveLeft
	RemoveRight
	MoveCursorLeft
	MoveCursorRight
	MoveCursorUp
	MoveCursorDown
	AddSibling
	AddParent
	AddChild
)

// Input is a single editor input event; Char is only meaningful for
// InsertChar.
type Input struct {
	Kind InputKind
	Char rune
}

// Command is the closed set of non-text editor commands (§4.6, extended per
// DESIGN.md's supplemented feature 1).
type Command uint8

const (
	// Clear replaces the codebase with a fresh one rooted at Empty.
	Clear Command = iota
	// Pause stops the editor from forwarding any further input events.
	Pause
	// Resume undoes Pause.
	Resume
)

// Cursor identifies where edits land: either at a real node's path (with a
// byte offset into that node's token string), or at a synthetic AddNode slot
// trailing a Tuple's real children -- the position that, when edited,
// creates the tuple's next value (§3's AddNode kind, §4.6's canonical
// traversal).
type Cursor struct {
	Path      code.Path
	Index     int
	AtAddNode bool
}

type tokenCacheEntry struct {
	digest uint64
	result code.Path
}

// Editor holds the cursor, the input buffer for the node currently under
// edit, and the compiler it drives.
type Editor struct {
	pkgs   *packages.Packages
	comp   *compiler.Compiler
	cursor Cursor
	buffer string
	mode   Mode

	// tokenCache avoids recompiling a node whose token string hasn't
	// actually changed since the last keystroke landed on it -- keyed by
	// path, per SPEC_FULL's domain table entry for murmur3 here: a 64-bit
	// digest is a cache key, not a content identity. A digest collision
	// between two different buffers at the same path counts as a hit and
	// skips the recompile.
	tokenCache map[string]tokenCacheEntry
}

// New returns an editor over cb, compiling tokens through a fresh
// compiler.Compiler bound to cb and pkgs, with the cursor starting at cb's
// root.
func New(cb *code.Codebase, pkgs *packages.Packages) *Editor {
	return &Editor{
		pkgs:       pkgs,
		comp:       compiler.New(cb, pkgs),
		cursor:     Cursor{Path: cb.Root().Path},
		tokenCache: make(map[string]tokenCacheEntry),
	}
}

// Cursor returns the editor's current cursor position.
func (ed *Editor) Cursor() Cursor { return ed.cursor }

// Buffer returns the token string currently under edit.
func (ed *Editor) Buffer() string { return ed.buffer }

// Mode returns whether the editor is currently forwarding input events.
func (ed *Editor) Mode() Mode { return ed.mode }

// OnInput handles one input event: it may issue a compiler call, move the
// cursor, or both. It unconditionally resets ev from cb afterward (§4.6: the
// evaluator is cheap to restart because the codebase is structurally
// shared; see DESIGN.md for the open question this resolves).
func (ed *Editor) OnInput(input Input, cb *code.Codebase, ev *evaluator.Evaluator) {
	if ed.mode == ModePaused {
		return
	}
	metrics.EditorInputEvents.Increment()

	switch input.Kind {
	case InsertChar:
		ed.insertChar(input.Char, cb)
	case RemoveLeft:
		ed.removeLeft(cb)
	case RemoveRight:
		ed.removeRight(cb)
	case MoveCursorLeft:
		ed.moveLeft(cb)
	case MoveCursorRight:
		ed.moveRight(cb)
	case MoveCursorUp:
		ed.moveUp(cb)
	case MoveCursorDown:
		ed.moveDown(cb)
	case AddSibling:
		ed.addSibling(cb)
	case AddParent:
		ed.addParent(cb)
	case AddChild:
		ed.addChild(cb)
	}

	ev.Reset(cb)
	scope.Debugf("cursor now at %s (buffer=%q)", ed.cursor.Path, ed.buffer)
}

// OnCommand handles a non-text editor command. Clear returns a fresh
// codebase the caller must adopt in place of cb (the engine owns the
// pointer, this package cannot mutate it for the caller); Pause/Resume
// return cb unchanged.
func (ed *Editor) OnCommand(cmd Command, cb *code.Codebase, ev *evaluator.Evaluator) *code.Codebase {
	switch cmd {
	case Clear:
		fresh := code.NewCodebase()
		ed.comp = compiler.New(fresh, ed.pkgs)
		ed.cursor = Cursor{Path: fresh.Root().Path}
		ed.buffer = ""
		ed.tokenCache = make(map[string]tokenCacheEntry)
		ev.Reset(fresh)
		scope.Debug("codebase cleared")
		return fresh

	case Pause:
		ed.mode = ModePaused
		scope.Debug("paused")
		return cb

	case Resume:
		ed.mode = ModeEdit
		scope.Debug("resumed")
		return cb

	default:
		return cb
	}
}

func (ed *Editor) insertChar(c rune, cb *code.Codebase) {
	if c == ' ' || c == '\t' || c == '\n' {
		ed.addSibling(cb)
		return
	}

	if ed.cursor.AtAddNode {
		ed.cursor.AtAddNode = false
		ed.addChild(cb)
	}

	idx := ed.cursor.Index
	if idx < 0 {
		idx = 0
	}
	if idx > len(ed.buffer) {
		idx = len(ed.buffer)
	}
	ed.buffer = ed.buffer[:idx] + string(c) + ed.buffer[idx:]
	ed.cursor.Index = idx + len(string(c))
	ed.recompileBuffer(cb)
}

func (ed *Editor) removeLeft(cb *code.Codebase) {
	if ed.cursor.Index > 0 {
		idx := ed.cursor.Index
		ed.buffer = ed.buffer[:idx-1] + ed.buffer[idx:]
		ed.cursor.Index = idx - 1
		ed.recompileBuffer(cb)
		return
	}
	ed.mergeWithSibling(cb, -1)
}

func (ed *Editor) removeRight(cb *code.Codebase) {
	if ed.cursor.Index < len(ed.buffer) {
		idx := ed.cursor.Index
		ed.buffer = ed.buffer[:idx] + ed.buffer[idx+1:]
		ed.recompileBuffer(cb)
		return
	}
	ed.mergeWithSibling(cb, +1)
}

// mergeWithSibling concatenates the current token with the sibling in
// direction dir (-1 previous, +1 next) and removes the sibling, per §4.6's
// "merge with previous/next sibling" rule.
func (ed *Editor) mergeWithSibling(cb *code.Codebase, dir int) {
	parent, ok := ed.cursor.Path.Parent()
	if !ok {
		return
	}
	siblingIndex := ed.cursor.Path.SiblingIndex() + dir
	parentNode := cb.NodeAt(parent).Node
	if siblingIndex < 0 || siblingIndex >= len(parentNode.Children) {
		return
	}

	siblingPath := code.NewPath(parentNode.Children[siblingIndex], parent, siblingIndex, cb.Nodes())
	siblingNode := cb.NodeAt(siblingPath).Node
	siblingToken := compiler.TokenOf(siblingNode, ed.pkgs)

	merged := ed.buffer + siblingToken
	if dir < 0 {
		merged = siblingToken + ed.buffer
	}

	keep, remove := ed.cursor.Path, siblingPath
	if dir < 0 {
		keep, remove = siblingPath, ed.cursor.Path
	}

	newKeep := ed.comp.Replace(keep, merged)

	// The Replace above gave every ancestor a new hash; rebuild remove's
	// path off keep's new parent so Remove sees the current tree.
	newParent, _ := newKeep.Parent()
	removeIndex := remove.SiblingIndex()
	remove = code.NewPath(cb.NodeAt(newParent).Node.Children[removeIndex], newParent, removeIndex, cb.Nodes())

	toUpdate := newKeep
	ed.comp.Remove(remove, &toUpdate)

	ed.cursor.Path = toUpdate
	ed.buffer = merged
	if dir < 0 {
		ed.cursor.Index = len(siblingToken)
	} else {
		ed.cursor.Index = len(ed.buffer)
	}
}

func (ed *Editor) recompileBuffer(cb *code.Codebase) {
	key := ed.cursor.Path.Key()
	digest := murmur3.Sum64([]byte(ed.buffer))

	if cached, ok := ed.tokenCache[key]; ok && cached.digest == digest {
		ed.cursor.Path = cached.result
		return
	}

	newPath := ed.comp.Replace(ed.cursor.Path, ed.buffer)
	ed.cursor.Path = newPath
	ed.tokenCache[newPath.Key()] = tokenCacheEntry{digest: digest, result: newPath}
	metrics.CompilerEdits.Increment()
}

// addSibling splits the buffer at the cursor: the prefix replaces the
// current node, the suffix becomes a new sibling inserted after it. If the
// current node is the root, a fresh empty root is introduced first so the
// node has a parent to share (§4.6).
func (ed *Editor) addSibling(cb *code.Codebase) {
	idx := ed.cursor.Index
	if idx > len(ed.buffer) {
		idx = len(ed.buffer)
	}
	prefix, suffix := ed.buffer[:idx], ed.buffer[idx:]

	target := ed.cursor.Path
	if target.IsRoot() {
		parentPath := ed.comp.InsertParent(target, "")
		target = code.NewPath(target.Hash(), parentPath, 0, cb.Nodes())
	}

	newTarget := ed.comp.Replace(target, prefix)
	metrics.CompilerEdits.Increment()

	newSibling := ed.comp.InsertSibling(newTarget, suffix)
	metrics.CompilerEdits.Increment()

	ed.cursor.Path = newSibling
	ed.buffer = suffix
	ed.cursor.Index = 0
}

// addParent wraps the current node under a new, empty-token parent, leaving
// the cursor on the (now-child) original node.
func (ed *Editor) addParent(cb *code.Codebase) {
	parentPath := ed.comp.InsertParent(ed.cursor.Path, "")
	metrics.CompilerEdits.Increment()
	ed.cursor.Path = code.NewPath(ed.cursor.Path.Hash(), parentPath, 0, cb.Nodes())
}

// addChild appends a new empty child to the current node.
func (ed *Editor) addChild(cb *code.Codebase) {
	childPath := ed.comp.InsertChild(ed.cursor.Path, "")
	metrics.CompilerEdits.Increment()
	ed.cursor.Path = childPath
	ed.buffer = ""
	ed.cursor.Index = 0
}

func (ed *Editor) moveLeft(cb *code.Codebase) {
	if ed.cursor.Index > 0 {
		ed.cursor.Index--
		return
	}
	ed.stepTraversal(cb, -1)
}

func (ed *Editor) moveRight(cb *code.Codebase) {
	if ed.cursor.Index < len(ed.buffer) {
		ed.cursor.Index++
		return
	}
	ed.stepTraversal(cb, +1)
}

// moveUp/moveDown prefer a sibling of the same parent, falling back to the
// parent (up) or first child (down), per §4.6.
func (ed *Editor) moveUp(cb *code.Codebase) {
	parent, ok := ed.cursor.Path.Parent()
	if ok && ed.cursor.Path.SiblingIndex() > 0 {
		ed.moveToSibling(cb, parent, ed.cursor.Path.SiblingIndex()-1)
		return
	}
	if ok {
		ed.landAt(cb, parent)
	}
}

func (ed *Editor) moveDown(cb *code.Codebase) {
	if parent, ok := ed.cursor.Path.Parent(); ok {
		parentNode := cb.NodeAt(parent).Node
		next := ed.cursor.Path.SiblingIndex() + 1
		if next < len(parentNode.Children) {
			ed.moveToSibling(cb, parent, next)
			return
		}
	}
	node := cb.NodeAt(ed.cursor.Path).Node
	if len(node.Children) > 0 {
		childPath := code.NewPath(node.Children[0], ed.cursor.Path, 0, cb.Nodes())
		ed.landAt(cb, childPath)
	}
}

func (ed *Editor) moveToSibling(cb *code.Codebase, parent code.Path, index int) {
	parentNode := cb.NodeAt(parent).Node
	siblingPath := code.NewPath(parentNode.Children[index], parent, index, cb.Nodes())
	ed.landAt(cb, siblingPath)
}

func (ed *Editor) landAt(cb *code.Codebase, p code.Path) {
	ed.cursor = Cursor{Path: p, Index: 0}
	ed.buffer = compiler.TokenOf(cb.NodeAt(p).Node, ed.pkgs)
}

// stepTraversal moves the cursor to the previous (dir<0) or next (dir>0)
// stop in the canonical pre-order traversal, including synthetic AddNode
// stops after a Tuple's real children (§4.6).
func (ed *Editor) stepTraversal(cb *code.Codebase, dir int) {
	stops := canonicalStops(cb, cb.Root().Path)

	current := -1
	for i, s := range stops {
		if s.isAddNode == ed.cursor.AtAddNode && s.path.Equal(ed.cursor.Path) {
			current = i
			break
		}
	}
	if current == -1 {
		return
	}

	next := current + dir
	if next < 0 || next >= len(stops) {
		return
	}

	s := stops[next]
	ed.cursor = Cursor{Path: s.path, AtAddNode: s.isAddNode}
	if s.isAddNode {
		ed.buffer = ""
		ed.cursor.Index = 0
	} else {
		node := cb.NodeAt(s.path).Node
		ed.buffer = compiler.TokenOf(node, ed.pkgs)
		if dir < 0 {
			ed.cursor.Index = len(ed.buffer)
		} else {
			ed.cursor.Index = 0
		}
	}
}

type stop struct {
	path      code.Path
	isAddNode bool
}

// canonicalStops walks root in pre-order, yielding one stop per real node
// plus one synthetic AddNode stop trailing each Tuple's real children --
// the "insert a new value here" cursor position §3 describes.
func canonicalStops(cb *code.Codebase, root code.Path) []stop {
	var out []stop
	var walk func(p code.Path)
	walk = func(p code.Path) {
		out = append(out, stop{path: p})
		node := cb.NodeAt(p).Node
		for i, h := range node.Children {
			walk(code.NewPath(h, p, i, cb.Nodes()))
		}
		if node.Kind == code.KindTuple {
			out = append(out, stop{path: p, isAddNode: true})
		}
	}
	walk(root)
	return out
}
