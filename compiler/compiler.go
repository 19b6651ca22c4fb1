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

// Package compiler turns the tokens the editor produces into the code
// package's syntax tree, and keeps every ancestor of an edited node
// consistent by re-resolving each one's token against its (possibly
// changed) child list all the way up to the root. Its shape is grounded on
// original_source's src/language/compiler/{compiler.rs,token.rs}; the node
// kinds and arity rules it targets are §3/§4 of the design, not the older
// prototype's.
package compiler

import (
	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/packages"
)

// Compiler applies edits to a codebase, one change set per call.
type Compiler struct {
	cb   *code.Codebase
	pkgs *packages.Packages
}

// New returns a compiler that edits cb, resolving provided-function tokens
// against pkgs.
func New(cb *code.Codebase, pkgs *packages.Packages) *Compiler {
	return &Compiler{cb: cb, pkgs: pkgs}
}

// Replace recompiles target's node against token, keeping target's existing
// children, and propagates the new node up through every ancestor to the
// root. It returns the new path of the node originally at target.
func (c *Compiler) Replace(target code.Path, token string) code.Path {
	return code.MakeChangeWithErrors(c.cb, func(cs *code.NewChangeSet, errs *code.Errors) code.Path {
		children := c.cb.NodeAt(target).Node.Children
		return replaceAndPropagate(c.cb, cs, errs, target, token, children, c.pkgs)
	})
}

// InsertChild appends a new node for token to parent's child list, keeping
// parent's own token, and propagates the change to the root. It returns the
// new path of the inserted child.
func (c *Compiler) InsertChild(parent code.Path, token string) code.Path {
	return code.MakeChangeWithErrors(c.cb, func(cs *code.NewChangeSet, errs *code.Errors) code.Path {
		parentNode := c.cb.NodeAt(parent).Node
		childIndex := len(parentNode.Children)

		childNode, errKind := ResolveToken(token, nil, c.pkgs)
		childHash := cs.Nodes().Insert(childNode)

		newChildren := make([]code.Hash, childIndex+1)
		copy(newChildren, parentNode.Children)
		newChildren[childIndex] = childHash

		newParentPath := replaceAndPropagate(c.cb, cs, errs, parent, tokenOf(parentNode, c.pkgs), newChildren, c.pkgs)

		childPath := code.NewPath(childHash, newParentPath, childIndex, cs.Nodes())
		if errKind != nil {
			errs.Insert(childPath, *errKind)
		}
		return childPath
	})
}

// InsertParent replaces child with a new node for token whose single child
// is child, propagating the change to the root. It returns the new parent's
// path, at the position child used to occupy.
func (c *Compiler) InsertParent(child code.Path, token string) code.Path {
	return code.MakeChangeWithErrors(c.cb, func(cs *code.NewChangeSet, errs *code.Errors) code.Path {
		return replaceAndPropagate(c.cb, cs, errs, child, token, []code.Hash{child.Hash()}, c.pkgs)
	})
}

// InsertSibling inserts a new node for token as a sibling of existing,
// appended as the last child of existing's parent (so it lands immediately
// after existing only when existing is the last child). If existing has no
// parent (it's the root), it first
// wraps the root under a fresh empty node via InsertParent, then inserts
// the sibling as that node's second child -- two edits, as two separate
// change sets, matching InsertParent and InsertChild individually.
func (c *Compiler) InsertSibling(existing code.Path, token string) code.Path {
	parent, ok := existing.Parent()
	if !ok {
		parent = c.InsertParent(existing, "")
	}
	return c.InsertChild(parent, token)
}

// Remove deletes toRemove from its parent's child list (or, if toRemove is
// the root, removes the root under §4.4's rules), propagating the change to
// the root, and rewrites *toUpdate to track the same node through the
// restructuring: a descendant of toRemove inherits the chain above
// toRemove's former parent, an ancestor of toRemove is resolved to its
// current path, and anything else (a lateral relation, including toRemove's
// own former siblings) has its sibling index adjusted and its ancestor
// chain rebuilt from the new root.
func (c *Compiler) Remove(toRemove code.Path, toUpdate *code.Path) {
	_, toRemoveHasParent := toRemove.Parent()
	toUpdateIsToRemove := toUpdate.Equal(toRemove)

	code.MakeChangeWithErrors(c.cb, func(cs *code.NewChangeSet, errs *code.Errors) struct{} {
		var updateStack []code.Path
		cursor := *toUpdate
		updateIsDescendant := false
		for {
			updateStack = append(updateStack, cursor)
			parent, ok := cursor.Parent()
			if !ok {
				break
			}
			if parent.Equal(toRemove) {
				updateIsDescendant = true
				break
			}
			cursor = parent
		}

		// toRemove's own path is dead either way; drop any error recorded
		// against it so it doesn't linger in the error map forever.
		errs.Remove(toRemove)

		var parentAfterRemoval *code.Path
		if parent, hasParent := toRemove.Parent(); hasParent {
			parentNode := c.cb.NodeAt(parent).Node
			newChildren := removeAt(parentNode.Children, toRemove.SiblingIndex())
			newParentPath := replaceAndPropagate(c.cb, cs, errs, parent, tokenOf(parentNode, c.pkgs), newChildren, c.pkgs)
			parentAfterRemoval = &newParentPath
		} else {
			cs.Remove(toRemove)
		}

		updateIsAncestor := toUpdate.IsAncestorOf(toRemove)
		updateIsLateral := !updateIsDescendant && !updateIsAncestor

		switch {
		case updateIsDescendant:
			// to_update's own position no longer exists: to_remove's whole
			// subtree is gone. It inherits the parent chain of the removed
			// node's parent -- the nearest surviving ancestor -- rather than
			// any rebuilt position inside a subtree that was just deleted.
			if parentAfterRemoval != nil {
				*toUpdate = *parentAfterRemoval
			} else {
				*toUpdate = currentRootPath(c.cb, cs)
			}

		case updateIsLateral:
			newSiblingIndex := toUpdate.SiblingIndex()
			if removeParent, ok := toRemove.Parent(); ok {
				if updateParent, ok2 := toUpdate.Parent(); ok2 &&
					updateParent.Equal(removeParent) &&
					toUpdate.SiblingIndex() > toRemove.SiblingIndex() {
					newSiblingIndex = toUpdate.SiblingIndex() - 1
				}
			}

			// updateStack is to_update-first, root-last; drop the root
			// entry and rebuild top-down from the (possibly new) root,
			// reusing every level's original hash -- only the ancestors
			// shared with to_remove actually changed hash, and that's
			// already reflected in the hash NewPath reads back off the
			// current root's children as we descend.
			updateStack = updateStack[:len(updateStack)-1]
			root := currentRootPath(c.cb, cs)
			parent := &root

			for i := len(updateStack) - 1; i >= 0; i-- {
				step := updateStack[i]

				// A level shares an ancestor with to_remove (up to their
				// nearest common ancestor) iff replaceAndPropagate recorded
				// a replacement for it; everything below that point kept
				// its original hash, since only the one child hash leading
				// toward to_remove was ever swapped at each level.
				hash := step.Hash()
				if repl, ok := cs.Replacement(step); ok {
					hash = repl.Hash()
				}

				siblingIndex := step.SiblingIndex()
				if i == 0 {
					siblingIndex = newSiblingIndex
				}
				next := code.NewPath(hash, *parent, siblingIndex, cs.Nodes())
				*toUpdate = next
				parent = &next
			}

		case updateIsAncestor:
			if newPath, ok := cs.Replacement(*toUpdate); ok {
				*toUpdate = newPath
			} else {
				*toUpdate = c.cb.LatestVersionOf(*toUpdate)
			}
		}

		return struct{}{}
	})

	// Removing the root itself while to_update pointed at that same root is
	// the one case the branches above can't resolve mid-change-set: there's
	// no surviving node at to_remove's old position to rebuild a path onto,
	// and the synthesized replacement root (§4.4's empty/single-child/error
	// cases) only exists once Codebase has derived it, after commit.
	if !toRemoveHasParent && toUpdateIsToRemove {
		*toUpdate = c.cb.Root().Path
	}
}

// replaceAndPropagate is the shared core of every operation above: it
// resolves token against children at target, then walks up through every
// ancestor, re-resolving each one's own token against its (now one-child-
// different) child list, until it runs out of parents. It records one
// Replace per level in cs and returns the new path of the node originally
// at target.
func replaceAndPropagate(
	cb *code.Codebase,
	cs *code.NewChangeSet,
	errs *code.Errors,
	target code.Path,
	token string,
	children []code.Hash,
	pkgs *packages.Packages,
) code.Path {
	type step struct {
		old code.Path
		hash code.Hash
		err  *code.CodeError
	}

	nextTarget := target
	nextToken := token
	nextChildren := children
	var steps []step

	for {
		node, errKind := ResolveToken(nextToken, nextChildren, pkgs)
		hash := cs.Nodes().Insert(node)
		steps = append(steps, step{old: nextTarget, hash: hash, err: errKind})

		parent, ok := nextTarget.Parent()
		if !ok {
			break
		}

		parentNode := cb.NodeAt(parent).Node
		siblings := make([]code.Hash, len(parentNode.Children))
		copy(siblings, parentNode.Children)
		siblings[nextTarget.SiblingIndex()] = hash

		nextToken = tokenOf(parentNode, pkgs)
		nextChildren = siblings
		nextTarget = parent
	}

	var parentPath *code.Path
	var result code.Path
	for i := len(steps) - 1; i >= 0; i-- {
		s := steps[i]

		var newPath code.Path
		if parentPath == nil {
			newPath = code.ForRoot(s.hash)
		} else {
			newPath = code.NewPath(s.hash, *parentPath, s.old.SiblingIndex(), cs.Nodes())
		}

		cs.Replace(s.old, newPath)

		// s.old's key is dead from here on (nothing will ever resolve to it
		// again except by walking change-log history), so any error
		// recorded against it would otherwise leak; drop it before
		// recording whatever the new resolution produced.
		errs.Remove(s.old)
		if s.err != nil {
			errs.Insert(newPath, *s.err)
		}

		parentPath = &newPath
		if i == 0 {
			result = newPath
		}
	}

	return result
}

// currentRootPath returns the codebase's root path as it stands after
// whatever has already been recorded in cs, without requiring cs to have
// been committed: the propagation loop above always records a direct
// Replace entry for the old root whenever it touches anything, so a single
// lookup is enough.
func currentRootPath(cb *code.Codebase, cs *code.NewChangeSet) code.Path {
	old := cb.Root().Path
	if newPath, ok := cs.Replacement(old); ok {
		return newPath
	}
	return old
}

func removeAt(children []code.Hash, index int) []code.Hash {
	out := make([]code.Hash, 0, len(children)-1)
	out = append(out, children[:index]...)
	out = append(out, children[index+1:]...)
	return out
}
