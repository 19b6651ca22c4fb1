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

package code

import (
	"fmt"
	"strconv"
	"strings"
)

// Path uniquely identifies a node *instance*: its hash, plus the position it
// occupies in the tree at the moment the path was constructed (an optional
// parent path and a sibling index within that parent's child list). Two
// paths are equal iff they denote the same hash at the same position in the
// same version of the codebase.
//
// Path is a plain, comparable-by-value type (via Equal); it is cheap to copy
// and may be held by any number of goroutines, but must only ever be used to
// index the Store that issued it (§5).
type Path struct {
	hash         Hash
	parent       *Path
	siblingIndex int
}

// ForRoot returns the path of the root node, which has no parent and sibling
// index zero.
func ForRoot(hash Hash) Path {
	return Path{hash: hash}
}

// NewPath constructs the path of a child node. It panics if store doesn't
// show hash at siblingIndex among parent's children, which would mean the
// caller has mismatched a path against the wrong node or store.
func NewPath(hash Hash, parent Path, siblingIndex int, store *Store) Path {
	parentNode := store.Get(parent.hash)
	children := parentNode.Children
	if siblingIndex < 0 || siblingIndex >= len(children) || children[siblingIndex] != hash {
		panic(fmt.Sprintf(
			"code: path invariant violated: parent %s has no child %s at index %d",
			parent.hash, hash, siblingIndex,
		))
	}

	p := parent
	return Path{hash: hash, parent: &p, siblingIndex: siblingIndex}
}

// Hash returns the hash of the node this path denotes.
func (p Path) Hash() Hash { return p.hash }

// Parent returns the path of the parent node, and false if p is the root.
func (p Path) Parent() (Path, bool) {
	if p.parent == nil {
		return Path{}, false
	}
	return *p.parent, true
}

// SiblingIndex returns p's position in its parent's child list. Zero for the
// root.
func (p Path) SiblingIndex() int { return p.siblingIndex }

// IsRoot reports whether p has no parent.
func (p Path) IsRoot() bool { return p.parent == nil }

// Equal reports whether p and other denote the same hash at the same
// position, recursively comparing their ancestor chains.
func (p Path) Equal(other Path) bool {
	if p.hash != other.hash || p.siblingIndex != other.siblingIndex {
		return false
	}
	if (p.parent == nil) != (other.parent == nil) {
		return false
	}
	if p.parent == nil {
		return true
	}
	return p.parent.Equal(*other.parent)
}

// IsAncestorOf reports whether p is a (possibly indirect) ancestor of other,
// i.e. other's parent chain contains a path equal to p.
func (p Path) IsAncestorOf(other Path) bool {
	cur, ok := other.Parent()
	for ok {
		if p.Equal(cur) {
			return true
		}
		cur, ok = cur.Parent()
	}
	return false
}

// Less orders paths lexicographically over (parent, sibling index, hash),
// treating the root as ordered before any non-root path sharing no common
// prefix. It gives a total order suitable for use as a BTree/sorted-map key.
// Neither Errors nor the change log sorts by it: Errors.All returns entries
// in map iteration order.
func (p Path) Less(other Path) bool {
	pAncestors := p.ancestorsRootFirst()
	oAncestors := other.ancestorsRootFirst()

	for i := 0; i < len(pAncestors) && i < len(oAncestors); i++ {
		a, b := pAncestors[i], oAncestors[i]
		if a.siblingIndex != b.siblingIndex {
			return a.siblingIndex < b.siblingIndex
		}
		if a.hash != b.hash {
			return a.hash.String() < b.hash.String()
		}
	}
	if len(pAncestors) != len(oAncestors) {
		return len(pAncestors) < len(oAncestors)
	}
	return p.hash.String() < other.hash.String()
}

func (p Path) ancestorsRootFirst() []Path {
	var chain []Path
	cur := p
	for {
		parent, ok := cur.Parent()
		if !ok {
			break
		}
		chain = append(chain, cur)
		cur = parent
	}
	// reverse into root-first order
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// Key returns a canonical string encoding of p, suitable for use as a map
// key (Path itself is not comparable with ==, since equal paths may be built
// from distinct parent pointers).
func (p Path) Key() string {
	var b strings.Builder
	if parent, ok := p.Parent(); ok {
		b.WriteString(parent.Key())
		b.WriteByte('/')
	}
	b.WriteString(strconv.Itoa(p.siblingIndex))
	b.WriteByte(':')
	b.WriteString(p.hash.String())
	return b.String()
}

func (p Path) String() string { return p.Key() }
