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
	"bytes"
	"encoding/binary"
	"fmt"
)

// Kind is the closed set of syntax node variants. Dispatch on Kind is done
// with a tagged-union switch throughout this module, not with interfaces or
// subclassing: the set of kinds a Node can be is fixed, and the typed
// accessors below (Apply, Function, Tuple, ...) are zero-cost views over the
// same underlying fields, not distinct implementations.
type Kind uint8

const (
	// KindEmpty is a placeholder that evaluates to the empty tuple. It has
	// zero children.
	KindEmpty Kind = iota
	// KindNumber holds a 32-bit integer literal. Zero children.
	KindNumber
	// KindIdentifier names a binding to resolve at compile time. Zero
	// children.
	KindIdentifier
	// KindRecursion evaluates to a reference to the enclosing function.
	// Zero children.
	KindRecursion
	// KindApply has exactly two children: expression, argument.
	KindApply
	// KindFunction has exactly two children: a Binding parameter, and a
	// body.
	KindFunction
	// KindBinding names the parameter of a Function. Legal only as a
	// Function's first child. Zero children.
	KindBinding
	// KindTuple holds any number of value children.
	KindTuple
	// KindProvidedFunction refers to a package function by id. Zero
	// children.
	KindProvidedFunction
	// KindError records an unresolved or malformed token, preserving
	// whatever children it was given.
	KindError
	// KindAddNode is never constructed by the compiler or stored; it exists
	// only so the editor's canonical traversal (package editor) has a name
	// for the "insert a new child here" cursor stop it synthesizes over a
	// container node. See DESIGN.md for why this Open Question was resolved
	// that way.
	KindAddNode
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindNumber:
		return "Number"
	case KindIdentifier:
		return "Identifier"
	case KindRecursion:
		return "Recursion"
	case KindApply:
		return "Apply"
	case KindFunction:
		return "Function"
	case KindBinding:
		return "Binding"
	case KindTuple:
		return "Tuple"
	case KindProvidedFunction:
		return "ProvidedFunction"
	case KindError:
		return "Error"
	case KindAddNode:
		return "AddNode"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Node is a single, immutable syntax tree node. Only the fields relevant to
// Kind are meaningful; the rest are zero. Construct nodes with the New*
// helpers below rather than composite literals, so arity is always correct.
type Node struct {
	Kind Kind

	// Number
	Value int32

	// Identifier, Binding
	Name string

	// ProvidedFunction
	FunctionID int

	// Error: the original token text that failed to resolve.
	Token string

	// Apply: [expression, argument].
	// Function: [parameter, body].
	// Tuple: value children, in order.
	// Error: whatever children the original token had.
	Children []Hash
}

// NewEmpty returns the Empty node.
func NewEmpty() Node { return Node{Kind: KindEmpty} }

// NewNumber returns a Number literal node.
func NewNumber(value int32) Node { return Node{Kind: KindNumber, Value: value} }

// NewIdentifier returns an unresolved-at-parse-time identifier node. By the
// time it reaches the store it has always already been resolved by the
// compiler into one of the other kinds, or into an Error; Identifier exists
// as a Kind for symmetry with Binding and so runtime code has a name for "a
// reference to a function parameter", see evaluator.
func NewIdentifier(name string) Node { return Node{Kind: KindIdentifier, Name: name} }

// NewRecursion returns the self-reference node.
func NewRecursion() Node { return Node{Kind: KindRecursion} }

// NewApply returns an Apply node. expression and argument must each be the
// hash of an already-inserted node.
func NewApply(expression, argument Hash) Node {
	return Node{Kind: KindApply, Children: []Hash{expression, argument}}
}

// NewFunction returns a Function node. parameter must be the hash of a
// Binding node.
func NewFunction(parameter, body Hash) Node {
	return Node{Kind: KindFunction, Children: []Hash{parameter, body}}
}

// NewBinding returns a Binding node, legal only as a Function's parameter.
func NewBinding(name string) Node { return Node{Kind: KindBinding, Name: name} }

// NewTuple returns a Tuple node over the given values, in order.
func NewTuple(values []Hash) Node {
	children := make([]Hash, len(values))
	copy(children, values)
	return Node{Kind: KindTuple, Children: children}
}

// NewProvidedFunction returns a node referring to a host package function by
// id.
func NewProvidedFunction(id int) Node { return Node{Kind: KindProvidedFunction, FunctionID: id} }

// NewError returns an Error node, recording the token that produced it and
// preserving whatever children it was given.
func NewError(token string, children []Hash) Node {
	c := make([]Hash, len(children))
	copy(c, children)
	return Node{Kind: KindError, Token: token, Children: c}
}

// Arity returns the fixed child count for kinds that have one, and ok=false
// for kinds with variable arity (Tuple, Error).
func (k Kind) Arity() (count int, ok bool) {
	switch k {
	case KindEmpty, KindNumber, KindIdentifier, KindRecursion, KindBinding, KindProvidedFunction:
		return 0, true
	case KindApply, KindFunction:
		return 2, true
	case KindTuple, KindError, KindAddNode:
		return 0, false
	default:
		return 0, false
	}
}

// ValidArity reports whether n's child count is legal for its Kind. The
// compiler never inserts a Node that fails this check; a mismatch is a
// programmer error caught here defensively.
func (n Node) ValidArity() bool {
	count, ok := n.Kind.Arity()
	if !ok {
		return true
	}
	return len(n.Children) == count
}

// Apply returns n's expression and argument child hashes. Panics if n is not
// KindApply.
func (n Node) Apply() (expression, argument Hash) {
	n.mustBe(KindApply)
	return n.Children[0], n.Children[1]
}

// Function returns n's parameter and body child hashes. Panics if n is not
// KindFunction.
func (n Node) Function() (parameter, body Hash) {
	n.mustBe(KindFunction)
	return n.Children[0], n.Children[1]
}

// Tuple returns n's value child hashes. Panics if n is not KindTuple.
func (n Node) Tuple() []Hash {
	n.mustBe(KindTuple)
	return n.Children
}

func (n Node) mustBe(k Kind) {
	if n.Kind != k {
		panic(fmt.Sprintf("code: expected %s node, got %s", k, n.Kind))
	}
}

// canonicalBytes produces the deterministic encoding that Hash is computed
// over: a kind tag, the kind's own fields, and the child hashes in order.
// Two nodes that produce identical bytes here are, by construction,
// identical nodes (invariant 1, hash uniqueness).
func (n Node) canonicalBytes() []byte {
	var buf bytes.Buffer
	buf.WriteByte(byte(n.Kind))

	switch n.Kind {
	case KindNumber:
		var v [4]byte
		binary.BigEndian.PutUint32(v[:], uint32(n.Value))
		buf.Write(v[:])
	case KindIdentifier, KindBinding:
		writeString(&buf, n.Name)
	case KindProvidedFunction:
		var v [8]byte
		binary.BigEndian.PutUint64(v[:], uint64(n.FunctionID))
		buf.Write(v[:])
	case KindError:
		writeString(&buf, n.Token)
	}

	var count [8]byte
	binary.BigEndian.PutUint64(count[:], uint64(len(n.Children)))
	buf.Write(count[:])
	for _, h := range n.Children {
		buf.Write(h[:])
	}

	return buf.Bytes()
}

func writeString(buf *bytes.Buffer, s string) {
	var length [8]byte
	binary.BigEndian.PutUint64(length[:], uint64(len(s)))
	buf.Write(length[:])
	buf.WriteString(s)
}
