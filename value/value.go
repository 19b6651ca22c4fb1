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

// Package value implements the runtime values the evaluator produces and
// the host's provided functions exchange with it.
package value

import (
	"fmt"
	"strings"

	"github.com/hannobraun/crosscut/code"
)

// Kind is the closed set of runtime value variants.
type Kind uint8

const (
	// Nothing is the empty tuple, the value of Empty and of a body with no
	// trailing expression.
	Nothing Kind = iota
	// Integer holds a 32-bit signed integer.
	Integer
	// Tuple holds an ordered sequence of values.
	Tuple
	// Function closes over nothing but the path of its body; parameter
	// bindings are looked up by walking the call stack at evaluation time
	// (see package evaluator), so a Function value only needs to remember
	// where to resume.
	Function
	// ProvidedFunction refers to a host function by id, not yet applied.
	ProvidedFunction
	// Opaque is a host-injected value this layer never interprets, only
	// carries around and displays.
	Opaque
)

func (k Kind) String() string {
	switch k {
	case Nothing:
		return "Nothing"
	case Integer:
		return "Integer"
	case Tuple:
		return "Tuple"
	case Function:
		return "Function"
	case ProvidedFunction:
		return "ProvidedFunction"
	case Opaque:
		return "Opaque"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Value is a single runtime value.
type Value struct {
	Kind Kind

	Int int32

	Values []Value

	Body code.Path

	FunctionID int

	OpaqueID      int
	OpaqueDisplay string
}

// NewNothing returns the empty tuple.
func NewNothing() Value { return Value{Kind: Nothing} }

// NewInteger returns an integer value.
func NewInteger(v int32) Value { return Value{Kind: Integer, Int: v} }

// NewTuple returns a tuple of the given values, in order.
func NewTuple(values []Value) Value {
	v := make([]Value, len(values))
	copy(v, values)
	return Value{Kind: Tuple, Values: v}
}

// NewFunction returns a function value pointing at body.
func NewFunction(body code.Path) Value { return Value{Kind: Function, Body: body} }

// NewProvidedFunction returns a reference to host function id, not yet
// applied.
func NewProvidedFunction(id int) Value { return Value{Kind: ProvidedFunction, FunctionID: id} }

// NewOpaque wraps a host value the core never interprets, along with the
// string a renderer should display for it.
func NewOpaque(id int, display string) Value {
	return Value{Kind: Opaque, OpaqueID: id, OpaqueDisplay: display}
}

// String renders v for logs and the debug server; it is not meant to be
// parsed back.
func (v Value) String() string {
	switch v.Kind {
	case Nothing:
		return "()"
	case Integer:
		return fmt.Sprintf("%d", v.Int)
	case Tuple:
		parts := make([]string, len(v.Values))
		for i, e := range v.Values {
			parts[i] = e.String()
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case Function:
		return fmt.Sprintf("fn@%s", v.Body)
	case ProvidedFunction:
		return fmt.Sprintf("provided#%d", v.FunctionID)
	case Opaque:
		return v.OpaqueDisplay
	default:
		return "?"
	}
}
