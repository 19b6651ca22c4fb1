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

// Package effect implements the runtime effects the evaluator can suspend
// on, and that a host must resolve before evaluation can continue (§6, §7).
package effect

import (
	"fmt"

	"github.com/hannobraun/crosscut/value"
)

// ExpectedType names what the evaluator expected to find where it instead
// found some other kind of value, for UnexpectedInput.
type ExpectedType uint8

const (
	// ExpectedFunction means the evaluator needed a Value.Function (the
	// expression side of an Apply) and got something else.
	ExpectedFunction ExpectedType = iota
)

func (t ExpectedType) String() string {
	switch t {
	case ExpectedFunction:
		return "Function"
	default:
		return fmt.Sprintf("ExpectedType(%d)", uint8(t))
	}
}

// Kind is the closed set of effect constructors.
type Kind uint8

const (
	// ApplyProvidedFunction asks the host to run the function registered
	// under ID with Input, then call back with exit_from_provided_function
	// (evaluator.Evaluator.ExitFromProvidedFunction).
	ApplyProvidedFunction Kind = iota
	// UnexpectedInput is informational: an Apply's expression evaluated to
	// something other than a function.
	UnexpectedInput
	// ProvidedFunctionNotFound fires when a ProvidedFunction node carries an
	// id the current Packages registry never registered -- possible if a
	// codebase was produced against a larger package set than is now in
	// force. See original_source's capi/process/src/builtins.rs.
	ProvidedFunctionNotFound
)

func (k Kind) String() string {
	switch k {
	case ApplyProvidedFunction:
		return "ApplyProvidedFunction"
	case UnexpectedInput:
		return "UnexpectedInput"
	case ProvidedFunctionNotFound:
		return "ProvidedFunctionNotFound"
	default:
		return fmt.Sprintf("Kind(%d)", uint8(k))
	}
}

// Effect is a single runtime effect, produced by Evaluator.Step and
// resolved by the host before evaluation can continue.
type Effect struct {
	Kind Kind

	// ApplyProvidedFunction
	FunctionID int
	Input      value.Value

	// UnexpectedInput
	Expected ExpectedType
	Actual   value.Value

	// ProvidedFunctionNotFound
	MissingFunctionID int
}

// NewApplyProvidedFunction returns the effect asking the host to run
// function id with input.
func NewApplyProvidedFunction(id int, input value.Value) Effect {
	return Effect{Kind: ApplyProvidedFunction, FunctionID: id, Input: input}
}

// NewUnexpectedInput returns the informational effect for an Apply whose
// expression evaluated to a non-function value.
func NewUnexpectedInput(expected ExpectedType, actual value.Value) Effect {
	return Effect{Kind: UnexpectedInput, Expected: expected, Actual: actual}
}

// NewProvidedFunctionNotFound returns the effect for a ProvidedFunction node
// whose id isn't registered in the current Packages.
func NewProvidedFunctionNotFound(id int) Effect {
	return Effect{Kind: ProvidedFunctionNotFound, MissingFunctionID: id}
}

func (e Effect) String() string {
	switch e.Kind {
	case ApplyProvidedFunction:
		return fmt.Sprintf("ApplyProvidedFunction{id=%d, input=%s}", e.FunctionID, e.Input)
	case UnexpectedInput:
		return fmt.Sprintf("UnexpectedInput{expected=%s, actual=%s}", e.Expected, e.Actual)
	case ProvidedFunctionNotFound:
		return fmt.Sprintf("ProvidedFunctionNotFound{id=%d}", e.MissingFunctionID)
	default:
		return "Effect(?)"
	}
}
