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

package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/effect"
	"github.com/hannobraun/crosscut/packages"
	"github.com/hannobraun/crosscut/value"
)

func runToSuspension(t *testing.T, ev *Evaluator, cb *code.Codebase) {
	t.Helper()
	for i := 0; i < 10_000; i++ {
		if ev.State().Kind != Running {
			return
		}
		ev.Step(cb)
	}
	t.Fatal("evaluator never left Running state")
}

// Scenario 5 from §8: Apply{Function{parameter p, body Empty}, Number(0)}
// finishes with Nothing and returns the call stack to depth 1 between
// steps.
func TestScenario5_ApplyFunctionWithEmptyBody(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()

	binding := store.Insert(code.NewBinding("p"))
	body := store.Insert(code.NewEmpty())
	fn := store.Insert(code.NewFunction(binding, body))
	arg := store.Insert(code.NewNumber(0))
	apply := store.Insert(code.NewApply(fn, arg))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(apply))
		return struct{}{}
	})

	pkgs := packages.New()
	ev := New(pkgs)
	ev.Reset(cb)

	maxCallDepth := len(ev.CallStack())
	for ev.State().Kind == Running {
		ev.Step(cb)
		if d := len(ev.CallStack()); d > maxCallDepth {
			maxCallDepth = d
		}
	}

	require.Equal(t, Finished, ev.State().Kind)
	assert.Equal(t, value.Nothing, ev.State().Output.Kind)
	assert.LessOrEqual(t, maxCallDepth, 2)
	assert.Len(t, ev.CallStack(), 1)
}

// Scenario 6 from §8: Apply{Recursion, Tuple{}} as root runs for 1024 steps
// without growing either stack or panicking.
func TestScenario6_InfiniteTailRecursionStaysBounded(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()

	recursion := store.Insert(code.NewRecursion())
	tuple := store.Insert(code.NewTuple(nil))
	apply := store.Insert(code.NewApply(recursion, tuple))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(apply))
		return struct{}{}
	})

	pkgs := packages.New()
	ev := New(pkgs)
	ev.Reset(cb)

	assert.NotPanics(t, func() {
		for i := 0; i < 1024; i++ {
			ev.Step(cb)
			require.Equal(t, Running, ev.State().Kind)
			assert.LessOrEqual(t, ev.EvalStackDepth(), 3)
			assert.LessOrEqual(t, len(ev.CallStack()), 3)
		}
	})
}

// Function body path: evaluating "fn parameter body" yields
// Value.Function{body: path}, where path is the function node's path with
// sibling index 1, and that path is resolvable by the codebase.
func TestFunctionBodyPath(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()

	binding := store.Insert(code.NewBinding("x"))
	body := store.Insert(code.NewNumber(7))
	fn := store.Insert(code.NewFunction(binding, body))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(fn))
		return struct{}{}
	})

	pkgs := packages.New()
	ev := New(pkgs)
	ev.Reset(cb)
	runToSuspension(t, ev, cb)

	require.Equal(t, Finished, ev.State().Kind)
	out := ev.State().Output
	require.Equal(t, value.Function, out.Kind)

	wantPath := code.NewPath(body, cb.Root().Path, 1, store)
	assert.Equal(t, wantPath.Hash(), out.Body.Hash())
	assert.Equal(t, wantPath.SiblingIndex(), out.Body.SiblingIndex())

	// the path must be resolvable against the codebase.
	assert.NotPanics(t, func() { cb.NodeAt(out.Body) })
}

// An Identifier with no binding in scope that names a registered provided
// function evaluates to that ProvidedFunction value.
func TestIdentifierResolvesAgainstProvidedFunctions(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()
	pkgs := packages.New()
	id, err := pkgs.Register("double")
	require.NoError(t, err)

	ident := store.Insert(code.NewIdentifier("double"))
	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(ident))
		return struct{}{}
	})

	ev := New(pkgs)
	ev.Reset(cb)
	runToSuspension(t, ev, cb)

	require.Equal(t, Finished, ev.State().Kind)
	out := ev.State().Output
	require.Equal(t, value.ProvidedFunction, out.Kind)
	assert.Equal(t, id, out.FunctionID)
}

// Applying a ProvidedFunction suspends on ApplyProvidedFunction, and
// ExitFromProvidedFunction resumes as if the Apply had reduced to the given
// output directly.
func TestApplyProvidedFunctionEffectRoundTrip(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()
	pkgs := packages.New()
	id, err := pkgs.Register("increment")
	require.NoError(t, err)

	fn := store.Insert(code.NewProvidedFunction(id))
	arg := store.Insert(code.NewNumber(41))
	apply := store.Insert(code.NewApply(fn, arg))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(apply))
		return struct{}{}
	})

	ev := New(pkgs)
	ev.Reset(cb)
	runToSuspension(t, ev, cb)

	require.Equal(t, EffectPending, ev.State().Kind)
	eff := ev.State().Effect
	require.Equal(t, effect.ApplyProvidedFunction, eff.Kind)
	assert.Equal(t, id, eff.FunctionID)
	assert.Equal(t, int32(41), eff.Input.Int)

	require.NoError(t, ev.ExitFromProvidedFunction(value.NewInteger(42)))

	runToSuspension(t, ev, cb)
	require.Equal(t, Finished, ev.State().Kind)
	assert.Equal(t, int32(42), ev.State().Output.Int)
}

// A ProvidedFunction id the current registry never registered surfaces
// ProvidedFunctionNotFound rather than ApplyProvidedFunction, per
// DESIGN.md's supplemented-feature 4.
func TestApplyUnregisteredProvidedFunctionID(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()

	fn := store.Insert(code.NewProvidedFunction(999))
	arg := store.Insert(code.NewNumber(1))
	apply := store.Insert(code.NewApply(fn, arg))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(apply))
		return struct{}{}
	})

	pkgs := packages.New()
	ev := New(pkgs)
	ev.Reset(cb)
	runToSuspension(t, ev, cb)

	require.Equal(t, EffectPending, ev.State().Kind)
	assert.Equal(t, effect.ProvidedFunctionNotFound, ev.State().Effect.Kind)
	assert.Equal(t, 999, ev.State().Effect.MissingFunctionID)
}

// Applying a non-function expression surfaces UnexpectedInput.
func TestApplyNonFunctionExpressionIsUnexpectedInput(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()

	notAFn := store.Insert(code.NewNumber(5))
	arg := store.Insert(code.NewNumber(1))
	apply := store.Insert(code.NewApply(notAFn, arg))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(apply))
		return struct{}{}
	})

	pkgs := packages.New()
	ev := New(pkgs)
	ev.Reset(cb)
	runToSuspension(t, ev, cb)

	require.Equal(t, EffectPending, ev.State().Kind)
	assert.Equal(t, effect.UnexpectedInput, ev.State().Effect.Kind)
	assert.Equal(t, effect.ExpectedFunction, ev.State().Effect.Expected)
}

// An Error node halts the evaluator in Error{path} until the codebase
// changes and the evaluator is reset.
func TestErrorNodeHaltsEvaluation(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()
	errHash := store.Insert(code.NewError("qqq", nil))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(errHash))
		return struct{}{}
	})

	pkgs := packages.New()
	ev := New(pkgs)
	ev.Reset(cb)
	runToSuspension(t, ev, cb)

	require.Equal(t, Errored, ev.State().Kind)
	assert.True(t, ev.State().Path.Equal(cb.Root().Path))

	// Step is a no-op once Errored.
	ev.Step(cb)
	assert.Equal(t, Errored, ev.State().Kind)
}

// A Tuple evaluates each value in order and yields them as a Value.Tuple.
func TestTupleEvaluatesValuesInOrder(t *testing.T) {
	cb := code.NewCodebase()
	store := cb.Nodes()

	one := store.Insert(code.NewNumber(1))
	two := store.Insert(code.NewNumber(2))
	three := store.Insert(code.NewNumber(3))
	tuple := store.Insert(code.NewTuple([]code.Hash{one, two, three}))

	code.MakeChange(cb, func(cs *code.NewChangeSet) struct{} {
		cs.Replace(cb.Root().Path, code.ForRoot(tuple))
		return struct{}{}
	})

	pkgs := packages.New()
	ev := New(pkgs)
	ev.Reset(cb)
	runToSuspension(t, ev, cb)

	require.Equal(t, Finished, ev.State().Kind)
	out := ev.State().Output
	require.Equal(t, value.Tuple, out.Kind)
	require.Len(t, out.Values, 3)
	assert.Equal(t, []int32{1, 2, 3}, []int32{out.Values[0].Int, out.Values[1].Int, out.Values[2].Int})
}
