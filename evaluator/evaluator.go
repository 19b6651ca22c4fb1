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

// Package evaluator implements the tree-walking evaluator: a stack-based
// interpreter over a code.Codebase that suspends on provided-function
// effects, eliminates tail calls, and can be reset or updated from a new
// codebase snapshot (§4.7 of the design). Its state machine is modeled
// explicitly, per original_source's capi/runtime/src/evaluator.rs, rather
// than relying on host-language coroutines (see DESIGN.md).
package evaluator

import (
	"fmt"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/effect"
	"github.com/hannobraun/crosscut/log"
	"github.com/hannobraun/crosscut/metrics"
	"github.com/hannobraun/crosscut/packages"
	"github.com/hannobraun/crosscut/value"
)

var scope = log.RegisterScope("evaluator", "the tree-walking evaluator", 0)

// StateKind is the closed set of states the evaluator can be in.
type StateKind uint8

const (
	// Started is the zero-value state, before the first Reset.
	Started StateKind = iota
	// Running means the evaluator can take another Step.
	Running
	// EffectPending means the evaluator suspended on an effect; the host
	// must resolve it (ExitFromProvidedFunction or TriggerEffect) before
	// Step will do anything further.
	EffectPending
	// Finished means evaluation produced a final Output.
	Finished
	// Errored means the evaluator reached a code.KindError node; it stays
	// there until the codebase changes and the evaluator is reset.
	Errored
)

func (k StateKind) String() string {
	switch k {
	case Started:
		return "Started"
	case Running:
		return "Running"
	case EffectPending:
		return "Effect"
	case Finished:
		return "Finished"
	case Errored:
		return "Error"
	default:
		return fmt.Sprintf("StateKind(%d)", uint8(k))
	}
}

// State is the evaluator's current position, per §4.7: one of Started,
// Running{Path}, Effect{Effect,Path}, Finished{Output}, Error{Path}. Only the
// fields relevant to Kind are meaningful.
type State struct {
	Kind   StateKind
	Path   code.Path
	Effect effect.Effect
	Output value.Value
}

func (s State) String() string {
	switch s.Kind {
	case Running:
		return fmt.Sprintf("Running{%s}", s.Path)
	case EffectPending:
		return fmt.Sprintf("Effect{%s, %s}", s.Effect, s.Path)
	case Finished:
		return fmt.Sprintf("Finished{%s}", s.Output)
	case Errored:
		return fmt.Sprintf("Error{%s}", s.Path)
	default:
		return s.Kind.String()
	}
}

// Frame is a call-stack entry: the body path of the function that was
// applied, and the binding (if any) its single parameter is bound to.
type Frame struct {
	BodyPath   code.Path
	ParamName  string
	ParamSet   bool
	ParamValue value.Value
}

// runtimeNode is the cached projection of a syntax node into the eval
// stack's evaluation data: the node itself, the paths of children not yet
// evaluated (stored back-to-front so popping the slice's tail yields them in
// child order), and the values children have yielded so far.
//
// A runtimeNode with isPopFrameMarker set is not a projection of any code
// node at all; it is the synthetic marker pushed ahead of a non-tail
// function call's body so that, once that body finishes evaluating, the
// call frame it introduced is popped before its result is propagated
// further up the eval stack.
type runtimeNode struct {
	path              code.Path
	node              code.Node
	remainingChildren []code.Path
	evaluatedChildren []value.Value

	isPopFrameMarker bool
}

// Evaluator walks a codebase from its root, maintaining an eval stack and a
// call stack, suspending on effects and errors.
type Evaluator struct {
	pkgs *packages.Packages

	evalStack []*runtimeNode
	callStack []Frame
	state     State
}

// New returns an evaluator in the Started state, resolving provided
// functions seen at runtime against pkgs.
func New(pkgs *packages.Packages) *Evaluator {
	return &Evaluator{pkgs: pkgs, state: State{Kind: Started}}
}

// State returns the evaluator's current state.
func (e *Evaluator) State() State { return e.state }

// CallStack returns a read-only snapshot of the current call frames,
// outermost first, for a renderer's "active functions" view (see
// original_source's capi/debugger/src/model/active_functions.rs).
func (e *Evaluator) CallStack() []Frame {
	out := make([]Frame, len(e.callStack))
	copy(out, e.callStack)
	return out
}

// EvalStackDepth returns the number of runtime nodes currently on the eval
// stack, for tests and diagnostics asserting the tail-call bound.
func (e *Evaluator) EvalStackDepth() int { return len(e.evalStack) }

// Reset clears both stacks and pushes a runtime node for cb's root, modeling
// "apply the whole program as a function of no arguments." It is cheap:
// the codebase is structurally shared across edits, so restarting from
// scratch costs only the depth of whatever the evaluator had already walked
// (§9's open question on incremental update is resolved here in favor of
// always resetting; see DESIGN.md).
func (e *Evaluator) Reset(cb *code.Codebase) {
	root := cb.Root().Path
	e.evalStack = nil
	e.callStack = []Frame{{BodyPath: root}}
	e.pushRuntimeNode(cb, root)
	e.state = State{Kind: Running, Path: root}
	metrics.EvaluatorResets.Increment()
	scope.Debugf("reset at root %s", root)
}

// ApplyFunction pushes a runtime node for body onto the eval stack and a new
// call frame rooted at it, without binding a parameter -- for a host driving
// a Value.Function it obtained some other way (e.g. a callback value handed
// back through an effect) rather than through an Apply node the compiler
// produced.
func (e *Evaluator) ApplyFunction(cb *code.Codebase, body code.Path) {
	e.callStack = append(e.callStack, Frame{BodyPath: body})
	e.pushRuntimeNode(cb, body)
	e.state = State{Kind: Running, Path: body}
}

// Step performs one reduction step. It suspends (returns having transitioned
// to EffectPending or Errored) at most once per call, and is otherwise
// synchronous and bounded.
func (e *Evaluator) Step(cb *code.Codebase) {
	if e.state.Kind == EffectPending || e.state.Kind == Errored {
		return
	}

	if len(e.evalStack) == 0 {
		if e.state.Kind != Finished {
			e.finish(value.NewNothing())
		}
		return
	}

	metrics.EvaluatorSteps.Increment()

	top := e.evalStack[len(e.evalStack)-1]

	if top.isPopFrameMarker {
		e.evalStack = e.evalStack[:len(e.evalStack)-1]
		e.popFrame()
		e.yield(top.evaluatedChildren[0])
		return
	}

	if top.node.Kind != code.KindFunction && top.node.Kind != code.KindError && len(top.remainingChildren) > 0 {
		next := top.remainingChildren[len(top.remainingChildren)-1]
		top.remainingChildren = top.remainingChildren[:len(top.remainingChildren)-1]
		e.pushRuntimeNode(cb, next)
		e.state = State{Kind: Running, Path: next}
		return
	}

	e.evalStack = e.evalStack[:len(e.evalStack)-1]
	e.reduce(cb, top)

	metrics.EvaluatorEvalDepth.Record(float64(len(e.evalStack)))
	metrics.EvaluatorCallDepth.Record(float64(len(e.callStack)))
	if e.state.Kind == EffectPending {
		metrics.EvaluatorEffects.Increment()
	}
}

// ExitFromProvidedFunction resumes evaluation after a host has handled an
// ApplyProvidedFunction effect, as if the suspended Apply had reduced
// directly to output. It is only legal while suspended on exactly that
// effect.
func (e *Evaluator) ExitFromProvidedFunction(output value.Value) error {
	if e.state.Kind != EffectPending || e.state.Effect.Kind != effect.ApplyProvidedFunction {
		return fmt.Errorf("evaluator: ExitFromProvidedFunction called while not suspended on ApplyProvidedFunction (state=%s)", e.state)
	}
	e.evalStack = e.evalStack[:len(e.evalStack)-1]
	e.yield(output)
	return nil
}

// TriggerEffect transitions the evaluator to EffectPending from any running
// state, at the path it was last positioned at. Used by a host-side handler
// to report UnexpectedInput or ProvidedFunctionNotFound conditions it
// detects itself, in addition to the ones Step detects internally.
func (e *Evaluator) TriggerEffect(eff effect.Effect) {
	e.state = State{Kind: EffectPending, Path: e.state.Path, Effect: eff}
	scope.Warnf("effect triggered at %s: %s", e.state.Path, eff)
}

func (e *Evaluator) finish(v value.Value) {
	e.state = State{Kind: Finished, Output: v}
	scope.Debugf("finished: %s", v)
}

func (e *Evaluator) pushFrame(f Frame) { e.callStack = append(e.callStack, f) }
func (e *Evaluator) popFrame()         { e.callStack = e.callStack[:len(e.callStack)-1] }

func (e *Evaluator) currentFrame() Frame { return e.callStack[len(e.callStack)-1] }

// resolveBinding looks the current call frame's parameter bindings up
// innermost first.
func (e *Evaluator) resolveBinding(name string) (value.Value, bool) {
	for i := len(e.callStack) - 1; i >= 0; i-- {
		f := e.callStack[i]
		if f.ParamSet && f.ParamName == name {
			return f.ParamValue, true
		}
	}
	return value.Value{}, false
}

// yield delivers v to whatever is waiting for it: the evaluated-children
// list of the runtime node now on top of the stack, or the final Output if
// the stack is empty.
func (e *Evaluator) yield(v value.Value) {
	if len(e.evalStack) == 0 {
		e.finish(v)
		return
	}
	parent := e.evalStack[len(e.evalStack)-1]
	parent.evaluatedChildren = append(parent.evaluatedChildren, v)
	e.state = State{Kind: Running, Path: parent.path}
}

func (e *Evaluator) pushRuntimeNode(cb *code.Codebase, path code.Path) {
	node := cb.NodeAt(path).Node
	rn := &runtimeNode{path: path, node: node}
	if node.Kind != code.KindFunction && node.Kind != code.KindError {
		rn.remainingChildren = reversedChildPaths(cb, path, node)
	}
	e.evalStack = append(e.evalStack, rn)
}

// reversedChildPaths builds the paths of node's children, reversed so that
// popping the slice's tail yields them in original child order.
func reversedChildPaths(cb *code.Codebase, path code.Path, node code.Node) []code.Path {
	n := len(node.Children)
	out := make([]code.Path, n)
	for i, h := range node.Children {
		out[n-1-i] = code.NewPath(h, path, i, cb.Nodes())
	}
	return out
}

// isTailPosition reports whether p is in tail position relative to the
// current call frame's body: either p is the frame's body root itself, or p
// is the last child of a Tuple that is (recursively) in tail position. This
// is how a tuple of side-effecting expressions followed by a final call can
// still tail-call-eliminate the final one; see DESIGN.md for why the spec's
// "last child of its parent body list" is resolved this way.
func (e *Evaluator) isTailPosition(cb *code.Codebase, p code.Path) bool {
	bodyRoot := e.currentFrame().BodyPath
	for {
		if p.Equal(bodyRoot) {
			return true
		}
		parent, ok := p.Parent()
		if !ok {
			return false
		}
		parentNode := cb.NodeAt(parent).Node
		if parentNode.Kind != code.KindTuple || p.SiblingIndex() != len(parentNode.Children)-1 {
			return false
		}
		p = parent
	}
}

// paramNameOf returns the parameter name bound by the Function node whose
// body lives at bodyPath.
func paramNameOf(cb *code.Codebase, bodyPath code.Path) string {
	funcPath, ok := bodyPath.Parent()
	if !ok {
		return ""
	}
	funcNode := cb.NodeAt(funcPath).Node
	if funcNode.Kind != code.KindFunction {
		return ""
	}
	binding := cb.Nodes().Get(funcNode.Children[0])
	return binding.Name
}

func (e *Evaluator) reduce(cb *code.Codebase, rn *runtimeNode) {
	switch rn.node.Kind {
	case code.KindEmpty:
		if len(rn.evaluatedChildren) > 0 {
			e.yield(rn.evaluatedChildren[0])
		} else {
			e.yield(value.NewNothing())
		}

	case code.KindNumber:
		e.yield(value.NewInteger(rn.node.Value))

	case code.KindIdentifier:
		if v, ok := e.resolveBinding(rn.node.Name); ok {
			e.yield(v)
			return
		}
		if id, ok := e.pkgs.Resolve(rn.node.Name); ok {
			e.yield(value.NewProvidedFunction(id))
			return
		}
		scope.Warnf("identifier %q at %s resolved neither to a binding nor a provided function", rn.node.Name, rn.path)
		e.yield(value.NewNothing())

	case code.KindRecursion:
		e.yield(value.NewFunction(e.currentFrame().BodyPath))

	case code.KindFunction:
		bodyPath := code.NewPath(rn.node.Children[1], rn.path, 1, cb.Nodes())
		e.yield(value.NewFunction(bodyPath))

	case code.KindTuple:
		e.yield(value.NewTuple(rn.evaluatedChildren))

	case code.KindProvidedFunction:
		e.yield(value.NewProvidedFunction(rn.node.FunctionID))

	case code.KindApply:
		e.reduceApply(cb, rn)

	case code.KindError:
		e.evalStack = append(e.evalStack, rn)
		e.state = State{Kind: Errored, Path: rn.path}
		scope.Errorf("evaluation halted on error node at %s", rn.path)

	default:
		panic(fmt.Sprintf("evaluator: unexpected node kind %s on eval stack", rn.node.Kind))
	}
}

func (e *Evaluator) reduceApply(cb *code.Codebase, rn *runtimeNode) {
	expression := rn.evaluatedChildren[0]
	argument := rn.evaluatedChildren[1]

	switch expression.Kind {
	case value.Function:
		tail := e.isTailPosition(cb, rn.path)
		paramName := paramNameOf(cb, expression.Body)

		if tail {
			e.popFrame()
		} else {
			e.evalStack = append(e.evalStack, &runtimeNode{isPopFrameMarker: true})
		}

		e.pushFrame(Frame{BodyPath: expression.Body, ParamName: paramName, ParamSet: true, ParamValue: argument})
		e.pushRuntimeNode(cb, expression.Body)
		e.state = State{Kind: Running, Path: expression.Body}

	case value.ProvidedFunction:
		if _, ok := e.pkgs.Name(expression.FunctionID); !ok {
			e.evalStack = append(e.evalStack, rn)
			e.state = State{
				Kind:   EffectPending,
				Path:   rn.path,
				Effect: effect.NewProvidedFunctionNotFound(expression.FunctionID),
			}
			return
		}

		e.evalStack = append(e.evalStack, rn)
		e.state = State{
			Kind:   EffectPending,
			Path:   rn.path,
			Effect: effect.NewApplyProvidedFunction(expression.FunctionID, argument),
		}

	default:
		e.evalStack = append(e.evalStack, rn)
		e.state = State{
			Kind:   EffectPending,
			Path:   rn.path,
			Effect: effect.NewUnexpectedInput(effect.ExpectedFunction, expression),
		}
	}
}
