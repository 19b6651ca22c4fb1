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

package metrics

// The metrics the core itself records, registered once at package init so
// every component that imports metrics shares one set of series: the
// compiler's edits, the evaluator's steps/resets/suspensions, and the
// editor's input events.
var (
	CompilerEdits = NewSum("crosscut_compiler_edits_total", "edits applied by the compiler")

	EvaluatorSteps      = NewSum("crosscut_evaluator_steps_total", "reduction steps taken by the evaluator")
	EvaluatorResets     = NewSum("crosscut_evaluator_resets_total", "times the evaluator was reset from a new codebase snapshot")
	EvaluatorEffects    = NewSum("crosscut_evaluator_effects_total", "times the evaluator suspended on an effect")
	EvaluatorEvalDepth  = NewGauge("crosscut_evaluator_eval_stack_depth", "current depth of the evaluator's eval stack")
	EvaluatorCallDepth  = NewGauge("crosscut_evaluator_call_stack_depth", "current depth of the evaluator's call stack")

	EditorInputEvents = NewSum("crosscut_editor_input_events_total", "input events handled by the editor")
)
