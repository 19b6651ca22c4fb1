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

// Package engine is the glue that owns a codebase, its compiler, editor and
// evaluator on a single goroutine, and drives it from channels of plain
// messages (input events and editor commands from an input goroutine),
// publishing a Snapshot for a renderer goroutine to observe (§5 of the design).
// It is the "engine" thread the design describes: the codebase, compiler,
// editor and evaluator are never touched from any other goroutine.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/atomic"
	"golang.org/x/sync/errgroup"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/editor"
	"github.com/hannobraun/crosscut/effect"
	"github.com/hannobraun/crosscut/evaluator"
	"github.com/hannobraun/crosscut/log"
	"github.com/hannobraun/crosscut/packages"
	"github.com/hannobraun/crosscut/probe"
	"github.com/hannobraun/crosscut/value"
)

var scope = log.RegisterScope("engine", "the single-threaded codebase/compiler/editor/evaluator owner", 0)

// MaxStepsPerFrame bounds how many evaluator.Step calls RunFrame takes
// before giving up for this frame, matching §5's "the game engine uses a
// hard cap of 1024 steps per frame". Abandoning further steps never harms
// the evaluator's state; it simply resumes on the next frame.
const MaxStepsPerFrame = 1024

// EffectHandler resolves an ApplyProvidedFunction effect on the host's
// behalf. It returns the provided function's output, or an error if the
// host itself wants to report UnexpectedInput back into the evaluator
// (Engine does that translation for the caller).
type EffectHandler func(id int, input value.Value) (value.Value, error)

// Snapshot is a read-only, point-in-time view of the engine state a
// renderer goroutine can safely retain: everything §6's "Renderer
// interface" promises read access to. It is produced under Engine's single
// writer goroutine and handed off by value/copy, so holding one never
// blocks the engine.
type Snapshot struct {
	SessionID    uuid.UUID
	Root         code.LocatedNode
	Errors       []code.PathError
	Cursor       editor.Cursor
	Buffer       string
	EditorMode   editor.Mode
	EvalState    evaluator.State
	CallStack    []evaluator.Frame
	ChangeCount  int
}

// Engine owns a codebase, compiler (via its editor), and evaluator, and
// serializes every mutation to them behind the single goroutine that calls
// RunFrame / HandleInput. Additional goroutines -- an input source, a
// renderer -- talk to it only through the channels and accessors below.
type Engine struct {
	sessionID uuid.UUID

	pkgs *packages.Packages
	cb   *code.Codebase
	ed   *editor.Editor
	ev   *evaluator.Evaluator

	handler EffectHandler

	// published holds the latest Snapshot, updated at the end of every
	// HandleInput/RunFrame call, so a renderer goroutine can read engine
	// state without a lock and without blocking the engine thread --
	// the same go.uber.org/atomic package log.Scope keeps its level in.
	published atomic.Value

	probeCtl *probe.Controller
}

// New returns an Engine over a fresh codebase rooted at Empty, with its own
// session id for correlating concurrent engine instances in logs and the
// debug server's /session endpoint.
func New(pkgs *packages.Packages, handler EffectHandler) *Engine {
	cb := code.NewCodebase()
	ev := evaluator.New(pkgs)
	ev.Reset(cb)

	e := &Engine{
		sessionID: uuid.New(),
		pkgs:      pkgs,
		cb:        cb,
		ed:        editor.New(cb, pkgs),
		ev:        ev,
		handler:   handler,
	}
	e.publish()
	return e
}

// SessionID identifies this Engine instance for as long as it lives.
func (e *Engine) SessionID() uuid.UUID { return e.sessionID }

// WithLiveness starts a probe.Controller that touches path every interval
// for as long as ctx is alive, so a supervising process can tell this
// process is still alive. The touches run on their own goroutine, on a timer,
// independent of RunFrame: they stop when ctx is cancelled or the process
// exits, not when the evaluator stops making progress.
func (e *Engine) WithLiveness(ctx context.Context, path string, interval time.Duration) {
	e.probeCtl = probe.NewController(probe.Options{Path: path, UpdateInterval: interval})
	go func() {
		<-ctx.Done()
		e.probeCtl.Stop()
	}()
	go func() {
		if err := e.probeCtl.Start(); err != nil {
			scope.Errorf("liveness probe stopped: %v", err)
		}
	}()
}

// HandleInput applies one editor.Input event: it runs on the engine
// goroutine, updates the codebase/editor/evaluator, and republishes the
// Snapshot a renderer goroutine observes next.
func (e *Engine) HandleInput(in editor.Input) {
	e.ed.OnInput(in, e.cb, e.ev)
	e.publish()
}

// HandleCommand applies one editor.Command, adopting the codebase OnCommand
// returns (Clear replaces it outright; Pause/Resume return it unchanged).
func (e *Engine) HandleCommand(cmd editor.Command) {
	e.cb = e.ed.OnCommand(cmd, e.cb, e.ev)
	e.publish()
}

// RunFrame takes up to MaxStepsPerFrame evaluator steps, resolving any
// ApplyProvidedFunction effect through the configured handler as it goes,
// and stops early once the evaluator leaves the Running state (Finished,
// Errored, or still EffectPending because the handler itself reported
// UnexpectedInput). It republishes the Snapshot before returning.
func (e *Engine) RunFrame() {
	defer e.publish()

	for i := 0; i < MaxStepsPerFrame; i++ {
		state := e.ev.State()
		switch state.Kind {
		case evaluator.Finished, evaluator.Errored:
			return
		case evaluator.EffectPending:
			if !e.resolveEffect(state.Effect) {
				return
			}
		default:
			e.ev.Step(e.cb)
		}
	}
	scope.Debugf("session %s: frame budget of %d steps exhausted while still running", e.sessionID, MaxStepsPerFrame)
}

// resolveEffect handles one suspended effect and reports whether the
// evaluator is runnable again afterward.
func (e *Engine) resolveEffect(eff effect.Effect) bool {
	switch eff.Kind {
	case effect.ApplyProvidedFunction:
		if e.handler == nil {
			e.ev.TriggerEffect(effect.NewProvidedFunctionNotFound(eff.FunctionID))
			return false
		}
		output, err := e.handler(eff.FunctionID, eff.Input)
		if err != nil {
			e.ev.TriggerEffect(effect.NewUnexpectedInput(effect.ExpectedFunction, eff.Input))
			return false
		}
		if err := e.ev.ExitFromProvidedFunction(output); err != nil {
			scope.Errorf("session %s: %v", e.sessionID, err)
			return false
		}
		return true

	default:
		// UnexpectedInput and ProvidedFunctionNotFound are informational
		// (§7): nothing resumes evaluation until the codebase changes and
		// the editor resets it.
		return false
	}
}

// Codebase returns the engine's codebase, for a host that needs to build an
// initial program through the code/compiler APIs directly (e.g. scenario 5
// of the design's testable properties) rather than through editor events.
func (e *Engine) Codebase() *code.Codebase { return e.cb }

// Evaluator returns the engine's evaluator.
func (e *Engine) Evaluator() *evaluator.Evaluator { return e.ev }

func (e *Engine) publish() {
	snap := Snapshot{
		SessionID:   e.sessionID,
		Root:        e.cb.Root(),
		Errors:      e.cb.Errors().All(),
		Cursor:      e.ed.Cursor(),
		Buffer:      e.ed.Buffer(),
		EditorMode:  e.ed.Mode(),
		EvalState:   e.ev.State(),
		CallStack:   e.ev.CallStack(),
		ChangeCount: e.cb.ChangeCount(),
	}
	e.published.Store(snap)
}

// Snapshot returns the most recently published Snapshot. Safe to call from
// any goroutine; never blocks the engine thread.
func (e *Engine) Snapshot() Snapshot {
	v := e.published.Load()
	if v == nil {
		return Snapshot{SessionID: e.sessionID}
	}
	return v.(Snapshot)
}

// Supervisor runs the three cooperating goroutines §5 describes -- input,
// engine, renderer -- over bounded channels of plain messages, the way
// istio-pkg's ledger_test.go drives concurrent Put calls through an
// errgroup.Group (package code's tests cite the same lineage). The engine
// itself still only ever touches cb/ed/ev from the "engine" goroutine
// Supervisor starts; Input and Render run concurrently with it and
// exchange only Engine's channel-safe accessors (HandleInput, Snapshot).
type Supervisor struct {
	Engine *Engine

	// Input is read by the engine goroutine until ctx is cancelled or the
	// channel is closed; each event is applied via HandleInput.
	Input <-chan editor.Input
	// Commands is read the same way as Input, for non-text commands.
	Commands <-chan editor.Command
	// FrameInterval paces RunFrame calls between input events; zero means
	// run a frame after every input event and nothing else.
	FrameInterval time.Duration
	// Render, if set, is called from its own goroutine once per
	// FrameInterval tick with the latest Snapshot; it must not mutate
	// anything it's handed (§6).
	Render func(Snapshot)
}

// Run starts the engine and (if configured) renderer goroutines and blocks
// until ctx is cancelled or an input/rendering goroutine returns an error.
func (s *Supervisor) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ticker := newTicker(s.FrameInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case in, ok := <-s.Input:
				if !ok {
					return nil
				}
				s.Engine.HandleInput(in)
				if s.FrameInterval <= 0 {
					s.Engine.RunFrame()
				}
			case cmd, ok := <-s.Commands:
				if !ok {
					return nil
				}
				s.Engine.HandleCommand(cmd)
			case <-ticker.C:
				s.Engine.RunFrame()
			}
		}
	})

	if s.Render != nil {
		g.Go(func() error {
			ticker := newTicker(s.FrameInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return nil
				case <-ticker.C:
					s.Render(s.Engine.Snapshot())
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("engine: supervisor: %w", err)
	}
	return nil
}

// newTicker returns a ticker that fires at d, or a minimal placeholder
// ticker that never fires on its own if d is zero -- RunFrame is still
// driven by input events in that configuration.
func newTicker(d time.Duration) *time.Ticker {
	if d <= 0 {
		d = 24 * time.Hour
	}
	return time.NewTicker(d)
}
