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

// Package debugserver implements the read-only HTTP renderer §6 of the
// design calls for: a host that consumes the codebase, the editor cursor
// and buffer, and the evaluator state, without ever mutating any of them.
// Its route shape -- one mux.Router, one handler per topic, each rendering
// JSON -- is adapted from istio-pkg's ctrlz/topics/env.go, trimmed to the
// JSON half of that file's JSONRouter/HTMLRouter split: a debugger attached
// to a live language core has no use for ctrlz's HTML topic pages.
package debugserver

import (
	"encoding/json"
	"net/http"

	"github.com/go-logr/logr"
	"github.com/gorilla/mux"

	"github.com/hannobraun/crosscut/code"
	"github.com/hannobraun/crosscut/editor"
	"github.com/hannobraun/crosscut/engine"
	"github.com/hannobraun/crosscut/evaluator"
	"github.com/hannobraun/crosscut/log"
)

var scope = log.RegisterScope("debugserver", "the read-only debug HTTP server", 0)

// Server exposes one Engine's Snapshot over a handful of read-only JSON
// routes.
type Server struct {
	engine *engine.Engine
	router *mux.Router
	log    logr.Logger
}

// New builds a Server over e. Call Handler to obtain the http.Handler to
// serve (directly, or mounted under a larger mux.Router).
func New(e *engine.Engine) *Server {
	s := &Server{engine: e, router: mux.NewRouter(), log: log.NewLogr(scope)}

	s.router.Use(s.logRequest)
	s.router.StrictSlash(true)
	s.router.HandleFunc("/session", s.session).Methods(http.MethodGet)
	s.router.HandleFunc("/codebase", s.codebase).Methods(http.MethodGet)
	s.router.HandleFunc("/errors", s.errors).Methods(http.MethodGet)
	s.router.HandleFunc("/editor", s.editor).Methods(http.MethodGet)
	s.router.HandleFunc("/evaluator", s.evaluator).Methods(http.MethodGet)

	return s
}

// logRequest logs every request through a logr.Logger rather than this
// package's own log.Scope directly -- a mux middleware is exactly the kind
// of generic-interface consumer the logr adapter exists for, since
// middleware shouldn't need to import this module's own logging type.
func (s *Server) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.log.Info("debug request", "method", r.Method, "path", r.URL.Path)
		next.ServeHTTP(w, r)
	})
}

// Handler returns the http.Handler serving every route above.
func (s *Server) Handler() http.Handler { return s.router }

func renderJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type sessionView struct {
	SessionID   string `json:"sessionId"`
	ChangeCount int    `json:"changeCount"`
}

func (s *Server) session(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Snapshot()
	renderJSON(w, http.StatusOK, sessionView{
		SessionID:   snap.SessionID.String(),
		ChangeCount: snap.ChangeCount,
	})
}

type nodeView struct {
	Path     string     `json:"path"`
	Kind     string     `json:"kind"`
	Token    string     `json:"token,omitempty"`
	Value    int32      `json:"value,omitempty"`
	Children []nodeView `json:"children,omitempty"`
}

// renderNode projects a code.Node into a JSON-friendly tree; it is the
// renderer's own view, never shared with or mutated by the codebase it
// reads (§6 forbids a renderer from mutating anything it consumes).
func renderNode(cb *code.Codebase, loc code.LocatedNode) nodeView {
	v := nodeView{
		Path:  loc.Path.String(),
		Kind:  loc.Node.Kind.String(),
		Token: loc.Node.Token,
		Value: loc.Node.Value,
	}
	for i, h := range loc.Node.Children {
		childPath := code.NewPath(h, loc.Path, i, cb.Nodes())
		v.Children = append(v.Children, renderNode(cb, cb.NodeAt(childPath)))
	}
	return v
}

func (s *Server) codebase(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Snapshot()
	cb := s.engine.Codebase()
	renderJSON(w, http.StatusOK, renderNode(cb, snap.Root))
}

type pathErrorView struct {
	Path string `json:"path"`
	Kind string `json:"kind"`
}

func (s *Server) errors(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Snapshot()
	out := make([]pathErrorView, len(snap.Errors))
	for i, pe := range snap.Errors {
		out[i] = pathErrorView{Path: pe.Path.String(), Kind: pe.Err.Kind.String()}
	}
	renderJSON(w, http.StatusOK, out)
}

type editorView struct {
	CursorPath string `json:"cursorPath"`
	Index      int    `json:"index"`
	AtAddNode  bool   `json:"atAddNode"`
	Buffer     string `json:"buffer"`
	Mode       string `json:"mode"`
}

func (s *Server) editor(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Snapshot()
	mode := "edit"
	if snap.EditorMode == editor.ModePaused {
		mode = "paused"
	}
	renderJSON(w, http.StatusOK, editorView{
		CursorPath: snap.Cursor.Path.String(),
		Index:      snap.Cursor.Index,
		AtAddNode:  snap.Cursor.AtAddNode,
		Buffer:     snap.Buffer,
		Mode:       mode,
	})
}

type frameView struct {
	BodyPath  string `json:"bodyPath"`
	Parameter string `json:"parameter,omitempty"`
}

type evaluatorView struct {
	State  string      `json:"state"`
	Path   string      `json:"path,omitempty"`
	Output string      `json:"output,omitempty"`
	Effect string      `json:"effect,omitempty"`
	Frames []frameView `json:"frames"`
}

// evaluator renders the evaluator's state plus a read-only projection of
// its call stack (DESIGN.md's "active functions" view, supplemented from
// original_source's capi/debugger/src/model/active_functions.rs).
func (s *Server) evaluator(w http.ResponseWriter, _ *http.Request) {
	snap := s.engine.Snapshot()
	view := evaluatorView{State: snap.EvalState.Kind.String()}

	switch snap.EvalState.Kind {
	case evaluator.Running, evaluator.Errored:
		view.Path = snap.EvalState.Path.String()
	case evaluator.EffectPending:
		view.Path = snap.EvalState.Path.String()
		view.Effect = snap.EvalState.Effect.String()
	case evaluator.Finished:
		view.Output = snap.EvalState.Output.String()
	}

	for _, f := range snap.CallStack {
		view.Frames = append(view.Frames, frameView{
			BodyPath:  f.BodyPath.String(),
			Parameter: f.ParamName,
		})
	}

	renderJSON(w, http.StatusOK, view)
}
