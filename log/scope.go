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

// Package log is a trimmed adaptation of istio.io/pkg/log: independently
// levelled, named scopes backed by a single shared zap.Logger. Every
// long-lived component (the editor, the evaluator, the engine) registers
// its own scope via RegisterScope instead of calling fmt.Println, so an
// operator can silence "evaluator" chatter while leaving "engine" at Info.
package log

import (
	"fmt"
	"os"
	"sort"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level is a logging severity, ordered least to most verbose.
type Level int32

const (
	NoneLevel Level = iota
	FatalLevel
	ErrorLevel
	WarnLevel
	InfoLevel
	DebugLevel
)

func (l Level) String() string {
	switch l {
	case NoneLevel:
		return "none"
	case FatalLevel:
		return "fatal"
	case ErrorLevel:
		return "error"
	case WarnLevel:
		return "warn"
	case InfoLevel:
		return "info"
	case DebugLevel:
		return "debug"
	default:
		return "unknown"
	}
}

func (l Level) zapLevel() zapcore.Level {
	switch l {
	case FatalLevel:
		return zapcore.FatalLevel
	case ErrorLevel:
		return zapcore.ErrorLevel
	case WarnLevel:
		return zapcore.WarnLevel
	case InfoLevel:
		return zapcore.InfoLevel
	default:
		return zapcore.DebugLevel
	}
}

// Scope is a named, independently levelled logger. The zero value is never
// valid; obtain one through RegisterScope.
type Scope struct {
	name        string
	description string
	level       *atomic.Int32
	fields      []zapcore.Field
}

var (
	scopesMu sync.Mutex
	scopes   = map[string]*Scope{}

	coreMu sync.Mutex
	core   zapcore.Core = defaultCore()
)

// RegisterScope returns the named scope, creating it at InfoLevel the first
// time it's requested. Calling it again with the same name returns the same
// *Scope, so packages can register at init time without coordinating.
func RegisterScope(name, description string, _ callerSkip) *Scope {
	scopesMu.Lock()
	defer scopesMu.Unlock()

	if s, ok := scopes[name]; ok {
		return s
	}
	s := &Scope{name: name, description: description, level: atomic.NewInt32(int32(InfoLevel))}
	scopes[name] = s
	return s
}

// callerSkip exists only so RegisterScope keeps istio-pkg's three-argument
// call shape (name, description, callerSkip); this core doesn't vary the
// zap caller-skip depth per scope.
type callerSkip = int

// Scopes returns every registered scope, sorted by name.
func Scopes() []*Scope {
	scopesMu.Lock()
	defer scopesMu.Unlock()
	out := make([]*Scope, 0, len(scopes))
	for _, s := range scopes {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}

// FindScope looks up a previously registered scope by name.
func FindScope(name string) (*Scope, bool) {
	scopesMu.Lock()
	defer scopesMu.Unlock()
	s, ok := scopes[name]
	return s, ok
}

func (s *Scope) Name() string        { return s.name }
func (s *Scope) Description() string { return s.description }

// SetLevel changes the scope's minimum logged severity.
func (s *Scope) SetLevel(l Level) { s.level.Store(int32(l)) }

// Level returns the scope's current minimum logged severity.
func (s *Scope) Level() Level { return Level(s.level.Load()) }

// WithLabels returns a child scope that shares s's name and level but
// attaches the given key/value pairs to every subsequent log line.
func (s *Scope) WithLabels(keysAndValues ...interface{}) *Scope {
	fields := make([]zapcore.Field, 0, len(s.fields)+len(keysAndValues)/2)
	fields = append(fields, s.fields...)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, _ := keysAndValues[i].(string)
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return &Scope{name: s.name, description: s.description, level: s.level, fields: fields}
}

func (s *Scope) enabled(l Level) bool { return s.Level() >= l }

// DebugEnabled reports whether s would currently log a Debug line, without
// paying for formatting one -- used by the logr.Logger adapter (logr.go) to
// answer Enabled() the way the teacher's zapLogger does.
func (s *Scope) DebugEnabled() bool { return s.enabled(DebugLevel) }

// InfoEnabled reports whether s would currently log an Info line.
func (s *Scope) InfoEnabled() bool { return s.enabled(InfoLevel) }

// ErrorEnabled reports whether s would currently log an Error line.
func (s *Scope) ErrorEnabled() bool { return s.enabled(ErrorLevel) }

func (s *Scope) log(l Level, msg string) {
	if !s.enabled(l) {
		return
	}
	coreMu.Lock()
	c := core
	coreMu.Unlock()

	fields := append([]zapcore.Field{zap.String("scope", s.name)}, s.fields...)
	ent := zapcore.Entry{Level: l.zapLevel(), Message: msg, LoggerName: s.name}
	if ce := c.Check(ent, nil); ce != nil {
		ce.Write(fields...)
	}
	if l == FatalLevel {
		os.Exit(1)
	}
}

func (s *Scope) Debug(msg string)                    { s.log(DebugLevel, msg) }
func (s *Scope) Debugf(format string, a ...interface{}) { s.log(DebugLevel, fmt.Sprintf(format, a...)) }
func (s *Scope) Info(msg string)                     { s.log(InfoLevel, msg) }
func (s *Scope) Infof(format string, a ...interface{})  { s.log(InfoLevel, fmt.Sprintf(format, a...)) }
func (s *Scope) Warn(msg string)                     { s.log(WarnLevel, msg) }
func (s *Scope) Warnf(format string, a ...interface{})  { s.log(WarnLevel, fmt.Sprintf(format, a...)) }
func (s *Scope) Error(msg string)                    { s.log(ErrorLevel, msg) }
func (s *Scope) Errorf(format string, a ...interface{}) { s.log(ErrorLevel, fmt.Sprintf(format, a...)) }
func (s *Scope) Fatal(msg string)                    { s.log(FatalLevel, msg) }
func (s *Scope) Fatalf(format string, a ...interface{}) { s.log(FatalLevel, fmt.Sprintf(format, a...)) }

func defaultCore() zapcore.Core {
	enc := zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	return zapcore.NewCore(enc, zapcore.Lock(os.Stderr), zapcore.DebugLevel)
}

func setCore(c zapcore.Core) {
	coreMu.Lock()
	core = c
	coreMu.Unlock()
}
