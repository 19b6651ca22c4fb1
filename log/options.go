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

package log

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures the process-wide log sink every Scope writes through.
// It mirrors the handful of knobs istio-pkg's log/options.go exposes to its
// cobra command: a JSON-vs-console encoding switch and an optional rotating
// file sink, wired here through gopkg.in/natefinch/lumberjack.v2 exactly as
// the teacher package does for its own rolling log file.
type Options struct {
	// JSON switches the console encoder for zapcore's JSON encoder, for
	// log-shipping deployments.
	JSON bool

	// OutputPath is an additional file the log core writes to, besides
	// stderr. Empty means stderr only.
	OutputPath string

	// RotationMaxSizeMB, RotationMaxAgeDays and RotationMaxBackups control
	// lumberjack's rotation of OutputPath; zero means lumberjack's own
	// defaults.
	RotationMaxSizeMB  int
	RotationMaxAgeDays int
	RotationMaxBackups int

	// DefaultLevel sets every already-registered scope to this level; scopes
	// registered afterward still start at InfoLevel.
	DefaultLevel Level

	// ScopeLevels overrides DefaultLevel for specific, already-registered
	// scope names.
	ScopeLevels map[string]Level
}

// DefaultOptions returns console-encoded, stderr-only logging at InfoLevel.
func DefaultOptions() *Options {
	return &Options{DefaultLevel: InfoLevel}
}

// Configure rebuilds the shared zap core from opts and applies its level
// overrides to every currently registered scope. Later RegisterScope calls
// still default to InfoLevel; call Configure again after registering new
// scopes if they need a non-default level.
func Configure(opts *Options) error {
	var enc zapcore.Encoder
	cfg := zap.NewProductionEncoderConfig()
	cfg.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.JSON {
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(cfg)
	}

	sinks := []zapcore.WriteSyncer{zapcore.Lock(zapcore.AddSync(stderrWriter{}))}
	if opts.OutputPath != "" {
		lj := &lumberjack.Logger{
			Filename:   opts.OutputPath,
			MaxSize:    opts.RotationMaxSizeMB,
			MaxAge:     opts.RotationMaxAgeDays,
			MaxBackups: opts.RotationMaxBackups,
		}
		sinks = append(sinks, zapcore.AddSync(lj))
	}

	c := zapcore.NewCore(enc, zapcore.NewMultiWriteSyncer(sinks...), zapcore.DebugLevel)
	setCore(c)

	for _, s := range Scopes() {
		level := opts.DefaultLevel
		if l, ok := opts.ScopeLevels[s.name]; ok {
			level = l
		}
		s.SetLevel(level)
	}
	return nil
}

// stderrWriter adapts os.Stderr to zapcore.WriteSyncer; kept separate so
// tests can swap sinks without touching defaultCore.
type stderrWriter struct{}

func (stderrWriter) Write(p []byte) (int, error) { return stderrWrite(p) }
func (stderrWriter) Sync() error                 { return nil }

func stderrWrite(p []byte) (int, error) {
	return os.Stderr.Write(p)
}
