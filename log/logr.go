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
	"fmt"

	"github.com/go-logr/logr"
)

// zapLogger adapts a *Scope to logr.Logger, exactly as istio.io/pkg/log's
// own log/logr.go adapts its Scope: a consumer that wants to depend on the
// generic logr interface (rather than this package's own Scope type)
// gets one without this package losing level-gating or scope labels.
// We treat levels 0-3 as info level and 4+ as debug; there are no warnings,
// errors are passed through as errors.
type zapLogger struct {
	l      *Scope
	lvl    int
	lvlSet bool
}

const debugLevelThreshold = 3

func (zl *zapLogger) Enabled() bool {
	if zl.lvlSet && zl.lvl > debugLevelThreshold {
		return zl.l.DebugEnabled()
	}
	return zl.l.InfoEnabled()
}

func (zl *zapLogger) Info(msg string, keysAndVals ...interface{}) {
	s := zl.l
	if len(keysAndVals) > 0 {
		s = s.WithLabels(keysAndVals...)
	}
	if zl.lvlSet && zl.lvl > debugLevelThreshold {
		s.Debug(msg)
	} else {
		s.Info(msg)
	}
}

func (zl *zapLogger) Error(err error, msg string, keysAndVals ...interface{}) {
	s := zl.l
	if len(keysAndVals) > 0 {
		s = s.WithLabels(keysAndVals...)
	}
	if s.ErrorEnabled() {
		s.Error(fmt.Sprintf("%v: %s", err, msg))
	}
}

func (zl *zapLogger) V(level int) logr.Logger {
	return &zapLogger{
		lvl:    zl.lvl + level,
		l:      zl.l,
		lvlSet: true,
	}
}

func (zl *zapLogger) WithValues(keysAndValues ...interface{}) logr.Logger {
	return NewLogr(zl.l.WithLabels(keysAndValues...))
}

func (zl *zapLogger) WithName(name string) logr.Logger {
	return zl
}

// NewLogr returns a logr.Logger backed by s, for handing to a dependency
// that only wants to depend on the generic logr interface rather than this
// package's own Scope type -- debugserver's request-logging middleware is
// one such consumer.
func NewLogr(s *Scope) logr.Logger {
	return &zapLogger{
		l:      s,
		lvl:    0,
		lvlSet: false,
	}
}
