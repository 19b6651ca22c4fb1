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

package main

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hannobraun/crosscut/debugserver"
	"github.com/hannobraun/crosscut/engine"
	"github.com/hannobraun/crosscut/evaluator"
	"github.com/hannobraun/crosscut/log"
	"github.com/hannobraun/crosscut/packages"
	"github.com/hannobraun/crosscut/value"
	"github.com/hannobraun/crosscut/viperconfig"
)

var scope = log.RegisterScope("crosscutctl", "the CLI host", 0)

type runOptions struct {
	script     string
	logLevel   string
	packages   string
	opaques    string
	stepBudget int
	debugAddr  string
	probePath  string
}

func bindRunFlags(cmd *cobra.Command, o *runOptions) {
	cmd.Flags().StringVar(&o.script, "script", "", "Path to a script file to replay into the editor, one character per input event")
	cmd.Flags().StringVar(&o.logLevel, "log-level", "info", "Default level for every log scope (debug, info, warn, error)")
	cmd.Flags().StringVar(&o.packages, "packages", "", "Comma-separated provided-function names to register before loading the script")
	cmd.Flags().StringVar(&o.opaques, "opaques", "", "Path to a YAML file of {id, display} rows for host-injected opaque values")
	cmd.Flags().IntVar(&o.stepBudget, "step-budget", engine.MaxStepsPerFrame, "Limits the run to 1+1048576/step-budget frames of up to 1024 evaluator steps each")
	cmd.Flags().StringVar(&o.debugAddr, "debug-addr", "", "If set, serve the read-only debug JSON API on this address (e.g. :7777)")
	cmd.Flags().StringVar(&o.probePath, "probe-path", "", "If set, touch this file every second for a liveness probe to watch")
}

// runCommand runs a script to completion (or suspension), printing the
// resulting evaluator state, matching the non-interactive half of §5's
// engine thread: there is no input goroutine here, only a one-shot replay
// of the script into HandleInput followed by RunFrame calls.
func runCommand(v *viper.Viper) *cobra.Command {
	var o runOptions

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Load a script and run it to completion",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := viperconfig.ProcessViperConfig(cmd, v); err != nil {
				return err
			}
			return runScript(cmd, o)
		},
	}
	bindRunFlags(cmd, &o)
	return cmd
}

func runScript(cmd *cobra.Command, o runOptions) error {
	if err := configureLogging(o.logLevel); err != nil {
		return err
	}

	fs := afero.NewOsFs()
	opaques, err := loadOpaqueTable(fs, o.opaques)
	if err != nil {
		return err
	}

	pkgs := packages.New()
	if o.packages != "" {
		if err := pkgs.RegisterAll(strings.Split(o.packages, ",")...); err != nil {
			return fmt.Errorf("crosscutctl: registering packages: %w", err)
		}
	}

	e := engine.New(pkgs, unresolvedFunctionHandler(opaques))

	if o.script != "" {
		if err := feedScript(fs, o.script, e); err != nil {
			return err
		}
	}

	if o.debugAddr != "" {
		srv := debugserver.New(e)
		go func() {
			scope.Infof("debug server listening on %s", o.debugAddr)
			if err := http.ListenAndServe(o.debugAddr, srv.Handler()); err != nil {
				scope.Errorf("debug server stopped: %v", err)
			}
		}()
	}

	if o.probePath != "" {
		e.WithLiveness(context.Background(), o.probePath, time.Second)
	}

	for i := 0; i < maxFrames(o.stepBudget); i++ {
		e.RunFrame()
		if e.Evaluator().State().Kind != evaluator.Running {
			break
		}
	}

	snap := e.Snapshot()
	fmt.Fprintf(cmd.OutOrStdout(), "state: %s\n", snap.EvalState)
	return nil
}

// unresolvedFunctionHandler reports every ApplyProvidedFunction effect as
// UnexpectedInput: crosscutctl ships no built-in provided functions of its
// own, so any script depending on one suspends informationally rather than
// the host silently fabricating a result. opaques is threaded through so a
// future handler built on top of this one can surface a display string for
// whatever it returns; it is unused by this minimal handler itself.
func unresolvedFunctionHandler(_ map[int]string) engine.EffectHandler {
	return func(id int, input value.Value) (value.Value, error) {
		return value.Value{}, fmt.Errorf("crosscutctl: no handler registered for provided function %d", id)
	}
}

// maxFrames bounds how many RunFrame calls `run` takes overall, 1 +
// 2^20/stepBudget, so a script that never finishes (or that keeps
// suspending on the same unresolved effect) can't hang the CLI forever.
// stepBudget does not change the size of a frame: each RunFrame still takes
// up to engine.MaxStepsPerFrame steps.
func maxFrames(stepBudget int) int {
	if stepBudget <= 0 {
		stepBudget = engine.MaxStepsPerFrame
	}
	return 1 + (1 << 20 / stepBudget)
}
