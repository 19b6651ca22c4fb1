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
	"github.com/hannobraun/crosscut/editor"
	"github.com/hannobraun/crosscut/engine"
	"github.com/hannobraun/crosscut/evaluator"
	"github.com/hannobraun/crosscut/filewatcher"
	"github.com/hannobraun/crosscut/packages"
	"github.com/hannobraun/crosscut/viperconfig"
)

type watchOptions struct {
	logLevel   string
	packages   string
	opaques    string
	stepBudget int
	debugAddr  string
	probePath  string
}

func bindWatchFlags(cmd *cobra.Command, o *watchOptions) {
	cmd.Flags().StringVar(&o.logLevel, "log-level", "info", "Default level for every log scope (debug, info, warn, error)")
	cmd.Flags().StringVar(&o.packages, "packages", "", "Comma-separated provided-function names to register before loading the script")
	cmd.Flags().StringVar(&o.opaques, "opaques", "", "Path to a YAML file of {id, display} rows for host-injected opaque values")
	cmd.Flags().IntVar(&o.stepBudget, "step-budget", engine.MaxStepsPerFrame, "Limits each reload to 1+1048576/step-budget frames of up to 1024 evaluator steps each")
	cmd.Flags().StringVar(&o.debugAddr, "debug-addr", "", "If set, serve the read-only debug JSON API on this address (e.g. :7777)")
	cmd.Flags().StringVar(&o.probePath, "probe-path", "", "If set, touch this file every second for a liveness probe to watch")
}

// watchCommand reloads a script file into a running engine every time it
// changes on disk, generalizing istio-pkg's filewatcher.worker from
// reloading a config file to reloading a whole program: every reload clears
// the codebase back to Empty and replays the file's content from scratch,
// since a saved edit may have changed any part of the tree, not just
// appended to it.
func watchCommand(v *viper.Viper) *cobra.Command {
	var o watchOptions

	cmd := &cobra.Command{
		Use:   "watch <script>",
		Short: "Reload a script into the editor on every save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := viperconfig.ProcessViperConfig(cmd, v); err != nil {
				return err
			}
			return watchScript(cmd, args[0], o)
		},
	}
	bindWatchFlags(cmd, &o)
	return cmd
}

func watchScript(cmd *cobra.Command, path string, o watchOptions) error {
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

	w, err := filewatcher.New(path)
	if err != nil {
		return fmt.Errorf("crosscutctl: watching %s: %w", path, err)
	}
	defer w.Close()

	reload := func() error {
		e.HandleCommand(editor.Clear)
		if err := feedScript(fs, path, e); err != nil {
			return err
		}
		for i := 0; i < maxFrames(o.stepBudget); i++ {
			e.RunFrame()
			if e.Evaluator().State().Kind != evaluator.Running {
				break
			}
		}
		snap := e.Snapshot()
		fmt.Fprintf(cmd.OutOrStdout(), "reloaded %s: %s\n", path, snap.EvalState)
		return nil
	}

	if err := reload(); err != nil {
		return err
	}

	scope.Infof("watching %s for changes", path)
	for range w.Changed() {
		if err := reload(); err != nil {
			scope.Errorf("reload failed: %v", err)
		}
	}
	return nil
}
