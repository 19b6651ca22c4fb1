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
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/hannobraun/crosscut/log"
	"github.com/hannobraun/crosscut/probe"
	"github.com/hannobraun/crosscut/viperconfig"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootCommand assembles crosscutctl's subcommands the way istio-pkg's own
// CLIs compose a cobra.Command tree from independently packaged
// CobraCommand() constructors (probe.CobraCommand is the teacher's own
// package, unmodified; run and watch are this module's).
func rootCommand() *cobra.Command {
	v := viper.GetViper()

	root := &cobra.Command{
		Use:           "crosscutctl",
		Short:         "Run and inspect a Crosscut live-coding session",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	viperconfig.AddConfigFlag(root, v)

	root.AddCommand(runCommand(v))
	root.AddCommand(watchCommand(v))
	root.AddCommand(probe.CobraCommand())

	return root
}

// configureLogging applies level to every registered scope, the same
// DefaultLevel-plus-overrides shape log.Configure expects.
func configureLogging(level string) error {
	opts := log.DefaultOptions()
	switch level {
	case "debug":
		opts.DefaultLevel = log.DebugLevel
	case "warn":
		opts.DefaultLevel = log.WarnLevel
	case "error":
		opts.DefaultLevel = log.ErrorLevel
	default:
		opts.DefaultLevel = log.InfoLevel
	}
	return log.Configure(opts)
}
