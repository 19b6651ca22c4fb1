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

// Package viperconfig wires a cobra command's flags to a
// viper.Viper instance and an optional --config file, so crosscut.yaml can
// set any flag the CLI exposes while explicit command-line flags still
// win.
package viperconfig

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AddConfigFlag registers the --config flag; cmd's Run/RunE should call
// ProcessViperConfig with the same v before reading any other flag.
func AddConfigFlag(cmd *cobra.Command, v *viper.Viper) {
	cmd.PersistentFlags().String("config", "", "Path to a YAML config file")
	_ = v.BindPFlag("config", cmd.PersistentFlags().Lookup("config"))
}

// ProcessViperConfig reads the --config file named on cmd (if any) into v,
// then copies every value v now holds onto cmd's flags that weren't
// explicitly set on the command line -- config-file values only apply
// where the user didn't already override them on the command itself.
func ProcessViperConfig(cmd *cobra.Command, v *viper.Viper) error {
	if configFile := v.GetString("config"); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("viperconfig: reading %s: %w", configFile, err)
		}
	}

	var firstErr error
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		if f.Changed || !v.IsSet(f.Name) {
			return
		}
		if err := cmd.Flags().Set(f.Name, v.GetString(f.Name)); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("viperconfig: applying %s: %w", f.Name, err)
		}
	})
	return firstErr
}
