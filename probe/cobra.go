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

package probe

import (
	"fmt"

	"github.com/spf13/cobra"
)

func CobraCommand() *cobra.Command {
	var (
		probeOptions Options
	)

	prb := &cobra.Command{
		Use:   "probe",
		Short: "Check the liveness or readiness of a locally-running server",
		Args:  cobra.ExactArgs(0),
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !probeOptions.IsValid() {
				return fmt.Errorf("some options are not valid")
			}
			if err := NewFileClient(&probeOptions).GetStatus(); err != nil {
				return fmt.Errorf("fail on inspecting path %s: %v", probeOptions.Path, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "OK")
			return nil
		},
	}
	prb.PersistentFlags().StringVar(&probeOptions.Path, "probe-path", "",
		"Path of the file for checking the availability.")
	prb.PersistentFlags().DurationVar(&probeOptions.UpdateInterval, "interval", 0,
		"Duration used for checking the target file's last modified time.")

	return prb
}
