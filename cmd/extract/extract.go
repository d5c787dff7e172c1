/*
Copyright 2026 The Kubernetes Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package extract

import (
	"fmt"

	"github.com/spf13/cobra"

	"k8s.io/covbadge/cmd/options"
	"k8s.io/covbadge/pkg/badge"
	"k8s.io/covbadge/pkg/coverage"
)

// MakeCommand returns an `extract` command.
func MakeCommand() *cobra.Command {
	o := &options.Options{}
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Prints the coverage percentage without rendering a badge.",
		Long: `Reads the coverage percentage the same way generate does and prints it with
one decimal, e.g. "85.5". Fails when the percentage cannot be determined.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.Resolve(cmd.Flags())
			if err != nil {
				return err
			}
			opener, err := o.Opener(cmd.Context(), c)
			if err != nil {
				return err
			}
			e := &coverage.Extractor{Opener: opener, Run: coverage.ExecRunner}
			p, err := e.Extract(cmd.Context(), c.ExtractOptions())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), badge.FormatPercent(p))
			return nil
		},
	}
	o.AddSourceFlags(cmd.Flags())
	return cmd
}
