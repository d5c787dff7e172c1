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

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"k8s.io/covbadge/cmd/extract"
	"k8s.io/covbadge/cmd/generate"
	"k8s.io/covbadge/pkg/logrusutil"
)

func newRootCommand() *cobra.Command {
	logOpts := logrusutil.Options{}
	rootCommand := generate.Bind(&cobra.Command{
		Use:   "covbadge",
		Short: "covbadge renders a Go test coverage percentage as an SVG badge.",
		Long: `covbadge renders a Go test coverage percentage as an SVG badge.

Without a subcommand it behaves like "covbadge generate": it reads coverage.out,
finds the "coverage: NN.N%" summary and writes coverage_badge.svg.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logrusutil.Init("covbadge", os.Stderr, logOpts)
		},
	})
	rootCommand.PersistentFlags().StringVar(&logOpts.Level, "log-level", "info", "log level: debug, info, warn, error")
	rootCommand.PersistentFlags().BoolVar(&logOpts.JSON, "log-json", false, "log as JSON")

	rootCommand.AddCommand(generate.MakeCommand())
	rootCommand.AddCommand(extract.MakeCommand())
	return rootCommand
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
