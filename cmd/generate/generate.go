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

package generate

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"k8s.io/covbadge/cmd/options"
	"k8s.io/covbadge/pkg/badge"
	"k8s.io/covbadge/pkg/config"
	"k8s.io/covbadge/pkg/coverage"
	pkgio "k8s.io/covbadge/pkg/io"
	"k8s.io/covbadge/pkg/metrics"
)

// Bind adds the generate flags to cmd and makes generating a badge its action.
func Bind(cmd *cobra.Command) *cobra.Command {
	o := &options.Options{}
	o.AddSourceFlags(cmd.Flags())
	o.AddBadgeFlags(cmd.Flags())
	cmd.Args = cobra.NoArgs
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		c, err := o.Resolve(cmd.Flags())
		if err != nil {
			return err
		}
		opener, err := o.Opener(cmd.Context(), c)
		if err != nil {
			return err
		}
		return run(cmd.Context(), c, opener, coverage.ExecRunner, cmd.OutOrStdout())
	}
	return cmd
}

// MakeCommand returns a `generate` command.
func MakeCommand() *cobra.Command {
	return Bind(&cobra.Command{
		Use:   "generate",
		Short: "Extracts a coverage percentage and writes it as an SVG badge.",
		Long: `Reads a coverage percentage from a go test report (default coverage.out),
the output of a coverage tool, or raw cover profiles, and writes a badge colored
red below 80%, yellow below 90% and green otherwise (default coverage_badge.svg).
Nothing is written when the percentage cannot be determined.`,
	})
}

func run(ctx context.Context, c *config.Config, opener pkgio.Opener, runner coverage.Runner, out io.Writer) error {
	extractor := &coverage.Extractor{Opener: opener, Run: runner}
	p, err := extractor.Extract(ctx, c.ExtractOptions())
	if err != nil {
		return err
	}

	opts := c.BadgeOptions()
	svg, err := badge.Render(p, opts)
	if err != nil {
		return err
	}

	contentType := badge.ContentType
	writerOpts := pkgio.WriterOptions{ContentType: &contentType}
	if c.CacheControl != "" {
		writerOpts.CacheControl = &c.CacheControl
	}
	if err := pkgio.WriteContent(ctx, opener, c.Output, svg, writerOpts); err != nil {
		return fmt.Errorf("writing badge: %w", err)
	}
	color := opts.Scale.Color(p)
	logrus.WithFields(logrus.Fields{
		"output":     c.Output,
		"percentage": p,
		"color":      color,
		"style":      opts.Style,
	}).Info("Wrote coverage badge")

	if c.MetricsFile != "" {
		r := metrics.NewRecorder()
		r.Observe(c.Source, color, p, c.Thresholds.RedBelow, c.Thresholds.YellowBelow)
		if err := r.WriteFile(c.MetricsFile); err != nil {
			return fmt.Errorf("writing metrics: %w", err)
		}
	}

	fmt.Fprintln(out, "Badge generated successfully!")
	return nil
}
