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

// Package options holds the flags shared by the covbadge commands.
package options

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"

	"k8s.io/covbadge/pkg/config"
	"k8s.io/covbadge/pkg/coverage"
	"k8s.io/covbadge/pkg/flagutil"
	pkgio "k8s.io/covbadge/pkg/io"
)

// Options are the raw flag values. Only flags the user set override the
// config file.
type Options struct {
	ConfigFile  string
	Source      string
	Input       string
	ToolCommand string
	Profiles    []string

	Output      string
	Style       string
	Label       string
	RedBelow    float64
	YellowBelow float64
	MetricsFile string

	Storage flagutil.StorageClientOptions
}

// AddSourceFlags registers the flags that select where coverage comes from.
func (o *Options) AddSourceFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringVar(&o.ConfigFile, "config", "", "optional YAML config file; flags override its values")
	fs.StringVar(&o.Source, "source", d.Source, "where to read coverage from: report, tool or profile")
	fs.StringVarP(&o.Input, "input", "i", d.Input, "report file read by the report source (local path or gs://, s3:// URL)")
	fs.StringVar(&o.ToolCommand, "tool-command", strings.Join(d.ToolCommand, " "), "command run by the tool source")
	fs.StringSliceVar(&o.Profiles, "profile", nil, "cover profile path or ** glob read by the profile source, may be repeated")
	o.Storage.AddFlags(fs)
}

// AddBadgeFlags registers the flags that shape and place the badge.
func (o *Options) AddBadgeFlags(fs *pflag.FlagSet) {
	d := config.Default()
	fs.StringVarP(&o.Output, "output", "o", d.Output, "badge destination (local path or gs://, s3:// URL)")
	fs.StringVar(&o.Style, "style", d.Style, "badge style: plain or labelled")
	fs.StringVar(&o.Label, "label", d.Label, "left-hand text of labelled badges")
	fs.Float64Var(&o.RedBelow, "red-below", d.Thresholds.RedBelow, "percentage under which the badge is red")
	fs.Float64Var(&o.YellowBelow, "yellow-below", d.Thresholds.YellowBelow, "percentage under which the badge is yellow")
	fs.StringVar(&o.MetricsFile, "metrics-file", "", "if set, write the percentage as Prometheus metrics to this file")
}

// Resolve merges defaults, the config file and the flags set on fs, then
// validates the result.
func (o *Options) Resolve(fs *pflag.FlagSet) (*config.Config, error) {
	c := config.Default()
	if o.ConfigFile != "" {
		var err error
		if c, err = config.Load(o.ConfigFile); err != nil {
			return nil, err
		}
		logrus.WithField("path", o.ConfigFile).Debug("Loaded config file")
	}

	overrides := map[string]func(){
		"source":       func() { c.Source = o.Source },
		"input":        func() { c.Input = o.Input },
		"tool-command": func() { c.ToolCommand = strings.Fields(o.ToolCommand) },
		"profile":      func() { c.Profiles = o.Profiles },
		"output":       func() { c.Output = o.Output },
		"style":        func() { c.Style = o.Style },
		"label":        func() { c.Label = o.Label },
		"red-below":    func() { c.Thresholds.RedBelow = o.RedBelow },
		"yellow-below": func() { c.Thresholds.YellowBelow = o.YellowBelow },
		"metrics-file": func() { c.MetricsFile = o.MetricsFile },
	}
	fs.Visit(func(f *pflag.Flag) {
		if apply, ok := overrides[f.Name]; ok {
			apply()
		}
	})

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Opener returns a storage client. The GCS client is only set up when a
// path of c or a credentials flag asks for remote storage.
func (o *Options) Opener(ctx context.Context, c *config.Config) (pkgio.Opener, error) {
	remote := !pkgio.IsLocal(c.Output) ||
		(coverage.Source(c.Source) == coverage.SourceReport && !pkgio.IsLocal(c.Input))
	if !remote && !o.Storage.HasGCSCredentials() && !o.Storage.HasS3Credentials() {
		return pkgio.NewLocalOpener(), nil
	}
	return o.Storage.StorageClient(ctx)
}
