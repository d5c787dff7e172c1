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

// Package config loads the optional covbadge configuration file.
//
// An example:
//
//	source: profile
//	profiles:
//	- _output/**/*.cov
//	output: gs://my-badges/covbadge/coverage_badge.svg
//	style: labelled
//	thresholds:
//	  redBelow: 70
//	  yellowBelow: 85
//	colors:
//	  green: "#4c1"
package config

import (
	"errors"
	"fmt"
	"io/ioutil"

	utilerrors "k8s.io/apimachinery/pkg/util/errors"
	"k8s.io/apimachinery/pkg/util/sets"
	"sigs.k8s.io/yaml"

	"k8s.io/covbadge/pkg/badge"
	"k8s.io/covbadge/pkg/coverage"
)

// DefaultOutput is where the badge goes unless configured otherwise.
const DefaultOutput = "coverage_badge.svg"

var sources = sets.NewString(string(coverage.SourceReport), string(coverage.SourceTool), string(coverage.SourceProfile))

// Config holds every setting of a badge run.
type Config struct {
	// Source is one of report, tool or profile.
	Source string `json:"source,omitempty"`
	// Input is the report read by the report source.
	Input string `json:"input,omitempty"`
	// ToolCommand is run by the tool source.
	ToolCommand []string `json:"toolCommand,omitempty"`
	// Profiles are cover profile paths or globs read by the profile source.
	Profiles []string `json:"profiles,omitempty"`

	// Output is a local path or a gs://, s3:// or mem:// URL.
	Output string `json:"output,omitempty"`
	// CacheControl is set on badges written to buckets.
	CacheControl string `json:"cacheControl,omitempty"`
	Style        string `json:"style,omitempty"`
	Label        string `json:"label,omitempty"`

	Thresholds Thresholds `json:"thresholds,omitempty"`
	Colors     Colors     `json:"colors,omitempty"`

	// MetricsFile, when set, receives the percentage as a Prometheus gauge.
	MetricsFile string `json:"metricsFile,omitempty"`
}

// Thresholds are the percentages under which a badge turns red or yellow.
type Thresholds struct {
	RedBelow    float64 `json:"redBelow"`
	YellowBelow float64 `json:"yellowBelow"`
}

// Colors are SVG fill values for each band.
type Colors struct {
	Red    string `json:"red,omitempty"`
	Yellow string `json:"yellow,omitempty"`
	Green  string `json:"green,omitempty"`
}

// Default returns the configuration of a run without flags or file.
func Default() *Config {
	return &Config{
		Source:       string(coverage.SourceReport),
		Input:        coverage.DefaultReport,
		ToolCommand:  append([]string(nil), coverage.DefaultToolCommand...),
		Output:       DefaultOutput,
		CacheControl: "no-cache, max-age=0",
		Style:        string(badge.StylePlain),
		Label:        badge.DefaultLabel,
		Thresholds: Thresholds{
			RedBelow:    badge.DefaultRedBelow,
			YellowBelow: badge.DefaultYellowBelow,
		},
		Colors: Colors{
			Red:    badge.Red,
			Yellow: badge.Yellow,
			Green:  badge.Green,
		},
	}
}

// Load reads path on top of the defaults. Keys missing from the file keep
// their default value.
func Load(path string) (*Config, error) {
	content, err := ioutil.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	return Parse(content)
}

// Parse is Load for content already in memory.
func Parse(content []byte) (*Config, error) {
	c := Default()
	if err := yaml.UnmarshalStrict(content, c); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return c, nil
}

// Validate reports every problem at once.
func (c *Config) Validate() error {
	var errs []error
	if !sources.Has(c.Source) {
		errs = append(errs, fmt.Errorf("source %q is not one of %v", c.Source, sources.List()))
	}
	switch coverage.Source(c.Source) {
	case coverage.SourceReport:
		if c.Input == "" {
			errs = append(errs, errors.New("input is required for the report source"))
		}
	case coverage.SourceTool:
		if len(c.ToolCommand) == 0 {
			errs = append(errs, errors.New("toolCommand is required for the tool source"))
		}
	case coverage.SourceProfile:
		if len(c.Profiles) == 0 {
			errs = append(errs, errors.New("at least one profile is required for the profile source"))
		}
	}
	if c.Output == "" {
		errs = append(errs, errors.New("output is required"))
	}
	if _, err := badge.ParseStyle(c.Style); err != nil {
		errs = append(errs, err)
	}
	if c.Thresholds.RedBelow > c.Thresholds.YellowBelow {
		errs = append(errs, fmt.Errorf("thresholds.redBelow (%v) must not exceed thresholds.yellowBelow (%v)",
			c.Thresholds.RedBelow, c.Thresholds.YellowBelow))
	}
	for _, band := range []struct{ name, color string }{
		{"red", c.Colors.Red},
		{"yellow", c.Colors.Yellow},
		{"green", c.Colors.Green},
	} {
		if band.color == "" {
			errs = append(errs, fmt.Errorf("colors.%s must not be empty", band.name))
		}
	}
	return utilerrors.NewAggregate(errs)
}

// ExtractOptions are the coverage settings of c.
func (c *Config) ExtractOptions() coverage.Options {
	return coverage.Options{
		Source:      coverage.Source(c.Source),
		Input:       c.Input,
		ToolCommand: c.ToolCommand,
		Profiles:    c.Profiles,
	}
}

// BadgeOptions are the rendering settings of c. c must be valid.
func (c *Config) BadgeOptions() badge.Options {
	style, _ := badge.ParseStyle(c.Style)
	return badge.Options{
		Style: style,
		Label: c.Label,
		Scale: &badge.Scale{
			RedBelow:    c.Thresholds.RedBelow,
			YellowBelow: c.Thresholds.YellowBelow,
			Red:         c.Colors.Red,
			Yellow:      c.Colors.Yellow,
			Green:       c.Colors.Green,
		},
	}
}
