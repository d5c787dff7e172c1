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

package coverage

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	pkgio "k8s.io/covbadge/pkg/io"
)

// Source names where the percentage comes from.
type Source string

const (
	// SourceReport reads a saved `go test -cover` report.
	SourceReport Source = "report"
	// SourceTool runs a coverage tool such as `go tool cover -func`.
	SourceTool Source = "tool"
	// SourceProfile sums statements of raw cover profiles.
	SourceProfile Source = "profile"
)

// DefaultReport is read when no other input is configured.
const DefaultReport = "coverage.out"

// Options select and parameterize the source.
type Options struct {
	Source      Source
	Input       string
	ToolCommand []string
	Profiles    []string
}

// Extractor obtains the percentage for a run.
type Extractor struct {
	Opener pkgio.Opener
	Run    Runner
}

// Extract obtains the coverage percentage from the source named in o.
func (e *Extractor) Extract(ctx context.Context, o Options) (float64, error) {
	log := logrus.WithField("source", o.Source)

	var p float64
	var err error
	switch o.Source {
	case SourceReport, "":
		input := o.Input
		if input == "" {
			input = DefaultReport
		}
		log = log.WithField("path", input)
		p, err = e.fromReport(ctx, input)
	case SourceTool:
		run := e.Run
		if run == nil {
			run = ExecRunner
		}
		command := o.ToolCommand
		if len(command) == 0 {
			command = DefaultToolCommand
		}
		p, err = FromTool(ctx, run, command)
	case SourceProfile:
		log = log.WithField("profiles", o.Profiles)
		p, err = fromProfiles(o.Profiles)
	default:
		return 0, undetermined("unknown coverage source %q", o.Source)
	}
	if err != nil {
		return 0, err
	}

	log.WithField("percentage", p).Info("Extracted coverage")
	return p, nil
}

func (e *Extractor) fromReport(ctx context.Context, path string) (float64, error) {
	if e.Opener == nil {
		return 0, undetermined("no opener configured for %s", path)
	}
	r, err := e.Opener.Reader(ctx, path)
	if err != nil {
		if pkgio.IsNotExist(err) {
			return 0, undetermined("report %s does not exist", path)
		}
		return 0, undetermined("opening report %s: %v", path, err)
	}
	defer pkgio.LogClose(r)

	p, err := FromReport(r)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func fromProfiles(patterns []string) (float64, error) {
	profiles, err := LoadProfiles(patterns)
	if err != nil {
		return 0, err
	}
	return FromProfiles(profiles)
}
