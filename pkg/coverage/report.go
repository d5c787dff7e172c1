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

// Package coverage extracts a single coverage percentage from a go test
// report, the output of a coverage tool, or raw cover profiles.
package coverage

import (
	"errors"
	"fmt"
	"io"
	"regexp"
	"strconv"
)

// ErrUndetermined is wrapped by every error returned when no coverage value
// could be obtained, whatever the cause.
var ErrUndetermined = errors.New("coverage value could not be determined")

func undetermined(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrUndetermined, fmt.Sprintf(format, args...))
}

// reportPattern matches the summary go test prints, e.g.
// "ok  	k8s.io/covbadge/pkg/badge	0.012s	coverage: 85.5% of statements".
var reportPattern = regexp.MustCompile(`coverage:\s*(\d+\.\d+)%`)

// FromReport returns the first percentage reported as "coverage: NN.N%".
func FromReport(r io.Reader) (float64, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return 0, undetermined("reading report: %v", err)
	}
	return match(reportPattern, string(content), "coverage: NN.N%")
}

func match(re *regexp.Regexp, text, want string) (float64, error) {
	m := re.FindStringSubmatch(text)
	if m == nil {
		return 0, undetermined("no %q found in input", want)
	}
	p, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, undetermined("parsing %q: %v", m[1], err)
	}
	return p, nil
}
