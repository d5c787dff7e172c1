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
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"
)

// totalPattern matches the last line of `go tool cover -func`, e.g.
// "total:			(statements)	85.5%", as well as the bare "total: 85.5%".
var totalPattern = regexp.MustCompile(`total:\s*(?:\(statements\)\s*)?(\d+(?:\.\d+)?)%`)

// DefaultToolCommand summarizes coverage.out per function.
var DefaultToolCommand = []string{"go", "tool", "cover", "-func=coverage.out"}

// Runner runs a command to completion and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) (string, error)

// ExecRunner is the Runner backed by os/exec.
func ExecRunner(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%v: %s", err, msg)
		}
		return "", err
	}
	return stdout.String(), nil
}

// FromToolOutput returns the percentage of the "total:" line.
func FromToolOutput(out string) (float64, error) {
	return match(totalPattern, out, "total: NN.N%")
}

// FromTool runs command and extracts the total from what it prints.
func FromTool(ctx context.Context, run Runner, command []string) (float64, error) {
	if len(command) == 0 {
		return 0, undetermined("no coverage tool command configured")
	}
	commandLine := strings.Join(command, " ")
	logrus.WithField("command", commandLine).Debug("Running coverage tool")
	out, err := run(ctx, command[0], command[1:]...)
	if err != nil {
		return 0, undetermined("running %q: %v", commandLine, err)
	}
	return FromToolOutput(out)
}
