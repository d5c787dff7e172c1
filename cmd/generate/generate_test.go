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
	"bytes"
	"context"
	"errors"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"k8s.io/covbadge/pkg/badge"
	"k8s.io/covbadge/pkg/config"
	"k8s.io/covbadge/pkg/coverage"
	"k8s.io/covbadge/pkg/io/fakeopener"
)

func noTool(context.Context, string, ...string) (string, error) {
	return "", errors.New("no tool in this test")
}

func TestRun(t *testing.T) {
	testCases := []struct {
		name      string
		files     map[string]string
		mutate    func(*config.Config)
		runner    coverage.Runner
		wantFill  string
		wantText  string
		wantErr   bool
		keepBadge string
	}{
		{
			name:     "report below 80 is red",
			files:    map[string]string{"coverage.out": "coverage: 42.0% of statements"},
			wantFill: `fill="red"`,
			wantText: ">42.0%<",
		},
		{
			name:     "report at 85.5 is yellow",
			files:    map[string]string{"coverage.out": "coverage: 85.5% of statements"},
			wantFill: `fill="yellow"`,
			wantText: ">85.5%<",
		},
		{
			name:     "report at 90 is green",
			files:    map[string]string{"coverage.out": "coverage: 90.0% of statements"},
			wantFill: `fill="green"`,
			wantText: ">90.0%<",
		},
		{
			name:   "tool output with labelled style",
			mutate: func(c *config.Config) { c.Source = "tool"; c.Style = "labelled" },
			runner: func(context.Context, string, ...string) (string, error) {
				return "total:\t(statements)\t85.46%\n", nil
			},
			wantFill: `fill="yellow"`,
			wantText: ">85.5%<",
		},
		{
			name:      "missing report leaves the old badge",
			files:     map[string]string{"coverage_badge.svg": "old"},
			wantErr:   true,
			keepBadge: "old",
		},
		{
			name:      "report without pattern leaves the old badge",
			files:     map[string]string{"coverage.out": "PASS\n", "coverage_badge.svg": "old"},
			wantErr:   true,
			keepBadge: "old",
		},
		{
			name:    "tool failure writes nothing",
			mutate:  func(c *config.Config) { c.Source = "tool" },
			runner:  noTool,
			wantErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			fo := &fakeopener.FakeOpener{Buffer: map[string]*bytes.Buffer{}}
			for path, content := range tc.files {
				fo.Buffer[path] = bytes.NewBufferString(content)
			}
			c := config.Default()
			if tc.mutate != nil {
				tc.mutate(c)
			}
			runner := tc.runner
			if runner == nil {
				runner = noTool
			}

			var out bytes.Buffer
			err := run(context.Background(), c, fo, runner, &out)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				if !errors.Is(err, coverage.ErrUndetermined) {
					t.Errorf("error %v does not wrap ErrUndetermined", err)
				}
				if tc.keepBadge == "" && fo.Has("coverage_badge.svg") {
					t.Errorf("badge written despite the error")
				}
				if tc.keepBadge != "" && fo.Content("coverage_badge.svg") != tc.keepBadge {
					t.Errorf("existing badge was overwritten: %q", fo.Content("coverage_badge.svg"))
				}
				if out.Len() != 0 {
					t.Errorf("unexpected output %q", out.String())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			svg := fo.Content("coverage_badge.svg")
			for _, s := range []string{tc.wantFill, tc.wantText} {
				if !strings.Contains(svg, s) {
					t.Errorf("badge lacks %q:\n%s", s, svg)
				}
			}
			if out.String() != "Badge generated successfully!\n" {
				t.Errorf("unexpected output %q", out.String())
			}
			opts := fo.Options["coverage_badge.svg"]
			if len(opts) != 1 || *opts[0].ContentType != badge.ContentType || *opts[0].CacheControl != c.CacheControl {
				t.Errorf("unexpected writer options %+v", opts)
			}
		})
	}
}

func TestRunWritesMetrics(t *testing.T) {
	fo := &fakeopener.FakeOpener{Buffer: map[string]*bytes.Buffer{
		"coverage.out": bytes.NewBufferString("coverage: 93.1% of statements"),
	}}
	c := config.Default()
	c.MetricsFile = filepath.Join(t.TempDir(), "covbadge.prom")

	if err := run(context.Background(), c, fo, noTool, ioutil.Discard); err != nil {
		t.Fatalf("run() failed: %v", err)
	}
	content, err := ioutil.ReadFile(c.MetricsFile)
	if err != nil {
		t.Fatalf("reading metrics: %v", err)
	}
	if want := `covbadge_coverage_percentage{color="green",source="report"} 93.1`; !strings.Contains(string(content), want) {
		t.Errorf("metrics lack %q:\n%s", want, content)
	}
}

func TestRunWriteError(t *testing.T) {
	fo := &fakeopener.FakeOpener{
		Buffer:     map[string]*bytes.Buffer{"coverage.out": bytes.NewBufferString("coverage: 93.1% of statements")},
		WriteError: errors.New("bucket is read-only"),
	}
	err := run(context.Background(), config.Default(), fo, noTool, ioutil.Discard)
	if err == nil || !strings.Contains(err.Error(), "bucket is read-only") {
		t.Errorf("unexpected error %v", err)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := MakeCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(ioutil.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCommand(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverage.out")
	output := filepath.Join(dir, "out", "badge.svg")
	if err := ioutil.WriteFile(report, []byte("ok  \tpkg\t0.1s\tcoverage: 81.3% of statements\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, err := execute(t, "--input", report, "--output", output, "--style", "labelled", "--label", "cover")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if out != "Badge generated successfully!\n" {
		t.Errorf("unexpected output %q", out)
	}
	svg, err := ioutil.ReadFile(output)
	if err != nil {
		t.Fatalf("badge not written: %v", err)
	}
	for _, s := range []string{`fill="yellow"`, ">81.3%<", ">cover<"} {
		if !strings.Contains(string(svg), s) {
			t.Errorf("badge lacks %q:\n%s", s, svg)
		}
	}
}

func TestCommandFlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverage.out")
	output := filepath.Join(dir, "badge.svg")
	cfg := filepath.Join(dir, "covbadge.yaml")
	if err := ioutil.WriteFile(report, []byte("coverage: 75.0% of statements"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := ioutil.WriteFile(cfg, []byte("input: "+report+"\noutput: "+output+"\nthresholds:\n  redBelow: 70\n  yellowBelow: 95\n"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := execute(t, "--config", cfg); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	svg, _ := ioutil.ReadFile(output)
	if !strings.Contains(string(svg), `fill="yellow"`) {
		t.Errorf("config thresholds ignored:\n%s", svg)
	}

	if _, err := execute(t, "--config", cfg, "--red-below", "76"); err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	svg, _ = ioutil.ReadFile(output)
	if !strings.Contains(string(svg), `fill="red"`) {
		t.Errorf("--red-below did not override the config:\n%s", svg)
	}
}

func TestCommandFailureWritesNothing(t *testing.T) {
	dir := t.TempDir()
	output := filepath.Join(dir, "badge.svg")

	_, err := execute(t, "--input", filepath.Join(dir, "missing.out"), "--output", output)
	if !errors.Is(err, coverage.ErrUndetermined) {
		t.Fatalf("expected ErrUndetermined, got %v", err)
	}
	if _, err := os.Stat(output); !os.IsNotExist(err) {
		t.Errorf("badge should not exist, stat returned %v", err)
	}
	entries, _ := ioutil.ReadDir(dir)
	if diff := cmp.Diff(0, len(entries)); diff != "" {
		t.Errorf("directory not empty (-want +got):\n%s", diff)
	}
}

func TestCommandInvalidFlags(t *testing.T) {
	for _, args := range [][]string{
		{"--style", "3d"},
		{"--source", "profile"},
		{"--red-below", "95"},
		{"unexpected-arg"},
	} {
		if _, err := execute(t, args...); err == nil {
			t.Errorf("%v: expected an error", args)
		}
	}
}
