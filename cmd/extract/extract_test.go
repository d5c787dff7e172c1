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
	"bytes"
	"errors"
	"io/ioutil"
	"path/filepath"
	"testing"

	"k8s.io/covbadge/pkg/coverage"
)

func TestExtract(t *testing.T) {
	dir := t.TempDir()
	report := filepath.Join(dir, "coverage.out")
	if err := ioutil.WriteFile(report, []byte("coverage: 85.46% of statements"), 0644); err != nil {
		t.Fatal(err)
	}
	profile := filepath.Join(dir, "c.cov")
	if err := ioutil.WriteFile(profile, []byte("mode: set\nfoo.go:1.1,2.2 1 1\nfoo.go:3.1,4.2 2 0\n"), 0644); err != nil {
		t.Fatal(err)
	}

	testCases := []struct {
		name     string
		args     []string
		expected string
		wantErr  bool
	}{
		{name: "report", args: []string{"--input", report}, expected: "85.5\n"},
		{name: "profile", args: []string{"--source", "profile", "--profile", profile}, expected: "33.3\n"},
		{name: "missing report", args: []string{"--input", filepath.Join(dir, "nope.out")}, wantErr: true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			cmd := MakeCommand()
			var out bytes.Buffer
			cmd.SetOut(&out)
			cmd.SetErr(ioutil.Discard)
			cmd.SetArgs(tc.args)
			err := cmd.Execute()
			if tc.wantErr {
				if !errors.Is(err, coverage.ErrUndetermined) {
					t.Errorf("expected ErrUndetermined, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("extract failed: %v", err)
			}
			if out.String() != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, out.String())
			}
		})
	}
}

func TestExtractHasNoBadgeFlags(t *testing.T) {
	if MakeCommand().Flags().Lookup("style") != nil {
		t.Error("extract should not accept badge flags")
	}
}
