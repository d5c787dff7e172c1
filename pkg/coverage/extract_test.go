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
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"k8s.io/covbadge/pkg/io/fakeopener"
)

func TestExtract(t *testing.T) {
	profileDir := t.TempDir()
	writeProfile(t, filepath.Join(profileDir, "c.out"), "mode: set\nfoo.go:1.1,2.2 3 1\nfoo.go:3.1,4.2 1 0\n")

	testCases := []struct {
		name      string
		files     map[string]string
		tool      *fakeRunner
		options   Options
		expected  float64
		errSubstr string
	}{
		{
			name:     "default source reads coverage.out",
			files:    map[string]string{"coverage.out": "coverage: 85.5% of statements"},
			expected: 85.5,
		},
		{
			name:     "report from a bucket",
			files:    map[string]string{"gs://ci/coverage.txt": "coverage: 79.9% of statements"},
			options:  Options{Source: SourceReport, Input: "gs://ci/coverage.txt"},
			expected: 79.9,
		},
		{
			name:      "missing report",
			options:   Options{Source: SourceReport},
			errSubstr: "report coverage.out does not exist",
		},
		{
			name:      "report without pattern",
			files:     map[string]string{"coverage.out": "mode: set\n"},
			errSubstr: "coverage.out: coverage value could not be determined",
		},
		{
			name:     "tool",
			tool:     &fakeRunner{output: "total:\t(statements)\t91.2%\n"},
			options:  Options{Source: SourceTool},
			expected: 91.2,
		},
		{
			name:      "tool without total",
			tool:      &fakeRunner{output: "PASS\n"},
			options:   Options{Source: SourceTool},
			errSubstr: `no "total: NN.N%" found`,
		},
		{
			name:     "profile",
			options:  Options{Source: SourceProfile, Profiles: []string{filepath.Join(profileDir, "c.out")}},
			expected: 75,
		},
		{
			name:      "profile source without profiles",
			files:     map[string]string{"coverage.out": "mode: set\nfoo.go:1.1,2.2 3 1\n"},
			options:   Options{Source: SourceProfile},
			errSubstr: "no cover profiles match",
		},
		{
			name:      "unknown source",
			options:   Options{Source: "carrier-pigeon"},
			errSubstr: `unknown coverage source "carrier-pigeon"`,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			opener := &fakeopener.FakeOpener{Buffer: map[string]*bytes.Buffer{}}
			for path, content := range tc.files {
				opener.Buffer[path] = bytes.NewBufferString(content)
			}
			e := &Extractor{Opener: opener}
			if tc.tool != nil {
				e.Run = tc.tool.run
			}

			p, err := e.Extract(context.Background(), tc.options)
			if tc.errSubstr != "" {
				if err == nil {
					t.Fatalf("expected an error, got %v", p)
				}
				if !errors.Is(err, ErrUndetermined) {
					t.Errorf("error %v does not wrap ErrUndetermined", err)
				}
				if !strings.Contains(err.Error(), tc.errSubstr) {
					t.Errorf("error %q does not contain %q", err, tc.errSubstr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if p != tc.expected {
				t.Errorf("expected %v, got %v", tc.expected, p)
			}
		})
	}
}

func TestExtractDefaultToolCommand(t *testing.T) {
	r := &fakeRunner{output: "total: 12.5%"}
	e := &Extractor{Run: r.run}
	if _, err := e.Extract(context.Background(), Options{Source: SourceTool}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(r.calls) != 1 || strings.Join(r.calls[0], " ") != "go tool cover -func=coverage.out" {
		t.Errorf("unexpected calls %v", r.calls)
	}
}

func TestExtractReadError(t *testing.T) {
	opener := &fakeopener.FakeOpener{ReadError: errors.New("permission denied")}
	_, err := (&Extractor{Opener: opener}).Extract(context.Background(), Options{})
	if !errors.Is(err, ErrUndetermined) || !strings.Contains(err.Error(), "permission denied") {
		t.Errorf("unexpected error %v", err)
	}
}
