/*
Copyright 2020 The Kubernetes Authors.

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

// Package fakeopener is an in-memory io.Opener for tests.
package fakeopener

import (
	"bytes"
	"context"
	"os"

	pkgio "k8s.io/covbadge/pkg/io"
)

// FakeOpener keeps every written path in Buffer and the options of the last
// write per path in Options.
type FakeOpener struct {
	pkgio.Opener
	Buffer     map[string]*bytes.Buffer
	Options    map[string][]pkgio.WriterOptions
	ReadError  error
	WriteError error
}

type nopReadWriteCloser struct {
	*bytes.Buffer
}

func (nc *nopReadWriteCloser) Close() error {
	return nil
}

func (fo *FakeOpener) Reader(ctx context.Context, path string) (pkgio.ReadCloser, error) {
	if fo.ReadError != nil {
		return nil, fo.ReadError
	}
	if fo.Buffer == nil {
		fo.Buffer = make(map[string]*bytes.Buffer)
	}
	if _, ok := fo.Buffer[path]; !ok {
		return nil, os.ErrNotExist
	}
	// Reading drains a bytes.Buffer, so hand out a copy to keep the path
	// readable more than once.
	newBuf := bytes.NewBuffer(fo.Buffer[path].Bytes())
	return &nopReadWriteCloser{Buffer: newBuf}, nil
}

func (fo *FakeOpener) Writer(ctx context.Context, path string, opts ...pkgio.WriterOptions) (pkgio.WriteCloser, error) {
	if fo.WriteError != nil {
		return nil, fo.WriteError
	}
	if fo.Buffer == nil {
		fo.Buffer = make(map[string]*bytes.Buffer)
	}
	if fo.Options == nil {
		fo.Options = make(map[string][]pkgio.WriterOptions)
	}
	fo.Buffer[path] = &bytes.Buffer{}
	fo.Options[path] = opts
	return &nopReadWriteCloser{Buffer: fo.Buffer[path]}, nil
}

// Content returns what was written to path, or "" if nothing was.
func (fo *FakeOpener) Content(path string) string {
	if b, ok := fo.Buffer[path]; ok {
		return b.String()
	}
	return ""
}

// Has reports whether anything was written to or seeded at path.
func (fo *FakeOpener) Has(path string) bool {
	_, ok := fo.Buffer[path]
	return ok
}
