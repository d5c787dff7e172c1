/*
Copyright 2019 The Kubernetes Authors.

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

// Package io reads coverage reports from and writes badges to local paths,
// GCS (gs://) and any bucket gocloud can open (s3://, mem://).
package io

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"cloud.google.com/go/storage"
	"github.com/GoogleCloudPlatform/testgrid/util/gcs"
	"github.com/sirupsen/logrus"
	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"
	"google.golang.org/api/option"

	"k8s.io/covbadge/pkg/io/providers"
)

type storageClient interface {
	Bucket(name string) *storage.BucketHandle
}

// Aliases to types in the standard library
type (
	ReadCloser  = io.ReadCloser
	WriteCloser = io.WriteCloser
)

// Opener has methods to read and write paths
type Opener interface {
	Reader(ctx context.Context, path string) (ReadCloser, error)
	Writer(ctx context.Context, path string, opts ...WriterOptions) (WriteCloser, error)
}

// Aborter is implemented by writers that can discard what was written so far
// instead of committing it on Close.
type Aborter interface {
	Abort() error
}

// WriterOptions are applied to the object metadata of bucket writers.
// Local files ignore them.
type WriterOptions struct {
	ContentType  *string
	CacheControl *string
}

// Apply applies the options to whichever writer config is non-nil.
func (wo WriterOptions) Apply(writer *storage.Writer, o *blob.WriterOptions) {
	if writer != nil {
		if wo.ContentType != nil {
			writer.ContentType = *wo.ContentType
		}
		if wo.CacheControl != nil {
			writer.CacheControl = *wo.CacheControl
		}
	}
	if o != nil {
		if wo.ContentType != nil {
			o.ContentType = *wo.ContentType
		}
		if wo.CacheControl != nil {
			o.CacheControl = *wo.CacheControl
		}
	}
}

type opener struct {
	gcsClient          storageClient
	s3Credentials      []byte
	cachedBuckets      map[string]*blob.Bucket
	cachedBucketsMutex sync.Mutex
}

// NewOpener returns an opener that can read GCS, S3 and local paths.
// Both credential files may be empty, in which case gocloud auto-discovery is
// used for bucket paths. Local paths never need credentials.
func NewOpener(ctx context.Context, gcsCredentialsFile, s3CredentialsFile string) (Opener, error) {
	var options []option.ClientOption
	if gcsCredentialsFile != "" {
		options = append(options, option.WithCredentialsFile(gcsCredentialsFile))
	}
	gcsClient, err := storage.NewClient(ctx, options...)
	if err != nil {
		if gcsCredentialsFile != "" {
			return nil, err
		}
		logrus.WithError(err).Debug("Cannot load application default gcp credentials")
		gcsClient = nil
	}
	var s3Credentials []byte
	if s3CredentialsFile != "" {
		s3Credentials, err = ioutil.ReadFile(s3CredentialsFile)
		if err != nil {
			return nil, err
		}
	}
	o := &opener{
		s3Credentials: s3Credentials,
		cachedBuckets: map[string]*blob.Bucket{},
	}
	// Keep the interface nil rather than holding a typed nil pointer.
	if gcsClient != nil {
		o.gcsClient = gcsClient
	}
	return o, nil
}

// NewLocalOpener returns an opener without a GCS client. Local paths and
// gocloud buckets that discover their own credentials (s3://, mem://) work;
// gs:// paths fail.
func NewLocalOpener() Opener {
	return &opener{cachedBuckets: map[string]*blob.Bucket{}}
}

// ErrNotFoundTest can be used for unit tests to simulate NotFound errors.
// This is required because gocloud doesn't expose its errors.
var ErrNotFoundTest = fmt.Errorf("not found error which should only be used in tests")

// IsNotExist will return true if the error shows that the object does not exist.
func IsNotExist(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, os.ErrNotExist) || errors.Is(err, storage.ErrObjectNotExist) {
		return true
	}
	if errors.Is(err, ErrNotFoundTest) {
		return true
	}
	return gcerrors.Code(err) == gcerrors.NotFound
}

// LogClose will attempt a close an log any error
func LogClose(c io.Closer) {
	if err := c.Close(); err != nil {
		logrus.WithError(err).Error("Failed to close")
	}
}

// IsLocal reports whether p is a plain filesystem path rather than a
// provider URL such as gs://bucket/badge.svg.
func IsLocal(p string) bool {
	return !strings.Contains(p, "://")
}

func (o *opener) openGCS(path string) (*storage.ObjectHandle, error) {
	if !strings.HasPrefix(path, "gs://") {
		return nil, nil
	}
	if o.gcsClient == nil {
		return nil, errors.New("no gcs client configured")
	}
	var p gcs.Path
	if err := p.Set(path); err != nil {
		return nil, err
	}
	if p.Object() == "" {
		return nil, errors.New("object name is empty")
	}
	return o.gcsClient.Bucket(p.Bucket()).Object(p.Object()), nil
}

// getBucket opens a bucket
// The storageProvider is discovered based on the given path.
// The buckets are cached per provider and bucket name, so a bucket is opened once per process
func (o *opener) getBucket(ctx context.Context, path string) (*blob.Bucket, string, error) {
	storageProvider, bucketName, relativePath, err := providers.ParseStoragePath(path)
	if err != nil {
		return nil, "", fmt.Errorf("could not get bucket: %w", err)
	}
	key := storageProvider + "://" + bucketName

	o.cachedBucketsMutex.Lock()
	defer o.cachedBucketsMutex.Unlock()
	if bucket, ok := o.cachedBuckets[key]; ok {
		return bucket, relativePath, nil
	}

	bucket, err := providers.GetBucket(ctx, o.s3Credentials, path)
	if err != nil {
		return nil, "", err
	}
	o.cachedBuckets[key] = bucket
	return bucket, relativePath, nil
}

// Reader will open the path for reading, returning an IsNotExist() error when missing
func (o *opener) Reader(ctx context.Context, path string) (io.ReadCloser, error) {
	if strings.HasPrefix(path, "gs://") {
		g, err := o.openGCS(path)
		if err != nil {
			return nil, fmt.Errorf("bad gcs path: %v", err)
		}
		return g.NewReader(ctx)
	}
	if IsLocal(path) {
		return os.Open(path)
	}

	bucket, relativePath, err := o.getBucket(ctx, path)
	if err != nil {
		return nil, err
	}
	reader, err := bucket.NewReader(ctx, relativePath, nil)
	if err != nil {
		return nil, err
	}
	return reader, nil
}

// Writer returns a writer that overwrites the path.
// Local files are only replaced when the returned writer is closed, so an
// aborted or failed write leaves the previous content in place.
func (o *opener) Writer(ctx context.Context, p string, opts ...WriterOptions) (io.WriteCloser, error) {
	if strings.HasPrefix(p, "gs://") {
		g, err := o.openGCS(p)
		if err != nil {
			return nil, fmt.Errorf("bad gcs path: %v", err)
		}
		ctx, cancel := context.WithCancel(ctx)
		writer := g.NewWriter(ctx)
		for _, opt := range opts {
			opt.Apply(writer, nil)
		}
		return &cancelableWriter{WriteCloser: writer, cancel: cancel}, nil
	}
	if IsLocal(p) {
		f, err := newAtomicFile(p)
		if err != nil {
			return nil, err
		}
		return f, nil
	}

	bucket, relativePath, err := o.getBucket(ctx, p)
	if err != nil {
		return nil, err
	}
	var wOpts blob.WriterOptions
	for _, opt := range opts {
		opt.Apply(nil, &wOpts)
	}
	ctx, cancel := context.WithCancel(ctx)
	writer, err := bucket.NewWriter(ctx, relativePath, &wOpts)
	if err != nil {
		cancel()
		return nil, err
	}
	return &cancelableWriter{WriteCloser: writer, cancel: cancel}, nil
}

// cancelableWriter wraps a bucket upload. Canceling the upload's context
// before Close makes the provider discard it instead of committing.
type cancelableWriter struct {
	io.WriteCloser
	cancel context.CancelFunc
}

func (w *cancelableWriter) Close() error {
	defer w.cancel()
	return w.WriteCloser.Close()
}

// Abort discards the upload. The error Close reports for the canceled
// upload is expected and dropped.
func (w *cancelableWriter) Abort() error {
	w.cancel()
	w.WriteCloser.Close()
	return nil
}

// atomicFile writes to a temporary file next to target and renames it into
// place on Close.
type atomicFile struct {
	*os.File
	target string
}

func newAtomicFile(target string) (*atomicFile, error) {
	dir := filepath.Dir(target)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create directory %q: %w", dir, err)
	}
	f, err := ioutil.TempFile(dir, "."+filepath.Base(target)+".tmp-")
	if err != nil {
		return nil, err
	}
	return &atomicFile{File: f, target: target}, nil
}

func (f *atomicFile) Close() error {
	tmp := f.File.Name()
	if err := f.File.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, f.target); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename %s to %s: %w", tmp, f.target, err)
	}
	return nil
}

// Abort discards the temporary file without touching the target.
func (f *atomicFile) Abort() error {
	tmp := f.File.Name()
	f.File.Close()
	return os.Remove(tmp)
}

// WriteContent writes content to path in one go. When the write fails the
// writer is aborted if it supports it, so the destination is not committed.
// Every writer returned by this package's Opener supports it.
func WriteContent(ctx context.Context, opener Opener, path string, content []byte, opts ...WriterOptions) error {
	w, err := opener.Writer(ctx, path, opts...)
	if err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := w.Write(content); err != nil {
		if a, ok := w.(Aborter); ok {
			if abortErr := a.Abort(); abortErr != nil {
				logrus.WithError(abortErr).WithField("path", path).Warn("Failed to abort write")
			}
		} else {
			LogClose(w)
		}
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}

// ReadContent reads the whole object at path.
func ReadContent(ctx context.Context, opener Opener, path string) ([]byte, error) {
	r, err := opener.Reader(ctx, path)
	if err != nil {
		return nil, err
	}
	defer LogClose(r)
	return ioutil.ReadAll(r)
}
