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

// Package providers opens gocloud buckets for the storage paths the badge
// generator reads from and writes to.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"gocloud.dev/blob"
	_ "gocloud.dev/blob/memblob"
	"gocloud.dev/blob/s3blob"
)

const (
	S3  = "s3"
	GS  = "gs"
	Mem = "mem"
)

// GetBucket opens and returns a gocloud blob.Bucket based on credentials and a path.
// The path is used to discover which storageProvider should be used.
//
// If no credentials are given, we just fall back to blob.OpenBucket which tries to auto discover credentials
// e.g. via environment variables. For more details, see: https://gocloud.dev/howto/blob/
//
// If credentials are given for an s3:// path, they must look like:
//	{
//	  "region": "us-east-1",
//	  "endpoint": "https://minio.example.com:9000",
//	  "s3_force_path_style": true,
//	  "access_key": "access_key",
//	  "secret_key": "secret_key"
//	}
//
// endpoint is optional and only needed for S3-compatible services such as Minio.
func GetBucket(ctx context.Context, s3Credentials []byte, path string) (*blob.Bucket, error) {
	storageProvider, bucket, _, err := ParseStoragePath(path)
	if err != nil {
		return nil, err
	}
	if storageProvider == S3 && len(s3Credentials) > 0 {
		return getS3Bucket(ctx, s3Credentials, bucket)
	}

	bkt, err := blob.OpenBucket(ctx, fmt.Sprintf("%s://%s", storageProvider, bucket))
	if err != nil {
		return nil, fmt.Errorf("error opening %s bucket: %v", storageProvider, err)
	}
	return bkt, nil
}

// s3Credentials are credentials used to access S3 or an S3-compatible storage service
type s3Credentials struct {
	Region           string `json:"region"`
	Endpoint         string `json:"endpoint"`
	Insecure         bool   `json:"insecure"`
	S3ForcePathStyle bool   `json:"s3_force_path_style"`
	AccessKey        string `json:"access_key"`
	SecretKey        string `json:"secret_key"`
}

// newS3Config turns the JSON credentials into an aws.Config. Without an
// access/secret key pair the default credential chain is used.
func newS3Config(creds []byte) (*aws.Config, error) {
	s3Creds := &s3Credentials{}
	if err := json.Unmarshal(creds, s3Creds); err != nil {
		return nil, fmt.Errorf("error getting S3 credentials from JSON: %v", err)
	}

	cfg := &aws.Config{}
	if s3Creds.AccessKey != "" && s3Creds.SecretKey != "" {
		staticCredentials := credentials.StaticProvider{
			Value: credentials.Value{
				AccessKeyID:     s3Creds.AccessKey,
				SecretAccessKey: s3Creds.SecretKey,
			},
		}
		cfg.Credentials = credentials.NewChainCredentials([]credentials.Provider{&staticCredentials})
	}
	if s3Creds.Endpoint != "" {
		cfg.Endpoint = aws.String(s3Creds.Endpoint)
	}
	cfg.DisableSSL = aws.Bool(s3Creds.Insecure)
	cfg.S3ForcePathStyle = aws.Bool(s3Creds.S3ForcePathStyle)
	cfg.Region = aws.String(s3Creds.Region)
	return cfg, nil
}

func getS3Bucket(ctx context.Context, creds []byte, bucketName string) (*blob.Bucket, error) {
	cfg, err := newS3Config(creds)
	if err != nil {
		return nil, err
	}
	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("error creating S3 Session: %v", err)
	}

	bkt, err := s3blob.OpenBucket(ctx, sess, bucketName, nil)
	if err != nil {
		return nil, fmt.Errorf("error opening S3 bucket: %v", err)
	}
	return bkt, nil
}

// ParseStoragePath parses storagePath and returns the storageProvider, bucket and relativePath
// For example gs://coverage-badges/repo/badge.svg results in (gs, coverage-badges, repo/badge.svg)
func ParseStoragePath(storagePath string) (storageProvider, bucket, relativePath string, err error) {
	parsedPath, err := url.Parse(storagePath)
	if err != nil {
		return "", "", "", fmt.Errorf("unable to parse path %q: %v", storagePath, err)
	}

	storageProvider = parsedPath.Scheme
	bucket, relativePath = parsedPath.Host, parsedPath.Path
	relativePath = strings.TrimPrefix(relativePath, "/")

	if storageProvider == "" {
		return "", "", "", fmt.Errorf("could not find storage provider in storagePath %q", storagePath)
	}
	if bucket == "" {
		return "", "", "", fmt.Errorf("could not find bucket in storagePath %q", storagePath)
	}
	return storageProvider, bucket, relativePath, nil
}
