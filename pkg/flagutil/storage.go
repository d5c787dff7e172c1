/*
Copyright 2018 The Kubernetes Authors.

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

package flagutil

import (
	"context"
	"fmt"

	"github.com/spf13/pflag"

	"k8s.io/covbadge/pkg/io"
)

// StorageClientOptions hold the credentials used for bucket paths.
type StorageClientOptions struct {
	// GCSCredentialsFile is used for reading/writing gs:// paths.
	// If empty, credential auto-discovery is used.
	GCSCredentialsFile string `json:"gcs_credentials_file,omitempty"`
	// S3CredentialsFile is used for reading/writing s3:// paths.
	// If empty, go cloud credential auto-discovery is used.
	// For the format see the pkg/io/providers package.
	S3CredentialsFile string `json:"s3_credentials_file,omitempty"`
}

// AddFlags injects storage client options into the given FlagSet.
func (o *StorageClientOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.GCSCredentialsFile, "gcs-credentials-file", "", "File where GCS credentials are stored")
	fs.StringVar(&o.S3CredentialsFile, "s3-credentials-file", "", "File where s3 credentials are stored")
}

func (o *StorageClientOptions) HasGCSCredentials() bool {
	return o.GCSCredentialsFile != ""
}

func (o *StorageClientOptions) HasS3Credentials() bool {
	return o.S3CredentialsFile != ""
}

// StorageClient returns a Storage client.
func (o *StorageClientOptions) StorageClient(ctx context.Context) (io.Opener, error) {
	opener, err := io.NewOpener(ctx, o.GCSCredentialsFile, o.S3CredentialsFile)
	if err != nil {
		message := ""
		if o.GCSCredentialsFile != "" {
			message = fmt.Sprintf(" gcs-credentials-file: %s", o.GCSCredentialsFile)
		}
		if o.S3CredentialsFile != "" {
			message = fmt.Sprintf("%s s3-credentials-file: %s", message, o.S3CredentialsFile)
		}
		return opener, fmt.Errorf("error creating opener%s: %v", message, err)
	}
	return opener, nil
}
