// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package manifestsource resolves the configured manifest location — a
// plain filesystem path or an s3:// URI — into a manifest.Manifest.
package manifestsource

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/openbc-project/handshaked/internal/manifest"
)

// Load resolves location into a manifest. Locations of the form
// "s3://bucket/key" are fetched from S3 using the default AWS
// credential chain; anything else is treated as a local filesystem
// path.
func Load(ctx context.Context, location string) (*manifest.Manifest, error) {
	if bucket, key, ok := parseS3URI(location); ok {
		return loadFromS3(ctx, bucket, key)
	}
	return loadFromFile(location)
}

func loadFromFile(path string) (*manifest.Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifestsource: opening %s: %w", path, err)
	}
	defer f.Close()

	m, err := manifest.Load(f)
	if err != nil {
		return nil, fmt.Errorf("manifestsource: loading %s: %w", path, err)
	}
	return m, nil
}

func loadFromS3(ctx context.Context, bucket, key string) (*manifest.Manifest, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("manifestsource: loading AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg)
	out, err := client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("manifestsource: fetching s3://%s/%s: %w", bucket, key, err)
	}
	defer out.Body.Close()

	m, err := manifest.Load(out.Body)
	if err != nil {
		return nil, fmt.Errorf("manifestsource: loading s3://%s/%s: %w", bucket, key, err)
	}
	return m, nil
}

func parseS3URI(location string) (bucket, key string, ok bool) {
	const prefix = "s3://"
	if !strings.HasPrefix(location, prefix) {
		return "", "", false
	}
	rest := strings.TrimPrefix(location, prefix)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}
