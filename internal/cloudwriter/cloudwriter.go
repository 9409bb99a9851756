package cloudwriter

import (
	"context"
	"fmt"
)

// CloudWriter buffers or streams one object; the upload completes on Close.
type CloudWriter interface {
	Write(data []byte) (int, error)
	Close() error
}

type CloudWriterFactory interface {
	NewWriter(ctx context.Context, bucket, objectPath, contentType string) (CloudWriter, error)
}

// NewFactory returns the writer factory for a storage provider.
func NewFactory(ctx context.Context, provider, region string) (CloudWriterFactory, error) {
	var (
		factory CloudWriterFactory
		err     error
	)
	switch provider {
	case "s3":
		factory, err = NewS3WriterFactory(ctx, region)
	case "gcs":
		factory, err = NewGCSWriterFactory(ctx)
	default:
		return nil, fmt.Errorf("unsupported cloud storage provider: %s", provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create cloud writer factory: %w", err)
	}
	return factory, nil
}
