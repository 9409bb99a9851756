package cloudwriter

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"
)

type GCSWriterFactory struct {
	client *storage.Client
}

// NewGCSWriterFactory uses application default credentials unless
// GCS_CREDENTIALS_JSON holds a service account key.
func NewGCSWriterFactory(ctx context.Context) (*GCSWriterFactory, error) {
	var opts []option.ClientOption
	if credJSON := os.Getenv("GCS_CREDENTIALS_JSON"); strings.TrimSpace(credJSON) != "" {
		opts = append(opts, option.WithCredentialsJSON([]byte(credJSON)))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create GCS client: %w", err)
	}
	return &GCSWriterFactory{client: client}, nil
}

func (f *GCSWriterFactory) NewWriter(ctx context.Context, bucket, objectPath, contentType string) (CloudWriter, error) {
	w := f.client.Bucket(bucket).Object(objectPath).NewWriter(ctx)
	if contentType != "" {
		w.ContentType = contentType
	}
	return &gcsWriter{w: w, objectPath: objectPath}, nil
}

type gcsWriter struct {
	w          *storage.Writer
	objectPath string
}

func (g *gcsWriter) Write(data []byte) (int, error) {
	return g.w.Write(data)
}

func (g *gcsWriter) Close() error {
	if err := g.w.Close(); err != nil {
		return fmt.Errorf("unable to upload %s to GCS: %w", g.objectPath, err)
	}
	return nil
}
