// Package output stores rendered report documents and exports their tables.
package output

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/chrisdamba/foodwaste/internal/cloudwriter"
	"github.com/chrisdamba/foodwaste/internal/models"
)

// Destination stores a finished document and returns where it went.
type Destination interface {
	Save(ctx context.Context, name string, data []byte) (string, error)
}

type LocalDestination struct {
	dir string
}

func NewLocalDestination(dir string) *LocalDestination {
	return &LocalDestination{dir: dir}
}

func (d *LocalDestination) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := os.MkdirAll(d.dir, os.ModePerm); err != nil {
		return "", err
	}
	p := filepath.Join(d.dir, name)
	if err := os.WriteFile(p, data, 0o644); err != nil {
		return "", fmt.Errorf("unable to write %s: %w", p, err)
	}
	return p, nil
}

type CloudDestination struct {
	factory cloudwriter.CloudWriterFactory
	bucket  string
	prefix  string
}

func NewCloudDestination(factory cloudwriter.CloudWriterFactory, bucket, prefix string) *CloudDestination {
	return &CloudDestination{factory: factory, bucket: bucket, prefix: prefix}
}

func (d *CloudDestination) Save(ctx context.Context, name string, data []byte) (string, error) {
	objectPath := path.Join(d.prefix, name)
	w, err := d.factory.NewWriter(ctx, d.bucket, objectPath, models.SpreadsheetMIME)
	if err != nil {
		return "", err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}
	return fmt.Sprintf("%s/%s", d.bucket, objectPath), nil
}

// NewDestination builds the destination named by cfg.OutputDestination.
// It returns nil for "none".
func NewDestination(ctx context.Context, cfg *models.Config) (Destination, error) {
	switch cfg.OutputDestination {
	case "", "local":
		return NewLocalDestination(cfg.OutputDir), nil
	case "cloud":
		factory, err := cloudwriter.NewFactory(ctx, cfg.CloudStorage.Provider, cfg.CloudStorage.Region)
		if err != nil {
			return nil, err
		}
		return NewCloudDestination(factory, cfg.CloudStorage.BucketName, cfg.CloudStorage.Prefix), nil
	case "none":
		return nil, nil
	default:
		return nil, fmt.Errorf("unsupported output destination: %s", cfg.OutputDestination)
	}
}
