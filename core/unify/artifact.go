package unify

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"

	"cloud-manager/core/storage"

	"github.com/minio/minio-go/v7"
)

// ArtifactStore persists shared artifacts by name.
type ArtifactStore interface {
	// Read returns the artifact content and whether it exists.
	Read(ctx context.Context, name string) ([]byte, bool, error)
	// Write creates or replaces the artifact.
	Write(ctx context.Context, name string, data []byte) error
}

// DirStore stores artifacts as files in a local directory.
type DirStore struct {
	// Dir is created on first write.
	Dir string
	// Suffix is appended to every name (e.g., ".json").
	Suffix string
}

func (s *DirStore) path(name string) string {
	return filepath.Join(s.Dir, name+s.Suffix)
}

// Read implements ArtifactStore.
func (s *DirStore) Read(ctx context.Context, name string) ([]byte, bool, error) {
	data, err := os.ReadFile(s.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return data, true, nil
}

// Write implements ArtifactStore.
func (s *DirStore) Write(ctx context.Context, name string, data []byte) error {
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("failed to create artifact directory: %w", err)
	}
	if err := os.WriteFile(s.path(name), data, 0o644); err != nil {
		return fmt.Errorf("failed to write artifact %s: %w", name, err)
	}
	return nil
}

// BucketStore stores artifacts as objects in a bucket.
type BucketStore struct {
	Client storage.Client
	Bucket string
	Prefix string
	Suffix string
}

func (s *BucketStore) key(name string) string {
	return path.Join(s.Prefix, name+s.Suffix)
}

// Read implements ArtifactStore.
func (s *BucketStore) Read(ctx context.Context, name string) ([]byte, bool, error) {
	obj, err := s.Client.GetObject(ctx, s.Bucket, s.key(name), minio.GetObjectOptions{})
	if err != nil {
		if storage.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to get artifact %s: %w", name, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		// minio defers the request until the first read
		if storage.IsNotFound(err) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("failed to read artifact %s: %w", name, err)
	}
	return data, true, nil
}

// Write implements ArtifactStore.
func (s *BucketStore) Write(ctx context.Context, name string, data []byte) error {
	_, err := s.Client.PutObject(ctx, s.Bucket, s.key(name), bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/json",
	})
	if err != nil {
		return fmt.Errorf("failed to put artifact %s: %w", name, err)
	}
	return nil
}
