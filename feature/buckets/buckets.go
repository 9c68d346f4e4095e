package buckets

import (
	"context"
	"fmt"
	"path/filepath"

	"cloud-manager/core/catalog"
	"cloud-manager/core/reconcile"
	"cloud-manager/core/storage"
	"cloud-manager/core/workpool"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/tags"
	"go.uber.org/zap"
)

// Config is the catalog form of a bucket.
type Config struct {
	Region     string            `json:"region,omitempty"`
	Versioning bool              `json:"versioning,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// Bucket is the resolved state of a bucket.
type Bucket struct {
	Name       string            `json:"name"`
	Region     string            `json:"region"`
	Versioning bool              `json:"versioning"`
	Tags       map[string]string `json:"tags,omitempty"`
}

// Field names the part of a bucket a Change concerns.
type Field int

const (
	FieldRegion Field = iota + 1
	FieldVersioning
	FieldTags
)

func (f Field) String() string {
	switch f {
	case FieldRegion:
		return "region"
	case FieldVersioning:
		return "versioning"
	case FieldTags:
		return "tags"
	default:
		return "unknown"
	}
}

// Change is a single bucket difference.
type Change struct {
	Field         Field
	Local, Remote string
	Tags          reconcile.TagDiff
}

func (c Change) String() string {
	switch c.Field {
	case FieldTags:
		return c.Tags.String()
	case FieldRegion:
		return fmt.Sprintf("region: %q -> %q (immutable)", c.Remote, c.Local)
	default:
		return fmt.Sprintf("%s: %s -> %s", c.Field, c.Remote, c.Local)
	}
}

// Informational is true for the region, which is fixed at creation.
func (c Change) Informational() bool {
	return c.Field == FieldRegion
}

// Manager reconciles buckets through the object storage client.
type Manager struct {
	client  storage.Client
	root    string
	region  string
	workers int
	logger  *zap.Logger
}

// NewManager creates a bucket manager. Buckets declared without a region
// are expected in defaultRegion.
func NewManager(client storage.Client, root, defaultRegion string, workers int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{client: client, root: root, region: defaultRegion, workers: workers, logger: logger}
}

func (m *Manager) Name() string {
	return "buckets"
}

func (m *Manager) LocalResources(ctx context.Context) (map[string]Bucket, error) {
	configs, err := catalog.Load[Config](filepath.Join(m.root, catalog.BucketsDir))
	if err != nil {
		return nil, err
	}
	out := make(map[string]Bucket, len(configs))
	for name, cfg := range configs {
		b := Bucket{Name: name, Region: cfg.Region, Versioning: cfg.Versioning, Tags: cfg.Tags}
		if b.Region == "" {
			b.Region = m.region
		}
		if b.Tags == nil {
			b.Tags = map[string]string{}
		}
		out[name] = b
	}
	return out, nil
}

func (m *Manager) RemoteResources(ctx context.Context) (map[string]Bucket, error) {
	listed, err := m.client.ListBuckets(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list buckets: %w", err)
	}
	return workpool.Collect(ctx, m.workers, m.logger, listed, m.describe)
}

func (m *Manager) describe(ctx context.Context, info minio.BucketInfo) (string, Bucket, error) {
	name := info.Name
	b := Bucket{Name: name, Tags: map[string]string{}}

	region, err := m.client.GetBucketLocation(ctx, name)
	if err != nil {
		return "", Bucket{}, fmt.Errorf("failed to get location of bucket %s: %w", name, err)
	}
	b.Region = region

	versioning, err := m.client.GetBucketVersioning(ctx, name)
	if err != nil {
		return "", Bucket{}, fmt.Errorf("failed to get versioning of bucket %s: %w", name, err)
	}
	b.Versioning = versioning.Enabled()

	tagSet, err := m.client.GetBucketTagging(ctx, name)
	switch {
	case storage.IsNoTagSet(err):
	case err != nil:
		return "", Bucket{}, fmt.Errorf("failed to get tags of bucket %s: %w", name, err)
	case tagSet != nil:
		b.Tags = tagSet.ToMap()
	}

	return name, b, nil
}

func (m *Manager) Compare(local, remote Bucket) []reconcile.Diff {
	var diffs []reconcile.Diff
	if local.Region != remote.Region {
		diffs = append(diffs, Change{Field: FieldRegion, Local: local.Region, Remote: remote.Region})
	}
	if local.Versioning != remote.Versioning {
		diffs = append(diffs, Change{Field: FieldVersioning, Local: versioningStatus(local.Versioning), Remote: versioningStatus(remote.Versioning)})
	}
	if td := reconcile.DiffTags(local.Tags, remote.Tags); !td.Empty() {
		diffs = append(diffs, Change{Field: FieldTags, Tags: td})
	}
	return diffs
}

func (m *Manager) Create(ctx context.Context, key string, local Bucket) error {
	if err := m.client.MakeBucket(ctx, key, minio.MakeBucketOptions{Region: local.Region}); err != nil {
		return fmt.Errorf("failed to make bucket: %w", err)
	}
	if local.Versioning {
		if err := m.client.EnableVersioning(ctx, key); err != nil {
			return fmt.Errorf("failed to enable versioning: %w", err)
		}
	}
	if len(local.Tags) > 0 {
		return m.setTags(ctx, key, local.Tags)
	}
	return nil
}

func (m *Manager) Update(ctx context.Context, key string, local Bucket, diffs []reconcile.Diff) error {
	for _, d := range diffs {
		c, ok := d.(Change)
		if !ok {
			continue
		}
		switch c.Field {
		case FieldVersioning:
			var err error
			if local.Versioning {
				err = m.client.EnableVersioning(ctx, key)
			} else {
				err = m.client.SuspendVersioning(ctx, key)
			}
			if err != nil {
				return fmt.Errorf("failed to set versioning: %w", err)
			}
		case FieldTags:
			if len(local.Tags) == 0 {
				if err := m.client.RemoveBucketTagging(ctx, key); err != nil {
					return fmt.Errorf("failed to remove tags: %w", err)
				}
				continue
			}
			if err := m.setTags(ctx, key, local.Tags); err != nil {
				return err
			}
		}
	}
	return nil
}

// setTags replaces the whole tag set; bucket tagging has no partial update.
func (m *Manager) setTags(ctx context.Context, key string, values map[string]string) error {
	tagSet, err := tags.NewTags(values, false)
	if err != nil {
		return fmt.Errorf("invalid tags: %w", err)
	}
	if err := m.client.SetBucketTagging(ctx, key, tagSet); err != nil {
		return fmt.Errorf("failed to set tags: %w", err)
	}
	return nil
}

func versioningStatus(enabled bool) string {
	if enabled {
		return minio.Enabled
	}
	return minio.Suspended
}
