package tables

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"cloud-manager/core/catalog"
	"cloud-manager/core/reconcile"
	"cloud-manager/core/workpool"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// Billing modes accepted in table files.
const (
	PayPerRequest = string(types.BillingModePayPerRequest)
	Provisioned   = string(types.BillingModeProvisioned)
)

// Key is a key attribute of a table.
type Key struct {
	Name string `json:"name"`
	// Type is S, N or B.
	Type string `json:"type"`
}

func (k *Key) String() string {
	if k == nil {
		return "-"
	}
	return k.Name + ":" + k.Type
}

// Config is the catalog form of a table.
type Config struct {
	HashKey       Key               `json:"hash_key"`
	RangeKey      *Key              `json:"range_key,omitempty"`
	BillingMode   string            `json:"billing_mode,omitempty"`
	ReadCapacity  int64             `json:"read_capacity,omitempty"`
	WriteCapacity int64             `json:"write_capacity,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
}

// Table is the resolved state of a table.
type Table struct {
	Name          string            `json:"name"`
	Arn           string            `json:"arn,omitempty"`
	HashKey       Key               `json:"hash_key"`
	RangeKey      *Key              `json:"range_key,omitempty"`
	BillingMode   string            `json:"billing_mode"`
	ReadCapacity  int64             `json:"read_capacity,omitempty"`
	WriteCapacity int64             `json:"write_capacity,omitempty"`
	Tags          map[string]string `json:"tags,omitempty"`
}

func (t Table) keySchema() string {
	return t.HashKey.String() + " " + t.RangeKey.String()
}

// Field names the part of a table a Change concerns.
type Field int

const (
	FieldKeySchema Field = iota + 1
	FieldBillingMode
	FieldThroughput
	FieldTags
)

func (f Field) String() string {
	switch f {
	case FieldKeySchema:
		return "key_schema"
	case FieldBillingMode:
		return "billing_mode"
	case FieldThroughput:
		return "throughput"
	case FieldTags:
		return "tags"
	default:
		return "unknown"
	}
}

// Change is a single table difference.
type Change struct {
	Field         Field
	Local, Remote string
	Tags          reconcile.TagDiff
	// Arn addresses the live table for tagging calls.
	Arn string
}

func (c Change) String() string {
	switch c.Field {
	case FieldTags:
		return c.Tags.String()
	case FieldKeySchema:
		return fmt.Sprintf("key_schema: %s -> %s (immutable)", c.Remote, c.Local)
	default:
		return fmt.Sprintf("%s: %s -> %s", c.Field, c.Remote, c.Local)
	}
}

// Informational is true for the key schema, which is fixed at creation.
func (c Change) Informational() bool {
	return c.Field == FieldKeySchema
}

// Manager reconciles DynamoDB tables.
type Manager struct {
	client  Client
	root    string
	workers int
	logger  *zap.Logger
}

// NewManager creates a table manager reading the catalog under root.
func NewManager(client Client, root string, workers int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{client: client, root: root, workers: workers, logger: logger}
}

func (m *Manager) Name() string {
	return "tables"
}

func (m *Manager) LocalResources(ctx context.Context) (map[string]Table, error) {
	configs, err := catalog.Load[Config](filepath.Join(m.root, catalog.TablesDir))
	if err != nil {
		return nil, err
	}

	out := make(map[string]Table, len(configs))
	for name, cfg := range configs {
		t, err := resolve(name, cfg)
		if err != nil {
			return nil, err
		}
		out[name] = t
	}
	return out, nil
}

func resolve(name string, cfg Config) (Table, error) {
	t := Table{
		Name:          name,
		HashKey:       cfg.HashKey,
		RangeKey:      cfg.RangeKey,
		BillingMode:   cfg.BillingMode,
		ReadCapacity:  cfg.ReadCapacity,
		WriteCapacity: cfg.WriteCapacity,
		Tags:          cfg.Tags,
	}
	if t.BillingMode == "" {
		t.BillingMode = PayPerRequest
	}
	if t.Tags == nil {
		t.Tags = map[string]string{}
	}

	if t.HashKey.Name == "" {
		return Table{}, fmt.Errorf("%w: table %s has no hash key", catalog.ErrInvalid, name)
	}
	switch t.BillingMode {
	case PayPerRequest:
		t.ReadCapacity, t.WriteCapacity = 0, 0
	case Provisioned:
		if t.ReadCapacity <= 0 || t.WriteCapacity <= 0 {
			return Table{}, fmt.Errorf("%w: table %s is provisioned without capacity", catalog.ErrInvalid, name)
		}
	default:
		return Table{}, fmt.Errorf("%w: table %s has unknown billing mode %q", catalog.ErrInvalid, name, t.BillingMode)
	}
	return t, nil
}

func (m *Manager) RemoteResources(ctx context.Context) (map[string]Table, error) {
	var names []string
	p := dynamodb.NewListTablesPaginator(m.client, &dynamodb.ListTablesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list tables: %w", err)
		}
		names = append(names, page.TableNames...)
	}
	return workpool.Collect(ctx, m.workers, m.logger, names, m.describe)
}

func (m *Manager) describe(ctx context.Context, name string) (string, Table, error) {
	out, err := m.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{TableName: aws.String(name)})
	if err != nil {
		return "", Table{}, fmt.Errorf("failed to describe table %s: %w", name, err)
	}
	desc := out.Table
	if desc == nil {
		return "", Table{}, fmt.Errorf("table %s has no description", name)
	}

	attrTypes := make(map[string]string, len(desc.AttributeDefinitions))
	for _, a := range desc.AttributeDefinitions {
		attrTypes[aws.ToString(a.AttributeName)] = string(a.AttributeType)
	}

	t := Table{Name: name, Arn: aws.ToString(desc.TableArn), BillingMode: Provisioned, Tags: map[string]string{}}
	for _, k := range desc.KeySchema {
		key := Key{Name: aws.ToString(k.AttributeName), Type: attrTypes[aws.ToString(k.AttributeName)]}
		switch k.KeyType {
		case types.KeyTypeHash:
			t.HashKey = key
		case types.KeyTypeRange:
			t.RangeKey = &key
		}
	}

	// Tables created before on-demand billing existed carry no summary.
	if desc.BillingModeSummary != nil && desc.BillingModeSummary.BillingMode != "" {
		t.BillingMode = string(desc.BillingModeSummary.BillingMode)
	}
	if t.BillingMode == Provisioned && desc.ProvisionedThroughput != nil {
		t.ReadCapacity = aws.ToInt64(desc.ProvisionedThroughput.ReadCapacityUnits)
		t.WriteCapacity = aws.ToInt64(desc.ProvisionedThroughput.WriteCapacityUnits)
	}

	var token *string
	for {
		tags, err := m.client.ListTagsOfResource(ctx, &dynamodb.ListTagsOfResourceInput{
			ResourceArn: desc.TableArn,
			NextToken:   token,
		})
		if err != nil {
			return "", Table{}, fmt.Errorf("failed to list tags of table %s: %w", name, err)
		}
		for _, tag := range tags.Tags {
			t.Tags[aws.ToString(tag.Key)] = aws.ToString(tag.Value)
		}
		if aws.ToString(tags.NextToken) == "" {
			break
		}
		token = tags.NextToken
	}

	return name, t, nil
}

func (m *Manager) Compare(local, remote Table) []reconcile.Diff {
	var diffs []reconcile.Diff

	if local.keySchema() != remote.keySchema() {
		diffs = append(diffs, Change{Field: FieldKeySchema, Local: local.keySchema(), Remote: remote.keySchema()})
	}

	if local.BillingMode != remote.BillingMode {
		diffs = append(diffs, Change{Field: FieldBillingMode, Local: local.BillingMode, Remote: remote.BillingMode})
	} else if local.BillingMode == Provisioned &&
		(local.ReadCapacity != remote.ReadCapacity || local.WriteCapacity != remote.WriteCapacity) {
		diffs = append(diffs, Change{
			Field:  FieldThroughput,
			Local:  throughput(local),
			Remote: throughput(remote),
		})
	}

	if td := reconcile.DiffTags(local.Tags, remote.Tags); !td.Empty() {
		diffs = append(diffs, Change{Field: FieldTags, Tags: td, Arn: remote.Arn})
	}
	return diffs
}

func throughput(t Table) string {
	return fmt.Sprintf("r=%d w=%d", t.ReadCapacity, t.WriteCapacity)
}

func (m *Manager) Create(ctx context.Context, key string, local Table) error {
	input := &dynamodb.CreateTableInput{
		TableName:   aws.String(key),
		BillingMode: types.BillingMode(local.BillingMode),
		KeySchema: []types.KeySchemaElement{
			{AttributeName: aws.String(local.HashKey.Name), KeyType: types.KeyTypeHash},
		},
		AttributeDefinitions: []types.AttributeDefinition{
			{AttributeName: aws.String(local.HashKey.Name), AttributeType: types.ScalarAttributeType(local.HashKey.Type)},
		},
		ProvisionedThroughput: provisioned(local),
		Tags:                  toTags(local.Tags),
	}
	if local.RangeKey != nil {
		input.KeySchema = append(input.KeySchema, types.KeySchemaElement{
			AttributeName: aws.String(local.RangeKey.Name),
			KeyType:       types.KeyTypeRange,
		})
		input.AttributeDefinitions = append(input.AttributeDefinitions, types.AttributeDefinition{
			AttributeName: aws.String(local.RangeKey.Name),
			AttributeType: types.ScalarAttributeType(local.RangeKey.Type),
		})
	}

	if _, err := m.client.CreateTable(ctx, input); err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (m *Manager) Update(ctx context.Context, key string, local Table, diffs []reconcile.Diff) error {
	for _, d := range diffs {
		c, ok := d.(Change)
		if !ok {
			continue
		}

		switch c.Field {
		case FieldBillingMode:
			if _, err := m.client.UpdateTable(ctx, &dynamodb.UpdateTableInput{
				TableName:             aws.String(key),
				BillingMode:           types.BillingMode(local.BillingMode),
				ProvisionedThroughput: provisioned(local),
			}); err != nil {
				return fmt.Errorf("failed to update billing mode: %w", err)
			}
		case FieldThroughput:
			if _, err := m.client.UpdateTable(ctx, &dynamodb.UpdateTableInput{
				TableName:             aws.String(key),
				ProvisionedThroughput: provisioned(local),
			}); err != nil {
				return fmt.Errorf("failed to update throughput: %w", err)
			}
		case FieldTags:
			if len(c.Tags.Add) > 0 {
				if _, err := m.client.TagResource(ctx, &dynamodb.TagResourceInput{
					ResourceArn: aws.String(c.Arn),
					Tags:        toTags(c.Tags.AddMap()),
				}); err != nil {
					return fmt.Errorf("failed to tag table: %w", err)
				}
			}
			if stale := c.Tags.StaleKeys(); len(stale) > 0 {
				if _, err := m.client.UntagResource(ctx, &dynamodb.UntagResourceInput{
					ResourceArn: aws.String(c.Arn),
					TagKeys:     stale,
				}); err != nil {
					return fmt.Errorf("failed to untag table: %w", err)
				}
			}
		}
	}
	return nil
}

func provisioned(t Table) *types.ProvisionedThroughput {
	if t.BillingMode != Provisioned {
		return nil
	}
	return &types.ProvisionedThroughput{
		ReadCapacityUnits:  aws.Int64(t.ReadCapacity),
		WriteCapacityUnits: aws.Int64(t.WriteCapacity),
	}
}

func toTags(m map[string]string) []types.Tag {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(m[k])})
	}
	return out
}
