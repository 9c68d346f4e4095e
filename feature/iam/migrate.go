package iam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"cloud-manager/core/catalog"
	"cloud-manager/core/storage"
	"cloud-manager/core/unify"

	"go.uber.org/zap"
)

const s3Scheme = "s3://"

// Stores are the destinations of a migration, one per catalog directory.
type Stores struct {
	Roles              unify.ArtifactStore
	Groups             unify.ArtifactStore
	Policies           unify.ArtifactStore
	AssumeRolePolicies unify.ArtifactStore
}

// NewStores lays out a catalog under output, either a local directory or an
// s3://bucket/prefix location served by client.
func NewStores(output string, client storage.Client) (Stores, error) {
	if !strings.HasPrefix(output, s3Scheme) {
		dir := func(name string) unify.ArtifactStore {
			return &unify.DirStore{Dir: filepath.Join(output, name), Suffix: ".json"}
		}
		return Stores{
			Roles:              dir(catalog.RolesDir),
			Groups:             dir(catalog.GroupsDir),
			Policies:           dir(catalog.PoliciesDir),
			AssumeRolePolicies: dir(catalog.AssumeRolePoliciesDir),
		}, nil
	}

	if client == nil {
		return Stores{}, fmt.Errorf("output %s requires a storage client", output)
	}
	bucket, prefix, _ := strings.Cut(strings.TrimPrefix(output, s3Scheme), "/")
	if bucket == "" {
		return Stores{}, fmt.Errorf("output %s has no bucket", output)
	}
	obj := func(name string) unify.ArtifactStore {
		return &unify.BucketStore{Client: client, Bucket: bucket, Prefix: path.Join(prefix, name), Suffix: ".json"}
	}
	return Stores{
		Roles:              obj(catalog.RolesDir),
		Groups:             obj(catalog.GroupsDir),
		Policies:           obj(catalog.PoliciesDir),
		AssumeRolePolicies: obj(catalog.AssumeRolePoliciesDir),
	}, nil
}

// MigrateSummary counts what a migration wrote.
type MigrateSummary struct {
	Roles              int `json:"roles"`
	Groups             int `json:"groups"`
	AssumeRolePolicies int `json:"assume_role_policies"`
	SharedPolicies     int `json:"shared_policies"`
}

// Migrator converts live roles and groups into catalog files. Either
// manager may be nil to skip that resource type.
type Migrator struct {
	Roles  *Roles
	Groups *Groups
	Logger *zap.Logger
}

// Migrate fetches the live state and writes it to stores. Assume-role
// documents are deduplicated by content. Policy statements shared by several
// owners are promoted to shared policy files. Owner files are written last so
// that promotions made by later owners are reflected in earlier ones.
func (m *Migrator) Migrate(ctx context.Context, stores Stores) (MigrateSummary, error) {
	logger := m.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var summary MigrateSummary
	trust := unify.NewAssumeRoleUnifier(stores.AssumeRolePolicies)
	policies := unify.NewPolicyUnifier(stores.Policies)
	statements := make(map[string]unify.Document)

	var roles []*RoleConfig
	if m.Roles != nil {
		live, err := m.Roles.RemoteResources(ctx)
		if err != nil {
			return summary, err
		}
		for _, name := range sortedKeys(live) {
			role := live[name]
			cfg := &RoleConfig{
				name:            name,
				Description:     role.Description,
				ManagedPolicies: role.ManagedPolicies,
			}
			if role.Path != defaultPath {
				cfg.Path = role.Path
			}
			if len(role.Tags) > 0 {
				cfg.Tags = role.Tags
			}

			if !role.AssumeRolePolicy.IsZero() {
				content, err := role.AssumeRolePolicy.Pretty()
				if err != nil {
					return summary, err
				}
				if err := trust.Unify(ctx, cfg, string(content), name); err != nil {
					return summary, fmt.Errorf("role %s: %w", name, err)
				}
			}
			if err := unifyPolicies(ctx, policies, cfg, role.InlinePolicies, statements); err != nil {
				return summary, fmt.Errorf("role %s: %w", name, err)
			}
			roles = append(roles, cfg)
		}
	}

	var groups []*GroupConfig
	if m.Groups != nil {
		live, err := m.Groups.RemoteResources(ctx)
		if err != nil {
			return summary, err
		}
		for _, name := range sortedKeys(live) {
			group := live[name]
			cfg := &GroupConfig{name: name, ManagedPolicies: group.ManagedPolicies}
			if group.Path != defaultPath {
				cfg.Path = group.Path
			}
			if err := unifyPolicies(ctx, policies, cfg, group.InlinePolicies, statements); err != nil {
				return summary, fmt.Errorf("group %s: %w", name, err)
			}
			groups = append(groups, cfg)
		}
	}

	for _, cfg := range roles {
		if err := writeConfig(ctx, stores.Roles, cfg.name, cfg); err != nil {
			return summary, err
		}
		summary.Roles++
	}
	for _, cfg := range groups {
		if err := writeConfig(ctx, stores.Groups, cfg.name, cfg); err != nil {
			return summary, err
		}
		summary.Groups++
	}
	summary.AssumeRolePolicies = trust.Len()
	summary.SharedPolicies = countShared(policies, statements)

	logger.Info("Migration completed",
		zap.Int("roles", summary.Roles),
		zap.Int("groups", summary.Groups),
		zap.Int("assume_role_policies", summary.AssumeRolePolicies),
		zap.Int("shared_policies", summary.SharedPolicies),
	)
	return summary, nil
}

// unifyPolicies feeds every distinct statement of holder once, suggesting
// the inline policy name it was found in. Each statement is also added to
// all, keyed by canonical form.
func unifyPolicies(ctx context.Context, u *unify.PolicyUnifier, holder unify.PolicyHolder, inline []InlinePolicy, all map[string]unify.Document) error {
	seen := make(map[string]struct{})
	for _, p := range inline {
		for _, stmt := range p.Statements {
			if _, ok := seen[stmt.Key()]; ok {
				continue
			}
			seen[stmt.Key()] = struct{}{}
			all[stmt.Key()] = stmt
			if err := u.Unify(ctx, holder, stmt, p.Name); err != nil {
				return err
			}
		}
	}
	return nil
}

// countShared returns the number of distinct policy files statements were
// promoted to.
func countShared(u *unify.PolicyUnifier, statements map[string]unify.Document) int {
	names := make(map[string]struct{})
	for _, stmt := range statements {
		if name, ok := u.Shared(stmt); ok {
			names[name] = struct{}{}
		}
	}
	return len(names)
}

func writeConfig(ctx context.Context, store unify.ArtifactStore, name string, v any) error {
	data, err := catalog.Encode(v)
	if err != nil {
		return err
	}
	return store.Write(ctx, name, data)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
