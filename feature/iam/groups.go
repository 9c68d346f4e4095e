package iam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"

	"cloud-manager/core/catalog"
	"cloud-manager/core/reconcile"
	"cloud-manager/core/unify"
	"cloud-manager/core/workpool"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"go.uber.org/zap"
)

// GroupConfig is the catalog form of a group.
type GroupConfig struct {
	Path            string           `json:"path,omitempty"`
	Policies        []string         `json:"policies,omitempty"`
	InlinePolicies  []unify.Document `json:"inline_policies,omitempty"`
	ManagedPolicies []string         `json:"managed_policies,omitempty"`

	name string
}

func (c *GroupConfig) OwnerName() string {
	return c.name
}

func (c *GroupConfig) AddInline(doc unify.Document) {
	c.InlinePolicies = append(c.InlinePolicies, doc)
}

func (c *GroupConfig) RemoveInline(doc unify.Document) {
	c.InlinePolicies = removeDocument(c.InlinePolicies, doc)
}

func (c *GroupConfig) AddShared(name string) {
	c.Policies = addName(c.Policies, name)
}

// Group is the resolved state of a group.
type Group struct {
	Name            string         `json:"name"`
	Arn             string         `json:"arn,omitempty"`
	Path            string         `json:"path"`
	InlinePolicies  []InlinePolicy `json:"inline_policies,omitempty"`
	ManagedPolicies []string       `json:"managed_policies,omitempty"`
}

// GroupField names the part of a group a GroupChange concerns.
type GroupField int

const (
	GroupPath GroupField = iota + 1
	GroupPolicy
	GroupManagedPolicies
)

func (f GroupField) String() string {
	switch f {
	case GroupPath:
		return "path"
	case GroupPolicy:
		return "policy"
	case GroupManagedPolicies:
		return "managed_policies"
	default:
		return "unknown"
	}
}

// GroupChange is a single difference between a declared and a live group.
type GroupChange struct {
	Field          GroupField
	Local, Remote  string
	Attach, Detach []string
	StalePolicies  []string
}

func (c GroupChange) String() string {
	switch c.Field {
	case GroupPath:
		return fmt.Sprintf("%s: %q -> %q (immutable)", c.Field, c.Remote, c.Local)
	case GroupManagedPolicies:
		return describeSet(c.Field.String(), c.Attach, c.Detach)
	default:
		return c.Field.String() + ": document differs"
	}
}

func (c GroupChange) Informational() bool {
	return c.Field == GroupPath
}

// Groups reconciles IAM groups.
type Groups struct {
	client  Client
	root    string
	workers int
	logger  *zap.Logger
}

// NewGroups creates a group manager reading the catalog under root.
func NewGroups(client Client, root string, workers int, logger *zap.Logger) *Groups {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Groups{client: client, root: root, workers: workers, logger: logger}
}

func (m *Groups) Name() string {
	return "groups"
}

func (m *Groups) LocalResources(ctx context.Context) (map[string]Group, error) {
	configs, err := catalog.Load[GroupConfig](filepath.Join(m.root, catalog.GroupsDir))
	if err != nil {
		return nil, err
	}
	library, err := loadLibrary(m.root)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]Group, len(configs))
	for _, name := range names {
		cfg := configs[name]
		group := Group{Name: name, Path: cfg.Path, ManagedPolicies: sorted(cfg.ManagedPolicies)}
		if group.Path == "" {
			group.Path = defaultPath
		}
		stmts, err := resolveStatements("group "+name, cfg.Policies, cfg.InlinePolicies, library)
		if err != nil {
			return nil, err
		}
		if len(stmts) > 0 {
			group.InlinePolicies = []InlinePolicy{{Name: name, Statements: stmts}}
		}
		out[name] = group
	}
	return out, nil
}

func (m *Groups) RemoteResources(ctx context.Context) (map[string]Group, error) {
	var listed []types.Group
	p := awsiam.NewListGroupsPaginator(m.client, &awsiam.ListGroupsInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list groups: %w", err)
		}
		listed = append(listed, page.Groups...)
	}
	return workpool.Collect(ctx, m.workers, m.logger, listed, m.describe)
}

func (m *Groups) describe(ctx context.Context, g types.Group) (string, Group, error) {
	name := aws.ToString(g.GroupName)
	group := Group{Name: name, Arn: aws.ToString(g.Arn), Path: aws.ToString(g.Path)}

	policies := awsiam.NewListGroupPoliciesPaginator(m.client, &awsiam.ListGroupPoliciesInput{GroupName: aws.String(name)})
	for policies.HasMorePages() {
		page, err := policies.NextPage(ctx)
		if err != nil {
			return "", Group{}, fmt.Errorf("failed to list inline policies of group %s: %w", name, err)
		}
		for _, policyName := range page.PolicyNames {
			out, err := m.client.GetGroupPolicy(ctx, &awsiam.GetGroupPolicyInput{
				GroupName:  aws.String(name),
				PolicyName: aws.String(policyName),
			})
			if err != nil {
				return "", Group{}, fmt.Errorf("failed to get policy %s of group %s: %w", policyName, name, err)
			}
			policy, err := inlinePolicy(policyName, aws.ToString(out.PolicyDocument))
			if err != nil {
				return "", Group{}, fmt.Errorf("group %s: %w", name, err)
			}
			group.InlinePolicies = append(group.InlinePolicies, policy)
		}
	}
	sort.Slice(group.InlinePolicies, func(i, j int) bool { return group.InlinePolicies[i].Name < group.InlinePolicies[j].Name })

	attached := awsiam.NewListAttachedGroupPoliciesPaginator(m.client, &awsiam.ListAttachedGroupPoliciesInput{GroupName: aws.String(name)})
	for attached.HasMorePages() {
		page, err := attached.NextPage(ctx)
		if err != nil {
			return "", Group{}, fmt.Errorf("failed to list attached policies of group %s: %w", name, err)
		}
		for _, a := range page.AttachedPolicies {
			group.ManagedPolicies = append(group.ManagedPolicies, aws.ToString(a.PolicyArn))
		}
	}
	sort.Strings(group.ManagedPolicies)

	return name, group, nil
}

func (m *Groups) Compare(local, remote Group) []reconcile.Diff {
	var diffs []reconcile.Diff

	if local.Path != remote.Path {
		diffs = append(diffs, GroupChange{Field: GroupPath, Local: local.Path, Remote: remote.Path})
	}

	localStmts := statementSet(local.InlinePolicies)
	if !sameStatements(localStmts, statementSet(remote.InlinePolicies)) {
		keep := ""
		if len(localStmts) > 0 {
			keep = local.Name
		}
		diffs = append(diffs, GroupChange{Field: GroupPolicy, StalePolicies: policyNames(remote.InlinePolicies, keep)})
	}

	if attach, detach := diffStrings(local.ManagedPolicies, remote.ManagedPolicies); len(attach)+len(detach) > 0 {
		diffs = append(diffs, GroupChange{Field: GroupManagedPolicies, Attach: attach, Detach: detach})
	}
	return diffs
}

func (m *Groups) Create(ctx context.Context, key string, local Group) error {
	if _, err := m.client.CreateGroup(ctx, &awsiam.CreateGroupInput{
		GroupName: aws.String(key),
		Path:      aws.String(local.Path),
	}); err != nil {
		return fmt.Errorf("failed to create group: %w", err)
	}

	if err := m.replacePolicy(ctx, key, statementSet(local.InlinePolicies), nil); err != nil {
		return err
	}
	for _, arn := range local.ManagedPolicies {
		if _, err := m.client.AttachGroupPolicy(ctx, &awsiam.AttachGroupPolicyInput{
			GroupName: aws.String(key),
			PolicyArn: aws.String(arn),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Groups) Update(ctx context.Context, key string, local Group, diffs []reconcile.Diff) error {
	for _, d := range diffs {
		c, ok := d.(GroupChange)
		if !ok {
			continue
		}

		switch c.Field {
		case GroupPolicy:
			if err := m.replacePolicy(ctx, key, statementSet(local.InlinePolicies), c.StalePolicies); err != nil {
				return fmt.Errorf("%s: %w", c.Field, err)
			}
		case GroupManagedPolicies:
			for _, arn := range c.Attach {
				if _, err := m.client.AttachGroupPolicy(ctx, &awsiam.AttachGroupPolicyInput{
					GroupName: aws.String(key),
					PolicyArn: aws.String(arn),
				}); err != nil {
					return fmt.Errorf("%s: %w", c.Field, err)
				}
			}
			for _, arn := range c.Detach {
				if _, err := m.client.DetachGroupPolicy(ctx, &awsiam.DetachGroupPolicyInput{
					GroupName: aws.String(key),
					PolicyArn: aws.String(arn),
				}); err != nil {
					return fmt.Errorf("%s: %w", c.Field, err)
				}
			}
		}
	}
	return nil
}

func (m *Groups) replacePolicy(ctx context.Context, key string, stmts []unify.Document, stale []string) error {
	if len(stmts) > 0 {
		doc, err := RenderPolicy(stmts)
		if err != nil {
			return err
		}
		if _, err := m.client.PutGroupPolicy(ctx, &awsiam.PutGroupPolicyInput{
			GroupName:      aws.String(key),
			PolicyName:     aws.String(key),
			PolicyDocument: aws.String(doc),
		}); err != nil {
			return err
		}
	}
	for _, name := range stale {
		if _, err := m.client.DeleteGroupPolicy(ctx, &awsiam.DeleteGroupPolicyInput{
			GroupName:  aws.String(key),
			PolicyName: aws.String(name),
		}); err != nil {
			return err
		}
	}
	return nil
}
