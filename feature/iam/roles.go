package iam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"cloud-manager/core/catalog"
	"cloud-manager/core/reconcile"
	"cloud-manager/core/unify"
	"cloud-manager/core/workpool"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
	"go.uber.org/zap"
)

// serviceRolePath prefixes roles owned by AWS services. They cannot be
// managed and are left out of the remote snapshot.
const serviceRolePath = "/aws-service-role/"

const defaultPath = "/"

// RoleConfig is the catalog form of a role.
type RoleConfig struct {
	Path             string            `json:"path,omitempty"`
	Description      string            `json:"description,omitempty"`
	AssumeRolePolicy string            `json:"assume_role_policy"`
	Policies         []string          `json:"policies,omitempty"`
	InlinePolicies   []unify.Document  `json:"inline_policies,omitempty"`
	ManagedPolicies  []string          `json:"managed_policies,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`

	name string
}

// SetAssumeRolePolicy references a shared assume-role document.
func (c *RoleConfig) SetAssumeRolePolicy(name string) {
	c.AssumeRolePolicy = name
}

// OwnerName returns the role name.
func (c *RoleConfig) OwnerName() string {
	return c.name
}

// AddInline appends an inline statement.
func (c *RoleConfig) AddInline(doc unify.Document) {
	c.InlinePolicies = append(c.InlinePolicies, doc)
}

// RemoveInline drops every inline statement equal to doc.
func (c *RoleConfig) RemoveInline(doc unify.Document) {
	c.InlinePolicies = removeDocument(c.InlinePolicies, doc)
}

// AddShared references a shared policy file once.
func (c *RoleConfig) AddShared(name string) {
	c.Policies = addName(c.Policies, name)
}

// Role is the resolved state of a role, either declared or live.
type Role struct {
	Name             string            `json:"name"`
	Arn              string            `json:"arn,omitempty"`
	Path             string            `json:"path"`
	Description      string            `json:"description,omitempty"`
	AssumeRolePolicy unify.Document    `json:"assume_role_policy"`
	InlinePolicies   []InlinePolicy    `json:"inline_policies,omitempty"`
	ManagedPolicies  []string          `json:"managed_policies,omitempty"`
	Tags             map[string]string `json:"tags,omitempty"`
}

// RoleField names the part of a role a RoleChange concerns.
type RoleField int

const (
	RolePath RoleField = iota + 1
	RoleDescription
	RoleAssumeRolePolicy
	RolePolicy
	RoleManagedPolicies
	RoleTags
)

func (f RoleField) String() string {
	switch f {
	case RolePath:
		return "path"
	case RoleDescription:
		return "description"
	case RoleAssumeRolePolicy:
		return "assume_role_policy"
	case RolePolicy:
		return "policy"
	case RoleManagedPolicies:
		return "managed_policies"
	case RoleTags:
		return "tags"
	default:
		return "unknown"
	}
}

// RoleChange is a single difference between a declared and a live role.
type RoleChange struct {
	Field RoleField
	// Local and Remote hold the compared values for scalar fields.
	Local, Remote string
	// Attach and Detach list managed policy ARNs.
	Attach, Detach []string
	// StalePolicies lists live inline policies to delete.
	StalePolicies []string
	Tags          reconcile.TagDiff
}

func (c RoleChange) String() string {
	switch c.Field {
	case RoleTags:
		return c.Tags.String()
	case RoleManagedPolicies:
		return describeSet(c.Field.String(), c.Attach, c.Detach)
	case RoleAssumeRolePolicy, RolePolicy:
		return c.Field.String() + ": document differs"
	case RolePath:
		return fmt.Sprintf("%s: %q -> %q (immutable)", c.Field, c.Remote, c.Local)
	default:
		return fmt.Sprintf("%s: %q -> %q", c.Field, c.Remote, c.Local)
	}
}

// Informational is true for the path, which cannot change after creation.
func (c RoleChange) Informational() bool {
	return c.Field == RolePath
}

// Roles reconciles IAM roles.
type Roles struct {
	client  Client
	root    string
	workers int
	logger  *zap.Logger
}

// NewRoles creates a role manager reading the catalog under root.
func NewRoles(client Client, root string, workers int, logger *zap.Logger) *Roles {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roles{client: client, root: root, workers: workers, logger: logger}
}

func (m *Roles) Name() string {
	return "roles"
}

// LocalResources resolves every role file against the shared policy and
// assume-role libraries.
func (m *Roles) LocalResources(ctx context.Context) (map[string]Role, error) {
	configs, err := catalog.Load[RoleConfig](filepath.Join(m.root, catalog.RolesDir))
	if err != nil {
		return nil, err
	}
	library, err := loadLibrary(m.root)
	if err != nil {
		return nil, err
	}
	trust, err := loadAssumeRolePolicies(m.root)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(configs))
	for name := range configs {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]Role, len(configs))
	for _, name := range names {
		role, err := resolveRole(name, configs[name], library, trust)
		if err != nil {
			return nil, err
		}
		out[name] = role
	}
	return out, nil
}

func resolveRole(name string, cfg RoleConfig, library map[string][]unify.Document, trust map[string]unify.Document) (Role, error) {
	role := Role{
		Name:            name,
		Path:            cfg.Path,
		Description:     cfg.Description,
		ManagedPolicies: sorted(cfg.ManagedPolicies),
		Tags:            cfg.Tags,
	}
	if role.Path == "" {
		role.Path = defaultPath
	}
	if role.Tags == nil {
		role.Tags = map[string]string{}
	}

	doc, ok := trust[cfg.AssumeRolePolicy]
	if !ok {
		return Role{}, fmt.Errorf("%w: role %s references unknown assume role policy %q", catalog.ErrInvalid, name, cfg.AssumeRolePolicy)
	}
	role.AssumeRolePolicy = doc

	stmts, err := resolveStatements("role "+name, cfg.Policies, cfg.InlinePolicies, library)
	if err != nil {
		return Role{}, err
	}
	if len(stmts) > 0 {
		role.InlinePolicies = []InlinePolicy{{Name: name, Statements: stmts}}
	}
	return role, nil
}

func loadAssumeRolePolicies(root string) (map[string]unify.Document, error) {
	dir := filepath.Join(root, catalog.AssumeRolePoliciesDir)
	raw, err := catalog.LoadRaw(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]unify.Document, len(raw))
	for name, data := range raw {
		doc, err := unify.ParseDocument(data)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", catalog.ErrInvalid, filepath.Join(dir, name+".json"), err)
		}
		out[name] = doc
	}
	return out, nil
}

// RemoteResources lists every role and fetches its policies and tags
// concurrently.
func (m *Roles) RemoteResources(ctx context.Context) (map[string]Role, error) {
	var listed []types.Role
	p := awsiam.NewListRolesPaginator(m.client, &awsiam.ListRolesInput{})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list roles: %w", err)
		}
		for _, r := range page.Roles {
			if strings.HasPrefix(aws.ToString(r.Path), serviceRolePath) {
				continue
			}
			listed = append(listed, r)
		}
	}
	return workpool.Collect(ctx, m.workers, m.logger, listed, m.describe)
}

func (m *Roles) describe(ctx context.Context, r types.Role) (string, Role, error) {
	name := aws.ToString(r.RoleName)
	role := Role{
		Name:        name,
		Arn:         aws.ToString(r.Arn),
		Path:        aws.ToString(r.Path),
		Description: aws.ToString(r.Description),
		Tags:        map[string]string{},
	}

	if encoded := aws.ToString(r.AssumeRolePolicyDocument); encoded != "" {
		raw, err := decodeDocument(encoded)
		if err != nil {
			return "", Role{}, fmt.Errorf("role %s: %w", name, err)
		}
		if role.AssumeRolePolicy, err = unify.ParseDocument(raw); err != nil {
			return "", Role{}, fmt.Errorf("role %s: %w", name, err)
		}
	}

	policies := awsiam.NewListRolePoliciesPaginator(m.client, &awsiam.ListRolePoliciesInput{RoleName: aws.String(name)})
	for policies.HasMorePages() {
		page, err := policies.NextPage(ctx)
		if err != nil {
			return "", Role{}, fmt.Errorf("failed to list inline policies of role %s: %w", name, err)
		}
		for _, policyName := range page.PolicyNames {
			out, err := m.client.GetRolePolicy(ctx, &awsiam.GetRolePolicyInput{
				RoleName:   aws.String(name),
				PolicyName: aws.String(policyName),
			})
			if err != nil {
				return "", Role{}, fmt.Errorf("failed to get policy %s of role %s: %w", policyName, name, err)
			}
			policy, err := inlinePolicy(policyName, aws.ToString(out.PolicyDocument))
			if err != nil {
				return "", Role{}, fmt.Errorf("role %s: %w", name, err)
			}
			role.InlinePolicies = append(role.InlinePolicies, policy)
		}
	}
	sort.Slice(role.InlinePolicies, func(i, j int) bool { return role.InlinePolicies[i].Name < role.InlinePolicies[j].Name })

	attached := awsiam.NewListAttachedRolePoliciesPaginator(m.client, &awsiam.ListAttachedRolePoliciesInput{RoleName: aws.String(name)})
	for attached.HasMorePages() {
		page, err := attached.NextPage(ctx)
		if err != nil {
			return "", Role{}, fmt.Errorf("failed to list attached policies of role %s: %w", name, err)
		}
		for _, a := range page.AttachedPolicies {
			role.ManagedPolicies = append(role.ManagedPolicies, aws.ToString(a.PolicyArn))
		}
	}
	sort.Strings(role.ManagedPolicies)

	tags := awsiam.NewListRoleTagsPaginator(m.client, &awsiam.ListRoleTagsInput{RoleName: aws.String(name)})
	for tags.HasMorePages() {
		page, err := tags.NextPage(ctx)
		if err != nil {
			return "", Role{}, fmt.Errorf("failed to list tags of role %s: %w", name, err)
		}
		for k, v := range toTagMap(page.Tags) {
			role.Tags[k] = v
		}
	}

	return name, role, nil
}

func inlinePolicy(name, encoded string) (InlinePolicy, error) {
	raw, err := decodeDocument(encoded)
	if err != nil {
		return InlinePolicy{}, err
	}
	stmts, err := ParseStatements(raw)
	if err != nil {
		return InlinePolicy{}, fmt.Errorf("policy %s: %w", name, err)
	}
	return InlinePolicy{Name: name, Statements: stmts}, nil
}

// Compare lists the differences between a declared and a live role.
func (m *Roles) Compare(local, remote Role) []reconcile.Diff {
	var diffs []reconcile.Diff

	if local.Path != remote.Path {
		diffs = append(diffs, RoleChange{Field: RolePath, Local: local.Path, Remote: remote.Path})
	}
	if local.Description != remote.Description {
		diffs = append(diffs, RoleChange{Field: RoleDescription, Local: local.Description, Remote: remote.Description})
	}
	if !local.AssumeRolePolicy.Equal(remote.AssumeRolePolicy) {
		diffs = append(diffs, RoleChange{
			Field:  RoleAssumeRolePolicy,
			Local:  local.AssumeRolePolicy.String(),
			Remote: remote.AssumeRolePolicy.String(),
		})
	}

	localStmts := statementSet(local.InlinePolicies)
	if !sameStatements(localStmts, statementSet(remote.InlinePolicies)) {
		keep := ""
		if len(localStmts) > 0 {
			keep = local.Name
		}
		diffs = append(diffs, RoleChange{Field: RolePolicy, StalePolicies: policyNames(remote.InlinePolicies, keep)})
	}

	if attach, detach := diffStrings(local.ManagedPolicies, remote.ManagedPolicies); len(attach)+len(detach) > 0 {
		diffs = append(diffs, RoleChange{Field: RoleManagedPolicies, Attach: attach, Detach: detach})
	}
	if td := reconcile.DiffTags(local.Tags, remote.Tags); !td.Empty() {
		diffs = append(diffs, RoleChange{Field: RoleTags, Tags: td})
	}
	return diffs
}

// Create creates the role with its policy, attachments and tags.
func (m *Roles) Create(ctx context.Context, key string, local Role) error {
	if local.AssumeRolePolicy.IsZero() {
		return fmt.Errorf("role %s has no assume role policy", key)
	}

	input := &awsiam.CreateRoleInput{
		RoleName:                 aws.String(key),
		AssumeRolePolicyDocument: aws.String(local.AssumeRolePolicy.String()),
		Path:                     aws.String(local.Path),
		Tags:                     fromTagMap(local.Tags),
	}
	if local.Description != "" {
		input.Description = aws.String(local.Description)
	}
	if _, err := m.client.CreateRole(ctx, input); err != nil {
		return fmt.Errorf("failed to create role: %w", err)
	}

	if stmts := statementSet(local.InlinePolicies); len(stmts) > 0 {
		if err := m.putPolicy(ctx, key, stmts); err != nil {
			return err
		}
	}
	return m.attach(ctx, key, local.ManagedPolicies)
}

// Update applies diffs to the live role.
func (m *Roles) Update(ctx context.Context, key string, local Role, diffs []reconcile.Diff) error {
	for _, d := range diffs {
		c, ok := d.(RoleChange)
		if !ok {
			continue
		}

		var err error
		switch c.Field {
		case RoleDescription:
			_, err = m.client.UpdateRole(ctx, &awsiam.UpdateRoleInput{
				RoleName:    aws.String(key),
				Description: aws.String(local.Description),
			})
		case RoleAssumeRolePolicy:
			_, err = m.client.UpdateAssumeRolePolicy(ctx, &awsiam.UpdateAssumeRolePolicyInput{
				RoleName:       aws.String(key),
				PolicyDocument: aws.String(local.AssumeRolePolicy.String()),
			})
		case RolePolicy:
			err = m.replacePolicy(ctx, key, statementSet(local.InlinePolicies), c.StalePolicies)
		case RoleManagedPolicies:
			if err = m.attach(ctx, key, c.Attach); err == nil {
				err = m.detach(ctx, key, c.Detach)
			}
		case RoleTags:
			err = m.retag(ctx, key, c.Tags)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", c.Field, err)
		}
	}
	return nil
}

func (m *Roles) putPolicy(ctx context.Context, key string, stmts []unify.Document) error {
	doc, err := RenderPolicy(stmts)
	if err != nil {
		return err
	}
	_, err = m.client.PutRolePolicy(ctx, &awsiam.PutRolePolicyInput{
		RoleName:       aws.String(key),
		PolicyName:     aws.String(key),
		PolicyDocument: aws.String(doc),
	})
	return err
}

// replacePolicy writes the single role-named policy, then deletes stale ones.
func (m *Roles) replacePolicy(ctx context.Context, key string, stmts []unify.Document, stale []string) error {
	if len(stmts) > 0 {
		if err := m.putPolicy(ctx, key, stmts); err != nil {
			return err
		}
	}
	for _, name := range stale {
		if _, err := m.client.DeleteRolePolicy(ctx, &awsiam.DeleteRolePolicyInput{
			RoleName:   aws.String(key),
			PolicyName: aws.String(name),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Roles) attach(ctx context.Context, key string, arns []string) error {
	for _, arn := range arns {
		if _, err := m.client.AttachRolePolicy(ctx, &awsiam.AttachRolePolicyInput{
			RoleName:  aws.String(key),
			PolicyArn: aws.String(arn),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Roles) detach(ctx context.Context, key string, arns []string) error {
	for _, arn := range arns {
		if _, err := m.client.DetachRolePolicy(ctx, &awsiam.DetachRolePolicyInput{
			RoleName:  aws.String(key),
			PolicyArn: aws.String(arn),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (m *Roles) retag(ctx context.Context, key string, td reconcile.TagDiff) error {
	if len(td.Add) > 0 {
		if _, err := m.client.TagRole(ctx, &awsiam.TagRoleInput{
			RoleName: aws.String(key),
			Tags:     fromTagMap(td.AddMap()),
		}); err != nil {
			return err
		}
	}
	if stale := td.StaleKeys(); len(stale) > 0 {
		if _, err := m.client.UntagRole(ctx, &awsiam.UntagRoleInput{
			RoleName: aws.String(key),
			TagKeys:  stale,
		}); err != nil {
			return err
		}
	}
	return nil
}

func describeSet(field string, add, remove []string) string {
	var b strings.Builder
	b.WriteString(field)
	b.WriteString(":")
	for _, v := range add {
		b.WriteString(" +")
		b.WriteString(v)
	}
	for _, v := range remove {
		b.WriteString(" -")
		b.WriteString(v)
	}
	return b.String()
}

func removeDocument(docs []unify.Document, doc unify.Document) []unify.Document {
	out := docs[:0]
	for _, d := range docs {
		if !d.Equal(doc) {
			out = append(out, d)
		}
	}
	return out
}

func addName(names []string, name string) []string {
	for _, n := range names {
		if n == name {
			return names
		}
	}
	return append(names, name)
}
