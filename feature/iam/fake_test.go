package iam_test

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
)

type fakeRole struct {
	role     types.Role
	inline   map[string]string
	attached []string
	tags     map[string]string
}

type fakeGroup struct {
	group    types.Group
	inline   map[string]string
	attached []string
}

// fakeIAM is an in-memory IAM account. Policy documents are stored URL
// encoded, the way the service returns them.
type fakeIAM struct {
	mu     sync.Mutex
	roles  map[string]*fakeRole
	groups map[string]*fakeGroup
	calls  []string
	fail   map[string]error
}

func newFakeIAM() *fakeIAM {
	return &fakeIAM{
		roles:  map[string]*fakeRole{},
		groups: map[string]*fakeGroup{},
		fail:   map[string]error{},
	}
}

func (f *fakeIAM) addRole(name, path, trust string) *fakeRole {
	r := &fakeRole{
		role: types.Role{
			RoleName:                 aws.String(name),
			Arn:                      aws.String("arn:aws:iam::123456789012:role" + path + name),
			Path:                     aws.String(path),
			AssumeRolePolicyDocument: aws.String(url.QueryEscape(trust)),
		},
		inline: map[string]string{},
		tags:   map[string]string{},
	}
	f.roles[name] = r
	return r
}

func (f *fakeIAM) addGroup(name string) *fakeGroup {
	g := &fakeGroup{
		group:  types.Group{GroupName: aws.String(name), Path: aws.String("/"), Arn: aws.String("arn:aws:iam::123456789012:group/" + name)},
		inline: map[string]string{},
	}
	f.groups[name] = g
	return g
}

func (f *fakeIAM) record(op string, args ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := op
	for _, a := range args {
		call += " " + a
	}
	f.calls = append(f.calls, call)
	return f.fail[op]
}

func (f *fakeIAM) role(name string) (*fakeRole, error) {
	r, ok := f.roles[name]
	if !ok {
		return nil, &types.NoSuchEntityException{Message: aws.String("role " + name)}
	}
	return r, nil
}

func (f *fakeIAM) group(name string) (*fakeGroup, error) {
	g, ok := f.groups[name]
	if !ok {
		return nil, &types.NoSuchEntityException{Message: aws.String("group " + name)}
	}
	return g, nil
}

func sortedNames[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (f *fakeIAM) ListRoles(ctx context.Context, params *awsiam.ListRolesInput, optFns ...func(*awsiam.Options)) (*awsiam.ListRolesOutput, error) {
	if err := f.record("ListRoles"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &awsiam.ListRolesOutput{}
	for _, name := range sortedNames(f.roles) {
		out.Roles = append(out.Roles, f.roles[name].role)
	}
	return out, nil
}

func (f *fakeIAM) ListRolePolicies(ctx context.Context, params *awsiam.ListRolePoliciesInput, optFns ...func(*awsiam.Options)) (*awsiam.ListRolePoliciesOutput, error) {
	if err := f.record("ListRolePolicies", aws.ToString(params.RoleName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	return &awsiam.ListRolePoliciesOutput{PolicyNames: sortedNames(r.inline)}, nil
}

func (f *fakeIAM) GetRolePolicy(ctx context.Context, params *awsiam.GetRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRolePolicyOutput, error) {
	if err := f.record("GetRolePolicy", aws.ToString(params.RoleName), aws.ToString(params.PolicyName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	return &awsiam.GetRolePolicyOutput{
		RoleName:       params.RoleName,
		PolicyName:     params.PolicyName,
		PolicyDocument: aws.String(url.QueryEscape(r.inline[aws.ToString(params.PolicyName)])),
	}, nil
}

func (f *fakeIAM) ListAttachedRolePolicies(ctx context.Context, params *awsiam.ListAttachedRolePoliciesInput, optFns ...func(*awsiam.Options)) (*awsiam.ListAttachedRolePoliciesOutput, error) {
	if err := f.record("ListAttachedRolePolicies", aws.ToString(params.RoleName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	out := &awsiam.ListAttachedRolePoliciesOutput{}
	for _, arn := range r.attached {
		out.AttachedPolicies = append(out.AttachedPolicies, types.AttachedPolicy{PolicyArn: aws.String(arn)})
	}
	return out, nil
}

func (f *fakeIAM) ListRoleTags(ctx context.Context, params *awsiam.ListRoleTagsInput, optFns ...func(*awsiam.Options)) (*awsiam.ListRoleTagsOutput, error) {
	if err := f.record("ListRoleTags", aws.ToString(params.RoleName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	out := &awsiam.ListRoleTagsOutput{}
	for _, k := range sortedNames(r.tags) {
		out.Tags = append(out.Tags, types.Tag{Key: aws.String(k), Value: aws.String(r.tags[k])})
	}
	return out, nil
}

func (f *fakeIAM) CreateRole(ctx context.Context, params *awsiam.CreateRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.CreateRoleOutput, error) {
	name := aws.ToString(params.RoleName)
	if err := f.record("CreateRole", name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.roles[name]; ok {
		return nil, &types.EntityAlreadyExistsException{Message: aws.String(name)}
	}
	r := f.addRole(name, aws.ToString(params.Path), aws.ToString(params.AssumeRolePolicyDocument))
	r.role.Description = params.Description
	for _, t := range params.Tags {
		r.tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return &awsiam.CreateRoleOutput{Role: &r.role}, nil
}

func (f *fakeIAM) UpdateRole(ctx context.Context, params *awsiam.UpdateRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.UpdateRoleOutput, error) {
	if err := f.record("UpdateRole", aws.ToString(params.RoleName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	r.role.Description = params.Description
	return &awsiam.UpdateRoleOutput{}, nil
}

func (f *fakeIAM) UpdateAssumeRolePolicy(ctx context.Context, params *awsiam.UpdateAssumeRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.UpdateAssumeRolePolicyOutput, error) {
	if err := f.record("UpdateAssumeRolePolicy", aws.ToString(params.RoleName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	r.role.AssumeRolePolicyDocument = aws.String(url.QueryEscape(aws.ToString(params.PolicyDocument)))
	return &awsiam.UpdateAssumeRolePolicyOutput{}, nil
}

func (f *fakeIAM) PutRolePolicy(ctx context.Context, params *awsiam.PutRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.PutRolePolicyOutput, error) {
	if err := f.record("PutRolePolicy", aws.ToString(params.RoleName), aws.ToString(params.PolicyName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	r.inline[aws.ToString(params.PolicyName)] = aws.ToString(params.PolicyDocument)
	return &awsiam.PutRolePolicyOutput{}, nil
}

func (f *fakeIAM) DeleteRolePolicy(ctx context.Context, params *awsiam.DeleteRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DeleteRolePolicyOutput, error) {
	if err := f.record("DeleteRolePolicy", aws.ToString(params.RoleName), aws.ToString(params.PolicyName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	delete(r.inline, aws.ToString(params.PolicyName))
	return &awsiam.DeleteRolePolicyOutput{}, nil
}

func (f *fakeIAM) AttachRolePolicy(ctx context.Context, params *awsiam.AttachRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.AttachRolePolicyOutput, error) {
	if err := f.record("AttachRolePolicy", aws.ToString(params.RoleName), aws.ToString(params.PolicyArn)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	r.attached = append(r.attached, aws.ToString(params.PolicyArn))
	return &awsiam.AttachRolePolicyOutput{}, nil
}

func (f *fakeIAM) DetachRolePolicy(ctx context.Context, params *awsiam.DetachRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DetachRolePolicyOutput, error) {
	if err := f.record("DetachRolePolicy", aws.ToString(params.RoleName), aws.ToString(params.PolicyArn)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	r.attached = without(r.attached, aws.ToString(params.PolicyArn))
	return &awsiam.DetachRolePolicyOutput{}, nil
}

func (f *fakeIAM) TagRole(ctx context.Context, params *awsiam.TagRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.TagRoleOutput, error) {
	if err := f.record("TagRole", aws.ToString(params.RoleName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	for _, t := range params.Tags {
		r.tags[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return &awsiam.TagRoleOutput{}, nil
}

func (f *fakeIAM) UntagRole(ctx context.Context, params *awsiam.UntagRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.UntagRoleOutput, error) {
	if err := f.record("UntagRole", aws.ToString(params.RoleName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	r, err := f.role(aws.ToString(params.RoleName))
	if err != nil {
		return nil, err
	}
	for _, k := range params.TagKeys {
		delete(r.tags, k)
	}
	return &awsiam.UntagRoleOutput{}, nil
}

func (f *fakeIAM) ListGroups(ctx context.Context, params *awsiam.ListGroupsInput, optFns ...func(*awsiam.Options)) (*awsiam.ListGroupsOutput, error) {
	if err := f.record("ListGroups"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := &awsiam.ListGroupsOutput{}
	for _, name := range sortedNames(f.groups) {
		out.Groups = append(out.Groups, f.groups[name].group)
	}
	return out, nil
}

func (f *fakeIAM) ListGroupPolicies(ctx context.Context, params *awsiam.ListGroupPoliciesInput, optFns ...func(*awsiam.Options)) (*awsiam.ListGroupPoliciesOutput, error) {
	if err := f.record("ListGroupPolicies", aws.ToString(params.GroupName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.group(aws.ToString(params.GroupName))
	if err != nil {
		return nil, err
	}
	return &awsiam.ListGroupPoliciesOutput{PolicyNames: sortedNames(g.inline)}, nil
}

func (f *fakeIAM) GetGroupPolicy(ctx context.Context, params *awsiam.GetGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetGroupPolicyOutput, error) {
	if err := f.record("GetGroupPolicy", aws.ToString(params.GroupName), aws.ToString(params.PolicyName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.group(aws.ToString(params.GroupName))
	if err != nil {
		return nil, err
	}
	return &awsiam.GetGroupPolicyOutput{
		GroupName:      params.GroupName,
		PolicyName:     params.PolicyName,
		PolicyDocument: aws.String(url.QueryEscape(g.inline[aws.ToString(params.PolicyName)])),
	}, nil
}

func (f *fakeIAM) ListAttachedGroupPolicies(ctx context.Context, params *awsiam.ListAttachedGroupPoliciesInput, optFns ...func(*awsiam.Options)) (*awsiam.ListAttachedGroupPoliciesOutput, error) {
	if err := f.record("ListAttachedGroupPolicies", aws.ToString(params.GroupName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.group(aws.ToString(params.GroupName))
	if err != nil {
		return nil, err
	}
	out := &awsiam.ListAttachedGroupPoliciesOutput{}
	for _, arn := range g.attached {
		out.AttachedPolicies = append(out.AttachedPolicies, types.AttachedPolicy{PolicyArn: aws.String(arn)})
	}
	return out, nil
}

func (f *fakeIAM) CreateGroup(ctx context.Context, params *awsiam.CreateGroupInput, optFns ...func(*awsiam.Options)) (*awsiam.CreateGroupOutput, error) {
	name := aws.ToString(params.GroupName)
	if err := f.record("CreateGroup", name); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.groups[name]; ok {
		return nil, &types.EntityAlreadyExistsException{Message: aws.String(name)}
	}
	g := f.addGroup(name)
	g.group.Path = params.Path
	return &awsiam.CreateGroupOutput{Group: &g.group}, nil
}

func (f *fakeIAM) PutGroupPolicy(ctx context.Context, params *awsiam.PutGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.PutGroupPolicyOutput, error) {
	if err := f.record("PutGroupPolicy", aws.ToString(params.GroupName), aws.ToString(params.PolicyName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.group(aws.ToString(params.GroupName))
	if err != nil {
		return nil, err
	}
	g.inline[aws.ToString(params.PolicyName)] = aws.ToString(params.PolicyDocument)
	return &awsiam.PutGroupPolicyOutput{}, nil
}

func (f *fakeIAM) DeleteGroupPolicy(ctx context.Context, params *awsiam.DeleteGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DeleteGroupPolicyOutput, error) {
	if err := f.record("DeleteGroupPolicy", aws.ToString(params.GroupName), aws.ToString(params.PolicyName)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.group(aws.ToString(params.GroupName))
	if err != nil {
		return nil, err
	}
	delete(g.inline, aws.ToString(params.PolicyName))
	return &awsiam.DeleteGroupPolicyOutput{}, nil
}

func (f *fakeIAM) AttachGroupPolicy(ctx context.Context, params *awsiam.AttachGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.AttachGroupPolicyOutput, error) {
	if err := f.record("AttachGroupPolicy", aws.ToString(params.GroupName), aws.ToString(params.PolicyArn)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.group(aws.ToString(params.GroupName))
	if err != nil {
		return nil, err
	}
	g.attached = append(g.attached, aws.ToString(params.PolicyArn))
	return &awsiam.AttachGroupPolicyOutput{}, nil
}

func (f *fakeIAM) DetachGroupPolicy(ctx context.Context, params *awsiam.DetachGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DetachGroupPolicyOutput, error) {
	if err := f.record("DetachGroupPolicy", aws.ToString(params.GroupName), aws.ToString(params.PolicyArn)); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	g, err := f.group(aws.ToString(params.GroupName))
	if err != nil {
		return nil, err
	}
	g.attached = without(g.attached, aws.ToString(params.PolicyArn))
	return &awsiam.DetachGroupPolicyOutput{}, nil
}

func without(values []string, v string) []string {
	var out []string
	for _, x := range values {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

func (f *fakeIAM) callsOf(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(op) && c[:len(op)] == op && (len(c) == len(op) || c[len(op)] == ' ') {
			out = append(out, c)
		}
	}
	return out
}

var errThrottled = fmt.Errorf("throttled")
