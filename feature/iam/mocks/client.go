package mocks

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/iam"
	"github.com/stretchr/testify/mock"
)

// Client is a mock implementation of the IAM client used by feature/iam.
// Option functions are not passed to Called.
type Client struct {
	mock.Mock
}

func (m *Client) ListRoles(ctx context.Context, params *iam.ListRolesInput, optFns ...func(*iam.Options)) (*iam.ListRolesOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.ListRolesOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListRolePolicies(ctx context.Context, params *iam.ListRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListRolePoliciesOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.ListRolePoliciesOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListAttachedRolePolicies(ctx context.Context, params *iam.ListAttachedRolePoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedRolePoliciesOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.ListAttachedRolePoliciesOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListRoleTags(ctx context.Context, params *iam.ListRoleTagsInput, optFns ...func(*iam.Options)) (*iam.ListRoleTagsOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.ListRoleTagsOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetRolePolicy(ctx context.Context, params *iam.GetRolePolicyInput, optFns ...func(*iam.Options)) (*iam.GetRolePolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.GetRolePolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateRole(ctx context.Context, params *iam.CreateRoleInput, optFns ...func(*iam.Options)) (*iam.CreateRoleOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.CreateRoleOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateRole(ctx context.Context, params *iam.UpdateRoleInput, optFns ...func(*iam.Options)) (*iam.UpdateRoleOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.UpdateRoleOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UpdateAssumeRolePolicy(ctx context.Context, params *iam.UpdateAssumeRolePolicyInput, optFns ...func(*iam.Options)) (*iam.UpdateAssumeRolePolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.UpdateAssumeRolePolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) PutRolePolicy(ctx context.Context, params *iam.PutRolePolicyInput, optFns ...func(*iam.Options)) (*iam.PutRolePolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.PutRolePolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeleteRolePolicy(ctx context.Context, params *iam.DeleteRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DeleteRolePolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.DeleteRolePolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) AttachRolePolicy(ctx context.Context, params *iam.AttachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.AttachRolePolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.AttachRolePolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DetachRolePolicy(ctx context.Context, params *iam.DetachRolePolicyInput, optFns ...func(*iam.Options)) (*iam.DetachRolePolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.DetachRolePolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) TagRole(ctx context.Context, params *iam.TagRoleInput, optFns ...func(*iam.Options)) (*iam.TagRoleOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.TagRoleOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) UntagRole(ctx context.Context, params *iam.UntagRoleInput, optFns ...func(*iam.Options)) (*iam.UntagRoleOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.UntagRoleOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListGroups(ctx context.Context, params *iam.ListGroupsInput, optFns ...func(*iam.Options)) (*iam.ListGroupsOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.ListGroupsOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListGroupPolicies(ctx context.Context, params *iam.ListGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListGroupPoliciesOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.ListGroupPoliciesOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) ListAttachedGroupPolicies(ctx context.Context, params *iam.ListAttachedGroupPoliciesInput, optFns ...func(*iam.Options)) (*iam.ListAttachedGroupPoliciesOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.ListAttachedGroupPoliciesOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) GetGroupPolicy(ctx context.Context, params *iam.GetGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.GetGroupPolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.GetGroupPolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) CreateGroup(ctx context.Context, params *iam.CreateGroupInput, optFns ...func(*iam.Options)) (*iam.CreateGroupOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.CreateGroupOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) PutGroupPolicy(ctx context.Context, params *iam.PutGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.PutGroupPolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.PutGroupPolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DeleteGroupPolicy(ctx context.Context, params *iam.DeleteGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.DeleteGroupPolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.DeleteGroupPolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) AttachGroupPolicy(ctx context.Context, params *iam.AttachGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.AttachGroupPolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.AttachGroupPolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *Client) DetachGroupPolicy(ctx context.Context, params *iam.DetachGroupPolicyInput, optFns ...func(*iam.Options)) (*iam.DetachGroupPolicyOutput, error) {
	args := m.Called(ctx, params)
	if out, ok := args.Get(0).(*iam.DetachGroupPolicyOutput); ok {
		return out, args.Error(1)
	}
	return nil, args.Error(1)
}
