package iam

import (
	"context"

	awsiam "github.com/aws/aws-sdk-go-v2/service/iam"
)

// Client is the subset of the IAM API used by the role and group managers.
// *awsiam.Client satisfies it.
type Client interface {
	awsiam.ListRolesAPIClient
	awsiam.ListRolePoliciesAPIClient
	awsiam.ListAttachedRolePoliciesAPIClient
	awsiam.ListRoleTagsAPIClient
	awsiam.ListGroupsAPIClient
	awsiam.ListGroupPoliciesAPIClient
	awsiam.ListAttachedGroupPoliciesAPIClient

	GetRolePolicy(ctx context.Context, params *awsiam.GetRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetRolePolicyOutput, error)
	CreateRole(ctx context.Context, params *awsiam.CreateRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.CreateRoleOutput, error)
	UpdateRole(ctx context.Context, params *awsiam.UpdateRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.UpdateRoleOutput, error)
	UpdateAssumeRolePolicy(ctx context.Context, params *awsiam.UpdateAssumeRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.UpdateAssumeRolePolicyOutput, error)
	PutRolePolicy(ctx context.Context, params *awsiam.PutRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.PutRolePolicyOutput, error)
	DeleteRolePolicy(ctx context.Context, params *awsiam.DeleteRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DeleteRolePolicyOutput, error)
	AttachRolePolicy(ctx context.Context, params *awsiam.AttachRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.AttachRolePolicyOutput, error)
	DetachRolePolicy(ctx context.Context, params *awsiam.DetachRolePolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DetachRolePolicyOutput, error)
	TagRole(ctx context.Context, params *awsiam.TagRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.TagRoleOutput, error)
	UntagRole(ctx context.Context, params *awsiam.UntagRoleInput, optFns ...func(*awsiam.Options)) (*awsiam.UntagRoleOutput, error)

	GetGroupPolicy(ctx context.Context, params *awsiam.GetGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.GetGroupPolicyOutput, error)
	CreateGroup(ctx context.Context, params *awsiam.CreateGroupInput, optFns ...func(*awsiam.Options)) (*awsiam.CreateGroupOutput, error)
	PutGroupPolicy(ctx context.Context, params *awsiam.PutGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.PutGroupPolicyOutput, error)
	DeleteGroupPolicy(ctx context.Context, params *awsiam.DeleteGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DeleteGroupPolicyOutput, error)
	AttachGroupPolicy(ctx context.Context, params *awsiam.AttachGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.AttachGroupPolicyOutput, error)
	DetachGroupPolicy(ctx context.Context, params *awsiam.DetachGroupPolicyInput, optFns ...func(*awsiam.Options)) (*awsiam.DetachGroupPolicyOutput, error)
}

var _ Client = (*awsiam.Client)(nil)
