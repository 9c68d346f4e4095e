// Package cloud configures the AWS SDK v2 for the resource managers.
//
// Load turns the aws configuration section into an aws.Config shared by the
// IAM, DynamoDB and STS clients. CallerIdentity is logged at the start of
// every command so that reports name the account they describe.
package cloud
