package iam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"cloud-manager/core/catalog"
	"cloud-manager/core/reconcile"
	"cloud-manager/core/storage/mocks"
	"cloud-manager/core/unify"
	"cloud-manager/feature/iam"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrate(t *testing.T) {
	fake := newFakeIAM()
	api := fake.addRole("api", "/", trustEC2)
	api.inline["s3"] = policyOf(stmtRead)
	api.attached = []string{"arn:a"}
	web := fake.addRole("web", "/", trustEC2)
	web.inline["s3"] = policyOf(stmtRead)
	web.inline["logs"] = policyOf(stmtLogs)
	web.tags["team"] = "front"
	devs := fake.addGroup("devs")
	devs.inline["s3"] = policyOf(stmtRead)

	out := t.TempDir()
	stores, err := iam.NewStores(out, nil)
	require.NoError(t, err)

	roles := iam.NewRoles(fake, out, 2, nil)
	groups := iam.NewGroups(fake, out, 2, nil)
	m := &iam.Migrator{Roles: roles, Groups: groups}

	summary, err := m.Migrate(context.Background(), stores)
	require.NoError(t, err)
	assert.Equal(t, iam.MigrateSummary{Roles: 2, Groups: 1, AssumeRolePolicies: 1, SharedPolicies: 1}, summary)

	roleFiles, err := catalog.Load[iam.RoleConfig](filepath.Join(out, catalog.RolesDir))
	require.NoError(t, err)
	assert.Equal(t, "api", roleFiles["api"].AssumeRolePolicy)
	assert.Equal(t, "api", roleFiles["web"].AssumeRolePolicy)
	assert.Equal(t, []string{"s3"}, roleFiles["api"].Policies)
	assert.Empty(t, roleFiles["api"].InlinePolicies, "statement promoted on second sighting")
	assert.Equal(t, []string{"s3"}, roleFiles["web"].Policies)
	require.Len(t, roleFiles["web"].InlinePolicies, 1)
	assert.True(t, roleFiles["web"].InlinePolicies[0].Equal(unify.MustDocument(stmtLogs)))

	groupFiles, err := catalog.Load[iam.GroupConfig](filepath.Join(out, catalog.GroupsDir))
	require.NoError(t, err)
	assert.Equal(t, []string{"s3"}, groupFiles["devs"].Policies)

	shared, err := os.ReadFile(filepath.Join(out, catalog.PoliciesDir, "s3.json"))
	require.NoError(t, err)
	stmts, err := iam.ParseStatements(shared)
	require.NoError(t, err)
	assert.True(t, stmts[0].Equal(unify.MustDocument(stmtRead)))

	// The migrated catalog describes the live account exactly.
	ctx := context.Background()
	locals, err := roles.LocalResources(ctx)
	require.NoError(t, err)
	remotes, err := roles.RemoteResources(ctx)
	require.NoError(t, err)
	assert.Empty(t, reconcile.Classify(locals, remotes, roles.Compare, true))

	localGroups, err := groups.LocalResources(ctx)
	require.NoError(t, err)
	remoteGroups, err := groups.RemoteResources(ctx)
	require.NoError(t, err)
	assert.Empty(t, reconcile.Classify(localGroups, remoteGroups, groups.Compare, true))
}

func TestMigrate_RolesOnly(t *testing.T) {
	fake := newFakeIAM()
	fake.addRole("api", "/svc/", trustEC2)
	fake.addGroup("devs")

	out := t.TempDir()
	stores, err := iam.NewStores(out, nil)
	require.NoError(t, err)

	summary, err := (&iam.Migrator{Roles: iam.NewRoles(fake, out, 1, nil)}).Migrate(context.Background(), stores)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Roles)
	assert.Equal(t, 0, summary.Groups)
	assert.Equal(t, 0, summary.SharedPolicies)
	assert.Empty(t, fake.callsOf("ListGroups"))

	roleFiles, err := catalog.Load[iam.RoleConfig](filepath.Join(out, catalog.RolesDir))
	require.NoError(t, err)
	assert.Equal(t, "/svc/", roleFiles["api"].Path)
}

func TestMigrate_FetchError(t *testing.T) {
	fake := newFakeIAM()
	fake.addRole("api", "/", trustEC2)
	fake.fail["GetRolePolicy"] = errThrottled
	fake.roles["api"].inline["p"] = policyOf(stmtRead)

	stores, err := iam.NewStores(t.TempDir(), nil)
	require.NoError(t, err)

	_, err = (&iam.Migrator{Roles: iam.NewRoles(fake, "", 1, nil)}).Migrate(context.Background(), stores)
	assert.ErrorIs(t, err, errThrottled)
}

func TestNewStores_Bucket(t *testing.T) {
	client := new(mocks.Client)

	stores, err := iam.NewStores("s3://catalog/exports/2024", client)
	require.NoError(t, err)
	roles, ok := stores.Roles.(*unify.BucketStore)
	require.True(t, ok)
	assert.Equal(t, "catalog", roles.Bucket)
	assert.Equal(t, "exports/2024/roles", roles.Prefix)

	_, err = iam.NewStores("s3://", client)
	assert.Error(t, err)
	_, err = iam.NewStores("s3://catalog", nil)
	assert.Error(t, err)
}
