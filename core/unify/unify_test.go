package unify

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testHolder is a minimal owner config used by both unifier variants.
type testHolder struct {
	name       string
	assumeRole string
	inline     []Document
	shared     []string
}

func (h *testHolder) SetAssumeRolePolicy(name string) { h.assumeRole = name }
func (h *testHolder) OwnerName() string               { return h.name }
func (h *testHolder) AddInline(doc Document)          { h.inline = append(h.inline, doc) }
func (h *testHolder) AddShared(name string)           { h.shared = append(h.shared, name) }

func (h *testHolder) RemoveInline(doc Document) {
	kept := h.inline[:0]
	for _, d := range h.inline {
		if !d.Equal(doc) {
			kept = append(kept, d)
		}
	}
	h.inline = kept
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestAssumeRoleUnifier(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	u := NewAssumeRoleUnifier(&DirStore{Dir: dir, Suffix: ".json"})

	content := `{"Statement":[{"Effect":"Allow","Principal":{"Service":"ec2.amazonaws.com"}}]}`

	first := &testHolder{name: "web"}
	second := &testHolder{name: "worker"}

	require.NoError(t, u.Unify(ctx, first, content, "web"))
	require.NoError(t, u.Unify(ctx, second, content, "worker"))

	assert.Equal(t, "web", first.assumeRole)
	assert.Equal(t, "web", second.assumeRole)
	assert.Equal(t, []string{"web.json"}, listDir(t, dir))
	assert.Equal(t, 1, u.Len())

	data, err := os.ReadFile(filepath.Join(dir, "web.json"))
	require.NoError(t, err)
	assert.Equal(t, content, string(data))

	t.Run("DifferentContentSameName", func(t *testing.T) {
		third := &testHolder{name: "web"}
		require.NoError(t, u.Unify(ctx, third, `{"other":true}`, "web"))
		assert.Equal(t, "web-2", third.assumeRole)
		assert.ElementsMatch(t, []string{"web.json", "web-2.json"}, listDir(t, dir))
	})
}

func TestPolicyUnifier(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	u := NewPolicyUnifier(&DirStore{Dir: dir, Suffix: ".json"})

	x := MustDocument(`{"Effect":"Allow","Action":"s3:*","Resource":"*"}`)
	xReordered := MustDocument(`{"Resource":"*","Action":"s3:*","Effect":"Allow"}`)
	y := MustDocument(`{"Effect":"Allow","Action":"sqs:*","Resource":"*"}`)

	a := &testHolder{name: "a"}
	b := &testHolder{name: "b"}
	c := &testHolder{name: "c"}
	d := &testHolder{name: "d"}

	// First sighting stays inline and writes nothing.
	require.NoError(t, u.Unify(ctx, a, x, "s3-access"))
	assert.Equal(t, []Document{x}, a.inline)
	assert.Empty(t, a.shared)
	assert.Empty(t, listDir(t, dir))
	_, promoted := u.Shared(x)
	assert.False(t, promoted)

	// Second sighting retracts from the first owner and promotes.
	require.NoError(t, u.Unify(ctx, b, xReordered, "other-name"))
	assert.Empty(t, a.inline)
	assert.Empty(t, b.inline)
	assert.Equal(t, []string{"s3-access"}, a.shared)
	assert.Equal(t, []string{"s3-access"}, b.shared)
	assert.Equal(t, []string{"s3-access.json"}, listDir(t, dir))

	name, promoted := u.Shared(x)
	assert.True(t, promoted)
	assert.Equal(t, "s3-access", name)

	// Third sighting references the existing artifact.
	require.NoError(t, u.Unify(ctx, c, x, "whatever"))
	assert.Empty(t, c.inline)
	assert.Equal(t, []string{"s3-access"}, c.shared)
	assert.Equal(t, []string{"s3-access"}, a.shared, "earlier owners are not touched again")

	// Different content is unaffected.
	require.NoError(t, u.Unify(ctx, d, y, "sqs-access"))
	assert.Equal(t, []Document{y}, d.inline)
	assert.Empty(t, d.shared)
	assert.Equal(t, []string{"s3-access.json"}, listDir(t, dir))

	data, err := os.ReadFile(filepath.Join(dir, "s3-access.json"))
	require.NoError(t, err)
	written, err := ParseDocument(data)
	require.NoError(t, err)
	assert.True(t, written.Equal(x))
}

func TestPolicyUnifier_NameCollision(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := &DirStore{Dir: dir, Suffix: ".json"}
	require.NoError(t, store.Write(ctx, "logs", []byte(`{"Effect":"Deny"}`)))

	u := NewPolicyUnifier(store)
	x := MustDocument(`{"Effect":"Allow","Action":"logs:*"}`)

	first := &testHolder{name: "api"}
	second := &testHolder{name: "batch"}
	require.NoError(t, u.Unify(ctx, first, x, "logs"))
	require.NoError(t, u.Unify(ctx, second, x, "logs"))

	assert.Equal(t, []string{"logs-api"}, first.shared)
	assert.Equal(t, []string{"logs-api"}, second.shared)
	assert.ElementsMatch(t, []string{"logs.json", "logs-api.json"}, listDir(t, dir))

	// Another document colliding on both candidate names gets a counter.
	z := MustDocument(`{"Effect":"Allow","Action":"logs:Put*"}`)
	third := &testHolder{name: "api"}
	fourth := &testHolder{name: "cron"}
	require.NoError(t, u.Unify(ctx, third, z, "logs"))
	require.NoError(t, u.Unify(ctx, fourth, z, "logs"))
	assert.Equal(t, []string{"logs-api-2"}, fourth.shared)
}

func TestPolicyUnifier_ExistingIdenticalArtifactIsReused(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	store := &DirStore{Dir: dir, Suffix: ".json"}
	x := MustDocument(`{"Effect":"Allow","Action":"ec2:Describe*"}`)
	pretty, err := x.Pretty()
	require.NoError(t, err)
	require.NoError(t, store.Write(ctx, "describe", pretty))

	u := NewPolicyUnifier(store)
	first := &testHolder{name: "a"}
	second := &testHolder{name: "b"}
	require.NoError(t, u.Unify(ctx, first, x, "describe"))
	require.NoError(t, u.Unify(ctx, second, x, "describe"))

	assert.Equal(t, []string{"describe"}, first.shared)
	assert.Equal(t, []string{"describe.json"}, listDir(t, dir))
}
