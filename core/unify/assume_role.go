package unify

import (
	"context"
	"fmt"
	"sync"
)

// AssumeRoleHolder is a config that references an assume-role document by
// artifact name.
type AssumeRoleHolder interface {
	SetAssumeRolePolicy(name string)
}

// AssumeRoleUnifier deduplicates single-string content. Every distinct
// content value is written once, under the name suggested on its first
// sighting; later sightings reuse that name.
type AssumeRoleUnifier struct {
	store ArtifactStore

	mu     sync.Mutex
	byBody map[string]string
	names  map[string]string
}

// NewAssumeRoleUnifier creates a unifier writing to store.
func NewAssumeRoleUnifier(store ArtifactStore) *AssumeRoleUnifier {
	return &AssumeRoleUnifier{
		store:  store,
		byBody: make(map[string]string),
		names:  make(map[string]string),
	}
}

// Unify records content for holder. On first sighting the content is written
// verbatim as suggestedName; if that name already holds different content a
// numeric suffix is added. The holder always receives the artifact name.
func (u *AssumeRoleUnifier) Unify(ctx context.Context, holder AssumeRoleHolder, content, suggestedName string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	if name, ok := u.byBody[content]; ok {
		holder.SetAssumeRolePolicy(name)
		return nil
	}

	name := suggestedName
	for i := 2; ; i++ {
		if _, taken := u.names[name]; !taken {
			break
		}
		name = fmt.Sprintf("%s-%d", suggestedName, i)
	}

	if err := u.store.Write(ctx, name, []byte(content)); err != nil {
		return err
	}
	u.byBody[content] = name
	u.names[name] = content
	holder.SetAssumeRolePolicy(name)
	return nil
}

// Len returns the number of distinct contents seen.
func (u *AssumeRoleUnifier) Len() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.byBody)
}
