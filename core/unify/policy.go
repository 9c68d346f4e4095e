package unify

import (
	"context"
	"fmt"
	"sync"
)

// PolicyHolder is a config owning a list of inline documents and a list of
// references to shared documents.
type PolicyHolder interface {
	// OwnerName identifies the holder; used to resolve name collisions.
	OwnerName() string
	// AddInline appends doc to the holder's inline list.
	AddInline(doc Document)
	// RemoveInline removes doc (by structural equality) from the inline list.
	RemoveInline(doc Document)
	// AddShared references the shared artifact name.
	AddShared(name string)
}

// entry tracks one distinct document. While shared is empty the document is
// still inline in owner; once promoted it never goes back.
type entry struct {
	doc       Document
	owner     PolicyHolder
	suggested string
	shared    string
}

// PolicyUnifier deduplicates structured documents across holders. A
// document seen once stays inline; on its second sighting it is retracted
// from the first holder and promoted to a shared artifact that both
// holders, and every later one, reference by name.
type PolicyUnifier struct {
	store ArtifactStore

	mu      sync.Mutex
	entries map[string]*entry
	written map[string]string
}

// NewPolicyUnifier creates a unifier writing shared documents to store.
func NewPolicyUnifier(store ArtifactStore) *PolicyUnifier {
	return &PolicyUnifier{
		store:   store,
		entries: make(map[string]*entry),
		written: make(map[string]string),
	}
}

// Unify records doc for holder.
func (u *PolicyUnifier) Unify(ctx context.Context, holder PolicyHolder, doc Document, suggestedName string) error {
	u.mu.Lock()
	defer u.mu.Unlock()

	e, ok := u.entries[doc.Key()]
	if !ok {
		u.entries[doc.Key()] = &entry{doc: doc, owner: holder, suggested: suggestedName}
		holder.AddInline(doc)
		return nil
	}

	if e.shared != "" {
		holder.AddShared(e.shared)
		return nil
	}

	name, err := u.resolveName(ctx, e)
	if err != nil {
		return err
	}
	data, err := doc.Pretty()
	if err != nil {
		return err
	}
	if err := u.store.Write(ctx, name, data); err != nil {
		return err
	}

	u.written[name] = doc.Key()
	e.shared = name
	e.owner.RemoveInline(e.doc)
	e.owner.AddShared(name)
	holder.AddShared(name)
	e.owner = nil
	return nil
}

// resolveName picks the artifact name for a promoted entry. The first
// holder's suggestion is used unless an artifact with that name and
// different content exists, in which case the first holder's name is
// appended, then a counter.
func (u *PolicyUnifier) resolveName(ctx context.Context, e *entry) (string, error) {
	candidates := []string{e.suggested, e.suggested + "-" + e.owner.OwnerName()}
	for i := 0; ; i++ {
		var name string
		if i < len(candidates) {
			name = candidates[i]
		} else {
			name = fmt.Sprintf("%s-%s-%d", e.suggested, e.owner.OwnerName(), i)
		}

		free, err := u.available(ctx, name, e.doc)
		if err != nil {
			return "", err
		}
		if free {
			return name, nil
		}
	}
}

// available reports whether name is unused or already holds doc.
func (u *PolicyUnifier) available(ctx context.Context, name string, doc Document) (bool, error) {
	if key, ok := u.written[name]; ok {
		return key == doc.Key(), nil
	}

	data, exists, err := u.store.Read(ctx, name)
	if err != nil {
		return false, err
	}
	if !exists {
		return true, nil
	}
	existing, err := ParseDocument(data)
	if err != nil {
		return false, nil
	}
	return existing.Equal(doc), nil
}

// Shared returns the artifact name for doc if it has been promoted.
func (u *PolicyUnifier) Shared(doc Document) (string, bool) {
	u.mu.Lock()
	defer u.mu.Unlock()

	e, ok := u.entries[doc.Key()]
	if !ok || e.shared == "" {
		return "", false
	}
	return e.shared, true
}
