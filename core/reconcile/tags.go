package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// Tag is a single key/value tag.
type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// TagDiff is the structural difference between a local and a remote tag set.
// Resource diffs embed it to describe tag drift.
type TagDiff struct {
	// Add holds local tags whose key is absent remotely or whose value differs.
	Add []Tag `json:"add,omitempty"`
	// Remove holds remote tags whose key is absent locally or whose value differs.
	Remove []Tag `json:"remove,omitempty"`
}

// DiffTags compares two tag sets. Both result slices are sorted by key.
func DiffTags(local, remote map[string]string) TagDiff {
	var d TagDiff
	for k, v := range local {
		if rv, ok := remote[k]; !ok || rv != v {
			d.Add = append(d.Add, Tag{Key: k, Value: v})
		}
	}
	for k, v := range remote {
		if lv, ok := local[k]; !ok || lv != v {
			d.Remove = append(d.Remove, Tag{Key: k, Value: v})
		}
	}
	sortTags(d.Add)
	sortTags(d.Remove)
	return d
}

func sortTags(tags []Tag) {
	sort.Slice(tags, func(i, j int) bool { return tags[i].Key < tags[j].Key })
}

// Empty reports whether the tag sets were identical.
func (d TagDiff) Empty() bool {
	return len(d.Add) == 0 && len(d.Remove) == 0
}

// AddMap returns the tags to set as a map.
func (d TagDiff) AddMap() map[string]string {
	m := make(map[string]string, len(d.Add))
	for _, t := range d.Add {
		m[t.Key] = t.Value
	}
	return m
}

// StaleKeys returns the removed keys that are not re-added with a new value.
// Providers that overwrite on tag need only untag these.
func (d TagDiff) StaleKeys() []string {
	added := d.AddMap()
	var keys []string
	for _, t := range d.Remove {
		if _, ok := added[t.Key]; !ok {
			keys = append(keys, t.Key)
		}
	}
	return keys
}

// String describes the tag changes, e.g. "tags: +env=prod -env=dev".
func (d TagDiff) String() string {
	parts := make([]string, 0, len(d.Add)+len(d.Remove))
	for _, t := range d.Add {
		parts = append(parts, fmt.Sprintf("+%s=%s", t.Key, t.Value))
	}
	for _, t := range d.Remove {
		parts = append(parts, fmt.Sprintf("-%s=%s", t.Key, t.Value))
	}
	return "tags: " + strings.Join(parts, " ")
}
