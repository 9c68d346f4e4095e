package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrInvalid wraps every decoding failure of a catalog entry.
var ErrInvalid = errors.New("invalid catalog entry")

const extension = ".json"

// Dirs names the subdirectories of a catalog root.
const (
	RolesDir              = "roles"
	GroupsDir             = "groups"
	PoliciesDir           = "policies"
	AssumeRolePoliciesDir = "assume-role-policies"
	BucketsDir            = "buckets"
	TablesDir             = "tables"
)

// LoadRaw reads every *.json file in dir, keyed by file name without the
// extension. A missing directory yields an empty catalog.
func LoadRaw(dir string) (map[string][]byte, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return map[string][]byte{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog directory %s: %w", dir, err)
	}

	out := make(map[string][]byte, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), extension) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", e.Name(), err)
		}
		out[strings.TrimSuffix(e.Name(), extension)] = data
	}
	return out, nil
}

// Load decodes every *.json file in dir into T. Unknown fields are rejected.
// Errors are reported for the first invalid file in name order.
func Load[T any](dir string) (map[string]T, error) {
	raw, err := LoadRaw(dir)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make(map[string]T, len(raw))
	for _, name := range names {
		var v T
		dec := json.NewDecoder(bytes.NewReader(raw[name]))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&v); err != nil {
			return nil, fmt.Errorf("%w %s: %v", ErrInvalid, filepath.Join(dir, name+extension), err)
		}
		out[name] = v
	}
	return out, nil
}

// Encode renders v the way catalog files are written: indented with a
// trailing newline.
func Encode(v any) ([]byte, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
