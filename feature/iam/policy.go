package iam

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"sort"

	"cloud-manager/core/catalog"
	"cloud-manager/core/unify"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/iam/types"
)

// PolicyVersion is the policy language version written to every document.
const PolicyVersion = "2012-10-17"

// InlinePolicy is a named inline policy attached to a role or group.
type InlinePolicy struct {
	Name       string           `json:"name"`
	Statements []unify.Document `json:"statements"`
}

// policyDocument is the wire form of an IAM policy.
type policyDocument struct {
	Version   string          `json:"Version"`
	Statement json.RawMessage `json:"Statement"`
}

// ParseStatements extracts statements from data. Accepted forms are a full
// policy document, a JSON array of statements, or a single statement object.
func ParseStatements(data []byte) ([]unify.Document, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("empty policy")
	}

	if trimmed[0] == '[' {
		return parseStatementList(trimmed)
	}

	var doc policyDocument
	if err := json.Unmarshal(trimmed, &doc); err != nil {
		return nil, fmt.Errorf("invalid policy: %w", err)
	}
	if doc.Statement == nil {
		stmt, err := unify.ParseDocument(trimmed)
		if err != nil {
			return nil, err
		}
		return []unify.Document{stmt}, nil
	}

	body := bytes.TrimSpace(doc.Statement)
	if len(body) > 0 && body[0] == '[' {
		return parseStatementList(body)
	}
	stmt, err := unify.ParseDocument(body)
	if err != nil {
		return nil, err
	}
	return []unify.Document{stmt}, nil
}

func parseStatementList(data []byte) ([]unify.Document, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("invalid statement list: %w", err)
	}
	out := make([]unify.Document, 0, len(raw))
	for _, r := range raw {
		stmt, err := unify.ParseDocument(r)
		if err != nil {
			return nil, err
		}
		out = append(out, stmt)
	}
	return out, nil
}

// decodeDocument reverses the URL encoding IAM applies to policy documents.
func decodeDocument(encoded string) ([]byte, error) {
	decoded, err := url.QueryUnescape(encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode policy document: %w", err)
	}
	return []byte(decoded), nil
}

// RenderPolicy builds a policy document holding statements.
func RenderPolicy(statements []unify.Document) (string, error) {
	data, err := json.Marshal(struct {
		Version   string           `json:"Version"`
		Statement []unify.Document `json:"Statement"`
	}{PolicyVersion, statements})
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// statementSet flattens policies into a deduplicated statement list sorted by
// canonical encoding, so that comparison ignores order and policy boundaries.
func statementSet(policies []InlinePolicy) []unify.Document {
	seen := make(map[string]struct{})
	var out []unify.Document
	for _, p := range policies {
		for _, s := range p.Statements {
			if _, ok := seen[s.Key()]; ok {
				continue
			}
			seen[s.Key()] = struct{}{}
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key() < out[j].Key() })
	return out
}

func sameStatements(a, b []unify.Document) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !a[i].Equal(b[i]) {
			return false
		}
	}
	return true
}

// policyNames returns the names of policies, skipping keep.
func policyNames(policies []InlinePolicy, keep string) []string {
	var out []string
	for _, p := range policies {
		if p.Name != keep {
			out = append(out, p.Name)
		}
	}
	return out
}

// diffStrings returns the values only in local and the values only in
// remote, both sorted.
func diffStrings(local, remote []string) (add, remove []string) {
	l := make(map[string]struct{}, len(local))
	for _, v := range local {
		l[v] = struct{}{}
	}
	r := make(map[string]struct{}, len(remote))
	for _, v := range remote {
		r[v] = struct{}{}
	}
	for v := range l {
		if _, ok := r[v]; !ok {
			add = append(add, v)
		}
	}
	for v := range r {
		if _, ok := l[v]; !ok {
			remove = append(remove, v)
		}
	}
	sort.Strings(add)
	sort.Strings(remove)
	return add, remove
}

// resolveStatements merges referenced library statements with inline ones.
func resolveStatements(owner string, refs []string, inline []unify.Document, library map[string][]unify.Document) ([]unify.Document, error) {
	var out []unify.Document
	for _, ref := range refs {
		stmts, ok := library[ref]
		if !ok {
			return nil, fmt.Errorf("%w: %s references unknown policy %q", catalog.ErrInvalid, owner, ref)
		}
		out = append(out, stmts...)
	}
	out = append(out, inline...)
	return statementSet([]InlinePolicy{{Statements: out}}), nil
}

// loadLibrary reads the shared statement files under root.
func loadLibrary(root string) (map[string][]unify.Document, error) {
	dir := filepath.Join(root, catalog.PoliciesDir)
	raw, err := catalog.LoadRaw(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]unify.Document, len(raw))
	for name, data := range raw {
		stmts, err := ParseStatements(data)
		if err != nil {
			return nil, fmt.Errorf("%w %s: %v", catalog.ErrInvalid, filepath.Join(dir, name+".json"), err)
		}
		out[name] = stmts
	}
	return out, nil
}

func toTagMap(tags []types.Tag) map[string]string {
	out := make(map[string]string, len(tags))
	for _, t := range tags {
		out[aws.ToString(t.Key)] = aws.ToString(t.Value)
	}
	return out
}

func fromTagMap(tags map[string]string) []types.Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]types.Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, types.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func sorted(values []string) []string {
	out := append([]string(nil), values...)
	sort.Strings(out)
	return out
}
