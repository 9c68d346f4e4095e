package unify

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Document is a normalized JSON value. Two documents are equal when their
// canonical encodings match, regardless of the key order of the source.
type Document struct {
	value     any
	canonical string
}

// ParseDocument normalizes raw JSON into a Document.
func ParseDocument(data []byte) (Document, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	if dec.More() {
		return Document{}, fmt.Errorf("invalid document: trailing data")
	}

	// encoding/json writes map keys in sorted order, which makes the
	// re-encoded form canonical.
	canonical, err := json.Marshal(v)
	if err != nil {
		return Document{}, fmt.Errorf("invalid document: %w", err)
	}
	return Document{value: v, canonical: string(canonical)}, nil
}

// NewDocument normalizes any JSON-encodable value into a Document.
func NewDocument(v any) (Document, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return Document{}, err
	}
	return ParseDocument(data)
}

// MustDocument is like ParseDocument but panics on invalid input. Intended
// for literals in tests and defaults.
func MustDocument(data string) Document {
	d, err := ParseDocument([]byte(data))
	if err != nil {
		panic(err)
	}
	return d
}

// Key returns the canonical encoding, usable as a map key.
func (d Document) Key() string {
	return d.canonical
}

// IsZero reports whether the document is unset.
func (d Document) IsZero() bool {
	return d.canonical == ""
}

// Equal reports structural equality.
func (d Document) Equal(other Document) bool {
	return d.canonical == other.canonical
}

// Value returns the decoded value (maps, slices, json.Number, strings, bools).
func (d Document) Value() any {
	return d.value
}

// Pretty returns the indented encoding written to shared artifacts.
func (d Document) Pretty() ([]byte, error) {
	out, err := json.MarshalIndent(d.value, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(out, '\n'), nil
}

// String returns the canonical encoding.
func (d Document) String() string {
	return d.canonical
}

// MarshalJSON implements json.Marshaler.
func (d Document) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(d.canonical), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Document) UnmarshalJSON(data []byte) error {
	parsed, err := ParseDocument(data)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
