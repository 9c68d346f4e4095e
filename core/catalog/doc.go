// Package catalog loads local resource definitions from JSON files.
//
// A catalog root holds one subdirectory per resource type plus the shared
// document directories produced by migration:
//
//	<root>/roles/<name>.json
//	<root>/groups/<name>.json
//	<root>/policies/<name>.json
//	<root>/assume-role-policies/<name>.json
//	<root>/buckets/<name>.json
//	<root>/tables/<name>.json
//
// The file name (without extension) is the resource key.
package catalog
