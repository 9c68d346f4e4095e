// Package unify deduplicates recurring configuration fragments while
// migrating live provider state into local definitions.
//
// Two variants share one principle: content seen once stays with its owner,
// content seen repeatedly becomes a shared, named artifact.
//
//   - AssumeRoleUnifier handles single-string content (assume-role
//     documents). The first sighting is written immediately under the
//     suggested name; identical content later reuses that name.
//
//   - PolicyUnifier handles structured documents (policy statements). The
//     first sighting stays inline in its owner. The second sighting retracts
//     it from the first owner, writes it to a shared artifact and points both
//     owners at it. Later sightings just reference the artifact.
//
// Equality is structural: Document normalizes JSON so that key order does
// not matter.
//
// Artifacts are written through an ArtifactStore: DirStore for a local
// catalog directory or BucketStore for an object storage prefix.
package unify
