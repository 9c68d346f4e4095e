// Package buckets reconciles object storage buckets declared under the
// catalog's buckets/ directory.
//
// The region of a bucket cannot change after creation; a mismatch is
// reported but never applied. Tags are replaced as a whole set because
// bucket tagging has no partial update.
package buckets
