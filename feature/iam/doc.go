// Package iam reconciles IAM roles and groups.
//
// Roles and Groups implement reconcile.Manager. The local side is read from
// the catalog: role and group files reference shared statement files under
// policies/ and, for roles, an assume-role document under
// assume-role-policies/. Referenced and inline statements are merged into a
// single inline policy named after the owner. The remote side is listed with
// the SDK paginators; per-principal policies, attachments and tags are
// fetched through a fail-fast work pool.
//
// Statements are compared as sets of canonical JSON documents, so order and
// the split across inline policies do not count as drift. Paths cannot be
// changed after creation and are reported as informational differences.
//
// Migrator performs the reverse direction: it writes catalog files from the
// live account, deduplicating assume-role documents and promoting statements
// shared by several owners to policy files.
package iam
