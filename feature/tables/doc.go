// Package tables reconciles DynamoDB tables declared under the catalog's
// tables/ directory.
//
// Tables default to on-demand billing. The key schema cannot change after
// creation and is reported as an informational difference. Throughput is
// only compared for provisioned tables.
package tables
