// Package changes exposes classification reports over HTTP.
//
// Routes:
//
//	GET /api/changes        list the configured resource types
//	GET /api/changes/:type  classify one resource type against live state
//
// Reports are computed on every request and nothing is ever mutated.
package changes
