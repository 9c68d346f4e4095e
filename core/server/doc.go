// Package server holds the HTTP server configuration.
//
// The serve command exposes read-only reconciliation reports over HTTP. This
// package defines the listen port and the API key protecting every route.
package server
