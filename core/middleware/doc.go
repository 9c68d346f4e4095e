// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the report endpoints.
//   - rayid: assigns a request id (ray id) to every request, exposed in the
//     response header and attached to log lines through logger.WithRayID.
package middleware
