// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: accepts a static API key or an HS256 bearer token. The token
//     subject becomes the author recorded on audit entries.
//   - rayid: assigns every request an id, stored in the context and echoed in
//     the response headers for tracing.
package middleware
