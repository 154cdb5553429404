// Package server exposes the query engine over HTTP using gin.
//
// Routes:
//
//	GET /search?q=...&mode=all|any&lucky=1
//	GET /suggest?q=...
//	GET /healthz
//
// Responses are JSON. A lucky search that finds at least one page answers
// with a 302 redirect to the best match instead.
package server
