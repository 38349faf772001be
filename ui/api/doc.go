// Package api provides the JSON API for artifacts.
//
// # Endpoints
//
// Artifacts:
//   - GET /artifacts - List artifacts (session_id, kind, search, paginated)
//   - GET /artifacts/{id} - Artifact with its decoded payload
//   - DELETE /artifacts/{id} - Delete an artifact
//   - GET /artifacts/{id}/table - Table page for ?q=&sort=&dir=&page=
//   - GET /artifacts/{id}/export/{format} - Download
//
// Sessions:
//   - GET /sessions - Sessions that produced artifacts
//
// Messages:
//   - POST /ingest - Extract and save the visualizations of a message
//   - POST /ask - Ask the model; the reply's visualizations are saved
//
// Live updates:
//   - GET /events - SSE stream of created artifacts
package api
