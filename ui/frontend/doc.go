// Package frontend provides the server-rendered artifact browser.
//
// The frontend uses HTMX for interactivity and Tailwind CSS for styling,
// both loaded via CDN. Mermaid diagrams are rendered in the browser.
//
// # Routes
//
// Main Pages:
//   - GET / - Redirect to artifacts
//   - GET /artifacts - Artifact list (search, kind and session filters)
//   - GET /artifacts/{id} - Artifact detail (table, chart or diagram)
//   - GET /sessions - Sessions that produced artifacts
//
// Artifact Actions:
//   - GET /artifacts/{id}/chart/{svg|png} - Rendered chart image
//   - GET /artifacts/{id}/export/{format} - Download (csv, json, parquet, svg, png, mmd)
//   - POST /artifacts/{id}/export/svg - Download a browser-rendered diagram
//   - POST /artifacts/{id}/panel - Toggle the artifact panel (HTMX)
//   - POST /artifacts/{id}/delete - Delete an artifact
//
// Chat Interface:
//   - GET /chat - Chat page for one session
//   - POST /chat/send - Ask the model (HTMX)
//   - POST /chat/ingest - Extract artifacts from a pasted message (HTMX)
//
// HTMX Fragments:
//   - GET /fragments/artifacts/{id}/table - Table page for ?q=&sort=&dir=&page=
//   - GET /fragments/artifacts/{id}/chart - Chart with ?type=
//   - GET /fragments/artifact-list - Artifact list refresh
package frontend
