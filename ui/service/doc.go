// Package service implements the artifact operations shared by the
// frontend and API routers: listing, table views, chart rendering,
// exports, panel state and message ingestion.
package service
