// Package application provides application initialization and dependency wiring.
// It chooses the catalog backend (memory or PostgreSQL) and the result cache
// (memory or Redis), builds the planner with its metrics observer, and
// assembles the handlers, routers and HTTP server so the main package only
// deals with CLI parsing and orchestration.
package application
