// Package storage provides the catalog the shelf planner reads items from:
// an in-memory catalog that can be seeded from CSV or YAML files, and a
// PostgreSQL-backed catalog.
package storage
