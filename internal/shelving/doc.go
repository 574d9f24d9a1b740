// Package shelving assigns catalog items to weight-bounded shelves.
//
// FindDangerousGroups enumerates every four-item combination heavier than the
// capacity. Optimize finds the most valuable subset that fits on one shelf
// through an exhaustive include/exclude search with weight and size pruning.
// PackShelves repeats that search shelf after shelf over the items not yet
// placed. These functions are pure and never fail.
//
// Planner wraps the same algorithms with input validation, a node budget,
// cooperative context cancellation and tracing. A cancelled or exhausted
// search returns ErrSearchAborted, which is distinct from an empty result.
package shelving
