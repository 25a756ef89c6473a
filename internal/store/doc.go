// Package store provides SQLite-backed durable storage for canonical forms.
//
// The store is an append-only, content-addressed table:
//   - ID: domain-separated SHA-256 of the profile-bound canonical bytes, so the
//     same value stored under two profiles gets two identities
//   - Seq: logical insertion order, used for all listing (never timestamps)
//   - Canonical text, its plain SHA-256, and its CIDv1 for external lookup
//
// Writes are idempotent: putting an already stored value returns the existing
// record unchanged.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// List results are ordered by: ORDER BY seq ASC, id ASC COLLATE BINARY.
package store
