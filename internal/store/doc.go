// Package store provides a SQLite-backed outbox for audio plans.
//
// Store implements audioplan.Sink. Each delivered plan is written once,
// keyed by its content hash, together with its segments; the external
// mixer polls Pending and acknowledges with MarkDelivered.
//
// # Critical Patterns
//
// Plan-Level Idempotency
//   - plans.id is the plan's content hash
//   - INSERT ... ON CONFLICT(id) DO NOTHING: re-delivering an unchanged plan
//     keeps the first seq and does not duplicate segments
//
// Logical Ordering
//   - All ordering uses seq INTEGER from the plan sequencer, never timestamps
//   - Queries use ORDER BY seq ASC, id ASC COLLATE BINARY
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
