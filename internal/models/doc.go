// Package models defines the core domain models for the GroupGainz
// accountability backend.
//
// # Ownership
//
// Most of these records are created by the app's CRUD and check-in flows
// (groups, contracts, point transactions) and are read-only to the weekly
// settlement job. The job itself owns two write paths:
//   - Penalty: upserted per (user, group, week) when a member misses the
//     weekly point threshold
//   - Notification: inserted per under-threshold member
//
// # Design Principles
//
//  1. **ID strings, not pointers**: relationships use ID strings to avoid
//     circular references between models
//  2. **Immutable ledger**: PointTransaction rows are append-only; the
//     settlement job only marks them archived, never mutates points
//  3. **Natural keys where idempotency matters**: Penalty is keyed by
//     (UserID, GroupID, WeekStart) so re-running a settlement overwrites
//     rather than duplicates
package models
