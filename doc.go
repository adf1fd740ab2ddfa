// Package reconcile reconciles a general-ledger export against opening and
// closing balance listings, one counterparty at a time. It is designed to be
// local-first and auditable: the full working set persists as a single,
// human-readable workpaper.
//
// The core functionalities include:
//   - Grouping: a Store partitions ledger Records into counterparty Groups
//     and an unassigned pool. Groups can be merged, created and renamed, and
//     records moved between containers, one at a time or in batches. Group
//     aggregates are always recomputed from the records they own.
//   - Balance listings: opening and closing balances are loaded as raw
//     entries, matched to groups by normalized name, or explicitly reassigned
//     to a group when names do not match.
//   - Comparative table: a read-only projection comparing, for every group,
//     the balance calculated from the ledger (plus the auditor's adjustment)
//     with the reported closing balance.
//   - Name normalization: every name comparison goes through Normalize,
//     which ignores case, accents, punctuation and spacing.
//   - Persistence: Snapshot and Restore exchange the full state, and
//     SaveWorkpaper and LoadWorkpaper persist it as JSON.
//
// This package serves as the foundational logic for the `recon`
// command-line tool.
package reconcile
