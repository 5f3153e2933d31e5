// Package models defines the core domain models for group moves.
//
// # Models
//
//   - User: identity supplied by the auth collaborator
//   - Group: a set of members with an immutable owner
//   - GroupSettings: the owner-controlled voting threshold and deadline window
//   - Move: a proposed activity awaiting votes
//   - Vote: one (move, voter) pair in the vote ledger
//   - Tally: vote count and voter IDs for a move, derived on read
//
// # Design Principles
//
// 1. **Derived state is never stored**: approval and expiry are computed from
// a Tally, the group's settings and the current time (see package voting).
// 2. **Deadlines are snapshots**: a Move's Deadline is fixed from the settings in
// effect when it was created.
// 3. **Avoid circular references**: relationships use ID strings, not pointers.
package models
