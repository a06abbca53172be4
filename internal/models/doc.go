// Package models defines the core domain models for the poker group
// expense tracker.
//
// # Entities
//
//   - User: registered account that can create and join groups
//   - Group: a recurring poker group owning players and sessions
//   - Player: a seat at the table, optionally claimed by a user
//   - Session: one game night with a buy-in and per-player balances
//   - Balance: a player's net result (cash-out minus buy-in) for one session
//   - Settlement: a directed obligation between two players with a settled flag
//
// # Design Principles
//
//  1. **Recompute from source of truth**: net positions and settlement
//     amounts are always derived fresh from session balances; only the
//     settled boolean has an independent lifecycle.
//  2. **Integer minor units**: all amounts are money.Cents; decimals exist
//     only at the JSON boundary.
//  3. **Avoid circular references**: relationships use ID strings instead of
//     pointers.
package models
