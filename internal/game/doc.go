// Package game implements the rules of two-player Yahtzee: dice rolling
// against a per-turn budget, the thirteen scoring categories with their
// bonuses, and the per-player turn state machine. Everything in this
// package is deterministic given the injected random source; room and
// turn-order coordination live in internal/server.
package game
