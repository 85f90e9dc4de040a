// Package scheduler provides the bot's time-trigger registry.
//
// Two kinds of triggers exist: a single recurring weekly refresh, and
// per-game day triggers keyed by sport + game ID. Game-day triggers fire at
// a fixed wall-clock time on the calendar date of the game, expressed as a
// cron entry scoped to that month and day (effectively a one-shot).
//
// The registered per-game set is kept in sync with a desired set via
// Reconcile, which applies a set difference (add what's missing, remove
// what's stale) instead of clearing and rebuilding, so pending triggers for
// unchanged games are never cancelled and re-created.
package scheduler
