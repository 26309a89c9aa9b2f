// Package state keeps per-user conversation sessions for Telegram bots.
// Managers hand out copies, so handlers for the same user never share memory;
// concurrent updates resolve as last write wins.
package state
