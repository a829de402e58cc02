// Package sqlite provides a SQLite-backed durable tier for the style cache.
//
// Entries are scoped by namespace so several caches, or unrelated data, can
// share one database file.
package sqlite
