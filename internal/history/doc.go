// Package history persists scan results in a local SQLite database.
//
// Records are keyed by a random UUID and carry a BLAKE2b-256 digest of the scanned
// image so repeated scans of the same photo can be recognized. The full ScanResult is
// stored as JSON; verdict and timestamps are also kept in columns for listing.
//
// The driver is the pure-Go glebarez/go-sqlite, so no cgo is needed for storage.
// Pass ":memory:" as the path for a throwaway database.
package history
