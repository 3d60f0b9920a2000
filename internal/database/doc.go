// Package database provides SQLite-based run history for pageocr.
//
// Every conversion records one row: the input path, the BLAKE2b
// fingerprint of its contents, the engine, the resolved page range,
// progress, and the outcome. The history command reads it back.
//
// The database lives in a single file (history.db) under the XDG data
// directory and is opened through modernc.org/sqlite, a CGO-free driver.
package database
