// Package database provides SQLite-based storage for datapull.
//
// HistoryDB records every pull: where the bytes came from, how many bytes
// and rows there were, a content digest, and the error if the pull failed.
// The digest lets a later pull tell whether the upstream file changed.
// Downloaded content itself is never stored.
//
// We use modernc.org/sqlite so the binary stays CGO-free and the history is
// a single file under the XDG data directory.
package database
