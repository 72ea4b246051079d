// Package idhash computes deterministic identifiers for runs and trade log
// entries. The same inputs always produce the same ID, so replayed runs
// collide with their originals instead of duplicating history.
package idhash

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ComputeRunID computes a deterministic run_id using SHA256.
// Formula: SHA256(mode|started_at_unix_ms)
// Returns hex-encoded hash (64 characters).
func ComputeRunID(mode string, startedAtUnixMs int64) string {
	data := fmt.Sprintf("%s|%d", mode, startedAtUnixMs)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}

// ComputeEntryID computes a deterministic trade log entry_id using SHA256.
// Formula: SHA256(run_id|mint|action|executed_at_unix_ns)
// Returns hex-encoded hash (64 characters).
func ComputeEntryID(runID, mint, action string, executedAtUnixNs int64) string {
	data := fmt.Sprintf("%s|%s|%s|%d", runID, mint, action, executedAtUnixNs)

	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:])
}
