package coordinator

import (
	"crypto/rand"
	"encoding/hex"
	"time"
)

// NewRunID generates a session run identifier: a UTC timestamp for
// humans plus random bytes so IDs are never reused even within one
// second.
func NewRunID(now time.Time) string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return now.UTC().Format("20060102-150405") + "-" + hex.EncodeToString(b[:])
}
