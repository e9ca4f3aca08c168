package store

import (
	"encoding/hex"

	"github.com/zeebo/blake3"
)

// ContentHash returns the hex blake3 digest of a file's contents, recorded
// with each file so saved runs show which files changed between scans.
func ContentHash(src []byte) string {
	sum := blake3.Sum256(src)
	return hex.EncodeToString(sum[:])
}
