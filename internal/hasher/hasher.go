package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// chunkSize bounds per-read memory so fingerprinting a multi-gigabyte
// file costs the same memory as a small one.
const chunkSize = 64 * 1024

// HashFile returns the hex-encoded SHA-256 digest of the file's content.
// The fingerprint depends only on the bytes, never on the path or name.
// Any read error aborts the computation; no partial digest is returned.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file for hashing: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
