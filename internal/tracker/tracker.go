package tracker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// Tracker computes content fingerprints and decides which files need
// (re)processing. It holds no state of its own; stored fingerprints are
// owned by the index and committed by the pipeline only after a successful
// chunk+embed+upsert.
type Tracker struct{}

// New creates a new Tracker
func New() *Tracker {
	return &Tracker{}
}

// Fingerprint computes the SHA-256 hex digest over the file's raw bytes
func (t *Tracker) Fingerprint(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}

// FingerprintBytes computes the digest over in-memory content. Used when the
// caller already holds the file bytes.
func (t *Tracker) FingerprintBytes(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// ShouldReindex reports whether a file needs processing: always when force
// is set, when no fingerprint is stored for it, or when the stored
// fingerprint differs from the freshly computed one. Pure decision; no side
// effects.
func (t *Tracker) ShouldReindex(relPath, freshHash string, stored map[string]string, force bool) bool {
	if force {
		return true
	}

	prev, ok := stored[relPath]
	if !ok {
		return true
	}

	return prev != freshHash
}
