// Package cleanup analyses a directory tree for reclaimable disk space:
// duplicate files, temporary leftovers, oversized and stale files, and
// general directory health reminders.
package cleanup

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

const (
	// fingerprintChunk is the number of bytes hashed from each sampled
	// region of a file.
	fingerprintChunk = 64 * 1024
	// minFingerprintSize is the smallest file considered for duplicate
	// detection. Tiny files collide too often to be worth reporting.
	minFingerprintSize = 1024
)

// Fingerprint returns a sampled content key for a file. Small files are
// hashed whole; larger files hash the head, middle, and tail chunks only,
// so the key is probabilistic rather than exact. The file size is folded
// into the key to keep files of different lengths apart.
func Fingerprint(path string, size int64) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s for hashing: %w", path, err)
	}
	defer f.Close()

	h := sha256.New()
	if err := hashChunk(h, f, 0); err != nil {
		return "", err
	}
	if size > 2*fingerprintChunk {
		if err := hashChunk(h, f, size/2); err != nil {
			return "", err
		}
		if err := hashChunk(h, f, size-fingerprintChunk); err != nil {
			return "", err
		}
	}

	return fmt.Sprintf("%d:%s", size, hex.EncodeToString(h.Sum(nil))), nil
}

func hashChunk(h io.Writer, f *os.File, offset int64) error {
	if _, err := f.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("failed to seek %s: %w", f.Name(), err)
	}
	if _, err := io.CopyN(h, f, fingerprintChunk); err != nil && err != io.EOF {
		return fmt.Errorf("failed to read %s: %w", f.Name(), err)
	}
	return nil
}
