// Package docid provides deterministic document IDs derived from content.
package docid

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/hyperjump/senko/internal/models"
)

// ForText returns a stable document ID for the given role and raw text.
// Identical input always yields the same ID, which keeps repeated analyses
// of the same text byte-identical.
func ForText(role models.Role, text string) string {
	hash := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%s", role, hex.EncodeToString(hash[:8]))
}
