// Package randid generates short random identifiers from a fixed
// lowercase alphanumeric alphabet.
package randid

import "crypto/rand"

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Generate returns a random identifier of the given length. Lengths of
// zero or less return an empty string.
func Generate(length int) string {
	if length <= 0 {
		return ""
	}

	// Highest byte value usable without modulo bias.
	limit := byte(len(alphabet) * (256 / len(alphabet)))

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		// crypto/rand.Read never fails and always fills the buffer.
		_, _ = rand.Read(buf)
		for _, b := range buf {
			if b >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out)
}
