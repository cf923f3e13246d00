package board

import (
	"crypto/rand"
	"fmt"
)

const (
	roomCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	roomCodeLength   = 6

	// largest multiple of len(alphabet) that fits in a byte
	roomCodeCutoff = 256 - 256%len(roomCodeAlphabet)
)

// NewRoomCode returns a random 6-character room code over A-Z0-9.
// Codes are not checked against existing rooms.
func NewRoomCode() (string, error) {
	code := make([]byte, 0, roomCodeLength)
	buf := make([]byte, roomCodeLength*2)

	for len(code) < roomCodeLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("read random: %w", err)
		}
		for _, b := range buf {
			if int(b) >= roomCodeCutoff {
				continue
			}
			code = append(code, roomCodeAlphabet[int(b)%len(roomCodeAlphabet)])
			if len(code) == roomCodeLength {
				break
			}
		}
	}
	return string(code), nil
}
