package pkg

import (
	"crypto/rand"
	"math/big"

	"github.com/google/uuid"
)

const roomCodeAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// RoomCodeLength - short enough to share by voice, which also makes
// accidental collisions possible; the registry regenerates on clash.
const RoomCodeLength = 6

// GenerateRoomCode - generates a short human-shareable room code.
func GenerateRoomCode() string {
	code := make([]byte, RoomCodeLength)
	for i := range code {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(roomCodeAlphabet))))
		if err != nil {
			// crypto/rand only fails when the OS entropy source is broken
			return uuid.NewString()[:RoomCodeLength]
		}
		code[i] = roomCodeAlphabet[n.Int64()]
	}

	return string(code)
}

// GenerateSessionID - generates a connection-scoped player identifier.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GenerateMessageID - generates a chat message identifier.
func GenerateMessageID() string {
	return uuid.NewString()
}
