package services

import (
	"crypto/rand"
	"time"
)

const joinCodeLength = 8

// generateJoinCode produces a short uppercase code for inviting players into a
// team. Uniqueness is enforced by the database; a rare collision surfaces as a
// conflict and the caller retries.
func generateJoinCode() string {
	const charset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	b := make([]byte, joinCodeLength)
	randomBytes := make([]byte, joinCodeLength)
	if _, err := rand.Read(randomBytes); err != nil {
		for i := range b {
			b[i] = charset[int(time.Now().UnixNano())%len(charset)]
		}
		return string(b)
	}
	for i, rb := range randomBytes {
		b[i] = charset[int(rb)%len(charset)]
	}
	return string(b)
}
