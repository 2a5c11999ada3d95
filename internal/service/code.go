package service

import (
	"crypto/rand"
	"fmt"

	"driveshare/internal/models"
)

// GenerateConfirmationCode produces the short code issued to the renter
// when a booking is approved. Codes are random, not checked for
// uniqueness; at this keyspace size collisions are not a practical
// concern.
func GenerateConfirmationCode() (string, error) {
	buf := make([]byte, models.ConfirmationCodeLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	for i, b := range buf {
		buf[i] = models.ConfirmationCodeAlphabet[int(b)%len(models.ConfirmationCodeAlphabet)]
	}
	return string(buf), nil
}
