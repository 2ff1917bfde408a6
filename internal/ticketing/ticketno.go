package ticketing

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"strings"
)

const (
	TicketNoLength   = 8
	ticketNoAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

var ticketNoPattern = regexp.MustCompile(`^[A-Z0-9]{8}$`)

// NewTicketNo returns a random 8-character code over [A-Z0-9] (~41 bits).
func NewTicketNo() (string, error) {
	max := big.NewInt(int64(len(ticketNoAlphabet)))
	var b strings.Builder
	b.Grow(TicketNoLength)
	for i := 0; i < TicketNoLength; i++ {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate ticket number: %w", err)
		}
		b.WriteByte(ticketNoAlphabet[n.Int64()])
	}
	return b.String(), nil
}

// IsTicketNo reports whether s has the ticket number shape.
func IsTicketNo(s string) bool {
	return ticketNoPattern.MatchString(s)
}

// NormalizeTicketNo upper-cases and trims a code typed at the gate.
func NormalizeTicketNo(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}
