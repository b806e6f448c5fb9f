package payment

import (
	"strings"

	"github.com/chriskamgang/MyINSAM-Resto/internal/apperr"
)

// ErrInvalidPhoneNumber is returned before any request is made.
var ErrInvalidPhoneNumber = apperr.Validation("Please enter a valid mobile money number")

const (
	minPhoneDigits = 9
	maxPhoneDigits = 15
)

// ValidatePhone normalises a mobile-money number. Spaces, dashes, dots and
// parentheses are ignored and a single leading + is kept.
func ValidatePhone(phone string) (string, error) {
	phone = strings.TrimSpace(phone)
	var b strings.Builder
	digits := 0
	for i, r := range phone {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')':
		default:
			return "", ErrInvalidPhoneNumber
		}
	}
	if digits < minPhoneDigits || digits > maxPhoneDigits {
		return "", ErrInvalidPhoneNumber
	}
	return b.String(), nil
}
