package validate

import (
	"net/mail"
	"unicode"

	"github.com/ShiraazMoollatjie/goluhn"
	"go.uber.org/zap"
)

// IsPhoneNumber accepts the two formats the checkout form allows: 11 digits,
// or a plus sign followed by 11 digits.
func IsPhoneNumber(s string) bool {
	switch len(s) {
	case 11:
		return allDigits(s)
	case 12:
		return s[0] == '+' && allDigits(s[1:])
	}
	return false
}

// IsName accepts alphabetic names only.
func IsName(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return true
}

// IsCardNumber accepts raw card numbers: exactly 16 digits. A failed Luhn
// checksum does not reject the number, it is only logged.
func IsCardNumber(s string) bool {
	if len(s) != 16 || !allDigits(s) {
		return false
	}
	if err := goluhn.Validate(s); err != nil {
		zap.L().Debug("card number failed luhn checksum")
	}
	return true
}

func IsEmail(s string) bool {
	_, err := mail.ParseAddress(s)
	return err == nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
