package crypto

import (
	"unicode"
)

// PasswordStrength - оценка пароля ключа
type PasswordStrength int

const (
	PasswordWeak PasswordStrength = iota
	PasswordMedium
	PasswordStrong
)

const minPasswordLength = 8

func (s PasswordStrength) String() string {
	switch s {
	case PasswordStrong:
		return "strong"
	case PasswordMedium:
		return "medium"
	default:
		return "weak"
	}
}

// CheckPasswordStrength оценивает пароль по длине и классам символов
func CheckPasswordStrength(password string) PasswordStrength {
	if len(password) < minPasswordLength {
		return PasswordWeak
	}

	var upper, lower, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}

	classes := 0
	for _, ok := range []bool{upper, lower, digit, symbol} {
		if ok {
			classes++
		}
	}

	switch {
	case classes == 4 && len(password) >= 12:
		return PasswordStrong
	case classes >= 3:
		return PasswordMedium
	default:
		return PasswordWeak
	}
}
