package validate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
)

var (
	emailRe = regexp.MustCompile("^[a-zA-Z0-9.!#$%&’*+/=?^_`{|}~-]+@[a-zA-Z0-9-]+(?:\\.[a-zA-Z0-9-]+)*$")

	semverRe = regexp.MustCompile(`^([0-9]+)\.([0-9]+)\.([0-9]+)([+-][a-zA-Z0-9]+[a-zA-Z0-9_+.-]*)?$`)

	expiresInRe = regexp.MustCompile(`^([0-9]+)(ms|s|m|h|d)?$`)
)

// PasswordRules — текст ошибки для пароля, общий для скаляра и логина.
const PasswordRules = "Password is not in a valid format. " +
	"Should be a mix of alpha-numeric (mixed case) and at least one symbol. " +
	"Should be at least 8 characters total as well"

func IsEmail(v string) bool { return emailRe.MatchString(v) }

func IsSemver(v string) bool { return semverRe.MatchString(v) }

// IsPassword: от 8 символов, без пробелов, цифра, строчная, заглавная и
// хотя бы один символ вне [0-9A-Za-z_].
func IsPassword(v string) bool {
	if len([]rune(v)) < 8 {
		return false
	}
	var digit, lower, upper, symbol bool
	for _, r := range v {
		switch {
		case unicode.IsSpace(r):
			return false
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= 'A' && r <= 'Z':
			upper = true
		case r == '_':
		default:
			symbol = true
		}
	}
	return digit && lower && upper && symbol
}

// IsExpiresIn проверяет формат срока жизни токена: "1h", "10m", "30s", "2d", "1500ms"
// или просто миллисекунды ("60000").
func IsExpiresIn(v string) bool {
	return expiresInRe.MatchString(strings.TrimSpace(v))
}

func ParseExpiresIn(v string) (time.Duration, error) {
	m := expiresInRe.FindStringSubmatch(strings.TrimSpace(v))
	if m == nil {
		return 0, fmt.Errorf("invalid expiry %q: expected a number with an optional ms|s|m|h|d suffix", v)
	}
	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", v, err)
	}
	unit := time.Millisecond
	switch m[2] {
	case "s":
		unit = time.Second
	case "m":
		unit = time.Minute
	case "h":
		unit = time.Hour
	case "d":
		unit = 24 * time.Hour
	}
	d := time.Duration(n) * unit
	if d <= 0 {
		return 0, fmt.Errorf("invalid expiry %q: must be positive", v)
	}
	return d, nil
}
