package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrMissingSecret = errors.New("token: signing secret is required")

// Options задаёт зарегистрированные claims для Issue.
type Options struct {
	Issuer    string
	Subject   string
	Audience  string
	ExpiresIn time.Duration
}

// now подменяется в тестах.
var now = time.Now

// Issue подписывает HS256-токен: пользовательские claims + iss/sub/aud/iat/exp.
func Issue(claims map[string]any, secret string, opts Options) (string, error) {
	if secret == "" {
		return "", ErrMissingSecret
	}
	mc := jwt.MapClaims{}
	for k, v := range claims {
		mc[k] = v
	}
	issuedAt := now()
	mc["iat"] = issuedAt.Unix()
	if opts.Issuer != "" {
		mc["iss"] = opts.Issuer
	}
	if opts.Subject != "" {
		mc["sub"] = opts.Subject
	}
	if opts.Audience != "" {
		mc["aud"] = opts.Audience
	}
	if opts.ExpiresIn > 0 {
		mc["exp"] = issuedAt.Add(opts.ExpiresIn).Unix()
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, mc).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("token: sign: %w", err)
	}
	return signed, nil
}

// Decode разбирает токен без проверки подписи. ok=false для всего, что не похоже на JWT.
func Decode(raw string) (jwt.MapClaims, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		return nil, false
	}
	return claims, true
}

// Validate проверяет подпись и сроки. Ошибку можно сравнивать с jwt.ErrTokenExpired и т.п.
func Validate(raw, secret string) (jwt.MapClaims, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(strings.TrimSpace(raw), claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	}, jwt.WithTimeFunc(now), jwt.WithIssuedAt())
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// Verify не паникует.
func Verify(raw, secret string) bool {
	_, err := Validate(raw, secret)
	return err == nil
}

// IsExpired: с секретом любая ошибка проверки считается истечением;
// без секрета смотрим только на exp, отсутствие exp тоже истечение.
func IsExpired(raw, secret string) bool {
	if secret != "" {
		return !Verify(raw, secret)
	}
	claims, ok := Decode(raw)
	if !ok {
		return true
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return true
	}
	return exp.UnixMilli() < now().UnixMilli()
}
