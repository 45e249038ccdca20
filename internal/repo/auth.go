package repo

import (
	"context"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pkg/errors"

	"fleet/internal/apperr"
	"fleet/internal/logs"
	"fleet/internal/models"
	"fleet/internal/token"
	"fleet/internal/validate"
)

const (
	ScopeViewOwnDevices  = "can_view_own_devices"
	ScopePerformUpdates  = "can_perform_updates"
	invalidCredentialMsg = "Invalid login credentials"
)

// Scope — значение claim "scope" для пользователя.
func Scope(u *models.User) string {
	if u.CanPerformUpdates() {
		return ScopeViewOwnDevices + " " + ScopePerformUpdates
	}
	return ScopeViewOwnDevices
}

// AuthenticateUser проверяет учётные данные и выдаёт токен доступа.
// Несуществующий email даёт Unauthorized независимо от формата пароля.
func (s *Store) AuthenticateUser(ctx context.Context, email, password string) (string, error) {
	log := logs.FromContext(ctx).WithField("email", email)
	log.Debug("authenticate user")

	if err := checkEmail(email); err != nil {
		return "", err
	}
	user, err := s.FindUserByEmail(ctx, email, false)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", apperr.Unauthorized(invalidCredentialMsg).With("email", email)
	}

	if password == "" {
		return "", apperr.InvalidInput("Missing the password")
	}
	if !validate.IsPassword(password) {
		return "", apperr.InvalidInput(validate.PasswordRules)
	}

	if s.opts.Passwords != nil {
		ok, err := s.opts.Passwords.Verify(ctx, email, password)
		if err != nil {
			return "", s.fail(ctx, "verify password", err)
		}
		if !ok {
			log.Info("password mismatch")
			return "", apperr.Unauthorized(invalidCredentialMsg).With("email", email)
		}
	}

	signed, err := token.Issue(map[string]any{"scope": Scope(user)}, s.opts.Secret, token.Options{
		Issuer:    s.opts.AppName,
		Subject:   email,
		Audience:  s.opts.Audience,
		ExpiresIn: s.opts.ExpiresIn,
	})
	if err != nil {
		return "", apperr.Internal("token issue failed", errors.Wrap(err, "issue token"))
	}
	log.Debug("token issued")
	return signed, nil
}

// VerifyToken проверяет подпись и срок токена, возвращает его claims.
func (s *Store) VerifyToken(ctx context.Context, raw string) (*models.DecodedJwt, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.InvalidInput("Token is missing")
	}
	claims, err := token.Validate(raw, s.opts.Secret)
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.Expired("Token has expired")
	case err != nil:
		logs.FromContext(ctx).WithError(err).Debug("token rejected")
		return nil, apperr.InvalidToken("Invalid access token")
	}
	decoded := models.NewDecodedJwt(claims)
	logs.FromContext(ctx).WithField("sub", decoded.Sub).Debug("token verified")
	return decoded, nil
}
