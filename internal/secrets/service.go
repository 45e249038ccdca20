package secrets

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"fleet/internal/repo"
	"fleet/internal/validate"
)

var ErrWeakPassword = errors.New(validate.PasswordRules)

// Service хранит и проверяет пароли пользователей (bcrypt).
type Service struct {
	Store *repo.CredentialStore
	Cost  int
}

func New(store *repo.CredentialStore) *Service {
	return &Service{Store: store, Cost: bcrypt.DefaultCost}
}

// SetPassword проверяет формат пароля и сохраняет его хэш.
func (s *Service) SetPassword(ctx context.Context, email, password string) error {
	if !validate.IsPassword(password) {
		return ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.Store.Put(ctx, email, hash); err != nil {
		return fmt.Errorf("store password: %w", err)
	}
	return nil
}

// Verify возвращает false, если пароль не совпал или не задан вовсе.
func (s *Service) Verify(ctx context.Context, email, password string) (bool, error) {
	c, err := s.Store.Get(ctx, email)
	if err != nil {
		return false, err
	}
	if c == nil {
		return false, nil
	}
	err = bcrypt.CompareHashAndPassword(c.PasswordHash, []byte(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, err
	}
}
