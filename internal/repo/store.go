package repo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"

	"fleet/internal/apperr"
	"fleet/internal/logs"
	"fleet/internal/validate"
)

// PasswordVerifier сверяет пароль с сохранённым хэшем (см. internal/secrets).
type PasswordVerifier interface {
	Verify(ctx context.Context, email, password string) (bool, error)
}

// Options — всё, что нужно Store для выдачи и проверки токенов.
type Options struct {
	AppName   string        // iss
	Audience  string        // aud, host:port
	Secret    string        // HS256
	ExpiresIn time.Duration // exp - iat

	// Passwords == nil — пароль проверяется только по формату.
	Passwords PasswordVerifier
}

// Store — слой доступа к данным: SQL-запросы + сборка view-моделей.
type Store struct {
	db   *gorm.DB
	opts Options
	now  func() time.Time
}

func NewStore(db *gorm.DB, opts Options) *Store {
	if opts.ExpiresIn <= 0 {
		opts.ExpiresIn = time.Hour
	}
	return &Store{db: db, opts: opts, now: time.Now}
}

// raw выполняет параметризованный запрос и сканирует строки в dest.
func (s *Store) raw(ctx context.Context, dest any, query string, args ...any) error {
	if s.db == nil {
		return errors.New("db not configured")
	}
	return s.db.WithContext(ctx).Raw(query, args...).Scan(dest).Error
}

// fail логирует неожиданную ошибку запроса и превращает её в Internal.
func (s *Store) fail(ctx context.Context, op string, err error) error {
	err = errors.Wrap(err, op)
	logs.FromContext(ctx).WithError(err).WithField("op", op).Error("query failed")
	return apperr.Internal("query failed", err)
}

func checkEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return apperr.InvalidInput("Missing the email address")
	}
	if !validate.IsEmail(email) {
		return apperr.InvalidInput(fmt.Sprintf("Not a valid email address: %s", email)).With("email", email)
	}
	return nil
}

func checkDeviceID(id int) error {
	if id <= 0 {
		return apperr.InvalidInput(fmt.Sprintf("A device ID must be a positive integer value, but instead received: %d", id)).
			With("id", id)
	}
	return nil
}
