package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"fleet/internal/models"
)

type CredentialStore struct{ db *gorm.DB }

func NewCredentialStore(db *gorm.DB) *CredentialStore { return &CredentialStore{db: db} }

// Put создаёт или заменяет хэш пароля пользователя.
func (s *CredentialStore) Put(ctx context.Context, email string, hash []byte) error {
	now := time.Now().UTC()
	c := models.UserCredential{UserEmail: email, PasswordHash: hash, CreatedAt: now, UpdatedAt: now}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_email"}},
		DoUpdates: clause.AssignmentColumns([]string{"password_hash", "updated_at"}),
	}).Create(&c).Error
}

// Get возвращает (nil, nil), если пароль не задан.
func (s *CredentialStore) Get(ctx context.Context, email string) (*models.UserCredential, error) {
	var res models.UserCredential
	err := s.db.WithContext(ctx).Where("user_email = ?", email).First(&res).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (s *CredentialStore) Delete(ctx context.Context, email string) error {
	return s.db.WithContext(ctx).Where("user_email = ?", email).Delete(&models.UserCredential{}).Error
}
