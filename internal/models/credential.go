package models

import "time"

// UserCredential — хэш пароля пользователя (bcrypt). Таблица опциональна:
// читается только при включённой проверке паролей.
type UserCredential struct {
	UserEmail    string    `gorm:"primaryKey;size:255"`
	PasswordHash []byte    `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null"`
	UpdatedAt    time.Time `gorm:"not null"`
}

func (UserCredential) TableName() string { return "user_credentials" }

// Schema — все таблицы приложения в порядке миграции.
func Schema() []any {
	return []any{
		&FirmwareVersion{},
		&UserRecord{},
		&UserPermission{},
		&DeviceRecord{},
		&Update{},
		&UserCredential{},
	}
}
