package models

import "time"

// Таблицы схемы считаются существующими; AutoMigrate используется для dev/тестов.

type DeviceRecord struct {
	ID                uint   `gorm:"primaryKey"`
	Name              string `gorm:"size:255;not null"`
	UserEmail         string `gorm:"size:255;index;not null"`
	FirmwareVersionID *uint  `gorm:"index"`
}

func (DeviceRecord) TableName() string { return "devices" }

type FirmwareVersion struct {
	ID    uint `gorm:"primaryKey"`
	Major int  `gorm:"not null"`
	Minor int  `gorm:"not null"`
	Patch int  `gorm:"not null"`
}

func (FirmwareVersion) TableName() string { return "firmware_versions" }

// Update: запуск обновления прошивки; Finished == nil, пока обновление идёт.
type Update struct {
	ID       uint `gorm:"primaryKey"`
	DeviceID uint `gorm:"index;not null"`
	Finished *time.Time
}

func (Update) TableName() string { return "updates" }

// Device — устройство в том виде, в каком его отдаёт API.
type Device struct {
	ID            int        `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	Version       string     `json:"version,omitempty"` // пусто, если у устройства нет прошивки
	IsCurrent     bool       `json:"isCurrent"`
	InProgress    bool       `json:"inProgress"`
	LastUpdatedAt *time.Time `json:"lastUpdatedAt,omitempty"`
}
