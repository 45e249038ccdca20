package repo

import (
	"context"
	"time"

	"fleet/internal/logs"
	"fleet/internal/models"
	"fleet/internal/version"
)

// Одна строка на (устройство × прошивка × обновление).
const deviceSelect = `
SELECT
	devices.id AS id,
	devices.name AS name,
	devices.user_email AS email,
	firmware.major AS major,
	firmware.minor AS minor,
	firmware.patch AS patch,
	updates.device_id AS update_device_id,
	updates.finished AS finished
FROM devices
LEFT JOIN firmware_versions AS firmware ON devices.firmware_version_id = firmware.id
LEFT JOIN updates ON devices.id = updates.device_id`

type deviceRow struct {
	ID             int        `gorm:"column:id"`
	Name           string     `gorm:"column:name"`
	Email          string     `gorm:"column:email"`
	Major          *int       `gorm:"column:major"`
	Minor          *int       `gorm:"column:minor"`
	Patch          *int       `gorm:"column:patch"`
	UpdateDeviceID *int       `gorm:"column:update_device_id"`
	Finished       *time.Time `gorm:"column:finished"`
}

type versionRow struct {
	Major int `gorm:"column:major"`
	Minor int `gorm:"column:minor"`
	Patch int `gorm:"column:patch"`
}

func (s *Store) FindAllDevices(ctx context.Context) ([]*models.Device, error) {
	log := logs.FromContext(ctx)
	log.Debug("find all devices")

	var rows []deviceRow
	if err := s.raw(ctx, &rows, deviceSelect+` ORDER BY devices.id`); err != nil {
		return nil, s.fail(ctx, "find all devices", err)
	}
	latest, err := s.latestVersion(ctx)
	if err != nil {
		return nil, err
	}
	devices := reshapeDevices(rows, latest)
	log.WithField("devices", len(devices)).Debug("found devices")
	return devices, nil
}

func (s *Store) FindDevicesByEmail(ctx context.Context, email string) ([]*models.Device, error) {
	log := logs.FromContext(ctx).WithField("email", email)
	log.Debug("find devices by email")

	if err := checkEmail(email); err != nil {
		return nil, err
	}
	var rows []deviceRow
	if err := s.raw(ctx, &rows, deviceSelect+` WHERE devices.user_email = ? ORDER BY devices.id`, email); err != nil {
		return nil, s.fail(ctx, "find devices by email", err)
	}
	latest, err := s.latestVersion(ctx)
	if err != nil {
		return nil, err
	}
	devices := reshapeDevices(rows, latest)
	log.WithField("devices", len(devices)).Debug("found devices")
	return devices, nil
}

// FindDeviceByID возвращает (nil, nil), если устройства нет.
func (s *Store) FindDeviceByID(ctx context.Context, id int) (*models.Device, error) {
	log := logs.FromContext(ctx).WithField("id", id)
	log.Debug("find device by id")

	if err := checkDeviceID(id); err != nil {
		return nil, err
	}
	var rows []deviceRow
	if err := s.raw(ctx, &rows, deviceSelect+` WHERE devices.id = ?`, id); err != nil {
		return nil, s.fail(ctx, "find device by id", err)
	}
	if len(rows) == 0 {
		log.Debug("device not found")
		return nil, nil
	}
	latest, err := s.latestVersion(ctx)
	if err != nil {
		return nil, err
	}
	device := reshapeDevices(rows, latest)[0]
	log.WithField("device", device).Debug("found device")
	return device, nil
}

// FindLatestVersion возвращает максимальную версию по всем прошивкам; "" если прошивок нет.
func (s *Store) FindLatestVersion(ctx context.Context) (string, error) {
	v, err := s.latestVersion(ctx)
	if err != nil || v == nil {
		return "", err
	}
	return v.String(), nil
}

func (s *Store) latestVersion(ctx context.Context) (*version.Version, error) {
	var rows []versionRow
	if err := s.raw(ctx, &rows, `SELECT major, minor, patch FROM firmware_versions`); err != nil {
		return nil, s.fail(ctx, "find latest version", err)
	}
	vs := make([]version.Version, 0, len(rows))
	for _, r := range rows {
		vs = append(vs, version.Version{Major: r.Major, Minor: r.Minor, Patch: r.Patch})
	}
	latest, ok := version.Max(vs)
	if !ok {
		return nil, nil
	}
	logs.FromContext(ctx).WithField("latest", latest.String()).Debug("latest firmware version")
	return &latest, nil
}

// reshapeDevices группирует строки по id устройства в порядке появления.
func reshapeDevices(rows []deviceRow, latest *version.Version) []*models.Device {
	var out []*models.Device
	byID := map[int]*models.Device{}
	versions := map[int][]version.Version{}

	for _, r := range rows {
		d, ok := byID[r.ID]
		if !ok {
			d = &models.Device{ID: r.ID, Name: r.Name, Email: r.Email}
			byID[r.ID] = d
			out = append(out, d)
		}
		if r.Major != nil && r.Minor != nil && r.Patch != nil {
			versions[r.ID] = append(versions[r.ID], version.Version{Major: *r.Major, Minor: *r.Minor, Patch: *r.Patch})
		}
		// строка обновления есть, но не завершена
		if r.UpdateDeviceID != nil && r.Finished == nil {
			d.InProgress = true
		}
		if r.Finished != nil && (d.LastUpdatedAt == nil || r.Finished.After(*d.LastUpdatedAt)) {
			t := *r.Finished
			d.LastUpdatedAt = &t
		}
	}

	for _, d := range out {
		v, ok := version.Max(versions[d.ID])
		if !ok {
			continue
		}
		d.Version = v.String()
		d.IsCurrent = latest != nil && version.Compare(v, *latest) == 0
	}
	if out == nil {
		out = []*models.Device{}
	}
	return out
}
