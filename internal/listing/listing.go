package listing

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"fleet/internal/models"
	"fleet/internal/version"
)

type SortField string

const (
	ByName    SortField = "NAME"
	ByUser    SortField = "USER"
	ByUpdated SortField = "UPDATED"
	ByVersion SortField = "VERSION"
	ByStatus  SortField = "STATUS"
)

// Options — сортировка и страница списка устройств. Limit 0 — без ограничения.
type Options struct {
	SortBy    SortField
	Ascending bool
	Limit     int
	Offset    int
}

// Apply возвращает новый срез: отсортированный (стабильно) и обрезанный по странице.
func Apply(devices []*models.Device, opts Options) []*models.Device {
	out := slices.Clone(devices)
	if out == nil {
		out = []*models.Device{}
	}
	if opts.SortBy != "" {
		Sort(out, opts.SortBy, opts.Ascending)
	}
	return Page(out, opts.Limit, opts.Offset)
}

func Sort(devices []*models.Device, by SortField, ascending bool) {
	if by == ByVersion {
		// устройства без версии считаются самыми старыми
		version.SortFunc(devices, deviceVersion, !ascending)
		return
	}
	var cmpFn func(a, b *models.Device) int
	switch by {
	case ByName:
		cmpFn = func(a, b *models.Device) int { return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name)) }
	case ByUser:
		cmpFn = func(a, b *models.Device) int { return strings.Compare(strings.ToLower(a.Email), strings.ToLower(b.Email)) }
	case ByUpdated:
		cmpFn = func(a, b *models.Device) int { return cmp.Compare(updatedMillis(a), updatedMillis(b)) }
	case ByStatus:
		cmpFn = func(a, b *models.Device) int { return cmp.Compare(StatusRank(a), StatusRank(b)) }
	default:
		return
	}
	slices.SortStableFunc(devices, func(a, b *models.Device) int {
		if ascending {
			return cmpFn(a, b)
		}
		return cmpFn(b, a)
	})
}

func Page(devices []*models.Device, limit, offset int) []*models.Device {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(devices) {
		return []*models.Device{}
	}
	devices = devices[offset:]
	if limit > 0 && limit < len(devices) {
		devices = devices[:limit]
	}
	return devices
}

// StatusRank: обновляется > актуален > устарел.
func StatusRank(d *models.Device) int {
	switch {
	case d.InProgress:
		return 1
	case d.IsCurrent:
		return 0
	default:
		return -1
	}
}

func deviceVersion(d *models.Device) version.Version {
	v, err := version.Parse(d.Version)
	if err != nil {
		return version.Version{Major: -1, Minor: -1, Patch: -1}
	}
	return v
}

func updatedMillis(d *models.Device) int64 {
	if d.LastUpdatedAt == nil {
		return math.MinInt64
	}
	return d.LastUpdatedAt.UnixMilli()
}

const day = 24 * time.Hour

// RecentOrDate: "5 hours ago" для отметок за последние сутки, иначе YYYY/MM/DD.
func RecentOrDate(t, now time.Time) string {
	diff := now.Sub(t)
	if diff < day {
		return longDuration(diff) + " ago"
	}
	return t.Format("2006/01/02")
}

// longDuration — длинный формат длительности: "1 minute", "2 hours", "900 ms".
func longDuration(d time.Duration) string {
	ms := float64(d.Milliseconds())
	abs := math.Abs(ms)
	for _, u := range []struct {
		size float64
		name string
	}{
		{float64(day.Milliseconds()), "day"},
		{float64(time.Hour.Milliseconds()), "hour"},
		{float64(time.Minute.Milliseconds()), "minute"},
		{float64(time.Second.Milliseconds()), "second"},
	} {
		if abs >= u.size {
			n := math.Round(ms / u.size)
			if abs >= u.size*1.5 {
				return fmt.Sprintf("%.0f %ss", n, u.name)
			}
			return fmt.Sprintf("%.0f %s", n, u.name)
		}
	}
	return fmt.Sprintf("%.0f ms", ms)
}
