package version

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"fleet/internal/validate"
)

// Version: тройка major.minor.patch прошивки.
type Version struct {
	Major int `json:"major"`
	Minor int `json:"minor"`
	Patch int `json:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse разбирает semver-строку; pre-release/build суффикс отбрасывается.
func Parse(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if !validate.IsSemver(s) {
		return Version{}, fmt.Errorf("not a semantic version: %q", s)
	}
	if i := strings.IndexAny(s, "+-"); i >= 0 {
		s = s[:i]
	}
	parts := strings.SplitN(s, ".", 3)
	var nums [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("not a semantic version: %q: %w", s, err)
		}
		nums[i] = n
	}
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compare: -1, 0, +1 по (major, minor, patch).
func Compare(a, b Version) int {
	switch {
	case a.Major != b.Major:
		return cmpInt(a.Major, b.Major)
	case a.Minor != b.Minor:
		return cmpInt(a.Minor, b.Minor)
	default:
		return cmpInt(a.Patch, b.Patch)
	}
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Less сравнивает с учётом направления, latestFirst=true сортирует от новых к старым.
func Less(a, b Version, latestFirst bool) bool {
	if latestFirst {
		return Compare(a, b) > 0
	}
	return Compare(a, b) < 0
}

// Sort сортирует на месте, стабильно.
func Sort(vs []Version, latestFirst bool) {
	SortFunc(vs, func(v Version) Version { return v }, latestFirst)
}

// SortFunc делает то же самое для произвольных элементов с версией внутри.
func SortFunc[T any](items []T, key func(T) Version, latestFirst bool) {
	slices.SortStableFunc(items, func(a, b T) int {
		c := Compare(key(a), key(b))
		if latestFirst {
			return -c
		}
		return c
	})
}

// Max возвращает наибольшую версию; ok=false для пустого списка.
func Max(vs []Version) (Version, bool) {
	if len(vs) == 0 {
		return Version{}, false
	}
	best := vs[0]
	for _, v := range vs[1:] {
		if Compare(v, best) > 0 {
			best = v
		}
	}
	return best, true
}
