package listing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleet/internal/models"
)

func ids(ds []*models.Device) []int {
	out := make([]int, 0, len(ds))
	for _, d := range ds {
		out = append(out, d.ID)
	}
	return out
}

func fixture() []*models.Device {
	t1 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)
	return []*models.Device{
		{ID: 1, Name: "beta", Email: "c@x.com", Version: "1.2.0", IsCurrent: true, LastUpdatedAt: &t2},
		{ID: 2, Name: "Alpha", Email: "a@x.com", Version: "1.10.0", InProgress: true},
		{ID: 3, Name: "gamma", Email: "b@x.com", Version: "", LastUpdatedAt: &t1},
		{ID: 4, Name: "delta", Email: "a@x.com", Version: "0.9.9"},
	}
}

func TestSort(t *testing.T) {
	cases := []struct {
		by        SortField
		ascending bool
		want      []int
	}{
		{ByName, true, []int{2, 1, 4, 3}},
		{ByName, false, []int{3, 4, 1, 2}},
		{ByUser, true, []int{2, 4, 3, 1}},
		{ByUpdated, true, []int{2, 4, 3, 1}},
		{ByUpdated, false, []int{1, 3, 2, 4}},
		{ByVersion, true, []int{3, 4, 1, 2}},
		{ByVersion, false, []int{2, 1, 4, 3}},
		{ByStatus, false, []int{2, 1, 3, 4}},
	}
	for _, tc := range cases {
		got := Apply(fixture(), Options{SortBy: tc.by, Ascending: tc.ascending})
		assert.Equal(t, tc.want, ids(got), "%s asc=%v", tc.by, tc.ascending)
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = Apply(in, Options{SortBy: ByName, Ascending: true})
	assert.Equal(t, []int{1, 2, 3, 4}, ids(in))
	assert.Equal(t, []int{1, 2, 3, 4}, ids(Apply(in, Options{})))
	assert.NotNil(t, Apply(nil, Options{}))
}

func TestPage(t *testing.T) {
	in := fixture()
	assert.Equal(t, []int{2, 3}, ids(Page(in, 2, 1)))
	assert.Equal(t, []int{3, 4}, ids(Page(in, 0, 2)))
	assert.Equal(t, []int{4}, ids(Page(in, 10, 3)))
	assert.Empty(t, Page(in, 2, 4))
}

func TestRecentOrDate(t *testing.T) {
	now := time.Date(2026, 5, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "5 hours ago", RecentOrDate(now.Add(-5*time.Hour), now))
	assert.Equal(t, "1 hour ago", RecentOrDate(now.Add(-70*time.Minute), now))
	assert.Equal(t, "1 minute ago", RecentOrDate(now.Add(-time.Minute), now))
	assert.Equal(t, "30 seconds ago", RecentOrDate(now.Add(-30*time.Second), now))
	assert.Equal(t, "500 ms ago", RecentOrDate(now.Add(-500*time.Millisecond), now))
	assert.Equal(t, "2026/05/08", RecentOrDate(now.Add(-50*time.Hour), now))
}
