package paginator

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		raw       string
		count     int64
		wantPage  int
		wantPages int
	}{
		{raw: "", count: 13, wantPage: 1, wantPages: 2},
		{raw: "1", count: 13, wantPage: 1, wantPages: 2},
		{raw: "2", count: 13, wantPage: 2, wantPages: 2},
		{raw: "3", count: 13, wantPage: 2, wantPages: 2},
		{raw: "0", count: 13, wantPage: 2, wantPages: 2},
		{raw: "-4", count: 13, wantPage: 2, wantPages: 2},
		{raw: "abc", count: 13, wantPage: 1, wantPages: 2},
		{raw: "", count: 0, wantPage: 1, wantPages: 1},
		{raw: "5", count: 0, wantPage: 1, wantPages: 1},
		{raw: "2", count: 20, wantPage: 2, wantPages: 2},
		{raw: " 2 ", count: 21, wantPage: 2, wantPages: 3},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("%q of %d", tc.raw, tc.count), func(t *testing.T) {
			page, pages := Resolve(tc.raw, tc.count, 10)
			assert.Equal(t, tc.wantPage, page)
			assert.Equal(t, tc.wantPages, pages)
		})
	}
}

type entry struct {
	ID   uint `gorm:"primaryKey"`
	Kind string
}

func newEntries(t *testing.T, n int) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entry{}))
	for i := 0; i < n; i++ {
		kind := "even"
		if i%2 == 1 {
			kind = "odd"
		}
		require.NoError(t, db.Create(&entry{Kind: kind}).Error)
	}
	return db
}

func TestPaginateSlicesQuery(t *testing.T) {
	db := newEntries(t, 13)

	first, err := Paginate[entry](db.Model(&entry{}), "", 10, "id DESC")
	require.NoError(t, err)
	assert.Equal(t, 10, first.Len())
	assert.Equal(t, uint(13), first.Items[0].ID)
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 2, first.NextPageNumber())

	second, err := Paginate[entry](db.Model(&entry{}), "2", 10, "id DESC")
	require.NoError(t, err)
	assert.Equal(t, 3, second.Len())
	assert.Equal(t, 11, second.StartIndex())
	assert.False(t, second.HasNext())
	assert.True(t, second.HasOtherPages())
	assert.Equal(t, []int{1, 2}, second.PageRange())
}

func TestPaginateFilteredQuery(t *testing.T) {
	db := newEntries(t, 13)

	page, err := Paginate[entry](db.Model(&entry{}).Where("kind = ?", "odd"), "9", 4, "id ASC")
	require.NoError(t, err)
	assert.Equal(t, int64(6), page.Count)
	assert.Equal(t, 2, page.Number)
	assert.Equal(t, 2, page.Len())
	for _, e := range page.Items {
		assert.Equal(t, "odd", e.Kind)
	}
}

func TestPaginateEmpty(t *testing.T) {
	db := newEntries(t, 0)

	page, err := Paginate[entry](db.Model(&entry{}), "3", 10, "id DESC")
	require.NoError(t, err)
	assert.Equal(t, 0, page.Len())
	assert.Equal(t, 1, page.NumPages)
	assert.Equal(t, 0, page.StartIndex())
	assert.False(t, page.HasOtherPages())
}
