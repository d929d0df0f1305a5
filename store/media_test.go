package store

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/watchpost/watchpost/models"
)

func newTestStore(t *testing.T) *MediaStore {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Media{}))
	return NewMediaStore(db)
}

func TestInsertAssignsIDAndTimestamp(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	rec := &models.Media{
		DeviceID:  "device1",
		Filename:  "device1-20240101-000000-aa.jpg",
		MediaType: "image",
		Mime:      "image/jpeg",
	}
	require.NoError(t, st.Insert(ctx, rec))
	assert.NotZero(t, rec.ID)
	assert.False(t, rec.CreatedAt.IsZero())
}

func TestInsertDuplicateFilenameFails(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	first := &models.Media{DeviceID: "device1", Filename: "same.jpg", MediaType: "image"}
	require.NoError(t, st.Insert(ctx, first))

	dup := &models.Media{DeviceID: "cam2", Filename: "same.jpg", MediaType: "image"}
	err := st.Insert(ctx, dup)
	require.Error(t, err)
}

func TestRecentOrderAndLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		rec := &models.Media{
			DeviceID:  "device1",
			Filename:  string(rune('a'+i)) + ".jpg",
			MediaType: "image",
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, st.Insert(ctx, rec))
	}

	items, err := st.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, "e.jpg", items[0].Filename)
	assert.Equal(t, "d.jpg", items[1].Filename)
	assert.Equal(t, "c.jpg", items[2].Filename)

	all, err := st.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestRecentTiebreakOnID(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	ts := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for _, name := range []string{"first.jpg", "second.jpg"} {
		rec := &models.Media{DeviceID: "device1", Filename: name, MediaType: "image", CreatedAt: ts}
		require.NoError(t, st.Insert(ctx, rec))
	}

	items, err := st.Recent(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, "second.jpg", items[0].Filename)
	assert.Equal(t, "first.jpg", items[1].Filename)
}

func TestCounts(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	for i, kind := range []string{"image", "image", "video"} {
		rec := &models.Media{
			DeviceID:  "device1",
			Filename:  string(rune('a'+i)) + ".bin",
			MediaType: kind,
		}
		require.NoError(t, st.Insert(ctx, rec))
	}

	images, err := st.CountByKind(ctx, "image")
	require.NoError(t, err)
	assert.Equal(t, int64(2), images)

	videos, err := st.CountByKind(ctx, "video")
	require.NoError(t, err)
	assert.Equal(t, int64(1), videos)

	total, err := st.CountTotal(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)

	c := st.DashboardCounts(ctx)
	assert.Equal(t, Counts{Images: 2, Videos: 1, Total: 3}, c)
}
