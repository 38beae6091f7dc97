package cache

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "cache.db")), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}))
	return NewStore(db, 3600*time.Second, logger.NewNop())
}

func sampleResponse(topic string) *models.MindMapResponse {
	return &models.MindMapResponse{
		Topic: topic,
		Root: &models.MindMapNode{
			Title:        topic,
			LearnMore:    "https://example.com/" + topic,
			BulletPoints: []string{"first", "second"},
			Children: []models.MindMapNode{
				{Title: "Child", BulletPoints: []string{}, Children: []models.MindMapNode{}},
			},
		},
	}
}

func TestRoundTrip(t *testing.T) {
	store := newTestStore(t)
	want := sampleResponse("Solar Energy")

	require.NoError(t, store.Put("Solar Energy", "gemini-2.5-pro", want))

	got, ok := store.Get("Solar Energy", "gemini-2.5-pro")
	require.True(t, ok)
	assert.Equal(t, want, got)
}

func TestGetMissesOnOtherKey(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.Put("Solar Energy", "gemini-2.5-pro", sampleResponse("Solar Energy")))

	_, ok := store.Get("Solar Energy", "gemini-1.5-flash")
	assert.False(t, ok)

	_, ok = store.Get("Wind Energy", "gemini-2.5-pro")
	assert.False(t, ok)
}

func TestExpiredEntryTreatedAsAbsentButRetained(t *testing.T) {
	store := newTestStore(t)
	base := time.Now()
	store.now = func() time.Time { return base }

	require.NoError(t, store.Put("Solar Energy", "gemini-2.5-pro", sampleResponse("Solar Energy")))

	store.now = func() time.Time { return base.Add(3601 * time.Second) }
	_, ok := store.Get("Solar Energy", "gemini-2.5-pro")
	assert.False(t, ok)

	// Expiry never deletes the row.
	var count int64
	require.NoError(t, store.db.Model(&models.CacheEntry{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestPutAppendsAndNewestWins(t *testing.T) {
	store := newTestStore(t)
	first := sampleResponse("Solar Energy")
	second := sampleResponse("Solar Energy")
	second.Root.BulletPoints = []string{"updated"}

	require.NoError(t, store.Put("Solar Energy", "gemini-2.5-pro", first))
	require.NoError(t, store.Put("Solar Energy", "gemini-2.5-pro", second))

	got, ok := store.Get("Solar Energy", "gemini-2.5-pro")
	require.True(t, ok)
	assert.Equal(t, second, got)

	var count int64
	require.NoError(t, store.db.Model(&models.CacheEntry{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}

func TestPutRejectsIncompleteResponse(t *testing.T) {
	store := newTestStore(t)

	err := store.Put("Solar Energy", "gemini-2.5-pro", &models.MindMapResponse{Topic: "Solar Energy"})
	assert.ErrorIs(t, err, ErrInvalidResponse)

	_, ok := store.Get("Solar Energy", "gemini-2.5-pro")
	assert.False(t, ok)
}

func TestUnparseablePayloadTreatedAsAbsent(t *testing.T) {
	store := newTestStore(t)
	entry := models.CacheEntry{
		Topic:        "Solar Energy",
		Model:        "gemini-2.5-pro",
		ResponseJSON: "{not json",
		CreatedAt:    time.Now().Unix(),
	}
	require.NoError(t, store.db.Create(&entry).Error)

	_, ok := store.Get("Solar Energy", "gemini-2.5-pro")
	assert.False(t, ok)
}
