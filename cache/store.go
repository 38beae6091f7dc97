package cache

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/mindforge/mindmap-api/logger"
	"github.com/mindforge/mindmap-api/models"
	"gorm.io/gorm"
)

var ErrInvalidResponse = errors.New("refusing to cache an incomplete mind map response")

// Store persists generated mind maps keyed by (topic, model). Writes append;
// reads take the newest row and treat anything older than the TTL as absent
// without deleting it.
type Store struct {
	db  *gorm.DB
	ttl time.Duration
	log *logger.Logger
	now func() time.Time
}

func NewStore(db *gorm.DB, ttl time.Duration, log *logger.Logger) *Store {
	return &Store{db: db, ttl: ttl, log: log, now: time.Now}
}

// Get returns the most recently cached response for (topic, model), or false
// when there is none, it has expired, or its payload no longer parses.
func (s *Store) Get(topic, model string) (*models.MindMapResponse, bool) {
	var entry models.CacheEntry
	err := s.db.
		Where("topic = ? AND model = ?", topic, model).
		Order("id DESC").
		First(&entry).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Warn("cache lookup failed", "topic", topic, "error", err)
		}
		return nil, false
	}

	if s.now().Unix()-entry.CreatedAt > int64(s.ttl.Seconds()) {
		return nil, false
	}

	var resp models.MindMapResponse
	if err := json.Unmarshal([]byte(entry.ResponseJSON), &resp); err != nil {
		s.log.Warn("cached payload no longer parses, treating as absent", "topic", topic, "error", err)
		return nil, false
	}
	if !resp.Valid() {
		return nil, false
	}
	return &resp, true
}

// Put appends a new row for (topic, model). Earlier rows are never updated in
// place.
func (s *Store) Put(topic, model string, resp *models.MindMapResponse) error {
	if !resp.Valid() {
		return ErrInvalidResponse
	}
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	entry := models.CacheEntry{
		Topic:        topic,
		Model:        model,
		ResponseJSON: string(payload),
		CreatedAt:    s.now().Unix(),
	}
	return s.db.Create(&entry).Error
}
