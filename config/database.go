package config

import (
	"github.com/mindforge/mindmap-api/models"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func open(url, path string) (*gorm.DB, error) {
	if url != "" {
		return gorm.Open(postgres.Open(url), &gorm.Config{})
	}
	return gorm.Open(sqlite.Open(path), &gorm.Config{})
}

// ConnectCacheDB opens the mind-map response cache store and creates its
// schema on first use.
func ConnectCacheDB(cfg *Config) (*gorm.DB, error) {
	db, err := open(cfg.CacheDBURL, cfg.CacheDBPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.CacheEntry{}); err != nil {
		return nil, err
	}
	return db, nil
}

// ConnectAppDB opens the user/document store and creates its schema on
// first use.
func ConnectAppDB(cfg *Config) (*gorm.DB, error) {
	db, err := open(cfg.AppDBURL, cfg.AppDBPath)
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&models.User{}, &models.Document{}); err != nil {
		return nil, err
	}
	return db, nil
}
