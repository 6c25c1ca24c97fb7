package preferences

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

const (
	cacheKeyTheme        = "theme"
	cacheKeyCustomColors = "custom_colors"
)

type cacheEntry struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string
}

func (cacheEntry) TableName() string {
	return "preference_cache"
}

// SQLiteCache implements Cache on a local sqlite key-value table. It backs
// the preference state when the remote store is unreachable at startup.
type SQLiteCache struct {
	db *gorm.DB
}

// OpenCache opens (or creates) the cache database at the given path. Use
// ":memory:" for an ephemeral cache.
func OpenCache(path string) (*SQLiteCache, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		PrepareStmt:            true,
		SkipDefaultTransaction: true,
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		return nil, fmt.Errorf("preferences: open cache: %w", err)
	}

	if err := db.AutoMigrate(&cacheEntry{}); err != nil {
		return nil, fmt.Errorf("preferences: migrate cache: %w", err)
	}

	return &SQLiteCache{db: db}, nil
}

// Read returns the cached theme name and serialized custom palette. Missing
// keys come back as empty strings, not errors.
func (c *SQLiteCache) Read() (string, string, error) {
	name, err := c.value(cacheKeyTheme)
	if err != nil {
		return "", "", err
	}
	customJSON, err := c.value(cacheKeyCustomColors)
	if err != nil {
		return "", "", err
	}
	return name, customJSON, nil
}

func (c *SQLiteCache) value(key string) (string, error) {
	var entry cacheEntry
	err := c.db.First(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("preferences: read cache key %s: %w", key, err)
	}
	return entry.Value, nil
}

// Write stores the theme name and, when non-empty, the serialized custom
// palette. An empty customJSON removes any stored palette so a stale custom
// record can never outlive a preset selection.
func (c *SQLiteCache) Write(themeName, customJSON string) error {
	if err := c.upsert(cacheKeyTheme, themeName); err != nil {
		return err
	}
	if customJSON == "" {
		if err := c.db.Delete(&cacheEntry{}, "key = ?", cacheKeyCustomColors).Error; err != nil {
			return fmt.Errorf("preferences: clear cached palette: %w", err)
		}
		return nil
	}
	return c.upsert(cacheKeyCustomColors, customJSON)
}

func (c *SQLiteCache) upsert(key, value string) error {
	err := c.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value"}),
	}).Create(&cacheEntry{Key: key, Value: value}).Error
	if err != nil {
		return fmt.Errorf("preferences: write cache key %s: %w", key, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (c *SQLiteCache) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
