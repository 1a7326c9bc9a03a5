package database

import (
	"fmt"
	"sync"

	"github.com/jinzhu/gorm"
	_ "github.com/jinzhu/gorm/dialects/sqlite"
	"github.com/rs/zerolog/log"

	"clipstream/cmd/config"
	"clipstream/pkg/models"
)

var (
	mu   sync.Mutex
	conn *gorm.DB
)

// Get returns the process-wide database handle, dialing it on first use.
// Concurrent callers before the first dial resolves block on the same attempt
// instead of opening duplicate connections. A failed dial caches nothing, so
// the next call retries.
func Get() (*gorm.DB, error) {
	mu.Lock()
	defer mu.Unlock()

	if conn != nil {
		return conn, nil
	}

	db, err := gorm.Open("sqlite3", config.DatabaseDSN)
	if err != nil {
		log.Error().Err(err).Msg("database connect failed")
		return nil, fmt.Errorf("database connect: %w", err)
	}
	db.DB().SetMaxOpenConns(config.DatabasePoolSize)

	if err := db.AutoMigrate(&models.User{}, &models.Video{}).Error; err != nil {
		db.Close()
		return nil, fmt.Errorf("database migrate: %w", err)
	}

	log.Info().Str("dsn", config.DatabaseDSN).Msg("connected to database")
	conn = db
	return conn, nil
}

// Reset closes and forgets the cached handle. Mainly for tests and shutdown.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	if conn != nil {
		conn.Close()
		conn = nil
	}
}
