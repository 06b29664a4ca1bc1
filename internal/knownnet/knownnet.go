// Package knownnet persists the "known networks" collaborator the scan
// command builder and periodic-scan logic consult: which SSIDs (including
// hidden ones) this station has previously associated with, so they can be
// probed directly in an active scan.
package knownnet

import (
	"context"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

// Network is the persisted record of one known SSID.
type Network struct {
	SSID     string `gorm:"primaryKey"`
	Hidden   bool
	Security string
	LastSeen time.Time
}

// Store is a GORM/SQLite-backed known-networks database.
type Store struct {
	db *gorm.DB
}

// Open opens (creating if needed) the known-networks database at path and
// migrates its schema.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&Network{}); err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin()); err != nil {
		return nil, err
	}
	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	return &Store{db: db}, nil
}

// Remember records that ssid has been associated with, optionally as a
// hidden network, with the given security type.
func (s *Store) Remember(ctx context.Context, ssid string, hidden bool, security string) error {
	if ssid == "" {
		return nil
	}
	n := Network{SSID: ssid, Hidden: hidden, Security: security, LastSeen: time.Now()}
	return s.db.WithContext(ctx).Save(&n).Error
}

// HiddenSSIDs returns every known SSID flagged hidden, the list the scan
// command builder enumerates into SCAN_SSIDS attributes.
func (s *Store) HiddenSSIDs(ctx context.Context) ([]string, error) {
	var networks []Network
	if err := s.db.WithContext(ctx).Where("hidden = ?", true).Find(&networks).Error; err != nil {
		return nil, err
	}
	out := make([]string, len(networks))
	for i, n := range networks {
		out[i] = n.SSID
	}
	return out, nil
}

// HasHiddenSSID reports whether any known network is hidden, the
// condition periodic scan uses to decide whether an active scan (rather
// than passive) is warranted.
func (s *Store) HasHiddenSSID(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&Network{}).Where("hidden = ?", true).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
