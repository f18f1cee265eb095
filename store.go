package atdrv

import (
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CommandLogEntry is one audit-log row for a completed Send/SendWrite/
// SendPrompted call (§7's "audit log... orthogonal to the protocol
// engine's own deliberately absent persistence").
type CommandLogEntry struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreatedAt  time.Time `json:"created_at"`
	Command    string    `json:"command"`
	Type       string    `json:"type"`
	Payload    string    `json:"payload,omitempty"`
	Result     string    `json:"result,omitempty"`
	Err        string    `json:"error,omitempty"`
	DurationMs int64     `json:"duration_ms"`
}

// UnsolicitedLogEntry is one audit-log row for a dispatched unsolicited
// line.
type UnsolicitedLogEntry struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	Line      string    `json:"line"`
}

// Store is the SQLite-backed audit log described in SPEC_FULL §2/§7. A
// failed write here is logged and never fails or blocks the command it
// would have recorded.
type Store struct {
	db *gorm.DB
}

// NewStore opens (creating if necessary) a SQLite database at path and
// migrates its schema.
func NewStore(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("atdrv: open store %s: %w", path, err)
	}
	if err := db.AutoMigrate(&CommandLogEntry{}, &UnsolicitedLogEntry{}); err != nil {
		return nil, fmt.Errorf("atdrv: migrate store: %w", err)
	}
	return &Store{db: db}, nil
}

// LogCommand records the outcome of one command send.
func (s *Store) LogCommand(entry CommandLogEntry) error {
	return s.db.Create(&entry).Error
}

// LogUnsolicited records one dispatched unsolicited line.
func (s *Store) LogUnsolicited(line string) error {
	return s.db.Create(&UnsolicitedLogEntry{Line: line}).Error
}

// History returns up to limit command log entries, most recent first,
// starting after offset.
func (s *Store) History(limit, offset int) ([]CommandLogEntry, error) {
	var entries []CommandLogEntry
	err := s.db.Order("id desc").Limit(limit).Offset(offset).Find(&entries).Error
	return entries, err
}

// Close releases the underlying database connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
