package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/glebarez/go-sqlite" // Pure Go SQLite driver
	"github.com/smarthealth/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// slotRow is one slot in the slots table.
type slotRow struct {
	Name      string `gorm:"primaryKey;size:64"`
	Value     []byte
	UpdatedAt time.Time
}

func (slotRow) TableName() string { return "slots" }

// SQLiteBackend stores slots as rows of a single table.
type SQLiteBackend struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// OpenSQLite opens dir/smarthealth.db, or an in-memory database when dir is empty.
func OpenSQLite(dir string) (*SQLiteBackend, error) {
	dsn := ":memory:"
	if dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, domain.WrapError("open_sqlite", err, domain.KindStorage)
		}
		dsn = filepath.Join(dir, "smarthealth.db") + "?_journal=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, domain.WrapError("open_sqlite", fmt.Errorf("failed to open sqlite: %w", err), domain.KindStorage)
	}
	// Every connection to :memory: is a separate database.
	sqlDB.SetMaxOpenConns(1)

	db, err := gorm.Open(sqlite.Dialector{Conn: sqlDB}, &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		sqlDB.Close()
		return nil, domain.WrapError("open_sqlite", fmt.Errorf("failed to open sqlite: %w", err), domain.KindStorage)
	}

	if err := db.AutoMigrate(&slotRow{}); err != nil {
		sqlDB.Close()
		return nil, domain.WrapError("migrate_sqlite", fmt.Errorf("failed to migrate: %w", err), domain.KindStorage)
	}

	return &SQLiteBackend{db: db, sqlDB: sqlDB}, nil
}

// Get implements Backend.
func (s *SQLiteBackend) Get(ctx context.Context, slot string) ([]byte, bool, error) {
	var row slotRow
	err := s.db.WithContext(ctx).First(&row, "name = ?", slot).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.WrapError("sqlite_get", err, domain.KindStorage)
	}
	return row.Value, true, nil
}

// Set implements Backend.
func (s *SQLiteBackend) Set(ctx context.Context, slot string, value []byte) error {
	row := slotRow{Name: slot, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&row).Error
	if err != nil {
		return domain.WrapError("sqlite_set", err, domain.KindStorage)
	}
	return nil
}

// Ping implements Backend.
func (s *SQLiteBackend) Ping(ctx context.Context) error {
	if err := s.sqlDB.PingContext(ctx); err != nil {
		return domain.WrapError("sqlite_ping", err, domain.KindStorage)
	}
	return nil
}

// Close implements Backend.
func (s *SQLiteBackend) Close() error {
	return s.sqlDB.Close()
}
