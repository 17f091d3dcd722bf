package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/studyforge/study-assistant/model"
	"github.com/studyforge/study-assistant/utils/blob"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	// ErrNotInitialized is returned when the store is used before Init or
	// after Close
	ErrNotInitialized = errors.New("database store not initialized")
)

// Store wraps the embedded SQLite database behind GORM. It is explicitly
// constructed and passed by handle to every dependent service; there is no
// package-level instance.
type Store struct {
	db   *gorm.DB
	path string

	mu          sync.Mutex
	initialized bool
}

// Stats summarizes the database for the stats endpoint
type Stats struct {
	TotalCourses      int64 `json:"totalCourses"`
	TotalMessages     int64 `json:"totalMessages"`
	DatabaseSizeBytes int64 `json:"databaseSizeBytes"`
}

// Open connects to the SQLite database at path, creating parent directories
// as needed. Use ":memory:" for throwaway stores in tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	// Configure GORM logger
	gormLogger := logger.Default.LogMode(logger.Warn)
	if os.Getenv("GO_ENV") == "development" {
		gormLogger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger:                 gormLogger,
		SkipDefaultTransaction: false,
	})
	if err != nil {
		log.Println("Unable to open SQLite database:", err)
		return nil, fmt.Errorf("failed to open database at %s: %w", path, err)
	}

	// Single-writer deployment; one connection keeps SQLite happy and makes
	// ":memory:" behave like a single database across the pool.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Init runs AutoMigrate for all models. Safe to call repeatedly and from
// concurrent goroutines; migration runs once.
func (s *Store) Init() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.initialized {
		return nil
	}
	if s.db == nil {
		return ErrNotInitialized
	}

	err := s.db.AutoMigrate(
		&model.User{},
		&model.Course{},
		&model.CourseProgress{},
		&model.ChatMessage{},
	)
	if err != nil {
		log.Println("Error running AutoMigrate:", err)
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	s.initialized = true
	return nil
}

// DB returns the GORM handle, failing when the store has not been
// initialized or was closed.
func (s *Store) DB() (*gorm.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.initialized || s.db == nil {
		return nil, ErrNotInitialized
	}
	return s.db, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	s.initialized = false
	s.db = nil
	return sqlDB.Close()
}

// HealthCheck verifies the database connection is alive
func (s *Store) HealthCheck() error {
	db, err := s.DB()
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

// GetStats counts courses and messages and reports the on-disk size
func (s *Store) GetStats(ctx context.Context) (*Stats, error) {
	db, err := s.DB()
	if err != nil {
		return nil, err
	}

	stats := &Stats{}
	if err := db.WithContext(ctx).Model(&model.Course{}).Count(&stats.TotalCourses).Error; err != nil {
		return nil, fmt.Errorf("failed to count courses: %w", err)
	}
	if err := db.WithContext(ctx).Model(&model.ChatMessage{}).Count(&stats.TotalMessages).Error; err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}

	var pageCount, pageSize int64
	if err := db.WithContext(ctx).Raw("PRAGMA page_count").Scan(&pageCount).Error; err == nil {
		if err := db.WithContext(ctx).Raw("PRAGMA page_size").Scan(&pageSize).Error; err == nil {
			stats.DatabaseSizeBytes = pageCount * pageSize
		}
	}

	return stats, nil
}

// Snapshot exports a consistent image of the database into the blob store
// under key. Used by the periodic backup job.
func (s *Store) Snapshot(ctx context.Context, blobs blob.Store, key string) error {
	db, err := s.DB()
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp("", "studydb-snapshot")
	if err != nil {
		return fmt.Errorf("failed to create snapshot directory: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	// VACUUM INTO refuses to overwrite, so the target must not exist yet.
	target := filepath.Join(tmpDir, "image.db")
	if err := db.WithContext(ctx).Exec("VACUUM INTO ?", target).Error; err != nil {
		return fmt.Errorf("failed to export database image: %w", err)
	}

	image, err := os.ReadFile(target)
	if err != nil {
		return fmt.Errorf("failed to read database image: %w", err)
	}

	if err := blobs.Put(key, image); err != nil {
		return fmt.Errorf("failed to store database image: %w", err)
	}

	log.Printf("Database snapshot saved (%d bytes)", len(image))
	return nil
}
