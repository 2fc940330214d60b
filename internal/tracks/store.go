// ABOUTME: Track registry for finished recordings
// ABOUTME: Persists recording metadata in SQLite through gorm
package tracks

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/oply/opusrec/internal/logging"
	"github.com/oply/opusrec/pkg/audio/decode"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Track is one finished recording
type Track struct {
	ID         string `gorm:"primaryKey;size:36"`
	Path       string `gorm:"uniqueIndex;not null"`
	Name       string `gorm:"not null"`
	SizeBytes  int64
	DurationMs int64
	CreatedAt  time.Time `gorm:"index"`
}

// Duration returns the recorded length
func (t Track) Duration() time.Duration {
	return time.Duration(t.DurationMs) * time.Millisecond
}

// Store is a gorm-backed track registry
type Store struct {
	db     *gorm.DB
	logger *zap.Logger
	now    func() time.Time
}

// Open opens or creates the track database at dsn; ":memory:" works for tests
func Open(dsn string, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("tracks")

	if dsn != ":memory:" {
		if dir := filepath.Dir(dsn); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logging.NewGormLogger(logger, 200*time.Millisecond),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open track database: %w", err)
	}

	if dsn == ":memory:" {
		// every pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("failed to access track database: %w", err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&Track{}); err != nil {
		return nil, fmt.Errorf("failed to migrate track database: %w", err)
	}

	return &Store{db: db, logger: logger, now: time.Now}, nil
}

// RegisterCompleted records a finished file. Registering the same path again
// refreshes its size and duration.
func (s *Store) RegisterCompleted(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	stat, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("failed to stat recording: %w", err)
	}

	track := Track{
		Path:      abs,
		Name:      filepath.Base(abs),
		SizeBytes: stat.Size(),
		CreatedAt: s.now(),
	}

	if info, err := decode.ProbeFile(abs); err != nil {
		s.logger.Warn("Could not read recording duration", zap.String("path", abs), zap.Error(err))
	} else {
		track.DurationMs = info.Duration.Milliseconds()
	}

	var existing Track
	err = s.db.Where("path = ?", abs).First(&existing).Error
	switch {
	case err == nil:
		track.ID = existing.ID
		err = s.db.Save(&track).Error
	case errors.Is(err, gorm.ErrRecordNotFound):
		track.ID = uuid.NewString()
		err = s.db.Create(&track).Error
	}
	if err != nil {
		return fmt.Errorf("failed to register track: %w", err)
	}

	s.logger.Info("Track registered",
		zap.String("id", track.ID),
		zap.String("name", track.Name),
		zap.Int64("size", track.SizeBytes),
		zap.Duration("duration", track.Duration()))
	return nil
}

// List returns all tracks, newest first
func (s *Store) List() ([]Track, error) {
	var tracks []Track
	if err := s.db.Order("created_at DESC").Find(&tracks).Error; err != nil {
		return nil, fmt.Errorf("failed to list tracks: %w", err)
	}
	return tracks, nil
}

// Get returns the track with id
func (s *Store) Get(id string) (*Track, error) {
	var track Track
	if err := s.db.First(&track, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("track %s: %w", id, err)
	}
	return &track, nil
}

// Close closes the database
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
