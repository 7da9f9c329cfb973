package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/imamik/inception/internal/provisioning"
)

// ErrNotFound is returned when no record exists for a prefix.
var ErrNotFound = errors.New("cluster record not found")

// Store is a gorm-backed cluster record store.
type Store struct {
	db *gorm.DB
}

var _ provisioning.StatusRecorder = (*Store)(nil)

// Open opens (creating if needed) the sqlite database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	return New(sqlite.Open(path))
}

// New opens a store on an arbitrary gorm dialector.
func New(dialector gorm.Dialector) (*Store, error) {
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	if err := s.db.AutoMigrate(&ClusterRecord{}); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	return nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Save upserts the record for the cluster's prefix.
func (s *Store) Save(ctx context.Context, c *provisioning.Cluster) error {
	if c == nil || c.Prefix == "" {
		return fmt.Errorf("cluster with a prefix is required")
	}
	rec := newRecord(c)
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "prefix"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"id", "num_workers", "num_controllers", "repo_url", "repo_branch",
			"environment", "status", "state", "floating_ip", "gateway_id",
			"config_server_id", "config_server_ip", "worker_ids", "nodes", "updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return fmt.Errorf("saving cluster %s: %w", c.Prefix, err)
	}
	return nil
}

// Remove deletes the record for prefix. Removing a missing record is not an error.
func (s *Store) Remove(ctx context.Context, prefix string) error {
	if err := s.db.WithContext(ctx).Delete(&ClusterRecord{}, "prefix = ?", prefix).Error; err != nil {
		return fmt.Errorf("deleting cluster %s: %w", prefix, err)
	}
	return nil
}

// Get returns the record for prefix.
func (s *Store) Get(ctx context.Context, prefix string) (*ClusterRecord, error) {
	var rec ClusterRecord
	err := s.db.WithContext(ctx).Where("prefix = ?", prefix).First(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, prefix)
	}
	if err != nil {
		return nil, fmt.Errorf("querying cluster %s: %w", prefix, err)
	}
	return &rec, nil
}

// List returns every record ordered by prefix.
func (s *Store) List(ctx context.Context) ([]*ClusterRecord, error) {
	var recs []*ClusterRecord
	if err := s.db.WithContext(ctx).Order("prefix").Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("querying clusters: %w", err)
	}
	return recs, nil
}
