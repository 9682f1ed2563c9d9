package kvstore

import (
	"context"
	"errors"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// KvEntry is the row layout of the postgres backend
type KvEntry struct {
	Key       string    `gorm:"primaryKey;size:64" json:"key"`
	Value     []byte    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (KvEntry) TableName() string {
	return "kv_entry"
}

// GormStore stores the snapshots in a relational table
type GormStore struct {
	notifier
	db      *gorm.DB
	timeout time.Duration
}

// OpenPostgres connects to dsn and migrates the kv_entry table
func OpenPostgres(dsn string, debug bool) (*GormStore, error) {
	level := logger.Silent
	if debug {
		level = logger.Info
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(level)})
	if err != nil {
		return nil, err
	}
	return NewGormStore(db)
}

// NewGormStore wraps an already opened gorm handle
func NewGormStore(db *gorm.DB) (*GormStore, error) {
	if err := db.AutoMigrate(&KvEntry{}); err != nil {
		return nil, err
	}
	return &GormStore{notifier: newNotifier(), db: db, timeout: 5 * time.Second}, nil
}

func (s *GormStore) Get(key string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	var entry KvEntry
	err := s.db.WithContext(ctx).Where("key = ?", key).First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return entry.Value, nil
}

func (s *GormStore) Set(key string, value []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	entry := KvEntry{Key: key, Value: value, UpdatedAt: time.Now()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return err
	}
	s.publish(key, value)
	return nil
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
