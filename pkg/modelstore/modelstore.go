package modelstore

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"go.uber.org/zap"
)

// Store LevelDB-backed key/value store for trained forecasting models.
// Values are JSON documents.
type Store struct {
	db     *leveldb.DB
	logger *zap.Logger
}

// Open opens (or creates) the store at path
func Open(path string, logger *zap.Logger) (*Store, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("open model store %s: %w", path, err)
	}
	logger.Info("model store opened", zap.String("path", path))
	return &Store{db: db, logger: logger}, nil
}

// Put stores v as JSON under key
func (s *Store) Put(key string, v interface{}) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.db.Put([]byte(key), b, nil)
}

// Get decodes the value under key into dest. Returns false when absent.
func (s *Store) Get(key string, dest interface{}) (bool, error) {
	b, err := s.db.Get([]byte(key), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Delete removes key; missing keys are not an error
func (s *Store) Delete(key string) error {
	return s.db.Delete([]byte(key), nil)
}

// Close closes the store
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.logger.Info("model store closed")
	return s.db.Close()
}
