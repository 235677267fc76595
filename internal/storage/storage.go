// Package storage records status history.
package storage

import (
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/wigowatch/wigowatch/internal/config"
	"github.com/wigowatch/wigowatch/internal/types"
)

// Storage is the interface for all history backends.
type Storage interface {
	// Store persists a batch of samples.
	Store(samples []*types.Sample) error

	// Close flushes pending writes and releases resources.
	Close() error

	// Name returns the storage backend identifier.
	Name() string
}

// NopStorage discards everything.
type NopStorage struct{}

func (NopStorage) Store([]*types.Sample) error { return nil }
func (NopStorage) Close() error                { return nil }
func (NopStorage) Name() string                { return "none" }

// NewStorage builds the backends listed in cfg.Types. No types, or only
// "none", yields a NopStorage; several yield a MultiStorage.
func NewStorage(cfg config.StorageConfig, logger *slog.Logger) (Storage, error) {
	var backends []Storage
	closeAll := func() {
		for _, b := range backends {
			b.Close()
		}
	}

	for _, t := range cfg.Types {
		var (
			b   Storage
			err error
		)
		switch t {
		case "", "none":
			continue
		case "jsonl":
			b, err = NewJSONLStorage(filepath.Join(cfg.OutputPath, "history.jsonl"), logger)
		case "csv":
			b, err = NewCSVStorage(filepath.Join(cfg.OutputPath, "history.csv"), logger)
		case "mongodb":
			b, err = NewMongoStorage(cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection, logger)
		default:
			err = fmt.Errorf("unsupported storage type: %s", t)
		}
		if err != nil {
			closeAll()
			return nil, &types.StorageError{Backend: t, Err: err}
		}
		backends = append(backends, b)
	}

	switch len(backends) {
	case 0:
		return NopStorage{}, nil
	case 1:
		return backends[0], nil
	default:
		return NewMultiStorage(backends, logger), nil
	}
}
