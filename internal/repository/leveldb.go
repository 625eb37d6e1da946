package repository

import (
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/nevaan9/pho_bot/internal/models"
	"github.com/syndtr/goleveldb/leveldb"
	leveldberrors "github.com/syndtr/goleveldb/leveldb/errors"
	"go.uber.org/zap"
)

// LevelDBRepository keeps tallies as JSON documents in a local leveldb database.
// It is meant for a single bot process: set updates are serialized in-process.
type LevelDBRepository struct {
	Name     string
	database *leveldb.DB
	mu       sync.Mutex
	l        *zap.Logger
}

// NewLevelDB opens (or creates) the leveldb database name under storagePath. A leading
// '~' in storagePath is expanded to the home directory.
func NewLevelDB(name string, storagePath string, l *zap.Logger) (*LevelDBRepository, error) {
	path, err := homedir.Expand(storagePath)
	if err != nil {
		return nil, err
	}

	fullPath := filepath.Join(path, name)
	db, err := leveldb.OpenFile(fullPath, nil)

	var corrupted *leveldberrors.ErrCorrupted
	if errors.As(err, &corrupted) {
		return nil, fmt.Errorf("repository: leveldb corrupted, consider deleting [%s] and restarting if you don't mind losing data: %w", fullPath, err)
	} else if err != nil {
		return nil, fmt.Errorf("repository: failed to open file with path [%s]: %w", fullPath, err)
	}

	return &LevelDBRepository{Name: name, database: db, l: l}, nil
}

func (r *LevelDBRepository) Create(tally *models.Tally) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.l.Debug("creating tally", zap.Any("tally", tally))
	return r.put(tally)
}

func (r *LevelDBRepository) Get(messageID string) (*models.Tally, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.get(messageID)
}

func (r *LevelDBRepository) AddToSet(messageID string, status models.Status, users ...string) (*models.Tally, error) {
	return r.updateSet(messageID, status, func(set []string) []string { return union(set, users) })
}

func (r *LevelDBRepository) RemoveFromSet(messageID string, status models.Status, users ...string) (*models.Tally, error) {
	return r.updateSet(messageID, status, func(set []string) []string { return difference(set, users) })
}

func (r *LevelDBRepository) updateSet(messageID string, status models.Status, op func([]string) []string) (*models.Tally, error) {
	if status.SetName() == "" {
		return nil, models.ErrUnknownStatus
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	tally, err := r.get(messageID)
	if err != nil {
		return nil, err
	}
	tally.SetFor(status, op(tally.Set(status)))
	r.l.Debug("updating tally set",
		zap.String("message_id", messageID),
		zap.String("set", status.SetName()),
		zap.Strings("values", tally.Set(status)))
	if err = r.put(tally); err != nil {
		return nil, err
	}
	return tally, nil
}

func (r *LevelDBRepository) Purge(now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	batch := new(leveldb.Batch)
	iter := r.database.NewIterator(nil, nil)
	for iter.Next() {
		var tally models.Tally
		if err := json.Unmarshal(iter.Value(), &tally); err != nil {
			r.l.Debug("skipping unreadable tally", zap.ByteString("key", iter.Key()), zap.Error(err))
			continue
		}
		if tally.Expired(now) {
			batch.Delete(append([]byte{}, iter.Key()...))
		}
	}
	iter.Release()
	if err := iter.Error(); err != nil {
		return 0, fmt.Errorf("repository: leveldb scan error: %w", err)
	}

	if err := r.database.Write(batch, nil); err != nil {
		return 0, fmt.Errorf("repository: leveldb delete error: %w", err)
	}
	return batch.Len(), nil
}

func (r *LevelDBRepository) Close() error {
	return r.database.Close()
}

func (r *LevelDBRepository) get(messageID string) (*models.Tally, error) {
	data, err := r.database.Get([]byte(messageID), nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return nil, fmt.Errorf("repository: tally %s: %w", messageID, models.ErrTallyNotFound)
	} else if err != nil {
		return nil, fmt.Errorf("repository: leveldb get error: %w", err)
	}

	tally := &models.Tally{}
	if err = json.Unmarshal(data, tally); err != nil {
		r.l.Debug("failed to unmarshal tally", zap.ByteString("data", data), zap.Error(err))
		return nil, fmt.Errorf("repository: failed to unmarshal tally: %w", models.ErrFailedToProcessData)
	}
	return tally, nil
}

func (r *LevelDBRepository) put(tally *models.Tally) error {
	stored := *tally
	stored.Going = nonNil(tally.Going)
	stored.Declined = nonNil(tally.Declined)
	stored.Maybe = nonNil(tally.Maybe)

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("repository: json marshal error: %w", err)
	}
	if err = r.database.Put([]byte(tally.MessageID), data, nil); err != nil {
		return fmt.Errorf("repository: leveldb put error: %w", err)
	}
	return nil
}
