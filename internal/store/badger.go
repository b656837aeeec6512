package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/smarthealth/internal/domain"
)

const slotPrefix = "slot:"

// BadgerBackend stores slots as Badger keys.
type BadgerBackend struct {
	db *badger.DB
}

// OpenBadger opens a Badger database under dir/badger, or in memory when dir is empty.
func OpenBadger(dir string) (*BadgerBackend, error) {
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(filepath.Join(dir, "badger")).
			WithNumVersionsToKeep(1).
			WithCompactL0OnClose(true).
			WithValueLogFileSize(16 << 20).
			WithMemTableSize(16 << 20)
	}
	opts = opts.WithLogger(nil)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, domain.WrapError("open_badger", fmt.Errorf("failed to open badger: %w", err), domain.KindStorage)
	}
	return &BadgerBackend{db: db}, nil
}

// Get implements Backend.
func (b *BadgerBackend) Get(_ context.Context, slot string) ([]byte, bool, error) {
	var val []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(slotPrefix + slot))
		if err != nil {
			return err
		}
		return item.Value(func(v []byte) error {
			val = append([]byte{}, v...)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, domain.WrapError("badger_get", err, domain.KindStorage)
	}
	return val, true, nil
}

// Set implements Backend.
func (b *BadgerBackend) Set(_ context.Context, slot string, value []byte) error {
	err := b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(slotPrefix+slot), value)
	})
	if err != nil {
		return domain.WrapError("badger_set", err, domain.KindStorage)
	}
	return nil
}

// Ping implements Backend.
func (b *BadgerBackend) Ping(_ context.Context) error {
	if b.db.IsClosed() {
		return domain.WrapError("badger_ping", errors.New("database closed"), domain.KindStorage)
	}
	return nil
}

// Close implements Backend.
func (b *BadgerBackend) Close() error {
	return b.db.Close()
}
