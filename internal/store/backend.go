// Package store keeps the user's analysis history, reminders, profile and
// insights in four named slots of a key-value backend. Each slot holds one
// JSON document, mirroring the browser storage the data originally lived in.
package store

import (
	"context"
	"fmt"

	"github.com/smarthealth/internal/config"
	"github.com/smarthealth/internal/domain"
)

// Slot names.
const (
	SlotAnalyses  = "smarthealth_analyses"
	SlotReminders = "smarthealth_reminders"
	SlotProfile   = "smarthealth_user_profile"
	SlotInsights  = "smarthealth_insights"
)

// Backend persists raw slot values.
type Backend interface {
	// Get returns the slot value and whether the slot exists.
	Get(ctx context.Context, slot string) ([]byte, bool, error)

	// Set replaces the slot value.
	Set(ctx context.Context, slot string, value []byte) error

	// Ping checks that the backend is usable.
	Ping(ctx context.Context) error

	// Close releases the backend.
	Close() error
}

// OpenBackend opens the backend selected by cfg.Driver. An empty DataDir
// opens an in-memory backend.
func OpenBackend(cfg *config.StoreConfig) (Backend, error) {
	switch cfg.Driver {
	case config.StoreDriverBadger, "":
		return OpenBadger(cfg.DataDir)
	case config.StoreDriverSQLite:
		return OpenSQLite(cfg.DataDir)
	default:
		return nil, fmt.Errorf("%w: unknown store driver %q", domain.ErrInvalidConfig, cfg.Driver)
	}
}
