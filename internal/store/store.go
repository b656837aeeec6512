package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/smarthealth/internal/domain"
	"github.com/smarthealth/internal/metrics"
	"go.uber.org/zap"
)

// DefaultQuota is the per-slot size limit used when Options.Quota is zero.
const DefaultQuota = 5 << 20

// Options configures a Store.
type Options struct {
	// Quota is the largest encoded value a slot accepts. Negative disables the check.
	Quota int

	// Now supplies the clock for ids; defaults to time.Now.
	Now func() time.Time

	Logger  *zap.Logger
	Metrics *metrics.Metrics
}

// Store serialises read-modify-write cycles over the backend slots.
type Store struct {
	backend Backend
	quota   int
	now     func() time.Time
	metrics *metrics.Metrics
	logger  *zap.Logger

	mu     sync.Mutex
	lastID int64
}

// New creates a store over backend.
func New(backend Backend, opts Options) *Store {
	if opts.Quota == 0 {
		opts.Quota = DefaultQuota
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		backend: backend,
		quota:   opts.Quota,
		now:     opts.Now,
		metrics: opts.Metrics,
		logger:  opts.Logger.Named("store"),
	}
}

// Ping checks the backend.
func (s *Store) Ping(ctx context.Context) error {
	return s.backend.Ping(ctx)
}

// Close closes the backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// nextID returns a millisecond timestamp id, strictly greater than the previous one.
func (s *Store) nextID() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

// read decodes a slot into v. A missing slot leaves v untouched and
// reports false. A slot holding invalid JSON is treated as missing.
func (s *Store) read(ctx context.Context, slot string, v any) (bool, error) {
	data, ok, err := s.backend.Get(ctx, slot)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.logger.Warn("discarding unreadable slot", zap.String("slot", slot), zap.Error(err))
		return false, nil
	}
	return true, nil
}

func (s *Store) write(ctx context.Context, slot string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return domain.WrapError("encode_slot", err, domain.KindInternal)
	}
	if s.quota > 0 && len(data) > s.quota {
		return domain.WrapError("write_slot",
			fmt.Errorf("%w: %s needs %d bytes, quota is %d", domain.ErrQuotaExceeded, slot, len(data), s.quota),
			domain.KindStorage)
	}
	return s.backend.Set(ctx, slot, data)
}
