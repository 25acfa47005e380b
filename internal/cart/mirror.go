package cart

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	pkgredis "github.com/kayalabs/studiocart-backend/pkg/redis"

	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

// mirrorStore is the slice of the Redis client the mirror uses.
type mirrorStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
	CartMirrorKey(deviceID string) string
	CartCounterKey(deviceID string) string
}

// RedisMirror persists per-device cart snapshots in Redis. One key holds the
// JSON snapshot, a sibling key the derived item counter.
type RedisMirror struct {
	rdb  mirrorStore
	ttl  time.Duration
	logg *logger.Logger
}

// NewRedisMirror builds a mirror on the shared Redis client.
func NewRedisMirror(rdb mirrorStore, ttl time.Duration, logg *logger.Logger) (*RedisMirror, error) {
	if rdb == nil {
		return nil, errors.New("redis client required")
	}
	if ttl < 0 {
		ttl = 0
	}
	return &RedisMirror{rdb: rdb, ttl: ttl, logg: logg}, nil
}

// Load reads the device snapshot. A missing key or malformed payload is
// treated as an empty cart, never an error.
func (m *RedisMirror) Load(ctx context.Context, deviceID string) (types.CartSnapshot, error) {
	raw, err := m.rdb.Get(ctx, m.rdb.CartMirrorKey(deviceID))
	if errors.Is(err, pkgredis.Nil) {
		return types.CartSnapshot{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart mirror")
	}

	var snapshot types.CartSnapshot
	if err := json.Unmarshal([]byte(raw), &snapshot); err != nil {
		if m.logg != nil {
			m.logg.Warn(ctx, "cart mirror payload malformed, treating as empty")
		}
		return types.CartSnapshot{}, nil
	}
	return snapshot, nil
}

// Save overwrites the device snapshot wholesale and refreshes the counter.
func (m *RedisMirror) Save(ctx context.Context, deviceID string, snapshot types.CartSnapshot) error {
	if snapshot == nil {
		snapshot = types.CartSnapshot{}
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding cart mirror")
	}
	if err := m.rdb.Set(ctx, m.rdb.CartMirrorKey(deviceID), payload, m.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing cart mirror")
	}
	if err := m.rdb.Set(ctx, m.rdb.CartCounterKey(deviceID), strconv.Itoa(len(snapshot)), m.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "writing cart counter")
	}
	return nil
}

// Clear drops both the snapshot and the counter for the device.
func (m *RedisMirror) Clear(ctx context.Context, deviceID string) error {
	err := m.rdb.Del(ctx, m.rdb.CartMirrorKey(deviceID), m.rdb.CartCounterKey(deviceID))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart mirror")
	}
	return nil
}

// Counter reads the derived counter for a device, defaulting to zero when
// absent or malformed.
func (m *RedisMirror) Counter(ctx context.Context, deviceID string) (int, error) {
	raw, err := m.rdb.Get(ctx, m.rdb.CartCounterKey(deviceID))
	if errors.Is(err, pkgredis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reading cart counter")
	}
	count, convErr := strconv.Atoi(raw)
	if convErr != nil || count < 0 {
		return 0, nil
	}
	return count, nil
}
