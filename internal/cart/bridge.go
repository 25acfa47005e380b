package cart

import (
	"context"
	"time"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	"github.com/kayalabs/studiocart-backend/pkg/enums"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
	"github.com/kayalabs/studiocart-backend/pkg/metrics"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

// DocumentsRepository is the slice of the documents store the bridge needs.
type DocumentsRepository interface {
	Get(ctx context.Context, userID string) (*models.UserDocument, error)
	MergeFields(ctx context.Context, userID string, fields map[string]any) error
	MergeCartSnapshot(ctx context.Context, userID string, cart types.CartSnapshot, version int64) (bool, error)
}

// Bridge moves cart snapshots between a device session and the per-user
// document. Pushes happen only on explicit user action, pulls feed the
// profile dashboard and carry the termination side effect.
type Bridge struct {
	docs    DocumentsRepository
	metrics *metrics.CartMetrics
	logg    *logger.Logger
}

// NewBridge constructs the persistence bridge.
func NewBridge(docs DocumentsRepository, cartMetrics *metrics.CartMetrics, logg *logger.Logger) (*Bridge, error) {
	if docs == nil {
		return nil, errMissingDocuments
	}
	return &Bridge{docs: docs, metrics: cartMetrics, logg: logg}, nil
}

// Push writes the store's current snapshot into the user document together
// with the checkout status fields. The snapshot version guards against a
// slower, older push landing after a newer one; a superseded push is dropped
// by the repository and logged, never surfaced as an error.
func (b *Bridge) Push(ctx context.Context, userID string, store *Store) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to save your cart")
	}

	snapshot, version := store.Snapshot()

	start := time.Now()
	applied, err := b.docs.MergeCartSnapshot(ctx, userID, snapshot, version)
	b.metrics.ObserveSync("push", time.Since(start))
	if err != nil {
		b.metrics.IncSyncFailure("push")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving cart, please retry")
	}
	if !applied {
		if b.logg != nil {
			b.logg.Warn(ctx, "cart push superseded by a newer snapshot, discarded")
		}
		return nil
	}

	fields := map[string]any{
		"track_design_active": true,
		"design_progress":     enums.DesignProgressPending,
		"payment_status":      enums.PaymentStatusNotPaid,
		"design_duration":     string(enums.DesignDurationPending),
	}
	if err := b.docs.MergeFields(ctx, userID, fields); err != nil {
		b.metrics.IncSyncFailure("push")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving order status, please retry")
	}
	return nil
}

// Pull fetches the user document. When the document reports the design
// session is no longer tracked, the device cart and its mirror are wiped as
// a side effect, modeling server-initiated session termination. A missing
// document means nothing was ever saved and returns NotFound untouched.
func (b *Bridge) Pull(ctx context.Context, userID string, store *Store) (*models.UserDocument, error) {
	if userID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to view your orders")
	}

	start := time.Now()
	doc, err := b.docs.Get(ctx, userID)
	b.metrics.ObserveSync("pull", time.Since(start))
	if err != nil {
		if pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
			b.metrics.IncSyncFailure("pull")
		}
		return nil, err
	}

	if !doc.TrackDesignActive && store != nil {
		if err := store.Clear(ctx); err != nil {
			return nil, err
		}
		if b.logg != nil {
			b.logg.Info(ctx, "design session ended remotely, local cart wiped")
		}
	}

	return doc, nil
}
