package cart

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
	"github.com/kayalabs/studiocart-backend/pkg/metrics"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

var (
	errMissingDevice    = errors.New("device id required")
	errMissingMirror    = errors.New("cart mirror required")
	errMissingDocuments = errors.New("documents repository required")
)

// SketchUploader stores an uploaded sketch and returns its hosted URL.
type SketchUploader interface {
	UploadObject(ctx context.Context, object, contentType string, body io.Reader) (string, error)
}

// CartView is the read model handed to renderers.
type CartView struct {
	Items types.CartSnapshot `json:"items"`
	Count int                `json:"count"`
	Total decimal.Decimal    `json:"total"`
}

// Service exposes the device-scoped cart session operations.
type Service interface {
	View(ctx context.Context, deviceID string) (*CartView, error)
	AddItem(ctx context.Context, deviceID string, input ItemInput) (*types.LineItem, error)
	RemoveItem(ctx context.Context, deviceID string, itemID int64) (*CartView, error)
	ClearCart(ctx context.Context, deviceID string) error
	AttachSketch(ctx context.Context, deviceID, fileName, contentType string, body io.Reader) (string, error)
	Checkout(ctx context.Context, deviceID, userID string) error
	Pull(ctx context.Context, deviceID, userID string) (*models.UserDocument, error)
	Subscribe(ctx context.Context, deviceID string, fn func(Change)) (func(), error)
}

type service struct {
	mu       sync.Mutex
	sessions map[string]*Store

	mirror   Mirror
	bridge   *Bridge
	uploader SketchUploader
	metrics  *metrics.CartMetrics
	logg     *logger.Logger
}

// NewService builds the cart service backed by the mirror, the persistence
// bridge and the sketch uploader. The uploader may be nil when sketch
// uploads are disabled.
func NewService(mirror Mirror, bridge *Bridge, uploader SketchUploader, cartMetrics *metrics.CartMetrics, logg *logger.Logger) (Service, error) {
	if mirror == nil {
		return nil, errMissingMirror
	}
	if bridge == nil {
		return nil, fmt.Errorf("persistence bridge required")
	}
	return &service{
		sessions: make(map[string]*Store),
		mirror:   mirror,
		bridge:   bridge,
		uploader: uploader,
		metrics:  cartMetrics,
		logg:     logg,
	}, nil
}

// session returns the store bound to the device, creating and re-hydrating
// it from the mirror on first touch.
func (s *service) session(ctx context.Context, deviceID string) (*Store, error) {
	if deviceID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "device id is required")
	}

	s.mu.Lock()
	store, ok := s.sessions[deviceID]
	s.mu.Unlock()
	if ok {
		return store, nil
	}

	store, err := NewStore(ctx, deviceID, s.mirror, s.logg)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if existing, ok := s.sessions[deviceID]; ok {
		store = existing
	} else {
		s.sessions[deviceID] = store
	}
	s.mu.Unlock()
	return store, nil
}

func (s *service) View(ctx context.Context, deviceID string) (*CartView, error) {
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return viewOf(store), nil
}

func (s *service) AddItem(ctx context.Context, deviceID string, input ItemInput) (*types.LineItem, error) {
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	item, err := store.Add(ctx, NormalizeItem(input))
	if err != nil {
		return nil, err
	}
	s.metrics.IncOperation("add_item")
	return &item, nil
}

func (s *service) RemoveItem(ctx context.Context, deviceID string, itemID int64) (*CartView, error) {
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return nil, err
	}

	if _, _, err := store.Remove(ctx, itemID); err != nil {
		return nil, err
	}
	s.metrics.IncOperation("remove_item")
	return viewOf(store), nil
}

func (s *service) ClearCart(ctx context.Context, deviceID string) error {
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return err
	}
	if err := store.Clear(ctx); err != nil {
		return err
	}
	s.metrics.IncOperation("clear")
	return nil
}

// AttachSketch uploads the sketch and attaches its hosted URL to the most
// recently added item. An upload failure never disturbs the cart.
func (s *service) AttachSketch(ctx context.Context, deviceID, fileName, contentType string, body io.Reader) (string, error) {
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return "", err
	}
	if s.uploader == nil {
		return "", pkgerrors.New(pkgerrors.CodeDependency, "sketch uploads are not configured")
	}
	if store.Count() == 0 {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "add an item before attaching a sketch")
	}

	object := fmt.Sprintf("sketches/%s/%s-%s", deviceID, uuid.NewString(), fileName)
	url, err := s.uploader.UploadObject(ctx, object, contentType, body)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "uploading sketch, please retry")
	}

	if _, err := store.AttachLastImageURL(ctx, url); err != nil {
		return "", err
	}
	s.metrics.IncOperation("attach_sketch")
	return url, nil
}

// Checkout pushes the device snapshot into the signed-in user's document.
func (s *service) Checkout(ctx context.Context, deviceID, userID string) error {
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return err
	}
	if err := s.bridge.Push(ctx, userID, store); err != nil {
		return err
	}
	s.metrics.IncOperation("checkout")
	return nil
}

// Pull fetches the user document, applying the termination wipe to the
// device session when tracking has been switched off remotely. Without a
// device ID the document is fetched on its own and no local wipe happens.
func (s *service) Pull(ctx context.Context, deviceID, userID string) (*models.UserDocument, error) {
	if deviceID == "" {
		return s.bridge.Pull(ctx, userID, nil)
	}
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return s.bridge.Pull(ctx, userID, store)
}

func (s *service) Subscribe(ctx context.Context, deviceID string, fn func(Change)) (func(), error) {
	store, err := s.session(ctx, deviceID)
	if err != nil {
		return nil, err
	}
	return store.Subscribe(fn), nil
}

func viewOf(store *Store) *CartView {
	snapshot, _ := store.Snapshot()
	if snapshot == nil {
		snapshot = types.CartSnapshot{}
	}
	return &CartView{
		Items: snapshot,
		Count: len(snapshot),
		Total: snapshot.Total(),
	}
}
