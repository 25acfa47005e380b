package profile

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	"github.com/kayalabs/studiocart-backend/pkg/enums"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

const maxPaymentMethodLen = 64

type cartSessions interface {
	Pull(ctx context.Context, deviceID, userID string) (*models.UserDocument, error)
	ClearCart(ctx context.Context, deviceID string) error
}

type documentsRepo interface {
	MergeFields(ctx context.Context, userID string, fields map[string]any) error
	MergeCartSnapshot(ctx context.Context, userID string, cart types.CartSnapshot, version int64) (bool, error)
}

// Dashboard is the read-only projection of the user document the profile
// page renders.
type Dashboard struct {
	Cart              types.CartSnapshot   `json:"cart"`
	Total             decimal.Decimal      `json:"total"`
	TrackDesignActive bool                 `json:"trackDesignActive"`
	DesignProgress    enums.DesignProgress `json:"designProgress"`
	ProgressOrdinal   int                  `json:"progressOrdinal"`
	ProgressPercent   int                  `json:"progressPercent"`
	PaymentStatus     enums.PaymentStatus  `json:"paymentStatus"`
	DesignDuration    string               `json:"designDuration"`
	PaymentMethod     *string              `json:"paymentMethod,omitempty"`
	LastUpdated       time.Time            `json:"lastUpdated"`
}

// Service exposes the profile dashboard and its two write actions.
type Service interface {
	Dashboard(ctx context.Context, deviceID, userID string) (*Dashboard, error)
	ChoosePaymentMethod(ctx context.Context, userID, method string) error
	ClearRemote(ctx context.Context, deviceID, userID string) error
}

type service struct {
	sessions cartSessions
	docs     documentsRepo
	logg     *logger.Logger
}

// NewService builds the profile service on the cart sessions and the
// documents store.
func NewService(sessions cartSessions, docs documentsRepo, logg *logger.Logger) (Service, error) {
	if sessions == nil {
		return nil, fmt.Errorf("cart sessions required")
	}
	if docs == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	return &service{sessions: sessions, docs: docs, logg: logg}, nil
}

// Dashboard pulls the user document and projects it for rendering. The pull
// carries the remote-termination side effect: a document with tracking
// switched off wipes the device cart before the projection is built.
func (s *service) Dashboard(ctx context.Context, deviceID, userID string) (*Dashboard, error) {
	doc, err := s.sessions.Pull(ctx, deviceID, userID)
	if err != nil {
		if pkgerrors.CodeOf(err) == pkgerrors.CodeNotFound {
			return emptyDashboard(), nil
		}
		return nil, err
	}
	return projectDocument(doc), nil
}

// ChoosePaymentMethod records the user's payment choice on the document.
// Only the method string is stored; no payment is processed.
func (s *service) ChoosePaymentMethod(ctx context.Context, userID, method string) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to choose a payment method")
	}
	method = strings.TrimSpace(method)
	if method == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is required")
	}
	if len(method) > maxPaymentMethodLen {
		return pkgerrors.New(pkgerrors.CodeValidation, "payment method is too long")
	}

	err := s.docs.MergeFields(ctx, userID, map[string]any{"payment_method": method})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "saving payment method, please retry")
	}
	return nil
}

// ClearRemote empties the saved cart, ends tracking and forgets the payment
// choice, then wipes the device session.
func (s *service) ClearRemote(ctx context.Context, deviceID, userID string) error {
	if userID == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to clear your saved cart")
	}

	if _, err := s.docs.MergeCartSnapshot(ctx, userID, types.CartSnapshot{}, time.Now().UnixMilli()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing saved cart, please retry")
	}

	fields := map[string]any{
		"track_design_active": false,
		"payment_method":      nil,
		"design_progress":     enums.DesignProgressPending,
		"payment_status":      enums.PaymentStatusNotPaid,
		"design_duration":     string(enums.DesignDurationPending),
	}
	if err := s.docs.MergeFields(ctx, userID, fields); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing saved cart, please retry")
	}

	if deviceID != "" {
		if err := s.sessions.ClearCart(ctx, deviceID); err != nil {
			return err
		}
	}
	return nil
}

func emptyDashboard() *Dashboard {
	return &Dashboard{
		Cart:            types.CartSnapshot{},
		Total:           decimal.Zero,
		DesignProgress:  enums.DesignProgressPending,
		ProgressOrdinal: 0,
		ProgressPercent: enums.DesignProgressPending.ProgressPercent(),
		PaymentStatus:   enums.PaymentStatusNotPaid,
		DesignDuration:  string(enums.DesignDurationPending),
	}
}

func projectDocument(doc *models.UserDocument) *Dashboard {
	cart := doc.Cart.Clone()
	if cart == nil {
		cart = types.CartSnapshot{}
	}

	progress := doc.DesignProgress
	if !progress.IsValid() {
		progress = enums.DesignProgressPending
	}

	status := doc.PaymentStatus
	if !status.IsValid() {
		status = enums.PaymentStatusNotPaid
	}

	duration := doc.DesignDuration
	if duration == "" {
		duration = string(enums.DesignDurationPending)
	}

	return &Dashboard{
		Cart:              cart,
		Total:             cart.Total(),
		TrackDesignActive: doc.TrackDesignActive,
		DesignProgress:    progress,
		ProgressOrdinal:   progress.Ordinal(),
		ProgressPercent:   progress.ProgressPercent(),
		PaymentStatus:     status,
		DesignDuration:    duration,
		PaymentMethod:     doc.PaymentMethod,
		LastUpdated:       doc.LastUpdated,
	}
}
