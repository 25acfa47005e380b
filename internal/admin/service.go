package admin

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	"github.com/kayalabs/studiocart-backend/pkg/enums"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/logger"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

type documentsRepo interface {
	Get(ctx context.Context, userID string) (*models.UserDocument, error)
	MergeFields(ctx context.Context, userID string, fields map[string]any) error
	MergeCartSnapshot(ctx context.Context, userID string, cart types.CartSnapshot, version int64) (bool, error)
	ListTracked(ctx context.Context) ([]models.UserDocument, error)
}

// SessionSummary is one row in the console's tracked-sessions list.
type SessionSummary struct {
	UserID         string               `json:"userId"`
	Email          string               `json:"email"`
	Username       string               `json:"username"`
	ItemCount      int                  `json:"itemCount"`
	Total          decimal.Decimal      `json:"total"`
	DesignProgress enums.DesignProgress `json:"designProgress"`
	PaymentStatus  enums.PaymentStatus  `json:"paymentStatus"`
	DesignDuration string               `json:"designDuration"`
	LastUpdated    time.Time            `json:"lastUpdated"`
}

// DesignRequest is the full view of one tracked session.
type DesignRequest struct {
	UserID         string               `json:"userId"`
	Email          string               `json:"email"`
	Username       string               `json:"username"`
	Cart           types.CartSnapshot   `json:"cart"`
	Total          decimal.Decimal      `json:"total"`
	DesignProgress enums.DesignProgress `json:"designProgress"`
	PaymentStatus  enums.PaymentStatus  `json:"paymentStatus"`
	DesignDuration string               `json:"designDuration"`
	PaymentMethod  *string              `json:"paymentMethod,omitempty"`
	LastUpdated    time.Time            `json:"lastUpdated"`
}

// StatusUpdate carries the console's optional status edits. Nil fields are
// left untouched.
type StatusUpdate struct {
	DesignProgress *string
	PaymentStatus  *string
	DesignDuration *string
}

// Service is the role-gated console surface for tracked design sessions.
type Service interface {
	ListSessions(ctx context.Context) ([]SessionSummary, error)
	GetDesignRequest(ctx context.Context, userID string) (*DesignRequest, error)
	UpdateStatus(ctx context.Context, userID string, update StatusUpdate) (*DesignRequest, error)
	EndSession(ctx context.Context, userID string) error
}

type service struct {
	docs documentsRepo
	logg *logger.Logger
}

// NewService builds the admin service on the documents store.
func NewService(docs documentsRepo, logg *logger.Logger) (Service, error) {
	if docs == nil {
		return nil, fmt.Errorf("documents repository required")
	}
	return &service{docs: docs, logg: logg}, nil
}

func (s *service) ListSessions(ctx context.Context) ([]SessionSummary, error) {
	docs, err := s.docs.ListTracked(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing tracked sessions")
	}

	summaries := make([]SessionSummary, 0, len(docs))
	for _, doc := range docs {
		summaries = append(summaries, SessionSummary{
			UserID:         doc.UserID,
			Email:          doc.Email,
			Username:       doc.Username,
			ItemCount:      len(doc.Cart),
			Total:          doc.Cart.Total(),
			DesignProgress: doc.DesignProgress,
			PaymentStatus:  doc.PaymentStatus,
			DesignDuration: doc.DesignDuration,
			LastUpdated:    doc.LastUpdated,
		})
	}
	return summaries, nil
}

func (s *service) GetDesignRequest(ctx context.Context, userID string) (*DesignRequest, error) {
	doc, err := s.docs.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	return requestOf(doc), nil
}

// UpdateStatus applies the console's status edits. Each supplied value is
// validated against its console options before anything is written.
func (s *service) UpdateStatus(ctx context.Context, userID string, update StatusUpdate) (*DesignRequest, error) {
	fields := make(map[string]any)

	if update.DesignProgress != nil {
		progress, err := enums.ParseDesignProgress(*update.DesignProgress)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["design_progress"] = progress
	}
	if update.PaymentStatus != nil {
		status, err := enums.ParsePaymentStatus(*update.PaymentStatus)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["payment_status"] = status
	}
	if update.DesignDuration != nil {
		duration, err := enums.ParseDesignDuration(*update.DesignDuration)
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
		}
		fields["design_duration"] = string(duration)
	}

	if len(fields) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no status fields supplied")
	}

	// Confirm the session exists before writing.
	if _, err := s.docs.Get(ctx, userID); err != nil {
		return nil, err
	}

	if err := s.docs.MergeFields(ctx, userID, fields); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "updating session status")
	}

	return s.GetDesignRequest(ctx, userID)
}

// EndSession flips tracking off, empties the saved cart and resets the
// status fields. The user's device cart is wiped on their next pull.
func (s *service) EndSession(ctx context.Context, userID string) error {
	if _, err := s.docs.Get(ctx, userID); err != nil {
		return err
	}

	if _, err := s.docs.MergeCartSnapshot(ctx, userID, types.CartSnapshot{}, time.Now().UnixMilli()); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "emptying saved cart")
	}

	fields := map[string]any{
		"track_design_active": false,
		"design_progress":     enums.DesignProgressPending,
		"payment_status":      enums.PaymentStatusNotPaid,
		"design_duration":     string(enums.DesignDurationPending),
		"payment_method":      nil,
	}
	if err := s.docs.MergeFields(ctx, userID, fields); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "ending session")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithUserID(ctx, userID), "design session ended by console")
	}
	return nil
}

func requestOf(doc *models.UserDocument) *DesignRequest {
	cart := doc.Cart.Clone()
	if cart == nil {
		cart = types.CartSnapshot{}
	}
	return &DesignRequest{
		UserID:         doc.UserID,
		Email:          doc.Email,
		Username:       doc.Username,
		Cart:           cart,
		Total:          cart.Total(),
		DesignProgress: doc.DesignProgress,
		PaymentStatus:  doc.PaymentStatus,
		DesignDuration: doc.DesignDuration,
		PaymentMethod:  doc.PaymentMethod,
		LastUpdated:    doc.LastUpdated,
	}
}
