package admin

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	"github.com/kayalabs/studiocart-backend/pkg/enums"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

type stubDocs struct {
	docs      map[string]*models.UserDocument
	tracked   []models.UserDocument
	fields    []map[string]any
	snapshots []types.CartSnapshot
	listErr   error
}

func newStubDocs() *stubDocs {
	return &stubDocs{docs: make(map[string]*models.UserDocument)}
}

func (s *stubDocs) Get(ctx context.Context, userID string) (*models.UserDocument, error) {
	doc, ok := s.docs[userID]
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user document not found")
	}
	return doc, nil
}

func (s *stubDocs) MergeFields(ctx context.Context, userID string, fields map[string]any) error {
	s.fields = append(s.fields, fields)
	doc, ok := s.docs[userID]
	if !ok {
		return nil
	}
	if v, ok := fields["design_progress"]; ok {
		doc.DesignProgress = v.(enums.DesignProgress)
	}
	if v, ok := fields["payment_status"]; ok {
		doc.PaymentStatus = v.(enums.PaymentStatus)
	}
	if v, ok := fields["design_duration"]; ok {
		doc.DesignDuration = v.(string)
	}
	if v, ok := fields["track_design_active"]; ok {
		doc.TrackDesignActive = v.(bool)
	}
	return nil
}

func (s *stubDocs) MergeCartSnapshot(ctx context.Context, userID string, cart types.CartSnapshot, version int64) (bool, error) {
	s.snapshots = append(s.snapshots, cart)
	if doc, ok := s.docs[userID]; ok {
		doc.Cart = cart
		doc.CartVersion = version
	}
	return true, nil
}

func (s *stubDocs) ListTracked(ctx context.Context) ([]models.UserDocument, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.tracked, nil
}

func newTestService(t *testing.T, docs documentsRepo) Service {
	t.Helper()
	svc, err := NewService(docs, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func trackedDoc(userID string, prices ...string) *models.UserDocument {
	cart := types.CartSnapshot{}
	for i, price := range prices {
		cart = append(cart, types.LineItem{
			ID:    int64(i + 1),
			Title: "Item",
			Price: decimal.RequireFromString(price),
		})
	}
	return &models.UserDocument{
		UserID:            userID,
		TrackDesignActive: true,
		Cart:              cart,
		DesignProgress:    enums.DesignProgressPending,
		PaymentStatus:     enums.PaymentStatusNotPaid,
		DesignDuration:    string(enums.DesignDurationPending),
	}
}

func TestListSessionsSummarizesCarts(t *testing.T) {
	docs := newStubDocs()
	docs.tracked = []models.UserDocument{
		*trackedDoc("user-1", "100", "250.5"),
		*trackedDoc("user-2", "900"),
	}
	svc := newTestService(t, docs)

	sessions, err := svc.ListSessions(context.Background())
	if err != nil {
		t.Fatalf("ListSessions: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("sessions = %d", len(sessions))
	}
	if sessions[0].ItemCount != 2 || !sessions[0].Total.Equal(decimal.RequireFromString("350.5")) {
		t.Fatalf("summary = %+v", sessions[0])
	}
}

func TestGetDesignRequestComputesTotal(t *testing.T) {
	docs := newStubDocs()
	docs.docs["user-1"] = trackedDoc("user-1", "450", "150")
	svc := newTestService(t, docs)

	request, err := svc.GetDesignRequest(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetDesignRequest: %v", err)
	}
	if !request.Total.Equal(decimal.NewFromInt(600)) {
		t.Fatalf("total = %s", request.Total)
	}

	if _, err := svc.GetDesignRequest(context.Background(), "ghost"); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestUpdateStatusValidatesOptions(t *testing.T) {
	docs := newStubDocs()
	docs.docs["user-1"] = trackedDoc("user-1", "100")
	svc := newTestService(t, docs)
	ctx := context.Background()

	progress := "Designing"
	duration := "Few Days"
	request, err := svc.UpdateStatus(ctx, "user-1", StatusUpdate{
		DesignProgress: &progress,
		DesignDuration: &duration,
	})
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if request.DesignProgress != enums.DesignProgressDesigning {
		t.Fatalf("progress = %s", request.DesignProgress)
	}
	if request.DesignDuration != "Few Days" {
		t.Fatalf("duration = %s", request.DesignDuration)
	}

	bad := "Shipped"
	if _, err := svc.UpdateStatus(ctx, "user-1", StatusUpdate{DesignProgress: &bad}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	badDuration := "Eventually"
	if _, err := svc.UpdateStatus(ctx, "user-1", StatusUpdate{DesignDuration: &badDuration}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}

	if _, err := svc.UpdateStatus(ctx, "user-1", StatusUpdate{}); pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty update, got %v", err)
	}
}

func TestUpdateStatusUnknownSession(t *testing.T) {
	svc := newTestService(t, newStubDocs())

	progress := "Designing"
	if _, err := svc.UpdateStatus(context.Background(), "ghost", StatusUpdate{DesignProgress: &progress}); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestEndSessionResetsDocument(t *testing.T) {
	docs := newStubDocs()
	docs.docs["user-1"] = trackedDoc("user-1", "450")
	docs.docs["user-1"].PaymentStatus = enums.PaymentStatusPaid
	svc := newTestService(t, docs)

	if err := svc.EndSession(context.Background(), "user-1"); err != nil {
		t.Fatalf("EndSession: %v", err)
	}

	if len(docs.snapshots) != 1 || len(docs.snapshots[0]) != 0 {
		t.Fatalf("expected empty cart merge, got %+v", docs.snapshots)
	}
	doc := docs.docs["user-1"]
	if doc.TrackDesignActive {
		t.Fatal("tracking still active")
	}
	if doc.DesignProgress != enums.DesignProgressPending || doc.PaymentStatus != enums.PaymentStatusNotPaid {
		t.Fatalf("status not reset: %+v", doc)
	}

	if err := svc.EndSession(context.Background(), "ghost"); pkgerrors.CodeOf(err) != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
