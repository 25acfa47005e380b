package cart

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"
	"github.com/kayalabs/studiocart-backend/pkg/enums"
	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
	"github.com/kayalabs/studiocart-backend/pkg/types"
)

type mergedSnapshot struct {
	cart    types.CartSnapshot
	version int64
}

type stubDocuments struct {
	doc          *models.UserDocument
	getErr       error
	mergeErr     error
	fieldsErr    error
	merged       []mergedSnapshot
	mergedFields []map[string]any
	highest      int64
}

func (s *stubDocuments) Get(ctx context.Context, userID string) (*models.UserDocument, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if s.doc == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user document not found")
	}
	return s.doc, nil
}

func (s *stubDocuments) MergeFields(ctx context.Context, userID string, fields map[string]any) error {
	if s.fieldsErr != nil {
		return s.fieldsErr
	}
	s.mergedFields = append(s.mergedFields, fields)
	return nil
}

func (s *stubDocuments) MergeCartSnapshot(ctx context.Context, userID string, cart types.CartSnapshot, version int64) (bool, error) {
	if s.mergeErr != nil {
		return false, s.mergeErr
	}
	s.merged = append(s.merged, mergedSnapshot{cart: cart, version: version})
	if version <= s.highest {
		return false, nil
	}
	s.highest = version
	return true, nil
}

func newTestBridge(t *testing.T, docs DocumentsRepository) *Bridge {
	t.Helper()
	bridge, err := NewBridge(docs, nil, nil)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	return bridge
}

func TestPushWritesSnapshotAndStatusFields(t *testing.T) {
	docs := &stubDocuments{}
	bridge := newTestBridge(t, docs)
	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	if _, err := store.Add(ctx, priceItem("Logo", "450")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if err := bridge.Push(ctx, "user-1", store); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if len(docs.merged) != 1 || len(docs.merged[0].cart) != 1 {
		t.Fatalf("expected one snapshot merge, got %+v", docs.merged)
	}
	if len(docs.mergedFields) != 1 {
		t.Fatalf("expected status field merge, got %d", len(docs.mergedFields))
	}
	fields := docs.mergedFields[0]
	if fields["track_design_active"] != true {
		t.Fatalf("track_design_active = %v", fields["track_design_active"])
	}
	if fields["design_progress"] != enums.DesignProgressPending {
		t.Fatalf("design_progress = %v", fields["design_progress"])
	}
	if fields["payment_status"] != enums.PaymentStatusNotPaid {
		t.Fatalf("payment_status = %v", fields["payment_status"])
	}
}

func TestPushRequiresSignedInUser(t *testing.T) {
	bridge := newTestBridge(t, &stubDocuments{})
	store := newTestStore(t, newStubMirror())

	err := bridge.Push(context.Background(), "", store)
	if err == nil {
		t.Fatal("expected unauthorized error")
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeUnauthorized {
		t.Fatalf("code = %s, want %s", pkgerrors.CodeOf(err), pkgerrors.CodeUnauthorized)
	}
}

func TestSequentialPushesLeaveNewestSnapshot(t *testing.T) {
	docs := &stubDocuments{}
	bridge := newTestBridge(t, docs)
	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	if _, err := store.Add(ctx, priceItem("A", "100")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := bridge.Push(ctx, "user-1", store); err != nil {
		t.Fatalf("push A: %v", err)
	}

	if _, err := store.Add(ctx, priceItem("B", "200")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := bridge.Push(ctx, "user-1", store); err != nil {
		t.Fatalf("push B: %v", err)
	}

	if len(docs.merged) != 2 {
		t.Fatalf("expected two merges, got %d", len(docs.merged))
	}
	last := docs.merged[len(docs.merged)-1]
	if len(last.cart) != 2 {
		t.Fatalf("newest snapshot should carry both items, got %d", len(last.cart))
	}
	if docs.merged[0].version >= last.version {
		t.Fatalf("versions must increase: %d then %d", docs.merged[0].version, last.version)
	}
}

func TestSupersededPushIsDiscardedSilently(t *testing.T) {
	docs := &stubDocuments{highest: 1 << 62}
	bridge := newTestBridge(t, docs)
	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	if _, err := store.Add(ctx, priceItem("Old", "100")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := bridge.Push(ctx, "user-1", store); err != nil {
		t.Fatalf("superseded push must not error: %v", err)
	}
	if len(docs.mergedFields) != 0 {
		t.Fatal("status fields must not be merged for a discarded push")
	}
}

func TestPushFailureLeavesLocalStateUnchanged(t *testing.T) {
	docs := &stubDocuments{mergeErr: errors.New("network down")}
	bridge := newTestBridge(t, docs)
	mirror := newStubMirror()
	store := newTestStore(t, mirror)
	ctx := context.Background()

	if _, err := store.Add(ctx, priceItem("Logo", "100")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	err := bridge.Push(ctx, "user-1", store)
	if err == nil {
		t.Fatal("expected push failure")
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeDependency {
		t.Fatalf("code = %s, want %s", pkgerrors.CodeOf(err), pkgerrors.CodeDependency)
	}
	if store.Count() != 1 {
		t.Fatalf("in-memory cart disturbed: count = %d", store.Count())
	}
	if len(mirror.snapshots["device-1"]) != 1 {
		t.Fatal("mirror disturbed by failed push")
	}
}

func TestPullTerminationWipesCartAndMirror(t *testing.T) {
	docs := &stubDocuments{doc: &models.UserDocument{
		UserID:            "user-1",
		TrackDesignActive: false,
	}}
	bridge := newTestBridge(t, docs)
	mirror := newStubMirror()
	store := newTestStore(t, mirror)
	ctx := context.Background()

	if _, err := store.Add(ctx, priceItem("Logo", "100")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	doc, err := bridge.Pull(ctx, "user-1", store)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if doc == nil {
		t.Fatal("expected document")
	}
	if store.Count() != 0 {
		t.Fatalf("in-memory cart not wiped: count = %d", store.Count())
	}
	if _, ok := mirror.snapshots["device-1"]; ok {
		t.Fatal("mirror not wiped on termination")
	}
}

func TestPullActiveSessionLeavesCartAlone(t *testing.T) {
	docs := &stubDocuments{doc: &models.UserDocument{
		UserID:            "user-1",
		TrackDesignActive: true,
		DesignProgress:    enums.DesignProgressDesigning,
	}}
	bridge := newTestBridge(t, docs)
	store := newTestStore(t, newStubMirror())
	ctx := context.Background()

	if _, err := store.Add(ctx, priceItem("Logo", "100")); err != nil {
		t.Fatalf("Add: %v", err)
	}

	doc, err := bridge.Pull(ctx, "user-1", store)
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if doc.DesignProgress != enums.DesignProgressDesigning {
		t.Fatalf("progress = %s", doc.DesignProgress)
	}
	if store.Count() != 1 {
		t.Fatalf("active session must not wipe the cart, count = %d", store.Count())
	}
}

func TestPushAppliesAfterWallClockStampedRemoteClear(t *testing.T) {
	docs := &stubDocuments{highest: 5_000}
	bridge := newTestBridge(t, docs)
	store := newTestStore(t, newStubMirror())
	store.version = 1_000
	store.now = func() time.Time { return time.UnixMilli(6_000) }

	ctx := context.Background()
	if _, err := store.Add(ctx, priceItem("Logo", "200")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := bridge.Push(ctx, "user-1", store); err != nil {
		t.Fatalf("Push: %v", err)
	}

	if docs.highest != 6_000 {
		t.Fatalf("highest = %d, want the push applied at 6000", docs.highest)
	}
	if len(docs.merged) != 1 || len(docs.merged[0].cart) != 1 {
		t.Fatalf("merged = %+v", docs.merged)
	}
	if len(docs.mergedFields) != 1 {
		t.Fatalf("status fields not merged after applied push: %d", len(docs.mergedFields))
	}
	if docs.mergedFields[0]["track_design_active"] != true {
		t.Fatalf("fields = %+v", docs.mergedFields[0])
	}
}
