package cart

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/kayalabs/studiocart-backend/pkg/db/models"

	pkgerrors "github.com/kayalabs/studiocart-backend/pkg/errors"
)

type stubUploader struct {
	url     string
	err     error
	objects []string
}

func (u *stubUploader) UploadObject(ctx context.Context, object, contentType string, body io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	u.objects = append(u.objects, object)
	return u.url, nil
}

func newTestService(t *testing.T, mirror Mirror, docs DocumentsRepository, uploader SketchUploader) Service {
	t.Helper()
	bridge, err := NewBridge(docs, nil, nil)
	if err != nil {
		t.Fatalf("NewBridge: %v", err)
	}
	svc, err := NewService(mirror, bridge, uploader, nil, nil)
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

func TestServiceAddItemNormalizesAndAssignsID(t *testing.T) {
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, nil)
	ctx := context.Background()

	item, err := svc.AddItem(ctx, "device-1", ItemInput{Title: "Logo", Price: NewPriceValue("R450")})
	if err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if item.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if !item.Price.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("price = %s", item.Price)
	}

	view, err := svc.View(ctx, "device-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Count != 1 || !view.Total.Equal(decimal.NewFromInt(450)) {
		t.Fatalf("view = %+v", view)
	}
}

func TestServiceRequiresDeviceID(t *testing.T) {
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, nil)

	_, err := svc.View(context.Background(), "")
	if err == nil {
		t.Fatal("expected validation error")
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeValidation {
		t.Fatalf("code = %s", pkgerrors.CodeOf(err))
	}
}

func TestServiceSessionsAreDeviceScoped(t *testing.T) {
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, nil)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "device-a", ItemInput{Title: "Logo", Price: NewPriceValue("100")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	view, err := svc.View(ctx, "device-b")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Count != 0 {
		t.Fatalf("device-b should be empty, count = %d", view.Count)
	}
}

func TestServiceAttachSketchUploadsThenAttaches(t *testing.T) {
	uploader := &stubUploader{url: "https://storage.googleapis.com/bucket/sketch.png"}
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, uploader)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "device-1", ItemInput{Title: "Logo"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	url, err := svc.AttachSketch(ctx, "device-1", "sketch.png", "image/png", strings.NewReader("png"))
	if err != nil {
		t.Fatalf("AttachSketch: %v", err)
	}
	if url != uploader.url {
		t.Fatalf("url = %s", url)
	}
	if len(uploader.objects) != 1 || !strings.HasPrefix(uploader.objects[0], "sketches/device-1/") {
		t.Fatalf("objects = %v", uploader.objects)
	}

	view, err := svc.View(ctx, "device-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Items[0].ImageURL != uploader.url {
		t.Fatalf("image url not attached: %+v", view.Items[0])
	}
}

func TestServiceAttachSketchOnEmptyCartRejected(t *testing.T) {
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, &stubUploader{url: "u"})

	_, err := svc.AttachSketch(context.Background(), "device-1", "sketch.png", "image/png", strings.NewReader("png"))
	if err == nil {
		t.Fatal("expected state conflict")
	}
	if pkgerrors.CodeOf(err) != pkgerrors.CodeStateConflict {
		t.Fatalf("code = %s", pkgerrors.CodeOf(err))
	}
}

func TestServiceAttachSketchUploadFailureKeepsCart(t *testing.T) {
	uploader := &stubUploader{err: errors.New("bucket unavailable")}
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, uploader)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "device-1", ItemInput{Title: "Logo"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	if _, err := svc.AttachSketch(ctx, "device-1", "sketch.png", "image/png", strings.NewReader("png")); err == nil {
		t.Fatal("expected upload failure")
	}

	view, err := svc.View(ctx, "device-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Count != 1 || view.Items[0].ImageURL != "" {
		t.Fatalf("cart disturbed by failed upload: %+v", view.Items)
	}
}

func TestServiceCheckoutPushesToDocument(t *testing.T) {
	docs := &stubDocuments{}
	svc := newTestService(t, newStubMirror(), docs, nil)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "device-1", ItemInput{Title: "Logo", Price: NewPriceValue("450")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.Checkout(ctx, "device-1", "user-1"); err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if len(docs.merged) != 1 {
		t.Fatalf("expected one merge, got %d", len(docs.merged))
	}
}

func TestServiceClearCartEmptiesSession(t *testing.T) {
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, nil)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "device-1", ItemInput{Title: "Logo", Price: NewPriceValue("100")}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.ClearCart(ctx, "device-1"); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	view, err := svc.View(ctx, "device-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Count != 0 || !view.Total.IsZero() {
		t.Fatalf("view = %+v", view)
	}
}

func TestServicePullWithoutDeviceFetchesDocument(t *testing.T) {
	docs := &stubDocuments{doc: &models.UserDocument{UserID: "user-1", TrackDesignActive: true}}
	svc := newTestService(t, newStubMirror(), docs, nil)

	doc, err := svc.Pull(context.Background(), "", "user-1")
	if err != nil {
		t.Fatalf("Pull: %v", err)
	}
	if doc == nil || doc.UserID != "user-1" {
		t.Fatalf("doc = %+v", doc)
	}
}

func TestServiceViewAfterClearKeepsEmptySlice(t *testing.T) {
	svc := newTestService(t, newStubMirror(), &stubDocuments{}, nil)
	ctx := context.Background()

	if _, err := svc.AddItem(ctx, "device-1", ItemInput{Title: "Logo"}); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := svc.ClearCart(ctx, "device-1"); err != nil {
		t.Fatalf("ClearCart: %v", err)
	}

	view, err := svc.View(ctx, "device-1")
	if err != nil {
		t.Fatalf("View: %v", err)
	}
	if view.Items == nil {
		t.Fatal("expected empty items slice, got nil")
	}
	if view.Count != 0 {
		t.Fatalf("count = %d", view.Count)
	}
}
