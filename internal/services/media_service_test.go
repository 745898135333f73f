package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domain "github.com/maplecart/api/internal/domain"
	"github.com/maplecart/api/internal/platform/auth"
	pstorage "github.com/maplecart/api/internal/platform/storage"
)

type stubSigner struct {
	lastBucket string
	lastObject string
	lastOpts   pstorage.SignedURLOptions
	err        error
}

func (s *stubSigner) SignedURL(_ context.Context, bucket, object string, opts pstorage.SignedURLOptions) (pstorage.SignedURLResult, error) {
	s.lastBucket = bucket
	s.lastObject = object
	s.lastOpts = opts
	if s.err != nil {
		return pstorage.SignedURLResult{}, s.err
	}
	return pstorage.SignedURLResult{
		URL:       "https://storage.googleapis.com/" + bucket + "/" + object + "?sig=abc",
		Method:    "PUT",
		ExpiresAt: time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC),
		Headers:   map[string]string{"Content-Type": "image/png"},
	}, nil
}

type stubCopier struct {
	copies [][2]string
	err    error
}

func (c *stubCopier) CopyObject(_ context.Context, _, sourceObject, _, destObject string) error {
	if c.err != nil {
		return c.err
	}
	c.copies = append(c.copies, [2]string{sourceObject, destObject})
	return nil
}

func newTestMediaService(t *testing.T, signer *stubSigner, copier *stubCopier, products *stubProductRepo, categories *stubCategoryRepo) MediaService {
	t.Helper()
	svc, err := NewMediaService(MediaServiceDeps{
		Signer:      signer,
		Copier:      copier,
		Products:    products,
		Categories:  categories,
		Bucket:      "maplecart-media",
		IDGenerator: func() string { return "upload-1" },
	})
	if err != nil {
		t.Fatalf("new media service: %v", err)
	}
	return svc
}

func TestCreateUploadURLStagesObject(t *testing.T) {
	signer := &stubSigner{}
	svc := newTestMediaService(t, signer, &stubCopier{}, newStubProductRepo(), newStubCategoryRepo())

	ticket, err := svc.CreateUploadURL(context.Background(), CreateUploadURLCommand{
		FileName:    "hero.png",
		ContentType: "image/png",
		SizeBytes:   2048,
	})
	if err != nil {
		t.Fatalf("create upload url: %v", err)
	}
	if ticket.UploadID != "upload-1" {
		t.Fatalf("expected generated upload id, got %q", ticket.UploadID)
	}
	if ticket.ObjectPath != "uploads/upload-1/hero.png" {
		t.Fatalf("unexpected object path %q", ticket.ObjectPath)
	}
	if signer.lastBucket != "maplecart-media" {
		t.Fatalf("expected media bucket, got %q", signer.lastBucket)
	}
	if signer.lastOpts.Upload == nil || signer.lastOpts.Upload.MaxSize != 2048 {
		t.Fatalf("expected size cap forwarded, got %+v", signer.lastOpts.Upload)
	}
	if !strings.HasPrefix(ticket.URL, "https://storage.googleapis.com/") {
		t.Fatalf("unexpected url %q", ticket.URL)
	}
}

func TestCreateUploadURLStripsPathComponents(t *testing.T) {
	signer := &stubSigner{}
	svc := newTestMediaService(t, signer, &stubCopier{}, newStubProductRepo(), newStubCategoryRepo())

	ticket, err := svc.CreateUploadURL(context.Background(), CreateUploadURLCommand{
		FileName:    "gallery/summer/hero.png",
		ContentType: "image/png",
	})
	if err != nil {
		t.Fatalf("create upload url: %v", err)
	}
	if ticket.ObjectPath != "uploads/upload-1/hero.png" {
		t.Fatalf("expected base name only, got %q", ticket.ObjectPath)
	}
}

func TestCreateUploadURLRequiresContentType(t *testing.T) {
	svc := newTestMediaService(t, &stubSigner{}, &stubCopier{}, newStubProductRepo(), newStubCategoryRepo())

	_, err := svc.CreateUploadURL(context.Background(), CreateUploadURLCommand{FileName: "hero.png"})
	if !errors.Is(err, ErrMediaInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func staffContext() context.Context {
	return auth.WithIdentity(context.Background(), &auth.Identity{
		UID:   "staff-1",
		Roles: []string{auth.RoleStaff},
	})
}

func TestCreateDownloadURLSignsObject(t *testing.T) {
	signer := &stubSigner{}
	svc := newTestMediaService(t, signer, &stubCopier{}, newStubProductRepo(), newStubCategoryRepo())

	ticket, err := svc.CreateDownloadURL(staffContext(), CreateDownloadURLCommand{
		ObjectPath: "/media/products/prod-1/front.jpg",
	})
	if err != nil {
		t.Fatalf("create download url: %v", err)
	}
	if signer.lastObject != "media/products/prod-1/front.jpg" {
		t.Fatalf("expected leading slash stripped, got %q", signer.lastObject)
	}
	if signer.lastOpts.Download == nil {
		t.Fatalf("expected download options, got %+v", signer.lastOpts)
	}
	if signer.lastOpts.Download.Identity == nil || signer.lastOpts.Download.Identity.UID != "staff-1" {
		t.Fatalf("expected caller identity forwarded, got %+v", signer.lastOpts.Download.Identity)
	}
	if !strings.HasPrefix(ticket.URL, "https://storage.googleapis.com/") {
		t.Fatalf("unexpected url %q", ticket.URL)
	}
}

func TestCreateDownloadURLRequiresStaffIdentity(t *testing.T) {
	svc := newTestMediaService(t, &stubSigner{}, &stubCopier{}, newStubProductRepo(), newStubCategoryRepo())

	_, err := svc.CreateDownloadURL(context.Background(), CreateDownloadURLCommand{
		ObjectPath: "media/products/prod-1/front.jpg",
	})
	if !errors.Is(err, pstorage.ErrPermissionDenied) {
		t.Fatalf("expected permission denied for anonymous caller, got %v", err)
	}

	customer := auth.WithIdentity(context.Background(), &auth.Identity{
		UID:   "cust-1",
		Roles: []string{auth.RoleUser},
	})
	_, err = svc.CreateDownloadURL(customer, CreateDownloadURLCommand{
		ObjectPath: "media/products/prod-1/front.jpg",
	})
	if !errors.Is(err, pstorage.ErrPermissionDenied) {
		t.Fatalf("expected permission denied without staff role, got %v", err)
	}
}

func TestCreateDownloadURLRejectsOutsideMediaTree(t *testing.T) {
	svc := newTestMediaService(t, &stubSigner{}, &stubCopier{}, newStubProductRepo(), newStubCategoryRepo())

	for _, objectPath := range []string{"", "../etc/passwd", "media/../secrets/key", "config/app.yaml"} {
		_, err := svc.CreateDownloadURL(staffContext(), CreateDownloadURLCommand{ObjectPath: objectPath})
		if !errors.Is(err, ErrMediaInvalidInput) {
			t.Fatalf("expected invalid input for %q, got %v", objectPath, err)
		}
	}
}

func TestAttachProductImageAppendsToGallery(t *testing.T) {
	products := newStubProductRepo(domain.Product{
		ID:     "prod-1",
		Slug:   "classic-tee",
		Images: []string{"/media/products/prod-1/old.png"},
	})
	copier := &stubCopier{}
	svc := newTestMediaService(t, &stubSigner{}, copier, products, newStubCategoryRepo())

	product, err := svc.AttachProductImage(context.Background(), AttachImageCommand{
		OwnerID:  "prod-1",
		UploadID: "upload-9",
		FileName: "front.jpg",
	})
	if err != nil {
		t.Fatalf("attach product image: %v", err)
	}
	if len(copier.copies) != 1 {
		t.Fatalf("expected one copy, got %d", len(copier.copies))
	}
	if copier.copies[0][0] != "uploads/upload-9/front.jpg" {
		t.Fatalf("unexpected source %q", copier.copies[0][0])
	}
	if copier.copies[0][1] != "media/products/prod-1/front.jpg" {
		t.Fatalf("unexpected destination %q", copier.copies[0][1])
	}
	want := "/media/products/prod-1/front.jpg"
	if len(product.Images) != 2 || product.Images[1] != want {
		t.Fatalf("expected gallery append %q, got %v", want, product.Images)
	}
	if product.FeaturedImage != "" {
		t.Fatalf("featured image should be untouched, got %q", product.FeaturedImage)
	}
}

func TestAttachProductImageFeaturedReplaces(t *testing.T) {
	products := newStubProductRepo(domain.Product{
		ID:            "prod-1",
		FeaturedImage: "/media/products/prod-1/old.png",
	})
	svc := newTestMediaService(t, &stubSigner{}, &stubCopier{}, products, newStubCategoryRepo())

	product, err := svc.AttachProductImage(context.Background(), AttachImageCommand{
		OwnerID:  "prod-1",
		UploadID: "upload-9",
		FileName: "hero.png",
		Featured: true,
	})
	if err != nil {
		t.Fatalf("attach featured image: %v", err)
	}
	if product.FeaturedImage != "/media/products/prod-1/hero.png" {
		t.Fatalf("expected featured replaced, got %q", product.FeaturedImage)
	}
	if len(product.Images) != 0 {
		t.Fatalf("gallery should be untouched, got %v", product.Images)
	}
}

func TestAttachProductImageMissingProduct(t *testing.T) {
	svc := newTestMediaService(t, &stubSigner{}, &stubCopier{}, newStubProductRepo(), newStubCategoryRepo())

	_, err := svc.AttachProductImage(context.Background(), AttachImageCommand{
		OwnerID:  "ghost",
		UploadID: "upload-9",
		FileName: "hero.png",
	})
	if !errors.Is(err, ErrMediaOwnerNotFound) {
		t.Fatalf("expected owner not found, got %v", err)
	}
}

func TestAttachCategoryImageSetsImage(t *testing.T) {
	categories := newStubCategoryRepo(domain.Category{ID: "cat-1", Slug: "apparel"})
	copier := &stubCopier{}
	svc := newTestMediaService(t, &stubSigner{}, copier, newStubProductRepo(), categories)

	category, err := svc.AttachCategoryImage(context.Background(), AttachImageCommand{
		OwnerID:  "cat-1",
		UploadID: "upload-2",
		FileName: "banner.webp",
	})
	if err != nil {
		t.Fatalf("attach category image: %v", err)
	}
	if category.Image != "/media/categories/cat-1/banner.webp" {
		t.Fatalf("unexpected image ref %q", category.Image)
	}
	if copier.copies[0][1] != "media/categories/cat-1/banner.webp" {
		t.Fatalf("unexpected destination %q", copier.copies[0][1])
	}
}

func TestAttachImageCopyFailureDoesNotPersist(t *testing.T) {
	products := newStubProductRepo(domain.Product{ID: "prod-1"})
	copier := &stubCopier{err: errors.New("gcs unavailable")}
	svc := newTestMediaService(t, &stubSigner{}, copier, products, newStubCategoryRepo())

	_, err := svc.AttachProductImage(context.Background(), AttachImageCommand{
		OwnerID:  "prod-1",
		UploadID: "upload-9",
		FileName: "hero.png",
	})
	if err == nil {
		t.Fatal("expected copy error to propagate")
	}
	if len(products.updates) != 0 {
		t.Fatalf("product should not be updated on copy failure, got %d updates", len(products.updates))
	}
}
