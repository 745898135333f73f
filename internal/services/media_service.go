package services

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	domain "github.com/maplecart/api/internal/domain"
	pstorage "github.com/maplecart/api/internal/platform/storage"
	"github.com/maplecart/api/internal/repositories"
)

var (
	// ErrMediaInvalidInput indicates an invalid upload or attach request.
	ErrMediaInvalidInput = errors.New("media service: invalid input")
	// ErrMediaOwnerNotFound indicates the target product or category does not exist.
	ErrMediaOwnerNotFound = errors.New("media service: owner not found")
)

const (
	defaultUploadExpiry   = 15 * time.Minute
	defaultDownloadExpiry = 5 * time.Minute
	defaultMaxUploadSize  = 10 << 20
)

var allowedImageTypes = []string{"image/*"}

// UploadURLSigner generates signed URLs for direct-to-bucket transfers.
type UploadURLSigner interface {
	SignedURL(ctx context.Context, bucket, object string, opts pstorage.SignedURLOptions) (pstorage.SignedURLResult, error)
}

// ObjectCopier copies objects between bucket locations.
type ObjectCopier interface {
	CopyObject(ctx context.Context, sourceBucket, sourceObject, destBucket, destObject string) error
}

// MediaServiceDeps bundles constructor inputs for the media service.
type MediaServiceDeps struct {
	Signer      UploadURLSigner
	Copier      ObjectCopier
	Products    repositories.ProductRepository
	Categories  repositories.CategoryRepository
	Bucket      string
	IDGenerator func() string
	Logger      func(ctx context.Context, event string, fields map[string]any)
}

type mediaService struct {
	signer     UploadURLSigner
	copier     ObjectCopier
	products   repositories.ProductRepository
	categories repositories.CategoryRepository
	bucket     string
	newID      func() string
	logger     func(context.Context, string, map[string]any)
}

// NewMediaService constructs the media service with the supplied dependencies.
func NewMediaService(deps MediaServiceDeps) (MediaService, error) {
	if deps.Signer == nil {
		return nil, errors.New("media service: signer is required")
	}
	if deps.Copier == nil {
		return nil, errors.New("media service: copier is required")
	}
	if deps.Products == nil {
		return nil, errors.New("media service: product repository is required")
	}
	if deps.Categories == nil {
		return nil, errors.New("media service: category repository is required")
	}
	if strings.TrimSpace(deps.Bucket) == "" {
		return nil, errors.New("media service: bucket is required")
	}
	idGen := deps.IDGenerator
	if idGen == nil {
		idGen = func() string { return ulid.Make().String() }
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}
	return &mediaService{
		signer:     deps.Signer,
		copier:     deps.Copier,
		products:   deps.Products,
		categories: deps.Categories,
		bucket:     strings.TrimSpace(deps.Bucket),
		newID:      idGen,
		logger:     logger,
	}, nil
}

func (s *mediaService) CreateUploadURL(ctx context.Context, cmd CreateUploadURLCommand) (UploadTicket, error) {
	fileName, err := sanitizeFileName(cmd.FileName)
	if err != nil {
		return UploadTicket{}, err
	}
	contentType := strings.TrimSpace(cmd.ContentType)
	if contentType == "" {
		return UploadTicket{}, fmt.Errorf("%w: content type is required", ErrMediaInvalidInput)
	}
	maxSize := cmd.SizeBytes
	if maxSize <= 0 || maxSize > defaultMaxUploadSize {
		maxSize = defaultMaxUploadSize
	}

	uploadID := s.newID()
	objectPath, err := pstorage.BuildObjectPath(pstorage.PurposeUpload, pstorage.PathParams{
		UploadID: uploadID,
		FileName: fileName,
	})
	if err != nil {
		return UploadTicket{}, err
	}

	result, err := s.signer.SignedURL(ctx, s.bucket, objectPath, pstorage.SignedURLOptions{
		Upload: &pstorage.UploadOptions{
			ContentType:         contentType,
			AllowedContentTypes: allowedImageTypes,
			MaxSize:             maxSize,
			ExpiresIn:           defaultUploadExpiry,
		},
	})
	if err != nil {
		return UploadTicket{}, fmt.Errorf("sign upload url: %w", err)
	}

	s.logger(ctx, "media.upload.created", map[string]any{
		"uploadId": uploadID,
		"object":   objectPath,
	})

	return UploadTicket{
		UploadID:   uploadID,
		ObjectPath: objectPath,
		URL:        result.URL,
		Method:     result.Method,
		Headers:    result.Headers,
		ExpiresAt:  result.ExpiresAt,
	}, nil
}

// CreateDownloadURL signs a short-lived GET URL for a stored media object.
// Catalog media has no per-customer owner, so access is gated on the staff
// and admin roles carried by the caller's identity.
func (s *mediaService) CreateDownloadURL(ctx context.Context, cmd CreateDownloadURLCommand) (DownloadTicket, error) {
	object, err := normalizeObjectRef(cmd.ObjectPath)
	if err != nil {
		return DownloadTicket{}, err
	}

	identity, err := pstorage.AuthorizeDownloadFromContext(ctx, "", false)
	if err != nil {
		return DownloadTicket{}, err
	}

	result, err := s.signer.SignedURL(ctx, s.bucket, object, pstorage.SignedURLOptions{
		Download: &pstorage.DownloadOptions{
			Identity:    identity,
			ExpiresIn:   defaultDownloadExpiry,
			Disposition: "attachment",
		},
	})
	if err != nil {
		return DownloadTicket{}, fmt.Errorf("sign download url: %w", err)
	}

	s.logger(ctx, "media.download.created", map[string]any{
		"object": object,
	})

	return DownloadTicket{
		URL:       result.URL,
		Method:    result.Method,
		ExpiresAt: result.ExpiresAt,
	}, nil
}

func (s *mediaService) AttachProductImage(ctx context.Context, cmd AttachImageCommand) (domain.Product, error) {
	if err := validateAttach(cmd); err != nil {
		return domain.Product{}, err
	}
	product, err := s.products.FindByID(ctx, cmd.OwnerID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Product{}, fmt.Errorf("%w: product %s", ErrMediaOwnerNotFound, cmd.OwnerID)
		}
		return domain.Product{}, err
	}

	ref, err := s.promote(ctx, cmd, pstorage.PurposeProductImage, pstorage.PathParams{
		ProductID: product.ID,
		UploadID:  cmd.UploadID,
		FileName:  cmd.FileName,
	})
	if err != nil {
		return domain.Product{}, err
	}

	if cmd.Featured {
		product.FeaturedImage = ref
	} else {
		product.Images = append(product.Images, ref)
	}
	if err := s.products.Update(ctx, product); err != nil {
		return domain.Product{}, err
	}

	s.logger(ctx, "media.image.attached", map[string]any{
		"productId": product.ID,
		"image":     ref,
		"featured":  cmd.Featured,
	})
	return product, nil
}

func (s *mediaService) AttachCategoryImage(ctx context.Context, cmd AttachImageCommand) (domain.Category, error) {
	if err := validateAttach(cmd); err != nil {
		return domain.Category{}, err
	}
	category, err := s.categories.FindByID(ctx, cmd.OwnerID)
	if err != nil {
		if isRepoNotFound(err) {
			return domain.Category{}, fmt.Errorf("%w: category %s", ErrMediaOwnerNotFound, cmd.OwnerID)
		}
		return domain.Category{}, err
	}

	ref, err := s.promote(ctx, cmd, pstorage.PurposeCategoryImage, pstorage.PathParams{
		CategoryID: category.ID,
		UploadID:   cmd.UploadID,
		FileName:   cmd.FileName,
	})
	if err != nil {
		return domain.Category{}, err
	}

	category.Image = ref
	if err := s.categories.Update(ctx, category); err != nil {
		return domain.Category{}, err
	}

	s.logger(ctx, "media.image.attached", map[string]any{
		"categoryId": category.ID,
		"image":      ref,
	})
	return category, nil
}

// promote copies the staged upload into its published location and returns
// the relative reference stored on the document. The reference is served to
// clients through the image resolver, which prefixes the CDN base URL.
func (s *mediaService) promote(ctx context.Context, cmd AttachImageCommand, purpose pstorage.MediaPurpose, params pstorage.PathParams) (string, error) {
	source, err := pstorage.BuildObjectPath(pstorage.PurposeUpload, pstorage.PathParams{
		UploadID: cmd.UploadID,
		FileName: cmd.FileName,
	})
	if err != nil {
		return "", err
	}
	dest, err := pstorage.BuildObjectPath(purpose, params)
	if err != nil {
		return "", err
	}
	if err := s.copier.CopyObject(ctx, s.bucket, source, s.bucket, dest); err != nil {
		return "", fmt.Errorf("promote upload %s: %w", cmd.UploadID, err)
	}
	return "/" + dest, nil
}

func validateAttach(cmd AttachImageCommand) error {
	if strings.TrimSpace(cmd.OwnerID) == "" {
		return fmt.Errorf("%w: owner id is required", ErrMediaInvalidInput)
	}
	if strings.TrimSpace(cmd.UploadID) == "" {
		return fmt.Errorf("%w: upload id is required", ErrMediaInvalidInput)
	}
	if strings.TrimSpace(cmd.FileName) == "" {
		return fmt.Errorf("%w: file name is required", ErrMediaInvalidInput)
	}
	return nil
}

// normalizeObjectRef turns a stored media reference into the bucket object
// name, rejecting anything outside the staged or published media trees.
func normalizeObjectRef(raw string) (string, error) {
	ref := strings.TrimPrefix(strings.TrimSpace(raw), "/")
	if ref == "" {
		return "", fmt.Errorf("%w: object path is required", ErrMediaInvalidInput)
	}
	if strings.Contains(ref, "..") || strings.Contains(ref, "\\") {
		return "", fmt.Errorf("%w: object path %q is not valid", ErrMediaInvalidInput, raw)
	}
	if !strings.HasPrefix(ref, "media/") && !strings.HasPrefix(ref, "uploads/") {
		return "", fmt.Errorf("%w: object path %q is outside the media tree", ErrMediaInvalidInput, raw)
	}
	return ref, nil
}

func sanitizeFileName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: file name is required", ErrMediaInvalidInput)
	}
	base := path.Base(name)
	if base == "." || base == ".." || strings.ContainsAny(base, "/\\") {
		return "", fmt.Errorf("%w: file name %q is not valid", ErrMediaInvalidInput, name)
	}
	return base, nil
}
