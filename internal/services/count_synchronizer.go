package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"github.com/maplecart/api/internal/domain"
)

// ProductCounter exposes the source-of-truth count of active products per
// category. Implemented by the product repository.
type ProductCounter interface {
	CountActiveByCategory(ctx context.Context, categoryID string) (int, error)
}

// CategoryCountStore reads category ids and writes the derived count.
// Implemented by the category repository.
type CategoryCountStore interface {
	ListAll(ctx context.Context) ([]domain.Category, error)
	SetProductCount(ctx context.Context, categoryID string, count int) error
}

// RecountReport summarises a bulk reconciliation run.
type RecountReport struct {
	Recounted int
	Repaired  int
	Failed    []string
}

var (
	// ErrCountSyncInvalidInput indicates the caller supplied an empty category id.
	ErrCountSyncInvalidInput = errors.New("count sync: invalid input")
)

// CountSynchronizerDeps bundles collaborators for the count synchronizer.
type CountSynchronizerDeps struct {
	Products   ProductCounter
	Categories CategoryCountStore
	Logger     func(ctx context.Context, event string, fields map[string]any)
}

type countSynchronizer struct {
	products   ProductCounter
	categories CategoryCountStore
	logger     func(context.Context, string, map[string]any)
	recounts   metric.Int64Counter
	failures   metric.Int64Counter
}

// NewCountSynchronizer constructs the synchronizer maintaining per-category
// active product counts. The counts are best-effort eventually consistent: a
// concurrent product mutation between the read and the write can leave a stale
// value, which RecountAll exists to repair. No locking is attempted.
func NewCountSynchronizer(deps CountSynchronizerDeps) (CountSynchronizer, error) {
	if deps.Products == nil {
		return nil, errors.New("count synchronizer: product counter is required")
	}
	if deps.Categories == nil {
		return nil, errors.New("count synchronizer: category store is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = func(context.Context, string, map[string]any) {}
	}

	meter := otel.Meter("maplecart/catalog-counts")
	recounts, err := meter.Int64Counter("catalog.category.recounts")
	if err != nil {
		return nil, err
	}
	failures, err := meter.Int64Counter("catalog.category.recount_failures")
	if err != nil {
		return nil, err
	}

	return &countSynchronizer{
		products:   deps.Products,
		categories: deps.Categories,
		logger:     logger,
		recounts:   recounts,
		failures:   failures,
	}, nil
}

// RecountOne queries the true count of active products in the category and
// writes it onto the category record, returning the new count. Idempotent:
// with no intervening product changes a second call stores the same value. If
// the count query fails the stored value is left untouched and the error
// propagates; the caller owns retry policy.
func (s *countSynchronizer) RecountOne(ctx context.Context, categoryID string) (int, error) {
	categoryID = strings.TrimSpace(categoryID)
	if categoryID == "" {
		return 0, ErrCountSyncInvalidInput
	}

	count, err := s.products.CountActiveByCategory(ctx, categoryID)
	if err != nil {
		s.failures.Add(ctx, 1)
		return 0, err
	}
	if err := s.categories.SetProductCount(ctx, categoryID, count); err != nil {
		s.failures.Add(ctx, 1)
		return 0, err
	}
	s.recounts.Add(ctx, 1)
	return count, nil
}

// RecountAll walks every category and applies RecountOne, logging and
// continuing past per-category failures. It is the repair operation for count
// drift (bulk imports, manual edits, lost recount triggers); partial
// completion is acceptable but each category update is all-or-nothing.
func (s *countSynchronizer) RecountAll(ctx context.Context) (RecountReport, error) {
	categories, err := s.categories.ListAll(ctx)
	if err != nil {
		return RecountReport{}, err
	}

	var report RecountReport
	for _, category := range categories {
		count, err := s.RecountOne(ctx, category.ID)
		if err != nil {
			report.Failed = append(report.Failed, category.ID)
			s.logger(ctx, "catalog.recount.failed", map[string]any{
				"categoryId": category.ID,
				"error":      err.Error(),
			})
			continue
		}
		report.Recounted++
		if count != category.ActiveProductCount {
			report.Repaired++
			s.logger(ctx, "catalog.recount.repaired", map[string]any{
				"categoryId": category.ID,
				"before":     category.ActiveProductCount,
				"after":      count,
			})
		}
	}
	return report, nil
}
