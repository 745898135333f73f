package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/maplecart/api/internal/catalog"
	"github.com/maplecart/api/internal/platform/httpx"
	"github.com/maplecart/api/internal/platform/pagination"
	storage "github.com/maplecart/api/internal/platform/storage"
	"github.com/maplecart/api/internal/repositories"
	"github.com/maplecart/api/internal/services"
)

const maxRequestBody = 1 << 20

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxRequestBody))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func respondBadRequest(ctx context.Context, w http.ResponseWriter, message string) {
	httpx.WriteError(ctx, w, httpx.NewError("invalid_request", message, http.StatusBadRequest))
}

// respondServiceError translates service-layer sentinel errors into the
// canonical JSON error envelope.
func respondServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	// The attribute error carries the attribute name the operator has to fix,
	// so its message passes through to the envelope verbatim.
	var invalidAttr *catalog.InvalidAttributeError

	switch {
	case errors.As(err, &invalidAttr):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", invalidAttr.Error(), http.StatusBadRequest))
	case errors.Is(err, services.ErrCatalogInvalidInput),
		errors.Is(err, services.ErrCategoryInvalidInput),
		errors.Is(err, services.ErrCustomerInvalidInput),
		errors.Is(err, services.ErrOrderInvalidInput),
		errors.Is(err, services.ErrMediaInvalidInput),
		errors.Is(err, pagination.ErrInvalidPageSize),
		errors.Is(err, pagination.ErrInvalidPageToken),
		errors.Is(err, pagination.ErrInvalidOrderBy),
		errors.Is(err, pagination.ErrInvalidFilter):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_request", err.Error(), http.StatusBadRequest))
	case errors.Is(err, storage.ErrPermissionDenied):
		httpx.WriteError(ctx, w, httpx.NewError("permission_denied", err.Error(), http.StatusForbidden))
	case errors.Is(err, services.ErrProductSlugConflict),
		errors.Is(err, services.ErrCategorySlugConflict):
		httpx.WriteError(ctx, w, httpx.NewError("slug_conflict", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrCategoryNotEmpty):
		httpx.WriteError(ctx, w, httpx.NewError("category_not_empty", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrOrderInvalidTransition):
		httpx.WriteError(ctx, w, httpx.NewError("invalid_transition", err.Error(), http.StatusConflict))
	case errors.Is(err, services.ErrProductNotPurchasable):
		httpx.WriteError(ctx, w, httpx.NewError("product_not_purchasable", err.Error(), http.StatusUnprocessableEntity))
	case errors.Is(err, services.ErrVariantNotFound),
		errors.Is(err, services.ErrMediaOwnerNotFound),
		isNotFound(err):
		httpx.WriteError(ctx, w, httpx.NewError("not_found", err.Error(), http.StatusNotFound))
	default:
		httpx.WriteError(ctx, w, httpx.NewError("internal_error", "an unexpected error occurred", http.StatusInternalServerError))
	}
}

func isNotFound(err error) bool {
	var repoErr repositories.RepositoryError
	return errors.As(err, &repoErr) && repoErr.IsNotFound()
}
