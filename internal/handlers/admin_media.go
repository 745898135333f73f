package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/maplecart/api/internal/services"
)

// AdminMediaHandlers issues signed upload and download URLs and attaches
// uploaded images to products and categories.
type AdminMediaHandlers struct {
	media services.MediaService
}

// NewAdminMediaHandlers constructs admin media endpoints.
func NewAdminMediaHandlers(media services.MediaService) *AdminMediaHandlers {
	return &AdminMediaHandlers{media: media}
}

// Register mounts the admin media routes.
func (h *AdminMediaHandlers) Register(r chi.Router) {
	r.Post("/media/uploads", h.createUploadURL)
	r.Post("/media/downloads", h.createDownloadURL)
	r.Post("/products/{productID}/images", h.attachProductImage)
	r.Post("/categories/{categoryID}/image", h.attachCategoryImage)
}

type createUploadURLRequest struct {
	FileName    string `json:"fileName"`
	ContentType string `json:"contentType"`
	SizeBytes   int64  `json:"sizeBytes,omitempty"`
}

type uploadTicketResponse struct {
	UploadID  string            `json:"uploadId"`
	URL       string            `json:"url"`
	Method    string            `json:"method"`
	Headers   map[string]string `json:"headers,omitempty"`
	ExpiresAt time.Time         `json:"expiresAt"`
}

func (h *AdminMediaHandlers) createUploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createUploadURLRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	ticket, err := h.media.CreateUploadURL(ctx, services.CreateUploadURLCommand{
		FileName:    req.FileName,
		ContentType: req.ContentType,
		SizeBytes:   req.SizeBytes,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusCreated, uploadTicketResponse{
		UploadID:  ticket.UploadID,
		URL:       ticket.URL,
		Method:    ticket.Method,
		Headers:   ticket.Headers,
		ExpiresAt: ticket.ExpiresAt,
	})
}

type createDownloadURLRequest struct {
	ObjectPath string `json:"objectPath"`
}

type downloadTicketResponse struct {
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *AdminMediaHandlers) createDownloadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createDownloadURLRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	ticket, err := h.media.CreateDownloadURL(ctx, services.CreateDownloadURLCommand{
		ObjectPath: req.ObjectPath,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, downloadTicketResponse{
		URL:       ticket.URL,
		Method:    ticket.Method,
		ExpiresAt: ticket.ExpiresAt,
	})
}

type attachImageRequest struct {
	UploadID string `json:"uploadId"`
	FileName string `json:"fileName"`
	Featured bool   `json:"featured,omitempty"`
}

func (h *AdminMediaHandlers) attachProductImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req attachImageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	product, err := h.media.AttachProductImage(ctx, services.AttachImageCommand{
		OwnerID:  chi.URLParam(r, "productID"),
		UploadID: req.UploadID,
		FileName: req.FileName,
		Featured: req.Featured,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toProductPayload(product))
}

func (h *AdminMediaHandlers) attachCategoryImage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req attachImageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondBadRequest(ctx, w, err.Error())
		return
	}

	category, err := h.media.AttachCategoryImage(ctx, services.AttachImageCommand{
		OwnerID:  chi.URLParam(r, "categoryID"),
		UploadID: req.UploadID,
		FileName: req.FileName,
	})
	if err != nil {
		respondServiceError(ctx, w, err)
		return
	}
	writeJSON(w, http.StatusOK, toCategoryPayload(category))
}
