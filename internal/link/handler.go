package link

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sundayezeilo/tinylink/internal/errx"
	"github.com/sundayezeilo/tinylink/internal/httpx"
)

// MaxURLLength caps accepted target URLs.
const MaxURLLength = 2048

// HTTPCreateLinkRequest represents the JSON request body for creating a link.
type HTTPCreateLinkRequest struct {
	URL      string `json:"url"`
	CustomID string `json:"custom_id,omitempty"`
	TTLHours *int   `json:"ttl_hours,omitempty"`
}

// LinkResponse represents the JSON response for a link.
type LinkResponse struct {
	ID        string `json:"id"`
	TargetURL string `json:"target_url"`
	ShortURL  string `json:"short_url,omitempty"`
	ExpiresAt string `json:"expires_at,omitempty"`
	CreatedAt string `json:"created_at"`
}

// Handler provides HTTP handlers for the link service.
type Handler struct {
	service Service
	logger  *slog.Logger
	baseURL string
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
	BaseURL string // Base URL for constructing short URLs (e.g., "https://tiny.link")
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		service: cfg.Service,
		logger:  logger,
		baseURL: cfg.BaseURL,
	}
}

// CreateLink handles POST requests to create a new short link.
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	logger := h.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"method", r.Method,
		"path", r.URL.Path,
	)

	req, err := httpx.DecodeJSON[HTTPCreateLinkRequest](r)
	if err != nil {
		logger.WarnContext(ctx, "failed to decode request",
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_request", err.Error(), nil)
		return
	}

	// Syntactic URL validation happens here; the service trusts its input.
	if err := validateCreateRequest(req); err != nil {
		logger.WarnContext(ctx, "request validation failed",
			"error", err.Error(),
			"url", req.URL,
			"custom_id", req.CustomID,
		)
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", err.Error(), nil)
		return
	}

	created, err := h.service.CreateLink(ctx, CreateLinkRequest{
		TargetURL: req.URL,
		CustomID:  req.CustomID,
		TTLHours:  req.TTLHours,
	})
	if err != nil {
		h.handleCreateError(ctx, w, err)
		return
	}

	resp := LinkResponse{
		ID:        created.ID,
		TargetURL: created.TargetURL,
		ShortURL:  created.PublicURL,
		CreatedAt: created.CreatedAt.Format(time.RFC3339),
	}
	if created.ExpiresAt != nil {
		resp.ExpiresAt = created.ExpiresAt.Format(time.RFC3339)
	}

	logger.InfoContext(ctx, "link created successfully",
		"id", created.ID,
		"short_url", created.PublicURL,
		"custom_id", req.CustomID != "",
		"expires", created.ExpiresAt != nil,
	)

	httpx.WriteJSON(w, http.StatusCreated, resp)
}

// GetLink handles GET requests for a link record.
func (h *Handler) GetLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	found, err := h.service.GetLink(ctx, id)
	if err != nil {
		h.handleLookupError(ctx, w, err, id)
		return
	}

	resp := LinkResponse{
		ID:        found.ID,
		TargetURL: found.TargetURL,
		ShortURL:  h.baseURL + "/" + found.ID,
		CreatedAt: found.CreatedAt.Format(time.RFC3339),
	}
	if found.ExpiresAt != nil {
		resp.ExpiresAt = found.ExpiresAt.Format(time.RFC3339)
	}

	httpx.WriteJSON(w, http.StatusOK, resp)
}

// DeleteLink handles DELETE requests for a link.
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	logger := h.logger.With(
		"request_id", httpx.GetRequestID(ctx),
		"id", id,
	)

	if err := h.service.DeleteLink(ctx, id); err != nil {
		h.handleLookupError(ctx, w, err, id)
		return
	}

	logger.InfoContext(ctx, "link deleted")
	w.WriteHeader(http.StatusNoContent)
}

// Redirect handles GET requests on the public short path and redirects
// to the target URL.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	found, err := h.service.GetLink(ctx, id)
	if err != nil {
		h.handleLookupError(ctx, w, err, id)
		return
	}

	h.logger.InfoContext(ctx, "redirecting",
		"request_id", httpx.GetRequestID(ctx),
		"id", id,
		"target_url", found.TargetURL,
		"referer", r.Referer(),
	)

	http.Redirect(w, r, found.TargetURL, http.StatusFound)
}

// handleCreateError handles errors from the CreateLink service method.
func (h *Handler) handleCreateError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.Conflict:
		h.logger.WarnContext(ctx, "id conflict", logAttrs...)
		httpx.WriteError(w, http.StatusConflict, "conflict",
			"This id is already taken",
			map[string]string{
				"hint": "Try a different custom id or let us generate one for you",
			})

	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid link request", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)

	case errx.Unavailable:
		h.logger.ErrorContext(ctx, "service unavailable", logAttrs...)
		httpx.WriteError(w, http.StatusServiceUnavailable, "unavailable",
			"Unable to create short link at this time. Please try again.", nil)

	default:
		h.logger.ErrorContext(ctx, "unexpected error creating link", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to create short link at this time. Please try again.", nil)
	}
}

// handleLookupError handles errors from GetLink and DeleteLink.
func (h *Handler) handleLookupError(ctx context.Context, w http.ResponseWriter, err error, id string) {
	kind := errx.KindOf(err)

	logAttrs := []any{
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
		"id", id,
	}

	switch kind {
	case errx.NotFound:
		h.logger.WarnContext(ctx, "link not found", logAttrs...)
		httpx.WriteError(w, http.StatusNotFound, "not_found",
			"short link doesn't exist", nil)

	case errx.Expired:
		h.logger.WarnContext(ctx, "link expired", logAttrs...)
		httpx.WriteError(w, http.StatusGone, "expired",
			"this short link has expired and is no longer accessible", nil)

	case errx.Invalid:
		h.logger.WarnContext(ctx, "invalid id", logAttrs...)
		httpx.WriteError(w, http.StatusBadRequest, "invalid_input", err.Error(), nil)

	default:
		h.logger.ErrorContext(ctx, "unexpected error looking up link", logAttrs...)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"Unable to serve this link at this time", nil)
	}
}

// validateCreateRequest validates the HTTPCreateLinkRequest.
func validateCreateRequest(req HTTPCreateLinkRequest) error {
	if err := validateTargetURL(req.URL); err != nil {
		return err
	}
	if req.TTLHours != nil && *req.TTLHours <= 0 {
		return errors.New("ttl_hours must be positive")
	}
	return nil
}

// validateTargetURL checks the target URL is a well-formed absolute
// http(s) URL.
func validateTargetURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("url is required")
	}
	if len(rawURL) > MaxURLLength {
		return errors.New("url too long (max 2048 characters)")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must include scheme (http or https)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Host == "" {
		return errors.New("url must include host")
	}
	return nil
}
