package link

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sundayezeilo/tinylink/internal/errx"
)

// mockService implements Service for handler tests.
type mockService struct {
	createFunc func(ctx context.Context, req CreateLinkRequest) (CreatedLink, error)
	getFunc    func(ctx context.Context, id string) (Link, error)
	deleteFunc func(ctx context.Context, id string) error
}

func (m *mockService) CreateLink(ctx context.Context, req CreateLinkRequest) (CreatedLink, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, req)
	}
	return CreatedLink{}, errors.New("not configured")
}

func (m *mockService) GetLink(ctx context.Context, id string) (Link, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, id)
	}
	return Link{}, errors.New("not configured")
}

func (m *mockService) DeleteLink(ctx context.Context, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, id)
	}
	return errors.New("not configured")
}

func newTestMux(h *Handler) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/links", h.CreateLink)
	mux.HandleFunc("GET /api/links/{id}", h.GetLink)
	mux.HandleFunc("DELETE /api/links/{id}", h.DeleteLink)
	mux.HandleFunc("GET /{id}", h.Redirect)
	return mux
}

func TestHandlerCreateLink(t *testing.T) {
	t.Run("creates link and returns 201", func(t *testing.T) {
		svc := &mockService{
			createFunc: func(ctx context.Context, req CreateLinkRequest) (CreatedLink, error) {
				return CreatedLink{
					Link: Link{
						ID:        "aB3xY9",
						TargetURL: req.TargetURL,
						CreatedAt: time.Now(),
					},
					PublicURL: "http://localhost:8080/aB3xY9",
				}, nil
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger(), BaseURL: "http://localhost:8080"})

		body := bytes.NewBufferString(`{"url":"https://example.com"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/links", body)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d; body: %s", rec.Code, http.StatusCreated, rec.Body.String())
		}

		var resp LinkResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ID != "aB3xY9" {
			t.Errorf("ID = %q, want %q", resp.ID, "aB3xY9")
		}
		if resp.ShortURL != "http://localhost:8080/aB3xY9" {
			t.Errorf("ShortURL = %q, want %q", resp.ShortURL, "http://localhost:8080/aB3xY9")
		}
		if resp.ExpiresAt != "" {
			t.Errorf("ExpiresAt = %q, want empty", resp.ExpiresAt)
		}
	})

	t.Run("passes ttl hours through to the service", func(t *testing.T) {
		var captured CreateLinkRequest
		svc := &mockService{
			createFunc: func(ctx context.Context, req CreateLinkRequest) (CreatedLink, error) {
				captured = req
				return CreatedLink{Link: Link{ID: "aB3xY9"}}, nil
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		body := bytes.NewBufferString(`{"url":"https://example.com","ttl_hours":2}`)
		req := httptest.NewRequest(http.MethodPost, "/api/links", body)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
		}
		if captured.TTLHours == nil || *captured.TTLHours != 2 {
			t.Errorf("TTLHours = %v, want 2", captured.TTLHours)
		}
	})

	t.Run("rejects malformed url with 400", func(t *testing.T) {
		h := NewHandler(HandlerConfig{Service: &mockService{}, Logger: testLogger()})

		body := bytes.NewBufferString(`{"url":"not a url"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/links", body)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("rejects non-positive ttl with 400", func(t *testing.T) {
		h := NewHandler(HandlerConfig{Service: &mockService{}, Logger: testLogger()})

		body := bytes.NewBufferString(`{"url":"https://example.com","ttl_hours":0}`)
		req := httptest.NewRequest(http.MethodPost, "/api/links", body)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("maps Conflict to 409", func(t *testing.T) {
		svc := &mockService{
			createFunc: func(ctx context.Context, req CreateLinkRequest) (CreatedLink, error) {
				return CreatedLink{}, errx.E("link.service.CreateLink", errx.Conflict, errors.New("taken"))
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		body := bytes.NewBufferString(`{"url":"https://example.com","custom_id":"dup123X"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/links", body)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusConflict {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusConflict)
		}
	})

	t.Run("maps invalid custom id to 400", func(t *testing.T) {
		svc := &mockService{
			createFunc: func(ctx context.Context, req CreateLinkRequest) (CreatedLink, error) {
				return CreatedLink{}, errx.E("link.service.CreateLink", errx.Invalid, errors.New("custom id must contain at least one digit"))
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		body := bytes.NewBufferString(`{"url":"https://example.com","custom_id":"abcdef"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/links", body)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
		}
	})
}

func TestHandlerGetLink(t *testing.T) {
	t.Run("returns record with 200", func(t *testing.T) {
		exp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
		svc := &mockService{
			getFunc: func(ctx context.Context, id string) (Link, error) {
				return Link{ID: id, TargetURL: "https://example.com", ExpiresAt: &exp}, nil
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger(), BaseURL: "http://localhost:8080"})

		req := httptest.NewRequest(http.MethodGet, "/api/links/aB3xY9", nil)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
		}

		var resp LinkResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if resp.ExpiresAt != exp.Format(time.RFC3339) {
			t.Errorf("ExpiresAt = %q, want %q", resp.ExpiresAt, exp.Format(time.RFC3339))
		}
		if resp.ShortURL != "http://localhost:8080/aB3xY9" {
			t.Errorf("ShortURL = %q, want %q", resp.ShortURL, "http://localhost:8080/aB3xY9")
		}
	})

	t.Run("maps Expired to 410", func(t *testing.T) {
		svc := &mockService{
			getFunc: func(ctx context.Context, id string) (Link, error) {
				return Link{}, errx.E("link.service.GetLink", errx.Expired, errors.New("expired"))
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		req := httptest.NewRequest(http.MethodGet, "/api/links/old123", nil)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusGone {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusGone)
		}
	})

	t.Run("maps NotFound to 404", func(t *testing.T) {
		svc := &mockService{
			getFunc: func(ctx context.Context, id string) (Link, error) {
				return Link{}, errx.E("link.service.GetLink", errx.NotFound, errors.New("not found"))
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		req := httptest.NewRequest(http.MethodGet, "/api/links/missing1", nil)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestHandlerDeleteLink(t *testing.T) {
	t.Run("returns 204 on success", func(t *testing.T) {
		svc := &mockService{
			deleteFunc: func(ctx context.Context, id string) error { return nil },
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		req := httptest.NewRequest(http.MethodDelete, "/api/links/aB3xY9", nil)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusNoContent {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
		}
	})

	t.Run("maps NotFound to 404", func(t *testing.T) {
		svc := &mockService{
			deleteFunc: func(ctx context.Context, id string) error {
				return errx.E("link.service.DeleteLink", errx.NotFound, errors.New("not found"))
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		req := httptest.NewRequest(http.MethodDelete, "/api/links/missing1", nil)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
		}
	})
}

func TestHandlerRedirect(t *testing.T) {
	t.Run("redirects with 302 and Location", func(t *testing.T) {
		svc := &mockService{
			getFunc: func(ctx context.Context, id string) (Link, error) {
				return Link{ID: id, TargetURL: "https://example.com/page"}, nil
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		req := httptest.NewRequest(http.MethodGet, "/aB3xY9", nil)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusFound {
			t.Fatalf("status = %d, want %d", rec.Code, http.StatusFound)
		}
		if got := rec.Header().Get("Location"); got != "https://example.com/page" {
			t.Errorf("Location = %q, want %q", got, "https://example.com/page")
		}
	})

	t.Run("expired link gives 410, not a redirect", func(t *testing.T) {
		svc := &mockService{
			getFunc: func(ctx context.Context, id string) (Link, error) {
				return Link{}, errx.E("link.service.GetLink", errx.Expired, errors.New("expired"))
			},
		}
		h := NewHandler(HandlerConfig{Service: svc, Logger: testLogger()})

		req := httptest.NewRequest(http.MethodGet, "/old123", nil)
		rec := httptest.NewRecorder()
		newTestMux(h).ServeHTTP(rec, req)

		if rec.Code != http.StatusGone {
			t.Errorf("status = %d, want %d", rec.Code, http.StatusGone)
		}
	})
}

func TestValidateTargetURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{name: "valid https url", url: "https://example.com", wantErr: false},
		{name: "valid http url with path", url: "http://example.com/a/b?c=d", wantErr: false},
		{name: "empty", url: "", wantErr: true},
		{name: "missing scheme", url: "example.com", wantErr: true},
		{name: "unsupported scheme", url: "ftp://example.com", wantErr: true},
		{name: "missing host", url: "https://", wantErr: true},
		{name: "too long", url: "https://example.com/" + string(make([]byte, MaxURLLength)), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTargetURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateTargetURL(%q) error = %v, wantErr %v", tt.url, err, tt.wantErr)
			}
		})
	}
}
