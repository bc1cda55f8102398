package link

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sundayezeilo/tinylink/internal/errx"
	"github.com/sundayezeilo/tinylink/shortid"
)

// DefaultCacheTTL bounds the cache staleness of records that never
// expire themselves.
const DefaultCacheTTL = 24 * time.Hour

var (
	errIDTaken     = errors.New("the provided id already exists")
	errLinkExpired = errors.New("the requested short link has expired and is no longer accessible")
)

// CreateLinkRequest represents the parameters for creating a new link.
type CreateLinkRequest struct {
	TargetURL string
	CustomID  string // Optional: if empty, an id will be generated
	TTLHours  *int   // Optional: nil means the link never expires
}

// CreatedLink is the result of a successful create, including the
// composed public URL.
type CreatedLink struct {
	Link
	PublicURL string
}

// Service defines the business logic operations for short links.
type Service interface {
	CreateLink(ctx context.Context, req CreateLinkRequest) (CreatedLink, error)
	GetLink(ctx context.Context, id string) (Link, error)
	DeleteLink(ctx context.Context, id string) error
}

// service implements the Service interface.
type service struct {
	repo     Repository
	cache    Cache
	ids      shortid.Generator
	logger   *slog.Logger
	baseURL  string
	cacheTTL time.Duration
	now      func() time.Time
}

// ServiceConfig holds configuration for the service.
type ServiceConfig struct {
	IDGenerator shortid.Generator
	Logger      *slog.Logger
	BaseURL     string // Base origin for composing public URLs (e.g. "https://tiny.link")
	CacheTTL    time.Duration
	Now         func() time.Time // Override for tests; defaults to time.Now
}

// NewService creates a new service instance.
func NewService(repo Repository, cache Cache, config *ServiceConfig) Service {
	if config == nil {
		config = &ServiceConfig{}
	}

	ids := config.IDGenerator
	if ids == nil {
		ids = shortid.NewAlphanumeric()
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = DefaultCacheTTL
	}

	now := config.Now
	if now == nil {
		now = time.Now
	}

	return &service{
		repo:     repo,
		cache:    cache,
		ids:      ids,
		logger:   logger,
		baseURL:  config.BaseURL,
		cacheTTL: cacheTTL,
		now:      now,
	}
}

// CreateLink creates a new short link with an optional custom id and an
// optional TTL in hours. The target URL is trusted to be well-formed;
// syntactic validation happens at the HTTP layer.
//
// The existence pre-check and the insert are not atomic. A concurrent
// creation with the same id slips past the pre-check and surfaces as a
// duplicate-key failure at write time, which the repository maps to
// Conflict as well.
func (s *service) CreateLink(ctx context.Context, req CreateLinkRequest) (CreatedLink, error) {
	const op = "link.service.CreateLink"

	id := req.CustomID
	if id != "" {
		if err := shortid.Validate(id); err != nil {
			return CreatedLink{}, errx.E(op, errx.Invalid, err)
		}
	} else {
		generated, err := s.ids.Generate()
		if err != nil {
			return CreatedLink{}, errx.E(op, errx.Unavailable, err)
		}
		id = generated
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return CreatedLink{}, errx.E(op, errx.KindOf(err), err)
	}
	if exists {
		s.logger.WarnContext(ctx, "short id already exists", "id", id)
		return CreatedLink{}, errx.E(op, errx.Conflict, errIDTaken)
	}

	var expiresAt *time.Time
	if req.TTLHours != nil {
		t := s.now().Add(time.Duration(*req.TTLHours) * time.Hour)
		expiresAt = &t
	}

	created, err := s.repo.Create(ctx, Link{
		ID:        id,
		TargetURL: req.TargetURL,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		return CreatedLink{}, errx.E(op, errx.KindOf(err), err)
	}

	// Cache the new record so the first lookups skip the store. The entry
	// TTL follows the record TTL when one was given; otherwise a fixed
	// default bounds staleness. Failures here must not fail the create.
	entryTTL := s.cacheTTL
	if req.TTLHours != nil {
		entryTTL = time.Duration(*req.TTLHours) * time.Hour
	}
	if err := s.cache.Set(ctx, created, entryTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed after create",
			"id", created.ID,
			"error", err.Error(),
		)
	}

	return CreatedLink{
		Link:      created,
		PublicURL: s.publicURL(created.ID),
	}, nil
}

// GetLink returns the link record for id, consulting the cache before
// the authoritative store. It never returns an expired record: an
// expired cache hit evicts the entry and fails with Expired without
// falling through to the store; an expired store record fails with
// Expired and is left for the sweeper to remove.
func (s *service) GetLink(ctx context.Context, id string) (Link, error) {
	const op = "link.service.GetLink"

	if id == "" {
		return Link{}, errx.E(op, errx.Invalid, errors.New("id cannot be empty"))
	}

	cached, ok, err := s.cache.Get(ctx, id)
	if err != nil {
		// A broken cache degrades to a store read.
		s.logger.WarnContext(ctx, "cache read failed",
			"id", id,
			"error", err.Error(),
		)
	}
	if ok {
		if cached.IsExpired(s.now()) {
			if err := s.cache.Delete(ctx, id); err != nil {
				s.logger.WarnContext(ctx, "cache eviction failed",
					"id", id,
					"error", err.Error(),
				)
			}
			return Link{}, errx.E(op, errx.Expired, errLinkExpired)
		}
		return cached, nil
	}

	found, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Link{}, errx.E(op, errx.KindOf(err), err)
	}

	if found.IsExpired(s.now()) {
		// Reported only; the sweeper owns removal.
		return Link{}, errx.E(op, errx.Expired, errLinkExpired)
	}

	if err := s.cache.Set(ctx, found, s.cacheTTL); err != nil {
		s.logger.WarnContext(ctx, "cache write failed after read",
			"id", id,
			"error", err.Error(),
		)
	}
	return found, nil
}

// DeleteLink removes the record for id from the store and its entry from
// the cache. The cache delete must succeed for the operation to succeed;
// otherwise a stale cache hit could resurrect the link until the entry
// TTL runs out.
func (s *service) DeleteLink(ctx context.Context, id string) error {
	const op = "link.service.DeleteLink"

	if id == "" {
		return errx.E(op, errx.Invalid, errors.New("id cannot be empty"))
	}

	exists, err := s.repo.Exists(ctx, id)
	if err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	if !exists {
		return errx.E(op, errx.NotFound, fmt.Errorf("link %q not found", id))
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}

	if err := s.cache.Delete(ctx, id); err != nil {
		return errx.E(op, errx.KindOf(err), err)
	}
	return nil
}

func (s *service) publicURL(id string) string {
	return fmt.Sprintf("%s/%s", s.baseURL, id)
}
