// Package services holds the paste lifecycle logic: creation with input
// validation and id generation, and view consumption against the expiry and
// view-count limits.
package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pastebin-lite/pastebin-lite/config"
	"github.com/pastebin-lite/pastebin-lite/internal/clock"
	"github.com/pastebin-lite/pastebin-lite/internal/metrics"
	"github.com/pastebin-lite/pastebin-lite/internal/slug"
	"github.com/pastebin-lite/pastebin-lite/models"
	"github.com/pastebin-lite/pastebin-lite/storage"
)

// ErrInvalidInput marks a create request rejected before touching storage.
var ErrInvalidInput = errors.New("invalid input")

// createAttempts bounds id regeneration on the (astronomically rare)
// duplicate-id collision.
const createAttempts = 3

// NotAvailableError is returned by ViewPaste for every paste-gone condition.
// The reason is kept for logs and metrics; callers present all reasons as
// the same "not available" outcome.
type NotAvailableError struct {
	Reason models.Reason
}

func (e *NotAvailableError) Error() string {
	return fmt.Sprintf("paste not available: %s", e.Reason)
}

// PasteService orchestrates paste creation and viewing on top of a
// PasteStore.
type PasteService struct {
	store  storage.PasteStore
	gen    *slug.Generator
	clk    clock.Clock
	config *config.Config
	logger *slog.Logger
}

// NewPasteService creates a paste service with explicit dependencies.
func NewPasteService(store storage.PasteStore, cfg *config.Config, clk clock.Clock, logger *slog.Logger) *PasteService {
	return &PasteService{
		store:  store,
		gen:    slug.New(cfg.SlugLength),
		clk:    clk,
		config: cfg,
		logger: logger,
	}
}

// CreatePasteRequest carries the caller's create input. Nil TTLSeconds means
// no time-based expiry; nil MaxViews means unlimited views.
type CreatePasteRequest struct {
	Content    string
	TTLSeconds *int64
	MaxViews   *int
}

// CreatePaste validates the request, stamps the expiry, generates a fresh id
// and persists the paste. Validation failures are reported as ErrInvalidInput
// before any storage access.
func (s *PasteService) CreatePaste(ctx context.Context, req CreatePasteRequest) (*models.Paste, error) {
	if err := validateCreateRequest(req, s.config.MaxContentBytes); err != nil {
		return nil, err
	}

	now := s.clk.Now()
	var expiresAt *time.Time
	if req.TTLSeconds != nil {
		t := now.Add(time.Duration(*req.TTLSeconds) * time.Second)
		expiresAt = &t
	}

	for attempt := 0; attempt < createAttempts; attempt++ {
		id, err := s.gen.Generate()
		if err != nil {
			return nil, fmt.Errorf("failed to generate paste id: %w", err)
		}

		paste := &models.Paste{
			ID:        id,
			Content:   req.Content,
			CreatedAt: now,
			ExpiresAt: expiresAt,
			MaxViews:  req.MaxViews,
			ViewCount: 0,
		}

		err = s.store.Create(ctx, paste)
		if err == nil {
			return paste, nil
		}
		if errors.Is(err, storage.ErrDuplicateID) {
			s.logger.Warn("paste id collision, regenerating", "id", id, "attempt", attempt+1)
			metrics.IDCollisions.Inc()
			continue
		}
		return nil, fmt.Errorf("failed to store paste: %w", err)
	}
	// Wrapping ErrDuplicateID lets callers tell id exhaustion apart from a
	// storage transport failure.
	return nil, fmt.Errorf("failed to generate a unique paste id after %d attempts: %w", createAttempts, storage.ErrDuplicateID)
}

// ViewResult is the outcome of a successful view. RemainingViews and
// ExpiresAt are nil when the respective limit is not set.
type ViewResult struct {
	Content        string
	RemainingViews *int
	ExpiresAt      *time.Time
}

// ViewPaste serves one content-consuming read at time now. The availability
// pre-check never mutates; the store's conditional consume then performs the
// availability check and the increment as one atomic step, so the view
// budget can never be overrun even when the pre-check races with concurrent
// viewers.
func (s *PasteService) ViewPaste(ctx context.Context, id string, now time.Time) (*ViewResult, error) {
	paste, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotAvailableError{Reason: models.ReasonNotFound}
		}
		return nil, fmt.Errorf("failed to fetch paste: %w", err)
	}

	if avail := models.CheckAvailability(paste, now); !avail.Available {
		return nil, &NotAvailableError{Reason: avail.Reason}
	}

	updated, err := s.store.ConsumeView(ctx, id, now)
	if err != nil {
		if storage.IsUnavailable(err) {
			return nil, &NotAvailableError{Reason: storage.ReasonFor(err)}
		}
		return nil, fmt.Errorf("failed to consume view: %w", err)
	}

	return &ViewResult{
		Content:        updated.Content,
		RemainingViews: updated.RemainingViews(),
		ExpiresAt:      updated.ExpiresAt,
	}, nil
}

// GetPaste fetches paste metadata without consuming a view.
func (s *PasteService) GetPaste(ctx context.Context, id string) (*models.Paste, error) {
	paste, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, &NotAvailableError{Reason: models.ReasonNotFound}
		}
		return nil, fmt.Errorf("failed to fetch paste: %w", err)
	}
	return paste, nil
}

// DeletePaste removes a paste; deleting an unknown id succeeds.
func (s *PasteService) DeletePaste(ctx context.Context, id string) error {
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete paste: %w", err)
	}
	return nil
}

// Now exposes the service clock, so callers resolving the effective request
// time share the same source.
func (s *PasteService) Now() time.Time {
	return s.clk.Now()
}

func validateCreateRequest(req CreatePasteRequest, maxContentBytes int64) error {
	// Whitespace-only content is as useless as none; the stored content is
	// still the caller's verbatim bytes, only the check trims.
	if strings.TrimSpace(req.Content) == "" {
		return fmt.Errorf("%w: content is required and must be non-empty", ErrInvalidInput)
	}
	if int64(len(req.Content)) > maxContentBytes {
		return fmt.Errorf("%w: content exceeds maximum size of %d bytes", ErrInvalidInput, maxContentBytes)
	}
	if req.TTLSeconds != nil && *req.TTLSeconds < 1 {
		return fmt.Errorf("%w: ttl_seconds must be an integer >= 1", ErrInvalidInput)
	}
	if req.MaxViews != nil && *req.MaxViews < 1 {
		return fmt.Errorf("%w: max_views must be an integer >= 1", ErrInvalidInput)
	}
	return nil
}
