// Package strategy stores strategies authored by the user.
package strategy

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"bet-ledger/internal/domain"
	"bet-ledger/internal/observability"
	"bet-ledger/internal/storage"
)

// catalogSchema is the persisted layout of user strategies.
// Version 0 records carry numeric ids.
var catalogSchema = storage.Schema{
	Key:     storage.KeyStrategies,
	Version: 1,
	Migrations: map[int]storage.Migration{
		0: migrateCatalogV0,
	},
}

// CatalogOptions contains configuration for creating a Catalog.
type CatalogOptions struct {
	Store   storage.Store
	Logger  zerolog.Logger
	Metrics *observability.Metrics
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// Catalog owns the user strategy collection.
type Catalog struct {
	store   storage.Store
	logger  zerolog.Logger
	metrics *observability.Metrics
	now     func() time.Time
	mu      sync.Mutex
}

// NewCatalog creates a strategy catalog over opts.Store.
func NewCatalog(opts CatalogOptions) *Catalog {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Catalog{
		store:   opts.Store,
		logger:  opts.Logger.With().Str("component", "strategy").Logger(),
		metrics: opts.Metrics,
		now:     now,
	}
}

// Create appends a strategy. Every field is required.
func (c *Catalog) Create(ctx context.Context, title, description, content, image string) (*domain.UserStrategy, error) {
	for _, f := range []struct{ name, v string }{
		{"title", title},
		{"description", description},
		{"content", content},
		{"image", image},
	} {
		if strings.TrimSpace(f.v) == "" {
			c.metrics.RecordValidationError("create_strategy")
			return nil, &domain.ValidationError{Field: f.name, Reason: "value is required"}
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("generate strategy id: %w", err)
	}
	s := domain.UserStrategy{
		ID:          id.String(),
		Title:       title,
		Description: description,
		Content:     content,
		Image:       image,
		CreatedAt:   c.now().UTC().Format(time.RFC3339),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load(ctx)
	if err != nil {
		return nil, err
	}
	all = append(all, s)
	if err := storage.Save(ctx, c.store, catalogSchema, all); err != nil {
		return nil, fmt.Errorf("save strategies: %w", err)
	}

	c.metrics.RecordStrategyCreated()
	c.logger.Info().Str("strategy_id", s.ID).Str("title", title).Msg("strategy created")
	return &s, nil
}

// List returns all strategies in creation order.
func (c *Catalog) List(ctx context.Context) ([]domain.UserStrategy, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.load(ctx)
}

// Get returns the strategy with id.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.UserStrategy, error) {
	all, err := c.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, domain.NotFoundError("strategy", id)
}

// Delete removes the strategy with id.
func (c *Catalog) Delete(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	all, err := c.load(ctx)
	if err != nil {
		return err
	}

	kept := all[:0]
	for _, s := range all {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	if len(kept) == len(all) {
		return domain.NotFoundError("strategy", id)
	}

	if err := storage.Save(ctx, c.store, catalogSchema, kept); err != nil {
		return fmt.Errorf("save strategies: %w", err)
	}
	c.metrics.RecordStrategyDeleted()
	c.logger.Info().Str("strategy_id", id).Msg("strategy deleted")
	return nil
}

func (c *Catalog) load(ctx context.Context) ([]domain.UserStrategy, error) {
	var all []domain.UserStrategy
	if _, err := storage.Load(ctx, c.store, catalogSchema, &all); err != nil {
		return nil, fmt.Errorf("load strategies: %w", err)
	}
	if all == nil {
		all = []domain.UserStrategy{}
	}
	return all, nil
}

// legacyStrategy accepts both numeric and string ids.
type legacyStrategy struct {
	ID          json.RawMessage `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Content     string          `json:"content"`
	Image       string          `json:"image"`
}

func migrateCatalogV0(data json.RawMessage) (json.RawMessage, error) {
	var legacy []legacyStrategy
	if err := json.Unmarshal(data, &legacy); err != nil {
		return nil, fmt.Errorf("decode legacy strategies: %v: %w", err, storage.ErrCorruptRecord)
	}

	out := make([]domain.UserStrategy, len(legacy))
	for i, s := range legacy {
		id := string(s.ID)
		var quoted string
		if err := json.Unmarshal(s.ID, &quoted); err == nil {
			id = quoted
		}
		out[i] = domain.UserStrategy{
			ID:          id,
			Title:       s.Title,
			Description: s.Description,
			Content:     s.Content,
			Image:       s.Image,
		}
	}
	return json.Marshal(out)
}
