package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/dentaldesk/dentaldesk/internal/backend"
	"github.com/dentaldesk/dentaldesk/internal/shared"
)

// CategoriesCacheKey holds the shared category list.
const CategoriesCacheKey = "catalog:categories"

// API is the subset of backend.Client the catalog needs.
type API interface {
	Get(ctx context.Context, path string) (*backend.Envelope, error)
	Post(ctx context.Context, path string, body any) (*backend.Envelope, error)
	Delete(ctx context.Context, path string) (*backend.Envelope, error)
}

// Service wraps the catalog endpoints.
type Service struct {
	api      API
	redis    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
	group    singleflight.Group
}

// NewService constructs the catalog service. redis may be nil, which disables
// the category cache.
func NewService(api API, client *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if cacheTTL <= 0 {
		cacheTTL = 30 * time.Minute
	}
	return &Service{api: api, redis: client, cacheTTL: cacheTTL, logger: logger}
}

// ListProducts fetches every product.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	env, err := s.api.Get(ctx, "/products")
	if err != nil {
		return nil, err
	}
	return backend.DecodeList[Product](env)
}

// GetProduct fetches one product.
func (s *Service) GetProduct(ctx context.Context, id string) (Product, error) {
	env, err := s.api.Get(ctx, "/product/"+url.PathEscape(id))
	if err != nil {
		var apiErr *backend.APIError
		if errors.As(err, &apiErr) && apiErr.NotFound() {
			return Product{}, fmt.Errorf("product %s: %w", id, shared.ErrNotFound)
		}
		return Product{}, err
	}
	return backend.DecodeObject[Product](env)
}

// CreateProduct posts a new product.
func (s *Service) CreateProduct(ctx context.Context, draft ProductDraft) error {
	_, err := s.api.Post(ctx, "/createproduct", draft.payload())
	return err
}

// UpdateProduct posts the edited product.
func (s *Service) UpdateProduct(ctx context.Context, id string, draft ProductDraft) error {
	_, err := s.api.Post(ctx, "/updateproduct/"+url.PathEscape(id), draft.payload())
	return err
}

// DeleteProduct removes a product.
func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	_, err := s.api.Delete(ctx, "/deleteproduct/"+url.PathEscape(id))
	return err
}

// Categories returns the cached category list, filling it from the backend
// on a miss. Concurrent misses share one backend call.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if cached, ok := s.cachedCategories(ctx); ok {
		return cached, nil
	}
	v, err, _ := s.group.Do(CategoriesCacheKey, func() (any, error) {
		return s.RefreshCategories(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]Category), nil
}

// RefreshCategories fetches the categories and rewrites the cache.
func (s *Service) RefreshCategories(ctx context.Context) ([]Category, error) {
	env, err := s.api.Get(ctx, "/categories")
	if err != nil {
		return nil, err
	}
	categories, err := backend.DecodeList[Category](env)
	if err != nil {
		return nil, err
	}
	if s.redis != nil {
		payload, err := json.Marshal(categories)
		if err == nil {
			err = s.redis.Set(ctx, CategoriesCacheKey, payload, s.cacheTTL).Err()
		}
		if err != nil {
			s.logger.Warn("cache categories", slog.Any("error", err))
		}
	}
	return categories, nil
}

func (s *Service) cachedCategories(ctx context.Context) ([]Category, bool) {
	if s.redis == nil {
		return nil, false
	}
	raw, err := s.redis.Get(ctx, CategoriesCacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("read category cache", slog.Any("error", err))
		}
		return nil, false
	}
	var categories []Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, false
	}
	return categories, true
}
