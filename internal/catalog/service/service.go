package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"product-catalog/internal/catalog"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	featuredLimit   = 6
)

type Repository interface {
	Create(ctx context.Context, p catalog.Product) (catalog.Product, error)
	GetByID(ctx context.Context, id string) (catalog.Product, error)
	Update(ctx context.Context, id string, patch catalog.ProductPatch, availability *string, updatedAt time.Time) (catalog.Product, error)
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, preds []catalog.Predicate) ([]catalog.Product, error)
	List(ctx context.Context, pageSize int, cursor string) ([]catalog.Product, string, error)
	Featured(ctx context.Context, limit int) ([]catalog.Product, error)
	ByCategory(ctx context.Context, category string) ([]catalog.Product, error)
	All(ctx context.Context) ([]catalog.Product, error)
}

type Publisher interface {
	Publish(ctx context.Context, event catalog.ProductEvent) error
}

type Service struct {
	repo         Repository
	publisher    Publisher
	logger       *slog.Logger
	created      prometheus.Counter
	deleted      prometheus.Counter
	stockUpdates prometheus.Counter
}

func New(repo Repository, publisher Publisher, logger *slog.Logger, created, deleted, stockUpdates prometheus.Counter) *Service {
	return &Service{
		repo:         repo,
		publisher:    publisher,
		logger:       logger,
		created:      created,
		deleted:      deleted,
		stockUpdates: stockUpdates,
	}
}

// CreateInput carries the fields of a product-creation request. Pointer
// fields distinguish "absent" from zero.
type CreateInput struct {
	Name        string
	Model       string
	Description string
	Price       *float64
	Category    string
	Brand       string
	Stock       *int
	Featured    bool
	RGB         bool
	Tags        []string
}

// requiredFields is the single declarative schema for product creation.
// Order determines which missing field gets reported first.
var requiredFields = []struct {
	name    string
	missing func(in CreateInput) bool
}{
	{"name", func(in CreateInput) bool { return strings.TrimSpace(in.Name) == "" }},
	{"model", func(in CreateInput) bool { return strings.TrimSpace(in.Model) == "" }},
	{"description", func(in CreateInput) bool { return strings.TrimSpace(in.Description) == "" }},
	{"price", func(in CreateInput) bool { return in.Price == nil }},
	{"category", func(in CreateInput) bool { return strings.TrimSpace(in.Category) == "" }},
	{"brand", func(in CreateInput) bool { return strings.TrimSpace(in.Brand) == "" }},
	{"stock", func(in CreateInput) bool { return in.Stock == nil }},
}

func validateCreate(in CreateInput) error {
	for _, f := range requiredFields {
		if f.missing(in) {
			return &catalog.ValidationError{Field: f.name}
		}
	}
	if *in.Price < 0 {
		return catalog.ErrInvalidPrice
	}
	if *in.Stock < 0 {
		return catalog.ErrInvalidStock
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, in CreateInput) (catalog.Product, error) {
	if err := validateCreate(in); err != nil {
		return catalog.Product{}, err
	}

	now := time.Now().UTC()
	product := catalog.Product{
		Name:         strings.TrimSpace(in.Name),
		Model:        strings.TrimSpace(in.Model),
		Description:  strings.TrimSpace(in.Description),
		Price:        *in.Price,
		Category:     strings.TrimSpace(in.Category),
		Brand:        strings.TrimSpace(in.Brand),
		Stock:        *in.Stock,
		Availability: catalog.Availability(*in.Stock),
		Featured:     in.Featured,
		RGB:          in.RGB,
		Rating:       0,
		ReviewCount:  0,
		Tags:         in.Tags,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if product.Tags == nil {
		product.Tags = []string{}
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("repo create: %w", err)
	}

	s.publish(ctx, catalog.ProductEvent{
		EventType: catalog.EventCreated,
		ProductID: created.ID,
		Name:      created.Name,
		Timestamp: time.Now().UTC(),
	})

	s.created.Inc()
	return created, nil
}

func (s *Service) GetProduct(ctx context.Context, id string) (catalog.Product, error) {
	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return catalog.Product{}, fmt.Errorf("repo get: %w", err)
	}
	return product, nil
}

// UpdateProduct merges the patch onto the stored record. Availability is
// recomputed only when the patch includes stock.
func (s *Service) UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (catalog.Product, error) {
	if patch.Stock != nil && *patch.Stock < 0 {
		return catalog.Product{}, catalog.ErrInvalidStock
	}
	if patch.Price != nil && *patch.Price < 0 {
		return catalog.Product{}, catalog.ErrInvalidPrice
	}

	var availability *string
	if patch.Stock != nil {
		a := catalog.Availability(*patch.Stock)
		availability = &a
	}

	updated, err := s.repo.Update(ctx, id, patch, availability, time.Now().UTC())
	if err != nil {
		return catalog.Product{}, fmt.Errorf("repo update: %w", err)
	}
	return updated, nil
}

func (s *Service) UpdateStock(ctx context.Context, id string, stock *int) (catalog.Product, error) {
	if stock == nil || *stock < 0 {
		return catalog.Product{}, catalog.ErrInvalidStock
	}

	updated, err := s.UpdateProduct(ctx, id, catalog.ProductPatch{Stock: stock})
	if err != nil {
		return catalog.Product{}, err
	}

	s.publish(ctx, catalog.ProductEvent{
		EventType: catalog.EventStockUpdated,
		ProductID: updated.ID,
		Name:      updated.Name,
		Stock:     stock,
		Timestamp: time.Now().UTC(),
	})

	s.stockUpdates.Inc()
	return updated, nil
}

func (s *Service) DeleteProduct(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	s.publish(ctx, catalog.ProductEvent{
		EventType: catalog.EventDeleted,
		ProductID: id,
		Timestamp: time.Now().UTC(),
	})

	s.deleted.Inc()
	return nil
}

// Search pushes the equality predicates down to the store, then filters
// the fetched set locally by free-text term and price bounds. The store
// has no text index, so term matching stays client-side.
func (s *Service) Search(ctx context.Context, term string, filters catalog.SearchFilters) ([]catalog.Product, error) {
	products, err := s.repo.Find(ctx, filters.Predicates())
	if err != nil {
		return nil, fmt.Errorf("repo find: %w", err)
	}

	if term != "" {
		products = filterByTerm(products, term)
	}
	if filters.MinPrice != nil {
		products = filterPrice(products, func(p float64) bool { return p >= *filters.MinPrice })
	}
	if filters.MaxPrice != nil {
		products = filterPrice(products, func(p float64) bool { return p <= *filters.MaxPrice })
	}

	return products, nil
}

// filterByTerm keeps products whose name, description, brand, or any tag
// contains the term, case-insensitively.
func filterByTerm(products []catalog.Product, term string) []catalog.Product {
	needle := strings.ToLower(term)
	matched := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) ||
			strings.Contains(strings.ToLower(p.Brand), needle) ||
			tagMatch(p.Tags, needle) {
			matched = append(matched, p)
		}
	}
	return matched
}

func tagMatch(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func filterPrice(products []catalog.Product, keep func(float64) bool) []catalog.Product {
	matched := make([]catalog.Product, 0, len(products))
	for _, p := range products {
		if keep(p.Price) {
			matched = append(matched, p)
		}
	}
	return matched
}

// ListProducts returns one cursor page, newest first. HasMore is the
// full-batch heuristic; see catalog.Page.
func (s *Service) ListProducts(ctx context.Context, limit int, cursor string) (catalog.Page, error) {
	if limit < 1 {
		limit = defaultPageSize
	}
	if limit > maxPageSize {
		limit = maxPageSize
	}

	items, next, err := s.repo.List(ctx, limit, cursor)
	if err != nil {
		return catalog.Page{}, fmt.Errorf("repo list: %w", err)
	}

	page := catalog.Page{
		Items:   items,
		HasMore: len(items) == limit,
	}
	if page.HasMore {
		page.NextCursor = next
	}
	return page, nil
}

func (s *Service) FeaturedProducts(ctx context.Context) ([]catalog.Product, error) {
	products, err := s.repo.Featured(ctx, featuredLimit)
	if err != nil {
		return nil, fmt.Errorf("repo featured: %w", err)
	}
	return products, nil
}

func (s *Service) ProductsByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	if strings.TrimSpace(category) == "" {
		return nil, catalog.ErrEmptyCategory
	}

	products, err := s.repo.ByCategory(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("repo by category: %w", err)
	}
	return products, nil
}

// ProductStats aggregates the whole collection. An empty collection
// reports zero averages rather than NaN.
func (s *Service) ProductStats(ctx context.Context) (catalog.Stats, error) {
	products, err := s.repo.All(ctx)
	if err != nil {
		return catalog.Stats{}, fmt.Errorf("repo all: %w", err)
	}

	stats := catalog.Stats{
		Total:      len(products),
		Categories: []string{},
		Brands:     []string{},
	}

	categories := map[string]struct{}{}
	brands := map[string]struct{}{}
	var ratingSum, priceSum float64

	for _, p := range products {
		if p.Availability == catalog.AvailabilityInStock {
			stats.InStock++
		} else {
			stats.OutOfStock++
		}
		if p.Featured {
			stats.Featured++
		}
		if p.RGB {
			stats.WithRGB++
		}
		ratingSum += p.Rating
		priceSum += p.Price
		categories[p.Category] = struct{}{}
		brands[p.Brand] = struct{}{}
	}

	if stats.Total > 0 {
		stats.AverageRating = ratingSum / float64(stats.Total)
		stats.AveragePrice = priceSum / float64(stats.Total)
	}

	for c := range categories {
		stats.Categories = append(stats.Categories, c)
	}
	for b := range brands {
		stats.Brands = append(stats.Brands, b)
	}
	sort.Strings(stats.Categories)
	sort.Strings(stats.Brands)

	return stats, nil
}

func (s *Service) publish(ctx context.Context, event catalog.ProductEvent) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Error("publish catalog event failed",
			"event_type", event.EventType,
			"product_id", event.ProductID,
			"error", err,
		)
	}
}
