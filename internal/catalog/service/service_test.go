package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"product-catalog/internal/catalog"

	"github.com/prometheus/client_golang/prometheus"
)

type mockRepo struct {
	createFn     func(ctx context.Context, p catalog.Product) (catalog.Product, error)
	getFn        func(ctx context.Context, id string) (catalog.Product, error)
	updateFn     func(ctx context.Context, id string, patch catalog.ProductPatch, availability *string, updatedAt time.Time) (catalog.Product, error)
	deleteFn     func(ctx context.Context, id string) error
	findFn       func(ctx context.Context, preds []catalog.Predicate) ([]catalog.Product, error)
	listFn       func(ctx context.Context, pageSize int, cursor string) ([]catalog.Product, string, error)
	featuredFn   func(ctx context.Context, limit int) ([]catalog.Product, error)
	byCategoryFn func(ctx context.Context, category string) ([]catalog.Product, error)
	allFn        func(ctx context.Context) ([]catalog.Product, error)
}

func (m *mockRepo) Create(ctx context.Context, p catalog.Product) (catalog.Product, error) {
	return m.createFn(ctx, p)
}
func (m *mockRepo) GetByID(ctx context.Context, id string) (catalog.Product, error) {
	return m.getFn(ctx, id)
}
func (m *mockRepo) Update(ctx context.Context, id string, patch catalog.ProductPatch, availability *string, updatedAt time.Time) (catalog.Product, error) {
	return m.updateFn(ctx, id, patch, availability, updatedAt)
}
func (m *mockRepo) Delete(ctx context.Context, id string) error {
	return m.deleteFn(ctx, id)
}
func (m *mockRepo) Find(ctx context.Context, preds []catalog.Predicate) ([]catalog.Product, error) {
	return m.findFn(ctx, preds)
}
func (m *mockRepo) List(ctx context.Context, pageSize int, cursor string) ([]catalog.Product, string, error) {
	return m.listFn(ctx, pageSize, cursor)
}
func (m *mockRepo) Featured(ctx context.Context, limit int) ([]catalog.Product, error) {
	return m.featuredFn(ctx, limit)
}
func (m *mockRepo) ByCategory(ctx context.Context, category string) ([]catalog.Product, error) {
	return m.byCategoryFn(ctx, category)
}
func (m *mockRepo) All(ctx context.Context) ([]catalog.Product, error) {
	return m.allFn(ctx)
}

type mockPublisher struct {
	events []catalog.ProductEvent
	err    error
}

func (m *mockPublisher) Publish(_ context.Context, event catalog.ProductEvent) error {
	m.events = append(m.events, event)
	return m.err
}

func newTestService(repo Repository, pub Publisher) *Service {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	return New(
		repo, pub, logger,
		prometheus.NewCounter(prometheus.CounterOpts{Name: "t_created", Help: "t"}),
		prometheus.NewCounter(prometheus.CounterOpts{Name: "t_deleted", Help: "t"}),
		prometheus.NewCounter(prometheus.CounterOpts{Name: "t_stock", Help: "t"}),
	)
}

func defaultRepo() *mockRepo {
	return &mockRepo{
		createFn: func(_ context.Context, p catalog.Product) (catalog.Product, error) {
			p.ID = "p-1"
			return p, nil
		},
		getFn: func(_ context.Context, _ string) (catalog.Product, error) {
			return catalog.Product{ID: "p-1"}, nil
		},
		updateFn: func(_ context.Context, id string, patch catalog.ProductPatch, availability *string, updatedAt time.Time) (catalog.Product, error) {
			p := catalog.Product{ID: id, UpdatedAt: updatedAt}
			if patch.Stock != nil {
				p.Stock = *patch.Stock
			}
			if availability != nil {
				p.Availability = *availability
			}
			return p, nil
		},
		deleteFn:     func(_ context.Context, _ string) error { return nil },
		findFn:       func(_ context.Context, _ []catalog.Predicate) ([]catalog.Product, error) { return nil, nil },
		listFn:       func(_ context.Context, _ int, _ string) ([]catalog.Product, string, error) { return nil, "", nil },
		featuredFn:   func(_ context.Context, _ int) ([]catalog.Product, error) { return nil, nil },
		byCategoryFn: func(_ context.Context, _ string) ([]catalog.Product, error) { return nil, nil },
		allFn:        func(_ context.Context) ([]catalog.Product, error) { return nil, nil },
	}
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }

func validInput() CreateInput {
	return CreateInput{
		Name:        "Hyperion K70",
		Model:       "K70-RGB-MK2",
		Description: "Mechanical keyboard",
		Price:       floatPtr(129.99),
		Category:    "keyboards",
		Brand:       "Hyperion",
		Stock:       intPtr(12),
	}
}

func TestCreateProduct(t *testing.T) {
	tests := []struct {
		name             string
		mutate           func(in *CreateInput)
		wantMissing      string
		wantErr          error
		wantAvailability string
	}{
		{
			name:             "in stock when stock positive",
			mutate:           func(in *CreateInput) {},
			wantAvailability: catalog.AvailabilityInStock,
		},
		{
			name:             "out of stock when stock zero",
			mutate:           func(in *CreateInput) { in.Stock = intPtr(0) },
			wantAvailability: catalog.AvailabilityOutOfStock,
		},
		{
			name:        "missing name reported first",
			mutate:      func(in *CreateInput) { in.Name = "  "; in.Brand = "" },
			wantMissing: "name",
		},
		{
			name:        "missing model",
			mutate:      func(in *CreateInput) { in.Model = "" },
			wantMissing: "model",
		},
		{
			name:        "missing price",
			mutate:      func(in *CreateInput) { in.Price = nil },
			wantMissing: "price",
		},
		{
			name:        "missing stock",
			mutate:      func(in *CreateInput) { in.Stock = nil },
			wantMissing: "stock",
		},
		{
			name:    "negative price rejected",
			mutate:  func(in *CreateInput) { in.Price = floatPtr(-1) },
			wantErr: catalog.ErrInvalidPrice,
		},
		{
			name:    "negative stock rejected",
			mutate:  func(in *CreateInput) { in.Stock = intPtr(-1) },
			wantErr: catalog.ErrInvalidStock,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			pub := &mockPublisher{}
			svc := newTestService(repo, pub)

			in := validInput()
			tt.mutate(&in)

			product, err := svc.CreateProduct(context.Background(), in)

			if tt.wantMissing != "" {
				var verr *catalog.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("want validation error, got %v", err)
				}
				if verr.Field != tt.wantMissing {
					t.Fatalf("want field %q reported, got %q", tt.wantMissing, verr.Field)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.Availability != tt.wantAvailability {
				t.Fatalf("want availability %q, got %q", tt.wantAvailability, product.Availability)
			}
			if product.Rating != 0 || product.ReviewCount != 0 {
				t.Fatalf("want zeroed rating and review count, got %v / %v", product.Rating, product.ReviewCount)
			}
			if product.CreatedAt.IsZero() || product.UpdatedAt.IsZero() {
				t.Fatal("timestamps not stamped")
			}
			if len(pub.events) != 1 || pub.events[0].EventType != catalog.EventCreated {
				t.Fatalf("want %q event, got %v", catalog.EventCreated, pub.events)
			}
		})
	}
}

func TestCreateProduct_PublishFailStillReturnsProduct(t *testing.T) {
	repo := defaultRepo()
	pub := &mockPublisher{err: errors.New("broker down")}
	svc := newTestService(repo, pub)

	product, err := svc.CreateProduct(context.Background(), validInput())
	if err != nil {
		t.Fatalf("expected no error despite publish failure, got: %v", err)
	}
	if product.ID != "p-1" {
		t.Fatalf("want persisted product back, got %+v", product)
	}
}

func TestCreateProduct_TrimsStringFields(t *testing.T) {
	var stored catalog.Product
	repo := defaultRepo()
	repo.createFn = func(_ context.Context, p catalog.Product) (catalog.Product, error) {
		stored = p
		p.ID = "p-1"
		return p, nil
	}
	svc := newTestService(repo, &mockPublisher{})

	in := validInput()
	in.Name = "  Hyperion K70  "
	in.Model = "\tK70-RGB-MK2 "
	in.Description = "  Mechanical gaming keyboard\n"
	in.Category = " keyboards "
	in.Brand = " Hyperion\t"

	if _, err := svc.CreateProduct(context.Background(), in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if stored.Name != "Hyperion K70" ||
		stored.Model != "K70-RGB-MK2" ||
		stored.Description != "Mechanical gaming keyboard" ||
		stored.Category != "keyboards" ||
		stored.Brand != "Hyperion" {
		t.Fatalf("stored fields not trimmed: %+v", stored)
	}
}

func TestUpdateProduct_AvailabilityRecomputedOnlyWithStock(t *testing.T) {
	tests := []struct {
		name             string
		patch            catalog.ProductPatch
		wantAvailability *string
	}{
		{
			name:             "stock zero flips to out of stock",
			patch:            catalog.ProductPatch{Stock: intPtr(0)},
			wantAvailability: func() *string { s := catalog.AvailabilityOutOfStock; return &s }(),
		},
		{
			name:             "stock positive flips to in stock",
			patch:            catalog.ProductPatch{Stock: intPtr(7)},
			wantAvailability: func() *string { s := catalog.AvailabilityInStock; return &s }(),
		},
		{
			name:             "no stock in patch leaves availability alone",
			patch:            catalog.ProductPatch{Name: func() *string { s := "renamed"; return &s }()},
			wantAvailability: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotAvailability *string
			repo := defaultRepo()
			repo.updateFn = func(_ context.Context, id string, patch catalog.ProductPatch, availability *string, updatedAt time.Time) (catalog.Product, error) {
				gotAvailability = availability
				return catalog.Product{ID: id}, nil
			}
			svc := newTestService(repo, &mockPublisher{})

			if _, err := svc.UpdateProduct(context.Background(), "p-1", tt.patch); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if tt.wantAvailability == nil {
				if gotAvailability != nil {
					t.Fatalf("want no availability recompute, got %q", *gotAvailability)
				}
				return
			}
			if gotAvailability == nil || *gotAvailability != *tt.wantAvailability {
				t.Fatalf("want availability %q, got %v", *tt.wantAvailability, gotAvailability)
			}
		})
	}
}

func TestUpdateStock(t *testing.T) {
	tests := []struct {
		name    string
		stock   *int
		wantErr error
	}{
		{name: "valid stock", stock: intPtr(5)},
		{name: "zero stock is valid", stock: intPtr(0)},
		{name: "missing stock", stock: nil, wantErr: catalog.ErrInvalidStock},
		{name: "negative stock", stock: intPtr(-3), wantErr: catalog.ErrInvalidStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			pub := &mockPublisher{}
			svc := newTestService(repo, pub)

			product, err := svc.UpdateStock(context.Background(), "p-1", tt.stock)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("want error %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if product.Availability != catalog.Availability(*tt.stock) {
				t.Fatalf("availability %q inconsistent with stock %d", product.Availability, *tt.stock)
			}
			if len(pub.events) != 1 || pub.events[0].EventType != catalog.EventStockUpdated {
				t.Fatalf("want %q event, got %v", catalog.EventStockUpdated, pub.events)
			}
		})
	}
}

func TestDeleteProduct(t *testing.T) {
	t.Run("not found is passed through", func(t *testing.T) {
		repo := defaultRepo()
		repo.deleteFn = func(_ context.Context, _ string) error { return catalog.ErrNotFound }
		svc := newTestService(repo, &mockPublisher{})

		if err := svc.DeleteProduct(context.Background(), "missing"); !errors.Is(err, catalog.ErrNotFound) {
			t.Fatalf("want ErrNotFound, got %v", err)
		}
	})

	t.Run("success publishes event", func(t *testing.T) {
		repo := defaultRepo()
		pub := &mockPublisher{}
		svc := newTestService(repo, pub)

		if err := svc.DeleteProduct(context.Background(), "p-1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(pub.events) != 1 || pub.events[0].EventType != catalog.EventDeleted {
			t.Fatalf("want %q event, got %v", catalog.EventDeleted, pub.events)
		}
	})
}

func searchFixtures() []catalog.Product {
	return []catalog.Product{
		{ID: "1", Name: "Hyperion K70", Description: "Mechanical keyboard", Brand: "Hyperion", Price: 129.99, Tags: []string{"gaming", "rgb"}},
		{ID: "2", Name: "Viper Mouse", Description: "Lightweight mouse", Brand: "Serpent", Price: 59.99, Tags: []string{"gaming"}},
		{ID: "3", Name: "Plain Pad", Description: "Desk mat", Brand: "Basics", Price: 14.99, Tags: []string{}},
	}
}

func TestSearch(t *testing.T) {
	tests := []struct {
		name    string
		term    string
		filters catalog.SearchFilters
		wantIDs []string
	}{
		{
			name:    "no term and no filters returns the fetched set",
			wantIDs: []string{"1", "2", "3"},
		},
		{
			name:    "term matches name case-insensitively",
			term:    "hyperion",
			wantIDs: []string{"1"},
		},
		{
			name:    "term matches description",
			term:    "lightweight",
			wantIDs: []string{"2"},
		},
		{
			name:    "term matches brand",
			term:    "serpent",
			wantIDs: []string{"2"},
		},
		{
			name:    "term matches tags",
			term:    "gaming",
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "term with no match yields empty, not error",
			term:    "nonexistent",
			wantIDs: []string{},
		},
		{
			name:    "min price inclusive",
			filters: catalog.SearchFilters{MinPrice: floatPtr(59.99)},
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "max price inclusive",
			filters: catalog.SearchFilters{MaxPrice: floatPtr(59.99)},
			wantIDs: []string{"2", "3"},
		},
		{
			name:    "term and price range combine",
			term:    "gaming",
			filters: catalog.SearchFilters{MaxPrice: floatPtr(100)},
			wantIDs: []string{"2"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			repo.findFn = func(_ context.Context, _ []catalog.Predicate) ([]catalog.Product, error) {
				return searchFixtures(), nil
			}
			svc := newTestService(repo, &mockPublisher{})

			got, err := svc.Search(context.Background(), tt.term, tt.filters)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("want %d results, got %d: %+v", len(tt.wantIDs), len(got), got)
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Fatalf("result %d: want id %q, got %q", i, id, got[i].ID)
				}
			}
		})
	}
}

func TestSearch_PredicatesPushedDown(t *testing.T) {
	var gotPreds []catalog.Predicate
	repo := defaultRepo()
	repo.findFn = func(_ context.Context, preds []catalog.Predicate) ([]catalog.Product, error) {
		gotPreds = preds
		return nil, nil
	}
	svc := newTestService(repo, &mockPublisher{})

	featured := true
	_, err := svc.Search(context.Background(), "", catalog.SearchFilters{
		Category: "keyboards",
		Featured: &featured,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(gotPreds) != 2 || gotPreds[0].Field != "category" || gotPreds[1].Field != "featured" {
		t.Fatalf("want category then featured predicates, got %+v", gotPreds)
	}
}

func TestListProducts(t *testing.T) {
	tests := []struct {
		name        string
		limit       int
		items       int
		wantLimit   int
		wantHasMore bool
	}{
		{name: "full batch reports more", limit: 2, items: 2, wantLimit: 2, wantHasMore: true},
		{name: "short batch is the last page", limit: 10, items: 3, wantLimit: 10, wantHasMore: false},
		{name: "invalid limit falls back to default", limit: 0, items: 0, wantLimit: 10, wantHasMore: false},
		{name: "limit capped", limit: 500, items: 0, wantLimit: 100, wantHasMore: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := defaultRepo()
			repo.listFn = func(_ context.Context, pageSize int, _ string) ([]catalog.Product, string, error) {
				if pageSize != tt.wantLimit {
					t.Fatalf("want page size %d, got %d", tt.wantLimit, pageSize)
				}
				items := make([]catalog.Product, tt.items)
				return items, "cursor-token", nil
			}
			svc := newTestService(repo, &mockPublisher{})

			page, err := svc.ListProducts(context.Background(), tt.limit, "")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if page.HasMore != tt.wantHasMore {
				t.Fatalf("want hasMore %v, got %v", tt.wantHasMore, page.HasMore)
			}
			if tt.wantHasMore && page.NextCursor == "" {
				t.Fatal("want next cursor on a full batch")
			}
			if !tt.wantHasMore && page.NextCursor != "" {
				t.Fatalf("want no cursor on the last page, got %q", page.NextCursor)
			}
		})
	}
}

func TestProductStats(t *testing.T) {
	t.Run("empty collection reports zeros", func(t *testing.T) {
		repo := defaultRepo()
		svc := newTestService(repo, &mockPublisher{})

		stats, err := svc.ProductStats(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Total != 0 || stats.AverageRating != 0 || stats.AveragePrice != 0 {
			t.Fatalf("want zeroed stats, got %+v", stats)
		}
		if stats.Categories == nil || stats.Brands == nil {
			t.Fatal("want empty slices, not nil")
		}
	})

	t.Run("aggregates counts, means and distinct sets", func(t *testing.T) {
		repo := defaultRepo()
		repo.allFn = func(_ context.Context) ([]catalog.Product, error) {
			return []catalog.Product{
				{Category: "keyboards", Brand: "Hyperion", Availability: catalog.AvailabilityInStock, Featured: true, RGB: true, Rating: 4, Price: 100},
				{Category: "mice", Brand: "Serpent", Availability: catalog.AvailabilityOutOfStock, Rating: 2, Price: 50},
				{Category: "keyboards", Brand: "Hyperion", Availability: catalog.AvailabilityInStock, Rating: 3, Price: 150},
			}, nil
		}
		svc := newTestService(repo, &mockPublisher{})

		stats, err := svc.ProductStats(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if stats.Total != 3 || stats.InStock != 2 || stats.OutOfStock != 1 {
			t.Fatalf("bad availability counts: %+v", stats)
		}
		if stats.Featured != 1 || stats.WithRGB != 1 {
			t.Fatalf("bad flag counts: %+v", stats)
		}
		if stats.AverageRating != 3 || stats.AveragePrice != 100 {
			t.Fatalf("bad means: %+v", stats)
		}
		if len(stats.Categories) != 2 || len(stats.Brands) != 2 {
			t.Fatalf("bad distinct sets: %+v", stats)
		}
	})
}

func TestProductsByCategory_EmptyCategory(t *testing.T) {
	svc := newTestService(defaultRepo(), &mockPublisher{})
	if _, err := svc.ProductsByCategory(context.Background(), "  "); !errors.Is(err, catalog.ErrEmptyCategory) {
		t.Fatalf("want ErrEmptyCategory, got %v", err)
	}
}

func TestFeaturedProducts_LimitIsSix(t *testing.T) {
	repo := defaultRepo()
	repo.featuredFn = func(_ context.Context, limit int) ([]catalog.Product, error) {
		if limit != 6 {
			t.Fatalf("want limit 6, got %d", limit)
		}
		return nil, nil
	}
	svc := newTestService(repo, &mockPublisher{})
	if _, err := svc.FeaturedProducts(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
