package catalog

import (
	"errors"
	"time"
)

var (
	ErrNotFound      = errors.New("product not found")
	ErrInvalidStock  = errors.New("stock must be a number greater than or equal to 0")
	ErrInvalidPrice  = errors.New("price must be a number greater than or equal to 0")
	ErrEmptyCategory = errors.New("category is required")
	ErrBadCursor     = errors.New("malformed pagination cursor")
)

// ValidationError names the first missing or malformed field of a create request.
type ValidationError struct {
	Field string
}

func (e *ValidationError) Error() string {
	return "field " + e.Field + " is required"
}

const (
	EventsQueue       = "catalog.events"
	EventCreated      = "product_created"
	EventDeleted      = "product_deleted"
	EventStockUpdated = "stock_updated"
)

const (
	AvailabilityInStock    = "en stock"
	AvailabilityOutOfStock = "sin stock"
)

// Availability derives the product availability label from a stock count.
// It is the only place the derivation lives; callers must never set the
// label directly.
func Availability(stock int) string {
	if stock > 0 {
		return AvailabilityInStock
	}
	return AvailabilityOutOfStock
}

type Product struct {
	ID           string    `json:"id" example:"c1a76f41-25c8-4e27-a0b5-6a9d4f2f3b1e"`
	Name         string    `json:"name" example:"Hyperion K70"`
	Model        string    `json:"model" example:"K70-RGB-MK2"`
	Description  string    `json:"description" example:"Mechanical gaming keyboard"`
	Price        float64   `json:"price" example:"129.99"`
	Category     string    `json:"category" example:"keyboards"`
	Brand        string    `json:"brand" example:"Hyperion"`
	Stock        int       `json:"stock" example:"12"`
	Availability string    `json:"availability" example:"en stock"`
	Featured     bool      `json:"featured"`
	RGB          bool      `json:"rgb"`
	Rating       float64   `json:"rating" example:"4.5"`
	ReviewCount  int       `json:"review_count" example:"23"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at" example:"2026-02-24T12:00:00Z"`
	UpdatedAt    time.Time `json:"updated_at" example:"2026-02-24T12:00:00Z"`
}

// ProductPatch carries the optional fields of a partial update. Nil means
// "leave unchanged".
type ProductPatch struct {
	Name        *string   `json:"name"`
	Model       *string   `json:"model"`
	Description *string   `json:"description"`
	Price       *float64  `json:"price"`
	Category    *string   `json:"category"`
	Brand       *string   `json:"brand"`
	Stock       *int      `json:"stock"`
	Featured    *bool     `json:"featured"`
	RGB         *bool     `json:"rgb"`
	Rating      *float64  `json:"rating"`
	ReviewCount *int      `json:"review_count"`
	Tags        *[]string `json:"tags"`
}

type ProductEvent struct {
	EventType string    `json:"event_type"`
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Stock     *int      `json:"stock,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Stats is the aggregate view produced by a full collection scan.
type Stats struct {
	Total         int      `json:"total"`
	InStock       int      `json:"in_stock"`
	OutOfStock    int      `json:"out_of_stock"`
	Featured      int      `json:"featured"`
	WithRGB       int      `json:"with_rgb"`
	AverageRating float64  `json:"average_rating"`
	AveragePrice  float64  `json:"average_price"`
	Categories    []string `json:"categories"`
	Brands        []string `json:"brands"`
}

// Page is one batch of a cursor-paginated listing. HasMore is a heuristic:
// it is true iff the batch came back full, so the last page of a collection
// whose size is an exact multiple of the page size reports one extra
// (empty) page. An exact answer would need a count query per page.
type Page struct {
	Items      []Product `json:"items"`
	NextCursor string    `json:"next_cursor,omitempty"`
	HasMore    bool      `json:"has_more"`
}
