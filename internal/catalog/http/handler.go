package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"product-catalog/internal/api"
	"product-catalog/internal/catalog"
	"product-catalog/internal/catalog/service"

	"github.com/gin-gonic/gin"
)

const (
	defaultPage  = 1
	defaultLimit = 10

	internalErrorMessage = "internal server error"
)

type CatalogService interface {
	CreateProduct(ctx context.Context, in service.CreateInput) (catalog.Product, error)
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
	UpdateProduct(ctx context.Context, id string, patch catalog.ProductPatch) (catalog.Product, error)
	UpdateStock(ctx context.Context, id string, stock *int) (catalog.Product, error)
	DeleteProduct(ctx context.Context, id string) error
	Search(ctx context.Context, term string, filters catalog.SearchFilters) ([]catalog.Product, error)
	ListProducts(ctx context.Context, limit int, cursor string) (catalog.Page, error)
	FeaturedProducts(ctx context.Context) ([]catalog.Product, error)
	ProductsByCategory(ctx context.Context, category string) ([]catalog.Product, error)
	ProductStats(ctx context.Context) (catalog.Stats, error)
}

type Handler struct {
	service CatalogService
	logger  *slog.Logger
}

func NewHandler(svc CatalogService, logger *slog.Logger) *Handler {
	return &Handler{service: svc, logger: logger}
}

type createProductRequest struct {
	Name        string   `json:"name" example:"Hyperion K70"`
	Model       string   `json:"model" example:"K70-RGB-MK2"`
	Description string   `json:"description" example:"Mechanical gaming keyboard"`
	Price       *float64 `json:"price" example:"129.99"`
	Category    string   `json:"category" example:"keyboards"`
	Brand       string   `json:"brand" example:"Hyperion"`
	Stock       *int     `json:"stock" example:"12"`
	Featured    bool     `json:"featured"`
	RGB         bool     `json:"rgb"`
	Tags        []string `json:"tags"`
}

type updateStockRequest struct {
	Stock *int `json:"stock" example:"5"`
}

type paginationMeta struct {
	Page       int    `json:"page" example:"1"`
	Limit      int    `json:"limit" example:"10"`
	HasMore    bool   `json:"has_more"`
	NextCursor string `json:"next_cursor,omitempty"`
}

// ListProducts godoc
// @Summary      List products, newest first
// @Tags         products
// @Produce      json
// @Param        page    query     int     false  "Page number (echoed back)"  default(1)
// @Param        limit   query     int     false  "Page size"                  default(10)
// @Param        cursor  query     string  false  "Opaque continuation cursor"
// @Success      200     {object}  api.Response
// @Failure      400     {object}  api.Response
// @Failure      500     {object}  api.Response
// @Router       /api/products [get]
func (h *Handler) ListProducts(c *gin.Context) {
	page := parseQueryInt(c.Query("page"), defaultPage)
	limit := parseQueryInt(c.Query("limit"), defaultLimit)
	cursor := c.Query("cursor")

	result, err := h.service.ListProducts(c.Request.Context(), limit, cursor)
	if err != nil {
		if errors.Is(err, catalog.ErrBadCursor) {
			api.Error(c, http.StatusBadRequest, catalog.ErrBadCursor.Error())
			return
		}
		h.logger.Error("list products failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKPage(c, http.StatusOK, result.Items, paginationMeta{
		Page:       page,
		Limit:      limit,
		HasMore:    result.HasMore,
		NextCursor: result.NextCursor,
	})
}

// SearchProducts godoc
// @Summary      Filtered product search
// @Tags         products
// @Produce      json
// @Param        q               query     string  false  "Free-text term"
// @Param        categoria       query     string  false  "Category equality filter"
// @Param        marca           query     string  false  "Brand equality filter"
// @Param        disponibilidad  query     string  false  "Availability equality filter"
// @Param        destacado       query     bool    false  "Featured flag filter"
// @Param        rgb             query     bool    false  "RGB flag filter"
// @Param        minPrice        query     number  false  "Minimum price, inclusive"
// @Param        maxPrice        query     number  false  "Maximum price, inclusive"
// @Success      200             {object}  api.Response
// @Failure      500             {object}  api.Response
// @Router       /api/products/search [get]
func (h *Handler) SearchProducts(c *gin.Context) {
	filters := catalog.SearchFilters{
		Category:     c.Query("categoria"),
		Brand:        c.Query("marca"),
		Availability: c.Query("disponibilidad"),
		Featured:     catalog.ParseBool(c.Query("destacado")),
		RGB:          catalog.ParseBool(c.Query("rgb")),
		MinPrice:     catalog.ParsePrice(c.Query("minPrice")),
		MaxPrice:     catalog.ParsePrice(c.Query("maxPrice")),
	}

	products, err := h.service.Search(c.Request.Context(), c.Query("q"), filters)
	if err != nil {
		h.logger.Error("search products failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKList(c, http.StatusOK, products, len(products))
}

// FeaturedProducts godoc
// @Summary      Top featured products by rating
// @Tags         products
// @Produce      json
// @Success      200  {object}  api.Response
// @Failure      500  {object}  api.Response
// @Router       /api/products/featured [get]
func (h *Handler) FeaturedProducts(c *gin.Context) {
	products, err := h.service.FeaturedProducts(c.Request.Context())
	if err != nil {
		h.logger.Error("featured products failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKList(c, http.StatusOK, products, len(products))
}

// ProductStats godoc
// @Summary      Aggregate catalog statistics
// @Tags         products
// @Produce      json
// @Success      200  {object}  api.Response
// @Failure      500  {object}  api.Response
// @Router       /api/products/stats [get]
func (h *Handler) ProductStats(c *gin.Context) {
	stats, err := h.service.ProductStats(c.Request.Context())
	if err != nil {
		h.logger.Error("product stats failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OK(c, http.StatusOK, stats)
}

// ProductsByCategory godoc
// @Summary      Products in a category, by rating
// @Tags         products
// @Produce      json
// @Param        categoria  path      string  true  "Category"
// @Success      200        {object}  api.Response
// @Failure      400        {object}  api.Response
// @Failure      500        {object}  api.Response
// @Router       /api/products/category/{categoria} [get]
func (h *Handler) ProductsByCategory(c *gin.Context) {
	products, err := h.service.ProductsByCategory(c.Request.Context(), c.Param("categoria"))
	if err != nil {
		if errors.Is(err, catalog.ErrEmptyCategory) {
			api.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("products by category failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKList(c, http.StatusOK, products, len(products))
}

// GetProduct godoc
// @Summary      Fetch a single product
// @Tags         products
// @Produce      json
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Failure      500  {object}  api.Response
// @Router       /api/products/{id} [get]
func (h *Handler) GetProduct(c *gin.Context) {
	product, err := h.service.GetProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			api.Error(c, http.StatusNotFound, catalog.ErrNotFound.Error())
			return
		}
		h.logger.Error("get product failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OK(c, http.StatusOK, product)
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProductRequest  true  "Product data"
// @Success      201   {object}  api.Response
// @Failure      400   {object}  api.Response
// @Failure      401   {object}  api.Response
// @Failure      500   {object}  api.Response
// @Router       /api/products [post]
func (h *Handler) CreateProduct(c *gin.Context) {
	var req createProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.service.CreateProduct(c.Request.Context(), service.CreateInput{
		Name:        req.Name,
		Model:       req.Model,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Brand:       req.Brand,
		Stock:       req.Stock,
		Featured:    req.Featured,
		RGB:         req.RGB,
		Tags:        req.Tags,
	})
	if err != nil {
		var verr *catalog.ValidationError
		if errors.As(err, &verr) || errors.Is(err, catalog.ErrInvalidStock) || errors.Is(err, catalog.ErrInvalidPrice) {
			api.Error(c, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("create product failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKWithMessage(c, http.StatusCreated, "product created successfully", product)
}

// UpdateProduct godoc
// @Summary      Merge fields onto an existing product
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                 true  "Product ID"
// @Param        body  body      catalog.ProductPatch   true  "Fields to update"
// @Success      200   {object}  api.Response
// @Failure      400   {object}  api.Response
// @Failure      401   {object}  api.Response
// @Failure      404   {object}  api.Response
// @Failure      500   {object}  api.Response
// @Router       /api/products/{id} [put]
func (h *Handler) UpdateProduct(c *gin.Context) {
	var patch catalog.ProductPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		api.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.service.UpdateProduct(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		h.respondMutationError(c, err, "update product failed")
		return
	}

	api.OKWithMessage(c, http.StatusOK, "product updated successfully", product)
}

// UpdateStock godoc
// @Summary      Update stock and derived availability
// @Tags         products
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "Product ID"
// @Param        body  body      updateStockRequest  true  "New stock value"
// @Success      200   {object}  api.Response
// @Failure      400   {object}  api.Response
// @Failure      401   {object}  api.Response
// @Failure      404   {object}  api.Response
// @Failure      500   {object}  api.Response
// @Router       /api/products/{id}/stock [patch]
func (h *Handler) UpdateStock(c *gin.Context) {
	var req updateStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.Error(c, http.StatusBadRequest, "invalid request body")
		return
	}

	product, err := h.service.UpdateStock(c.Request.Context(), c.Param("id"), req.Stock)
	if err != nil {
		h.respondMutationError(c, err, "update stock failed")
		return
	}

	api.OKWithMessage(c, http.StatusOK, "stock updated successfully", product)
}

// DeleteProduct godoc
// @Summary      Delete a product
// @Tags         products
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Product ID"
// @Success      200  {object}  api.Response
// @Failure      401  {object}  api.Response
// @Failure      404  {object}  api.Response
// @Failure      500  {object}  api.Response
// @Router       /api/products/{id} [delete]
func (h *Handler) DeleteProduct(c *gin.Context) {
	if err := h.service.DeleteProduct(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			api.Error(c, http.StatusNotFound, catalog.ErrNotFound.Error())
			return
		}
		h.logger.Error("delete product failed", "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
		return
	}

	api.OKWithMessage(c, http.StatusOK, "product deleted successfully", nil)
}

func (h *Handler) respondMutationError(c *gin.Context, err error, logMsg string) {
	var verr *catalog.ValidationError
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		api.Error(c, http.StatusNotFound, catalog.ErrNotFound.Error())
	case errors.Is(err, catalog.ErrInvalidStock), errors.Is(err, catalog.ErrInvalidPrice), errors.As(err, &verr):
		api.Error(c, http.StatusBadRequest, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		api.Error(c, http.StatusInternalServerError, internalErrorMessage)
	}
}

func parseQueryInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 1 {
		return fallback
	}
	return value
}
