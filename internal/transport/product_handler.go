package transport

import (
	"errors"
	"net/http"
	"time"

	"product-catalog/internal/domain"
	"product-catalog/internal/middleware"
	"product-catalog/internal/repository"
	"product-catalog/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreateProductRequest represents the product creation payload. Only the
// request shape is checked here; catalog rules run in the service.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required"`
	Brand         string          `json:"brand" validate:"required"`
	SKU           string          `json:"sku" validate:"required"`
	Category      string          `json:"category" validate:"required"`
	Price         decimal.Decimal `json:"price"`
	ReleaseDate   time.Time       `json:"release_date" validate:"required"`
	ImageURL      *string         `json:"image_url,omitempty"`
	StockQuantity int             `json:"stock_quantity"`
}

func (r CreateProductRequest) toDomain() domain.CreateProductRequest {
	return domain.CreateProductRequest{
		Name:          r.Name,
		Brand:         r.Brand,
		SKU:           r.SKU,
		Category:      domain.Category(r.Category),
		Price:         r.Price,
		ReleaseDate:   r.ReleaseDate.UTC(),
		ImageURL:      r.ImageURL,
		StockQuantity: r.StockQuantity,
	}
}

// ProductHandler handles HTTP requests for product operations
type ProductHandler struct {
	productService service.ProductService
	logger         *zap.Logger
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(productService service.ProductService, logger *zap.Logger) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		logger:         logger,
	}
}

// RegisterRoutes registers all product routes. Creation goes through
// createLimit when it is not nil.
func (h *ProductHandler) RegisterRoutes(r chi.Router, createLimit func(http.Handler) http.Handler) {
	r.Route("/api/products", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if createLimit != nil {
				r.Use(createLimit)
			}
			r.Post("/", h.CreateProduct)
		})
		r.Get("/{id}", h.GetProduct)
	})
}

// CreateProduct handles product creation
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req CreateProductRequest

	if err := middleware.DecodeAndValidate(r, &req); err != nil {
		h.logger.Debug("Create product request rejected", zap.Error(err))

		if validationErrors := middleware.FormatValidationErrors(err); len(validationErrors) > 0 {
			middleware.RespondWithValidationErrors(w, r, validationErrors)
			return
		}

		middleware.RespondWithProblem(w, r, http.StatusBadRequest, middleware.CodeBadRequest, "invalid request body", nil)
		return
	}

	view, err := h.productService.CreateProduct(r.Context(), req.toDomain())
	if err != nil {
		h.respondWithServiceError(w, r, err)
		return
	}

	w.Header().Set("Location", "/api/products/"+view.ID.String())
	middleware.RespondWithJSON(w, http.StatusCreated, view)
}

// GetProduct returns one product by id
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.RespondWithProblem(w, r, http.StatusBadRequest, middleware.CodeBadRequest, "invalid product id", nil)
		return
	}

	view, err := h.productService.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			middleware.RespondWithProblem(w, r, http.StatusNotFound, "NOT_FOUND", "product not found", nil)
			return
		}
		h.respondWithServiceError(w, r, err)
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, view)
}

func (h *ProductHandler) respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr  *service.ValidationError
		duplicateErr   *service.DuplicateKeyError
		persistenceErr *service.PersistenceError
	)

	switch {
	case errors.As(err, &validationErr):
		details := make([]middleware.ValidationError, 0, len(validationErr.Failures))
		for _, f := range validationErr.Failures {
			details = append(details, middleware.ValidationError{Field: f.Field, Message: f.Message})
		}
		middleware.RespondWithValidationErrors(w, r, details)

	case errors.As(err, &duplicateErr):
		h.logger.Warn("Product conflicts with an existing record",
			zap.String("field", duplicateErr.Field),
			zap.String("value", duplicateErr.Value),
		)
		middleware.RespondWithProblem(w, r, http.StatusConflict, middleware.CodeConflict,
			"A product with the same "+duplicateErr.Field+" already exists",
			map[string]interface{}{"field": duplicateErr.Field})

	case errors.As(err, &persistenceErr) && persistenceErr.ConstraintViolation():
		h.logger.Warn("Product rejected by a store constraint", zap.String("op", persistenceErr.Op), zap.Error(err))
		middleware.RespondWithProblem(w, r, http.StatusConflict, middleware.CodeConflict,
			"The product conflicts with a catalog constraint", nil)

	case errors.As(err, &persistenceErr):
		h.logger.Error("Product persistence failed", zap.String("op", persistenceErr.Op), zap.Error(err))
		middleware.RespondWithProblem(w, r, http.StatusInternalServerError, middleware.CodeInternal,
			"An unexpected error occurred", nil)

	default:
		h.logger.Error("Unexpected product service error", zap.Error(err))
		middleware.RespondWithProblem(w, r, http.StatusInternalServerError, middleware.CodeInternal,
			"An unexpected error occurred", nil)
	}
}
