// Package handler provides HTTP handlers for product-related operations.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/SUMI3747/ProductManagementApi/internal/platform/web"
	producterrors "github.com/SUMI3747/ProductManagementApi/internal/product/errors"
	"github.com/SUMI3747/ProductManagementApi/internal/product/service"
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

// ProductAPI defines HTTP handlers for product-related endpoints.
type ProductAPI interface {
	FindByID(w http.ResponseWriter, r *http.Request)
	FindAll(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	DecrementStock(w http.ResponseWriter, r *http.Request)
	IncrementStock(w http.ResponseWriter, r *http.Request)
	DeleteByID(w http.ResponseWriter, r *http.Request)

	HealthCheck(w http.ResponseWriter, r *http.Request)
	ReadinessCheck(w http.ResponseWriter, r *http.Request)
}

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type api struct {
	service  service.ProductService
	pinger   Pinger
	validate *validator.Validate
	logger   *slog.Logger
}

// NewAPI creates a new instance of ProductAPI with the provided service.
// pinger backs the readiness probe and may be nil.
func NewAPI(service service.ProductService, pinger Pinger, logger *slog.Logger) ProductAPI {
	return &api{
		service:  service,
		pinger:   pinger,
		validate: validator.New(),
		logger:   logger.With("component", "api"),
	}
}

// RegisterRoutes mounts the product endpoints on r.
func RegisterRoutes(r chi.Router, a ProductAPI) {
	r.Route("/products", func(r chi.Router) {
		r.Get("/", a.FindAll)
		r.Post("/", a.Create)

		r.Put("/decrement-stock/{id}/{quantity}", a.DecrementStock)
		r.Put("/increment-stock/{id}/{quantity}", a.IncrementStock)
		r.Put("/Increment-stock/{id}/{quantity}", a.IncrementStock)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", a.FindByID)
			r.Put("/", a.Update)
			r.Delete("/", a.DeleteByID)
		})
	})
}

// FindByID retrieves a product by its ID.
func (a *api) FindByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.MustParam(w, r, a.logger, "id")
	if !ok {
		return
	}

	a.logger.DebugContext(r.Context(), "Received request to find product by ID", "ID", id)
	found, err := a.service.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, producterrors.ErrProductNotFound) {
			a.logger.WarnContext(r.Context(), "Product not found", "ID", id)
			web.RespondMessage(w, a.logger, http.StatusNotFound, service.MsgProductIDNotFound(id))
			return
		}
		a.logger.ErrorContext(r.Context(), "Error retrieving product", "ID", id, "error", err)
		web.RespondError(w, a.logger, http.StatusInternalServerError, "Failed to retrieve product with ID "+id)
		return
	}
	a.logger.DebugContext(r.Context(), "Successfully retrieved product", "ID", found.ID, "Name", found.Name)
	web.RespondJSON(w, a.logger, http.StatusOK, found)
}

// FindAll retrieves a list of all products. An empty catalogue is reported as 404.
func (a *api) FindAll(w http.ResponseWriter, r *http.Request) {
	a.logger.DebugContext(r.Context(), "Received request to find all products")
	list, err := a.service.FindAll(r.Context())
	if err != nil {
		a.logger.ErrorContext(r.Context(), "Error retrieving product list", "error", err)
		web.RespondError(w, a.logger, http.StatusInternalServerError, "Failed to fetch products")
		return
	}
	if len(list) == 0 {
		web.RespondMessage(w, a.logger, http.StatusNotFound, service.MsgNoProducts)
		return
	}
	a.logger.DebugContext(r.Context(), "Successfully retrieved product list", "count", len(list))
	web.RespondJSON(w, a.logger, http.StatusOK, list)
}

// Create handles the creation of a new product.
func (a *api) Create(w http.ResponseWriter, r *http.Request) {
	var productCreateDto service.ProductCreateDto
	if !a.decodeAndValidate(w, r, a.logger, &productCreateDto) {
		return
	}
	a.logger.DebugContext(r.Context(), "Received request to create product", "product", productCreateDto)

	res := a.service.Create(r.Context(), productCreateDto)
	a.respondResult(w, r, a.logger, res)
}

// Update renames a product and adds the given delta to its stock.
func (a *api) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := web.MustParam(w, r, a.logger, "id")
	if !ok {
		return
	}
	var productUpdateDto service.ProductUpdateDto
	if !a.decodeAndValidate(w, r, a.logger, &productUpdateDto) {
		return
	}
	a.logger.DebugContext(r.Context(), "Received request to update product", "ID", id, "product", productUpdateDto)

	res := a.service.Update(r.Context(), id, productUpdateDto)
	a.respondResult(w, r, a.logger, res)
}

// DecrementStock removes quantity from a product's stock.
func (a *api) DecrementStock(w http.ResponseWriter, r *http.Request) {
	a.adjustStock(w, r, a.service.DecrementStock)
}

// IncrementStock adds quantity to a product's stock.
func (a *api) IncrementStock(w http.ResponseWriter, r *http.Request) {
	a.adjustStock(w, r, a.service.IncrementStock)
}

func (a *api) adjustStock(w http.ResponseWriter, r *http.Request, adjust func(ctx context.Context, id string, quantity int32) service.Result) {
	id, ok := web.MustParam(w, r, a.logger, "id")
	if !ok {
		return
	}
	quantity, ok := web.ParsePositiveParam(w, r, a.logger, "quantity", service.MsgInvalidQuantity)
	if !ok {
		return
	}
	a.logger.DebugContext(r.Context(), "Received request to adjust stock", "ID", id, "quantity", quantity, "path", r.URL.Path)

	res := adjust(r.Context(), id, quantity)
	a.respondResult(w, r, a.logger, res)
}

// DeleteByID deletes a product by its ID.
func (a *api) DeleteByID(w http.ResponseWriter, r *http.Request) {
	id, ok := web.MustParam(w, r, a.logger, "id")
	if !ok {
		return
	}
	a.logger.DebugContext(r.Context(), "Received request to delete product", "ID", id)
	deleted, err := a.service.DeleteByID(r.Context(), id)
	if err != nil {
		a.logger.ErrorContext(r.Context(), "Error deleting product", "ID", id, "error", err)
		web.RespondError(w, a.logger, http.StatusInternalServerError, "Failed to delete product with ID "+id)
		return
	}
	if !deleted {
		a.logger.WarnContext(r.Context(), "Product not found for deletion", "ID", id)
		web.RespondMessage(w, a.logger, http.StatusNotFound, service.MsgProductIDNotFound(id))
		return
	}
	a.logger.InfoContext(r.Context(), "Product deleted successfully", "ID", id)
	web.RespondMessage(w, a.logger, http.StatusOK, service.MsgDeleted(id))
}

// HealthCheck is a simple liveness endpoint.
func (a *api) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// ReadinessCheck reports 503 while the store cannot be reached.
func (a *api) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	if a.pinger != nil {
		if err := a.pinger.Ping(r.Context()); err != nil {
			a.logger.WarnContext(r.Context(), "Readiness check failed", "error", err)
			web.RespondError(w, a.logger, http.StatusServiceUnavailable, "storage unavailable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
}

// decodeAndValidate reads a JSON body into dst and validates it, writing a 400 response on failure.
func (a *api) decodeAndValidate(w http.ResponseWriter, r *http.Request, logger *slog.Logger, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.WarnContext(r.Context(), "Error decoding request body", "error", err)
		web.RespondMessage(w, logger, http.StatusBadRequest, service.MsgInvalidBody)
		return false
	}
	if err := a.validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			// If the error is a validation error, we can extract field-specific errors.
			errorResponse := make(map[string]string)
			for _, fieldErr := range validationErrors {
				errorResponse[fieldErr.Field()] = "failed on rule: " + fieldErr.Tag()
			}
			logger.WarnContext(r.Context(), "Validation errors occurred", "errors", errorResponse)
			web.RespondJSON(w, logger, http.StatusBadRequest, map[string]any{
				"message":           service.MsgInvalidBody,
				"validation_errors": errorResponse,
			})
			return false
		}
		logger.ErrorContext(r.Context(), "Error validating request body", "error", err)
		web.RespondMessage(w, logger, http.StatusBadRequest, service.MsgInvalidBody)
		return false
	}
	return true
}

// respondResult maps a service outcome to an HTTP status and writes it.
func (a *api) respondResult(w http.ResponseWriter, r *http.Request, logger *slog.Logger, res service.Result) {
	code := statusCode(res.Status)
	switch {
	case code >= http.StatusInternalServerError:
		logger.ErrorContext(r.Context(), "Operation failed", "status", res.Status, "error", res.Err)
	case code >= http.StatusBadRequest:
		logger.WarnContext(r.Context(), "Operation rejected", "status", res.Status, "message", res.Message)
	default:
		logger.InfoContext(r.Context(), "Operation succeeded", "status", res.Status)
	}
	web.RespondJSON(w, logger, code, res)
}

func statusCode(s service.Status) int {
	switch s {
	case service.StatusCreated:
		return http.StatusCreated
	case service.StatusAlreadyExists, service.StatusUpdated, service.StatusDeleted:
		return http.StatusOK
	case service.StatusNotFound:
		return http.StatusNotFound
	case service.StatusInsufficientStock:
		return http.StatusConflict
	case service.StatusInvalidArgument:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
