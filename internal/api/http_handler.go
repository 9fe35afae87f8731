package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"hardware-catalog-service/internal/auth"
	"hardware-catalog-service/internal/domain"
	"hardware-catalog-service/internal/ingest"
	"hardware-catalog-service/internal/store"
)

// HTTPHandler holds dependencies for HTTP handlers.
type HTTPHandler struct {
	productStore store.ProductStorer
	userStore    store.UserStorer
	orderStore   store.OrderStorer
	fileStore    store.FileStorer
	importer     *ingest.Importer
	tokens       *auth.TokenManager
	validate     *validator.Validate

	// expectedIngestFilename gates the excel endpoint: any other upload
	// name is rejected before the workbook is even opened.
	expectedIngestFilename string
}

// NewHTTPHandler creates a new HTTPHandler with dependencies.
func NewHTTPHandler(
	ps store.ProductStorer,
	us store.UserStorer,
	os store.OrderStorer,
	fs store.FileStorer,
	importer *ingest.Importer,
	tokens *auth.TokenManager,
	expectedIngestFilename string,
) *HTTPHandler {
	return &HTTPHandler{
		productStore:           ps,
		userStore:              us,
		orderStore:             os,
		fileStore:              fs,
		importer:               importer,
		tokens:                 tokens,
		validate:               validator.New(),
		expectedIngestFilename: expectedIngestFilename,
	}
}

// --- Helpers ---

// ErrorResponse defines the structure for JSON error responses.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil { // Avoid writing empty body for 204 No Content
		if err := json.NewEncoder(w).Encode(payload); err != nil {
			log.Printf("ERROR: Failed to encode JSON response: %v", err)
			http.Error(w, `{"error": "Internal server error during JSON encoding"}`, http.StatusInternalServerError)
		}
	}
}

// --- Route Registration ---

// RegisterRoutes sets up the HTTP routes for the service. Role gating
// follows the legacy surface: reads need any authenticated role, catalog
// writes need manager, destructive and import operations need admin.
func (h *HTTPHandler) RegisterRoutes(r chi.Router) {
	anyRole := h.tokens.RequireRoles(domain.RoleUser, domain.RoleManager, domain.RoleAdmin)
	managerUp := h.tokens.RequireRoles(domain.RoleManager, domain.RoleAdmin)
	adminOnly := h.tokens.RequireRoles(domain.RoleAdmin)

	r.Post("/api/v1/auth/login", h.Login)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.With(anyRole).Get("/", h.ListProducts)
		r.With(anyRole).Post("/search", h.SearchProducts)
		r.With(anyRole).Get("/price-bounds", h.GetPriceBounds)
		r.With(managerUp).Post("/", h.CreateProduct)
		r.With(managerUp).Patch("/hide", h.SetImportedHidden)
		r.With(adminOnly).Post("/excel", h.IngestPriceList)

		r.Route("/{productId}", func(r chi.Router) {
			r.With(anyRole).Get("/", h.GetProductByID)
			r.With(managerUp).Patch("/", h.UpdateProduct)
			r.With(adminOnly).Delete("/", h.DeleteProduct)
		})
	})

	r.Route("/api/v1/users", func(r chi.Router) {
		r.Use(adminOnly)
		r.Post("/", h.CreateUser)
		r.Get("/", h.ListUsers)
		r.Route("/{userId}", func(r chi.Router) {
			r.Get("/", h.GetUserByID)
			r.Put("/", h.UpdateUser)
			r.Delete("/", h.DeleteUser)
		})
	})

	r.Route("/api/v1/files", func(r chi.Router) {
		r.With(managerUp).Post("/", h.UploadFile)
		r.Route("/{fileId}", func(r chi.Router) {
			r.With(anyRole).Get("/", h.GetFileByID)
			r.With(anyRole).Get("/download", h.DownloadFile)
			r.With(adminOnly).Delete("/", h.DeleteFile)
		})
	})

	r.Route("/api/v1/orders", func(r chi.Router) {
		r.With(managerUp).Post("/", h.CreateOrder)
		r.With(anyRole).Get("/", h.ListOrders)
		r.Route("/{orderId}", func(r chi.Router) {
			r.With(anyRole).Get("/", h.GetOrderByID)
			r.With(adminOnly).Delete("/", h.DeleteOrder)
		})
	})
}
