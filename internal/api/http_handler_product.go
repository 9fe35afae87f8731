package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"hardware-catalog-service/internal/auth"
	"hardware-catalog-service/internal/domain"
	"hardware-catalog-service/internal/ingest"
	"hardware-catalog-service/internal/store"
)

// ProductCreateInput defines the expected input for creating a product.
type ProductCreateInput struct {
	Name          string  `json:"name" validate:"required,max=255"`
	Category      string  `json:"category" validate:"omitempty,max=255"`
	VendorCode    string  `json:"vendor_code" validate:"omitempty,max=100"`
	Maker         string  `json:"maker" validate:"omitempty,max=255"`
	Model         string  `json:"model" validate:"omitempty,max=255"`
	Price         float64 `json:"price" validate:"gte=0"`
	MarketPrice   float64 `json:"market_price" validate:"gte=0"`
	SupplierPrice float64 `json:"supplier_price" validate:"gte=0"`
	WarrantyDays  float64 `json:"warranty_days" validate:"gte=0"`
	Count         int32   `json:"count" validate:"gte=0"`
}

func (h *HTTPHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var input ProductCreateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	product := &domain.Product{
		Name:          input.Name,
		Category:      input.Category,
		VendorCode:    input.VendorCode,
		Maker:         input.Maker,
		Model:         input.Model,
		Price:         input.Price,
		MarketPrice:   input.MarketPrice,
		SupplierPrice: input.SupplierPrice,
		WarrantyDays:  input.WarrantyDays,
		Count:         input.Count,
		CreatedBy:     auth.CallerID(r.Context()),
	}

	created, err := h.productStore.CreateProduct(r.Context(), product)
	if err != nil {
		log.Printf("ERROR: CreateProduct store operation failed: %v", err)
		if errors.Is(err, store.ErrProductNameTaken) {
			respondWithError(w, http.StatusConflict, store.ErrProductNameTaken.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to create product")
		}
		return
	}

	respondWithJSON(w, http.StatusCreated, created)
}

func (h *HTTPHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.productStore.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: ListProducts store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve products")
		return
	}
	respondWithJSON(w, http.StatusOK, products)
}

// ProductSearchFilters is the JSON body of the search endpoint. Ranges are
// [min,max] pairs; warrantyDays is a pointer so that an explicit zero is
// distinguishable from an absent filter.
type ProductSearchFilters struct {
	Price         [2]float64 `json:"price"`
	SupplierPrice [2]float64 `json:"supplierPrice"`
	MarketPrice   [2]float64 `json:"marketPrice"`
	WarrantyDays  *float64   `json:"warrantyDays"`
}

// SearchProducts handles POST /api/v1/products/search. The free-text term,
// pagination, category and onlyOrdered flag travel as query parameters; the
// numeric filters travel in the body.
func (h *HTTPHandler) SearchProducts(w http.ResponseWriter, r *http.Request) {
	qParams := r.URL.Query()

	page := 1
	if pageStr := qParams.Get("page"); pageStr != "" {
		n, err := strconv.Atoi(pageStr)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid page: must be a positive integer")
			return
		}
		page = n
	}
	limit := 10
	if limitStr := qParams.Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid limit: must be a positive integer")
			return
		}
		limit = n
	}
	if limit > 100 {
		limit = 100
	}

	onlyOrdered := false
	if flagStr := qParams.Get("onlyOrdered"); flagStr != "" {
		b, err := strconv.ParseBool(flagStr)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid onlyOrdered value: must be true or false")
			return
		}
		onlyOrdered = b
	}

	var filters ProductSearchFilters
	if err := json.NewDecoder(r.Body).Decode(&filters); err != nil && !errors.Is(err, io.EOF) {
		respondWithError(w, http.StatusBadRequest, "Invalid filter payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	params := store.SearchProductsParams{
		Term:          qParams.Get("search-by"),
		Category:      qParams.Get("category"),
		Price:         filters.Price,
		SupplierPrice: filters.SupplierPrice,
		MarketPrice:   filters.MarketPrice,
		WarrantyDays:  filters.WarrantyDays,
		OnlyOrdered:   onlyOrdered,
		Page:          page,
		Limit:         limit,
	}

	result, err := h.productStore.SearchProducts(r.Context(), params)
	if err != nil {
		log.Printf("ERROR: SearchProducts store operation failed: %v", err)
		if errors.Is(err, store.ErrInvalidArgument) {
			respondWithError(w, http.StatusBadRequest, err.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to search products")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, result)
}

func (h *HTTPHandler) GetPriceBounds(w http.ResponseWriter, r *http.Request) {
	bounds, err := h.productStore.GetPriceBounds(r.Context())
	if err != nil {
		log.Printf("ERROR: GetPriceBounds store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to retrieve price bounds")
		return
	}
	respondWithJSON(w, http.StatusOK, bounds)
}

// ingestFileField is the multipart form field the dealer upload arrives in.
const ingestFileField = "excel-dealer-file"

// IngestPriceList handles POST /api/v1/products/excel: it accepts exactly
// one known dealer workbook, parses it and upserts every row, keyed by
// product name. The response is the per-batch outcome report.
func (h *HTTPHandler) IngestPriceList(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile(ingestFileField)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Missing file field "+ingestFileField)
		return
	}
	defer file.Close()

	if header.Filename != h.expectedIngestFilename {
		respondWithError(w, http.StatusConflict, "Bad file provided")
		return
	}

	grid, err := ingest.ReadWorkbook(file)
	if err != nil {
		log.Printf("ERROR: IngestPriceList failed to read workbook: %v", err)
		if errors.Is(err, ingest.ErrUnsupportedFormat) {
			respondWithError(w, http.StatusConflict, ingest.ErrUnsupportedFormat.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to read workbook")
		}
		return
	}

	imports := ingest.ParsePriceList(grid)
	result := h.importer.Run(r.Context(), imports, auth.CallerID(r.Context()))
	if result.Failed > 0 {
		log.Printf("WARN: IngestPriceList finished with %d/%d failed rows", result.Failed, result.Total)
	}

	respondWithJSON(w, http.StatusOK, result)
}

// SetImportedHidden handles PATCH /api/v1/products/hide?is_hidden=. It
// toggles visibility of every product that came in through a price list.
func (h *HTTPHandler) SetImportedHidden(w http.ResponseWriter, r *http.Request) {
	hidden, err := strconv.ParseBool(r.URL.Query().Get("is_hidden"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid is_hidden value: must be true or false")
		return
	}

	affected, err := h.productStore.SetImportedHidden(r.Context(), hidden)
	if err != nil {
		log.Printf("ERROR: SetImportedHidden store operation failed: %v", err)
		respondWithError(w, http.StatusInternalServerError, "Failed to update product visibility")
		return
	}

	respondWithJSON(w, http.StatusOK, map[string]int64{"updated": affected})
}

func (h *HTTPHandler) GetProductByID(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	product, err := h.productStore.GetProductByID(r.Context(), productID)
	if err != nil {
		log.Printf("ERROR: GetProductByID store operation for ID %d failed: %v", productID, err)
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to retrieve product")
		}
		return
	}
	respondWithJSON(w, http.StatusOK, product)
}

// ProductUpdateInput defines the expected input for a partial product update.
// Absent fields are left untouched.
type ProductUpdateInput struct {
	Name          *string  `json:"name" validate:"omitempty,min=1,max=255"`
	Category      *string  `json:"category" validate:"omitempty,max=255"`
	VendorCode    *string  `json:"vendor_code" validate:"omitempty,max=100"`
	Maker         *string  `json:"maker" validate:"omitempty,max=255"`
	Model         *string  `json:"model" validate:"omitempty,max=255"`
	Price         *float64 `json:"price" validate:"omitempty,gte=0"`
	MarketPrice   *float64 `json:"market_price" validate:"omitempty,gte=0"`
	SupplierPrice *float64 `json:"supplier_price" validate:"omitempty,gte=0"`
	WarrantyDays  *float64 `json:"warranty_days" validate:"omitempty,gte=0"`
	Count         *int32   `json:"count" validate:"omitempty,gte=0"`
	IsHidden      *bool    `json:"is_hidden"`
}

func (h *HTTPHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	var input ProductUpdateInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request payload: "+err.Error())
		return
	}
	defer r.Body.Close()

	if err := h.validate.Struct(input); err != nil {
		respondWithError(w, http.StatusBadRequest, "Validation failed: "+err.Error())
		return
	}

	patch := store.ProductPatch{
		Name:          input.Name,
		Category:      input.Category,
		VendorCode:    input.VendorCode,
		Maker:         input.Maker,
		Model:         input.Model,
		Price:         input.Price,
		MarketPrice:   input.MarketPrice,
		SupplierPrice: input.SupplierPrice,
		WarrantyDays:  input.WarrantyDays,
		Count:         input.Count,
		IsHidden:      input.IsHidden,
	}

	updated, err := h.productStore.UpdateProduct(r.Context(), productID, patch, auth.CallerID(r.Context()))
	if err != nil {
		log.Printf("ERROR: UpdateProduct store operation for ID %d failed: %v", productID, err)
		switch {
		case errors.Is(err, store.ErrInvalidArgument):
			respondWithError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrProductNotFound):
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		case errors.Is(err, store.ErrProductNameTaken):
			respondWithError(w, http.StatusConflict, store.ErrProductNameTaken.Error())
		default:
			respondWithError(w, http.StatusInternalServerError, "Failed to update product")
		}
		return
	}

	respondWithJSON(w, http.StatusOK, updated)
}

func (h *HTTPHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "productId")
	productID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || productID <= 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	err = h.productStore.DeleteProduct(r.Context(), productID)
	if err != nil {
		log.Printf("ERROR: DeleteProduct store operation for ID %d failed: %v", productID, err)
		if errors.Is(err, store.ErrProductNotFound) {
			respondWithError(w, http.StatusNotFound, store.ErrProductNotFound.Error())
		} else {
			respondWithError(w, http.StatusInternalServerError, "Failed to delete product")
		}
		return
	}

	respondWithJSON(w, http.StatusNoContent, nil)
}
