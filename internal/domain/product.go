package domain

import (
	"time"
)

// Product represents a catalog entry for a hardware item or a finished PC build.
// The json tags correspond to the fields expected in API responses/requests.
type Product struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	Category      string  `json:"category,omitempty"`
	VendorCode    string  `json:"vendor_code,omitempty"`
	Maker         string  `json:"maker,omitempty"`
	Model         string  `json:"model,omitempty"`
	Price         float64 `json:"price"`
	MarketPrice   float64 `json:"market_price"`
	SupplierPrice float64 `json:"supplier_price"`
	// WarrantyDays stays fractional: dealer sheets carry warranty in months
	// and the conversion to days is not rounded.
	WarrantyDays float64   `json:"warranty_days"`
	Count        int32     `json:"count"`
	IsHidden     bool      `json:"is_hidden"`
	OrderIDs     []int64   `json:"order_ids,omitempty"`
	CreatedBy    *string   `json:"created_by,omitempty"`
	UpdatedBy    *string   `json:"updated_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ProductPage is the envelope returned by paginated product search.
type ProductPage struct {
	Data     []Product `json:"data"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	LastPage int       `json:"lastPage"`
}

// PriceBounds reports the min/max observed for each price field plus the
// distinct warranty values, used by the storefront to render filter sliders.
type PriceBounds struct {
	Price              [2]float64 `json:"price"`
	MarketPrice        [2]float64 `json:"market_price"`
	SupplierPrice      [2]float64 `json:"supplier_price"`
	WarrantyVariations []float64  `json:"warranty_variations"`
}
