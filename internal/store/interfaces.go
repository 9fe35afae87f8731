package store

import (
	"context"

	"github.com/google/uuid"

	"hardware-catalog-service/internal/domain"
)

// SearchProductsParams holds a caller-supplied filter specification for one
// paginated product search. Range filters use a [min,max] pair and are applied
// only when BOTH bounds are non-zero; this mirrors the behaviour of the
// legacy storefront and is covered by explicit tests. WarrantyDays is a
// pointer because zero is a meaningful exact-match filter there.
type SearchProductsParams struct {
	Term          string
	Category      string
	Price         [2]float64
	SupplierPrice [2]float64
	MarketPrice   [2]float64
	WarrantyDays  *float64
	OnlyOrdered   bool
	Page          int // 1-based
	Limit         int
}

// ProductPatch describes a partial product update. Nil fields are left
// untouched.
type ProductPatch struct {
	Name          *string
	Category      *string
	VendorCode    *string
	Maker         *string
	Model         *string
	Price         *float64
	MarketPrice   *float64
	SupplierPrice *float64
	WarrantyDays  *float64
	Count         *int32
	IsHidden      *bool
}

// ProductStorer defines the database operations for products.
type ProductStorer interface {
	CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	ListProducts(ctx context.Context) ([]domain.Product, error)
	SearchProducts(ctx context.Context, params SearchProductsParams) (*domain.ProductPage, error)
	UpsertProductByName(ctx context.Context, product *domain.Product) (*domain.Product, error)
	UpdateProduct(ctx context.Context, id int64, patch ProductPatch, updatedBy *string) (*domain.Product, error)
	DeleteProduct(ctx context.Context, id int64) error
	GetPriceBounds(ctx context.Context) (*domain.PriceBounds, error)
	SetImportedHidden(ctx context.Context, hidden bool) (int64, error)
}

// ListUsersParams holds pagination parameters for listing users.
type ListUsersParams struct {
	Limit  int
	Offset int
}

// UserStorer defines the database operations for user accounts.
type UserStorer interface {
	CreateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	GetUserByID(ctx context.Context, id int64) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	ListUsers(ctx context.Context, params ListUsersParams) ([]domain.User, int, error)
	UpdateUser(ctx context.Context, user *domain.User) (*domain.User, error)
	DeleteUser(ctx context.Context, id int64) error
}

// ListOrdersParams holds pagination and filter parameters for listing orders.
type ListOrdersParams struct {
	Limit    int
	Offset   int
	ClientID *int64
	Status   *string
}

// OrderStorer defines the database operations for orders.
type OrderStorer interface {
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	GetOrderByID(ctx context.Context, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, params ListOrdersParams) ([]domain.Order, int, error)
	DeleteOrder(ctx context.Context, id int64) error
}

// FileStorer defines the database operations for uploaded files.
type FileStorer interface {
	SaveFile(ctx context.Context, file *domain.File) (*domain.File, error)
	GetFileByID(ctx context.Context, id uuid.UUID) (*domain.File, error)
	DeleteFile(ctx context.Context, id uuid.UUID) error
}
