package store

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"hardware-catalog-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Helper function to create a mock DB and PostgresStore for testing
func newMockDBAndStore(t *testing.T) (*sql.DB, sqlmock.Sqlmock, *PostgresStore) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp)) // Use regexp matcher
	require.NoError(t, err, "Failed to create sqlmock")

	store := NewPostgresStore(db)
	require.NotNil(t, store, "Store should not be nil")

	return db, mock, store
}

// Helper function to get a pointer (useful for optional fields in domain structs)
func PtrTo[T any](v T) *T {
	return &v
}

var productRowColumns = []string{
	"id", "name", "category", "vendor_code", "maker", "model",
	"price", "market_price", "supplier_price", "warranty_days",
	"count", "is_hidden", "created_by", "updated_by", "created_at", "updated_at",
}

func addProductRow(rows *sqlmock.Rows, p domain.Product) *sqlmock.Rows {
	return rows.AddRow(
		p.ID, p.Name, p.Category, p.VendorCode, p.Maker, p.Model,
		p.Price, p.MarketPrice, p.SupplierPrice, p.WarrantyDays,
		p.Count, p.IsHidden, p.CreatedBy, p.UpdatedBy, p.CreatedAt, p.UpdatedAt,
	)
}

func sampleProduct(id int64, name string, price float64) domain.Product {
	now := time.Now().Truncate(time.Millisecond)
	return domain.Product{
		ID: id, Name: name, Category: "CPU", Maker: "Ryzen", Model: name,
		Price: price, MarketPrice: price + 50, SupplierPrice: price - 50,
		WarrantyDays: 365.2425, Count: 1,
		CreatedAt: now, UpdatedAt: now,
	}
}

// --- buildSearchClauses unit tests ---

func TestBuildSearchClauses_Empty(t *testing.T) {
	clauses, args := buildSearchClauses(SearchProductsParams{Page: 1, Limit: 10})
	assert.Empty(t, clauses)
	assert.Empty(t, args)
}

func TestBuildSearchClauses_ZeroRangeIsSkipped(t *testing.T) {
	// A [0,0] range means "slider untouched" and must not filter. Partially
	// zero bounds are skipped too.
	for _, bounds := range [][2]float64{{0, 0}, {0, 500}, {100, 0}} {
		clauses, args := buildSearchClauses(SearchProductsParams{Price: bounds, Page: 1, Limit: 10})
		assert.Empty(t, clauses, "bounds %v should not produce a clause", bounds)
		assert.Empty(t, args)
	}
}

func TestBuildSearchClauses_PriceRange(t *testing.T) {
	clauses, args := buildSearchClauses(SearchProductsParams{Price: [2]float64{100, 500}, Page: 1, Limit: 10})
	require.Len(t, clauses, 1)
	assert.Equal(t, "price BETWEEN $1 AND $2", clauses[0])
	assert.Equal(t, []interface{}{100.0, 500.0}, args)
}

func TestBuildSearchClauses_AllRangesStackPlaceholders(t *testing.T) {
	params := SearchProductsParams{
		Price:         [2]float64{100, 500},
		SupplierPrice: [2]float64{80, 400},
		MarketPrice:   [2]float64{120, 600},
		Page:          1, Limit: 10,
	}
	clauses, args := buildSearchClauses(params)
	require.Len(t, clauses, 3)
	assert.Equal(t, "price BETWEEN $1 AND $2", clauses[0])
	assert.Equal(t, "supplier_price BETWEEN $3 AND $4", clauses[1])
	assert.Equal(t, "market_price BETWEEN $5 AND $6", clauses[2])
	assert.Len(t, args, 6)
}

func TestBuildSearchClauses_WarrantyZeroIsARealFilter(t *testing.T) {
	// Unlike the range filters, warranty is pointer-gated: an explicit zero
	// must filter to products with exactly zero warranty days.
	clauses, args := buildSearchClauses(SearchProductsParams{WarrantyDays: PtrTo(0.0), Page: 1, Limit: 10})
	require.Len(t, clauses, 1)
	assert.Equal(t, "warranty_days = $1", clauses[0])
	assert.Equal(t, []interface{}{0.0}, args)
}

func TestBuildSearchClauses_TermMatchesFourFields(t *testing.T) {
	clauses, args := buildSearchClauses(SearchProductsParams{Term: "ryzen", Page: 1, Limit: 10})
	require.Len(t, clauses, 1)
	assert.Equal(t, "(category ILIKE $1 OR name ILIKE $2 OR maker ILIKE $3 OR model ILIKE $4)", clauses[0])
	assert.Equal(t, []interface{}{"%ryzen%", "%ryzen%", "%ryzen%", "%ryzen%"}, args)
}

func TestBuildSearchClauses_OnlyOrdered(t *testing.T) {
	clauses, args := buildSearchClauses(SearchProductsParams{OnlyOrdered: true, Page: 1, Limit: 10})
	require.Len(t, clauses, 1)
	assert.Contains(t, clauses[0], "EXISTS")
	assert.Contains(t, clauses[0], "shop.order_products")
	assert.Empty(t, args)
}

func TestBuildSearchClauses_Combined(t *testing.T) {
	params := SearchProductsParams{
		Term:        "amd",
		Category:    "CPU",
		Price:       [2]float64{100, 500},
		OnlyOrdered: true,
		Page:        1, Limit: 10,
	}
	clauses, args := buildSearchClauses(params)
	require.Len(t, clauses, 4)
	assert.Equal(t, "category = $1", clauses[1])
	assert.Equal(t, "price BETWEEN $2 AND $3", clauses[2])
	assert.Equal(t, "(category ILIKE $4 OR name ILIKE $5 OR maker ILIKE $6 OR model ILIKE $7)", clauses[3])
	assert.Len(t, args, 7)
}

// --- SearchProducts tests ---

func TestPostgresStore_SearchProducts_InvalidPagination(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	for _, params := range []SearchProductsParams{
		{Page: 0, Limit: 10},
		{Page: 1, Limit: 0},
		{Page: -1, Limit: -5},
	} {
		page, err := store.SearchProducts(context.Background(), params)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrInvalidArgument), "Error should be ErrInvalidArgument")
		assert.Nil(t, page)
	}

	// No query must reach the database on validation failure.
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchProducts_ZeroRangeReturnsEverything(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	// Anchored patterns prove the [0,0] price range produced no WHERE at all.
	countQuery := `SELECT COUNT\(\*\) FROM shop\.products$`
	dataQuery := `SELECT ` + regexp.QuoteMeta(productColumns) + ` FROM shop\.products ORDER BY id ASC LIMIT \$1 OFFSET \$2$`

	mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	rows := sqlmock.NewRows(productRowColumns)
	addProductRow(rows, sampleProduct(1, "Ryzen 5 5600X", 250))
	addProductRow(rows, sampleProduct(2, "Ryzen 7 5800X", 400))
	addProductRow(rows, sampleProduct(3, "Core i5-12400F", 220))
	mock.ExpectQuery(dataQuery).WithArgs(10, 0).WillReturnRows(rows)

	page, err := store.SearchProducts(context.Background(), SearchProductsParams{
		Price: [2]float64{0, 0},
		Page:  1,
		Limit: 10,
	})

	require.NoError(t, err)
	require.NotNil(t, page)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 1, page.LastPage)
	assert.Len(t, page.Data, 3)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchProducts_PriceRange(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	countQuery := `SELECT COUNT\(\*\) FROM shop\.products WHERE price BETWEEN \$1 AND \$2$`
	dataQuery := `FROM shop\.products WHERE price BETWEEN \$1 AND \$2 ORDER BY id ASC LIMIT \$3 OFFSET \$4$`

	mock.ExpectQuery(countQuery).WithArgs(100.0, 500.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	rows := sqlmock.NewRows(productRowColumns)
	addProductRow(rows, sampleProduct(1, "Ryzen 5 5600X", 250))
	addProductRow(rows, sampleProduct(2, "Ryzen 7 5800X", 400))
	mock.ExpectQuery(dataQuery).WithArgs(100.0, 500.0, 10, 0).WillReturnRows(rows)

	page, err := store.SearchProducts(context.Background(), SearchProductsParams{
		Price: [2]float64{100, 500},
		Page:  1,
		Limit: 10,
	})

	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	require.Len(t, page.Data, 2)
	for _, p := range page.Data {
		assert.GreaterOrEqual(t, p.Price, 100.0)
		assert.LessOrEqual(t, p.Price, 500.0)
	}

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchProducts_WarrantyZeroFilter(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	countQuery := `SELECT COUNT\(\*\) FROM shop\.products WHERE warranty_days = \$1$`
	dataQuery := `FROM shop\.products WHERE warranty_days = \$1 ORDER BY id ASC LIMIT \$2 OFFSET \$3$`

	mock.ExpectQuery(countQuery).WithArgs(0.0).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	noWarranty := sampleProduct(7, "Used GTX 1080", 150)
	noWarranty.WarrantyDays = 0
	rows := sqlmock.NewRows(productRowColumns)
	addProductRow(rows, noWarranty)
	mock.ExpectQuery(dataQuery).WithArgs(0.0, 10, 0).WillReturnRows(rows)

	page, err := store.SearchProducts(context.Background(), SearchProductsParams{
		WarrantyDays: PtrTo(0.0),
		Page:         1,
		Limit:        10,
	})

	require.NoError(t, err)
	require.Len(t, page.Data, 1)
	assert.Equal(t, 0.0, page.Data[0].WarrantyDays)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchProducts_LastPageAndOffset(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	countQuery := `SELECT COUNT\(\*\) FROM shop\.products$`
	dataQuery := `FROM shop\.products ORDER BY id ASC LIMIT \$1 OFFSET \$2$`

	mock.ExpectQuery(countQuery).WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(25))

	rows := sqlmock.NewRows(productRowColumns)
	for i := int64(11); i <= 20; i++ {
		addProductRow(rows, sampleProduct(i, "Product", 100))
	}
	mock.ExpectQuery(dataQuery).WithArgs(10, 10).WillReturnRows(rows)

	page, err := store.SearchProducts(context.Background(), SearchProductsParams{Page: 2, Limit: 10})

	require.NoError(t, err)
	assert.Equal(t, 25, page.Total)
	assert.Equal(t, 2, page.Page)
	assert.Equal(t, 3, page.LastPage, "lastPage must be ceil(total/limit)")
	assert.LessOrEqual(t, len(page.Data), 10)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SearchProducts_EmptyResult(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	countQuery := `SELECT COUNT\(\*\) FROM shop\.products WHERE category = \$1$`
	mock.ExpectQuery(countQuery).WithArgs("Floppy Drives").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))

	page, err := store.SearchProducts(context.Background(), SearchProductsParams{
		Category: "Floppy Drives",
		Page:     1,
		Limit:    10,
	})

	require.NoError(t, err)
	assert.Equal(t, 0, page.Total)
	assert.Equal(t, 0, page.LastPage)
	assert.Empty(t, page.Data)

	// The data query is skipped entirely when the count is zero.
	require.NoError(t, mock.ExpectationsWereMet())
}

// --- Upsert & misc product op tests ---

func TestPostgresStore_UpsertProductByName(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	product := sampleProduct(0, "Ryzen 5 5600X, AM4, 6-core", 250)
	product.VendorCode = "R5-5600X"

	upsertQuery := `INSERT INTO shop\.products[\s\S]+ON CONFLICT \(name\) DO UPDATE SET`

	stored := product
	stored.ID = 42
	rows := sqlmock.NewRows(productRowColumns)
	addProductRow(rows, stored)

	mock.ExpectQuery(upsertQuery).
		WithArgs(product.Name, product.Category, product.VendorCode, product.Maker, product.Model,
			product.Price, product.MarketPrice, product.SupplierPrice, product.WarrantyDays,
			product.Count, product.CreatedBy, product.CreatedBy).
		WillReturnRows(rows)

	upserted, err := store.UpsertProductByName(context.Background(), &product)

	require.NoError(t, err)
	require.NotNil(t, upserted)
	assert.Equal(t, int64(42), upserted.ID)
	assert.Equal(t, product.Name, upserted.Name)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_NoFields(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	_, err := store.UpdateProduct(context.Background(), 1, ProductPatch{}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument), "Error should be ErrInvalidArgument")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_PartialPatch(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := `UPDATE shop\.products SET price = \$1, updated_by = \$2, updated_at = CURRENT_TIMESTAMP WHERE id = \$3 RETURNING`

	updated := sampleProduct(5, "Ryzen 5 5600X", 199)
	rows := sqlmock.NewRows(productRowColumns)
	addProductRow(rows, updated)

	mock.ExpectQuery(query).WithArgs(199.0, "7", int64(5)).WillReturnRows(rows)

	result, err := store.UpdateProduct(context.Background(), 5, ProductPatch{Price: PtrTo(199.0)}, PtrTo("7"))

	require.NoError(t, err)
	assert.Equal(t, 199.0, result.Price)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_UpdateProduct_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectQuery(`UPDATE shop\.products SET`).
		WithArgs(99.0, int64(404)).
		WillReturnError(sql.ErrNoRows)

	_, err := store.UpdateProduct(context.Background(), 404, ProductPatch{Price: PtrTo(99.0)}, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SetImportedHidden(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	query := regexp.QuoteMeta(`UPDATE shop.products SET is_hidden = $1, updated_at = CURRENT_TIMESTAMP WHERE vendor_code <> '';`)
	mock.ExpectExec(query).WithArgs(true).WillReturnResult(sqlmock.NewResult(0, 12))

	affected, err := store.SetImportedHidden(context.Background(), true)

	require.NoError(t, err)
	assert.Equal(t, int64(12), affected)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteProduct_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shop.order_products WHERE product_id = $1;`)).
		WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shop.products WHERE id = $1;`)).
		WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteProduct(context.Background(), 99)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrProductNotFound), "Error should be ErrProductNotFound")

	require.NoError(t, mock.ExpectationsWereMet())
}
