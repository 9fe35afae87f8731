package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/lib/pq"

	"hardware-catalog-service/internal/domain"
)

const productColumns = `id, name, category, vendor_code, maker, model, price, market_price, supplier_price, warranty_days, count, is_hidden, created_by, updated_by, created_at, updated_at`

func scanProduct(row interface{ Scan(...interface{}) error }, p *domain.Product) error {
	return row.Scan(
		&p.ID, &p.Name, &p.Category, &p.VendorCode, &p.Maker, &p.Model,
		&p.Price, &p.MarketPrice, &p.SupplierPrice, &p.WarrantyDays,
		&p.Count, &p.IsHidden, &p.CreatedBy, &p.UpdatedBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
}

func (s *PostgresStore) CreateProduct(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO shop.products
			(name, category, vendor_code, maker, model, price, market_price, supplier_price, warranty_days, count, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + productColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		product.Name, product.Category, product.VendorCode, product.Maker, product.Model,
		product.Price, product.MarketPrice, product.SupplierPrice, product.WarrantyDays,
		product.Count, product.CreatedBy, product.CreatedBy,
	)

	var created domain.Product
	if err := scanProduct(row, &created); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // Unique violation
			if strings.Contains(pqErr.Constraint, "products_name_key") || strings.Contains(pqErr.Detail, "Key (name)") {
				return nil, ErrProductNameTaken
			}
		}
		return nil, fmt.Errorf("store: CreateProduct failed to scan row: %w", err)
	}
	return &created, nil
}

// buildSearchClauses turns SearchProductsParams into positional WHERE clauses.
// Each rule contributes at most one clause; the caller conjoins them with AND.
//
// Range filters fire only when both bounds are non-zero. That means a
// [0,0] range does not filter at all, which the legacy storefront relies on
// when a filter slider has not been touched. The warranty filter is the odd
// one out: it is pointer-gated, so warranty_days = 0 is a real filter.
func buildSearchClauses(params SearchProductsParams) ([]string, []interface{}) {
	var whereClauses []string
	var queryArgs []interface{}
	argID := 1

	if params.OnlyOrdered {
		whereClauses = append(whereClauses,
			"EXISTS (SELECT 1 FROM shop.order_products op WHERE op.product_id = shop.products.id)")
	}
	if params.Category != "" {
		whereClauses = append(whereClauses, fmt.Sprintf("category = $%d", argID))
		queryArgs = append(queryArgs, params.Category)
		argID++
	}
	ranges := []struct {
		column string
		bounds [2]float64
	}{
		{"price", params.Price},
		{"supplier_price", params.SupplierPrice},
		{"market_price", params.MarketPrice},
	}
	for _, r := range ranges {
		if r.bounds[0] != 0 && r.bounds[1] != 0 {
			whereClauses = append(whereClauses, fmt.Sprintf("%s BETWEEN $%d AND $%d", r.column, argID, argID+1))
			queryArgs = append(queryArgs, r.bounds[0], r.bounds[1])
			argID += 2
		}
	}
	if params.WarrantyDays != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("warranty_days = $%d", argID))
		queryArgs = append(queryArgs, *params.WarrantyDays)
		argID++
	}
	if params.Term != "" {
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(category ILIKE $%d OR name ILIKE $%d OR maker ILIKE $%d OR model ILIKE $%d)",
			argID, argID+1, argID+2, argID+3))
		term := "%" + params.Term + "%"
		queryArgs = append(queryArgs, term, term, term, term)
		argID += 4
	}

	return whereClauses, queryArgs
}

// SearchProducts counts the records matching params, then fetches one page.
// Count and fetch are separate statements with no transactional linkage, so
// they may observe different snapshots under concurrent writes.
func (s *PostgresStore) SearchProducts(ctx context.Context, params SearchProductsParams) (*domain.ProductPage, error) {
	if params.Page < 1 || params.Limit < 1 {
		return nil, fmt.Errorf("%w: page and limit must be positive", ErrInvalidArgument)
	}

	whereClauses, queryArgs := buildSearchClauses(params)
	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM shop.products" + whereCondition
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&total); err != nil {
		return nil, fmt.Errorf("store: SearchProducts failed to count products: %w", err)
	}

	page := &domain.ProductPage{
		Data:     []domain.Product{},
		Total:    total,
		Page:     params.Page,
		LastPage: int(math.Ceil(float64(total) / float64(params.Limit))),
	}
	if total == 0 {
		return page, nil
	}

	argID := len(queryArgs) + 1
	// Pages are ordered by id so the sort is stable across pages even while
	// products are being written concurrently.
	dataQuery := fmt.Sprintf("SELECT %s FROM shop.products%s ORDER BY id ASC LIMIT $%d OFFSET $%d",
		productColumns, whereCondition, argID, argID+1)
	offset := (params.Page - 1) * params.Limit
	queryArgs = append(queryArgs, params.Limit, offset)

	rows, err := s.db.QueryContext(ctx, dataQuery, queryArgs...)
	if err != nil {
		return nil, fmt.Errorf("store: SearchProducts failed to query products: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("store: SearchProducts failed to scan product row: %w", err)
		}
		page.Data = append(page.Data, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: SearchProducts iteration error: %w", err)
	}

	return page, nil
}

func (s *PostgresStore) GetProductByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM shop.products WHERE id = $1;`
	var product domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, id), &product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("store: GetProductByID failed to scan row: %w", err)
	}

	orderQuery := `SELECT order_id FROM shop.order_products WHERE product_id = $1 ORDER BY order_id;`
	rows, err := s.db.QueryContext(ctx, orderQuery, id)
	if err != nil {
		return nil, fmt.Errorf("store: GetProductByID failed to query order references: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var orderID int64
		if err := rows.Scan(&orderID); err != nil {
			return nil, fmt.Errorf("store: GetProductByID failed to scan order reference: %w", err)
		}
		product.OrderIDs = append(product.OrderIDs, orderID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: GetProductByID order reference iteration error: %w", err)
	}

	return &product, nil
}

func (s *PostgresStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	query := `SELECT ` + productColumns + ` FROM shop.products ORDER BY id ASC;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("store: ListProducts failed to query products: %w", err)
	}
	defer rows.Close()

	products := []domain.Product{}
	for rows.Next() {
		var p domain.Product
		if err := scanProduct(rows, &p); err != nil {
			return nil, fmt.Errorf("store: ListProducts failed to scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: ListProducts iteration error: %w", err)
	}
	return products, nil
}

// UpsertProductByName inserts the product or, when a product with the same
// name already exists, overwrites its fields. The upsert is atomic per name
// at the database layer, which is what lets price-list ingestion run its
// rows concurrently.
func (s *PostgresStore) UpsertProductByName(ctx context.Context, product *domain.Product) (*domain.Product, error) {
	query := `
		INSERT INTO shop.products
			(name, category, vendor_code, maker, model, price, market_price, supplier_price, warranty_days, count, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (name) DO UPDATE SET
			category = EXCLUDED.category,
			vendor_code = EXCLUDED.vendor_code,
			maker = EXCLUDED.maker,
			model = EXCLUDED.model,
			price = EXCLUDED.price,
			market_price = EXCLUDED.market_price,
			supplier_price = EXCLUDED.supplier_price,
			warranty_days = EXCLUDED.warranty_days,
			count = EXCLUDED.count,
			updated_by = EXCLUDED.updated_by,
			updated_at = CURRENT_TIMESTAMP
		RETURNING ` + productColumns + `;
	`
	row := s.db.QueryRowContext(ctx, query,
		product.Name, product.Category, product.VendorCode, product.Maker, product.Model,
		product.Price, product.MarketPrice, product.SupplierPrice, product.WarrantyDays,
		product.Count, product.CreatedBy, product.CreatedBy,
	)

	var upserted domain.Product
	if err := scanProduct(row, &upserted); err != nil {
		return nil, fmt.Errorf("store: UpsertProductByName failed to scan row: %w", err)
	}
	return &upserted, nil
}

// UpdateProduct applies a partial patch; nil fields are left untouched.
func (s *PostgresStore) UpdateProduct(ctx context.Context, id int64, patch ProductPatch, updatedBy *string) (*domain.Product, error) {
	var setClauses []string
	var queryArgs []interface{}
	argID := 1

	set := func(column string, value interface{}) {
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", column, argID))
		queryArgs = append(queryArgs, value)
		argID++
	}

	if patch.Name != nil {
		set("name", *patch.Name)
	}
	if patch.Category != nil {
		set("category", *patch.Category)
	}
	if patch.VendorCode != nil {
		set("vendor_code", *patch.VendorCode)
	}
	if patch.Maker != nil {
		set("maker", *patch.Maker)
	}
	if patch.Model != nil {
		set("model", *patch.Model)
	}
	if patch.Price != nil {
		set("price", *patch.Price)
	}
	if patch.MarketPrice != nil {
		set("market_price", *patch.MarketPrice)
	}
	if patch.SupplierPrice != nil {
		set("supplier_price", *patch.SupplierPrice)
	}
	if patch.WarrantyDays != nil {
		set("warranty_days", *patch.WarrantyDays)
	}
	if patch.Count != nil {
		set("count", *patch.Count)
	}
	if patch.IsHidden != nil {
		set("is_hidden", *patch.IsHidden)
	}

	if len(setClauses) == 0 {
		return nil, fmt.Errorf("%w: no fields to update", ErrInvalidArgument)
	}

	if updatedBy != nil {
		set("updated_by", *updatedBy)
	}
	setClauses = append(setClauses, "updated_at = CURRENT_TIMESTAMP")

	query := fmt.Sprintf("UPDATE shop.products SET %s WHERE id = $%d RETURNING %s",
		strings.Join(setClauses, ", "), argID, productColumns)
	queryArgs = append(queryArgs, id)

	var updated domain.Product
	if err := scanProduct(s.db.QueryRowContext(ctx, query, queryArgs...), &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			if strings.Contains(pqErr.Constraint, "products_name_key") || strings.Contains(pqErr.Detail, "Key (name)") {
				return nil, ErrProductNameTaken
			}
		}
		return nil, fmt.Errorf("store: UpdateProduct failed to scan row: %w", err)
	}
	return &updated, nil
}

// DeleteProduct removes the product and its order references in one
// transaction, so orders never point at a product that is gone.
func (s *PostgresStore) DeleteProduct(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shop.order_products WHERE product_id = $1;`, id); err != nil {
		return fmt.Errorf("store: DeleteProduct failed to remove order references: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM shop.products WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteProduct failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrProductNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: DeleteProduct failed to commit: %w", err)
	}
	return nil
}

// GetPriceBounds reports min/max per price field and the distinct warranty
// values present in the catalog. An empty catalog yields zero bounds.
func (s *PostgresStore) GetPriceBounds(ctx context.Context) (*domain.PriceBounds, error) {
	query := `
		SELECT COALESCE(MIN(price), 0), COALESCE(MAX(price), 0),
			COALESCE(MIN(market_price), 0), COALESCE(MAX(market_price), 0),
			COALESCE(MIN(supplier_price), 0), COALESCE(MAX(supplier_price), 0)
		FROM shop.products;
	`
	var bounds domain.PriceBounds
	err := s.db.QueryRowContext(ctx, query).Scan(
		&bounds.Price[0], &bounds.Price[1],
		&bounds.MarketPrice[0], &bounds.MarketPrice[1],
		&bounds.SupplierPrice[0], &bounds.SupplierPrice[1],
	)
	if err != nil {
		return nil, fmt.Errorf("store: GetPriceBounds failed to scan bounds: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT warranty_days FROM shop.products ORDER BY warranty_days;`)
	if err != nil {
		return nil, fmt.Errorf("store: GetPriceBounds failed to query warranty variations: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var warranty float64
		if err := rows.Scan(&warranty); err != nil {
			return nil, fmt.Errorf("store: GetPriceBounds failed to scan warranty variation: %w", err)
		}
		bounds.WarrantyVariations = append(bounds.WarrantyVariations, warranty)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: GetPriceBounds iteration error: %w", err)
	}

	return &bounds, nil
}

// SetImportedHidden toggles visibility of every imported product, i.e. those
// carrying a dealer vendor code. Returns the number of products touched.
func (s *PostgresStore) SetImportedHidden(ctx context.Context, hidden bool) (int64, error) {
	query := `UPDATE shop.products SET is_hidden = $1, updated_at = CURRENT_TIMESTAMP WHERE vendor_code <> '';`
	result, err := s.db.ExecContext(ctx, query, hidden)
	if err != nil {
		return 0, fmt.Errorf("store: SetImportedHidden failed to execute update: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: SetImportedHidden failed to get rows affected: %w", err)
	}
	return rowsAffected, nil
}
