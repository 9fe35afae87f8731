package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"hardware-catalog-service/internal/domain"
)

const orderColumns = `id, client_id, status, created_by, created_at, updated_at`

func scanOrder(row interface{ Scan(...interface{}) error }, o *domain.Order) error {
	return row.Scan(&o.ID, &o.ClientID, &o.Status, &o.CreatedBy, &o.CreatedAt, &o.UpdatedAt)
}

// CreateOrder inserts the order and its product references in a single
// transaction. The join rows it writes are what the onlyOrdered product
// filter observes.
func (s *PostgresStore) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: CreateOrder failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO shop.orders (client_id, status, created_by)
		VALUES ($1, $2, $3)
		RETURNING ` + orderColumns + `;
	`
	var created domain.Order
	if err := scanOrder(tx.QueryRowContext(ctx, query, order.ClientID, order.Status, order.CreatedBy), &created); err != nil {
		return nil, fmt.Errorf("store: CreateOrder failed to scan row: %w", err)
	}

	for _, productID := range order.ProductIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO shop.order_products (order_id, product_id) VALUES ($1, $2);`,
			created.ID, productID,
		); err != nil {
			return nil, fmt.Errorf("store: CreateOrder failed to link product %d: %w", productID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: CreateOrder failed to commit: %w", err)
	}

	created.ProductIDs = order.ProductIDs
	return &created, nil
}

func (s *PostgresStore) GetOrderByID(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM shop.orders WHERE id = $1;`
	var order domain.Order
	if err := scanOrder(s.db.QueryRowContext(ctx, query, id), &order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("store: GetOrderByID failed to scan row: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT product_id FROM shop.order_products WHERE order_id = $1 ORDER BY product_id;`, id)
	if err != nil {
		return nil, fmt.Errorf("store: GetOrderByID failed to query products: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var productID int64
		if err := rows.Scan(&productID); err != nil {
			return nil, fmt.Errorf("store: GetOrderByID failed to scan product reference: %w", err)
		}
		order.ProductIDs = append(order.ProductIDs, productID)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("store: GetOrderByID product reference iteration error: %w", err)
	}

	return &order, nil
}

func (s *PostgresStore) ListOrders(ctx context.Context, params ListOrdersParams) ([]domain.Order, int, error) {
	var whereClauses []string
	var queryArgs []interface{}
	argID := 1

	if params.ClientID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("client_id = $%d", argID))
		queryArgs = append(queryArgs, *params.ClientID)
		argID++
	}
	if params.Status != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("status = $%d", argID))
		queryArgs = append(queryArgs, *params.Status)
		argID++
	}

	whereCondition := ""
	if len(whereClauses) > 0 {
		whereCondition = " WHERE " + strings.Join(whereClauses, " AND ")
	}

	countQuery := "SELECT COUNT(*) FROM shop.orders" + whereCondition
	var totalCount int
	if err := s.db.QueryRowContext(ctx, countQuery, queryArgs...).Scan(&totalCount); err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders failed to count orders: %w", err)
	}

	if totalCount == 0 {
		return []domain.Order{}, 0, nil
	}

	query := fmt.Sprintf("SELECT %s FROM shop.orders%s ORDER BY id ASC LIMIT $%d OFFSET $%d",
		orderColumns, whereCondition, argID, argID+1)
	queryArgs = append(queryArgs, params.Limit, params.Offset)

	rows, err := s.db.QueryContext(ctx, query, queryArgs...)
	if err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, params.Limit)
	for rows.Next() {
		var o domain.Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, 0, fmt.Errorf("store: ListOrders failed to scan order row: %w", err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("store: ListOrders iteration error: %w", err)
	}

	return orders, totalCount, nil
}

func (s *PostgresStore) DeleteOrder(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: DeleteOrder failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM shop.order_products WHERE order_id = $1;`, id); err != nil {
		return fmt.Errorf("store: DeleteOrder failed to remove product references: %w", err)
	}

	result, err := tx.ExecContext(ctx, `DELETE FROM shop.orders WHERE id = $1;`, id)
	if err != nil {
		return fmt.Errorf("store: DeleteOrder failed to execute delete: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: DeleteOrder failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return ErrOrderNotFound
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: DeleteOrder failed to commit: %w", err)
	}
	return nil
}
