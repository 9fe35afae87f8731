package store

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"hardware-catalog-service/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderRowColumns = []string{"id", "client_id", "status", "created_by", "created_at", "updated_at"}

func TestPostgresStore_CreateOrder(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)
	orderToCreate := &domain.Order{
		ClientID:   int64(3),
		Status:     domain.OrderStatusNew,
		ProductIDs: []int64{10, 11},
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO shop\.orders`).
		WithArgs(orderToCreate.ClientID, orderToCreate.Status, orderToCreate.CreatedBy).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(int64(7), orderToCreate.ClientID, orderToCreate.Status, nil, now, now))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO shop.order_products (order_id, product_id) VALUES ($1, $2);`)).
		WithArgs(int64(7), int64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO shop.order_products (order_id, product_id) VALUES ($1, $2);`)).
		WithArgs(int64(7), int64(11)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	created, err := store.CreateOrder(context.Background(), orderToCreate)

	require.NoError(t, err)
	require.NotNil(t, created)
	assert.Equal(t, int64(7), created.ID)
	assert.Equal(t, []int64{10, 11}, created.ProductIDs)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_GetOrderByID(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	now := time.Now().Truncate(time.Millisecond)

	mock.ExpectQuery(`FROM shop\.orders WHERE id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows(orderRowColumns).
			AddRow(int64(7), int64(3), domain.OrderStatusPaid, nil, now, now))
	mock.ExpectQuery(`SELECT product_id FROM shop\.order_products WHERE order_id = \$1`).
		WithArgs(int64(7)).
		WillReturnRows(sqlmock.NewRows([]string{"product_id"}).AddRow(int64(10)).AddRow(int64(11)))

	order, err := store.GetOrderByID(context.Background(), 7)

	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusPaid, order.Status)
	assert.Equal(t, []int64{10, 11}, order.ProductIDs)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_DeleteOrder_NotFound(t *testing.T) {
	db, mock, store := newMockDBAndStore(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shop.order_products WHERE order_id = $1;`)).
		WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM shop.orders WHERE id = $1;`)).
		WithArgs(int64(99)).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := store.DeleteOrder(context.Background(), 99)

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrOrderNotFound), "Error should be ErrOrderNotFound")

	require.NoError(t, mock.ExpectationsWereMet())
}
