package order

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/product"
)

func setupOrderTest(t *testing.T) (*Service, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:                 sqlDB,
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		TranslateError:         true,
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	return NewService(db, &config.Config{}), mock
}

func cartRows(rows ...[]driverValue) *sqlmock.Rows {
	r := sqlmock.NewRows([]string{"id", "user_id", "product_id", "quantity"})
	for _, row := range rows {
		r.AddRow(row[0], row[1], row[2], row[3])
	}
	return r
}

type driverValue = interface{}

func TestCreateOrderFromCart_EmptyCart(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(cartRows())
	mock.ExpectRollback()

	_, err := svc.CreateOrderFromCart(7, &CreateOrderRequest{})
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromCart_ProductGone(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(cartRows([]driverValue{1, 7, 3, 2}))
	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}))
	mock.ExpectRollback()

	_, err := svc.CreateOrderFromCart(7, &CreateOrderRequest{})

	var notFound *product.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, uint(3), notFound.ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromCart_InsufficientStock(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(cartRows([]driverValue{1, 7, 3, 5}))
	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(3, "Widget", 1000, 2))
	mock.ExpectRollback()

	_, err := svc.CreateOrderFromCart(7, &CreateOrderRequest{})

	var insufficient *product.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.Equal(t, "Widget", insufficient.ProductName)
	assert.Equal(t, 2, insufficient.Available)
	assert.Equal(t, 5, insufficient.Requested)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// A concurrent checkout can drain stock between the read and the
// write; the conditional update reporting zero rows must abort.
func TestCreateOrderFromCart_ConcurrentDecrementLoses(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(cartRows([]driverValue{1, 7, 3, 2}))
	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(3, "Widget", 1000, 2))
	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	_, err := svc.CreateOrderFromCart(7, &CreateOrderRequest{})

	var insufficient *product.InsufficientStockError
	require.ErrorAs(t, err, &insufficient)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromCart_Success(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(cartRows([]driverValue{1, 7, 3, 2}))
	mock.ExpectQuery(`SELECT \* FROM "products"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "price", "stock"}).
			AddRow(3, "Widget", 1000, 5))
	mock.ExpectExec(`UPDATE "products" SET "stock"=stock - \$1`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT \* FROM "product_sellers"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "seller_id", "stock", "price"}))
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(42))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM "cart_items"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ord, err := svc.CreateOrderFromCart(7, &CreateOrderRequest{PaymentMethod: "card"})
	require.NoError(t, err)

	// Price lives in cents end to end: 2 x 1000 = 2000, no division.
	assert.Equal(t, int64(2000), ord.TotalAmount)
	assert.Equal(t, OrderStatusPending, ord.Status)
	assert.Equal(t, uint(42), ord.ID)
	require.Len(t, ord.Items, 1)
	assert.Equal(t, uint(3), ord.Items[0].ProductID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromSession_WinsInsert(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectExec(`DELETE FROM "cart_items"`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ord, err := svc.CreateOrderFromSession(&SessionOrderParams{
		UserID:        7,
		SessionID:     "cs_test_123",
		Items:         []OrderItem{{ProductID: 3, Quantity: 2}},
		TotalAmount:   2000,
		PaymentMethod: "card",
	})
	require.NoError(t, err)

	assert.Equal(t, uint(11), ord.ID)
	assert.Equal(t, OrderStatusProcessing, ord.Status)
	assert.Equal(t, int64(2000), ord.TotalAmount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// When the conflicting insert is a no-op the existing order for the
// session is returned, so both confirmation triggers converge on one
// order.
func TestCreateOrderFromSession_LosesRace(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectCommit()
	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE session_id = \$1`).
		WithArgs("cs_test_123", 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status", "total_amount", "session_id"}).
			AddRow(9, 7, "processing", 2000, "cs_test_123"))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity"}).
			AddRow(1, 9, 3, 2))

	ord, err := svc.CreateOrderFromSession(&SessionOrderParams{
		UserID:      7,
		SessionID:   "cs_test_123",
		Items:       []OrderItem{{ProductID: 3, Quantity: 2}},
		TotalAmount: 2000,
	})
	require.NoError(t, err)

	assert.Equal(t, uint(9), ord.ID)
	require.Len(t, ord.Items, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrder_NotFound(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.GetOrder(99)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestGetUserOrders_EmptyIsNotFound(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.GetUserOrders(7)
	assert.ErrorIs(t, err, ErrNoOrders)
}

func TestUpdateOrderStatus_InvalidValue(t *testing.T) {
	svc, _ := setupOrderTest(t)

	_, err := svc.UpdateOrderStatus(1, OrderStatus("cancelled"))
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUpdateOrderStatus_Success(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "status"}).AddRow(5, 7, "pending"))
	mock.ExpectQuery(`SELECT \* FROM "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id", "product_id", "quantity"}))
	mock.ExpectExec(`UPDATE "orders" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	ord, err := svc.UpdateOrderStatus(5, OrderStatusShipped)
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, ord.Status)
}

func TestDeleteOrder_NotFound(t *testing.T) {
	svc, mock := setupOrderTest(t)

	mock.ExpectExec(`UPDATE "orders" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.DeleteOrder(99)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestOrderStatusValid(t *testing.T) {
	for _, s := range []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered} {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, OrderStatus("cancelled").Valid())
	assert.False(t, OrderStatus("").Valid())
}
