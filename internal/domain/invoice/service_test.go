package invoice

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/your-org/order-service/internal/config"
	"github.com/your-org/order-service/internal/domain/order"
)

func setupInvoiceTest(t *testing.T) (*Service, sqlmock.Sqlmock) {
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

func expectOrderAndCustomer(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status"}).
			AddRow(42, 7, 17800, "processing"))
	mock.ExpectQuery(`SELECT \* FROM "users"`).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "email", "first_name", "last_name",
			"billing_address", "billing_zip_code", "billing_city", "billing_country",
		}).AddRow(7, "buyer@example.com", "Ada", "Lovelace", "12 Main St", "1050", "Brussels", "Belgium"))
}

func TestCreateFromOrder_IssuesSequentialNumber(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	expectOrderAndCustomer(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE invoice_sequences SET value = value \+ 1 WHERE id = \$1 RETURNING value`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(8))
	mock.ExpectQuery(`INSERT INTO "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(3))
	mock.ExpectCommit()

	inv, err := svc.CreateFromOrder(42)
	require.NoError(t, err)

	assert.Equal(t, "IFSB-8", inv.InvoiceNumber)
	assert.Equal(t, uint(42), inv.OrderID)
	assert.Equal(t, uint(7), inv.UserID)
	assert.Equal(t, int64(17800), inv.TotalAmount)
	assert.Equal(t, PaymentStatusUnpaid, inv.PaymentStatus)
	assert.Equal(t, "buyer@example.com", inv.CustomerDetails.Email)
	assert.Equal(t, "12 Main St, 1050, Brussels, Belgium", inv.CustomerDetails.Address)
	assert.False(t, inv.IssuedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFromOrder_DuplicateOrder(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	expectOrderAndCustomer(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE invoice_sequences`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(9))
	mock.ExpectQuery(`INSERT INTO "invoices"`).
		WillReturnError(gorm.ErrDuplicatedKey)
	mock.ExpectRollback()

	_, err := svc.CreateFromOrder(42)
	assert.ErrorIs(t, err, ErrInvoiceExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFromOrder_OrderNotFound(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	mock.ExpectQuery(`SELECT \* FROM "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.CreateFromOrder(42)
	assert.ErrorIs(t, err, order.ErrOrderNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateFromOrder_MissingSequenceRow(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	expectOrderAndCustomer(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`UPDATE invoice_sequences`).
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"value"}))
	mock.ExpectRollback()

	_, err := svc.CreateFromOrder(42)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invoice sequence")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	mock.ExpectQuery(`SELECT \* FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.Get(5)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestListForUser_EmptyIsNotFound(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	mock.ExpectQuery(`SELECT \* FROM "invoices" WHERE user_id = \$1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := svc.ListForUser(7)
	assert.ErrorIs(t, err, ErrNoInvoices)
}

func TestUpdatePaymentStatus_InvalidValue(t *testing.T) {
	svc, _ := setupInvoiceTest(t)

	_, err := svc.UpdatePaymentStatus(5, PaymentStatus("refunded"))
	assert.ErrorIs(t, err, ErrInvalidPaymentStatus)
}

func TestUpdatePaymentStatus_Success(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	mock.ExpectQuery(`SELECT \* FROM "invoices"`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "payment_status"}).AddRow(5, "unpaid"))
	mock.ExpectExec(`UPDATE "invoices" SET`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	inv, err := svc.UpdatePaymentStatus(5, PaymentStatusPaid)
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, inv.PaymentStatus)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete_NotFound(t *testing.T) {
	svc, mock := setupInvoiceTest(t)

	mock.ExpectExec(`UPDATE "invoices" SET "deleted_at"`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := svc.Delete(5)
	assert.ErrorIs(t, err, ErrInvoiceNotFound)
}

func TestPaymentStatusValid(t *testing.T) {
	for _, status := range []PaymentStatus{PaymentStatusUnpaid, PaymentStatusPending, PaymentStatusPaid} {
		assert.True(t, status.Valid(), string(status))
	}
	assert.False(t, PaymentStatus("refunded").Valid())
	assert.False(t, PaymentStatus("").Valid())
}
