package command

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schoolkit/edupay/internal/payment/domain"
)

type fakeTransactionRepo struct {
	byNumber  map[string]*domain.Transaction
	nextID    uint
	createErr error
}

func newFakeTransactionRepo() *fakeTransactionRepo {
	return &fakeTransactionRepo{byNumber: make(map[string]*domain.Transaction), nextID: 1}
}

func (r *fakeTransactionRepo) Create(tx *domain.Transaction) error {
	if r.createErr != nil {
		return r.createErr
	}
	tx.ID = r.nextID
	r.nextID++
	r.byNumber[tx.TransactionNumber] = tx
	return nil
}

func (r *fakeTransactionRepo) FindByID(id uint) (*domain.Transaction, error) {
	for _, tx := range r.byNumber {
		if tx.ID == id {
			return tx, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTransactionRepo) FindByTransactionNumber(number string) (*domain.Transaction, error) {
	if tx, ok := r.byNumber[number]; ok {
		return tx, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTransactionRepo) FindByStudentID(studentID uint, limit, offset int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range r.byNumber {
		if tx.StudentID == studentID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeTransactionRepo) FindAll(limit, offset int) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, tx := range r.byNumber {
		out = append(out, *tx)
	}
	return out, nil
}

func (r *fakeTransactionRepo) Complete(tx *domain.Transaction) error {
	r.byNumber[tx.TransactionNumber] = tx
	return nil
}

type fakeFeeRepo struct {
	fees        map[uint]*domain.Fee
	markPaidErr error
}

func newFakeFeeRepo() *fakeFeeRepo {
	return &fakeFeeRepo{fees: make(map[uint]*domain.Fee)}
}

func (r *fakeFeeRepo) FindByID(id uint) (*domain.Fee, error) {
	if f, ok := r.fees[id]; ok {
		return f, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeFeeRepo) MarkPaid(id uint, method, transactionID string) error {
	if r.markPaidErr != nil {
		return r.markPaidErr
	}
	f, ok := r.fees[id]
	if !ok {
		return domain.ErrNotFound
	}
	f.Status = domain.FeeStatusPaid
	f.PaymentMethod = method
	f.TransactionID = transactionID
	return nil
}

type fakeInvoiceRepo struct {
	invoices    map[uint]*domain.Invoice
	markPaidErr error
}

func newFakeInvoiceRepo() *fakeInvoiceRepo {
	return &fakeInvoiceRepo{invoices: make(map[uint]*domain.Invoice)}
}

func (r *fakeInvoiceRepo) FindByID(id uint) (*domain.Invoice, error) {
	if inv, ok := r.invoices[id]; ok {
		return inv, nil
	}
	return nil, domain.ErrNotFound
}

func (r *fakeInvoiceRepo) MarkPaid(id uint, method, transactionID string) error {
	if r.markPaidErr != nil {
		return r.markPaidErr
	}
	inv, ok := r.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}
	inv.Status = domain.FeeStatusPaid
	inv.PaymentMethod = method
	inv.TransactionID = transactionID
	return nil
}

func uintPtr(v uint) *uint { return &v }

func TestCreatePendingPayment(t *testing.T) {
	transactions := newFakeTransactionRepo()
	handler := NewCreatePendingPaymentHandler(transactions)

	tx, err := handler.Handle(context.Background(), CreatePendingPaymentCommand{
		StudentID:         7,
		FeeID:             uintPtr(3),
		Amount:            1500,
		Method:            domain.MethodSSLCommerz,
		TransactionNumber: "TXN-1001",
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPending, tx.Status)
	assert.Nil(t, tx.VerifiedAt)
	assert.Nil(t, tx.PaymentDate)

	stored, err := transactions.FindByTransactionNumber("TXN-1001")
	require.NoError(t, err)
	assert.Equal(t, tx.ID, stored.ID)
}

func TestCreatePendingPaymentValidation(t *testing.T) {
	handler := NewCreatePendingPaymentHandler(newFakeTransactionRepo())

	_, err := handler.Handle(context.Background(), CreatePendingPaymentCommand{TransactionNumber: "TXN-1", Amount: 100})
	assert.Error(t, err, "student_id is required")

	_, err = handler.Handle(context.Background(), CreatePendingPaymentCommand{StudentID: 1, Amount: 100})
	assert.Error(t, err, "transaction_number is required")

	_, err = handler.Handle(context.Background(), CreatePendingPaymentCommand{StudentID: 1, TransactionNumber: "TXN-1", Amount: 0})
	assert.Error(t, err, "amount must be positive")
}

func TestCompletePayment(t *testing.T) {
	transactions := newFakeTransactionRepo()
	fees := newFakeFeeRepo()
	invoices := newFakeInvoiceRepo()
	fees.fees[3] = &domain.Fee{ID: 3, StudentID: 7, Amount: 1500, Status: domain.FeeStatusUnpaid}

	pending := NewCreatePendingPaymentHandler(transactions)
	complete := NewCompletePaymentHandler(transactions, fees, invoices)

	_, err := pending.Handle(context.Background(), CreatePendingPaymentCommand{
		StudentID:         7,
		FeeID:             uintPtr(3),
		Amount:            1500,
		Method:            domain.MethodSSLCommerz,
		TransactionNumber: "TXN-1001",
	})
	require.NoError(t, err)

	tx, err := complete.Handle(context.Background(), CompletePaymentCommand{
		TransactionNumber:    "TXN-1001",
		GatewayTransactionID: "BANK-555",
		GatewayResponse:      `{"status":"VALID"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, tx.Status)
	assert.Equal(t, "BANK-555", tx.GatewayTransactionID)
	require.NotNil(t, tx.VerifiedAt)
	require.NotNil(t, tx.PaymentDate)

	fee := fees.fees[3]
	assert.Equal(t, domain.FeeStatusPaid, fee.Status)
	assert.Equal(t, domain.MethodSSLCommerz, fee.PaymentMethod)
	assert.Equal(t, "TXN-1001", fee.TransactionID)
}

func TestCompletePaymentNeverRegresses(t *testing.T) {
	transactions := newFakeTransactionRepo()
	complete := NewCompletePaymentHandler(transactions, newFakeFeeRepo(), newFakeInvoiceRepo())

	first := &domain.Transaction{
		StudentID:            7,
		Amount:               1500,
		TransactionNumber:    "TXN-1001",
		GatewayTransactionID: "BANK-555",
		GatewayResponse:      `{"status":"VALID"}`,
		Status:               domain.StatusCompleted,
	}
	require.NoError(t, transactions.Create(first))

	// a re-validation carries a different provider body; the first snapshot
	// must stand
	tx, err := complete.Handle(context.Background(), CompletePaymentCommand{
		TransactionNumber:    "TXN-1001",
		GatewayTransactionID: "BANK-999",
		GatewayResponse:      `{"status":"VALIDATED"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, tx.Status)
	assert.Equal(t, "BANK-555", tx.GatewayTransactionID)
	assert.Equal(t, `{"status":"VALID"}`, tx.GatewayResponse)
}

func TestCompletePaymentUnknownNumber(t *testing.T) {
	complete := NewCompletePaymentHandler(newFakeTransactionRepo(), newFakeFeeRepo(), newFakeInvoiceRepo())

	_, err := complete.Handle(context.Background(), CompletePaymentCommand{TransactionNumber: "TXN-404"})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRecordCompletedPayment(t *testing.T) {
	transactions := newFakeTransactionRepo()
	fees := newFakeFeeRepo()
	invoices := newFakeInvoiceRepo()
	invoices.invoices[9] = &domain.Invoice{ID: 9, StudentID: 7, Amount: 2500, Status: domain.FeeStatusUnpaid}

	handler := NewRecordCompletedPaymentHandler(transactions, fees, invoices)

	tx, err := handler.Handle(context.Background(), RecordCompletedPaymentCommand{
		StudentID:            7,
		InvoiceID:            uintPtr(9),
		Amount:               2500,
		Method:               domain.MethodBkash,
		TransactionNumber:    "TXN-2001",
		GatewayTransactionID: "TRX9H7",
		GatewayResponse:      `{"transactionStatus":"Completed"}`,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCompleted, tx.Status)
	require.NotNil(t, tx.VerifiedAt)
	require.NotNil(t, tx.PaymentDate)

	inv := invoices.invoices[9]
	assert.Equal(t, domain.FeeStatusPaid, inv.Status)
	assert.Equal(t, domain.MethodBkash, inv.PaymentMethod)
}

func TestRecordCompletedPaymentStampFailureIsSwallowed(t *testing.T) {
	transactions := newFakeTransactionRepo()
	fees := newFakeFeeRepo()
	fees.markPaidErr = errors.New("fee row locked")

	handler := NewRecordCompletedPaymentHandler(transactions, fees, newFakeInvoiceRepo())

	tx, err := handler.Handle(context.Background(), RecordCompletedPaymentCommand{
		StudentID:         7,
		FeeID:             uintPtr(3),
		Amount:            1500,
		Method:            domain.MethodBkash,
		TransactionNumber: "TXN-2002",
	})

	require.NoError(t, err, "the ledger write is authoritative; a stale fee is reconciled later")
	assert.Equal(t, domain.StatusCompleted, tx.Status)
}
