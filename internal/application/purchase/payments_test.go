package purchase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/purchase"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// seedCreditPurchase registra una compra al crédito de total 118 con
// vencimiento a 30 días.
func seedCreditPurchase(t *testing.T, f *fixture) string {
	t.Helper()
	due := time.Now().AddDate(0, 1, 0)
	req := createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(10), UnitCost: dec(11.80)})
	req.PaymentType = entity.PaymentTypeCredit
	req.DueDate = &due

	resp, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{})
	require.NoError(t, err)
	require.Equal(t, entity.PaymentStatusPending, resp.PaymentStatus)
	return resp.ID
}

func TestRegisterPayment_ParcialYLuegoTotal(t *testing.T) {
	f := newFixture()
	id := seedCreditPurchase(t, f)

	resp, err := f.uc.RegisterPayment(context.Background(), testCompanyID, testUserID, id,
		dto.RegisterPaymentRequest{Amount: dec(50), Method: "transferencia"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPartial, resp.PaymentStatus)
	assert.True(t, resp.PaidAmount.Equal(dec(50)))

	resp, err = f.uc.RegisterPayment(context.Background(), testCompanyID, testUserID, id,
		dto.RegisterPaymentRequest{Amount: dec(68), Method: "efectivo"})
	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)
	assert.True(t, resp.PaidAmount.Equal(resp.Total))

	payments, err := f.uc.ListPayments(context.Background(), testCompanyID, id)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
}

func TestRegisterPayment_ExcedeElSaldo(t *testing.T) {
	f := newFixture()
	id := seedCreditPurchase(t, f)

	_, err := f.uc.RegisterPayment(context.Background(), testCompanyID, testUserID, id,
		dto.RegisterPaymentRequest{Amount: dec(200)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "un pago mayor al saldo pendiente debe rechazarse")
}

func TestRegisterPayment_CompraYaPagada(t *testing.T) {
	f := newFixture()
	id := seedCreditPurchase(t, f)

	_, err := f.uc.RegisterPayment(context.Background(), testCompanyID, testUserID, id,
		dto.RegisterPaymentRequest{Amount: dec(118)})
	require.NoError(t, err)

	_, err = f.uc.RegisterPayment(context.Background(), testCompanyID, testUserID, id,
		dto.RegisterPaymentRequest{Amount: dec(1)})
	assert.ErrorIs(t, err, domain.ErrAlreadyPaid)
}

func TestRegisterPayment_CompraAlContado(t *testing.T) {
	f := newFixture()
	resp, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID,
		createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(1), UnitCost: dec(10)}),
		purchase.Capabilities{})
	require.NoError(t, err)

	_, err = f.uc.RegisterPayment(context.Background(), testCompanyID, testUserID, resp.ID,
		dto.RegisterPaymentRequest{Amount: dec(5)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "las compras al contado no aceptan pagos")
}

func TestRegisterPayment_MontoNoPositivo(t *testing.T) {
	f := newFixture()
	id := seedCreditPurchase(t, f)

	_, err := f.uc.RegisterPayment(context.Background(), testCompanyID, testUserID, id,
		dto.RegisterPaymentRequest{Amount: dec(0)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
