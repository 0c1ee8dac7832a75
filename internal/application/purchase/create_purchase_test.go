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

func createRequest(items ...dto.PurchaseItemRequest) dto.CreatePurchaseRequest {
	return dto.CreatePurchaseRequest{
		SupplierID:    testSupplierID,
		WarehouseID:   testWarehouse1,
		InvoiceNumber: "F001-000123",
		InvoiceDate:   time.Now(),
		Items:         items,
		PaymentType:   entity.PaymentTypeCash,
	}
}

func TestCreatePurchase_SumaStockYRecalculaCosto(t *testing.T) {
	f := newFixture()

	// 100 uds a costo 10 + compra de 50 a 20 → promedio 13.33
	resp, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID,
		createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(50), UnitCost: dec(20)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(150)),
		"el stock del almacén debe subir por la cantidad comprada")
	assert.True(t, f.productCost(testProductID).Equal(dec(13.33)),
		"el costo promedio debe mezclar stock previo y compra: (100*10+50*20)/150")

	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, purchase.OutcomeApplied, resp.Outcomes[0].Status)

	require.Len(t, f.recorder.movements, 1)
	mov := f.recorder.movements[0]
	assert.Equal(t, entity.MovementEntry, mov.Type)
	assert.Equal(t, entity.ReasonPurchase, mov.Reason)
	assert.True(t, mov.Quantity.Equal(dec(50)))
	assert.Equal(t, resp.ID, mov.ReferenceID)
}

func TestCreatePurchase_ConsolidaLineasConBonificacion(t *testing.T) {
	f := newFixture()
	f.stocks.set(testProductID, testWarehouse1, dec(0))

	// 10 pagadas a 6 + 2 de bonificación a 0 = 12 uds a costo efectivo 5
	_, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID,
		createRequest(
			dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(10), UnitCost: dec(6)},
			dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(2), UnitCost: dec(0)},
		),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(12)))
	assert.True(t, f.productCost(testProductID).Equal(dec(5)),
		"sin base previa el costo debe ser el unitario efectivo de la compra consolidada")
	assert.Len(t, f.recorder.movements, 1,
		"las líneas del mismo producto generan un solo movimiento consolidado")
}

func TestCreatePurchase_ProductoInexistenteSeOmite(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID,
		createRequest(
			dto.PurchaseItemRequest{ProductID: "producto-fantasma", Quantity: dec(5), UnitCost: dec(4)},
			dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(10), UnitCost: dec(10)},
		),
		purchase.Capabilities{})

	require.NoError(t, err, "un producto desaparecido no debe abortar la compra")
	require.Len(t, resp.Outcomes, 2)

	byProduct := map[string]dto.ItemOutcomeDTO{}
	for _, o := range resp.Outcomes {
		byProduct[o.ProductID] = o
	}
	assert.Equal(t, purchase.OutcomeSkipped, byProduct["producto-fantasma"].Status)
	assert.Equal(t, purchase.SkipProductNotFound, byProduct["producto-fantasma"].Reason)
	assert.Equal(t, purchase.OutcomeApplied, byProduct[testProductID].Status)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(110)),
		"los demás productos se procesan con normalidad")
}

func TestCreatePurchase_ProductoSinControlDeStock(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID,
		createRequest(dto.PurchaseItemRequest{ProductID: testNoTrackID, Quantity: dec(3), UnitCost: dec(100)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, purchase.OutcomeSkipped, resp.Outcomes[0].Status)
	assert.Equal(t, purchase.SkipNoTrackStock, resp.Outcomes[0].Reason)
	assert.Empty(t, f.recorder.movements, "sin control de stock no hay movimientos")
}

func TestCreatePurchase_ContadoQuedaPagada(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID,
		createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(10), UnitCost: dec(11.80)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.Equal(t, entity.PaymentStatusPaid, resp.PaymentStatus)
	assert.True(t, resp.PaidAmount.Equal(resp.Total))
	assert.True(t, resp.Total.Equal(dec(118)))
	assert.True(t, resp.Subtotal.Equal(dec(100)), "el subtotal es el total sin IGV (total/1.18)")
	assert.True(t, resp.Tax.Equal(dec(18)))
}

func TestCreatePurchase_CreditoSinVencimientoNiCuotas(t *testing.T) {
	f := newFixture()

	req := createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(10), UnitCost: dec(10)})
	req.PaymentType = entity.PaymentTypeCredit

	_, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput,
		"crédito de pago único sin fecha de vencimiento debe rechazarse")
}

func TestCreatePurchase_CuotasQueNoSumanElTotal(t *testing.T) {
	f := newFixture()

	due := time.Now().AddDate(0, 1, 0)
	req := createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(10), UnitCost: dec(10)})
	req.PaymentType = entity.PaymentTypeCredit
	req.Installments = []dto.InstallmentRequest{
		{Amount: dec(50), DueDate: due},
		{Amount: dec(40), DueDate: due.AddDate(0, 1, 0)},
	}

	_, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{})
	assert.ErrorIs(t, err, domain.ErrInstallmentsTotal)
}

func TestCreatePurchase_LineaIngredienteSinModuloRestaurant(t *testing.T) {
	f := newFixture()

	req := createRequest(dto.PurchaseItemRequest{
		ProductID: testProductID, Quantity: dec(5), UnitCost: dec(3),
		ItemType: entity.ItemTypeIngredient,
	})

	_, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{Restaurant: true})
	assert.NoError(t, err, "con el módulo restaurant activo la línea ingredient es válida")
}

func TestCreatePurchase_LotesSoloConModuloPharmacy(t *testing.T) {
	f := newFixture()

	exp := time.Now().AddDate(1, 0, 0)
	req := createRequest(dto.PurchaseItemRequest{
		ProductID: testProductID, Quantity: dec(20), UnitCost: dec(8),
		BatchNumber: "L-2026-001", ExpirationDate: &exp,
	})

	_, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{})
	require.NoError(t, err)
	assert.Empty(t, f.batches.batches, "sin módulo pharmacy el lote se descarta")

	_, err = f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{Pharmacy: true})
	require.NoError(t, err)
	require.Len(t, f.batches.batches, 1)
	assert.Equal(t, "L-2026-001", f.batches.batches[0].BatchNumber)
}

func TestCreatePurchase_AlmacenDeOtroNegocio(t *testing.T) {
	f := newFixture()

	req := createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(1), UnitCost: dec(1)})
	req.WarehouseID = "warehouse-ajeno"

	_, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID, req, purchase.Capabilities{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
