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

// seedPurchase registra una compra de 50 uds a 20 en el almacén 1 y limpia el
// spy de movimientos. Con el stock inicial del fixture (100 a costo 10) deja
// el producto en 150 uds a costo promedio 13.33.
func seedPurchase(t *testing.T, f *fixture) string {
	t.Helper()
	resp, err := f.uc.CreatePurchase(context.Background(), testCompanyID, testUserID,
		createRequest(dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(50), UnitCost: dec(20)}),
		purchase.Capabilities{})
	require.NoError(t, err)
	f.recorder.movements = nil
	return resp.ID
}

func updateRequest(warehouseID string, items ...dto.PurchaseItemRequest) dto.UpdatePurchaseRequest {
	return dto.UpdatePurchaseRequest{
		SupplierID:    testSupplierID,
		WarehouseID:   warehouseID,
		InvoiceNumber: "F001-000123",
		InvoiceDate:   time.Now(),
		Items:         items,
		PaymentType:   entity.PaymentTypeCash,
	}
}

func TestUpdatePurchase_AumentoAplicaSoloElDelta(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	// 50 → 60: solo entran las 10 adicionales
	resp, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id,
		updateRequest(testWarehouse1, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(60), UnitCost: dec(20)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(160)))
	assert.True(t, f.productCost(testProductID).Equal(dec(13.75)),
		"el costo mezcla solo el delta: (150*13.33+10*20)/160")

	require.Len(t, f.recorder.movements, 1)
	mov := f.recorder.movements[0]
	assert.Equal(t, entity.MovementEntry, mov.Type)
	assert.Equal(t, entity.ReasonEditIncrease, mov.Reason)
	assert.True(t, mov.Quantity.Equal(dec(10)), "el movimiento registra el delta, no la cantidad total")

	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, purchase.OutcomeApplied, resp.Outcomes[0].Status)
	assert.True(t, resp.Outcomes[0].Delta.Equal(dec(10)))
}

func TestUpdatePurchase_DisminucionNoTocaElCosto(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	// 50 → 30: salen 20, el costo promedio se conserva
	_, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id,
		updateRequest(testWarehouse1, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(30), UnitCost: dec(20)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(130)))
	assert.True(t, f.productCost(testProductID).Equal(dec(13.33)),
		"una reducción no aporta información de costo")

	require.Len(t, f.recorder.movements, 1)
	mov := f.recorder.movements[0]
	assert.Equal(t, entity.MovementExit, mov.Type)
	assert.Equal(t, entity.ReasonEditDecrease, mov.Reason)
	assert.True(t, mov.Quantity.Equal(dec(20)), "la cantidad del movimiento siempre es positiva")
}

func TestUpdatePurchase_SinCambiosEsNoOp(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	resp, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id,
		updateRequest(testWarehouse1, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(50), UnitCost: dec(20)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(150)), "guardar sin cambios no mueve stock")
	assert.True(t, f.productCost(testProductID).Equal(dec(13.33)), "guardar sin cambios no recalcula costo")
	assert.Empty(t, f.recorder.movements, "delta cero no genera movimientos")

	require.Len(t, resp.Outcomes, 1)
	assert.Equal(t, purchase.OutcomeUnchanged, resp.Outcomes[0].Status)
}

func TestUpdatePurchase_CambioDeAlmacenTraslada(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	// Misma cantidad, almacén 1 → 2: reversión completa + alta completa
	_, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id,
		updateRequest(testWarehouse2, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(50), UnitCost: dec(20)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(100)))
	assert.True(t, f.stocks.qty(testProductID, testWarehouse2).Equal(dec(50)))

	total, err := f.stocks.TotalByProduct(testProductID)
	require.NoError(t, err)
	assert.True(t, total.Equal(dec(150)), "el traslado conserva el stock total del producto")

	require.Len(t, f.recorder.movements, 2, "un traslado genera exactamente salida + entrada")
	exit, entry := f.recorder.movements[0], f.recorder.movements[1]
	assert.Equal(t, entity.MovementExit, exit.Type)
	assert.Equal(t, testWarehouse1, exit.WarehouseID)
	assert.True(t, exit.Quantity.Equal(dec(50)), "la salida revierte la cantidad original completa")
	assert.Equal(t, entity.MovementEntry, entry.Type)
	assert.Equal(t, testWarehouse2, entry.WarehouseID)
	assert.True(t, entry.Quantity.Equal(dec(50)))
	assert.Equal(t, entity.ReasonWarehouseChange, exit.Reason)
	assert.Equal(t, entity.ReasonWarehouseChange, entry.Reason)
}

func TestUpdatePurchase_CambioDeAlmacenConDelta(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	// Almacén 1 → 2 y 50 → 80: salen las 50 originales, entran las 80 nuevas
	_, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id,
		updateRequest(testWarehouse2, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(80), UnitCost: dec(20)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(100)))
	assert.True(t, f.stocks.qty(testProductID, testWarehouse2).Equal(dec(80)))

	require.Len(t, f.recorder.movements, 2)
	assert.True(t, f.recorder.movements[0].Quantity.Equal(dec(50)))
	assert.True(t, f.recorder.movements[1].Quantity.Equal(dec(80)))
}

func TestUpdatePurchase_ReversionMayorAlStockDisponible(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	// Ventas posteriores dejaron solo 30 uds en el almacén
	f.stocks.set(testProductID, testWarehouse1, dec(30))

	// 50 → 5: el delta -45 excede lo disponible; el stock queda en 0, nunca negativo
	_, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id,
		updateRequest(testWarehouse1, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(5), UnitCost: dec(20)}),
		purchase.Capabilities{})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(0)),
		"la reversión se recorta al stock disponible")
}

func TestUpdatePurchase_ProductoEliminadoSeOmiteSinAbortar(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	// Producto nuevo en la edición; el original fue eliminado del catálogo
	f.products.Create(&entity.Product{
		ID: "product-2", CompanyID: testCompanyID, Name: "Azúcar rubia 1kg", TrackStock: true,
	})
	require.NoError(t, f.products.Delete(testProductID))

	resp, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id,
		updateRequest(testWarehouse1,
			dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(50), UnitCost: dec(20)},
			dto.PurchaseItemRequest{ProductID: "product-2", Quantity: dec(10), UnitCost: dec(4)},
		),
		purchase.Capabilities{})

	require.NoError(t, err, "un producto eliminado no debe abortar la edición completa")

	byProduct := map[string]dto.ItemOutcomeDTO{}
	for _, o := range resp.Outcomes {
		byProduct[o.ProductID] = o
	}
	assert.Equal(t, purchase.OutcomeSkipped, byProduct[testProductID].Status)
	assert.Equal(t, purchase.SkipProductNotFound, byProduct[testProductID].Reason)
	assert.Equal(t, purchase.OutcomeApplied, byProduct["product-2"].Status)
	assert.True(t, f.stocks.qty("product-2", testWarehouse1).Equal(dec(10)))
}

func TestUpdatePurchase_GuardadoRepetidoEsEstable(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	req := updateRequest(testWarehouse2, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(50), UnitCost: dec(20)})

	// Primer guardado traslada; el segundo, idéntico, no debe mover nada
	_, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id, req, purchase.Capabilities{})
	require.NoError(t, err)
	f.recorder.movements = nil
	costAfterFirst := f.productCost(testProductID)

	resp, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, id, req, purchase.Capabilities{})
	require.NoError(t, err)

	assert.True(t, f.stocks.qty(testProductID, testWarehouse1).Equal(dec(100)))
	assert.True(t, f.stocks.qty(testProductID, testWarehouse2).Equal(dec(50)))
	assert.True(t, f.productCost(testProductID).Equal(costAfterFirst))
	assert.Empty(t, f.recorder.movements)
	assert.Equal(t, purchase.OutcomeUnchanged, resp.Outcomes[0].Status)
}

func TestUpdatePurchase_CompraDeOtroNegocio(t *testing.T) {
	f := newFixture()
	id := seedPurchase(t, f)

	_, err := f.uc.UpdatePurchase(context.Background(), otherCompanyID, testUserID, id,
		updateRequest(testWarehouse1, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(50), UnitCost: dec(20)}),
		purchase.Capabilities{})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestUpdatePurchase_CompraInexistente(t *testing.T) {
	f := newFixture()

	_, err := f.uc.UpdatePurchase(context.Background(), testCompanyID, testUserID, "compra-fantasma",
		updateRequest(testWarehouse1, dto.PurchaseItemRequest{ProductID: testProductID, Quantity: dec(1), UnitCost: dec(1)}),
		purchase.Capabilities{})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
