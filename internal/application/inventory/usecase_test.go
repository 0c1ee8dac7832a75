package inventory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/application/inventory"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
	"github.com/jhoicas/Compras-api/pkg/logger"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria
// ──────────────────────────────────────────────────────────────────────────────

type stockKey struct{ productID, warehouseID string }

type fakeStockRepo struct {
	rows map[stockKey]*entity.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[stockKey]*entity.Stock)}
}

func (r *fakeStockRepo) set(productID, warehouseID string, qty, min decimal.Decimal) {
	r.rows[stockKey{productID, warehouseID}] = &entity.Stock{
		ProductID: productID, WarehouseID: warehouseID, Quantity: qty, MinStock: min,
	}
}

func (r *fakeStockRepo) qty(productID, warehouseID string) decimal.Decimal {
	if s, ok := r.rows[stockKey{productID, warehouseID}]; ok {
		return s.Quantity
	}
	return decimal.Zero
}

func (r *fakeStockRepo) Get(productID, warehouseID string) (*entity.Stock, error) {
	if s, ok := r.rows[stockKey{productID, warehouseID}]; ok {
		cp := *s
		return &cp, nil
	}
	return &entity.Stock{ProductID: productID, WarehouseID: warehouseID, Quantity: decimal.Zero}, nil
}

func (r *fakeStockRepo) GetForUpdate(productID, warehouseID string) (*entity.Stock, error) {
	return r.Get(productID, warehouseID)
}

func (r *fakeStockRepo) Upsert(stock *entity.Stock) error {
	cp := *stock
	r.rows[stockKey{stock.ProductID, stock.WarehouseID}] = &cp
	return nil
}

func (r *fakeStockRepo) TotalByProduct(productID string) (decimal.Decimal, error) {
	total := decimal.Zero
	for k, s := range r.rows {
		if k.productID == productID {
			total = total.Add(s.Quantity)
		}
	}
	return total, nil
}

func (r *fakeStockRepo) ListByProduct(productID string) ([]*entity.Stock, error) { return nil, nil }

func (r *fakeStockRepo) ListBelowMin(companyID, warehouseID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, s := range r.rows {
		if warehouseID != "" && s.WarehouseID != warehouseID {
			continue
		}
		if s.MinStock.GreaterThan(decimal.Zero) && s.Quantity.LessThanOrEqual(s.MinStock) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeMovementRepo struct {
	movements []*entity.StockMovement
	failWith  error
}

func (r *fakeMovementRepo) Create(m *entity.StockMovement) error {
	if r.failWith != nil {
		return r.failWith
	}
	r.movements = append(r.movements, m)
	return nil
}

func (r *fakeMovementRepo) GetByID(id string) (*entity.StockMovement, error) { return nil, nil }

func (r *fakeMovementRepo) ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.WarehouseID == warehouseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error) {
	var out []*entity.StockMovement
	for _, m := range r.movements {
		if m.ProductID == productID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (r *fakeMovementRepo) ListByReference(referenceType, referenceID string) ([]*entity.StockMovement, error) {
	return nil, nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func (r *fakeProductRepo) Create(p *entity.Product) error { r.products[p.ID] = p; return nil }

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) Update(p *entity.Product) error { return nil }

func (r *fakeProductRepo) UpdateCost(productID string, cost decimal.Decimal) error {
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	return nil
}

func (r *fakeProductRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error) {
	return nil, nil
}
func (r *fakeProductRepo) Delete(id string) error { return nil }

type fakeWarehouseRepo struct {
	warehouses map[string]*entity.Warehouse
}

func (r *fakeWarehouseRepo) Create(w *entity.Warehouse) error { r.warehouses[w.ID] = w; return nil }

func (r *fakeWarehouseRepo) GetByID(id string) (*entity.Warehouse, error) {
	w, ok := r.warehouses[id]
	if !ok {
		return nil, nil
	}
	return w, nil
}

func (r *fakeWarehouseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Warehouse, error) {
	return nil, nil
}
func (r *fakeWarehouseRepo) Update(w *entity.Warehouse) error { return nil }
func (r *fakeWarehouseRepo) Delete(id string) error           { return nil }

type fakeBatchRepo struct {
	batches []*entity.ProductBatch
}

func (r *fakeBatchRepo) Create(b *entity.ProductBatch) error { r.batches = append(r.batches, b); return nil }
func (r *fakeBatchRepo) ListByProduct(productID string) ([]*entity.ProductBatch, error) {
	return nil, nil
}

func (r *fakeBatchRepo) ListExpiring(companyID string, before time.Time) ([]*entity.ProductBatch, error) {
	var out []*entity.ProductBatch
	for _, b := range r.batches {
		if b.CompanyID == companyID && b.ExpirationDate != nil && b.ExpirationDate.Before(before) {
			out = append(out, b)
		}
	}
	return out, nil
}

type fakeTxRunner struct {
	stockRepo    repository.StockRepository
	movementRepo repository.StockMovementRepository
	productRepo  repository.ProductRepository
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	repository.StockRepository,
	repository.StockMovementRepository,
	repository.ProductRepository,
) error) error {
	return fn(r.stockRepo, r.movementRepo, r.productRepo)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const (
	companyID   = "company-1"
	userID      = "user-1"
	warehouse1  = "warehouse-1"
	warehouse2  = "warehouse-2"
	productID   = "product-1"
)

type fixture struct {
	uc        *inventory.InventoryUseCase
	stocks    *fakeStockRepo
	movements *fakeMovementRepo
	products  *fakeProductRepo
	batches   *fakeBatchRepo
}

func newFixture() *fixture {
	stocks := newFakeStockRepo()
	movements := &fakeMovementRepo{}
	products := &fakeProductRepo{products: make(map[string]*entity.Product)}
	warehouses := &fakeWarehouseRepo{warehouses: make(map[string]*entity.Warehouse)}
	batches := &fakeBatchRepo{}

	warehouses.Create(&entity.Warehouse{ID: warehouse1, CompanyID: companyID, Name: "Central"})
	warehouses.Create(&entity.Warehouse{ID: warehouse2, CompanyID: companyID, Name: "Norte"})
	products.Create(&entity.Product{ID: productID, CompanyID: companyID, Name: "Aceite Primor 1L", Cost: dec(8), TrackStock: true})
	stocks.set(productID, warehouse1, dec(40), dec(10))

	runner := &fakeTxRunner{stockRepo: stocks, movementRepo: movements, productRepo: products}
	uc := inventory.NewInventoryUseCase(runner, movements, stocks, warehouses, products, batches)
	return &fixture{uc: uc, stocks: stocks, movements: movements, products: products, batches: batches}
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// ──────────────────────────────────────────────────────────────────────────────
// Tests
// ──────────────────────────────────────────────────────────────────────────────

func TestRegisterMovement_EntradaConCostoRecalculaPromedio(t *testing.T) {
	f := newFixture()
	cost := dec(12)

	resp, err := f.uc.RegisterMovement(context.Background(), companyID, userID, dto.RegisterMovementRequest{
		ProductID: productID, WarehouseID: warehouse1,
		Type: inventory.MovementIn, Quantity: dec(20), UnitCost: &cost,
	})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(productID, warehouse1).Equal(dec(60)))

	p, _ := f.products.GetByID(productID)
	assert.True(t, p.Cost.Equal(dec(9.33)), "el costo mezcla la entrada: (40*8+20*12)/60")

	require.Len(t, resp, 1)
	assert.Equal(t, entity.MovementEntry, resp[0].Type)
	assert.Equal(t, inventory.ReasonManualEntry, resp[0].Reason)
	assert.Len(t, f.movements.movements, 1, "el historial se escribe dentro de la transacción")
}

func TestRegisterMovement_SalidaSinStockSuficiente(t *testing.T) {
	f := newFixture()

	_, err := f.uc.RegisterMovement(context.Background(), companyID, userID, dto.RegisterMovementRequest{
		ProductID: productID, WarehouseID: warehouse1,
		Type: inventory.MovementOut, Quantity: dec(100),
	})

	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.stocks.qty(productID, warehouse1).Equal(dec(40)), "ante el rechazo el stock no cambia")
	assert.Empty(t, f.movements.movements)
}

func TestRegisterMovement_AjusteFijaElStock(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.RegisterMovement(context.Background(), companyID, userID, dto.RegisterMovementRequest{
		ProductID: productID, WarehouseID: warehouse1,
		Type: inventory.MovementAdjustment, Quantity: dec(25),
	})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(productID, warehouse1).Equal(dec(25)))
	require.Len(t, resp, 1)
	assert.Equal(t, entity.MovementExit, resp[0].Type, "ajustar hacia abajo registra una salida")
	assert.True(t, resp[0].Quantity.Equal(dec(15)), "el movimiento registra la diferencia, no el valor final")
}

func TestRegisterMovement_AjusteSinDiferenciaEsNoOp(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.RegisterMovement(context.Background(), companyID, userID, dto.RegisterMovementRequest{
		ProductID: productID, WarehouseID: warehouse1,
		Type: inventory.MovementAdjustment, Quantity: dec(40),
	})

	require.NoError(t, err)
	assert.Empty(t, resp)
	assert.Empty(t, f.movements.movements)
}

func TestRegisterMovement_TransferenciaGeneraSalidaYEntrada(t *testing.T) {
	f := newFixture()

	resp, err := f.uc.RegisterMovement(context.Background(), companyID, userID, dto.RegisterMovementRequest{
		ProductID: productID, FromWarehouseID: warehouse1, ToWarehouseID: warehouse2,
		Type: inventory.MovementTransfer, Quantity: dec(15),
	})

	require.NoError(t, err)
	assert.True(t, f.stocks.qty(productID, warehouse1).Equal(dec(25)))
	assert.True(t, f.stocks.qty(productID, warehouse2).Equal(dec(15)))

	total, _ := f.stocks.TotalByProduct(productID)
	assert.True(t, total.Equal(dec(40)), "la transferencia conserva el stock total")

	require.Len(t, resp, 2)
	assert.Equal(t, entity.MovementExit, resp[0].Type)
	assert.Equal(t, entity.MovementEntry, resp[1].Type)
	assert.Equal(t, resp[0].ReferenceID, resp[1].ReferenceID,
		"salida y entrada comparten la referencia del traslado")
}

func TestRegisterMovement_TransferenciaAlMismoAlmacen(t *testing.T) {
	f := newFixture()

	_, err := f.uc.RegisterMovement(context.Background(), companyID, userID, dto.RegisterMovementRequest{
		ProductID: productID, FromWarehouseID: warehouse1, ToWarehouseID: warehouse1,
		Type: inventory.MovementTransfer, Quantity: dec(5),
	})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestListLowStock(t *testing.T) {
	f := newFixture()
	f.stocks.set(productID, warehouse1, dec(5), dec(10)) // bajo el mínimo
	f.stocks.set(productID, warehouse2, dec(50), dec(10))

	rows, err := f.uc.ListLowStock(context.Background(), companyID, "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, warehouse1, rows[0].WarehouseID)
	assert.True(t, rows[0].Quantity.Equal(dec(5)))
}

func TestListExpiringBatches(t *testing.T) {
	f := newFixture()
	soon := time.Now().AddDate(0, 0, 10)
	far := time.Now().AddDate(1, 0, 0)
	f.batches.batches = []*entity.ProductBatch{
		{ID: "batch-1", CompanyID: companyID, ProductID: productID, BatchNumber: "L-01", Quantity: dec(5), ExpirationDate: &soon},
		{ID: "batch-2", CompanyID: companyID, ProductID: productID, BatchNumber: "L-02", Quantity: dec(5), ExpirationDate: &far},
	}

	rows, err := f.uc.ListExpiringBatches(context.Background(), companyID, 30)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "L-01", rows[0].BatchNumber)
	assert.LessOrEqual(t, rows[0].DaysLeft, 10)
}

func TestLedgerRecorder_TragaErroresDelHistorial(t *testing.T) {
	movements := &fakeMovementRepo{failWith: errors.New("conexión perdida")}
	recorder := inventory.NewLedgerRecorder(movements, logger.Nop())

	// No debe entrar en pánico ni propagar el error: el stock ya está confirmado
	recorder.Record(context.Background(), []*entity.StockMovement{
		{ProductID: productID, WarehouseID: warehouse1, Type: entity.MovementEntry, Quantity: dec(1)},
	})
	assert.Empty(t, movements.movements)
}
