package purchase_test

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/purchase"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fakes en memoria. Replican el contrato de los repositorios Postgres: el
// stock inexistente se materializa como fila en cero y el total del producto
// es la suma de sus filas por almacén.
// ──────────────────────────────────────────────────────────────────────────────

type fakePurchaseRepo struct {
	purchases map[string]*entity.Purchase
	payments  map[string][]*entity.PurchasePayment
}

func newFakePurchaseRepo() *fakePurchaseRepo {
	return &fakePurchaseRepo{
		purchases: make(map[string]*entity.Purchase),
		payments:  make(map[string][]*entity.PurchasePayment),
	}
}

func (r *fakePurchaseRepo) Create(p *entity.Purchase) error {
	cp := *p
	r.purchases[p.ID] = &cp
	return nil
}

func (r *fakePurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	p, ok := r.purchases[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakePurchaseRepo) Update(p *entity.Purchase) error {
	if _, ok := r.purchases[p.ID]; !ok {
		return domain.ErrNotFound
	}
	cp := *p
	r.purchases[p.ID] = &cp
	return nil
}

func (r *fakePurchaseRepo) ReplaceItems(purchaseID string, items []entity.PurchaseItem) error {
	p, ok := r.purchases[purchaseID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Items = append([]entity.PurchaseItem(nil), items...)
	return nil
}

func (r *fakePurchaseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Purchase, error) {
	var out []*entity.Purchase
	for _, p := range r.purchases {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *fakePurchaseRepo) AddPayment(payment *entity.PurchasePayment) error {
	r.payments[payment.PurchaseID] = append(r.payments[payment.PurchaseID], payment)
	return nil
}

func (r *fakePurchaseRepo) ListPayments(purchaseID string) ([]*entity.PurchasePayment, error) {
	return r.payments[purchaseID], nil
}

type stockKey struct{ productID, warehouseID string }

type fakeStockRepo struct {
	rows map[stockKey]*entity.Stock
}

func newFakeStockRepo() *fakeStockRepo {
	return &fakeStockRepo{rows: make(map[stockKey]*entity.Stock)}
}

func (r *fakeStockRepo) set(productID, warehouseID string, qty decimal.Decimal) {
	r.rows[stockKey{productID, warehouseID}] = &entity.Stock{
		ProductID: productID, WarehouseID: warehouseID, Quantity: qty,
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

func (r *fakeStockRepo) ListByProduct(productID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for k, s := range r.rows {
		if k.productID == productID {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeStockRepo) ListBelowMin(companyID, warehouseID string) ([]*entity.Stock, error) {
	var out []*entity.Stock
	for _, s := range r.rows {
		if s.MinStock.GreaterThan(decimal.Zero) && s.Quantity.LessThanOrEqual(s.MinStock) {
			cp := *s
			out = append(out, &cp)
		}
	}
	return out, nil
}

type fakeProductRepo struct {
	products map[string]*entity.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: make(map[string]*entity.Product)}
}

func (r *fakeProductRepo) Create(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*entity.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) GetByCompanyAndSKU(companyID, sku string) (*entity.Product, error) {
	for _, p := range r.products {
		if p.CompanyID == companyID && p.SKU == sku {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) Update(p *entity.Product) error {
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) UpdateCost(productID string, cost decimal.Decimal) error {
	p, ok := r.products[productID]
	if !ok {
		return domain.ErrNotFound
	}
	p.Cost = cost
	return nil
}

func (r *fakeProductRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Product, error) {
	var out []*entity.Product
	for _, p := range r.products {
		if p.CompanyID == companyID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) Delete(id string) error {
	delete(r.products, id)
	return nil
}

type fakeWarehouseRepo struct {
	warehouses map[string]*entity.Warehouse
}

func newFakeWarehouseRepo() *fakeWarehouseRepo {
	return &fakeWarehouseRepo{warehouses: make(map[string]*entity.Warehouse)}
}

func (r *fakeWarehouseRepo) Create(w *entity.Warehouse) error {
	r.warehouses[w.ID] = w
	return nil
}

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

type fakeSupplierRepo struct {
	suppliers map[string]*entity.Supplier
}

func newFakeSupplierRepo() *fakeSupplierRepo {
	return &fakeSupplierRepo{suppliers: make(map[string]*entity.Supplier)}
}

func (r *fakeSupplierRepo) Create(s *entity.Supplier) error {
	r.suppliers[s.ID] = s
	return nil
}

func (r *fakeSupplierRepo) GetByID(id string) (*entity.Supplier, error) {
	s, ok := r.suppliers[id]
	if !ok {
		return nil, nil
	}
	return s, nil
}

func (r *fakeSupplierRepo) GetByCompanyAndDocument(companyID, documentNumber string) (*entity.Supplier, error) {
	return nil, nil
}
func (r *fakeSupplierRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Supplier, error) {
	return nil, nil
}
func (r *fakeSupplierRepo) Update(s *entity.Supplier) error { return nil }
func (r *fakeSupplierRepo) Delete(id string) error          { return nil }

type fakeBatchRepo struct {
	batches []*entity.ProductBatch
}

func (r *fakeBatchRepo) Create(b *entity.ProductBatch) error {
	r.batches = append(r.batches, b)
	return nil
}

func (r *fakeBatchRepo) ListByProduct(productID string) ([]*entity.ProductBatch, error) {
	return r.batches, nil
}

func (r *fakeBatchRepo) ListExpiring(companyID string, before time.Time) ([]*entity.ProductBatch, error) {
	return nil, nil
}

// fakeTxRunner ejecuta la función directamente contra los fakes, sin
// transacción real.
type fakeTxRunner struct {
	purchaseRepo repository.PurchaseRepository
	stockRepo    repository.StockRepository
	productRepo  repository.ProductRepository
	batchRepo    repository.BatchRepository
}

func (r *fakeTxRunner) Run(ctx context.Context, fn func(
	repository.PurchaseRepository,
	repository.StockRepository,
	repository.ProductRepository,
	repository.BatchRepository,
) error) error {
	return fn(r.purchaseRepo, r.stockRepo, r.productRepo, r.batchRepo)
}

// recorderSpy captura los movimientos entregados al historial.
type recorderSpy struct {
	movements []*entity.StockMovement
}

func (r *recorderSpy) Record(ctx context.Context, movements []*entity.StockMovement) {
	r.movements = append(r.movements, movements...)
}

// ──────────────────────────────────────────────────────────────────────────────
// Fixture compartido
// ──────────────────────────────────────────────────────────────────────────────

const (
	testCompanyID   = "company-1"
	testUserID      = "user-1"
	testWarehouse1  = "warehouse-1"
	testWarehouse2  = "warehouse-2"
	testSupplierID  = "supplier-1"
	testProductID   = "product-1"
	testNoTrackID   = "product-servicio"
	otherCompanyID  = "company-2"
)

type fixture struct {
	uc        *purchase.PurchaseUseCase
	purchases *fakePurchaseRepo
	stocks    *fakeStockRepo
	products  *fakeProductRepo
	batches   *fakeBatchRepo
	recorder  *recorderSpy
}

// newFixture arma el caso de uso con dos almacenes del negocio, un proveedor,
// un producto con stock 100 en el almacén 1 a costo 10 y un servicio sin
// control de stock.
func newFixture() *fixture {
	purchases := newFakePurchaseRepo()
	stocks := newFakeStockRepo()
	products := newFakeProductRepo()
	warehouses := newFakeWarehouseRepo()
	suppliers := newFakeSupplierRepo()
	batches := &fakeBatchRepo{}
	recorder := &recorderSpy{}

	warehouses.Create(&entity.Warehouse{ID: testWarehouse1, CompanyID: testCompanyID, Name: "Almacén Central"})
	warehouses.Create(&entity.Warehouse{ID: testWarehouse2, CompanyID: testCompanyID, Name: "Sucursal Norte"})
	suppliers.Create(&entity.Supplier{ID: testSupplierID, CompanyID: testCompanyID, BusinessName: "Distribuidora San Martín SAC"})
	products.Create(&entity.Product{
		ID: testProductID, CompanyID: testCompanyID, Name: "Arroz Costeño 5kg",
		Cost: dec(10), TrackStock: true,
	})
	products.Create(&entity.Product{
		ID: testNoTrackID, CompanyID: testCompanyID, Name: "Servicio de flete",
		TrackStock: false,
	})
	stocks.set(testProductID, testWarehouse1, dec(100))

	runner := &fakeTxRunner{
		purchaseRepo: purchases,
		stockRepo:    stocks,
		productRepo:  products,
		batchRepo:    batches,
	}
	uc := purchase.NewPurchaseUseCase(runner, purchases, products, warehouses, suppliers, recorder)
	return &fixture{uc: uc, purchases: purchases, stocks: stocks, products: products, batches: batches, recorder: recorder}
}

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func (f *fixture) productCost(id string) decimal.Decimal {
	p, _ := f.products.GetByID(id)
	return p.Cost
}
