package purchase

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// igvFactor: en Perú el costo ingresado incluye IGV (18%); el subtotal se
// obtiene dividiendo el total entre 1.18.
var igvFactor = decimal.RequireFromString("1.18")

// PurchaseUseCase registra, edita y cobra compras a proveedor de forma
// transaccional, reconciliando stock y costo promedio por producto.
type PurchaseUseCase struct {
	txRunner      TxRunner
	purchaseRepo  repository.PurchaseRepository
	productRepo   repository.ProductRepository
	warehouseRepo repository.WarehouseRepository
	supplierRepo  repository.SupplierRepository
	recorder      MovementRecorder
}

// NewPurchaseUseCase construye el caso de uso.
func NewPurchaseUseCase(
	txRunner TxRunner,
	purchaseRepo repository.PurchaseRepository,
	productRepo repository.ProductRepository,
	warehouseRepo repository.WarehouseRepository,
	supplierRepo repository.SupplierRepository,
	recorder MovementRecorder,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		txRunner:      txRunner,
		purchaseRepo:  purchaseRepo,
		productRepo:   productRepo,
		warehouseRepo: warehouseRepo,
		supplierRepo:  supplierRepo,
		recorder:      recorder,
	}
}

// GetByID obtiene una compra por ID validando pertenencia al negocio.
func (uc *PurchaseUseCase) GetByID(companyID, id string) (*dto.PurchaseResponse, error) {
	p, err := uc.purchaseRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, domain.ErrNotFound
	}
	if p.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}
	return toPurchaseResponse(p, nil), nil
}

// List lista compras del negocio con paginación.
func (uc *PurchaseUseCase) List(companyID string, limit, offset int) (*dto.PurchaseListResponse, error) {
	list, err := uc.purchaseRepo.ListByCompany(companyID, limit, offset)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PurchaseResponse, 0, len(list))
	for _, p := range list {
		items = append(items, *toPurchaseResponse(p, nil))
	}
	return &dto.PurchaseListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: limit, Offset: offset},
	}, nil
}

// validateItems valida las líneas: producto resuelto, cantidad estrictamente
// positiva y costo no negativo (0 = bonificación). No hace I/O: debe fallar
// antes de cualquier mutación parcial.
func validateItems(items []dto.PurchaseItemRequest, caps Capabilities) error {
	if len(items) == 0 {
		return domain.ErrInvalidInput
	}
	for _, it := range items {
		if it.ProductID == "" {
			return domain.ErrInvalidInput
		}
		if !it.Quantity.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if it.UnitCost.LessThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		if it.ItemType == entity.ItemTypeIngredient && !caps.Restaurant {
			return domain.ErrInvalidInput
		}
		if it.ItemType != "" && it.ItemType != entity.ItemTypeProduct && it.ItemType != entity.ItemTypeIngredient {
			return domain.ErrInvalidInput
		}
	}
	return nil
}

// buildItems convierte las líneas del request en entidades. Los campos de
// lote/vencimiento solo se conservan con el módulo pharmacy activo.
func buildItems(purchaseID string, in []dto.PurchaseItemRequest, caps Capabilities) []entity.PurchaseItem {
	items := make([]entity.PurchaseItem, 0, len(in))
	for _, it := range in {
		itemType := it.ItemType
		if itemType == "" {
			itemType = entity.ItemTypeProduct
		}
		item := entity.PurchaseItem{
			PurchaseID: purchaseID,
			ProductID:  it.ProductID,
			Quantity:   it.Quantity,
			UnitCost:   it.UnitCost,
			ItemType:   itemType,
		}
		if caps.Pharmacy {
			item.BatchNumber = it.BatchNumber
			item.ExpirationDate = it.ExpirationDate
		}
		items = append(items, item)
	}
	return items
}

// amounts calcula subtotal (sin IGV), IGV y total a partir de las líneas,
// redondeando a 2 decimales de moneda.
func amounts(items []entity.PurchaseItem) (subtotal, tax, total decimal.Decimal) {
	for _, it := range items {
		total = total.Add(it.Quantity.Mul(it.UnitCost))
	}
	total = total.Round(2)
	subtotal = total.Div(igvFactor).Round(2)
	tax = total.Sub(subtotal)
	return subtotal, tax, total
}

// validateCredit valida los datos de crédito: pago único requiere fecha de
// vencimiento; cuotas requieren que su suma coincida con el total (±0.01).
func validateCredit(paymentType string, dueDate *time.Time, installments []dto.InstallmentRequest, total decimal.Decimal) error {
	if paymentType != entity.PaymentTypeCredit {
		if paymentType != entity.PaymentTypeCash {
			return domain.ErrInvalidInput
		}
		return nil
	}
	if len(installments) == 0 {
		if dueDate == nil {
			return domain.ErrInvalidInput
		}
		return nil
	}
	var sum decimal.Decimal
	for _, inst := range installments {
		if !inst.Amount.GreaterThan(decimal.Zero) {
			return domain.ErrInvalidInput
		}
		sum = sum.Add(inst.Amount)
	}
	tolerance := decimal.RequireFromString("0.01")
	if sum.Sub(total).Abs().GreaterThan(tolerance) {
		return domain.ErrInstallmentsTotal
	}
	return nil
}

func buildInstallments(purchaseID string, in []dto.InstallmentRequest) []entity.PurchaseInstallment {
	if len(in) == 0 {
		return nil
	}
	out := make([]entity.PurchaseInstallment, 0, len(in))
	for i, inst := range in {
		out = append(out, entity.PurchaseInstallment{
			PurchaseID: purchaseID,
			Number:     i + 1,
			Amount:     inst.Amount,
			DueDate:    inst.DueDate,
			Status:     "pending",
		})
	}
	return out
}

func toPurchaseResponse(p *entity.Purchase, outcomes []ItemOutcome) *dto.PurchaseResponse {
	if p == nil {
		return nil
	}
	items := make([]dto.PurchaseItemResponse, 0, len(p.Items))
	for _, it := range p.Items {
		items = append(items, dto.PurchaseItemResponse{
			ID:             it.ID,
			ProductID:      it.ProductID,
			Quantity:       it.Quantity,
			UnitCost:       it.UnitCost,
			ItemType:       it.ItemType,
			BatchNumber:    it.BatchNumber,
			ExpirationDate: it.ExpirationDate,
		})
	}
	resp := &dto.PurchaseResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		WarehouseID:   p.WarehouseID,
		InvoiceNumber: p.InvoiceNumber,
		InvoiceDate:   p.InvoiceDate,
		Items:         items,
		Subtotal:      p.Subtotal,
		Tax:           p.Tax,
		Total:         p.Total,
		PaymentType:   p.PaymentType,
		PaymentStatus: p.PaymentStatus,
		PaidAmount:    p.PaidAmount,
		DueDate:       p.DueDate,
		Notes:         p.Notes,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.SupplierID != nil {
		resp.SupplierID = *p.SupplierID
	}
	for _, o := range outcomes {
		resp.Outcomes = append(resp.Outcomes, dto.ItemOutcomeDTO{
			ProductID: o.ProductID,
			Status:    o.Status,
			Reason:    o.Reason,
			Delta:     o.Delta,
		})
	}
	return resp
}
