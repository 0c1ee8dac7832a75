package purchase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	domainpurchase "github.com/jhoicas/Compras-api/internal/domain/purchase"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// CreatePurchase registra una compra nueva: valida, persiste cabecera y
// líneas, suma stock en el almacén destino y recalcula el costo promedio de
// cada producto, todo en una sola transacción. Los movimientos del historial
// se registran después del commit (best-effort).
func (uc *PurchaseUseCase) CreatePurchase(ctx context.Context, companyID, userID string, in dto.CreatePurchaseRequest, caps Capabilities) (*dto.PurchaseResponse, error) {
	if in.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateItems(in.Items, caps); err != nil {
		return nil, err
	}

	// Validar almacén y proveedor (si hay) antes de cualquier escritura
	wh, _ := uc.warehouseRepo.GetByID(in.WarehouseID)
	if wh == nil || wh.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	var supplierID *string
	var supplierName string
	if in.SupplierID != "" {
		supplier, _ := uc.supplierRepo.GetByID(in.SupplierID)
		if supplier == nil || supplier.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		supplierID = &supplier.ID
		supplierName = supplier.BusinessName
	}

	now := time.Now()
	purchaseID := uuid.New().String()
	items := buildItems(purchaseID, in.Items, caps)
	subtotal, tax, total := amounts(items)

	paymentType := in.PaymentType
	if paymentType == "" {
		paymentType = entity.PaymentTypeCash
	}
	if err := validateCredit(paymentType, in.DueDate, in.Installments, total); err != nil {
		return nil, err
	}

	p := &entity.Purchase{
		ID:            purchaseID,
		CompanyID:     companyID,
		SupplierID:    supplierID,
		WarehouseID:   in.WarehouseID,
		InvoiceNumber: in.InvoiceNumber,
		InvoiceDate:   in.InvoiceDate,
		Items:         items,
		Subtotal:      subtotal,
		Tax:           tax,
		Total:         total,
		PaymentType:   paymentType,
		DueDate:       in.DueDate,
		Installments:  buildInstallments(purchaseID, in.Installments),
		Notes:         in.Notes,
		CreatedBy:     userID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if paymentType == entity.PaymentTypeCash {
		p.PaymentStatus = entity.PaymentStatusPaid
		p.PaidAmount = total
	} else {
		p.PaymentStatus = entity.PaymentStatusPending
		p.PaidAmount = decimal.Zero
	}

	// Las líneas se agrupan por producto para aplicar stock y costo una sola
	// vez aunque el producto aparezca en varias líneas (pagada + bonificación).
	deltas := domainpurchase.ComputeDiff(nil, items)

	var outcomes []ItemOutcome
	var movements []*entity.StockMovement

	err := uc.txRunner.Run(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
	) error {
		if err := purchaseRepo.Create(p); err != nil {
			return fmt.Errorf("guardar compra: %w", err)
		}

		for _, productID := range sortedProductIDs(deltas) {
			d := deltas[productID]
			product, err := productRepo.GetByID(productID)
			if err != nil || product == nil {
				// Producto desaparecido: se omite su ajuste sin abortar la compra
				outcomes = append(outcomes, ItemOutcome{ProductID: productID, Status: OutcomeSkipped, Reason: SkipProductNotFound})
				continue
			}
			if !product.TrackStock {
				outcomes = append(outcomes, ItemOutcome{ProductID: productID, Status: OutcomeSkipped, Reason: SkipNoTrackStock})
				continue
			}

			totalBefore, err := stockRepo.TotalByProduct(productID)
			if err != nil {
				return err
			}
			stock, err := stockRepo.GetForUpdate(productID, in.WarehouseID)
			if err != nil {
				return err
			}
			stock.Quantity = stock.Quantity.Add(d.NewQty)
			stock.UpdatedAt = now
			if err := stockRepo.Upsert(stock); err != nil {
				return err
			}

			newCost := domainpurchase.AverageCost(totalBefore, product.Cost, d.NewQty, d.NewUnitCost)
			if !newCost.Equal(product.Cost) {
				if err := productRepo.UpdateCost(productID, newCost); err != nil {
					return err
				}
			}

			movements = append(movements, &entity.StockMovement{
				CompanyID:     companyID,
				ProductID:     productID,
				WarehouseID:   in.WarehouseID,
				Type:          entity.MovementEntry,
				Quantity:      d.NewQty,
				UnitCost:      d.NewUnitCost,
				Reason:        entity.ReasonPurchase,
				ReferenceType: entity.ReferencePurchase,
				ReferenceID:   purchaseID,
				Notes:         movementNotes(supplierName, in.InvoiceNumber),
				CreatedAt:     now,
				CreatedBy:     userID,
			})
			outcomes = append(outcomes, ItemOutcome{ProductID: productID, Status: OutcomeApplied, Delta: d.NewQty})
		}

		// Lotes de farmacia: un lote por línea con número o vencimiento
		if caps.Pharmacy {
			for _, it := range items {
				if it.BatchNumber == "" && it.ExpirationDate == nil {
					continue
				}
				batch := &entity.ProductBatch{
					ID:             uuid.New().String(),
					CompanyID:      companyID,
					ProductID:      it.ProductID,
					BatchNumber:    it.BatchNumber,
					Quantity:       it.Quantity,
					CostPrice:      it.UnitCost,
					ExpirationDate: it.ExpirationDate,
					PurchaseID:     purchaseID,
					PurchaseDate:   in.InvoiceDate,
					CreatedAt:      now,
				}
				if err := batchRepo.Create(batch); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.Record(ctx, movements)
	return toPurchaseResponse(p, outcomes), nil
}

// sortedProductIDs devuelve los productos del diff en orden estable. El orden
// fijo hace determinista la reconciliación y evita interbloqueos entre dos
// ediciones concurrentes que bloquean filas de los mismos productos.
func sortedProductIDs(deltas map[string]domainpurchase.LineDelta) []string {
	ids := make([]string, 0, len(deltas))
	for id := range deltas {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func movementNotes(supplierName, invoiceNumber string) string {
	if supplierName == "" {
		supplierName = "Proveedor"
	}
	if invoiceNumber == "" {
		invoiceNumber = "S/N"
	}
	return fmt.Sprintf("Compra - %s - %s", supplierName, invoiceNumber)
}
