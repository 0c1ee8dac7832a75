package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	domainpurchase "github.com/jhoicas/Compras-api/internal/domain/purchase"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// UpdatePurchase edita una compra existente reemplazando sus líneas y
// reconciliando el inventario: solo se aplica el delta atribuible a la compra
// editada, sin tocar stock consumido por otras transacciones posteriores.
//
// Por producto:
//   - mismo almacén y delta != 0: ajusta el stock por el delta (entrada si
//     sube, salida si baja);
//   - cambio de almacén: revierte la cantidad original completa del almacén
//     anterior y da de alta la cantidad nueva completa en el destino (es un
//     traslado, no un delta parcial);
//   - delta 0 y mismo almacén: sin mutación ni movimiento (edición solo de costo);
//   - producto inexistente o con TrackStock false: se omite con un
//     ItemOutcome explicativo y la edición continúa.
//
// Compra y stock se confirman en UNA transacción; el historial de movimientos
// se escribe después del commit con política best-effort.
func (uc *PurchaseUseCase) UpdatePurchase(ctx context.Context, companyID, userID, purchaseID string, in dto.UpdatePurchaseRequest, caps Capabilities) (*dto.PurchaseResponse, error) {
	if purchaseID == "" || in.WarehouseID == "" {
		return nil, domain.ErrInvalidInput
	}
	if err := validateItems(in.Items, caps); err != nil {
		return nil, err
	}

	existing, err := uc.purchaseRepo.GetByID(purchaseID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.ErrNotFound
	}
	if existing.CompanyID != companyID {
		return nil, domain.ErrForbidden
	}

	wh, _ := uc.warehouseRepo.GetByID(in.WarehouseID)
	if wh == nil || wh.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	var supplierID *string
	if in.SupplierID != "" {
		supplier, _ := uc.supplierRepo.GetByID(in.SupplierID)
		if supplier == nil || supplier.CompanyID != companyID {
			return nil, domain.ErrNotFound
		}
		supplierID = &supplier.ID
	}

	now := time.Now()
	items := buildItems(purchaseID, in.Items, caps)
	subtotal, tax, total := amounts(items)

	paymentType := in.PaymentType
	if paymentType == "" {
		paymentType = existing.PaymentType
	}
	if err := validateCredit(paymentType, in.DueDate, in.Installments, total); err != nil {
		return nil, err
	}

	updated := &entity.Purchase{
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
		PaymentStatus: existing.PaymentStatus,
		PaidAmount:    existing.PaidAmount,
		DueDate:       in.DueDate,
		Installments:  buildInstallments(purchaseID, in.Installments),
		Notes:         in.Notes,
		CreatedBy:     existing.CreatedBy,
		CreatedAt:     existing.CreatedAt,
		UpdatedAt:     now,
	}
	if paymentType == entity.PaymentTypeCash {
		updated.PaymentStatus = entity.PaymentStatusPaid
		updated.PaidAmount = total
	}

	deltas := domainpurchase.ComputeDiff(existing.Items, items)
	warehouseChanged := existing.WarehouseID != in.WarehouseID

	var outcomes []ItemOutcome
	var movements []*entity.StockMovement

	err = uc.txRunner.Run(ctx, func(
		purchaseRepo repository.PurchaseRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		_ repository.BatchRepository,
	) error {
		if err := purchaseRepo.Update(updated); err != nil {
			return fmt.Errorf("guardar compra editada: %w", err)
		}
		if err := purchaseRepo.ReplaceItems(purchaseID, items); err != nil {
			return fmt.Errorf("reemplazar líneas: %w", err)
		}

		for _, productID := range sortedProductIDs(deltas) {
			d := deltas[productID]
			product, err := productRepo.GetByID(productID)
			if err != nil || product == nil {
				outcomes = append(outcomes, ItemOutcome{ProductID: productID, Status: OutcomeSkipped, Reason: SkipProductNotFound, Delta: d.Delta})
				continue
			}
			if !product.TrackStock {
				outcomes = append(outcomes, ItemOutcome{ProductID: productID, Status: OutcomeSkipped, Reason: SkipNoTrackStock, Delta: d.Delta})
				continue
			}

			var outcome ItemOutcome
			var movs []*entity.StockMovement
			if warehouseChanged {
				outcome, movs, err = uc.transferProduct(stockRepo, productRepo, product, d, existing.WarehouseID, in.WarehouseID, companyID, userID, purchaseID, now)
			} else {
				outcome, movs, err = uc.adjustProduct(stockRepo, productRepo, product, d, in.WarehouseID, companyID, userID, purchaseID, now)
			}
			if err != nil {
				return err
			}
			outcomes = append(outcomes, outcome)
			movements = append(movements, movs...)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.recorder.Record(ctx, movements)
	return toPurchaseResponse(updated, outcomes), nil
}

// adjustProduct aplica el delta de un producto cuando el almacén no cambió.
// Con delta > 0 el costo se mezcla sobre el delta firmado (no sobre la
// cantidad nueva completa) para no contar dos veces stock que ya estaba.
func (uc *PurchaseUseCase) adjustProduct(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	d domainpurchase.LineDelta,
	warehouseID, companyID, userID, purchaseID string,
	now time.Time,
) (ItemOutcome, []*entity.StockMovement, error) {
	if d.Delta.IsZero() {
		// Edición de solo costo o sin cambios: nada que mover
		return ItemOutcome{ProductID: product.ID, Status: OutcomeUnchanged}, nil, nil
	}

	totalBefore, err := stockRepo.TotalByProduct(product.ID)
	if err != nil {
		return ItemOutcome{}, nil, err
	}
	stock, err := stockRepo.GetForUpdate(product.ID, warehouseID)
	if err != nil {
		return ItemOutcome{}, nil, err
	}
	stock.Quantity = clampZero(stock.Quantity.Add(d.Delta))
	stock.UpdatedAt = now
	if err := stockRepo.Upsert(stock); err != nil {
		return ItemOutcome{}, nil, err
	}

	var mov *entity.StockMovement
	if d.Delta.GreaterThan(decimal.Zero) {
		mov = &entity.StockMovement{
			CompanyID: companyID, ProductID: product.ID, WarehouseID: warehouseID,
			Type: entity.MovementEntry, Quantity: d.Delta, UnitCost: d.NewUnitCost,
			Reason: entity.ReasonEditIncrease, ReferenceType: entity.ReferencePurchase, ReferenceID: purchaseID,
			CreatedAt: now, CreatedBy: userID,
		}
		newCost := domainpurchase.AverageCost(totalBefore, product.Cost, d.Delta, d.NewUnitCost)
		if !newCost.Equal(product.Cost) {
			if err := productRepo.UpdateCost(product.ID, newCost); err != nil {
				return ItemOutcome{}, nil, err
			}
		}
	} else {
		// Una reducción no aporta información de costo: solo sale stock
		mov = &entity.StockMovement{
			CompanyID: companyID, ProductID: product.ID, WarehouseID: warehouseID,
			Type: entity.MovementExit, Quantity: d.Delta.Abs(), UnitCost: product.Cost,
			Reason: entity.ReasonEditDecrease, ReferenceType: entity.ReferencePurchase, ReferenceID: purchaseID,
			CreatedAt: now, CreatedBy: userID,
		}
	}
	return ItemOutcome{ProductID: product.ID, Status: OutcomeApplied, Delta: d.Delta}, []*entity.StockMovement{mov}, nil
}

// transferProduct maneja el cambio de almacén: revierte la cantidad original
// completa del almacén anterior y da de alta la nueva completa en el destino.
// El costo se mezcla sobre la cantidad nueva completa contra el total después
// de la reversión (la original ya salió de la base).
func (uc *PurchaseUseCase) transferProduct(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	d domainpurchase.LineDelta,
	fromWarehouseID, toWarehouseID, companyID, userID, purchaseID string,
	now time.Time,
) (ItemOutcome, []*entity.StockMovement, error) {
	totalBefore, err := stockRepo.TotalByProduct(product.ID)
	if err != nil {
		return ItemOutcome{}, nil, err
	}

	var movs []*entity.StockMovement

	if d.OriginalQty.GreaterThan(decimal.Zero) {
		origin, err := stockRepo.GetForUpdate(product.ID, fromWarehouseID)
		if err != nil {
			return ItemOutcome{}, nil, err
		}
		origin.Quantity = clampZero(origin.Quantity.Sub(d.OriginalQty))
		origin.UpdatedAt = now
		if err := stockRepo.Upsert(origin); err != nil {
			return ItemOutcome{}, nil, err
		}
		movs = append(movs, &entity.StockMovement{
			CompanyID: companyID, ProductID: product.ID, WarehouseID: fromWarehouseID,
			Type: entity.MovementExit, Quantity: d.OriginalQty, UnitCost: product.Cost,
			Reason: entity.ReasonWarehouseChange, ReferenceType: entity.ReferencePurchase, ReferenceID: purchaseID,
			CreatedAt: now, CreatedBy: userID,
		})
	}

	if d.NewQty.GreaterThan(decimal.Zero) {
		dest, err := stockRepo.GetForUpdate(product.ID, toWarehouseID)
		if err != nil {
			return ItemOutcome{}, nil, err
		}
		dest.Quantity = dest.Quantity.Add(d.NewQty)
		dest.UpdatedAt = now
		if err := stockRepo.Upsert(dest); err != nil {
			return ItemOutcome{}, nil, err
		}
		movs = append(movs, &entity.StockMovement{
			CompanyID: companyID, ProductID: product.ID, WarehouseID: toWarehouseID,
			Type: entity.MovementEntry, Quantity: d.NewQty, UnitCost: d.NewUnitCost,
			Reason: entity.ReasonWarehouseChange, ReferenceType: entity.ReferencePurchase, ReferenceID: purchaseID,
			CreatedAt: now, CreatedBy: userID,
		})
	}

	base := totalBefore.Sub(d.OriginalQty)
	newCost := domainpurchase.AverageCost(base, product.Cost, d.NewQty, d.NewUnitCost)
	if !newCost.Equal(product.Cost) {
		if err := productRepo.UpdateCost(product.ID, newCost); err != nil {
			return ItemOutcome{}, nil, err
		}
	}

	return ItemOutcome{ProductID: product.ID, Status: OutcomeApplied, Delta: d.Delta}, movs, nil
}

// clampZero evita stock negativo tras una reversión mayor al disponible.
func clampZero(v decimal.Decimal) decimal.Decimal {
	if v.LessThan(decimal.Zero) {
		return decimal.Zero
	}
	return v
}
