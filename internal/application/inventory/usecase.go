package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/application/dto"
	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	domainpurchase "github.com/jhoicas/Compras-api/internal/domain/purchase"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// Tipos de movimiento manual aceptados por la API.
const (
	MovementIn         = "IN"
	MovementOut        = "OUT"
	MovementAdjustment = "ADJUSTMENT"
	MovementTransfer   = "TRANSFER"
)

// Razones registradas en el historial para movimientos manuales.
const (
	ReasonManualEntry = "Entrada manual"
	ReasonManualExit  = "Salida manual"
	ReasonAdjustment  = "Ajuste de inventario"
	ReasonTransfer    = "Transferencia entre almacenes"
)

// InventoryUseCase registra movimientos manuales de stock y expone las
// consultas de inventario (historial, bajo stock, lotes por vencer).
type InventoryUseCase struct {
	txRunner      TxRunner
	movementRepo  repository.StockMovementRepository
	stockRepo     repository.StockRepository
	warehouseRepo repository.WarehouseRepository
	productRepo   repository.ProductRepository
	batchRepo     repository.BatchRepository
}

// NewInventoryUseCase construye el caso de uso.
func NewInventoryUseCase(
	txRunner TxRunner,
	movementRepo repository.StockMovementRepository,
	stockRepo repository.StockRepository,
	warehouseRepo repository.WarehouseRepository,
	productRepo repository.ProductRepository,
	batchRepo repository.BatchRepository,
) *InventoryUseCase {
	return &InventoryUseCase{
		txRunner:      txRunner,
		movementRepo:  movementRepo,
		stockRepo:     stockRepo,
		warehouseRepo: warehouseRepo,
		productRepo:   productRepo,
		batchRepo:     batchRepo,
	}
}

// RegisterMovement registra un movimiento manual:
//
//   - IN: entrada al almacén; con costo unitario recalcula el promedio.
//   - OUT: salida; falla con ErrInsufficientStock si no alcanza.
//   - ADJUSTMENT: fija el stock del almacén en la cantidad dada y registra
//     la diferencia como entrada o salida.
//   - TRANSFER: mueve la cantidad de un almacén a otro (salida + entrada).
//
// Stock e historial se confirman en la misma transacción.
func (uc *InventoryUseCase) RegisterMovement(ctx context.Context, companyID, userID string, in dto.RegisterMovementRequest) ([]dto.MovementResponse, error) {
	if in.ProductID == "" {
		return nil, domain.ErrInvalidInput
	}
	if in.Type != MovementAdjustment && !in.Quantity.GreaterThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}
	if in.Type == MovementAdjustment && in.Quantity.LessThan(decimal.Zero) {
		return nil, domain.ErrInvalidInput
	}

	product, err := uc.productRepo.GetByID(in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	if !product.TrackStock {
		return nil, fmt.Errorf("el producto no controla stock: %w", domain.ErrInvalidInput)
	}

	now := time.Now()
	var movements []*entity.StockMovement

	switch in.Type {
	case MovementIn, MovementOut, MovementAdjustment:
		if in.WarehouseID == "" {
			return nil, domain.ErrInvalidInput
		}
		if err := uc.ownWarehouse(companyID, in.WarehouseID); err != nil {
			return nil, err
		}
		err = uc.txRunner.Run(ctx, func(
			stockRepo repository.StockRepository,
			movementRepo repository.StockMovementRepository,
			productRepo repository.ProductRepository,
		) error {
			var txErr error
			movements, txErr = uc.applySingleWarehouse(stockRepo, productRepo, product, in, companyID, userID, now)
			if txErr != nil {
				return txErr
			}
			return createAll(movementRepo, movements)
		})
	case MovementTransfer:
		if in.FromWarehouseID == "" || in.ToWarehouseID == "" || in.FromWarehouseID == in.ToWarehouseID {
			return nil, domain.ErrInvalidInput
		}
		if err := uc.ownWarehouse(companyID, in.FromWarehouseID); err != nil {
			return nil, err
		}
		if err := uc.ownWarehouse(companyID, in.ToWarehouseID); err != nil {
			return nil, err
		}
		err = uc.txRunner.Run(ctx, func(
			stockRepo repository.StockRepository,
			movementRepo repository.StockMovementRepository,
			_ repository.ProductRepository,
		) error {
			var txErr error
			movements, txErr = uc.applyTransfer(stockRepo, product, in, companyID, userID, now)
			if txErr != nil {
				return txErr
			}
			return createAll(movementRepo, movements)
		})
	default:
		return nil, domain.ErrInvalidInput
	}
	if err != nil {
		return nil, err
	}

	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return out, nil
}

// applySingleWarehouse resuelve IN, OUT y ADJUSTMENT sobre un solo almacén.
func (uc *InventoryUseCase) applySingleWarehouse(
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	product *entity.Product,
	in dto.RegisterMovementRequest,
	companyID, userID string,
	now time.Time,
) ([]*entity.StockMovement, error) {
	stock, err := stockRepo.GetForUpdate(in.ProductID, in.WarehouseID)
	if err != nil {
		return nil, err
	}

	mov := &entity.StockMovement{
		ID:            uuid.New().String(),
		CompanyID:     companyID,
		ProductID:     in.ProductID,
		WarehouseID:   in.WarehouseID,
		UnitCost:      product.Cost,
		ReferenceType: entity.ReferenceAdjustment,
		Notes:         in.Notes,
		CreatedAt:     now,
		CreatedBy:     userID,
	}

	switch in.Type {
	case MovementIn:
		stock.Quantity = stock.Quantity.Add(in.Quantity)
		mov.Type = entity.MovementEntry
		mov.Quantity = in.Quantity
		mov.Reason = ReasonManualEntry
		if in.UnitCost != nil {
			mov.UnitCost = *in.UnitCost
			totalBefore, err := stockRepo.TotalByProduct(in.ProductID)
			if err != nil {
				return nil, err
			}
			newCost := domainpurchase.AverageCost(totalBefore, product.Cost, in.Quantity, *in.UnitCost)
			if !newCost.Equal(product.Cost) {
				if err := productRepo.UpdateCost(product.ID, newCost); err != nil {
					return nil, err
				}
			}
		}
	case MovementOut:
		if stock.Quantity.LessThan(in.Quantity) {
			return nil, domain.ErrInsufficientStock
		}
		stock.Quantity = stock.Quantity.Sub(in.Quantity)
		mov.Type = entity.MovementExit
		mov.Quantity = in.Quantity
		mov.Reason = ReasonManualExit
	case MovementAdjustment:
		diff := in.Quantity.Sub(stock.Quantity)
		if diff.IsZero() {
			return nil, nil
		}
		stock.Quantity = in.Quantity
		mov.Quantity = diff.Abs()
		mov.Reason = ReasonAdjustment
		if diff.GreaterThan(decimal.Zero) {
			mov.Type = entity.MovementEntry
		} else {
			mov.Type = entity.MovementExit
		}
	}

	stock.UpdatedAt = now
	if err := stockRepo.Upsert(stock); err != nil {
		return nil, err
	}
	return []*entity.StockMovement{mov}, nil
}

// applyTransfer mueve stock entre dos almacenes del negocio.
func (uc *InventoryUseCase) applyTransfer(
	stockRepo repository.StockRepository,
	product *entity.Product,
	in dto.RegisterMovementRequest,
	companyID, userID string,
	now time.Time,
) ([]*entity.StockMovement, error) {
	origin, err := stockRepo.GetForUpdate(in.ProductID, in.FromWarehouseID)
	if err != nil {
		return nil, err
	}
	if origin.Quantity.LessThan(in.Quantity) {
		return nil, domain.ErrInsufficientStock
	}
	dest, err := stockRepo.GetForUpdate(in.ProductID, in.ToWarehouseID)
	if err != nil {
		return nil, err
	}

	origin.Quantity = origin.Quantity.Sub(in.Quantity)
	origin.UpdatedAt = now
	dest.Quantity = dest.Quantity.Add(in.Quantity)
	dest.UpdatedAt = now
	if err := stockRepo.Upsert(origin); err != nil {
		return nil, err
	}
	if err := stockRepo.Upsert(dest); err != nil {
		return nil, err
	}

	transferID := uuid.New().String()
	exit := &entity.StockMovement{
		ID: uuid.New().String(), CompanyID: companyID, ProductID: in.ProductID,
		WarehouseID: in.FromWarehouseID, Type: entity.MovementExit, Quantity: in.Quantity,
		UnitCost: product.Cost, Reason: ReasonTransfer,
		ReferenceType: entity.ReferenceTransfer, ReferenceID: transferID,
		Notes: in.Notes, CreatedAt: now, CreatedBy: userID,
	}
	entry := &entity.StockMovement{
		ID: uuid.New().String(), CompanyID: companyID, ProductID: in.ProductID,
		WarehouseID: in.ToWarehouseID, Type: entity.MovementEntry, Quantity: in.Quantity,
		UnitCost: product.Cost, Reason: ReasonTransfer,
		ReferenceType: entity.ReferenceTransfer, ReferenceID: transferID,
		Notes: in.Notes, CreatedAt: now, CreatedBy: userID,
	}
	return []*entity.StockMovement{exit, entry}, nil
}

func (uc *InventoryUseCase) ownWarehouse(companyID, warehouseID string) error {
	wh, err := uc.warehouseRepo.GetByID(warehouseID)
	if err != nil {
		return err
	}
	if wh == nil || wh.CompanyID != companyID {
		return domain.ErrNotFound
	}
	return nil
}

func createAll(movementRepo repository.StockMovementRepository, movements []*entity.StockMovement) error {
	for _, m := range movements {
		if err := movementRepo.Create(m); err != nil {
			return fmt.Errorf("registrar movimiento: %w", err)
		}
	}
	return nil
}

// ListMovementsByWarehouse lista el historial de un almacén con filtro
// opcional de fechas.
func (uc *InventoryUseCase) ListMovementsByWarehouse(ctx context.Context, companyID, warehouseID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	if err := uc.ownWarehouse(companyID, warehouseID); err != nil {
		return nil, err
	}
	movements, err := uc.movementRepo.ListByWarehouse(warehouseID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

// ListMovementsByProduct lista el historial de un producto en todos los
// almacenes.
func (uc *InventoryUseCase) ListMovementsByProduct(ctx context.Context, companyID, productID string, from, to *time.Time, limit, offset int) ([]dto.MovementResponse, error) {
	product, err := uc.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || product.CompanyID != companyID {
		return nil, domain.ErrNotFound
	}
	movements, err := uc.movementRepo.ListByProduct(productID, from, to, limit, offset)
	if err != nil {
		return nil, err
	}
	return toMovementResponses(movements), nil
}

// ListLowStock lista las filas de stock en o bajo su mínimo de reposición.
func (uc *InventoryUseCase) ListLowStock(ctx context.Context, companyID, warehouseID string) ([]dto.LowStockItemDTO, error) {
	if warehouseID != "" {
		if err := uc.ownWarehouse(companyID, warehouseID); err != nil {
			return nil, err
		}
	}
	rows, err := uc.stockRepo.ListBelowMin(companyID, warehouseID)
	if err != nil {
		return nil, err
	}
	out := make([]dto.LowStockItemDTO, 0, len(rows))
	for _, s := range rows {
		out = append(out, dto.LowStockItemDTO{
			ProductID:   s.ProductID,
			WarehouseID: s.WarehouseID,
			Quantity:    s.Quantity,
			MinStock:    s.MinStock,
		})
	}
	return out, nil
}

// ListExpiringBatches lista lotes con stock que vencen dentro de la ventana
// dada (módulo pharmacy).
func (uc *InventoryUseCase) ListExpiringBatches(ctx context.Context, companyID string, days int) ([]dto.ExpiringBatchDTO, error) {
	if days <= 0 {
		days = 30
	}
	now := time.Now()
	before := now.AddDate(0, 0, days)
	batches, err := uc.batchRepo.ListExpiring(companyID, before)
	if err != nil {
		return nil, err
	}
	out := make([]dto.ExpiringBatchDTO, 0, len(batches))
	for _, b := range batches {
		item := dto.ExpiringBatchDTO{
			BatchID:        b.ID,
			ProductID:      b.ProductID,
			BatchNumber:    b.BatchNumber,
			Quantity:       b.Quantity,
			ExpirationDate: b.ExpirationDate,
		}
		if b.ExpirationDate != nil {
			item.DaysLeft = int(b.ExpirationDate.Sub(now).Hours() / 24)
		}
		out = append(out, item)
	}
	return out, nil
}

func toMovementResponse(m *entity.StockMovement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:            m.ID,
		ProductID:     m.ProductID,
		WarehouseID:   m.WarehouseID,
		Type:          m.Type,
		Quantity:      m.Quantity,
		UnitCost:      m.UnitCost,
		Reason:        m.Reason,
		ReferenceType: m.ReferenceType,
		ReferenceID:   m.ReferenceID,
		Notes:         m.Notes,
		CreatedAt:     m.CreatedAt,
		CreatedBy:     m.CreatedBy,
	}
}

func toMovementResponses(movements []*entity.StockMovement) []dto.MovementResponse {
	out := make([]dto.MovementResponse, 0, len(movements))
	for _, m := range movements {
		out = append(out, toMovementResponse(m))
	}
	return out
}
