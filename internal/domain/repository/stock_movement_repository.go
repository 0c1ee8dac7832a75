package repository

import (
	"time"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// StockMovementRepository define el puerto de persistencia para el historial
// de movimientos (append-only; los movimientos nunca se actualizan ni borran).
type StockMovementRepository interface {
	Create(movement *entity.StockMovement) error
	GetByID(id string) (*entity.StockMovement, error)
	ListByWarehouse(warehouseID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByProduct(productID string, from, to *time.Time, limit, offset int) ([]*entity.StockMovement, error)
	ListByReference(referenceType, referenceID string) ([]*entity.StockMovement, error)
}
