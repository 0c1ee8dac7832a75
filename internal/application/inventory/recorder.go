package inventory

import (
	"context"

	"github.com/google/uuid"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
	"github.com/jhoicas/Compras-api/pkg/logger"
)

// LedgerRecorder escribe el historial de movimientos generado por el motor de
// compras. Se invoca después del commit de la transacción de stock: un fallo
// del historial se registra en el log y no revierte stock ya confirmado.
type LedgerRecorder struct {
	movementRepo repository.StockMovementRepository
	log          *logger.Logger
}

// NewLedgerRecorder construye el recorder.
func NewLedgerRecorder(movementRepo repository.StockMovementRepository, log *logger.Logger) *LedgerRecorder {
	return &LedgerRecorder{movementRepo: movementRepo, log: log}
}

// Record persiste los movimientos uno a uno con política best-effort.
func (r *LedgerRecorder) Record(ctx context.Context, movements []*entity.StockMovement) {
	for _, m := range movements {
		if m.ID == "" {
			m.ID = uuid.New().String()
		}
		if err := r.movementRepo.Create(m); err != nil {
			r.log.Error().
				Err(err).
				Str("product_id", m.ProductID).
				Str("warehouse_id", m.WarehouseID).
				Str("reference_id", m.ReferenceID).
				Str("reason", m.Reason).
				Msg("no se pudo registrar el movimiento en el historial")
		}
	}
}
