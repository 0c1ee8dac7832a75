package repository

import (
	"time"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// BatchRepository define el puerto de persistencia para lotes (módulo pharmacy).
type BatchRepository interface {
	Create(batch *entity.ProductBatch) error
	ListByProduct(productID string) ([]*entity.ProductBatch, error)
	// ListExpiring lista lotes con stock y vencimiento antes de la fecha dada.
	ListExpiring(companyID string, before time.Time) ([]*entity.ProductBatch, error)
}
