package repository

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// StockRepository define el puerto de persistencia para el stock por almacén (DIP).
type StockRepository interface {
	Get(productID, warehouseID string) (*entity.Stock, error)
	// GetForUpdate obtiene el stock bloqueando la fila (SELECT FOR UPDATE).
	GetForUpdate(productID, warehouseID string) (*entity.Stock, error)
	Upsert(stock *entity.Stock) error
	// TotalByProduct devuelve la suma de stock del producto en todos los almacenes.
	TotalByProduct(productID string) (decimal.Decimal, error)
	ListByProduct(productID string) ([]*entity.Stock, error)
	// ListBelowMin lista filas con cantidad <= min_stock (min_stock > 0).
	// warehouseID vacío considera todos los almacenes del negocio.
	ListBelowMin(companyID, warehouseID string) ([]*entity.Stock, error)
}
