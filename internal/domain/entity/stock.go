package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Stock representa el stock actual de un producto en un almacén.
// El total del producto es la suma de sus filas de stock, por lo que el
// invariante "suma por almacén == total" se cumple por construcción.
type Stock struct {
	ProductID   string
	WarehouseID string
	Quantity    decimal.Decimal
	MinStock    decimal.Decimal // umbral de reposición por almacén
	UpdatedAt   time.Time
}
