package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductBatch representa un lote de un producto (módulo pharmacy).
// Se crea al registrar una compra con número de lote o fecha de vencimiento.
type ProductBatch struct {
	ID             string
	CompanyID      string
	ProductID      string
	BatchNumber    string
	Quantity       decimal.Decimal
	CostPrice      decimal.Decimal
	ExpirationDate *time.Time
	PurchaseID     string
	PurchaseDate   time.Time
	CreatedAt      time.Time
}
