package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento en el historial de stock.
const (
	MovementEntry = "entry" // entrada
	MovementExit  = "exit"  // salida
)

// Tipos de referencia de un movimiento (documento que lo originó).
const (
	ReferencePurchase   = "purchase"
	ReferenceAdjustment = "adjustment"
	ReferenceTransfer   = "transfer"
)

// Razones estándar registradas por el motor de compras. Distinguen alta
// inicial, aumento/disminución por edición y traslado por cambio de almacén.
const (
	ReasonPurchase        = "Compra"
	ReasonEditIncrease    = "Edición de compra - aumento"
	ReasonEditDecrease    = "Edición de compra - disminución"
	ReasonWarehouseChange = "Edición de compra - cambio de almacén"
)

// StockMovement representa una entrada o salida en el historial de inventario.
// Es un registro de auditoría append-only: Quantity siempre es positiva y el
// signo lo determina Type.
type StockMovement struct {
	ID            string
	CompanyID     string
	ProductID     string
	WarehouseID   string
	Type          string // entry, exit
	Quantity      decimal.Decimal
	UnitCost      decimal.Decimal
	Reason        string
	ReferenceType string // purchase, adjustment, transfer
	ReferenceID   string
	Notes         string
	CreatedAt     time.Time
	CreatedBy     string // UserID
}
