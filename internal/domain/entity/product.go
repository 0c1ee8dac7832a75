package entity

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto o insumo del inventario (multi-almacén).
// Cost es el costo promedio ponderado y solo se actualiza vía compras o
// movimientos; el stock vive por almacén en la tabla stock.
// Cuando TrackStock es false el producto queda exento de toda mutación de
// stock y costo (servicios, productos por peso sin control, etc.).
type Product struct {
	ID          string
	CompanyID   string
	SKU         string // código único por negocio
	Name        string
	Description string
	Price       decimal.Decimal // precio de venta
	Cost        decimal.Decimal // costo promedio ponderado (inicia en 0)
	TrackStock  bool
	UnitMeasure string
	Attributes  json.RawMessage
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
