package dto

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para crear un producto. Cost inicia en 0 y se
// actualiza vía compras; TrackStock por defecto true.
type CreateProductRequest struct {
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	TrackStock  *bool           `json:"track_stock,omitempty"`
	UnitMeasure string          `json:"unit_measure,omitempty"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
}

// UpdateProductRequest entrada para actualizar un producto (campos opcionales).
// No permite modificar Cost ni stock: se manejan vía compras y movimientos.
type UpdateProductRequest struct {
	Name        *string          `json:"name,omitempty"`
	Description *string          `json:"description,omitempty"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	TrackStock  *bool            `json:"track_stock,omitempty"`
	UnitMeasure *string          `json:"unit_measure,omitempty"`
	Attributes  json.RawMessage  `json:"attributes,omitempty"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	CompanyID   string          `json:"company_id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	TrackStock  bool            `json:"track_stock"`
	UnitMeasure string          `json:"unit_measure"`
	Attributes  json.RawMessage `json:"attributes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// ProductListResponse listado paginado de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
