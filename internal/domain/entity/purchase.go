package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de pago de una compra.
const (
	PaymentTypeCash   = "contado"
	PaymentTypeCredit = "credito"
)

// Estados de pago de una compra.
const (
	PaymentStatusPaid    = "paid"
	PaymentStatusPending = "pending"
	PaymentStatusPartial = "partial"
)

// Tipos de línea de compra. Ingredient solo aplica a negocios con el módulo
// restaurant activo (insumos de cocina).
const (
	ItemTypeProduct    = "product"
	ItemTypeIngredient = "ingredient"
)

// Purchase representa una factura de compra a proveedor. Todas las líneas
// entran al mismo almacén (WarehouseID). Puede editarse cualquier número de
// veces; cada edición reemplaza items y dispara la reconciliación de stock.
type Purchase struct {
	ID            string
	CompanyID     string
	SupplierID    *string // nil = compra sin proveedor registrado
	WarehouseID   string
	InvoiceNumber string
	InvoiceDate   time.Time
	Items         []PurchaseItem
	Subtotal      decimal.Decimal // total sin IGV
	Tax           decimal.Decimal // IGV 18%
	Total         decimal.Decimal
	PaymentType   string // contado, credito
	PaymentStatus string // paid, pending, partial
	PaidAmount    decimal.Decimal
	DueDate       *time.Time // crédito con pago único
	Installments  []PurchaseInstallment
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PurchaseItem es una línea de compra. Un producto puede repetirse en varias
// líneas (ej. una pagada y una bonificación con costo 0).
type PurchaseItem struct {
	ID             string
	PurchaseID     string
	ProductID      string
	Quantity       decimal.Decimal // > 0
	UnitCost       decimal.Decimal // >= 0; 0 = bonificación
	ItemType       string          // product, ingredient
	BatchNumber    string          // solo módulo pharmacy
	ExpirationDate *time.Time      // solo módulo pharmacy
}

// PurchaseInstallment es una cuota de una compra al crédito.
type PurchaseInstallment struct {
	ID         string
	PurchaseID string
	Number     int
	Amount     decimal.Decimal
	DueDate    time.Time
	Status     string // pending, paid
}

// PurchasePayment es un pago parcial o total contra una compra al crédito.
type PurchasePayment struct {
	ID         string
	PurchaseID string
	Amount     decimal.Decimal
	Method     string // efectivo, transferencia, etc.
	Notes      string
	PaidAt     time.Time
	CreatedBy  string
}
