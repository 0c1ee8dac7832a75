package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseItemRequest línea de compra en el body de create/update.
type PurchaseItemRequest struct {
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ItemType       string          `json:"item_type,omitempty"` // product (default), ingredient
	BatchNumber    string          `json:"batch_number,omitempty"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

// InstallmentRequest cuota de una compra al crédito.
type InstallmentRequest struct {
	Amount  decimal.Decimal `json:"amount"`
	DueDate time.Time       `json:"due_date"`
}

// CreatePurchaseRequest body para POST /api/purchases.
type CreatePurchaseRequest struct {
	SupplierID    string                `json:"supplier_id,omitempty"`
	WarehouseID   string                `json:"warehouse_id"`
	InvoiceNumber string                `json:"invoice_number,omitempty"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	Items         []PurchaseItemRequest `json:"items"`
	PaymentType   string                `json:"payment_type"` // contado, credito
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Installments  []InstallmentRequest  `json:"installments,omitempty"`
	Notes         string                `json:"notes,omitempty"`
}

// UpdatePurchaseRequest body para PUT /api/purchases/:id. La lista de items
// reemplaza por completo la anterior; el motor reconcilia stock y costos.
type UpdatePurchaseRequest struct {
	SupplierID    string                `json:"supplier_id,omitempty"`
	WarehouseID   string                `json:"warehouse_id"`
	InvoiceNumber string                `json:"invoice_number,omitempty"`
	InvoiceDate   time.Time             `json:"invoice_date"`
	Items         []PurchaseItemRequest `json:"items"`
	PaymentType   string                `json:"payment_type"`
	DueDate       *time.Time            `json:"due_date,omitempty"`
	Installments  []InstallmentRequest  `json:"installments,omitempty"`
	Notes         string                `json:"notes,omitempty"`
}

// RegisterPaymentRequest body para POST /api/purchases/:id/payments.
type RegisterPaymentRequest struct {
	Amount decimal.Decimal `json:"amount"`
	Method string          `json:"method,omitempty"`
	Notes  string          `json:"notes,omitempty"`
}

// PaymentResponse salida de un pago registrado contra una compra.
type PaymentResponse struct {
	ID         string          `json:"id"`
	PurchaseID string          `json:"purchase_id"`
	Amount     decimal.Decimal `json:"amount"`
	Method     string          `json:"method,omitempty"`
	Notes      string          `json:"notes,omitempty"`
	PaidAt     time.Time       `json:"paid_at"`
	CreatedBy  string          `json:"created_by"`
}

// PurchaseItemResponse línea de compra en respuestas.
type PurchaseItemResponse struct {
	ID             string          `json:"id"`
	ProductID      string          `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitCost       decimal.Decimal `json:"unit_cost"`
	ItemType       string          `json:"item_type"`
	BatchNumber    string          `json:"batch_number,omitempty"`
	ExpirationDate *time.Time      `json:"expiration_date,omitempty"`
}

// ItemOutcomeDTO resultado por producto de la reconciliación de stock.
type ItemOutcomeDTO struct {
	ProductID string          `json:"product_id"`
	Status    string          `json:"status"` // applied, skipped, unchanged
	Reason    string          `json:"reason,omitempty"`
	Delta     decimal.Decimal `json:"delta"`
}

// PurchaseResponse salida de una compra.
type PurchaseResponse struct {
	ID            string                 `json:"id"`
	CompanyID     string                 `json:"company_id"`
	SupplierID    string                 `json:"supplier_id,omitempty"`
	WarehouseID   string                 `json:"warehouse_id"`
	InvoiceNumber string                 `json:"invoice_number"`
	InvoiceDate   time.Time              `json:"invoice_date"`
	Items         []PurchaseItemResponse `json:"items"`
	Subtotal      decimal.Decimal        `json:"subtotal"`
	Tax           decimal.Decimal        `json:"tax"`
	Total         decimal.Decimal        `json:"total"`
	PaymentType   string                 `json:"payment_type"`
	PaymentStatus string                 `json:"payment_status"`
	PaidAmount    decimal.Decimal        `json:"paid_amount"`
	DueDate       *time.Time             `json:"due_date,omitempty"`
	Notes         string                 `json:"notes,omitempty"`
	Outcomes      []ItemOutcomeDTO       `json:"stock_outcomes,omitempty"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// PurchaseListResponse listado paginado de compras.
type PurchaseListResponse struct {
	Items []PurchaseResponse `json:"items"`
	Page  PageResponse       `json:"page"`
}
