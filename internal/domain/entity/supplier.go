package entity

import "time"

// Supplier representa un proveedor del negocio (compras).
type Supplier struct {
	ID             string
	CompanyID      string
	BusinessName   string
	DocumentType   string // RUC, DNI
	DocumentNumber string
	ContactName    string
	Email          string
	Phone          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
