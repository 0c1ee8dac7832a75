package entity

import "time"

// Company representa un negocio/tenant del sistema (multi-tenant, enfoque Perú).
type Company struct {
	ID        string
	Name      string
	RUC       string // RUC peruano del negocio
	Address   string
	Phone     string
	Email     string
	Status    string // active, suspended, inactive
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Módulos SaaS disponibles (deben coincidir con el CHECK de la tabla company_modules).
// El módulo pharmacy habilita lotes y vencimientos en las compras; restaurant
// habilita líneas de tipo insumo (ingredient).
const (
	ModulePurchasing = "purchasing"
	ModuleInventory  = "inventory"
	ModulePharmacy   = "pharmacy"
	ModuleRestaurant = "restaurant"
)

// CompanyModule representa la activación de un módulo SaaS en un negocio.
type CompanyModule struct {
	ID          string
	CompanyID   string
	ModuleName  string // ver constantes Module*
	IsActive    bool
	ActivatedAt time.Time
	ExpiresAt   *time.Time // nil = sin vencimiento
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
