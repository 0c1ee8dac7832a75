package repository

import "github.com/jhoicas/Compras-api/internal/domain/entity"

// PurchaseRepository define el puerto de persistencia para compras (DIP).
// Create y Update persisten cabecera, líneas y cuotas; ReplaceItems borra y
// reinserta las líneas (la edición reemplaza la lista completa).
type PurchaseRepository interface {
	Create(purchase *entity.Purchase) error
	GetByID(id string) (*entity.Purchase, error)
	Update(purchase *entity.Purchase) error
	ReplaceItems(purchaseID string, items []entity.PurchaseItem) error
	ListByCompany(companyID string, limit, offset int) ([]*entity.Purchase, error)
	AddPayment(payment *entity.PurchasePayment) error
	ListPayments(purchaseID string) ([]*entity.PurchasePayment, error)
}
