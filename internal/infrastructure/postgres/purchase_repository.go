package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/Compras-api/internal/domain"
	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.PurchaseRepository = (*PurchaseRepo)(nil)

// PurchaseRepo implementación del puerto PurchaseRepository sobre PostgreSQL.
// Acepta pool o tx (Querier): el motor de edición lo construye atado a la
// transacción de reconciliación.
type PurchaseRepo struct {
	db Querier
}

// NewPurchaseRepository construye el adaptador de persistencia para compras.
func NewPurchaseRepository(db Querier) *PurchaseRepo {
	return &PurchaseRepo{db: db}
}

// Create persiste la cabecera de la compra, sus líneas y sus cuotas.
func (r *PurchaseRepo) Create(purchase *entity.Purchase) error {
	ctx := context.Background()
	query := `
		INSERT INTO purchases (id, company_id, supplier_id, warehouse_id, invoice_number, invoice_date,
			subtotal, tax, total, payment_type, payment_status, paid_amount, due_date, notes,
			created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`
	_, err := r.db.Exec(ctx, query,
		purchase.ID, purchase.CompanyID, purchase.SupplierID, purchase.WarehouseID,
		purchase.InvoiceNumber, purchase.InvoiceDate, purchase.Subtotal, purchase.Tax,
		purchase.Total, purchase.PaymentType, purchase.PaymentStatus, purchase.PaidAmount,
		purchase.DueDate, purchase.Notes, purchase.CreatedBy, purchase.CreatedAt, purchase.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert purchase: %w", err)
	}
	if err := r.insertItems(ctx, purchase.ID, purchase.Items); err != nil {
		return err
	}
	return r.insertInstallments(ctx, purchase.ID, purchase.Installments)
}

// GetByID carga la compra completa: cabecera, líneas y cuotas. Devuelve
// (nil, nil) si no existe.
func (r *PurchaseRepo) GetByID(id string) (*entity.Purchase, error) {
	ctx := context.Background()
	query := selectPurchase + ` WHERE id = $1`
	var p entity.Purchase
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.CompanyID, &p.SupplierID, &p.WarehouseID, &p.InvoiceNumber, &p.InvoiceDate,
		&p.Subtotal, &p.Tax, &p.Total, &p.PaymentType, &p.PaymentStatus, &p.PaidAmount,
		&p.DueDate, &p.Notes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get purchase: %w", err)
	}
	items, err := r.loadItems(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Items = items
	installments, err := r.loadInstallments(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	p.Installments = installments
	return &p, nil
}

// Update actualiza la cabecera de la compra. Las líneas se reemplazan aparte
// con ReplaceItems.
func (r *PurchaseRepo) Update(purchase *entity.Purchase) error {
	query := `
		UPDATE purchases SET supplier_id = $2, warehouse_id = $3, invoice_number = $4,
			invoice_date = $5, subtotal = $6, tax = $7, total = $8, payment_type = $9,
			payment_status = $10, paid_amount = $11, due_date = $12, notes = $13, updated_at = $14
		WHERE id = $1`
	_, err := r.db.Exec(context.Background(), query,
		purchase.ID, purchase.SupplierID, purchase.WarehouseID, purchase.InvoiceNumber,
		purchase.InvoiceDate, purchase.Subtotal, purchase.Tax, purchase.Total,
		purchase.PaymentType, purchase.PaymentStatus, purchase.PaidAmount, purchase.DueDate,
		purchase.Notes, purchase.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update purchase: %w", err)
	}
	return nil
}

// ReplaceItems borra las líneas actuales y reinserta la lista nueva. La
// edición siempre reemplaza el conjunto completo.
func (r *PurchaseRepo) ReplaceItems(purchaseID string, items []entity.PurchaseItem) error {
	ctx := context.Background()
	if _, err := r.db.Exec(ctx, `DELETE FROM purchase_items WHERE purchase_id = $1`, purchaseID); err != nil {
		return fmt.Errorf("delete purchase items: %w", err)
	}
	return r.insertItems(ctx, purchaseID, items)
}

// ListByCompany lista compras por negocio, las más recientes primero. Las
// líneas y cuotas se cargan por compra (listados cortos, paginados).
func (r *PurchaseRepo) ListByCompany(companyID string, limit, offset int) ([]*entity.Purchase, error) {
	ctx := context.Background()
	query := selectPurchase + ` WHERE company_id = $1 ORDER BY invoice_date DESC, created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.db.Query(ctx, query, companyID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	defer rows.Close()
	var list []*entity.Purchase
	for rows.Next() {
		var p entity.Purchase
		if err := rows.Scan(
			&p.ID, &p.CompanyID, &p.SupplierID, &p.WarehouseID, &p.InvoiceNumber, &p.InvoiceDate,
			&p.Subtotal, &p.Tax, &p.Total, &p.PaymentType, &p.PaymentStatus, &p.PaidAmount,
			&p.DueDate, &p.Notes, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan purchase: %w", err)
		}
		list = append(list, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, p := range list {
		items, err := r.loadItems(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Items = items
		installments, err := r.loadInstallments(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.Installments = installments
	}
	return list, nil
}

// AddPayment registra un pago contra una compra al crédito.
func (r *PurchaseRepo) AddPayment(payment *entity.PurchasePayment) error {
	if payment.ID == "" {
		payment.ID = uuid.NewString()
	}
	query := `
		INSERT INTO purchase_payments (id, purchase_id, amount, method, notes, paid_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.Exec(context.Background(), query,
		payment.ID, payment.PurchaseID, payment.Amount, payment.Method,
		payment.Notes, payment.PaidAt, payment.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("insert purchase payment: %w", err)
	}
	return nil
}

// ListPayments lista los pagos de una compra en orden cronológico.
func (r *PurchaseRepo) ListPayments(purchaseID string) ([]*entity.PurchasePayment, error) {
	query := `
		SELECT id, purchase_id, amount, method, notes, paid_at, created_by
		FROM purchase_payments
		WHERE purchase_id = $1
		ORDER BY paid_at ASC`
	rows, err := r.db.Query(context.Background(), query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("list purchase payments: %w", err)
	}
	defer rows.Close()
	var list []*entity.PurchasePayment
	for rows.Next() {
		var p entity.PurchasePayment
		if err := rows.Scan(&p.ID, &p.PurchaseID, &p.Amount, &p.Method, &p.Notes, &p.PaidAt, &p.CreatedBy); err != nil {
			return nil, fmt.Errorf("scan purchase payment: %w", err)
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func (r *PurchaseRepo) insertItems(ctx context.Context, purchaseID string, items []entity.PurchaseItem) error {
	query := `
		INSERT INTO purchase_items (id, purchase_id, product_id, quantity, unit_cost, item_type, batch_number, expiration_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	for i := range items {
		item := &items[i]
		if item.ID == "" {
			item.ID = uuid.NewString()
		}
		item.PurchaseID = purchaseID
		_, err := r.db.Exec(ctx, query,
			item.ID, item.PurchaseID, item.ProductID, item.Quantity, item.UnitCost,
			item.ItemType, item.BatchNumber, item.ExpirationDate,
		)
		if err != nil {
			return fmt.Errorf("insert purchase item: %w", err)
		}
	}
	return nil
}

func (r *PurchaseRepo) insertInstallments(ctx context.Context, purchaseID string, installments []entity.PurchaseInstallment) error {
	query := `
		INSERT INTO purchase_installments (id, purchase_id, number, amount, due_date, status)
		VALUES ($1, $2, $3, $4, $5, $6)`
	for i := range installments {
		inst := &installments[i]
		if inst.ID == "" {
			inst.ID = uuid.NewString()
		}
		inst.PurchaseID = purchaseID
		_, err := r.db.Exec(ctx, query,
			inst.ID, inst.PurchaseID, inst.Number, inst.Amount, inst.DueDate, inst.Status,
		)
		if err != nil {
			return fmt.Errorf("insert purchase installment: %w", err)
		}
	}
	return nil
}

func (r *PurchaseRepo) loadItems(ctx context.Context, purchaseID string) ([]entity.PurchaseItem, error) {
	query := `
		SELECT id, purchase_id, product_id, quantity, unit_cost, item_type, batch_number, expiration_date
		FROM purchase_items
		WHERE purchase_id = $1
		ORDER BY id ASC`
	rows, err := r.db.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("load purchase items: %w", err)
	}
	defer rows.Close()
	var items []entity.PurchaseItem
	for rows.Next() {
		var item entity.PurchaseItem
		if err := rows.Scan(&item.ID, &item.PurchaseID, &item.ProductID, &item.Quantity,
			&item.UnitCost, &item.ItemType, &item.BatchNumber, &item.ExpirationDate); err != nil {
			return nil, fmt.Errorf("scan purchase item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *PurchaseRepo) loadInstallments(ctx context.Context, purchaseID string) ([]entity.PurchaseInstallment, error) {
	query := `
		SELECT id, purchase_id, number, amount, due_date, status
		FROM purchase_installments
		WHERE purchase_id = $1
		ORDER BY number ASC`
	rows, err := r.db.Query(ctx, query, purchaseID)
	if err != nil {
		return nil, fmt.Errorf("load purchase installments: %w", err)
	}
	defer rows.Close()
	var installments []entity.PurchaseInstallment
	for rows.Next() {
		var inst entity.PurchaseInstallment
		if err := rows.Scan(&inst.ID, &inst.PurchaseID, &inst.Number, &inst.Amount, &inst.DueDate, &inst.Status); err != nil {
			return nil, fmt.Errorf("scan purchase installment: %w", err)
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

const selectPurchase = `
	SELECT id, company_id, supplier_id, warehouse_id, invoice_number, invoice_date,
		subtotal, tax, total, payment_type, payment_status, paid_amount, due_date, notes,
		created_by, created_at, updated_at
	FROM purchases`
