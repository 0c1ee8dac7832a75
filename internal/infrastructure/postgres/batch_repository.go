package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

var _ repository.BatchRepository = (*BatchRepo)(nil)

// BatchRepo implementación del puerto BatchRepository sobre PostgreSQL.
// Acepta pool o tx (Querier): las compras crean lotes dentro de la transacción.
type BatchRepo struct {
	db Querier
}

// NewBatchRepository construye el adaptador de persistencia para lotes.
func NewBatchRepository(db Querier) *BatchRepo {
	return &BatchRepo{db: db}
}

// Create persiste un nuevo lote.
func (r *BatchRepo) Create(batch *entity.ProductBatch) error {
	if batch.ID == "" {
		batch.ID = uuid.NewString()
	}
	query := `
		INSERT INTO product_batches (id, company_id, product_id, batch_number, quantity, cost_price,
			expiration_date, purchase_id, purchase_date, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.Exec(context.Background(), query,
		batch.ID, batch.CompanyID, batch.ProductID, batch.BatchNumber, batch.Quantity,
		batch.CostPrice, batch.ExpirationDate, batch.PurchaseID, batch.PurchaseDate, batch.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}
	return nil
}

// ListByProduct lista los lotes de un producto, los más próximos a vencer primero.
func (r *BatchRepo) ListByProduct(productID string) ([]*entity.ProductBatch, error) {
	query := selectBatch + ` WHERE product_id = $1 ORDER BY expiration_date ASC NULLS LAST`
	rows, err := r.db.Query(context.Background(), query, productID)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	return scanBatches(rows)
}

// ListExpiring lista lotes con stock cuyo vencimiento cae antes de la fecha dada.
func (r *BatchRepo) ListExpiring(companyID string, before time.Time) ([]*entity.ProductBatch, error) {
	query := selectBatch + `
		WHERE company_id = $1 AND quantity > 0
			AND expiration_date IS NOT NULL AND expiration_date < $2
		ORDER BY expiration_date ASC`
	rows, err := r.db.Query(context.Background(), query, companyID, before)
	if err != nil {
		return nil, fmt.Errorf("list expiring batches: %w", err)
	}
	return scanBatches(rows)
}

func scanBatches(rows pgx.Rows) ([]*entity.ProductBatch, error) {
	defer rows.Close()
	var list []*entity.ProductBatch
	for rows.Next() {
		var b entity.ProductBatch
		if err := rows.Scan(&b.ID, &b.CompanyID, &b.ProductID, &b.BatchNumber, &b.Quantity,
			&b.CostPrice, &b.ExpirationDate, &b.PurchaseID, &b.PurchaseDate, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan batch: %w", err)
		}
		list = append(list, &b)
	}
	return list, rows.Err()
}

const selectBatch = `
	SELECT id, company_id, product_id, batch_number, quantity, cost_price,
		expiration_date, purchase_id, purchase_date, created_at
	FROM product_batches`
