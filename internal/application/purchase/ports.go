package purchase

import (
	"context"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/repository"
)

// TxRunner ejecuta una función dentro de una transacción de BD, pasando
// repositorios atados a esa tx. Garantiza que la compra y las mutaciones de
// stock/costo se confirman o revierten juntas.
type TxRunner interface {
	Run(ctx context.Context, fn func(
		purchaseRepo repository.PurchaseRepository,
		stockRepo repository.StockRepository,
		productRepo repository.ProductRepository,
		batchRepo repository.BatchRepository,
	) error) error
}

// MovementRecorder escribe el historial de movimientos con política
// best-effort: se invoca después del commit y nunca devuelve error (los
// fallos del historial no deben revertir stock ya confirmado).
type MovementRecorder interface {
	Record(ctx context.Context, movements []*entity.StockMovement)
}

// Capabilities son las capacidades del negocio resueltas por el caller a
// partir de sus módulos activos, en lugar de estado ambiental.
type Capabilities struct {
	Pharmacy   bool // habilita lote/vencimiento en líneas de compra
	Restaurant bool // habilita líneas de tipo ingredient
}

// PDFGenerator genera el documento imprimible de una compra.
type PDFGenerator interface {
	Generate(ctx context.Context, doc *Document) ([]byte, error)
}
