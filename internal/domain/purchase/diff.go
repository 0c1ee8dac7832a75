package purchase

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
)

// LineDelta es el resultado del diff por producto entre la versión original y
// la versión editada de una compra.
type LineDelta struct {
	ProductID   string
	OriginalQty decimal.Decimal
	NewQty      decimal.Decimal
	Delta       decimal.Decimal // NewQty - OriginalQty
	NewUnitCost decimal.Decimal // promedio ponderado de las líneas nuevas; 0 si el producto salió
}

// ComputeDiff agrupa ambas listas de líneas por producto, suma cantidades y
// devuelve el delta neto de stock por producto (función pura, sin efectos).
// Un producto con varias líneas (ej. una pagada y una bonificación) se
// consolida; su costo nuevo es el promedio ponderado de sus propias líneas:
// NewUnitCost = Σ(qty*cost) / Σ(qty).
// Un producto ausente en updated implica retiro total (delta negativo); uno
// ausente en original implica alta pura (delta positivo).
func ComputeDiff(original, updated []entity.PurchaseItem) map[string]LineDelta {
	deltas := make(map[string]LineDelta)

	for _, item := range original {
		d := deltas[item.ProductID]
		d.ProductID = item.ProductID
		d.OriginalQty = d.OriginalQty.Add(item.Quantity)
		deltas[item.ProductID] = d
	}

	// Acumular cantidad y costo total de las líneas nuevas por producto
	newCostTotals := make(map[string]decimal.Decimal)
	for _, item := range updated {
		d := deltas[item.ProductID]
		d.ProductID = item.ProductID
		d.NewQty = d.NewQty.Add(item.Quantity)
		deltas[item.ProductID] = d
		newCostTotals[item.ProductID] = newCostTotals[item.ProductID].Add(item.Quantity.Mul(item.UnitCost))
	}

	for id, d := range deltas {
		d.Delta = d.NewQty.Sub(d.OriginalQty)
		if d.NewQty.GreaterThan(decimal.Zero) {
			d.NewUnitCost = newCostTotals[id].Div(d.NewQty)
		}
		deltas[id] = d
	}
	return deltas
}
