package purchase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Compras-api/internal/domain/entity"
	"github.com/jhoicas/Compras-api/internal/domain/purchase"
)

func item(productID string, qty, cost float64) entity.PurchaseItem {
	return entity.PurchaseItem{
		ProductID: productID,
		Quantity:  decimal.NewFromFloat(qty),
		UnitCost:  decimal.NewFromFloat(cost),
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// ComputeDiff
// ──────────────────────────────────────────────────────────────────────────────

// Para todo producto debe cumplirse: OriginalQty + Delta == NewQty.
func TestComputeDiff_SumaOriginalMasDeltaEsNueva(t *testing.T) {
	original := []entity.PurchaseItem{item("p1", 10, 5), item("p2", 3, 2)}
	updated := []entity.PurchaseItem{item("p1", 15, 5), item("p3", 7, 4)}

	deltas := purchase.ComputeDiff(original, updated)
	require.Len(t, deltas, 3, "debe haber un delta por cada producto presente en alguna de las dos listas")

	for id, d := range deltas {
		assert.True(t, d.OriginalQty.Add(d.Delta).Equal(d.NewQty),
			"producto %s: original + delta debe ser igual a la cantidad nueva", id)
	}
	assert.True(t, deltas["p1"].Delta.Equal(decimal.NewFromInt(5)), "p1 pasó de 10 a 15")
	assert.True(t, deltas["p2"].Delta.Equal(decimal.NewFromInt(-3)), "p2 fue retirado: delta = -original")
	assert.True(t, deltas["p3"].Delta.Equal(decimal.NewFromInt(7)), "p3 es alta pura: delta = cantidad nueva")
}

// Un producto con varias líneas (una pagada y una bonificación) se consolida
// sumando cantidades y ponderando el costo por cantidad.
func TestComputeDiff_ConsolidaLineasRepetidas(t *testing.T) {
	original := []entity.PurchaseItem{}
	updated := []entity.PurchaseItem{
		item("p1", 10, 6), // pagada
		item("p1", 2, 0),  // bonificación
	}

	deltas := purchase.ComputeDiff(original, updated)
	d := deltas["p1"]

	assert.True(t, d.NewQty.Equal(decimal.NewFromInt(12)), "las cantidades de ambas líneas se suman")
	// (10*6 + 2*0) / 12 = 5
	assert.True(t, d.NewUnitCost.Equal(decimal.NewFromInt(5)),
		"el costo nuevo es el promedio ponderado de las líneas del producto")
}

// Ambas listas vacías producen un diff vacío.
func TestComputeDiff_ListasVacias(t *testing.T) {
	deltas := purchase.ComputeDiff(nil, nil)
	assert.Empty(t, deltas)
}

// Mismas líneas en ambas versiones: delta cero para todos los productos.
func TestComputeDiff_SinCambios(t *testing.T) {
	items := []entity.PurchaseItem{item("p1", 10, 5), item("p2", 3, 2)}
	deltas := purchase.ComputeDiff(items, items)

	for id, d := range deltas {
		assert.True(t, d.Delta.IsZero(), "producto %s sin cambios debe tener delta cero", id)
	}
}

// Retiro total: el producto no aparece en updated y su NewUnitCost queda en 0.
func TestComputeDiff_RetiroTotal(t *testing.T) {
	original := []entity.PurchaseItem{item("p1", 8, 3)}
	deltas := purchase.ComputeDiff(original, nil)

	d := deltas["p1"]
	assert.True(t, d.Delta.Equal(decimal.NewFromInt(-8)), "retiro total: delta = -suma original")
	assert.True(t, d.NewUnitCost.IsZero())
}
