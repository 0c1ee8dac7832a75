package purchase_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/Compras-api/internal/domain/purchase"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

// ──────────────────────────────────────────────────────────────────────────────
// AverageCost
// ──────────────────────────────────────────────────────────────────────────────

// Caso normal: (100*10 + 50*20) / 150 = 13.33 (redondeado a 2 decimales).
func TestAverageCost_PromedioPonderado(t *testing.T) {
	got := purchase.AverageCost(dec(100), dec(10), dec(50), dec(20))
	assert.True(t, got.Equal(dec(13.33)), "esperado 13.33, obtenido %s", got)
}

// Una bonificación (costo 0) nunca debe arrastrar el promedio hacia cero:
// con costo actual 10 y 5 unidades gratis, el costo sigue siendo 10 (no 9.52).
func TestAverageCost_BonificacionNoDeflactaElCosto(t *testing.T) {
	got := purchase.AverageCost(dec(100), dec(10), dec(5), dec(0))
	assert.True(t, got.Equal(dec(10)), "la bonificación no debe cambiar el costo: esperado 10, obtenido %s", got)
}

// Sin base previa (stock 0 o costo 0), el costo pasa a ser el de la entrada.
func TestAverageCost_SinBasePrevia(t *testing.T) {
	assert.True(t, purchase.AverageCost(dec(0), dec(0), dec(10), dec(7)).Equal(dec(7)),
		"sin stock ni costo previo, el costo es el de la compra")
	assert.True(t, purchase.AverageCost(dec(-3), dec(10), dec(10), dec(7)).Equal(dec(7)),
		"con stock negativo no hay base que mezclar")
	assert.True(t, purchase.AverageCost(dec(50), dec(0), dec(10), dec(7)).Equal(dec(7)),
		"con costo previo 0 no hay base que mezclar")
}

// Una reducción de cantidad no aporta información de costo: se conserva el actual.
func TestAverageCost_ReduccionConservaCosto(t *testing.T) {
	got := purchase.AverageCost(dec(100), dec(10), dec(-20), dec(15))
	assert.True(t, got.Equal(dec(10)), "delta negativo no debe recalcular el costo")

	got = purchase.AverageCost(dec(100), dec(10), dec(0), dec(15))
	assert.True(t, got.Equal(dec(10)), "delta cero no debe recalcular el costo")
}

// El resultado siempre se redondea a exactamente 2 decimales.
func TestAverageCost_RedondeoADosDecimales(t *testing.T) {
	// (3*1 + 1*2) / 4 = 1.25 → exacto; (1*1 + 2*2) / 3 = 1.666... → 1.67
	got := purchase.AverageCost(dec(1), dec(1), dec(2), dec(2))
	assert.True(t, got.Equal(dec(1.67)), "esperado 1.67, obtenido %s", got)
	assert.LessOrEqual(t, int(got.Exponent()*-1), 2, "el costo persistido no debe exceder 2 decimales")

	// Sin base previa también se redondea el costo de entrada
	got = purchase.AverageCost(dec(0), dec(0), dec(3), decimal.RequireFromString("7.999"))
	assert.True(t, got.Equal(dec(8)), "el costo de entrada se redondea antes de persistir")
}
