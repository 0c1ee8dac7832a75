package purchase

import "github.com/shopspring/decimal"

// Estados del resultado por producto de una reconciliación.
const (
	OutcomeApplied   = "applied"   // stock/costo ajustados
	OutcomeSkipped   = "skipped"   // producto omitido (no existe o no controla stock)
	OutcomeUnchanged = "unchanged" // delta cero, sin mutación
)

// Razones de omisión.
const (
	SkipProductNotFound = "producto no encontrado"
	SkipNoTrackStock    = "el producto no controla stock"
)

// ItemOutcome es el resultado explícito por producto de aplicar el diff de
// una compra: permite al caller decidir si un éxito parcial es aceptable en
// lugar de enterarse por un log.
type ItemOutcome struct {
	ProductID string
	Status    string
	Reason    string
	Delta     decimal.Decimal
}
