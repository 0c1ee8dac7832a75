package purchase

import "github.com/shopspring/decimal"

// AverageCost implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
//
// Reglas:
//   - Sin base previa (stock <= 0 o costo <= 0): el costo pasa a ser el de la
//     entrada, sin mezcla.
//   - Entrada con costo 0 (bonificación): el costo NO cambia; recibir gratis
//     no es evidencia de que el costo real sea cero.
//   - Cantidad <= 0 (reducción o sin cambio): el costo NO cambia; una
//     reducción no aporta información de costo nueva.
//
// El resultado se redondea a 2 decimales (precisión de moneda) antes de
// persistir.
func AverageCost(currentStock, currentCost, quantity, unitCost decimal.Decimal) decimal.Decimal {
	if currentStock.LessThanOrEqual(decimal.Zero) || currentCost.LessThanOrEqual(decimal.Zero) {
		return unitCost.Round(2)
	}
	if unitCost.IsZero() {
		return currentCost
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return currentCost
	}
	num := currentStock.Mul(currentCost).Add(quantity.Mul(unitCost))
	return num.Div(currentStock.Add(quantity)).Round(2)
}
