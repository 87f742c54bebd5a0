package inventory

import "github.com/shopspring/decimal"

// Estados de stock de un producto (clasificación del proyector).
const (
	StatusAgotado   = "Agotado"
	StatusStockBajo = "Stock Bajo"
	StatusNormal    = "Normal"
)

// Status clasifica el stock actual de un producto contra su umbral mínimo
// (servicio de dominio, función pura):
//
//	stock == 0           -> Agotado (sin importar el mínimo)
//	0 < stock <= mínimo  -> Stock Bajo
//	stock > mínimo       -> Normal
//
// Los NULL de filas legadas llegan aquí como cero (COALESCE en el scan), por
// eso la función es total y nunca falla por datos incompletos.
func Status(stock, minStock decimal.Decimal) string {
	if stock.LessThanOrEqual(decimal.Zero) {
		return StatusAgotado
	}
	if stock.LessThanOrEqual(minStock) {
		return StatusStockBajo
	}
	return StatusNormal
}
