package inventory_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/invorya/ledger-api/internal/domain/inventory"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// Caso 1: stock cero es Agotado sin importar el mínimo.
func TestStatus_StockCeroEsAgotado(t *testing.T) {
	assert.Equal(t, inventory.StatusAgotado, inventory.Status(d("0"), d("0")))
	assert.Equal(t, inventory.StatusAgotado, inventory.Status(d("0"), d("10")))
	assert.Equal(t, inventory.StatusAgotado, inventory.Status(d("0"), d("100")))
}

// Caso 2: stock exactamente en el mínimo clasifica como Stock Bajo, no Normal.
func TestStatus_StockIgualAlMinimoEsBajo(t *testing.T) {
	assert.Equal(t, inventory.StatusStockBajo, inventory.Status(d("5"), d("5")))
	assert.Equal(t, inventory.StatusStockBajo, inventory.Status(d("0.5"), d("0.5")))
}

// Caso 3: por debajo del mínimo pero mayor a cero.
func TestStatus_StockPorDebajoDelMinimo(t *testing.T) {
	assert.Equal(t, inventory.StatusStockBajo, inventory.Status(d("3"), d("10")))
}

// Caso 4: por encima del mínimo.
func TestStatus_StockNormal(t *testing.T) {
	assert.Equal(t, inventory.StatusNormal, inventory.Status(d("11"), d("10")))
	assert.Equal(t, inventory.StatusNormal, inventory.Status(d("1"), d("0")))
}

// Caso 5: mínimo cero con stock positivo no puede ser Stock Bajo.
func TestStatus_MinimoCeroConStockPositivo(t *testing.T) {
	assert.Equal(t, inventory.StatusNormal, inventory.Status(d("0.01"), d("0")))
}

// Caso 6: filas legadas con NULLs llegan como cero (COALESCE) y clasifican Agotado.
func TestStatus_ValoresCeroPorDefecto(t *testing.T) {
	var zero decimal.Decimal // valor cero de decimal.Decimal, como deja el scan con COALESCE
	assert.Equal(t, inventory.StatusAgotado, inventory.Status(zero, zero))
}
