package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento de inventario.
const (
	MovementTypeENTRADA = "ENTRADA" // entrada de mercancía
	MovementTypeSALIDA  = "SALIDA"  // salida de mercancía
	MovementTypeAJUSTE  = "AJUSTE"  // corrección manual (cantidad con signo)
)

// ValidMovementType reporta si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	return t == MovementTypeENTRADA || t == MovementTypeSALIDA || t == MovementTypeAJUSTE
}

// Movement representa un asiento del libro de movimientos (append-only).
// Quantity lleva signo: positiva para ENTRADA y AJUSTE+, negativa para SALIDA
// y AJUSTE-. PreviousQty y NewQty capturan el saldo observado al momento de la
// escritura; para un producto ordenado por fecha, NewQty del asiento n debe
// coincidir con PreviousQty del asiento n+1 (roturas se reportan como warning,
// hay datos históricos anteriores a la vigencia del invariante).
//
// ProductID no está obligado a resolver contra el catálogo: esa es exactamente
// la deriva (huérfanos) que detecta el motor de sync-validation.
type Movement struct {
	ID          string
	ProductID   string
	ProductName string // snapshot desnormalizado del nombre al momento del asiento
	Type        string // ENTRADA, SALIDA, AJUSTE
	Quantity    decimal.Decimal
	PreviousQty decimal.Decimal
	NewQty      decimal.Decimal
	Reason      string // motivo libre, opcional
	CreatedAt   time.Time
	CreatedBy   string // UserID del actor
}
