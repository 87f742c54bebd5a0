package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin     = "admin"
	RoleBodeguero = "bodeguero"
)

// User representa un usuario del sistema. Se usa para autenticación y para
// mostrar el nombre del actor en el historial de movimientos; nunca para
// decidir autorización dentro del motor de inventario.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, bodeguero
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
