package repository

import "github.com/invorya/ledger-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para usuarios.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	// DisplayNames resuelve ids de actor a nombre visible, solo para mostrar
	// en el historial de movimientos (nunca para autorización).
	DisplayNames(ids []string) (map[string]string, error)
}
