package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound           = errors.New("recurso no encontrado")
	ErrUserNotFound       = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidInput       = errors.New("entrada inválida")
	ErrDuplicate          = errors.New("recurso duplicado")
	ErrUnauthorized       = errors.New("no autorizado")
	ErrForbidden          = errors.New("acceso denegado")
	ErrInsufficientStock  = errors.New("stock insuficiente")

	// ErrStoreUnavailable distingue "no pude consultar" de "consulté y hay
	// deriva": el motor de sync-validation nunca traduce un fallo de lectura
	// en un reporte vacío.
	ErrStoreUnavailable = errors.New("almacén de datos no disponible")
)
