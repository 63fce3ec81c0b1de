package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrInvalidInput   = errors.New("entrada inválida")
	ErrDuplicate      = errors.New("recurso duplicado")
	ErrUnauthorized   = errors.New("no autorizado")
	ErrForbidden      = errors.New("acceso denegado")
	ErrConflict       = errors.New("conflicto con el estado actual")
	ErrTransientStore = errors.New("error transitorio de almacenamiento")

	// ErrStateNotInitialized indica que aún no existe fila de inventario para (finca, insumo).
	// No es una falla: la fila se crea con el primer evento del par.
	ErrStateNotInitialized = errors.New("estado de inventario no inicializado")

	// ErrLockNotObtained el candado por clave no se obtuvo a tiempo; reintentable.
	ErrLockNotObtained = errors.New("no se obtuvo el candado de recálculo")
)

// ValidationError describe una entrada rechazada antes de persistir cualquier evento.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye el error de validación.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// TransientError envuelve una falla de E/S reintentable (conexión, timeout, serialización).
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrTransientStore) sin perder la causa original.
func (e *TransientError) Is(target error) bool { return target == ErrTransientStore }

// IsRetryable indica si la operación puede reintentarse tal cual.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientStore) || errors.Is(err, ErrLockNotObtained)
}
