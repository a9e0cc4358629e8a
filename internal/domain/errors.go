package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrUserNotFound      = errors.New("usuario no encontrado")
	ErrEmailAlreadyExists = errors.New("el email ya está registrado")
	ErrInvalidRequest    = errors.New("solicitud inválida")
	ErrDuplicate         = errors.New("recurso duplicado")
	ErrUnauthorized      = errors.New("no autorizado")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
	ErrInsufficientStock = errors.New("stock insuficiente")

	// ErrExpiredLotBlocked centinela para errors.Is; el error concreto es
	// ExpiredLotBlockedError, que transporta los lotes afectados.
	ErrExpiredLotBlocked = errors.New("asignación bloqueada por lotes vencidos")
)

// ExpiredLotBlockedError indica que el plan de asignación requiere lotes
// vencidos y no se concedió la autorización (allow_expired_override).
// LotNumbers identifica los lotes ofensores para que el llamador los excluya
// o solicite la autorización y reintente.
type ExpiredLotBlockedError struct {
	LotNumbers []string
}

func (e *ExpiredLotBlockedError) Error() string {
	return fmt.Sprintf("asignación bloqueada por lotes vencidos: %s", strings.Join(e.LotNumbers, ", "))
}

// Is permite errors.Is(err, domain.ErrExpiredLotBlocked).
func (e *ExpiredLotBlockedError) Is(target error) bool {
	return target == ErrExpiredLotBlocked
}
