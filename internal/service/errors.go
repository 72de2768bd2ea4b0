package service

import (
	"errors"
	"fmt"
)

// Taxonomia de errores de las operaciones request-style. Las operaciones
// event-style (mensajes y typing) nunca devuelven estos errores: descartan
// en silencio.
var (
	ErrForbidden        = errors.New("forbidden")
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrConflict         = errors.New("conflict")
	ErrStoreUnavailable = errors.New("store unavailable")
)

// storeError envuelve fallas del store como transitorias. No se reintenta
// internamente: el llamador decide.
func storeError(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
