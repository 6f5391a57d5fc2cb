package repository

import (
	"context"

	"CrediAgenda/internal/modules/agenda/domain/prestamo"
)

type PrestamoRepository interface {
	GetByID(ctx context.Context, id string) (*prestamo.Prestamo, error)

	// ListEnMora returns loans in arrears-bearing states (VIGENTE or MORA
	// with an overdue payment date).
	ListEnMora(ctx context.Context) ([]*prestamo.Prestamo, error)

	// MarcarEnMora flags a loan as MORA; no-op when already flagged.
	MarcarEnMora(ctx context.Context, id string) error
}
