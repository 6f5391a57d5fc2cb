package repository

import (
	"context"

	"CrediAgenda/internal/modules/agenda/domain/historial"
)

type HistorialRepository interface {
	// Append records one event; entries are never updated or deleted.
	Append(ctx context.Context, e *historial.Evento) error
	ListPorItem(ctx context.Context, origen, itemID string) ([]*historial.Evento, error)
}
