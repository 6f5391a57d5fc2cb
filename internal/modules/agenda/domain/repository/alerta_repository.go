package repository

import (
	"context"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/alerta"
)

// FiltroAlertas narrows alert listings.
type FiltroAlertas struct {
	UsuarioID   string
	Origen      string
	ItemID      string
	Estado      string
	SoloActivas bool
	Limit       int
	Offset      int
}

type AlertaRepository interface {
	Create(ctx context.Context, a *alerta.Alerta) error
	GetByID(ctx context.Context, id string) (*alerta.Alerta, error)
	List(ctx context.Context, filtro FiltroAlertas) ([]*alerta.Alerta, error)

	// CambiarEstado applies updates only while the row still holds
	// estadoActual. Returns false when another writer moved the row first.
	CambiarEstado(ctx context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error)

	// ListPendientesDue returns PENDIENTE alerts whose scheduled send time
	// is on or before corte.
	ListPendientesDue(ctx context.Context, corte time.Time, limit int) ([]*alerta.Alerta, error)

	// UltimaPorItem returns the most recent alert of the given item created
	// after desde whose tier rank is at least rangoMinimo and whose state is
	// non-terminal. Nil when none exists; the SLA dedupe window check.
	UltimaPorItem(ctx context.Context, origen, itemID string, rangoMinimo int, desde time.Time) (*alerta.Alerta, error)

	// ExistePorTipo reports whether a non-terminal alert of exactly this
	// type exists for the item, regardless of age.
	ExistePorTipo(ctx context.Context, origen, itemID, tipo string) (bool, error)

	// CancelarPendientesPorTipo retires PENDIENTE alerts of the given type
	// for the item, marking them VENCIDA. Returns rows affected.
	CancelarPendientesPorTipo(ctx context.Context, origen, itemID, tipo string) (int64, error)

	// CountEnviadasEntre counts alerts delivered inside the window.
	CountEnviadasEntre(ctx context.Context, desde, hasta time.Time) (int64, error)

	// BorrarTerminalesAntes deletes terminal alerts updated before corte.
	BorrarTerminalesAntes(ctx context.Context, corte time.Time) (int64, error)

	// BorrarPendientesAntes deletes stale PENDIENTE alerts scheduled before
	// corte and never sent.
	BorrarPendientesAntes(ctx context.Context, corte time.Time) (int64, error)
}
