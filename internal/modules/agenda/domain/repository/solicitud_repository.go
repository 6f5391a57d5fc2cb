package repository

import (
	"context"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/solicitud"
)

// FiltroSolicitudes narrows list and dashboard queries.
type FiltroSolicitudes struct {
	ClienteID  string
	UsuarioID  string
	SucursalID string
	Estado     string
	Tipo       string
	Prioridad  string
	Desde      *time.Time
	Hasta      *time.Time
	Limit      int
	Offset     int
}

type SolicitudRepository interface {
	Create(ctx context.Context, s *solicitud.Solicitud) error
	GetByID(ctx context.Context, id string) (*solicitud.Solicitud, error)
	GetByNumero(ctx context.Context, numero string) (*solicitud.Solicitud, error)
	List(ctx context.Context, filtro FiltroSolicitudes) ([]*solicitud.Solicitud, error)

	// UpdateCampos applies a partial update without touching estado.
	UpdateCampos(ctx context.Context, id string, campos map[string]interface{}) error

	// CambiarEstado applies updates only while the row still holds
	// estadoActual. Returns false when another writer moved the row first.
	CambiarEstado(ctx context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error)

	// SiguienteSecuencia returns the next per-day sequence for numbering.
	SiguienteSecuencia(ctx context.Context, prefijo string) (int, error)

	// ListVencibles returns non-terminal requests whose deadline passed.
	ListVencibles(ctx context.Context, corte time.Time) ([]*solicitud.Solicitud, error)

	// ListAbiertasSLA returns requests in the early states still consuming
	// their SLA window.
	ListAbiertasSLA(ctx context.Context) ([]*solicitud.Solicitud, error)

	// ListProximasAVencer returns non-terminal requests ordered by deadline.
	ListProximasAVencer(ctx context.Context, desde time.Time, limit int) ([]*solicitud.Solicitud, error)

	// ListSeguimientosDue returns requests flagged for follow-up whose next
	// follow-up date is on or before corte.
	ListSeguimientosDue(ctx context.Context, corte time.Time) ([]*solicitud.Solicitud, error)

	// CountCreadasEntre counts requests opened inside the window.
	CountCreadasEntre(ctx context.Context, desde, hasta time.Time) (int64, error)

	// ListCompletadasEntre returns requests whose fecha_completada falls
	// inside the window. Expired requests stamp it too, so they are included.
	ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]*solicitud.Solicitud, error)

	// CountPorEstado aggregates the dashboard distribution.
	CountPorEstado(ctx context.Context, filtro FiltroSolicitudes) (map[string]int64, error)
}
