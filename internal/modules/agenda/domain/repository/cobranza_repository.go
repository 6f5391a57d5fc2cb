package repository

import (
	"context"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/cobranza"
)

// FiltroActividades narrows agenda queries.
type FiltroActividades struct {
	ClienteID  string
	PrestamoID string
	UsuarioID  string
	SucursalID string
	Estado     string
	Tipo       string
	Desde      *time.Time
	Hasta      *time.Time
	Limit      int
	Offset     int
}

type CobranzaRepository interface {
	Create(ctx context.Context, a *cobranza.Actividad) error
	GetByID(ctx context.Context, id string) (*cobranza.Actividad, error)
	List(ctx context.Context, filtro FiltroActividades) ([]*cobranza.Actividad, error)

	UpdateCampos(ctx context.Context, id string, campos map[string]interface{}) error

	// CambiarEstado applies updates only while the row still holds
	// estadoActual. Returns false when another writer moved the row first.
	CambiarEstado(ctx context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error)

	// ListVencibles returns activities in open states whose deadline passed.
	ListVencibles(ctx context.Context, corte time.Time) ([]*cobranza.Actividad, error)

	// ListProgramadasEnFecha returns the activities scheduled on the given
	// calendar day, across all users.
	ListProgramadasEnFecha(ctx context.Context, fecha time.Time) ([]*cobranza.Actividad, error)

	// ListConAlertaPreviaDue returns scheduled activities whose pre-alert
	// flag is unset and whose start falls within the lead window from corte.
	ListConAlertaPreviaDue(ctx context.Context, corte time.Time) ([]*cobranza.Actividad, error)

	// ListPromesasIncumplidas returns completed promise-of-payment
	// activities whose promise date is on or before corte and that have not
	// been flagged yet.
	ListPromesasIncumplidas(ctx context.Context, corte time.Time) ([]*cobranza.Actividad, error)

	// ListPromesasVencidas returns every promise-of-payment activity whose
	// promised date is on or before corte, optionally narrowed to one user.
	ListPromesasVencidas(ctx context.Context, corte time.Time, usuarioID string) ([]*cobranza.Actividad, error)

	// ExisteActividadReciente reports whether the loan already has any
	// activity created after desde.
	ExisteActividadReciente(ctx context.Context, prestamoID string, desde time.Time) (bool, error)

	// ListCompletadasEntre feeds the effectiveness report.
	ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]*cobranza.Actividad, error)

	// CountPorEstado aggregates the dashboard distribution.
	CountPorEstado(ctx context.Context, filtro FiltroActividades) (map[string]int64, error)
}
