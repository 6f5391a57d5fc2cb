package historial

import (
	"time"
)

// History event types.
const (
	EventoCreacion       = "CREACION"
	EventoCambioEstado   = "CAMBIO_ESTADO"
	EventoReprogramacion = "REPROGRAMACION"
	EventoAsignacion     = "ASIGNACION"
	EventoSeguimiento    = "SEGUIMIENTO"
	EventoAlerta         = "ALERTA"
)

// Evento is one append-only history entry for a work item. Transitions are
// recorded here instead of concatenated into free-text observations, so the
// audit trail is queryable.
type Evento struct {
	ID             string    `gorm:"column:id;primaryKey;type:varchar(64)"`
	Origen         string    `gorm:"column:origen;index:idx_historial_item;not null;type:varchar(20)"`
	ItemID         string    `gorm:"column:item_id;index:idx_historial_item;not null;type:varchar(64)"`
	TipoEvento     string    `gorm:"column:tipo_evento;index;not null;type:varchar(30)"`
	EstadoAnterior string    `gorm:"column:estado_anterior;type:varchar(30)"`
	EstadoNuevo    string    `gorm:"column:estado_nuevo;type:varchar(30)"`
	Detalle        string    `gorm:"column:detalle;type:text"`
	UsuarioID      string    `gorm:"column:usuario_id;index;type:varchar(64)"`
	FechaEvento    time.Time `gorm:"column:fecha_evento;index;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (Evento) TableName() string {
	return "agenda_historial"
}
