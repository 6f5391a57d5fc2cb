package respond

import "time"

// SolicitudResumen is one row in listings and the upcoming-deadline panel.
type SolicitudResumen struct {
	ID              string     `json:"id"`
	NumeroSolicitud string     `json:"numero_solicitud"`
	ClienteID       string     `json:"cliente_id"`
	TipoSolicitud   string     `json:"tipo_solicitud"`
	TipoLegible     string     `json:"tipo_legible"`
	Estado          string     `json:"estado"`
	EstadoLegible   string     `json:"estado_legible"`
	Prioridad       string     `json:"prioridad"`
	Asunto          string     `json:"asunto"`
	FechaSolicitud  time.Time  `json:"fecha_solicitud"`
	FechaLimite     time.Time  `json:"fecha_limite"`
	HorasRestantes  float64    `json:"horas_restantes"`
	PorcentajeSla   float64    `json:"porcentaje_sla"`
	UsuarioID       string     `json:"usuario_asignado_id,omitempty"`
	FechaRespuesta  *time.Time `json:"fecha_respuesta,omitempty"`
}

// DashboardSolicitudes aggregates the request pipeline.
type DashboardSolicitudes struct {
	Total           int64              `json:"total"`
	PorEstado       map[string]int64   `json:"por_estado"`
	Vencidas        int64              `json:"vencidas"`
	ProximasAVencer []SolicitudResumen `json:"proximas_a_vencer"`
}

// ActividadResumen is one agenda row.
type ActividadResumen struct {
	ID              string     `json:"id"`
	ClienteID       string     `json:"cliente_id"`
	PrestamoID      string     `json:"prestamo_id,omitempty"`
	TipoActividad   string     `json:"tipo_actividad"`
	TipoLegible     string     `json:"tipo_legible"`
	Estado          string     `json:"estado"`
	EstadoLegible   string     `json:"estado_legible"`
	Prioridad       string     `json:"prioridad"`
	Titulo          string     `json:"titulo"`
	FechaProgramada time.Time  `json:"fecha_programada"`
	HoraInicio      string     `json:"hora_inicio,omitempty"`
	Resultado       string     `json:"resultado,omitempty"`
	MontoPrometido  *float64   `json:"monto_prometido,omitempty"`
	FechaPromesa    *time.Time `json:"fecha_promesa_pago,omitempty"`
	UsuarioID       string     `json:"usuario_asignado_id"`
}

// DashboardCobranza aggregates the collections agenda.
type DashboardCobranza struct {
	Total            int64            `json:"total"`
	PorEstado        map[string]int64 `json:"por_estado"`
	Hoy              int64            `json:"hoy"`
	Vencidas         int64            `json:"vencidas"`
	PromesasVencidas int64            `json:"promesas_vencidas"`
	Efectividad      float64          `json:"efectividad"`
}

// AlertaResumen is one alert row in the inbox listing.
type AlertaResumen struct {
	ID              string     `json:"id"`
	Origen          string     `json:"origen"`
	ItemID          string     `json:"item_id"`
	TipoAlerta      string     `json:"tipo_alerta"`
	Estado          string     `json:"estado"`
	NivelUrgencia   string     `json:"nivel_urgencia"`
	Titulo          string     `json:"titulo"`
	Mensaje         string     `json:"mensaje"`
	FechaProgramada time.Time  `json:"fecha_programada"`
	FechaEnviada    *time.Time `json:"fecha_enviada,omitempty"`
	IntentosEnvio   int        `json:"intentos_envio"`
	ErrorEnvio      string     `json:"error_envio,omitempty"`
}
