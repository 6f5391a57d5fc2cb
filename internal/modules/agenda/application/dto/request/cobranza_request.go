package request

// CrearActividadRequest schedules one collection activity.
type CrearActividadRequest struct {
	ClienteID           string `json:"cliente_id" binding:"required"`
	PrestamoID          string `json:"prestamo_id"`
	UsuarioID           string `json:"usuario_asignado_id" binding:"required"`
	SucursalID          string `json:"sucursal_id"`
	TipoActividad       string `json:"tipo_actividad" binding:"required"`
	Prioridad           string `json:"prioridad"`
	FechaProgramada     string `json:"fecha_programada" binding:"required"`
	HoraInicio          string `json:"hora_inicio"`
	Titulo              string `json:"titulo" binding:"required"`
	Descripcion         string `json:"descripcion"`
	Objetivo            string `json:"objetivo"`
	DireccionVisita     string `json:"direccion_visita"`
	TelefonoContacto    string `json:"telefono_contacto"`
	PersonaContacto     string `json:"persona_contacto"`
	GenerarAlertaPrevia *bool  `json:"generar_alerta_previa"`
	MinutosAlertaPrevia int    `json:"minutos_alerta_previa"`
	NotificarSupervisor bool   `json:"notificar_supervisor"`
}

// CambiarEstadoActividadRequest moves an activity through its lifecycle.
type CambiarEstadoActividadRequest struct {
	Estado        string `json:"estado" binding:"required"`
	Observaciones string `json:"observaciones"`
}

// CompletarActividadRequest closes an activity with its outcome.
type CompletarActividadRequest struct {
	Resultado        string   `json:"resultado" binding:"required"`
	ResultadoDetalle string   `json:"resultado_detalle"`
	ProximosPasos    string   `json:"proximos_pasos"`
	MontoGestionado  *float64 `json:"monto_gestionado"`
	MontoPrometido   *float64 `json:"monto_prometido"`
	FechaPromesaPago string   `json:"fecha_promesa_pago"`
}

// ReprogramarActividadRequest moves an activity to a new date.
type ReprogramarActividadRequest struct {
	NuevaFecha string `json:"nueva_fecha" binding:"required"`
	NuevaHora  string `json:"nueva_hora"`
	Motivo     string `json:"motivo" binding:"required"`
}
