package request

// CrearSolicitudRequest opens a new service request.
type CrearSolicitudRequest struct {
	ClienteID        string   `json:"cliente_id" binding:"required"`
	UsuarioID        string   `json:"usuario_asignado_id"`
	SucursalID       string   `json:"sucursal_id"`
	PrestamoID       string   `json:"prestamo_id"`
	TipoSolicitud    string   `json:"tipo_solicitud" binding:"required"`
	Prioridad        string   `json:"prioridad"`
	Canal            string   `json:"canal" binding:"required"`
	Asunto           string   `json:"asunto" binding:"required"`
	Descripcion      string   `json:"descripcion" binding:"required"`
	MontoSolicitado  *float64 `json:"monto_solicitado"`
	Moneda           string   `json:"moneda"`
	PlazoSolicitado  *int     `json:"plazo_solicitado"`
	SlaHoras         int      `json:"sla_horas"`
	TelefonoContacto string   `json:"telefono_contacto"`
	EmailContacto    string   `json:"email_contacto"`
}

// CambiarEstadoSolicitudRequest moves a request through its lifecycle.
type CambiarEstadoSolicitudRequest struct {
	Estado        string   `json:"estado" binding:"required"`
	Observaciones string   `json:"observaciones"`
	MotivoRechazo string   `json:"motivo_rechazo"`
	MontoAprobado *float64 `json:"monto_aprobado"`
	PlazoAprobado *int     `json:"plazo_aprobado"`
	Condiciones   string   `json:"condiciones_aprobacion"`
}

// AsignarSolicitudRequest reassigns the request to another staff member.
type AsignarSolicitudRequest struct {
	UsuarioID string `json:"usuario_id" binding:"required"`
	Detalle   string `json:"detalle"`
}

// SeguimientoSolicitudRequest schedules the next follow-up.
type SeguimientoSolicitudRequest struct {
	FechaSeguimiento string `json:"fecha_seguimiento" binding:"required"`
	Detalle          string `json:"detalle"`
}
