package solicitud

import (
	"time"
)

// Solicitud is one customer service request tracked against an SLA window.
// Text and amount fields marked "cifrado" cross the encryption boundary in
// the persistence adapter; in memory they are always plaintext.
type Solicitud struct {
	ID              string `gorm:"column:id;primaryKey;type:varchar(64)"`
	NumeroSolicitud string `gorm:"column:numero_solicitud;uniqueIndex;not null;type:varchar(50)"`
	ClienteID       string `gorm:"column:cliente_id;index;not null;type:varchar(64)"`
	UsuarioID       string `gorm:"column:usuario_asignado_id;index;type:varchar(64)"`
	SucursalID      string `gorm:"column:sucursal_id;index;type:varchar(64)"`
	PrestamoID      string `gorm:"column:prestamo_id;index;type:varchar(64)"`

	TipoSolicitud string `gorm:"column:tipo_solicitud;index;not null;type:varchar(40)"`
	Estado        string `gorm:"column:estado;index;not null;default:RECIBIDA;type:varchar(30)"`
	Prioridad     string `gorm:"column:prioridad;index;not null;default:NORMAL;type:varchar(20)"`
	Canal         string `gorm:"column:canal;not null;type:varchar(20)"`

	FechaSolicitud       time.Time  `gorm:"column:fecha_solicitud;index;not null"`
	FechaLimiteRespuesta *time.Time `gorm:"column:fecha_limite_respuesta;index"`
	FechaVencimiento     *time.Time `gorm:"column:fecha_vencimiento;index"`
	FechaRespuesta       *time.Time `gorm:"column:fecha_respuesta"`
	FechaCompletada      *time.Time `gorm:"column:fecha_completada"`

	// cifrado
	MontoSolicitado *float64 `gorm:"column:monto_solicitado;type:decimal(15,2)"`
	MontoAprobado   *float64 `gorm:"column:monto_aprobado;type:decimal(15,2)"`
	Moneda          string   `gorm:"column:moneda;not null;default:USD;type:varchar(3)"`
	PlazoSolicitado *int     `gorm:"column:plazo_solicitado"`
	PlazoAprobado   *int     `gorm:"column:plazo_aprobado"`

	// cifrado
	Asunto                string `gorm:"column:asunto;not null;type:text;serializer:cifrado"`
	Descripcion           string `gorm:"column:descripcion;not null;type:text;serializer:cifrado"`
	Observaciones         string `gorm:"column:observaciones;type:text;serializer:cifrado"`
	MotivoRechazo         string `gorm:"column:motivo_rechazo;type:text;serializer:cifrado"`
	CondicionesAprobacion string `gorm:"column:condiciones_aprobacion;type:text;serializer:cifrado"`
	RespuestaCliente      string `gorm:"column:respuesta_cliente;type:text;serializer:cifrado"`
	TelefonoContacto      string `gorm:"column:telefono_contacto;type:text;serializer:cifrado"`
	EmailContacto         string `gorm:"column:email_contacto;type:text;serializer:cifrado"`

	SlaHoras                int        `gorm:"column:sla_horas;not null;default:24"`
	AlertasEnviadas         int        `gorm:"column:alertas_enviadas;not null;default:0"`
	UltimaAlerta            *time.Time `gorm:"column:ultima_alerta"`
	RequiereSeguimiento     bool       `gorm:"column:requiere_seguimiento;not null;default:true"`
	FechaProximoSeguimiento *time.Time `gorm:"column:fecha_proximo_seguimiento;index"`

	RequiereDocumentos   bool   `gorm:"column:requiere_documentos;not null;default:false"`
	DocumentosPendientes string `gorm:"column:documentos_pendientes;type:text"`

	TiempoRespuestaHoras     *int `gorm:"column:tiempo_respuesta_horas"`
	TiempoProcesamientoHoras *int `gorm:"column:tiempo_procesamiento_horas"`
	NumeroInteracciones      int  `gorm:"column:numero_interacciones;not null;default:0"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Solicitud) TableName() string {
	return "cliente_solicitudes"
}

// FechaLimite returns the effective response deadline: the explicit override
// when present, otherwise fecha_solicitud + sla_horas.
func (s *Solicitud) FechaLimite() time.Time {
	if s.FechaLimiteRespuesta != nil {
		return *s.FechaLimiteRespuesta
	}
	return s.FechaSolicitud.Add(time.Duration(s.SlaHoras) * time.Hour)
}

// EstaVencida reports whether the deadline has passed at now.
func (s *Solicitud) EstaVencida(now time.Time) bool {
	if s.FechaVencimiento != nil {
		return now.After(*s.FechaVencimiento)
	}
	return now.After(s.FechaLimite())
}

// EsTerminal reports whether the request can no longer transition.
func (s *Solicitud) EsTerminal() bool {
	return EsTerminal(s.Estado)
}

// ActualizarTiempoRespuesta stamps the response time metric in whole hours.
func (s *Solicitud) ActualizarTiempoRespuesta() {
	if s.FechaRespuesta == nil {
		return
	}
	horas := int(s.FechaRespuesta.Sub(s.FechaSolicitud).Hours())
	s.TiempoRespuestaHoras = &horas
}

// ActualizarTiempoProcesamiento stamps the total processing time metric.
func (s *Solicitud) ActualizarTiempoProcesamiento() {
	if s.FechaCompletada == nil {
		return
	}
	horas := int(s.FechaCompletada.Sub(s.FechaSolicitud).Hours())
	s.TiempoProcesamientoHoras = &horas
}
