package alerta

import (
	"time"
)

// Origen discriminates which work-item family the alert belongs to.
const (
	OrigenSolicitud = "SOLICITUD"
	OrigenCobranza  = "COBRANZA"
)

// Alert types.
const (
	TipoSla75                = "SLA_75"
	TipoSla90                = "SLA_90"
	TipoSlaVencido           = "SLA_VENCIDO"
	TipoDocumentosPendientes = "DOCUMENTOS_PENDIENTES"
	TipoSolicitudVencida     = "SOLICITUD_VENCIDA"
	TipoSeguimientoRequerido = "SEGUIMIENTO_REQUERIDO"
	TipoAprobacionPendiente  = "APROBACION_PENDIENTE"
	TipoDesembolsoPendiente  = "DESEMBOLSO_PENDIENTE"
	TipoActividadProxima     = "ACTIVIDAD_PROXIMA"
	TipoActividadVencida     = "ACTIVIDAD_VENCIDA"
	TipoPromesaPago          = "PROMESA_PAGO"
	TipoPromesaIncumplida    = "PROMESA_INCUMPLIDA"
	TipoAgendaDiaria         = "AGENDA_DIARIA"
	TipoEscalamiento         = "ESCALAMIENTO_REQUERIDO"
	TipoReporteEfectividad   = "REPORTE_EFECTIVIDAD"
	TipoOtro                 = "OTRO"
)

// Alert states.
const (
	EstadoPendiente = "PENDIENTE"
	EstadoEnviada   = "ENVIADA"
	EstadoLeida     = "LEIDA"
	EstadoAtendida  = "ATENDIDA"
	EstadoIgnorada  = "IGNORADA"
	EstadoVencida   = "VENCIDA"
)

// Urgency levels.
const (
	UrgenciaBaja    = "BAJA"
	UrgenciaMedia   = "MEDIA"
	UrgenciaAlta    = "ALTA"
	UrgenciaCritica = "CRITICA"
)

// MaxIntentosEnvio is the bounded retry limit for dispatch; once reached the
// alert is retired instead of retried forever.
const MaxIntentosEnvio = 3

// Alerta is one scheduled notification tied to exactly one work item and one
// recipient.
type Alerta struct {
	ID                    string `gorm:"column:id;primaryKey;type:varchar(64)"`
	Origen                string `gorm:"column:origen;index:idx_alerta_item;not null;type:varchar(20)"`
	ItemID                string `gorm:"column:item_id;index:idx_alerta_item;not null;type:varchar(64)"`
	UsuarioDestinatarioID string `gorm:"column:usuario_destinatario_id;index;not null;type:varchar(64)"`

	TipoAlerta    string `gorm:"column:tipo_alerta;index;not null;type:varchar(40)"`
	Estado        string `gorm:"column:estado;index;not null;default:PENDIENTE;type:varchar(20)"`
	NivelUrgencia string `gorm:"column:nivel_urgencia;index;not null;default:MEDIA;type:varchar(20)"`

	Titulo  string `gorm:"column:titulo;not null;type:varchar(200)"`
	Mensaje string `gorm:"column:mensaje;not null;type:text"`

	FechaProgramada  time.Time  `gorm:"column:fecha_programada;index;not null"`
	FechaEnviada     *time.Time `gorm:"column:fecha_enviada"`
	FechaLeida       *time.Time `gorm:"column:fecha_leida"`
	FechaAtendida    *time.Time `gorm:"column:fecha_atendida"`
	FechaVencimiento *time.Time `gorm:"column:fecha_vencimiento"`

	EnviarEmail bool `gorm:"column:enviar_email;not null;default:true"`
	EnviarSms   bool `gorm:"column:enviar_sms;not null;default:false"`
	EnviarPush  bool `gorm:"column:enviar_push;not null;default:true"`

	IntentosEnvio int        `gorm:"column:intentos_envio;not null;default:0"`
	UltimoIntento *time.Time `gorm:"column:ultimo_intento"`
	ErrorEnvio    string     `gorm:"column:error_envio;type:text"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Alerta) TableName() string {
	return "alertas"
}

// EsTerminal reports whether the alert is retired.
func (a *Alerta) EsTerminal() bool {
	switch a.Estado {
	case EstadoAtendida, EstadoIgnorada, EstadoVencida:
		return true
	}
	return false
}

func (a *Alerta) EstaPendiente() bool {
	return a.Estado == EstadoPendiente
}

// TieneCanales reports whether at least one delivery channel is enabled.
func (a *Alerta) TieneCanales() bool {
	return a.EnviarEmail || a.EnviarSms || a.EnviarPush
}

// MarcarEnviada moves the alert to ENVIADA and stamps the send time.
func (a *Alerta) MarcarEnviada(now time.Time) {
	a.Estado = EstadoEnviada
	a.FechaEnviada = &now
}

func (a *Alerta) MarcarLeida(now time.Time) {
	a.Estado = EstadoLeida
	a.FechaLeida = &now
}

func (a *Alerta) MarcarAtendida(now time.Time) {
	a.Estado = EstadoAtendida
	a.FechaAtendida = &now
}

// RegistrarFallo records one failed dispatch attempt.
func (a *Alerta) RegistrarFallo(now time.Time, errMsg string) {
	a.IntentosEnvio++
	a.UltimoIntento = &now
	if errMsg != "" {
		a.ErrorEnvio = errMsg
	}
}

// AgotoIntentos reports whether the retry budget is exhausted.
func (a *Alerta) AgotoIntentos() bool {
	return a.IntentosEnvio >= MaxIntentosEnvio
}

// NivelPorTier maps an SLA tier to its urgency.
func NivelPorTier(tipo string) string {
	switch tipo {
	case TipoSla75:
		return UrgenciaMedia
	case TipoSla90:
		return UrgenciaAlta
	case TipoSlaVencido:
		return UrgenciaCritica
	}
	return UrgenciaMedia
}

// TierRango orders the SLA tiers so the dedupe check can compare severity.
// Unknown types rank below every tier.
func TierRango(tipo string) int {
	switch tipo {
	case TipoSla75:
		return 1
	case TipoSla90:
		return 2
	case TipoSlaVencido:
		return 3
	}
	return 0
}
