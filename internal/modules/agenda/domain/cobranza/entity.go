package cobranza

import (
	"time"
)

// Actividad is one scheduled collections action against a customer or loan.
// Fields marked "cifrado" cross the encryption boundary in the persistence
// adapter.
type Actividad struct {
	ID         string `gorm:"column:id;primaryKey;type:varchar(64)"`
	ClienteID  string `gorm:"column:cliente_id;index;not null;type:varchar(64)"`
	PrestamoID string `gorm:"column:prestamo_id;index;type:varchar(64)"`
	UsuarioID  string `gorm:"column:usuario_asignado_id;index;not null;type:varchar(64)"`
	SucursalID string `gorm:"column:sucursal_id;index;type:varchar(64)"`

	TipoActividad string `gorm:"column:tipo_actividad;index;not null;type:varchar(40)"`
	Estado        string `gorm:"column:estado;index;not null;default:PROGRAMADA;type:varchar(30)"`
	Prioridad     string `gorm:"column:prioridad;index;not null;default:NORMAL;type:varchar(20)"`
	Resultado     string `gorm:"column:resultado;index;type:varchar(30)"`

	FechaProgramada         time.Time  `gorm:"column:fecha_programada;index;not null"`
	HoraInicio              string     `gorm:"column:hora_inicio;type:varchar(5)"`
	DuracionEstimadaMinutos *int       `gorm:"column:duracion_estimada_minutos"`
	DuracionRealMinutos     *int       `gorm:"column:duracion_real_minutos"`
	FechaInicioReal         *time.Time `gorm:"column:fecha_inicio_real"`
	FechaFinReal            *time.Time `gorm:"column:fecha_fin_real"`
	FechaVencimiento        *time.Time `gorm:"column:fecha_vencimiento;index"`
	FechaReprogramacion     *time.Time `gorm:"column:fecha_reprogramacion"`

	// cifrado
	Titulo           string `gorm:"column:titulo;not null;type:text;serializer:cifrado"`
	Descripcion      string `gorm:"column:descripcion;type:text;serializer:cifrado"`
	Objetivo         string `gorm:"column:objetivo;type:text;serializer:cifrado"`
	Observaciones    string `gorm:"column:observaciones;type:text;serializer:cifrado"`
	ResultadoDetalle string `gorm:"column:resultado_detalle;type:text;serializer:cifrado"`
	ProximosPasos    string `gorm:"column:proximos_pasos;type:text;serializer:cifrado"`
	DireccionVisita  string `gorm:"column:direccion_visita;type:text;serializer:cifrado"`
	TelefonoContacto string `gorm:"column:telefono_contacto;type:text;serializer:cifrado"`
	PersonaContacto  string `gorm:"column:persona_contacto;type:text;serializer:cifrado"`

	// cifrado
	MontoGestionado  *float64   `gorm:"column:monto_gestionado;type:decimal(15,2)"`
	MontoPrometido   *float64   `gorm:"column:monto_prometido;type:decimal(15,2)"`
	FechaPromesaPago *time.Time `gorm:"column:fecha_promesa_pago"`

	RequiereSeguimiento     bool       `gorm:"column:requiere_seguimiento;index;not null;default:false"`
	FechaProximoSeguimiento *time.Time `gorm:"column:fecha_proximo_seguimiento;index"`
	NumeroIntentos          int        `gorm:"column:numero_intentos;not null;default:0"`
	PromesaIncumplida       bool       `gorm:"column:promesa_incumplida;index;not null;default:false"`

	GenerarAlertaPrevia bool `gorm:"column:generar_alerta_previa;not null;default:true"`
	MinutosAlertaPrevia int  `gorm:"column:minutos_alerta_previa;not null;default:60"`
	AlertaGenerada      bool `gorm:"column:alerta_generada;not null;default:false"`
	NotificarSupervisor bool `gorm:"column:notificar_supervisor;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (Actividad) TableName() string {
	return "agenda_cobranza"
}

// FinDelDia returns 23:59:59 of the scheduled date, the implicit deadline
// when no explicit fecha_vencimiento was set.
func FinDelDia(fecha time.Time) time.Time {
	return time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 23, 59, 59, 0, fecha.Location())
}

// FechaLimite returns the effective deadline of the activity.
func (a *Actividad) FechaLimite() time.Time {
	if a.FechaVencimiento != nil {
		return *a.FechaVencimiento
	}
	return FinDelDia(a.FechaProgramada)
}

// EstaVencida reports whether the deadline has passed at now.
func (a *Actividad) EstaVencida(now time.Time) bool {
	return now.After(a.FechaLimite())
}

func (a *Actividad) EsTerminal() bool {
	return EsTerminal(a.Estado)
}

// FechaHoraInicio combines the scheduled date with hora_inicio ("HH:MM").
// Returns the zero time when no start hour was set.
func (a *Actividad) FechaHoraInicio() time.Time {
	if a.HoraInicio == "" {
		return time.Time{}
	}
	t, err := time.Parse("15:04", a.HoraInicio)
	if err != nil {
		return time.Time{}
	}
	f := a.FechaProgramada
	return time.Date(f.Year(), f.Month(), f.Day(), t.Hour(), t.Minute(), 0, 0, f.Location())
}

// RequiereAlertaPrevia reports whether the pre-alert for the scheduled start
// is due at now and has not been generated yet.
func (a *Actividad) RequiereAlertaPrevia(now time.Time) bool {
	if !a.GenerarAlertaPrevia || a.AlertaGenerada {
		return false
	}
	inicio := a.FechaHoraInicio()
	if inicio.IsZero() || now.After(inicio) {
		return false
	}
	return inicio.Sub(now) <= time.Duration(a.MinutosAlertaPrevia)*time.Minute
}

// CalcularDuracionReal stamps duracion_real_minutos from the real start and
// end timestamps.
func (a *Actividad) CalcularDuracionReal() {
	if a.FechaInicioReal == nil || a.FechaFinReal == nil {
		return
	}
	minutos := int(a.FechaFinReal.Sub(*a.FechaInicioReal).Minutes())
	a.DuracionRealMinutos = &minutos
}
