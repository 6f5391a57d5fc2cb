package cobranza

// Activity types.
const (
	TipoLlamadaTelefonica  = "LLAMADA_TELEFONICA"
	TipoVisitaDomicilio    = "VISITA_DOMICILIO"
	TipoVisitaTrabajo      = "VISITA_TRABAJO"
	TipoEnvioCarta         = "ENVIO_CARTA"
	TipoEnvioEmail         = "ENVIO_EMAIL"
	TipoEnvioSms           = "ENVIO_SMS"
	TipoReunionCliente     = "REUNION_CLIENTE"
	TipoNegociacionPago    = "NEGOCIACION_PAGO"
	TipoAcuerdoPago        = "ACUERDO_PAGO"
	TipoEntregaDocumentos  = "ENTREGA_DOCUMENTOS"
	TipoVerificacionDatos  = "VERIFICACION_DATOS"
	TipoSeguimientoPromesa = "SEGUIMIENTO_PROMESA"
	TipoEscalamientoLegal  = "ESCALAMIENTO_LEGAL"
	TipoOtro               = "OTRO"
)

// Activity states.
const (
	EstadoProgramada          = "PROGRAMADA"
	EstadoEnProceso           = "EN_PROCESO"
	EstadoCompletada          = "COMPLETADA"
	EstadoCancelada           = "CANCELADA"
	EstadoReprogramada        = "REPROGRAMADA"
	EstadoNoContacto          = "NO_CONTACTO"
	EstadoClienteNoDisponible = "CLIENTE_NO_DISPONIBLE"
	EstadoVencida             = "VENCIDA"
)

// Priorities.
const (
	PrioridadBaja    = "BAJA"
	PrioridadNormal  = "NORMAL"
	PrioridadAlta    = "ALTA"
	PrioridadCritica = "CRITICA"
	PrioridadUrgente = "URGENTE"
)

// Activity outcomes.
const (
	ResultadoExitosa              = "EXITOSA"
	ResultadoParcial              = "PARCIAL"
	ResultadoSinExito             = "SIN_EXITO"
	ResultadoPromesaPago          = "PROMESA_PAGO"
	ResultadoAcuerdoAlcanzado     = "ACUERDO_ALCANZADO"
	ResultadoClienteInubicable    = "CLIENTE_INUBICABLE"
	ResultadoClienteRenuente      = "CLIENTE_RENUENTE"
	ResultadoRequiereEscalamiento = "REQUIERE_ESCALAMIENTO"
	ResultadoPendiente            = "PENDIENTE"
)

var NombresTipo = map[string]string{
	TipoLlamadaTelefonica:  "Llamada Telefónica",
	TipoVisitaDomicilio:    "Visita a Domicilio",
	TipoVisitaTrabajo:      "Visita al Trabajo",
	TipoEnvioCarta:         "Envío de Carta",
	TipoEnvioEmail:         "Envío de Email",
	TipoEnvioSms:           "Envío de SMS",
	TipoReunionCliente:     "Reunión con Cliente",
	TipoNegociacionPago:    "Negociación de Pago",
	TipoAcuerdoPago:        "Acuerdo de Pago",
	TipoEntregaDocumentos:  "Entrega de Documentos",
	TipoVerificacionDatos:  "Verificación de Datos",
	TipoSeguimientoPromesa: "Seguimiento de Promesa",
	TipoEscalamientoLegal:  "Escalamiento Legal",
	TipoOtro:               "Otro",
}

var NombresEstado = map[string]string{
	EstadoProgramada:          "Programada",
	EstadoEnProceso:           "En Proceso",
	EstadoCompletada:          "Completada",
	EstadoCancelada:           "Cancelada",
	EstadoReprogramada:        "Reprogramada",
	EstadoNoContacto:          "Sin Contacto",
	EstadoClienteNoDisponible: "Cliente No Disponible",
	EstadoVencida:             "Vencida",
}

var NombresResultado = map[string]string{
	ResultadoExitosa:              "Exitosa",
	ResultadoParcial:              "Parcial",
	ResultadoSinExito:             "Sin Éxito",
	ResultadoPromesaPago:          "Promesa de Pago",
	ResultadoAcuerdoAlcanzado:     "Acuerdo Alcanzado",
	ResultadoClienteInubicable:    "Cliente Inubicable",
	ResultadoClienteRenuente:      "Cliente Renuente",
	ResultadoRequiereEscalamiento: "Requiere Escalamiento",
	ResultadoPendiente:            "Pendiente",
}

var NombresPrioridad = map[string]string{
	PrioridadBaja:    "Baja",
	PrioridadNormal:  "Normal",
	PrioridadAlta:    "Alta",
	PrioridadCritica: "Crítica",
	PrioridadUrgente: "Urgente",
}

func TipoValido(tipo string) bool {
	_, ok := NombresTipo[tipo]
	return ok
}

func EstadoValido(estado string) bool {
	_, ok := NombresEstado[estado]
	return ok
}

func ResultadoValido(resultado string) bool {
	_, ok := NombresResultado[resultado]
	return ok
}

func PrioridadValida(prioridad string) bool {
	_, ok := NombresPrioridad[prioridad]
	return ok
}

func NombreTipoLegible(tipo string) string {
	if nombre, ok := NombresTipo[tipo]; ok {
		return nombre
	}
	return tipo
}

func NombreEstadoLegible(estado string) string {
	if nombre, ok := NombresEstado[estado]; ok {
		return nombre
	}
	return estado
}

func NombreResultadoLegible(resultado string) string {
	if nombre, ok := NombresResultado[resultado]; ok {
		return nombre
	}
	return resultado
}

// Effectiveness bands for outcome reporting.
const (
	EfectividadAlta      = "ALTA"
	EfectividadMedia     = "MEDIA"
	EfectividadBaja      = "BAJA"
	EfectividadPendiente = "PENDIENTE"
)

// Efectividad classifies a completed activity's outcome for reporting.
func Efectividad(resultado string) string {
	switch resultado {
	case ResultadoExitosa, ResultadoAcuerdoAlcanzado:
		return EfectividadAlta
	case ResultadoParcial, ResultadoPromesaPago:
		return EfectividadMedia
	case ResultadoSinExito, ResultadoClienteInubicable, ResultadoClienteRenuente:
		return EfectividadBaja
	default:
		return EfectividadPendiente
	}
}
