package solicitud

// Request types.
const (
	TipoCreditoPersonal       = "CREDITO_PERSONAL"
	TipoCreditoVehicular      = "CREDITO_VEHICULAR"
	TipoCreditoHipotecario    = "CREDITO_HIPOTECARIO"
	TipoCreditoComercial      = "CREDITO_COMERCIAL"
	TipoRefinanciamiento      = "REFINANCIAMIENTO"
	TipoRenovacion            = "RENOVACION"
	TipoAumentoLimite         = "AUMENTO_LIMITE"
	TipoCambioCondiciones     = "CAMBIO_CONDICIONES"
	TipoCartaReferencia       = "CARTA_REFERENCIA"
	TipoCertificacionIngresos = "CERTIFICACION_INGRESOS"
	TipoEstadoCuenta          = "ESTADO_CUENTA"
	TipoDuplicadoDocumento    = "DUPLICADO_DOCUMENTO"
	TipoActualizacionDatos    = "ACTUALIZACION_DATOS"
	TipoReclamo               = "RECLAMO"
	TipoQueja                 = "QUEJA"
	TipoSugerencia            = "SUGERENCIA"
	TipoOtro                  = "OTRO"
)

// Request states.
const (
	EstadoRecibida             = "RECIBIDA"
	EstadoEnRevision           = "EN_REVISION"
	EstadoDocumentosPendientes = "DOCUMENTOS_PENDIENTES"
	EstadoEnEvaluacion         = "EN_EVALUACION"
	EstadoEnComite             = "EN_COMITE"
	EstadoAprobada             = "APROBADA"
	EstadoAprobadaCondicionada = "APROBADA_CONDICIONADA"
	EstadoRechazada            = "RECHAZADA"
	EstadoEnDesembolso         = "EN_DESEMBOLSO"
	EstadoDesembolsada         = "DESEMBOLSADA"
	EstadoCancelada            = "CANCELADA"
	EstadoVencida              = "VENCIDA"
	EstadoCompletada           = "COMPLETADA"
)

// Priorities.
const (
	PrioridadBaja    = "BAJA"
	PrioridadNormal  = "NORMAL"
	PrioridadAlta    = "ALTA"
	PrioridadUrgente = "URGENTE"
	PrioridadCritica = "CRITICA"
)

// Intake channels.
const (
	CanalSucursal = "SUCURSAL"
	CanalOnline   = "ONLINE"
	CanalTelefono = "TELEFONO"
	CanalEmail    = "EMAIL"
	CanalWhatsapp = "WHATSAPP"
	CanalMovil    = "MOVIL"
	CanalAgente   = "AGENTE"
	CanalOtro     = "OTRO"
)

// NombresTipo maps every tipo code to its human label.
var NombresTipo = map[string]string{
	TipoCreditoPersonal:       "Crédito Personal",
	TipoCreditoVehicular:      "Crédito Vehicular",
	TipoCreditoHipotecario:    "Crédito Hipotecario",
	TipoCreditoComercial:      "Crédito Comercial",
	TipoRefinanciamiento:      "Refinanciamiento",
	TipoRenovacion:            "Renovación de Crédito",
	TipoAumentoLimite:         "Aumento de Límite",
	TipoCambioCondiciones:     "Cambio de Condiciones",
	TipoCartaReferencia:       "Carta de Referencia",
	TipoCertificacionIngresos: "Certificación de Ingresos",
	TipoEstadoCuenta:          "Estado de Cuenta",
	TipoDuplicadoDocumento:    "Duplicado de Documento",
	TipoActualizacionDatos:    "Actualización de Datos",
	TipoReclamo:               "Reclamo",
	TipoQueja:                 "Queja",
	TipoSugerencia:            "Sugerencia",
	TipoOtro:                  "Otro",
}

// NombresEstado maps every estado code to its human label.
var NombresEstado = map[string]string{
	EstadoRecibida:             "Recibida",
	EstadoEnRevision:           "En Revisión",
	EstadoDocumentosPendientes: "Documentos Pendientes",
	EstadoEnEvaluacion:         "En Evaluación",
	EstadoEnComite:             "En Comité",
	EstadoAprobada:             "Aprobada",
	EstadoAprobadaCondicionada: "Aprobada con Condiciones",
	EstadoRechazada:            "Rechazada",
	EstadoEnDesembolso:         "En Desembolso",
	EstadoDesembolsada:         "Desembolsada",
	EstadoCancelada:            "Cancelada",
	EstadoVencida:              "Vencida",
	EstadoCompletada:           "Completada",
}

var NombresPrioridad = map[string]string{
	PrioridadBaja:    "Baja",
	PrioridadNormal:  "Normal",
	PrioridadAlta:    "Alta",
	PrioridadUrgente: "Urgente",
	PrioridadCritica: "Crítica",
}

var NombresCanal = map[string]string{
	CanalSucursal: "Sucursal",
	CanalOnline:   "Plataforma Online",
	CanalTelefono: "Teléfono",
	CanalEmail:    "Email",
	CanalWhatsapp: "WhatsApp",
	CanalMovil:    "App Móvil",
	CanalAgente:   "Agente Externo",
	CanalOtro:     "Otro",
}

func TipoValido(tipo string) bool {
	_, ok := NombresTipo[tipo]
	return ok
}

func EstadoValido(estado string) bool {
	_, ok := NombresEstado[estado]
	return ok
}

func PrioridadValida(prioridad string) bool {
	_, ok := NombresPrioridad[prioridad]
	return ok
}

func CanalValido(canal string) bool {
	_, ok := NombresCanal[canal]
	return ok
}

// NombreTipoLegible returns the human label, falling back to the raw code.
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
