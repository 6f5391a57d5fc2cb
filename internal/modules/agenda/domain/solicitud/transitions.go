package solicitud

// transiciones is the explicit adjacency table of the request lifecycle.
// CANCELADA and VENCIDA are reachable from every non-terminal state and are
// appended below instead of being listed per row. COMPLETADA closes the
// service-type requests that never reach disbursement (certifications,
// account statements, complaints).
var transiciones = map[string][]string{
	EstadoRecibida:             {EstadoEnRevision},
	EstadoEnRevision:           {EstadoDocumentosPendientes, EstadoEnEvaluacion, EstadoCompletada},
	EstadoDocumentosPendientes: {EstadoEnEvaluacion},
	EstadoEnEvaluacion:         {EstadoEnComite, EstadoCompletada},
	EstadoEnComite:             {EstadoAprobada, EstadoAprobadaCondicionada, EstadoRechazada},
	EstadoAprobada:             {EstadoEnDesembolso, EstadoCompletada},
	EstadoAprobadaCondicionada: {EstadoEnDesembolso, EstadoCompletada},
	EstadoEnDesembolso:         {EstadoDesembolsada},
}

// estadosTerminales are the states with no outgoing edge.
var estadosTerminales = map[string]struct{}{
	EstadoCompletada:   {},
	EstadoDesembolsada: {},
	EstadoRechazada:    {},
	EstadoCancelada:    {},
	EstadoVencida:      {},
}

// EsTerminal reports whether estado admits no further transition.
func EsTerminal(estado string) bool {
	_, ok := estadosTerminales[estado]
	return ok
}

// PuedeTransicionar reports whether the estado -> destino edge exists.
func PuedeTransicionar(estado, destino string) bool {
	if EsTerminal(estado) {
		return false
	}
	if destino == EstadoCancelada || destino == EstadoVencida {
		return EstadoValido(estado)
	}
	for _, siguiente := range transiciones[estado] {
		if siguiente == destino {
			return true
		}
	}
	return false
}

// EstadosConRespuesta are the states that stamp fecha_respuesta on entry.
var EstadosConRespuesta = map[string]struct{}{
	EstadoAprobada:             {},
	EstadoAprobadaCondicionada: {},
	EstadoRechazada:            {},
	EstadoCancelada:            {},
}

// EstadosAbiertosSLA are the early states still counting against the SLA
// window for alert purposes.
var EstadosAbiertosSLA = map[string]struct{}{
	EstadoRecibida:             {},
	EstadoEnRevision:           {},
	EstadoDocumentosPendientes: {},
}
