package cobranza

// transiciones is the explicit adjacency table of the activity lifecycle.
// REPROGRAMADA is transient: reprogramming passes through it and lands back
// on PROGRAMADA with the new date.
var transiciones = map[string][]string{
	EstadoProgramada: {
		EstadoEnProceso,
		EstadoCancelada,
		EstadoReprogramada,
		EstadoNoContacto,
		EstadoClienteNoDisponible,
		EstadoVencida,
	},
	EstadoEnProceso: {
		EstadoCompletada,
		EstadoCancelada,
		EstadoReprogramada,
		EstadoNoContacto,
		EstadoClienteNoDisponible,
		EstadoVencida,
	},
	EstadoReprogramada: {EstadoProgramada},
}

var estadosTerminales = map[string]struct{}{
	EstadoCompletada:          {},
	EstadoCancelada:           {},
	EstadoNoContacto:          {},
	EstadoClienteNoDisponible: {},
	EstadoVencida:             {},
}

// EsTerminal reports whether estado admits no further transition. A failed
// contact is terminal; retrying means creating a fresh activity, which the
// delinquency sweep does automatically.
func EsTerminal(estado string) bool {
	_, ok := estadosTerminales[estado]
	return ok
}

// PuedeTransicionar reports whether the estado -> destino edge exists.
func PuedeTransicionar(estado, destino string) bool {
	for _, siguiente := range transiciones[estado] {
		if siguiente == destino {
			return true
		}
	}
	return false
}
