package cobranza_test

import (
	"testing"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/cobranza"

	"github.com/stretchr/testify/assert"
)

func TestPuedeTransicionar(t *testing.T) {
	permitidas := []struct{ desde, hacia string }{
		{cobranza.EstadoProgramada, cobranza.EstadoEnProceso},
		{cobranza.EstadoProgramada, cobranza.EstadoCancelada},
		{cobranza.EstadoProgramada, cobranza.EstadoReprogramada},
		{cobranza.EstadoProgramada, cobranza.EstadoNoContacto},
		{cobranza.EstadoProgramada, cobranza.EstadoClienteNoDisponible},
		{cobranza.EstadoProgramada, cobranza.EstadoVencida},
		{cobranza.EstadoEnProceso, cobranza.EstadoCompletada},
		{cobranza.EstadoEnProceso, cobranza.EstadoCancelada},
		{cobranza.EstadoEnProceso, cobranza.EstadoReprogramada},
		// Started but never closed still expires past its deadline.
		{cobranza.EstadoEnProceso, cobranza.EstadoVencida},
		{cobranza.EstadoReprogramada, cobranza.EstadoProgramada},
	}
	for _, tc := range permitidas {
		assert.True(t, cobranza.PuedeTransicionar(tc.desde, tc.hacia),
			"%s -> %s debería permitirse", tc.desde, tc.hacia)
	}

	prohibidas := []struct{ desde, hacia string }{
		{cobranza.EstadoProgramada, cobranza.EstadoCompletada},
		{cobranza.EstadoReprogramada, cobranza.EstadoCompletada},
		{cobranza.EstadoCompletada, cobranza.EstadoEnProceso},
		{cobranza.EstadoVencida, cobranza.EstadoProgramada},
		{cobranza.EstadoNoContacto, cobranza.EstadoProgramada},
	}
	for _, tc := range prohibidas {
		assert.False(t, cobranza.PuedeTransicionar(tc.desde, tc.hacia),
			"%s -> %s debería rechazarse", tc.desde, tc.hacia)
	}
}

func TestEstadosTerminalesSinSalida(t *testing.T) {
	terminales := []string{
		cobranza.EstadoCompletada,
		cobranza.EstadoCancelada,
		cobranza.EstadoNoContacto,
		cobranza.EstadoClienteNoDisponible,
		cobranza.EstadoVencida,
	}
	for _, desde := range terminales {
		assert.True(t, cobranza.EsTerminal(desde))
		for hacia := range cobranza.NombresEstado {
			assert.False(t, cobranza.PuedeTransicionar(desde, hacia),
				"%s es terminal, no debe salir hacia %s", desde, hacia)
		}
	}
}

func TestFechaLimiteImplicita(t *testing.T) {
	fecha := time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)
	act := &cobranza.Actividad{FechaProgramada: fecha}

	limite := act.FechaLimite()
	assert.Equal(t, time.Date(2026, 4, 10, 23, 59, 59, 0, time.UTC), limite)

	assert.False(t, act.EstaVencida(time.Date(2026, 4, 10, 23, 59, 59, 0, time.UTC)))
	assert.True(t, act.EstaVencida(time.Date(2026, 4, 11, 0, 0, 0, 0, time.UTC)))
}

func TestFechaLimiteExplicitaPrevalece(t *testing.T) {
	fecha := time.Date(2026, 4, 10, 9, 30, 0, 0, time.UTC)
	vence := fecha.Add(2 * time.Hour)
	act := &cobranza.Actividad{FechaProgramada: fecha, FechaVencimiento: &vence}

	assert.Equal(t, vence, act.FechaLimite())
}

func TestRequiereAlertaPrevia(t *testing.T) {
	fecha := time.Date(2026, 4, 10, 0, 0, 0, 0, time.UTC)
	act := &cobranza.Actividad{
		FechaProgramada:     fecha,
		HoraInicio:          "10:00",
		GenerarAlertaPrevia: true,
		MinutosAlertaPrevia: 60,
	}

	tests := map[string]struct {
		now      time.Time
		expected bool
	}{
		"muy temprano":         {fecha.Add(8 * time.Hour), false},
		"dentro de la ventana": {fecha.Add(9*time.Hour + 15*time.Minute), true},
		"ya iniciada":          {fecha.Add(10*time.Hour + 1*time.Minute), false},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.expected, act.RequiereAlertaPrevia(tc.now))
		})
	}

	act.AlertaGenerada = true
	assert.False(t, act.RequiereAlertaPrevia(fecha.Add(9*time.Hour+15*time.Minute)),
		"alerta ya generada no se repite")
}

func TestEfectividad(t *testing.T) {
	assert.Equal(t, cobranza.EfectividadAlta, cobranza.Efectividad(cobranza.ResultadoExitosa))
	assert.Equal(t, cobranza.EfectividadAlta, cobranza.Efectividad(cobranza.ResultadoAcuerdoAlcanzado))
	assert.Equal(t, cobranza.EfectividadMedia, cobranza.Efectividad(cobranza.ResultadoPromesaPago))
	assert.Equal(t, cobranza.EfectividadBaja, cobranza.Efectividad(cobranza.ResultadoSinExito))
	assert.Equal(t, cobranza.EfectividadPendiente, cobranza.Efectividad(""))
}
