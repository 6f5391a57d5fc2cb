package service_test

import (
	"context"
	"testing"
	"time"

	"CrediAgenda/internal/modules/agenda/application/dto/request"
	"CrediAgenda/internal/modules/agenda/application/service"
	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/directorio"
	"CrediAgenda/internal/modules/agenda/domain/historial"
	"CrediAgenda/internal/modules/agenda/domain/solicitud"
	"CrediAgenda/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type entornoSolicitudes struct {
	reloj       *relojMovil
	solicitudes *fakeSolicitudRepo
	alertas     *fakeAlertaRepo
	historico   *fakeHistorialRepo
	dir         *fakeDirectorioRepo
	svc         service.SolicitudService
}

func nuevoEntornoSolicitudes(t *testing.T, inicio time.Time) *entornoSolicitudes {
	t.Helper()
	reloj := &relojMovil{instante: inicio}
	solicitudes := newFakeSolicitudRepo()
	alertas := newFakeAlertaRepo(reloj)
	historico := newFakeHistorialRepo()
	dir := newFakeDirectorioRepo()
	dir.clientes["c1"] = &directorio.Cliente{ID: "c1", NombreCompleto: "María Pérez", Activo: true}
	dir.usuarios["u1"] = usuarioDePrueba("u1", directorio.RolOficialCredito, "suc1")
	dir.usuarios["u2"] = usuarioDePrueba("u2", directorio.RolOficialCredito, "suc1")

	alertaSvc := service.NewAlertaService(alertas, dir, &fakeDispatcher{}, nil, reloj, 4, 3)
	return &entornoSolicitudes{
		reloj:       reloj,
		solicitudes: solicitudes,
		alertas:     alertas,
		historico:   historico,
		dir:         dir,
		svc:         service.NewSolicitudService(solicitudes, dir, historico, alertaSvc, nil, reloj, 24),
	}
}

func solicitudBase() request.CrearSolicitudRequest {
	return request.CrearSolicitudRequest{
		ClienteID:     "c1",
		UsuarioID:     "u1",
		TipoSolicitud: solicitud.TipoCreditoPersonal,
		Canal:         solicitud.CanalSucursal,
		Asunto:        "Crédito personal",
		Descripcion:   "Solicita crédito de consumo",
	}
}

func TestCrearSolicitudNumeracionYDefectos(t *testing.T) {
	ctx := context.Background()
	inicio := time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC)
	env := nuevoEntornoSolicitudes(t, inicio)

	sol, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "SOL-20260407-0001", sol.NumeroSolicitud)
	assert.Equal(t, solicitud.EstadoRecibida, sol.Estado)
	assert.Equal(t, solicitud.PrioridadNormal, sol.Prioridad)
	assert.Equal(t, "USD", sol.Moneda)
	assert.Equal(t, 24, sol.SlaHoras)
	assert.True(t, sol.RequiereSeguimiento)
	require.NotNil(t, sol.FechaLimiteRespuesta)
	assert.Equal(t, inicio.Add(24*time.Hour), *sol.FechaLimiteRespuesta)

	otra, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "SOL-20260407-0002", otra.NumeroSolicitud)

	eventos, err := env.historico.ListPorItem(ctx, alerta.OrigenSolicitud, sol.ID)
	require.NoError(t, err)
	require.Len(t, eventos, 1)
	assert.Equal(t, historial.EventoCreacion, eventos[0].TipoEvento)
}

func TestCrearSolicitudSlaExplicito(t *testing.T) {
	inicio := time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC)
	env := nuevoEntornoSolicitudes(t, inicio)

	req := solicitudBase()
	req.SlaHoras = 72
	sol, err := env.svc.Crear(context.Background(), req, "u1")
	require.NoError(t, err)
	assert.Equal(t, 72, sol.SlaHoras)
	assert.Equal(t, inicio.Add(72*time.Hour), *sol.FechaLimiteRespuesta)
}

func TestCrearSolicitudValidaciones(t *testing.T) {
	ctx := context.Background()
	env := nuevoEntornoSolicitudes(t, time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC))

	tests := map[string]func(*request.CrearSolicitudRequest){
		"tipo desconocido":      func(r *request.CrearSolicitudRequest) { r.TipoSolicitud = "HIPOTECA_INVERSA" },
		"canal desconocido":     func(r *request.CrearSolicitudRequest) { r.Canal = "PALOMA" },
		"prioridad desconocida": func(r *request.CrearSolicitudRequest) { r.Prioridad = "MAXIMA" },
	}
	for name, mutar := range tests {
		t.Run(name, func(t *testing.T) {
			req := solicitudBase()
			mutar(&req)
			_, err := env.svc.Crear(ctx, req, "u1")
			assert.True(t, xerr.IsCode(err, xerr.Unprocessable))
		})
	}

	t.Run("cliente inexistente", func(t *testing.T) {
		req := solicitudBase()
		req.ClienteID = "nadie"
		_, err := env.svc.Crear(ctx, req, "u1")
		assert.True(t, xerr.IsCode(err, xerr.NotFound))
	})
}

func TestCambiarEstadoFlujoYRespuesta(t *testing.T) {
	ctx := context.Background()
	inicio := time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC)
	env := nuevoEntornoSolicitudes(t, inicio)

	sol, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)

	for _, estado := range []string{
		solicitud.EstadoEnRevision,
		solicitud.EstadoEnEvaluacion,
		solicitud.EstadoEnComite,
	} {
		sol, err = env.svc.CambiarEstado(ctx, sol.ID,
			request.CambiarEstadoSolicitudRequest{Estado: estado}, "u1")
		require.NoError(t, err)
		assert.Equal(t, estado, sol.Estado)
	}
	assert.Equal(t, 3, sol.NumeroInteracciones)
	assert.Nil(t, sol.FechaRespuesta)

	// Approval stamps the response clock and queues the disbursement alert.
	env.reloj.avanzar(6 * time.Hour)
	monto := 5000.0
	sol, err = env.svc.CambiarEstado(ctx, sol.ID, request.CambiarEstadoSolicitudRequest{
		Estado:        solicitud.EstadoAprobada,
		MontoAprobado: &monto,
	}, "u1")
	require.NoError(t, err)
	require.NotNil(t, sol.FechaRespuesta)
	require.NotNil(t, sol.TiempoRespuestaHoras)
	assert.Equal(t, 6, *sol.TiempoRespuestaHoras)
	require.NotNil(t, sol.MontoAprobado)
	assert.Equal(t, 5000.0, *sol.MontoAprobado)
	assert.Len(t, env.alertas.porTipo(alerta.TipoDesembolsoPendiente), 1)

	// Closing stamps the processing metrics and drops the follow-up flag.
	env.reloj.avanzar(2 * time.Hour)
	sol, err = env.svc.CambiarEstado(ctx, sol.ID,
		request.CambiarEstadoSolicitudRequest{Estado: solicitud.EstadoCompletada}, "u1")
	require.NoError(t, err)
	require.NotNil(t, sol.FechaCompletada)
	require.NotNil(t, sol.TiempoProcesamientoHoras)
	assert.Equal(t, 8, *sol.TiempoProcesamientoHoras)
	assert.False(t, sol.RequiereSeguimiento)
}

func TestCambiarEstadoRechazaSaltos(t *testing.T) {
	ctx := context.Background()
	env := nuevoEntornoSolicitudes(t, time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC))

	sol, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)

	_, err = env.svc.CambiarEstado(ctx, sol.ID,
		request.CambiarEstadoSolicitudRequest{Estado: solicitud.EstadoAprobada}, "u1")
	assert.True(t, xerr.IsCode(err, xerr.Conflict))

	_, err = env.svc.CambiarEstado(ctx, sol.ID,
		request.CambiarEstadoSolicitudRequest{Estado: "LIMBO"}, "u1")
	assert.True(t, xerr.IsCode(err, xerr.Unprocessable))
}

func TestCambiarEstadoRechazoRequiereMotivo(t *testing.T) {
	ctx := context.Background()
	env := nuevoEntornoSolicitudes(t, time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC))

	sol, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)
	for _, estado := range []string{solicitud.EstadoEnRevision, solicitud.EstadoEnEvaluacion, solicitud.EstadoEnComite} {
		sol, err = env.svc.CambiarEstado(ctx, sol.ID,
			request.CambiarEstadoSolicitudRequest{Estado: estado}, "u1")
		require.NoError(t, err)
	}

	_, err = env.svc.CambiarEstado(ctx, sol.ID,
		request.CambiarEstadoSolicitudRequest{Estado: solicitud.EstadoRechazada}, "u1")
	assert.True(t, xerr.IsCode(err, xerr.Unprocessable))

	sol, err = env.svc.CambiarEstado(ctx, sol.ID, request.CambiarEstadoSolicitudRequest{
		Estado:        solicitud.EstadoRechazada,
		MotivoRechazo: "Capacidad de pago insuficiente",
	}, "u1")
	require.NoError(t, err)
	assert.Equal(t, solicitud.EstadoRechazada, sol.Estado)
	assert.Equal(t, "Capacidad de pago insuficiente", sol.MotivoRechazo)
	assert.Len(t, env.alertas.porTipo(alerta.TipoSeguimientoRequerido), 1)
}

func TestCambiarEstadoConflictoConcurrente(t *testing.T) {
	ctx := context.Background()
	env := nuevoEntornoSolicitudes(t, time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC))

	sol, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)

	// Another writer moves the row between the read and the guarded update;
	// the reported conflict names the fresh state, not the stale one.
	env.solicitudes.antesCambiarEstado = func() {
		env.solicitudes.items[sol.ID].Estado = solicitud.EstadoCancelada
	}

	_, err = env.svc.CambiarEstado(ctx, sol.ID,
		request.CambiarEstadoSolicitudRequest{Estado: solicitud.EstadoEnRevision}, "u1")
	require.Error(t, err)
	assert.True(t, xerr.IsCode(err, xerr.Conflict))
	assert.Contains(t, err.Error(), solicitud.EstadoCancelada)
}

func TestAsignarSolicitud(t *testing.T) {
	ctx := context.Background()
	env := nuevoEntornoSolicitudes(t, time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC))

	sol, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)

	require.NoError(t, env.svc.Asignar(ctx, sol.ID,
		request.AsignarSolicitudRequest{UsuarioID: "u2", Detalle: "reparto de carga"}, "u1"))

	tras, err := env.svc.Get(ctx, sol.ID)
	require.NoError(t, err)
	assert.Equal(t, "u2", tras.UsuarioID)

	pendientes := env.alertas.porTipo(alerta.TipoAprobacionPendiente)
	require.Len(t, pendientes, 1)
	assert.Equal(t, "u2", pendientes[0].UsuarioDestinatarioID)

	err = env.svc.Asignar(ctx, sol.ID, request.AsignarSolicitudRequest{UsuarioID: "nadie"}, "u1")
	assert.True(t, xerr.IsCode(err, xerr.NotFound))
}

func TestProgramarSeguimientoSolicitud(t *testing.T) {
	ctx := context.Background()
	env := nuevoEntornoSolicitudes(t, time.Date(2026, 4, 7, 10, 0, 0, 0, time.UTC))

	sol, err := env.svc.Crear(ctx, solicitudBase(), "u1")
	require.NoError(t, err)

	require.NoError(t, env.svc.ProgramarSeguimiento(ctx, sol.ID,
		request.SeguimientoSolicitudRequest{FechaSeguimiento: "2026-04-10", Detalle: "llamar al cliente"}, "u1"))

	tras, err := env.svc.Get(ctx, sol.ID)
	require.NoError(t, err)
	require.NotNil(t, tras.FechaProximoSeguimiento)
	assert.Equal(t, 10, tras.FechaProximoSeguimiento.Day())
	assert.True(t, tras.RequiereSeguimiento)

	err = env.svc.ProgramarSeguimiento(ctx, sol.ID,
		request.SeguimientoSolicitudRequest{FechaSeguimiento: "10/04/2026"}, "u1")
	assert.True(t, xerr.IsCode(err, xerr.Unprocessable))
}
