package service

import (
	"context"
	"fmt"
	"time"

	"CrediAgenda/internal/modules/agenda/application/dto/respond"
	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/cobranza"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/internal/modules/agenda/domain/sla"
	"CrediAgenda/internal/modules/agenda/domain/solicitud"
	"CrediAgenda/internal/modules/agenda/infrastructure/mq"
	"CrediAgenda/internal/modules/agenda/infrastructure/notify"
	"CrediAgenda/pkg/util"
	"CrediAgenda/pkg/xerr"
	"CrediAgenda/pkg/zlog"

	"go.uber.org/zap"
)

// HoraSeguimientoPromesa is the local send hour of promise follow-up alerts.
const HoraSeguimientoPromesa = 9

type AlertaService interface {
	// ProgramarPreAlerta schedules the pre-activity reminder; no-op when the
	// computed send time is already past.
	ProgramarPreAlerta(ctx context.Context, act *cobranza.Actividad) (*alerta.Alerta, error)

	// ProgramarAlertaSLA raises a tiered SLA alert for a request, deduped
	// inside the configured window. Returns nil when suppressed.
	ProgramarAlertaSLA(ctx context.Context, s *solicitud.Solicitud, tier string) (*alerta.Alerta, error)

	// ProgramarSeguimientoPromesa schedules the follow-up on the promised
	// payment date.
	ProgramarSeguimientoPromesa(ctx context.Context, act *cobranza.Actividad) (*alerta.Alerta, error)

	// Crear persists an already-built alert, filling id and defaults.
	Crear(ctx context.Context, a *alerta.Alerta) error

	// ProcesarPendientes dispatches every due PENDIENTE alert once,
	// applying the bounded retry policy. Returns (processed, delivered).
	ProcesarPendientes(ctx context.Context, limit int) (int, int, error)

	MarcarLeida(ctx context.Context, id string) error
	MarcarAtendida(ctx context.Context, id string) error
	ListarPorUsuario(ctx context.Context, usuarioID string, soloActivas bool, limit, offset int) ([]respond.AlertaResumen, error)

	// CancelarPreAlertas retires the stale pre-alerts of a rescheduled
	// activity.
	CancelarPreAlertas(ctx context.Context, actividadID string) error
}

type alertaServiceImpl struct {
	alertas    repository.AlertaRepository
	directorio repository.DirectorioRepository
	dispatcher notify.Dispatcher
	eventos    *mq.Eventos
	clock      sla.Clock

	ventanaDedupe time.Duration
	maxIntentos   int
}

func NewAlertaService(
	alertas repository.AlertaRepository,
	directorio repository.DirectorioRepository,
	dispatcher notify.Dispatcher,
	eventos *mq.Eventos,
	clock sla.Clock,
	ventanaDedupeHoras int,
	maxIntentos int,
) AlertaService {
	if ventanaDedupeHoras <= 0 {
		ventanaDedupeHoras = 4
	}
	if maxIntentos <= 0 {
		maxIntentos = alerta.MaxIntentosEnvio
	}
	return &alertaServiceImpl{
		alertas:       alertas,
		directorio:    directorio,
		dispatcher:    dispatcher,
		eventos:       eventos,
		clock:         clock,
		ventanaDedupe: time.Duration(ventanaDedupeHoras) * time.Hour,
		maxIntentos:   maxIntentos,
	}
}

func (s *alertaServiceImpl) Crear(ctx context.Context, a *alerta.Alerta) error {
	if a.ID == "" {
		a.ID = util.GenerateUUID()
	}
	if a.Estado == "" {
		a.Estado = alerta.EstadoPendiente
	}
	if a.NivelUrgencia == "" {
		a.NivelUrgencia = alerta.UrgenciaMedia
	}
	if err := s.alertas.Create(ctx, a); err != nil {
		return err
	}
	s.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoAlertaGenerada,
		Origen: a.Origen,
		ItemID: a.ItemID,
		Datos: map[string]interface{}{
			"alerta_id": a.ID,
			"tipo":      a.TipoAlerta,
			"urgencia":  a.NivelUrgencia,
		},
	})
	return nil
}

func (s *alertaServiceImpl) ProgramarPreAlerta(ctx context.Context, act *cobranza.Actividad) (*alerta.Alerta, error) {
	inicio := act.FechaHoraInicio()
	if inicio.IsZero() {
		return nil, nil
	}
	envio := inicio.Add(-time.Duration(act.MinutosAlertaPrevia) * time.Minute)
	if !envio.After(s.clock.Now()) {
		// Never schedule an alert in the past.
		return nil, nil
	}

	a := &alerta.Alerta{
		Origen:                alerta.OrigenCobranza,
		ItemID:                act.ID,
		UsuarioDestinatarioID: act.UsuarioID,
		TipoAlerta:            alerta.TipoActividadProxima,
		NivelUrgencia:         urgenciaPorPrioridad(act.Prioridad),
		Titulo:                "Actividad próxima: " + act.Titulo,
		Mensaje: fmt.Sprintf("La actividad %q inicia a las %s.",
			act.Titulo, inicio.Format("15:04 del 02/01/2006")),
		FechaProgramada:  envio,
		FechaVencimiento: &inicio,
		EnviarEmail:      true,
		EnviarPush:       true,
	}
	if err := s.Crear(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *alertaServiceImpl) ProgramarAlertaSLA(ctx context.Context, sol *solicitud.Solicitud, tier string) (*alerta.Alerta, error) {
	rango := alerta.TierRango(tier)
	if rango == 0 {
		return nil, xerr.Validation("tier de alerta desconocido: %s", tier)
	}

	now := s.clock.Now()
	previa, err := s.alertas.UltimaPorItem(ctx, alerta.OrigenSolicitud, sol.ID, rango, now.Add(-s.ventanaDedupe))
	if err != nil {
		return nil, err
	}
	if previa != nil {
		// An equal-or-higher tier is already live inside the window.
		return nil, nil
	}

	limite := sol.FechaLimite()
	a := &alerta.Alerta{
		Origen:                alerta.OrigenSolicitud,
		ItemID:                sol.ID,
		UsuarioDestinatarioID: sol.UsuarioID,
		TipoAlerta:            tier,
		NivelUrgencia:         alerta.NivelPorTier(tier),
		Titulo:                fmt.Sprintf("SLA %s: solicitud %s", nombreTier(tier), sol.NumeroSolicitud),
		Mensaje: fmt.Sprintf("La solicitud %s (%s) vence el %s.",
			sol.NumeroSolicitud, solicitud.NombreTipoLegible(sol.TipoSolicitud),
			limite.Format("02/01/2006 15:04")),
		FechaProgramada:  now,
		FechaVencimiento: &limite,
		EnviarEmail:      true,
		EnviarSms:        tier == alerta.TipoSlaVencido,
		EnviarPush:       true,
	}
	if err := s.Crear(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *alertaServiceImpl) ProgramarSeguimientoPromesa(ctx context.Context, act *cobranza.Actividad) (*alerta.Alerta, error) {
	if act.FechaPromesaPago == nil {
		return nil, xerr.Validation("la actividad no registra fecha de promesa")
	}
	existe, err := s.alertas.ExistePorTipo(ctx, alerta.OrigenCobranza, act.ID, alerta.TipoPromesaPago)
	if err != nil {
		return nil, err
	}
	if existe {
		return nil, nil
	}

	f := *act.FechaPromesaPago
	envio := time.Date(f.Year(), f.Month(), f.Day(), HoraSeguimientoPromesa, 0, 0, 0, f.Location())
	monto := 0.0
	if act.MontoPrometido != nil {
		monto = *act.MontoPrometido
	}
	a := &alerta.Alerta{
		Origen:                alerta.OrigenCobranza,
		ItemID:                act.ID,
		UsuarioDestinatarioID: act.UsuarioID,
		TipoAlerta:            alerta.TipoPromesaPago,
		NivelUrgencia:         alerta.UrgenciaAlta,
		Titulo:                "Seguimiento de promesa de pago",
		Mensaje: fmt.Sprintf("Hoy vence la promesa de pago de %.2f acordada en %q.",
			monto, act.Titulo),
		FechaProgramada: envio,
		EnviarEmail:     true,
		EnviarPush:      true,
	}
	if err := s.Crear(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *alertaServiceImpl) ProcesarPendientes(ctx context.Context, limit int) (int, int, error) {
	now := s.clock.Now()
	pendientes, err := s.alertas.ListPendientesDue(ctx, now, limit)
	if err != nil {
		return 0, 0, err
	}

	enviadas := 0
	for _, a := range pendientes {
		if s.despachar(ctx, a) {
			enviadas++
		}
	}
	return len(pendientes), enviadas, nil
}

// despachar attempts one delivery of a due alert and applies the retry
// policy. Returns true when the alert reached ENVIADA.
func (s *alertaServiceImpl) despachar(ctx context.Context, a *alerta.Alerta) bool {
	now := s.clock.Now()

	if !a.TieneCanales() {
		// Nothing can deliver it; retire it instead of burning retries.
		if _, err := s.alertas.CambiarEstado(ctx, a.ID, alerta.EstadoPendiente, map[string]interface{}{
			"estado":         alerta.EstadoVencida,
			"ultimo_intento": now,
			"error_envio":    "sin canales de envío habilitados",
		}); err != nil {
			zlog.Error("no se pudo retirar alerta sin canales", zap.String("alerta_id", a.ID), zap.Error(err))
		}
		return false
	}

	destinatario, err := s.directorio.GetUsuario(ctx, a.UsuarioDestinatarioID)
	if err != nil {
		zlog.Warn("alerta sin destinatario resoluble",
			zap.String("alerta_id", a.ID),
			zap.String("usuario_id", a.UsuarioDestinatarioID),
			zap.Error(err))
		destinatario = nil
	}

	resultado := s.dispatcher.Enviar(ctx, a, destinatario)
	if resultado.AlgunoExitoso() {
		ok, err := s.alertas.CambiarEstado(ctx, a.ID, alerta.EstadoPendiente, map[string]interface{}{
			"estado":         alerta.EstadoEnviada,
			"fecha_enviada":  now,
			"ultimo_intento": now,
		})
		if err != nil {
			zlog.Error("no se pudo marcar alerta enviada", zap.String("alerta_id", a.ID), zap.Error(err))
			return false
		}
		if !ok {
			// Another run already moved it.
			return false
		}
		s.eventos.Emitir(ctx, mq.Evento{
			Nombre: mq.EventoAlertaEnviada,
			Origen: a.Origen,
			ItemID: a.ItemID,
			Datos:  map[string]interface{}{"alerta_id": a.ID, "tipo": a.TipoAlerta},
		})
		return true
	}

	intentos := a.IntentosEnvio + 1
	campos := map[string]interface{}{
		"intentos_envio": intentos,
		"ultimo_intento": now,
		"error_envio":    resultado.ResumenErrores(),
	}
	if intentos >= s.maxIntentos {
		// Retry budget exhausted; retire instead of retrying forever.
		campos["estado"] = alerta.EstadoVencida
	}
	if _, err := s.alertas.CambiarEstado(ctx, a.ID, alerta.EstadoPendiente, campos); err != nil {
		zlog.Error("no se pudo registrar fallo de envío", zap.String("alerta_id", a.ID), zap.Error(err))
		return false
	}
	if intentos >= s.maxIntentos {
		zlog.Error("alerta agotó los intentos de envío",
			zap.String("alerta_id", a.ID),
			zap.String("tipo", a.TipoAlerta),
			zap.Int("intentos", intentos),
			zap.String("ultimo_error", resultado.ResumenErrores()))
		s.eventos.Emitir(ctx, mq.Evento{
			Nombre: mq.EventoAlertaFallida,
			Origen: a.Origen,
			ItemID: a.ItemID,
			Datos: map[string]interface{}{
				"alerta_id": a.ID,
				"intentos":  intentos,
				"error":     resultado.ResumenErrores(),
			},
		})
	}
	return false
}

func (s *alertaServiceImpl) MarcarLeida(ctx context.Context, id string) error {
	a, err := s.alertas.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Estado != alerta.EstadoEnviada {
		return xerr.InvalidTransition(a.Estado, alerta.EstadoLeida)
	}
	ok, err := s.alertas.CambiarEstado(ctx, id, alerta.EstadoEnviada, map[string]interface{}{
		"estado":      alerta.EstadoLeida,
		"fecha_leida": s.clock.Now(),
	})
	if err != nil {
		return err
	}
	if !ok {
		return xerr.InvalidTransition(a.Estado, alerta.EstadoLeida)
	}
	return nil
}

func (s *alertaServiceImpl) MarcarAtendida(ctx context.Context, id string) error {
	a, err := s.alertas.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if a.Estado != alerta.EstadoEnviada && a.Estado != alerta.EstadoLeida {
		return xerr.InvalidTransition(a.Estado, alerta.EstadoAtendida)
	}
	ok, err := s.alertas.CambiarEstado(ctx, id, a.Estado, map[string]interface{}{
		"estado":         alerta.EstadoAtendida,
		"fecha_atendida": s.clock.Now(),
	})
	if err != nil {
		return err
	}
	if !ok {
		return xerr.InvalidTransition(a.Estado, alerta.EstadoAtendida)
	}
	return nil
}

func (s *alertaServiceImpl) ListarPorUsuario(ctx context.Context, usuarioID string, soloActivas bool, limit, offset int) ([]respond.AlertaResumen, error) {
	items, err := s.alertas.List(ctx, repository.FiltroAlertas{
		UsuarioID:   usuarioID,
		SoloActivas: soloActivas,
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		return nil, err
	}
	res := make([]respond.AlertaResumen, 0, len(items))
	for _, a := range items {
		res = append(res, respond.AlertaResumen{
			ID:              a.ID,
			Origen:          a.Origen,
			ItemID:          a.ItemID,
			TipoAlerta:      a.TipoAlerta,
			Estado:          a.Estado,
			NivelUrgencia:   a.NivelUrgencia,
			Titulo:          a.Titulo,
			Mensaje:         a.Mensaje,
			FechaProgramada: a.FechaProgramada,
			FechaEnviada:    a.FechaEnviada,
			IntentosEnvio:   a.IntentosEnvio,
			ErrorEnvio:      a.ErrorEnvio,
		})
	}
	return res, nil
}

func (s *alertaServiceImpl) CancelarPreAlertas(ctx context.Context, actividadID string) error {
	_, err := s.alertas.CancelarPendientesPorTipo(ctx, alerta.OrigenCobranza, actividadID, alerta.TipoActividadProxima)
	return err
}

func urgenciaPorPrioridad(prioridad string) string {
	switch prioridad {
	case cobranza.PrioridadCritica, cobranza.PrioridadUrgente:
		return alerta.UrgenciaCritica
	case cobranza.PrioridadAlta:
		return alerta.UrgenciaAlta
	case cobranza.PrioridadBaja:
		return alerta.UrgenciaBaja
	default:
		return alerta.UrgenciaMedia
	}
}

func nombreTier(tier string) string {
	switch tier {
	case alerta.TipoSla75:
		return "75%"
	case alerta.TipoSla90:
		return "90%"
	case alerta.TipoSlaVencido:
		return "vencido"
	}
	return tier
}
