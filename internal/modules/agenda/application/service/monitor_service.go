package service

import (
	"context"
	"fmt"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/cobranza"
	directoriodom "CrediAgenda/internal/modules/agenda/domain/directorio"
	"CrediAgenda/internal/modules/agenda/domain/historial"
	"CrediAgenda/internal/modules/agenda/domain/prestamo"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/internal/modules/agenda/domain/sla"
	"CrediAgenda/internal/modules/agenda/domain/solicitud"
	"CrediAgenda/internal/modules/agenda/infrastructure/mq"
	"CrediAgenda/pkg/util"
	"CrediAgenda/pkg/zlog"

	"go.uber.org/zap"
)

// LoteDespacho caps how many due alerts one dispatch sweep takes.
const LoteDespacho = 200

// DiasSinActividadNueva is the cooldown before the delinquency sweep opens
// another activity for the same loan.
const DiasSinActividadNueva = 7

// ResumenJob is the outcome of one monitor sweep.
type ResumenJob struct {
	Job        string
	Revisados  int
	Procesados int
	Errores    int
}

// MonitorService owns the periodic sweeps. Every job is idempotent: a rerun
// over the same state produces no duplicate alerts, activities or moves.
type MonitorService interface {
	ProcesarAlertasPendientes(ctx context.Context) (ResumenJob, error)
	MonitorearSLASolicitudes(ctx context.Context) (ResumenJob, error)
	GenerarAlertasPrevias(ctx context.Context) (ResumenJob, error)
	VerificarSolicitudesVencidas(ctx context.Context) (ResumenJob, error)
	VerificarActividadesVencidas(ctx context.Context) (ResumenJob, error)
	VerificarPromesasVencidas(ctx context.Context) (ResumenJob, error)
	GenerarAgendaDiaria(ctx context.Context) (ResumenJob, error)
	CrearActividadesAutomaticas(ctx context.Context) (ResumenJob, error)
	NotificarSeguimientos(ctx context.Context) (ResumenJob, error)
	GenerarReporteEfectividad(ctx context.Context) (ResumenJob, error)
	GenerarReporteSolicitudes(ctx context.Context) (ResumenJob, error)
	LimpiarAlertasAntiguas(ctx context.Context) (ResumenJob, error)
}

type monitorServiceImpl struct {
	solicitudes repository.SolicitudRepository
	actividades repository.CobranzaRepository
	prestamos   repository.PrestamoRepository
	directorio  repository.DirectorioRepository
	historico   repository.HistorialRepository
	alertasRepo repository.AlertaRepository
	alertas     AlertaService
	eventos     *mq.Eventos
	clock       sla.Clock

	rolReporte             string
	retencionTerminalDias  int
	retencionPendienteDias int
}

func NewMonitorService(
	solicitudes repository.SolicitudRepository,
	actividades repository.CobranzaRepository,
	prestamos repository.PrestamoRepository,
	directorio repository.DirectorioRepository,
	historico repository.HistorialRepository,
	alertasRepo repository.AlertaRepository,
	alertas AlertaService,
	eventos *mq.Eventos,
	clock sla.Clock,
	rolReporte string,
	retencionTerminalDias, retencionPendienteDias int,
) MonitorService {
	if rolReporte == "" {
		rolReporte = directoriodom.RolSupervisor
	}
	if retencionTerminalDias <= 0 {
		retencionTerminalDias = 30
	}
	if retencionPendienteDias <= 0 {
		retencionPendienteDias = 7
	}
	return &monitorServiceImpl{
		solicitudes:            solicitudes,
		actividades:            actividades,
		prestamos:              prestamos,
		directorio:             directorio,
		historico:              historico,
		alertasRepo:            alertasRepo,
		alertas:                alertas,
		eventos:                eventos,
		clock:                  clock,
		rolReporte:             rolReporte,
		retencionTerminalDias:  retencionTerminalDias,
		retencionPendienteDias: retencionPendienteDias,
	}
}

func (m *monitorServiceImpl) ProcesarAlertasPendientes(ctx context.Context) (ResumenJob, error) {
	procesadas, enviadas, err := m.alertas.ProcesarPendientes(ctx, LoteDespacho)
	r := ResumenJob{Job: "despacho_alertas", Revisados: procesadas, Procesados: enviadas}
	if err != nil {
		return r, err
	}
	m.cerrar(ctx, r)
	return r, nil
}

// MonitorearSLASolicitudes walks the open requests, computes the consumed
// share of each SLA window and raises the tier alert when a threshold was
// crossed. Window dedupe lives in the alert service, so the sweep itself can
// run as often as needed.
func (m *monitorServiceImpl) MonitorearSLASolicitudes(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	abiertas, err := m.solicitudes.ListAbiertasSLA(ctx)
	if err != nil {
		return ResumenJob{Job: "sla_solicitudes"}, err
	}

	r := ResumenJob{Job: "sla_solicitudes", Revisados: len(abiertas)}
	for _, sol := range abiertas {
		v := sla.Ventana{Inicio: sol.FechaSolicitud, Limite: sol.FechaLimite(), Horas: sol.SlaHoras}
		tier := sla.Tier(sla.PorcentajeConsumido(v, now))
		if tier == "" {
			continue
		}
		a, err := m.alertas.ProgramarAlertaSLA(ctx, sol, tier)
		if err != nil {
			r.Errores++
			zlog.Warn("fallo alerta sla", zap.String("solicitud_id", sol.ID), zap.Error(err))
			continue
		}
		if a == nil {
			continue
		}
		r.Procesados++
		if err := m.solicitudes.UpdateCampos(ctx, sol.ID, map[string]interface{}{
			"alertas_enviadas": sol.AlertasEnviadas + 1,
			"ultima_alerta":    now,
		}); err != nil {
			zlog.Warn("no se pudo actualizar contador de alertas", zap.String("solicitud_id", sol.ID), zap.Error(err))
		}
	}
	m.cerrar(ctx, r)
	return r, nil
}

// GenerarAlertasPrevias backfills pre-activity reminders that creation-time
// scheduling missed, for example activities created without a start hour that
// later got one, or a failed flag update.
func (m *monitorServiceImpl) GenerarAlertasPrevias(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	due, err := m.actividades.ListConAlertaPreviaDue(ctx, now)
	if err != nil {
		return ResumenJob{Job: "alertas_previas"}, err
	}

	r := ResumenJob{Job: "alertas_previas", Revisados: len(due)}
	for _, act := range due {
		if !act.RequiereAlertaPrevia(now) {
			continue
		}
		a := &alerta.Alerta{
			Origen:                alerta.OrigenCobranza,
			ItemID:                act.ID,
			UsuarioDestinatarioID: act.UsuarioID,
			TipoAlerta:            alerta.TipoActividadProxima,
			NivelUrgencia:         urgenciaPorPrioridad(act.Prioridad),
			Titulo:                "Actividad próxima: " + act.Titulo,
			Mensaje: fmt.Sprintf("La actividad %q inicia a las %s.",
				act.Titulo, act.FechaHoraInicio().Format("15:04")),
			FechaProgramada: now,
			EnviarEmail:     true,
			EnviarPush:      true,
		}
		if err := m.alertas.Crear(ctx, a); err != nil {
			r.Errores++
			zlog.Warn("fallo alerta previa", zap.String("actividad_id", act.ID), zap.Error(err))
			continue
		}
		if err := m.actividades.UpdateCampos(ctx, act.ID, map[string]interface{}{"alerta_generada": true}); err != nil {
			zlog.Warn("no se pudo marcar alerta previa generada", zap.String("actividad_id", act.ID), zap.Error(err))
		}
		r.Procesados++
	}
	m.cerrar(ctx, r)
	return r, nil
}

// VerificarSolicitudesVencidas expires requests whose deadline passed while
// still in an open state. The guarded move makes the sweep safe to rerun and
// safe against a concurrent user transition.
func (m *monitorServiceImpl) VerificarSolicitudesVencidas(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	vencibles, err := m.solicitudes.ListVencibles(ctx, now)
	if err != nil {
		return ResumenJob{Job: "solicitudes_vencidas"}, err
	}

	r := ResumenJob{Job: "solicitudes_vencidas", Revisados: len(vencibles)}
	for _, sol := range vencibles {
		ok, err := m.solicitudes.CambiarEstado(ctx, sol.ID, sol.Estado, map[string]interface{}{
			"estado":           solicitud.EstadoVencida,
			"fecha_completada": now,
		})
		if err != nil {
			r.Errores++
			zlog.Warn("fallo al vencer solicitud", zap.String("solicitud_id", sol.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		r.Procesados++

		m.registrarHistorial(ctx, alerta.OrigenSolicitud, sol.ID, sol.Estado, solicitud.EstadoVencida,
			"Vencida por el monitor: plazo de respuesta agotado")
		m.eventos.Emitir(ctx, mq.Evento{
			Nombre: mq.EventoSolicitudEstado,
			Origen: alerta.OrigenSolicitud,
			ItemID: sol.ID,
			Datos: map[string]interface{}{
				"estado_anterior": sol.Estado,
				"estado_nuevo":    solicitud.EstadoVencida,
			},
		})
		if sol.UsuarioID != "" {
			a := &alerta.Alerta{
				Origen:                alerta.OrigenSolicitud,
				ItemID:                sol.ID,
				UsuarioDestinatarioID: sol.UsuarioID,
				TipoAlerta:            alerta.TipoSolicitudVencida,
				NivelUrgencia:         alerta.UrgenciaCritica,
				Titulo:                "Solicitud vencida: " + sol.NumeroSolicitud,
				Mensaje: fmt.Sprintf("La solicitud %s venció sin respuesta el %s.",
					sol.NumeroSolicitud, sol.FechaLimite().Format("02/01/2006 15:04")),
				FechaProgramada: now,
				EnviarEmail:     true,
				EnviarSms:       true,
				EnviarPush:      true,
			}
			if err := m.alertas.Crear(ctx, a); err != nil {
				zlog.Warn("fallo alerta de vencimiento", zap.String("solicitud_id", sol.ID), zap.Error(err))
			}
		}
	}
	m.cerrar(ctx, r)
	return r, nil
}

func (m *monitorServiceImpl) VerificarActividadesVencidas(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	vencibles, err := m.actividades.ListVencibles(ctx, now)
	if err != nil {
		return ResumenJob{Job: "actividades_vencidas"}, err
	}

	r := ResumenJob{Job: "actividades_vencidas", Revisados: len(vencibles)}
	for _, act := range vencibles {
		ok, err := m.actividades.CambiarEstado(ctx, act.ID, act.Estado, map[string]interface{}{
			"estado": cobranza.EstadoVencida,
		})
		if err != nil {
			r.Errores++
			zlog.Warn("fallo al vencer actividad", zap.String("actividad_id", act.ID), zap.Error(err))
			continue
		}
		if !ok {
			continue
		}
		r.Procesados++

		m.registrarHistorial(ctx, alerta.OrigenCobranza, act.ID, act.Estado, cobranza.EstadoVencida,
			"Vencida por el monitor: no ejecutada en su fecha")
		m.eventos.Emitir(ctx, mq.Evento{
			Nombre: mq.EventoActividadEstado,
			Origen: alerta.OrigenCobranza,
			ItemID: act.ID,
			Datos: map[string]interface{}{
				"estado_anterior": act.Estado,
				"estado_nuevo":    cobranza.EstadoVencida,
			},
		})
		a := &alerta.Alerta{
			Origen:                alerta.OrigenCobranza,
			ItemID:                act.ID,
			UsuarioDestinatarioID: act.UsuarioID,
			TipoAlerta:            alerta.TipoActividadVencida,
			NivelUrgencia:         alerta.UrgenciaAlta,
			Titulo:                "Actividad vencida: " + act.Titulo,
			Mensaje: fmt.Sprintf("La actividad %q programada para el %s no fue ejecutada.",
				act.Titulo, act.FechaProgramada.Format("02/01/2006")),
			FechaProgramada: now,
			EnviarEmail:     true,
			EnviarPush:      true,
		}
		if err := m.alertas.Crear(ctx, a); err != nil {
			zlog.Warn("fallo alerta de actividad vencida", zap.String("actividad_id", act.ID), zap.Error(err))
		}
	}
	m.cerrar(ctx, r)
	return r, nil
}

// VerificarPromesasVencidas flags completed promise-of-payment activities
// whose promised date passed without payment, alerts the collector and marks
// the loan in arrears. The promesa_incumplida flag is the idempotence guard.
func (m *monitorServiceImpl) VerificarPromesasVencidas(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	incumplidas, err := m.actividades.ListPromesasIncumplidas(ctx, now)
	if err != nil {
		return ResumenJob{Job: "promesas_vencidas"}, err
	}

	r := ResumenJob{Job: "promesas_vencidas", Revisados: len(incumplidas)}
	for _, act := range incumplidas {
		err := m.actividades.UpdateCampos(ctx, act.ID, map[string]interface{}{
			"promesa_incumplida":   true,
			"requiere_seguimiento": true,
		})
		if err != nil {
			r.Errores++
			zlog.Warn("fallo al marcar promesa incumplida", zap.String("actividad_id", act.ID), zap.Error(err))
			continue
		}
		r.Procesados++

		m.registrarHistorial(ctx, alerta.OrigenCobranza, act.ID, "", "",
			"Promesa de pago incumplida detectada por el monitor")
		monto := 0.0
		if act.MontoPrometido != nil {
			monto = *act.MontoPrometido
		}
		a := &alerta.Alerta{
			Origen:                alerta.OrigenCobranza,
			ItemID:                act.ID,
			UsuarioDestinatarioID: act.UsuarioID,
			TipoAlerta:            alerta.TipoPromesaIncumplida,
			NivelUrgencia:         alerta.UrgenciaCritica,
			Titulo:                "Promesa de pago incumplida",
			Mensaje: fmt.Sprintf("El cliente no cumplió la promesa de %.2f acordada en %q.",
				monto, act.Titulo),
			FechaProgramada: now,
			EnviarEmail:     true,
			EnviarSms:       true,
			EnviarPush:      true,
		}
		if err := m.alertas.Crear(ctx, a); err != nil {
			zlog.Warn("fallo alerta de promesa incumplida", zap.String("actividad_id", act.ID), zap.Error(err))
		}
		if act.PrestamoID != "" {
			if err := m.prestamos.MarcarEnMora(ctx, act.PrestamoID); err != nil {
				zlog.Warn("no se pudo marcar préstamo en mora", zap.String("prestamo_id", act.PrestamoID), zap.Error(err))
			}
		}
	}
	m.cerrar(ctx, r)
	return r, nil
}

// GenerarAgendaDiaria sends each collector one digest of today's scheduled
// work. The per-type alert dedupe keeps a rerun from producing a second
// digest the same day.
func (m *monitorServiceImpl) GenerarAgendaDiaria(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	hoy, err := m.actividades.ListProgramadasEnFecha(ctx, now)
	if err != nil {
		return ResumenJob{Job: "agenda_diaria"}, err
	}

	porUsuario := make(map[string][]*cobranza.Actividad)
	for _, act := range hoy {
		porUsuario[act.UsuarioID] = append(porUsuario[act.UsuarioID], act)
	}

	r := ResumenJob{Job: "agenda_diaria", Revisados: len(hoy)}
	for usuarioID, acts := range porUsuario {
		// A rerun must not produce a second digest: any of today's
		// activities already carrying one means the user got theirs.
		yaEnviada := false
		for _, act := range acts {
			existe, err := m.alertasRepo.ExistePorTipo(ctx, alerta.OrigenCobranza, act.ID, alerta.TipoAgendaDiaria)
			if err != nil {
				zlog.Warn("fallo consulta de agenda diaria", zap.String("actividad_id", act.ID), zap.Error(err))
				continue
			}
			if existe {
				yaEnviada = true
				break
			}
		}
		if yaEnviada {
			continue
		}

		altas := 0
		for _, act := range acts {
			if act.Prioridad == cobranza.PrioridadAlta ||
				act.Prioridad == cobranza.PrioridadCritica ||
				act.Prioridad == cobranza.PrioridadUrgente {
				altas++
			}
		}
		a := &alerta.Alerta{
			// The digest hangs off the first activity so the per-type
			// dedupe key stays stable across reruns within the day.
			Origen:                alerta.OrigenCobranza,
			ItemID:                acts[0].ID,
			UsuarioDestinatarioID: usuarioID,
			TipoAlerta:            alerta.TipoAgendaDiaria,
			NivelUrgencia:         alerta.UrgenciaMedia,
			Titulo:                fmt.Sprintf("Agenda del día: %d actividades", len(acts)),
			Mensaje: fmt.Sprintf("Tiene %d actividades programadas hoy, %d de prioridad alta.",
				len(acts), altas),
			FechaProgramada: now,
			EnviarEmail:     true,
			EnviarPush:      true,
		}
		if err := m.alertas.Crear(ctx, a); err != nil {
			r.Errores++
			zlog.Warn("fallo agenda diaria", zap.String("usuario_id", usuarioID), zap.Error(err))
			continue
		}
		r.Procesados++
	}
	m.cerrar(ctx, r)
	return r, nil
}

// CrearActividadesAutomaticas opens collection work for loans in arrears that
// have none recent. The action scales with the arrears band: early arrears
// get a call, mid arrears a home visit, and beyond that a legal escalation.
func (m *monitorServiceImpl) CrearActividadesAutomaticas(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	enMora, err := m.prestamos.ListEnMora(ctx)
	if err != nil {
		return ResumenJob{Job: "actividades_automaticas"}, err
	}

	r := ResumenJob{Job: "actividades_automaticas", Revisados: len(enMora)}
	for _, p := range enMora {
		dias := p.DiasMora(now)
		if dias <= 0 {
			continue
		}
		reciente, err := m.actividades.ExisteActividadReciente(ctx, p.ID, now.AddDate(0, 0, -DiasSinActividadNueva))
		if err != nil {
			r.Errores++
			zlog.Warn("fallo consulta de actividad reciente", zap.String("prestamo_id", p.ID), zap.Error(err))
			continue
		}
		if reciente {
			continue
		}

		tipo, prioridad := accionPorMora(dias)
		usuarioID, err := m.asignarGestor(ctx, p)
		if err != nil {
			r.Errores++
			zlog.Warn("no se pudo asignar gestor", zap.String("prestamo_id", p.ID), zap.Error(err))
			continue
		}

		vencimiento := cobranza.FinDelDia(now)
		act := &cobranza.Actividad{
			ID:               util.GenerateUUID(),
			ClienteID:        p.ClienteID,
			PrestamoID:       p.ID,
			UsuarioID:        usuarioID,
			SucursalID:       p.SucursalID,
			TipoActividad:    tipo,
			Estado:           cobranza.EstadoProgramada,
			Prioridad:        prioridad,
			FechaProgramada:  now,
			FechaVencimiento: &vencimiento,
			Titulo:           fmt.Sprintf("Gestión de mora: préstamo %s", p.NumeroPrestamo),
			Descripcion: fmt.Sprintf("Préstamo con %d días de mora y saldo pendiente de %.2f.",
				dias, p.SaldoPendiente()),
			Objetivo:            "Regularizar el pago atrasado",
			GenerarAlertaPrevia: false,
		}
		if err := m.actividades.Create(ctx, act); err != nil {
			r.Errores++
			zlog.Warn("fallo creación de actividad automática", zap.String("prestamo_id", p.ID), zap.Error(err))
			continue
		}
		r.Procesados++

		m.registrarHistorial(ctx, alerta.OrigenCobranza, act.ID, "", act.Estado,
			fmt.Sprintf("Actividad automática por %d días de mora", dias))
		m.eventos.Emitir(ctx, mq.Evento{
			Nombre: mq.EventoActividadCreada,
			Origen: alerta.OrigenCobranza,
			ItemID: act.ID,
			Datos: map[string]interface{}{
				"tipo":        act.TipoActividad,
				"prestamo_id": p.ID,
				"dias_mora":   dias,
				"automatica":  true,
			},
		})
		if err := m.prestamos.MarcarEnMora(ctx, p.ID); err != nil {
			zlog.Warn("no se pudo marcar préstamo en mora", zap.String("prestamo_id", p.ID), zap.Error(err))
		}
	}
	m.cerrar(ctx, r)
	return r, nil
}

// accionPorMora maps the arrears band to the scheduled action.
func accionPorMora(dias int) (tipo, prioridad string) {
	switch {
	case dias <= prestamo.MoraTemprana:
		return cobranza.TipoLlamadaTelefonica, cobranza.PrioridadNormal
	case dias <= prestamo.MoraMedia:
		return cobranza.TipoVisitaDomicilio, cobranza.PrioridadAlta
	default:
		return cobranza.TipoEscalamientoLegal, cobranza.PrioridadCritica
	}
}

// asignarGestor picks who handles the auto-generated activity: the loan's own
// officer, or any active credit officer of the branch.
func (m *monitorServiceImpl) asignarGestor(ctx context.Context, p *prestamo.Prestamo) (string, error) {
	if p.UsuarioID != "" {
		if _, err := m.directorio.GetUsuario(ctx, p.UsuarioID); err == nil {
			return p.UsuarioID, nil
		}
	}
	oficiales, err := m.directorio.ListUsuariosPorRol(ctx, directoriodom.RolOficialCredito, p.SucursalID)
	if err != nil {
		return "", err
	}
	if len(oficiales) == 0 {
		return "", fmt.Errorf("sin oficiales de crédito activos en la sucursal %s", p.SucursalID)
	}
	return oficiales[0].ID, nil
}

func (m *monitorServiceImpl) NotificarSeguimientos(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	due, err := m.solicitudes.ListSeguimientosDue(ctx, now)
	if err != nil {
		return ResumenJob{Job: "seguimientos"}, err
	}

	r := ResumenJob{Job: "seguimientos", Revisados: len(due)}
	for _, sol := range due {
		if sol.UsuarioID == "" {
			continue
		}
		a := &alerta.Alerta{
			Origen:                alerta.OrigenSolicitud,
			ItemID:                sol.ID,
			UsuarioDestinatarioID: sol.UsuarioID,
			TipoAlerta:            alerta.TipoSeguimientoRequerido,
			NivelUrgencia:         alerta.UrgenciaMedia,
			Titulo:                "Seguimiento pendiente: " + sol.NumeroSolicitud,
			Mensaje:               "La solicitud tiene un seguimiento programado para hoy: " + sol.Asunto,
			FechaProgramada:       now,
			EnviarEmail:           true,
			EnviarPush:            true,
		}
		if err := m.alertas.Crear(ctx, a); err != nil {
			r.Errores++
			zlog.Warn("fallo alerta de seguimiento", zap.String("solicitud_id", sol.ID), zap.Error(err))
			continue
		}
		// Push the next follow-up forward so the sweep does not renotify
		// tomorrow for the same date.
		if err := m.solicitudes.UpdateCampos(ctx, sol.ID, map[string]interface{}{
			"fecha_proximo_seguimiento": nil,
		}); err != nil {
			zlog.Warn("no se pudo limpiar fecha de seguimiento", zap.String("solicitud_id", sol.ID), zap.Error(err))
		}
		r.Procesados++
	}
	m.cerrar(ctx, r)
	return r, nil
}

// GenerarReporteEfectividad summarizes last week's completed collection work
// for every supervisor.
func (m *monitorServiceImpl) GenerarReporteEfectividad(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	desde := now.AddDate(0, 0, -7)
	completadas, err := m.actividades.ListCompletadasEntre(ctx, desde, now)
	if err != nil {
		return ResumenJob{Job: "reporte_efectividad"}, err
	}

	r := ResumenJob{Job: "reporte_efectividad", Revisados: len(completadas)}
	var efectivas, promesas int
	var gestionado float64
	for _, act := range completadas {
		if cobranza.Efectividad(act.Resultado) == cobranza.EfectividadAlta {
			efectivas++
		}
		if act.Resultado == cobranza.ResultadoPromesaPago {
			promesas++
		}
		if act.MontoGestionado != nil {
			gestionado += *act.MontoGestionado
		}
	}
	var pct float64
	if len(completadas) > 0 {
		pct = float64(efectivas) / float64(len(completadas)) * 100
	}

	supervisores, err := m.directorio.ListUsuariosPorRol(ctx, m.rolReporte, "")
	if err != nil {
		return r, err
	}
	itemID := "reporte:" + now.Format("2006-01-02")
	for _, sup := range supervisores {
		// A rerun, or a retry after a partial failure, must not mail the
		// same recipient the same report twice.
		previas, err := m.alertasRepo.List(ctx, repository.FiltroAlertas{
			UsuarioID: sup.ID,
			Origen:    alerta.OrigenCobranza,
			ItemID:    itemID,
			Limit:     1,
		})
		if err != nil {
			r.Errores++
			zlog.Warn("fallo consulta de reporte previo", zap.String("usuario_id", sup.ID), zap.Error(err))
			continue
		}
		if len(previas) > 0 {
			continue
		}
		a := &alerta.Alerta{
			Origen:                alerta.OrigenCobranza,
			ItemID:                itemID,
			UsuarioDestinatarioID: sup.ID,
			TipoAlerta:            alerta.TipoReporteEfectividad,
			NivelUrgencia:         alerta.UrgenciaBaja,
			Titulo:                "Reporte semanal de efectividad de cobranza",
			Mensaje: fmt.Sprintf(
				"Semana al %s: %d actividades completadas, %.1f%% efectivas, %d promesas de pago, %.2f gestionado.",
				now.Format("02/01/2006"), len(completadas), pct, promesas, gestionado),
			FechaProgramada: now,
			EnviarEmail:     true,
		}
		if err := m.alertas.Crear(ctx, a); err != nil {
			r.Errores++
			zlog.Warn("fallo reporte de efectividad", zap.String("usuario_id", sup.ID), zap.Error(err))
			continue
		}
		r.Procesados++
	}
	m.cerrar(ctx, r)
	return r, nil
}

// GenerarReporteSolicitudes publishes yesterday's request metrics on the bus:
// volume, closures, expiries, average processing time and SLA compliance.
// Expired requests also stamp fecha_completada, so the closure window covers
// them too.
func (m *monitorServiceImpl) GenerarReporteSolicitudes(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	fin := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	inicio := fin.AddDate(0, 0, -1)

	creadas, err := m.solicitudes.CountCreadasEntre(ctx, inicio, fin)
	if err != nil {
		return ResumenJob{Job: "reporte_solicitudes"}, err
	}
	cerradas, err := m.solicitudes.ListCompletadasEntre(ctx, inicio, fin)
	if err != nil {
		return ResumenJob{Job: "reporte_solicitudes"}, err
	}
	alertasEnviadas, err := m.alertasRepo.CountEnviadasEntre(ctx, inicio, fin)
	if err != nil {
		return ResumenJob{Job: "reporte_solicitudes"}, err
	}

	var vencidas, conTiempo int
	var horas float64
	for _, sol := range cerradas {
		if sol.Estado == solicitud.EstadoVencida {
			vencidas++
		}
		if sol.TiempoProcesamientoHoras != nil {
			horas += float64(*sol.TiempoProcesamientoHoras)
			conTiempo++
		}
	}
	var promedio float64
	if conTiempo > 0 {
		promedio = horas / float64(conTiempo)
	}
	completadas := len(cerradas)
	divisor := completadas
	if divisor == 0 {
		divisor = 1
	}
	cumplimiento := float64(completadas-vencidas) / float64(divisor) * 100

	r := ResumenJob{Job: "reporte_solicitudes", Revisados: completadas, Procesados: 1}
	m.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoReporteSolicitudes,
		Origen: alerta.OrigenSolicitud,
		ItemID: "reporte:" + inicio.Format("2006-01-02"),
		Datos: map[string]interface{}{
			"fecha":                       inicio.Format("2006-01-02"),
			"solicitudes_creadas":         creadas,
			"solicitudes_completadas":     completadas,
			"solicitudes_vencidas":        vencidas,
			"tiempo_promedio_horas":       promedio,
			"alertas_enviadas":            alertasEnviadas,
			"porcentaje_cumplimiento_sla": cumplimiento,
		},
	})
	m.cerrar(ctx, r)
	return r, nil
}

// LimpiarAlertasAntiguas enforces retention: terminal alerts past the long
// window and never-sent pending alerts past the short one.
func (m *monitorServiceImpl) LimpiarAlertasAntiguas(ctx context.Context) (ResumenJob, error) {
	now := m.clock.Now()
	r := ResumenJob{Job: "limpieza_alertas"}

	terminales, err := m.alertasRepo.BorrarTerminalesAntes(ctx, now.AddDate(0, 0, -m.retencionTerminalDias))
	if err != nil {
		return r, err
	}
	pendientes, err := m.alertasRepo.BorrarPendientesAntes(ctx, now.AddDate(0, 0, -m.retencionPendienteDias))
	if err != nil {
		r.Procesados = int(terminales)
		return r, err
	}
	r.Procesados = int(terminales + pendientes)
	m.cerrar(ctx, r)
	return r, nil
}

// cerrar logs the sweep summary and emits the monitor heartbeat event.
func (m *monitorServiceImpl) cerrar(ctx context.Context, r ResumenJob) {
	zlog.Info("monitor job terminado",
		zap.String("job", r.Job),
		zap.Int("revisados", r.Revisados),
		zap.Int("procesados", r.Procesados),
		zap.Int("errores", r.Errores))
	m.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoMonitorResumen,
		Datos: map[string]interface{}{
			"job":        r.Job,
			"revisados":  r.Revisados,
			"procesados": r.Procesados,
			"errores":    r.Errores,
		},
	})
}

func (m *monitorServiceImpl) registrarHistorial(ctx context.Context, origen, itemID, anterior, nuevo, detalle string) {
	e := &historial.Evento{
		ID:             util.GenerateUUID(),
		Origen:         origen,
		ItemID:         itemID,
		TipoEvento:     historial.EventoCambioEstado,
		EstadoAnterior: anterior,
		EstadoNuevo:    nuevo,
		Detalle:        detalle,
		UsuarioID:      "",
		FechaEvento:    m.clock.Now(),
	}
	if anterior == "" && nuevo == "" {
		e.TipoEvento = historial.EventoAlerta
	}
	if err := m.historico.Append(ctx, e); err != nil {
		zlog.Warn("no se pudo registrar historial", zap.String("item_id", itemID), zap.Error(err))
	}
}
