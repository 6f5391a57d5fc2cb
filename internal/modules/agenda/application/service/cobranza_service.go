package service

import (
	"context"
	"time"

	"CrediAgenda/internal/modules/agenda/application/dto/request"
	"CrediAgenda/internal/modules/agenda/application/dto/respond"
	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/cobranza"
	"CrediAgenda/internal/modules/agenda/domain/historial"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/internal/modules/agenda/domain/sla"
	"CrediAgenda/internal/modules/agenda/infrastructure/mq"
	"CrediAgenda/pkg/util"
	"CrediAgenda/pkg/xerr"
	"CrediAgenda/pkg/zlog"

	"go.uber.org/zap"
)

type CobranzaService interface {
	Crear(ctx context.Context, req request.CrearActividadRequest, actorID string) (*cobranza.Actividad, error)
	Get(ctx context.Context, id string) (*cobranza.Actividad, error)
	CambiarEstado(ctx context.Context, id string, req request.CambiarEstadoActividadRequest, actorID string) (*cobranza.Actividad, error)
	Completar(ctx context.Context, id string, req request.CompletarActividadRequest, actorID string) (*cobranza.Actividad, error)
	Reprogramar(ctx context.Context, id string, req request.ReprogramarActividadRequest, actorID string) (*cobranza.Actividad, error)
	Listar(ctx context.Context, filtro repository.FiltroActividades) ([]respond.ActividadResumen, error)
	AgendaHoy(ctx context.Context, usuarioID string) ([]respond.ActividadResumen, error)
	PromesasVencidas(ctx context.Context, usuarioID string) ([]respond.ActividadResumen, error)
	Dashboard(ctx context.Context, filtro repository.FiltroActividades) (*respond.DashboardCobranza, error)
	Historial(ctx context.Context, id string) ([]*historial.Evento, error)
}

type cobranzaServiceImpl struct {
	actividades repository.CobranzaRepository
	directorio  repository.DirectorioRepository
	historico   repository.HistorialRepository
	alertas     AlertaService
	eventos     *mq.Eventos
	clock       sla.Clock

	minutosAlertaPrevia int
}

func NewCobranzaService(
	actividades repository.CobranzaRepository,
	directorio repository.DirectorioRepository,
	historico repository.HistorialRepository,
	alertas AlertaService,
	eventos *mq.Eventos,
	clock sla.Clock,
	minutosAlertaPrevia int,
) CobranzaService {
	if minutosAlertaPrevia <= 0 {
		minutosAlertaPrevia = 60
	}
	return &cobranzaServiceImpl{
		actividades:         actividades,
		directorio:          directorio,
		historico:           historico,
		alertas:             alertas,
		eventos:             eventos,
		clock:               clock,
		minutosAlertaPrevia: minutosAlertaPrevia,
	}
}

func (s *cobranzaServiceImpl) Crear(ctx context.Context, req request.CrearActividadRequest, actorID string) (*cobranza.Actividad, error) {
	if !cobranza.TipoValido(req.TipoActividad) {
		return nil, xerr.Validation("tipo de actividad desconocido: %s", req.TipoActividad)
	}
	prioridad := req.Prioridad
	if prioridad == "" {
		prioridad = cobranza.PrioridadNormal
	}
	if !cobranza.PrioridadValida(prioridad) {
		return nil, xerr.Validation("prioridad desconocida: %s", prioridad)
	}
	if _, err := s.directorio.GetCliente(ctx, req.ClienteID); err != nil {
		return nil, err
	}
	if _, err := s.directorio.GetUsuario(ctx, req.UsuarioID); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	fecha, err := time.ParseInLocation("2006-01-02", req.FechaProgramada, now.Location())
	if err != nil {
		return nil, xerr.Validation("fecha programada inválida: %s", req.FechaProgramada)
	}
	if req.HoraInicio != "" {
		if _, err := time.Parse("15:04", req.HoraInicio); err != nil {
			return nil, xerr.Validation("hora de inicio inválida: %s", req.HoraInicio)
		}
	}

	alertaPrevia := true
	if req.GenerarAlertaPrevia != nil {
		alertaPrevia = *req.GenerarAlertaPrevia
	}
	minutos := req.MinutosAlertaPrevia
	if minutos <= 0 {
		minutos = s.minutosAlertaPrevia
	}
	vencimiento := cobranza.FinDelDia(fecha)

	act := &cobranza.Actividad{
		ID:                  util.GenerateUUID(),
		ClienteID:           req.ClienteID,
		PrestamoID:          req.PrestamoID,
		UsuarioID:           req.UsuarioID,
		SucursalID:          req.SucursalID,
		TipoActividad:       req.TipoActividad,
		Estado:              cobranza.EstadoProgramada,
		Prioridad:           prioridad,
		FechaProgramada:     fecha,
		HoraInicio:          req.HoraInicio,
		FechaVencimiento:    &vencimiento,
		Titulo:              req.Titulo,
		Descripcion:         req.Descripcion,
		Objetivo:            req.Objetivo,
		DireccionVisita:     req.DireccionVisita,
		TelefonoContacto:    req.TelefonoContacto,
		PersonaContacto:     req.PersonaContacto,
		GenerarAlertaPrevia: alertaPrevia,
		MinutosAlertaPrevia: minutos,
		NotificarSupervisor: req.NotificarSupervisor,
	}
	if err := s.actividades.Create(ctx, act); err != nil {
		return nil, err
	}

	s.registrar(ctx, act.ID, historial.EventoCreacion, "", act.Estado,
		"Actividad programada: "+cobranza.NombreTipoLegible(act.TipoActividad), actorID)
	s.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoActividadCreada,
		Origen: alerta.OrigenCobranza,
		ItemID: act.ID,
		Datos: map[string]interface{}{
			"tipo":             act.TipoActividad,
			"fecha_programada": req.FechaProgramada,
			"usuario_id":       act.UsuarioID,
		},
	})

	s.programarAlertaPrevia(ctx, act)

	zlog.Info("actividad de cobranza creada",
		zap.String("id", act.ID),
		zap.String("tipo", act.TipoActividad),
		zap.String("fecha", req.FechaProgramada))
	return act, nil
}

// programarAlertaPrevia schedules the reminder and flags the row; a failure
// leaves the flag unset so the monitor sweep can retry.
func (s *cobranzaServiceImpl) programarAlertaPrevia(ctx context.Context, act *cobranza.Actividad) {
	if !act.GenerarAlertaPrevia || act.HoraInicio == "" {
		return
	}
	a, err := s.alertas.ProgramarPreAlerta(ctx, act)
	if err != nil {
		zlog.Warn("no se pudo programar alerta previa",
			zap.String("actividad_id", act.ID),
			zap.Error(err))
		return
	}
	if a == nil {
		return
	}
	if err := s.actividades.UpdateCampos(ctx, act.ID, map[string]interface{}{"alerta_generada": true}); err != nil {
		zlog.Warn("no se pudo marcar alerta previa generada",
			zap.String("actividad_id", act.ID),
			zap.Error(err))
		return
	}
	act.AlertaGenerada = true
}

func (s *cobranzaServiceImpl) Get(ctx context.Context, id string) (*cobranza.Actividad, error) {
	return s.actividades.GetByID(ctx, id)
}

func (s *cobranzaServiceImpl) CambiarEstado(ctx context.Context, id string, req request.CambiarEstadoActividadRequest, actorID string) (*cobranza.Actividad, error) {
	if !cobranza.EstadoValido(req.Estado) {
		return nil, xerr.Validation("estado desconocido: %s", req.Estado)
	}
	if req.Estado == cobranza.EstadoCompletada {
		return nil, xerr.Validation("una actividad se completa con su resultado, use la operación de completar")
	}
	act, err := s.actividades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cobranza.PuedeTransicionar(act.Estado, req.Estado) {
		return nil, xerr.InvalidTransition(act.Estado, req.Estado)
	}

	now := s.clock.Now()
	campos := map[string]interface{}{"estado": req.Estado}
	if req.Observaciones != "" {
		campos["observaciones"] = req.Observaciones
	}
	if req.Estado == cobranza.EstadoEnProceso && act.FechaInicioReal == nil {
		campos["fecha_inicio_real"] = now
	}

	ok, err := s.actividades.CambiarEstado(ctx, id, act.Estado, campos)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresco, rerr := s.actividades.GetByID(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		return nil, xerr.InvalidTransition(fresco.Estado, req.Estado)
	}

	s.registrar(ctx, id, historial.EventoCambioEstado, act.Estado, req.Estado, req.Observaciones, actorID)
	s.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoActividadEstado,
		Origen: alerta.OrigenCobranza,
		ItemID: id,
		Datos: map[string]interface{}{
			"estado_anterior": act.Estado,
			"estado_nuevo":    req.Estado,
		},
	})

	// A cancelled or abandoned activity no longer needs its reminder.
	if cobranza.EsTerminal(req.Estado) {
		if err := s.alertas.CancelarPreAlertas(ctx, id); err != nil {
			zlog.Warn("no se pudieron cancelar alertas previas", zap.String("actividad_id", id), zap.Error(err))
		}
	}
	return s.actividades.GetByID(ctx, id)
}

func (s *cobranzaServiceImpl) Completar(ctx context.Context, id string, req request.CompletarActividadRequest, actorID string) (*cobranza.Actividad, error) {
	if !cobranza.ResultadoValido(req.Resultado) {
		return nil, xerr.Validation("resultado desconocido: %s", req.Resultado)
	}
	act, err := s.actividades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !cobranza.PuedeTransicionar(act.Estado, cobranza.EstadoCompletada) {
		return nil, xerr.InvalidTransition(act.Estado, cobranza.EstadoCompletada)
	}

	now := s.clock.Now()

	// A payment promise needs both the amount and a future date.
	var fechaPromesa *time.Time
	if req.Resultado == cobranza.ResultadoPromesaPago || req.MontoPrometido != nil {
		if req.MontoPrometido == nil || *req.MontoPrometido <= 0 {
			return nil, xerr.Validation("la promesa de pago requiere un monto mayor a cero")
		}
		if req.FechaPromesaPago == "" {
			return nil, xerr.Validation("la promesa de pago requiere fecha")
		}
		fp, perr := time.ParseInLocation("2006-01-02", req.FechaPromesaPago, now.Location())
		if perr != nil {
			return nil, xerr.Validation("fecha de promesa inválida: %s", req.FechaPromesaPago)
		}
		if !fp.After(now) {
			return nil, xerr.Validation("la fecha de promesa debe ser futura")
		}
		fechaPromesa = &fp
	}

	campos := map[string]interface{}{
		"estado":         cobranza.EstadoCompletada,
		"resultado":      req.Resultado,
		"fecha_fin_real": now,
	}
	if req.ResultadoDetalle != "" {
		campos["resultado_detalle"] = req.ResultadoDetalle
	}
	if req.ProximosPasos != "" {
		campos["proximos_pasos"] = req.ProximosPasos
	}
	if req.MontoGestionado != nil {
		campos["monto_gestionado"] = *req.MontoGestionado
	}
	if fechaPromesa != nil {
		campos["monto_prometido"] = *req.MontoPrometido
		campos["fecha_promesa_pago"] = *fechaPromesa
	}
	inicio := act.FechaInicioReal
	if inicio == nil {
		campos["fecha_inicio_real"] = now
	} else {
		campos["duracion_real_minutos"] = int(now.Sub(*inicio).Minutes())
	}

	ok, err := s.actividades.CambiarEstado(ctx, id, act.Estado, campos)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresco, rerr := s.actividades.GetByID(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		return nil, xerr.InvalidTransition(fresco.Estado, cobranza.EstadoCompletada)
	}

	s.registrar(ctx, id, historial.EventoCambioEstado, act.Estado, cobranza.EstadoCompletada,
		"Resultado: "+cobranza.NombreResultadoLegible(req.Resultado), actorID)
	s.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoActividadEstado,
		Origen: alerta.OrigenCobranza,
		ItemID: id,
		Datos: map[string]interface{}{
			"estado_anterior": act.Estado,
			"estado_nuevo":    cobranza.EstadoCompletada,
			"resultado":       req.Resultado,
		},
	})

	if err := s.alertas.CancelarPreAlertas(ctx, id); err != nil {
		zlog.Warn("no se pudieron cancelar alertas previas", zap.String("actividad_id", id), zap.Error(err))
	}

	fresco, err := s.actividades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Resultado == cobranza.ResultadoPromesaPago {
		if _, perr := s.alertas.ProgramarSeguimientoPromesa(ctx, fresco); perr != nil {
			zlog.Warn("no se pudo programar seguimiento de promesa",
				zap.String("actividad_id", id),
				zap.Error(perr))
		}
	}
	return fresco, nil
}

func (s *cobranzaServiceImpl) Reprogramar(ctx context.Context, id string, req request.ReprogramarActividadRequest, actorID string) (*cobranza.Actividad, error) {
	act, err := s.actividades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	// The move routes through REPROGRAMADA, so only states with that edge
	// qualify.
	if !cobranza.PuedeTransicionar(act.Estado, cobranza.EstadoReprogramada) {
		return nil, xerr.InvalidTransition(act.Estado, cobranza.EstadoReprogramada)
	}

	now := s.clock.Now()
	fecha, err := time.ParseInLocation("2006-01-02", req.NuevaFecha, now.Location())
	if err != nil {
		return nil, xerr.Validation("fecha inválida: %s", req.NuevaFecha)
	}
	hora := act.HoraInicio
	if req.NuevaHora != "" {
		if _, herr := time.Parse("15:04", req.NuevaHora); herr != nil {
			return nil, xerr.Validation("hora inválida: %s", req.NuevaHora)
		}
		hora = req.NuevaHora
	}
	vencimiento := cobranza.FinDelDia(fecha)

	campos := map[string]interface{}{
		"estado":               cobranza.EstadoProgramada,
		"fecha_programada":     fecha,
		"hora_inicio":          hora,
		"fecha_vencimiento":    vencimiento,
		"fecha_reprogramacion": now,
		"numero_intentos":      act.NumeroIntentos + 1,
		"alerta_generada":      false,
	}

	ok, err := s.actividades.CambiarEstado(ctx, id, act.Estado, campos)
	if err != nil {
		return nil, err
	}
	if !ok {
		fresco, rerr := s.actividades.GetByID(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		return nil, xerr.InvalidTransition(fresco.Estado, cobranza.EstadoProgramada)
	}

	s.registrar(ctx, id, historial.EventoReprogramacion, act.Estado, cobranza.EstadoProgramada,
		"Reprogramada para "+req.NuevaFecha+". Motivo: "+req.Motivo, actorID)
	s.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoReprogramada,
		Origen: alerta.OrigenCobranza,
		ItemID: id,
		Datos: map[string]interface{}{
			"nueva_fecha": req.NuevaFecha,
			"motivo":      req.Motivo,
			"intento":     act.NumeroIntentos + 1,
		},
	})

	// The reminder of the old slot is stale; the new one is scheduled fresh.
	if err := s.alertas.CancelarPreAlertas(ctx, id); err != nil {
		zlog.Warn("no se pudieron cancelar alertas previas", zap.String("actividad_id", id), zap.Error(err))
	}
	fresco, err := s.actividades.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.programarAlertaPrevia(ctx, fresco)
	return fresco, nil
}

func (s *cobranzaServiceImpl) Listar(ctx context.Context, filtro repository.FiltroActividades) ([]respond.ActividadResumen, error) {
	items, err := s.actividades.List(ctx, filtro)
	if err != nil {
		return nil, err
	}
	return resumirActividades(items), nil
}

func (s *cobranzaServiceImpl) AgendaHoy(ctx context.Context, usuarioID string) ([]respond.ActividadResumen, error) {
	hoy := s.clock.Now()
	items, err := s.actividades.ListProgramadasEnFecha(ctx, hoy)
	if err != nil {
		return nil, err
	}
	propias := items[:0]
	for _, act := range items {
		if usuarioID == "" || act.UsuarioID == usuarioID {
			propias = append(propias, act)
		}
	}
	return resumirActividades(propias), nil
}

// PromesasVencidas lists promise-of-payment activities whose promised date
// already passed, optionally narrowed to one collector.
func (s *cobranzaServiceImpl) PromesasVencidas(ctx context.Context, usuarioID string) ([]respond.ActividadResumen, error) {
	items, err := s.actividades.ListPromesasVencidas(ctx, s.clock.Now(), usuarioID)
	if err != nil {
		return nil, err
	}
	return resumirActividades(items), nil
}

func (s *cobranzaServiceImpl) Dashboard(ctx context.Context, filtro repository.FiltroActividades) (*respond.DashboardCobranza, error) {
	porEstado, err := s.actividades.CountPorEstado(ctx, filtro)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range porEstado {
		total += n
	}

	now := s.clock.Now()
	hoy, err := s.actividades.ListProgramadasEnFecha(ctx, now)
	if err != nil {
		return nil, err
	}
	promesas, err := s.actividades.ListPromesasIncumplidas(ctx, now)
	if err != nil {
		return nil, err
	}

	// Effectiveness over the trailing 30 days: share of completed activities
	// with a productive outcome.
	completadas, err := s.actividades.ListCompletadasEntre(ctx, now.AddDate(0, 0, -30), now)
	if err != nil {
		return nil, err
	}
	var efectivas int
	for _, act := range completadas {
		if cobranza.Efectividad(act.Resultado) == cobranza.EfectividadAlta {
			efectivas++
		}
	}
	var efectividad float64
	if len(completadas) > 0 {
		efectividad = float64(efectivas) / float64(len(completadas)) * 100
	}

	return &respond.DashboardCobranza{
		Total:            total,
		PorEstado:        porEstado,
		Hoy:              int64(len(hoy)),
		Vencidas:         porEstado[cobranza.EstadoVencida],
		PromesasVencidas: int64(len(promesas)),
		Efectividad:      efectividad,
	}, nil
}

func (s *cobranzaServiceImpl) Historial(ctx context.Context, id string) ([]*historial.Evento, error) {
	if _, err := s.actividades.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historico.ListPorItem(ctx, alerta.OrigenCobranza, id)
}

func resumirActividades(items []*cobranza.Actividad) []respond.ActividadResumen {
	res := make([]respond.ActividadResumen, 0, len(items))
	for _, act := range items {
		res = append(res, respond.ActividadResumen{
			ID:              act.ID,
			ClienteID:       act.ClienteID,
			PrestamoID:      act.PrestamoID,
			TipoActividad:   act.TipoActividad,
			TipoLegible:     cobranza.NombreTipoLegible(act.TipoActividad),
			Estado:          act.Estado,
			EstadoLegible:   cobranza.NombreEstadoLegible(act.Estado),
			Prioridad:       act.Prioridad,
			Titulo:          act.Titulo,
			FechaProgramada: act.FechaProgramada,
			HoraInicio:      act.HoraInicio,
			Resultado:       act.Resultado,
			MontoPrometido:  act.MontoPrometido,
			FechaPromesa:    act.FechaPromesaPago,
			UsuarioID:       act.UsuarioID,
		})
	}
	return res
}

func (s *cobranzaServiceImpl) registrar(ctx context.Context, itemID, tipoEvento, anterior, nuevo, detalle, actorID string) {
	e := &historial.Evento{
		ID:             util.GenerateUUID(),
		Origen:         alerta.OrigenCobranza,
		ItemID:         itemID,
		TipoEvento:     tipoEvento,
		EstadoAnterior: anterior,
		EstadoNuevo:    nuevo,
		Detalle:        detalle,
		UsuarioID:      actorID,
		FechaEvento:    s.clock.Now(),
	}
	if err := s.historico.Append(ctx, e); err != nil {
		zlog.Warn("no se pudo registrar historial",
			zap.String("item_id", itemID),
			zap.String("tipo_evento", tipoEvento),
			zap.Error(err))
	}
}
