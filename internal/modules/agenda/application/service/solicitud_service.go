package service

import (
	"context"
	"fmt"
	"time"

	"CrediAgenda/internal/modules/agenda/application/dto/request"
	"CrediAgenda/internal/modules/agenda/application/dto/respond"
	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/historial"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/internal/modules/agenda/domain/sla"
	"CrediAgenda/internal/modules/agenda/domain/solicitud"
	"CrediAgenda/internal/modules/agenda/infrastructure/mq"
	"CrediAgenda/pkg/util"
	"CrediAgenda/pkg/xerr"
	"CrediAgenda/pkg/zlog"

	"go.uber.org/zap"
)

// PrefijoNumeroSolicitud prefixes the human-readable sequential number,
// format SOL-YYYYMMDD-NNNN.
const PrefijoNumeroSolicitud = "SOL"

type SolicitudService interface {
	Crear(ctx context.Context, req request.CrearSolicitudRequest, actorID string) (*solicitud.Solicitud, error)
	Get(ctx context.Context, id string) (*solicitud.Solicitud, error)
	CambiarEstado(ctx context.Context, id string, req request.CambiarEstadoSolicitudRequest, actorID string) (*solicitud.Solicitud, error)
	Asignar(ctx context.Context, id string, req request.AsignarSolicitudRequest, actorID string) error
	ProgramarSeguimiento(ctx context.Context, id string, req request.SeguimientoSolicitudRequest, actorID string) error
	Listar(ctx context.Context, filtro repository.FiltroSolicitudes) ([]respond.SolicitudResumen, error)
	ListarVencidas(ctx context.Context) ([]respond.SolicitudResumen, error)
	Dashboard(ctx context.Context, filtro repository.FiltroSolicitudes) (*respond.DashboardSolicitudes, error)
	Historial(ctx context.Context, id string) ([]*historial.Evento, error)
}

type solicitudServiceImpl struct {
	solicitudes repository.SolicitudRepository
	directorio  repository.DirectorioRepository
	historico   repository.HistorialRepository
	alertas     AlertaService
	eventos     *mq.Eventos
	clock       sla.Clock
	slaDefecto  int
}

func NewSolicitudService(
	solicitudes repository.SolicitudRepository,
	directorio repository.DirectorioRepository,
	historico repository.HistorialRepository,
	alertas AlertaService,
	eventos *mq.Eventos,
	clock sla.Clock,
	slaDefectoHoras int,
) SolicitudService {
	if slaDefectoHoras <= 0 {
		slaDefectoHoras = 24
	}
	return &solicitudServiceImpl{
		solicitudes: solicitudes,
		directorio:  directorio,
		historico:   historico,
		alertas:     alertas,
		eventos:     eventos,
		clock:       clock,
		slaDefecto:  slaDefectoHoras,
	}
}

func (s *solicitudServiceImpl) Crear(ctx context.Context, req request.CrearSolicitudRequest, actorID string) (*solicitud.Solicitud, error) {
	if !solicitud.TipoValido(req.TipoSolicitud) {
		return nil, xerr.Validation("tipo de solicitud desconocido: %s", req.TipoSolicitud)
	}
	if !solicitud.CanalValido(req.Canal) {
		return nil, xerr.Validation("canal desconocido: %s", req.Canal)
	}
	prioridad := req.Prioridad
	if prioridad == "" {
		prioridad = solicitud.PrioridadNormal
	}
	if !solicitud.PrioridadValida(prioridad) {
		return nil, xerr.Validation("prioridad desconocida: %s", prioridad)
	}
	if _, err := s.directorio.GetCliente(ctx, req.ClienteID); err != nil {
		return nil, err
	}
	if req.UsuarioID != "" {
		if _, err := s.directorio.GetUsuario(ctx, req.UsuarioID); err != nil {
			return nil, err
		}
	}

	now := s.clock.Now()
	slaHoras := req.SlaHoras
	if slaHoras <= 0 {
		slaHoras = s.slaDefecto
	}
	limite := now.Add(time.Duration(slaHoras) * time.Hour)

	numero, err := s.generarNumero(ctx, now)
	if err != nil {
		return nil, err
	}

	moneda := req.Moneda
	if moneda == "" {
		moneda = "USD"
	}

	sol := &solicitud.Solicitud{
		ID:                   util.GenerateUUID(),
		NumeroSolicitud:      numero,
		ClienteID:            req.ClienteID,
		UsuarioID:            req.UsuarioID,
		SucursalID:           req.SucursalID,
		PrestamoID:           req.PrestamoID,
		TipoSolicitud:        req.TipoSolicitud,
		Estado:               solicitud.EstadoRecibida,
		Prioridad:            prioridad,
		Canal:                req.Canal,
		FechaSolicitud:       now,
		FechaLimiteRespuesta: &limite,
		Asunto:               req.Asunto,
		Descripcion:          req.Descripcion,
		MontoSolicitado:      req.MontoSolicitado,
		Moneda:               moneda,
		PlazoSolicitado:      req.PlazoSolicitado,
		SlaHoras:             slaHoras,
		RequiereSeguimiento:  true,
		TelefonoContacto:     req.TelefonoContacto,
		EmailContacto:        req.EmailContacto,
	}
	if err := s.solicitudes.Create(ctx, sol); err != nil {
		return nil, err
	}

	s.registrar(ctx, sol.ID, historial.EventoCreacion, "", sol.Estado,
		"Solicitud registrada: "+solicitud.NombreTipoLegible(sol.TipoSolicitud), actorID)
	s.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoSolicitudCreada,
		Origen: alerta.OrigenSolicitud,
		ItemID: sol.ID,
		Datos: map[string]interface{}{
			"numero": sol.NumeroSolicitud,
			"tipo":   sol.TipoSolicitud,
			"canal":  sol.Canal,
		},
	})

	zlog.Info("solicitud creada",
		zap.String("numero", sol.NumeroSolicitud),
		zap.String("tipo", sol.TipoSolicitud),
		zap.Int("sla_horas", slaHoras))
	return sol, nil
}

// generarNumero builds the next SOL-YYYYMMDD-NNNN for today.
func (s *solicitudServiceImpl) generarNumero(ctx context.Context, now time.Time) (string, error) {
	prefijo := fmt.Sprintf("%s-%s-", PrefijoNumeroSolicitud, now.Format("20060102"))
	seq, err := s.solicitudes.SiguienteSecuencia(ctx, prefijo)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefijo, seq), nil
}

func (s *solicitudServiceImpl) Get(ctx context.Context, id string) (*solicitud.Solicitud, error) {
	return s.solicitudes.GetByID(ctx, id)
}

func (s *solicitudServiceImpl) CambiarEstado(ctx context.Context, id string, req request.CambiarEstadoSolicitudRequest, actorID string) (*solicitud.Solicitud, error) {
	if !solicitud.EstadoValido(req.Estado) {
		return nil, xerr.Validation("estado desconocido: %s", req.Estado)
	}
	sol, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !solicitud.PuedeTransicionar(sol.Estado, req.Estado) {
		return nil, xerr.InvalidTransition(sol.Estado, req.Estado)
	}
	if req.Estado == solicitud.EstadoRechazada && req.MotivoRechazo == "" {
		return nil, xerr.Validation("el rechazo requiere motivo")
	}

	now := s.clock.Now()
	campos := map[string]interface{}{
		"estado":               req.Estado,
		"numero_interacciones": sol.NumeroInteracciones + 1,
	}
	if req.Observaciones != "" {
		campos["observaciones"] = req.Observaciones
	}
	if req.MotivoRechazo != "" {
		campos["motivo_rechazo"] = req.MotivoRechazo
	}
	if req.MontoAprobado != nil {
		campos["monto_aprobado"] = *req.MontoAprobado
	}
	if req.PlazoAprobado != nil {
		campos["plazo_aprobado"] = *req.PlazoAprobado
	}
	if req.Condiciones != "" {
		campos["condiciones_aprobacion"] = req.Condiciones
	}

	if _, conRespuesta := solicitud.EstadosConRespuesta[req.Estado]; conRespuesta && sol.FechaRespuesta == nil {
		campos["fecha_respuesta"] = now
		campos["tiempo_respuesta_horas"] = int(now.Sub(sol.FechaSolicitud).Hours())
	}
	if solicitud.EsTerminal(req.Estado) {
		campos["fecha_completada"] = now
		campos["tiempo_procesamiento_horas"] = int(now.Sub(sol.FechaSolicitud).Hours())
		campos["requiere_seguimiento"] = false
	}

	ok, err := s.solicitudes.CambiarEstado(ctx, id, sol.Estado, campos)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another writer won the race; report against the fresh state.
		fresco, rerr := s.solicitudes.GetByID(ctx, id)
		if rerr != nil {
			return nil, rerr
		}
		return nil, xerr.InvalidTransition(fresco.Estado, req.Estado)
	}

	s.registrar(ctx, id, historial.EventoCambioEstado, sol.Estado, req.Estado, req.Observaciones, actorID)
	s.eventos.Emitir(ctx, mq.Evento{
		Nombre: mq.EventoSolicitudEstado,
		Origen: alerta.OrigenSolicitud,
		ItemID: id,
		Datos: map[string]interface{}{
			"estado_anterior": sol.Estado,
			"estado_nuevo":    req.Estado,
		},
	})

	s.alertasPorEstado(ctx, sol, req.Estado)

	return s.solicitudes.GetByID(ctx, id)
}

// alertasPorEstado raises the decision/disbursement alerts tied to certain
// target states. Best-effort: failures log and never undo the transition.
func (s *solicitudServiceImpl) alertasPorEstado(ctx context.Context, sol *solicitud.Solicitud, estado string) {
	if sol.UsuarioID == "" {
		return
	}
	var tipo, titulo string
	switch estado {
	case solicitud.EstadoAprobada, solicitud.EstadoAprobadaCondicionada:
		tipo = alerta.TipoDesembolsoPendiente
		titulo = "Solicitud aprobada: notificar al cliente"
	case solicitud.EstadoRechazada:
		tipo = alerta.TipoSeguimientoRequerido
		titulo = "Solicitud rechazada: notificar al cliente"
	case solicitud.EstadoDocumentosPendientes:
		tipo = alerta.TipoDocumentosPendientes
		titulo = "Documentos pendientes del cliente"
	default:
		return
	}
	a := &alerta.Alerta{
		Origen:                alerta.OrigenSolicitud,
		ItemID:                sol.ID,
		UsuarioDestinatarioID: sol.UsuarioID,
		TipoAlerta:            tipo,
		NivelUrgencia:         alerta.UrgenciaMedia,
		Titulo:                titulo,
		Mensaje:               fmt.Sprintf("Solicitud %s: %s", sol.NumeroSolicitud, sol.Asunto),
		FechaProgramada:       s.clock.Now(),
		EnviarEmail:           true,
		EnviarPush:            true,
	}
	if err := s.alertas.Crear(ctx, a); err != nil {
		zlog.Warn("no se pudo crear alerta de respuesta",
			zap.String("solicitud_id", sol.ID),
			zap.Error(err))
	}
}

func (s *solicitudServiceImpl) Asignar(ctx context.Context, id string, req request.AsignarSolicitudRequest, actorID string) error {
	sol, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sol.EsTerminal() {
		return xerr.Validation("la solicitud %s ya está cerrada", sol.NumeroSolicitud)
	}
	usuario, err := s.directorio.GetUsuario(ctx, req.UsuarioID)
	if err != nil {
		return err
	}

	err = s.solicitudes.UpdateCampos(ctx, id, map[string]interface{}{
		"usuario_asignado_id": usuario.ID,
	})
	if err != nil {
		return err
	}

	s.registrar(ctx, id, historial.EventoAsignacion, "", "",
		"Asignada a "+usuario.Nombre+". "+req.Detalle, actorID)

	a := &alerta.Alerta{
		Origen:                alerta.OrigenSolicitud,
		ItemID:                id,
		UsuarioDestinatarioID: usuario.ID,
		TipoAlerta:            alerta.TipoAprobacionPendiente,
		NivelUrgencia:         alerta.UrgenciaMedia,
		Titulo:                "Solicitud asignada: " + sol.NumeroSolicitud,
		Mensaje:               sol.Asunto,
		FechaProgramada:       s.clock.Now(),
		EnviarEmail:           true,
		EnviarPush:            true,
	}
	if err := s.alertas.Crear(ctx, a); err != nil {
		zlog.Warn("no se pudo crear alerta de asignación", zap.String("solicitud_id", id), zap.Error(err))
	}
	return nil
}

func (s *solicitudServiceImpl) ProgramarSeguimiento(ctx context.Context, id string, req request.SeguimientoSolicitudRequest, actorID string) error {
	sol, err := s.solicitudes.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sol.EsTerminal() {
		return xerr.Validation("la solicitud %s ya está cerrada", sol.NumeroSolicitud)
	}
	fecha, err := time.ParseInLocation("2006-01-02", req.FechaSeguimiento, s.clock.Now().Location())
	if err != nil {
		return xerr.Validation("fecha de seguimiento inválida: %s", req.FechaSeguimiento)
	}

	err = s.solicitudes.UpdateCampos(ctx, id, map[string]interface{}{
		"requiere_seguimiento":      true,
		"fecha_proximo_seguimiento": fecha,
	})
	if err != nil {
		return err
	}
	s.registrar(ctx, id, historial.EventoSeguimiento, "", "",
		"Seguimiento programado para "+req.FechaSeguimiento+". "+req.Detalle, actorID)
	return nil
}

func (s *solicitudServiceImpl) Listar(ctx context.Context, filtro repository.FiltroSolicitudes) ([]respond.SolicitudResumen, error) {
	items, err := s.solicitudes.List(ctx, filtro)
	if err != nil {
		return nil, err
	}
	return s.resumir(items), nil
}

func (s *solicitudServiceImpl) ListarVencidas(ctx context.Context) ([]respond.SolicitudResumen, error) {
	items, err := s.solicitudes.ListVencibles(ctx, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return s.resumir(items), nil
}

func (s *solicitudServiceImpl) Dashboard(ctx context.Context, filtro repository.FiltroSolicitudes) (*respond.DashboardSolicitudes, error) {
	porEstado, err := s.solicitudes.CountPorEstado(ctx, filtro)
	if err != nil {
		return nil, err
	}
	var total int64
	for _, n := range porEstado {
		total += n
	}

	proximas, err := s.solicitudes.ListProximasAVencer(ctx, s.clock.Now(), 10)
	if err != nil {
		return nil, err
	}

	return &respond.DashboardSolicitudes{
		Total:           total,
		PorEstado:       porEstado,
		Vencidas:        porEstado[solicitud.EstadoVencida],
		ProximasAVencer: s.resumir(proximas),
	}, nil
}

func (s *solicitudServiceImpl) Historial(ctx context.Context, id string) ([]*historial.Evento, error) {
	if _, err := s.solicitudes.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.historico.ListPorItem(ctx, alerta.OrigenSolicitud, id)
}

func (s *solicitudServiceImpl) resumir(items []*solicitud.Solicitud) []respond.SolicitudResumen {
	now := s.clock.Now()
	res := make([]respond.SolicitudResumen, 0, len(items))
	for _, sol := range items {
		v := sla.Ventana{Inicio: sol.FechaSolicitud, Limite: sol.FechaLimite(), Horas: sol.SlaHoras}
		res = append(res, respond.SolicitudResumen{
			ID:              sol.ID,
			NumeroSolicitud: sol.NumeroSolicitud,
			ClienteID:       sol.ClienteID,
			TipoSolicitud:   sol.TipoSolicitud,
			TipoLegible:     solicitud.NombreTipoLegible(sol.TipoSolicitud),
			Estado:          sol.Estado,
			EstadoLegible:   solicitud.NombreEstadoLegible(sol.Estado),
			Prioridad:       sol.Prioridad,
			Asunto:          sol.Asunto,
			FechaSolicitud:  sol.FechaSolicitud,
			FechaLimite:     sol.FechaLimite(),
			HorasRestantes:  sla.HorasRestantes(v, now),
			PorcentajeSla:   sla.PorcentajeConsumido(v, now),
			UsuarioID:       sol.UsuarioID,
			FechaRespuesta:  sol.FechaRespuesta,
		})
	}
	return res
}

func (s *solicitudServiceImpl) registrar(ctx context.Context, itemID, tipoEvento, anterior, nuevo, detalle, actorID string) {
	e := &historial.Evento{
		ID:             util.GenerateUUID(),
		Origen:         alerta.OrigenSolicitud,
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
