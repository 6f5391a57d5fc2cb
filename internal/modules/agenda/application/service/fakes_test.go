package service_test

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/cobranza"
	"CrediAgenda/internal/modules/agenda/domain/directorio"
	"CrediAgenda/internal/modules/agenda/domain/historial"
	"CrediAgenda/internal/modules/agenda/domain/prestamo"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/internal/modules/agenda/domain/sla"
	"CrediAgenda/internal/modules/agenda/domain/solicitud"
	"CrediAgenda/internal/modules/agenda/infrastructure/mq"
	"CrediAgenda/internal/modules/agenda/infrastructure/notify"
	"CrediAgenda/pkg/xerr"
)

// In-memory repository doubles. They mirror the persistence semantics the
// services rely on: guarded state moves, filtered listings and the alert
// dedupe lookups.

func tiempo(campos map[string]interface{}, clave string) *time.Time {
	v, ok := campos[clave]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case time.Time:
		return &t
	case *time.Time:
		return t
	}
	return nil
}

func entero(campos map[string]interface{}, clave string) (int, bool) {
	v, ok := campos[clave]
	if !ok {
		return 0, false
	}
	n, ok := v.(int)
	return n, ok
}

type fakeSolicitudRepo struct {
	mu    sync.Mutex
	items map[string]*solicitud.Solicitud
	orden []string

	// antesCambiarEstado runs once inside the next guarded update, letting a
	// test interleave a concurrent writer between read and update.
	antesCambiarEstado func()
}

func newFakeSolicitudRepo() *fakeSolicitudRepo {
	return &fakeSolicitudRepo{items: make(map[string]*solicitud.Solicitud)}
}

func (r *fakeSolicitudRepo) Create(_ context.Context, s *solicitud.Solicitud) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *s
	r.items[s.ID] = &copia
	r.orden = append(r.orden, s.ID)
	return nil
}

func (r *fakeSolicitudRepo) GetByID(_ context.Context, id string) (*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return nil, xerr.NotFoundf("solicitud %s no encontrada", id)
	}
	copia := *s
	return &copia, nil
}

func (r *fakeSolicitudRepo) GetByNumero(_ context.Context, numero string) (*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.items {
		if s.NumeroSolicitud == numero {
			copia := *s
			return &copia, nil
		}
	}
	return nil, xerr.NotFoundf("solicitud %s no encontrada", numero)
}

func (r *fakeSolicitudRepo) List(_ context.Context, filtro repository.FiltroSolicitudes) ([]*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*solicitud.Solicitud
	for _, id := range r.orden {
		s := r.items[id]
		if filtro.Estado != "" && s.Estado != filtro.Estado {
			continue
		}
		if filtro.UsuarioID != "" && s.UsuarioID != filtro.UsuarioID {
			continue
		}
		copia := *s
		res = append(res, &copia)
	}
	return res, nil
}

func (r *fakeSolicitudRepo) aplicar(s *solicitud.Solicitud, campos map[string]interface{}) {
	if v, ok := campos["estado"].(string); ok {
		s.Estado = v
	}
	if v, ok := campos["observaciones"].(string); ok {
		s.Observaciones = v
	}
	if v, ok := campos["motivo_rechazo"].(string); ok {
		s.MotivoRechazo = v
	}
	if v, ok := campos["condiciones_aprobacion"].(string); ok {
		s.CondicionesAprobacion = v
	}
	if v, ok := campos["usuario_asignado_id"].(string); ok {
		s.UsuarioID = v
	}
	if v, ok := campos["monto_aprobado"].(float64); ok {
		s.MontoAprobado = &v
	}
	if n, ok := entero(campos, "plazo_aprobado"); ok {
		s.PlazoAprobado = &n
	}
	if n, ok := entero(campos, "numero_interacciones"); ok {
		s.NumeroInteracciones = n
	}
	if n, ok := entero(campos, "alertas_enviadas"); ok {
		s.AlertasEnviadas = n
	}
	if n, ok := entero(campos, "tiempo_respuesta_horas"); ok {
		s.TiempoRespuestaHoras = &n
	}
	if n, ok := entero(campos, "tiempo_procesamiento_horas"); ok {
		s.TiempoProcesamientoHoras = &n
	}
	if t := tiempo(campos, "fecha_respuesta"); t != nil {
		s.FechaRespuesta = t
	}
	if t := tiempo(campos, "fecha_completada"); t != nil {
		s.FechaCompletada = t
	}
	if t := tiempo(campos, "ultima_alerta"); t != nil {
		s.UltimaAlerta = t
	}
	if v, ok := campos["requiere_seguimiento"].(bool); ok {
		s.RequiereSeguimiento = v
	}
	if _, ok := campos["fecha_proximo_seguimiento"]; ok {
		s.FechaProximoSeguimiento = tiempo(campos, "fecha_proximo_seguimiento")
	}
}

func (r *fakeSolicitudRepo) UpdateCampos(_ context.Context, id string, campos map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.items[id]
	if !ok {
		return xerr.NotFoundf("solicitud %s no encontrada", id)
	}
	r.aplicar(s, campos)
	return nil
}

func (r *fakeSolicitudRepo) CambiarEstado(_ context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.antesCambiarEstado != nil {
		hook := r.antesCambiarEstado
		r.antesCambiarEstado = nil
		hook()
	}
	s, ok := r.items[id]
	if !ok {
		return false, xerr.NotFoundf("solicitud %s no encontrada", id)
	}
	if s.Estado != estadoActual {
		return false, nil
	}
	r.aplicar(s, campos)
	return true, nil
}

func (r *fakeSolicitudRepo) SiguienteSecuencia(_ context.Context, prefijo string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.items {
		if strings.HasPrefix(s.NumeroSolicitud, prefijo) {
			n++
		}
	}
	return n + 1, nil
}

func (r *fakeSolicitudRepo) ListVencibles(_ context.Context, corte time.Time) ([]*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*solicitud.Solicitud
	for _, id := range r.orden {
		s := r.items[id]
		if s.EsTerminal() {
			continue
		}
		if s.EstaVencida(corte) {
			copia := *s
			res = append(res, &copia)
		}
	}
	return res, nil
}

func (r *fakeSolicitudRepo) ListAbiertasSLA(_ context.Context) ([]*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*solicitud.Solicitud
	for _, id := range r.orden {
		s := r.items[id]
		if _, abierta := solicitud.EstadosAbiertosSLA[s.Estado]; abierta {
			copia := *s
			res = append(res, &copia)
		}
	}
	return res, nil
}

func (r *fakeSolicitudRepo) ListProximasAVencer(_ context.Context, _ time.Time, limit int) ([]*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*solicitud.Solicitud
	for _, id := range r.orden {
		s := r.items[id]
		if s.EsTerminal() {
			continue
		}
		copia := *s
		res = append(res, &copia)
	}
	sort.Slice(res, func(i, j int) bool {
		return res[i].FechaLimite().Before(res[j].FechaLimite())
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res, nil
}

func (r *fakeSolicitudRepo) ListSeguimientosDue(_ context.Context, corte time.Time) ([]*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*solicitud.Solicitud
	for _, id := range r.orden {
		s := r.items[id]
		if !s.RequiereSeguimiento || s.EsTerminal() || s.FechaProximoSeguimiento == nil {
			continue
		}
		if !s.FechaProximoSeguimiento.After(corte) {
			copia := *s
			res = append(res, &copia)
		}
	}
	return res, nil
}

func (r *fakeSolicitudRepo) CountCreadasEntre(_ context.Context, desde, hasta time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, s := range r.items {
		if !s.FechaSolicitud.Before(desde) && s.FechaSolicitud.Before(hasta) {
			n++
		}
	}
	return n, nil
}

func (r *fakeSolicitudRepo) ListCompletadasEntre(_ context.Context, desde, hasta time.Time) ([]*solicitud.Solicitud, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*solicitud.Solicitud
	for _, id := range r.orden {
		s := r.items[id]
		if s.FechaCompletada == nil {
			continue
		}
		if s.FechaCompletada.Before(desde) || !s.FechaCompletada.Before(hasta) {
			continue
		}
		copia := *s
		res = append(res, &copia)
	}
	return res, nil
}

func (r *fakeSolicitudRepo) CountPorEstado(_ context.Context, _ repository.FiltroSolicitudes) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make(map[string]int64)
	for _, s := range r.items {
		res[s.Estado]++
	}
	return res, nil
}

type fakeCobranzaRepo struct {
	mu    sync.Mutex
	items map[string]*cobranza.Actividad
	orden []string
}

func newFakeCobranzaRepo() *fakeCobranzaRepo {
	return &fakeCobranzaRepo{items: make(map[string]*cobranza.Actividad)}
}

func (r *fakeCobranzaRepo) Create(_ context.Context, a *cobranza.Actividad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *a
	r.items[a.ID] = &copia
	r.orden = append(r.orden, a.ID)
	return nil
}

func (r *fakeCobranzaRepo) GetByID(_ context.Context, id string) (*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, xerr.NotFoundf("actividad %s no encontrada", id)
	}
	copia := *a
	return &copia, nil
}

func (r *fakeCobranzaRepo) List(_ context.Context, filtro repository.FiltroActividades) ([]*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*cobranza.Actividad
	for _, id := range r.orden {
		a := r.items[id]
		if filtro.Estado != "" && a.Estado != filtro.Estado {
			continue
		}
		if filtro.UsuarioID != "" && a.UsuarioID != filtro.UsuarioID {
			continue
		}
		copia := *a
		res = append(res, &copia)
	}
	return res, nil
}

func (r *fakeCobranzaRepo) aplicar(a *cobranza.Actividad, campos map[string]interface{}) {
	if v, ok := campos["estado"].(string); ok {
		a.Estado = v
	}
	if v, ok := campos["observaciones"].(string); ok {
		a.Observaciones = v
	}
	if v, ok := campos["resultado"].(string); ok {
		a.Resultado = v
	}
	if v, ok := campos["resultado_detalle"].(string); ok {
		a.ResultadoDetalle = v
	}
	if v, ok := campos["proximos_pasos"].(string); ok {
		a.ProximosPasos = v
	}
	if v, ok := campos["hora_inicio"].(string); ok {
		a.HoraInicio = v
	}
	if v, ok := campos["monto_gestionado"].(float64); ok {
		a.MontoGestionado = &v
	}
	if v, ok := campos["monto_prometido"].(float64); ok {
		a.MontoPrometido = &v
	}
	if t := tiempo(campos, "fecha_programada"); t != nil {
		a.FechaProgramada = *t
	}
	if t := tiempo(campos, "fecha_vencimiento"); t != nil {
		a.FechaVencimiento = t
	}
	if t := tiempo(campos, "fecha_inicio_real"); t != nil {
		a.FechaInicioReal = t
	}
	if t := tiempo(campos, "fecha_fin_real"); t != nil {
		a.FechaFinReal = t
	}
	if t := tiempo(campos, "fecha_promesa_pago"); t != nil {
		a.FechaPromesaPago = t
	}
	if t := tiempo(campos, "fecha_reprogramacion"); t != nil {
		a.FechaReprogramacion = t
	}
	if n, ok := entero(campos, "numero_intentos"); ok {
		a.NumeroIntentos = n
	}
	if n, ok := entero(campos, "duracion_real_minutos"); ok {
		a.DuracionRealMinutos = &n
	}
	if v, ok := campos["alerta_generada"].(bool); ok {
		a.AlertaGenerada = v
	}
	if v, ok := campos["promesa_incumplida"].(bool); ok {
		a.PromesaIncumplida = v
	}
	if v, ok := campos["requiere_seguimiento"].(bool); ok {
		a.RequiereSeguimiento = v
	}
}

func (r *fakeCobranzaRepo) UpdateCampos(_ context.Context, id string, campos map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return xerr.NotFoundf("actividad %s no encontrada", id)
	}
	r.aplicar(a, campos)
	return nil
}

func (r *fakeCobranzaRepo) CambiarEstado(_ context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return false, xerr.NotFoundf("actividad %s no encontrada", id)
	}
	if a.Estado != estadoActual {
		return false, nil
	}
	r.aplicar(a, campos)
	return true, nil
}

func (r *fakeCobranzaRepo) ListVencibles(_ context.Context, corte time.Time) ([]*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*cobranza.Actividad
	for _, id := range r.orden {
		a := r.items[id]
		if a.Estado != cobranza.EstadoProgramada && a.Estado != cobranza.EstadoEnProceso {
			continue
		}
		if a.EstaVencida(corte) {
			copia := *a
			res = append(res, &copia)
		}
	}
	return res, nil
}

func mismoDia(a, b time.Time) bool {
	return a.Year() == b.Year() && a.Month() == b.Month() && a.Day() == b.Day()
}

func (r *fakeCobranzaRepo) ListProgramadasEnFecha(_ context.Context, fecha time.Time) ([]*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*cobranza.Actividad
	for _, id := range r.orden {
		a := r.items[id]
		if a.Estado != cobranza.EstadoProgramada || !mismoDia(a.FechaProgramada, fecha) {
			continue
		}
		copia := *a
		res = append(res, &copia)
	}
	return res, nil
}

func (r *fakeCobranzaRepo) ListConAlertaPreviaDue(_ context.Context, corte time.Time) ([]*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*cobranza.Actividad
	for _, id := range r.orden {
		a := r.items[id]
		if a.Estado != cobranza.EstadoProgramada {
			continue
		}
		if a.RequiereAlertaPrevia(corte) {
			copia := *a
			res = append(res, &copia)
		}
	}
	return res, nil
}

func (r *fakeCobranzaRepo) ListPromesasIncumplidas(_ context.Context, corte time.Time) ([]*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*cobranza.Actividad
	for _, id := range r.orden {
		a := r.items[id]
		if a.Estado != cobranza.EstadoCompletada || a.Resultado != cobranza.ResultadoPromesaPago {
			continue
		}
		if a.PromesaIncumplida || a.FechaPromesaPago == nil {
			continue
		}
		if !a.FechaPromesaPago.After(corte) {
			copia := *a
			res = append(res, &copia)
		}
	}
	return res, nil
}

func (r *fakeCobranzaRepo) ListPromesasVencidas(_ context.Context, corte time.Time, usuarioID string) ([]*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*cobranza.Actividad
	for _, id := range r.orden {
		a := r.items[id]
		if a.Resultado != cobranza.ResultadoPromesaPago || a.FechaPromesaPago == nil {
			continue
		}
		if a.FechaPromesaPago.After(corte) {
			continue
		}
		if usuarioID != "" && a.UsuarioID != usuarioID {
			continue
		}
		copia := *a
		res = append(res, &copia)
	}
	return res, nil
}

func (r *fakeCobranzaRepo) ExisteActividadReciente(_ context.Context, prestamoID string, desde time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.PrestamoID == prestamoID && !a.FechaProgramada.Before(desde) {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeCobranzaRepo) ListCompletadasEntre(_ context.Context, desde, hasta time.Time) ([]*cobranza.Actividad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*cobranza.Actividad
	for _, id := range r.orden {
		a := r.items[id]
		if a.Estado != cobranza.EstadoCompletada || a.FechaFinReal == nil {
			continue
		}
		if a.FechaFinReal.Before(desde) || a.FechaFinReal.After(hasta) {
			continue
		}
		copia := *a
		res = append(res, &copia)
	}
	return res, nil
}

func (r *fakeCobranzaRepo) CountPorEstado(_ context.Context, _ repository.FiltroActividades) (map[string]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	res := make(map[string]int64)
	for _, a := range r.items {
		res[a.Estado]++
	}
	return res, nil
}

type fakeAlertaRepo struct {
	mu    sync.Mutex
	clock sla.Clock
	items map[string]*alerta.Alerta
	orden []string
}

func newFakeAlertaRepo(clock sla.Clock) *fakeAlertaRepo {
	return &fakeAlertaRepo{clock: clock, items: make(map[string]*alerta.Alerta)}
}

func (r *fakeAlertaRepo) Create(_ context.Context, a *alerta.Alerta) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *a
	copia.CreatedAt = r.clock.Now()
	r.items[a.ID] = &copia
	r.orden = append(r.orden, a.ID)
	return nil
}

func (r *fakeAlertaRepo) GetByID(_ context.Context, id string) (*alerta.Alerta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return nil, xerr.NotFoundf("alerta %s no encontrada", id)
	}
	copia := *a
	return &copia, nil
}

func (r *fakeAlertaRepo) List(_ context.Context, filtro repository.FiltroAlertas) ([]*alerta.Alerta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*alerta.Alerta
	for _, id := range r.orden {
		a := r.items[id]
		if filtro.UsuarioID != "" && a.UsuarioDestinatarioID != filtro.UsuarioID {
			continue
		}
		if filtro.Origen != "" && a.Origen != filtro.Origen {
			continue
		}
		if filtro.ItemID != "" && a.ItemID != filtro.ItemID {
			continue
		}
		if filtro.Estado != "" && a.Estado != filtro.Estado {
			continue
		}
		if filtro.SoloActivas && a.EsTerminal() {
			continue
		}
		copia := *a
		res = append(res, &copia)
		if filtro.Limit > 0 && len(res) >= filtro.Limit {
			break
		}
	}
	return res, nil
}

func (r *fakeAlertaRepo) aplicar(a *alerta.Alerta, campos map[string]interface{}) {
	if v, ok := campos["estado"].(string); ok {
		a.Estado = v
	}
	if v, ok := campos["error_envio"].(string); ok {
		a.ErrorEnvio = v
	}
	if n, ok := entero(campos, "intentos_envio"); ok {
		a.IntentosEnvio = n
	}
	if t := tiempo(campos, "fecha_enviada"); t != nil {
		a.FechaEnviada = t
	}
	if t := tiempo(campos, "fecha_leida"); t != nil {
		a.FechaLeida = t
	}
	if t := tiempo(campos, "fecha_atendida"); t != nil {
		a.FechaAtendida = t
	}
	if t := tiempo(campos, "ultimo_intento"); t != nil {
		a.UltimoIntento = t
	}
}

func (r *fakeAlertaRepo) CambiarEstado(_ context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.items[id]
	if !ok {
		return false, xerr.NotFoundf("alerta %s no encontrada", id)
	}
	if a.Estado != estadoActual {
		return false, nil
	}
	r.aplicar(a, campos)
	return true, nil
}

func (r *fakeAlertaRepo) ListPendientesDue(_ context.Context, corte time.Time, limit int) ([]*alerta.Alerta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*alerta.Alerta
	for _, id := range r.orden {
		a := r.items[id]
		if a.Estado != alerta.EstadoPendiente || a.FechaProgramada.After(corte) {
			continue
		}
		copia := *a
		res = append(res, &copia)
		if limit > 0 && len(res) >= limit {
			break
		}
	}
	return res, nil
}

func (r *fakeAlertaRepo) UltimaPorItem(_ context.Context, origen, itemID string, rangoMinimo int, desde time.Time) (*alerta.Alerta, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ultima *alerta.Alerta
	for _, id := range r.orden {
		a := r.items[id]
		if a.Origen != origen || a.ItemID != itemID || a.EsTerminal() {
			continue
		}
		if alerta.TierRango(a.TipoAlerta) < rangoMinimo {
			continue
		}
		if a.CreatedAt.Before(desde) {
			continue
		}
		ultima = a
	}
	if ultima == nil {
		return nil, nil
	}
	copia := *ultima
	return &copia, nil
}

func (r *fakeAlertaRepo) ExistePorTipo(_ context.Context, origen, itemID, tipo string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.items {
		if a.Origen == origen && a.ItemID == itemID && a.TipoAlerta == tipo && !a.EsTerminal() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeAlertaRepo) CancelarPendientesPorTipo(_ context.Context, origen, itemID, tipo string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.items {
		if a.Origen == origen && a.ItemID == itemID && a.TipoAlerta == tipo && a.Estado == alerta.EstadoPendiente {
			a.Estado = alerta.EstadoVencida
			n++
		}
	}
	return n, nil
}

func (r *fakeAlertaRepo) CountEnviadasEntre(_ context.Context, desde, hasta time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.items {
		if a.FechaEnviada == nil {
			continue
		}
		if !a.FechaEnviada.Before(desde) && a.FechaEnviada.Before(hasta) {
			n++
		}
	}
	return n, nil
}

func (r *fakeAlertaRepo) BorrarTerminalesAntes(_ context.Context, corte time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.items {
		if a.EsTerminal() && a.CreatedAt.Before(corte) {
			delete(r.items, id)
			n++
		}
	}
	r.reindexar()
	return n, nil
}

func (r *fakeAlertaRepo) BorrarPendientesAntes(_ context.Context, corte time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, a := range r.items {
		if a.Estado == alerta.EstadoPendiente && a.FechaProgramada.Before(corte) {
			delete(r.items, id)
			n++
		}
	}
	r.reindexar()
	return n, nil
}

func (r *fakeAlertaRepo) reindexar() {
	vivos := r.orden[:0]
	for _, id := range r.orden {
		if _, ok := r.items[id]; ok {
			vivos = append(vivos, id)
		}
	}
	r.orden = vivos
}

// porTipo returns the stored alerts of one type, for assertions.
func (r *fakeAlertaRepo) porTipo(tipo string) []*alerta.Alerta {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*alerta.Alerta
	for _, id := range r.orden {
		if a := r.items[id]; a.TipoAlerta == tipo {
			copia := *a
			res = append(res, &copia)
		}
	}
	return res
}

type fakePrestamoRepo struct {
	mu    sync.Mutex
	items map[string]*prestamo.Prestamo
}

func newFakePrestamoRepo() *fakePrestamoRepo {
	return &fakePrestamoRepo{items: make(map[string]*prestamo.Prestamo)}
}

func (r *fakePrestamoRepo) GetByID(_ context.Context, id string) (*prestamo.Prestamo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return nil, xerr.NotFoundf("préstamo %s no encontrado", id)
	}
	copia := *p
	return &copia, nil
}

func (r *fakePrestamoRepo) ListEnMora(_ context.Context) ([]*prestamo.Prestamo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*prestamo.Prestamo
	for _, p := range r.items {
		if p.Estado == prestamo.EstadoVigente || p.Estado == prestamo.EstadoMora {
			copia := *p
			res = append(res, &copia)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

func (r *fakePrestamoRepo) MarcarEnMora(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return xerr.NotFoundf("préstamo %s no encontrado", id)
	}
	if p.Estado == prestamo.EstadoVigente {
		p.Estado = prestamo.EstadoMora
	}
	return nil
}

type fakeDirectorioRepo struct {
	clientes  map[string]*directorio.Cliente
	usuarios  map[string]*directorio.Usuario
	sucursals map[string]*directorio.Sucursal
}

func newFakeDirectorioRepo() *fakeDirectorioRepo {
	return &fakeDirectorioRepo{
		clientes:  make(map[string]*directorio.Cliente),
		usuarios:  make(map[string]*directorio.Usuario),
		sucursals: make(map[string]*directorio.Sucursal),
	}
}

func (r *fakeDirectorioRepo) GetCliente(_ context.Context, id string) (*directorio.Cliente, error) {
	if c, ok := r.clientes[id]; ok {
		return c, nil
	}
	return nil, xerr.NotFoundf("cliente %s no encontrado", id)
}

func (r *fakeDirectorioRepo) GetUsuario(_ context.Context, id string) (*directorio.Usuario, error) {
	if u, ok := r.usuarios[id]; ok {
		return u, nil
	}
	return nil, xerr.NotFoundf("usuario %s no encontrado", id)
}

func (r *fakeDirectorioRepo) GetUsuarioPorUsername(_ context.Context, username string) (*directorio.Usuario, error) {
	for _, u := range r.usuarios {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, xerr.NotFoundf("usuario %s no encontrado", username)
}

func (r *fakeDirectorioRepo) GetSucursal(_ context.Context, id string) (*directorio.Sucursal, error) {
	if s, ok := r.sucursals[id]; ok {
		return s, nil
	}
	return nil, xerr.NotFoundf("sucursal %s no encontrada", id)
}

func (r *fakeDirectorioRepo) ListUsuariosPorRol(_ context.Context, rol string, sucursalID string) ([]*directorio.Usuario, error) {
	var res []*directorio.Usuario
	for _, u := range r.usuarios {
		if u.Rol != rol || !u.Activo {
			continue
		}
		if sucursalID != "" && u.SucursalID != sucursalID {
			continue
		}
		res = append(res, u)
	}
	sort.Slice(res, func(i, j int) bool { return res[i].ID < res[j].ID })
	return res, nil
}

type fakeHistorialRepo struct {
	mu      sync.Mutex
	eventos []*historial.Evento
}

func newFakeHistorialRepo() *fakeHistorialRepo {
	return &fakeHistorialRepo{}
}

func (r *fakeHistorialRepo) Append(_ context.Context, e *historial.Evento) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := *e
	r.eventos = append(r.eventos, &copia)
	return nil
}

func (r *fakeHistorialRepo) ListPorItem(_ context.Context, origen, itemID string) ([]*historial.Evento, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var res []*historial.Evento
	for _, e := range r.eventos {
		if e.Origen == origen && e.ItemID == itemID {
			copia := *e
			res = append(res, &copia)
		}
	}
	return res, nil
}

// relojMovil is a clock the test advances by hand.
type relojMovil struct {
	instante time.Time
}

func (r *relojMovil) Now() time.Time {
	return r.instante
}

func (r *relojMovil) avanzar(d time.Duration) {
	r.instante = r.instante.Add(d)
}

// fakeDispatcher scripts delivery outcomes: each call consumes the next
// result from the script; once it runs out, every call succeeds unless
// fallar is set.
type fakeDispatcher struct {
	mu        sync.Mutex
	guion     []notify.ResultadoEnvio
	fallar    bool
	llamadas  int
	entregado []*alerta.Alerta
}

func (d *fakeDispatcher) programar(resultados ...notify.ResultadoEnvio) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.guion = append(d.guion, resultados...)
}

func fallo(msg string) notify.ResultadoEnvio {
	return notify.ResultadoEnvio{
		notify.CanalEmail: {Enviado: false, Error: msg},
		notify.CanalPush:  {Enviado: false, Error: msg},
	}
}

func exito() notify.ResultadoEnvio {
	return notify.ResultadoEnvio{notify.CanalEmail: {Enviado: true}}
}

func (d *fakeDispatcher) Enviar(_ context.Context, a *alerta.Alerta, _ *directorio.Usuario) notify.ResultadoEnvio {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.llamadas++
	var res notify.ResultadoEnvio
	switch {
	case len(d.guion) > 0:
		res = d.guion[0]
		d.guion = d.guion[1:]
	case d.fallar:
		res = fallo("smtp: connection refused")
	default:
		res = exito()
	}
	if res.AlgunoExitoso() {
		copia := *a
		d.entregado = append(d.entregado, &copia)
	}
	return res
}

// publicadorMemoria captures published messages for assertions.
type publicadorMemoria struct {
	mu       sync.Mutex
	mensajes []mq.Message
}

func (p *publicadorMemoria) Publish(_ context.Context, msg mq.Message) (mq.PublishResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mensajes = append(p.mensajes, msg)
	return mq.PublishResult{}, nil
}

func (p *publicadorMemoria) Close() error { return nil }

// porNombre returns the captured messages carrying the given event header.
func (p *publicadorMemoria) porNombre(nombre string) []mq.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	var res []mq.Message
	for _, m := range p.mensajes {
		if m.Headers["evento"] == nombre {
			res = append(res, m)
		}
	}
	return res
}

// usuarioDePrueba builds one active staff member.
func usuarioDePrueba(id, rol, sucursal string) *directorio.Usuario {
	return &directorio.Usuario{
		ID:         id,
		Username:   "u_" + id,
		Nombre:     "Usuario " + id,
		Email:      fmt.Sprintf("%s@banco.test", id),
		Telefono:   "555-0100",
		Rol:        rol,
		SucursalID: sucursal,
		Activo:     true,
	}
}
