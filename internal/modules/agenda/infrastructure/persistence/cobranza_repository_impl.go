package persistence

import (
	"context"
	"errors"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/cobranza"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/pkg/xerr"

	"gorm.io/gorm"
)

type cobranzaRepoImpl struct {
	db *gorm.DB
}

func NewCobranzaRepository(db *gorm.DB) repository.CobranzaRepository {
	return &cobranzaRepoImpl{db: db}
}

func (r *cobranzaRepoImpl) Create(ctx context.Context, a *cobranza.Actividad) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *cobranzaRepoImpl) GetByID(ctx context.Context, id string) (*cobranza.Actividad, error) {
	var a cobranza.Actividad
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("actividad %s no encontrada", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func aplicarFiltroActividades(q *gorm.DB, f repository.FiltroActividades) *gorm.DB {
	if f.ClienteID != "" {
		q = q.Where("cliente_id = ?", f.ClienteID)
	}
	if f.PrestamoID != "" {
		q = q.Where("prestamo_id = ?", f.PrestamoID)
	}
	if f.UsuarioID != "" {
		q = q.Where("usuario_asignado_id = ?", f.UsuarioID)
	}
	if f.SucursalID != "" {
		q = q.Where("sucursal_id = ?", f.SucursalID)
	}
	if f.Estado != "" {
		q = q.Where("estado = ?", f.Estado)
	}
	if f.Tipo != "" {
		q = q.Where("tipo_actividad = ?", f.Tipo)
	}
	if f.Desde != nil {
		q = q.Where("fecha_programada >= ?", *f.Desde)
	}
	if f.Hasta != nil {
		q = q.Where("fecha_programada <= ?", *f.Hasta)
	}
	return q
}

func (r *cobranzaRepoImpl) List(ctx context.Context, filtro repository.FiltroActividades) ([]*cobranza.Actividad, error) {
	var items []*cobranza.Actividad
	q := aplicarFiltroActividades(r.db.WithContext(ctx).Model(&cobranza.Actividad{}), filtro).
		Order("fecha_programada ASC, hora_inicio ASC")
	if filtro.Limit > 0 {
		q = q.Limit(filtro.Limit).Offset(filtro.Offset)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *cobranzaRepoImpl) UpdateCampos(ctx context.Context, id string, campos map[string]interface{}) error {
	campos["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&cobranza.Actividad{}).
		Where("id = ?", id).
		Updates(campos).Error
}

func (r *cobranzaRepoImpl) CambiarEstado(ctx context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error) {
	campos["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&cobranza.Actividad{}).
		Where("id = ? AND estado = ?", id, estadoActual).
		Updates(campos)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *cobranzaRepoImpl) ListVencibles(ctx context.Context, corte time.Time) ([]*cobranza.Actividad, error) {
	// Without an explicit deadline the activity expires at the end of its
	// scheduled day, so any fecha_programada before today's midnight is past
	// due.
	inicioHoy := time.Date(corte.Year(), corte.Month(), corte.Day(), 0, 0, 0, 0, corte.Location())
	var items []*cobranza.Actividad
	err := r.db.WithContext(ctx).
		Where("estado IN ?", []string{cobranza.EstadoProgramada, cobranza.EstadoEnProceso}).
		Where("(fecha_vencimiento IS NOT NULL AND fecha_vencimiento < ?) OR (fecha_vencimiento IS NULL AND fecha_programada < ?)", corte, inicioHoy).
		Find(&items).Error
	return items, err
}

func (r *cobranzaRepoImpl) ListProgramadasEnFecha(ctx context.Context, fecha time.Time) ([]*cobranza.Actividad, error) {
	inicio := time.Date(fecha.Year(), fecha.Month(), fecha.Day(), 0, 0, 0, 0, fecha.Location())
	fin := inicio.AddDate(0, 0, 1)
	var items []*cobranza.Actividad
	err := r.db.WithContext(ctx).
		Where("fecha_programada >= ? AND fecha_programada < ?", inicio, fin).
		Where("estado = ?", cobranza.EstadoProgramada).
		Order("hora_inicio ASC").
		Find(&items).Error
	return items, err
}

func (r *cobranzaRepoImpl) ListConAlertaPreviaDue(ctx context.Context, corte time.Time) ([]*cobranza.Actividad, error) {
	// The minute-level window check happens in memory; the query narrows to
	// today's and tomorrow's pending activities with the flag unset.
	inicio := time.Date(corte.Year(), corte.Month(), corte.Day(), 0, 0, 0, 0, corte.Location())
	fin := inicio.AddDate(0, 0, 2)
	var items []*cobranza.Actividad
	err := r.db.WithContext(ctx).
		Where("estado = ?", cobranza.EstadoProgramada).
		Where("generar_alerta_previa = ? AND alerta_generada = ?", true, false).
		Where("fecha_programada >= ? AND fecha_programada < ?", inicio, fin).
		Find(&items).Error
	return items, err
}

func (r *cobranzaRepoImpl) ListPromesasIncumplidas(ctx context.Context, corte time.Time) ([]*cobranza.Actividad, error) {
	var items []*cobranza.Actividad
	err := r.db.WithContext(ctx).
		Where("estado = ? AND resultado = ?", cobranza.EstadoCompletada, cobranza.ResultadoPromesaPago).
		Where("fecha_promesa_pago IS NOT NULL AND fecha_promesa_pago <= ?", corte).
		Where("promesa_incumplida = ?", false).
		Find(&items).Error
	return items, err
}

func (r *cobranzaRepoImpl) ListPromesasVencidas(ctx context.Context, corte time.Time, usuarioID string) ([]*cobranza.Actividad, error) {
	q := r.db.WithContext(ctx).
		Where("resultado = ?", cobranza.ResultadoPromesaPago).
		Where("fecha_promesa_pago IS NOT NULL AND fecha_promesa_pago <= ?", corte)
	if usuarioID != "" {
		q = q.Where("usuario_asignado_id = ?", usuarioID)
	}
	var items []*cobranza.Actividad
	err := q.Order("fecha_promesa_pago ASC").Find(&items).Error
	return items, err
}

func (r *cobranzaRepoImpl) ExisteActividadReciente(ctx context.Context, prestamoID string, desde time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&cobranza.Actividad{}).
		Where("prestamo_id = ? AND created_at >= ?", prestamoID, desde).
		Count(&count).Error
	return count > 0, err
}

func (r *cobranzaRepoImpl) ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]*cobranza.Actividad, error) {
	var items []*cobranza.Actividad
	err := r.db.WithContext(ctx).
		Where("estado = ?", cobranza.EstadoCompletada).
		Where("fecha_fin_real >= ? AND fecha_fin_real < ?", desde, hasta).
		Find(&items).Error
	return items, err
}

func (r *cobranzaRepoImpl) CountPorEstado(ctx context.Context, filtro repository.FiltroActividades) (map[string]int64, error) {
	type fila struct {
		Estado string
		Total  int64
	}
	var filas []fila
	err := aplicarFiltroActividades(r.db.WithContext(ctx).Model(&cobranza.Actividad{}), filtro).
		Select("estado, COUNT(*) AS total").
		Group("estado").
		Scan(&filas).Error
	if err != nil {
		return nil, err
	}
	res := make(map[string]int64, len(filas))
	for _, f := range filas {
		res[f.Estado] = f.Total
	}
	return res, nil
}
