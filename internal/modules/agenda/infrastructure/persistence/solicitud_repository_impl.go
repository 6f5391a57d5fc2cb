package persistence

import (
	"context"
	"errors"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/internal/modules/agenda/domain/solicitud"
	"CrediAgenda/pkg/xerr"

	"gorm.io/gorm"
)

type solicitudRepoImpl struct {
	db *gorm.DB
}

func NewSolicitudRepository(db *gorm.DB) repository.SolicitudRepository {
	return &solicitudRepoImpl{db: db}
}

func (r *solicitudRepoImpl) Create(ctx context.Context, s *solicitud.Solicitud) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *solicitudRepoImpl) GetByID(ctx context.Context, id string) (*solicitud.Solicitud, error) {
	var s solicitud.Solicitud
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("solicitud %s no encontrada", id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *solicitudRepoImpl) GetByNumero(ctx context.Context, numero string) (*solicitud.Solicitud, error) {
	var s solicitud.Solicitud
	err := r.db.WithContext(ctx).Where("numero_solicitud = ?", numero).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("solicitud %s no encontrada", numero)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func aplicarFiltroSolicitudes(q *gorm.DB, f repository.FiltroSolicitudes) *gorm.DB {
	if f.ClienteID != "" {
		q = q.Where("cliente_id = ?", f.ClienteID)
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
		q = q.Where("tipo_solicitud = ?", f.Tipo)
	}
	if f.Prioridad != "" {
		q = q.Where("prioridad = ?", f.Prioridad)
	}
	if f.Desde != nil {
		q = q.Where("fecha_solicitud >= ?", *f.Desde)
	}
	if f.Hasta != nil {
		q = q.Where("fecha_solicitud <= ?", *f.Hasta)
	}
	return q
}

func (r *solicitudRepoImpl) List(ctx context.Context, filtro repository.FiltroSolicitudes) ([]*solicitud.Solicitud, error) {
	var items []*solicitud.Solicitud
	q := aplicarFiltroSolicitudes(r.db.WithContext(ctx).Model(&solicitud.Solicitud{}), filtro).
		Order("fecha_solicitud DESC")
	if filtro.Limit > 0 {
		q = q.Limit(filtro.Limit).Offset(filtro.Offset)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *solicitudRepoImpl) UpdateCampos(ctx context.Context, id string, campos map[string]interface{}) error {
	campos["updated_at"] = time.Now()
	return r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).
		Where("id = ?", id).
		Updates(campos).Error
}

func (r *solicitudRepoImpl) CambiarEstado(ctx context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error) {
	campos["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).
		Where("id = ? AND estado = ?", id, estadoActual).
		Updates(campos)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *solicitudRepoImpl) SiguienteSecuencia(ctx context.Context, prefijo string) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).
		Where("numero_solicitud LIKE ?", prefijo+"%").
		Count(&count).Error
	return int(count) + 1, err
}

func (r *solicitudRepoImpl) ListVencibles(ctx context.Context, corte time.Time) ([]*solicitud.Solicitud, error) {
	var items []*solicitud.Solicitud
	err := r.db.WithContext(ctx).
		Where("estado NOT IN ?", estadosTerminalesSolicitud).
		Where("(fecha_vencimiento IS NOT NULL AND fecha_vencimiento < ?) OR (fecha_vencimiento IS NULL AND fecha_limite_respuesta < ?)", corte, corte).
		Find(&items).Error
	return items, err
}

func (r *solicitudRepoImpl) ListAbiertasSLA(ctx context.Context) ([]*solicitud.Solicitud, error) {
	var items []*solicitud.Solicitud
	err := r.db.WithContext(ctx).
		Where("estado IN ?", []string{
			solicitud.EstadoRecibida,
			solicitud.EstadoEnRevision,
			solicitud.EstadoDocumentosPendientes,
		}).
		Find(&items).Error
	return items, err
}

func (r *solicitudRepoImpl) ListProximasAVencer(ctx context.Context, desde time.Time, limit int) ([]*solicitud.Solicitud, error) {
	var items []*solicitud.Solicitud
	err := r.db.WithContext(ctx).
		Where("estado NOT IN ?", estadosTerminalesSolicitud).
		Where("fecha_limite_respuesta >= ?", desde).
		Order("fecha_limite_respuesta ASC").
		Limit(limit).
		Find(&items).Error
	return items, err
}

func (r *solicitudRepoImpl) ListSeguimientosDue(ctx context.Context, corte time.Time) ([]*solicitud.Solicitud, error) {
	var items []*solicitud.Solicitud
	err := r.db.WithContext(ctx).
		Where("requiere_seguimiento = ? AND fecha_proximo_seguimiento IS NOT NULL AND fecha_proximo_seguimiento <= ?", true, corte).
		Where("estado NOT IN ?", estadosTerminalesSolicitud).
		Find(&items).Error
	return items, err
}

func (r *solicitudRepoImpl) CountCreadasEntre(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&solicitud.Solicitud{}).
		Where("fecha_solicitud >= ? AND fecha_solicitud < ?", desde, hasta).
		Count(&count).Error
	return count, err
}

func (r *solicitudRepoImpl) ListCompletadasEntre(ctx context.Context, desde, hasta time.Time) ([]*solicitud.Solicitud, error) {
	var items []*solicitud.Solicitud
	err := r.db.WithContext(ctx).
		Where("fecha_completada IS NOT NULL AND fecha_completada >= ? AND fecha_completada < ?", desde, hasta).
		Find(&items).Error
	return items, err
}

func (r *solicitudRepoImpl) CountPorEstado(ctx context.Context, filtro repository.FiltroSolicitudes) (map[string]int64, error) {
	type fila struct {
		Estado string
		Total  int64
	}
	var filas []fila
	err := aplicarFiltroSolicitudes(r.db.WithContext(ctx).Model(&solicitud.Solicitud{}), filtro).
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

var estadosTerminalesSolicitud = []string{
	solicitud.EstadoCompletada,
	solicitud.EstadoDesembolsada,
	solicitud.EstadoRechazada,
	solicitud.EstadoCancelada,
	solicitud.EstadoVencida,
}
