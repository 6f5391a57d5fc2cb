package persistence

import (
	"context"
	"errors"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/pkg/xerr"

	"gorm.io/gorm"
)

type alertaRepoImpl struct {
	db *gorm.DB
}

func NewAlertaRepository(db *gorm.DB) repository.AlertaRepository {
	return &alertaRepoImpl{db: db}
}

var estadosTerminalesAlerta = []string{
	alerta.EstadoAtendida,
	alerta.EstadoIgnorada,
	alerta.EstadoVencida,
}

func (r *alertaRepoImpl) Create(ctx context.Context, a *alerta.Alerta) error {
	return r.db.WithContext(ctx).Create(a).Error
}

func (r *alertaRepoImpl) GetByID(ctx context.Context, id string) (*alerta.Alerta, error) {
	var a alerta.Alerta
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("alerta %s no encontrada", id)
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *alertaRepoImpl) List(ctx context.Context, filtro repository.FiltroAlertas) ([]*alerta.Alerta, error) {
	q := r.db.WithContext(ctx).Model(&alerta.Alerta{})
	if filtro.UsuarioID != "" {
		q = q.Where("usuario_destinatario_id = ?", filtro.UsuarioID)
	}
	if filtro.Origen != "" {
		q = q.Where("origen = ?", filtro.Origen)
	}
	if filtro.ItemID != "" {
		q = q.Where("item_id = ?", filtro.ItemID)
	}
	if filtro.Estado != "" {
		q = q.Where("estado = ?", filtro.Estado)
	}
	if filtro.SoloActivas {
		q = q.Where("estado NOT IN ?", estadosTerminalesAlerta)
	}
	q = q.Order("fecha_programada DESC")
	if filtro.Limit > 0 {
		q = q.Limit(filtro.Limit).Offset(filtro.Offset)
	}
	var items []*alerta.Alerta
	err := q.Find(&items).Error
	return items, err
}

func (r *alertaRepoImpl) CambiarEstado(ctx context.Context, id string, estadoActual string, campos map[string]interface{}) (bool, error) {
	campos["updated_at"] = time.Now()
	res := r.db.WithContext(ctx).Model(&alerta.Alerta{}).
		Where("id = ? AND estado = ?", id, estadoActual).
		Updates(campos)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *alertaRepoImpl) ListPendientesDue(ctx context.Context, corte time.Time, limit int) ([]*alerta.Alerta, error) {
	var items []*alerta.Alerta
	q := r.db.WithContext(ctx).
		Where("estado = ? AND fecha_programada <= ?", alerta.EstadoPendiente, corte).
		Order("fecha_programada ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&items).Error
	return items, err
}

func (r *alertaRepoImpl) UltimaPorItem(ctx context.Context, origen, itemID string, rangoMinimo int, desde time.Time) (*alerta.Alerta, error) {
	tipos := make([]string, 0, 3)
	for _, tipo := range []string{alerta.TipoSla75, alerta.TipoSla90, alerta.TipoSlaVencido} {
		if alerta.TierRango(tipo) >= rangoMinimo {
			tipos = append(tipos, tipo)
		}
	}
	var a alerta.Alerta
	err := r.db.WithContext(ctx).
		Where("origen = ? AND item_id = ?", origen, itemID).
		Where("tipo_alerta IN ?", tipos).
		Where("estado NOT IN ?", estadosTerminalesAlerta).
		Where("created_at >= ?", desde).
		Order("created_at DESC").
		First(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *alertaRepoImpl) ExistePorTipo(ctx context.Context, origen, itemID, tipo string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&alerta.Alerta{}).
		Where("origen = ? AND item_id = ? AND tipo_alerta = ?", origen, itemID, tipo).
		Where("estado NOT IN ?", estadosTerminalesAlerta).
		Count(&count).Error
	return count > 0, err
}

func (r *alertaRepoImpl) CancelarPendientesPorTipo(ctx context.Context, origen, itemID, tipo string) (int64, error) {
	res := r.db.WithContext(ctx).Model(&alerta.Alerta{}).
		Where("origen = ? AND item_id = ? AND tipo_alerta = ? AND estado = ?",
			origen, itemID, tipo, alerta.EstadoPendiente).
		Updates(map[string]interface{}{
			"estado":     alerta.EstadoVencida,
			"updated_at": time.Now(),
		})
	return res.RowsAffected, res.Error
}

func (r *alertaRepoImpl) CountEnviadasEntre(ctx context.Context, desde, hasta time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&alerta.Alerta{}).
		Where("fecha_enviada IS NOT NULL AND fecha_enviada >= ? AND fecha_enviada < ?", desde, hasta).
		Count(&count).Error
	return count, err
}

func (r *alertaRepoImpl) BorrarTerminalesAntes(ctx context.Context, corte time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("estado IN ? AND updated_at < ?", estadosTerminalesAlerta, corte).
		Delete(&alerta.Alerta{})
	return res.RowsAffected, res.Error
}

func (r *alertaRepoImpl) BorrarPendientesAntes(ctx context.Context, corte time.Time) (int64, error) {
	res := r.db.WithContext(ctx).
		Where("estado = ? AND fecha_programada < ?", alerta.EstadoPendiente, corte).
		Delete(&alerta.Alerta{})
	return res.RowsAffected, res.Error
}
