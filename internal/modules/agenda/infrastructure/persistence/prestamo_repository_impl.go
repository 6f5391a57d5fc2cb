package persistence

import (
	"context"
	"errors"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/prestamo"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/pkg/xerr"

	"gorm.io/gorm"
)

type prestamoRepoImpl struct {
	db *gorm.DB
}

func NewPrestamoRepository(db *gorm.DB) repository.PrestamoRepository {
	return &prestamoRepoImpl{db: db}
}

func (r *prestamoRepoImpl) GetByID(ctx context.Context, id string) (*prestamo.Prestamo, error) {
	var p prestamo.Prestamo
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("préstamo %s no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *prestamoRepoImpl) ListEnMora(ctx context.Context) ([]*prestamo.Prestamo, error) {
	hoy := time.Now()
	inicioHoy := time.Date(hoy.Year(), hoy.Month(), hoy.Day(), 0, 0, 0, 0, hoy.Location())
	var items []*prestamo.Prestamo
	err := r.db.WithContext(ctx).
		Where("estado IN ?", []string{prestamo.EstadoVigente, prestamo.EstadoMora}).
		Where("(proximo_pago IS NOT NULL AND proximo_pago < ?) OR (proximo_pago IS NULL AND fecha_vencimiento < ?)", inicioHoy, inicioHoy).
		Find(&items).Error
	return items, err
}

func (r *prestamoRepoImpl) MarcarEnMora(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Model(&prestamo.Prestamo{}).
		Where("id = ? AND estado = ?", id, prestamo.EstadoVigente).
		Updates(map[string]interface{}{
			"estado":     prestamo.EstadoMora,
			"updated_at": time.Now(),
		}).Error
}
