package persistence

import (
	"context"

	"CrediAgenda/internal/modules/agenda/domain/historial"
	"CrediAgenda/internal/modules/agenda/domain/repository"

	"gorm.io/gorm"
)

type historialRepoImpl struct {
	db *gorm.DB
}

func NewHistorialRepository(db *gorm.DB) repository.HistorialRepository {
	return &historialRepoImpl{db: db}
}

func (r *historialRepoImpl) Append(ctx context.Context, e *historial.Evento) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *historialRepoImpl) ListPorItem(ctx context.Context, origen, itemID string) ([]*historial.Evento, error) {
	var items []*historial.Evento
	err := r.db.WithContext(ctx).
		Where("origen = ? AND item_id = ?", origen, itemID).
		Order("fecha_evento ASC").
		Find(&items).Error
	return items, err
}
