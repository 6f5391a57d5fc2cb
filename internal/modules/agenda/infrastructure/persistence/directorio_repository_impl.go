package persistence

import (
	"context"
	"errors"

	"CrediAgenda/internal/modules/agenda/domain/directorio"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/pkg/xerr"

	"gorm.io/gorm"
)

type directorioRepoImpl struct {
	db *gorm.DB
}

func NewDirectorioRepository(db *gorm.DB) repository.DirectorioRepository {
	return &directorioRepoImpl{db: db}
}

func (r *directorioRepoImpl) GetCliente(ctx context.Context, id string) (*directorio.Cliente, error) {
	var c directorio.Cliente
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("cliente %s no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *directorioRepoImpl) GetUsuario(ctx context.Context, id string) (*directorio.Usuario, error) {
	var u directorio.Usuario
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("usuario %s no encontrado", id)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *directorioRepoImpl) GetUsuarioPorUsername(ctx context.Context, username string) (*directorio.Usuario, error) {
	var u directorio.Usuario
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("usuario %s no encontrado", username)
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *directorioRepoImpl) GetSucursal(ctx context.Context, id string) (*directorio.Sucursal, error) {
	var s directorio.Sucursal
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, xerr.NotFoundf("sucursal %s no encontrada", id)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *directorioRepoImpl) ListUsuariosPorRol(ctx context.Context, rol string, sucursalID string) ([]*directorio.Usuario, error) {
	q := r.db.WithContext(ctx).Where("rol = ? AND activo = ?", rol, true)
	if sucursalID != "" {
		q = q.Where("sucursal_id = ?", sucursalID)
	}
	var items []*directorio.Usuario
	err := q.Find(&items).Error
	return items, err
}
