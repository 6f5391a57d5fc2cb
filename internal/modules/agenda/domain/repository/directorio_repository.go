package repository

import (
	"context"

	"CrediAgenda/internal/modules/agenda/domain/directorio"
)

type DirectorioRepository interface {
	GetCliente(ctx context.Context, id string) (*directorio.Cliente, error)
	GetUsuario(ctx context.Context, id string) (*directorio.Usuario, error)
	GetUsuarioPorUsername(ctx context.Context, username string) (*directorio.Usuario, error)
	GetSucursal(ctx context.Context, id string) (*directorio.Sucursal, error)

	// ListUsuariosPorRol returns active staff carrying the role, optionally
	// limited to one branch (empty sucursalID means all branches).
	ListUsuariosPorRol(ctx context.Context, rol string, sucursalID string) ([]*directorio.Usuario, error)
}
