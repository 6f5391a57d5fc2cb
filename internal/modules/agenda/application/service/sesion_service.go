package service

import (
	"context"

	"CrediAgenda/internal/modules/agenda/application/dto/request"
	"CrediAgenda/internal/modules/agenda/application/dto/respond"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/pkg/util/myjwt"
	"CrediAgenda/pkg/xerr"
	"CrediAgenda/pkg/zlog"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var errCredenciales = xerr.New(xerr.Unauthorized, "usuario o contraseña incorrectos")

type SesionService interface {
	Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error)
}

type sesionServiceImpl struct {
	directorio repository.DirectorioRepository
}

func NewSesionService(directorio repository.DirectorioRepository) SesionService {
	return &sesionServiceImpl{directorio: directorio}
}

func (s *sesionServiceImpl) Login(ctx context.Context, req request.LoginRequest) (*respond.LoginRespond, error) {
	usuario, err := s.directorio.GetUsuarioPorUsername(ctx, req.Username)
	if err != nil {
		// Same answer for unknown user and bad password.
		return nil, errCredenciales
	}
	if !usuario.Activo {
		return nil, errCredenciales
	}
	if err := bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(req.Password)); err != nil {
		return nil, errCredenciales
	}

	token, err := myjwt.GenerateToken(usuario.ID, usuario.Username, usuario.Rol)
	if err != nil {
		zlog.Error("no se pudo emitir token", zap.String("username", req.Username), zap.Error(err))
		return nil, xerr.ErrServerError
	}

	zlog.Info("sesión iniciada", zap.String("username", usuario.Username), zap.String("rol", usuario.Rol))
	return &respond.LoginRespond{
		Token:      token,
		UsuarioID:  usuario.ID,
		Username:   usuario.Username,
		Nombre:     usuario.Nombre,
		Rol:        usuario.Rol,
		SucursalID: usuario.SucursalID,
	}, nil
}
