package notify

import (
	"context"
	"strings"
	"time"

	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/directorio"
	"CrediAgenda/pkg/zlog"

	"go.uber.org/zap"
)

// Channel names.
const (
	CanalEmail = "email"
	CanalSms   = "sms"
	CanalPush  = "push"
)

// TimeoutCanal bounds one channel call; a timeout counts as a channel
// failure, never as a crash of the sweep.
const TimeoutCanal = 10 * time.Second

// ResultadoCanal is the outcome of one channel attempt.
type ResultadoCanal struct {
	Enviado bool
	Error   string
}

// ResultadoEnvio maps channel name to its outcome.
type ResultadoEnvio map[string]ResultadoCanal

// AlgunoExitoso reports whether at least one channel delivered.
func (r ResultadoEnvio) AlgunoExitoso() bool {
	for _, res := range r {
		if res.Enviado {
			return true
		}
	}
	return false
}

// ResumenErrores joins the per-channel errors for the alert's error field.
func (r ResultadoEnvio) ResumenErrores() string {
	var partes []string
	for canal, res := range r {
		if !res.Enviado && res.Error != "" {
			partes = append(partes, canal+": "+res.Error)
		}
	}
	return strings.Join(partes, "; ")
}

// Dispatcher fans one alert out over its enabled channels.
type Dispatcher interface {
	Enviar(ctx context.Context, a *alerta.Alerta, destinatario *directorio.Usuario) ResultadoEnvio
}

// Canal is one delivery mechanism.
type Canal interface {
	Nombre() string
	Enviar(ctx context.Context, a *alerta.Alerta, destinatario *directorio.Usuario) error
}

type multiDispatcher struct {
	canales []Canal
}

// NewDispatcher builds a dispatcher over the given channels.
func NewDispatcher(canales ...Canal) Dispatcher {
	return &multiDispatcher{canales: canales}
}

func habilitado(a *alerta.Alerta, canal string) bool {
	switch canal {
	case CanalEmail:
		return a.EnviarEmail
	case CanalSms:
		return a.EnviarSms
	case CanalPush:
		return a.EnviarPush
	}
	return false
}

func (d *multiDispatcher) Enviar(ctx context.Context, a *alerta.Alerta, destinatario *directorio.Usuario) ResultadoEnvio {
	resultado := make(ResultadoEnvio, len(d.canales))
	for _, canal := range d.canales {
		if !habilitado(a, canal.Nombre()) {
			continue
		}
		cctx, cancel := context.WithTimeout(ctx, TimeoutCanal)
		err := canal.Enviar(cctx, a, destinatario)
		cancel()
		if err != nil {
			resultado[canal.Nombre()] = ResultadoCanal{Error: err.Error()}
			zlog.Warn("envío de alerta falló",
				zap.String("alerta_id", a.ID),
				zap.String("canal", canal.Nombre()),
				zap.Error(err))
			continue
		}
		resultado[canal.Nombre()] = ResultadoCanal{Enviado: true}
	}
	return resultado
}
