package notify

import (
	"context"
	"errors"
	"fmt"
	"net/smtp"

	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/directorio"
)

// EmailConfig carries the SMTP settings from notifyConfig.
type EmailConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

type emailCanal struct {
	cfg EmailConfig
}

func NewEmailCanal(cfg EmailConfig) Canal {
	return &emailCanal{cfg: cfg}
}

func (e *emailCanal) Nombre() string {
	return CanalEmail
}

func (e *emailCanal) Enviar(ctx context.Context, a *alerta.Alerta, destinatario *directorio.Usuario) error {
	if e.cfg.Host == "" {
		return errors.New("smtp no configurado")
	}
	if destinatario == nil || destinatario.Email == "" {
		return errors.New("destinatario sin email")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	var auth smtp.Auth
	if e.cfg.User != "" {
		auth = smtp.PlainAuth("", e.cfg.User, e.cfg.Password, e.cfg.Host)
	}
	cuerpo := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: [%s] %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n%s\r\n",
		e.cfg.From, destinatario.Email, a.NivelUrgencia, a.Titulo, a.Mensaje)

	done := make(chan error, 1)
	go func() {
		done <- smtp.SendMail(addr, auth, e.cfg.From, []string{destinatario.Email}, []byte(cuerpo))
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
