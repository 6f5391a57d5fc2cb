package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"CrediAgenda/internal/modules/agenda/domain/alerta"
	"CrediAgenda/internal/modules/agenda/domain/directorio"
)

// SmsConfig carries the SMS gateway settings from notifyConfig.
type SmsConfig struct {
	URL    string
	APIKey string
}

type smsCanal struct {
	cfg    SmsConfig
	client *http.Client
}

func NewSmsCanal(cfg SmsConfig) Canal {
	return &smsCanal{cfg: cfg, client: &http.Client{}}
}

func (s *smsCanal) Nombre() string {
	return CanalSms
}

func (s *smsCanal) Enviar(ctx context.Context, a *alerta.Alerta, destinatario *directorio.Usuario) error {
	if s.cfg.URL == "" {
		return errors.New("gateway sms no configurado")
	}
	if destinatario == nil || destinatario.Telefono == "" {
		return errors.New("destinatario sin teléfono")
	}

	payload, err := json.Marshal(map[string]string{
		"to":      destinatario.Telefono,
		"message": a.Titulo + ": " + a.Mensaje,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if s.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("gateway sms respondió %d", resp.StatusCode)
	}
	return nil
}
