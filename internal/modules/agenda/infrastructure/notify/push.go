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
	"CrediAgenda/pkg/ws"
)

// PushConfig carries the push provider settings from notifyConfig.
type PushConfig struct {
	URL    string
	APIKey string
}

type pushCanal struct {
	cfg    PushConfig
	hub    *ws.Hub
	client *http.Client
}

// NewPushCanal delivers over the websocket hub when the recipient is
// connected, falling back to the external push provider otherwise.
func NewPushCanal(cfg PushConfig, hub *ws.Hub) Canal {
	return &pushCanal{cfg: cfg, hub: hub, client: &http.Client{}}
}

func (p *pushCanal) Nombre() string {
	return CanalPush
}

type pushPayload struct {
	AlertaID      string `json:"alerta_id"`
	Tipo          string `json:"tipo"`
	NivelUrgencia string `json:"nivel_urgencia"`
	Titulo        string `json:"titulo"`
	Mensaje       string `json:"mensaje"`
}

func (p *pushCanal) Enviar(ctx context.Context, a *alerta.Alerta, destinatario *directorio.Usuario) error {
	if destinatario == nil {
		return errors.New("destinatario vacío")
	}

	cuerpo := pushPayload{
		AlertaID:      a.ID,
		Tipo:          a.TipoAlerta,
		NivelUrgencia: a.NivelUrgencia,
		Titulo:        a.Titulo,
		Mensaje:       a.Mensaje,
	}

	if p.hub != nil && p.hub.SendJSON(destinatario.ID, cuerpo) {
		return nil
	}

	if p.cfg.URL == "" {
		return errors.New("usuario desconectado y proveedor push no configurado")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"user_id":      destinatario.ID,
		"notification": cuerpo,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if p.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("proveedor push respondió %d", resp.StatusCode)
	}
	return nil
}
