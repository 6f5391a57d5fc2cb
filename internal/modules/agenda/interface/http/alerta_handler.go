package handler

import (
	"strconv"

	"CrediAgenda/internal/modules/agenda/application/service"
	"CrediAgenda/pkg/back"

	"github.com/gin-gonic/gin"
)

type AlertaHandler struct {
	svc service.AlertaService
}

func NewAlertaHandler(svc service.AlertaService) *AlertaHandler {
	return &AlertaHandler{svc: svc}
}

// Listar returns the caller's alert inbox. soloActivas limits to alerts that
// still ask for attention.
func (h *AlertaHandler) Listar(c *gin.Context) {
	usuarioID := c.Query("usuario_id")
	if usuarioID == "" {
		usuarioID = c.GetString("uuid")
	}
	soloActivas := c.DefaultQuery("solo_activas", "true") == "true"
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	data, err := h.svc.ListarPorUsuario(c.Request.Context(), usuarioID, soloActivas, limit, offset)
	back.Result(c, data, err)
}

func (h *AlertaHandler) MarcarLeida(c *gin.Context) {
	err := h.svc.MarcarLeida(c.Request.Context(), c.Param("id"))
	back.Result(c, nil, err)
}

func (h *AlertaHandler) MarcarAtendida(c *gin.Context) {
	err := h.svc.MarcarAtendida(c.Request.Context(), c.Param("id"))
	back.Result(c, nil, err)
}
