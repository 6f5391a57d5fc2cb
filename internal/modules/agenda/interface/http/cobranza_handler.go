package handler

import (
	"strconv"
	"time"

	"CrediAgenda/internal/modules/agenda/application/dto/request"
	"CrediAgenda/internal/modules/agenda/application/service"
	"CrediAgenda/internal/modules/agenda/domain/repository"
	"CrediAgenda/pkg/back"
	"CrediAgenda/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type CobranzaHandler struct {
	svc service.CobranzaService
}

func NewCobranzaHandler(svc service.CobranzaService) *CobranzaHandler {
	return &CobranzaHandler{svc: svc}
}

func (h *CobranzaHandler) Crear(c *gin.Context) {
	var req request.CrearActividadRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Crear(c.Request.Context(), req, c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *CobranzaHandler) Get(c *gin.Context) {
	data, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *CobranzaHandler) CambiarEstado(c *gin.Context) {
	var req request.CambiarEstadoActividadRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.CambiarEstado(c.Request.Context(), c.Param("id"), req, c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *CobranzaHandler) Completar(c *gin.Context) {
	var req request.CompletarActividadRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Completar(c.Request.Context(), c.Param("id"), req, c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *CobranzaHandler) Reprogramar(c *gin.Context) {
	var req request.ReprogramarActividadRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Reprogramar(c.Request.Context(), c.Param("id"), req, c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *CobranzaHandler) Listar(c *gin.Context) {
	data, err := h.svc.Listar(c.Request.Context(), filtroActividades(c))
	back.Result(c, data, err)
}

// AgendaHoy returns the caller's activities scheduled for today.
func (h *CobranzaHandler) AgendaHoy(c *gin.Context) {
	usuarioID := c.Query("usuario_id")
	if usuarioID == "" {
		usuarioID = c.GetString("uuid")
	}
	data, err := h.svc.AgendaHoy(c.Request.Context(), usuarioID)
	back.Result(c, data, err)
}

// PromesasVencidas lists payment promises whose agreed date already passed.
func (h *CobranzaHandler) PromesasVencidas(c *gin.Context) {
	data, err := h.svc.PromesasVencidas(c.Request.Context(), c.Query("usuario_id"))
	back.Result(c, data, err)
}

func (h *CobranzaHandler) Dashboard(c *gin.Context) {
	data, err := h.svc.Dashboard(c.Request.Context(), filtroActividades(c))
	back.Result(c, data, err)
}

func (h *CobranzaHandler) Historial(c *gin.Context) {
	data, err := h.svc.Historial(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func filtroActividades(c *gin.Context) repository.FiltroActividades {
	f := repository.FiltroActividades{
		ClienteID:  c.Query("cliente_id"),
		PrestamoID: c.Query("prestamo_id"),
		UsuarioID:  c.Query("usuario_id"),
		SucursalID: c.Query("sucursal_id"),
		Estado:     c.Query("estado"),
		Tipo:       c.Query("tipo"),
	}
	f.Limit, _ = strconv.Atoi(c.DefaultQuery("limit", "50"))
	f.Offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	if desde, err := time.Parse("2006-01-02", c.Query("desde")); err == nil {
		f.Desde = &desde
	}
	if hasta, err := time.Parse("2006-01-02", c.Query("hasta")); err == nil {
		f.Hasta = &hasta
	}
	return f
}
