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

type SolicitudHandler struct {
	svc service.SolicitudService
}

func NewSolicitudHandler(svc service.SolicitudService) *SolicitudHandler {
	return &SolicitudHandler{svc: svc}
}

func (h *SolicitudHandler) Crear(c *gin.Context) {
	var req request.CrearSolicitudRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Crear(c.Request.Context(), req, c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *SolicitudHandler) Get(c *gin.Context) {
	data, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func (h *SolicitudHandler) CambiarEstado(c *gin.Context) {
	var req request.CambiarEstadoSolicitudRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.CambiarEstado(c.Request.Context(), c.Param("id"), req, c.GetString("uuid"))
	back.Result(c, data, err)
}

func (h *SolicitudHandler) Asignar(c *gin.Context) {
	var req request.AsignarSolicitudRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	err := h.svc.Asignar(c.Request.Context(), c.Param("id"), req, c.GetString("uuid"))
	back.Result(c, nil, err)
}

func (h *SolicitudHandler) ProgramarSeguimiento(c *gin.Context) {
	var req request.SeguimientoSolicitudRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	err := h.svc.ProgramarSeguimiento(c.Request.Context(), c.Param("id"), req, c.GetString("uuid"))
	back.Result(c, nil, err)
}

func (h *SolicitudHandler) Listar(c *gin.Context) {
	data, err := h.svc.Listar(c.Request.Context(), filtroSolicitudes(c))
	back.Result(c, data, err)
}

func (h *SolicitudHandler) ListarVencidas(c *gin.Context) {
	data, err := h.svc.ListarVencidas(c.Request.Context())
	back.Result(c, data, err)
}

func (h *SolicitudHandler) Dashboard(c *gin.Context) {
	data, err := h.svc.Dashboard(c.Request.Context(), filtroSolicitudes(c))
	back.Result(c, data, err)
}

func (h *SolicitudHandler) Historial(c *gin.Context) {
	data, err := h.svc.Historial(c.Request.Context(), c.Param("id"))
	back.Result(c, data, err)
}

func filtroSolicitudes(c *gin.Context) repository.FiltroSolicitudes {
	f := repository.FiltroSolicitudes{
		ClienteID:  c.Query("cliente_id"),
		UsuarioID:  c.Query("usuario_id"),
		SucursalID: c.Query("sucursal_id"),
		Estado:     c.Query("estado"),
		Tipo:       c.Query("tipo"),
		Prioridad:  c.Query("prioridad"),
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
