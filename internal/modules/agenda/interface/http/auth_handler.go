package handler

import (
	"CrediAgenda/internal/modules/agenda/application/dto/request"
	"CrediAgenda/internal/modules/agenda/application/service"
	"CrediAgenda/pkg/back"
	"CrediAgenda/pkg/xerr"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc service.SesionService
}

func NewAuthHandler(svc service.SesionService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req request.LoginRequest
	if err := c.BindJSON(&req); err != nil {
		back.Error(c, xerr.BadRequest, xerr.ErrParam.Message)
		return
	}
	data, err := h.svc.Login(c.Request.Context(), req)
	back.Result(c, data, err)
}
