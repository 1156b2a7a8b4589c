package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/delivery/http/middleware"
	"github.com/Beatriz-ux/laudos-dpt/internal/domain/entity"
	"github.com/Beatriz-ux/laudos-dpt/internal/service"
	"github.com/Beatriz-ux/laudos-dpt/pkg/rest/response"
)

type OfficerHandler struct {
	officerService service.OfficerService
}

func NewOfficerHandler(officerService service.OfficerService) *OfficerHandler {
	return &OfficerHandler{officerService: officerService}
}

type CreateOfficerRequest struct {
	Username   string            `json:"username" binding:"required"`
	Email      string            `json:"email" binding:"required"`
	Name       string            `json:"name" binding:"required"`
	Department entity.Department `json:"department" binding:"required"`
	Badge      string            `json:"badge" binding:"required"`
	Password   string            `json:"password" binding:"required,min=6"`
}

func (h *OfficerHandler) Create(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	var req CreateOfficerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	officer, err := h.officerService.Create(c.Request.Context(), service.CreateOfficerInput{
		Username:   req.Username,
		Email:      req.Email,
		Name:       req.Name,
		Department: req.Department,
		Badge:      req.Badge,
		Password:   req.Password,
	}, actor)
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.Created(c, officer)
}

func (h *OfficerHandler) List(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	officers, err := h.officerService.List(c.Request.Context(), actor)
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, officers)
}
