package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/delivery/http/middleware"
	"github.com/Beatriz-ux/laudos-dpt/internal/service"
	"github.com/Beatriz-ux/laudos-dpt/pkg/rest/response"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type LoginRequest struct {
	Email       string `json:"email" binding:"required"`
	Password    string `json:"password" binding:"required"`
	NewPassword string `json:"new_password"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, err.Error())
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password, req.NewPassword)
	if err != nil {
		// Primeiro acesso com senha provisória: o cliente reapresenta
		// o formulário pedindo a senha definitiva
		if errors.Is(err, service.ErrMustChangePassword) {
			c.JSON(http.StatusOK, gin.H{
				"success":              false,
				"must_change_password": true,
				"error":                "É necessário trocar a senha no primeiro acesso",
			})
			return
		}
		response.ResolveError(c, err)
		return
	}

	response.OK(c, gin.H{
		"user":  user,
		"token": token,
	})
}

// Me devolve o usuário autenticado a partir do token
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	user, err := h.authService.GetUser(c.Request.Context(), actor.ID)
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, user)
}
