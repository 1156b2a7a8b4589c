package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Beatriz-ux/laudos-dpt/internal/delivery/http/middleware"
	"github.com/Beatriz-ux/laudos-dpt/internal/service"
	"github.com/Beatriz-ux/laudos-dpt/pkg/rest/response"
)

type StatsHandler struct {
	statsService service.StatsService
}

func NewStatsHandler(statsService service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) Dashboard(c *gin.Context) {
	actor, ok := middleware.ActorFromContext(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "Ator não encontrado no contexto")
		return
	}

	stats, err := h.statsService.Dashboard(c.Request.Context(), actor, c.Query("officer_id"))
	if err != nil {
		response.ResolveError(c, err)
		return
	}

	response.OK(c, stats)
}
